package plugin

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/dshills/flowscope/internal/reporter"
)

// writeBundle creates a bundle directory under parent with a minimal
// manifest and the given Lua entry point. Returns the bundle dir.
func writeBundle(t *testing.T, parent, name, luaBody string) string {
	t.Helper()

	dir := filepath.Join(parent, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	manifest := fmt.Sprintf(`{"name": %q, "version": "1.0.0"}`, name)
	if err := os.WriteFile(filepath.Join(dir, ManifestFile), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "init.lua"), []byte(luaBody), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestLoaderSearchFindsChildren(t *testing.T) {
	root := t.TempDir()
	writeBundle(t, root, "alpha", "")
	writeBundle(t, root, "beta", "")
	// A non-bundle child is ignored.
	if err := os.MkdirAll(filepath.Join(root, "not-a-bundle"), 0o755); err != nil {
		t.Fatal(err)
	}

	l := NewLoader(reporter.New(nil))
	found, err := l.Search(root)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("Search() found %d bundles, want 2: %v", len(found), found)
	}
	if found["alpha"] != filepath.Join(root, "alpha") {
		t.Errorf("alpha dir = %q", found["alpha"])
	}
}

func TestLoaderSearchDirectBundle(t *testing.T) {
	root := t.TempDir()
	dir := writeBundle(t, root, "direct", "")

	l := NewLoader(reporter.New(nil))
	found, err := l.Search(dir)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if found["direct"] != dir {
		t.Errorf("Search() on bundle dir = %v, want direct -> %s", found, dir)
	}
}

func TestLoaderSearchStopsAtOneLevel(t *testing.T) {
	root := t.TempDir()
	// A bundle two levels down must not be discovered.
	nested := filepath.Join(root, "level1")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	writeBundle(t, nested, "too-deep", "")

	l := NewLoader(reporter.New(nil))
	found, err := l.Search(root)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(found) != 0 {
		t.Errorf("Search() found %v, want nothing below one level", found)
	}
}

func TestLoaderSearchSkipsMissingDirs(t *testing.T) {
	root := t.TempDir()
	writeBundle(t, root, "present", "")

	l := NewLoader(reporter.New(nil))
	found, err := l.Search("/nonexistent-path:" + root)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(found) != 1 {
		t.Errorf("Search() found %d bundles, want 1", len(found))
	}
}

func TestLoaderSearchFirstDiscoveryWins(t *testing.T) {
	rootA := t.TempDir()
	rootB := t.TempDir()
	dirA := writeBundle(t, rootA, "shadowed", "")
	writeBundle(t, rootB, "shadowed", "")

	l := NewLoader(reporter.New(nil))
	found, err := l.Search(rootA + ":" + rootB)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if found["shadowed"] != dirA {
		t.Errorf("shadowed dir = %q, want the first search path's %q", found["shadowed"], dirA)
	}
}

func TestLoaderSearchReportsBadManifest(t *testing.T) {
	root := t.TempDir()
	bad := filepath.Join(root, "broken")
	if err := os.MkdirAll(bad, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(bad, ManifestFile), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	writeBundle(t, root, "fine", "")

	rep := reporter.New(nil)
	l := NewLoader(rep)
	found, err := l.Search(root)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(found) != 1 {
		t.Errorf("Search() found %d bundles, want the healthy one only", len(found))
	}
	if rep.Warnings() == 0 {
		t.Error("unreadable manifest was not reported")
	}
}

func TestLoaderLoadMissingEntryPoint(t *testing.T) {
	root := t.TempDir()
	dir := writeBundle(t, root, "no-main", "")
	if err := os.Remove(filepath.Join(dir, "init.lua")); err != nil {
		t.Fatal(err)
	}

	resetRegistryForTesting()
	l := NewLoader(reporter.New(nil))
	if _, err := l.Load(dir); !errors.Is(err, ErrNoEntryPoint) {
		t.Errorf("Load() error = %v, want ErrNoEntryPoint", err)
	}
}

func TestLoaderLoadRegistersPlugin(t *testing.T) {
	resetRegistryForTesting()

	root := t.TempDir()
	dir := writeBundle(t, root, "self-reg", "")

	l := NewLoader(reporter.New(nil))
	lp, err := l.Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if lp.Meta().Name != "self-reg" || !lp.Meta().Dynamic {
		t.Errorf("Meta() = %+v, want dynamic self-reg", lp.Meta())
	}

	plugins, _ := globalRegistry().drainFrom(0)
	if len(plugins) != 1 || plugins[0] != Plugin(lp) {
		t.Error("loaded bundle did not self-register")
	}
}

func TestActivationFailFast(t *testing.T) {
	resetRegistryForTesting()

	root := t.TempDir()
	writeBundle(t, root, "a-good", "")
	badDir := writeBundle(t, root, "b-bad", "")
	if err := os.Remove(filepath.Join(badDir, "init.lua")); err != nil {
		t.Fatal(err)
	}
	writeBundle(t, root, "c-never", "")

	m := NewManager()
	if err := m.SearchDynamicPlugins(root); err != nil {
		t.Fatal(err)
	}

	err := m.ActivateDynamicPlugins(true)
	if !errors.Is(err, ErrNoEntryPoint) {
		t.Fatalf("ActivateDynamicPlugins() error = %v, want ErrNoEntryPoint", err)
	}

	// Lexical order: a-good activated before the failure, c-never not
	// reached, and the earlier activation stands.
	if len(m.ActivePlugins()) != 1 {
		t.Fatalf("ActivePlugins() has %d entries, want 1", len(m.ActivePlugins()))
	}
	if m.ActivePlugins()[0].Meta().Name != "a-good" {
		t.Errorf("active plugin = %q, want a-good", m.ActivePlugins()[0].Meta().Name)
	}

	inactive := m.InactivePlugins()
	names := make([]string, len(inactive))
	for i, ip := range inactive {
		names[i] = ip.Name
	}
	if len(names) != 2 || names[0] != "b-bad" || names[1] != "c-never" {
		t.Errorf("InactivePlugins() = %v, want [b-bad c-never]", names)
	}
}

func TestActivateRequestedOnly(t *testing.T) {
	resetRegistryForTesting()

	root := t.TempDir()
	writeBundle(t, root, "wanted", "")
	writeBundle(t, root, "unwanted", "")

	m := NewManager()
	if err := m.SearchDynamicPlugins(root); err != nil {
		t.Fatal(err)
	}
	m.RequestPlugin("wanted")

	if err := m.ActivateDynamicPlugins(false); err != nil {
		t.Fatalf("ActivateDynamicPlugins() error: %v", err)
	}

	if len(m.ActivePlugins()) != 1 || m.ActivePlugins()[0].Meta().Name != "wanted" {
		t.Errorf("ActivePlugins() = %v, want only wanted", m.ActivePlugins())
	}
	if len(m.InactivePlugins()) != 1 || m.InactivePlugins()[0].Name != "unwanted" {
		t.Errorf("InactivePlugins() = %v, want only unwanted", m.InactivePlugins())
	}
}

func TestActivateRequestedMissing(t *testing.T) {
	resetRegistryForTesting()

	m := NewManager()
	m.RequestPlugin("phantom")

	err := m.ActivateDynamicPlugins(false)
	if !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("ActivateDynamicPlugins() error = %v, want ErrPluginNotFound", err)
	}
}
