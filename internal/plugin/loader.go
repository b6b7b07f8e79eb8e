package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/flowscope/internal/reporter"
)

// Loader discovers and loads dynamic plugin bundles from the
// filesystem. All loader operations run single-threaded during
// startup, before steady-state dispatch begins.
type Loader struct {
	rep *reporter.Reporter
}

// NewLoader creates a bundle loader reporting through rep.
func NewLoader(rep *reporter.Reporter) *Loader {
	return &Loader{rep: rep}
}

// Search scans a colon-separated list of directories for bundles. A
// directory that is itself a bundle is recorded directly; otherwise
// its immediate children are scanned once (one level of recursion
// only). Missing directories are skipped. Returns name -> base dir.
func (l *Loader) Search(dirs string) (map[string]string, error) {
	found := make(map[string]string)

	for _, dir := range strings.Split(dirs, ":") {
		if dir == "" {
			continue
		}
		if err := l.searchDir(dir, found); err != nil {
			return nil, err
		}
	}
	return found, nil
}

// searchDir inspects one directory for bundles.
func (l *Loader) searchDir(dir string, found map[string]string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // missing search paths are not errors
		}
		return err
	}
	if !info.IsDir() {
		return nil
	}

	if IsBundle(dir) {
		return l.recordBundle(dir, found)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		child := filepath.Join(dir, entry.Name())
		if IsBundle(child) {
			if err := l.recordBundle(child, found); err != nil {
				return err
			}
		}
	}
	return nil
}

// recordBundle reads a bundle's manifest for its name and records the
// mapping. An unreadable manifest is reported but does not abort the
// search.
func (l *Loader) recordBundle(dir string, found map[string]string) error {
	manifest, err := LoadManifestFromDir(dir)
	if err != nil {
		l.rep.Warning("ignoring bundle %s: %v", dir, err)
		return nil
	}

	if _, exists := found[manifest.Name]; exists {
		return nil // first discovery wins
	}
	found[manifest.Name] = dir
	return nil
}

// Load activates the bundle at dir: it parses the manifest, executes
// the bundle's entry point in a fresh sandboxed Lua state, and
// performs the bundle's self-registration into the process-wide
// registry, making its plugin visible to the Manager exactly as a
// compiled-in plugin would be.
func (l *Loader) Load(dir string) (*LuaPlugin, error) {
	manifest, err := LoadManifestFromDir(dir)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(manifest.MainPath()); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoEntryPoint, manifest.MainPath())
	}

	lp, err := newLuaPlugin(manifest, l.rep)
	if err != nil {
		return nil, err
	}

	RegisterPlugin(lp)
	return lp, nil
}
