package plugin

import (
	"errors"
	"testing"
)

func TestRegistryDrainFrom(t *testing.T) {
	resetRegistryForTesting()

	RegisterPlugin(newTestPlugin("one", nil))
	RegisterPlugin(newTestPlugin("two", nil))

	r := globalRegistry()
	plugins, mark := r.drainFrom(0)
	if len(plugins) != 2 || mark != 2 {
		t.Fatalf("drainFrom(0) = %d plugins, mark %d; want 2, 2", len(plugins), mark)
	}

	// Nothing new yet.
	plugins, mark = r.drainFrom(mark)
	if len(plugins) != 0 || mark != 2 {
		t.Fatalf("drainFrom(2) = %d plugins, mark %d; want 0, 2", len(plugins), mark)
	}

	// A later registration shows up incrementally.
	RegisterPlugin(newTestPlugin("three", nil))
	plugins, mark = r.drainFrom(mark)
	if len(plugins) != 1 || mark != 3 {
		t.Fatalf("drainFrom after new registration = %d plugins, mark %d; want 1, 3", len(plugins), mark)
	}
	if plugins[0].Meta().Name != "three" {
		t.Errorf("incremental plugin = %q, want %q", plugins[0].Meta().Name, "three")
	}
}

func TestRegistryBifsRunOnce(t *testing.T) {
	resetRegistryForTesting()

	runs := 0
	RegisterBifFile("p", func(Plugin) error {
		runs++
		return nil
	})

	r := globalRegistry()
	fns := r.pendingBifs("p")
	if len(fns) != 1 {
		t.Fatalf("pendingBifs returned %d entries, want 1", len(fns))
	}
	if err := fns[0](nil); err != nil {
		t.Fatal(err)
	}

	if again := r.pendingBifs("p"); len(again) != 0 {
		t.Errorf("pendingBifs returned entries a second time: %d", len(again))
	}
	if runs != 1 {
		t.Errorf("bif ran %d times, want 1", runs)
	}
}

func TestRegistryBifsForUnknownPlugin(t *testing.T) {
	resetRegistryForTesting()
	if fns := globalRegistry().pendingBifs("nobody"); len(fns) != 0 {
		t.Errorf("pendingBifs for unknown plugin returned %d entries", len(fns))
	}
}

func TestRegistryKeepsDuplicateNames(t *testing.T) {
	resetRegistryForTesting()

	RegisterPlugin(newTestPlugin("same", nil))
	RegisterPlugin(newTestPlugin("same", nil))

	plugins, _ := globalRegistry().drainFrom(0)
	if len(plugins) != 2 {
		t.Errorf("registry holds %d plugins, want 2; duplicates belong to lifecycle reporting", len(plugins))
	}
}

func TestBifErrorsAreReportedNotFatal(t *testing.T) {
	resetRegistryForTesting()

	RegisterPlugin(newTestPlugin("faulty", nil))
	RegisterBifFile("faulty", func(Plugin) error {
		return errors.New("bif exploded")
	})

	m := NewManager()
	if err := m.InitPreScript(); err != nil {
		t.Fatal(err)
	}
	if err := m.InitBifs(); err != nil {
		t.Fatalf("InitBifs() error: %v, want nil with reported failure", err)
	}
	if m.Reporter().Errors() == 0 {
		t.Error("failed bif init was not reported")
	}
}
