package plugin

import "sync"

// BifInitFunc makes a plugin's built-in functions available. It runs
// exactly once, during the bif initialization phase, with the owning
// plugin as argument.
type BifInitFunc func(p Plugin) error

// bifEntry is one registered bif file initializer.
type bifEntry struct {
	fn   BifInitFunc
	done bool
}

// processRegistry is the pre-main registration target. Compiled-in
// plugins register from init() functions, before any Manager exists,
// so the storage is constructed lazily on first access rather than at
// package load; no registration depends on another package's
// initialization order.
type processRegistry struct {
	mu      sync.Mutex
	plugins []Plugin
	bifs    map[string][]*bifEntry
}

var (
	registryOnce sync.Once
	registry     *processRegistry
)

// globalRegistry returns the process-wide registry, constructing it on
// first access.
func globalRegistry() *processRegistry {
	registryOnce.Do(func() {
		registry = &processRegistry{
			bifs: make(map[string][]*bifEntry),
		}
	})
	return registry
}

// RegisterPlugin records a freshly instantiated plugin. Callable from
// init() functions in any package load order. The registry does not
// take ownership; the pointer must stay valid for the life of the
// process. Duplicate names are not rejected here - they surface as an
// error during lifecycle execution.
func RegisterPlugin(p Plugin) {
	r := globalRegistry()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plugins = append(r.plugins, p)
}

// RegisterBifFile records a bif file's init function for a plugin.
// A plugin may register multiple files; all run during the bif phase.
func RegisterBifFile(pluginName string, fn BifInitFunc) {
	r := globalRegistry()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bifs[pluginName] = append(r.bifs[pluginName], &bifEntry{fn: fn})
}

// drainFrom returns the plugins registered at or after index from and
// the new length. The Manager seeds itself with drainFrom(0) once at
// construction and merges later registrations (from bundle loading)
// incrementally.
func (r *processRegistry) drainFrom(from int) ([]Plugin, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if from >= len(r.plugins) {
		return nil, len(r.plugins)
	}
	out := append([]Plugin{}, r.plugins[from:]...)
	return out, len(r.plugins)
}

// pendingBifs returns the not-yet-run bif entries for a plugin name,
// marking them done.
func (r *processRegistry) pendingBifs(name string) []BifInitFunc {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []BifInitFunc
	for _, e := range r.bifs[name] {
		if !e.done {
			e.done = true
			out = append(out, e.fn)
		}
	}
	return out
}

// resetRegistryForTesting clears the process registry so tests can run
// in isolation.
func resetRegistryForTesting() {
	r := globalRegistry()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plugins = nil
	r.bifs = make(map[string][]*bifEntry)
}
