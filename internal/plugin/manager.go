package plugin

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dshills/flowscope/internal/reporter"
)

// phase tracks the Manager's position in the lifecycle state machine.
// Each transition is host-triggered and runs at most once.
type phase int

const (
	// phaseConfig - construction through the end of the configuration
	// window: search, activation, hook registration.
	phaseConfig phase = iota

	// phasePreScript - InitPreScript has run.
	phasePreScript

	// phaseBifs - InitBifs has run.
	phaseBifs

	// phasePostScript - InitPostScript has run; steady-state dispatch.
	phasePostScript

	// phaseFinished - FinishPlugins has run.
	phaseFinished
)

// InactivePlugin describes a dynamic plugin that was discovered but
// not activated. Without activation, name and directory are all that
// is knowable.
type InactivePlugin struct {
	Name string
	Dir  string
}

// Manager orchestrates all plugins: it seeds itself from the
// process-wide registry, discovers and activates dynamic bundles,
// drives the lifecycle state machine, and dispatches hooks.
//
// All mutation (search, activation, EnableHook/DisableHook, lifecycle
// phases) happens in a single-threaded configuration window before
// steady-state dispatch or at shutdown; dispatch itself is never
// interleaved with registration. The Manager therefore carries no
// locks on the dispatch path.
type Manager struct {
	rep    *reporter.Reporter
	loader *Loader

	// Active plugins in deterministic order. The Manager holds
	// non-owning references; plugins outlive it.
	active []Plugin

	// Index into the process registry up to which plugins have been
	// consumed. The registry is read once at construction and then
	// merged incrementally as bundles self-register.
	regMark int

	// Dynamic plugins explicitly requested by name.
	requested map[string]bool

	// Discovered but not yet activated bundles: name -> base dir.
	inactive map[string]string

	// Activated bundle base dirs.
	pluginsByPath map[string]Plugin

	hooks hookTable

	// Sparse opt-in subscriptions.
	requestedEvents map[string][]Plugin
	objInterest     map[any][]Plugin

	phase phase
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithReporter sets the diagnostic channel.
func WithReporter(rep *reporter.Reporter) ManagerOption {
	return func(m *Manager) {
		m.rep = rep
	}
}

// NewManager creates the plugin manager and seeds its active-plugin
// set from the process-wide registry. Plugins compiled into the host
// have registered themselves from init() by the time this runs.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		requested:       make(map[string]bool),
		inactive:        make(map[string]string),
		pluginsByPath:   make(map[string]Plugin),
		requestedEvents: make(map[string][]Plugin),
		objInterest:     make(map[any][]Plugin),
	}

	for _, opt := range opts {
		opt(m)
	}
	if m.rep == nil {
		m.rep = reporter.New(nil)
	}
	m.loader = NewLoader(m.rep)

	m.mergeRegistered()

	return m
}

// Reporter returns the manager's diagnostic channel.
func (m *Manager) Reporter() *reporter.Reporter { return m.rep }

// mergeRegistered pulls plugins the process registry has accumulated
// since the last merge into the active set, enabling any hooks they
// declare up front.
func (m *Manager) mergeRegistered() {
	plugins, mark := globalRegistry().drainFrom(m.regMark)
	m.regMark = mark

	for _, p := range plugins {
		m.active = append(m.active, p)

		if hr, ok := p.(HookRequester); ok {
			for _, req := range hr.RequestedHooks() {
				if err := m.EnableHook(req.Hook, p, req.Priority); err != nil {
					m.rep.Error("plugin %s: %v", p.Meta().Name, err)
				}
			}
		}
	}
}

// RequestPlugin schedules a dynamic plugin for loading by name. The
// actual loading happens in ActivateDynamicPlugins. Idempotent; no
// ordering constraint relative to SearchDynamicPlugins.
func (m *Manager) RequestPlugin(name string) {
	m.requested[name] = true
}

// SearchDynamicPlugins searches a colon-separated list of directories
// for plugin bundles and records them for later activation. If a
// directory is not itself a bundle, its immediate children are
// scanned (one level only).
//
// Must be called before InitPreScript; calling afterward is a
// contract violation.
func (m *Manager) SearchDynamicPlugins(dirs string) error {
	if m.phase != phaseConfig {
		return fmt.Errorf("%w: %s", ErrSearchAfterInit, dirs)
	}

	found, err := m.loader.Search(dirs)
	if err != nil {
		return err
	}

	for name, dir := range found {
		if _, exists := m.inactive[name]; exists {
			continue // first discovery wins
		}
		m.inactive[name] = dir
		m.rep.Info("found plugin %s in %s", name, dir)
	}
	return nil
}

// ActivateDynamicPlugins activates the union of explicitly requested
// plugins and, if all is true, every discovered plugin. Activation
// order is lexical by name so repeated runs produce identical
// plugin-priority orderings.
//
// The pass is fail-fast: the first activation failure stops it.
// Plugins already activated in the pass remain active; the returned
// error aggregates what went wrong.
func (m *Manager) ActivateDynamicPlugins(all bool) error {
	if m.phase != phaseConfig {
		return fmt.Errorf("%w: activation after initialization", ErrPhaseViolation)
	}

	names := make(map[string]bool, len(m.requested))
	for name := range m.requested {
		names[name] = true
	}
	if all {
		for name := range m.inactive {
			names[name] = true
		}
	}

	ordered := make([]string, 0, len(names))
	for name := range names {
		ordered = append(ordered, name)
	}
	sort.Strings(ordered)

	var errs []error
	for _, name := range ordered {
		if err := m.activateDynamicPlugin(name); err != nil {
			errs = append(errs, fmt.Errorf("activating plugin %s: %w", name, err))
			break // fail fast, no rollback of earlier activations
		}
	}
	if len(errs) > 0 {
		err := errors.Join(errs...)
		m.rep.Error("%v", err)
		return err
	}
	return nil
}

// activateDynamicPlugin loads one bundle and merges its registration.
func (m *Manager) activateDynamicPlugin(name string) error {
	dir, ok := m.inactive[name]
	if !ok {
		return ErrPluginNotFound
	}

	lp, err := m.loader.Load(dir)
	if err != nil {
		return err
	}

	// Loading made the bundle self-register; fold it in like a
	// compiled-in plugin.
	m.mergeRegistered()

	delete(m.inactive, name)
	m.pluginsByPath[filepath.Clean(dir)] = lp
	m.rep.Info("activated plugin %s", lp.Meta())
	return nil
}

// InitPreScript runs first-stage initialization on every active
// plugin, in deterministic order. Individual failures are reported
// but do not stop the remaining plugins.
func (m *Manager) InitPreScript() error {
	if m.phase != phaseConfig {
		return fmt.Errorf("%w: InitPreScript", ErrPhaseViolation)
	}
	m.phase = phasePreScript

	m.reportDuplicates()

	for _, p := range m.active {
		if err := p.InitPreScript(); err != nil {
			m.rep.Error("plugin %s: pre-script init failed: %v", p.Meta().Name, err)
		}
	}
	return nil
}

// reportDuplicates surfaces duplicate plugin identities. Registration
// itself never rejects them; the error belongs to lifecycle execution.
func (m *Manager) reportDuplicates() {
	seen := make(map[string]bool, len(m.active))
	for _, p := range m.active {
		name := p.Meta().Name
		if seen[name] {
			m.rep.Error("%v: %s", ErrDuplicatePlugin, name)
		}
		seen[name] = true
	}
}

// InitBifs runs second-stage initialization: every queued bif
// initializer whose owning plugin is active runs exactly once.
func (m *Manager) InitBifs() error {
	if m.phase != phasePreScript {
		return fmt.Errorf("%w: InitBifs", ErrPhaseViolation)
	}
	m.phase = phaseBifs

	for _, p := range m.active {
		for _, fn := range globalRegistry().pendingBifs(p.Meta().Name) {
			if err := fn(p); err != nil {
				m.rep.Error("plugin %s: bif init failed: %v", p.Meta().Name, err)
			}
		}
	}
	return nil
}

// InitPostScript runs third-stage initialization on every active
// plugin. After it returns, the host enters steady-state dispatch.
func (m *Manager) InitPostScript() error {
	if m.phase != phaseBifs {
		return fmt.Errorf("%w: InitPostScript", ErrPhaseViolation)
	}
	m.phase = phasePostScript

	for _, p := range m.active {
		if err := p.InitPostScript(); err != nil {
			m.rep.Error("plugin %s: post-script init failed: %v", p.Meta().Name, err)
		}
	}
	return nil
}

// FinishPlugins runs each active plugin's teardown. Best-effort: it
// tolerates partial or failed prior initialization and runs every
// plugin's Done regardless of earlier failures.
func (m *Manager) FinishPlugins() {
	if m.phase == phaseFinished {
		return
	}
	m.phase = phaseFinished

	for _, p := range m.active {
		p.Done()
	}
}

// ActivePlugins returns a snapshot of all activated plugins, both
// compiled-in and dynamically loaded, in deterministic order.
func (m *Manager) ActivePlugins() []Plugin {
	return append([]Plugin{}, m.active...)
}

// InactivePlugins returns the dynamic plugins found but not activated,
// sorted by name.
func (m *Manager) InactivePlugins() []InactivePlugin {
	out := make([]InactivePlugin, 0, len(m.inactive))
	for name, dir := range m.inactive {
		out = append(out, InactivePlugin{Name: name, Dir: dir})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Components returns every active plugin's components of the given
// kind, in active-plugin order then within-plugin order. Read-only;
// stable across calls given no intervening activation.
func (m *Manager) Components(kind Kind) []*Component {
	var out []*Component
	for _, p := range m.active {
		for _, c := range p.Components() {
			if c.Kind() == kind {
				out = append(out, c)
			}
		}
	}
	return out
}

// LookupPluginByPath returns the dynamic plugin whose base directory
// contains the given path. The path can be the plugin directory
// itself or anything inside it.
func (m *Manager) LookupPluginByPath(path string) (Plugin, bool) {
	path = filepath.Clean(path)
	for dir, p := range m.pluginsByPath {
		if path == dir || strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return p, true
		}
	}
	return nil, false
}

// EnableHook registers a plugin for a hook at the given priority.
// Higher priorities are consulted first; equal priorities keep their
// enable order. Re-enabling updates the priority. The plugin must
// implement the hook's callback interface.
func (m *Manager) EnableHook(hook HookType, p Plugin, prio int) error {
	if hook < 0 || hook >= numHookTypes {
		return fmt.Errorf("%w: %d", ErrUnknownHook, int(hook))
	}
	if !implementsHook(p, hook) {
		return fmt.Errorf("%w %s", ErrHookNotImplemented, hook)
	}
	m.hooks.insert(hook, p, prio)
	return nil
}

// DisableHook removes a plugin's registration for a hook. Removing
// the last registration makes HavePluginForHook report false again.
func (m *Manager) DisableHook(hook HookType, p Plugin) {
	if hook < 0 || hook >= numHookTypes {
		return
	}
	m.hooks.remove(hook, p)
}

// HavePluginForHook returns true if at least one plugin is interested
// in the hook. This is the universal dispatch fast path: one table
// lookup, no allocation.
func (m *Manager) HavePluginForHook(hook HookType) bool {
	return m.hooks.have(hook)
}

// HooksEnabledForPlugin returns the (hook, priority) pairs currently
// enabled for a plugin, in no particular cross-hook order.
func (m *Manager) HooksEnabledForPlugin(p Plugin) []HookRequest {
	return m.hooks.forPlugin(p)
}

// RequestEvent registers a plugin's interest in an event by handler
// name. The host will raise the event even without a handler of its
// own; it then reaches the queue-event hook like any other.
func (m *Manager) RequestEvent(name string, p Plugin) {
	m.requestedEvents[name] = append(m.requestedEvents[name], p)
}

// WantsEvent returns true if any plugin has requested the event.
func (m *Manager) WantsEvent(name string) bool {
	return len(m.requestedEvents[name]) > 0
}

// RequestObjDtor registers a plugin's interest in the destruction of
// an object. The obj-dtor hook fires only for objects some plugin has
// expressed interest in. obj must be comparable (typically a pointer).
func (m *Manager) RequestObjDtor(obj any, p Plugin) {
	m.objInterest[obj] = append(m.objInterest[obj], p)
}
