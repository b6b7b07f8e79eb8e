package plugin

import "fmt"

// Meta identifies a plugin.
type Meta struct {
	// Name is the unique plugin identifier (e.g. "flowscope::LogShield").
	Name string

	// Version is the plugin version string.
	Version string

	// Description is a one-line summary of what the plugin does.
	Description string

	// Dynamic is true for plugins loaded from a bundle at startup,
	// false for plugins compiled into the host binary.
	Dynamic bool
}

// String returns "name version".
func (m Meta) String() string {
	if m.Version == "" {
		return m.Name
	}
	return fmt.Sprintf("%s %s", m.Name, m.Version)
}

// Plugin is a unit of extension. Plugins are owned by whatever module
// defined them (a compiled-in package or a loaded bundle) and must stay
// valid for the Manager's entire lifetime; the core never frees them.
//
// Lifecycle callbacks run in the fixed order InitPreScript, the
// registered bif initializers, InitPostScript, and finally Done at
// shutdown. A failed callback is reported but never stops the other
// plugins' callbacks.
type Plugin interface {
	// Meta returns the plugin's identity. It must be constant for the
	// plugin's lifetime.
	Meta() Meta

	// Components returns the capability units this plugin contributes.
	// The returned slice is never mutated by the core.
	Components() []*Component

	// InitPreScript runs before the host processes any input.
	InitPreScript() error

	// InitPostScript runs after host initialization completes.
	InitPostScript() error

	// Done runs at shutdown. It must tolerate partial initialization.
	Done()
}

// HookRequest declares a hook a plugin wants enabled at activation.
type HookRequest struct {
	Hook     HookType
	Priority int
}

// HookRequester is implemented by plugins that declare their hooks up
// front. The Manager enables the requested hooks when the plugin
// becomes active; plugins can still call EnableHook directly from
// InitPreScript instead.
type HookRequester interface {
	RequestedHooks() []HookRequest
}

// Base is a no-op Plugin implementation for embedding. Compiled-in
// plugins embed Base and override what they need.
type Base struct {
	MetaInfo Meta
	Contrib  []*Component
}

// Meta implements Plugin.
func (b *Base) Meta() Meta { return b.MetaInfo }

// Components implements Plugin.
func (b *Base) Components() []*Component { return b.Contrib }

// InitPreScript implements Plugin.
func (b *Base) InitPreScript() error { return nil }

// InitPostScript implements Plugin.
func (b *Base) InitPostScript() error { return nil }

// Done implements Plugin.
func (b *Base) Done() {}
