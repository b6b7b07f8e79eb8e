package plugin

import "errors"

// Plugin system errors.
var (
	// ErrPluginNotFound is returned when a requested plugin cannot be located.
	ErrPluginNotFound = errors.New("plugin not found")

	// ErrNoEntryPoint is returned when a bundle has no valid entry point.
	ErrNoEntryPoint = errors.New("plugin bundle has no entry point")

	// ErrNilManifest is returned when a nil manifest is provided.
	ErrNilManifest = errors.New("manifest is nil")

	// ErrDuplicatePlugin is returned when two plugins share a name.
	ErrDuplicatePlugin = errors.New("duplicate plugin name")

	// ErrPhaseViolation is returned when a lifecycle phase runs out of
	// order or more than once.
	ErrPhaseViolation = errors.New("lifecycle phase violation")

	// ErrSearchAfterInit is returned when dynamic plugin search happens
	// after pre-script initialization has already run.
	ErrSearchAfterInit = errors.New("dynamic plugin search after pre-script initialization")

	// ErrHookNotImplemented is returned when a plugin enables a hook it
	// does not implement the callback interface for.
	ErrHookNotImplemented = errors.New("plugin does not implement hook")

	// ErrUnknownHook is returned for a hook name outside the known set.
	ErrUnknownHook = errors.New("unknown hook type")

	// ErrUnknownKind is returned for a component kind outside the closed set.
	ErrUnknownKind = errors.New("unknown component kind")
)
