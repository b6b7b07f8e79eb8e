package plugin

import (
	"time"

	"github.com/dshills/flowscope/internal/event"
	"github.com/dshills/flowscope/internal/flow"
)

// Hook entry points. The host calls these at fixed points in its own
// pipeline. Every entry point starts with the HavePluginForHook fast
// path: with no listener it returns the default result immediately,
// with no allocation and no indirect call.
//
// When listeners exist, registrations are walked from highest to
// lowest priority under one of four combination policies, and the
// whole dispatch is wrapped by the meta-hook pre/post callbacks.

// HookLoadFile gives plugins a chance to take over loading an input
// file. Veto policy: the first plugin producing a definite outcome
// wins and the rest are not consulted. Returns LoadSkipped when no
// plugin was interested.
func (m *Manager) HookLoadFile(ty LoadType, file, resolved string) LoadResult {
	if !m.hooks.have(HookLoadFile) {
		return LoadSkipped
	}

	args := []HookArgument{file, resolved}
	m.metaHookPre(HookLoadFile, args)

	result := LoadSkipped
	for _, e := range m.hooks.entries(HookLoadFile) {
		if r := e.plugin.(FileLoader).HookLoadFile(ty, file, resolved); r != LoadSkipped {
			result = r
			break
		}
	}

	m.metaHookPost(HookLoadFile, args, result)
	return result
}

// HookCallFunction filters calls to host script functions. Override
// policy: the first plugin producing a result short-circuits and
// supplies it; handled is false when no plugin intercepted the call
// and the caller must fall back to default behavior.
func (m *Manager) HookCallFunction(name string, fnArgs []any) (result any, handled bool) {
	if !m.hooks.have(HookCallFunction) {
		return nil, false
	}

	args := []HookArgument{name, fnArgs}
	m.metaHookPre(HookCallFunction, args)

	for _, e := range m.hooks.entries(HookCallFunction) {
		if r, ok := e.plugin.(FunctionCaller).HookCallFunction(name, fnArgs); ok {
			result, handled = r, true
			break
		}
	}

	m.metaHookPost(HookCallFunction, args, result)
	return result, handled
}

// HookQueueEvent filters the queuing of an event. Veto policy:
// returns true if a plugin took ownership; the host must not queue
// the event further.
func (m *Manager) HookQueueEvent(ev *event.Event) bool {
	if !m.hooks.have(HookQueueEvent) {
		return false
	}

	args := []HookArgument{ev}
	m.metaHookPre(HookQueueEvent, args)

	handled := false
	for _, e := range m.hooks.entries(HookQueueEvent) {
		if e.plugin.(EventQueuer).HookQueueEvent(ev) {
			handled = true
			break
		}
	}

	m.metaHookPost(HookQueueEvent, args, handled)
	return handled
}

// HookUpdateNetworkTime informs plugins about an update in network
// time. Notify-all policy.
func (m *Manager) HookUpdateNetworkTime(t time.Time) {
	if !m.hooks.have(HookUpdateNetworkTime) {
		return
	}

	args := []HookArgument{t}
	m.metaHookPre(HookUpdateNetworkTime, args)

	for _, e := range m.hooks.entries(HookUpdateNetworkTime) {
		e.plugin.(TimeUpdater).HookUpdateNetworkTime(t)
	}

	m.metaHookPost(HookUpdateNetworkTime, args, nil)
}

// HookSetupAnalyzerTree runs when a connection's initial analyzer
// tree has been fully set up; plugins may extend the tree. Notify-all
// policy.
func (m *Manager) HookSetupAnalyzerTree(conn *flow.Connection) {
	if !m.hooks.have(HookSetupAnalyzerTree) {
		return
	}

	args := []HookArgument{conn}
	m.metaHookPre(HookSetupAnalyzerTree, args)

	for _, e := range m.hooks.entries(HookSetupAnalyzerTree) {
		e.plugin.(TreeBuilder).HookSetupAnalyzerTree(conn)
	}

	m.metaHookPost(HookSetupAnalyzerTree, args, nil)
}

// HookDrainEvents informs plugins that the event queue is being
// drained. Notify-all policy.
func (m *Manager) HookDrainEvents() {
	if !m.hooks.have(HookDrainEvents) {
		return
	}

	m.metaHookPre(HookDrainEvents, nil)

	for _, e := range m.hooks.entries(HookDrainEvents) {
		e.plugin.(EventDrainer).HookDrainEvents()
	}

	m.metaHookPost(HookDrainEvents, nil, nil)
}

// HookObjDtor informs plugins that an object is being destroyed.
// Notify-all policy, fired only for objects some plugin registered
// interest in via RequestObjDtor. The interest registration is
// consumed: the object is about to go away.
func (m *Manager) HookObjDtor(obj any) {
	if !m.hooks.have(HookObjDtor) {
		return
	}
	if _, interested := m.objInterest[obj]; !interested {
		return
	}
	delete(m.objInterest, obj)

	args := []HookArgument{obj}
	m.metaHookPre(HookObjDtor, args)

	for _, e := range m.hooks.entries(HookObjDtor) {
		e.plugin.(ObjDtor).HookObjDtor(obj)
	}

	m.metaHookPost(HookObjDtor, args, nil)
}

// HookLogInit informs plugins that a log writer is being
// instantiated. Notify-all policy.
func (m *Manager) HookLogInit(info *WriterInfo) {
	if !m.hooks.have(HookLogInit) {
		return
	}

	args := []HookArgument{info}
	m.metaHookPre(HookLogInit, args)

	for _, e := range m.hooks.entries(HookLogInit) {
		e.plugin.(LogIniter).HookLogInit(info)
	}

	m.metaHookPost(HookLogInit, args, nil)
}

// HookLogWrite filters a log line about to be written. Filter-chain
// policy: every plugin is consulted in priority order until one
// returns false; that veto short-circuits the remainder and the line
// is skipped. The net result is the logical AND over the consulted
// prefix.
func (m *Manager) HookLogWrite(writer, filter string, rec *LogRecord) bool {
	if !m.hooks.have(HookLogWrite) {
		return true
	}

	args := []HookArgument{writer, filter, rec}
	m.metaHookPre(HookLogWrite, args)

	ok := true
	for _, e := range m.hooks.entries(HookLogWrite) {
		if !e.plugin.(LogWriter).HookLogWrite(writer, filter, rec) {
			ok = false
			break
		}
	}

	m.metaHookPost(HookLogWrite, args, ok)
	return ok
}

// HookReporter filters reporter messages. Filter-chain policy:
// returning false suppresses the script-side event for the message
// and short-circuits the remaining plugins.
func (m *Manager) HookReporter(prefix, eventName, message string) bool {
	if !m.hooks.have(HookReporter) {
		return true
	}

	args := []HookArgument{prefix, eventName, message}
	m.metaHookPre(HookReporter, args)

	ok := true
	for _, e := range m.hooks.entries(HookReporter) {
		if !e.plugin.(Reporter).HookReporter(prefix, eventName, message) {
			ok = false
			break
		}
	}

	m.metaHookPost(HookReporter, args, ok)
	return ok
}

// metaHookPre fires the pre-dispatch meta callback on every plugin
// enabled for it. Meta hooks observe; they must not alter the
// arguments.
func (m *Manager) metaHookPre(hook HookType, args []HookArgument) {
	if !m.hooks.have(HookMetaPre) {
		return
	}
	for _, e := range m.hooks.entries(HookMetaPre) {
		e.plugin.(MetaHooker).MetaHookPre(hook, args)
	}
}

// metaHookPost fires the post-dispatch meta callback with the final
// combined result, regardless of which policy path short-circuited.
func (m *Manager) metaHookPost(hook HookType, args []HookArgument, result HookArgument) {
	if !m.hooks.have(HookMetaPost) {
		return
	}
	for _, e := range m.hooks.entries(HookMetaPost) {
		e.plugin.(MetaHooker).MetaHookPost(hook, args, result)
	}
}
