package plugin

import (
	"time"

	"github.com/dshills/flowscope/internal/event"
	"github.com/dshills/flowscope/internal/flow"
)

// HookType names an extension point in the host.
type HookType int

// Hook types. Each carries a fixed result-combination policy,
// documented on its entry point in dispatch.go.
const (
	HookLoadFile HookType = iota
	HookCallFunction
	HookQueueEvent
	HookUpdateNetworkTime
	HookSetupAnalyzerTree
	HookDrainEvents
	HookObjDtor
	HookLogInit
	HookLogWrite
	HookReporter
	HookMetaPre
	HookMetaPost

	numHookTypes
)

// String returns the hook name.
func (h HookType) String() string {
	switch h {
	case HookLoadFile:
		return "load_file"
	case HookCallFunction:
		return "call_function"
	case HookQueueEvent:
		return "queue_event"
	case HookUpdateNetworkTime:
		return "update_network_time"
	case HookSetupAnalyzerTree:
		return "setup_analyzer_tree"
	case HookDrainEvents:
		return "drain_events"
	case HookObjDtor:
		return "obj_dtor"
	case HookLogInit:
		return "log_init"
	case HookLogWrite:
		return "log_write"
	case HookReporter:
		return "reporter"
	case HookMetaPre:
		return "meta_pre"
	case HookMetaPost:
		return "meta_post"
	default:
		return "unknown"
	}
}

// HookTypeFromString maps a hook name to its HookType.
func HookTypeFromString(s string) (HookType, bool) {
	for h := HookType(0); h < numHookTypes; h++ {
		if h.String() == s {
			return h, true
		}
	}
	return 0, false
}

// LoadType classifies the input file a load-file hook is offered.
type LoadType int

// Load types.
const (
	LoadScript LoadType = iota
	LoadSignatures
	LoadPlugin
)

// LoadResult is the three-way outcome of the load-file hook.
type LoadResult int

// Load results.
const (
	// LoadSkipped - no plugin was interested in the file.
	LoadSkipped LoadResult = iota

	// LoadHandled - a plugin took over the file and loaded it.
	LoadHandled

	// LoadFailed - a plugin took over the file but could not load it.
	LoadFailed
)

// WriterInfo describes a log writer being instantiated. The core
// passes it through to plugins without interpreting it.
type WriterInfo struct {
	Writer string
	Filter string
	Local  bool
	Remote bool
	Fields []string
}

// LogRecord is one log line offered to the write filter chain.
// Plugins may modify values in place.
type LogRecord struct {
	Fields []string
	Values []string
}

// HookArgument is one opaque argument observed by a meta hook.
type HookArgument any

// Hook callback interfaces. A plugin implements the interfaces for the
// hooks it enables; EnableHook rejects a plugin that does not
// implement the hook's interface. Hook callbacks run synchronously on
// the calling goroutine and must not block.

// FileLoader takes over loading of an input file.
type FileLoader interface {
	HookLoadFile(ty LoadType, file, resolved string) LoadResult
}

// FunctionCaller intercepts calls to host script functions.
type FunctionCaller interface {
	HookCallFunction(name string, args []any) (any, bool)
}

// EventQueuer filters the queuing of an event. Returning true means
// the plugin took ownership and the host must not queue it.
type EventQueuer interface {
	HookQueueEvent(ev *event.Event) bool
}

// TimeUpdater is informed of network time updates.
type TimeUpdater interface {
	HookUpdateNetworkTime(t time.Time)
}

// TreeBuilder manipulates a connection's initial analyzer tree.
type TreeBuilder interface {
	HookSetupAnalyzerTree(conn *flow.Connection)
}

// EventDrainer is informed when the event queue is drained.
type EventDrainer interface {
	HookDrainEvents()
}

// ObjDtor is informed when an object a plugin registered interest in
// is destroyed.
type ObjDtor interface {
	HookObjDtor(obj any)
}

// LogIniter is informed when a log writer is instantiated.
type LogIniter interface {
	HookLogInit(info *WriterInfo)
}

// LogWriter filters log writes. Returning false skips the line and
// short-circuits the remaining filters.
type LogWriter interface {
	HookLogWrite(writer, filter string, rec *LogRecord) bool
}

// Reporter filters reporter messages. Returning false suppresses the
// script-side event for the message.
type Reporter interface {
	HookReporter(prefix, event, message string) bool
}

// MetaHooker observes every dispatch: the pre callback fires before
// any real hook runs, the post callback after dispatch completes with
// the final combined result. Meta hooks must not alter what they see.
type MetaHooker interface {
	MetaHookPre(hook HookType, args []HookArgument)
	MetaHookPost(hook HookType, args []HookArgument, result HookArgument)
}

// implementsHook reports whether the plugin implements the callback
// interface for the given hook type.
func implementsHook(p Plugin, h HookType) bool {
	switch h {
	case HookLoadFile:
		_, ok := p.(FileLoader)
		return ok
	case HookCallFunction:
		_, ok := p.(FunctionCaller)
		return ok
	case HookQueueEvent:
		_, ok := p.(EventQueuer)
		return ok
	case HookUpdateNetworkTime:
		_, ok := p.(TimeUpdater)
		return ok
	case HookSetupAnalyzerTree:
		_, ok := p.(TreeBuilder)
		return ok
	case HookDrainEvents:
		_, ok := p.(EventDrainer)
		return ok
	case HookObjDtor:
		_, ok := p.(ObjDtor)
		return ok
	case HookLogInit:
		_, ok := p.(LogIniter)
		return ok
	case HookLogWrite:
		_, ok := p.(LogWriter)
		return ok
	case HookReporter:
		_, ok := p.(Reporter)
		return ok
	case HookMetaPre, HookMetaPost:
		_, ok := p.(MetaHooker)
		return ok
	default:
		return false
	}
}

// hookEntry is one (priority, plugin) registration for a hook type.
type hookEntry struct {
	priority int
	plugin   Plugin
}

// hookTable keeps per-hook-type registrations ordered from highest to
// lowest priority, ties broken by insertion order. A nil slice for a
// hook type means nobody is listening; the table never holds an empty
// non-nil list.
type hookTable [numHookTypes][]hookEntry

// have is the O(1) "anyone listening" check.
func (t *hookTable) have(h HookType) bool {
	return t[h] != nil
}

// insert adds a registration, keeping order. Re-enabling an already
// registered plugin updates its priority.
func (t *hookTable) insert(h HookType, p Plugin, prio int) {
	t.remove(h, p)

	list := t[h]
	// Insert after all entries with priority >= prio so equal
	// priorities keep insertion order.
	idx := len(list)
	for i, e := range list {
		if e.priority < prio {
			idx = i
			break
		}
	}

	list = append(list, hookEntry{})
	copy(list[idx+1:], list[idx:])
	list[idx] = hookEntry{priority: prio, plugin: p}
	t[h] = list
}

// remove deletes a plugin's registration. Removing the last entry
// resets the list to nil so have() reverts to false.
func (t *hookTable) remove(h HookType, p Plugin) bool {
	list := t[h]
	for i, e := range list {
		if e.plugin == p {
			list = append(list[:i], list[i+1:]...)
			if len(list) == 0 {
				list = nil
			}
			t[h] = list
			return true
		}
	}
	return false
}

// entries returns the registrations for a hook type in dispatch order.
func (t *hookTable) entries(h HookType) []hookEntry {
	return t[h]
}

// forPlugin returns the (hook, priority) pairs enabled for a plugin.
func (t *hookTable) forPlugin(p Plugin) []HookRequest {
	var out []HookRequest
	for h := HookType(0); h < numHookTypes; h++ {
		for _, e := range t[h] {
			if e.plugin == p {
				out = append(out, HookRequest{Hook: h, Priority: e.priority})
			}
		}
	}
	return out
}
