package plugin

import (
	"fmt"
	"time"

	glua "github.com/yuin/gopher-lua"

	"github.com/dshills/flowscope/internal/event"
	"github.com/dshills/flowscope/internal/flow"
	"github.com/dshills/flowscope/internal/plugin/lua"
	"github.com/dshills/flowscope/internal/reporter"
)

// Lua bundle contract. A bundle's entry point runs once at activation
// in a sandboxed state and declares:
//
//	plugin = { name = "...", version = "...", description = "..." }
//	hooks  = { { hook = "log_write", priority = 10 }, ... }
//
// plus the hook functions it wants called (hook_log_write,
// hook_load_file, ...) and optional lifecycle functions
// (init_pre_script, init_post_script, done). A "scope" module is
// available for diagnostics (scope.log, scope.warn).

// Lua function names for lifecycle callbacks.
const (
	luaInitPreScript  = "init_pre_script"
	luaInitPostScript = "init_post_script"
	luaDone           = "done"
)

// luaHookFn maps a hook type to the bundle function it dispatches to.
func luaHookFn(h HookType) string {
	switch h {
	case HookMetaPre:
		return "meta_hook_pre"
	case HookMetaPost:
		return "meta_hook_post"
	default:
		return "hook_" + h.String()
	}
}

// LuaPlugin adapts a loaded bundle to the Plugin interface and every
// hook callback interface. Hook functions the bundle does not define
// answer with the hook's neutral result.
type LuaPlugin struct {
	manifest *Manifest
	rep      *reporter.Reporter

	state  *lua.State
	bridge *lua.Bridge

	meta       Meta
	components []*Component
	requests   []HookRequest

	// Functions the bundle defined, checked once at load time.
	defined map[string]bool
}

// newLuaPlugin executes the bundle's entry point and reads its
// declarations.
func newLuaPlugin(manifest *Manifest, rep *reporter.Reporter) (*LuaPlugin, error) {
	if manifest == nil {
		return nil, ErrNilManifest
	}

	lp := &LuaPlugin{
		manifest: manifest,
		rep:      rep,
		state:    lua.NewState(),
		defined:  make(map[string]bool),
	}
	lp.bridge = lua.NewBridge(lp.state.LuaState())

	lp.installHostModule()

	if err := lp.state.DoFile(manifest.MainPath()); err != nil {
		lp.state.Close()
		return nil, fmt.Errorf("failed to load bundle: %w", err)
	}

	if err := lp.readDeclarations(); err != nil {
		lp.state.Close()
		return nil, err
	}

	return lp, nil
}

// installHostModule exposes the "scope" diagnostics module to the
// bundle.
func (lp *LuaPlugin) installHostModule() {
	lp.state.RegisterModule("scope", map[string]glua.LGFunction{
		"log": func(L *glua.LState) int {
			lp.rep.Info("[%s] %s", lp.manifest.Name, L.CheckString(1))
			return 0
		},
		"warn": func(L *glua.LState) int {
			lp.rep.Warning("[%s] %s", lp.manifest.Name, L.CheckString(1))
			return 0
		},
	})
}

// readDeclarations pulls the bundle's plugin, hooks, and components
// globals into Go form.
func (lp *LuaPlugin) readDeclarations() error {
	lp.meta = Meta{
		Name:        lp.manifest.Name,
		Version:     lp.manifest.Version,
		Description: lp.manifest.Description,
		Dynamic:     true,
	}

	// The plugin table may refine the manifest identity.
	if tbl, ok := lp.bridge.ToGoValue(lp.state.GetGlobal("plugin")).(map[string]any); ok {
		if v, ok := tbl["version"].(string); ok && v != "" {
			lp.meta.Version = v
		}
		if d, ok := tbl["description"].(string); ok && d != "" {
			lp.meta.Description = d
		}
	}

	for _, c := range lp.manifest.Components {
		kind, _ := KindFromString(c.Kind) // validated with the manifest
		lp.components = append(lp.components, NewComponent(kind, c.Name))
	}

	if hooks, ok := lp.bridge.ToGoValue(lp.state.GetGlobal("hooks")).([]any); ok {
		for _, h := range hooks {
			entry, ok := h.(map[string]any)
			if !ok {
				return fmt.Errorf("%s: malformed hooks entry", lp.manifest.Name)
			}
			name, _ := entry["hook"].(string)
			ht, ok := HookTypeFromString(name)
			if !ok {
				return fmt.Errorf("%w: %q", ErrUnknownHook, name)
			}
			prio := 0
			if p, ok := entry["priority"].(int64); ok {
				prio = int(p)
			}
			lp.requests = append(lp.requests, HookRequest{Hook: ht, Priority: prio})
		}
	}

	// Remember which callbacks exist so dispatch can skip the rest.
	for h := HookType(0); h < numHookTypes; h++ {
		fn := luaHookFn(h)
		lp.defined[fn] = lp.state.HasFunction(fn)
	}
	for _, fn := range []string{luaInitPreScript, luaInitPostScript, luaDone} {
		lp.defined[fn] = lp.state.HasFunction(fn)
	}

	return nil
}

// Meta implements Plugin.
func (lp *LuaPlugin) Meta() Meta { return lp.meta }

// Components implements Plugin.
func (lp *LuaPlugin) Components() []*Component { return lp.components }

// RequestedHooks implements HookRequester.
func (lp *LuaPlugin) RequestedHooks() []HookRequest { return lp.requests }

// Manifest returns the bundle manifest.
func (lp *LuaPlugin) Manifest() *Manifest { return lp.manifest }

// InitPreScript implements Plugin.
func (lp *LuaPlugin) InitPreScript() error {
	return lp.callLifecycle(luaInitPreScript)
}

// InitPostScript implements Plugin.
func (lp *LuaPlugin) InitPostScript() error {
	return lp.callLifecycle(luaInitPostScript)
}

// Done implements Plugin. The Lua state is released afterward.
func (lp *LuaPlugin) Done() {
	if err := lp.callLifecycle(luaDone); err != nil {
		lp.rep.Error("plugin %s: done failed: %v", lp.meta.Name, err)
	}
	lp.state.Close()
}

func (lp *LuaPlugin) callLifecycle(fn string) error {
	if !lp.defined[fn] {
		return nil
	}
	_, err := lp.state.Call(fn)
	return err
}

// call invokes a bundle hook function, reporting runtime errors.
// Returns nil results when the function is undefined or failed.
func (lp *LuaPlugin) call(fn string, args ...glua.LValue) []glua.LValue {
	if !lp.defined[fn] {
		return nil
	}
	results, err := lp.state.Call(fn, args...)
	if err != nil {
		lp.rep.Error("plugin %s: %s failed: %v", lp.meta.Name, fn, err)
		return nil
	}
	return results
}

// HookLoadFile implements FileLoader. The bundle returns true for
// handled, false for handled-but-failed, nothing for not interested.
func (lp *LuaPlugin) HookLoadFile(ty LoadType, file, resolved string) LoadResult {
	results := lp.call(luaHookFn(HookLoadFile),
		glua.LNumber(ty), glua.LString(file), glua.LString(resolved))
	if len(results) == 0 || results[0] == glua.LNil {
		return LoadSkipped
	}
	if glua.LVAsBool(results[0]) {
		return LoadHandled
	}
	return LoadFailed
}

// HookCallFunction implements FunctionCaller. A non-nil first return
// value means the bundle handled the call; a second boolean return
// can force handled with a nil result.
func (lp *LuaPlugin) HookCallFunction(name string, fnArgs []any) (any, bool) {
	results := lp.call(luaHookFn(HookCallFunction),
		glua.LString(name), lp.bridge.ToLuaValue(fnArgs))
	if len(results) == 0 {
		return nil, false
	}
	result := lp.bridge.ToGoValue(results[0])
	handled := result != nil
	if len(results) > 1 {
		handled = glua.LVAsBool(results[1])
	}
	return result, handled
}

// HookQueueEvent implements EventQueuer.
func (lp *LuaPlugin) HookQueueEvent(ev *event.Event) bool {
	results := lp.call(luaHookFn(HookQueueEvent),
		glua.LString(ev.Name), lp.bridge.ToLuaValue(ev.Args))
	return len(results) > 0 && glua.LVAsBool(results[0])
}

// HookUpdateNetworkTime implements TimeUpdater. Time is passed as
// Unix seconds with fractional part.
func (lp *LuaPlugin) HookUpdateNetworkTime(t time.Time) {
	lp.call(luaHookFn(HookUpdateNetworkTime),
		glua.LNumber(float64(t.UnixNano())/1e9))
}

// HookSetupAnalyzerTree implements TreeBuilder. The bundle receives a
// connection description and may return analyzer names to attach.
func (lp *LuaPlugin) HookSetupAnalyzerTree(conn *flow.Connection) {
	desc := map[string]any{
		"proto":     conn.Proto,
		"orig_addr": conn.Orig.Addr,
		"orig_port": conn.Orig.Port,
		"resp_addr": conn.Resp.Addr,
		"resp_port": conn.Resp.Port,
	}
	results := lp.call(luaHookFn(HookSetupAnalyzerTree), lp.bridge.ToLuaValue(desc))
	if len(results) == 0 {
		return
	}
	if names, ok := lp.bridge.ToGoValue(results[0]).([]any); ok {
		for _, n := range names {
			if s, ok := n.(string); ok {
				conn.Tree().Add(s)
			}
		}
	}
}

// HookDrainEvents implements EventDrainer.
func (lp *LuaPlugin) HookDrainEvents() {
	lp.call(luaHookFn(HookDrainEvents))
}

// HookObjDtor implements ObjDtor.
func (lp *LuaPlugin) HookObjDtor(obj any) {
	lp.call(luaHookFn(HookObjDtor), lp.bridge.ToLuaValue(obj))
}

// HookLogInit implements LogIniter.
func (lp *LuaPlugin) HookLogInit(info *WriterInfo) {
	lp.call(luaHookFn(HookLogInit),
		glua.LString(info.Writer), glua.LString(info.Filter),
		glua.LBool(info.Local), glua.LBool(info.Remote),
		lp.bridge.ToLuaValue(info.Fields))
}

// HookLogWrite implements LogWriter. Returning false vetoes the
// line; returning a table replaces the record's values.
func (lp *LuaPlugin) HookLogWrite(writer, filter string, rec *LogRecord) bool {
	results := lp.call(luaHookFn(HookLogWrite),
		glua.LString(writer), glua.LString(filter),
		lp.bridge.ToLuaValue(rec.Values))
	if len(results) == 0 || results[0] == glua.LNil {
		return true
	}
	if vals, ok := lp.bridge.ToGoValue(results[0]).([]any); ok {
		replaced := make([]string, 0, len(vals))
		for _, v := range vals {
			replaced = append(replaced, fmt.Sprint(v))
		}
		rec.Values = replaced
		return true
	}
	return glua.LVAsBool(results[0])
}

// HookReporter implements Reporter.
func (lp *LuaPlugin) HookReporter(prefix, eventName, message string) bool {
	results := lp.call(luaHookFn(HookReporter),
		glua.LString(prefix), glua.LString(eventName), glua.LString(message))
	if len(results) == 0 || results[0] == glua.LNil {
		return true
	}
	return glua.LVAsBool(results[0])
}

// MetaHookPre implements MetaHooker.
func (lp *LuaPlugin) MetaHookPre(hook HookType, args []HookArgument) {
	lp.call(luaHookFn(HookMetaPre),
		glua.LString(hook.String()), glua.LNumber(len(args)))
}

// MetaHookPost implements MetaHooker.
func (lp *LuaPlugin) MetaHookPost(hook HookType, args []HookArgument, result HookArgument) {
	lp.call(luaHookFn(HookMetaPost),
		glua.LString(hook.String()), glua.LNumber(len(args)),
		lp.bridge.ToLuaValue(result))
}
