package plugin

import "testing"

func TestHookTypeStringRoundTrip(t *testing.T) {
	for h := HookType(0); h < numHookTypes; h++ {
		got, ok := HookTypeFromString(h.String())
		if !ok || got != h {
			t.Errorf("HookTypeFromString(%q) = (%v, %v), want (%v, true)", h.String(), got, ok, h)
		}
	}
	if _, ok := HookTypeFromString("no_such_hook"); ok {
		t.Error("HookTypeFromString accepted an unknown name")
	}
}

func TestHookTableOrdering(t *testing.T) {
	var tbl hookTable
	a := newTestPlugin("a", nil)
	b := newTestPlugin("b", nil)
	c := newTestPlugin("c", nil)

	tbl.insert(HookLogWrite, a, 5)
	tbl.insert(HookLogWrite, b, 10)
	tbl.insert(HookLogWrite, c, 1)

	entries := tbl.entries(HookLogWrite)
	wantNames := []string{"b", "a", "c"}
	if len(entries) != 3 {
		t.Fatalf("entries has %d items, want 3", len(entries))
	}
	for i, e := range entries {
		if e.plugin.Meta().Name != wantNames[i] {
			t.Errorf("entries[%d] = %s, want %s", i, e.plugin.Meta().Name, wantNames[i])
		}
	}
}

func TestHookTableEqualPriorityKeepsInsertionOrder(t *testing.T) {
	var tbl hookTable
	names := []string{"w", "x", "y", "z"}
	for _, n := range names {
		tbl.insert(HookReporter, newTestPlugin(n, nil), 4)
	}

	entries := tbl.entries(HookReporter)
	for i, e := range entries {
		if e.plugin.Meta().Name != names[i] {
			t.Fatalf("entries[%d] = %s, want %s", i, e.plugin.Meta().Name, names[i])
		}
	}
}

func TestHookTableNilAfterLastRemove(t *testing.T) {
	var tbl hookTable
	p := newTestPlugin("p", nil)

	if tbl.have(HookQueueEvent) {
		t.Fatal("have() true on empty table")
	}
	tbl.insert(HookQueueEvent, p, 0)
	if !tbl.have(HookQueueEvent) {
		t.Fatal("have() false after insert")
	}
	if !tbl.remove(HookQueueEvent, p) {
		t.Fatal("remove() did not find the registration")
	}
	if tbl.have(HookQueueEvent) {
		t.Fatal("have() true after last remove")
	}
	if tbl.remove(HookQueueEvent, p) {
		t.Error("remove() succeeded twice")
	}
}

func TestHookTableNegativePriority(t *testing.T) {
	var tbl hookTable
	late := newTestPlugin("late", nil)
	normal := newTestPlugin("normal", nil)

	tbl.insert(HookLoadFile, late, -10)
	tbl.insert(HookLoadFile, normal, 0)

	entries := tbl.entries(HookLoadFile)
	if entries[0].plugin.Meta().Name != "normal" {
		t.Errorf("priority 0 should dispatch before priority -10")
	}
}
