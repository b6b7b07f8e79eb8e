package logshield

import (
	"testing"

	"github.com/dshills/flowscope/internal/plugin"
)

func TestShieldMasksMarkedValues(t *testing.T) {
	s := New("secret", "password")

	rec := &plugin.LogRecord{
		Fields: []string{"user", "note"},
		Values: []string{"alice", "my Secret handshake"},
	}
	if !s.HookLogWrite("ascii", "default", rec) {
		t.Fatal("shield vetoed the line instead of masking it")
	}
	if rec.Values[0] != "alice" {
		t.Errorf("clean value was masked: %q", rec.Values[0])
	}
	if rec.Values[1] != "<redacted>" {
		t.Errorf("marked value survived: %q", rec.Values[1])
	}
}

func TestShieldMasksByFieldName(t *testing.T) {
	s := New("password")

	rec := &plugin.LogRecord{
		Fields: []string{"password", "host"},
		Values: []string{"hunter2", "db.internal"},
	}
	s.HookLogWrite("ascii", "default", rec)
	if rec.Values[0] != "<redacted>" {
		t.Errorf("value under a sensitive field survived: %q", rec.Values[0])
	}
	if rec.Values[1] != "db.internal" {
		t.Errorf("clean value was masked: %q", rec.Values[1])
	}
}

func TestShieldPassesCleanRecords(t *testing.T) {
	s := New(defaultMarkers...)

	rec := &plugin.LogRecord{
		Fields: []string{"ts", "uid", "msg"},
		Values: []string{"1700000000.0", "CHhAvVGS1", "connection established"},
	}
	if !s.HookLogWrite("ascii", "conn", rec) {
		t.Fatal("clean record was vetoed")
	}
	for i, v := range rec.Values {
		if v == "<redacted>" {
			t.Errorf("Values[%d] was masked in a clean record", i)
		}
	}
}

func TestShieldDeclaresWriteFilter(t *testing.T) {
	s := New()

	reqs := s.RequestedHooks()
	if len(reqs) != 1 || reqs[0].Hook != plugin.HookLogWrite {
		t.Fatalf("RequestedHooks() = %v, want the log write filter", reqs)
	}
	if reqs[0].Priority <= 0 {
		t.Errorf("shield priority = %d, want it ahead of default filters", reqs[0].Priority)
	}

	comps := s.Components()
	if len(comps) != 1 || comps[0].Kind() != plugin.KindWriter {
		t.Errorf("Components() = %v, want one writer", comps)
	}
}
