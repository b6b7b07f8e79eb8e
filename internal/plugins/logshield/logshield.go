// Package logshield is a compiled-in plugin that scrubs sensitive
// values out of log writes. It registers itself from init(); linking
// the package into the host binary is all it takes to activate it.
package logshield

import (
	"strings"

	"github.com/dshills/flowscope/internal/plugin"
)

// Name is the plugin identifier.
const Name = "logshield"

// redacted replaces a matched value in the written record.
const redacted = "<redacted>"

// defaultMarkers flag a value for redaction when present as a
// substring, case-insensitive.
var defaultMarkers = []string{"password", "secret", "authorization", "api_key"}

// Shield filters log writes, replacing values that look like
// credentials. It never vetoes a line; records pass through with the
// sensitive values masked.
type Shield struct {
	plugin.Base

	markers []string
}

func init() {
	s := New(defaultMarkers...)
	plugin.RegisterPlugin(s)
	plugin.RegisterBifFile(Name, func(p plugin.Plugin) error {
		// The marker set is fixed at registration; nothing to resolve
		// at bif time yet.
		return nil
	})
}

// New creates a shield matching the given markers.
func New(markers ...string) *Shield {
	lowered := make([]string, len(markers))
	for i, m := range markers {
		lowered[i] = strings.ToLower(m)
	}
	return &Shield{
		Base: plugin.Base{
			MetaInfo: plugin.Meta{
				Name:        Name,
				Version:     "1.0.0",
				Description: "Masks credential-like values in log output",
			},
			Contrib: []*plugin.Component{
				plugin.NewComponent(plugin.KindWriter, "shielded"),
			},
		},
		markers: lowered,
	}
}

// RequestedHooks declares the write filter at a high priority so the
// shield runs before other filters see the values.
func (s *Shield) RequestedHooks() []plugin.HookRequest {
	return []plugin.HookRequest{
		{Hook: plugin.HookLogWrite, Priority: 100},
	}
}

// HookLogWrite masks sensitive values in place and lets the line
// through.
func (s *Shield) HookLogWrite(writer, filter string, rec *plugin.LogRecord) bool {
	for i, v := range rec.Values {
		if s.sensitive(v) || s.sensitiveField(rec, i) {
			rec.Values[i] = redacted
		}
	}
	return true
}

// sensitive reports whether a value itself carries a marker.
func (s *Shield) sensitive(v string) bool {
	lowered := strings.ToLower(v)
	for _, m := range s.markers {
		if strings.Contains(lowered, m) {
			return true
		}
	}
	return false
}

// sensitiveField reports whether the field name for position i carries
// a marker, e.g. a field literally named "password".
func (s *Shield) sensitiveField(rec *plugin.LogRecord, i int) bool {
	if i >= len(rec.Fields) {
		return false
	}
	return s.sensitive(rec.Fields[i])
}
