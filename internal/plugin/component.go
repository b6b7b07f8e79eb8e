package plugin

// Kind tags a component with its capability from a closed set.
type Kind int

// Component kinds.
const (
	// KindAnalyzer - a protocol analyzer attachable to connections.
	KindAnalyzer Kind = iota

	// KindWriter - a log writer backend.
	KindWriter

	// KindReader - an input reader backend.
	KindReader

	// KindPacketSource - a packet acquisition source.
	KindPacketSource
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindAnalyzer:
		return "analyzer"
	case KindWriter:
		return "writer"
	case KindReader:
		return "reader"
	case KindPacketSource:
		return "packet-source"
	default:
		return "unknown"
	}
}

// KindFromString maps a kind name to its Kind.
// Returns false if the name is not in the closed set.
func KindFromString(s string) (Kind, bool) {
	switch s {
	case "analyzer":
		return KindAnalyzer, true
	case "writer":
		return KindWriter, true
	case "reader":
		return KindReader, true
	case "packet-source":
		return KindPacketSource, true
	default:
		return 0, false
	}
}

// Component is a named capability unit contributed by exactly one
// plugin. The core queries components but never mutates them.
type Component struct {
	kind Kind
	name string
}

// NewComponent creates a component.
func NewComponent(kind Kind, name string) *Component {
	return &Component{kind: kind, name: name}
}

// Kind returns the component's capability kind.
func (c *Component) Kind() Kind { return c.kind }

// Name returns the component name.
func (c *Component) Name() string { return c.name }

// String returns "kind:name".
func (c *Component) String() string {
	return c.kind.String() + ":" + c.name
}
