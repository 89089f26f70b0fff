package manifest

import (
	"sort"

	"scriptweaver/internal/core"
)

// Constructor rebuilds one Unit from its manifest-recorded constructor
// arguments, in the exact positional order AddInput/AddOutput calls were
// originally made in. args elements are either a raw value.Value payload
// (for a literal Source), a string (for a Source that recorded a
// filename), or a *core.Connector (for a reference to another unit's
// output) — the constructor is responsible for asserting the shape it
// expects for its own arity.
type Constructor func(reg *core.Registry, args []any) (core.Unit, error)

// ClassResolver maps a manifest unit record's (module, class) pair back to
// the constructor that built it. Callers supply one so the manifest
// package never needs a registry of every concrete task type compiled into
// the binary it happens to be linked into.
type ClassResolver interface {
	Resolve(module, class string) (Constructor, bool)
	ClassNames() []string
}

// MapResolver is a ClassResolver backed by an explicit, caller-populated
// table. It is the obvious resolver for a CLI that knows its own fixed set
// of task classes at compile time.
type MapResolver struct {
	byKey map[string]Constructor
	names []string
}

// NewMapResolver returns an empty MapResolver.
func NewMapResolver() *MapResolver {
	return &MapResolver{byKey: make(map[string]Constructor)}
}

// Register associates (module, class) with ctor. Registering the same pair
// twice overwrites the earlier constructor.
func (m *MapResolver) Register(module, class string, ctor Constructor) {
	key := resolverKey(module, class)
	if _, exists := m.byKey[key]; !exists {
		m.names = append(m.names, class)
	}
	m.byKey[key] = ctor
}

// Resolve looks up the constructor registered for (module, class).
func (m *MapResolver) Resolve(module, class string) (Constructor, bool) {
	ctor, ok := m.byKey[resolverKey(module, class)]
	return ctor, ok
}

// ClassNames returns every class name registered, for fuzzy "did you mean"
// suggestions. Order is sorted for deterministic error messages.
func (m *MapResolver) ClassNames() []string {
	out := append([]string(nil), m.names...)
	sort.Strings(out)
	return out
}

func resolverKey(module, class string) string { return module + "\x00" + class }
