package core

import "fmt"

// OutputProvider is implemented by both Task and InputTask: anything that
// can be asked for one of its own output connectors by ordinal key. The
// manifest loader uses this to resolve a Connector-tagged input record's
// (parent, key) pair back to the actual shared Connector object.
type OutputProvider interface {
	Output(key int) (*Connector, error)
}

// base holds the fields and promoted methods shared by every concrete Unit
// (Task and InputTask): identity, working directory, readiness, the owning
// Registry, and the slice of output Connectors a unit produces.
type base struct {
	registry   *Registry
	id         int
	module     string
	className  string
	workingDir string
	ready      bool
	outputs    []*Connector
}

func newBase(reg *Registry, module, className string) base {
	return base{
		registry:  reg,
		id:        reg.NextID(),
		module:    module,
		className: className,
	}
}

// Key is the unit's manifest identity: a zero-padded ordinal joined with its
// class name, e.g. "003-CompileTask". Stable across a single process run;
// not guaranteed stable across code changes that reorder construction.
func (b *base) Key() string {
	return fmt.Sprintf("%03d-%s", b.id, b.className)
}

// WorkingDir is the directory this unit is confined to. Empty until the
// embedding type's constructor assigns it.
func (b *base) WorkingDir() string { return b.workingDir }

// Ready reports whether Run has completed (successfully or as a no-op)
// at least once for this unit.
func (b *base) Ready() bool { return b.ready }

// Registry returns the owning Registry.
func (b *base) Registry() *Registry { return b.registry }

// Outputs returns every output Connector this unit owns, in declaration
// order.
func (b *base) Outputs() []*Connector { return b.outputs }

// Output returns the output Connector at the given ordinal key.
func (b *base) Output(key int) (*Connector, error) {
	if key < 0 || key >= len(b.outputs) {
		return nil, fmt.Errorf("task %q: output key %d out of range [0,%d)", b.Key(), key, len(b.outputs))
	}
	return b.outputs[key], nil
}
