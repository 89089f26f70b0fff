package core

import (
	"context"
	"fmt"

	"scriptweaver/internal/value"
)

// InputTask is the graph's boundary with the outside world: it has no
// inputs of its own and no working directory to chdir into. Each of its
// outputs is either a literal value fixed at construction or a reference to
// a file that already exists somewhere on disk (the file is never copied
// into a per-task directory, since InputTask does not own one).
type InputTask struct {
	base
}

// NewInputTask registers a new InputTask under reg. Unlike Task, an
// InputTask has no working directory: its output files are referenced at
// their original, caller-supplied path.
func NewInputTask(reg *Registry, module, className string) *InputTask {
	t := &InputTask{base: newBase(reg, module, className)}
	reg.Register(t)
	return t
}

// AddOutput declares one more output connector on this input task. filename,
// when non-empty, is treated as an absolute or caller-relative path rather
// than a path relative to a working directory InputTask does not have.
func (t *InputTask) AddOutput(kind Kind, v value.Value, filename, name string) *Connector {
	c := newOutputConnector(t, kind, v, filename, name, len(t.outputs))
	t.outputs = append(t.outputs, c)
	return c
}

// Run marks the task ready. There is no Body to invoke and no working
// directory to enter: an InputTask's value was either fixed at
// construction or refers to a file the caller is responsible for having
// already written.
//
// The Running/Up-to-date log line mirrors Task's, but judges staleness by
// its own outputs rather than inputs it doesn't have: a changed output
// (e.g. a source file edited since the last save) is logged as Running
// even though there is no Body to rerun.
func (t *InputTask) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	changed, err := t.outputsChanged()
	if err != nil {
		return err
	}
	if changed {
		t.registry.Logger().Info(fmt.Sprintf("Running: %s", t.Key()))
	} else {
		t.registry.Logger().Info(fmt.Sprintf("Up-to-date: %s", t.Key()))
	}
	t.ready = true
	return nil
}

func (t *InputTask) outputsChanged() (bool, error) {
	for _, op := range t.outputs {
		changed, err := op.Changed()
		if err != nil {
			return false, err
		}
		if changed {
			return true, nil
		}
	}
	return false, nil
}

// SetChecksums installs previously recorded digests onto this task's own
// outputs, in declaration order, as part of reconstructing a Registry from
// a saved manifest.
func (t *InputTask) SetChecksums(checksums []string) {
	for i, op := range t.outputs {
		if i >= len(checksums) {
			return
		}
		op.setChecksum(checksums[i])
	}
}

// checksumOutputs refreshes the cached digest of every FileConnector
// output, reading directly from Connector.FullFilename: since InputTask has
// no working directory, WorkingDir() is "" and FullFilename resolves to the
// caller-supplied filename unchanged.
func (t *InputTask) checksumOutputs() error {
	for _, op := range t.outputs {
		if err := op.ReadChecksum(); err != nil {
			return err
		}
	}
	return nil
}

// AsDict refreshes this task's output checksums and returns its manifest
// record. Each output is tagged as a Source record rather than a
// Connector reference, since an InputTask IS the source of truth for its
// values.
func (t *InputTask) AsDict() (UnitRecord, error) {
	if err := t.checksumOutputs(); err != nil {
		return UnitRecord{}, fmt.Errorf("input task %q: %w", t.Key(), err)
	}
	inputs := make([]InputRecord, len(t.outputs))
	for i, op := range t.outputs {
		inputs[i] = outputToSourceRecord(op)
	}
	return UnitRecord{Module: t.module, Class: t.className, Inputs: inputs}, nil
}
