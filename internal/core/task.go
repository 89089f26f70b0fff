package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"scriptweaver/internal/value"
)

// Body is the user-supplied work function for a Task. It receives the task
// itself so it can read inputs, assign output values, and write output
// files into t.WorkingDir(). A Body is invoked at most once per Run, and
// only when the task is not already up to date.
type Body func(t *Task) error

// Task is an ordinary node in the execution graph: it consumes other
// units' output Connectors as inputs, runs inside its own working
// directory, and produces its own output Connectors.
//
// Construction is a builder sequence: NewTask, then zero or more AddInput
// and AddOutput calls, matching the positional order a manifest constructor
// must replay on reload.
type Task struct {
	base

	inputs []*Connector
	ipMap  map[*Connector]string
	body   Body
}

// NewTask registers a new Task under reg, assigning it the next ordinal id
// and a working directory of reg.WorkingDir()/<key>. module and className
// together identify the constructor a manifest reload must look up to
// rebuild this task.
func NewTask(reg *Registry, module, className string, body Body) *Task {
	t := &Task{
		base:  newBase(reg, module, className),
		ipMap: make(map[*Connector]string),
		body:  body,
	}
	t.workingDir = reg.WorkingDirFor(t.Key())
	reg.Register(t)
	return t
}

// AddInput declares that this task consumes producer's connector. For a
// FileConnector, localName is the filename this task will find the staged
// copy under inside its own working directory; it is ignored for
// ValueConnectors.
func (t *Task) AddInput(c *Connector, localName string) *Connector {
	t.inputs = append(t.inputs, c)
	if c.Kind() == FileConnector {
		t.ipMap[c] = localName
	}
	return c
}

// AddOutput declares a new output connector this task will produce. Pass
// value.Unset for a FileConnector's value and "" for a ValueConnector's
// filename.
func (t *Task) AddOutput(kind Kind, v value.Value, filename, name string) *Connector {
	c := newOutputConnector(t, kind, v, filename, name, len(t.outputs))
	t.outputs = append(t.outputs, c)
	return c
}

// Inputs returns every input connector this task consumes, in declaration
// order.
func (t *Task) Inputs() []*Connector { return t.inputs }

// Run readies every input (recursively running producers that are not yet
// ready), stages file inputs into this task's working directory, decides
// whether the task is already up to date, and — if not — invokes Body with
// the current directory changed to this task's working directory for the
// duration of the call.
func (t *Task) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(t.workingDir, 0o755); err != nil {
		return fmt.Errorf("task %q: creating working directory: %w", t.Key(), err)
	}

	if err := t.readyInputs(ctx); err != nil {
		return err
	}

	complete, err := t.isComplete()
	if err != nil {
		return err
	}
	changed, err := t.inputsChanged()
	if err != nil {
		return err
	}

	if !complete || changed {
		t.registry.Logger().Info(fmt.Sprintf("Running: %s", t.Key()))
		if t.body != nil {
			if err := t.runBodyInWorkingDir(); err != nil {
				return &TaskBodyFailureError{Key: t.Key(), Err: err}
			}
		}
	} else {
		t.registry.Logger().Info(fmt.Sprintf("Up-to-date: %s", t.Key()))
	}

	t.ready = true
	return nil
}

// runBodyInWorkingDir changes into this task's working directory, invokes
// Body, and restores the previous working directory on every exit path —
// including a panicking Body — before returning.
func (t *Task) runBodyInWorkingDir() (err error) {
	restore, cdErr := chdir(t.workingDir)
	if cdErr != nil {
		return cdErr
	}
	defer restore()
	return t.body(t)
}

// readyInputs runs any producer that is not yet ready, then stages every
// FileConnector input into this task's working directory under its
// declared local name.
func (t *Task) readyInputs(ctx context.Context) error {
	for _, ip := range t.inputs {
		if !ip.Parent().Ready() {
			if err := ip.Parent().Run(ctx); err != nil {
				return err
			}
		}
		if ip.Kind() != FileConnector {
			continue
		}
		local, ok := t.ipMap[ip]
		if !ok || local == "" {
			return fmt.Errorf("task %q: no local staging name recorded for file input %q", t.Key(), ip.Name())
		}
		dest := filepath.Join(t.workingDir, local)
		if err := copyFile(ip.FullFilename(), dest); err != nil {
			return fmt.Errorf("task %q: staging input %q: %w", t.Key(), ip.Name(), err)
		}
		size := "unknown size"
		if info, statErr := os.Stat(dest); statErr == nil {
			size = humanize.Bytes(uint64(info.Size()))
		}
		t.registry.Logger().Debug(fmt.Sprintf("Copying %s to %s (%s)", ip.FullFilename(), dest, size))
	}
	return nil
}

// isComplete reports whether every output this task owns is already
// produced. A task with no declared outputs (a side-effect-only task) is
// vacuously complete, matching all([]) == true: it still reruns whenever
// inputsChanged reports true.
func (t *Task) isComplete() (bool, error) {
	for _, op := range t.outputs {
		ok, err := op.Complete()
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// inputsChanged reports whether any input connector has changed since this
// task last ran.
func (t *Task) inputsChanged() (bool, error) {
	for _, ip := range t.inputs {
		changed, err := ip.Changed()
		if err != nil {
			return false, err
		}
		if changed {
			return true, nil
		}
	}
	return false, nil
}

// checksumOutputs refreshes the cached digest of every FileConnector
// output. Called before AsDict so the manifest always reflects the content
// actually on disk.
func (t *Task) checksumOutputs() error {
	for _, op := range t.outputs {
		if err := op.ReadChecksum(); err != nil {
			return err
		}
	}
	return nil
}

// AsDict refreshes this task's output checksums and returns its manifest
// record: the constructor identity plus its inputs, each tagged as a
// reference to a producer's Connector.
func (t *Task) AsDict() (UnitRecord, error) {
	if err := t.checksumOutputs(); err != nil {
		return UnitRecord{}, fmt.Errorf("task %q: %w", t.Key(), err)
	}
	inputs := make([]InputRecord, len(t.inputs))
	for i, ip := range t.inputs {
		inputs[i] = connectorToInputRecord(ip)
	}
	return UnitRecord{Module: t.module, Class: t.className, Inputs: inputs}, nil
}

// SetChecksums installs previously recorded digests onto this task's
// *inputs*, in declaration order, as part of reconstructing a Registry
// from a saved manifest. Since an input connector is the very same
// Connector object owned by its producer's outputs, this also restores the
// producer's own cached checksum — whichever consumer happens to carry it
// in the manifest is sufficient.
func (t *Task) SetChecksums(checksums []string) {
	for i, ip := range t.inputs {
		if i >= len(checksums) {
			return
		}
		ip.setChecksum(checksums[i])
	}
}

// chdir changes the process working directory to dir and returns a
// restore function that must be called, via defer or otherwise, on every
// exit path — including a panicking Body — to put it back.
func chdir(dir string) (func(), error) {
	prev, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("reading current directory: %w", err)
	}
	if err := os.Chdir(dir); err != nil {
		return nil, fmt.Errorf("changing directory to %q: %w", dir, err)
	}
	return func() { _ = os.Chdir(prev) }, nil
}

// copyFile copies src to dst, creating dst's parent directory and
// overwriting any existing file at dst.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
