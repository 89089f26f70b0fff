package core

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"scriptweaver/internal/hashutil"
)

// Registry is the process-scoped table of every constructed Unit and the
// shared run state: the working-directory root, the skip-checksums flag,
// the monotonic id counter, and the default root node.
//
// Unlike the source's process-wide singleton, Registry is an explicit value:
// callers construct one per process (or one per test) and pass it to every
// Task/InputTask constructor and to Run/Load. There is no shared global
// state between independently constructed Registries.
type Registry struct {
	workingDir    string
	skipChecksums bool
	logger        *slog.Logger
	hasher        *hashutil.Hasher

	nextID   int
	units    map[string]Unit
	order    []string
	rootNode Unit
}

// Options configures a new Registry. WorkingDir, if empty, is replaced with
// a freshly created OS temp directory named after a UUID so it remains
// traceable in logs.
type Options struct {
	WorkingDir    string
	SkipChecksums bool
	Logger        *slog.Logger
}

// NewRegistry constructs an empty Registry. Construction is not idempotent
// in the sense the source's singleton was: every call returns an
// independent Registry, which is what lets tests build one per case.
func NewRegistry(opts Options) (*Registry, error) {
	wd := opts.WorkingDir
	if wd == "" {
		base, err := os.MkdirTemp("", "scriptweaver-"+uuid.NewString()+"-")
		if err != nil {
			return nil, fmt.Errorf("creating working directory: %w", err)
		}
		wd = base
	} else if err := os.MkdirAll(wd, 0o755); err != nil {
		return nil, fmt.Errorf("creating working directory %q: %w", wd, err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	return &Registry{
		workingDir:    wd,
		skipChecksums: opts.SkipChecksums,
		logger:        logger,
		hasher:        hashutil.New(),
		units:         make(map[string]Unit),
	}, nil
}

// WorkingDir is the shared root under which every task gets its own
// subdirectory.
func (r *Registry) WorkingDir() string { return r.workingDir }

// SkipChecksums reports whether FileConnector change detection is disabled.
func (r *Registry) SkipChecksums() bool { return r.skipChecksums }

// Logger is the structured logger threaded through every Unit's Run.
func (r *Registry) Logger() *slog.Logger { return r.logger }

// Hasher is the shared content-digest computer.
func (r *Registry) Hasher() *hashutil.Hasher { return r.hasher }

// NextID returns the next process-unique ordinal, starting at 1.
func (r *Registry) NextID() int {
	r.nextID++
	return r.nextID
}

// UnitID returns the current value of the id counter, for manifest
// persistence.
func (r *Registry) UnitID() int { return r.nextID }

// Register inserts unit under its own key and unconditionally makes it the
// new root node.
//
// This mirrors the source's behavior of re-assigning root_node on every
// registration: Run() with no explicit node therefore runs whichever task
// was constructed most recently, not a user-declared terminal. This is
// preserved for compatibility rather than treated as a defect — callers
// that want a stable root should pass it explicitly to Run.
func (r *Registry) Register(unit Unit) {
	if _, seen := r.units[unit.Key()]; !seen {
		r.order = append(r.order, unit.Key())
	}
	r.units[unit.Key()] = unit
	r.rootNode = unit
}

// Unit looks up a previously registered unit by key. Returns
// *UnknownTaskKeyError if no such key was ever registered.
func (r *Registry) Unit(key string) (Unit, error) {
	u, ok := r.units[key]
	if !ok {
		return nil, &UnknownTaskKeyError{Key: key}
	}
	return u, nil
}

// Units returns every registered unit in registration order.
func (r *Registry) Units() []Unit {
	out := make([]Unit, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.units[key])
	}
	return out
}

// RootNode is the most recently registered unit, or the unit most recently
// set via SetRoot.
func (r *Registry) RootNode() Unit { return r.rootNode }

// SetRoot overrides the root node without affecting registration.
func (r *Registry) SetRoot(unit Unit) { r.rootNode = unit }

// WorkingDirFor returns <registry.WorkingDir()>/<key>, the per-task
// directory every Task (but not InputTask) is confined to.
func (r *Registry) WorkingDirFor(key string) string {
	return filepath.Join(r.workingDir, key)
}
