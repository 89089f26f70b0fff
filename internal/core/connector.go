package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"scriptweaver/internal/hashutil"
	"scriptweaver/internal/value"
)

// Kind fixes a Connector's endpoint type at construction.
//
// Invariant: Kind == FileConnector iff Filename is non-empty.
type Kind int

const (
	// ValueConnector carries an opaque Value.
	ValueConnector Kind = iota
	// FileConnector identifies a file inside its parent's working directory.
	FileConnector
)

// Unit is the capability a Connector's parent must provide: something that
// can be run, that owns a working directory, that reports readiness, and
// that belongs to a Registry. Task and InputTask both implement Unit.
type Unit interface {
	Key() string
	WorkingDir() string
	Ready() bool
	Registry() *Registry
	Run(ctx context.Context) error
}

// Connector is a directed endpoint bound to a producing Unit.
//
// parent never changes after construction. A Connector is owned exclusively
// by its parent's outputs slice; when referenced as another task's input it
// is a non-owning reference.
type Connector struct {
	parent       Unit
	kind         Kind
	val          value.Value
	filename     string
	name         string
	key          int
	checksum     string
	hasChecksum  bool
	valueChanged bool
}

// newOutputConnector constructs a Connector owned by parent, positioned at
// the given ordinal key in parent's output list.
func newOutputConnector(parent Unit, kind Kind, v value.Value, filename, name string, key int) *Connector {
	return &Connector{
		parent:   parent,
		kind:     kind,
		val:      v,
		filename: filename,
		name:     name,
		key:      key,
	}
}

// Parent returns the Unit that produces this connector.
func (c *Connector) Parent() Unit { return c.parent }

// Kind reports whether this is a ValueConnector or FileConnector.
func (c *Connector) Kind() Kind { return c.kind }

// Key returns this connector's ordinal position in its parent's output list.
func (c *Connector) Key() int { return c.key }

// Filename returns the relative filename for a FileConnector, or "".
func (c *Connector) Filename() string { return c.filename }

// Name is a human-readable label: the explicit name if one was given,
// otherwise the filename's stem (everything before the first '.').
func (c *Connector) Name() string {
	if c.name != "" {
		return c.name
	}
	if c.filename == "" {
		return ""
	}
	if idx := strings.Index(c.filename, "."); idx >= 0 {
		return c.filename[:idx]
	}
	return c.filename
}

// Value returns the connector's current Value. Meaningful for
// ValueConnectors; FileConnectors always report value.Unset.
func (c *Connector) Value() value.Value { return c.val }

// SetValue assigns v and marks the connector changed. Only meaningful for
// ValueConnectors.
func (c *Connector) SetValue(v value.Value) {
	c.valueChanged = true
	c.val = v
}

// Checksum returns the cached digest from the last ReadChecksum, or ("",
// false) if none has ever been recorded.
func (c *Connector) Checksum() (string, bool) { return c.checksum, c.hasChecksum }

// setChecksum installs a checksum without recomputing it — used when
// reconstructing a Registry from a manifest.
func (c *Connector) setChecksum(sum string) {
	if sum == "" {
		c.hasChecksum = false
		c.checksum = ""
		return
	}
	c.checksum = sum
	c.hasChecksum = true
}

// FullFilename is parent.WorkingDir()/Filename — where the connector's file
// lives on disk. Only meaningful for FileConnector.
func (c *Connector) FullFilename() string {
	return filepath.Join(c.parent.WorkingDir(), c.filename)
}

// Complete reports whether this connector is satisfied: for a
// ValueConnector, whether its value has ever been assigned; for a
// FileConnector, whether its file exists on disk and has not changed.
func (c *Connector) Complete() (bool, error) {
	if c.kind == FileConnector {
		changed, err := c.Changed()
		if err != nil {
			return false, err
		}
		return fileExists(c.FullFilename()) && !changed, nil
	}
	return !c.val.IsUnset(), nil
}

// Changed reports whether this connector's content differs from the last
// recorded checksum (FileConnector) or whether its value has been assigned
// since construction or reload (ValueConnector).
//
// For a FileConnector: if the registry's skip-checksums flag is set,
// Changed always reports false. Otherwise it reports true if no checksum
// has ever been recorded, or if a fresh digest differs from the cached one.
// A missing file is surfaced as changed=true via the hashing error, never
// silently treated as unchanged.
func (c *Connector) Changed() (bool, error) {
	if c.kind == FileConnector {
		if c.parent.Registry().SkipChecksums() {
			return false, nil
		}
		if !c.hasChecksum {
			return true, nil
		}
		fresh, err := c.parent.Registry().Hasher().Sum(c.FullFilename())
		if err != nil {
			var io *hashutil.IoFailure
			if errors.As(err, &io) {
				return true, nil
			}
			return false, err
		}
		return fresh != c.checksum, nil
	}
	return c.valueChanged, nil
}

// ReadChecksum recomputes and caches the current on-disk digest. A no-op for
// ValueConnectors.
func (c *Connector) ReadChecksum() error {
	if c.kind != FileConnector {
		return nil
	}
	sum, err := c.parent.Registry().Hasher().Sum(c.FullFilename())
	if err != nil {
		return err
	}
	c.checksum = sum
	c.hasChecksum = true
	return nil
}

// ConnectorRecord is the serializable form of a Connector as it appears in
// an ordinary Task's input list.
type ConnectorRecord struct {
	Type     string      `json:"type"`
	Parent   string      `json:"parent"`
	Key      int         `json:"key"`
	Checksum *string     `json:"checksum"`
	Filename *string     `json:"filename"`
	Value    value.Value `json:"value"`
}

// AsDict emits this connector as a Connector-tagged manifest record.
func (c *Connector) AsDict() ConnectorRecord {
	rec := ConnectorRecord{
		Type:  "Connector",
		Parent: c.parent.Key(),
		Key:   c.key,
		Value: c.val,
	}
	if c.filename != "" {
		f := c.filename
		rec.Filename = &f
	}
	if c.hasChecksum {
		cs := c.checksum
		rec.Checksum = &cs
	}
	return rec
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
