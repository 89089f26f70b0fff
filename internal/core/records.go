package core

import (
	"encoding/json"
	"fmt"

	"scriptweaver/internal/value"
)

// InputRecord is the serializable form of one entry in a unit's "inputs"
// list. Its wire shape depends on Type:
//
//   - "Connector": {type, parent, key, checksum, filename, value} — an
//     ordinary Task's reference to a producer's output connector.
//   - "Source": {type, filename, value, checksum} — an InputTask's own
//     output, serialized as the graph's ultimate source of truth.
//
// This asymmetry is load-bearing for the manifest protocol: Source records
// carry no parent/key because an InputTask IS the parent.
type InputRecord struct {
	Type     string
	Parent   string
	Key      int
	Checksum *string
	Filename *string
	Value    value.Value
}

type connectorWire struct {
	Type     string      `json:"type"`
	Parent   string      `json:"parent"`
	Key      int         `json:"key"`
	Checksum *string     `json:"checksum"`
	Filename *string     `json:"filename"`
	Value    value.Value `json:"value"`
}

type sourceWire struct {
	Type     string      `json:"type"`
	Filename *string     `json:"filename"`
	Value    value.Value `json:"value"`
	Checksum *string     `json:"checksum"`
}

// MarshalJSON emits the Connector or Source wire shape depending on Type.
func (r InputRecord) MarshalJSON() ([]byte, error) {
	switch r.Type {
	case "Connector":
		return json.Marshal(connectorWire{
			Type: r.Type, Parent: r.Parent, Key: r.Key,
			Checksum: r.Checksum, Filename: r.Filename, Value: r.Value,
		})
	case "Source":
		return json.Marshal(sourceWire{
			Type: r.Type, Filename: r.Filename, Value: r.Value, Checksum: r.Checksum,
		})
	default:
		return nil, fmt.Errorf("input record: unknown type %q", r.Type)
	}
}

// UnmarshalJSON decodes either wire shape based on the "type" discriminator.
func (r *InputRecord) UnmarshalJSON(data []byte) error {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("input record: %w", err)
	}
	switch probe.Type {
	case "Connector":
		var w connectorWire
		if err := json.Unmarshal(data, &w); err != nil {
			return fmt.Errorf("input record (Connector): %w", err)
		}
		*r = InputRecord{Type: w.Type, Parent: w.Parent, Key: w.Key, Checksum: w.Checksum, Filename: w.Filename, Value: w.Value}
	case "Source":
		var w sourceWire
		if err := json.Unmarshal(data, &w); err != nil {
			return fmt.Errorf("input record (Source): %w", err)
		}
		*r = InputRecord{Type: w.Type, Filename: w.Filename, Value: w.Value, Checksum: w.Checksum}
	default:
		return fmt.Errorf("input record: unknown type %q", probe.Type)
	}
	return nil
}

// Recorder is implemented by both Task and InputTask: anything that can
// produce its own manifest record. Save uses this to treat the two
// concrete unit types uniformly without a type switch on every field.
type Recorder interface {
	AsDict() (UnitRecord, error)
}

// ChecksumInstaller is implemented by both Task and InputTask: anything
// that can have previously recorded digests installed onto it during
// manifest reload, without recomputing them from disk.
type ChecksumInstaller interface {
	SetChecksums(checksums []string)
}

// UnitRecord is the serializable form of one Task or InputTask, as it
// appears in the manifest's "units" array.
type UnitRecord struct {
	Module string        `json:"module"`
	Class  string         `json:"class"`
	Inputs []InputRecord `json:"inputs"`
}

// connectorToInputRecord converts an ordinary Task's view of one of its
// inputs (a reference to a producer's output Connector) into the
// Connector-tagged wire record.
func connectorToInputRecord(c *Connector) InputRecord {
	rec := c.AsDict()
	var filename *string
	if rec.Filename != nil {
		filename = rec.Filename
	}
	return InputRecord{
		Type:     "Connector",
		Parent:   rec.Parent,
		Key:      rec.Key,
		Checksum: rec.Checksum,
		Filename: filename,
		Value:    rec.Value,
	}
}

// outputToSourceRecord converts an InputTask's own output Connector into
// the Source-tagged wire record.
func outputToSourceRecord(c *Connector) InputRecord {
	rec := c.AsDict()
	return InputRecord{
		Type:     "Source",
		Filename: rec.Filename,
		Value:    rec.Value,
		Checksum: rec.Checksum,
	}
}
