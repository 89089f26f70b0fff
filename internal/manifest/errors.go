package manifest

import (
	"fmt"
	"strings"
)

// UnknownTaskClassError is returned by Load when a unit record names a
// class no ClassResolver recognizes. Suggestions, when non-empty, are the
// closest known class names by fuzzy match — surfaced to help diagnose a
// typo'd or renamed task type.
type UnknownTaskClassError struct {
	Module      string
	Class       string
	Suggestions []string
}

func (e *UnknownTaskClassError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("manifest: unknown task class %q in module %q", e.Class, e.Module)
	}
	return fmt.Sprintf("manifest: unknown task class %q in module %q (did you mean %s?)",
		e.Class, e.Module, strings.Join(e.Suggestions, ", "))
}

// ArityMismatchError is returned when a unit record's input list has a
// different length than the resolved constructor expects.
type ArityMismatchError struct {
	Class    string
	Got      int
	Expected int
}

func (e *ArityMismatchError) Error() string {
	return fmt.Sprintf("manifest: class %q expects %d constructor argument(s), manifest supplies %d",
		e.Class, e.Expected, e.Got)
}

// SchemaVersionMismatchError is returned when a manifest declares a schema
// version this build of the loader does not understand.
type SchemaVersionMismatchError struct {
	Got      string
	Expected string
}

func (e *SchemaVersionMismatchError) Error() string {
	return fmt.Sprintf("manifest: schema version %q unsupported, expected %q", e.Got, e.Expected)
}

// ParseError wraps a structural or schema-validation failure encountered
// while decoding a manifest document, before any unit is reconstructed.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("manifest: parse error: %v", e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }
