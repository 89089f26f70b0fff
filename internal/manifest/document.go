package manifest

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"scriptweaver/internal/core"
)

// SchemaVersion is the current manifest wire version. Load rejects any
// document declaring a different one rather than guess at compatibility.
const SchemaVersion = "1"

//go:embed schema.json
var schemaSource []byte

var compiledSchema *jsonschema.Schema

func init() {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("scriptweaver://manifest.json", strings.NewReader(string(schemaSource))); err != nil {
		panic(fmt.Sprintf("manifest: invalid embedded schema: %v", err))
	}
	schema, err := compiler.Compile("scriptweaver://manifest.json")
	if err != nil {
		panic(fmt.Sprintf("manifest: embedded schema failed to compile: %v", err))
	}
	compiledSchema = schema
}

// document is the top-level manifest envelope, mirroring the source's
// Pipeline.save/load state dict: the run's log level (an opaque integer
// severity threshold, not the config package's string level name) and
// working directory, the id counter (so a resumed run keeps allocating
// fresh, non-colliding keys), every unit's record, and which unit is the
// root. schema_version is envelope metadata, not part of any unit's own
// record, and exists purely so Load can reject a document it doesn't
// recognize instead of guessing.
type document struct {
	SchemaVersion string            `json:"schema_version"`
	LogLevel      int               `json:"log_level"`
	WorkingDir    string            `json:"working_dir"`
	UnitID        int               `json:"unit_id"`
	Units         []core.UnitRecord `json:"units"`
	RootNode      string            `json:"root_node"`
}

// validateAgainstSchema checks raw JSON bytes against the embedded schema
// before any semantic decoding is attempted, so a structurally malformed
// manifest fails with a schema error rather than a confusing field-level
// decode panic deep in unit reconstruction.
func validateAgainstSchema(raw []byte) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return &ParseError{Err: err}
	}
	if err := compiledSchema.Validate(doc); err != nil {
		return &ParseError{Err: err}
	}
	return nil
}
