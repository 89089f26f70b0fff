package manifest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"scriptweaver/internal/core"
)

// Save writes reg's complete state to w as a manifest document: every
// registered unit's record plus the bookkeeping (id counter, working
// directory, root node) needed to resume without losing incrementality.
// logLevel is an opaque integer severity threshold (see document.LogLevel),
// carried through unchanged rather than interpreted.
func Save(w io.Writer, reg *core.Registry, logLevel int) error {
	units := reg.Units()
	records := make([]core.UnitRecord, 0, len(units))
	for _, u := range units {
		rec, ok := u.(core.Recorder)
		if !ok {
			return fmt.Errorf("manifest: unit %q does not implement AsDict", u.Key())
		}
		ud, err := rec.AsDict()
		if err != nil {
			return fmt.Errorf("manifest: recording unit %q: %w", u.Key(), err)
		}
		records = append(records, ud)
	}

	root := reg.RootNode()
	rootKey := ""
	if root != nil {
		rootKey = root.Key()
	}

	doc := document{
		SchemaVersion: SchemaVersion,
		LogLevel:      logLevel,
		WorkingDir:    reg.WorkingDir(),
		UnitID:        reg.UnitID(),
		Units:         records,
		RootNode:      rootKey,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("manifest: encoding: %w", err)
	}
	return nil
}

// SaveFile writes the manifest to path using a temp-file-plus-rename
// sequence, so a crash or concurrent reader never observes a
// partially-written manifest.
func SaveFile(path string, reg *core.Registry, logLevel int) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("manifest: creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if err := Save(tmp, reg, logLevel); err != nil {
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("manifest: chmod temp file: %w", err)
	}
	_ = tmp.Sync()
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("manifest: closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("manifest: renaming into place: %w", err)
	}
	return nil
}
