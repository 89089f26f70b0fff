package manifest_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scriptweaver/internal/core"
	"scriptweaver/internal/manifest"
	"scriptweaver/internal/tasks"
)

func unitKeys(reg *core.Registry) []string {
	keys := make([]string, 0, len(reg.Units()))
	for _, u := range reg.Units() {
		keys = append(keys, u.Key())
	}
	return keys
}

func TestSaveLoadRoundTripPreservesGraphShape(t *testing.T) {
	reg, err := core.NewRegistry(core.Options{WorkingDir: t.TempDir()})
	require.NoError(t, err)

	root, err := tasks.BuildDemo(reg)
	require.NoError(t, err)
	require.NoError(t, root.Run(context.Background()))

	var buf bytes.Buffer
	require.NoError(t, manifest.Save(&buf, reg, int(slog.LevelInfo)))

	reloaded, err := manifest.Load(&buf, tasks.Resolver())
	require.NoError(t, err)

	require.NotNil(t, reloaded.RootNode())
	assert.Equal(t, root.Key(), reloaded.RootNode().Key())
	if diff := cmp.Diff(unitKeys(reg), unitKeys(reloaded)); diff != "" {
		t.Errorf("reloaded unit keys diverged from the saved graph (-want +got):\n%s", diff)
	}
}

// A terminal task's own output value is never persisted in the manifest,
// only the checksums of what it consumed, so resuming always reruns its
// body at least once; this confirms that rerun still lands on the same
// value rather than skipping or corrupting it.
func TestResumeRecomputesUncachedTerminalOutput(t *testing.T) {
	reg, err := core.NewRegistry(core.Options{WorkingDir: t.TempDir()})
	require.NoError(t, err)

	root, err := tasks.BuildDemo(reg)
	require.NoError(t, err)
	require.NoError(t, root.Run(context.Background()))

	var buf bytes.Buffer
	require.NoError(t, manifest.Save(&buf, reg, int(slog.LevelInfo)))

	reloaded, err := manifest.Load(&buf, tasks.Resolver())
	require.NoError(t, err)

	reloadedRoot := reloaded.RootNode()
	require.NotNil(t, reloadedRoot)
	require.NoError(t, reloadedRoot.Run(context.Background()))

	upperTask, ok := reloadedRoot.(*core.Task)
	require.True(t, ok)
	out, err := upperTask.Output(0)
	require.NoError(t, err)
	assert.Equal(t, "HELLO, SCRIPTWEAVER", out.Value().Raw())
}

func TestLoadRejectsUnknownClass(t *testing.T) {
	reg, err := core.NewRegistry(core.Options{WorkingDir: t.TempDir()})
	require.NoError(t, err)
	_, err = tasks.BuildDemo(reg)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, manifest.Save(&buf, reg, int(slog.LevelInfo)))

	emptyResolver := manifest.NewMapResolver()
	_, err = manifest.Load(&buf, emptyResolver)
	require.Error(t, err)

	var classErr *manifest.UnknownTaskClassError
	assert.ErrorAs(t, err, &classErr)
}

func TestLoadRejectsWrongSchemaVersion(t *testing.T) {
	bad := bytes.NewBufferString(`{
		"schema_version": "99",
		"log_level": 20,
		"working_dir": "/tmp",
		"unit_id": 0,
		"units": [],
		"root_node": ""
	}`)
	_, err := manifest.Load(bad, manifest.NewMapResolver())
	require.Error(t, err)

	var verErr *manifest.SchemaVersionMismatchError
	assert.ErrorAs(t, err, &verErr)
}

func TestLoadRejectsStructurallyInvalidDocument(t *testing.T) {
	bad := bytes.NewBufferString(`{"not_a_manifest": true}`)
	_, err := manifest.Load(bad, manifest.NewMapResolver())
	require.Error(t, err)

	var parseErr *manifest.ParseError
	assert.ErrorAs(t, err, &parseErr)
}
