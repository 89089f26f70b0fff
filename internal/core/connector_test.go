package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scriptweaver/internal/value"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := NewRegistry(Options{WorkingDir: t.TempDir()})
	require.NoError(t, err)
	return reg
}

func TestValueConnectorCompleteTracksAssignment(t *testing.T) {
	reg := newTestRegistry(t)
	task := NewTask(reg, "m", "T", nil)
	c := task.AddOutput(ValueConnector, value.Unset, "", "v")

	complete, err := c.Complete()
	require.NoError(t, err)
	assert.False(t, complete)

	c.SetValue(value.String("x"))
	complete, err = c.Complete()
	require.NoError(t, err)
	assert.True(t, complete)
}

func TestFileConnectorCompleteRequiresExistenceAndUnchanged(t *testing.T) {
	reg := newTestRegistry(t)
	task := NewTask(reg, "m", "T", nil)
	require.NoError(t, os.MkdirAll(task.WorkingDir(), 0o755))
	c := task.AddOutput(FileConnector, value.Unset, "out.txt", "")

	complete, err := c.Complete()
	require.NoError(t, err)
	assert.False(t, complete, "connector should be incomplete before the file exists")

	require.NoError(t, os.WriteFile(c.FullFilename(), []byte("v1"), 0o644))
	require.NoError(t, c.ReadChecksum())

	complete, err = c.Complete()
	require.NoError(t, err)
	assert.True(t, complete)

	require.NoError(t, os.WriteFile(c.FullFilename(), []byte("v2"), 0o644))
	changed, err := c.Changed()
	require.NoError(t, err)
	assert.True(t, changed, "editing the file's content must be observed as changed")
}

func TestFileConnectorChangedIsFalseWhenSkipChecksums(t *testing.T) {
	reg, err := NewRegistry(Options{WorkingDir: t.TempDir(), SkipChecksums: true})
	require.NoError(t, err)
	task := NewTask(reg, "m", "T", nil)
	require.NoError(t, os.MkdirAll(task.WorkingDir(), 0o755))
	c := task.AddOutput(FileConnector, value.Unset, "missing.txt", "")

	changed, err := c.Changed()
	require.NoError(t, err)
	assert.False(t, changed, "skip_checksums must mask even a missing file as unchanged")
}

func TestConnectorNameFallsBackToFilenameStem(t *testing.T) {
	reg := newTestRegistry(t)
	task := NewTask(reg, "m", "T", nil)
	c := task.AddOutput(FileConnector, value.Unset, "report.tar.gz", "")
	assert.Equal(t, "report", c.Name())

	named := task.AddOutput(ValueConnector, value.Unset, "", "explicit")
	assert.Equal(t, "explicit", named.Name())
}

func TestTaskRunStagesFileInputIntoConsumerWorkingDir(t *testing.T) {
	reg := newTestRegistry(t)

	producer := NewTask(reg, "m", "Producer", func(t *Task) error {
		out, _ := t.Output(0)
		return os.WriteFile(out.FullFilename(), []byte("payload"), 0o644)
	})
	producedFile := producer.AddOutput(FileConnector, value.Unset, "data.txt", "")

	var sawStagedContent []byte
	consumer := NewTask(reg, "m", "Consumer", func(t *Task) error {
		b, err := os.ReadFile(filepath.Join(t.WorkingDir(), "staged.txt"))
		sawStagedContent = b
		return err
	})
	consumer.AddInput(producedFile, "staged.txt")

	require.NoError(t, consumer.Run(context.Background()))
	assert.Equal(t, "payload", string(sawStagedContent))
	assert.True(t, producer.Ready())
	assert.True(t, consumer.Ready())
}

func TestTaskBodyRunsAtMostOnceWhenUpToDate(t *testing.T) {
	reg := newTestRegistry(t)

	runs := 0
	task := NewTask(reg, "m", "T", func(t *Task) error {
		runs++
		out, _ := t.Output(0)
		out.SetValue(value.String("done"))
		return nil
	})
	task.AddOutput(ValueConnector, value.Unset, "", "result")

	require.NoError(t, task.Run(context.Background()))
	require.NoError(t, task.Run(context.Background()))
	assert.Equal(t, 1, runs, "an up-to-date task with no changed inputs must not rerun its body")
}

func TestTaskBodyFailureWrapsUnderlyingError(t *testing.T) {
	reg := newTestRegistry(t)
	sentinel := assert.AnError
	task := NewTask(reg, "m", "T", func(t *Task) error { return sentinel })
	task.AddOutput(ValueConnector, value.Unset, "", "result")

	err := task.Run(context.Background())
	require.Error(t, err)

	var bodyErr *TaskBodyFailureError
	require.ErrorAs(t, err, &bodyErr)
	assert.Equal(t, task.Key(), bodyErr.Key)
	assert.ErrorIs(t, err, sentinel)
}

func TestKeysAreUniqueAndIncreasing(t *testing.T) {
	reg := newTestRegistry(t)
	a := NewTask(reg, "m", "A", nil)
	b := NewTask(reg, "m", "B", nil)
	c := NewInputTask(reg, "m", "C")

	assert.NotEqual(t, a.Key(), b.Key())
	assert.NotEqual(t, b.Key(), c.Key())
	assert.Equal(t, "001-A", a.Key())
	assert.Equal(t, "002-B", b.Key())
	assert.Equal(t, "003-C", c.Key())
}
