package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecTaskCapturesStdout(t *testing.T) {
	reg := newTestRegistry(t)
	task := NewExecTask(reg, "Echo", "echo -n hello", nil, false)

	require.NoError(t, task.Run(context.Background()))

	out, err := task.Output(ExecOutputStdout)
	require.NoError(t, err)
	assert.Equal(t, "hello", out.Value().Raw())
}

func TestExecTaskOnlySeesDeclaredEnv(t *testing.T) {
	reg := newTestRegistry(t)
	task := NewExecTask(reg, "Env", `echo -n "$FOO"`, map[string]string{"FOO": "bar"}, false)

	require.NoError(t, task.Run(context.Background()))

	out, err := task.Output(ExecOutputStdout)
	require.NoError(t, err)
	assert.Equal(t, "bar", out.Value().Raw())
}

func TestExecTaskFailsOnNonZeroExitByDefault(t *testing.T) {
	reg := newTestRegistry(t)
	task := NewExecTask(reg, "Fail", "exit 3", nil, false)

	err := task.Run(context.Background())
	require.Error(t, err)

	var bodyErr *TaskBodyFailureError
	require.ErrorAs(t, err, &bodyErr)
}

func TestExecTaskAllowFailureCapturesOutputAnyway(t *testing.T) {
	reg := newTestRegistry(t)
	task := NewExecTask(reg, "Fail", "echo -n oops >&2; exit 3", nil, true)

	require.NoError(t, task.Run(context.Background()))

	errOut, err := task.Output(ExecOutputStderr)
	require.NoError(t, err)
	assert.Equal(t, "oops", errOut.Value().Raw())
}
