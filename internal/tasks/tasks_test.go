package tasks_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scriptweaver/internal/core"
	"scriptweaver/internal/tasks"
)

func TestBuildDemoUppercasesTheLiteral(t *testing.T) {
	reg, err := core.NewRegistry(core.Options{WorkingDir: t.TempDir()})
	require.NoError(t, err)

	root, err := tasks.BuildDemo(reg)
	require.NoError(t, err)
	require.NoError(t, root.Run(context.Background()))

	up := root.(*core.Task)
	out, err := up.Output(0)
	require.NoError(t, err)
	assert.Equal(t, "HELLO, SCRIPTWEAVER", out.Value().Raw())
}

func TestResolverKnowsBothDemoClasses(t *testing.T) {
	r := tasks.Resolver()
	names := r.ClassNames()
	assert.Contains(t, names, "LiteralSource")
	assert.Contains(t, names, "Uppercase")
}
