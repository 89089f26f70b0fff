package graphexport_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scriptweaver/internal/core"
	"scriptweaver/internal/graphexport"
	"scriptweaver/internal/tasks"
)

func TestWriteDOTEmitsOneEdgePerDependency(t *testing.T) {
	reg, err := core.NewRegistry(core.Options{WorkingDir: t.TempDir()})
	require.NoError(t, err)
	root, err := tasks.BuildDemo(reg)
	require.NoError(t, err)
	require.NoError(t, root.Run(context.Background()))

	var buf bytes.Buffer
	require.NoError(t, graphexport.WriteDOT(&buf, root))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "digraph scriptweaver {"))
	assert.Contains(t, out, root.Key())
	assert.Contains(t, out, "->")
}

func TestWriteDOTVisitsEachNodeOnce(t *testing.T) {
	reg, err := core.NewRegistry(core.Options{WorkingDir: t.TempDir()})
	require.NoError(t, err)
	root, err := tasks.BuildDemo(reg)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, graphexport.WriteDOT(&buf, root))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.LessOrEqual(t, len(lines), len(reg.Units())+2)
}
