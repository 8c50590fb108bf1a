package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd(t *testing.T) {
	cmd, out := newTestRoot(t)
	cmd.AddCommand(newVersionCmd())

	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "debugrun version dev\n", out.String())
}
