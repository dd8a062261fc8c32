package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchAcceptsZeroArguments(t *testing.T) {
	// The batch contract is exit-zero no matter what; a missing list must
	// not be rejected by argument validation before runBatch can degrade.
	require.NoError(t, BatchCmd.Args(BatchCmd, nil))
	require.NoError(t, BatchCmd.Args(BatchCmd, []string{"files.txt"}))
	require.NoError(t, BatchCmd.Args(BatchCmd, []string{"files.txt", "5000"}))
	assert.Error(t, BatchCmd.Args(BatchCmd, []string{"a", "b", "c"}))
}

func TestBatchNoArgsPrintsEmptyArray(t *testing.T) {
	var out bytes.Buffer
	BatchCmd.SetOut(&out)
	defer BatchCmd.SetOut(nil)

	runBatch(BatchCmd, nil)

	assert.Equal(t, "[]", strings.TrimSpace(out.String()))
}

func TestBatchMissingListPrintsEmptyArray(t *testing.T) {
	var out bytes.Buffer
	BatchCmd.SetOut(&out)
	defer BatchCmd.SetOut(nil)

	runBatch(BatchCmd, []string{"/nonexistent/files.txt"})

	assert.Equal(t, "[]", strings.TrimSpace(out.String()))
}
