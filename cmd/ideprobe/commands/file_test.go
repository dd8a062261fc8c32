package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFileArgsDefaults(t *testing.T) {
	req, err := parseFileArgs([]string{"/src/main.go"}, "")
	require.NoError(t, err)

	assert.Equal(t, "/src/main.go", req.FilePath)
	assert.False(t, req.ErrorsOnly)
	assert.Equal(t, defaultTimeoutMS, req.TimeoutMS)
	assert.Empty(t, req.ProjectPath)
}

func TestParseFileArgsAllPositionals(t *testing.T) {
	req, err := parseFileArgs([]string{"/src/main.go", "TRUE", "5000", "/src"}, "")
	require.NoError(t, err)

	assert.Equal(t, "/src/main.go", req.FilePath)
	assert.True(t, req.ErrorsOnly)
	assert.Equal(t, 5000, req.TimeoutMS)
	assert.Equal(t, "/src", req.ProjectPath)
}

func TestParseFileArgsEnvFallback(t *testing.T) {
	req, err := parseFileArgs(nil, "/from/env.go")
	require.NoError(t, err)
	assert.Equal(t, "/from/env.go", req.FilePath)

	// Positional wins over the environment.
	req, err = parseFileArgs([]string{"/from/arg.go"}, "/from/env.go")
	require.NoError(t, err)
	assert.Equal(t, "/from/arg.go", req.FilePath)
}

func TestParseFileArgsMissingPath(t *testing.T) {
	_, err := parseFileArgs(nil, "")
	assert.Error(t, err)
}

func TestParseFileArgsBadTimeout(t *testing.T) {
	_, err := parseFileArgs([]string{"/src/main.go", "false", "soon"}, "")
	assert.Error(t, err)
}

func TestParseFileArgsErrorsOnlyVariants(t *testing.T) {
	for arg, want := range map[string]bool{
		"true": true, "True": true, "TRUE": true,
		"false": false, "1": false, "yes": false,
	} {
		req, err := parseFileArgs([]string{"/a.go", arg}, "")
		require.NoError(t, err)
		assert.Equal(t, want, req.ErrorsOnly, "errors_only=%q", arg)
	}
}
