package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Empty(t, cfg.BaseURL)
	assert.Equal(t, DefaultFallbackURL, cfg.FallbackURL)
	assert.Equal(t, DefaultPortOffset, cfg.PortOffset)
	assert.Equal(t, 2*time.Second, cfg.ProbeTimeout)
	assert.Equal(t, 30*time.Second, cfg.ConnectDeadline)
	assert.Equal(t, 10*time.Second, cfg.SubmitTimeout)
	assert.NotEmpty(t, cfg.PortFileGlobs)
	assert.Contains(t, cfg.ProcessKeywords, "goland")
}

func TestMCPURLOverride(t *testing.T) {
	t.Setenv("MCP_URL", "http://localhost:9999")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9999", cfg.BaseURL)
}

func TestLoadWithViperOverrides(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("retry_delay", "250ms")
	v.Set("base_url", "http://127.0.0.1:64342")

	cfg, err := LoadWithViper(v)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.RetryDelay)
	assert.Equal(t, "http://127.0.0.1:64342", cfg.BaseURL)
}
