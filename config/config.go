// Package config holds ideprobe configuration loaded via Viper.
//
// Every option has a sane default and an IDEPROBE_* environment override;
// there is no required config file. The MCP_URL variable is honored for
// compatibility with other MCP tooling and takes precedence over discovery.
package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/teranos/ideprobe/errors"
)

// Config captures all tunables for discovery, the streaming session, and
// the batch runner.
type Config struct {
	// BaseURL forces the MCP server base address, bypassing discovery.
	// Empty means discover.
	BaseURL string `mapstructure:"base_url"`

	// FallbackURL is returned by discovery when no candidate passes the
	// probe. Discovery degrades to a guess rather than failing.
	FallbackURL string `mapstructure:"fallback_url"`

	// PortOffset separates the IDE's built-in web server port from its MCP
	// announcement port.
	PortOffset int `mapstructure:"port_offset"`

	// PortFileGlobs are home-relative glob patterns for IDE port metadata
	// files, each containing a single integer base port.
	PortFileGlobs []string `mapstructure:"port_file_globs"`

	// ProcessKeywords are process-name substrings identifying IDE processes
	// during the listener scan.
	ProcessKeywords []string `mapstructure:"process_keywords"`

	ProbeTimeout      time.Duration `mapstructure:"probe_timeout"`
	SubmitTimeout     time.Duration `mapstructure:"submit_timeout"`
	ConnectDeadline   time.Duration `mapstructure:"connect_deadline"`
	RetryDelay        time.Duration `mapstructure:"retry_delay"`
	StreamReadTimeout time.Duration `mapstructure:"stream_read_timeout"`
}

// Load reads configuration from defaults and environment variables.
func Load() (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &cfg, nil
}

// LoadWithViper loads configuration from a provided Viper instance.
// Useful for tests that want to override individual keys.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &cfg, nil
}
