package config

import (
	"time"

	"github.com/spf13/viper"
)

// DefaultFallbackURL is the conventional address JetBrains IDEs sometimes
// bind the MCP server to; discovery returns it when all probes fail.
const DefaultFallbackURL = "http://localhost:64342"

// DefaultPortOffset is the fixed distance between the IDE's built-in web
// server port and its MCP server port.
const DefaultPortOffset = 1000

// SetDefaults configures default values and environment bindings for all
// configuration options.
func SetDefaults(v *viper.Viper) {
	// Discovery defaults
	v.SetDefault("base_url", "")
	v.SetDefault("fallback_url", DefaultFallbackURL)
	v.SetDefault("port_offset", DefaultPortOffset)
	v.SetDefault("port_file_globs", []string{
		".cache/JetBrains/Toolbox/ports/*.port",
		".cache/JetBrains/*/.port",
	})
	v.SetDefault("process_keywords", []string{
		"idea", "pycharm", "webstorm", "clion", "goland", "rider", "phpstorm",
	})

	// Timing defaults
	v.SetDefault("probe_timeout", 2*time.Second)
	v.SetDefault("submit_timeout", 10*time.Second)
	v.SetDefault("connect_deadline", 30*time.Second)
	v.SetDefault("retry_delay", 2*time.Second)
	v.SetDefault("stream_read_timeout", 180*time.Second)

	// Environment overrides. MCP_URL is the convention shared with other
	// MCP tooling; the IDEPROBE_ names follow this repo's prefix.
	v.BindEnv("base_url", "MCP_URL", "IDEPROBE_BASE_URL")
	v.BindEnv("fallback_url", "IDEPROBE_FALLBACK_URL")
	v.BindEnv("connect_deadline", "IDEPROBE_CONNECT_DEADLINE")
	v.BindEnv("retry_delay", "IDEPROBE_RETRY_DELAY")
	v.BindEnv("probe_timeout", "IDEPROBE_PROBE_TIMEOUT")
}
