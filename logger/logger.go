// Package logger provides structured logging for ideprobe.
//
// All diagnostic output goes to stderr: stdout is reserved for the JSON
// result the commands print, and mixing the two would corrupt it for
// callers that pipe the output into another tool.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the global logger instance.
var Logger *zap.SugaredLogger

func init() {
	// Safe no-op logger at package load time so early callers never panic.
	Logger = zap.NewNop().Sugar()
}

// Verbosity levels for CLI flag counts.
const (
	VerbosityUser  = 0 // no flags: warnings and errors only
	VerbosityInfo  = 1 // -v: + connection progress, discovery results
	VerbosityDebug = 2 // -vv: + frames, candidate probes, request/response ids
)

// VerbosityToLevel maps verbosity flag counts (-v, -vv) to zap log levels.
func VerbosityToLevel(verbosity int) zapcore.Level {
	switch verbosity {
	case VerbosityUser:
		return zapcore.WarnLevel
	case VerbosityInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// Initialize sets up the global logger writing console output to stderr.
func Initialize(verbosity int) error {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = "" // timestamps are noise for a short-lived CLI

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(os.Stderr),
		VerbosityToLevel(verbosity),
	)

	Logger = zap.New(core).Sugar()
	return nil
}

// Named returns a child of the global logger tagged with a component name.
func Named(component string) *zap.SugaredLogger {
	return Logger.Named(component)
}
