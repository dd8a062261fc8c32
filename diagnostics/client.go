// Package diagnostics invokes the IDE's per-file problems tool over a
// ready MCP session and extracts the interesting results.
package diagnostics

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/teranos/ideprobe/logger"
)

// ToolName is the IDE tool invoked for per-file diagnostics.
const ToolName = "get_file_problems"

// Caller abstracts the session correlator: submit one request, wait for
// the matching response. Satisfied by *session.Session.
type Caller interface {
	Call(ctx context.Context, method string, params any, id int64, timeout time.Duration) (map[string]any, error)
}

// Request describes one get_file_problems invocation.
type Request struct {
	FilePath string

	// ErrorsOnly restricts the IDE's answer to error-severity problems.
	ErrorsOnly bool

	// TimeoutMS is the IDE-side analysis budget, passed through as a tool
	// argument. The caller's wait must exceed it (see Client.FileProblems).
	TimeoutMS int

	// ProjectPath optionally pins the IDE project to query.
	ProjectPath string
}

// Client issues diagnostics tool calls over an established session.
type Client struct {
	caller Caller
	log    *zap.SugaredLogger
}

// NewClient wraps a ready session's correlator.
func NewClient(caller Caller) *Client {
	return &Client{
		caller: caller,
		log:    logger.Named("diagnostics"),
	}
}

// FileProblems invokes the tool for one file and returns the raw JSON-RPC
// response. wait bounds the whole round trip and should exceed the
// IDE-side TimeoutMS so the server has room to answer.
func (c *Client) FileProblems(ctx context.Context, id int64, req Request, wait time.Duration) (map[string]any, error) {
	args := map[string]any{
		"filePath":   req.FilePath,
		"errorsOnly": req.ErrorsOnly,
		"timeout":    req.TimeoutMS,
	}
	if req.ProjectPath != "" {
		args["projectPath"] = req.ProjectPath
	}

	c.log.Debugw("requesting file problems",
		logger.FieldFile, req.FilePath,
		logger.FieldRequestID, id,
		logger.FieldTimeout, wait)

	return c.caller.Call(ctx, string(mcp.MethodToolsCall), map[string]any{
		"name":      ToolName,
		"arguments": args,
	}, id, wait)
}
