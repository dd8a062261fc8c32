package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/teranos/ideprobe/config"
	"github.com/teranos/ideprobe/diagnostics"
	"github.com/teranos/ideprobe/errors"
	"github.com/teranos/ideprobe/session"
)

// oneShotConnectBudget is the single connect attempt's time budget. The
// 40/40 split gives 10s each for the endpoint wait and the handshake.
const oneShotConnectBudget = 25 * time.Second

// defaultTimeoutMS is the IDE-side analysis budget when none is given.
const defaultTimeoutMS = 30000

// toolCallID is the one-shot request id; the handshake used id 1.
const toolCallID = 2

// FileCmd represents the file command - check a single file
var FileCmd = &cobra.Command{
	Use:   "file <file_path> [errors_only] [timeout_ms] [project_path]",
	Short: "Check one file for IDE-reported problems",
	Long: `Check a single file for IDE-reported problems and print the raw
JSON-RPC response to stdout.

Arguments:
  file_path     path to check (or FILE_PATH environment variable)
  errors_only   "true" to restrict to error-severity problems (default: false)
  timeout_ms    IDE-side analysis budget in milliseconds (default: 30000)
  project_path  IDE project to query when several are open (optional)

The process exits non-zero when the file path is missing, the MCP server
cannot be reached, or the call gets no response. Partial output is never
written to stdout.

Examples:
  ideprobe file /src/main.go
  ideprobe file /src/main.go true 10000
  FILE_PATH=/src/main.go ideprobe file`,
	Args: cobra.RangeArgs(0, 4),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := parseFileArgs(args, os.Getenv("FILE_PATH"))
		if err != nil {
			return err
		}
		return runFile(cmd, req)
	},
}

// parseFileArgs maps positional arguments onto a diagnostics request,
// falling back to the FILE_PATH environment variable for the path.
func parseFileArgs(args []string, envPath string) (diagnostics.Request, error) {
	req := diagnostics.Request{TimeoutMS: defaultTimeoutMS}

	if len(args) > 0 {
		req.FilePath = args[0]
	} else {
		req.FilePath = envPath
	}
	if req.FilePath == "" {
		return req, errors.New("file path required (argument or FILE_PATH)")
	}

	if len(args) > 1 {
		req.ErrorsOnly = strings.EqualFold(args[1], "true")
	}
	if len(args) > 2 {
		ms, err := strconv.Atoi(args[2])
		if err != nil {
			return req, errors.Wrapf(err, "invalid timeout_ms %q", args[2])
		}
		req.TimeoutMS = ms
	}
	if len(args) > 3 {
		req.ProjectPath = args[3]
	}
	return req, nil
}

func runFile(cmd *cobra.Command, req diagnostics.Request) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	// Keep the stream alive for as long as the IDE may take to answer.
	cfg.StreamReadTimeout = time.Duration(req.TimeoutMS)*time.Millisecond + 10*time.Second

	ctrl := session.NewController(cfg)
	defer ctrl.Close()

	if err := ctrl.Connect(cmd.Context(), oneShotConnectBudget); err != nil {
		return errors.WithHint(err, "is the IDE running with the MCP server enabled?")
	}

	client := diagnostics.NewClient(ctrl.Session())
	wait := time.Duration(req.TimeoutMS)*time.Millisecond + 5*time.Second

	resp, err := client.FileProblems(cmd.Context(), toolCallID, req, wait)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to format response")
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
