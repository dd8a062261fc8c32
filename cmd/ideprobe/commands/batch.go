package commands

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/teranos/ideprobe/config"
	"github.com/teranos/ideprobe/diagnostics"
	"github.com/teranos/ideprobe/logger"
)

// defaultPerFileTimeoutMS is the per-file IDE analysis budget when none is
// given.
const defaultPerFileTimeoutMS = 15000

// BatchCmd represents the batch command - check a list of files in one session
var BatchCmd = &cobra.Command{
	Use:   "batch [file_list_path] [per_file_timeout_ms]",
	Short: "Check a list of files in one MCP session",
	Long: `Check multiple files for IDE-reported problems, reusing one MCP
session for the whole list.

Arguments:
  file_list_path       text file with one path per line
  per_file_timeout_ms  IDE-side analysis budget per file (default: 15000)

Prints a JSON array of {filePath, errors} objects for the files that have
problems. The command is best-effort: it prints "[]" and exits zero when
the list is missing or unreadable, no file exists, the IDE is unreachable,
or every result is clean. It never fails the calling pipeline.

Examples:
  ideprobe batch changed-files.txt
  ideprobe batch changed-files.txt 10000`,
	Args: cobra.RangeArgs(0, 2),
	Run: func(cmd *cobra.Command, args []string) {
		runBatch(cmd, args)
	},
}

func runBatch(cmd *cobra.Command, args []string) {
	log := logger.Named("batch")
	results := []diagnostics.FileProblems{}

	// Whatever happens below, stdout gets a JSON array and the process
	// exits zero.
	defer func() {
		out, err := json.Marshal(results)
		if err != nil {
			out = []byte("[]")
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
	}()

	if len(args) == 0 {
		log.Warnw("no file list given")
		return
	}

	perFileMS := defaultPerFileTimeoutMS
	if len(args) > 1 {
		ms, err := strconv.Atoi(args[1])
		if err != nil {
			log.Warnw("invalid per_file_timeout_ms, using default",
				"value", args[1], logger.FieldTimeout, defaultPerFileTimeoutMS)
		} else {
			perFileMS = ms
		}
	}

	paths, err := diagnostics.ReadFileList(args[0])
	if err != nil {
		log.Warnw("unreadable file list", logger.FieldFile, args[0], logger.FieldError, err)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Warnw("config load failed", logger.FieldError, err)
		return
	}

	runner := diagnostics.NewBatchRunner(cfg)
	results = runner.Run(cmd.Context(), paths, time.Duration(perFileMS)*time.Millisecond)
}
