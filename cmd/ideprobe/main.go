package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/ideprobe/cmd/ideprobe/commands"
	"github.com/teranos/ideprobe/logger"
)

var rootCmd = &cobra.Command{
	Use:   "ideprobe",
	Short: "Query IDE diagnostics over the Model Context Protocol",
	Long: `ideprobe - query a locally running IDE's diagnostics over MCP.

ideprobe finds the IDE's MCP server (JetBrains built-in web server port
files, then a listener scan), opens its SSE stream, performs the MCP
handshake, and invokes the get_file_problems tool.

Available commands:
  file    - Check one file, print the raw RPC response
  batch   - Check a list of files in one session, print interesting results
  version - Show version information

Examples:
  ideprobe file /src/main.go                 # Check one file
  ideprobe file /src/main.go true 10000      # Errors only, 10s analysis budget
  ideprobe batch changed-files.txt 15000     # Check a file list
  MCP_URL=http://localhost:64342 ideprobe file /src/main.go`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		if err := logger.Initialize(verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")

	rootCmd.AddCommand(commands.FileCmd)
	rootCmd.AddCommand(commands.BatchCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
