// Command mcp-fileserver serves sandboxed filesystem tools over MCP stdio.
//
// The server reads JSON-RPC requests from stdin and writes responses to
// stdout, one object per line. All file access is confined to --base-dir.
// Logs go to stderr so stdout stays a clean protocol stream.
//
// Shutdown is driven by the transport: when the parent closes stdin the
// server drains and exits. Signals keep their default disposition so a
// supervising client can still escalate from SIGTERM to SIGKILL.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	mcpclient "github.com/Sathishruw/mcp-filesystem-client"
	"github.com/Sathishruw/mcp-filesystem-client/internal/fileserver"
)

var (
	baseDir  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "mcp-fileserver",
	Short: "MCP server exposing sandboxed filesystem tools over stdio",
	Long: `mcp-fileserver speaks the Model Context Protocol on stdin/stdout and
exposes five filesystem tools: list_files, read_file, write_file,
create_directory and get_working_directory. Every operation is confined
to the directory given by --base-dir.`,
	Version:      mcpclient.Version,
	RunE:         runServer,
	SilenceUsage: true,
}

func init() {
	rootCmd.Flags().StringVar(&baseDir, "base-dir", ".",
		"directory the filesystem tools are confined to")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info",
		"log level (debug, info, warn, error)")
}

func runServer(cmd *cobra.Command, args []string) error {
	log := newLogger(logLevel)

	sandbox, err := fileserver.NewSandbox(baseDir)
	if err != nil {
		return err
	}

	registry := fileserver.NewRegistry("mcp-fileserver", mcpclient.Version)
	fileserver.RegisterFileTools(registry, sandbox)

	log.Info("Starting file server", "base_dir", sandbox.Base())

	server := fileserver.NewServer(log, registry)

	return server.Serve(context.Background(), os.Stdin, os.Stdout)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
