// Command mcpfs is a CLI for MCP tool servers: list tools, make one-shot
// calls, drive an interactive session, talk to GitHub's server, and sync
// repository files to a local filesystem server.
//
// The target server comes from --server (a full command line) or from a
// named entry in the server definitions file (--server-name, default file
// ~/.config/mcpfs/servers.yaml). With neither flag, mcpfs looks for the
// bundled mcp-fileserver binary and serves the current directory. Flags can
// also be set through MCPFS_* environment variables; the GitHub token is
// read from GITHUB_PERSONAL_ACCESS_TOKEN and never printed.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	mcpclient "github.com/Sathishruw/mcp-filesystem-client"
)

var rootCmd = &cobra.Command{
	Use:   "mcpfs",
	Short: "Interact with MCP tool servers over stdio",
	Long: `mcpfs talks to Model Context Protocol servers over stdin/stdout.

Point it at any stdio MCP server with --server, or define servers once in
~/.config/mcpfs/servers.yaml and pick them with --server-name. With neither,
mcpfs runs the bundled mcp-fileserver against the current directory.`,
	Version:       mcpclient.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initViper)

	pf := rootCmd.PersistentFlags()
	pf.String("server", "", `server command line, e.g. "mcp-fileserver --base-dir ."`)
	pf.String("server-name", "", "named server from the definitions file")
	pf.String("config", "", "server definitions file (default ~/.config/mcpfs/servers.yaml)")
	pf.Duration("timeout", 0, "per-call timeout (default 30s)")
	pf.String("log-level", "warn", "log level (debug, info, warn, error, off)")
	pf.String("trace", "off", "trace exporter (off, stdout, file)")
	pf.String("trace-file", "", "trace output path for --trace file")

	_ = viper.BindPFlags(pf)
}

func initViper() {
	viper.SetEnvPrefix("MCPFS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// The token keeps its conventional variable name rather than an
	// MCPFS_-prefixed one.
	_ = viper.BindEnv("github-token", "GITHUB_PERSONAL_ACCESS_TOKEN")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}
