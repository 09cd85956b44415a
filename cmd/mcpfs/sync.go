package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Sathishruw/mcp-filesystem-client/github"
	"github.com/Sathishruw/mcp-filesystem-client/unified"
)

var syncDest string

var syncCmd = &cobra.Command{
	Use:   "sync <owner/repo> <paths...>",
	Short: "Download repository files into the filesystem server's sandbox",
	Long: `sync pulls files from a GitHub repository through GitHub's MCP server and
writes them through the configured filesystem server, so everything lands
inside that server's base directory.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		owner, repo, err := splitRepo(args[0])
		if err != nil {
			return err
		}
		paths := args[1:]

		token := viper.GetString("github-token")
		if token == "" {
			return fmt.Errorf("GITHUB_PERSONAL_ACCESS_TOKEN not set")
		}

		serverOpts, err := serverOptions(ctx)
		if err != nil {
			return err
		}

		common, cleanup, err := commonOptions()
		if err != nil {
			return err
		}
		defer cleanup()

		log := newLogger(viper.GetString("log-level"))

		gh, err := github.NewClient(token, github.WithLogger(log))
		if err != nil {
			return err
		}

		fs := unified.NewFileSession(append(common, serverOpts...)...)

		u := unified.New(fs, gh, unified.WithLogger(log))
		if err := u.Start(ctx); err != nil {
			return err
		}
		defer u.Close()

		results, err := u.SyncRepoToLocal(ctx, owner, repo, paths, syncDest)
		if err != nil {
			return err
		}

		var failed int
		for _, r := range results {
			if r.Err != nil {
				failed++
				fmt.Println(errorStyle.Render(fmt.Sprintf("✗ %s: %v", r.Path, r.Err)))
				continue
			}
			fmt.Println(successStyle.Render("✓ " + r.Path + " -> " + r.LocalPath))
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d files failed to sync", failed, len(results))
		}

		fmt.Println(subtleStyle.Render(fmt.Sprintf("Synced %d files to %s", len(results), syncDest)))

		return nil
	},
}

func init() {
	syncCmd.Flags().StringVar(&syncDest, "dest", "synced",
		"destination directory, relative to the file server's base")
	rootCmd.AddCommand(syncCmd)
}
