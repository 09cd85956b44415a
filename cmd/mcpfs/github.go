package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Sathishruw/mcp-filesystem-client/github"
)

var githubCmd = &cobra.Command{
	Use:   "github",
	Short: "Talk to GitHub's MCP server (requires Docker and a token)",
}

var githubReposCmd = &cobra.Command{
	Use:   "repos <user>",
	Short: "List a user's repositories",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withGitHub(cmd.Context(), func(ctx context.Context, gh *github.Client) error {
			result, err := gh.ListRepositories(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Println(result.Text())

			return nil
		})
	},
}

var githubIssuesState string

var githubIssuesCmd = &cobra.Command{
	Use:   "issues <owner/repo>",
	Short: "List issues in a repository",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, repo, err := splitRepo(args[0])
		if err != nil {
			return err
		}

		return withGitHub(cmd.Context(), func(ctx context.Context, gh *github.Client) error {
			result, err := gh.ListIssues(ctx, owner, repo, githubIssuesState)
			if err != nil {
				return err
			}

			fmt.Println(result.Text())

			return nil
		})
	},
}

var githubReadCmd = &cobra.Command{
	Use:   "read <owner/repo> <path>",
	Short: "Print a file from a repository",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, repo, err := splitRepo(args[0])
		if err != nil {
			return err
		}

		return withGitHub(cmd.Context(), func(ctx context.Context, gh *github.Client) error {
			result, err := gh.GetFileContents(ctx, owner, repo, args[1])
			if err != nil {
				return err
			}

			fmt.Println(result.Text())

			return nil
		})
	},
}

func init() {
	githubIssuesCmd.Flags().StringVar(&githubIssuesState, "state", "open",
		"issue state (open, closed, all)")

	githubCmd.AddCommand(githubReposCmd, githubIssuesCmd, githubReadCmd)
	rootCmd.AddCommand(githubCmd)
}

// withGitHub runs fn against a started GitHub session. The token comes from
// GITHUB_PERSONAL_ACCESS_TOKEN and is passed through opaquely.
func withGitHub(ctx context.Context, fn func(context.Context, *github.Client) error) error {
	token := viper.GetString("github-token")
	if token == "" {
		return fmt.Errorf("GITHUB_PERSONAL_ACCESS_TOKEN not set")
	}

	opts := []github.Option{
		github.WithLogger(newLogger(viper.GetString("log-level"))),
	}
	if timeout := viper.GetDuration("timeout"); timeout > 0 {
		opts = append(opts, github.WithCallTimeout(timeout))
	}

	gh, err := github.NewClient(token, opts...)
	if err != nil {
		return err
	}

	if err := gh.Start(ctx); err != nil {
		return err
	}
	defer gh.Close()

	return fn(ctx, gh)
}

func splitRepo(spec string) (owner, repo string, err error) {
	parts := strings.SplitN(spec, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("expected <owner>/<repo>, got %q", spec)
	}

	return parts[0], parts[1], nil
}
