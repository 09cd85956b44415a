package github

import (
	"context"
	"fmt"
	"strings"

	mcpclient "github.com/Sathishruw/mcp-filesystem-client"
)

// Each wrapper is a thin parameter mapping over one server tool. Results come
// back as raw tool results; callers pull text out with ToolResult.Text or
// inspect the content blocks directly.

// ===== User =====

// GetMe returns information about the authenticated user.
func (c *Client) GetMe(ctx context.Context) (*mcpclient.ToolResult, error) {
	return c.call(ctx, "get_me", nil, true)
}

// ===== Repositories =====

// ListRepositories lists repositories owned by a user. The server exposes no
// listing tool, so this searches with a user: qualifier.
func (c *Client) ListRepositories(ctx context.Context, user string) (*mcpclient.ToolResult, error) {
	return c.SearchRepositories(ctx, "user:"+user)
}

// GetRepository fetches a single repository via a repo: qualified search.
func (c *Client) GetRepository(ctx context.Context, owner, repo string) (*mcpclient.ToolResult, error) {
	return c.SearchRepositories(ctx, fmt.Sprintf("repo:%s/%s", owner, repo))
}

// SearchRepositories searches repositories with GitHub's query syntax.
func (c *Client) SearchRepositories(ctx context.Context, query string) (*mcpclient.ToolResult, error) {
	return c.call(ctx, "search_repositories", map[string]any{"query": query}, true)
}

// CreateRepository creates a repository for the authenticated user.
func (c *Client) CreateRepository(ctx context.Context, name, description string, private bool) (*mcpclient.ToolResult, error) {
	return c.call(ctx, "create_repository", map[string]any{
		"name":        name,
		"description": description,
		"private":     private,
	}, false)
}

// ForkRepository forks a repository to the authenticated user's account.
func (c *Client) ForkRepository(ctx context.Context, owner, repo string) (*mcpclient.ToolResult, error) {
	return c.call(ctx, "fork_repository", map[string]any{
		"owner": owner,
		"repo":  repo,
	}, false)
}

// ===== Files =====

// GetFileContents fetches a file from a repository's default branch.
func (c *Client) GetFileContents(ctx context.Context, owner, repo, path string) (*mcpclient.ToolResult, error) {
	return c.call(ctx, "get_file_contents", map[string]any{
		"owner": owner,
		"repo":  repo,
		"path":  path,
	}, true)
}

// ListDirectory lists a repository directory. The server treats paths with a
// trailing slash as directory listings.
func (c *Client) ListDirectory(ctx context.Context, owner, repo, path string) (*mcpclient.ToolResult, error) {
	if path == "" {
		path = "/"
	} else if !strings.HasSuffix(path, "/") {
		path += "/"
	}

	return c.call(ctx, "get_file_contents", map[string]any{
		"owner": owner,
		"repo":  repo,
		"path":  path,
	}, true)
}

// CreateOrUpdateFile writes a file in a repository with a commit message.
// Branch is optional; when empty the server picks the default branch.
func (c *Client) CreateOrUpdateFile(ctx context.Context, owner, repo, path, content, message, branch string) (*mcpclient.ToolResult, error) {
	args := map[string]any{
		"owner":   owner,
		"repo":    repo,
		"path":    path,
		"content": content,
		"message": message,
	}
	if branch != "" {
		args["branch"] = branch
	}

	return c.call(ctx, "create_or_update_file", args, false)
}

// DeleteFile removes a file from a repository with a commit message.
func (c *Client) DeleteFile(ctx context.Context, owner, repo, path, message string) (*mcpclient.ToolResult, error) {
	return c.call(ctx, "delete_file", map[string]any{
		"owner":   owner,
		"repo":    repo,
		"path":    path,
		"message": message,
	}, false)
}

// ===== Branches =====

// ListBranches lists the branches of a repository.
func (c *Client) ListBranches(ctx context.Context, owner, repo string) (*mcpclient.ToolResult, error) {
	return c.call(ctx, "list_branches", map[string]any{
		"owner": owner,
		"repo":  repo,
	}, true)
}

// CreateBranch creates a branch. From defaults to main when empty.
func (c *Client) CreateBranch(ctx context.Context, owner, repo, branch, from string) (*mcpclient.ToolResult, error) {
	if from == "" {
		from = "main"
	}

	return c.call(ctx, "create_branch", map[string]any{
		"owner":       owner,
		"repo":        repo,
		"branch_name": branch,
		"from_branch": from,
	}, false)
}

// ===== Issues =====

// ListIssues lists issues in a repository. State defaults to open.
func (c *Client) ListIssues(ctx context.Context, owner, repo, state string) (*mcpclient.ToolResult, error) {
	if state == "" {
		state = "open"
	}

	return c.call(ctx, "list_issues", map[string]any{
		"owner": owner,
		"repo":  repo,
		"state": state,
	}, true)
}

// GetIssue fetches one issue by number.
func (c *Client) GetIssue(ctx context.Context, owner, repo string, number int) (*mcpclient.ToolResult, error) {
	return c.call(ctx, "get_issue", map[string]any{
		"owner":        owner,
		"repo":         repo,
		"issue_number": number,
	}, true)
}

// CreateIssue opens a new issue.
func (c *Client) CreateIssue(ctx context.Context, owner, repo, title, body string) (*mcpclient.ToolResult, error) {
	return c.call(ctx, "create_issue", map[string]any{
		"owner": owner,
		"repo":  repo,
		"title": title,
		"body":  body,
	}, false)
}

// IssueUpdate holds the fields UpdateIssue may change. Empty fields are left
// untouched on the issue.
type IssueUpdate struct {
	Title string
	Body  string
	State string
}

// UpdateIssue edits an existing issue.
func (c *Client) UpdateIssue(ctx context.Context, owner, repo string, number int, update IssueUpdate) (*mcpclient.ToolResult, error) {
	args := map[string]any{
		"owner":        owner,
		"repo":         repo,
		"issue_number": number,
	}
	if update.Title != "" {
		args["title"] = update.Title
	}
	if update.Body != "" {
		args["body"] = update.Body
	}
	if update.State != "" {
		args["state"] = update.State
	}

	return c.call(ctx, "update_issue", args, false)
}

// AddIssueComment comments on an issue.
func (c *Client) AddIssueComment(ctx context.Context, owner, repo string, number int, body string) (*mcpclient.ToolResult, error) {
	return c.call(ctx, "add_issue_comment", map[string]any{
		"owner":        owner,
		"repo":         repo,
		"issue_number": number,
		"body":         body,
	}, false)
}

// ===== Pull Requests =====

// ListPullRequests lists pull requests. State defaults to open.
func (c *Client) ListPullRequests(ctx context.Context, owner, repo, state string) (*mcpclient.ToolResult, error) {
	if state == "" {
		state = "open"
	}

	return c.call(ctx, "list_pull_requests", map[string]any{
		"owner": owner,
		"repo":  repo,
		"state": state,
	}, true)
}

// GetPullRequest fetches one pull request by number.
func (c *Client) GetPullRequest(ctx context.Context, owner, repo string, number int) (*mcpclient.ToolResult, error) {
	return c.call(ctx, "get_pull_request", map[string]any{
		"owner":       owner,
		"repo":        repo,
		"pull_number": number,
	}, true)
}

// CreatePullRequest opens a pull request from head into base.
func (c *Client) CreatePullRequest(ctx context.Context, owner, repo, title, head, base, body string) (*mcpclient.ToolResult, error) {
	return c.call(ctx, "create_pull_request", map[string]any{
		"owner": owner,
		"repo":  repo,
		"title": title,
		"head":  head,
		"base":  base,
		"body":  body,
	}, false)
}

// ===== Search =====

// SearchCode searches code with GitHub's query syntax.
func (c *Client) SearchCode(ctx context.Context, query string) (*mcpclient.ToolResult, error) {
	return c.call(ctx, "search_code", map[string]any{"query": query}, true)
}

// SearchIssues searches issues and pull requests.
func (c *Client) SearchIssues(ctx context.Context, query string) (*mcpclient.ToolResult, error) {
	return c.call(ctx, "search_issues", map[string]any{"query": query}, true)
}
