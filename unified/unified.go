// Package unified coordinates a local filesystem MCP session and a GitHub
// MCP session behind one client, adding hybrid operations that move data
// between them.
package unified

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	mcpclient "github.com/Sathishruw/mcp-filesystem-client"
)

var (
	// ErrNoFileSession is returned by operations that need the filesystem
	// side when none was configured.
	ErrNoFileSession = errors.New("filesystem session not configured")

	// ErrNoGitHubSession is returned by operations that need the GitHub
	// side when none was configured.
	ErrNoGitHubSession = errors.New("github session not configured")
)

// Session is one MCP server connection. Both halves of the unified client
// satisfy it, and tests stub it.
type Session interface {
	Start(ctx context.Context) error
	ListTools(ctx context.Context) ([]mcpclient.Tool, error)
	CallTool(ctx context.Context, name string, arguments map[string]any) (*mcpclient.ToolResult, error)
	Close() error
}

// fsSession adapts an mcpclient.Client to Session, binding the options the
// client should start with and folding the handshake into Start.
type fsSession struct {
	client mcpclient.Client
	opts   []mcpclient.Option
}

// NewFileSession wraps a filesystem MCP server definition as a Session.
// The options must include the server command (or a transport).
func NewFileSession(opts ...mcpclient.Option) Session {
	return &fsSession{client: mcpclient.NewClient(), opts: opts}
}

func (s *fsSession) Start(ctx context.Context) error {
	if err := s.client.Start(ctx, s.opts...); err != nil {
		return fmt.Errorf("start filesystem server: %w", err)
	}
	if err := s.client.Initialize(ctx); err != nil {
		_ = s.client.Close()
		return fmt.Errorf("initialize filesystem server: %w", err)
	}

	return nil
}

func (s *fsSession) ListTools(ctx context.Context) ([]mcpclient.Tool, error) {
	return s.client.ListTools(ctx)
}

func (s *fsSession) CallTool(ctx context.Context, name string, arguments map[string]any) (*mcpclient.ToolResult, error) {
	return s.client.CallTool(ctx, name, arguments)
}

func (s *fsSession) Close() error {
	return s.client.Close()
}

// Options configures a unified client.
type Options struct {
	// Logger receives structured logs. Defaults to a no-op logger.
	Logger *slog.Logger
}

// Option mutates Options.
type Option func(*Options)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// Client manages a filesystem session and a GitHub session together. Either
// side may be nil; operations that need a missing side fail with
// ErrNoFileSession or ErrNoGitHubSession.
type Client struct {
	log *slog.Logger
	fs  Session
	gh  Session
}

// New builds a unified client over the given sessions. Pass nil for a side
// you do not need.
func New(fs, gh Session, opts ...Option) *Client {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	log := options.Logger
	if log == nil {
		log = mcpclient.NopLogger()
	}

	return &Client{
		log: log.With("component", "unified"),
		fs:  fs,
		gh:  gh,
	}
}

// FS returns the filesystem session, or nil.
func (c *Client) FS() Session {
	return c.fs
}

// GitHub returns the GitHub session, or nil.
func (c *Client) GitHub() Session {
	return c.gh
}

// Start brings up both sessions concurrently. On any failure every session
// is closed and the first error is returned.
func (c *Client) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	if c.fs != nil {
		g.Go(func() error {
			return c.fs.Start(ctx)
		})
	}
	if c.gh != nil {
		g.Go(func() error {
			return c.gh.Start(ctx)
		})
	}

	if err := g.Wait(); err != nil {
		_ = c.Close()
		return err
	}

	c.log.Info("Unified client started",
		"filesystem", c.fs != nil,
		"github", c.gh != nil)

	return nil
}

// Close shuts down both sessions and joins their errors.
func (c *Client) Close() error {
	var errs []error

	if c.fs != nil {
		if err := c.fs.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close filesystem session: %w", err))
		}
	}
	if c.gh != nil {
		if err := c.gh.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close github session: %w", err))
		}
	}

	return errors.Join(errs...)
}

// TaggedTool is a tool annotated with the session it came from.
type TaggedTool struct {
	Origin string // "filesystem" or "github"
	Tool   mcpclient.Tool
}

// AllTools lists the tools of every configured session, tagged by origin.
func (c *Client) AllTools(ctx context.Context) ([]TaggedTool, error) {
	var all []TaggedTool

	if c.fs != nil {
		tools, err := c.fs.ListTools(ctx)
		if err != nil {
			return nil, fmt.Errorf("list filesystem tools: %w", err)
		}
		for _, tool := range tools {
			all = append(all, TaggedTool{Origin: "filesystem", Tool: tool})
		}
	}

	if c.gh != nil {
		tools, err := c.gh.ListTools(ctx)
		if err != nil {
			return nil, fmt.Errorf("list github tools: %w", err)
		}
		for _, tool := range tools {
			all = append(all, TaggedTool{Origin: "github", Tool: tool})
		}
	}

	return all, nil
}

// SyncResult reports the outcome of syncing one repository path.
type SyncResult struct {
	// Path is the repository path that was requested.
	Path string

	// LocalPath is where the file was written. Empty when Err is set.
	LocalPath string

	// Err is nil when the file was synced.
	Err error
}

// SyncRepoToLocal downloads files from a GitHub repository into a local
// directory through the filesystem session. Each path gets its own result;
// one failed file does not stop the rest. The returned error covers only
// setup failures such as a missing session or an unwritable directory.
func (c *Client) SyncRepoToLocal(ctx context.Context, owner, repo string, paths []string, localDir string) ([]SyncResult, error) {
	if c.fs == nil {
		return nil, ErrNoFileSession
	}
	if c.gh == nil {
		return nil, ErrNoGitHubSession
	}

	log := c.log.With(
		"sync_id", uuid.NewString(),
		"repo", owner+"/"+repo,
		"dest", localDir)

	if _, err := c.callText(ctx, c.fs, "create_directory", map[string]any{
		"directory": localDir,
	}); err != nil {
		return nil, fmt.Errorf("create local directory: %w", err)
	}

	results := make([]SyncResult, 0, len(paths))
	for _, path := range paths {
		result := SyncResult{Path: path}

		content, err := c.callText(ctx, c.gh, "get_file_contents", map[string]any{
			"owner": owner,
			"repo":  repo,
			"path":  path,
		})
		if err != nil {
			result.Err = fmt.Errorf("download %s: %w", path, err)
			log.Warn("Sync download failed", "path", path, "error", err)
			results = append(results, result)
			continue
		}

		// Tool paths always use forward slashes; the server resolves
		// them against its own base directory.
		localPath := localDir + "/" + path

		if _, err := c.callText(ctx, c.fs, "write_file", map[string]any{
			"filepath": localPath,
			"content":  content,
		}); err != nil {
			result.Err = fmt.Errorf("write %s: %w", localPath, err)
			log.Warn("Sync write failed", "path", path, "error", err)
			results = append(results, result)
			continue
		}

		result.LocalPath = localPath
		results = append(results, result)
		log.Info("Synced file", "path", path, "local_path", localPath)
	}

	return results, nil
}

// callText invokes a tool and folds isError results into an error, so hybrid
// operations handle transport failures and tool failures the same way.
func (c *Client) callText(ctx context.Context, sess Session, tool string, args map[string]any) (string, error) {
	result, err := sess.CallTool(ctx, tool, args)
	if err != nil {
		return "", err
	}
	if result.IsError {
		return "", &mcpclient.ToolError{Name: tool, Text: result.Text()}
	}

	return result.Text(), nil
}
