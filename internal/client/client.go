package client

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/Sathishruw/mcp-filesystem-client/internal/config"
	"github.com/Sathishruw/mcp-filesystem-client/internal/errors"
	"github.com/Sathishruw/mcp-filesystem-client/internal/protocol"
	"github.com/Sathishruw/mcp-filesystem-client/internal/rpc"
	"github.com/Sathishruw/mcp-filesystem-client/internal/subprocess"
)

// Client wires a transport, a request multiplexer, and an MCP session into
// one connection to a tool server.
type Client struct {
	log       *slog.Logger
	transport config.Transport
	mux       *protocol.Mux
	session   *protocol.Session
	options   *config.Options

	// Fatal error storage (first transport failure wins)
	errMu    sync.RWMutex
	fatalErr error

	// Errgroup for goroutine management
	eg *errgroup.Group

	// Lifecycle management
	mu        sync.Mutex
	done      chan struct{}
	connected bool
	closed    bool      // Tracks if Close() has been called
	closeOnce sync.Once // Ensures Close() only runs once
}

// New creates a new client.
//
// The client is not connected after creation. Call Start() with options to
// spawn the server, then Initialize() before invoking tools.
func New() *Client {
	return &Client{
		done: make(chan struct{}),
	}
}

// setFatalError stores the first fatal error encountered.
func (c *Client) setFatalError(err error) {
	if err == nil {
		return
	}

	c.errMu.Lock()
	defer c.errMu.Unlock()

	if c.fatalErr == nil {
		c.fatalErr = err
	}
}

// getFatalError returns the stored fatal error, if any.
func (c *Client) getFatalError() error {
	c.errMu.RLock()
	defer c.errMu.RUnlock()

	return c.fatalErr
}

// isConnected returns true if the client is connected.
// This method is safe to call from any goroutine.
func (c *Client) isConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.connected
}

// Start spawns the server subprocess and begins reading its output.
//
// Returns LaunchError if the executable cannot be located or started.
// Start does not perform the MCP handshake; call Initialize() next.
func (c *Client) Start(ctx context.Context, options *config.Options) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.ErrClientClosed
	}

	if c.connected {
		return errors.ErrAlreadyConnected
	}

	// Default to empty options if nil
	if options == nil {
		options = &config.Options{}
	}

	// Extract logger from options, defaulting to a no-op logger
	log := options.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	// Each connection gets a ULID so concurrent sessions are distinguishable
	// in logs and traces.
	sessionID := ulid.Make().String()
	c.log = log.With("component", "client", "session_id", sessionID)
	c.options = options

	// Create or use injected transport
	var transport config.Transport

	if options.Transport != nil {
		transport = options.Transport

		c.log.Debug("Using injected custom transport")
	} else {
		if options.Command == "" {
			return errors.ErrNoCommand
		}

		transport = subprocess.NewStdioTransport(c.log, options)
	}

	if err := transport.Start(ctx); err != nil {
		return fmt.Errorf("start transport: %w", err)
	}

	c.transport = transport

	// The read loop must outlive the caller's ctx (which often carries a
	// startup timeout); shutdown is signaled through c.done instead.
	var egCtx context.Context

	c.eg, egCtx = errgroup.WithContext(context.Background())

	// Create the multiplexer; it is the sole reader from the transport.
	c.mux = protocol.NewMux(c.log, transport, options.OnNotification, options.Tracer)
	if err := c.mux.Start(egCtx); err != nil {
		transport.Close()

		return fmt.Errorf("start multiplexer: %w", err)
	}

	// Create session for MCP operations
	c.session = protocol.NewSession(c.log, c.mux, options, sessionID)

	// Monitor the multiplexer so transport failures are recorded even when
	// no request is in flight.
	c.eg.Go(func() error {
		return c.monitor(egCtx)
	})

	c.connected = true
	c.log.Info("Client started successfully")

	return nil
}

// monitor watches for multiplexer shutdown and records the fatal error.
func (c *Client) monitor(ctx context.Context) error {
	select {
	case <-c.mux.Done():
		if err := c.mux.FatalError(); err != nil {
			c.log.Error("Transport error", "error", err)
			c.setFatalError(err)

			return err
		}

		return nil

	case <-c.done:
		return nil

	case <-ctx.Done():
		return ctx.Err()
	}
}

// Initialize performs the MCP handshake with the server.
//
// Must be called after Start() and before any tool operation. Runs at most
// once per client; a second call returns ErrAlreadyInitialized.
func (c *Client) Initialize(ctx context.Context) error {
	if !c.isConnected() {
		return errors.ErrNotConnected
	}

	if err := c.getFatalError(); err != nil {
		return err
	}

	return c.session.Initialize(ctx)
}

// ServerInfo returns the server's handshake response, or nil before Initialize.
func (c *Client) ServerInfo() *rpc.InitializeResult {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()

	if session == nil {
		return nil
	}

	return session.InitializeResult()
}

// ListTools queries the server for its tools and caches the result.
func (c *Client) ListTools(ctx context.Context) ([]rpc.Tool, error) {
	if !c.isConnected() {
		return nil, errors.ErrNotConnected
	}

	return c.session.ListTools(ctx)
}

// AvailableTools returns the cached tool list, or nil before the first ListTools.
func (c *Client) AvailableTools() []rpc.Tool {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()

	if session == nil {
		return nil
	}

	return session.AvailableTools()
}

// CallTool invokes a named tool and returns its decoded result.
func (c *Client) CallTool(
	ctx context.Context,
	name string,
	arguments map[string]any,
) (*rpc.CallToolResult, error) {
	if !c.isConnected() {
		return nil, errors.ErrNotConnected
	}

	return c.session.CallTool(ctx, name, arguments)
}

// CallToolText invokes a tool and returns the joined text content.
func (c *Client) CallToolText(
	ctx context.Context,
	name string,
	arguments map[string]any,
) (string, error) {
	if !c.isConnected() {
		return "", errors.ErrNotConnected
	}

	return c.session.CallToolText(ctx, name, arguments)
}

// Ping checks that the server is responsive.
func (c *Client) Ping(ctx context.Context) error {
	if !c.isConnected() {
		return errors.ErrNotConnected
	}

	return c.session.Ping(ctx)
}

// Close terminates the session and cleans up resources.
//
// Shutdown is graceful: the server gets a termination signal and a grace
// period before being killed. After Close(), the client cannot be reused -
// create a new client with New(). This method is safe to call multiple times.
func (c *Client) Close() error {
	var closeErr error

	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		wasConnected := c.connected
		c.connected = false
		c.mu.Unlock()

		if !wasConnected {
			return
		}

		c.log.Info("Closing client")

		// Signal shutdown
		close(c.done)

		// Stop the multiplexer
		if c.mux != nil {
			c.mux.Stop()
		}

		// Close transport and capture error
		if c.transport != nil {
			closeErr = c.transport.Close()
		}

		// Wait for errgroup goroutines to complete
		if c.eg != nil {
			if err := c.eg.Wait(); err != nil && closeErr == nil {
				closeErr = err
			}
		}

		c.log.Info("Client closed")
	})

	return closeErr
}
