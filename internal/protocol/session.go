package protocol

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/Sathishruw/mcp-filesystem-client/internal/config"
	"github.com/Sathishruw/mcp-filesystem-client/internal/errors"
	"github.com/Sathishruw/mcp-filesystem-client/internal/rpc"
	"github.com/Sathishruw/mcp-filesystem-client/tracing"
)

// Session layers MCP semantics on top of the raw request multiplexer:
// the initialize handshake, tool discovery, and tool invocation.
//
// A session is single-use. Initialize succeeds at most once; after the
// session closes, create a new one rather than reusing it.
type Session struct {
	log       *slog.Logger
	mux       *Mux
	options   *config.Options
	tracer    trace.Tracer
	sessionID string

	// Handshake state (protected by initMu)
	initMu      sync.RWMutex
	initStarted bool
	initialized bool
	initResult  *rpc.InitializeResult

	// Cached tool list from the most recent tools/list (protected by toolsMu)
	toolsMu sync.RWMutex
	tools   []rpc.Tool
}

// NewSession creates a new Session for MCP operations. sessionID tags spans
// and is informational only.
func NewSession(
	log *slog.Logger,
	mux *Mux,
	options *config.Options,
	sessionID string,
) *Session {
	var tracer trace.Tracer
	if options != nil {
		tracer = options.Tracer
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("noop")
	}

	return &Session{
		log:       log.With("component", "session"),
		mux:       mux,
		options:   options,
		tracer:    tracer,
		sessionID: sessionID,
	}
}

// Initialize performs the MCP handshake: it sends the initialize request,
// decodes the server's response, and emits the notifications/initialized
// notification.
//
// The handshake runs at most once per session. A second call returns
// ErrAlreadyInitialized, even if the first attempt failed; a failed handshake
// leaves the session unusable.
func (s *Session) Initialize(ctx context.Context) (err error) {
	s.initMu.Lock()

	if s.initStarted {
		s.initMu.Unlock()

		return errors.ErrAlreadyInitialized
	}

	s.initStarted = true
	s.initMu.Unlock()

	ctx, span := s.tracer.Start(ctx, tracing.SpanInitialize, trace.WithAttributes(
		attribute.String(tracing.AttrSessionID, s.sessionID),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
		}
		span.End()
	}()

	s.log.Debug("Sending initialize request")

	params := &rpc.InitializeParams{
		ProtocolVersion: rpc.ProtocolVersion,
		Capabilities:    rpc.ClientCapabilities{},
		ClientInfo: rpc.ImplementationInfo{
			Name:    s.options.ClientName,
			Version: s.options.ClientVersion,
		},
	}

	raw, err := s.mux.SendRequest(ctx, rpc.MethodInitialize, params, s.initializeTimeout())
	if err != nil {
		return &errors.HandshakeError{Stage: "initialize", Err: err}
	}

	var result rpc.InitializeResult

	if err := json.Unmarshal(raw, &result); err != nil {
		return &errors.HandshakeError{Stage: "decode result", Err: err}
	}

	if result.ProtocolVersion != rpc.ProtocolVersion {
		s.log.Warn("Server negotiated a different protocol version",
			"client", rpc.ProtocolVersion,
			"server", result.ProtocolVersion,
		)
	}

	if err := s.mux.Notify(ctx, rpc.MethodInitialized, nil); err != nil {
		return &errors.HandshakeError{Stage: "initialized notification", Err: err}
	}

	span.SetAttributes(attribute.String(tracing.AttrServerName, result.ServerInfo.Name))

	s.initMu.Lock()
	s.initResult = &result
	s.initialized = true
	s.initMu.Unlock()

	s.log.Info("Session initialized",
		"server", result.ServerInfo.Name,
		"version", result.ServerInfo.Version,
		"protocol", result.ProtocolVersion,
	)

	return nil
}

// initializeTimeout returns the handshake timeout from options, env var, or default.
func (s *Session) initializeTimeout() time.Duration {
	// Check options for explicit timeout
	if s.options != nil && s.options.InitializeTimeout != nil {
		return *s.options.InitializeTimeout
	}

	// Fall back to env var
	if timeoutStr := os.Getenv("MCPFS_INIT_TIMEOUT"); timeoutStr != "" {
		if timeoutSec, err := strconv.Atoi(timeoutStr); err == nil && timeoutSec > 0 {
			return time.Duration(timeoutSec) * time.Second
		}
	}

	// Fall back to default
	return config.DefaultInitializeTimeout
}

func (s *Session) callTimeout() time.Duration {
	if s.options != nil && s.options.CallTimeout > 0 {
		return s.options.CallTimeout
	}

	return config.DefaultCallTimeout
}

// Initialized reports whether the handshake has completed successfully.
func (s *Session) Initialized() bool {
	s.initMu.RLock()
	defer s.initMu.RUnlock()

	return s.initialized
}

// InitializeResult returns a copy of the server's handshake response.
// Returns nil if the session is not initialized.
func (s *Session) InitializeResult() *rpc.InitializeResult {
	s.initMu.RLock()
	defer s.initMu.RUnlock()

	if s.initResult == nil {
		return nil
	}

	result := *s.initResult

	return &result
}

func (s *Session) requireInitialized() error {
	if !s.Initialized() {
		return errors.ErrNotInitialized
	}

	return nil
}

// ListTools queries the server for its tool list and caches the result.
func (s *Session) ListTools(ctx context.Context) (tools []rpc.Tool, err error) {
	if err := s.requireInitialized(); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, tracing.SpanToolsList, trace.WithAttributes(
		attribute.String(tracing.AttrSessionID, s.sessionID),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
		}
		span.End()
	}()

	raw, err := s.mux.SendRequest(ctx, rpc.MethodToolsList, nil, s.callTimeout())
	if err != nil {
		return nil, err
	}

	var result rpc.ToolsListResult

	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode tools/list result: %w", err)
	}

	s.toolsMu.Lock()
	s.tools = result.Tools
	s.toolsMu.Unlock()

	s.log.Debug("Tool list refreshed", "count", len(result.Tools))

	return slices.Clone(result.Tools), nil
}

// AvailableTools returns the cached tool list from the most recent ListTools.
// Returns nil if tools have not been listed yet.
func (s *Session) AvailableTools() []rpc.Tool {
	s.toolsMu.RLock()
	defer s.toolsMu.RUnlock()

	return slices.Clone(s.tools)
}

// CallTool invokes a named tool on the server and returns its decoded result.
//
// Protocol failures (error response, timeout, dead session) surface as
// errors. A result with the isError flag set is returned as-is so the caller
// can inspect the content; use CallToolText for the error-folding shorthand.
func (s *Session) CallTool(
	ctx context.Context,
	name string,
	arguments map[string]any,
) (result *rpc.CallToolResult, err error) {
	if err := s.requireInitialized(); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, tracing.SpanPrefixTool+name, trace.WithAttributes(
		attribute.String(tracing.AttrToolName, name),
		attribute.String(tracing.AttrSessionID, s.sessionID),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
		}
		span.End()
	}()

	if s.options != nil && s.options.ValidateTools {
		if err := s.validateToolName(ctx, name); err != nil {
			return nil, err
		}
	}

	if arguments == nil {
		arguments = map[string]any{}
	}

	s.log.Debug("Calling tool", "tool", name)

	params := &rpc.CallToolParams{
		Name:      name,
		Arguments: arguments,
	}

	raw, err := s.mux.SendRequest(ctx, rpc.MethodToolsCall, params, s.callTimeout())
	if err != nil {
		return nil, err
	}

	var decoded rpc.CallToolResult

	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode tools/call result: %w", err)
	}

	if decoded.IsError {
		s.log.Warn("Tool reported failure", "tool", name)
	}

	return &decoded, nil
}

// CallToolText invokes a tool and returns the joined text content.
// A result flagged isError is folded into a ToolError.
func (s *Session) CallToolText(
	ctx context.Context,
	name string,
	arguments map[string]any,
) (string, error) {
	result, err := s.CallTool(ctx, name, arguments)
	if err != nil {
		return "", err
	}

	text := result.Text()

	if result.IsError {
		return "", &errors.ToolError{Name: name, Text: text}
	}

	return text, nil
}

// validateToolName checks the name against the server's tool list, fetching
// the list on first use.
func (s *Session) validateToolName(ctx context.Context, name string) error {
	s.toolsMu.RLock()
	cached := s.tools
	s.toolsMu.RUnlock()

	if cached == nil {
		listed, err := s.ListTools(ctx)
		if err != nil {
			return fmt.Errorf("refresh tool list: %w", err)
		}

		cached = listed
	}

	if slices.ContainsFunc(cached, func(t rpc.Tool) bool { return t.Name == name }) {
		return nil
	}

	return fmt.Errorf("%w: %q", errors.ErrUnknownTool, name)
}

// Ping sends a ping request and waits for the acknowledgment.
func (s *Session) Ping(ctx context.Context) error {
	_, err := s.mux.SendRequest(ctx, rpc.MethodPing, nil, s.callTimeout())

	return err
}
