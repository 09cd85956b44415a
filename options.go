package mcpclient

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/Sathishruw/mcp-filesystem-client/internal/config"
)

// Option configures client Options using the functional options pattern.
// This is the primary option type for configuring clients and one-shot calls.
type Option func(*Options)

// applyOptions applies functional options to an Options struct.
func applyOptions(opts []Option) *Options {
	options := &Options{
		ClientName:    defaultClientName,
		ClientVersion: Version,
	}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// ===== Basic Configuration =====

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithCommand sets the server executable and its arguments.
// A bare name is resolved via PATH; an explicit path is used as-is.
// Required unless a custom transport is injected.
func WithCommand(command string, args ...string) Option {
	return func(o *Options) {
		o.Command = command
		o.Args = args
	}
}

// WithEnv provides additional environment variables for the server process.
// Values are merged over the parent environment.
func WithEnv(env map[string]string) Option {
	return func(o *Options) {
		o.Env = env
	}
}

// WithCwd sets the working directory for the server process.
func WithCwd(cwd string) Option {
	return func(o *Options) {
		o.Cwd = cwd
	}
}

// WithClientInfo sets the name and version reported to the server during the
// initialize handshake.
func WithClientInfo(name, version string) Option {
	return func(o *Options) {
		o.ClientName = name
		o.ClientVersion = version
	}
}

// ===== Timeouts =====

// WithCallTimeout sets how long a single request may wait for its response
// before failing with a timeout. Defaults to 30 seconds.
func WithCallTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.CallTimeout = timeout
	}
}

// WithInitializeTimeout sets the timeout for the initialize handshake.
// Defaults to 30 seconds; overridable via the MCPFS_INIT_TIMEOUT environment
// variable (seconds) when this option is not used.
func WithInitializeTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.InitializeTimeout = &timeout
	}
}

// WithCloseGrace sets how long Close waits for the server to exit after the
// termination signal before force-killing it. Defaults to 3 seconds.
func WithCloseGrace(grace time.Duration) Option {
	return func(o *Options) {
		o.CloseGrace = grace
	}
}

// ===== Callbacks =====

// WithNotificationHandler sets a callback for server notifications
// (messages without an id). Without a handler, notifications are dropped.
// The handler runs on the read loop goroutine and must return promptly.
func WithNotificationHandler(handler NotificationHandler) Option {
	return func(o *Options) {
		o.OnNotification = handler
	}
}

// WithStderr sets a callback function for handling server stderr output.
// Stderr is diagnostic text only; it is never parsed as protocol data.
func WithStderr(handler func(string)) Option {
	return func(o *Options) {
		o.Stderr = handler
	}
}

// ===== Advanced =====

// WithMaxBufferSize sets the maximum bytes for a single server output line.
// Defaults to 1MB.
func WithMaxBufferSize(size int) Option {
	return func(o *Options) {
		o.MaxBufferSize = &size
	}
}

// WithToolValidation controls client-side tool name checking.
// When enabled, CallTool rejects names absent from the server's tool list
// (fetched on first use) with ErrUnknownTool before anything hits the wire.
// Disabled by default.
func WithToolValidation(validate bool) Option {
	return func(o *Options) {
		o.ValidateTools = validate
	}
}

// WithTransport injects a custom transport implementation.
// The transport must implement the Transport interface.
func WithTransport(transport config.Transport) Option {
	return func(o *Options) {
		o.Transport = transport
	}
}

// WithTracer instruments initialize, tools/list, and tools/call with
// OpenTelemetry spans. Use the tracing package to build a provider; without
// this option tracing stays off.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *Options) {
		o.Tracer = tracer
	}
}
