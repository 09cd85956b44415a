package config

import (
	"encoding/json"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Defaults applied when the corresponding option is unset.
const (
	// DefaultCallTimeout bounds how long a tool call waits for its response.
	DefaultCallTimeout = 30 * time.Second

	// DefaultInitializeTimeout bounds the initialize handshake.
	DefaultInitializeTimeout = 30 * time.Second

	// DefaultCloseGrace is how long Close waits after the termination signal
	// before force-killing the subprocess.
	DefaultCloseGrace = 3 * time.Second
)

// NotificationHandler receives peer notifications (messages without an id).
// Params is the raw JSON payload, which may be nil.
type NotificationHandler func(method string, params json.RawMessage)

// Options configures a client session.
type Options struct {
	// Logger is the slog logger for debug output.
	// If nil, logging is disabled (silent operation).
	Logger *slog.Logger

	// Command is the server executable to launch. Required unless a custom
	// Transport is injected.
	Command string

	// Args are the arguments passed to Command.
	Args []string

	// Env provides additional environment variables for the server process,
	// merged over the parent environment.
	Env map[string]string

	// Cwd sets the working directory for the server process.
	Cwd string

	// ClientName and ClientVersion identify this client in the initialize
	// handshake. Defaults are filled in by the session.
	ClientName    string
	ClientVersion string

	// CallTimeout bounds each tool call. Zero means DefaultCallTimeout.
	CallTimeout time.Duration

	// InitializeTimeout bounds the handshake. If nil, defaults to
	// DefaultInitializeTimeout; can also be set via MCPFS_INIT_TIMEOUT.
	InitializeTimeout *time.Duration

	// CloseGrace is the termination grace period before the subprocess is
	// force-killed. Zero means DefaultCloseGrace.
	CloseGrace time.Duration

	// OnNotification receives peer notifications. If nil, notifications are
	// dropped.
	OnNotification NotificationHandler

	// Stderr is a callback for the server's stderr lines. The stream is
	// diagnostic text only and is never parsed.
	Stderr func(string)

	// ValidateTools rejects tool names absent from the cached tool list
	// before sending. Requires a prior ListTools; off by default so the
	// server stays the authority on its own tool set.
	ValidateTools bool

	// MaxBufferSize sets the maximum bytes for one stdout line.
	// If nil, uses the transport default.
	MaxBufferSize *int

	// Transport allows injecting a custom transport implementation.
	// If nil, the default StdioTransport is created automatically.
	// This field is not serialized to JSON.
	Transport Transport `json:"-"`

	// Tracer instruments initialize, tools/list and tools/call with spans.
	// If nil, tracing is disabled (no-op spans).
	Tracer trace.Tracer `json:"-"`
}
