package mcpclient

import "github.com/Sathishruw/mcp-filesystem-client/internal/errors"

// Re-export error types from internal package

// LaunchError indicates the server executable could not be found or spawned.
type LaunchError = errors.LaunchError

// WriteError indicates a transport write failed.
type WriteError = errors.WriteError

// ParseError indicates a line from the server was not valid JSON.
type ParseError = errors.ParseError

// ProtocolError indicates a protocol violation such as an orphan response.
type ProtocolError = errors.ProtocolError

// HandshakeError indicates the initialize sequence failed.
type HandshakeError = errors.HandshakeError

// RemoteError indicates the server answered a call with a JSON-RPC error object.
type RemoteError = errors.RemoteError

// ToolError indicates a tool executed but reported failure via its isError flag.
type ToolError = errors.ToolError

// ProcessError indicates the server process exited unexpectedly.
type ProcessError = errors.ProcessError

// ClientError is the base interface for all errors produced by this library.
type ClientError = errors.ClientError

// Re-export sentinel errors from internal package.
var (
	// ErrNotConnected indicates the client is not connected.
	ErrNotConnected = errors.ErrNotConnected

	// ErrAlreadyConnected indicates the client is already connected.
	ErrAlreadyConnected = errors.ErrAlreadyConnected

	// ErrClientClosed indicates the client has been closed and cannot be reused.
	ErrClientClosed = errors.ErrClientClosed

	// ErrSessionClosed indicates the session ended before the operation completed.
	ErrSessionClosed = errors.ErrSessionClosed

	// ErrRequestTimeout indicates a request timed out waiting for its response.
	ErrRequestTimeout = errors.ErrRequestTimeout

	// ErrNotInitialized indicates a tool operation ran before Initialize.
	ErrNotInitialized = errors.ErrNotInitialized

	// ErrAlreadyInitialized indicates Initialize was called twice.
	ErrAlreadyInitialized = errors.ErrAlreadyInitialized

	// ErrNoCommand indicates Start was called without a server command.
	ErrNoCommand = errors.ErrNoCommand

	// ErrUnknownTool indicates client-side validation rejected a tool name.
	ErrUnknownTool = errors.ErrUnknownTool
)
