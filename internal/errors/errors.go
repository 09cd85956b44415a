package errors

import (
	"errors"
	"fmt"
)

// ClientError is the base interface for all SDK errors.
type ClientError interface {
	error
	IsClientError() bool
}

// Compile-time verification that all error types implement ClientError.
var (
	_ ClientError = (*LaunchError)(nil)
	_ ClientError = (*WriteError)(nil)
	_ ClientError = (*ParseError)(nil)
	_ ClientError = (*ProtocolError)(nil)
	_ ClientError = (*HandshakeError)(nil)
	_ ClientError = (*RemoteError)(nil)
	_ ClientError = (*ToolError)(nil)
	_ ClientError = (*ProcessError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrNotConnected indicates the client is not connected.
	ErrNotConnected = errors.New("client not connected")

	// ErrAlreadyConnected indicates the client is already connected.
	ErrAlreadyConnected = errors.New("client already connected")

	// ErrClientClosed indicates the client has been closed and cannot be reused.
	ErrClientClosed = errors.New("client closed: clients are single-use, create a new one with NewClient()")

	// ErrTransportNotConnected indicates the transport has not been started.
	ErrTransportNotConnected = errors.New("transport not connected")

	// ErrSessionClosed indicates the session ended while requests were outstanding.
	// Every still-pending call fails with this error when the subprocess exits
	// or the session is closed.
	ErrSessionClosed = errors.New("session closed")

	// ErrRequestTimeout indicates a request received no response within the
	// configured window.
	ErrRequestTimeout = errors.New("request timeout")

	// ErrStdinClosed indicates stdin was closed due to context cancellation.
	ErrStdinClosed = errors.New("stdin closed")

	// ErrNotInitialized indicates a tool call was attempted before the
	// initialize handshake completed.
	ErrNotInitialized = errors.New("session not initialized: call Initialize first")

	// ErrAlreadyInitialized indicates the initialize handshake already ran.
	// The handshake happens exactly once per session.
	ErrAlreadyInitialized = errors.New("session already initialized")

	// ErrNoCommand indicates no server command was configured.
	ErrNoCommand = errors.New("no server command configured")

	// ErrUnknownTool indicates a tool name absent from the server's tool list.
	// Only returned when local tool validation is enabled.
	ErrUnknownTool = errors.New("unknown tool")
)

// LaunchError indicates the server subprocess could not be started.
type LaunchError struct {
	Command string
	Err     error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to launch %q: %v", e.Command, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// IsClientError implements ClientError.
func (e *LaunchError) IsClientError() bool { return true }

// WriteError indicates a transport write failed.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("transport write failed: %v", e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// IsClientError implements ClientError.
func (e *WriteError) IsClientError() bool { return true }

// ParseError indicates one line of server output was not valid JSON.
// The read loop reports it and continues; it preserves the raw line.
type ParseError struct {
	RawData string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to decode JSON from server: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsClientError implements ClientError.
func (e *ParseError) IsClientError() bool { return true }

// ProtocolError indicates a well-formed message that violates the protocol,
// such as a response whose id matches no pending request. It is logged, never
// surfaced to a caller.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol violation: %s", e.Reason)
}

// IsClientError implements ClientError.
func (e *ProtocolError) IsClientError() bool { return true }

// HandshakeError indicates the initialize sequence failed. The session must
// not be used for tool calls afterwards.
type HandshakeError struct {
	Stage string
	Err   error
}

func (e *HandshakeError) Error() string {
	return fmt.Sprintf("initialize handshake failed (%s): %v", e.Stage, e.Err)
}

func (e *HandshakeError) Unwrap() error {
	return e.Err
}

// IsClientError implements ClientError.
func (e *HandshakeError) IsClientError() bool { return true }

// RemoteError indicates the peer answered a specific call with a JSON-RPC
// error object. Only that call's caller sees it.
type RemoteError struct {
	Code    int
	Message string
	Data    any
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote error %d: %s", e.Code, e.Message)
}

// IsClientError implements ClientError.
func (e *RemoteError) IsClientError() bool { return true }

// ToolError indicates a tool executed but reported failure via the isError
// flag on its result. The text content carries the server's message.
type ToolError struct {
	Name string
	Text string
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %q failed: %s", e.Name, e.Text)
}

// IsClientError implements ClientError.
func (e *ToolError) IsClientError() bool { return true }

// ProcessError indicates the server process exited unexpectedly.
type ProcessError struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ProcessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("server process failed (exit %d): %v", e.ExitCode, e.Err)
	}

	return fmt.Sprintf("server process failed (exit %d): %s", e.ExitCode, e.Stderr)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// IsClientError implements ClientError.
func (e *ProcessError) IsClientError() bool { return true }
