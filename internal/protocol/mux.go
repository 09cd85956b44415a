package protocol

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
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

// Transport defines the minimal interface needed for protocol operations.
//
// This interface is satisfied by the StdioTransport but allows for testing
// with mock transports.
type Transport interface {
	ReadMessages(ctx context.Context) (<-chan *rpc.Message, <-chan error)
	SendMessage(ctx context.Context, data []byte) error
}

// Mux multiplexes concurrent JSON-RPC requests over a single transport.
//
// The Mux handles:
//   - Assigning monotonically increasing integer request IDs
//   - Correlating responses to waiting requests by ID
//   - Request timeout enforcement
//   - Dispatching server notifications to the configured handler
//   - Failing all outstanding requests when the transport dies
//
// The Mux must be started with Start() before use and manages its own
// goroutine for reading and routing messages.
type Mux struct {
	log            *slog.Logger
	transport      Transport
	onNotification config.NotificationHandler
	tracer         trace.Tracer

	// Request IDs start at 1 and never repeat within a session.
	nextID atomic.Int64

	// Request tracking
	pendingMu sync.Mutex
	pending   map[int64]*pendingRequest

	// Fatal error handling - stores error and broadcasts via done channel
	errMu    sync.RWMutex
	fatalErr error

	// Lifecycle management
	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

// pendingRequest tracks an outgoing request awaiting response.
type pendingRequest struct {
	method   string
	response chan *rpc.Message
}

// NewMux creates a new request multiplexer.
//
// The logger will receive debug, info, warn, and error messages during
// protocol operations. The transport must be connected before calling Start().
// onNotification may be nil, in which case server notifications are dropped.
// tracer may be nil to disable span creation.
func NewMux(log *slog.Logger, transport Transport, onNotification config.NotificationHandler, tracer trace.Tracer) *Mux {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("noop")
	}

	return &Mux{
		log:            log.With("component", "protocol"),
		transport:      transport,
		onNotification: onNotification,
		tracer:         tracer,
		pending:        make(map[int64]*pendingRequest, 10),
		done:           make(chan struct{}),
	}
}

// closeDone safely closes the done channel exactly once.
func (m *Mux) closeDone() {
	m.closeOnce.Do(func() {
		close(m.done)
	})
}

// SetFatalError stores a fatal error and broadcasts to all waiters by closing done.
func (m *Mux) SetFatalError(err error) {
	m.errMu.Lock()

	if m.fatalErr == nil {
		m.fatalErr = err
	}

	m.errMu.Unlock()

	m.closeDone()
}

// FatalError returns the fatal error if one occurred.
func (m *Mux) FatalError() error {
	m.errMu.RLock()
	defer m.errMu.RUnlock()

	return m.fatalErr
}

// Done returns a channel that is closed when the multiplexer stops.
func (m *Mux) Done() <-chan struct{} {
	return m.done
}

// Start begins reading messages from the transport and routing responses.
//
// This method spawns a goroutine that reads from the transport, routes
// responses to waiting requests, and dispatches notifications. The goroutine
// stops when the context is cancelled or the transport is closed.
//
// Start must be called before SendRequest.
func (m *Mux) Start(ctx context.Context) error {
	m.log.Debug("Starting request multiplexer")

	messages, errs := m.transport.ReadMessages(ctx)

	m.wg.Add(1)

	go m.readLoop(ctx, messages, errs)

	m.log.Info("Request multiplexer started")

	return nil
}

// Stop shuts down the multiplexer.
//
// This method signals the read loop to stop, fails any outstanding requests
// with ErrSessionClosed, and waits for completion. It's safe to call Stop
// multiple times.
func (m *Mux) Stop() {
	m.log.Debug("Stopping request multiplexer")

	m.closeDone()
	m.wg.Wait()
	m.log.Info("Request multiplexer stopped")
}

// SendRequest sends a JSON-RPC request and waits for the matching response.
//
// This method assigns the next request ID, registers the request before
// writing so a fast response cannot be orphaned, and blocks until a matching
// response arrives or the timeout expires.
//
// The timeout parameter specifies how long to wait for a response and must be
// positive. Use context cancellation for overall operation timeout; on
// cancellation the pending entry is removed and a late response is treated as
// an orphan.
//
// Returns the raw result payload, or an error: RemoteError if the server
// answered with a JSON-RPC error object, ErrRequestTimeout on expiry,
// ErrSessionClosed (or the underlying fatal transport error) if the session
// died first.
func (m *Mux) SendRequest(
	ctx context.Context,
	method string,
	params any,
	timeout time.Duration,
) (result json.RawMessage, err error) {
	// Fail fast when the session is already dead.
	select {
	case <-m.done:
		return nil, m.closedErr()
	default:
	}

	id := m.nextID.Add(1)

	ctx, span := m.tracer.Start(ctx, tracing.SpanPrefixRPC+method, trace.WithAttributes(
		attribute.String(tracing.AttrRPCMethod, method),
		attribute.Int64(tracing.AttrRequestID, id),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
		}
		span.End()
	}()

	m.log.Debug("Sending request", "id", id, "method", method)

	// Register before sending so the response cannot win the race.
	responseChan := make(chan *rpc.Message, 1)
	pending := &pendingRequest{
		method:   method,
		response: responseChan,
	}

	m.pendingMu.Lock()
	m.pending[id] = pending
	m.pendingMu.Unlock()

	req := rpc.NewRequest(id, method, params)

	data, err := json.Marshal(req)
	if err != nil {
		m.removePending(id)
		m.log.Error("Failed to marshal request", "id", id, "error", err)

		return nil, fmt.Errorf("marshal request: %w", err)
	}

	if err := m.transport.SendMessage(ctx, data); err != nil {
		m.removePending(id)
		m.log.Error("Failed to send request", "id", id, "error", err)

		return nil, fmt.Errorf("send request: %w", err)
	}

	m.log.Debug("Request sent, waiting for response", "id", id, "method", method)

	// Wait for response with timeout
	select {
	case resp := <-responseChan:
		if resp.Error != nil {
			m.log.Warn("Request returned error",
				"id", id,
				"method", method,
				"code", resp.Error.Code,
				"error", resp.Error.Message,
			)

			return nil, &errors.RemoteError{
				Code:    resp.Error.Code,
				Message: resp.Error.Message,
				Data:    resp.Error.Data,
			}
		}

		m.log.Debug("Received response", "id", id, "method", method)

		return resp.Result, nil

	case <-m.done:
		// Session died (transport error or shutdown) - fail fast
		// Clean up pending request since we're exiting without a response
		m.removePending(id)

		err := m.closedErr()
		m.log.Warn("Session closed during request", "id", id, "method", method, "error", err)

		return nil, err

	case <-time.After(timeout):
		// Clean up pending request since we're exiting without a response.
		// A response arriving later is routed as an orphan.
		m.removePending(id)

		m.log.Warn("Request timed out", "id", id, "method", method, "timeout", timeout)

		return nil, fmt.Errorf("%s %w after %s", method, errors.ErrRequestTimeout, timeout)

	case <-ctx.Done():
		m.removePending(id)

		m.log.Debug("Request cancelled", "id", id, "method", method)

		return nil, ctx.Err()
	}
}

// Notify sends a JSON-RPC notification. Notifications carry no ID and
// receive no response.
func (m *Mux) Notify(ctx context.Context, method string, params any) error {
	select {
	case <-m.done:
		return m.closedErr()
	default:
	}

	m.log.Debug("Sending notification", "method", method)

	data, err := json.Marshal(rpc.NewNotification(method, params))
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	if err := m.transport.SendMessage(ctx, data); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}

	return nil
}

// closedErr returns the fatal transport error if one was recorded, otherwise
// ErrSessionClosed.
func (m *Mux) closedErr() error {
	if err := m.FatalError(); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrSessionClosed, err)
	}

	return errors.ErrSessionClosed
}

func (m *Mux) removePending(id int64) {
	m.pendingMu.Lock()
	delete(m.pending, id)
	m.pendingMu.Unlock()
}

// readLoop reads messages from the transport and routes them.
func (m *Mux) readLoop(
	ctx context.Context,
	messages <-chan *rpc.Message,
	errs <-chan error,
) {
	defer m.wg.Done()
	// Any exit path fails outstanding waiters via the done channel.
	defer m.closeDone()
	defer m.log.Debug("Protocol read loop stopped")

	for {
		select {
		case msg, ok := <-messages:
			if !ok {
				m.log.Debug("Message channel closed")

				// The transport may have queued a final error (such as an
				// unexpected process exit) just before closing.
				select {
				case err, open := <-errs:
					if open && err != nil && !isParseError(err) {
						m.SetFatalError(err)
					}
				default:
				}

				return
			}

			m.handleMessage(ctx, msg)

		case err, ok := <-errs:
			if !ok {
				m.log.Debug("Error channel closed")

				return
			}

			if err == nil {
				continue
			}

			// Malformed lines are tolerated: log and keep reading.
			if isParseError(err) {
				m.log.Warn("Discarding malformed line from server", "error", err)

				continue
			}

			m.log.Debug("Transport error in protocol", "error", err)
			m.SetFatalError(err)

			return

		case <-m.done:
			m.log.Debug("Multiplexer stop signal received")

			return

		case <-ctx.Done():
			m.log.Debug("Context cancelled in protocol read loop")

			return
		}
	}
}

func isParseError(err error) bool {
	var parseErr *errors.ParseError

	return stderrors.As(err, &parseErr)
}

// handleMessage routes a message based on its shape.
func (m *Mux) handleMessage(ctx context.Context, msg *rpc.Message) {
	switch {
	case msg.IsResponse():
		m.handleResponse(msg)

	case msg.IsNotification():
		m.handleNotification(msg)

	case msg.IsRequest():
		// Server-to-client requests are not supported; answer politely so the
		// server is not left waiting.
		m.log.Debug("Rejecting server-to-client request", "method", msg.Method, "id", *msg.ID)
		m.rejectRequest(ctx, msg)

	default:
		perr := &errors.ProtocolError{Reason: "message with neither id nor method"}
		m.log.Warn("Discarding unroutable message", "error", perr)
	}
}

// handleResponse routes a response to the waiting request.
func (m *Mux) handleResponse(msg *rpc.Message) {
	id := *msg.ID

	// Find and claim the pending request atomically so a duplicate response
	// for the same ID becomes an orphan.
	m.pendingMu.Lock()

	pending, exists := m.pending[id]
	if exists {
		delete(m.pending, id)
	}

	m.pendingMu.Unlock()

	if !exists {
		perr := &errors.ProtocolError{
			Reason: fmt.Sprintf("response for unknown request id %d", id),
		}
		m.log.Warn("Discarding orphan response", "id", id, "error", perr)

		return
	}

	// Send to waiting goroutine (we own it now, channel is buffered).
	pending.response <- msg
}

// handleNotification dispatches a server notification to the configured
// handler. The handler runs on the read loop goroutine and must return
// promptly. Without a handler the notification is dropped.
func (m *Mux) handleNotification(msg *rpc.Message) {
	if m.onNotification == nil {
		m.log.Debug("Dropping server notification", "method", msg.Method)

		return
	}

	m.log.Debug("Dispatching server notification", "method", msg.Method)
	m.onNotification(msg.Method, msg.Params)
}

// rejectRequest answers an incoming server request with method-not-found.
func (m *Mux) rejectRequest(ctx context.Context, msg *rpc.Message) {
	resp := rpc.NewErrorResponse(msg.ID, rpc.NewMethodNotFound(msg.Method))

	data, err := json.Marshal(resp)
	if err != nil {
		m.log.Error("Failed to marshal rejection response", "error", err)

		return
	}

	if err := m.transport.SendMessage(ctx, data); err != nil {
		// Expected during shutdown.
		m.log.Debug("Could not send rejection response", "error", err)
	}
}

// PendingCount reports the number of requests awaiting a response.
func (m *Mux) PendingCount() int {
	m.pendingMu.Lock()
	defer m.pendingMu.Unlock()

	return len(m.pending)
}
