package client

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sathishruw/mcp-filesystem-client/internal/config"
	"github.com/Sathishruw/mcp-filesystem-client/internal/errors"
	"github.com/Sathishruw/mcp-filesystem-client/internal/rpc"
)

// mockTransport implements config.Transport for testing. It plays a minimal
// MCP server: initialize, tools/list, tools/call and ping are answered with
// canned responses.
type mockTransport struct {
	mu       sync.Mutex
	started  bool
	closed   bool
	tools    []rpc.Tool
	messages chan *rpc.Message
	errs     chan error
}

func newMockTransport() *mockTransport {
	return &mockTransport{
		tools: []rpc.Tool{
			{Name: "echo", Description: "Echo text back"},
		},
		messages: make(chan *rpc.Message, 100),
		errs:     make(chan error, 10),
	}
}

func (m *mockTransport) Start(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.started = true

	return nil
}

func (m *mockTransport) ReadMessages(_ context.Context) (<-chan *rpc.Message, <-chan error) {
	return m.messages, m.errs
}

func (m *mockTransport) SendMessage(_ context.Context, data []byte) error {
	var msg rpc.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil
	}

	if msg.ID == nil {
		// Notifications get no response.
		return nil
	}

	var result any

	switch msg.Method {
	case rpc.MethodInitialize:
		result = rpc.InitializeResult{
			ProtocolVersion: rpc.ProtocolVersion,
			Capabilities:    rpc.ServerCapabilities{Tools: &rpc.ToolsCapability{}},
			ServerInfo:      rpc.ImplementationInfo{Name: "mock-server", Version: "1.0.0"},
		}

	case rpc.MethodToolsList:
		result = rpc.ToolsListResult{Tools: m.tools}

	case rpc.MethodToolsCall:
		var params rpc.CallToolParams
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return nil
		}

		text, _ := params.Arguments["text"].(string)
		result = rpc.CallToolResult{
			Content: []rpc.ContentItem{{Type: "text", Text: text}},
		}

	case rpc.MethodPing:
		result = struct{}{}

	default:
		return nil
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}

	// Deliver asynchronously the way a real subprocess would.
	go func(id int64, raw json.RawMessage) {
		m.mu.Lock()
		defer m.mu.Unlock()

		if m.closed {
			return
		}

		m.messages <- &rpc.Message{JSONRPC: rpc.Version, ID: &id, Result: raw}
	}(*msg.ID, raw)

	return nil
}

func (m *mockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.messages)
		close(m.errs)
	}

	return nil
}

func (m *mockTransport) IsReady() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.started && !m.closed
}

func (m *mockTransport) EndInput() error {
	return nil
}

// startedClient starts a client over a fresh mock transport.
func startedClient(t *testing.T) (*Client, *mockTransport) {
	t.Helper()

	transport := newMockTransport()
	client := New()

	err := client.Start(context.Background(), &config.Options{Transport: transport})
	require.NoError(t, err)

	t.Cleanup(func() { _ = client.Close() })

	return client, transport
}

func TestClient_FullSession(t *testing.T) {
	client, _ := startedClient(t)

	ctx := context.Background()

	require.NoError(t, client.Initialize(ctx))

	info := client.ServerInfo()
	require.NotNil(t, info)
	require.Equal(t, "mock-server", info.ServerInfo.Name)

	tools, err := client.ListTools(ctx)
	require.NoError(t, err)
	require.Len(t, tools, 1)
	require.Equal(t, "echo", tools[0].Name)

	text, err := client.CallToolText(ctx, "echo", map[string]any{"text": "hi"})
	require.NoError(t, err)
	require.Equal(t, "hi", text)

	require.NoError(t, client.Ping(ctx))
	require.NoError(t, client.Close())
}

func TestClient_OperationsBeforeStart(t *testing.T) {
	client := New()

	require.ErrorIs(t, client.Initialize(context.Background()), errors.ErrNotConnected)

	_, err := client.ListTools(context.Background())
	require.ErrorIs(t, err, errors.ErrNotConnected)

	_, err = client.CallTool(context.Background(), "echo", nil)
	require.ErrorIs(t, err, errors.ErrNotConnected)
}

func TestClient_StartRequiresCommandOrTransport(t *testing.T) {
	client := New()

	err := client.Start(context.Background(), &config.Options{})
	require.ErrorIs(t, err, errors.ErrNoCommand)
}

func TestClient_StartTwice(t *testing.T) {
	client, _ := startedClient(t)

	err := client.Start(context.Background(), &config.Options{Transport: newMockTransport()})
	require.ErrorIs(t, err, errors.ErrAlreadyConnected)
}

func TestClient_SingleUseAfterClose(t *testing.T) {
	client, _ := startedClient(t)

	require.NoError(t, client.Close())

	err := client.Start(context.Background(), &config.Options{Transport: newMockTransport()})
	require.ErrorIs(t, err, errors.ErrClientClosed)
}

func TestClient_CloseBeforeStart(t *testing.T) {
	client := New()

	require.NoError(t, client.Close())
	require.NoError(t, client.Close())
}

// TestClient_StartContextCancellation tests that the client's errgroup
// uses context.Background() rather than the caller's context.
//
// The caller's ctx bounds startup only: cancelling it after Start() must not
// kill the read loop or mark the client disconnected.
func TestClient_StartContextCancellation(t *testing.T) {
	t.Run("client remains connected after startup context cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())

		transport := newMockTransport()
		client := New()

		err := client.Start(ctx, &config.Options{Transport: transport})
		require.NoError(t, err)

		assert.True(t, client.isConnected(), "client should be connected after Start()")

		cancel()

		// Give time for cancellation to propagate
		time.Sleep(50 * time.Millisecond)

		assert.True(t, client.isConnected(), "client should remain connected after ctx cancel")

		require.NoError(t, client.Close())
	})

	t.Run("session still usable after startup context cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())

		transport := newMockTransport()
		client := New()

		err := client.Start(ctx, &config.Options{Transport: transport})
		require.NoError(t, err)

		cancel()
		time.Sleep(50 * time.Millisecond)

		// A fresh context drives the handshake and a tool call.
		opCtx := context.Background()
		require.NoError(t, client.Initialize(opCtx))

		text, err := client.CallToolText(opCtx, "echo", map[string]any{"text": "still alive"})
		require.NoError(t, err)
		require.Equal(t, "still alive", text)

		require.NoError(t, client.Close())
	})
}

// TestClient_DoneChannelStopsReadLoop verifies that Close signals shutdown
// through the done channel, independent of any context.
func TestClient_DoneChannelStopsReadLoop(t *testing.T) {
	client, _ := startedClient(t)

	assert.True(t, client.isConnected())

	require.NoError(t, client.Close())

	assert.False(t, client.isConnected())
}

func TestClient_TransportDeathSurfacesProcessError(t *testing.T) {
	client, transport := startedClient(t)

	ctx := context.Background()
	require.NoError(t, client.Initialize(ctx))

	// The subprocess dies: transport reports the exit and closes its
	// channels.
	transport.errs <- &errors.ProcessError{ExitCode: 3, Stderr: "crashed hard"}

	// Later calls fail with the dead-session error, carrying the cause.
	require.Eventually(t, func() bool {
		_, err := client.CallTool(ctx, "echo", nil)

		return err != nil && stderrors.Is(err, errors.ErrSessionClosed)
	}, time.Second, 5*time.Millisecond)

	_, err := client.CallTool(ctx, "echo", nil)

	var procErr *errors.ProcessError
	require.ErrorAs(t, err, &procErr)
	require.Equal(t, 3, procErr.ExitCode)

	// Close reports the abnormal exit that ended the session.
	closeErr := client.Close()
	require.Error(t, closeErr)
	require.ErrorAs(t, closeErr, &procErr)
}

func TestClient_AvailableToolsCaching(t *testing.T) {
	client, _ := startedClient(t)

	ctx := context.Background()
	require.NoError(t, client.Initialize(ctx))

	require.Nil(t, client.AvailableTools())

	_, err := client.ListTools(ctx)
	require.NoError(t, err)

	cached := client.AvailableTools()
	require.Len(t, cached, 1)
	require.Equal(t, "echo", cached[0].Name)
}
