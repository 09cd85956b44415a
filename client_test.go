package mcpclient

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Sathishruw/mcp-filesystem-client/internal/rpc"
)

// fakeServer implements the Transport interface with canned MCP responses so
// the public API can be exercised without spawning a real subprocess.
type fakeServer struct {
	mu       sync.Mutex
	started  bool
	closed   bool
	failInit bool
	callErr  *rpc.Error
	tools    []Tool
	onTool   func(name string, args map[string]any) *ToolResult
	messages chan *rpc.Message
	errs     chan error
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		tools: []Tool{
			{Name: "echo", Description: "Echo text back"},
		},
		onTool: func(_ string, args map[string]any) *ToolResult {
			text, _ := args["text"].(string)

			return &ToolResult{Content: []ContentItem{{Type: "text", Text: text}}}
		},
		messages: make(chan *rpc.Message, 100),
		errs:     make(chan error, 10),
	}
}

func (f *fakeServer) Start(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.started = true

	return nil
}

func (f *fakeServer) ReadMessages(_ context.Context) (<-chan *rpc.Message, <-chan error) {
	return f.messages, f.errs
}

func (f *fakeServer) SendMessage(_ context.Context, data []byte) error {
	var msg rpc.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil
	}

	if msg.ID == nil {
		return nil
	}

	reply := &rpc.Message{JSONRPC: rpc.Version, ID: msg.ID}

	switch msg.Method {
	case rpc.MethodInitialize:
		if f.failInit {
			reply.Error = rpc.NewInternalError("server on fire")

			break
		}

		reply.Result = mustMarshal(InitializeResult{
			ProtocolVersion: ProtocolVersion,
			Capabilities:    ServerCapabilities{Tools: &rpc.ToolsCapability{}},
			ServerInfo:      ImplementationInfo{Name: "fake-server", Version: "0.1.0"},
		})

	case rpc.MethodToolsList:
		reply.Result = mustMarshal(rpc.ToolsListResult{Tools: f.tools})

	case rpc.MethodToolsCall:
		if f.callErr != nil {
			reply.Error = f.callErr

			break
		}

		var params rpc.CallToolParams
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			reply.Error = rpc.NewInvalidParams(err.Error())

			break
		}

		reply.Result = mustMarshal(f.onTool(params.Name, params.Arguments))

	case rpc.MethodPing:
		reply.Result = mustMarshal(struct{}{})

	default:
		return nil
	}

	// Deliver asynchronously the way a real subprocess would.
	go func() {
		f.mu.Lock()
		defer f.mu.Unlock()

		if f.closed {
			return
		}

		f.messages <- reply
	}()

	return nil
}

func (f *fakeServer) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.closed {
		f.closed = true
		close(f.messages)
		close(f.errs)
	}

	return nil
}

func (f *fakeServer) IsReady() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.started && !f.closed
}

func (f *fakeServer) EndInput() error {
	return nil
}

func (f *fakeServer) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.closed
}

func mustMarshal(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}

	return data
}

// TestNewClient_Creation tests client creation.
func TestNewClient_Creation(t *testing.T) {
	client := NewClient()
	require.NotNil(t, client)

	err := client.Close()
	require.NoError(t, err)
}

// TestClient_OperationsNotConnected tests each operation before Start.
func TestClient_OperationsNotConnected(t *testing.T) {
	client := NewClient()
	defer client.Close()

	ctx := context.Background()

	require.ErrorIs(t, client.Initialize(ctx), ErrNotConnected)
	require.ErrorIs(t, client.Ping(ctx), ErrNotConnected)

	_, err := client.ListTools(ctx)
	require.ErrorIs(t, err, ErrNotConnected)

	_, err = client.CallTool(ctx, "echo", nil)
	require.ErrorIs(t, err, ErrNotConnected)

	_, err = client.CallToolText(ctx, "echo", nil)
	require.ErrorIs(t, err, ErrNotConnected)

	require.Nil(t, client.ServerInfo())
	require.Nil(t, client.AvailableTools())
}

// TestClient_EndToEnd drives a full session through the public API.
func TestClient_EndToEnd(t *testing.T) {
	fake := newFakeServer()
	client := NewClient()

	defer client.Close()

	ctx := context.Background()

	err := client.Start(ctx, WithTransport(fake))
	require.NoError(t, err)

	require.NoError(t, client.Initialize(ctx))

	info := client.ServerInfo()
	require.NotNil(t, info)
	require.Equal(t, "fake-server", info.ServerInfo.Name)
	require.Equal(t, ProtocolVersion, info.ProtocolVersion)

	tools, err := client.ListTools(ctx)
	require.NoError(t, err)
	require.Len(t, tools, 1)
	require.Equal(t, "echo", tools[0].Name)
	require.Equal(t, tools, client.AvailableTools())

	result, err := client.CallTool(ctx, "echo", map[string]any{"text": "ping pong"})
	require.NoError(t, err)
	require.False(t, result.IsError)
	require.Equal(t, "ping pong", result.Text())

	text, err := client.CallToolText(ctx, "echo", map[string]any{"text": "again"})
	require.NoError(t, err)
	require.Equal(t, "again", text)

	require.NoError(t, client.Ping(ctx))
	require.NoError(t, client.Close())
	require.True(t, fake.isClosed())
}

// TestClient_ToolOperationsBeforeInitialize tests the handshake ordering guard.
func TestClient_ToolOperationsBeforeInitialize(t *testing.T) {
	client := NewClient()
	defer client.Close()

	ctx := context.Background()

	err := client.Start(ctx, WithTransport(newFakeServer()))
	require.NoError(t, err)

	_, err = client.ListTools(ctx)
	require.ErrorIs(t, err, ErrNotInitialized)

	_, err = client.CallTool(ctx, "echo", nil)
	require.ErrorIs(t, err, ErrNotInitialized)
}

// TestClient_InitializeTwice tests that the handshake runs at most once.
func TestClient_InitializeTwice(t *testing.T) {
	client := NewClient()
	defer client.Close()

	ctx := context.Background()

	require.NoError(t, client.Start(ctx, WithTransport(newFakeServer())))
	require.NoError(t, client.Initialize(ctx))
	require.ErrorIs(t, client.Initialize(ctx), ErrAlreadyInitialized)
}

// TestClient_InitializeFailure tests a server that rejects the handshake.
func TestClient_InitializeFailure(t *testing.T) {
	fake := newFakeServer()
	fake.failInit = true

	client := NewClient()
	defer client.Close()

	ctx := context.Background()

	require.NoError(t, client.Start(ctx, WithTransport(fake)))

	err := client.Initialize(ctx)
	require.Error(t, err)

	handshakeErr, ok := errors.AsType[*HandshakeError](err)
	require.True(t, ok)
	require.Equal(t, "initialize", handshakeErr.Stage)

	remoteErr, ok := errors.AsType[*RemoteError](err)
	require.True(t, ok)
	require.Equal(t, rpc.CodeInternalError, remoteErr.Code)
}

// TestClient_RemoteToolError tests that a JSON-RPC error response surfaces
// as a RemoteError.
func TestClient_RemoteToolError(t *testing.T) {
	fake := newFakeServer()
	fake.callErr = rpc.NewMethodNotFound("tools/call")

	client := NewClient()
	defer client.Close()

	ctx := context.Background()

	require.NoError(t, client.Start(ctx, WithTransport(fake)))
	require.NoError(t, client.Initialize(ctx))

	_, err := client.CallTool(ctx, "echo", nil)

	remoteErr, ok := errors.AsType[*RemoteError](err)
	require.True(t, ok)
	require.Equal(t, rpc.CodeMethodNotFound, remoteErr.Code)
}

// TestClient_ErrorResultIsNotAnError tests that a result flagged isError comes
// back as a value from CallTool and as a ToolError from CallToolText.
func TestClient_ErrorResultIsNotAnError(t *testing.T) {
	fake := newFakeServer()
	fake.onTool = func(_ string, _ map[string]any) *ToolResult {
		return &ToolResult{
			Content: []ContentItem{{Type: "text", Text: "Access denied: nope"}},
			IsError: true,
		}
	}

	client := NewClient()
	defer client.Close()

	ctx := context.Background()

	require.NoError(t, client.Start(ctx, WithTransport(fake)))
	require.NoError(t, client.Initialize(ctx))

	result, err := client.CallTool(ctx, "read_file", map[string]any{"path": "/etc/shadow"})
	require.NoError(t, err)
	require.True(t, result.IsError)
	require.Equal(t, "Access denied: nope", result.Text())

	_, err = client.CallToolText(ctx, "read_file", map[string]any{"path": "/etc/shadow"})

	toolErr, ok := errors.AsType[*ToolError](err)
	require.True(t, ok)
	require.Equal(t, "read_file", toolErr.Name)
	require.Contains(t, toolErr.Text, "Access denied")
}

// TestClient_ToolValidation tests client-side tool name checking.
func TestClient_ToolValidation(t *testing.T) {
	client := NewClient()
	defer client.Close()

	ctx := context.Background()

	err := client.Start(ctx, WithTransport(newFakeServer()), WithToolValidation(true))
	require.NoError(t, err)
	require.NoError(t, client.Initialize(ctx))

	_, err = client.CallTool(ctx, "no_such_tool", nil)
	require.ErrorIs(t, err, ErrUnknownTool)

	text, err := client.CallToolText(ctx, "echo", map[string]any{"text": "ok"})
	require.NoError(t, err)
	require.Equal(t, "ok", text)
}

// TestClient_StartWithoutCommand tests Start with neither command nor transport.
func TestClient_StartWithoutCommand(t *testing.T) {
	client := NewClient()
	defer client.Close()

	err := client.Start(context.Background())
	require.ErrorIs(t, err, ErrNoCommand)
}

// TestClient_StartWithUnknownCommand tests Start with a nonexistent executable.
func TestClient_StartWithUnknownCommand(t *testing.T) {
	client := NewClient()
	defer client.Close()

	err := client.Start(context.Background(),
		WithCommand("/nonexistent/path/to/mcp-fileserver"),
	)
	require.Error(t, err)

	launchErr, ok := errors.AsType[*LaunchError](err)
	require.True(t, ok)
	require.Equal(t, "/nonexistent/path/to/mcp-fileserver", launchErr.Command)
}

// TestClient_StartTwice tests that a second Start is rejected.
func TestClient_StartTwice(t *testing.T) {
	client := NewClient()
	defer client.Close()

	require.NoError(t, client.Start(context.Background(), WithTransport(newFakeServer())))

	err := client.Start(context.Background(), WithTransport(newFakeServer()))
	require.ErrorIs(t, err, ErrAlreadyConnected)
}

// TestClient_StartAfterClose tests that clients are single-use.
func TestClient_StartAfterClose(t *testing.T) {
	client := NewClient()

	require.NoError(t, client.Close())

	err := client.Start(context.Background(), WithTransport(newFakeServer()))
	require.ErrorIs(t, err, ErrClientClosed)
}

// TestClient_CloseMultipleTimes tests idempotent close.
func TestClient_CloseMultipleTimes(t *testing.T) {
	client := NewClient()
	defer client.Close()

	require.NoError(t, client.Start(context.Background(), WithTransport(newFakeServer())))

	require.NoError(t, client.Close())
	require.NoError(t, client.Close())
	require.NoError(t, client.Close())
}

// TestClient_OperationsAfterClose tests that operations fail cleanly after Close.
func TestClient_OperationsAfterClose(t *testing.T) {
	client := NewClient()

	ctx := context.Background()

	require.NoError(t, client.Start(ctx, WithTransport(newFakeServer())))
	require.NoError(t, client.Initialize(ctx))
	require.NoError(t, client.Close())

	_, err := client.CallTool(ctx, "echo", nil)
	require.ErrorIs(t, err, ErrNotConnected)

	require.ErrorIs(t, client.Ping(ctx), ErrNotConnected)
}

// TestClient_ConcurrentCloseNoPanic tests that concurrent Close() calls are safe.
func TestClient_ConcurrentCloseNoPanic(t *testing.T) {
	client := NewClient()

	const goroutines = 50

	var wg sync.WaitGroup

	wg.Add(goroutines)

	for range goroutines {
		go func() {
			defer wg.Done()

			_ = client.Close()
		}()
	}

	wg.Wait()

	// Verify the client is closed by trying to start
	err := client.Start(context.Background(), WithTransport(newFakeServer()))
	require.ErrorIs(t, err, ErrClientClosed)
}

// TestClient_ConcurrentToolCalls tests concurrent calls over one session.
func TestClient_ConcurrentToolCalls(t *testing.T) {
	client := NewClient()
	defer client.Close()

	ctx := context.Background()

	require.NoError(t, client.Start(ctx, WithTransport(newFakeServer())))
	require.NoError(t, client.Initialize(ctx))

	const goroutines = 10

	var wg sync.WaitGroup

	wg.Add(goroutines)

	results := make(chan error, goroutines)

	for i := range goroutines {
		go func(n int) {
			defer wg.Done()

			text, err := client.CallToolText(ctx, "echo", map[string]any{
				"text": string(rune('a' + n)),
			})
			if err != nil {
				results <- err

				return
			}

			if text != string(rune('a'+n)) {
				results <- errors.New("mismatched echo payload: " + text)

				return
			}

			results <- nil
		}(i)
	}

	wg.Wait()
	close(results)

	for err := range results {
		require.NoError(t, err)
	}
}
