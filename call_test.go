package mcpclient

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Sathishruw/mcp-filesystem-client/internal/rpc"
)

func TestCall_ReturnsResult(t *testing.T) {
	fake := newFakeServer()

	result, err := Call(context.Background(), "echo",
		map[string]any{"text": "one shot"},
		WithTransport(fake),
	)

	require.NoError(t, err)
	require.NotNil(t, result)
	require.False(t, result.IsError)
	require.Equal(t, "one shot", result.Text())

	// The whole session is torn down once the call finishes.
	require.True(t, fake.isClosed())
}

func TestCall_WrapsToolNameOnFailure(t *testing.T) {
	fake := newFakeServer()
	fake.callErr = rpc.NewMethodNotFound("tools/call")

	_, err := Call(context.Background(), "echo", nil, WithTransport(fake))

	require.Error(t, err)
	require.Contains(t, err.Error(), `call tool "echo"`)

	_, ok := errors.AsType[*RemoteError](err)
	require.True(t, ok)
}

func TestCall_NoServerConfigured(t *testing.T) {
	_, err := Call(context.Background(), "echo", nil)
	require.ErrorIs(t, err, ErrNoCommand)
}

func TestCallText_ReturnsText(t *testing.T) {
	text, err := CallText(context.Background(), "echo",
		map[string]any{"text": "hi"},
		WithTransport(newFakeServer()),
	)

	require.NoError(t, err)
	require.Equal(t, "hi", text)
}

func TestCallText_ErrorResultBecomesToolError(t *testing.T) {
	fake := newFakeServer()
	fake.onTool = func(_ string, _ map[string]any) *ToolResult {
		return &ToolResult{
			Content: []ContentItem{{Type: "text", Text: "File does not exist: gone.txt"}},
			IsError: true,
		}
	}

	_, err := CallText(context.Background(), "read_file",
		map[string]any{"path": "gone.txt"},
		WithTransport(fake),
	)

	toolErr, ok := errors.AsType[*ToolError](err)
	require.True(t, ok)
	require.Equal(t, "read_file", toolErr.Name)
	require.Contains(t, toolErr.Text, "File does not exist")
}

func TestCallText_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := CallText(ctx, "echo", nil, WithTransport(newFakeServer()))
	require.ErrorIs(t, err, context.Canceled)
}
