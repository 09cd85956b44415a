//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	mcpclient "github.com/Sathishruw/mcp-filesystem-client"
)

// TestLifecycle_HandshakeAndServerInfo tests the full startup sequence.
func TestLifecycle_HandshakeAndServerInfo(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := newSession(t, ctx, t.TempDir())

	info := client.ServerInfo()
	require.NotNil(t, info)
	require.Equal(t, "mcp-fileserver", info.ServerInfo.Name)
	require.NotNil(t, info.Capabilities.Tools)

	require.NoError(t, client.Ping(ctx))
}

// TestLifecycle_DoubleInitialize tests that a second handshake is rejected.
func TestLifecycle_DoubleInitialize(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := newSession(t, ctx, t.TempDir())

	err := client.Initialize(ctx)
	require.ErrorIs(t, err, mcpclient.ErrAlreadyInitialized)
}

// TestLifecycle_CloseTwice tests that repeated Close calls are harmless.
func TestLifecycle_CloseTwice(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := newSession(t, ctx, t.TempDir())

	require.NoError(t, client.Close())
	require.NoError(t, client.Close())
}

// TestLifecycle_CallAfterClose tests that a closed session fails calls.
func TestLifecycle_CallAfterClose(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := newSession(t, ctx, t.TempDir())
	require.NoError(t, client.Close())

	_, err := client.CallTool(ctx, "get_working_directory", nil)
	require.ErrorIs(t, err, mcpclient.ErrNotConnected)
}

// TestLifecycle_ToolsBeforeInitialize tests the handshake ordering guard.
func TestLifecycle_ToolsBeforeInitialize(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := mcpclient.NewClient()
	t.Cleanup(func() { _ = client.Close() })

	err := client.Start(ctx,
		mcpclient.WithCommand(serverBinary(t), "--base-dir", t.TempDir()),
	)
	require.NoError(t, err)

	_, err = client.ListTools(ctx)
	require.ErrorIs(t, err, mcpclient.ErrNotInitialized)
}

// TestLifecycle_OneShotCall tests the Call convenience wrapper end to end.
func TestLifecycle_OneShotCall(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dir := t.TempDir()

	text, err := mcpclient.CallText(ctx, "get_working_directory", nil,
		mcpclient.WithCommand(serverBinary(t), "--base-dir", dir),
	)
	require.NoError(t, err)
	require.Contains(t, text, "Working Directory Information:")
}
