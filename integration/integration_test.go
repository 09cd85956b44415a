//go:build integration

// Package integration exercises the client against a real mcp-fileserver
// subprocess. Build the server first:
//
//	go build -o mcp-fileserver ./cmd/mcp-fileserver
//	MCP_FILESERVER_BIN=$PWD/mcp-fileserver go test -tags integration ./integration/
//
// Without MCP_FILESERVER_BIN the tests look for mcp-fileserver on PATH and
// skip when it is absent.
package integration

import (
	"context"
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/require"

	mcpclient "github.com/Sathishruw/mcp-filesystem-client"
)

// serverBinary locates the file server executable or skips the test.
func serverBinary(t *testing.T) string {
	t.Helper()

	if bin := os.Getenv("MCP_FILESERVER_BIN"); bin != "" {
		return bin
	}

	bin, err := exec.LookPath("mcp-fileserver")
	if err != nil {
		t.Skip("mcp-fileserver not installed; set MCP_FILESERVER_BIN")
	}

	return bin
}

// newSession starts an initialized client rooted at dir and registers
// cleanup.
func newSession(t *testing.T, ctx context.Context, dir string) mcpclient.Client {
	t.Helper()

	client := mcpclient.NewClient()
	t.Cleanup(func() { _ = client.Close() })

	err := client.Start(ctx,
		mcpclient.WithCommand(serverBinary(t), "--base-dir", dir),
	)
	require.NoError(t, err)

	require.NoError(t, client.Initialize(ctx))

	return client
}
