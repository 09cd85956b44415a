package mcpclient

import (
	"context"
	"fmt"
)

// Call invokes a single tool on a freshly spawned server and tears the
// server down afterwards.
//
// This is the one-shot counterpart to NewClient: it starts the subprocess,
// performs the initialize handshake, calls the tool, and closes the session.
// For repeated calls against the same server, use NewClient or WithClient
// instead so the subprocess and handshake are paid for once.
//
// Example usage:
//
//	result, err := mcpclient.Call(ctx, "read_file",
//	    map[string]any{"path": "go.mod"},
//	    mcpclient.WithCommand("mcp-fileserver", "--base-dir", "."),
//	)
func Call(
	ctx context.Context,
	toolName string,
	arguments map[string]any,
	opts ...Option,
) (*ToolResult, error) {
	var result *ToolResult

	err := WithClient(ctx, func(c Client) error {
		r, callErr := c.CallTool(ctx, toolName, arguments)
		if callErr != nil {
			return fmt.Errorf("call tool %q: %w", toolName, callErr)
		}

		result = r

		return nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	return result, nil
}

// CallText is Call with the text convention applied: it returns the joined
// text content and folds a result flagged isError into a ToolError.
func CallText(
	ctx context.Context,
	toolName string,
	arguments map[string]any,
	opts ...Option,
) (string, error) {
	var text string

	err := WithClient(ctx, func(c Client) error {
		t, callErr := c.CallToolText(ctx, toolName, arguments)
		if callErr != nil {
			return callErr
		}

		text = t

		return nil
	}, opts...)
	if err != nil {
		return "", err
	}

	return text, nil
}
