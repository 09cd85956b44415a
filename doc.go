// Package mcpclient provides a Go client for MCP tool servers spoken to over
// stdio.
//
// The client spawns a server as a subprocess, frames JSON-RPC 2.0 messages as
// newline-delimited JSON over the server's stdin/stdout, and multiplexes
// concurrent tool calls over that single pipe pair. Responses are matched
// back to callers by integer request id, so many goroutines can call tools
// on one session at the same time.
//
// # Basic Usage
//
// For a single tool invocation, use the Call function:
//
//	ctx := context.Background()
//	text, err := mcpclient.CallText(ctx, "read_file",
//	    map[string]any{"path": "go.mod"},
//	    mcpclient.WithCommand("mcp-fileserver", "--base-dir", "."),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(text)
//
// # Sessions
//
// For repeated calls, keep one session open with NewClient or the WithClient
// helper:
//
//	// Using WithClient for automatic lifecycle management
//	err := mcpclient.WithClient(ctx, func(c mcpclient.Client) error {
//	    tools, err := c.ListTools(ctx)
//	    if err != nil {
//	        return err
//	    }
//	    for _, tool := range tools {
//	        fmt.Println(tool.Name, "-", tool.Description)
//	    }
//	    return nil
//	},
//	    mcpclient.WithCommand("mcp-fileserver", "--base-dir", "."),
//	    mcpclient.WithLogger(slog.Default()),
//	)
//
//	// Or using NewClient directly for more control
//	client := mcpclient.NewClient()
//	defer client.Close()
//
//	err := client.Start(ctx, mcpclient.WithCommand("mcp-fileserver"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = client.Initialize(ctx)
//
// # Logging
//
// For detailed operation tracking, use WithLogger:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
//	client := mcpclient.NewClient()
//	err := client.Start(ctx,
//	    mcpclient.WithCommand("mcp-fileserver"),
//	    mcpclient.WithLogger(logger),
//	)
//
// # Error Handling
//
// The library provides typed errors for different failure scenarios:
//
//	result, err := mcpclient.Call(ctx, "read_file", args, opts...)
//	if err != nil {
//	    if launchErr, ok := errors.AsType[*mcpclient.LaunchError](err); ok {
//	        log.Fatalf("server not installed: %v", launchErr)
//	    }
//	    if remoteErr, ok := errors.AsType[*mcpclient.RemoteError](err); ok {
//	        log.Fatalf("server rejected call with code %d: %s", remoteErr.Code, remoteErr.Message)
//	    }
//	    if errors.Is(err, mcpclient.ErrRequestTimeout) {
//	        log.Fatal("server did not answer in time")
//	    }
//	    log.Fatal(err)
//	}
//
// # Requirements
//
// The server executable must be installed and available in PATH, or given as
// an explicit path via WithCommand. Any MCP server that speaks JSON-RPC 2.0
// over stdio works; the mcp-fileserver binary in this repository is one such
// server.
package mcpclient
