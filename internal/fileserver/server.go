// Package fileserver implements an MCP tool server that exposes sandboxed
// filesystem operations over newline-delimited JSON-RPC on stdio.
//
// The server half exists so the client in this module has a first-party
// counterpart: the mcp-fileserver binary wraps this package, and the client
// tests drive it as a real subprocess.
package fileserver

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/Sathishruw/mcp-filesystem-client/internal/rpc"
)

const (
	// initialScanBufferSize is the starting size of the line scanner buffer.
	initialScanBufferSize = 64 * 1024

	// maxScanBufferSize caps a single request line at 1MB.
	maxScanBufferSize = 1024 * 1024
)

// Server dispatches MCP requests read from a stream to a tool registry and
// writes responses back, one JSON object per line.
type Server struct {
	log      *slog.Logger
	registry *Registry

	writeMu sync.Mutex
	writer  io.Writer

	stateMu     sync.Mutex
	initialized bool
}

// NewServer creates a server around the given registry. Logs must go to a
// stream other than the server's writer; stdout carries protocol frames only.
func NewServer(log *slog.Logger, registry *Registry) *Server {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Server{
		log:      log.With("component", "fileserver"),
		registry: registry,
	}
}

// Serve reads requests from r until EOF or ctx cancellation, writing
// responses to w. Malformed lines get a -32700 error response and do not
// stop the loop; a write failure does, since the transport is gone.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	s.writeMu.Lock()
	s.writer = w
	s.writeMu.Unlock()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, initialScanBufferSize), maxScanBufferSize)

	s.log.Info("Server started", "server", s.registry.ServerInfo().Name)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		var msg rpc.Message
		if err := json.Unmarshal(line, &msg); err != nil {
			s.log.Warn("Discarding malformed request line", "error", err)
			if sendErr := s.sendError(nil, rpc.NewParseError(err.Error())); sendErr != nil {
				return sendErr
			}
			continue
		}

		var err error
		switch {
		case msg.IsRequest():
			err = s.handleRequest(ctx, &msg)
		case msg.IsNotification():
			s.handleNotification(&msg)
		case msg.IsResponse():
			// Clients do not get responses to anything we never asked.
			s.log.Debug("Ignoring unexpected response", "id", msg.ID)
		default:
			err = s.sendError(msg.ID, rpc.NewInvalidRequest("message has neither method nor result"))
		}
		if err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read requests: %w", err)
	}

	s.log.Info("Server stopped: input closed")

	return nil
}

func (s *Server) handleRequest(ctx context.Context, msg *rpc.Message) error {
	s.log.Debug("Handling request", "method", msg.Method, "id", *msg.ID)

	var result any

	switch msg.Method {
	case rpc.MethodInitialize:
		result = s.handleInitialize(msg.Params)

	case rpc.MethodToolsList:
		result = rpc.ToolsListResult{Tools: s.registry.ListTools()}

	case rpc.MethodToolsCall:
		var params rpc.CallToolParams
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, rpc.NewInvalidParams(err.Error()))
		}
		result = s.registry.CallTool(ctx, params.Name, params.Arguments)

	case rpc.MethodPing:
		result = struct{}{}

	default:
		return s.sendError(msg.ID, rpc.NewMethodNotFound(msg.Method))
	}

	return s.send(rpc.NewResponse(msg.ID, result))
}

func (s *Server) handleInitialize(params json.RawMessage) rpc.InitializeResult {
	var init rpc.InitializeParams
	if err := json.Unmarshal(params, &init); err == nil && init.ClientInfo.Name != "" {
		s.log.Info("Client connected",
			"client", init.ClientInfo.Name,
			"client_version", init.ClientInfo.Version,
			"protocol_version", init.ProtocolVersion)
	}

	return rpc.InitializeResult{
		ProtocolVersion: rpc.ProtocolVersion,
		Capabilities: rpc.ServerCapabilities{
			Tools: &rpc.ToolsCapability{},
		},
		ServerInfo: s.registry.ServerInfo(),
	}
}

func (s *Server) handleNotification(msg *rpc.Message) {
	switch msg.Method {
	case rpc.MethodInitialized:
		s.stateMu.Lock()
		s.initialized = true
		s.stateMu.Unlock()
		s.log.Debug("Client initialization complete")
	default:
		s.log.Debug("Ignoring notification", "method", msg.Method)
	}
}

// Initialized reports whether the client has completed the handshake.
func (s *Server) Initialized() bool {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	return s.initialized
}

func (s *Server) sendError(id *int64, rpcErr *rpc.Error) error {
	return s.send(rpc.NewErrorResponse(id, rpcErr))
}

// send marshals a response and writes it as a single line. The mutex keeps
// concurrent writers from interleaving partial frames.
func (s *Server) send(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal response: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	data = append(data, '\n')
	if _, err := s.writer.Write(data); err != nil {
		return fmt.Errorf("write response: %w", err)
	}

	return nil
}
