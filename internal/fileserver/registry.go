package fileserver

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sathishruw/mcp-filesystem-client/internal/rpc"
)

// Registry holds the tools a server exposes over stdio.
//
// Tool metadata and handlers use the official MCP SDK types so schemas are
// declared once, in one vocabulary. Dispatch happens here rather than in the
// SDK because the stdio loop in this package owns the wire format.
type Registry struct {
	name    string
	version string

	mu    sync.RWMutex
	tools map[string]*registeredTool
}

type registeredTool struct {
	tool    *mcp.Tool
	handler mcp.ToolHandler
}

// NewRegistry creates an empty tool registry identified by name and version.
func NewRegistry(name, version string) *Registry {
	return &Registry{
		name:    name,
		version: version,
		tools:   make(map[string]*registeredTool),
	}
}

// ServerInfo returns the implementation info advertised during initialize.
func (r *Registry) ServerInfo() rpc.ImplementationInfo {
	return rpc.ImplementationInfo{Name: r.name, Version: r.version}
}

// AddTool registers a tool. Registering the same name twice replaces the
// earlier entry.
func (r *Registry) AddTool(tool *mcp.Tool, handler mcp.ToolHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tools[tool.Name] = &registeredTool{tool: tool, handler: handler}
}

// ListTools returns wire descriptors for every registered tool, sorted by
// name so listings are stable across calls.
func (r *Registry) ListTools() []rpc.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]rpc.Tool, 0, len(r.tools))
	for _, rt := range r.tools {
		schema, err := json.Marshal(rt.tool.InputSchema)
		if err != nil {
			// A schema built from jsonschema.Schema literals always
			// marshals; skip the tool rather than corrupt the listing.
			continue
		}

		tools = append(tools, rpc.Tool{
			Name:        rt.tool.Name,
			Description: rt.tool.Description,
			InputSchema: schema,
		})
	}

	slices.SortFunc(tools, func(a, b rpc.Tool) int {
		return strings.Compare(a.Name, b.Name)
	})

	return tools
}

// CallTool invokes a registered tool. Failures of any kind come back as an
// isError result, never as an error: tool outcomes belong in-band where the
// caller's model can read them.
func (r *Registry) CallTool(ctx context.Context, name string, arguments map[string]any) *rpc.CallToolResult {
	r.mu.RLock()
	rt, ok := r.tools[name]
	r.mu.RUnlock()

	if !ok {
		return errorResult(fmt.Sprintf("Tool not found: %s", name))
	}

	raw, err := json.Marshal(arguments)
	if err != nil {
		return errorResult(fmt.Sprintf("Invalid arguments: %v", err))
	}

	req := &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{
			Name:      name,
			Arguments: json.RawMessage(raw),
		},
	}

	result, err := rt.handler(ctx, req)
	if err != nil {
		// Handler errors are tool failures, not protocol failures.
		return errorResult(fmt.Sprintf("Tool execution failed: %v", err))
	}

	return convertResult(result)
}

// convertResult flattens an SDK tool result into the wire shape. Only text
// content survives; the filesystem tools never produce anything else.
func convertResult(result *mcp.CallToolResult) *rpc.CallToolResult {
	if result == nil {
		return &rpc.CallToolResult{Content: []rpc.ContentItem{}}
	}

	content := make([]rpc.ContentItem, 0, len(result.Content))
	for _, c := range result.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			content = append(content, rpc.ContentItem{Type: "text", Text: tc.Text})
		}
	}

	return &rpc.CallToolResult{Content: content, IsError: result.IsError}
}

func errorResult(text string) *rpc.CallToolResult {
	return &rpc.CallToolResult{
		Content: []rpc.ContentItem{{Type: "text", Text: text}},
		IsError: true,
	}
}

// ===== Tool Construction Helpers =====

// NewTool builds an SDK tool descriptor.
func NewTool(name, description string, schema *jsonschema.Schema) *mcp.Tool {
	return &mcp.Tool{
		Name:        name,
		Description: description,
		InputSchema: schema,
	}
}

// ObjectSchema builds an object schema from property names mapped to JSON
// types ("string", "number", "boolean"). Only the listed properties are
// required; the rest are optional.
func ObjectSchema(properties map[string]string, required ...string) *jsonschema.Schema {
	props := make(map[string]*jsonschema.Schema, len(properties))
	for name, typ := range properties {
		props[name] = &jsonschema.Schema{Type: typ}
	}

	return &jsonschema.Schema{
		Type:       "object",
		Properties: props,
		Required:   required,
	}
}

// TextResult wraps text in a successful tool result.
func TextResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// ErrorResult wraps text in a failed tool result.
func ErrorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}

// ParseArguments unmarshals a request's arguments into a typed struct.
func ParseArguments(req *mcp.CallToolRequest, v any) error {
	if req.Params == nil || len(req.Params.Arguments) == 0 {
		return nil
	}

	if err := json.Unmarshal(req.Params.Arguments, v); err != nil {
		return fmt.Errorf("parse arguments: %w", err)
	}

	return nil
}
