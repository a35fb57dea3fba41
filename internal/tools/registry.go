// Package tools defines the MCP tools served by line-mcp-server.
package tools

import (
	"context"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ToolName is the canonical name of a built-in tool.
type ToolName string

const (
	ToolEcho         ToolName = "echo"
	ToolSendText     ToolName = "send_text"
	ToolSendImage    ToolName = "send_image"
	ToolSendMessages ToolName = "send_messages"
)

// Tool is one MCP tool: its advertised definition plus the handler that
// serves calls to it.
type Tool interface {
	Handle() mcp.Tool
	Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// CallCounter is told the result ("ok" or "error") of every tool call.
type CallCounter interface {
	IncToolCall(tool, result string)
}

// Registry is an immutable set of tools keyed by name.
type Registry struct {
	tools map[string]Tool
}

// GetTool returns the tool with the given name, or nil.
func (r *Registry) GetTool(name ToolName) Tool {
	return r.tools[string(name)]
}

// Names returns the registered tool names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for n := range r.tools {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Register adds every tool to s. When counter is non-nil each call is
// counted by tool name and result.
func (r *Registry) Register(s *server.MCPServer, counter CallCounter) {
	for _, name := range r.Names() {
		t := r.tools[name]
		s.AddTool(t.Handle(), countCalls(name, t.Handler, counter))
	}
}

func countCalls(name string, next server.ToolHandlerFunc, counter CallCounter) server.ToolHandlerFunc {
	if counter == nil {
		return next
	}
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, err := next(ctx, request)
		result := "ok"
		if err != nil || (res != nil && res.IsError) {
			result = "error"
		}
		counter.IncToolCall(name, result)
		return res, err
	}
}

// RegistryBuilder accumulates tools during the construction phase.
// Call Build() to produce an immutable Registry ready for use.
type RegistryBuilder struct {
	tools map[string]Tool
}

// NewRegistryBuilder returns a fresh RegistryBuilder.
func NewRegistryBuilder() *RegistryBuilder {
	return &RegistryBuilder{tools: make(map[string]Tool)}
}

// WithTool adds a tool and returns the builder, enabling chaining. A later
// tool with the same name replaces an earlier one.
func (b *RegistryBuilder) WithTool(tool Tool) *RegistryBuilder {
	b.tools[tool.Handle().Name] = tool
	return b
}

// Build produces an immutable Registry from the accumulated tools.
func (b *RegistryBuilder) Build() *Registry {
	tools := make(map[string]Tool, len(b.tools))
	for k, v := range b.tools {
		tools[k] = v
	}
	return &Registry{tools: tools}
}
