package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// EchoTool returns its input prefixed with "Tool echo: ". It needs no
// configuration and is always served.
type EchoTool struct{}

func NewEchoTool() *EchoTool { return &EchoTool{} }

func (t *EchoTool) Handle() mcp.Tool {
	return mcp.NewTool(string(ToolEcho),
		mcp.WithDescription("Echo a message back to the caller."),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("The message to echo"),
		),
	)
}

func (t *EchoTool) Handler(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, err := request.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Tool echo: " + message), nil
}
