package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tachiyu/line-mcp-server/internal/line"
)

// Sender is the part of *line.Client the push tools depend on.
type Sender interface {
	SendTextMessage(ctx context.Context, to, text string) (line.Result, error)
	SendMessages(ctx context.Context, to string, messages []line.Message) (line.Result, error)
	SendImageMessage(ctx context.Context, to, originalURL, previewURL string) (line.Result, error)
}

// pushTool carries what every push tool shares: the sender and the recipient
// used when a call omits "to".
type pushTool struct {
	sender    Sender
	defaultTo string
}

func withRecipient() mcp.ToolOption {
	return mcp.WithString("to",
		mcp.Description("User, group or room ID to push to. Defaults to the configured recipient."),
	)
}

func (p pushTool) recipient(request mcp.CallToolRequest) (string, error) {
	if to := strings.TrimSpace(request.GetString("to", "")); to != "" {
		return to, nil
	}
	if p.defaultTo != "" {
		return p.defaultTo, nil
	}
	return "", fmt.Errorf("no recipient: pass \"to\" or configure a default recipient")
}

// result turns a dispatch outcome into a tool result. Dispatch failures are
// reported in-band so the calling model sees them; the call itself succeeds.
func result(res line.Result, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body := strings.TrimSpace(string(res))
	if body == "" {
		body = "{}"
	}
	return mcp.NewToolResultText(body), nil
}

// SendTextTool pushes one text message.
type SendTextTool struct{ pushTool }

func NewSendTextTool(s Sender, defaultTo string) *SendTextTool {
	return &SendTextTool{pushTool{sender: s, defaultTo: defaultTo}}
}

func (t *SendTextTool) Handle() mcp.Tool {
	return mcp.NewTool(string(ToolSendText),
		mcp.WithDescription("Push a text message to a LINE user or group."),
		withRecipient(),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Message text"),
		),
	)
}

func (t *SendTextTool) Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	to, err := t.recipient(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return result(t.sender.SendTextMessage(ctx, to, text))
}

// SendImageTool pushes one image message.
type SendImageTool struct{ pushTool }

func NewSendImageTool(s Sender, defaultTo string) *SendImageTool {
	return &SendImageTool{pushTool{sender: s, defaultTo: defaultTo}}
}

func (t *SendImageTool) Handle() mcp.Tool {
	return mcp.NewTool(string(ToolSendImage),
		mcp.WithDescription("Push an image message to a LINE user or group."),
		withRecipient(),
		mcp.WithString("original_url",
			mcp.Required(),
			mcp.Description("HTTPS URL of the full-size image"),
		),
		mcp.WithString("preview_url",
			mcp.Required(),
			mcp.Description("HTTPS URL of the preview image"),
		),
	)
}

func (t *SendImageTool) Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	to, err := t.recipient(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	original, err := request.RequireString("original_url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	preview, err := request.RequireString("preview_url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return result(t.sender.SendImageMessage(ctx, to, original, preview))
}

// SendMessagesTool pushes a batch of message objects in the Messaging API
// schema. The objects are forwarded as given.
type SendMessagesTool struct{ pushTool }

func NewSendMessagesTool(s Sender, defaultTo string) *SendMessagesTool {
	return &SendMessagesTool{pushTool{sender: s, defaultTo: defaultTo}}
}

func (t *SendMessagesTool) Handle() mcp.Tool {
	return mcp.NewTool(string(ToolSendMessages),
		mcp.WithDescription("Push up to five LINE message objects (text, image, sticker, flex, ...) in one request."),
		withRecipient(),
		mcp.WithArray("messages",
			mcp.Required(),
			mcp.Description(`Message objects in Messaging API format, e.g. [{"type":"text","text":"hi"}]`),
			mcp.Items(map[string]any{"type": "object"}),
		),
	)
}

func (t *SendMessagesTool) Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	to, err := t.recipient(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, ok := request.GetArguments()["messages"].([]any)
	if !ok {
		return mcp.NewToolResultError(`required argument "messages" must be an array`), nil
	}
	return result(t.sender.SendMessages(ctx, to, line.RawMessages(raw)))
}
