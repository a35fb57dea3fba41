// Package line implements a push client for the LINE Messaging API.
//
// A Client is built once from an immutable Config and is safe for concurrent
// use: it holds no mutable state. Every send is a single POST to PushEndpoint;
// nothing is retried and no deadline is imposed beyond the one carried by the
// caller's context.
package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tachiyu/line-mcp-server/internal/logging"
)

// PushEndpoint is the Messaging API push-message URL.
const PushEndpoint = "https://api.line.me/v2/bot/message/push"

// Config holds the credential a Client is bound to.
type Config struct {
	ChannelAccessToken string
}

// Result is the verbatim body of a successful push response.
type Result = json.RawMessage

// Operation names one of the three send variants.
type Operation string

const (
	OpSendText     Operation = "send_text"
	OpSendMessages Operation = "send_messages"
	OpSendImage    Operation = "send_image"
)

func (o Operation) summary() string {
	switch o {
	case OpSendText:
		return "send message"
	case OpSendMessages:
		return "send messages"
	case OpSendImage:
		return "send image message"
	}
	return string(o)
}

// Outcomes reported to an Observer.
const (
	OutcomeOK             = "ok"
	OutcomeRejected       = "rejected"
	OutcomeTransportError = "transport_error"
	OutcomeInvalid        = "invalid"
)

// Doer performs an HTTP round trip. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Observer is told about every finished send.
type Observer interface {
	ObserveDispatch(op Operation, outcome string, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveDispatch(Operation, string, time.Duration) {}

// Option customises a Client at construction.
type Option func(*Client)

// WithHTTPClient replaces the transport. The default is a plain *http.Client.
func WithHTTPClient(d Doer) Option {
	return func(c *Client) {
		if d != nil {
			c.httpClient = d
		}
	}
}

// WithLogger sets the logger used for payload and rejection diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l.With().Str("component", "line").Logger() }
}

// WithObserver registers o for dispatch outcomes.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		if o != nil {
			c.observer = o
		}
	}
}

// Client sends push messages on behalf of one channel.
type Client struct {
	token      string
	httpClient Doer
	log        zerolog.Logger
	observer   Observer
}

// New validates cfg and returns a ready Client. A missing or blank token is
// reported here as a *ConfigError, before any network call can happen.
func New(cfg Config, opts ...Option) (*Client, error) {
	token := strings.TrimSpace(cfg.ChannelAccessToken)
	if token == "" {
		return nil, &ConfigError{Field: "channelAccessToken", Err: ErrMissingCredential}
	}
	c := &Client{
		token:      token,
		httpClient: &http.Client{},
		log:        zerolog.Nop(),
		observer:   nopObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SendTextMessage pushes a single text message to a user, group or room.
func (c *Client) SendTextMessage(ctx context.Context, to, text string) (Result, error) {
	if text == "" {
		c.observer.ObserveDispatch(OpSendText, OutcomeInvalid, 0)
		return nil, invalidArgument("text is empty")
	}
	return c.push(ctx, OpSendText, to, []Message{Text(text)})
}

// SendMessages pushes messages as one batch, unchanged and in order. Elements
// built with Raw are not validated locally.
func (c *Client) SendMessages(ctx context.Context, to string, messages []Message) (Result, error) {
	if len(messages) == 0 {
		c.observer.ObserveDispatch(OpSendMessages, OutcomeInvalid, 0)
		return nil, invalidArgument("messages is empty")
	}
	for i, m := range messages {
		if m == nil {
			c.observer.ObserveDispatch(OpSendMessages, OutcomeInvalid, 0)
			return nil, invalidArgument("messages[%d] is nil", i)
		}
	}
	return c.push(ctx, OpSendMessages, to, messages)
}

// SendImageMessage pushes a single image message. Both URLs are passed
// through as given.
func (c *Client) SendImageMessage(ctx context.Context, to, originalURL, previewURL string) (Result, error) {
	return c.push(ctx, OpSendImage, to, []Message{Image(originalURL, previewURL)})
}

// push issues the POST shared by every operation.
//
// A failed round trip with no response is returned exactly as the transport
// reported it. A non-2xx response becomes an *APIError.
func (c *Client) push(ctx context.Context, op Operation, to string, messages []Message) (Result, error) {
	if to == "" {
		c.observer.ObserveDispatch(op, OutcomeInvalid, 0)
		return nil, invalidArgument("recipient is empty")
	}

	body, err := json.Marshal(pushRequest{To: to, Messages: messages})
	if err != nil {
		c.observer.ObserveDispatch(op, OutcomeInvalid, 0)
		return nil, fmt.Errorf("line: encode %s request: %w", op, err)
	}

	log := c.log.With().
		Str("dispatch_id", uuid.NewString()).
		Str("op", string(op)).
		Logger()
	log.Debug().
		RawJSON("payload", body).
		Str("token", logging.Redact(c.token)).
		Msg("line: sending push request")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, PushEndpoint, bytes.NewReader(body))
	if err != nil {
		c.observer.ObserveDispatch(op, OutcomeInvalid, 0)
		return nil, fmt.Errorf("line: build %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observer.ObserveDispatch(op, OutcomeTransportError, time.Since(start))
		log.Debug().Err(err).Msg("line: push transport failure")
		return nil, err
	}
	defer resp.Body.Close()

	data, readErr := io.ReadAll(resp.Body)
	elapsed := time.Since(start)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Body:       data,
			RequestID:  resp.Header.Get("X-Line-Request-Id"),
		}
		c.observer.ObserveDispatch(op, OutcomeRejected, elapsed)
		log.Error().
			Int("status", resp.StatusCode).
			Str("body", string(data)).
			Str("request_id", apiErr.RequestID).
			Msg("line: api error")
		return nil, apiErr
	}
	if readErr != nil {
		c.observer.ObserveDispatch(op, OutcomeTransportError, elapsed)
		return nil, readErr
	}

	c.observer.ObserveDispatch(op, OutcomeOK, elapsed)
	log.Debug().Int("status", resp.StatusCode).Dur("elapsed", elapsed).Msg("line: push accepted")
	return Result(data), nil
}
