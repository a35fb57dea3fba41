// Package host serves the MCP tools over SSE.
//
// Session bookkeeping belongs to mcp-go's SSEServer: every GET /sse gets its
// own session id and POST /messages is routed by the sessionId query
// parameter, so any number of clients can be connected at once.
package host

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/tachiyu/line-mcp-server/internal/tools"
)

const (
	// Name is the server name reported in the MCP initialize handshake.
	Name = "line-mcp-server"

	SSEPath     = "/sse"
	MessagePath = "/messages"
	HealthPath  = "/healthz"
	MetricsPath = "/metrics"

	shutdownTimeout = 5 * time.Second
)

// Options configures a Host.
type Options struct {
	Addr    string
	BaseURL string
	Version string
	// Metrics is mounted at /metrics when non-nil.
	Metrics http.Handler
}

// Host owns the MCP server and the HTTP listener in front of it.
type Host struct {
	opts Options
	mcp  *server.MCPServer
	sse  *server.SSEServer
	mux  *http.ServeMux
	log  zerolog.Logger
}

// New registers every tool in reg on a fresh MCP server and builds the HTTP
// routes. counter may be nil.
func New(opts Options, reg *tools.Registry, counter tools.CallCounter, log zerolog.Logger) *Host {
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DeriveBaseURL(opts.Addr)
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")

	mcpServer := server.NewMCPServer(Name, opts.Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	reg.Register(mcpServer, counter)

	sse := server.NewSSEServer(mcpServer,
		server.WithBaseURL(opts.BaseURL),
		server.WithSSEEndpoint(SSEPath),
		server.WithMessageEndpoint(MessagePath),
	)

	h := &Host{
		opts: opts,
		mcp:  mcpServer,
		sse:  sse,
		mux:  http.NewServeMux(),
		log:  log.With().Str("component", "host").Logger(),
	}
	h.mux.Handle(SSEPath, sse.SSEHandler())
	h.mux.Handle(MessagePath, sse.MessageHandler())
	h.mux.HandleFunc(HealthPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	if opts.Metrics != nil {
		h.mux.Handle(MetricsPath, opts.Metrics)
	}
	h.log.Debug().Strs("tools", reg.Names()).Msg("host: tools registered")
	return h
}

// Handler returns the routes, for embedding or tests.
func (h *Host) Handler() http.Handler { return h.mux }

// BaseURL returns the origin advertised to SSE clients.
func (h *Host) BaseURL() string { return h.opts.BaseURL }

// Run listens on Addr and serves until ctx is cancelled. Open SSE streams
// are bound to ctx, so they end with it; the listener is then shut down
// gracefully.
func (h *Host) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", h.opts.Addr)
	if err != nil {
		return fmt.Errorf("host: listen %s: %w", h.opts.Addr, err)
	}
	return h.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (h *Host) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           h.mux,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		h.log.Info().
			Str("addr", ln.Addr().String()).
			Str("sse", h.opts.BaseURL+SSEPath).
			Msg("host: listening")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("host: serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		h.log.Warn().Err(err).Msg("host: shutdown incomplete")
		return fmt.Errorf("host: shutdown: %w", err)
	}
	h.log.Info().Msg("host: stopped")
	return ctx.Err()
}

// DeriveBaseURL turns a listen address into an http origin, using localhost
// for wildcard hosts.
func DeriveBaseURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}
