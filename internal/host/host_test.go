package host

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tachiyu/line-mcp-server/internal/metrics"
	"github.com/tachiyu/line-mcp-server/internal/tools"
)

func newTestServer(t *testing.T, rec *metrics.Recorder) (*httptest.Server, *Host) {
	t.Helper()
	ts := httptest.NewUnstartedServer(nil)
	reg := tools.NewRegistryBuilder().WithTool(tools.NewEchoTool()).Build()

	var metricsHandler http.Handler
	var counter tools.CallCounter
	if rec != nil {
		metricsHandler = rec.Handler()
		counter = rec
	}
	h := New(Options{
		Addr:    ts.Listener.Addr().String(),
		Version: "test",
		Metrics: metricsHandler,
	}, reg, counter, zerolog.Nop())

	ts.Config.Handler = h.Handler()
	ts.Start()
	t.Cleanup(ts.Close)
	return ts, h
}

type sseStream struct {
	r      *bufio.Reader
	cancel context.CancelFunc
}

func openSSE(t *testing.T, url string) *sseStream {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		cancel()
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		cancel()
		t.Fatalf("GET %s: %v", url, err)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Errorf("content-type = %q", ct)
	}
	s := &sseStream{r: bufio.NewReader(resp.Body), cancel: cancel}
	t.Cleanup(func() {
		cancel()
		resp.Body.Close()
	})
	return s
}

// next returns the data of the next event with the given name.
func (s *sseStream) next(t *testing.T, event string) string {
	t.Helper()
	var current string
	for {
		line, err := s.r.ReadString('\n')
		if err != nil {
			t.Fatalf("reading event %q: %v", event, err)
		}
		line = strings.TrimRight(line, "\r\n")
		switch {
		case strings.HasPrefix(line, "event:"):
			current = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:") && current == event:
			return strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		}
	}
}

func endpointURL(base, data string) string {
	if strings.HasPrefix(data, "/") {
		return base + data
	}
	return data
}

func TestDeriveBaseURL(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{":3001", "http://localhost:3001"},
		{"0.0.0.0:8080", "http://localhost:8080"},
		{"127.0.0.1:9000", "http://127.0.0.1:9000"},
		{"[::]:3001", "http://localhost:3001"},
		{"example.com", "http://example.com"},
	}
	for _, tt := range tests {
		if got := DeriveBaseURL(tt.addr); got != tt.want {
			t.Errorf("DeriveBaseURL(%q) = %q, want %q", tt.addr, got, tt.want)
		}
	}
}

func TestNew_BaseURLOverride(t *testing.T) {
	reg := tools.NewRegistryBuilder().Build()
	h := New(Options{Addr: ":3001", BaseURL: "https://mcp.example.com/"}, reg, nil, zerolog.Nop())
	if h.BaseURL() != "https://mcp.example.com" {
		t.Errorf("BaseURL = %q", h.BaseURL())
	}
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + HealthPath)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Errorf("healthz = %d %q", resp.StatusCode, body)
	}
}

func TestMetricsRoute(t *testing.T) {
	ts, _ := newTestServer(t, nil)
	resp, err := http.Get(ts.URL + MetricsPath)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("metrics disabled: status = %d, want 404", resp.StatusCode)
	}

	ts, _ = newTestServer(t, metrics.NewRecorder())
	resp, err = http.Get(ts.URL + MetricsPath)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "go_goroutines") {
		t.Errorf("metrics enabled: status = %d", resp.StatusCode)
	}
}

func TestSSE_SessionsAreIndependent(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	a := openSSE(t, ts.URL+SSEPath)
	b := openSSE(t, ts.URL+SSEPath)
	epA := a.next(t, "endpoint")
	epB := b.next(t, "endpoint")

	if !strings.Contains(epA, MessagePath+"?sessionId=") {
		t.Fatalf("endpoint event = %q", epA)
	}
	if epA == epB {
		t.Errorf("two connections share a session endpoint: %q", epA)
	}
}

func TestSSE_ToolCallRoundTrip(t *testing.T) {
	rec := metrics.NewRecorder()
	ts, _ := newTestServer(t, rec)

	stream := openSSE(t, ts.URL+SSEPath)
	endpoint := endpointURL(ts.URL, stream.next(t, "endpoint"))

	body := `{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"name":"echo","arguments":{"message":"hi"}}}`
	resp, err := http.Post(endpoint, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		t.Fatalf("POST %s: status %d", endpoint, resp.StatusCode)
	}

	msg := stream.next(t, "message")
	if !strings.Contains(msg, `"id":7`) || !strings.Contains(msg, "Tool echo: hi") {
		t.Errorf("message event = %s", msg)
	}

	// Unknown session ids are rejected rather than routed to another client.
	resp, err = http.Post(ts.URL+MessagePath+"?sessionId=nope", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode/100 == 2 {
		t.Errorf("unknown session accepted with status %d", resp.StatusCode)
	}
}

func TestServe_StopsOnCancel(t *testing.T) {
	reg := tools.NewRegistryBuilder().WithTool(tools.NewEchoTool()).Build()
	h := New(Options{Addr: "127.0.0.1:0"}, reg, nil, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != nil && err != context.Canceled {
			t.Errorf("Run = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestNew_QuietAtInfo(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.InfoLevel)
	reg := tools.NewRegistryBuilder().WithTool(tools.NewEchoTool()).Build()

	New(Options{Addr: ":3001"}, reg, nil, log)
	if buf.Len() != 0 {
		t.Errorf("New logged at info level: %s", buf.String())
	}
}
