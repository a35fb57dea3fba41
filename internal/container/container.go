// Package container wires line-mcp-server services using go.uber.org/dig.
package container

import (
	"net/http"

	"github.com/rs/zerolog"
	"go.uber.org/dig"

	"github.com/tachiyu/line-mcp-server/internal/config"
	"github.com/tachiyu/line-mcp-server/internal/host"
	"github.com/tachiyu/line-mcp-server/internal/line"
	"github.com/tachiyu/line-mcp-server/internal/logging"
	"github.com/tachiyu/line-mcp-server/internal/metrics"
	"github.com/tachiyu/line-mcp-server/internal/schedule"
	"github.com/tachiyu/line-mcp-server/internal/tools"
)

// Container holds the resolved service singletons.
// Callers use the typed getter methods; they never need to import dig directly.
type Container struct {
	cfg       *config.Config
	recorder  *metrics.Recorder
	client    lineClient
	registry  *tools.Registry
	host      *host.Host
	scheduler *schedule.Service
}

func (c *Container) Config() *config.Config       { return c.cfg }
func (c *Container) Metrics() *metrics.Recorder   { return c.recorder }
func (c *Container) Tools() *tools.Registry       { return c.registry }
func (c *Container) Host() *host.Host             { return c.host }
func (c *Container) Scheduler() *schedule.Service { return c.scheduler }

// LineClient returns the dispatch client, or the construction error when no
// usable credential is configured.
func (c *Container) LineClient() (*line.Client, error) { return c.client.Client, c.client.Err }

// buildVersion is a named string type so dig can tell it apart from other
// strings.
type buildVersion string

// lineClient carries a construction failure along instead of failing the
// whole graph: serve still runs (echo only) without a token.
type lineClient struct {
	Client *line.Client
	Err    error
}

// Option customises the graph before it is resolved.
type Option func(*options)

type options struct {
	doer line.Doer
}

// WithHTTPClient replaces the transport used by the dispatch client.
func WithHTTPClient(d line.Doer) Option {
	return func(o *options) { o.doer = d }
}

// New builds and wires all services from cfg.
func New(cfg *config.Config, version string, opts ...Option) (*Container, error) {
	o := options{doer: &http.Client{}}
	for _, opt := range opts {
		opt(&o)
	}

	d := dig.New()

	if err := d.Provide(func() *config.Config { return cfg }); err != nil {
		return nil, err
	}
	if err := d.Provide(func() buildVersion { return buildVersion(version) }); err != nil {
		return nil, err
	}
	if err := d.Provide(func() zerolog.Logger { return *logging.Get() }); err != nil {
		return nil, err
	}
	if err := d.Provide(func() line.Doer { return o.doer }); err != nil {
		return nil, err
	}
	if err := d.Provide(metrics.NewRecorder); err != nil {
		return nil, err
	}
	if err := d.Provide(newLineClient); err != nil {
		return nil, err
	}
	if err := d.Provide(newToolRegistry); err != nil {
		return nil, err
	}
	if err := d.Provide(newHost); err != nil {
		return nil, err
	}
	if err := d.Provide(newScheduler); err != nil {
		return nil, err
	}

	var result *Container
	err := d.Invoke(func(
		rec *metrics.Recorder,
		client lineClient,
		reg *tools.Registry,
		h *host.Host,
		sched *schedule.Service,
	) {
		result = &Container{
			cfg:       cfg,
			recorder:  rec,
			client:    client,
			registry:  reg,
			host:      h,
			scheduler: sched,
		}
	})
	return result, err
}

func newLineClient(cfg *config.Config, doer line.Doer, log zerolog.Logger, rec *metrics.Recorder) lineClient {
	c, err := line.New(
		line.Config{ChannelAccessToken: cfg.Line.ChannelAccessToken},
		line.WithHTTPClient(doer),
		line.WithLogger(log),
		line.WithObserver(rec),
	)
	return lineClient{Client: c, Err: err}
}

func newToolRegistry(cfg *config.Config, client lineClient, log zerolog.Logger) *tools.Registry {
	b := tools.NewRegistryBuilder().WithTool(tools.NewEchoTool())
	if client.Err != nil {
		log.Warn().Err(client.Err).Msg("container: LINE tools disabled")
		return b.Build()
	}
	defaultTo := cfg.Line.DefaultRecipient
	return b.
		WithTool(tools.NewSendTextTool(client.Client, defaultTo)).
		WithTool(tools.NewSendImageTool(client.Client, defaultTo)).
		WithTool(tools.NewSendMessagesTool(client.Client, defaultTo)).
		Build()
}

func newHost(cfg *config.Config, v buildVersion, reg *tools.Registry, rec *metrics.Recorder, log zerolog.Logger) *host.Host {
	opts := host.Options{
		Addr:    cfg.Server.Addr,
		BaseURL: cfg.Server.BaseURL,
		Version: string(v),
	}
	if cfg.Server.Metrics {
		opts.Metrics = rec.Handler()
	}
	return host.New(opts, reg, rec, log)
}

func newScheduler(cfg *config.Config, client lineClient, rec *metrics.Recorder, log zerolog.Logger) *schedule.Service {
	var sender schedule.Sender
	if client.Err == nil {
		sender = client.Client
	}
	return schedule.NewService(sender, schedule.JobsFromConfig(cfg),
		schedule.WithLogger(log),
		schedule.WithCounter(rec),
	)
}
