// Package schedule pushes configured text notifications on cron schedules.
//
// Each firing performs exactly one SendTextMessage. A failed push is logged
// and counted; it is not retried and does not affect later firings.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	robfigcron "github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/tachiyu/line-mcp-server/internal/config"
	"github.com/tachiyu/line-mcp-server/internal/line"
)

// Sender is the part of *line.Client a scheduled job needs.
type Sender interface {
	SendTextMessage(ctx context.Context, to, text string) (line.Result, error)
}

// RunCounter records the outcome of each firing.
type RunCounter interface {
	IncScheduledRun(job, result string)
}

// Job is one scheduled notification.
type Job struct {
	Name string
	Spec string
	To   string
	Text string
}

// ErrNoSender is returned by Start when jobs exist but no dispatch client
// was configured.
var ErrNoSender = errors.New("schedule: jobs configured without a LINE channel access token")

// parser accepts standard five-field expressions and descriptors such as
// @daily or @every 1h.
var parser = robfigcron.NewParser(
	robfigcron.Minute | robfigcron.Hour | robfigcron.Dom | robfigcron.Month | robfigcron.Dow | robfigcron.Descriptor,
)

// JobsFromConfig returns the enabled schedules with recipients resolved
// against the configured default.
func JobsFromConfig(cfg *config.Config) []Job {
	enabled := cfg.EnabledSchedules()
	jobs := make([]Job, 0, len(enabled))
	for i, sc := range enabled {
		name := strings.TrimSpace(sc.Name)
		if name == "" {
			name = fmt.Sprintf("schedule-%d", i+1)
		}
		jobs = append(jobs, Job{
			Name: name,
			Spec: strings.TrimSpace(sc.Spec),
			To:   cfg.Recipient(sc.To),
			Text: sc.Text,
		})
	}
	return jobs
}

// Next reports when spec fires next after from.
func Next(spec string, from time.Time) (time.Time, error) {
	sched, err := parser.Parse(spec)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(from), nil
}

type Option func(*Service)

func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) { s.log = log.With().Str("component", "schedule").Logger() }
}

func WithCounter(c RunCounter) Option {
	return func(s *Service) { s.counter = c }
}

func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

// Service runs scheduled jobs against a Sender.
type Service struct {
	sender  Sender
	jobs    []Job
	counter RunCounter
	log     zerolog.Logger
	loc     *time.Location
}

// NewService creates a Service. sender may be nil when jobs is empty.
func NewService(sender Sender, jobs []Job, opts ...Option) *Service {
	s := &Service{
		sender: sender,
		jobs:   jobs,
		log:    zerolog.Nop(),
		loc:    time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Jobs returns the configured jobs.
func (s *Service) Jobs() []Job { return s.jobs }

// Validate checks every job without starting anything.
func (s *Service) Validate() error {
	if len(s.jobs) > 0 && s.sender == nil {
		return ErrNoSender
	}
	seen := make(map[string]bool, len(s.jobs))
	for _, j := range s.jobs {
		if seen[j.Name] {
			return fmt.Errorf("schedule %q: duplicate name", j.Name)
		}
		seen[j.Name] = true
		if _, err := parser.Parse(j.Spec); err != nil {
			return fmt.Errorf("schedule %q: invalid spec %q: %w", j.Name, j.Spec, err)
		}
		if j.To == "" {
			return fmt.Errorf("schedule %q: no recipient", j.Name)
		}
		if strings.TrimSpace(j.Text) == "" {
			return fmt.Errorf("schedule %q: empty text", j.Name)
		}
	}
	return nil
}

// Start validates and arms every job, then blocks until ctx is cancelled.
// Jobs still running at that point are waited for.
func (s *Service) Start(ctx context.Context) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if len(s.jobs) == 0 {
		s.log.Debug().Msg("schedule: no jobs")
		<-ctx.Done()
		return ctx.Err()
	}

	c := robfigcron.New(
		robfigcron.WithParser(parser),
		robfigcron.WithLocation(s.loc),
	)
	for _, j := range s.jobs {
		job := j
		if _, err := c.AddFunc(job.Spec, func() { s.fire(ctx, job) }); err != nil {
			return fmt.Errorf("schedule %q: %w", job.Name, err)
		}
	}

	c.Start()
	s.log.Info().Int("jobs", len(s.jobs)).Msg("schedule: started")

	<-ctx.Done()

	<-c.Stop().Done()
	s.log.Info().Msg("schedule: stopped")
	return ctx.Err()
}

func (s *Service) fire(ctx context.Context, job Job) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	_, err := s.sender.SendTextMessage(ctx, job.To, job.Text)
	result := "ok"
	if err != nil {
		result = "error"
		s.log.Error().Err(err).Str("job", job.Name).Msg("schedule: push failed")
	} else {
		s.log.Info().
			Str("job", job.Name).
			Dur("elapsed", time.Since(start)).
			Msg("schedule: pushed")
	}
	if s.counter != nil {
		s.counter.IncScheduledRun(job.Name, result)
	}
}
