// Package scheduler drives the dispatcher once a minute in-process, for
// deployments without an external caller of the trigger endpoint.
package scheduler

import (
	"context"
	"time"

	"github.com/dmitrijs2005/cyclekeeper/internal/logging"
	"github.com/dmitrijs2005/cyclekeeper/internal/services"
	"github.com/robfig/cron/v3"
)

// EveryMinute is the schedule the dispatcher needs: it matches exact minutes.
const EveryMinute = "* * * * *"

type Ticker interface {
	Tick(ctx context.Context, now time.Time) (services.TickReport, error)
}

type Service struct {
	ticker Ticker
	loc    *time.Location
	log    logging.Logger
	now    func() time.Time
}

func NewService(t Ticker, loc *time.Location, log logging.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{ticker: t, loc: loc, log: log.With("module", "scheduler"), now: time.Now}
}

// Start registers the minute job and starts the cron runner.
func (s *Service) Start(ctx context.Context) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(s.loc))
	if _, err := c.AddFunc(EveryMinute, func() { s.RunOnce(ctx) }); err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}

// Run blocks until ctx is cancelled, then waits for a running tick.
func (s *Service) Run(ctx context.Context) error {
	c, err := s.Start(ctx)
	if err != nil {
		return err
	}
	s.log.Info(ctx, "Scheduler started", "schedule", EveryMinute, "timezone", s.loc.String())

	<-ctx.Done()
	s.log.Info(context.Background(), "Stopping scheduler...")
	<-c.Stop().Done()
	return nil
}

// RunOnce ticks for the current minute. Errors are logged, the next minute
// simply tries again.
func (s *Service) RunOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	now := s.now().Truncate(time.Minute)
	if _, err := s.ticker.Tick(ctx, now); err != nil {
		s.log.Error(ctx, "scheduled tick failed", "error", err)
	}
}
