package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

// Options configures New.
type Options struct {
	PollInterval time.Duration // dispatch cycle period; 0 disables polling
	BriefingCron string        // standard 5-field cron; "" disables briefings
	Timezone     *time.Location
}

// Scheduler runs the dispatch cycle on an interval and the briefing on a
// cron schedule. A job never overlaps with itself.
type Scheduler struct {
	scheduler *gocron.Scheduler
	poll      Job
	brief     Job
	opts      Options
	logger    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new Scheduler.
func New(poll, brief Job, logger *slog.Logger, opts Options) *Scheduler {
	loc := opts.Timezone
	if loc == nil {
		loc = time.UTC
	}
	s := gocron.NewScheduler(loc)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		poll:      poll,
		brief:     brief,
		opts:      opts,
		logger:    logger,
	}
}

// Start schedules the jobs and starts the underlying scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	if s.poll != nil && s.opts.PollInterval > 0 {
		if _, err := s.scheduler.Every(s.opts.PollInterval).Tag("poll").Do(s.run, "poll", s.poll); err != nil {
			return fmt.Errorf("schedule poll: %w", err)
		}
	}
	if s.brief != nil && s.opts.BriefingCron != "" {
		if _, err := s.scheduler.Cron(s.opts.BriefingCron).Tag("briefing").Do(s.run, "briefing", s.brief); err != nil {
			return fmt.Errorf("schedule briefing %q: %w", s.opts.BriefingCron, err)
		}
	}
	if len(s.scheduler.Jobs()) == 0 {
		s.logger.Warn("scheduler: nothing to schedule")
		return nil
	}

	s.scheduler.StartAsync()
	s.logger.Info("scheduler started", "poll_interval", s.opts.PollInterval, "briefing_cron", s.opts.BriefingCron)
	return nil
}

// NextRuns returns the next run time per job tag.
func (s *Scheduler) NextRuns() map[string]time.Time {
	next := map[string]time.Time{}
	for _, j := range s.scheduler.Jobs() {
		for _, tag := range j.Tags() {
			next[tag] = j.NextRun()
		}
	}
	return next
}

func (s *Scheduler) run(name string, job Job) {
	start := time.Now()
	s.logger.Debug("scheduler: job started", "job", name)
	if err := job(s.ctx); err != nil {
		s.logger.Error("scheduler: job failed", "job", name, "error", err, "duration", time.Since(start))
		return
	}
	s.logger.Debug("scheduler: job completed", "job", name, "duration", time.Since(start))
}

// Stop stops the scheduler and cancels running jobs.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
