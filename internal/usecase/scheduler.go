package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"CrimeScanner/internal/domain"
	"CrimeScanner/internal/ports"
)

// Acknowledgement is returned to a trigger caller before the sweep runs.
type Acknowledgement struct {
	Accepted bool   `json:"accepted"`
	Message  string `json:"message"`
}

const (
	msgSweepStarted = "Scraping started"
	msgSweepRunning = "A scraping sweep is already running"
	msgLockFailed   = "Scraping could not be started"
)

// SchedulerDeps wires the periodic driver, the single-flight lock and the report channel.
type SchedulerDeps struct {
	Driver   ports.Scheduler
	Pipeline *Pipeline
	Lock     ports.SweepLock
	Notifier ports.Notifier
	Location *time.Location
	Logger   *slog.Logger
}

// Scheduler runs sweeps from periodic ticks and manual triggers, never two at once.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	lock     ports.SweepLock
	notifier ports.Notifier
	location *time.Location
	logger   *slog.Logger

	mu      sync.Mutex
	running chan struct{}
}

// NewScheduler returns a helper to start/stop recurring sweeps.
func NewScheduler(deps SchedulerDeps) *Scheduler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		driver:   deps.Driver,
		pipeline: deps.Pipeline,
		lock:     deps.Lock,
		notifier: deps.Notifier,
		location: loc,
		logger:   logger,
	}
}

// Trigger starts a sweep in the background and returns at once. A trigger while
// another sweep holds the lock is ignored.
func (s *Scheduler) Trigger(ctx context.Context) Acknowledgement {
	if s.pipeline == nil || s.lock == nil {
		return Acknowledgement{Accepted: false, Message: msgLockFailed}
	}

	release, ok, err := s.lock.TryAcquire(ctx)
	if err != nil {
		s.logger.Error("acquire sweep lock", slog.Any("error", err))
		return Acknowledgement{Accepted: false, Message: msgLockFailed}
	}
	if !ok {
		s.logger.Info("sweep trigger ignored, another sweep is running")
		return Acknowledgement{Accepted: false, Message: msgSweepRunning}
	}

	done := make(chan struct{})
	s.mu.Lock()
	s.running = done
	s.mu.Unlock()

	sweepCtx := context.WithoutCancel(ctx)
	go func() {
		defer close(done)
		defer release()
		s.run(sweepCtx)
	}()

	return Acknowledgement{Accepted: true, Message: msgSweepStarted}
}

func (s *Scheduler) run(ctx context.Context) {
	report, err := s.pipeline.Sweep(ctx)
	if err != nil {
		s.logger.Error("sweep failed", slog.Any("error", err))
		return
	}

	if s.notifier == nil {
		return
	}
	if err := s.notifier.PublishReport(ctx, FormatReport(report, s.location)); err != nil {
		s.logger.Warn("publish sweep report", slog.Any("error", err))
	}
}

// Start registers the sweep with the periodic driver.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(tick time.Time) {
		ack := s.Trigger(ctx)
		s.logger.Info("scheduled sweep",
			slog.Time("tick", tick.In(s.location)),
			slog.Bool("accepted", ack.Accepted))
	}

	return s.driver.Start(ctx, job)
}

// Stop tears down the driver and waits for an in-flight sweep until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver != nil {
		if err := s.driver.Stop(ctx); err != nil {
			return err
		}
	}
	return s.Wait(ctx)
}

// Wait blocks until the latest sweep started by this scheduler has finished.
func (s *Scheduler) Wait(ctx context.Context) error {
	s.mu.Lock()
	done := s.running
	s.mu.Unlock()
	if done == nil {
		return nil
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// FormatReport renders a sweep report for operators.
func FormatReport(r domain.SweepReport, loc *time.Location) string {
	return fmt.Sprintf("Crime news sweep %s\nSources: %d (%d failed)\nLinks: %d\nCreated: %d, skipped: %d, failed: %d\nDuration: %s",
		r.StartedAt.In(loc).Format("2006-01-02 15:04 MST"),
		r.Sources, r.SourcesFailed,
		r.Links,
		r.Created, r.Skipped, r.Failed,
		r.Duration().Round(time.Second))
}
