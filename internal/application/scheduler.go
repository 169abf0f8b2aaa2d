package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"medbulletin/internal/domain/repository"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

type Cycler interface {
	RunCycle(ctx context.Context) (int, error)
	Evict(ctx context.Context) (int64, error)
}

type ScheduleSettings interface {
	RefreshInterval(ctx context.Context) int
	NotificationsEnabled(ctx context.Context) bool
}

type SchedulerConfig struct {
	// GracePeriod delays the first cycle after Start.
	GracePeriod time.Duration
	// DisabledPollInterval is how often a disabled schedule is re-checked.
	DisabledPollInterval time.Duration
	// WaitTick is the sleep granularity while counting down an interval.
	WaitTick time.Duration
	// IntervalUnit scales the configured refresh interval.
	IntervalUnit time.Duration
}

func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		GracePeriod:          2 * time.Second,
		DisabledPollInterval: 10 * time.Second,
		WaitTick:             time.Second,
		IntervalUnit:         time.Minute,
	}
}

// Scheduler drives ingestion from a single background worker and serialises
// it with on-demand refreshes.
type Scheduler struct {
	ingestion Cycler
	settings  ScheduleSettings
	notifier  repository.NotificationRepository
	cfg       SchedulerConfig
	logger    log.Logger

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}

	loading atomic.Bool
}

func NewScheduler(
	ingestion Cycler,
	settings ScheduleSettings,
	notifier repository.NotificationRepository,
	cfg SchedulerConfig,
	logger log.Logger,
) *Scheduler {
	return &Scheduler{
		ingestion: ingestion,
		settings:  settings,
		notifier:  notifier,
		cfg:       cfg,
		logger:    logger,
	}
}

// Start launches the worker. It returns ErrSchedulerStarted if a worker is
// already running.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrSchedulerStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	s.started = true
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(ctx, s.done)

	level.Info(s.logger).Log("msg", "news scheduler started")
	return nil
}

// Stop cancels the worker and waits for it to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.cancel()
	done := s.done
	s.mu.Unlock()

	<-done

	s.mu.Lock()
	s.started = false
	s.mu.Unlock()

	level.Info(s.logger).Log("msg", "news scheduler stopped")
}

// Loading reports whether a cycle is in flight.
func (s *Scheduler) Loading() bool {
	return s.loading.Load()
}

// RefreshNow runs a cycle on the caller's goroutine. It returns
// ErrCycleInProgress without doing anything if a cycle is already running.
// Cancelling ctx does not abort the cycle; fetch timeouts bound it.
func (s *Scheduler) RefreshNow(ctx context.Context) (int, error) {
	return s.cycle(context.WithoutCancel(ctx), false)
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	if _, err := s.ingestion.Evict(ctx); err != nil {
		level.Error(s.logger).Log("msg", "startup eviction failed", "err", err)
	}

	if !sleep(ctx, s.cfg.GracePeriod) {
		return
	}

	for {
		if _, err := s.cycle(ctx, true); err != nil && !errors.Is(err, ErrCycleInProgress) {
			level.Error(s.logger).Log("msg", "news cycle failed", "err", err)
		}
		if !s.wait(ctx) {
			return
		}
	}
}

// wait counts down the refresh interval in short ticks, re-reading the
// setting on each tick. It returns false when ctx is done.
func (s *Scheduler) wait(ctx context.Context) bool {
	var waited time.Duration
	for {
		interval := s.settings.RefreshInterval(ctx)
		if interval <= 0 {
			waited = 0
			if !sleep(ctx, s.cfg.DisabledPollInterval) {
				return false
			}
			continue
		}

		if waited >= time.Duration(interval)*s.cfg.IntervalUnit {
			return true
		}
		if !sleep(ctx, s.cfg.WaitTick) {
			return false
		}
		waited += s.cfg.WaitTick
	}
}

func (s *Scheduler) cycle(ctx context.Context, background bool) (n int, err error) {
	if !s.loading.CompareAndSwap(false, true) {
		level.Debug(s.logger).Log("msg", "cycle already in progress, skipping", "background", background)
		return 0, ErrCycleInProgress
	}
	defer s.loading.Store(false)

	defer func() {
		if r := recover(); r != nil {
			level.Error(s.logger).Log("msg", "news cycle panicked", "panic", r)
			n, err = 0, fmt.Errorf("news cycle panicked: %v", r)
		}
	}()

	n, err = s.ingestion.RunCycle(ctx)
	if err != nil {
		return 0, err
	}

	if background && n > 0 && s.notifier != nil && s.settings.NotificationsEnabled(ctx) {
		if err := s.notifier.NotifyNewArticles(ctx, n); err != nil {
			level.Warn(s.logger).Log("msg", "failed to send new articles notification", "count", n, "err", err)
		}
	}
	return n, nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
