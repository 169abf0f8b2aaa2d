package application

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"medbulletin/internal/domain/entity"
	"medbulletin/internal/infrastructure/storage"

	"github.com/go-kit/log"
)

type mockCycler struct {
	cycles    atomic.Int32
	evictions atomic.Int32
	newItems  int
	err       error
	ran       chan struct{}
	release   chan struct{}
}

func newMockCycler() *mockCycler {
	return &mockCycler{ran: make(chan struct{}, 100)}
}

func (m *mockCycler) RunCycle(ctx context.Context) (int, error) {
	m.cycles.Add(1)
	if m.release != nil {
		<-m.release
	}
	m.ran <- struct{}{}
	return m.newItems, m.err
}

func (m *mockCycler) Evict(ctx context.Context) (int64, error) {
	m.evictions.Add(1)
	return 0, nil
}

type mockScheduleSettings struct {
	interval      atomic.Int64
	notifications atomic.Bool
}

func newMockScheduleSettings(interval int, notify bool) *mockScheduleSettings {
	s := &mockScheduleSettings{}
	s.interval.Store(int64(interval))
	s.notifications.Store(notify)
	return s
}

func (m *mockScheduleSettings) RefreshInterval(context.Context) int {
	return int(m.interval.Load())
}

func (m *mockScheduleSettings) NotificationsEnabled(context.Context) bool {
	return m.notifications.Load()
}

// one interval unit is 10ms; waits count down in 1ms ticks
var fastConfig = SchedulerConfig{
	GracePeriod:          time.Millisecond,
	DisabledPollInterval: 5 * time.Millisecond,
	WaitTick:             time.Millisecond,
	IntervalUnit:         10 * time.Millisecond,
}

func waitForCycle(t *testing.T, c *mockCycler, timeout time.Duration) {
	t.Helper()
	select {
	case <-c.ran:
	case <-time.After(timeout):
		t.Fatalf("no cycle within %v", timeout)
	}
}

func TestScheduler_StartRunsInitialCycle(t *testing.T) {
	cycler := newMockCycler()
	s := NewScheduler(cycler, newMockScheduleSettings(1000, false), nil, fastConfig, log.NewNopLogger())

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Stop()

	waitForCycle(t, cycler, time.Second)
	if cycler.evictions.Load() != 1 {
		t.Errorf("expected one startup eviction, got %d", cycler.evictions.Load())
	}
}

func TestScheduler_StartTwice(t *testing.T) {
	s := NewScheduler(newMockCycler(), newMockScheduleSettings(1000, false), nil, fastConfig, log.NewNopLogger())

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Stop()

	if err := s.Start(context.Background()); !errors.Is(err, ErrSchedulerStarted) {
		t.Errorf("expected ErrSchedulerStarted, got %v", err)
	}
}

func TestScheduler_IntervalChangeMidWait(t *testing.T) {
	cycler := newMockCycler()
	settings := newMockScheduleSettings(1000, false)
	s := NewScheduler(cycler, settings, nil, fastConfig, log.NewNopLogger())

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Stop()

	waitForCycle(t, cycler, time.Second)

	// the worker is now inside a 10s wait
	time.Sleep(30 * time.Millisecond)
	settings.interval.Store(1)

	waitForCycle(t, cycler, time.Second)
}

func TestScheduler_DisabledThenEnabled(t *testing.T) {
	cycler := newMockCycler()
	settings := newMockScheduleSettings(0, false)
	s := NewScheduler(cycler, settings, nil, fastConfig, log.NewNopLogger())

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Stop()

	waitForCycle(t, cycler, time.Second)

	time.Sleep(50 * time.Millisecond)
	if got := cycler.cycles.Load(); got != 1 {
		t.Fatalf("expected no cycles while disabled, got %d", got)
	}

	settings.interval.Store(1)
	waitForCycle(t, cycler, time.Second)
}

func TestScheduler_RefreshNowExclusive(t *testing.T) {
	cycler := newMockCycler()
	cycler.release = make(chan struct{})
	s := NewScheduler(cycler, newMockScheduleSettings(0, false), nil, fastConfig, log.NewNopLogger())

	done := make(chan error, 1)
	go func() {
		_, err := s.RefreshNow(context.Background())
		done <- err
	}()

	deadline := time.Now().Add(time.Second)
	for !s.Loading() {
		if time.Now().After(deadline) {
			t.Fatal("first refresh never started")
		}
		time.Sleep(time.Millisecond)
	}

	if _, err := s.RefreshNow(context.Background()); !errors.Is(err, ErrCycleInProgress) {
		t.Errorf("expected ErrCycleInProgress, got %v", err)
	}

	close(cycler.release)
	if err := <-done; err != nil {
		t.Errorf("unexpected error from first refresh: %v", err)
	}
	if got := cycler.cycles.Load(); got != 1 {
		t.Errorf("expected exactly one cycle, got %d", got)
	}
	if s.Loading() {
		t.Error("expected loading flag to be cleared")
	}
}

func TestScheduler_Notifications(t *testing.T) {
	tests := []struct {
		name     string
		newItems int
		enabled  bool
		expected int
	}{
		{"new items, enabled", 3, true, 1},
		{"new items, disabled", 3, false, 0},
		{"nothing new", 0, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cycler := newMockCycler()
			cycler.newItems = tt.newItems
			notifier := &mockNotifier{}
			s := NewScheduler(cycler, newMockScheduleSettings(1000, tt.enabled), notifier, fastConfig, log.NewNopLogger())

			if err := s.Start(context.Background()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			waitForCycle(t, cycler, time.Second)
			s.Stop()

			got := notifier.notified()
			if len(got) != tt.expected {
				t.Fatalf("expected %d notifications, got %v", tt.expected, got)
			}
			if tt.expected > 0 && got[0] != tt.newItems {
				t.Errorf("expected count %d, got %d", tt.newItems, got[0])
			}
		})
	}
}

func TestScheduler_RefreshNowDoesNotNotify(t *testing.T) {
	cycler := newMockCycler()
	cycler.newItems = 2
	notifier := &mockNotifier{}
	s := NewScheduler(cycler, newMockScheduleSettings(30, true), notifier, fastConfig, log.NewNopLogger())

	n, err := s.RefreshNow(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2, got %d", n)
	}
	if got := notifier.notified(); len(got) != 0 {
		t.Errorf("expected no notification for a manual refresh, got %v", got)
	}
}

func TestScheduler_StopHaltsWorker(t *testing.T) {
	cycler := newMockCycler()
	s := NewScheduler(cycler, newMockScheduleSettings(1, false), nil, fastConfig, log.NewNopLogger())

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waitForCycle(t, cycler, time.Second)
	s.Stop()

	after := cycler.cycles.Load()
	time.Sleep(50 * time.Millisecond)
	if got := cycler.cycles.Load(); got != after {
		t.Errorf("expected no cycles after Stop, got %d more", got-after)
	}

	if err := s.Start(context.Background()); err != nil {
		t.Errorf("expected restart after Stop to succeed, got %v", err)
	}
	s.Stop()
}

type panickingCycler struct{ mockCycler }

func (p *panickingCycler) RunCycle(ctx context.Context) (int, error) {
	panic("boom")
}

func TestScheduler_CyclePanicRecovered(t *testing.T) {
	s := NewScheduler(&panickingCycler{}, newMockScheduleSettings(0, false), nil, fastConfig, log.NewNopLogger())

	if _, err := s.RefreshNow(context.Background()); err == nil {
		t.Error("expected error from panicking cycle, got nil")
	}
	if s.Loading() {
		t.Error("expected loading flag to be cleared after panic")
	}
}

// cancellingFeedRepository cancels the caller's context when cancelURL is
// fetched, the way a client disconnect lands mid-cycle.
type cancellingFeedRepository struct {
	*mockFeedRepository
	cancelURL string
	cancel    context.CancelFunc
}

func (c *cancellingFeedRepository) Fetch(ctx context.Context, url string) (*entity.Feed, error) {
	if url == c.cancelURL {
		c.cancel()
	}
	return c.mockFeedRepository.Fetch(ctx, url)
}

func TestScheduler_RefreshNowSurvivesCallerCancel(t *testing.T) {
	logger := log.NewNopLogger()
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "bulletin.db"), logger)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, src := range []*entity.FeedSource{
		entity.NewFeedSource("A", "https://a.example/rss"),
		entity.NewFeedSource("B", "https://b.example/rss"),
	} {
		if err := store.CreateSource(ctx, src); err != nil {
			t.Fatalf("failed to create source: %v", err)
		}
	}

	mock := newMockFeedRepository()
	mock.feeds["https://a.example/rss"] = feedOf("A", time.Now(), "https://x/1", "https://x/2")
	mock.errs["https://b.example/rss"] = errors.New("connection reset")
	feeds := &cancellingFeedRepository{mockFeedRepository: mock, cancelURL: "https://b.example/rss", cancel: cancel}

	ingestion := NewIngestionService(store, feeds, store, fixedRetention(7), logger)
	s := NewScheduler(ingestion, newMockScheduleSettings(30, false), nil, fastConfig, logger)

	n, err := s.RefreshNow(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 new articles, got %d", n)
	}

	stats, err := store.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Total != 2 {
		t.Errorf("expected 2 stored articles, got %d", stats.Total)
	}
	if ctx.Err() == nil {
		t.Error("expected caller context to be cancelled during the cycle")
	}
}
