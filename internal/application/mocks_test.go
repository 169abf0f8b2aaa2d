package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"medbulletin/internal/domain/entity"
)

type mockFeedRepository struct {
	mu    sync.Mutex
	feeds map[string]*entity.Feed
	errs  map[string]error
	calls []string
}

func newMockFeedRepository() *mockFeedRepository {
	return &mockFeedRepository{
		feeds: make(map[string]*entity.Feed),
		errs:  make(map[string]error),
	}
}

func (m *mockFeedRepository) Fetch(ctx context.Context, url string) (*entity.Feed, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, url)
	if err := m.errs[url]; err != nil {
		return nil, err
	}
	if f, ok := m.feeds[url]; ok {
		return f, nil
	}
	return nil, errors.New("unexpected url " + url)
}

func feedOf(title string, published time.Time, links ...string) *entity.Feed {
	f := &entity.Feed{Title: title}
	for _, l := range links {
		f.Entries = append(f.Entries, entity.NewFeedEntry("Article "+l, l, "summary", "", published))
	}
	return f
}

type fixedRetention int

func (f fixedRetention) RetentionDays(context.Context) int {
	return int(f)
}

type mockNotifier struct {
	mu     sync.Mutex
	counts []int
	err    error
}

func (m *mockNotifier) NotifyNewArticles(ctx context.Context, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts = append(m.counts, count)
	return m.err
}

func (m *mockNotifier) notified() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.counts...)
}
