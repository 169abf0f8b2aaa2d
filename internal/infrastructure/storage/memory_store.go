package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"medbulletin/internal/domain/entity"
	"medbulletin/internal/domain/repository"
)

// MemoryStore keeps everything in process memory. Nothing survives a
// restart.
type MemoryStore struct {
	mu sync.RWMutex

	articles    map[int64]*entity.Article
	byLink      map[string]int64
	seen        map[string]struct{}
	nextArticle int64

	sources    []*entity.FeedSource
	nextSource int64

	keywords    []*entity.Keyword
	nextKeyword int64

	settings map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		articles: make(map[int64]*entity.Article),
		byLink:   make(map[string]int64),
		seen:     make(map[string]struct{}),
		settings: make(map[string]string),
	}
}

func (m *MemoryStore) KnownLinks(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	links := make([]string, 0, len(m.seen))
	for link := range m.seen {
		links = append(links, link)
	}
	return links, nil
}

func (m *MemoryStore) InsertBatch(_ context.Context, articles []*entity.Article) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inserted := 0
	for _, a := range articles {
		m.seen[a.Link] = struct{}{}
		if _, ok := m.byLink[a.Link]; ok {
			continue
		}
		m.nextArticle++
		stored := *a
		stored.ID = m.nextArticle
		m.articles[stored.ID] = &stored
		m.byLink[stored.Link] = stored.ID
		inserted++
	}
	return inserted, nil
}

func (m *MemoryStore) DeleteUnsavedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for id, a := range m.articles {
		if a.IsEvictable(cutoff) {
			delete(m.articles, id)
			delete(m.byLink, a.Link)
			deleted++
		}
	}
	return deleted, nil
}

func (m *MemoryStore) ListPage(_ context.Context, offset, limit int) ([]*entity.Article, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		return nil, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.sortedLocked(func(*entity.Article) bool { return true })
	if offset >= len(all) {
		return nil, nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], nil
}

func (m *MemoryStore) ListSaved(_ context.Context) ([]*entity.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.sortedLocked(func(a *entity.Article) bool { return a.IsSaved }), nil
}

// sortedLocked returns copies of the matching articles, newest id first.
func (m *MemoryStore) sortedLocked(keep func(*entity.Article) bool) []*entity.Article {
	out := make([]*entity.Article, 0, len(m.articles))
	for _, a := range m.articles {
		if keep(a) {
			c := *a
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (m *MemoryStore) Get(_ context.Context, id int64) (*entity.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.articles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *a
	return &c, nil
}

func (m *MemoryStore) ToggleSaved(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.articles[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	a.IsSaved = !a.IsSaved
	return a.IsSaved, nil
}

func (m *MemoryStore) MarkRead(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.articles[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.IsRead = true
	return nil
}

func (m *MemoryStore) MarkAllRead(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for _, a := range m.articles {
		if !a.IsRead {
			a.IsRead = true
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) Stats(_ context.Context) (entity.ArticleStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := entity.ArticleStats{Total: len(m.articles)}
	for _, a := range m.articles {
		if !a.IsRead {
			stats.Unread++
		}
		if a.IsSaved {
			stats.Saved++
		}
	}
	return stats, nil
}

func (m *MemoryStore) List(_ context.Context) ([]*entity.FeedSource, error) {
	return m.listSources(func(*entity.FeedSource) bool { return true }), nil
}

func (m *MemoryStore) ListActive(_ context.Context) ([]*entity.FeedSource, error) {
	return m.listSources(func(s *entity.FeedSource) bool { return s.IsActive }), nil
}

func (m *MemoryStore) listSources(keep func(*entity.FeedSource) bool) []*entity.FeedSource {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*entity.FeedSource, 0, len(m.sources))
	for _, s := range m.sources {
		if keep(s) {
			c := *s
			out = append(out, &c)
		}
	}
	return out
}

func (m *MemoryStore) CreateSource(_ context.Context, source *entity.FeedSource) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.sources {
		if s.URL == source.URL {
			return repository.ErrDuplicate
		}
	}
	m.nextSource++
	source.ID = m.nextSource
	c := *source
	m.sources = append(m.sources, &c)
	return nil
}

func (m *MemoryStore) DeleteSource(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, s := range m.sources {
		if s.ID == id {
			m.sources = append(m.sources[:i], m.sources[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *MemoryStore) SetSourceActive(_ context.Context, id int64, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.sources {
		if s.ID == id {
			s.IsActive = active
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *MemoryStore) ListKeywords(_ context.Context) ([]*entity.Keyword, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*entity.Keyword, 0, len(m.keywords))
	for _, k := range m.keywords {
		c := *k
		out = append(out, &c)
	}
	return out, nil
}

func (m *MemoryStore) CreateKeyword(_ context.Context, keyword *entity.Keyword) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range m.keywords {
		if strings.EqualFold(k.Text, keyword.Text) {
			return repository.ErrDuplicate
		}
	}
	m.nextKeyword++
	keyword.ID = m.nextKeyword
	c := *keyword
	m.keywords = append(m.keywords, &c)
	return nil
}

func (m *MemoryStore) DeleteKeyword(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, k := range m.keywords {
		if k.ID == id {
			m.keywords = append(m.keywords[:i], m.keywords[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *MemoryStore) GetSetting(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.settings[key]
	return v, ok, nil
}

func (m *MemoryStore) SetSetting(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.settings[key] = value
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}
