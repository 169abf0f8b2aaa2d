package application

import (
	"context"
	"fmt"

	"medbulletin/internal/domain/entity"
	"medbulletin/internal/domain/repository"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

type StateManager struct {
	articles repository.ArticleRepository
	logger   log.Logger
}

func NewStateManager(articles repository.ArticleRepository, logger log.Logger) *StateManager {
	return &StateManager{articles: articles, logger: logger}
}

// ToggleSaved flips the saved flag and returns the new value.
func (m *StateManager) ToggleSaved(ctx context.Context, id int64) (bool, error) {
	saved, err := m.articles.ToggleSaved(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to toggle saved for article %d: %w", id, err)
	}
	return saved, nil
}

func (m *StateManager) MarkRead(ctx context.Context, id int64) error {
	if err := m.articles.MarkRead(ctx, id); err != nil {
		return fmt.Errorf("failed to mark article %d read: %w", id, err)
	}
	return nil
}

func (m *StateManager) MarkAllRead(ctx context.Context) (int64, error) {
	n, err := m.articles.MarkAllRead(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to mark all articles read: %w", err)
	}
	if n > 0 {
		level.Debug(m.logger).Log("msg", "marked articles read", "count", n)
	}
	return n, nil
}

func (m *StateManager) Stats(ctx context.Context) (entity.ArticleStats, error) {
	stats, err := m.articles.Stats(ctx)
	if err != nil {
		return entity.ArticleStats{}, fmt.Errorf("failed to count articles: %w", err)
	}
	return stats, nil
}
