package application

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"medbulletin/internal/domain/entity"
	"medbulletin/internal/domain/repository"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// SourceRegistry owns the list of feed endpoints. It is read fresh on every
// cycle, so changes apply to the next fetch without invalidation.
type SourceRegistry struct {
	repo     repository.SourceRepository
	feedRepo repository.FeedRepository
	logger   log.Logger
}

func NewSourceRegistry(repo repository.SourceRepository, feedRepo repository.FeedRepository, logger log.Logger) *SourceRegistry {
	return &SourceRegistry{
		repo:     repo,
		feedRepo: feedRepo,
		logger:   logger,
	}
}

func (r *SourceRegistry) List(ctx context.Context) ([]*entity.FeedSource, error) {
	return r.repo.List(ctx)
}

func (r *SourceRegistry) ListActive(ctx context.Context) ([]*entity.FeedSource, error) {
	return r.repo.ListActive(ctx)
}

// Add registers a source after a probe fetch confirms the URL serves a feed.
// Nothing is stored when the probe fails.
func (r *SourceRegistry) Add(ctx context.Context, name, rawURL string) (*entity.FeedSource, error) {
	name = strings.TrimSpace(name)
	rawURL = strings.TrimSpace(rawURL)

	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidSource)
	}
	if err := validateFeedURL(rawURL); err != nil {
		return nil, err
	}

	existing, err := r.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	for _, s := range existing {
		if s.URL == rawURL {
			return nil, fmt.Errorf("source %s: %w", rawURL, repository.ErrDuplicate)
		}
	}

	feed, err := r.feedRepo.Fetch(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFeed, err)
	}
	if feed.IsEmpty() {
		return nil, ErrInvalidFeed
	}

	source := entity.NewFeedSource(name, rawURL)
	if err := r.repo.CreateSource(ctx, source); err != nil {
		return nil, fmt.Errorf("failed to save source: %w", err)
	}

	level.Info(r.logger).Log("msg", "source added", "name", name, "url", rawURL, "entries", len(feed.Entries))
	return source, nil
}

func (r *SourceRegistry) Remove(ctx context.Context, id int64) error {
	if err := r.repo.DeleteSource(ctx, id); err != nil {
		return fmt.Errorf("failed to remove source %d: %w", id, err)
	}
	level.Info(r.logger).Log("msg", "source removed", "id", id)
	return nil
}

func (r *SourceRegistry) SetActive(ctx context.Context, id int64, active bool) error {
	if err := r.repo.SetSourceActive(ctx, id, active); err != nil {
		return fmt.Errorf("failed to update source %d: %w", id, err)
	}
	level.Info(r.logger).Log("msg", "source updated", "id", id, "active", active)
	return nil
}

// Seed stores the given sources when the registry is empty. Seeded sources
// are trusted and skip the probe.
func (r *SourceRegistry) Seed(ctx context.Context, sources []*entity.FeedSource) (int, error) {
	existing, err := r.repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list sources: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	seeded := 0
	for _, s := range sources {
		source := entity.NewFeedSource(s.Name, s.URL)
		if err := r.repo.CreateSource(ctx, source); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				continue
			}
			return seeded, fmt.Errorf("failed to seed source %s: %w", s.URL, err)
		}
		seeded++
	}

	if seeded > 0 {
		level.Info(r.logger).Log("msg", "seeded default sources", "count", seeded)
	}
	return seeded, nil
}

func validateFeedURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidSource, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidSource)
	}
	return nil
}
