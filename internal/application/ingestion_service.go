package application

import (
	"context"
	"fmt"
	"time"

	"medbulletin/internal/domain/entity"
	"medbulletin/internal/domain/repository"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

type RetentionProvider interface {
	RetentionDays(ctx context.Context) int
}

// IngestionService runs one fetch, dedup, persist and evict pass over the
// active sources. Callers must not run two cycles at once; Scheduler
// enforces that.
type IngestionService struct {
	sources   repository.SourceRepository
	feedRepo  repository.FeedRepository
	articles  repository.ArticleRepository
	retention RetentionProvider
	logger    log.Logger
	now       func() time.Time
}

func NewIngestionService(
	sources repository.SourceRepository,
	feedRepo repository.FeedRepository,
	articles repository.ArticleRepository,
	retention RetentionProvider,
	logger log.Logger,
) *IngestionService {
	return &IngestionService{
		sources:   sources,
		feedRepo:  feedRepo,
		articles:  articles,
		retention: retention,
		logger:    logger,
		now:       time.Now,
	}
}

// RunCycle returns the number of newly stored articles. A failing source is
// skipped; a failing insert abandons the whole batch, and eviction still runs.
func (s *IngestionService) RunCycle(ctx context.Context) (int, error) {
	start := s.now()

	sources, err := s.sources.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list active sources: %w", err)
	}
	if len(sources) == 0 {
		level.Warn(s.logger).Log("msg", "no active news sources")
	}

	known, err := s.articles.KnownLinks(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load known links: %w", err)
	}
	seen := make(map[string]struct{}, len(known))
	for _, link := range known {
		seen[link] = struct{}{}
	}

	staged := s.collect(ctx, sources, seen)

	inserted := 0
	var insertErr error
	if len(staged) > 0 {
		inserted, insertErr = s.articles.InsertBatch(ctx, staged)
		if insertErr != nil {
			level.Error(s.logger).Log("msg", "failed to store articles", "staged", len(staged), "err", insertErr)
			inserted = 0
		}
	}

	evicted, err := s.Evict(ctx)
	if err != nil {
		level.Error(s.logger).Log("msg", "eviction failed", "err", err)
	}

	if insertErr != nil {
		return 0, fmt.Errorf("failed to store articles: %w", insertErr)
	}

	level.Info(s.logger).Log(
		"msg", "news cycle complete",
		"sources", len(sources),
		"new", inserted,
		"evicted", evicted,
		"duration", s.now().Sub(start),
	)
	return inserted, nil
}

// collect fetches sources in order and stages entries whose link is not in
// seen. Staged links are added to seen immediately, so a link republished by
// a later source in the same pass is dropped.
func (s *IngestionService) collect(ctx context.Context, sources []*entity.FeedSource, seen map[string]struct{}) []*entity.Article {
	var staged []*entity.Article

	for _, source := range sources {
		if ctx.Err() != nil {
			break
		}

		for _, entry := range s.fetchSource(ctx, source) {
			if _, ok := seen[entry.Link]; ok {
				continue
			}
			seen[entry.Link] = struct{}{}
			staged = append(staged, entity.NewArticleFromEntry(entry, source.Name))
		}
	}

	return staged
}

func (s *IngestionService) fetchSource(ctx context.Context, source *entity.FeedSource) []*entity.FeedEntry {
	feed, err := s.feedRepo.Fetch(ctx, source.URL)
	if err != nil {
		level.Warn(s.logger).Log("msg", "failed to fetch source", "source", source.Name, "url", source.URL, "err", err)
		return nil
	}
	if feed == nil {
		return nil
	}
	return feed.Entries
}

// Evict deletes unsaved articles published before now minus the current
// retention window.
func (s *IngestionService) Evict(ctx context.Context) (int64, error) {
	days := s.retention.RetentionDays(ctx)
	cutoff := s.now().AddDate(0, 0, -days)

	deleted, err := s.articles.DeleteUnsavedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to evict articles older than %d days: %w", days, err)
	}
	if deleted > 0 {
		level.Info(s.logger).Log("msg", "cleaned up old articles", "count", deleted, "retention_days", days)
	}
	return deleted, nil
}
