package application

import (
	"context"
	"fmt"

	"medbulletin/internal/domain/entity"
	"medbulletin/internal/domain/repository"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ProfileProvider supplies the reader's medical specialty.
type ProfileProvider interface {
	Specialty(ctx context.Context) string
}

// StaticProfile is a ProfileProvider with a fixed specialty.
type StaticProfile string

func (p StaticProfile) Specialty(context.Context) string {
	if p == "" {
		return entity.DefaultSpecialty
	}
	return string(p)
}

// BulletinService pages stored articles for display, optionally floating
// keyword matches to the top of each page.
type BulletinService struct {
	articles repository.ArticleRepository
	keywords repository.KeywordRepository
	profile  ProfileProvider
	logger   log.Logger
}

func NewBulletinService(
	articles repository.ArticleRepository,
	keywords repository.KeywordRepository,
	profile ProfileProvider,
	logger log.Logger,
) *BulletinService {
	return &BulletinService{
		articles: articles,
		keywords: keywords,
		profile:  profile,
		logger:   logger,
	}
}

func (s *BulletinService) GetPage(ctx context.Context, offset, limit int, filter bool) (*entity.Page, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	items, err := s.articles.ListPage(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load articles: %w", err)
	}

	page := &entity.Page{
		Items:      items,
		NextOffset: offset + len(items),
	}
	if !filter || len(items) == 0 {
		return page, nil
	}

	page.Items, page.PriorityCount = partition(items, s.relevanceKeywords(ctx))
	return page, nil
}

func (s *BulletinService) GetSaved(ctx context.Context) ([]*entity.Article, error) {
	saved, err := s.articles.ListSaved(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load saved articles: %w", err)
	}
	return saved, nil
}

func (s *BulletinService) Get(ctx context.Context, id int64) (*entity.Article, error) {
	a, err := s.articles.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load article %d: %w", id, err)
	}
	return a, nil
}

// relevanceKeywords degrades to the specialty set when custom keywords cannot
// be read.
func (s *BulletinService) relevanceKeywords(ctx context.Context) []string {
	custom, err := s.keywords.ListKeywords(ctx)
	if err != nil {
		level.Warn(s.logger).Log("msg", "failed to load keywords", "err", err)
		custom = nil
	}
	return entity.RelevanceKeywords(custom, s.profile.Specialty(ctx))
}

// partition returns matches followed by the rest, each in input order, and
// the number of matches.
func partition(items []*entity.Article, keywords []string) ([]*entity.Article, int) {
	relevant := make([]*entity.Article, 0, len(items))
	var other []*entity.Article
	for _, a := range items {
		if a.MatchesAny(keywords) {
			relevant = append(relevant, a)
		} else {
			other = append(other, a)
		}
	}
	return append(relevant, other...), len(relevant)
}
