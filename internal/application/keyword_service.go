package application

import (
	"context"
	"fmt"
	"strings"

	"medbulletin/internal/domain/entity"
	"medbulletin/internal/domain/repository"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

type KeywordService struct {
	repo   repository.KeywordRepository
	logger log.Logger
}

func NewKeywordService(repo repository.KeywordRepository, logger log.Logger) *KeywordService {
	return &KeywordService{repo: repo, logger: logger}
}

func (s *KeywordService) List(ctx context.Context) ([]*entity.Keyword, error) {
	return s.repo.ListKeywords(ctx)
}

// Add stores a keyword as typed. Matching is case-insensitive, so a keyword
// differing only in case is a duplicate.
func (s *KeywordService) Add(ctx context.Context, text string) (*entity.Keyword, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: keyword is empty", ErrInvalidKeyword)
	}

	kw := &entity.Keyword{Text: text}
	if err := s.repo.CreateKeyword(ctx, kw); err != nil {
		return nil, fmt.Errorf("failed to save keyword %q: %w", text, err)
	}
	level.Debug(s.logger).Log("msg", "keyword added", "keyword", text)
	return kw, nil
}

func (s *KeywordService) Remove(ctx context.Context, id int64) error {
	if err := s.repo.DeleteKeyword(ctx, id); err != nil {
		return fmt.Errorf("failed to remove keyword %d: %w", id, err)
	}
	return nil
}
