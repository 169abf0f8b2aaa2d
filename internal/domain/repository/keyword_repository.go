package repository

import (
	"context"

	"medbulletin/internal/domain/entity"
)

type KeywordRepository interface {
	ListKeywords(ctx context.Context) ([]*entity.Keyword, error)
	CreateKeyword(ctx context.Context, keyword *entity.Keyword) error
	DeleteKeyword(ctx context.Context, id int64) error
}
