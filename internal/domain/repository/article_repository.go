package repository

import (
	"context"
	"time"

	"medbulletin/internal/domain/entity"
)

type ArticleRepository interface {
	// KnownLinks returns every link ever ingested, including links whose
	// article row has since been evicted.
	KnownLinks(ctx context.Context) ([]string, error)
	// InsertBatch stores the articles in one write and returns how many were
	// new. Links already present are skipped, never duplicated.
	InsertBatch(ctx context.Context, articles []*entity.Article) (int, error)
	DeleteUnsavedBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// ListPage returns articles ordered by id descending.
	ListPage(ctx context.Context, offset, limit int) ([]*entity.Article, error)
	ListSaved(ctx context.Context) ([]*entity.Article, error)
	Get(ctx context.Context, id int64) (*entity.Article, error)

	ToggleSaved(ctx context.Context, id int64) (bool, error)
	MarkRead(ctx context.Context, id int64) error
	MarkAllRead(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (entity.ArticleStats, error)
}
