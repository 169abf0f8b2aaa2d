package repository

import (
	"context"

	"medbulletin/internal/domain/entity"
)

type SourceRepository interface {
	// List and ListActive return sources in registration order.
	List(ctx context.Context) ([]*entity.FeedSource, error)
	ListActive(ctx context.Context) ([]*entity.FeedSource, error)
	CreateSource(ctx context.Context, source *entity.FeedSource) error
	DeleteSource(ctx context.Context, id int64) error
	SetSourceActive(ctx context.Context, id int64, active bool) error
}
