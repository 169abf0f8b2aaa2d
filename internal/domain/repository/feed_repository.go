package repository

import (
	"context"

	"medbulletin/internal/domain/entity"
)

type FeedRepository interface {
	Fetch(ctx context.Context, url string) (*entity.Feed, error)
}
