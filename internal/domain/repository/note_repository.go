package repository

import (
	"context"

	"medbulletin/internal/domain/entity"
)

type NoteRepository interface {
	Post(ctx context.Context, note *entity.Note) error
}
