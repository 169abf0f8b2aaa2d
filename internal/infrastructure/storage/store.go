package storage

import (
	"fmt"

	"medbulletin/internal/domain/repository"

	"github.com/go-kit/log"
)

// Store is everything the bulletin persists.
type Store interface {
	repository.ArticleRepository
	repository.SourceRepository
	repository.KeywordRepository
	repository.SettingsRepository
	Close() error
}

// Open returns a Store of the given kind: "sqlite" (at dbPath) or "memory".
func Open(kind, dbPath string, logger log.Logger) (Store, error) {
	switch kind {
	case "sqlite":
		s, err := NewSQLiteStore(dbPath, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage kind %q", kind)
	}
}
