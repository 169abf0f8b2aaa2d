package mastodon

import (
	"context"
	"fmt"

	"medbulletin/internal/domain/entity"
	"medbulletin/internal/domain/repository"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/mattn/go-mastodon"
)

type Config struct {
	Server       string
	ClientID     string
	ClientSecret string
	AccessToken  string
}

type noteRepository struct {
	client *mastodon.Client
	logger log.Logger
}

// NewNoteRepository posts notes as Mastodon statuses.
func NewNoteRepository(cfg Config, logger log.Logger) repository.NoteRepository {
	return &noteRepository{
		client: mastodon.NewClient(&mastodon.Config{
			Server:       cfg.Server,
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			AccessToken:  cfg.AccessToken,
		}),
		logger: logger,
	}
}

func (r *noteRepository) Post(ctx context.Context, note *entity.Note) error {
	status, err := r.client.PostStatus(ctx, &mastodon.Toot{
		Status:     note.Text,
		Visibility: visibility(note.Visibility),
	})
	if err != nil {
		return fmt.Errorf("failed to post status: %w", err)
	}

	level.Debug(r.logger).Log("msg", "toot sent", "id", status.ID, "url", status.URL)
	return nil
}

// visibility maps Misskey note visibility onto the Mastodon equivalent.
func visibility(v entity.NoteVisibility) string {
	switch v {
	case entity.VisibilityPublic:
		return "public"
	case entity.VisibilityFollowers:
		return "private"
	case entity.VisibilitySpecified:
		return "direct"
	default:
		return "unlisted"
	}
}
