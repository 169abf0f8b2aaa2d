package notify

import (
	"context"
	"errors"

	"medbulletin/internal/domain/entity"
	"medbulletin/internal/domain/repository"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

type logNotifier struct {
	logger log.Logger
}

// NewLogNotifier records new-article counts in the log.
func NewLogNotifier(logger log.Logger) repository.NotificationRepository {
	return &logNotifier{logger: logger}
}

func (n *logNotifier) NotifyNewArticles(_ context.Context, count int) error {
	level.Info(n.logger).Log("msg", "new articles available", "count", count)
	return nil
}

type noteNotifier struct {
	notes      repository.NoteRepository
	visibility entity.NoteVisibility
}

// NewNoteNotifier announces new-article counts through a note poster.
func NewNoteNotifier(notes repository.NoteRepository, visibility entity.NoteVisibility) repository.NotificationRepository {
	if visibility == "" {
		visibility = entity.VisibilityHome
	}
	return &noteNotifier{notes: notes, visibility: visibility}
}

func (n *noteNotifier) NotifyNewArticles(ctx context.Context, count int) error {
	return n.notes.Post(ctx, entity.NewArticlesNote(count, n.visibility))
}

type fanout struct {
	notifiers []repository.NotificationRepository
	logger    log.Logger
}

// NewFanout notifies every target in turn. A failing target does not stop the
// others; their errors are joined.
func NewFanout(logger log.Logger, notifiers ...repository.NotificationRepository) repository.NotificationRepository {
	return &fanout{notifiers: notifiers, logger: logger}
}

func (f *fanout) NotifyNewArticles(ctx context.Context, count int) error {
	var errs []error
	for _, n := range f.notifiers {
		if err := n.NotifyNewArticles(ctx, count); err != nil {
			level.Warn(f.logger).Log("msg", "notifier failed", "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
