package repository

import "context"

type NotificationRepository interface {
	NotifyNewArticles(ctx context.Context, count int) error
}
