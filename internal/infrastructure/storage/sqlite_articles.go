package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"medbulletin/internal/domain/entity"
	"medbulletin/internal/domain/repository"

	"github.com/Masterminds/squirrel"
	"github.com/go-kit/log/level"
)

// rows per INSERT statement; keeps bound parameters well under SQLite's limit
const insertChunkSize = 200

var articleColumns = []string{
	"id", "title", "summary", "link", "published_at",
	"source_name", "image_url", "is_read", "is_saved",
}

type articleRow struct {
	ID          int64  `db:"id"`
	Title       string `db:"title"`
	Summary     string `db:"summary"`
	Link        string `db:"link"`
	PublishedAt int64  `db:"published_at"`
	SourceName  string `db:"source_name"`
	ImageURL    string `db:"image_url"`
	IsRead      bool   `db:"is_read"`
	IsSaved     bool   `db:"is_saved"`
}

func (r articleRow) toEntity() *entity.Article {
	return &entity.Article{
		ID:          r.ID,
		Title:       r.Title,
		Summary:     r.Summary,
		Link:        r.Link,
		PublishedAt: time.Unix(r.PublishedAt, 0),
		SourceName:  r.SourceName,
		ImageURL:    r.ImageURL,
		IsRead:      r.IsRead,
		IsSaved:     r.IsSaved,
	}
}

func toArticles(rows []articleRow) []*entity.Article {
	articles := make([]*entity.Article, 0, len(rows))
	for _, r := range rows {
		articles = append(articles, r.toEntity())
	}
	return articles
}

func (s *SQLiteStore) KnownLinks(ctx context.Context) ([]string, error) {
	var links []string
	err := s.db.SelectContext(ctx, &links, `SELECT link FROM articles UNION SELECT link FROM seen_links`)
	if err != nil {
		return nil, fmt.Errorf("failed to load known links: %w", err)
	}
	return links, nil
}

func (s *SQLiteStore) InsertBatch(ctx context.Context, articles []*entity.Article) (int, error) {
	if len(articles) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := s.now().Unix()
	inserted := 0

	for start := 0; start < len(articles); start += insertChunkSize {
		end := min(start+insertChunkSize, len(articles))
		chunk := articles[start:end]

		ins := builder.Insert("articles").
			Columns("title", "summary", "link", "published_at", "source_name", "image_url", "is_read", "is_saved", "created_at").
			Suffix("ON CONFLICT(link) DO NOTHING")
		seen := builder.Insert("seen_links").
			Columns("link", "first_seen_at").
			Suffix("ON CONFLICT(link) DO NOTHING")

		for _, a := range chunk {
			ins = ins.Values(a.Title, a.Summary, a.Link, a.PublishedAt.Unix(), a.SourceName, a.ImageURL, boolToInt(a.IsRead), boolToInt(a.IsSaved), now)
			seen = seen.Values(a.Link, now)
		}

		query, args, err := ins.ToSql()
		if err != nil {
			return 0, fmt.Errorf("failed to build insert: %w", err)
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, fmt.Errorf("failed to insert articles: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to get rows affected: %w", err)
		}
		inserted += int(n)

		query, args, err = seen.ToSql()
		if err != nil {
			return 0, fmt.Errorf("failed to build seen links insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("failed to record seen links: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit articles: %w", err)
	}

	return inserted, nil
}

func (s *SQLiteStore) DeleteUnsavedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query, args, err := builder.Delete("articles").
		Where(squirrel.Eq{"is_saved": 0}).
		Where(squirrel.Lt{"published_at": cutoff.Unix()}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale articles: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if deleted > 0 {
		level.Debug(s.logger).Log("msg", "deleted stale articles", "count", deleted, "cutoff", cutoff.Format(time.RFC3339))
	}
	return deleted, nil
}

func (s *SQLiteStore) ListPage(ctx context.Context, offset, limit int) ([]*entity.Article, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		return nil, nil
	}

	q := builder.Select(articleColumns...).
		From("articles").
		OrderBy("id DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	return s.selectArticles(ctx, q)
}

func (s *SQLiteStore) ListSaved(ctx context.Context) ([]*entity.Article, error) {
	q := builder.Select(articleColumns...).
		From("articles").
		Where(squirrel.Eq{"is_saved": 1}).
		OrderBy("id DESC")

	return s.selectArticles(ctx, q)
}

func (s *SQLiteStore) selectArticles(ctx context.Context, q squirrel.SelectBuilder) ([]*entity.Article, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	var rows []articleRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	return toArticles(rows), nil
}

func (s *SQLiteStore) Get(ctx context.Context, id int64) (*entity.Article, error) {
	query, args, err := builder.Select(articleColumns...).
		From("articles").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	var row articleRow
	err = s.db.GetContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	return row.toEntity(), nil
}

func (s *SQLiteStore) ToggleSaved(ctx context.Context, id int64) (bool, error) {
	query, args, err := builder.Update("articles").
		Set("is_saved", squirrel.Expr("1 - is_saved")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING is_saved").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build update: %w", err)
	}

	var saved bool
	err = s.db.QueryRowxContext(ctx, query, args...).Scan(&saved)
	if errors.Is(err, sql.ErrNoRows) {
		return false, repository.ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("failed to toggle saved: %w", err)
	}
	return saved, nil
}

func (s *SQLiteStore) MarkRead(ctx context.Context, id int64) error {
	n, err := s.update(ctx, builder.Update("articles").Set("is_read", 1).Where(squirrel.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("failed to mark read: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) MarkAllRead(ctx context.Context) (int64, error) {
	n, err := s.update(ctx, builder.Update("articles").Set("is_read", 1).Where(squirrel.Eq{"is_read": 0}))
	if err != nil {
		return 0, fmt.Errorf("failed to mark all read: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) update(ctx context.Context, q squirrel.UpdateBuilder) (int64, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) Stats(ctx context.Context) (entity.ArticleStats, error) {
	var row struct {
		Total  int `db:"total"`
		Unread int `db:"unread"`
		Saved  int `db:"saved"`
	}
	err := s.db.GetContext(ctx, &row, `SELECT
		COUNT(*) AS total,
		COALESCE(SUM(CASE WHEN is_read = 0 THEN 1 ELSE 0 END), 0) AS unread,
		COALESCE(SUM(is_saved), 0) AS saved
		FROM articles`)
	if err != nil {
		return entity.ArticleStats{}, fmt.Errorf("failed to count articles: %w", err)
	}
	return entity.ArticleStats{Total: row.Total, Unread: row.Unread, Saved: row.Saved}, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
