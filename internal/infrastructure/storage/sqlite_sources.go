package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"medbulletin/internal/domain/entity"
	"medbulletin/internal/domain/repository"

	"github.com/Masterminds/squirrel"
)

type sourceRow struct {
	ID       int64  `db:"id"`
	Name     string `db:"name"`
	URL      string `db:"url"`
	IsActive bool   `db:"is_active"`
}

func (s *SQLiteStore) List(ctx context.Context) ([]*entity.FeedSource, error) {
	return s.listSources(ctx, builder.Select("id", "name", "url", "is_active").From("news_sources").OrderBy("id ASC"))
}

func (s *SQLiteStore) ListActive(ctx context.Context) ([]*entity.FeedSource, error) {
	return s.listSources(ctx, builder.Select("id", "name", "url", "is_active").
		From("news_sources").
		Where(squirrel.Eq{"is_active": 1}).
		OrderBy("id ASC"))
}

func (s *SQLiteStore) listSources(ctx context.Context, q squirrel.SelectBuilder) ([]*entity.FeedSource, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	var rows []sourceRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}

	sources := make([]*entity.FeedSource, 0, len(rows))
	for _, r := range rows {
		sources = append(sources, &entity.FeedSource{ID: r.ID, Name: r.Name, URL: r.URL, IsActive: r.IsActive})
	}
	return sources, nil
}

func (s *SQLiteStore) CreateSource(ctx context.Context, source *entity.FeedSource) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO news_sources (name, url, is_active, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(url) DO NOTHING`,
		source.Name, source.URL, boolToInt(source.IsActive), s.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to create source: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return repository.ErrDuplicate
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get source id: %w", err)
	}
	source.ID = id
	return nil
}

func (s *SQLiteStore) DeleteSource(ctx context.Context, id int64) error {
	n, err := s.exec(ctx, builder.Delete("news_sources").Where(squirrel.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("failed to delete source: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) SetSourceActive(ctx context.Context, id int64, active bool) error {
	n, err := s.update(ctx, builder.Update("news_sources").Set("is_active", boolToInt(active)).Where(squirrel.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("failed to update source: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) ListKeywords(ctx context.Context) ([]*entity.Keyword, error) {
	var rows []struct {
		ID      int64  `db:"id"`
		Keyword string `db:"keyword"`
	}
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, keyword FROM news_keywords ORDER BY id ASC`); err != nil {
		return nil, fmt.Errorf("failed to list keywords: %w", err)
	}

	keywords := make([]*entity.Keyword, 0, len(rows))
	for _, r := range rows {
		keywords = append(keywords, &entity.Keyword{ID: r.ID, Text: r.Keyword})
	}
	return keywords, nil
}

func (s *SQLiteStore) CreateKeyword(ctx context.Context, keyword *entity.Keyword) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO news_keywords (keyword) VALUES (?) ON CONFLICT(keyword) DO NOTHING`,
		keyword.Text,
	)
	if err != nil {
		return fmt.Errorf("failed to create keyword: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return repository.ErrDuplicate
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get keyword id: %w", err)
	}
	keyword.ID = id
	return nil
}

func (s *SQLiteStore) DeleteKeyword(ctx context.Context, id int64) error {
	n, err := s.exec(ctx, builder.Delete("news_keywords").Where(squirrel.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("failed to delete keyword: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) GetSetting(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.GetContext(ctx, &value, `SELECT value FROM settings WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteStore) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to save setting %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) exec(ctx context.Context, q squirrel.DeleteBuilder) (int64, error) {
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
