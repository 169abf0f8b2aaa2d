package storage

import (
	"context"
	"embed"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// sqlite placeholders are "?"; sqlx does not know the modernc driver name.
func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

var builder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

// SQLiteStore persists sources, articles, keywords and settings in a single
// SQLite database.
type SQLiteStore struct {
	db     *sqlx.DB
	logger log.Logger
	now    func() time.Time
}

func NewSQLiteStore(dbPath string, logger log.Logger) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to sqlite database: %w", err)
	}

	store := &SQLiteStore{db: db, logger: logger, now: time.Now}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) migrate() error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{logger: s.logger})

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.Up(s.db.DB, "migrations"); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type gooseLogger struct {
	logger log.Logger
}

func (g gooseLogger) Fatal(v ...interface{}) {
	level.Error(g.logger).Log("msg", fmt.Sprint(v...), "component", "migrations")
}

func (g gooseLogger) Fatalf(format string, v ...interface{}) {
	level.Error(g.logger).Log("msg", fmt.Sprintf(format, v...), "component", "migrations")
}

func (g gooseLogger) Print(v ...interface{}) {
	level.Debug(g.logger).Log("msg", fmt.Sprint(v...), "component", "migrations")
}

func (g gooseLogger) Println(v ...interface{}) {
	level.Debug(g.logger).Log("msg", fmt.Sprint(v...), "component", "migrations")
}

func (g gooseLogger) Printf(format string, v ...interface{}) {
	level.Debug(g.logger).Log("msg", fmt.Sprintf(format, v...), "component", "migrations")
}
