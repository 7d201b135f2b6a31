package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/fintrack/internal/client/migrations"
	"github.com/dmitrijs2005/fintrack/internal/dbx"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps credentials in the credentials table of an SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// RunMigrations applies the embedded goose migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate credentials db: %w", err)
	}
	return nil
}

// OpenSQLite opens (creating if needed) the database at dsn and migrates it.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open credentials db: %w", err)
	}
	// one writer; also keeps ":memory:" databases on a single connection
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewSQLiteStore(db), nil
}

// NewSQLiteStore wraps an already migrated database.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Get(ctx context.Context, kind Kind) (string, error) {
	if err := kind.validate(); err != nil {
		return "", err
	}
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM credentials WHERE kind = ?`, string(kind)).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get credential[%s]: %w", kind, err)
	}
	return value, nil
}

func (s *SQLiteStore) Set(ctx context.Context, kind Kind, value string) error {
	if err := kind.validate(); err != nil {
		return err
	}
	if value == "" {
		return s.Clear(ctx, kind)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credentials (kind, value, updated_at) VALUES (?, ?, unixepoch())
		ON CONFLICT(kind) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, string(kind), value)
	if err != nil {
		return fmt.Errorf("failed to set credential[%s]: %w", kind, err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context, kind Kind) error {
	if err := kind.validate(); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM credentials WHERE kind = ?`, string(kind)); err != nil {
		return fmt.Errorf("failed to clear credential[%s]: %w", kind, err)
	}
	return nil
}

// ClearAll removes both kinds in one transaction so a crash can never leave
// an access string without its refresh partner or vice versa.
func (s *SQLiteStore) ClearAll(ctx context.Context) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, kind := range Kinds {
			if _, err := tx.ExecContext(ctx, `DELETE FROM credentials WHERE kind = ?`, string(kind)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
