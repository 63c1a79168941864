package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"NewsSignal/internal/domain/models"
	domrepo "NewsSignal/internal/domain/repository"
)

// SQLiteStore persists prediction records to an embedded SQLite database.
type SQLiteStore struct {
	db    *sql.DB
	table string
	mu    sync.Mutex
}

// NewSQLiteStore opens (or creates) the database at path. ":memory:" keeps it in process.
func NewSQLiteStore(path, table string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if path == ":memory:" {
		// each pooled connection would get its own empty database
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	return &SQLiteStore{db: db, table: table}, nil
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id           TEXT PRIMARY KEY,
			headline_id  TEXT NOT NULL,
			source       TEXT NOT NULL,
			headline     TEXT NOT NULL,
			symbols      TEXT NOT NULL DEFAULT '[]',
			label        TEXT NOT NULL,
			decision     REAL,
			probability  REAL,
			language     TEXT,
			published_at INTEGER NOT NULL,
			predicted_at INTEGER NOT NULL
		)`, s.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_predicted_at ON %s(predicted_at)`, s.table, s.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_source ON %s(source)`, s.table, s.table),
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) Store(ctx context.Context, r *models.PredictionRecord) error {
	return s.StoreBatch(ctx, []*models.PredictionRecord{r})
}

func (s *SQLiteStore) StoreBatch(ctx context.Context, records []*models.PredictionRecord) error {
	if len(records) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT OR REPLACE INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", s.table, predictionColumns))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if r == nil || r.ID == "" {
			continue
		}
		symbols, err := json.Marshal(r.Symbols)
		if err != nil {
			return fmt.Errorf("encode symbols: %w", err)
		}
		if r.Symbols == nil {
			symbols = []byte("[]")
		}
		if _, err := stmt.ExecContext(ctx,
			r.ID, r.HeadlineID, r.Source, r.Headline, string(symbols),
			r.Label.String(), r.Decision, r.Probability, r.Language,
			r.PublishedAt.UnixMilli(), r.PredictedAt.UnixMilli(),
		); err != nil {
			return fmt.Errorf("insert prediction: %w", err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Query(ctx context.Context, f domrepo.RecordFilter) ([]*models.PredictionRecord, error) {
	where, args := whereClause(f, func(t time.Time) any { return t.UnixMilli() })
	q := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY predicted_at DESC, id LIMIT ?", predictionColumns, s.table, where)
	args = append(args, queryLimit(f))

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()

	var out []*models.PredictionRecord
	for rows.Next() {
		var (
			r                    models.PredictionRecord
			symbols, label       string
			language             sql.NullString
			published, predicted int64
		)
		if err := rows.Scan(&r.ID, &r.HeadlineID, &r.Source, &r.Headline, &symbols,
			&label, &r.Decision, &r.Probability, &language, &published, &predicted); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		if err := json.Unmarshal([]byte(symbols), &r.Symbols); err != nil {
			return nil, fmt.Errorf("decode symbols: %w", err)
		}
		if r.Label, err = models.ParseLabel(label); err != nil {
			return nil, err
		}
		r.Language = language.String
		r.PublishedAt = time.UnixMilli(published).UTC()
		r.PredictedAt = time.UnixMilli(predicted).UTC()
		out = append(out, &r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ domrepo.PredictionStore = (*SQLiteStore)(nil)
