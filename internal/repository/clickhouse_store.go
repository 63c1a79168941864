package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"NewsSignal/internal/domain/models"
	domrepo "NewsSignal/internal/domain/repository"
	pkgch "NewsSignal/pkg/clickhouse"
	applogger "NewsSignal/pkg/logger"
)

// ClickHouseSchema returns the DDL for the predictions table.
func ClickHouseSchema(table string) []string {
	return []string{fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            id           String,
            headline_id  String,
            source       LowCardinality(String),
            headline     String,
            symbols      Array(String),
            label        LowCardinality(String),
            decision     Float64,
            probability  Float64,
            language     LowCardinality(String),
            published_at DateTime64(3, 'UTC'),
            predicted_at DateTime64(3, 'UTC')
        ) ENGINE = MergeTree
        PARTITION BY toYYYYMM(predicted_at)
        ORDER BY (source, predicted_at, id)`, table)}
}

const predictionColumns = "id, headline_id, source, headline, symbols, label, decision, probability, language, published_at, predicted_at"

// ClickHouseStore implements PredictionStore for ClickHouse.
type ClickHouseStore struct {
	ch    *pkgch.Client
	db    *sql.DB
	table string
	l     *applogger.Logger
}

// NewClickHouseStore creates ClickHouse storage.
func NewClickHouseStore(ch *pkgch.Client, table string, l *applogger.Logger) *ClickHouseStore {
	return &ClickHouseStore{ch: ch, db: ch.DB(), table: table, l: l}
}

func (s *ClickHouseStore) Init(ctx context.Context) error {
	return s.ch.InitSchema(ctx, ClickHouseSchema(s.table))
}

func (s *ClickHouseStore) Store(ctx context.Context, r *models.PredictionRecord) error {
	return s.StoreBatch(ctx, []*models.PredictionRecord{r})
}

func (s *ClickHouseStore) StoreBatch(ctx context.Context, records []*models.PredictionRecord) error {
	if len(records) == 0 {
		return nil
	}
	// Multi-row VALUES to reduce round-trips.
	const chunkSize = 2000
	for start := 0; start < len(records); start += chunkSize {
		end := start + chunkSize
		if end > len(records) {
			end = len(records)
		}

		values := make([]string, 0, end-start)
		args := make([]any, 0, (end-start)*11)
		for _, r := range records[start:end] {
			if r == nil || r.ID == "" {
				continue
			}
			symbols := r.Symbols
			if symbols == nil {
				symbols = []string{}
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				r.ID,
				r.HeadlineID,
				r.Source,
				r.Headline,
				symbols,
				r.Label.String(),
				r.Decision,
				r.Probability,
				r.Language,
				r.PublishedAt.UTC(),
				r.PredictedAt.UTC(),
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", s.table, predictionColumns, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse insert predictions failed",
					applogger.String("table", s.table),
					applogger.Int("rows", len(values)),
					applogger.Error(err),
				)
			}
			return fmt.Errorf("insert predictions: %w", err)
		}
	}
	return nil
}

func (s *ClickHouseStore) Query(ctx context.Context, f domrepo.RecordFilter) ([]*models.PredictionRecord, error) {
	where, args := whereClause(f, func(t time.Time) any { return t.UTC() })
	q := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY predicted_at DESC LIMIT ?", predictionColumns, s.table, where)
	args = append(args, queryLimit(f))

	start := time.Now()
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse query predictions error",
				applogger.String("table", s.table),
				applogger.String("source", f.Source),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()

	var out []*models.PredictionRecord
	for rows.Next() {
		var r models.PredictionRecord
		var label string
		if err := rows.Scan(&r.ID, &r.HeadlineID, &r.Source, &r.Headline, &r.Symbols,
			&label, &r.Decision, &r.Probability, &r.Language, &r.PublishedAt, &r.PredictedAt); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		if r.Label, err = models.ParseLabel(label); err != nil {
			return nil, err
		}
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Debug("clickhouse query predictions ok",
			applogger.String("table", s.table),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *ClickHouseStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseStore) Close() error {
	return nil // Managed by pkg
}

var _ domrepo.PredictionStore = (*ClickHouseStore)(nil)
