package repository

//go:generate mockgen -source=interfaces.go -destination=mocks/interfaces_mock.go -package=mocks

import (
	"context"
	"time"

	"NewsSignal/internal/domain/models"
)

// HeadlineStream is a live source of news headlines.
type HeadlineStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Headline, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

type Publisher interface {
	Publish(ctx context.Context, r *models.PredictionRecord) error
	PublishBatch(ctx context.Context, records []*models.PredictionRecord) error
	Close() error
}

// RecordFilter narrows a Query. Zero values match everything.
type RecordFilter struct {
	Source string
	Label  *models.Label
	From   time.Time
	To     time.Time
	Limit  int
}

type PredictionStore interface {
	Init(ctx context.Context) error // ensure tables
	Store(ctx context.Context, r *models.PredictionRecord) error
	StoreBatch(ctx context.Context, records []*models.PredictionRecord) error
	Query(ctx context.Context, f RecordFilter) ([]*models.PredictionRecord, error)
	Health(ctx context.Context) error
	Close() error
}

type Metrics interface {
	RecordPrediction(source string, label models.Label)
	RecordMessageSent(backend, source string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
