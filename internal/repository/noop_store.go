package repository

import (
	"context"

	"NewsSignal/internal/domain/models"
	domrepo "NewsSignal/internal/domain/repository"
)

// NoopStore is used when no audit store is configured.
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (NoopStore) Init(context.Context) error                                  { return nil }
func (NoopStore) Store(context.Context, *models.PredictionRecord) error        { return nil }
func (NoopStore) StoreBatch(context.Context, []*models.PredictionRecord) error { return nil }
func (NoopStore) Health(context.Context) error                                { return nil }
func (NoopStore) Close() error                                                { return nil }

func (NoopStore) Query(context.Context, domrepo.RecordFilter) ([]*models.PredictionRecord, error) {
	return nil, nil
}

var _ domrepo.PredictionStore = NoopStore{}
