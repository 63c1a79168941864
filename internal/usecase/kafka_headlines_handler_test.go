package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"NewsSignal/internal/domain/models"
	"NewsSignal/internal/domain/repository/mocks"
)

type lastProc struct{ got *models.Headline }

func (p *lastProc) Process(_ context.Context, h *models.Headline) error {
	p.got = h
	return nil
}

func TestKafkaHeadlinesHandler_Handle(t *testing.T) {
	ctrl := gomock.NewController(t)
	metrics := mocks.NewMockMetrics(ctrl)
	metrics.EXPECT().RecordLatency("ingest_e2e_seconds", gomock.Any()).Times(3)

	proc := &lastProc{}
	h := NewKafkaHeadlinesHandler("newssignal.headlines", proc, metrics)
	require.Equal(t, "newssignal.headlines", h.Topic())
	ctx := context.Background()

	published := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	msg := `{"id": 42, "headline": "Chipmaker raises guidance", "symbols": ["NVDA"], "source": "wire", "datetime": 1714564800}`
	require.NoError(t, h.Handle(ctx, []byte(msg)))
	require.Equal(t, "42", proc.got.ID)
	require.Equal(t, "wire", proc.got.Source)
	require.Equal(t, []string{"NVDA"}, proc.got.Symbols)
	require.True(t, proc.got.PublishedAt.Equal(published))

	msg = `{"headline": "Chipmaker raises guidance", "datetime": 1714564800000}`
	require.NoError(t, h.Handle(ctx, []byte(msg)))
	require.Equal(t, SourceKafka, proc.got.Source)
	require.NotEmpty(t, proc.got.ID)
	require.True(t, proc.got.PublishedAt.Equal(published))

	msg = `{"id": "2f1c-uuid", "headline": "Stocks rally", "datetime": 1714564800}`
	require.NoError(t, h.Handle(ctx, []byte(msg)))
	require.Equal(t, "2f1c-uuid", proc.got.ID)
}

func TestKafkaHeadlinesHandler_Rejects(t *testing.T) {
	ctrl := gomock.NewController(t)
	metrics := mocks.NewMockMetrics(ctrl)
	metrics.EXPECT().RecordError("consumer_unmarshal").Times(2)
	metrics.EXPECT().RecordError("consumer_empty")

	h := NewKafkaHeadlinesHandler("t", &lastProc{}, metrics)
	require.Error(t, h.Handle(context.Background(), []byte("{")))
	require.Error(t, h.Handle(context.Background(), []byte(`{"id": "1"}`)))
	require.Error(t, h.Handle(context.Background(), []byte(`{"id": {"k": 1}, "headline": "x"}`)))
}
