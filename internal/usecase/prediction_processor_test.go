package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"NewsSignal/internal/domain/models"
	"NewsSignal/internal/domain/repository/mocks"
)

type fixedLang string

func (f fixedLang) Detect(string) string { return string(f) }

func TestPredictionProcessor_Process(t *testing.T) {
	ctrl := gomock.NewController(t)
	pub := mocks.NewMockPublisher(ctrl)
	store := mocks.NewMockPredictionStore(ctrl)
	metrics := mocks.NewMockMetrics(ctrl)

	pipe := newTestPipeline(t, -0.25)
	published := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	h := &models.Headline{ID: "n-1", Source: "finnhub", Text: "Tech company launches new product", Symbols: []string{"AAPL"}, PublishedAt: published}

	tests := []struct {
		backend string
		expect  func()
	}{
		{BackendKafka, func() {
			pub.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, r *models.PredictionRecord) error {
				require.Equal(t, "n-1", r.HeadlineID)
				require.Equal(t, models.LabelUp, r.Label)
				require.Equal(t, "eng", r.Language)
				require.Equal(t, []string{"AAPL"}, r.Symbols)
				require.Equal(t, published, r.PublishedAt)
				require.NotEmpty(t, r.ID)
				return nil
			})
		}},
		{BackendClickHouse, func() { store.EXPECT().Store(gomock.Any(), gomock.Any()).Return(nil) }},
		{BackendSQLite, func() { store.EXPECT().Store(gomock.Any(), gomock.Any()).Return(nil) }},
		{BackendNone, func() {}},
	}
	for _, tc := range tests {
		t.Run(tc.backend, func(t *testing.T) {
			tc.expect()
			metrics.EXPECT().RecordPrediction("finnhub", models.LabelUp)
			metrics.EXPECT().RecordMessageSent(tc.backend, "finnhub")
			metrics.EXPECT().RecordLatency("process", gomock.Any())

			p := NewPredictionProcessor(pipe, fixedLang("eng"), pub, store, metrics, tc.backend)
			require.NoError(t, p.Process(context.Background(), h))
		})
	}
}

func TestPredictionProcessor_Errors(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockPredictionStore(ctrl)
	metrics := mocks.NewMockMetrics(ctrl)
	metrics.EXPECT().RecordPrediction(gomock.Any(), gomock.Any()).AnyTimes()

	pipe := newTestPipeline(t, -0.25)
	h := &models.Headline{ID: "n-2", Source: "rss", Text: "Stocks crash"}

	p := NewPredictionProcessor(pipe, nil, nil, store, metrics, BackendClickHouse)
	require.Error(t, p.Process(context.Background(), nil))

	store.EXPECT().Store(gomock.Any(), gomock.Any()).Return(errors.New("connection refused"))
	metrics.EXPECT().RecordError("process")
	require.Error(t, p.Process(context.Background(), h))

	unknown := NewPredictionProcessor(pipe, nil, nil, store, metrics, "s3")
	metrics.EXPECT().RecordError("process")
	require.Error(t, unknown.Process(context.Background(), h))
}

func TestPredictionProcessor_ProcessBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockPredictionStore(ctrl)
	metrics := mocks.NewMockMetrics(ctrl)

	pipe := newTestPipeline(t, -0.25)
	batch := []*models.Headline{
		{ID: "1", Source: "rss", Text: "Stocks rally"},
		nil,
		{ID: "2", Source: "rss", Text: "Markets crash and fall"},
	}

	store.EXPECT().StoreBatch(gomock.Any(), gomock.Len(2)).Return(nil)
	metrics.EXPECT().RecordPrediction("rss", models.LabelUp)
	metrics.EXPECT().RecordPrediction("rss", models.LabelDownOrFlat)
	metrics.EXPECT().RecordMessageSent(BackendSQLite, "rss").Times(2)
	metrics.EXPECT().RecordLatency("process_batch", gomock.Any())

	p := NewPredictionProcessor(pipe, nil, nil, store, metrics, BackendSQLite)
	require.NoError(t, p.ProcessBatch(context.Background(), batch))
	require.NoError(t, p.ProcessBatch(context.Background(), nil))
}
