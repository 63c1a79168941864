package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"NewsSignal/internal/domain/models"
	drepo "NewsSignal/internal/domain/repository"
	dsvc "NewsSignal/internal/domain/service"
)

// Audit backends a PredictionProcessor can route records to.
const (
	BackendKafka      = "kafka"
	BackendClickHouse = "clickhouse"
	BackendSQLite     = "sqlite"
	BackendNone       = "none"
)

// PredictionProcessor scores streamed headlines and routes the resulting
// records to the configured audit backend.
type PredictionProcessor struct {
	predictor dsvc.Predictor
	lang      dsvc.LanguageDetector
	pub       drepo.Publisher
	store     drepo.PredictionStore
	metrics   drepo.Metrics
	backend   string
	now       func() time.Time
}

// NewPredictionProcessor creates a new PredictionProcessor instance.
func NewPredictionProcessor(
	predictor dsvc.Predictor,
	lang dsvc.LanguageDetector,
	pub drepo.Publisher,
	store drepo.PredictionStore,
	metrics drepo.Metrics,
	backend string,
) *PredictionProcessor {
	return &PredictionProcessor{
		predictor: predictor,
		lang:      lang,
		pub:       pub,
		store:     store,
		metrics:   metrics,
		backend:   backend,
		now:       time.Now,
	}
}

// Score builds the audit record for a headline without routing it.
func (p *PredictionProcessor) Score(h *models.Headline) *models.PredictionRecord {
	res := p.predictor.Analyze(h.Text)
	language := ""
	if p.lang != nil {
		language = p.lang.Detect(h.Text)
	}
	return &models.PredictionRecord{
		ID:          uuid.NewString(),
		HeadlineID:  h.ID,
		Source:      h.Source,
		Headline:    h.Text,
		Symbols:     h.Symbols,
		Label:       res.Label,
		Decision:    res.Decision,
		Probability: res.Probability,
		Language:    language,
		PublishedAt: h.PublishedAt,
		PredictedAt: p.now().UTC(),
	}
}

// Process scores a single headline and routes the record to the configured backend.
func (p *PredictionProcessor) Process(ctx context.Context, h *models.Headline) error {
	if h == nil {
		return fmt.Errorf("headline is nil")
	}

	start := time.Now()
	rec := p.Score(h)
	p.metrics.RecordPrediction(rec.Source, rec.Label)

	var err error
	switch p.backend {
	case BackendKafka:
		err = p.pub.Publish(ctx, rec)
	case BackendClickHouse, BackendSQLite:
		err = p.store.Store(ctx, rec)
	case BackendNone, "":
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process")
		return fmt.Errorf("process headline %s: %w", h.ID, err)
	}

	p.metrics.RecordMessageSent(p.backendName(), rec.Source)
	p.metrics.RecordLatency("process", time.Since(start).Seconds())
	return nil
}

// ProcessBatch scores multiple headlines and routes them in one write.
func (p *PredictionProcessor) ProcessBatch(ctx context.Context, headlines []*models.Headline) error {
	if len(headlines) == 0 {
		return nil
	}

	start := time.Now()
	records := make([]*models.PredictionRecord, 0, len(headlines))
	for _, h := range headlines {
		if h == nil {
			continue
		}
		rec := p.Score(h)
		p.metrics.RecordPrediction(rec.Source, rec.Label)
		records = append(records, rec)
	}

	var err error
	switch p.backend {
	case BackendKafka:
		err = p.pub.PublishBatch(ctx, records)
	case BackendClickHouse, BackendSQLite:
		err = p.store.StoreBatch(ctx, records)
	case BackendNone, "":
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process_batch")
		return fmt.Errorf("process batch: %w", err)
	}

	for _, r := range records {
		p.metrics.RecordMessageSent(p.backendName(), r.Source)
	}
	p.metrics.RecordLatency("process_batch", time.Since(start).Seconds())
	return nil
}

func (p *PredictionProcessor) backendName() string {
	if p.backend == "" {
		return BackendNone
	}
	return p.backend
}

// Close closes underlying resources if available.
func (p *PredictionProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.store != nil {
		_ = p.store.Close()
	}
}
