package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strconv"
	"time"

	"NewsSignal/internal/domain/models"
	domrepo "NewsSignal/internal/domain/repository"
	mid "NewsSignal/internal/middleware"
	pkgkafka "NewsSignal/pkg/kafka"
	"NewsSignal/pkg/util"
)

// SourceKafka tags headlines that arrived on the ingest topic.
const SourceKafka = "kafka"

// KafkaHeadlinesHandler consumes raw headlines from Kafka and scores them.
type KafkaHeadlinesHandler struct {
	topic   string
	proc    mid.Proc
	metrics domrepo.Metrics
}

func NewKafkaHeadlinesHandler(topic string, proc mid.Proc, metrics domrepo.Metrics) *KafkaHeadlinesHandler {
	return &KafkaHeadlinesHandler{topic: topic, proc: proc, metrics: metrics}
}

func (h *KafkaHeadlinesHandler) Topic() string { return h.topic }

// incoming message schema: {id, headline, symbols, source, datetime}
// datetime is unix seconds or milliseconds.
func (h *KafkaHeadlinesHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		ID       json.RawMessage `json:"id"`
		Headline string          `json:"headline"`
		Symbols  []string        `json:"symbols"`
		Source   string          `json:"source"`
		URL      string          `json:"url"`
		Datetime int64           `json:"datetime"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	id, err := messageID(m.ID)
	if err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if m.Headline == "" {
		h.metrics.RecordError("consumer_empty")
		return fmt.Errorf("message without headline")
	}

	published := time.Now().UTC()
	if m.Datetime > 0 {
		published = util.FromUnix(m.Datetime)
		h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(published).Seconds())
	}

	if id == "" {
		id = strconv.FormatUint(hashHeadline(m.Headline), 16)
	}
	source := m.Source
	if source == "" {
		source = SourceKafka
	}

	return mid.ProcessWaiting(ctx, h.proc, &models.Headline{
		ID:          id,
		Source:      source,
		Text:        m.Headline,
		Symbols:     m.Symbols,
		URL:         m.URL,
		PublishedAt: published,
	}, throttleRetry)
}

// messageID accepts a string or numeric id; a missing or null id is empty.
func messageID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("decode id: %w", err)
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("id must be a string or number: %w", err)
	}
	return n.String(), nil
}

// hashHeadline keys dedupe for producers that send no ID.
func hashHeadline(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

var _ pkgkafka.MessageHandler = (*KafkaHeadlinesHandler)(nil)
