package logger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	mu      sync.Mutex
	topic   string
	batches [][]AggregatedLogEntry
}

func (c *capturePublisher) PublishMessage(_ context.Context, topic string, payload interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topic = topic
	c.batches = append(c.batches, payload.([]AggregatedLogEntry))
	return nil
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud"})
	require.Error(t, err)

	l, err := New(&Config{Level: "error", Output: "stderr"})
	require.NoError(t, err)
	l.With(String("component", "test")).Debug("dropped")
}

func TestCollector_AggregatesRepeats(t *testing.T) {
	pub := &capturePublisher{}
	l, err := New(&Config{Level: "error", Output: "stderr"})
	require.NoError(t, err)
	l.AddCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 100, Topic: "logs", Publisher: pub})

	for i := 0; i < 3; i++ {
		l.Error("store failed", String("backend", "sqlite"), Error(errors.New("disk full")))
	}
	l.Warn("slow request", Int("status", 200))
	require.Equal(t, 2, l.collector.Pending())

	l.RemoveCollector()

	pub.mu.Lock()
	defer pub.mu.Unlock()
	require.Equal(t, "logs", pub.topic)
	require.Len(t, pub.batches, 1)
	counts := map[string]int{}
	for _, e := range pub.batches[0] {
		counts[e.Message] = e.Count
		require.Contains(t, e.Caller, "logger_test.go")
	}
	require.Equal(t, map[string]int{"store failed": 3, "slow request": 1}, counts)
}

func TestNop(t *testing.T) {
	Nop().Error("nothing", Float64("decision", 0.5))
}
