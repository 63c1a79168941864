package usecase

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"NewsSignal/internal/domain/models"
	"NewsSignal/internal/domain/repository/mocks"
	mid "NewsSignal/internal/middleware"
	"NewsSignal/pkg/logger"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Markets</title>
  <item>
    <title>Tech company launches new product</title>
    <link>https://example.com/a</link>
    <guid>a-1</guid>
    <pubDate>Wed, 01 May 2024 12:00:00 GMT</pubDate>
  </item>
  <item>
    <title>   </title>
    <link>https://example.com/empty</link>
  </item>
  <item>
    <title>Stocks crash as markets fall</title>
    <link>https://example.com/b</link>
  </item>
</channel>
</rss>`

type collectingProc struct {
	mu  sync.Mutex
	got []*models.Headline
}

func (c *collectingProc) Process(_ context.Context, h *models.Headline) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.got = append(c.got, h)
	return nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	return log
}

func TestFeedPoller_Poll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(testFeed))
	}))
	defer srv.Close()

	ctrl := gomock.NewController(t)
	metrics := mocks.NewMockMetrics(ctrl)
	metrics.EXPECT().RecordLatency("rss_fetch", gomock.Any())

	proc := &collectingProc{}
	p := NewFeedPoller([]string{srv.URL, srv.URL, "ftp://ignored"}, proc, metrics, testLogger(t), time.Second)
	require.Equal(t, []string{srv.URL}, p.Feeds())

	n, err := p.Poll(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	require.Equal(t, "rss:a-1", proc.got[0].ID)
	require.Equal(t, SourceRSS, proc.got[0].Source)
	require.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), proc.got[0].PublishedAt)
	require.Equal(t, "rss:https://example.com/b", proc.got[1].ID)
}

func TestFeedPoller_PollAllRecordsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	ctrl := gomock.NewController(t)
	metrics := mocks.NewMockMetrics(ctrl)
	metrics.EXPECT().RecordError("rss_fetch")

	p := NewFeedPoller([]string{srv.URL}, &collectingProc{}, metrics, testLogger(t), time.Second)
	require.Zero(t, p.PollAll(context.Background()))
}

func TestFeedPoller_StartRejectsBadSchedule(t *testing.T) {
	ctrl := gomock.NewController(t)
	p := NewFeedPoller(nil, &collectingProc{}, mocks.NewMockMetrics(ctrl), testLogger(t), 0)
	require.Error(t, p.Start(context.Background(), "not a schedule"))
}

func burstFeed(n int) string {
	items := ""
	for i := 0; i < n; i++ {
		items += fmt.Sprintf("<item><title>Market update %d</title><guid>u-%d</guid></item>", i, i)
	}
	return `<?xml version="1.0"?><rss version="2.0"><channel><title>Burst</title>` + items + `</channel></rss>`
}

func TestFeedPoller_ThroughRealtimePipeline(t *testing.T) {
	body := burstFeed(5)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	ctrl := gomock.NewController(t)
	metrics := mocks.NewMockMetrics(ctrl)
	metrics.EXPECT().RecordLatency(gomock.Any(), gomock.Any()).AnyTimes()
	metrics.EXPECT().RecordError(gomock.Any()).AnyTimes()

	proc := &collectingProc{}
	pipe := mid.NewRealtimePipeline(proc, metrics, mid.WithMaxRPS(20))
	p := NewFeedPoller([]string{srv.URL}, pipe, metrics, testLogger(t), time.Second)
	ctx := context.Background()

	require.Equal(t, 5, p.PollAll(ctx))
	time.Sleep(200 * time.Millisecond)
	require.Zero(t, p.PollAll(ctx))

	proc.mu.Lock()
	defer proc.mu.Unlock()
	require.Len(t, proc.got, 5)
	for i, h := range proc.got {
		require.Equal(t, fmt.Sprintf("rss:u-%d", i), h.ID)
	}
}
