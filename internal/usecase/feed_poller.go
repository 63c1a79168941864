package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/robfig/cron/v3"
	"github.com/samber/lo"

	"NewsSignal/internal/domain/models"
	domrepo "NewsSignal/internal/domain/repository"
	mid "NewsSignal/internal/middleware"
	"NewsSignal/pkg/logger"
)

// SourceRSS tags headlines polled from RSS/Atom feeds.
const SourceRSS = "rss"

// throttleRetry is how often a throttled headline is offered again.
const throttleRetry = 20 * time.Millisecond

// FeedPoller fetches RSS/Atom feeds on a cron schedule and forwards every item title.
type FeedPoller struct {
	feeds   []string
	proc    mid.Proc
	metrics domrepo.Metrics
	log     *logger.Logger
	parser  *gofeed.Parser
	cron    *cron.Cron
	timeout time.Duration
	running sync.Mutex
}

// NewFeedPoller keeps only http(s) feed URLs, deduplicated.
func NewFeedPoller(feeds []string, proc mid.Proc, metrics domrepo.Metrics, log *logger.Logger, timeout time.Duration) *FeedPoller {
	valid := lo.Uniq(lo.Filter(feeds, func(f string, _ int) bool {
		return strings.HasPrefix(f, "http://") || strings.HasPrefix(f, "https://")
	}))
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &FeedPoller{
		feeds:   valid,
		proc:    proc,
		metrics: metrics,
		log:     log,
		parser:  gofeed.NewParser(),
		cron:    cron.New(cron.WithSeconds()),
		timeout: timeout,
	}
}

// Feeds returns the accepted feed URLs.
func (p *FeedPoller) Feeds() []string { return p.feeds }

// Start registers the poll on schedule (six-field cron spec with seconds) and starts the scheduler.
func (p *FeedPoller) Start(ctx context.Context, schedule string) error {
	if _, err := p.cron.AddFunc(schedule, func() { p.PollAll(ctx) }); err != nil {
		return fmt.Errorf("register feed poll: %w", err)
	}
	p.cron.Start()
	p.log.Info("feed poller started", logger.String("schedule", schedule), logger.Int("feeds", len(p.feeds)))
	return nil
}

// Stop stops the scheduler and waits for a running poll to finish.
func (p *FeedPoller) Stop() {
	<-p.cron.Stop().Done()
	p.log.Info("feed poller stopped")
}

// PollAll fetches every feed once. Overlapping runs are skipped.
func (p *FeedPoller) PollAll(ctx context.Context) int {
	if !p.running.TryLock() {
		p.log.Warn("previous feed poll still running, skipping")
		return 0
	}
	defer p.running.Unlock()

	total := 0
	for _, url := range p.feeds {
		if ctx.Err() != nil {
			return total
		}
		n, err := p.Poll(ctx, url)
		if err != nil {
			p.metrics.RecordError("rss_fetch")
			p.log.Warn("fetch feed failed", logger.String("url", url), logger.Error(err))
			continue
		}
		total += n
	}
	return total
}

// Poll fetches one feed and forwards its items; it returns how many were
// accepted. The fetch is bounded by the poller timeout. Items are then fed at
// the pipeline's per-source rate, waiting out throttling rather than dropping.
func (p *FeedPoller) Poll(ctx context.Context, url string) (int, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	feed, err := p.parser.ParseURLWithContext(url, fetchCtx)
	if err != nil {
		return 0, fmt.Errorf("parse feed: %w", err)
	}
	p.metrics.RecordLatency("rss_fetch", time.Since(start).Seconds())

	accepted := 0
	for _, item := range feed.Items {
		h := itemHeadline(item)
		if h == nil {
			continue
		}
		if err := mid.ProcessWaiting(ctx, p.proc, h, throttleRetry); err != nil {
			p.log.Debug("feed item not processed", logger.String("id", h.ID), logger.Error(err))
			continue
		}
		accepted++
	}
	return accepted, nil
}

func itemHeadline(item *gofeed.Item) *models.Headline {
	title := strings.TrimSpace(item.Title)
	if title == "" {
		return nil
	}
	id := item.GUID
	if id == "" {
		id = item.Link
	}
	if id == "" {
		id = strconv.FormatUint(hashHeadline(title), 16)
	}
	published := time.Now().UTC()
	if item.PublishedParsed != nil {
		published = item.PublishedParsed.UTC()
	} else if item.UpdatedParsed != nil {
		published = item.UpdatedParsed.UTC()
	}
	return &models.Headline{
		ID:          SourceRSS + ":" + id,
		Source:      SourceRSS,
		Text:        title,
		URL:         item.Link,
		Category:    strings.Join(item.Categories, ","),
		PublishedAt: published,
	}
}
