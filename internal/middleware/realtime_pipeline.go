package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"NewsSignal/internal/domain/models"
	domrepo "NewsSignal/internal/domain/repository"
)

var (
	// ErrDuplicate is returned when a headline ID was already accepted within the dedupe window.
	ErrDuplicate = errors.New("duplicate headline")
	// ErrThrottled is returned when the headline's source is over its rate.
	ErrThrottled = errors.New("source throttled")
)

// Proc is the minimal processor interface the pipeline needs.
type Proc interface {
	Process(ctx context.Context, h *models.Headline) error
}

// RealtimePipeline sits between the headline sources and the prediction processor.
// It validates, dedupes, throttles per source and buffers when downstream fails.
type RealtimePipeline struct {
	proc     Proc
	metrics  domrepo.Metrics
	maxRPS   int
	bufSize  int
	dedupTTL time.Duration
	bufCh    chan *models.Headline
	stopCh   chan struct{}
	started  bool

	mu       sync.Mutex
	lastSeen map[string]time.Time // per-source last accepted time
	seen     map[string]time.Time // headline ID -> accepted at

	transform func(*models.Headline) *models.Headline
}

type PipelineOption func(*RealtimePipeline)

// WithMaxRPS sets the max headlines per second per source.
func WithMaxRPS(n int) PipelineOption {
	return func(p *RealtimePipeline) {
		if n > 0 {
			p.maxRPS = n
		}
	}
}

// WithBufferSize sets the retry buffer size used when downstream is unavailable.
func WithBufferSize(n int) PipelineOption {
	return func(p *RealtimePipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// WithDedupWindow sets how long an accepted headline ID is remembered.
func WithDedupWindow(d time.Duration) PipelineOption {
	return func(p *RealtimePipeline) {
		if d > 0 {
			p.dedupTTL = d
		}
	}
}

// WithTransform sets a hook applied to each headline before it is forwarded.
func WithTransform(fn func(*models.Headline) *models.Headline) PipelineOption {
	return func(p *RealtimePipeline) { p.transform = fn }
}

// NewRealtimePipeline creates a new pipeline.
func NewRealtimePipeline(proc Proc, metrics domrepo.Metrics, opts ...PipelineOption) *RealtimePipeline {
	p := &RealtimePipeline{
		proc:     proc,
		metrics:  metrics,
		maxRPS:   20,
		bufSize:  1000,
		dedupTTL: 24 * time.Hour,
		stopCh:   make(chan struct{}),
		lastSeen: make(map[string]time.Time),
		seen:     make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.bufCh = make(chan *models.Headline, p.bufSize)
	return p
}

// Start launches background flushing of buffered headlines.
func (p *RealtimePipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-p.stopCh:
				return
			case <-ctx.Done():
				return
			case h := <-p.bufCh:
				if h == nil {
					continue
				}
				if err := p.proc.Process(ctx, h); err != nil {
					if backoff < 2*time.Second {
						backoff *= 2
					}
					p.metrics.RecordError("pipeline_flush")
					select {
					case <-time.After(backoff):
					case <-p.stopCh:
						return
					}
					// requeue if space; drop otherwise
					select {
					case p.bufCh <- h:
					default:
						p.metrics.RecordError("pipeline_buffer_drop")
					}
				} else {
					backoff = 50 * time.Millisecond
				}
			}
		}
	}()
}

// Stop stops the background flushing.
func (p *RealtimePipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
}

// Buffered returns the number of headlines waiting for retry.
func (p *RealtimePipeline) Buffered() int { return len(p.bufCh) }

// Process validates, dedupes, throttles and forwards a headline, buffering on
// downstream errors. A headline counts as seen once it is forwarded or
// buffered; throttled headlines return ErrThrottled and may be offered again.
func (p *RealtimePipeline) Process(ctx context.Context, h *models.Headline) error {
	start := time.Now()
	if err := validateHeadline(h); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}
	if p.transform != nil {
		h = p.transform(h)
		if err := validateHeadline(h); err != nil {
			p.metrics.RecordError("pipeline_transform_invalid")
			return err
		}
	}
	if err := p.admit(h, start); err != nil {
		if errors.Is(err, ErrDuplicate) {
			p.metrics.RecordError("pipeline_duplicate")
		} else {
			p.metrics.RecordError("pipeline_throttle")
		}
		return err
	}

	if err := p.proc.Process(ctx, h); err != nil {
		p.metrics.RecordError("pipeline_process")
		select {
		case p.bufCh <- h:
			p.metrics.RecordLatency("pipeline_buffer_depth", float64(len(p.bufCh)))
		default:
			p.metrics.RecordError("pipeline_buffer_full")
			p.forget(h.ID)
		}
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	p.metrics.RecordLatency("pipeline_process", time.Since(start).Seconds())
	return nil
}

func validateHeadline(h *models.Headline) error {
	if h == nil {
		return fmt.Errorf("headline nil")
	}
	if h.ID == "" {
		return fmt.Errorf("headline id empty")
	}
	if h.Source == "" {
		return fmt.Errorf("source empty")
	}
	if strings.TrimSpace(h.Text) == "" {
		return fmt.Errorf("headline text empty")
	}
	return nil
}

// admit checks the dedupe window and the source rate under one lock and only
// then records the headline as seen.
func (p *RealtimePipeline) admit(h *models.Headline, now time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if at, ok := p.seen[h.ID]; ok && now.Sub(at) < p.dedupTTL {
		return fmt.Errorf("%w: %s", ErrDuplicate, h.ID)
	}
	if wait := p.throttleWait(h.Source, now); wait > 0 {
		return fmt.Errorf("%w: %s for %s", ErrThrottled, h.Source, wait)
	}
	if p.maxRPS > 0 {
		p.lastSeen[h.Source] = now
	}
	p.seen[h.ID] = now
	if len(p.seen) > 4*p.bufSize {
		for k, at := range p.seen {
			if now.Sub(at) >= p.dedupTTL {
				delete(p.seen, k)
			}
		}
	}
	return nil
}

// throttleWait returns how long source must wait for its next slot. Callers hold p.mu.
func (p *RealtimePipeline) throttleWait(source string, now time.Time) time.Duration {
	if p.maxRPS <= 0 {
		return 0
	}
	last := p.lastSeen[source]
	if last.IsZero() {
		return 0
	}
	return time.Second/time.Duration(p.maxRPS) - now.Sub(last)
}

// forget drops a headline that was admitted but could not be kept.
func (p *RealtimePipeline) forget(id string) {
	p.mu.Lock()
	delete(p.seen, id)
	p.mu.Unlock()
}

// ProcessWaiting forwards h through proc and, while the source is throttled,
// waits and retries until ctx is done. Batch sources such as feed polls use it
// so a burst is spread over time instead of dropped.
func ProcessWaiting(ctx context.Context, proc Proc, h *models.Headline, retry time.Duration) error {
	if retry <= 0 {
		retry = 50 * time.Millisecond
	}
	for {
		err := proc.Process(ctx, h)
		if !errors.Is(err, ErrThrottled) {
			return err
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", err, ctx.Err())
		case <-time.After(retry):
		}
	}
}
