package usecase

import (
	"context"

	"NewsSignal/internal/domain/models"
	drepo "NewsSignal/internal/domain/repository"
	mid "NewsSignal/internal/middleware"
	"NewsSignal/pkg/logger"
)

// HeadlineCollector reads headlines from a live stream and feeds them to the processor.
type HeadlineCollector struct {
	stream  drepo.HeadlineStream
	proc    *PredictionProcessor
	metrics drepo.Metrics
	pipe    *mid.RealtimePipeline
	log     *logger.Logger
}

// NewHeadlineCollector creates a new HeadlineCollector instance.
func NewHeadlineCollector(stream drepo.HeadlineStream, proc *PredictionProcessor, metrics drepo.Metrics, pipe *mid.RealtimePipeline, log *logger.Logger) *HeadlineCollector {
	return &HeadlineCollector{stream: stream, proc: proc, metrics: metrics, pipe: pipe, log: log}
}

// IsConnected returns true if the headline stream is connected.
func (c *HeadlineCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

// Start connects, subscribes and forwards headlines until ctx is done. Stream
// errors trigger a reconnect; the pipeline, when set, is started by its owner.
func (c *HeadlineCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	hCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, hCh, errCh)
	return nil
}

func (c *HeadlineCollector) consume(ctx context.Context, hCh <-chan *models.Headline, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				c.metrics.RecordError("stream")
				c.log.Warn("headline stream error, reconnecting", logger.Error(err))
				if rerr := c.stream.Reconnect(ctx); rerr != nil {
					c.log.Error("reconnect failed", logger.Error(rerr))
				}
			}
		case h, ok := <-hCh:
			if !ok {
				return
			}
			if h == nil {
				continue
			}
			var err error
			if c.pipe != nil {
				err = c.pipe.Process(ctx, h)
			} else {
				err = c.proc.Process(ctx, h)
			}
			if err != nil {
				c.log.Debug("headline not processed", logger.String("id", h.ID), logger.Error(err))
			}
		}
	}
}

// Shutdown closes the stream; the read loop exits once ctx is done.
func (c *HeadlineCollector) Shutdown(context.Context) error {
	return c.stream.Close()
}
