package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	mid "NewsSignal/internal/middleware"
	"NewsSignal/internal/usecase"
	"NewsSignal/pkg/config"
	xhttp "NewsSignal/pkg/http"
	pkgkafka "NewsSignal/pkg/kafka"
	applogger "NewsSignal/pkg/logger"
)

// App owns the long-running parts of the service: the HTTP API and the
// optional headline sources (Finnhub stream, RSS poller, Kafka consumer).
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	httpServer *xhttp.Server
	processor  *usecase.PredictionProcessor
	pipe       *mid.RealtimePipeline
	collector  *usecase.HeadlineCollector
	poller     *usecase.FeedPoller
	consumer   *pkgkafka.Consumer
}

// New creates an App. Any of collector, poller and consumer may be nil.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	httpServer *xhttp.Server,
	processor *usecase.PredictionProcessor,
	pipe *mid.RealtimePipeline,
	collector *usecase.HeadlineCollector,
	poller *usecase.FeedPoller,
	consumer *pkgkafka.Consumer,
) *App {
	return &App{
		cfg:        cfg,
		log:        log,
		httpServer: httpServer,
		processor:  processor,
		pipe:       pipe,
		collector:  collector,
		poller:     poller,
		consumer:   consumer,
	}
}

// Run starts every component and blocks until SIGINT/SIGTERM or ctx is done.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.start(ctx); err != nil {
		_ = a.shutdown()
		return err
	}

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return a.shutdown()
}

func (a *App) start(ctx context.Context) error {
	if a.pipe != nil {
		a.pipe.Start(ctx)
	}
	if a.collector != nil {
		if err := a.collector.Start(ctx); err != nil {
			return fmt.Errorf("start finnhub collector: %w", err)
		}
		a.log.Info("finnhub collector started", applogger.Strings("symbols", a.cfg.Finnhub.Symbols))
	}

	if a.poller != nil {
		if err := a.poller.Start(ctx, a.cfg.RSS.Schedule); err != nil {
			return fmt.Errorf("start rss poller: %w", err)
		}
	}

	if a.consumer != nil {
		if err := a.consumer.Start(); err != nil {
			return fmt.Errorf("start kafka consumer: %w", err)
		}
		a.log.Info("kafka consumer started", applogger.String("topic", a.cfg.Kafka.HeadlinesTopic))
	}

	if err := a.httpServer.Start(); err != nil {
		return fmt.Errorf("start http server: %w", err)
	}
	a.log.Info("newssignal started",
		applogger.String("env", a.cfg.Environment),
		applogger.String("backend", a.cfg.Backend.Type),
		applogger.String("addr", a.httpServer.Addr()),
	)
	return nil
}

// shutdown stops sources first so no headline is accepted after the sinks close.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout())
	defer cancel()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}
	if a.poller != nil {
		a.poller.Stop()
	}
	if a.collector != nil {
		if err := a.collector.Shutdown(ctx); err != nil {
			a.log.Warn("collector stop error", applogger.Error(err))
		}
	}
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}
	if a.pipe != nil {
		a.pipe.Stop()
	}
	if a.processor != nil {
		a.processor.Close()
	}

	a.log.Info("shutdown complete")
	a.log.RemoveCollector()
	return nil
}

func (a *App) shutdownTimeout() time.Duration {
	if a.cfg.Server.ShutdownTimeout > 0 {
		return a.cfg.Server.ShutdownTimeout
	}
	return 15 * time.Second
}
