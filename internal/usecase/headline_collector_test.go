package usecase

import (
	"context"
	"errors"
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

type idCollector struct {
	mu  sync.Mutex
	ids []string
}

func (p *idCollector) Process(_ context.Context, h *models.Headline) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ids = append(p.ids, h.ID)
	return nil
}

func (p *idCollector) seen() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.ids...)
}

func TestHeadlineCollector_ForwardsAndReconnects(t *testing.T) {
	ctrl := gomock.NewController(t)
	stream := mocks.NewMockHeadlineStream(ctrl)
	metrics := mocks.NewMockMetrics(ctrl)
	metrics.EXPECT().RecordLatency(gomock.Any(), gomock.Any()).AnyTimes()

	hCh := make(chan *models.Headline, 2)
	errCh := make(chan error, 1)
	reconnected := make(chan struct{})

	stream.EXPECT().Connect(gomock.Any()).Return(nil)
	stream.EXPECT().Subscribe(gomock.Any()).Return(nil)
	stream.EXPECT().Read(gomock.Any()).Return((<-chan *models.Headline)(hCh), (<-chan error)(errCh))
	metrics.EXPECT().RecordError("stream")
	stream.EXPECT().Reconnect(gomock.Any()).DoAndReturn(func(context.Context) error {
		close(reconnected)
		return nil
	})
	stream.EXPECT().IsConnected().Return(true)
	stream.EXPECT().Close().Return(nil)

	proc := &idCollector{}
	pipe := mid.NewRealtimePipeline(proc, metrics, mid.WithMaxRPS(1000))
	c := NewHeadlineCollector(stream, nil, metrics, pipe, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, c.Start(ctx))
	require.True(t, c.IsConnected())

	hCh <- &models.Headline{ID: "fh:1", Source: "finnhub", Text: "Apple beats estimates"}
	require.Eventually(t, func() bool { return len(proc.seen()) == 1 }, time.Second, 10*time.Millisecond)

	errCh <- errors.New("websocket: close 1006")
	select {
	case <-reconnected:
	case <-time.After(time.Second):
		t.Fatal("reconnect not attempted")
	}
	require.NoError(t, c.Shutdown(ctx))
}

func TestHeadlineCollector_ConnectError(t *testing.T) {
	ctrl := gomock.NewController(t)
	stream := mocks.NewMockHeadlineStream(ctrl)
	stream.EXPECT().Connect(gomock.Any()).Return(errors.New("dial refused"))

	c := NewHeadlineCollector(stream, nil, mocks.NewMockMetrics(ctrl), nil, logger.Nop())
	require.Error(t, c.Start(context.Background()))
}
