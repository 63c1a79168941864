package finnhub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"NewsSignal/pkg/logger"
)

func TestDecodeNews(t *testing.T) {
	frame := []byte(`{"type":"news","data":[
		{"category":"company","datetime":1714564800,"headline":"Apple unveils new chip","id":7,"related":"AAPL, NVDA","source":"Reuters","url":"https://example.com/a"},
		{"category":"company","datetime":1714564800000,"headline":"","id":8}
	]}`)

	got := decodeNews(frame)
	require.Len(t, got, 1)
	require.Equal(t, "finnhub:7", got[0].ID)
	require.Equal(t, Source, got[0].Source)
	require.Equal(t, []string{"AAPL", "NVDA"}, got[0].Symbols)
	require.Equal(t, time.Unix(1714564800, 0).UTC(), got[0].PublishedAt)

	require.Empty(t, decodeNews([]byte(`{"type":"ping"}`)))
	require.Empty(t, decodeNews([]byte(`not json`)))
}

func TestClient_SubscribeAndRead(t *testing.T) {
	upgrader := websocket.Upgrader{}
	subscribed := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		var msg map[string]string
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		subscribed <- msg["type"] + ":" + msg["symbol"]
		_ = conn.WriteMessage(websocket.TextMessage,
			[]byte(`{"type":"news","data":[{"datetime":1714564800,"headline":"Tesla stock rallies","id":42,"related":"TSLA"}]}`))
		_, _, _ = conn.ReadMessage()
	}))
	defer srv.Close()

	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	c := New("", wsURL, []string{"TSLA"}, 10*time.Millisecond, 0, log)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.Connect(ctx))
	require.True(t, c.IsConnected())
	require.NoError(t, c.Subscribe(ctx))
	require.Equal(t, "subscribe-news:TSLA", <-subscribed)

	hCh, _ := c.Read(ctx)
	select {
	case h := <-hCh:
		require.Equal(t, "finnhub:42", h.ID)
		require.Equal(t, "Tesla stock rallies", h.Text)
	case <-ctx.Done():
		t.Fatal("no headline received")
	}

	require.NoError(t, c.Close())
	require.False(t, c.IsConnected())
}
