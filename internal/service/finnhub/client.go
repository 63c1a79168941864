package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"NewsSignal/internal/domain/models"
	drepo "NewsSignal/internal/domain/repository"
	"NewsSignal/pkg/logger"
	"NewsSignal/pkg/util"

	"github.com/gorilla/websocket"
)

// Source tags headlines received from Finnhub.
const Source = "finnhub"

// Client implements a HeadlineStream backed by the Finnhub news WebSocket.
type Client struct {
	apiKey         string
	websocketURL   string
	symbols        []string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	log            *logger.Logger

	mu        sync.RWMutex
	conn      *websocket.Conn
	connected bool
}

// New creates a new Finnhub HeadlineStream.
func New(apiKey, websocketURL string, symbols []string, reconnectDelay, pingInterval time.Duration, log *logger.Logger) drepo.HeadlineStream {
	return &Client{
		apiKey:         apiKey,
		websocketURL:   websocketURL,
		symbols:        symbols,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		log:            log,
	}
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	u := c.websocketURL
	if c.apiKey != "" {
		u = fmt.Sprintf("%s?token=%s", c.websocketURL, c.apiKey)
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("finnhub connect: %w", err)
	}
	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()
	c.log.Info("finnhub: connected", logger.String("url", c.websocketURL))
	return nil
}

// Subscribe subscribes to news for the configured symbols.
func (c *Client) Subscribe(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil || !c.connected {
		return fmt.Errorf("finnhub not connected")
	}
	for _, s := range c.symbols {
		msg := map[string]string{"type": "subscribe-news", "symbol": s}
		if err := c.conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", s, err)
		}
		c.log.Debug("finnhub: subscribed", logger.String("symbol", s))
	}
	return nil
}

type fhNews struct {
	Category string `json:"category"`
	Datetime int64  `json:"datetime"` // unix seconds or ms
	Headline string `json:"headline"`
	ID       int64  `json:"id"`
	Image    string `json:"image"`
	Related  string `json:"related"`
	Source   string `json:"source"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
}

type fhMessage struct {
	Type string   `json:"type"`
	Data []fhNews `json:"data"`
}

// toHeadline maps a Finnhub news item; related is a comma separated symbol list.
func toHeadline(n fhNews) *models.Headline {
	var symbols []string
	for _, s := range strings.Split(n.Related, ",") {
		if s = strings.TrimSpace(s); s != "" {
			symbols = append(symbols, s)
		}
	}
	return &models.Headline{
		ID:          Source + ":" + strconv.FormatInt(n.ID, 10),
		Source:      Source,
		Text:        n.Headline,
		Symbols:     symbols,
		URL:         n.URL,
		Category:    n.Category,
		PublishedAt: util.FromUnix(n.Datetime),
	}
}

// decodeNews parses one frame; frames other than "news" yield nothing.
func decodeNews(b []byte) []*models.Headline {
	var m fhMessage
	if err := json.Unmarshal(b, &m); err != nil || m.Type != "news" {
		return nil
	}
	out := make([]*models.Headline, 0, len(m.Data))
	for _, n := range m.Data {
		if n.Headline == "" {
			continue
		}
		out = append(out, toHeadline(n))
	}
	return out
}

func (c *Client) current() *websocket.Conn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn
}

// Read streams headlines and errors. After a read error the loop waits for
// Reconnect to install a fresh connection and resumes.
func (c *Client) Read(ctx context.Context) (<-chan *models.Headline, <-chan error) {
	headlines := make(chan *models.Headline, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		if c.pingInterval <= 0 {
			return
		}
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.mu.Lock()
				if c.conn != nil {
					_ = c.conn.WriteMessage(websocket.PingMessage, nil)
				}
				c.mu.Unlock()
			}
		}
	}()

	// read loop
	go func() {
		defer close(headlines)
		defer close(errs)
		var failed *websocket.Conn
		for {
			if ctx.Err() != nil {
				return
			}
			conn := c.current()
			if conn == nil || conn == failed {
				select {
				case <-ctx.Done():
					return
				case <-time.After(c.reconnectDelay + 10*time.Millisecond):
				}
				continue
			}
			_, b, err := conn.ReadMessage()
			if err != nil {
				failed = conn
				select {
				case errs <- fmt.Errorf("finnhub read: %w", err):
				default:
				}
				continue
			}
			for _, h := range decodeNews(b) {
				select {
				case headlines <- h:
				default:
					// drop on backpressure
				}
			}
		}
	}()

	return headlines, errs
}

// Reconnect closes and reconnects.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.reconnectDelay):
	}
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the WS connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}
