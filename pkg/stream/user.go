package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"github.com/GoPolymarket/polymarket-go-sdk/internal/logger"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/auth"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/metrics"
)

// OrderEvent is a lifecycle update for one of the user's orders.
type OrderEvent struct {
	EventType    string          `json:"event_type"`
	ID           string          `json:"id"`
	AssetID      string          `json:"asset_id"`
	Market       string          `json:"market"`
	Side         string          `json:"side"`
	Type         string          `json:"type"`
	Status       string          `json:"status"`
	Price        decimal.Decimal `json:"price"`
	OriginalSize decimal.Decimal `json:"original_size"`
	SizeMatched  decimal.Decimal `json:"size_matched"`
	Timestamp    string          `json:"timestamp"`
}

// TradeEvent is a fill touching one of the user's orders.
type TradeEvent struct {
	EventType string          `json:"event_type"`
	ID        string          `json:"id"`
	AssetID   string          `json:"asset_id"`
	Market    string          `json:"market"`
	Side      string          `json:"side"`
	Status    string          `json:"status"`
	Price     decimal.Decimal `json:"price"`
	Size      decimal.Decimal `json:"size"`
	Outcome   string          `json:"outcome"`
	TakerID   string          `json:"taker_order_id"`
	Timestamp string          `json:"timestamp"`
}

// userEvent is the union of the user channel's event shapes, decoded twice
// once the type is known.
type userEvent struct {
	EventType string `json:"event_type"`
}

// UserStream delivers the authenticated user channel: order lifecycle and
// trade events for the credential holder. Reconnection mirrors MarketStream.
type UserStream struct {
	url     string
	creds   *auth.APIKey
	markets []string
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}

	onOrder func(OrderEvent)
	onTrade func(TradeEvent)

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
}

// NewUserStream prepares a user stream for the given credentials. markets
// optionally narrows the feed to specific condition ids; nil means all of
// the user's activity. An empty url selects the production endpoint.
func NewUserStream(url string, creds *auth.APIKey, markets []string) *UserStream {
	if url == "" {
		url = DefaultUserURL
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &UserStream{
		url:     url,
		creds:   creds,
		markets: markets,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
}

// OnOrder registers the order event callback. Must be set before Start.
func (s *UserStream) OnOrder(fn func(OrderEvent)) { s.onOrder = fn }

// OnTrade registers the trade event callback. Must be set before Start.
func (s *UserStream) OnTrade(fn func(TradeEvent)) { s.onTrade = fn }

// Start launches the connection loop.
func (s *UserStream) Start() {
	go s.runLoop()
}

// Stop disconnects and waits for the loop to exit.
func (s *UserStream) Stop() {
	s.cancel()
	s.mu.Lock()
	if s.conn != nil {
		s.conn.Close()
	}
	s.mu.Unlock()
	<-s.done
}

func (s *UserStream) runLoop() {
	defer close(s.done)
	delay := reconnectBaseDelay

	for {
		select {
		case <-s.ctx.Done():
			return
		default:
		}

		if err := s.connect(); err != nil {
			logger.Error("user stream connection failed", "error", err, "retry_in", delay)
			select {
			case <-s.ctx.Done():
				return
			case <-time.After(delay):
			}
			delay = min(delay*2, reconnectMaxDelay)
			continue
		}
		delay = reconnectBaseDelay

		s.readLoop()

		s.mu.Lock()
		s.connected = false
		s.mu.Unlock()
		metrics.StreamReconnects.WithLabelValues("user").Inc()
	}
}

func (s *UserStream) connect() error {
	conn, _, err := websocket.DefaultDialer.DialContext(s.ctx, s.url, nil)
	if err != nil {
		return err
	}
	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	if err := s.sendAuth(conn); err != nil {
		conn.Close()
		return err
	}

	s.mu.Lock()
	s.conn = conn
	s.connected = true
	s.mu.Unlock()

	go s.pingLoop(conn)
	return nil
}

// sendAuth signs the subscription the same way an HTTP call to the user
// channel path would be signed.
func (s *UserStream) sendAuth(conn *websocket.Conn) error {
	if s.creds == nil {
		return fmt.Errorf("user stream requires api credentials")
	}
	timestamp := time.Now().Unix()
	signature, err := auth.SignL2(s.creds.Secret, timestamp, "GET", "/ws/user", "")
	if err != nil {
		return err
	}

	msg := map[string]any{
		"type": "subscribe",
		"auth": map[string]any{
			"apiKey":     s.creds.Key,
			"secret":     s.creds.Secret,
			"passphrase": s.creds.Passphrase,
			"signature":  signature,
			"timestamp":  timestamp,
		},
		"markets": s.markets,
	}
	return conn.WriteJSON(msg)
}

func (s *UserStream) pingLoop(conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			current := s.conn
			connected := s.connected
			s.mu.Unlock()
			if !connected || current != conn {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *UserStream) readLoop() {
	defer func() {
		s.mu.Lock()
		if s.conn != nil {
			s.conn.Close()
		}
		s.mu.Unlock()
	}()

	for {
		s.mu.Lock()
		conn := s.conn
		s.mu.Unlock()
		if conn == nil {
			return
		}

		conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, message, err := conn.ReadMessage()
		if err != nil {
			if s.ctx.Err() == nil {
				logger.Warn("user stream read error", "error", err)
			}
			return
		}

		s.dispatch(message)
	}
}

// dispatch routes a frame that may carry one event or an array of them.
func (s *UserStream) dispatch(raw []byte) {
	var frames []json.RawMessage
	if err := json.Unmarshal(raw, &frames); err != nil {
		frames = []json.RawMessage{raw}
	}

	for _, frame := range frames {
		var head userEvent
		if err := json.Unmarshal(frame, &head); err != nil {
			continue
		}
		switch head.EventType {
		case "order":
			var event OrderEvent
			if err := json.Unmarshal(frame, &event); err != nil {
				logger.Warn("malformed order event", "error", err)
				continue
			}
			if s.onOrder != nil {
				s.onOrder(event)
			}
		case "trade":
			var event TradeEvent
			if err := json.Unmarshal(frame, &event); err != nil {
				logger.Warn("malformed trade event", "error", err)
				continue
			}
			if s.onTrade != nil {
				s.onTrade(event)
			}
		}
	}
}
