// Package stream maintains live market and user state over the CLOB
// websocket feed.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/GoPolymarket/polymarket-go-sdk/internal/logger"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/metrics"
)

const (
	// DefaultMarketURL is the public market-data channel.
	DefaultMarketURL = "wss://ws-subscriptions-clob.polymarket.com/ws/market"
	// DefaultUserURL is the authenticated user channel.
	DefaultUserURL = "wss://ws-subscriptions-clob.polymarket.com/ws/user"

	reconnectBaseDelay = 1 * time.Second
	reconnectMaxDelay  = 30 * time.Second
	pingPeriod         = 15 * time.Second
	// No data within this window means the connection is dead.
	readTimeout = pingPeriod + 10*time.Second
)

// rawLevel is a price level as carried on the wire.
type rawLevel struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

// priceChange is one delta inside a price_change event.
type priceChange struct {
	AssetID string `json:"asset_id"`
	Price   string `json:"price"`
	Size    string `json:"size"`
	Side    string `json:"side"`
}

// marketEvent is the union of the market channel's event shapes.
type marketEvent struct {
	EventType string        `json:"event_type"`
	AssetID   string        `json:"asset_id"`
	Market    string        `json:"market"`
	Bids      []rawLevel    `json:"bids"`
	Asks      []rawLevel    `json:"asks"`
	Changes   []priceChange `json:"changes"`
	Hash      string        `json:"hash"`
}

// MarketStream maintains live order books for a set of tokens. It reconnects
// with exponential backoff and resubscribes after every reconnect.
type MarketStream struct {
	url    string
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu        sync.RWMutex
	conn      *websocket.Conn
	books     map[string]*Orderbook
	subs      []string
	connected bool
}

// NewMarketStream prepares a market stream. An empty url selects the
// production endpoint. Call Start to connect.
func NewMarketStream(url string) *MarketStream {
	if url == "" {
		url = DefaultMarketURL
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &MarketStream{
		url:    url,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
		books:  make(map[string]*Orderbook),
	}
}

// Start launches the connection loop.
func (s *MarketStream) Start() {
	go s.runLoop()
}

// Stop disconnects and waits for the loop to exit.
func (s *MarketStream) Stop() {
	s.cancel()
	s.mu.Lock()
	if s.conn != nil {
		s.conn.Close()
	}
	s.mu.Unlock()
	<-s.done
}

// Subscribe adds tokens to the subscription set. New tokens are subscribed
// immediately when connected, and always after the next reconnect.
func (s *MarketStream) Subscribe(tokenIDs []string) {
	s.mu.Lock()
	var added []string
	for _, id := range tokenIDs {
		if _, ok := s.books[id]; ok {
			continue
		}
		s.books[id] = newOrderbook(id)
		s.subs = append(s.subs, id)
		added = append(added, id)
	}
	connected := s.connected
	s.mu.Unlock()

	if len(added) > 0 && connected {
		if err := s.sendSubscribe(added); err != nil {
			logger.Warn("failed to subscribe", "error", err)
		}
	}
}

// Book returns the live book for a token, or nil when not subscribed.
func (s *MarketStream) Book(tokenID string) *Orderbook {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.books[tokenID]
}

func (s *MarketStream) runLoop() {
	defer close(s.done)
	delay := reconnectBaseDelay

	for {
		select {
		case <-s.ctx.Done():
			return
		default:
		}

		if err := s.connect(); err != nil {
			logger.Error("market stream connection failed", "error", err, "retry_in", delay)
			select {
			case <-s.ctx.Done():
				return
			case <-time.After(delay):
			}
			delay = min(delay*2, reconnectMaxDelay)
			continue
		}
		delay = reconnectBaseDelay

		s.mu.Lock()
		s.connected = true
		subs := append([]string(nil), s.subs...)
		s.mu.Unlock()

		if len(subs) > 0 {
			if err := s.sendSubscribe(subs); err != nil {
				logger.Error("failed to resubscribe", "error", err)
				s.closeConn()
				continue
			}
		}

		s.readLoop()

		s.mu.Lock()
		s.connected = false
		s.mu.Unlock()
		metrics.StreamReconnects.WithLabelValues("market").Inc()
	}
}

func (s *MarketStream) connect() error {
	conn, _, err := websocket.DefaultDialer.DialContext(s.ctx, s.url, nil)
	if err != nil {
		return err
	}
	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	go s.pingLoop(conn)
	return nil
}

func (s *MarketStream) pingLoop(conn *websocket.Conn) {
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

func (s *MarketStream) closeConn() {
	s.mu.Lock()
	if s.conn != nil {
		s.conn.Close()
	}
	s.mu.Unlock()
}

func (s *MarketStream) readLoop() {
	defer s.closeConn()

	for {
		s.mu.RLock()
		conn := s.conn
		s.mu.RUnlock()
		if conn == nil {
			return
		}

		conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, message, err := conn.ReadMessage()
		if err != nil {
			if s.ctx.Err() == nil {
				logger.Warn("market stream read error", "error", err)
			}
			return
		}

		for _, event := range decodeEvents(message) {
			s.handleEvent(event)
		}
	}
}

// decodeEvents parses a frame that may carry one event or an array of them.
func decodeEvents(raw []byte) []marketEvent {
	var events []marketEvent
	if err := json.Unmarshal(raw, &events); err == nil {
		return events
	}
	var single marketEvent
	if err := json.Unmarshal(raw, &single); err == nil && single.EventType != "" {
		return []marketEvent{single}
	}
	return nil
}

func (s *MarketStream) handleEvent(event marketEvent) {
	tokenID := event.AssetID
	if tokenID == "" {
		tokenID = event.Market
	}

	switch event.EventType {
	case "book":
		book := s.Book(tokenID)
		if book == nil {
			return
		}
		bids := make([]Level, 0, len(event.Bids))
		for _, l := range event.Bids {
			level, err := parseLevel(l)
			if err != nil {
				continue
			}
			bids = append(bids, level)
		}
		asks := make([]Level, 0, len(event.Asks))
		for _, l := range event.Asks {
			level, err := parseLevel(l)
			if err != nil {
				continue
			}
			asks = append(asks, level)
		}
		sortLevels(bids, true)
		sortLevels(asks, false)
		book.snapshot(bids, asks)

	case "price_change":
		for _, change := range event.Changes {
			target := change.AssetID
			if target == "" {
				target = tokenID
			}
			book := s.Book(target)
			if book == nil {
				continue
			}
			if err := book.update(change.Side, change.Price, change.Size); err != nil {
				logger.Warn("invalid price change", "asset_id", target, "error", err)
			}
		}
	}
}

func (s *MarketStream) sendSubscribe(tokenIDs []string) error {
	msg := map[string]any{
		"type":         "subscribe",
		"channel_name": "book",
		"assets_ids":   tokenIDs,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return fmt.Errorf("not connected")
	}
	return s.conn.WriteJSON(msg)
}
