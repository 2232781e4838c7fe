package stream

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Config holds stream client configuration.
type Config struct {
	URL                   string
	APIKey                string
	DialTimeout           time.Duration
	HeartbeatInterval     time.Duration
	ReconnectInitialDelay time.Duration
	ReconnectMaxDelay     time.Duration
	ReconnectBackoffMult  float64
	MessageBufferSize     int
	Logger                *zap.Logger
}

func (cfg *Config) setDefaults() {
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	if cfg.HeartbeatInterval == 0 {
		cfg.HeartbeatInterval = 30 * time.Second
	}
	if cfg.ReconnectInitialDelay == 0 {
		cfg.ReconnectInitialDelay = time.Second
	}
	if cfg.ReconnectMaxDelay == 0 {
		cfg.ReconnectMaxDelay = time.Minute
	}
	if cfg.ReconnectBackoffMult == 0 {
		cfg.ReconnectBackoffMult = 2.0
	}
	if cfg.MessageBufferSize == 0 {
		cfg.MessageBufferSize = 1024
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
}

// Client maintains a single WebSocket connection to the push gateway
// and delivers decoded events on MessageChan. Subscriptions survive
// reconnects.
type Client struct {
	url          string
	conn         *websocket.Conn
	logger       *zap.Logger
	reconnectMgr *reconnectManager
	config       Config
	messageChan  chan *Message
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	mu           sync.RWMutex
	subscribed   map[string]subscribeMessage
	connected    atomic.Bool
}

// New creates a stream client. Call Start to connect.
func New(cfg Config) (*Client, error) {
	cfg.setDefaults()

	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse stream url: %w", err)
	}
	if cfg.APIKey != "" {
		q := u.Query()
		q.Set("apikey", cfg.APIKey)
		u.RawQuery = q.Encode()
	}

	ctx, cancel := context.WithCancel(context.Background())

	reconnectCfg := ReconnectConfig{
		InitialDelay:      cfg.ReconnectInitialDelay,
		MaxDelay:          cfg.ReconnectMaxDelay,
		BackoffMultiplier: cfg.ReconnectBackoffMult,
		JitterPercent:     0.2,
	}

	return &Client{
		url:          u.String(),
		logger:       cfg.Logger,
		reconnectMgr: newReconnectManager(reconnectCfg, cfg.Logger),
		config:       cfg,
		messageChan:  make(chan *Message, cfg.MessageBufferSize),
		ctx:          ctx,
		cancel:       cancel,
		subscribed:   make(map[string]subscribeMessage),
	}, nil
}

// Start connects and launches the read, heartbeat and reconnect loops.
func (c *Client) Start() error {
	c.logger.Info("stream-client-starting", zap.String("url", c.url))

	if err := c.connect(c.ctx); err != nil {
		return fmt.Errorf("initial connection: %w", err)
	}

	c.wg.Add(3)
	go c.readLoop()
	go c.heartbeatLoop()
	go c.reconnectLoop()

	return nil
}

func (c *Client) connect(ctx context.Context) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: c.config.DialTimeout,
	}

	c.logger.Info("connecting-to-stream", zap.String("url", c.url))

	conn, _, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	c.connected.Store(true)
	ActiveConnections.Set(1)

	c.logger.Info("stream-connected")

	return nil
}

// IsConnected reports whether the underlying connection is up.
func (c *Client) IsConnected() bool {
	return c.connected.Load()
}

func subscriptionKey(channel string, marketID int64) string {
	return fmt.Sprintf("%s/%d", channel, marketID)
}

// Subscribe registers interest in a channel for one market. The
// subscription is replayed automatically after a reconnect.
func (c *Client) Subscribe(channel string, marketID int64) error {
	msg := subscribeMessage{
		Action:   ActionSubscribe,
		Channel:  channel,
		MarketID: marketID,
	}
	key := subscriptionKey(channel, marketID)

	c.mu.Lock()
	if _, ok := c.subscribed[key]; ok {
		c.mu.Unlock()
		c.logger.Debug("already-subscribed", zap.String("key", key))
		return nil
	}
	c.subscribed[key] = msg
	total := len(c.subscribed)
	conn := c.conn
	c.mu.Unlock()

	if err := c.writeJSON(conn, msg); err != nil {
		c.mu.Lock()
		delete(c.subscribed, key)
		total = len(c.subscribed)
		c.mu.Unlock()

		SubscriptionCount.Set(float64(total))
		return fmt.Errorf("write subscribe message: %w", err)
	}

	SubscriptionCount.Set(float64(total))

	c.logger.Info("subscribed",
		zap.String("channel", channel),
		zap.Int64("market-id", marketID),
		zap.Int("total-count", total))

	return nil
}

// Unsubscribe cancels a previous Subscribe for the same channel and market.
func (c *Client) Unsubscribe(channel string, marketID int64) error {
	key := subscriptionKey(channel, marketID)

	c.mu.Lock()
	prev, ok := c.subscribed[key]
	if !ok {
		c.mu.Unlock()
		c.logger.Debug("not-subscribed", zap.String("key", key))
		return nil
	}
	delete(c.subscribed, key)
	total := len(c.subscribed)
	conn := c.conn
	c.mu.Unlock()

	msg := subscribeMessage{
		Action:   ActionUnsubscribe,
		Channel:  channel,
		MarketID: marketID,
	}

	if err := c.writeJSON(conn, msg); err != nil {
		c.mu.Lock()
		c.subscribed[key] = prev
		total = len(c.subscribed)
		c.mu.Unlock()

		SubscriptionCount.Set(float64(total))
		return fmt.Errorf("write unsubscribe message: %w", err)
	}

	SubscriptionCount.Set(float64(total))
	UnsubscriptionsTotal.Inc()

	c.logger.Info("unsubscribed",
		zap.String("channel", channel),
		zap.Int64("market-id", marketID),
		zap.Int("remaining-count", total))

	return nil
}

func (c *Client) writeJSON(conn *websocket.Conn, v interface{}) error {
	if conn == nil {
		return fmt.Errorf("not connected")
	}
	return conn.WriteJSON(v)
}

// readLoop reads frames and dispatches decoded messages.
func (c *Client) readLoop() {
	defer c.wg.Done()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		c.mu.RLock()
		conn := c.conn
		c.mu.RUnlock()

		if conn == nil {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		_, raw, err := conn.ReadMessage()
		if err != nil {
			c.logger.Warn("read-error", zap.Error(err))
			c.connected.Store(false)
			ActiveConnections.Set(0)
			return
		}

		msg, err := decodeMessage(raw)
		if err != nil {
			preview := string(raw)
			if len(preview) > 100 {
				preview = preview[:100]
			}
			c.logger.Debug("unparseable-message",
				zap.Error(err),
				zap.Int("bytes", len(raw)),
				zap.String("preview", preview))
			continue
		}
		if msg == nil {
			// Heartbeat ack or subscription confirmation.
			c.logger.Debug("control-message", zap.Int("bytes", len(raw)))
			continue
		}

		MessagesReceivedTotal.WithLabelValues(msg.MsgType).Inc()

		select {
		case c.messageChan <- msg:
		default:
			c.logger.Warn("message-channel-full", zap.String("msg-type", msg.MsgType))
			MessagesDroppedTotal.WithLabelValues("channel_full").Inc()
		}
	}
}

// decodeMessage maps a raw frame to a typed Message. A nil Message with
// a nil error means the frame carried no push payload.
func decodeMessage(raw []byte) (*Message, error) {
	var probe struct {
		MsgType string `json:"msgType"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, err
	}
	if probe.MsgType == "" {
		return nil, nil
	}

	msg := &Message{MsgType: probe.MsgType}
	switch probe.MsgType {
	case msgTypeOrderUpdate:
		msg.OrderUpdate = &OrderUpdate{}
		return msg, json.Unmarshal(raw, msg.OrderUpdate)
	case msgTypeTradeRecord:
		msg.Trade = &TradeRecord{}
		return msg, json.Unmarshal(raw, msg.Trade)
	case msgTypeDepthDiff:
		msg.Depth = &DepthDiff{}
		return msg, json.Unmarshal(raw, msg.Depth)
	case msgTypeLastPrice:
		msg.LastPrice = &LastPrice{}
		return msg, json.Unmarshal(raw, msg.LastPrice)
	case msgTypeLastTrade:
		msg.LastTrade = &LastTrade{}
		return msg, json.Unmarshal(raw, msg.LastTrade)
	default:
		return nil, fmt.Errorf("unknown msgType %q", probe.MsgType)
	}
}

// heartbeatLoop sends periodic application-level heartbeats.
func (c *Client) heartbeatLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			if !c.connected.Load() {
				continue
			}

			c.mu.RLock()
			conn := c.conn
			c.mu.RUnlock()

			if conn == nil {
				continue
			}

			if err := conn.WriteJSON(heartbeatMessage{Action: ActionHeartbeat}); err != nil {
				c.logger.Warn("heartbeat-error", zap.Error(err))
			}
		}
	}
}

// reconnectLoop re-establishes the connection when it drops.
func (c *Client) reconnectLoop() {
	defer c.wg.Done()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		if c.connected.Load() {
			time.Sleep(time.Second)
			continue
		}

		c.logger.Warn("connection-lost-initiating-reconnect")

		err := c.reconnectMgr.reconnect(c.ctx, c.connect)
		if err != nil {
			if err == context.Canceled {
				return
			}
			c.logger.Error("reconnection-failed", zap.Error(err))
			continue
		}

		if err := c.resubscribeAll(); err != nil {
			c.logger.Error("resubscribe-failed", zap.Error(err))
			c.connected.Store(false)
			continue
		}

		c.logger.Info("reconnection-complete-restarting-read-loop")

		c.wg.Add(1)
		go c.readLoop()
	}
}

// resubscribeAll replays every tracked subscription after a reconnect.
func (c *Client) resubscribeAll() error {
	c.mu.RLock()
	msgs := make([]subscribeMessage, 0, len(c.subscribed))
	for _, msg := range c.subscribed {
		msgs = append(msgs, msg)
	}
	conn := c.conn
	c.mu.RUnlock()

	for _, msg := range msgs {
		if err := c.writeJSON(conn, msg); err != nil {
			return fmt.Errorf("write resubscribe message: %w", err)
		}
	}

	if len(msgs) > 0 {
		c.logger.Info("resubscribed", zap.Int("count", len(msgs)))
	}

	return nil
}

// MessageChan returns the channel delivering decoded push events.
func (c *Client) MessageChan() <-chan *Message {
	return c.messageChan
}

// Close shuts the client down and closes MessageChan.
func (c *Client) Close() error {
	c.logger.Info("closing-stream-client")

	c.cancel()

	c.mu.RLock()
	if c.conn != nil {
		c.conn.Close()
	}
	c.mu.RUnlock()

	c.wg.Wait()

	close(c.messageChan)

	ActiveConnections.Set(0)

	c.logger.Info("stream-client-closed")

	return nil
}
