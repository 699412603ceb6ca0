package stacksapi

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// WSConfig configures websocket client behavior.
type WSConfig struct {
	// ReconnectDelay is the initial delay before a reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay caps the reconnect backoff.
	MaxReconnectDelay time.Duration
	// PingInterval is the interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout bounds a single read.
	ReadTimeout time.Duration
	// WriteTimeout bounds a single write.
	WriteTimeout time.Duration
}

// DefaultWSConfig returns the default websocket configuration.
func DefaultWSConfig() WSConfig {
	return WSConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// AddressTxNotification is one transaction event for a watched principal.
type AddressTxNotification struct {
	Principal string `json:"address"`
	TxID      string `json:"tx_id"`
	TxStatus  string `json:"tx_status"`
}

// wsMessage is the envelope of node websocket frames.
type wsMessage struct {
	ID     uint64          `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
}

// WSClient subscribes to per-address transaction notifications over the
// node websocket. The account layer uses these events to invalidate its
// balance inputs.
type WSClient struct {
	endpoint string
	config   WSConfig
	log      zerolog.Logger

	conn      *websocket.Conn
	connMu    sync.Mutex
	closed    atomic.Bool
	requestID atomic.Uint64

	// subs maps watched principal to its notification channel.
	subs   map[string]chan AddressTxNotification
	subsMu sync.RWMutex

	done         chan struct{}
	wg           sync.WaitGroup
	reconnecting atomic.Bool
}

// NewWSClient connects to the node websocket endpoint and starts the read
// and ping loops.
func NewWSClient(ctx context.Context, endpoint string, config *WSConfig, log zerolog.Logger) (*WSClient, error) {
	cfg := DefaultWSConfig()
	if config != nil {
		cfg = *config
	}

	c := &WSClient{
		endpoint: endpoint,
		config:   cfg,
		log:      log,
		subs:     make(map[string]chan AddressTxNotification),
		done:     make(chan struct{}),
	}

	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	c.wg.Add(2)
	go c.readLoop()
	go c.pingLoop()

	return c, nil
}

func (c *WSClient) connect(ctx context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}
	c.conn = conn
	return nil
}

// SubscribeAddressTransactions watches a principal for transaction events.
// The returned channel is buffered; events arriving faster than the reader
// drains them are dropped (the consumer only uses them as refresh hints).
func (c *WSClient) SubscribeAddressTransactions(ctx context.Context, principal string) (<-chan AddressTxNotification, error) {
	if c.closed.Load() {
		return nil, fmt.Errorf("client closed")
	}

	c.subsMu.Lock()
	if existing, ok := c.subs[principal]; ok {
		c.subsMu.Unlock()
		return existing, nil
	}
	ch := make(chan AddressTxNotification, 64)
	c.subs[principal] = ch
	c.subsMu.Unlock()

	if err := c.sendSubscribe(principal); err != nil {
		c.subsMu.Lock()
		delete(c.subs, principal)
		c.subsMu.Unlock()
		return nil, err
	}
	return ch, nil
}

func (c *WSClient) sendSubscribe(principal string) error {
	req := map[string]any{
		"id":     c.requestID.Add(1),
		"method": "subscribe",
		"params": map[string]string{
			"event":   "address_tx_update",
			"address": principal,
		},
	}

	c.connMu.Lock()
	defer c.connMu.Unlock()
	if c.conn == nil {
		return fmt.Errorf("not connected")
	}
	c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	if err := c.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("write subscribe: %w", err)
	}
	return nil
}

// Close shuts the connection down and closes all subscription channels.
func (c *WSClient) Close() error {
	if c.closed.Swap(true) {
		return nil
	}

	close(c.done)

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.conn.Close()
	}
	c.connMu.Unlock()

	c.subsMu.Lock()
	for principal, ch := range c.subs {
		close(ch)
		delete(c.subs, principal)
	}
	c.subsMu.Unlock()

	c.wg.Wait()
	return nil
}

func (c *WSClient) readLoop() {
	defer c.wg.Done()

	reconnectDelay := c.config.ReconnectDelay

	for !c.closed.Load() {
		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()

		if conn == nil {
			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
		_, message, err := conn.ReadMessage()
		if err != nil {
			if c.closed.Load() {
				return
			}

			if !c.reconnecting.Swap(true) {
				go c.reconnect(reconnectDelay)
			}
			reconnectDelay *= 2
			if reconnectDelay > c.config.MaxReconnectDelay {
				reconnectDelay = c.config.MaxReconnectDelay
			}

			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		reconnectDelay = c.config.ReconnectDelay
		c.handleMessage(message)
	}
}

func (c *WSClient) handleMessage(message []byte) {
	var msg wsMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.log.Debug().Err(err).Msg("discarding unparseable websocket frame")
		return
	}
	if msg.Method != "address_tx_update" || msg.Params == nil {
		return
	}

	var notif AddressTxNotification
	if err := json.Unmarshal(msg.Params, &notif); err != nil {
		c.log.Debug().Err(err).Msg("discarding malformed tx notification")
		return
	}

	c.subsMu.RLock()
	ch := c.subs[notif.Principal]
	c.subsMu.RUnlock()
	if ch == nil {
		return
	}

	select {
	case ch <- notif:
	default:
		// Refresh hints are coalescable, dropping under backpressure is fine.
	}
}

func (c *WSClient) reconnect(delay time.Duration) {
	defer c.reconnecting.Store(false)

	if c.closed.Load() {
		return
	}

	select {
	case <-c.done:
		return
	case <-time.After(delay):
	}

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.connect(ctx); err != nil {
		c.log.Warn().Err(err).Msg("websocket reconnect failed, will retry on next read error")
		return
	}

	// Renew every watch on the fresh connection.
	c.subsMu.RLock()
	principals := make([]string, 0, len(c.subs))
	for principal := range c.subs {
		principals = append(principals, principal)
	}
	c.subsMu.RUnlock()

	for _, principal := range principals {
		if err := c.sendSubscribe(principal); err != nil {
			c.log.Warn().Err(err).Str("principal", principal).Msg("resubscribe failed")
		}
	}
}

func (c *WSClient) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.connMu.Lock()
			if c.conn != nil {
				c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
				if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					c.log.Debug().Err(err).Msg("ping failed")
				}
			}
			c.connMu.Unlock()
		}
	}
}
