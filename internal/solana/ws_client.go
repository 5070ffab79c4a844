package solana

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"solana-trade-recon/internal/observability"
)

// ErrClientClosed is returned by operations on a closed LogsClient.
var ErrClientClosed = errors.New("client closed")

// WSClientConfig configures WebSocket client behavior.
type WSClientConfig struct {
	ReconnectDelay    time.Duration // initial delay before a reconnect attempt
	MaxReconnectDelay time.Duration // cap for reconnect backoff
	PingInterval      time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	SubscribeTimeout  time.Duration // wait for the subscription id
	Commitment        string
}

// DefaultWSConfig returns default WebSocket configuration.
func DefaultWSConfig() WSClientConfig {
	return WSClientConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		SubscribeTimeout:  30 * time.Second,
		Commitment:        DefaultCommitment,
	}
}

// subscription is one live wallet subscription.
type subscription struct {
	wallet string
	ch     chan LogNotification
}

// LogsClient implements WSClient with logsSubscribe over gorilla/websocket.
// Subscriptions survive reconnects.
type LogsClient struct {
	endpoint string
	config   WSClientConfig
	logger   *zap.Logger

	conn      *websocket.Conn
	connMu    sync.Mutex
	closed    atomic.Bool
	requestID atomic.Uint64

	// subs maps the server-side subscription id to its subscriber
	subs   map[int64]*subscription
	subsMu sync.RWMutex

	// pending maps request id to the channel awaiting the subscription id
	pending   map[uint64]chan int64
	pendingMu sync.Mutex

	done         chan struct{}
	wg           sync.WaitGroup
	reconnecting atomic.Bool
}

// NewLogsClient connects to endpoint and starts the read and ping loops.
func NewLogsClient(ctx context.Context, endpoint string, config *WSClientConfig, logger *zap.Logger) (*LogsClient, error) {
	cfg := DefaultWSConfig()
	if config != nil {
		cfg = *config
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &LogsClient{
		endpoint: endpoint,
		config:   cfg,
		logger:   logger.Named("ws"),
		subs:     make(map[int64]*subscription),
		pending:  make(map[uint64]chan int64),
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

func (c *LogsClient) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}

	conn, _, err := dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()
	return nil
}

// SubscribeWallet subscribes to logs of transactions mentioning wallet.
func (c *LogsClient) SubscribeWallet(ctx context.Context, wallet string) (<-chan LogNotification, error) {
	subID, err := c.subscribe(ctx, wallet)
	if err != nil {
		return nil, err
	}

	ch := make(chan LogNotification, 1024)
	c.subsMu.Lock()
	c.subs[subID] = &subscription{wallet: wallet, ch: ch}
	c.subsMu.Unlock()

	c.logger.Info("subscribed", zap.String("wallet", wallet), zap.Int64("subscription", subID))
	return ch, nil
}

// subscribe sends logsSubscribe and waits for the subscription id.
func (c *LogsClient) subscribe(ctx context.Context, wallet string) (int64, error) {
	if c.closed.Load() {
		return 0, ErrClientClosed
	}

	reqID := c.requestID.Add(1)
	req := wsRequest{
		JSONRPC: "2.0",
		ID:      reqID,
		Method:  "logsSubscribe",
		Params: []interface{}{
			map[string]interface{}{"mentions": []string{wallet}},
			map[string]string{"commitment": c.config.Commitment},
		},
	}

	confirmCh := make(chan int64, 1)
	c.pendingMu.Lock()
	c.pending[reqID] = confirmCh
	c.pendingMu.Unlock()

	forget := func() {
		c.pendingMu.Lock()
		delete(c.pending, reqID)
		c.pendingMu.Unlock()
	}

	if err := c.write(req); err != nil {
		forget()
		return 0, err
	}

	select {
	case subID, ok := <-confirmCh:
		if !ok {
			return 0, ErrClientClosed
		}
		return subID, nil
	case <-time.After(c.config.SubscribeTimeout):
		forget()
		return 0, fmt.Errorf("subscription timeout after %s", c.config.SubscribeTimeout)
	case <-c.done:
		return 0, ErrClientClosed
	case <-ctx.Done():
		forget()
		return 0, ctx.Err()
	}
}

func (c *LogsClient) write(v interface{}) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("not connected")
	}
	c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	if err := c.conn.WriteJSON(v); err != nil {
		return fmt.Errorf("write subscribe: %w", err)
	}
	return nil
}

// Close closes the WebSocket connection and every subscription channel.
func (c *LogsClient) Close() error {
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

	c.wg.Wait()

	c.subsMu.Lock()
	for id, sub := range c.subs {
		close(sub.ch)
		delete(c.subs, id)
	}
	c.subsMu.Unlock()

	c.pendingMu.Lock()
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
	c.pendingMu.Unlock()

	return nil
}

func (c *LogsClient) readLoop() {
	defer c.wg.Done()

	delay := c.config.ReconnectDelay

	for !c.closed.Load() {
		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()

		if conn == nil {
			if !c.sleep(100 * time.Millisecond) {
				return
			}
			continue
		}

		conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
		_, message, err := conn.ReadMessage()
		if err != nil {
			if c.closed.Load() {
				return
			}
			c.logger.Warn("read failed, reconnecting", zap.Error(err), zap.Duration("delay", delay))
			if !c.reconnecting.Swap(true) {
				go c.reconnect(delay)
			}
			delay *= 2
			if delay > c.config.MaxReconnectDelay {
				delay = c.config.MaxReconnectDelay
			}
			if !c.sleep(100 * time.Millisecond) {
				return
			}
			continue
		}

		delay = c.config.ReconnectDelay
		c.handleMessage(message)
	}
}

// sleep waits for d and reports false when the client shut down meanwhile.
func (c *LogsClient) sleep(d time.Duration) bool {
	select {
	case <-c.done:
		return false
	case <-time.After(d):
		return true
	}
}

func (c *LogsClient) reconnect(delay time.Duration) {
	defer c.reconnecting.Store(false)

	if !c.sleep(delay) {
		return
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
		c.logger.Warn("reconnect failed", zap.Error(err))
		return
	}

	c.resubscribeAll()
}

// resubscribeAll re-registers every wallet after a reconnect. The read loop
// must be running so the confirmations can arrive.
func (c *LogsClient) resubscribeAll() {
	c.subsMu.RLock()
	old := make(map[int64]*subscription, len(c.subs))
	for id, sub := range c.subs {
		old[id] = sub
	}
	c.subsMu.RUnlock()

	for oldID, sub := range old {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		newID, err := c.subscribe(ctx, sub.wallet)
		cancel()
		if err != nil {
			c.logger.Warn("resubscribe failed", zap.String("wallet", sub.wallet), zap.Error(err))
			continue
		}

		c.subsMu.Lock()
		delete(c.subs, oldID)
		c.subs[newID] = sub
		c.subsMu.Unlock()
	}
}

func (c *LogsClient) handleMessage(message []byte) {
	var resp wsSubscribeResponse
	if err := json.Unmarshal(message, &resp); err == nil && resp.Result > 0 {
		c.pendingMu.Lock()
		ch, ok := c.pending[resp.ID]
		delete(c.pending, resp.ID)
		c.pendingMu.Unlock()
		if ok {
			ch <- resp.Result
		}
		return
	}

	var notif wsNotification
	if err := json.Unmarshal(message, &notif); err == nil && notif.Method == "logsNotification" && notif.Params != nil {
		c.dispatch(notif.Params)
		return
	}

	var errResp wsErrorResponse
	if err := json.Unmarshal(message, &errResp); err == nil && errResp.Error != nil {
		c.logger.Warn("error response",
			zap.Uint64("id", errResp.ID),
			zap.Int("code", errResp.Error.Code),
			zap.String("message", errResp.Error.Message))
	}
}

func (c *LogsClient) dispatch(params *wsNotificationParams) {
	c.subsMu.RLock()
	sub, ok := c.subs[params.Subscription]
	c.subsMu.RUnlock()
	if !ok {
		return
	}

	n := LogNotification{
		Signature: params.Result.Value.Signature,
		Wallet:    sub.wallet,
		Err:       params.Result.Value.Err,
	}
	if params.Result.Context != nil {
		n.Slot = params.Result.Context.Slot
	}
	observability.DefaultMetrics.WSNotifications.Inc()

	// Never drop notifications; the buffer absorbs bursts.
	select {
	case sub.ch <- n:
	case <-c.done:
	}
}

func (c *LogsClient) pingLoop() {
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
				// A dead connection surfaces as a read error.
				_ = c.conn.WriteMessage(websocket.PingMessage, nil)
			}
			c.connMu.Unlock()
		}
	}
}

var _ WSClient = (*LogsClient)(nil)

type wsRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

type wsSubscribeResponse struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Result  int64  `json:"result"` // subscription ID
}

type wsErrorResponse struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type wsNotification struct {
	JSONRPC string                `json:"jsonrpc"`
	Method  string                `json:"method"`
	Params  *wsNotificationParams `json:"params"`
}

type wsNotificationParams struct {
	Subscription int64                `json:"subscription"`
	Result       wsNotificationResult `json:"result"`
}

type wsNotificationResult struct {
	Context *wsContext  `json:"context"`
	Value   wsLogsValue `json:"value"`
}

type wsContext struct {
	Slot int64 `json:"slot"`
}

type wsLogsValue struct {
	Signature string      `json:"signature"`
	Logs      []string    `json:"logs"`
	Err       interface{} `json:"err"`
}
