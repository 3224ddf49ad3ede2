package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/velstore/storefront-gateway/internal/api/metrics"
	"github.com/velstore/storefront-gateway/internal/core/domain"
)

const (
	// Reconnection is bounded and flat: five attempts, one second apart.
	// After exhaustion the client stays down until reinitialized.
	reconnectAttempts = 5
	reconnectDelay    = time.Second

	handshakeTimeout = 10 * time.Second
)

var ErrClientClosed = errors.New("realtime: client closed")

// Subscription identifies one registered handler so it can be removed
// individually.
type Subscription uint64

type entry[F any] struct {
	id Subscription
	fn F
}

func removeEntry[F any](list []entry[F], id Subscription) []entry[F] {
	for i, e := range list {
		if e.id == id {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// Client is one authenticated connection to the messaging server. All send
// operations are fire-and-forget and degrade to no-ops while the connection
// is down; delivery confirmation only ever arrives as a message:new event.
type Client struct {
	url        string
	credential string
	dialer     *websocket.Dialer
	log        zerolog.Logger
	validate   *validator.Validate

	mu        sync.Mutex // guards conn, closed, and all writes
	conn      *websocket.Conn
	closed    bool
	connected atomic.Bool

	handlerMu    sync.RWMutex
	nextID       Subscription
	newMessage   []entry[func(NewMessage)]
	typingUpdate []entry[func(domain.TypingUpdate)]
	messagesRead []entry[func(domain.ReadReceipt)]
	chatUpdated  []entry[func(ChatUpdated)]
}

// NewClient prepares a client for the given messaging server URL and bearer
// credential. No network activity happens until Connect.
func NewClient(url, credential string, log zerolog.Logger) *Client {
	return &Client{
		url:        url,
		credential: credential,
		dialer:     &websocket.Dialer{HandshakeTimeout: handshakeTimeout},
		log:        log,
		validate:   validator.New(),
	}
}

// Credential returns the bearer credential this connection was opened with.
func (c *Client) Credential() string {
	return c.credential
}

// Connect performs the authenticated handshake and starts the read loop.
// Connection loss after a successful Connect is retried automatically;
// failure of the initial dial is returned to the caller.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClientClosed
	}
	if c.conn != nil {
		return nil
	}

	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}

	c.conn = conn
	c.connected.Store(true)
	go c.readLoop(conn)

	return nil
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.credential)

	conn, resp, err := c.dialer.DialContext(ctx, c.url, header)
	if err != nil {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		return nil, err
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	return conn, nil
}

// IsConnected reports the live/dead state of the connection. Never errors;
// callers poll this after connection loss.
func (c *Client) IsConnected() bool {
	return c.connected.Load()
}

// Close tears the connection down for good. Safe to call repeatedly.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.connected.Store(false)
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}

// readLoop consumes frames until the connection drops, then runs the bounded
// reconnect policy. It exits when the client is closed or retries exhaust.
func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.connected.Store(false)

			c.mu.Lock()
			closed := c.closed
			if c.conn == conn {
				_ = c.conn.Close()
				c.conn = nil
			}
			c.mu.Unlock()

			if closed {
				return
			}

			next := c.reconnect()
			if next == nil {
				return
			}
			conn = next
			continue
		}

		c.handleFrame(data)
	}
}

// reconnect redials up to reconnectAttempts times with a fixed delay.
// Returns the new connection, or nil when retries exhausted or the client
// was closed meanwhile.
func (c *Client) reconnect() *websocket.Conn {
	for attempt := 1; attempt <= reconnectAttempts; attempt++ {
		time.Sleep(reconnectDelay)
		metrics.RealtimeReconnectsTotal.Inc()

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return nil
		}
		c.mu.Unlock()

		conn, err := c.dial(context.Background())
		if err != nil {
			c.log.Warn().Err(err).Int("attempt", attempt).Msg("realtime reconnect failed")
			continue
		}

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			_ = conn.Close()
			return nil
		}
		c.conn = conn
		c.connected.Store(true)
		c.mu.Unlock()

		c.log.Info().Int("attempt", attempt).Msg("realtime reconnected")
		return conn
	}

	c.log.Error().Int("attempts", reconnectAttempts).Msg("realtime reconnect attempts exhausted")
	return nil
}

// ── Outbound operations ───────────────────────────────────────────────────────

// JoinChat emits a join intent for the conversation. No acknowledgment is
// awaited and no local membership state is kept; the server is the only
// source of truth for room membership.
func (c *Client) JoinChat(chatID string) {
	c.emit(EventChatJoin, roomIntent{ChatID: chatID})
}

// LeaveChat emits a leave intent for the conversation.
func (c *Client) LeaveChat(chatID string) {
	c.emit(EventChatLeave, roomIntent{ChatID: chatID})
}

// SendMessage transforms the caller-facing input into the message:send wire
// payload and emits it. Context fields are attached only when both the
// attachment type and id are present.
func (c *Client) SendMessage(input SendMessageInput) {
	payload := outgoingMessage{
		ChatID:      input.ChatID,
		Text:        input.Message,
		Attachments: []string{},
	}
	if input.AttachmentType != "" && input.AttachmentID != "" {
		payload.ContextType = input.AttachmentType
		payload.ContextID = input.AttachmentID
	}
	c.emit(EventMessageSend, payload)
}

// StartTyping signals that the user began composing in the conversation.
func (c *Client) StartTyping(chatID string) {
	c.emit(EventTypingStart, typingIntent{ChatID: chatID})
}

// StopTyping signals that the user stopped composing.
func (c *Client) StopTyping(chatID string) {
	c.emit(EventTypingStop, typingIntent{ChatID: chatID})
}

// MarkRead signals that the user has read the conversation.
func (c *Client) MarkRead(chatID string) {
	c.emit(EventMessageRead, roomIntent{ChatID: chatID})
}

// emit writes one framed event. Without a live connection this is a silent
// no-op; write failures are logged and surface later through the read loop.
func (c *Client) emit(event string, data any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil || !c.connected.Load() {
		c.log.Debug().Str("event", event).Msg("realtime emit skipped, no connection")
		return
	}

	if err := c.conn.WriteJSON(outEnvelope{Event: event, Data: data}); err != nil {
		c.log.Warn().Err(err).Str("event", event).Msg("realtime emit failed")
		return
	}
	metrics.RealtimeEventsTotal.WithLabelValues(event, "out").Inc()
}

// ── Event subscription ────────────────────────────────────────────────────────

// OnNewMessage registers a handler for message:new events. Handlers run in
// registration order, synchronously on the read loop.
func (c *Client) OnNewMessage(fn func(NewMessage)) Subscription {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	c.nextID++
	c.newMessage = append(c.newMessage, entry[func(NewMessage)]{c.nextID, fn})
	return c.nextID
}

// OffNewMessage removes the handler registered under sub.
func (c *Client) OffNewMessage(sub Subscription) {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	c.newMessage = removeEntry(c.newMessage, sub)
}

// OnTypingUpdate registers a handler for typing:update events.
func (c *Client) OnTypingUpdate(fn func(domain.TypingUpdate)) Subscription {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	c.nextID++
	c.typingUpdate = append(c.typingUpdate, entry[func(domain.TypingUpdate)]{c.nextID, fn})
	return c.nextID
}

// OffTypingUpdate removes the handler registered under sub.
func (c *Client) OffTypingUpdate(sub Subscription) {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	c.typingUpdate = removeEntry(c.typingUpdate, sub)
}

// OnMessagesRead registers a handler for messages:read events.
func (c *Client) OnMessagesRead(fn func(domain.ReadReceipt)) Subscription {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	c.nextID++
	c.messagesRead = append(c.messagesRead, entry[func(domain.ReadReceipt)]{c.nextID, fn})
	return c.nextID
}

// OffMessagesRead removes the handler registered under sub.
func (c *Client) OffMessagesRead(sub Subscription) {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	c.messagesRead = removeEntry(c.messagesRead, sub)
}

// OnChatUpdated registers a handler for chat:updated events.
func (c *Client) OnChatUpdated(fn func(ChatUpdated)) Subscription {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	c.nextID++
	c.chatUpdated = append(c.chatUpdated, entry[func(ChatUpdated)]{c.nextID, fn})
	return c.nextID
}

// OffChatUpdated removes the handler registered under sub.
func (c *Client) OffChatUpdated(sub Subscription) {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	c.chatUpdated = removeEntry(c.chatUpdated, sub)
}

// RemoveAllListeners clears every registered handler across all event kinds
// without touching the connection.
func (c *Client) RemoveAllListeners() {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	c.newMessage = nil
	c.typingUpdate = nil
	c.messagesRead = nil
	c.chatUpdated = nil
}

// ── Inbound dispatch ──────────────────────────────────────────────────────────

// handleFrame validates one inbound frame and relays it to the registered
// handlers. Malformed payloads are dropped at the boundary, never passed
// through untyped.
func (c *Client) handleFrame(data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		metrics.RealtimeDroppedTotal.WithLabelValues("malformed").Inc()
		c.log.Warn().Err(err).Msg("realtime frame is not a valid envelope")
		return
	}

	switch env.Event {
	case EventMessageNew:
		var p NewMessage
		if !c.decode(env, &p) {
			return
		}
		c.handlerMu.RLock()
		handlers := append([]entry[func(NewMessage)]{}, c.newMessage...)
		c.handlerMu.RUnlock()
		for _, h := range handlers {
			h.fn(p)
		}

	case EventTypingUpdate:
		var p domain.TypingUpdate
		if !c.decode(env, &p) {
			return
		}
		c.handlerMu.RLock()
		handlers := append([]entry[func(domain.TypingUpdate)]{}, c.typingUpdate...)
		c.handlerMu.RUnlock()
		for _, h := range handlers {
			h.fn(p)
		}

	case EventMessagesRead:
		var p domain.ReadReceipt
		if !c.decode(env, &p) {
			return
		}
		c.handlerMu.RLock()
		handlers := append([]entry[func(domain.ReadReceipt)]{}, c.messagesRead...)
		c.handlerMu.RUnlock()
		for _, h := range handlers {
			h.fn(p)
		}

	case EventChatUpdated:
		var p ChatUpdated
		if !c.decode(env, &p) {
			return
		}
		c.handlerMu.RLock()
		handlers := append([]entry[func(ChatUpdated)]{}, c.chatUpdated...)
		c.handlerMu.RUnlock()
		for _, h := range handlers {
			h.fn(p)
		}

	default:
		metrics.RealtimeDroppedTotal.WithLabelValues("unknown_event").Inc()
		c.log.Debug().Str("event", env.Event).Msg("realtime event ignored")
	}
}

func (c *Client) decode(env envelope, dst any) bool {
	if err := json.Unmarshal(env.Data, dst); err != nil {
		metrics.RealtimeDroppedTotal.WithLabelValues("malformed").Inc()
		c.log.Warn().Err(err).Str("event", env.Event).Msg("realtime payload rejected")
		return false
	}
	if err := c.validate.Struct(dst); err != nil {
		metrics.RealtimeDroppedTotal.WithLabelValues("malformed").Inc()
		c.log.Warn().Err(err).Str("event", env.Event).Msg("realtime payload failed validation")
		return false
	}
	metrics.RealtimeEventsTotal.WithLabelValues(env.Event, "in").Inc()
	return true
}
