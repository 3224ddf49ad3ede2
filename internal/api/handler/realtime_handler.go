package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/velstore/storefront-gateway/internal/api/metrics"
	"github.com/velstore/storefront-gateway/internal/api/middleware"
	"github.com/velstore/storefront-gateway/internal/core/domain"
	"github.com/velstore/storefront-gateway/internal/core/ports"
	"github.com/velstore/storefront-gateway/internal/realtime"
)

// RealtimeHandler bridges one browser WebSocket to the upstream messaging
// server. Each accepted connection owns its realtime.Manager: the manager is
// created when the session's page connects and disposed when it goes away,
// so credential-swap teardown is tied to an explicit lifecycle.
type RealtimeHandler struct {
	upstreamURL string
	cache       ports.ChatCache
	log         zerolog.Logger
	upgrader    websocket.Upgrader
}

func NewRealtimeHandler(upstreamURL string, cache ports.ChatCache, log zerolog.Logger) *RealtimeHandler {
	return &RealtimeHandler{
		upstreamURL: upstreamURL,
		cache:       cache,
		log:         log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// wsCommand is a browser→gateway frame. The payload stays raw until the
// event name selects a schema.
type wsCommand struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type roomCommand struct {
	ChatID string `json:"chatId" validate:"required"`
}

type sendCommand struct {
	ChatID         string `json:"chatId" validate:"required"`
	Message        string `json:"message" validate:"required"`
	AttachmentType string `json:"attachmentType"`
	AttachmentID   string `json:"attachmentId"`
}

// Serve upgrades the browser connection and relays chat traffic both ways
// until either side drops.
//
// @Summary      Realtime chat relay
// @Tags         chats
// @Router       /ws [get]
func (h *RealtimeHandler) Serve(c echo.Context) error {
	sess := middleware.SessionFromContext(c)
	if sess == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	manager := realtime.NewManager(h.upstreamURL, h.log)
	defer manager.Disconnect()

	client, err := manager.Initialize(c.Request().Context(), sess.AccessToken)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", sess.UserID).Msg("upstream realtime connect failed")
		_ = conn.WriteJSON(map[string]string{"event": "error", "message": "chat unavailable"})
		return nil
	}

	var writeMu sync.Mutex
	relay := func(event string, data any) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := conn.WriteJSON(map[string]any{"event": event, "data": data}); err != nil {
			h.log.Debug().Err(err).Str("event", event).Msg("browser relay write failed")
		}
	}

	h.subscribe(c.Request().Context(), client, sess, relay)

	// Browser command loop. Exiting tears the whole bridge down.
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return nil
		}

		var cmd wsCommand
		if err := json.Unmarshal(raw, &cmd); err != nil {
			h.log.Debug().Err(err).Msg("browser frame rejected")
			continue
		}
		h.dispatch(c, client, cmd)
	}
}

// subscribe wires the upstream event handlers for one bridge. The context is
// the browser request's: handlers only fire while the relay loop is alive.
func (h *RealtimeHandler) subscribe(ctx context.Context, client *realtime.Client, sess *domain.Session, relay func(string, any)) {
	client.OnNewMessage(func(m realtime.NewMessage) {
		seen, err := h.cache.MarkDelivered(ctx, m.ChatID, m.Message.ID)
		if err != nil {
			h.log.Warn().Err(err).Str("chat_id", m.ChatID).Msg("delivery dedup check failed")
		}
		if seen {
			metrics.RealtimeDroppedTotal.WithLabelValues("duplicate").Inc()
			return
		}
		relay(realtime.EventMessageNew, m)
	})

	client.OnTypingUpdate(func(u domain.TypingUpdate) {
		relay(realtime.EventTypingUpdate, u)
	})

	client.OnMessagesRead(func(r domain.ReadReceipt) {
		relay(realtime.EventMessagesRead, r)
	})

	client.OnChatUpdated(func(u realtime.ChatUpdated) {
		summary := domain.ChatSummary{ChatID: u.ChatID, LastMessage: u.LastMessage}
		if ts, err := time.Parse(time.RFC3339, u.LastMessageAt); err == nil {
			summary.LastMessageAt = ts
		}
		if err := h.cache.UpsertSummary(ctx, sess.UserID, summary); err != nil {
			h.log.Warn().Err(err).Str("chat_id", u.ChatID).Msg("chat summary refresh failed")
		}
		relay(realtime.EventChatUpdated, u)
	})
}

// dispatch maps one validated browser command onto the upstream client.
// Unknown or malformed commands are dropped; the relay favors resilience
// over strictness on this path.
func (h *RealtimeHandler) dispatch(c echo.Context, client *realtime.Client, cmd wsCommand) {
	switch cmd.Event {
	case realtime.EventChatJoin, realtime.EventChatLeave, realtime.EventMessageRead,
		realtime.EventTypingStart, realtime.EventTypingStop:
		var room roomCommand
		if err := json.Unmarshal(cmd.Data, &room); err != nil || c.Validate(&room) != nil {
			return
		}
		switch cmd.Event {
		case realtime.EventChatJoin:
			client.JoinChat(room.ChatID)
		case realtime.EventChatLeave:
			client.LeaveChat(room.ChatID)
		case realtime.EventMessageRead:
			client.MarkRead(room.ChatID)
		case realtime.EventTypingStart:
			client.StartTyping(room.ChatID)
		case realtime.EventTypingStop:
			client.StopTyping(room.ChatID)
		}

	case realtime.EventMessageSend:
		var send sendCommand
		if err := json.Unmarshal(cmd.Data, &send); err != nil || c.Validate(&send) != nil {
			return
		}
		client.SendMessage(realtime.SendMessageInput{
			ChatID:         send.ChatID,
			Message:        send.Message,
			AttachmentType: send.AttachmentType,
			AttachmentID:   send.AttachmentID,
		})

	default:
		h.log.Debug().Str("event", cmd.Event).Msg("browser command ignored")
	}
}
