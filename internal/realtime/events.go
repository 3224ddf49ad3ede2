// Package realtime maintains the gateway's connection to the upstream
// messaging server: one live connection per session credential, typed event
// dispatch, and fire-and-forget room and message operations.
package realtime

import (
	"encoding/json"

	"github.com/velstore/storefront-gateway/internal/core/domain"
)

// Client→server wire events.
const (
	EventChatJoin    = "chat:join"
	EventChatLeave   = "chat:leave"
	EventMessageSend = "message:send"
	EventTypingStart = "typing:start"
	EventTypingStop  = "typing:stop"
	EventMessageRead = "message:read"
)

// Server→client wire events.
const (
	EventMessageNew   = "message:new"
	EventTypingUpdate = "typing:update"
	EventMessagesRead = "messages:read"
	EventChatUpdated  = "chat:updated"
)

// envelope frames every message on the wire as {event, data}.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// outEnvelope is the outbound counterpart; Data is marshalled in place.
type outEnvelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// SendMessageInput is the caller-facing shape for sending a chat message.
// Attachment fields are all-or-nothing: the context is attached to the wire
// payload only when both type and id are present.
type SendMessageInput struct {
	ChatID         string
	Message        string
	AttachmentType string
	AttachmentID   string
}

// outgoingMessage is the message:send wire payload. Attachments is always
// present (empty today; the upload pipeline populates it server-side).
type outgoingMessage struct {
	ChatID      string   `json:"chatId"`
	Text        string   `json:"text"`
	Attachments []string `json:"attachments"`
	ContextType string   `json:"contextType,omitempty"`
	ContextID   string   `json:"contextId,omitempty"`
}

// roomIntent is the chat:join / chat:leave / message:read payload.
type roomIntent struct {
	ChatID string `json:"chatId"`
}

// typingIntent is the typing:start / typing:stop payload.
type typingIntent struct {
	ChatID string `json:"chatId"`
}

// NewMessage is the message:new payload: a freshly delivered chat message.
type NewMessage struct {
	ChatID  string             `json:"chatId" validate:"required"`
	Message domain.ChatMessage `json:"message" validate:"required"`
}

// ChatUpdated is the chat:updated payload: the digest refresh for one
// conversation.
type ChatUpdated struct {
	ChatID        string `json:"chatId" validate:"required"`
	LastMessage   string `json:"lastMessage"`
	LastMessageAt string `json:"lastMessageAt"`
}
