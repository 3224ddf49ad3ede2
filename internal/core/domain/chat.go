package domain

import (
	"errors"
	"time"
)

var ErrChatUnavailable = errors.New("chat backend unavailable")

// ChatMessage is a single message inside a conversation, as delivered by the
// messaging server. Context fields tie a message to a storefront entity
// (an order, a product review dispute, etc.).
type ChatMessage struct {
	ID          string    `json:"id" validate:"required"`
	ChatID      string    `json:"chatId" validate:"required"`
	SenderID    string    `json:"senderId"`
	SenderName  string    `json:"senderName,omitempty"`
	Text        string    `json:"text"`
	ContextType string    `json:"contextType,omitempty"`
	ContextID   string    `json:"contextId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ChatSummary is the per-conversation digest shown in the inbox list.
type ChatSummary struct {
	ChatID        string    `json:"chatId"`
	LastMessage   string    `json:"lastMessage"`
	LastMessageAt time.Time `json:"lastMessageAt"`
}

// TypingUpdate signals that a participant started or stopped typing.
type TypingUpdate struct {
	ChatID   string `json:"chatId" validate:"required"`
	UserID   string `json:"userId" validate:"required"`
	UserName string `json:"userName"`
	IsTyping bool   `json:"isTyping"`
}

// ReadReceipt signals that a participant has read a conversation.
type ReadReceipt struct {
	ChatID string `json:"chatId" validate:"required"`
	UserID string `json:"userId" validate:"required"`
}
