package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/velstore/storefront-gateway/internal/api/middleware"
	"github.com/velstore/storefront-gateway/internal/core/ports"
)

type ChatHandler struct {
	chats ports.ChatService
}

func NewChatHandler(chats ports.ChatService) *ChatHandler {
	return &ChatHandler{chats: chats}
}

// Summary returns the user's conversation digests, cache first.
//
// @Summary      Conversation inbox
// @Tags         chats
// @Produce      json
// @Success      200  {array}   domain.ChatSummary
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/chats/summary [get]
func (h *ChatHandler) Summary(c echo.Context) error {
	sess := middleware.SessionFromContext(c)
	if sess == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}

	summaries, err := h.chats.Summaries(c.Request().Context(), sess)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summaries)
}
