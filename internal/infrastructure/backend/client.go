// Package backend is the gateway's client for the storefront REST API. It
// attaches the session's bearer credential per request, decodes the standard
// response envelope, and maps 401 responses to a session-expired error so
// callers can steer the browser back to login.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/velstore/storefront-gateway/internal/api/metrics"
	"github.com/velstore/storefront-gateway/internal/core/domain"
	"github.com/velstore/storefront-gateway/internal/core/ports"
)

const defaultTimeout = 10 * time.Second

// envelope is the backend's uniform response wrapper. Data stays raw until a
// caller-specific decode; the gateway never interprets shapes it does not own.
type envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message,omitempty"`
}

// Client implements ports.Backend over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// NewClient creates a backend API client. A default timeout is applied when
// none is provided.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginData struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	AccessToken string `json:"accessToken"`
}

// Login exchanges credentials for a backend identity. The backend owns
// password verification entirely; the gateway only relays the outcome.
func (c *Client) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	data, err := c.do(ctx, http.MethodPost, "/auth/login", "", loginRequest{Email: email, Password: password}, "login")
	if err != nil {
		return nil, err
	}

	var payload loginData
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	if payload.ID == "" || payload.AccessToken == "" {
		return nil, fmt.Errorf("login response missing identity fields")
	}

	return &ports.LoginResult{
		UserID:      payload.ID,
		Name:        payload.Name,
		Role:        payload.Role,
		AccessToken: payload.AccessToken,
	}, nil
}

type chatData struct {
	ChatID        string    `json:"chatId"`
	LastMessage   string    `json:"lastMessage"`
	LastMessageAt time.Time `json:"lastMessageAt"`
}

// ListChats fetches the user's conversation digests.
func (c *Client) ListChats(ctx context.Context, accessToken string) ([]domain.ChatSummary, error) {
	data, err := c.do(ctx, http.MethodGet, "/chats", accessToken, nil, "list_chats")
	if err != nil {
		return nil, err
	}

	var payload []chatData
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode chats response: %w", err)
	}

	summaries := make([]domain.ChatSummary, 0, len(payload))
	for _, chat := range payload {
		summaries = append(summaries, domain.ChatSummary{
			ChatID:        chat.ChatID,
			LastMessage:   chat.LastMessage,
			LastMessageAt: chat.LastMessageAt,
		})
	}
	return summaries, nil
}

// do performs one backend call and returns the envelope's data payload.
func (c *Client) do(ctx context.Context, method, path, token string, body any, endpoint string) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.BackendRequestDuration.WithLabelValues(endpoint, "error").Observe(time.Since(start).Seconds())
		return nil, fmt.Errorf("backend %s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	metrics.BackendRequestDuration.WithLabelValues(endpoint, statusClass(resp.StatusCode)).Observe(time.Since(start).Seconds())

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		if endpoint == "login" {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, domain.ErrSessionExpired
	case resp.StatusCode >= 500:
		return nil, domain.ErrChatUnavailable
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode backend envelope: %w", err)
	}
	if resp.StatusCode >= 400 || env.Status != "success" {
		c.log.Warn().
			Int("code", resp.StatusCode).
			Str("endpoint", endpoint).
			Str("message", env.Message).
			Msg("backend call rejected")
		return nil, fmt.Errorf("backend %s: %s", endpoint, env.Message)
	}

	return env.Data, nil
}

func statusClass(code int) string {
	switch {
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
