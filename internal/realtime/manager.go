package realtime

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

var (
	ErrEmptyCredential = errors.New("realtime: empty credential")
	ErrUninitialized   = errors.New("realtime: connection not initialized")
)

// Manager owns at most one live messaging connection per session. It is an
// explicit object constructed at session start and disposed at session end;
// swapping the credential is a visible teardown-then-dial transition, not a
// hidden package-level side effect.
type Manager struct {
	url string
	log zerolog.Logger

	mu     sync.Mutex
	client *Client
}

func NewManager(url string, log zerolog.Logger) *Manager {
	return &Manager{url: url, log: log}
}

// Initialize returns the connection for the given credential.
//
//   - Empty credential: ErrEmptyCredential.
//   - Same credential, live connection: the existing client, untouched.
//   - Same credential, dead connection: the same client after a redial.
//   - Different credential: the old client loses all its listeners and is
//     closed before a fresh connection is dialed.
func (m *Manager) Initialize(ctx context.Context, credential string) (*Client, error) {
	if credential == "" {
		return nil, ErrEmptyCredential
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client != nil {
		if m.client.Credential() == credential {
			if m.client.IsConnected() {
				return m.client, nil
			}
			err := m.client.Connect(ctx)
			if err == nil {
				return m.client, nil
			}
			if !errors.Is(err, ErrClientClosed) {
				return nil, err
			}
			// Closed client under the same credential: replace it.
		} else {
			m.log.Info().Msg("realtime credential changed, replacing connection")
		}
		m.client.RemoveAllListeners()
		m.client.Close()
		m.client = nil
	}

	client := NewClient(m.url, credential, m.log)
	if err := client.Connect(ctx); err != nil {
		return nil, err
	}
	m.client = client

	return client, nil
}

// Socket returns the current connection handle regardless of live/dead
// state; callers check IsConnected separately. Calling this before any
// successful Initialize is a programming error.
func (m *Manager) Socket() (*Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client == nil {
		return nil, ErrUninitialized
	}
	return m.client, nil
}

// Disconnect tears down the current connection, its listeners, and the
// stored credential. Safe to call when nothing is connected.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client == nil {
		return
	}
	m.client.RemoveAllListeners()
	m.client.Close()
	m.client = nil
}

// IsConnected reports whether a live connection exists. Never errors.
func (m *Manager) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.client != nil && m.client.IsConnected()
}
