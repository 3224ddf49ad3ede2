package realtime

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestManager_Initialize_EmptyCredential(t *testing.T) {
	m := NewManager("ws://127.0.0.1:0", zerolog.Nop())
	if _, err := m.Initialize(context.Background(), ""); !errors.Is(err, ErrEmptyCredential) {
		t.Fatalf("expected ErrEmptyCredential, got %v", err)
	}
}

func TestManager_Socket_Uninitialized(t *testing.T) {
	m := NewManager("ws://127.0.0.1:0", zerolog.Nop())
	if _, err := m.Socket(); !errors.Is(err, ErrUninitialized) {
		t.Fatalf("expected ErrUninitialized, got %v", err)
	}
}

func TestManager_Initialize_IdempotentForSameCredential(t *testing.T) {
	cs := newChatServer(t)
	m := NewManager(cs.url(), zerolog.Nop())
	t.Cleanup(m.Disconnect)

	first, err := m.Initialize(context.Background(), "cred-a")
	if err != nil {
		t.Fatalf("first Initialize: %v", err)
	}
	second, err := m.Initialize(context.Background(), "cred-a")
	if err != nil {
		t.Fatalf("second Initialize: %v", err)
	}

	if first != second {
		t.Fatalf("same credential must reuse the existing connection")
	}
	if cs.dialCount() != 1 {
		t.Fatalf("expected a single upstream dial, got %d", cs.dialCount())
	}
}

func TestManager_Initialize_SwapsCredential(t *testing.T) {
	cs := newChatServer(t)
	m := NewManager(cs.url(), zerolog.Nop())
	t.Cleanup(m.Disconnect)

	old, err := m.Initialize(context.Background(), "cred-a")
	if err != nil {
		t.Fatalf("Initialize cred-a: %v", err)
	}

	leaked := make(chan struct{}, 1)
	old.OnNewMessage(func(NewMessage) { leaked <- struct{}{} })

	fresh, err := m.Initialize(context.Background(), "cred-b")
	if err != nil {
		t.Fatalf("Initialize cred-b: %v", err)
	}

	if fresh == old {
		t.Fatalf("credential change must produce a new connection")
	}
	if old.IsConnected() {
		t.Fatalf("old connection must be closed on credential change")
	}
	if !fresh.IsConnected() {
		t.Fatalf("new connection should be live")
	}
	if cs.dialCount() != 2 {
		t.Fatalf("expected two upstream dials, got %d", cs.dialCount())
	}

	// The old client's listeners were unregistered before teardown.
	cs.push(t, EventMessageNew, NewMessage{ChatID: "c1"})
	select {
	case <-leaked:
		t.Fatalf("listener on the replaced client leaked")
	case <-time.After(200 * time.Millisecond):
	}

	cs.mu.Lock()
	auth := cs.lastAuth
	cs.mu.Unlock()
	if auth != "Bearer cred-b" {
		t.Fatalf("new connection should carry the new credential, got %q", auth)
	}
}

func TestManager_Socket_ReturnsHandleRegardlessOfState(t *testing.T) {
	cs := newChatServer(t)
	m := NewManager(cs.url(), zerolog.Nop())

	client, err := m.Initialize(context.Background(), "cred-a")
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	client.Close()

	handle, err := m.Socket()
	if err != nil {
		t.Fatalf("Socket after close: %v", err)
	}
	if handle != client {
		t.Fatalf("expected the same handle")
	}
	if handle.IsConnected() {
		t.Fatalf("handle should report dead state")
	}
	m.Disconnect()
}

func TestManager_Disconnect_Idempotent(t *testing.T) {
	cs := newChatServer(t)
	m := NewManager(cs.url(), zerolog.Nop())

	if _, err := m.Initialize(context.Background(), "cred-a"); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	m.Disconnect()
	m.Disconnect() // safe when already disconnected

	if m.IsConnected() {
		t.Fatalf("manager still connected after Disconnect")
	}
	if _, err := m.Socket(); !errors.Is(err, ErrUninitialized) {
		t.Fatalf("Socket after Disconnect should be uninitialized, got %v", err)
	}
}

func TestManager_IsConnected_NeverErrors(t *testing.T) {
	m := NewManager("ws://127.0.0.1:0", zerolog.Nop())
	if m.IsConnected() {
		t.Fatalf("fresh manager should not report connected")
	}

	cs := newChatServer(t)
	m = NewManager(cs.url(), zerolog.Nop())
	t.Cleanup(m.Disconnect)
	if _, err := m.Initialize(context.Background(), "cred-a"); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if !m.IsConnected() {
		t.Fatalf("expected connected after Initialize")
	}
}
