package authcore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type memorySink struct {
	mu     sync.Mutex
	events []AuditEvent
}

func (s *memorySink) Emit(_ context.Context, event AuditEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *memorySink) snapshot() []AuditEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]AuditEvent, len(s.events))
	copy(out, s.events)
	return out
}

func TestDisabledDispatcherIsNil(t *testing.T) {
	d := newAuditDispatcher(AuditConfig{Enabled: false}, &memorySink{})
	if d != nil {
		t.Fatal("disabled dispatcher is not nil")
	}

	// Nil-safe surface.
	d.Emit(context.Background(), AuditEvent{EventType: "login"})
	if d.Dropped() != 0 {
		t.Fatal("nil dispatcher dropped events")
	}
	d.Close()
}

func TestDispatcherDeliversAndDrainsOnClose(t *testing.T) {
	sink := &memorySink{}
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 16}, sink)

	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: "login", Success: true})
	}
	d.Close()

	if got := len(sink.snapshot()); got != 10 {
		t.Fatalf("delivered %d events, want 10", got)
	}

	// Emit after Close is a no-op.
	d.Emit(context.Background(), AuditEvent{EventType: "late"})
	if got := len(sink.snapshot()); got != 10 {
		t.Fatalf("post-close emit delivered, total %d", got)
	}
}

type blockingSink struct {
	release <-chan struct{}
}

func (s *blockingSink) Emit(context.Context, AuditEvent) {
	<-s.release
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	block := make(chan struct{})
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 1, DropIfFull: true}, &blockingSink{release: block})

	// The worker blocks on the first event, the buffer holds one more,
	// and the rest are dropped on the spot.
	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: "login"})
	}

	deadline := time.Now().Add(time.Second)
	for d.Dropped() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if d.Dropped() == 0 {
		t.Fatal("no events dropped with a full buffer")
	}

	close(block)
	d.Close()
}

func TestChannelSink(t *testing.T) {
	sink := NewChannelSink(4)
	sink.Emit(context.Background(), AuditEvent{EventType: "logout"})

	select {
	case event := <-sink.Events():
		if event.EventType != "logout" {
			t.Fatalf("event type = %q", event.EventType)
		}
	default:
		t.Fatal("no event in channel")
	}
}

func TestJSONWriterSinkWritesOneLinePerEvent(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	sink.Emit(context.Background(), AuditEvent{EventType: "login", UserID: "user-1", Success: true})
	sink.Emit(context.Background(), AuditEvent{EventType: "logout", UserID: "user-1", Success: true})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("wrote %d lines, want 2", len(lines))
	}

	var event AuditEvent
	if err := json.Unmarshal([]byte(lines[0]), &event); err != nil {
		t.Fatalf("line is not JSON: %v", err)
	}
	if event.EventType != "login" || event.UserID != "user-1" {
		t.Fatalf("decoded event mismatch: %+v", event)
	}
}

func TestEngineEmitsAuditTrail(t *testing.T) {
	sink := NewChannelSink(64)
	engine, err := New().WithSecret(testSecret).WithAuditSink(sink).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	ctx := context.Background()

	user := registerTestUser(t, engine)
	if _, err := engine.Login(ctx, LoginRequest{Identity: testEmail, Password: "Wrong#Pass39"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := engine.Login(ctx, LoginRequest{Identity: testEmail, Password: testPassword}); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	engine.Close() // drains the dispatcher

	byType := make(map[string][]AuditEvent)
	for {
		select {
		case event := <-sink.Events():
			byType[event.EventType] = append(byType[event.EventType], event)
			continue
		default:
		}
		break
	}

	registers := byType["register"]
	if len(registers) != 1 || !registers[0].Success || registers[0].UserID != user.ID {
		t.Fatalf("register events = %+v", registers)
	}

	logins := byType["login"]
	if len(logins) != 2 {
		t.Fatalf("got %d login events, want 2", len(logins))
	}
	if logins[0].Success || logins[0].Error == "" {
		t.Fatalf("failed login event = %+v", logins[0])
	}
	if !logins[1].Success || logins[1].SessionID == "" {
		t.Fatalf("successful login event = %+v", logins[1])
	}
}
