package tubeauth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"
)

// collectSink records every event it receives.
type collectSink struct {
	mu     sync.Mutex
	events []AuditEvent
}

func (s *collectSink) Emit(_ context.Context, event AuditEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *collectSink) snapshot() []AuditEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]AuditEvent, len(s.events))
	copy(out, s.events)
	return out
}

func TestAuditEventsForLoginAndReuse(t *testing.T) {
	ctx := WithClientIP(context.Background(), "203.0.113.7")
	sink := &collectSink{}

	env := newTestEngine(t, nil)
	// Rebuild with the sink attached.
	engine, err := New().
		WithConfig(testEngineConfig()).
		WithRedis(env.redis).
		WithUserProvider(env.users).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	env.seedUser(t, "correct-horse-battery-staple")

	_, pair, err := engine.Login(ctx, "alice", "correct-horse-battery-staple")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if _, err := engine.Refresh(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if _, err := engine.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrTokenReused) {
		t.Fatalf("err = %v, want ErrTokenReused", err)
	}

	// Close drains the dispatcher before returning.
	engine.Close()

	got := map[string]AuditEvent{}
	for _, ev := range sink.snapshot() {
		got[ev.EventType] = ev
	}

	login, ok := got["login_success"]
	if !ok {
		t.Fatal("missing login_success event")
	}
	if login.UserID != "u-alice" || !login.Success || login.IP != "203.0.113.7" {
		t.Errorf("login_success event = %+v", login)
	}

	if _, ok := got["refresh_success"]; !ok {
		t.Error("missing refresh_success event")
	}

	reuse, ok := got["refresh_reuse_detected"]
	if !ok {
		t.Fatal("missing refresh_reuse_detected event")
	}
	if reuse.Success || reuse.UserID != "u-alice" {
		t.Errorf("refresh_reuse_detected event = %+v", reuse)
	}
}

func TestJSONWriterSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	sink.Emit(context.Background(), AuditEvent{
		Timestamp: time.Now(),
		EventType: "login_success",
		UserID:    "u-alice",
		Success:   true,
	})

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("sink output is not JSON: %v", err)
	}
	if decoded["event_type"] != "login_success" {
		t.Errorf("event_type = %v", decoded["event_type"])
	}
}

func TestDispatcherDropIfFull(t *testing.T) {
	block := make(chan struct{})
	slow := &blockingSink{release: block}

	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 1, DropIfFull: true}, slow)

	// First event occupies the worker, second fills the buffer, the rest
	// must be dropped without blocking.
	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: "login_failure"})
	}

	if d.Dropped() == 0 {
		t.Error("expected dropped events under backpressure")
	}

	close(block)
	d.Close()
}

type blockingSink struct {
	release chan struct{}
}

func (s *blockingSink) Emit(context.Context, AuditEvent) {
	<-s.release
}

func TestDispatcherDisabled(t *testing.T) {
	d := newAuditDispatcher(AuditConfig{Enabled: false}, &collectSink{})
	if d != nil {
		t.Fatal("disabled dispatcher must be nil")
	}
	// Nil dispatcher methods are safe.
	d.Emit(context.Background(), AuditEvent{})
	d.Close()
	if d.Dropped() != 0 {
		t.Error("nil dispatcher Dropped must be 0")
	}
}
