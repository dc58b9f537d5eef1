package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// mockChannel is a test implementation of the Channel interface
type mockChannel struct {
	name        string
	enabled     bool
	sendError   error
	panicOnSend bool
	sendCalled  int
	mu          sync.Mutex
	done        chan struct{}
}

func (m *mockChannel) Name() string    { return m.name }
func (m *mockChannel) IsEnabled() bool { return m.enabled }

func (m *mockChannel) Send(ctx context.Context, summary *RunSummary) error {
	m.mu.Lock()
	m.sendCalled++
	shouldPanic := m.panicOnSend
	m.mu.Unlock()
	if m.done != nil {
		defer func() { m.done <- struct{}{} }()
	}
	if shouldPanic {
		panic("mock panic in Send()")
	}
	return m.sendError
}

func (m *mockChannel) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sendCalled
}

func summaryFixture() *RunSummary {
	now := time.Date(2026, 8, 28, 6, 0, 0, 0, time.UTC)
	return &RunSummary{
		StartedAt:  now,
		FinishedAt: now.Add(90 * time.Second),
		Success:    true,
		Sources: []SourceResult{
			{Source: "forum", Listed: 40, Inserted: 12, Duplicated: 5, DroppedIrrelevant: 23},
			{Source: "bulletin", Listed: 3, Inserted: 2, Duplicated: 1},
		},
	}
}

func TestNotifyRunSummaryDispatchesToEnabledChannels(t *testing.T) {
	enabled := &mockChannel{name: "email", enabled: true, done: make(chan struct{}, 1)}
	disabled := &mockChannel{name: "slack", enabled: false}

	svc := NewService([]Channel{enabled, disabled}, 5)
	if err := svc.NotifyRunSummary(context.Background(), summaryFixture()); err != nil {
		t.Fatalf("NotifyRunSummary err=%v", err)
	}

	select {
	case <-enabled.done:
	case <-time.After(2 * time.Second):
		t.Fatal("enabled channel never received the summary")
	}
	if disabled.calls() != 0 {
		t.Error("disabled channel must be skipped")
	}
}

func TestNotifyRunSummaryNilSummary(t *testing.T) {
	ch := &mockChannel{name: "email", enabled: true}
	svc := NewService([]Channel{ch}, 5)

	if err := svc.NotifyRunSummary(context.Background(), nil); err != nil {
		t.Fatalf("nil summary must not error, got %v", err)
	}
	if ch.calls() != 0 {
		t.Error("nil summary must not be dispatched")
	}
}

func TestNotifyRunSummarySurvivesChannelPanic(t *testing.T) {
	panicking := &mockChannel{name: "slack", enabled: true, panicOnSend: true, done: make(chan struct{}, 1)}
	svc := NewService([]Channel{panicking}, 5)

	if err := svc.NotifyRunSummary(context.Background(), summaryFixture()); err != nil {
		t.Fatalf("NotifyRunSummary err=%v", err)
	}
	select {
	case <-panicking.done:
	case <-time.After(2 * time.Second):
		t.Fatal("panicking channel never ran")
	}
	// A second dispatch still works: the panic was contained.
	panicking.panicOnSend = false
	if err := svc.NotifyRunSummary(context.Background(), summaryFixture()); err != nil {
		t.Fatalf("second dispatch err=%v", err)
	}
	select {
	case <-panicking.done:
	case <-time.After(2 * time.Second):
		t.Fatal("second dispatch never reached the channel")
	}
}

func TestCircuitBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	failing := &mockChannel{
		name:      "email",
		enabled:   true,
		sendError: errors.New("smtp down"),
		done:      make(chan struct{}, circuitBreakerThreshold+1),
	}
	svc := NewService([]Channel{failing}, 5)

	for i := 0; i < circuitBreakerThreshold; i++ {
		if err := svc.NotifyRunSummary(context.Background(), summaryFixture()); err != nil {
			t.Fatalf("dispatch %d err=%v", i, err)
		}
		select {
		case <-failing.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("dispatch %d never reached the channel", i)
		}
	}

	health := svc.GetChannelHealth()
	if len(health) != 1 || !health[0].CircuitBreakerOpen {
		t.Fatalf("breaker should be open after %d failures, got %+v", circuitBreakerThreshold, health)
	}

	// Further dispatches are dropped without touching the channel.
	before := failing.calls()
	if err := svc.NotifyRunSummary(context.Background(), summaryFixture()); err != nil {
		t.Fatalf("dispatch after open err=%v", err)
	}
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if failing.calls() != before {
		t.Error("open breaker must short-circuit Send")
	}
}

func TestShutdownWaitsForInFlight(t *testing.T) {
	ch := &mockChannel{name: "email", enabled: true, done: make(chan struct{}, 1)}
	svc := NewService([]Channel{ch}, 5)

	if err := svc.NotifyRunSummary(context.Background(), summaryFixture()); err != nil {
		t.Fatalf("NotifyRunSummary err=%v", err)
	}
	<-ch.done

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := svc.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown err=%v", err)
	}
}

func TestGetChannelHealthReflectsConfiguration(t *testing.T) {
	svc := NewService([]Channel{
		&mockChannel{name: "email", enabled: true},
		&mockChannel{name: "slack", enabled: false},
	}, 5)

	health := svc.GetChannelHealth()
	if len(health) != 2 {
		t.Fatalf("want 2 statuses, got %d", len(health))
	}
	for _, h := range health {
		if h.CircuitBreakerOpen {
			t.Errorf("channel %s breaker should start closed", h.Name)
		}
	}
}
