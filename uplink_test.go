package uplink

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"
)

var testSecrets = Secrets{User: "u-secret", Contributor: "c-secret", Operator: "o-secret"}

func seededStore() *MemoryStore {
	st := NewMemoryStore()
	st.PutWebsite(Website{ID: "w-1", OwnerID: "u-1"})
	st.PutMonitor(Monitor{ID: "m-1", WebsiteID: "w-1", Status: "up", Uptime: 100})
	return st
}

func TestNew_RequiresStore(t *testing.T) {
	_, err := New(WithSecrets(testSecrets))
	if err == nil || !strings.Contains(err.Error(), "data store") {
		t.Fatalf("New() error = %v, want data store requirement", err)
	}
}

func TestNew_RequiresSecrets(t *testing.T) {
	_, err := New(WithStore(seededStore()))
	if err == nil || !strings.Contains(err.Error(), "secret") {
		t.Fatalf("New() error = %v, want secret requirement", err)
	}
}

func TestNew_OptionValidation(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"nil store", WithStore(nil)},
		{"empty secrets", WithSecrets(Secrets{})},
		{"negative port", WithPort(-1)},
		{"huge port", WithPort(70000)},
		{"nil logger", WithLogger(nil)},
		{"empty event name", WithEventHandler("", nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(WithStore(seededStore()), WithSecrets(testSecrets), tt.opt)
			if err == nil {
				t.Error("New() error = nil, want validation error")
			}
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	gw, err := New(WithStore(seededStore()), WithSecrets(testSecrets))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if gw.Port() != defaultPort {
		t.Errorf("Port() = %d, want %d", gw.Port(), defaultPort)
	}
	if gw.ConnectionCount() != 0 {
		t.Errorf("ConnectionCount() = %d, want 0", gw.ConnectionCount())
	}
}

func TestGateway_BroadcastBeforeStart(t *testing.T) {
	gw, err := New(WithStore(seededStore()), WithSecrets(testSecrets))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// no connections yet: zero deliveries, no panic
	if n := gw.BroadcastMonitorEvent("m-1", map[string]any{"status": "down"}); n != 0 {
		t.Errorf("BroadcastMonitorEvent() = %d, want 0", n)
	}
	if n := gw.BroadcastAlert("m-1", map[string]any{"status": "down"}); n != 0 {
		t.Errorf("BroadcastAlert() = %d, want 0", n)
	}
}

func TestGateway_IsOnline(t *testing.T) {
	gw, err := New(WithStore(seededStore()), WithSecrets(testSecrets))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if gw.IsOnline(DomainUser, "u-1") {
		t.Error("IsOnline() = true with no connections")
	}
}

func TestGateway_StartStopsOnCancelledContext(t *testing.T) {
	gw, err := New(
		WithStore(seededStore()),
		WithSecrets(testSecrets),
		WithPort(0),
		WithLogger(slog.Default()),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- gw.Start(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() error = %v, want nil on cancelled context", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Start() did not return after context cancellation")
	}
}

func TestWithEventHandler_RegistersBeforeStart(t *testing.T) {
	gw, err := New(
		WithStore(seededStore()),
		WithSecrets(testSecrets),
		WithEventHandler("ping", func(_ context.Context, _ Conn, _ json.RawMessage) (any, error) {
			return "pong", nil
		}),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// registration through the gateway is valid before Start too
	gw.RegisterEvent("other", func(_ context.Context, _ Conn, _ json.RawMessage) (any, error) {
		return nil, nil
	})
}
