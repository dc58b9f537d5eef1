package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSlackChannelSend(t *testing.T) {
	var payload map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &payload)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ch := NewSlackChannel(SlackConfig{Enabled: true, WebhookURL: srv.URL}, srv.Client())
	if err := ch.Send(context.Background(), summaryFixture()); err != nil {
		t.Fatalf("Send err=%v", err)
	}
	if !strings.Contains(payload["text"], "[condo-radar SUCCESS]") {
		t.Errorf("webhook text missing headline: %q", payload["text"])
	}
}

func TestSlackChannelSendFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ch := NewSlackChannel(SlackConfig{Enabled: true, WebhookURL: srv.URL}, srv.Client())
	if err := ch.Send(context.Background(), summaryFixture()); err == nil {
		t.Fatal("expected error on 500 response")
	}
}

func TestSlackChannelDisabled(t *testing.T) {
	ch := NewSlackChannel(SlackConfig{Enabled: false}, nil)
	if ch.IsEnabled() {
		t.Error("channel without webhook must report disabled")
	}
	if err := ch.Send(context.Background(), summaryFixture()); err != ErrChannelDisabled {
		t.Errorf("want ErrChannelDisabled, got %v", err)
	}
}

func TestEmailChannelEnabledGate(t *testing.T) {
	tests := []struct {
		name string
		cfg  EmailConfig
		want bool
	}{
		{"fully configured", EmailConfig{Enabled: true, Host: "smtp.test", From: "radar@test", To: []string{"ops@test"}}, true},
		{"disabled flag", EmailConfig{Enabled: false, Host: "smtp.test", From: "radar@test", To: []string{"ops@test"}}, false},
		{"missing host", EmailConfig{Enabled: true, From: "radar@test", To: []string{"ops@test"}}, false},
		{"no recipients", EmailConfig{Enabled: true, Host: "smtp.test", From: "radar@test"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewEmailChannel(tt.cfg).IsEnabled(); got != tt.want {
				t.Errorf("IsEnabled() = %v, want %v", got, tt.want)
			}
		})
	}
}
