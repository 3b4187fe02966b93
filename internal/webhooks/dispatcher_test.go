package webhooks

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"voiceagent-platform/internal/config"
)

func TestPost_ParsesStatusAndMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected json content type, got %q", ct)
		}
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`{"status":"success","message":"bot created"}`))
	}))
	defer srv.Close()

	d := NewDispatcher(config.WebhookConfig{BotCreationURL: srv.URL, Timeout: 5 * time.Second})
	resp, err := d.CreateBot(context.Background(), map[string]string{"agent_id": "a1"})
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if !resp.OK() || resp.Message != "bot created" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestPost_MissingBodyFallsBackToHTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(204)
	}))
	defer srv.Close()

	d := NewDispatcher(config.WebhookConfig{AgentBindURL: srv.URL, Timeout: 5 * time.Second})
	resp, err := d.BindNumber(context.Background(), map[string]string{"agent_id": "a1"})
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if !resp.OK() || resp.Status != "success" {
		t.Fatalf("expected HTTP-derived success, got %+v", resp)
	}
}

func TestPost_Non2xxIsNotOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	d := NewDispatcher(config.WebhookConfig{AgentUnbindURL: srv.URL, Timeout: 5 * time.Second})
	resp, err := d.UnbindNumber(context.Background(), map[string]string{"agent_id": "a1"})
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if resp.OK() || resp.Status != "error" {
		t.Fatalf("expected error status, got %+v", resp)
	}
}

func TestPost_TimeoutIsDistinguished(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	d := NewDispatcher(config.WebhookConfig{AgentEditURL: srv.URL, Timeout: 20 * time.Millisecond})
	_, err := d.EditAgent(context.Background(), map[string]string{"agent_id": "a1"})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestPost_MissingURLIsNotConfigured(t *testing.T) {
	d := NewDispatcher(config.WebhookConfig{Timeout: time.Second})
	_, err := d.CreateBot(context.Background(), nil)
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestExtractText_ReturnsText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"success","text":"Acme sells widgets."}`))
	}))
	defer srv.Close()

	d := NewDispatcher(config.WebhookConfig{TextExtractionURL: srv.URL, Timeout: 5 * time.Second})
	text, err := d.ExtractText(context.Background(), map[string]string{"file_url": "https://x/doc.pdf"})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if text != "Acme sells widgets." {
		t.Fatalf("unexpected text %q", text)
	}
}
