package webhooks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"voiceagent-platform/internal/config"
	"voiceagent-platform/pkg/logger"
)

// Dispatcher posts JSON payloads to the externally hosted automation
// endpoints (number provisioning, bot creation, agent edit, bind/unbind,
// document text extraction).
//
// Rules:
// - Every call carries a hard timeout; timeouts are surfaced as ErrTimeout,
//   distinct from transport errors.
// - Responses are JSON with at least status/message, tolerated if absent
//   (falls back to HTTP-status-derived defaults).
// - No business logic here; callers decide whether a failure is fatal.
type Dispatcher struct {
	cfg    config.WebhookConfig
	client *http.Client
}

func NewDispatcher(cfg config.WebhookConfig) *Dispatcher {
	return &Dispatcher{
		cfg:    cfg,
		client: &http.Client{},
	}
}

var (
	// ErrNotConfigured means the endpoint URL is missing from config.
	// Startup does not block on missing URLs; the gap surfaces here instead.
	ErrNotConfigured = errors.New("webhooks: endpoint not configured")

	// ErrTimeout marks a call aborted by the per-request deadline.
	ErrTimeout = errors.New("webhooks: request timed out")
)

// Response is the tolerant shape of an automation endpoint reply.
type Response struct {
	HTTPStatus int    `json:"-"`
	Status     string `json:"status"`
	Message    string `json:"message"`

	// Text is populated by the document text-extraction endpoint only.
	Text string `json:"text,omitempty"`
}

// OK reports whether the endpoint considered the operation successful.
func (r Response) OK() bool {
	return r.Status != "error" && r.HTTPStatus >= 200 && r.HTTPStatus < 300
}

func (d *Dispatcher) ProvisionNumber(ctx context.Context, payload any) (Response, error) {
	return d.post(ctx, d.cfg.NumberProvisioningURL, d.cfg.ProvisioningTimeout, payload)
}

func (d *Dispatcher) CreateBot(ctx context.Context, payload any) (Response, error) {
	return d.post(ctx, d.cfg.BotCreationURL, d.cfg.Timeout, payload)
}

func (d *Dispatcher) EditAgent(ctx context.Context, payload any) (Response, error) {
	return d.post(ctx, d.cfg.AgentEditURL, d.cfg.Timeout, payload)
}

func (d *Dispatcher) BindNumber(ctx context.Context, payload any) (Response, error) {
	return d.post(ctx, d.cfg.AgentBindURL, d.cfg.Timeout, payload)
}

func (d *Dispatcher) UnbindNumber(ctx context.Context, payload any) (Response, error) {
	return d.post(ctx, d.cfg.AgentUnbindURL, d.cfg.Timeout, payload)
}

// ExtractText sends an uploaded document to the text-extraction endpoint and
// returns the extracted plain text.
func (d *Dispatcher) ExtractText(ctx context.Context, payload any) (string, error) {
	resp, err := d.post(ctx, d.cfg.TextExtractionURL, d.cfg.Timeout, payload)
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		return "", fmt.Errorf("webhooks: text extraction failed: %s", resp.Message)
	}
	return resp.Text, nil
}

func (d *Dispatcher) post(ctx context.Context, url string, timeout time.Duration, payload any) (Response, error) {
	if url == "" {
		return Response{}, ErrNotConfigured
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Response{}, fmt.Errorf("webhooks: marshal payload: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Response{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	res, err := d.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || callCtx.Err() == context.DeadlineExceeded {
			logger.From(ctx).Warn("webhook timed out", "url", url, "elapsed_ms", time.Since(start).Milliseconds())
			return Response{}, ErrTimeout
		}
		return Response{}, fmt.Errorf("webhooks: post %s: %w", url, err)
	}
	defer res.Body.Close()

	out := Response{HTTPStatus: res.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return Response{}, fmt.Errorf("webhooks: read response: %w", err)
	}
	// Tolerate non-JSON and empty bodies.
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	if out.Status == "" {
		if out.HTTPStatus >= 200 && out.HTTPStatus < 300 {
			out.Status = "success"
		} else {
			out.Status = "error"
		}
	}
	if out.Message == "" {
		out.Message = http.StatusText(res.StatusCode)
	}
	return out, nil
}
