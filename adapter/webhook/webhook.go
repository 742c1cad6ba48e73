// Package webhook publishes run-completed events as JSON over HTTP POST.
//
// Network errors, 5xx, 408 and 429 are retried with backoff; any other
// 4xx fails at once. Every attempt of one Publish carries the same
// X-Delivery-ID so receivers can drop duplicates. With a Secret the body
// is signed as X-Signature-256: sha256=<hex hmac>.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nino-chavez/brand-site-sub018/adapter"
	"github.com/nino-chavez/brand-site-sub018/iox"
)

const (
	DefaultTimeout = 10 * time.Second
	DefaultRetries = 3

	// SignatureHeader carries the body HMAC when a secret is configured.
	SignatureHeader = "X-Signature-256"
	// DeliveryHeader identifies one Publish across its retries.
	DeliveryHeader = "X-Delivery-ID"

	// bodySnippet caps how much of a rejected response is kept for the error.
	bodySnippet = 256
)

// Config configures the webhook adapter.
type Config struct {
	URL     string
	Headers map[string]string
	// Secret signs each body with HMAC-SHA256. Empty sends unsigned.
	Secret  string
	Timeout time.Duration
	Retries int
	Backoff adapter.Backoff
}

// Adapter publishes run completion events via HTTP POST.
type Adapter struct {
	config Config
	client *http.Client
}

// New creates a webhook adapter for an http or https URL.
func New(cfg Config) (*Adapter, error) {
	if cfg.URL == "" {
		return nil, errors.New("webhook adapter requires a URL")
	}
	if !strings.HasPrefix(cfg.URL, "http://") && !strings.HasPrefix(cfg.URL, "https://") {
		return nil, fmt.Errorf("webhook URL must be http or https, got %q", cfg.URL)
	}
	if cfg.Retries < 0 {
		return nil, fmt.Errorf("retries must be >= 0, got %d", cfg.Retries)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Adapter{config: cfg, client: &http.Client{Timeout: cfg.Timeout}}, nil
}

// Publish POSTs the event, retrying transient failures.
func (a *Adapter) Publish(ctx context.Context, event *adapter.RunCompletedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("webhook: marshal event: %w", err)
	}
	headers := a.headers(event, body)
	return adapter.Retry(ctx, "webhook", a.config.Retries, a.config.Backoff, permanent, func(ctx context.Context) error {
		return a.post(ctx, headers, body)
	})
}

// headers builds the request headers shared by every attempt. Configured
// headers win over the event headers but never over the signature.
func (a *Adapter) headers(event *adapter.RunCompletedEvent, body []byte) http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("X-Event-Type", event.EventType)
	h.Set("X-Run-ID", event.RunID)
	h.Set("X-Run-Outcome", event.Outcome)
	h.Set(DeliveryHeader, uuid.NewString())
	for k, v := range a.config.Headers {
		h.Set(k, v)
	}
	if a.config.Secret != "" {
		h.Set(SignatureHeader, Sign(a.config.Secret, body))
	}
	return h
}

// Sign returns the X-Signature-256 value for body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	// Body is the start of the response body.
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

func permanent(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return false
	}
	return se.Code >= 400 && se.Code < 500
}

func (a *Adapter) post(ctx context.Context, headers http.Header, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header = headers.Clone()

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer iox.DiscardClose(resp.Body)

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, bodySnippet))
	// Drain the rest so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	return nil
}

// Close releases idle connections.
func (a *Adapter) Close() error {
	a.client.CloseIdleConnections()
	return nil
}

var _ adapter.Adapter = (*Adapter)(nil)
