package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxBody is the largest request body healthchecks.io keeps for a ping.
const maxBody = 100_000

// Healthchecks pings a healthchecks.io check: /start when a warm-up begins,
// the bare URL on success and /fail with the run summary otherwise.
type Healthchecks struct {
	Client    *http.Client
	PingURL   string
	UserAgent string
}

func NewHealthchecks(pingURL, userAgent string) *Healthchecks {
	return &Healthchecks{
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
		PingURL:   strings.TrimRight(strings.TrimSpace(pingURL), "/"),
		UserAgent: userAgent,
	}
}

func (h *Healthchecks) Name() string { return "healthchecks" }

func (h *Healthchecks) Start(ctx context.Context) error {
	return h.ping(ctx, "/start", "")
}

func (h *Healthchecks) Finish(ctx context.Context, r Report) error {
	suffix := ""
	if !r.OK {
		suffix = "/fail"
	}
	return h.ping(ctx, suffix, r.String())
}

func (h *Healthchecks) ping(ctx context.Context, suffix, body string) error {
	if h == nil || h.Client == nil || h.PingURL == "" {
		return nil
	}

	method := http.MethodHead
	var reader io.Reader
	if body != "" {
		method = http.MethodPost
		if len(body) > maxBody {
			body = body[:maxBody]
		}
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.PingURL+suffix, reader)
	if err != nil {
		return err
	}
	if h.UserAgent != "" {
		req.Header.Set("User-Agent", h.UserAgent)
	}
	if reader != nil {
		req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	}

	resp, err := h.Client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("healthchecks: unexpected status %s", resp.Status)
	}
	return nil
}
