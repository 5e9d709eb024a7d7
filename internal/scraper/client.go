package scraper

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// Client fetches HTML pages. Timeouts and cancellation are its business;
// callers get a *TransportError for anything that goes wrong.
type Client struct {
	HTTP      *http.Client
	UserAgent string
	logger    *slog.Logger
}

func NewClient(timeout time.Duration, userAgent string, logger *slog.Logger) *Client {
	return &Client{
		HTTP: &http.Client{
			Timeout: timeout,
		},
		UserAgent: userAgent,
		logger:    orDiscard(logger),
	}
}

// Document GETs url and parses the body as HTML, converting it to UTF-8
// according to the response's declared charset.
func (c *Client) Document(ctx context.Context, url string) (*goquery.Document, error) {
	c.logger.Debug("fetching page", "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, &TransportError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	return doc, nil
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return logger
}
