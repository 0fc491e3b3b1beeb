package calendar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	ErrInvalidURL = errors.New("calendar url must be an absolute http, https or webcal url")
	ErrFetch      = errors.New("failed to fetch calendar")
	ErrTooLarge   = errors.New("calendar exceeds size limit")
)

const (
	defaultFetchTimeout = 15 * time.Second
	defaultMaxBytes     = 5 << 20
)

// Fetcher retrieves remote calendar documents on behalf of clients that cannot
// fetch them cross-origin.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
}

func NewFetcher(timeout time.Duration, maxBytes int64) *Fetcher {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}

	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
	}
}

// NormalizeURL validates rawURL and rewrites webcal:// to https://.
func NormalizeURL(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", ErrInvalidURL
	}

	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Host == "" {
		return "", ErrInvalidURL
	}

	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
	case "webcal":
		parsed.Scheme = "https"
	default:
		return "", ErrInvalidURL
	}

	return parsed.String(), nil
}

// Fetch downloads the document at rawURL. Non-2xx responses and transport
// failures are reported as ErrFetch.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	target, err := NormalizeURL(rawURL)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ErrFetch, err)
	}
	req.Header.Set("Accept", "text/calendar, text/plain;q=0.9, */*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: upstream status %d", ErrFetch, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", ErrFetch, err)
	}
	if int64(len(body)) > f.maxBytes {
		return "", ErrTooLarge
	}

	return string(body), nil
}
