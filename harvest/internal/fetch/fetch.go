// Package fetch implements the HTTP client shared by all source adapters.
//
// Every outcome is classified into a small set of reasons (timeout, status,
// parse, network) so the run log can aggregate failures per source, and all
// requests go through SSRF validation before and during redirects.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hazyhaar/moisson/horosafe"
)

// Failure reasons recorded in the run log.
const (
	ReasonTimeout = "timeout"
	ReasonStatus  = "status"
	ReasonParse   = "parse"
	ReasonNetwork = "network"
)

// Error classifies a failed fetch. StatusCode is zero unless Reason is
// ReasonStatus.
type Error struct {
	Reason     string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.Reason == ReasonStatus {
		return fmt.Sprintf("fetch: http %d", e.StatusCode)
	}
	return fmt.Sprintf("fetch: %s: %v", e.Reason, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Reason extracts the failure classification from err, or ReasonNetwork
// when err carries none.
func Reason(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Reason
	}
	return ReasonNetwork
}

// Config configures the fetcher.
type Config struct {
	Timeout  time.Duration // HTTP timeout. Default: 30s.
	MaxBytes int64         // Max response body size. Default: 10MB.
	// UserAgent sent with requests.
	UserAgent string
	// URLValidator validates URLs before fetch (SSRF prevention).
	// Default: horosafe.ValidateURL.
	URLValidator func(string) error
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = 10 * 1024 * 1024 // 10MB
	}
	if c.UserAgent == "" {
		c.UserAgent = "moisson/1.0"
	}
	if c.URLValidator == nil {
		c.URLValidator = horosafe.ValidateURL
	}
}

// Fetcher performs HTTP GETs with SSRF protection on redirects.
type Fetcher struct {
	client *http.Client
	config Config
}

// New creates a Fetcher.
func New(cfg Config) *Fetcher {
	cfg.defaults()
	validate := cfg.URLValidator
	return &Fetcher{
		client: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("too many redirects (%d)", len(via))
				}
				if err := validate(req.URL.String()); err != nil {
					return fmt.Errorf("redirect blocked (SSRF): %w", err)
				}
				return nil
			},
		},
		config: cfg,
	}
}

// Get retrieves url and returns the body. Non-2xx/3xx statuses, timeouts
// and transport failures all come back as *Error.
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {
	// SSRF: validate before the request, redirects are validated by the client.
	if err := f.config.URLValidator(url); err != nil {
		return nil, &Error{Reason: ReasonNetwork, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{Reason: ReasonNetwork, Err: err}
	}
	req.Header.Set("User-Agent", f.config.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		reason := ReasonNetwork
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			reason = ReasonTimeout
		}
		return nil, &Error{Reason: reason, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return nil, &Error{Reason: ReasonStatus, StatusCode: resp.StatusCode, Err: fmt.Errorf("http %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBytes))
	if err != nil {
		return nil, &Error{Reason: ReasonNetwork, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}

// GetJSON retrieves url and decodes the body into v. Decode failures are
// classified as parse errors.
func (f *Fetcher) GetJSON(ctx context.Context, url string, v any) error {
	body, err := f.Get(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &Error{Reason: ReasonParse, Err: fmt.Errorf("decode json: %w", err)}
	}
	return nil
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
