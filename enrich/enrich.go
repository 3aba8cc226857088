// Package enrich fetches a record's linked page and extracts a readable
// article body.
//
// Extraction first looks for semantic landmarks (<main>, <article>), then
// falls back to text-density scoring over the body, and converts the chosen
// subtree to markdown with a plain-text fallback. Any failure resolves to
// an error the caller maps onto a null fulltext; enrichment never fails a
// run.
package enrich

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"golang.org/x/net/html"

	"github.com/hazyhaar/moisson/horosafe"
)

// ErrEmptyExtraction reports a page that yielded no usable body text.
var ErrEmptyExtraction = errors.New("enrich: no readable content extracted")

// Config configures the extractor.
type Config struct {
	Timeout  time.Duration // HTTP timeout. Default: 25s.
	MaxBytes int64         // Max response body size. Default: 10MB.
	// UserAgent sent with requests. Default: a browser-like string, since
	// many outlets refuse obvious bot agents.
	UserAgent string
	// MinTextLen is the minimum length for an extracted body. Default: 80.
	MinTextLen int
	// URLValidator validates URLs before fetch (SSRF prevention).
	// Default: horosafe.ValidateURL.
	URLValidator func(string) error
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 25 * time.Second
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = 10 * 1024 * 1024
	}
	if c.UserAgent == "" {
		c.UserAgent = "Mozilla/5.0 (compatible; moisson/1.0)"
	}
	if c.MinTextLen <= 0 {
		c.MinTextLen = 80
	}
	if c.URLValidator == nil {
		c.URLValidator = horosafe.ValidateURL
	}
}

// Extractor fetches pages and extracts readable article bodies.
type Extractor struct {
	client    *http.Client
	config    Config
	converter *converter.Converter
}

// New creates an Extractor.
func New(cfg Config) *Extractor {
	cfg.defaults()
	return &Extractor{
		client: &http.Client{Timeout: cfg.Timeout},
		config: cfg,
		converter: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

// Extract fetches url and returns the readable body text. Every failure
// mode (blocked URL, network error, HTTP >= 400, nothing extractable)
// returns an error; the caller records a null fulltext and moves on.
func (e *Extractor) Extract(ctx context.Context, url string) (string, error) {
	if err := e.config.URLValidator(url); err != nil {
		return "", fmt.Errorf("enrich: url blocked: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("enrich: new request: %w", err)
	}
	req.Header.Set("User-Agent", e.config.UserAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("enrich: http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("enrich: http %d", resp.StatusCode)
	}

	body, err := horosafe.LimitedReadAll(resp.Body, e.config.MaxBytes)
	if err != nil {
		return "", fmt.Errorf("enrich: read body: %w", err)
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("enrich: parse html: %w", err)
	}

	content := findContent(doc, e.config.MinTextLen)
	if content == nil {
		return "", ErrEmptyExtraction
	}

	text := e.toMarkdown(renderNode(content.node), url, content.text)
	if len(text) < e.config.MinTextLen {
		return "", ErrEmptyExtraction
	}
	return text, nil
}

// toMarkdown converts extracted HTML to markdown. If conversion fails or
// produces empty output, returns the fallback plain text.
func (e *Extractor) toMarkdown(htmlStr, sourceURL, fallback string) string {
	if htmlStr == "" {
		return fallback
	}
	result, err := e.converter.ConvertString(htmlStr, converter.WithDomain(sourceURL))
	if err != nil || strings.TrimSpace(result) == "" {
		return fallback
	}
	return strings.TrimSpace(result)
}
