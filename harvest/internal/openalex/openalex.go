// Package openalex pages through the OpenAlex works API.
//
// Results are filtered server-side on full-text search plus a publication
// date window, and fetched page by page until the reported total is
// exhausted.
package openalex

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the production works endpoint.
const DefaultBaseURL = "https://api.openalex.org/works"

// Work is one OpenAlex work, reduced to the fields the corpus uses.
type Work struct {
	ID              string    `json:"id"`
	DOI             string    `json:"doi"`
	Title           string    `json:"title"`
	PublicationDate string    `json:"publication_date"`
	FromIndexedDate string    `json:"from_indexed_date"`
	Language        string    `json:"language"`
	PrimaryLocation *Location `json:"primary_location"`
	Concepts        []Concept `json:"concepts"`
}

// Location is a hosting venue of a work.
type Location struct {
	Source *Venue `json:"source"`
}

// Venue is the publication venue of a location.
type Venue struct {
	DisplayName string `json:"display_name"`
	HomepageURL string `json:"homepage_url"`
}

// Concept is one subject tag attached to a work.
type Concept struct {
	DisplayName string  `json:"display_name"`
	Score       float64 `json:"score"`
}

// Date resolves the publication date of the work. Works without a
// publication_date fall back to the date portion of from_indexed_date;
// "" means the API reported neither.
func (w *Work) Date() string {
	if w.PublicationDate != "" {
		return w.PublicationDate
	}
	date, _, _ := strings.Cut(w.FromIndexedDate, "T")
	return date
}

// Link resolves the best public URL of the work: DOI first, then the
// primary venue homepage, then the OpenAlex id itself.
func (w *Work) Link() string {
	if w.DOI != "" {
		return w.DOI
	}
	if w.PrimaryLocation != nil && w.PrimaryLocation.Source != nil && w.PrimaryLocation.Source.HomepageURL != "" {
		return w.PrimaryLocation.Source.HomepageURL
	}
	return w.ID
}

// TopConcepts returns the display names of up to n leading concepts, in
// API order (the API sorts by score).
func (w *Work) TopConcepts(n int) []string {
	if n > len(w.Concepts) {
		n = len(w.Concepts)
	}
	names := make([]string, 0, n)
	for _, c := range w.Concepts[:n] {
		if c.DisplayName != "" {
			names = append(names, c.DisplayName)
		}
	}
	return names
}

type page struct {
	Meta struct {
		Count   int `json:"count"`
		PerPage int `json:"per_page"`
	} `json:"meta"`
	Results []Work `json:"results"`
}

// Getter fetches a URL and decodes its JSON body.
type Getter interface {
	GetJSON(ctx context.Context, url string, v any) error
}

// Config configures the client.
type Config struct {
	BaseURL string // Default: DefaultBaseURL.
	Query   string // Full-text search expression.
	PerPage int    // Results per page. Default: 200 (the API maximum).
	Mailto  string // Contact address for the API's polite pool.
	// Pace, when set, runs between page requests for rate limiting.
	Pace func(context.Context)
}

func (c *Config) defaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.PerPage <= 0 {
		c.PerPage = 200
	}
}

// Client pages through works matching a query.
type Client struct {
	getter Getter
	config Config
}

// New creates a Client.
func New(getter Getter, cfg Config) *Client {
	cfg.defaults()
	return &Client{getter: getter, config: cfg}
}

// Works returns every work published inside [since, until]. On a mid-run
// failure the works collected so far are returned alongside the error.
func (c *Client) Works(ctx context.Context, since, until time.Time) ([]Work, error) {
	var all []Work
	for pageNum := 1; ; pageNum++ {
		var p page
		if err := c.getter.GetJSON(ctx, c.pageURL(pageNum, since, until), &p); err != nil {
			return all, fmt.Errorf("openalex: page %d: %w", pageNum, err)
		}
		if len(p.Results) == 0 {
			break
		}
		all = append(all, p.Results...)
		if pageNum*c.config.PerPage >= p.Meta.Count {
			break
		}
		if c.config.Pace != nil {
			c.config.Pace(ctx)
		}
	}
	return all, nil
}

func (c *Client) pageURL(pageNum int, since, until time.Time) string {
	q := url.Values{}
	q.Set("search", c.config.Query)
	q.Set("from_publication_date", since.Format("2006-01-02"))
	q.Set("to_publication_date", until.Format("2006-01-02"))
	q.Set("per_page", strconv.Itoa(c.config.PerPage))
	q.Set("page", strconv.Itoa(pageNum))
	if c.config.Mailto != "" {
		q.Set("mailto", c.config.Mailto)
	}
	return c.config.BaseURL + "?" + q.Encode()
}
