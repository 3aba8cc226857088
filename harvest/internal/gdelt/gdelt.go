// Package gdelt queries the GDELT DOC 2.0 article-list API.
//
// The API caps result windows, so a harvest window is walked month by
// month with one request per month. A failed month is logged by the
// caller and skipped; the other months still contribute articles.
package gdelt

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// DefaultBaseURL is the production document API endpoint.
const DefaultBaseURL = "https://api.gdeltproject.org/api/v2/doc/doc"

// seenDateLayout is the timestamp format of the seendate field.
const seenDateLayout = "20060102T150405Z"

// reqDateLayout is the timestamp format of startdatetime/enddatetime.
const reqDateLayout = "20060102150405"

// Article is one article returned by the API.
type Article struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	Language      string `json:"language"`
	SourceCountry string `json:"sourcecountry"`
	SeenDate      string `json:"seendate"`
}

// SeenTime decodes the seendate timestamp, reporting false when absent
// or malformed.
func (a *Article) SeenTime() (time.Time, bool) {
	t, err := time.Parse(seenDateLayout, a.SeenDate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

type response struct {
	Articles []Article `json:"articles"`
}

// Getter fetches a URL and decodes its JSON body.
type Getter interface {
	GetJSON(ctx context.Context, url string, v any) error
}

// Config configures the client.
type Config struct {
	BaseURL    string // Default: DefaultBaseURL.
	Query      string // GKG search expression.
	MaxRecords int    // Per-month cap. Default: 250 (the API maximum).
	// Pace, when set, runs after every month request for rate limiting.
	Pace func(context.Context)
}

func (c *Config) defaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.MaxRecords <= 0 {
		c.MaxRecords = 250
	}
}

// Client walks a harvest window month by month.
type Client struct {
	getter Getter
	config Config
}

// New creates a Client.
func New(getter Getter, cfg Config) *Client {
	cfg.defaults()
	return &Client{getter: getter, config: cfg}
}

// MonthError reports a failed month inside an otherwise successful walk.
type MonthError struct {
	Start time.Time
	Err   error
}

func (e *MonthError) Error() string {
	return fmt.Sprintf("gdelt: month %s: %v", e.Start.Format("2006-01"), e.Err)
}

func (e *MonthError) Unwrap() error { return e.Err }

// Articles collects every article seen inside [since, until], one request
// per calendar month; the window is inclusive, so since == until still
// queries that instant. Months that fail are skipped and reported in the
// second return value; the walk always completes.
func (c *Client) Articles(ctx context.Context, since, until time.Time) ([]Article, []*MonthError) {
	var all []Article
	var failed []*MonthError

	// Always issue at least one request: a window with since == until is
	// valid and covers that single instant.
	start := since
	for {
		end := start.AddDate(0, 1, 0)
		if end.After(until) {
			end = until
		}

		var resp response
		err := c.getter.GetJSON(ctx, c.monthURL(start, end), &resp)
		if c.config.Pace != nil {
			c.config.Pace(ctx)
		}
		if err != nil {
			failed = append(failed, &MonthError{Start: start, Err: err})
		} else {
			all = append(all, resp.Articles...)
		}

		start = start.AddDate(0, 1, 0)
		if !start.Before(until) {
			break
		}
	}
	return all, failed
}

func (c *Client) monthURL(start, end time.Time) string {
	q := url.Values{}
	q.Set("query", c.config.Query)
	q.Set("mode", "ArtList")
	q.Set("format", "json")
	q.Set("maxrecords", strconv.Itoa(c.config.MaxRecords))
	q.Set("startdatetime", start.Format(reqDateLayout))
	q.Set("enddatetime", end.Format(reqDateLayout))
	return c.config.BaseURL + "?" + q.Encode()
}
