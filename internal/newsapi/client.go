// Package newsapi is a thin client for the news-search "everything" endpoint.
// It reports failures as errors; the best-effort policy lives in the service.
package newsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nitesh/gamefeed/internal/cache"
	"github.com/nitesh/gamefeed/internal/metrics"
	"github.com/nitesh/gamefeed/internal/ratelimit"
	"github.com/nitesh/gamefeed/pkg/models"
)

var (
	// ErrNotConfigured is returned without a network call when no API key is set.
	ErrNotConfigured = errors.New("news api key not configured")
	// ErrUnexpectedStatus indicates a non-2xx HTTP response.
	ErrUnexpectedStatus = errors.New("unexpected status code")
	// ErrAPIStatus indicates a 2xx response whose body status is not "ok".
	ErrAPIStatus = errors.New("news api returned non-ok status")
)

const maxBodyBytes = 4 << 20

// Response is the everything-endpoint payload.
type Response struct {
	Status       string           `json:"status"`
	TotalResults int              `json:"totalResults"`
	Articles     []models.Article `json:"articles"`
	Code         string           `json:"code,omitempty"`
	Message      string           `json:"message,omitempty"`
}

// EverythingRequest describes one search. Empty Sources searches every source.
type EverythingRequest struct {
	Sources  []string
	Query    string
	PageSize int
	Page     int
}

func (r EverythingRequest) params() url.Values {
	v := url.Values{}
	if len(r.Sources) > 0 {
		v.Set("sources", strings.Join(r.Sources, ","))
	}
	v.Set("q", r.Query)
	v.Set("language", "en")
	v.Set("sortBy", "publishedAt")
	v.Set("pageSize", strconv.Itoa(r.PageSize))
	page := r.Page
	if page < 1 {
		page = 1
	}
	v.Set("page", strconv.Itoa(page))
	return v
}

// Fetcher is what the service needs from the news API.
type Fetcher interface {
	Everything(ctx context.Context, req EverythingRequest) (*Response, error)
}

// Client talks to the news API.
type Client struct {
	baseURL string
	apiKey  string
	hc      *http.Client
	cache   cache.Layer
	limiter ratelimit.Waiter
	log     logrus.FieldLogger
}

// Option customises a Client.
type Option func(*Client)

// WithCache puts a memoization layer in front of the endpoint.
func WithCache(l cache.Layer) Option {
	return func(c *Client) { c.cache = l }
}

// WithLimiter throttles outbound requests.
func WithLimiter(w ratelimit.Waiter) Option {
	return func(c *Client) { c.limiter = w }
}

// NewClient creates a new client. If httpClient is nil, a default with timeout is used.
func NewClient(baseURL, apiKey string, httpClient *http.Client, log logrus.FieldLogger, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		hc:      httpClient,
		cache:   cache.Nop{},
		limiter: ratelimit.Nop{},
		log:     log.WithField("component", "newsapi"),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Configured reports whether the client has a credential.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Everything runs one search against the everything endpoint.
func (c *Client) Everything(ctx context.Context, req EverythingRequest) (*Response, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	// Bodies are decoded before they reach the cache so an error payload
	// served with a 2xx status is never memoized.
	var out *Response
	params := req.params()
	body, err := c.cache.Fetch(ctx, cache.Key("everything", params), func(ctx context.Context) ([]byte, error) {
		b, err := c.get(ctx, params)
		if err != nil {
			return nil, err
		}
		if out, err = decode(b); err != nil {
			return nil, err
		}
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		return decode(body)
	}
	return out, nil
}

// wireArticle is an article as sent on the wire. publishedAt is kept as text
// so one oddly formatted timestamp cannot fail the whole batch.
type wireArticle struct {
	models.Article
	PublishedAt json.RawMessage `json:"publishedAt"`
}

type wireResponse struct {
	Response
	Articles []wireArticle `json:"articles"`
}

func decode(body []byte) (*Response, error) {
	var w wireResponse
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("news api decode: %w", err)
	}
	if w.Status != "ok" {
		return nil, fmt.Errorf("%w: %s %s", ErrAPIStatus, w.Status, w.Message)
	}
	out := w.Response
	out.Articles = make([]models.Article, len(w.Articles))
	for i, wa := range w.Articles {
		a := wa.Article
		a.PublishedAt = parsePublishedAt(wa.PublishedAt)
		out.Articles[i] = a
	}
	return &out, nil
}

// publishedLayouts are tried in order. Zone-less forms are read as UTC.
var publishedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parsePublishedAt returns the zero time for missing or unparseable values.
func parsePublishedAt(raw json.RawMessage) time.Time {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}
	}
	s = strings.TrimSpace(s)
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func (c *Client) get(ctx context.Context, params url.Values) ([]byte, error) {
	endpoint := c.baseURL + "/everything"
	if err := c.limiter.Wait(ctx, endpoint); err != nil {
		return nil, fmt.Errorf("news api rate limit: %w", err)
	}

	// The key goes in a header so it never shows up in cache keys or logs.
	u := endpoint + "?" + params.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("news api new request: %w", err)
	}
	httpReq.Header.Set("X-Api-Key", c.apiKey)
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.hc.Do(httpReq)
	lat := time.Since(start)
	if err != nil {
		metrics.RecordUpstream("newsapi", "transport_error", lat.Seconds())
		return nil, fmt.Errorf("news api request failed: %w", err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		metrics.RecordUpstream("newsapi", "read_error", lat.Seconds())
		return nil, fmt.Errorf("news api read body: %w", err)
	}
	c.log.WithFields(logrus.Fields{
		"q":       params.Get("q"),
		"sources": params.Get("sources"),
		"status":  resp.StatusCode,
		"latency": lat.String(),
	}).Debug("news api request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.RecordUpstream("newsapi", "bad_status", lat.Seconds())
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	metrics.RecordUpstream("newsapi", "ok", lat.Seconds())
	return b, nil
}
