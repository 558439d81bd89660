// Package unsplash searches the stock-photo API for decorative images.
// Search never fails: errors are logged and recorded on the Result.
package unsplash

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
	// ErrNotConfigured is recorded without a network call when no access key is set.
	ErrNotConfigured = errors.New("unsplash access key not configured")
	// ErrUnexpectedStatus indicates a non-2xx HTTP response.
	ErrUnexpectedStatus = errors.New("unexpected status code")
)

// Orientation constrains the aspect of returned photos.
type Orientation string

const (
	Landscape Orientation = "landscape"
	Portrait  Orientation = "portrait"
	Squarish  Orientation = "squarish"
)

// ParseOrientation returns the orientation named by s, or "" when s is not one.
func ParseOrientation(s string) Orientation {
	switch o := Orientation(strings.ToLower(strings.TrimSpace(s))); o {
	case Landscape, Portrait, Squarish:
		return o
	}
	return ""
}

// Result is the outcome of a search. Images is never nil; Err is set when
// the list is empty because something failed.
type Result struct {
	Images []models.Image
	Err    error
}

type searchResponse struct {
	Total   int            `json:"total"`
	Results []models.Image `json:"results"`
}

// Client talks to the image-search API.
type Client struct {
	baseURL string
	key     string
	hc      *http.Client
	cache   cache.Layer
	limiter ratelimit.Waiter
	log     logrus.FieldLogger
}

// Option customises a Client.
type Option func(*Client)

// WithCache puts a memoization layer in front of the endpoint. Without it
// every search is an independent upstream call.
func WithCache(l cache.Layer) Option {
	return func(c *Client) { c.cache = l }
}

// WithLimiter throttles outbound requests.
func WithLimiter(w ratelimit.Waiter) Option {
	return func(c *Client) { c.limiter = w }
}

// NewClient creates a new client. If httpClient is nil, a default with timeout is used.
func NewClient(baseURL, accessKey string, httpClient *http.Client, log logrus.FieldLogger, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     accessKey,
		hc:      httpClient,
		cache:   cache.Nop{},
		limiter: ratelimit.Nop{},
		log:     log.WithField("component", "unsplash"),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Search returns up to count photos for query in upstream relevance order.
func (c *Client) Search(ctx context.Context, query string, count int, orientation Orientation) Result {
	if count < 1 {
		count = 1
	}
	images, err := c.search(ctx, query, count, orientation)
	if err != nil {
		if !errors.Is(err, ErrNotConfigured) {
			c.log.WithError(err).WithField("query", query).Warn("image search failed")
		}
		metrics.RecordDegraded("image_search")
		return Result{Images: []models.Image{}, Err: err}
	}
	return Result{Images: images}
}

func (c *Client) search(ctx context.Context, query string, count int, orientation Orientation) ([]models.Image, error) {
	if c.key == "" {
		return nil, ErrNotConfigured
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", strconv.Itoa(count))
	if o := ParseOrientation(string(orientation)); o != "" {
		params.Set("orientation", string(o))
	}

	var images []models.Image
	body, err := c.cache.Fetch(ctx, cache.Key("search/photos", params), func(ctx context.Context) ([]byte, error) {
		b, err := c.get(ctx, params)
		if err != nil {
			return nil, err
		}
		if images, err = decodeImages(b); err != nil {
			return nil, err
		}
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	if images == nil {
		return decodeImages(body)
	}
	return images, nil
}

func decodeImages(body []byte) ([]models.Image, error) {
	var out searchResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("unsplash decode: %w", err)
	}
	if out.Results == nil {
		return []models.Image{}, nil
	}
	return out.Results, nil
}

func (c *Client) get(ctx context.Context, params url.Values) ([]byte, error) {
	endpoint := c.baseURL + "/search/photos"
	if err := c.limiter.Wait(ctx, endpoint); err != nil {
		return nil, fmt.Errorf("unsplash rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("unsplash new request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+c.key)
	req.Header.Set("Accept-Version", "v1")

	start := time.Now()
	resp, err := c.hc.Do(req)
	lat := time.Since(start)
	if err != nil {
		metrics.RecordUpstream("unsplash", "transport_error", lat.Seconds())
		return nil, fmt.Errorf("unsplash request failed: %w", err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		metrics.RecordUpstream("unsplash", "read_error", lat.Seconds())
		return nil, fmt.Errorf("unsplash read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.RecordUpstream("unsplash", "bad_status", lat.Seconds())
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	metrics.RecordUpstream("unsplash", "ok", lat.Seconds())
	return b, nil
}

// gamingImageQueries feed the decorative gallery, three landscape shots each.
var gamingImageQueries = []string{
	"gaming setup rgb",
	"esports tournament",
	"gaming hardware tech",
	"cyberpunk gaming",
}

// GamingImages runs the gallery queries one after another and concatenates
// the results. Err is set only when every query failed.
func (c *Client) GamingImages(ctx context.Context) Result {
	all := []models.Image{}
	var errs []error
	for _, q := range gamingImageQueries {
		r := c.Search(ctx, q, 3, Landscape)
		if r.Err != nil {
			errs = append(errs, r.Err)
			continue
		}
		all = append(all, r.Images...)
	}
	if len(errs) == len(gamingImageQueries) {
		return Result{Images: all, Err: errors.Join(errs...)}
	}
	return Result{Images: all}
}

// OptimizedURL derives a center-cropped display URL from the raw image URL.
// height <= 0 leaves the height unconstrained.
func OptimizedURL(img models.Image, width, height int) string {
	params := url.Values{}
	params.Set("w", strconv.Itoa(width))
	params.Set("fit", "crop")
	params.Set("crop", "center")
	if height > 0 {
		params.Set("h", strconv.Itoa(height))
	}
	sep := "&"
	if !strings.Contains(img.URLs.Raw, "?") {
		sep = "?"
	}
	return img.URLs.Raw + sep + params.Encode()
}
