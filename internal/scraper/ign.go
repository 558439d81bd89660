// Package scraper pulls the current headlines off the IGN news page.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/nitesh/gamefeed/internal/metrics"
	"github.com/nitesh/gamefeed/internal/ratelimit"
	"github.com/nitesh/gamefeed/pkg/models"
)

// ErrUnexpectedStatus indicates a non-200 response from the news page.
var ErrUnexpectedStatus = errors.New("unexpected status code")

const (
	userAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
	ignOrigin    = "https://www.ign.com"
	maxHeadlines = 10
	maxPageBytes = 4 << 20
)

// Scraper fetches and parses the IGN news listing.
type Scraper struct {
	pageURL string
	hc      *http.Client
	limiter ratelimit.Waiter
	log     logrus.FieldLogger
	now     func() time.Time
}

// New returns a Scraper for pageURL. A nil limiter disables throttling.
func New(pageURL string, httpClient *http.Client, limiter ratelimit.Waiter, log logrus.FieldLogger) *Scraper {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if limiter == nil {
		limiter = ratelimit.Nop{}
	}
	return &Scraper{
		pageURL: pageURL,
		hc:      httpClient,
		limiter: limiter,
		log:     log.WithField("component", "scraper"),
		now:     time.Now,
	}
}

// ScrapeIGN returns up to ten headlines from the news page, in page order.
func (s *Scraper) ScrapeIGN(ctx context.Context) ([]models.Headline, error) {
	if err := s.limiter.Wait(ctx, s.pageURL); err != nil {
		return nil, fmt.Errorf("scrape rate limit: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.pageURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("scrape new request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := s.hc.Do(req)
	lat := time.Since(start)
	if err != nil {
		metrics.RecordUpstream("ign", "transport_error", lat.Seconds())
		return nil, fmt.Errorf("scrape request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordUpstream("ign", "bad_status", lat.Seconds())
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		metrics.RecordUpstream("ign", "read_error", lat.Seconds())
		return nil, fmt.Errorf("scrape parse: %w", err)
	}
	metrics.RecordUpstream("ign", "ok", lat.Seconds())

	headlines := ParseHeadlines(doc, s.now().UTC())
	s.log.WithFields(logrus.Fields{
		"url":     s.pageURL,
		"count":   len(headlines),
		"latency": lat.String(),
	}).Info("scraped headlines")
	return headlines, nil
}

// ParseHeadlines extracts headlines from a news listing. Current markup uses
// div.content-item cards; older pages used a.ArticleLink anchors.
func ParseHeadlines(doc *goquery.Document, scrapedAt time.Time) []models.Headline {
	items := doc.Find("div.content-item")
	if items.Length() == 0 {
		items = doc.Find("a.ArticleLink")
	}

	out := []models.Headline{}
	items.EachWithBreak(func(i int, item *goquery.Selection) bool {
		if i >= maxHeadlines {
			return false
		}
		title := headlineTitle(item)
		link := headlineLink(item)
		if title != "" && link != "" {
			out = append(out, models.Headline{Title: title, URL: link, ScrapedAt: scrapedAt})
		}
		return true
	})
	return out
}

func headlineTitle(item *goquery.Selection) string {
	for _, sel := range []string{"h3", "span.content-title"} {
		if el := item.Find(sel).First(); el.Length() > 0 {
			return strings.TrimSpace(el.Text())
		}
	}
	return strings.TrimSpace(item.Text())
}

func headlineLink(item *goquery.Selection) string {
	var href string
	if goquery.NodeName(item) == "a" {
		href, _ = item.Attr("href")
	} else if a := item.Find("a").First(); a.Length() > 0 {
		href, _ = a.Attr("href")
	}
	href = strings.TrimSpace(href)
	if href != "" && !strings.HasPrefix(href, "http") {
		href = ignOrigin + href
	}
	return href
}
