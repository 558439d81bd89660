package service

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nitesh/gamefeed/internal/metrics"
	"github.com/nitesh/gamefeed/internal/newsapi"
	"github.com/nitesh/gamefeed/internal/unsplash"
	"github.com/nitesh/gamefeed/pkg/models"
)

// ErrNoDatabase is returned by archive operations when no store is configured.
var ErrNoDatabase = errors.New("headline archive not configured")

// HeadlineStore persists scraped headlines.
type HeadlineStore interface {
	SaveMany(ctx context.Context, headlines []*models.Headline) error
	Recent(ctx context.Context, limit int) ([]*models.Headline, error)
	FindByTopic(ctx context.Context, topic string, limit int) ([]*models.Headline, error)
}

// HeadlineScraper fetches the current IGN headlines.
type HeadlineScraper interface {
	ScrapeIGN(ctx context.Context) ([]models.Headline, error)
}

// ImageSearcher is the part of the image client the service uses.
type ImageSearcher interface {
	Search(ctx context.Context, query string, count int, orientation unsplash.Orientation) unsplash.Result
}

// Result is the outcome of a news fetch. Articles is never nil. Err is set
// when the list is empty (or short) because something failed; a nil Err
// with no articles means upstream had nothing relevant.
type Result struct {
	Articles []models.Article
	Err      error
}

// Degraded reports whether a failure was swallowed.
func (r Result) Degraded() bool {
	return r.Err != nil
}

func empty(err error) Result {
	return Result{Articles: []models.Article{}, Err: err}
}

// Deps wires a Service. Images, Headlines and Scraper are optional.
type Deps struct {
	News        newsapi.Fetcher
	NewsEnabled bool
	Images      ImageSearcher
	Headlines   HeadlineStore
	Scraper     HeadlineScraper
	Log         logrus.FieldLogger
	Now         func() time.Time
}

// Service is the news client: it turns content requests into filtered,
// newest-first article lists and never returns fetch failures as errors.
type Service struct {
	news        newsapi.Fetcher
	newsEnabled bool
	images      ImageSearcher
	repo        HeadlineStore
	scraper     HeadlineScraper
	log         logrus.FieldLogger
	now         func() time.Time
}

func NewService(d Deps) *Service {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		news:        d.News,
		newsEnabled: d.NewsEnabled && d.News != nil,
		images:      d.Images,
		repo:        d.Headlines,
		scraper:     d.Scraper,
		log:         d.Log.WithField("component", "service"),
		now:         now,
	}
}

// degrade logs a swallowed failure and returns the empty result for it.
func (s *Service) degrade(op string, log logrus.FieldLogger, err error) Result {
	if !errors.Is(err, newsapi.ErrNotConfigured) {
		log.WithError(err).Warn("fetch failed, returning empty result")
	}
	metrics.RecordDegraded(op)
	return empty(err)
}

// finish dedupes, orders newest first and truncates. A cancelled caller
// gets nothing: results that arrive after cancellation are discarded.
func (s *Service) finish(ctx context.Context, articles []models.Article, n int) Result {
	if err := ctx.Err(); err != nil {
		return empty(err)
	}
	out := sortNewestFirst(dedupeByURL(articles))
	if len(out) > n {
		out = out[:n]
	}
	return Result{Articles: out}
}

// dedupeByURL keeps the first article seen for each url.
func dedupeByURL(articles []models.Article) []models.Article {
	seen := make(map[string]struct{}, len(articles))
	out := make([]models.Article, 0, len(articles))
	for _, a := range articles {
		if _, ok := seen[a.URL]; ok {
			continue
		}
		seen[a.URL] = struct{}{}
		out = append(out, a)
	}
	return out
}

func sortNewestFirst(articles []models.Article) []models.Article {
	slices.SortStableFunc(articles, func(a, b models.Article) int {
		return b.PublishedAt.Compare(a.PublishedAt)
	})
	return articles
}

// candidateSize over-fetches to leave room for filter attrition.
func candidateSize(pageSize int) int {
	return min(2*pageSize, maxCandidates)
}
