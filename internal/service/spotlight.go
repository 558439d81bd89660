package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/nitesh/gamefeed/internal/extract"
	"github.com/nitesh/gamefeed/internal/metrics"
	"github.com/nitesh/gamefeed/internal/newsapi"
	"github.com/nitesh/gamefeed/internal/unsplash"
	"github.com/nitesh/gamefeed/pkg/models"
)

var featuredVariants = []string{
	`"game review" OR "new game release"`,
	`"game launch" OR "launch trailer" OR "gameplay trailer"`,
	`"game expansion" OR "DLC release" OR "game update"`,
}

var featuredKeywords = []string{
	"review", "release", "launch", "trailer", "expansion", "dlc", "announce", "gameplay", "update",
}

var developerVariants = []string{
	`"game developer" OR "game studio"`,
	`"developer interview" OR "game director" OR "creative director"`,
	`"studio acquisition" OR "studio layoffs" OR "new studio"`,
}

var developerKeywords = []string{
	"developer", "studio", "director", "interview", "layoff", "acquisition", "dev ",
}

func keywordFilter(keywords []string) predicate {
	return withExclusions(func(text string) bool {
		return containsAny(text, gamingVocabulary) && containsAny(text, keywords)
	})
}

// FetchFeaturedGameNews queries several release/review variants in turn and
// returns the n newest distinct articles.
func (s *Service) FetchFeaturedGameNews(ctx context.Context, n int) Result {
	return s.fetchVariants(ctx, "featured", featuredVariants, keywordFilter(featuredKeywords), n)
}

// FetchDeveloperSpotlightNews queries several studio/developer variants in
// turn and returns the n newest distinct articles.
func (s *Service) FetchDeveloperSpotlightNews(ctx context.Context, n int) Result {
	return s.fetchVariants(ctx, "developer", developerVariants, keywordFilter(developerKeywords), n)
}

// fetchVariants issues each query only after the previous one returned. A
// variant whose trusted-source request fails is retried once against every
// source; Err is set only when every variant failed both ways.
func (s *Service) fetchVariants(ctx context.Context, op string, variants []string, keep predicate, n int) Result {
	if n <= 0 {
		n = 1
	}
	log := s.log.WithField("op", op)
	if !s.newsEnabled {
		return s.degrade(op, log, newsapi.ErrNotConfigured)
	}

	var all []models.Article
	var errs []error
	for _, q := range variants {
		if err := ctx.Err(); err != nil {
			return empty(err)
		}
		req := newsapi.EverythingRequest{
			Sources:  categorySources,
			Query:    q,
			PageSize: candidateSize(n),
		}
		resp, err := s.news.Everything(ctx, req)
		if err != nil && ctx.Err() == nil {
			log.WithError(err).WithField("query", q).Warn("trusted-source variant failed, falling back")
			metrics.RecordEscalation(op, "fallback")
			req.Sources = nil
			resp, err = s.news.Everything(ctx, req)
		}
		if err != nil {
			log.WithError(err).WithField("query", q).Warn("variant failed, skipping")
			errs = append(errs, err)
			continue
		}
		all = append(all, filterArticles(resp.Articles, keep)...)
	}
	if len(errs) == len(variants) {
		return s.degrade(op, log, errors.Join(errs...))
	}
	return s.finish(ctx, all, n)
}

// SpotlightCard is one display-ready spotlight slot.
type SpotlightCard struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Developer   string `json:"developer"`
	Badge       string `json:"badge"`
	Subtitle    string `json:"subtitle"`
	URL         string `json:"url,omitempty"`
	Source      string `json:"source,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	ImageQuery  string `json:"image_query"`
	Fallback    bool   `json:"fallback"`
}

// Spotlight holds the featured game and developer slots and the hero backdrop.
type Spotlight struct {
	Game          SpotlightCard `json:"game"`
	Developer     SpotlightCard `json:"developer"`
	BackdropQuery string        `json:"backdrop_query"`
	BackdropURL   string        `json:"backdrop_url,omitempty"`
	Degraded      bool          `json:"degraded"`
}

var fallbackGameCard = SpotlightCard{
	Title:       "Cyberpunk 2077: Phantom Liberty",
	Description: "Experience the highly acclaimed expansion that brings new depth to Night City. Enhanced gameplay mechanics, improved AI systems, and a gripping espionage storyline that defines the future of RPG gaming.",
	Developer:   "CD Projekt",
	Badge:       "9.2",
	Subtitle:    "2023 • Expansion",
	ImageQuery:  "cyberpunk 2077 gaming night city neon futuristic",
	Fallback:    true,
}

var fallbackDeveloperCard = SpotlightCard{
	Title:       "The Future of Interactive Entertainment and Game Development",
	Description: "Deep dive into the latest trends shaping the gaming industry. From indie breakthroughs to AAA innovations, explore the creative vision behind today's most acclaimed titles.",
	Developer:   "Industry Veterans",
	Badge:       "Gaming Studios",
	Subtitle:    "Future of Gaming",
	ImageQuery:  developerImageQuery,
	Fallback:    true,
}

const developerImageQuery = "game developer programming coding gaming studio workspace"

// Spotlight fetches the featured game and developer articles concurrently
// and turns them into display cards, using fixed content for empty slots.
func (s *Service) Spotlight(ctx context.Context) Spotlight {
	var game, dev Result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		game = s.FetchFeaturedGameNews(gctx, 1)
		return nil
	})
	g.Go(func() error {
		dev = s.FetchDeveloperSpotlightNews(gctx, 1)
		return nil
	})
	_ = g.Wait()

	out := Spotlight{
		Game:      fallbackGameCard,
		Developer: fallbackDeveloperCard,
		Degraded:  game.Degraded() || dev.Degraded(),
	}
	now := s.now()

	if len(game.Articles) > 0 {
		a := game.Articles[0]
		name := extract.GameName(a.Title)
		out.Game = SpotlightCard{
			Title:       extract.Truncate(extract.CleanTitle(name), 35),
			Description: extract.Truncate(a.DescriptionOr(fallbackGameCard.Description), 180),
			Developer:   extract.Truncate(extract.DeveloperName(a.Title, a.DescriptionOr("")), 25),
			Badge:       "New",
			Subtitle:    extract.FormatNewsDate(a.PublishedAt, now),
			URL:         a.URL,
			Source:      extract.SourceDomain(a.URL),
			ImageQuery:  name + " video game screenshot gameplay",
		}
		out.Game.ImageURL = s.cardImage(ctx, a, out.Game.ImageQuery)
	}

	if len(dev.Articles) > 0 {
		a := dev.Articles[0]
		out.Developer = SpotlightCard{
			Title:       extract.CleanTitle(a.Title),
			Description: extract.Truncate(a.DescriptionOr(fallbackDeveloperCard.Description), 180),
			Developer:   extract.Truncate(extract.DeveloperName(a.Title, a.DescriptionOr("")), 25),
			Badge:       "Gaming Industry",
			Subtitle:    extract.Truncate(extract.CleanTitle(extract.GameName(a.Title)), 30),
			URL:         a.URL,
			Source:      extract.SourceDomain(a.URL),
			ImageQuery:  developerImageQuery,
		}
		out.Developer.ImageURL = s.cardImage(ctx, a, developerImageQuery)
	}

	if out.Game.Fallback {
		out.Game.ImageURL = s.searchImage(ctx, out.Game.ImageQuery)
	}
	if out.Developer.Fallback {
		out.Developer.ImageURL = s.searchImage(ctx, out.Developer.ImageQuery)
	}

	headline := ""
	if len(game.Articles) > 0 {
		headline = game.Articles[0].Title
	}
	out.BackdropQuery = unsplash.BackdropQueryForTitle(headline)
	out.BackdropURL = s.searchImage(ctx, out.BackdropQuery)
	return out
}

// cardImage prefers the article's own image and searches for one otherwise.
func (s *Service) cardImage(ctx context.Context, a models.Article, query string) string {
	if a.ImageURL != nil && *a.ImageURL != "" {
		return *a.ImageURL
	}
	return s.searchImage(ctx, query)
}

func (s *Service) searchImage(ctx context.Context, query string) string {
	if s.images == nil {
		return ""
	}
	r := s.images.Search(ctx, query, 1, unsplash.Landscape)
	if len(r.Images) == 0 {
		s.log.WithFields(logrus.Fields{"query": query, "err": r.Err}).Debug("no spotlight image")
		return ""
	}
	return unsplash.OptimizedURL(r.Images[0], 1200, 800)
}
