package service

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/nitesh/gamefeed/internal/newsapi"
	"github.com/nitesh/gamefeed/pkg/models"
)

// ErrUnknownCategory is returned by FetchCategory for ids not in Categories.
var ErrUnknownCategory = errors.New("unknown category")

// Category is a landing-page tab backed by a curated OR-query.
type Category struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Query string `json:"query"`
}

var categories = []Category{
	{"fps_focus", "FPS_FOCUS", `"first person shooter" OR "FPS game" OR "Call of Duty" OR "Counter-Strike" OR "Valorant" OR "Apex Legends" OR "Overwatch" OR "Doom"`},
	{"rpg_realm", "RPG_REALM", `"role playing game" OR "RPG game" OR "Final Fantasy" OR "Elder Scrolls" OR "Witcher" OR "Baldur's Gate" OR "Elden Ring" OR "Cyberpunk 2077"`},
	{"indie_insider", "INDIE_INSIDER", `"indie game" OR "independent game" OR "indie developer" OR "steam indie" OR "indie gaming" OR "small developer"`},
	{"hardware_hub", "HARDWARE_HUB", `"gaming hardware" OR "gaming PC" OR "graphics card" OR "GPU" OR "RTX" OR "Radeon" OR "gaming laptop" OR "CPU gaming"`},
	{"rumor_radar", "RUMOR_RADAR", `"gaming rumor" OR "game leak" OR "upcoming game" OR "game announcement" OR "game reveal" OR "rumored game" OR "leaked game"`},
	{"patch_notes", "PATCH_NOTES", `"patch notes" OR "game update" OR "hotfix" OR "balance update" OR "game patch" OR "software update" OR "bug fix"`},
	{"esports_elite", "ESPORTS_ELITE", `esports OR "competitive gaming" OR "professional gaming" OR "gaming tournament" OR "esports championship" OR "gaming competition"`},
	{"dev_diaries", "DEV_DIARIES", `"developer diary" OR "game development" OR "behind the scenes" OR "dev blog" OR "game developer" OR "development update"`},
}

// Categories returns the landing-page tabs in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

func findCategory(id string) (Category, bool) {
	for _, c := range categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// FetchCategory runs a tab's query through Search.
func (s *Service) FetchCategory(ctx context.Context, id string, n int) (Result, error) {
	c, ok := findCategory(id)
	if !ok {
		return Result{}, ErrUnknownCategory
	}
	return s.Search(ctx, c.Query, n, 1), nil
}

// ClassifyTopics returns the ids of every category whose terms appear in the
// text and whose exclusions do not.
func ClassifyTopics(title, description string) []string {
	text := lowerText(models.Article{Title: title, Description: &description})
	out := []string{}
	for _, c := range categories {
		if categoryFilter(orTerms(c.Query))(text) {
			out = append(out, c.ID)
		}
	}
	return out
}

const (
	latestQuery = "gaming OR esports OR video games"
	sweepQuery  = `"video game" OR "gaming" OR "esports" OR "game review" OR "game news" OR "PC gaming" OR "console gaming"`
	latestBatch = 10
)

// LatestFeed is the default news list: a general search and a sweep of the
// gaming publications, run concurrently and merged (sweep first) by url.
func (s *Service) LatestFeed(ctx context.Context, n int) Result {
	if n <= 0 {
		n = latestBatch
	}
	var general, sweep Result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		general = s.Search(gctx, latestQuery, latestBatch, 1)
		return nil
	})
	g.Go(func() error {
		sweep = s.sourceSweep(gctx, latestBatch)
		return nil
	})
	_ = g.Wait()

	if general.Degraded() && sweep.Degraded() {
		return empty(errors.Join(sweep.Err, general.Err))
	}
	merged := append(append([]models.Article{}, sweep.Articles...), general.Articles...)
	return s.finish(ctx, merged, n)
}

// sourceSweep is one request to the gaming publications, no fallback.
func (s *Service) sourceSweep(ctx context.Context, n int) Result {
	log := s.log.WithField("op", "sweep")
	if !s.newsEnabled {
		return s.degrade("sweep", log, newsapi.ErrNotConfigured)
	}
	resp, err := s.news.Everything(ctx, newsapi.EverythingRequest{
		Sources:  sweepSources,
		Query:    sweepQuery,
		PageSize: n,
	})
	if err != nil {
		return s.degrade("sweep", log, err)
	}
	keep := withExclusions(func(text string) bool {
		return containsAny(text, []string{"game", "gaming", "esports"})
	}, "netflix", "movie", "movies")
	return s.finish(ctx, filterArticles(resp.Articles, keep), n)
}
