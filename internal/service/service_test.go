package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nitesh/gamefeed/internal/logging"
	"github.com/nitesh/gamefeed/internal/newsapi"
	"github.com/nitesh/gamefeed/internal/unsplash"
	"github.com/nitesh/gamefeed/pkg/models"
)

var errUpstream = errors.New("upstream down")

type reply struct {
	articles []models.Article
	err      error
}

// fakeFetcher replays scripted replies in call order and records requests.
type fakeFetcher struct {
	mu      sync.Mutex
	replies []reply
	route   func(newsapi.EverythingRequest) reply
	reqs    []newsapi.EverythingRequest
}

func (f *fakeFetcher) Everything(_ context.Context, req newsapi.EverythingRequest) (*newsapi.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)

	var r reply
	switch {
	case f.route != nil:
		r = f.route(req)
	case len(f.replies) > 0:
		r = f.replies[0]
		f.replies = f.replies[1:]
	default:
		r = reply{err: errors.New("unexpected request")}
	}
	if r.err != nil {
		return nil, r.err
	}
	return &newsapi.Response{Status: "ok", TotalResults: len(r.articles), Articles: r.articles}, nil
}

func (f *fakeFetcher) requests() []newsapi.EverythingRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.reqs)
}

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func article(title, url string, hoursAgo int) models.Article {
	return models.Article{
		Source:      models.Source{Name: "IGN"},
		Title:       title,
		URL:         url,
		PublishedAt: baseTime.Add(-time.Duration(hoursAgo) * time.Hour),
	}
}

func newTestService(f *fakeFetcher) *Service {
	return NewService(Deps{
		News:        f,
		NewsEnabled: true,
		Log:         logging.Discard(),
		Now:         func() time.Time { return baseTime },
	})
}

// assertWellFormed checks the output shape of a filtering operation. exclude
// holds the operation's own exclusion terms on top of the shared vocabulary.
func assertWellFormed(t *testing.T, r Result, max int, exclude ...string) {
	t.Helper()
	require.NotNil(t, r.Articles)
	assert.LessOrEqual(t, len(r.Articles), max)
	terms := append(slices.Clone(exclusionVocabulary), exclude...)
	seen := map[string]bool{}
	for i, a := range r.Articles {
		assert.False(t, seen[a.URL], "duplicate url %s", a.URL)
		seen[a.URL] = true
		text := strings.ToLower(a.Text())
		for _, term := range terms {
			assert.NotContains(t, text, term, "article %q", a.Title)
		}
		if i > 0 {
			assert.False(t, a.PublishedAt.After(r.Articles[i-1].PublishedAt), "not newest first at %d", i)
		}
	}
}

func titles(r Result) []string {
	out := make([]string, len(r.Articles))
	for i, a := range r.Articles {
		out[i] = a.Title
	}
	return out
}

func TestSearch(t *testing.T) {
	t.Run("unconfigured key makes no request", func(t *testing.T) {
		f := &fakeFetcher{}
		svc := NewService(Deps{News: f, NewsEnabled: false, Log: logging.Discard()})

		r := svc.Search(context.Background(), "gaming", 10, 1)

		assert.Empty(t, f.requests())
		assert.NotNil(t, r.Articles)
		assert.Empty(t, r.Articles)
		assert.ErrorIs(t, r.Err, newsapi.ErrNotConfigured)
	})

	t.Run("filters, dedupes and orders the trusted-source results", func(t *testing.T) {
		f := &fakeFetcher{replies: []reply{{articles: []models.Article{
			article("Xbox showcase recap", "https://a/1", 5),
			article("New Zelda game announced", "https://a/2", 1),
			article("NBA finals game 7 tonight", "https://a/3", 0),
			article("New Zelda game announced", "https://a/2", 1),
			article("PlayStation price drop", "https://a/4", 3),
			article("[Removed]", "https://a/5", 0),
			article("Steam sale starts", "https://a/6", 2),
		}}}}
		svc := newTestService(f)

		r := svc.Search(context.Background(), "zelda OR xbox", 3, 0)

		require.NoError(t, r.Err)
		assertWellFormed(t, r, 3)
		assert.Equal(t, []string{"New Zelda game announced", "Steam sale starts", "PlayStation price drop"}, titles(r))

		reqs := f.requests()
		require.Len(t, reqs, 1)
		assert.Equal(t, generalSources, reqs[0].Sources)
		assert.Equal(t, 6, reqs[0].PageSize)
		assert.Equal(t, 1, reqs[0].Page)
	})

	t.Run("plurals and compounds of excluded words are rejected", func(t *testing.T) {
		f := &fakeFetcher{replies: []reply{{articles: []models.Article{
			article("Video game orchestra concerts feature songs from Zelda", "https://a/1", 1),
			article("NBA2K25 game servers go offline", "https://a/2", 2),
			article("Xbox elections for game of the year open", "https://a/3", 3),
			article("Zelda game remaster is coming to Switch 2", "https://a/4", 4),
			article("Zelda game speedrun record falls", "https://a/5", 6),
			article("Xbox Game Pass adds three titles", "https://a/6", 7),
		}}}}
		svc := newTestService(f)

		r := svc.Search(context.Background(), "zelda OR xbox", 5, 1)

		require.NoError(t, r.Err)
		assert.Equal(t, []string{
			"Zelda game remaster is coming to Switch 2",
			"Zelda game speedrun record falls",
			"Xbox Game Pass adds three titles",
		}, titles(r))
		assert.Len(t, f.requests(), 1)
		for _, a := range r.Articles {
			for _, term := range exclusionVocabulary {
				assert.NotContains(t, strings.ToLower(a.Text()), term)
			}
		}
	})

	t.Run("empty query searches the default query", func(t *testing.T) {
		f := &fakeFetcher{replies: []reply{{articles: []models.Article{
			article("Gaming news roundup", "https://a/1", 1),
		}}}}
		svc := newTestService(f)

		r := svc.Search(context.Background(), "  ", 1, 1)

		require.Len(t, r.Articles, 1)
		assert.Equal(t, DefaultQuery, f.requests()[0].Query)
	})

	t.Run("below the floor makes exactly one narrowed retry", func(t *testing.T) {
		f := &fakeFetcher{replies: []reply{
			{articles: []models.Article{article("Indie game of the month", "https://a/1", 4)}},
			{articles: []models.Article{
				article("Indie game of the month", "https://a/1", 4),
				article("Indie game devs on Steam", "https://a/2", 1),
				article("Album of the year picks", "https://a/3", 0),
			}},
		}}
		svc := newTestService(f)

		r := svc.Search(context.Background(), `"indie game" OR "steam game"`, 10, 2)

		require.NoError(t, r.Err)
		assertWellFormed(t, r, 10)
		assert.Equal(t, []string{"Indie game devs on Steam", "Indie game of the month"}, titles(r))

		reqs := f.requests()
		require.Len(t, reqs, 2)
		assert.Empty(t, reqs[1].Sources)
		assert.Equal(t, `"indie game" AND (game OR gaming)`, reqs[1].Query)
		assert.Equal(t, 2, reqs[1].Page)
	})

	t.Run("failed narrowed retry keeps the primary results", func(t *testing.T) {
		f := &fakeFetcher{replies: []reply{
			{articles: []models.Article{article("Nintendo Direct dated", "https://a/1", 2)}},
			{err: errUpstream},
		}}
		svc := newTestService(f)

		r := svc.Search(context.Background(), "nintendo", 10, 1)

		assert.NoError(t, r.Err)
		assert.Equal(t, []string{"Nintendo Direct dated"}, titles(r))
		assert.Len(t, f.requests(), 2)
	})

	t.Run("primary failure broadens to every source", func(t *testing.T) {
		f := &fakeFetcher{replies: []reply{
			{err: errUpstream},
			{articles: []models.Article{
				article("Xbox handheld rumours", "https://b/1", 1),
				article("Xbox handheld rumours", "https://b/1", 1),
			}},
		}}
		svc := newTestService(f)

		r := svc.Search(context.Background(), "xbox handheld", 5, 1)

		assert.NoError(t, r.Err)
		assert.Equal(t, []string{"Xbox handheld rumours"}, titles(r))

		reqs := f.requests()
		require.Len(t, reqs, 2)
		assert.Empty(t, reqs[1].Sources)
		assert.Equal(t, `(xbox handheld) AND (game OR gaming OR "video game")`, reqs[1].Query)
	})

	t.Run("both requests failing degrades to an empty result", func(t *testing.T) {
		f := &fakeFetcher{replies: []reply{{err: errUpstream}, {err: errUpstream}}}
		svc := newTestService(f)

		r := svc.Search(context.Background(), "xbox", 5, 1)

		assert.NotNil(t, r.Articles)
		assert.Empty(t, r.Articles)
		assert.ErrorIs(t, r.Err, errUpstream)
		assert.True(t, r.Degraded())
	})

	t.Run("category query uses the broad sources and its own terms", func(t *testing.T) {
		q := `"gaming hardware" OR "graphics card" OR "RTX" OR "Radeon" OR "gaming laptop"`
		f := &fakeFetcher{replies: []reply{{articles: []models.Article{
			article("Nvidia RTX 5090 tested", "https://c/1", 1),
			article("Radeon drivers improve performance", "https://c/2", 2),
			article("Best gaming laptop deals", "https://c/3", 3),
			article("Console sales slump", "https://c/4", 0),
		}}}}
		svc := newTestService(f)

		r := svc.Search(context.Background(), q, 3, 1)

		require.NoError(t, r.Err)
		assert.Equal(t, []string{"Nvidia RTX 5090 tested", "Radeon drivers improve performance", "Best gaming laptop deals"}, titles(r))
		reqs := f.requests()
		require.Len(t, reqs, 1)
		assert.Equal(t, categorySources, reqs[0].Sources)
	})

	t.Run("cancelled caller gets nothing", func(t *testing.T) {
		f := &fakeFetcher{replies: []reply{{articles: []models.Article{
			article("Xbox one", "https://a/1", 1),
			article("Xbox two", "https://a/2", 2),
			article("Xbox three", "https://a/3", 3),
		}}}}
		svc := newTestService(f)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		r := svc.Search(ctx, "xbox", 3, 1)

		assert.Empty(t, r.Articles)
		assert.ErrorIs(t, r.Err, context.Canceled)
	})
}

func TestFetchTopic(t *testing.T) {
	t.Run("trusted sources satisfy the topic", func(t *testing.T) {
		f := &fakeFetcher{replies: []reply{{articles: []models.Article{
			article("Valorant esports finals set records", "https://e/1", 2),
			article("Esports betting sites grow", "https://e/2", 1),
			article("New gaming tournament circuit", "https://e/3", 3),
		}}}}
		svc := newTestService(f)

		r := svc.FetchEsportsNews(context.Background(), 0)

		require.NoError(t, r.Err)
		assertWellFormed(t, r, esportsTopic.DefaultSize, esportsTopic.Exclude...)
		assert.Equal(t, []string{"Valorant esports finals set records", "New gaming tournament circuit"}, titles(r))
		reqs := f.requests()
		require.Len(t, reqs, 1)
		assert.Equal(t, esportsTopic.Query, reqs[0].Query)
		assert.Equal(t, 10, reqs[0].PageSize)
	})

	t.Run("topic exclusions drop otherwise relevant articles", func(t *testing.T) {
		f := &fakeFetcher{replies: []reply{{articles: []models.Article{
			article("Indie film festival adds a game jam", "https://i/1", 1),
			article("Indie game developer shares sales numbers", "https://i/2", 2),
			article("Indie rock band scores a game soundtrack", "https://i/3", 3),
			article("Independent game studio opens in Lisbon", "https://i/4", 4),
		}}}}
		svc := newTestService(f)

		r := svc.FetchIndieGameNews(context.Background(), 5)

		require.NoError(t, r.Err)
		assertWellFormed(t, r, 5, indieTopic.Exclude...)
		assert.Equal(t, []string{"Indie game developer shares sales numbers", "Independent game studio opens in Lisbon"}, titles(r))
	})

	t.Run("nothing relevant falls back to the unrestricted query", func(t *testing.T) {
		f := &fakeFetcher{replies: []reply{
			{articles: []models.Article{article("Phone prices rise", "https://m/1", 1)}},
			{articles: []models.Article{article("Best Android games this week", "https://m/2", 1)}},
		}}
		svc := newTestService(f)

		r := svc.FetchMobileGamingNews(context.Background(), 3)

		require.NoError(t, r.Err)
		assert.Equal(t, []string{"Best Android games this week"}, titles(r))
		reqs := f.requests()
		require.Len(t, reqs, 2)
		assert.Empty(t, reqs[1].Sources)
		assert.Equal(t, mobileTopic.FallbackQuery, reqs[1].Query)
	})

	t.Run("failed trusted request falls back", func(t *testing.T) {
		f := &fakeFetcher{replies: []reply{
			{err: errUpstream},
			{articles: []models.Article{article("New game announcement from Capcom", "https://b/1", 1)}},
		}}
		svc := newTestService(f)

		r := svc.FetchBreakingGameNews(context.Background(), 0)

		require.NoError(t, r.Err)
		assert.Len(t, r.Articles, 1)
		assert.Len(t, f.requests(), 2)
	})

	t.Run("both stages failing degrades", func(t *testing.T) {
		f := &fakeFetcher{replies: []reply{{err: errUpstream}, {err: errUpstream}}}
		svc := newTestService(f)

		r := svc.FetchHardwareNews(context.Background(), 5)

		assert.Empty(t, r.Articles)
		assert.ErrorIs(t, r.Err, errUpstream)
	})

	t.Run("by name", func(t *testing.T) {
		f := &fakeFetcher{replies: []reply{{articles: []models.Article{
			article("Indie game spotlight", "https://i/1", 1),
		}}}}
		svc := newTestService(f)

		r, err := svc.FetchTopic(context.Background(), "indie", 5)
		require.NoError(t, err)
		assert.Len(t, r.Articles, 1)

		_, err = svc.FetchTopic(context.Background(), "cooking", 5)
		assert.ErrorIs(t, err, ErrUnknownTopic)
	})
}

func TestFetchFeaturedGameNews(t *testing.T) {
	t.Run("variants are queried in order and merged", func(t *testing.T) {
		f := &fakeFetcher{replies: []reply{
			{articles: []models.Article{article("Hades II review: a godly sequel game", "https://f/1", 5)}},
			{err: errUpstream},
			{err: errUpstream},
			{articles: []models.Article{
				article("Game expansion adds new zones", "https://f/2", 1),
				article("Hades II review: a godly sequel game", "https://f/1", 5),
			}},
		}}
		svc := newTestService(f)

		r := svc.FetchFeaturedGameNews(context.Background(), 5)

		require.NoError(t, r.Err)
		assert.Equal(t, []string{"Game expansion adds new zones", "Hades II review: a godly sequel game"}, titles(r))

		reqs := f.requests()
		require.Len(t, reqs, 4)
		wantQueries := []string{featuredVariants[0], featuredVariants[1], featuredVariants[1], featuredVariants[2]}
		for i, req := range reqs {
			assert.Equal(t, wantQueries[i], req.Query)
		}
		assert.Equal(t, categorySources, reqs[0].Sources)
		assert.Empty(t, reqs[2].Sources)
		assert.Equal(t, categorySources, reqs[3].Sources)
	})

	t.Run("failed variant falls back to every source", func(t *testing.T) {
		f := &fakeFetcher{replies: []reply{
			{err: errUpstream},
			{articles: []models.Article{article("Studio director interview on the next game", "https://d/1", 1)}},
			{articles: nil},
			{articles: nil},
		}}
		svc := newTestService(f)

		r := svc.FetchDeveloperSpotlightNews(context.Background(), 1)

		require.NoError(t, r.Err)
		assert.Len(t, r.Articles, 1)
		assert.Len(t, f.requests(), 4)
	})

	t.Run("every variant failing degrades", func(t *testing.T) {
		f := &fakeFetcher{route: func(newsapi.EverythingRequest) reply { return reply{err: errUpstream} }}
		svc := newTestService(f)

		r := svc.FetchDeveloperSpotlightNews(context.Background(), 1)

		assert.Empty(t, r.Articles)
		assert.ErrorIs(t, r.Err, errUpstream)
		assert.Len(t, f.requests(), 2*len(developerVariants))
	})
}

type fakeImages struct {
	queries []string
	mu      sync.Mutex
}

func (f *fakeImages) Search(_ context.Context, query string, _ int, _ unsplash.Orientation) unsplash.Result {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	return unsplash.Result{Images: []models.Image{{
		ID:   "p1",
		URLs: models.ImageURLs{Raw: "https://images.unsplash.com/photo-1?ixid=abc"},
	}}}
}

func TestSpotlight(t *testing.T) {
	t.Run("uses fixed content when nothing is found", func(t *testing.T) {
		images := &fakeImages{}
		svc := NewService(Deps{News: &fakeFetcher{}, Images: images, Log: logging.Discard()})

		sp := svc.Spotlight(context.Background())

		assert.True(t, sp.Game.Fallback)
		assert.Equal(t, "Cyberpunk 2077: Phantom Liberty", sp.Game.Title)
		assert.Equal(t, "CD Projekt", sp.Game.Developer)
		assert.True(t, sp.Developer.Fallback)
		assert.Equal(t, "Industry Veterans", sp.Developer.Developer)
		assert.True(t, sp.Degraded)
		assert.Contains(t, sp.Game.ImageURL, "w=1200")
		assert.Contains(t, sp.Game.ImageURL, "h=800")
		assert.Equal(t, unsplash.BackdropNoArticle, sp.BackdropQuery)
		assert.NotEmpty(t, sp.BackdropURL)
		assert.Len(t, images.queries, 3)
	})

	t.Run("builds cards from the newest articles", func(t *testing.T) {
		f := &fakeFetcher{route: func(req newsapi.EverythingRequest) reply {
			switch req.Query {
			case featuredVariants[0]:
				a := article(`"Hollow Knight Silksong" release date trailer`, "https://f/1", 2)
				img, desc := "https://cdn/silksong.jpg", "Team Cherry's game finally has a date."
				a.ImageURL, a.Description = &img, &desc
				return reply{articles: []models.Article{a}}
			case developerVariants[0]:
				return reply{articles: []models.Article{
					article("Remedy Entertainment game director talks Control 2", "https://d/1", 26),
				}}
			}
			return reply{}
		}}
		images := &fakeImages{}
		svc := NewService(Deps{News: f, NewsEnabled: true, Images: images, Log: logging.Discard(), Now: func() time.Time { return baseTime }})

		sp := svc.Spotlight(context.Background())

		assert.False(t, sp.Degraded)
		assert.False(t, sp.Game.Fallback)
		assert.Equal(t, "Hollow Knight Silksong", sp.Game.Title)
		assert.Equal(t, "2h ago", sp.Game.Subtitle)
		assert.Equal(t, "https://cdn/silksong.jpg", sp.Game.ImageURL)
		assert.Equal(t, "https://f/1", sp.Game.URL)

		assert.False(t, sp.Developer.Fallback)
		assert.Equal(t, "Remedy Entertainment game director talks Control 2", sp.Developer.Title)
		assert.Contains(t, sp.Developer.ImageURL, "images.unsplash.com")
		assert.Equal(t, []string{developerImageQuery, sp.BackdropQuery}, images.queries)
		assert.NotEqual(t, unsplash.BackdropNoArticle, sp.BackdropQuery)
	})
}

func TestLatestFeed(t *testing.T) {
	f := &fakeFetcher{route: func(req newsapi.EverythingRequest) reply {
		if slices.Equal(req.Sources, sweepSources) {
			return reply{articles: []models.Article{
				article("Kotaku gaming deals", "https://k/1", 3),
				article("Netflix game adaptation gets a movie", "https://k/2", 0),
				article("Shared gaming story", "https://shared", 1),
			}}
		}
		return reply{articles: []models.Article{
			article("Shared gaming story", "https://shared", 1),
			article("Esports roster shuffle", "https://g/1", 2),
			article("Xbox game pass additions", "https://g/2", 4),
		}}
	}}
	svc := newTestService(f)

	r := svc.LatestFeed(context.Background(), 0)

	require.NoError(t, r.Err)
	assertWellFormed(t, r, latestBatch, "netflix", "movie")
	assert.Equal(t, []string{
		"Shared gaming story",
		"Esports roster shuffle",
		"Kotaku gaming deals",
		"Xbox game pass additions",
	}, titles(r))
}

func TestLatestFeed_BothFail(t *testing.T) {
	f := &fakeFetcher{route: func(newsapi.EverythingRequest) reply { return reply{err: errUpstream} }}
	svc := newTestService(f)

	r := svc.LatestFeed(context.Background(), 5)

	assert.Empty(t, r.Articles)
	assert.ErrorIs(t, r.Err, errUpstream)
}

func TestFetchCategory(t *testing.T) {
	f := &fakeFetcher{replies: []reply{{articles: []models.Article{
		article("Baldur's Gate 3 patch notes", "https://r/1", 1),
		article("Final Fantasy remake news", "https://r/2", 2),
		article("Elden Ring speedrun record", "https://r/3", 3),
	}}}}
	svc := newTestService(f)

	r, err := svc.FetchCategory(context.Background(), "rpg_realm", 3)
	require.NoError(t, err)
	assert.Len(t, r.Articles, 3)
	assert.Equal(t, categorySources, f.requests()[0].Sources)

	_, err = svc.FetchCategory(context.Background(), "cooking", 3)
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestCategories(t *testing.T) {
	cats := Categories()
	require.Len(t, cats, 8)
	assert.Equal(t, "fps_focus", cats[0].ID)
	for _, c := range cats {
		assert.True(t, isCategoryQuery(c.Query), "%s should be a category query", c.ID)
	}

	cats[0].ID = "mutated"
	assert.Equal(t, "fps_focus", Categories()[0].ID)
}

func TestClassifyTopics(t *testing.T) {
	tests := []struct {
		title string
		want  []string
	}{
		{"Nvidia unveils new RTX graphics card", []string{"hardware_hub"}},
		{"Valorant patch notes bring a balance update", []string{"fps_focus", "patch_notes"}},
		{"Taylor Swift album tops charts", []string{}},
		{"Cooking with cast iron", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyTopics(tt.title, ""))
		})
	}
}

func TestSortNewestFirst_UndatedLast(t *testing.T) {
	undated := models.Article{Title: "undated", URL: "https://u/0"}
	got := sortNewestFirst([]models.Article{
		undated,
		article("older", "https://u/1", 5),
		{Title: "far past", URL: "https://u/2", PublishedAt: time.Date(1700, 1, 1, 0, 0, 0, 0, time.UTC)},
		article("newer", "https://u/3", 1),
	})

	assert.Equal(t, []string{"newer", "older", "far past", "undated"}, titles(Result{Articles: got}))
}

func TestFilterHelpers(t *testing.T) {
	assert.Equal(t, []string{"first person shooter", "doom"}, orTerms(`("first person shooter" OR "Doom")`))
	assert.Equal(t, "game OR gaming", narrowQuery(`""`))
	assert.False(t, isCategoryQuery(`"short" OR "query"`))
	assert.Equal(t, 40, candidateSize(30))
	assert.Equal(t, 10, candidateSize(5))

	keep := generalFilter()
	assert.True(t, keep("unbalanced weapons in the new game"))
	assert.True(t, keep("hollow knight silksong game gets a date"))
	assert.True(t, keep("esports league standings"))
	assert.False(t, keep("nba game recap"))
	assert.False(t, keep("nba2k25 game servers go offline"))
	assert.False(t, keep("game soundtrack concerts announced"))

	indie := indieTopic.filter()
	assert.True(t, indie("indie game developer ships debut"))
	assert.False(t, indie("indie films and indie game crossovers"))
	assert.False(t, keep("cooking show"))
}

type fakeStore struct {
	saved  []*models.Headline
	topic  string
	recent bool
	err    error
}

func (f *fakeStore) SaveMany(_ context.Context, hs []*models.Headline) error {
	f.saved = append(f.saved, hs...)
	return f.err
}

func (f *fakeStore) Recent(_ context.Context, _ int) ([]*models.Headline, error) {
	f.recent = true
	return f.saved, f.err
}

func (f *fakeStore) FindByTopic(_ context.Context, topic string, _ int) ([]*models.Headline, error) {
	f.topic = topic
	return f.saved, f.err
}

type fakeScraper struct {
	headlines []models.Headline
	err       error
}

func (f fakeScraper) ScrapeIGN(context.Context) ([]models.Headline, error) {
	return f.headlines, f.err
}

func TestHeadlines(t *testing.T) {
	t.Run("no store", func(t *testing.T) {
		svc := newTestService(&fakeFetcher{})

		_, err := svc.Headlines(context.Background(), "", 10)
		assert.ErrorIs(t, err, ErrNoDatabase)
		assert.ErrorIs(t, svc.ArchiveHeadlines(context.Background(), []models.Headline{{Title: "x"}}), ErrNoDatabase)
	})

	t.Run("scrape and archive tags topics", func(t *testing.T) {
		st := &fakeStore{}
		svc := NewService(Deps{
			Headlines: st,
			Scraper: fakeScraper{headlines: []models.Headline{
				{Title: "Counter-Strike 2 major results", URL: "https://www.ign.com/a"},
				{Title: "Studio interview", URL: "https://www.ign.com/b"},
			}},
			Log: logging.Discard(),
			Now: func() time.Time { return baseTime },
		})

		got, err := svc.ScrapeAndArchive(context.Background())
		require.NoError(t, err)
		assert.Len(t, got, 2)
		require.Len(t, st.saved, 2)
		assert.Contains(t, st.saved[0].Topics, "fps_focus")
		assert.Empty(t, st.saved[1].Topics)
		assert.Equal(t, baseTime, st.saved[0].ScrapedAt)

		_, err = svc.Headlines(context.Background(), "fps_focus", 5)
		require.NoError(t, err)
		assert.Equal(t, "fps_focus", st.topic)

		_, err = svc.Headlines(context.Background(), "", 5)
		require.NoError(t, err)
		assert.True(t, st.recent)

		_, err = svc.Headlines(context.Background(), "nope", 5)
		assert.ErrorIs(t, err, ErrUnknownCategory)
	})

	t.Run("store failure is wrapped", func(t *testing.T) {
		svc := NewService(Deps{Headlines: &fakeStore{err: fmt.Errorf("conn reset")}, Log: logging.Discard()})

		err := svc.ArchiveHeadlines(context.Background(), []models.Headline{{Title: "x", URL: "u"}})
		assert.ErrorContains(t, err, "archive headlines")
	})
}
