package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/nitesh/gamefeed/internal/metrics"
	"github.com/nitesh/gamefeed/internal/newsapi"
)

// ErrUnknownTopic is returned by FetchTopic for names not in Topics.
var ErrUnknownTopic = errors.New("unknown topic")

// Topic is a fixed news vertical: a curated query for the trusted sources, a
// fallback query for every source, and the keywords an article needs.
type Topic struct {
	Name          string
	Sources       []string
	Query         string
	FallbackQuery string
	// An article passes when it has a Topical word, a Gaming word and no
	// word from the exclusion vocabulary or Exclude.
	Topical     []string
	Gaming      []string
	Exclude     []string
	DefaultSize int
}

func (t Topic) filter() predicate {
	return withExclusions(func(text string) bool {
		return containsAny(text, t.Topical) && containsAny(text, t.Gaming)
	}, t.Exclude...)
}

var (
	esportsTopic = Topic{
		Name:          "esports",
		Sources:       generalSources,
		Query:         `esports OR "competitive gaming" OR "gaming tournament" OR "game championship" OR "gaming competition" OR "pro gaming"`,
		FallbackQuery: `"video game esports" OR "gaming championship" OR "competitive video gaming" OR "esports tournament"`,
		Topical:       []string{"esports", "competitive gaming", "gaming tournament", "pro gaming", "championship", "competitive", "tournament"},
		Gaming:        []string{"game", "gaming", "esports"},
		Exclude:       []string{"sportsbook", "betting"},
		DefaultSize:   5,
	}

	hardwareTopic = Topic{
		Name:          "hardware",
		Sources:       []string{"ign", "polygon", "the-verge", "techcrunch"},
		Query:         `"gaming GPU" OR "gaming graphics card" OR "gaming CPU" OR "gaming hardware" OR "PC gaming" OR "gaming rig" OR "RTX gaming"`,
		FallbackQuery: `"gaming graphics card" OR "PC gaming hardware" OR "gaming CPU" OR "gaming GPU benchmark" OR "gaming rig"`,
		Topical:       []string{"gpu", "graphics", "cpu", "hardware", "rtx", "radeon"},
		Gaming:        []string{"gaming", "game"},
		Exclude:       []string{"crypto", "mining rig"},
		DefaultSize:   5,
	}

	indieTopic = Topic{
		Name:          "indie",
		Sources:       generalSources,
		Query:         `"indie game" OR "independent game" OR "indie developer" OR "game development" OR "steam game"`,
		FallbackQuery: `"indie video game" OR "independent video game" OR "indie game developer" OR "steam indie game"`,
		Topical:       []string{"indie", "independent"},
		Gaming:        []string{"game", "developer", "gaming"},
		Exclude:       []string{"indie film", "indie rock", "indie band"},
		DefaultSize:   5,
	}

	mobileTopic = Topic{
		Name:          "mobile",
		Sources:       []string{"ign", "polygon", "the-verge", "techcrunch"},
		Query:         `"mobile gaming" OR "mobile video game" OR "smartphone game" OR "iOS game" OR "Android game" OR "mobile game app"`,
		FallbackQuery: `"mobile video game" OR "smartphone gaming" OR "iOS video game" OR "Android video game"`,
		Topical:       []string{"mobile", "smartphone", "ios", "android"},
		Gaming:        []string{"game", "gaming"},
		Exclude:       []string{"casino", "gambling", "betting"},
		DefaultSize:   5,
	}

	breakingTopic = Topic{
		Name:          "breaking",
		Sources:       generalSources,
		Query:         `"video game" OR "new game" OR "game release" OR "game announcement" OR "gaming studio" OR "game developer"`,
		FallbackQuery: `"video game announcement" OR "new video game" OR "game studio news" OR "gaming industry" OR "PC game" OR "console game"`,
		Topical:       []string{"game", "gaming"},
		Gaming:        []string{"game", "gaming"},
		DefaultSize:   1,
	}
)

// Topics lists the verticals by name.
var Topics = map[string]Topic{
	esportsTopic.Name:  esportsTopic,
	hardwareTopic.Name: hardwareTopic,
	indieTopic.Name:    indieTopic,
	mobileTopic.Name:   mobileTopic,
	breakingTopic.Name: breakingTopic,
}

// FetchEsportsNews returns competitive-gaming news.
func (s *Service) FetchEsportsNews(ctx context.Context, n int) Result {
	return s.fetchTopic(ctx, esportsTopic, n)
}

// FetchHardwareNews returns GPU, CPU and PC-hardware news with a gaming angle.
func (s *Service) FetchHardwareNews(ctx context.Context, n int) Result {
	return s.fetchTopic(ctx, hardwareTopic, n)
}

// FetchIndieGameNews returns independent-developer news.
func (s *Service) FetchIndieGameNews(ctx context.Context, n int) Result {
	return s.fetchTopic(ctx, indieTopic, n)
}

// FetchMobileGamingNews returns phone and tablet gaming news.
func (s *Service) FetchMobileGamingNews(ctx context.Context, n int) Result {
	return s.fetchTopic(ctx, mobileTopic, n)
}

// FetchBreakingGameNews returns the newest general gaming headlines.
func (s *Service) FetchBreakingGameNews(ctx context.Context, n int) Result {
	return s.fetchTopic(ctx, breakingTopic, n)
}

// FetchTopic runs the named vertical. Unknown names are a caller error.
func (s *Service) FetchTopic(ctx context.Context, name string, n int) (Result, error) {
	t, ok := Topics[name]
	if !ok {
		return Result{}, ErrUnknownTopic
	}
	return s.fetchTopic(ctx, t, n), nil
}

// fetchTopic tries the trusted sources first and falls back to the
// unrestricted query when that request fails or nothing passes the filter.
func (s *Service) fetchTopic(ctx context.Context, t Topic, n int) Result {
	if n <= 0 {
		n = t.DefaultSize
	}
	log := s.log.WithFields(logrus.Fields{"op": "topic", "topic": t.Name})
	if !s.newsEnabled {
		return s.degrade(t.Name, log, newsapi.ErrNotConfigured)
	}
	keep := t.filter()
	candidates := candidateSize(n)

	resp, err := s.news.Everything(ctx, newsapi.EverythingRequest{
		Sources:  t.Sources,
		Query:    t.Query,
		PageSize: candidates,
	})
	switch {
	case err != nil && ctx.Err() != nil:
		return empty(ctx.Err())
	case err != nil:
		log.WithError(err).Warn("trusted-source request failed, falling back")
	default:
		if kept := filterArticles(resp.Articles, keep); len(kept) > 0 {
			return s.finish(ctx, kept, n)
		}
	}

	metrics.RecordEscalation(t.Name, "fallback")
	resp, err = s.news.Everything(ctx, newsapi.EverythingRequest{
		Query:    t.FallbackQuery,
		PageSize: candidates,
	})
	if err != nil {
		return s.degrade(t.Name, log, err)
	}
	return s.finish(ctx, filterArticles(resp.Articles, keep), n)
}
