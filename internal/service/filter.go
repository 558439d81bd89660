package service

import (
	"regexp"
	"strings"

	"github.com/nitesh/gamefeed/pkg/models"
)

const (
	defaultPageSize = 20
	maxCandidates   = 40
	resultFloor     = 3
	// Queries at least this long with quoted phrases are category queries.
	categoryQueryLen = 50
)

// DefaultQuery is searched when the caller sends an empty query.
const DefaultQuery = `"video game" OR "PC gaming" OR "console gaming" OR "gaming news" OR "esports news"`

// Trusted publication allow-lists, as news-API source ids.
var (
	generalSources  = []string{"ign", "polygon", "the-verge"}
	categorySources = []string{"ign", "polygon", "the-verge", "techcrunch", "wired", "engadget"}
	sweepSources    = []string{"ign", "polygon", "gamespot", "kotaku", "the-verge"}
)

// gamingVocabulary admits general queries' results.
var gamingVocabulary = []string{
	"gaming", "esports", "video game", "playstation", "xbox", "nintendo",
	"steam", "epic games", "twitch", "game", "console", "pc gaming",
	"mobile gaming", "indie game", "aaa", "fps", "rpg", "mmorpg",
}

// exclusionVocabulary rejects ambiguous hits such as a basketball "game".
// Tokens match at the start of a word, so "songs" and "nba2k" are rejected
// while "unbalanced" and "silksong" are not.
var exclusionVocabulary = []string{
	"nba", "basketball", "football", "soccer", "baseball", "super bowl", "premier league",
	"blackpink", "kpop", "k-pop", "music", "song", "album", "concert", "box office",
	"election", "senate", "congress", "covid", "vaccine", "healthcare",
}

type predicate func(text string) bool

func containsAny(text string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}

func lowerText(a models.Article) string {
	return strings.ToLower(a.Text())
}

// usable drops entries the news API returns for taken-down articles.
func usable(a models.Article) bool {
	return strings.TrimSpace(a.Title) != "" && a.Title != "[Removed]" && a.URL != ""
}

func filterArticles(articles []models.Article, keep predicate) []models.Article {
	out := make([]models.Article, 0, len(articles))
	for _, a := range articles {
		if usable(a) && keep(lowerText(a)) {
			out = append(out, a)
		}
	}
	return out
}

// wordStartPattern matches any of words beginning at a word boundary.
// Plurals and compounds ("concerts", "nba2k25") match too.
func wordStartPattern(words []string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)`)
}

var exclusionRe = wordStartPattern(exclusionVocabulary)

// withExclusions wraps an inclusion test with the exclusion vocabulary plus extra.
func withExclusions(include predicate, extra ...string) predicate {
	var extraRe *regexp.Regexp
	if len(extra) > 0 {
		extraRe = wordStartPattern(extra)
	}
	return func(text string) bool {
		if exclusionRe.MatchString(text) || (extraRe != nil && extraRe.MatchString(text)) {
			return false
		}
		return include(text)
	}
}

func generalFilter() predicate {
	return withExclusions(func(text string) bool {
		return containsAny(text, gamingVocabulary)
	})
}

func categoryFilter(terms []string) predicate {
	if len(terms) == 0 {
		return generalFilter()
	}
	return withExclusions(func(text string) bool {
		return containsAny(text, terms)
	})
}

// isCategoryQuery reports whether query is a curated OR-query of quoted
// phrases rather than a loose keyword search.
func isCategoryQuery(query string) bool {
	return strings.Contains(query, `"`) && len(query) > categoryQueryLen
}

// orClauses splits a boolean query on OR and returns the clauses with quotes
// and grouping stripped. Empty clauses are dropped.
func orClauses(query string) []string {
	var out []string
	for _, part := range strings.Split(query, " OR ") {
		c := strings.Trim(strings.TrimSpace(part), `()"`)
		c = strings.TrimSpace(c)
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

// orTerms are the lowercased OR-clauses, used as inclusion terms.
func orTerms(query string) []string {
	clauses := orClauses(query)
	terms := make([]string, len(clauses))
	for i, c := range clauses {
		terms[i] = strings.ToLower(c)
	}
	return terms
}

// narrowQuery keeps only the first OR-clause and pins it to gaming. The rest
// of the original query is dropped.
func narrowQuery(query string) string {
	clauses := orClauses(query)
	if len(clauses) == 0 {
		return "game OR gaming"
	}
	return `"` + clauses[0] + `" AND (game OR gaming)`
}

// broadenQuery wraps the query in a gaming conjunction for the unrestricted
// fallback search.
func broadenQuery(query string) string {
	return "(" + query + `) AND (game OR gaming OR "video game")`
}
