package unsplash

import "strings"

type queryRule struct {
	keywords []string
	query    string
}

// Card images: first rule whose keyword appears in the title wins.
var cardRules = []queryRule{
	{[]string{"battle", "war", "fight"}, "gaming battle station rgb keyboard mouse setup"},
	{[]string{"esports", "tournament", "competitive"}, "esports tournament competitive gaming arena"},
	{[]string{"vr", "virtual reality", "immersive"}, "virtual reality gaming headset futuristic"},
	{[]string{"stream", "content", "creator"}, "gaming streamer setup neon lights professional"},
	{[]string{"hardware", "gpu", "cpu"}, "gaming hardware gpu computer components"},
	{[]string{"mobile", "phone"}, "mobile gaming smartphone controller"},
	{[]string{"indie", "developer"}, "indie game development retro pixel art"},
}

const cardDefault = "gaming setup cyberpunk neon lights"

// Hero backdrops.
var backdropRules = []queryRule{
	{[]string{"raid", "beat", "action"}, "action video game cyberpunk neon gaming"},
	{[]string{"esports", "tournament", "competitive"}, "esports tournament gaming arena competitive"},
	{[]string{"horror", "scary", "dark"}, "dark horror gaming atmosphere moody"},
	{[]string{"racing", "car", "speed"}, "racing game cars speed neon lights"},
	{[]string{"fantasy", "magic", "rpg"}, "fantasy gaming magical mystical environment"},
	{[]string{"space", "sci-fi", "futuristic"}, "sci-fi space gaming futuristic technology"},
	{[]string{"indie", "pixel", "retro"}, "retro gaming pixel art neon synthwave"},
}

const (
	backdropDefault = "gaming setup cyberpunk neon futuristic"
	// BackdropNoArticle is used when there is no article to derive a query from.
	BackdropNoArticle = "cyberpunk gaming futuristic neon city"
)

func pick(rules []queryRule, title, fallback string) string {
	lower := strings.ToLower(title)
	for _, r := range rules {
		for _, k := range r.keywords {
			if strings.Contains(lower, k) {
				return r.query
			}
		}
	}
	return fallback
}

// QueryForTitle maps a headline to a decorative image query for a news card.
func QueryForTitle(title string) string {
	return pick(cardRules, title, cardDefault)
}

// BackdropQueryForTitle maps a headline to a hero backdrop query.
func BackdropQueryForTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return BackdropNoArticle
	}
	return pick(backdropRules, title, backdropDefault)
}
