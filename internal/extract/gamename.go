// Package extract infers display strings from free-text headlines. Every
// function is total: when nothing matches, a fixed placeholder comes back.
package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// GamePlaceholder is returned by GameName when no rule matches.
const GamePlaceholder = "Featured Game"

const (
	minGameNameLen = 3
	maxGameNameLen = 30
)

// knownTitles is tried as one alternation. Longer names precede their
// prefixes so the more specific title wins at the same position.
var knownTitles = []string{
	"Grand Theft Auto VI", "Grand Theft Auto", "GTA VI", "GTA 6",
	"Call of Duty", "Elden Ring", "The Legend of Zelda", "Zelda",
	"Mario Kart", "Super Mario", "Pokémon", "Pokemon",
	"Final Fantasy", "The Elder Scrolls", "Elder Scrolls", "Skyrim",
	"The Witcher", "Cyberpunk 2077", "Baldur's Gate 3", "Baldur's Gate",
	"Starfield", "Halo Infinite", "Halo", "Fortnite", "Minecraft", "Valorant",
	"League of Legends", "Counter-Strike 2", "Counter-Strike",
	"Overwatch 2", "Overwatch", "Apex Legends", "Destiny 2",
	"Diablo IV", "Diablo 4", "Diablo", "World of Warcraft",
	"Hollow Knight: Silksong", "Hollow Knight", "Hades II", "Hades",
	"God of War", "Horizon Forbidden West", "Marvel's Spider-Man 2", "Spider-Man 2",
	"Assassin's Creed", "Resident Evil", "Street Fighter 6", "Street Fighter",
	"Mortal Kombat", "Tekken 8", "Monster Hunter", "Dark Souls", "Sekiro", "Bloodborne",
	"Red Dead Redemption 2", "Red Dead Redemption", "The Last of Us",
	"Ghost of Tsushima", "Death Stranding", "Metal Gear Solid", "Silent Hill",
	"Doom", "Palworld", "Helldivers 2", "Stardew Valley", "Animal Crossing",
	"Splatoon", "Metroid", "Kingdom Hearts", "Persona 5", "Persona",
	"Dragon Age", "Mass Effect", "Fallout", "Battlefield", "Rainbow Six Siege",
	"Genshin Impact", "Honkai: Star Rail", "Roblox", "Dota 2", "Stellar Blade",
}

var (
	quotedRe = regexp.MustCompile(`["“]([^"“”]+)["”]|‘([^‘’]+)’`)

	knownTitleRe = func() *regexp.Regexp {
		quoted := make([]string, len(knownTitles))
		for i, t := range knownTitles {
			quoted[i] = regexp.QuoteMeta(t)
		}
		return regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
	}()

	// A capitalized phrase directly followed by a release or update word.
	releasePhraseRe = regexp.MustCompile(
		`\b([A-Z][\w'’&-]*(?:\s+(?:[A-Z0-9][\w'’&-]*|of|the|and))*?)\s+` +
			`(?i:gets|receives|launches|launch|releases|released|release|update|patch|trailer|review|` +
			`dlc|expansion|season|remake|remastered|remaster|beta|demo|arrives|announced|revealed|delayed|sequel)\b`)

	firstCapitalizedRe = regexp.MustCompile(`\b([A-Z][\w'’&-]*(?:\s+[A-Z0-9][\w'’&-]*)*)`)

	labelPrefixRe    = regexp.MustCompile(`(?i)^(review|news|update|preview|report|rumor):\s*`)
	leadingArticleRe = regexp.MustCompile(`(?i)^(the|a|an)\s+`)
	trailingSuffixRe = regexp.MustCompile(`(?i)\s+(review|update|dlc|trailer|preview|patch|remastered|remaster|news|release|expansion|beta|demo|gameplay|launch)$`)
	trailingPunctRe  = regexp.MustCompile(`[\s:;,.!?'"“”‘’-]+$`)
	leadingPunctRe   = regexp.MustCompile(`^[\s:;,.!?'"“”‘’-]+`)
)

type gameRule func(title string) string

// gameRules are ordered from most to least specific.
var gameRules = []gameRule{
	func(title string) string {
		m := quotedRe.FindStringSubmatch(title)
		if m == nil {
			return ""
		}
		if m[1] != "" {
			return m[1]
		}
		return m[2]
	},
	func(title string) string {
		return knownTitleRe.FindString(title)
	},
	func(title string) string {
		if m := releasePhraseRe.FindStringSubmatch(title); m != nil {
			return m[1]
		}
		return ""
	},
	func(title string) string {
		if m := firstCapitalizedRe.FindStringSubmatch(title); m != nil {
			return m[1]
		}
		return ""
	},
}

// GameName guesses the game a headline is about. Rules run in order and the
// first candidate that survives cleanup with 3 to 30 characters wins.
func GameName(title string) string {
	for _, rule := range gameRules {
		candidate := cleanGameName(rule(title))
		n := utf8.RuneCountInString(candidate)
		if n >= minGameNameLen && n <= maxGameNameLen {
			return candidate
		}
	}
	return GamePlaceholder
}

func cleanGameName(s string) string {
	s = strings.TrimSpace(s)
	s = labelPrefixRe.ReplaceAllString(s, "")
	s = leadingPunctRe.ReplaceAllString(s, "")
	s = leadingArticleRe.ReplaceAllString(s, "")
	for {
		trimmed := trailingPunctRe.ReplaceAllString(trailingSuffixRe.ReplaceAllString(s, ""), "")
		if trimmed == s {
			break
		}
		s = trimmed
	}
	return strings.TrimSpace(s)
}
