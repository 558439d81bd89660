package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DeveloperPlaceholder is returned by DeveloperName when nothing matches.
const DeveloperPlaceholder = "Game Studios"

type studio struct {
	name  string
	match string
}

// knownStudios is checked in order; the first substring hit wins.
var knownStudios = []studio{
	{"CD Projekt", "cd projekt"},
	{"Rockstar Games", "rockstar"},
	{"Naughty Dog", "naughty dog"},
	{"FromSoftware", "fromsoftware"},
	{"FromSoftware", "from software"},
	{"Bethesda", "bethesda"},
	{"Blizzard", "blizzard"},
	{"Ubisoft", "ubisoft"},
	{"Electronic Arts", "electronic arts"},
	{"Activision", "activision"},
	{"Epic Games", "epic games"},
	{"Valve", "valve"},
	{"Nintendo", "nintendo"},
	{"Square Enix", "square enix"},
	{"Capcom", "capcom"},
	{"Bandai Namco", "bandai namco"},
	{"Konami", "konami"},
	{"Sega", "sega"},
	{"Bungie", "bungie"},
	{"Riot Games", "riot games"},
	{"Insomniac Games", "insomniac"},
	{"Santa Monica Studio", "santa monica studio"},
	{"Guerrilla Games", "guerrilla games"},
	{"BioWare", "bioware"},
	{"Larian Studios", "larian"},
	{"Remedy", "remedy entertainment"},
	{"id Software", "id software"},
	{"Respawn", "respawn"},
	{"Obsidian", "obsidian entertainment"},
	{"Supergiant Games", "supergiant"},
	{"Mojang", "mojang"},
	{"Kojima Productions", "kojima productions"},
	{"Team Cherry", "team cherry"},
	{"Devolver Digital", "devolver"},
	{"Xbox Game Studios", "xbox game studios"},
	{"PlayStation Studios", "playstation studios"},
}

const (
	minDeveloperLen = 2
	maxDeveloperLen = 20
)

// developerPatterns run on the original-case text, in order.
var developerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b((?:[A-Z][\w&]*\s+){1,2}(?:Games|Studios|Studio|Entertainment|Interactive|Software))\b`),
	regexp.MustCompile(`(?i:developed by|developer|studio)\s+([A-Z][\w&]*(?:\s+[A-Z][\w&]*){0,2})`),
	regexp.MustCompile(`\b(?i:by|from)\s+([A-Z][\w&]*(?:\s+[A-Z][\w&]*){0,2})`),
}

// DeveloperName guesses the studio behind a headline. Known studios are
// checked before the regex heuristics.
func DeveloperName(title, description string) string {
	text := title + " " + description
	lower := strings.ToLower(text)
	for _, s := range knownStudios {
		if strings.Contains(lower, s.match) {
			return s.name
		}
	}

	for _, re := range developerPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			name := strings.TrimSpace(m[1])
			n := utf8.RuneCountInString(name)
			if n >= minDeveloperLen && n <= maxDeveloperLen {
				return name
			}
		}
	}
	return DeveloperPlaceholder
}
