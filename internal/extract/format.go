package extract

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
)

const (
	// UnknownSource is returned by SourceDomain for URLs without a host.
	UnknownSource = "Unknown Source"
	// UnknownDate is returned by FormatNewsDateString for unparseable input.
	UnknownDate = "Unknown date"
)

// FormatNewsDate renders the age of published relative to now as "Nm ago",
// "Nh ago" or "Nd ago". Units are floored; future times count as zero.
func FormatNewsDate(published, now time.Time) string {
	d := now.Sub(published)
	if d < 0 {
		d = 0
	}
	hours := int(d / time.Hour)
	switch {
	case hours < 1:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	case hours < 24:
		return fmt.Sprintf("%dh ago", hours)
	default:
		return fmt.Sprintf("%dd ago", hours/24)
	}
}

// FormatNewsDateString is FormatNewsDate for an ISO 8601 timestamp.
func FormatNewsDateString(ts string, now time.Time) string {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(ts))
	if err != nil {
		return UnknownDate
	}
	return FormatNewsDate(t, now)
}

// SourceDomain returns the host of rawURL without a leading "www.".
func SourceDomain(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Hostname() == "" {
		return UnknownSource
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

var (
	cleanPrefixRe = regexp.MustCompile(`(?i)^(Review:|News:|Update:|Preview:)\s*`)
	cleanTailRe   = regexp.MustCompile(`(?i)\s+(Review|Gets|Update|News|Trailer|Preview)\b.*$`)
	cleanQuoteRe  = regexp.MustCompile(`['"]`)
)

// CleanTitle strips editorial labels and the status tail from a headline
// for use as a card heading.
func CleanTitle(title string) string {
	s := cleanPrefixRe.ReplaceAllString(title, "")
	s = cleanTailRe.ReplaceAllString(s, "")
	s = cleanQuoteRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// Truncate cuts s to width display columns and appends "..." when it had
// to cut. Wide runes count double.
func Truncate(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return strings.TrimSpace(runewidth.Truncate(s, width, "")) + "..."
}
