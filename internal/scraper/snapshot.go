package scraper

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/nitesh/gamefeed/pkg/models"
)

var snapshotNameRe = regexp.MustCompile(`^ign_news_(\d+)_\d{8}_\d{6}\.json$`)

type snapshotEntry struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// WriteSnapshot writes headlines as indented JSON to
// dir/ign_news_NNN_YYYYMMDD_HHMMSS.json, where NNN follows the highest
// sequence already in dir. It creates dir and returns the file path.
func WriteSnapshot(dir string, headlines []models.Headline, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("snapshot dir: %w", err)
	}
	seq, err := nextSequence(dir)
	if err != nil {
		return "", err
	}

	entries := make([]snapshotEntry, len(headlines))
	for i, h := range headlines {
		entries[i] = snapshotEntry{Title: h.Title, URL: h.URL}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(entries); err != nil {
		return "", fmt.Errorf("snapshot encode: %w", err)
	}

	name := fmt.Sprintf("ign_news_%03d_%s.json", seq, now.Format("20060102_150405"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("snapshot write: %w", err)
	}
	return path, nil
}

func nextSequence(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("snapshot list: %w", err)
	}
	highest := 0
	for _, e := range entries {
		m := snapshotNameRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > highest {
			highest = n
		}
	}
	return highest + 1, nil
}
