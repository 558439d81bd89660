package service

import (
	"context"
	"fmt"

	dbtypes "github.com/nitesh/gamefeed/internal/db"
	"github.com/nitesh/gamefeed/pkg/models"
)

// ArchiveHeadlines tags each headline with its categories and upserts them.
func (s *Service) ArchiveHeadlines(ctx context.Context, headlines []models.Headline) error {
	if s.repo == nil {
		return ErrNoDatabase
	}
	if len(headlines) == 0 {
		return nil
	}
	rows := make([]*models.Headline, 0, len(headlines))
	for i := range headlines {
		h := headlines[i]
		if h.ScrapedAt.IsZero() {
			h.ScrapedAt = s.now().UTC()
		}
		h.Topics = dbtypes.StringSlice(ClassifyTopics(h.Title, ""))
		rows = append(rows, &h)
	}
	if err := s.repo.SaveMany(ctx, rows); err != nil {
		return fmt.Errorf("archive headlines: %w", err)
	}
	s.log.WithField("count", len(rows)).Info("archived headlines")
	return nil
}

// Headlines lists archived headlines, newest first. An empty topic lists all.
func (s *Service) Headlines(ctx context.Context, topic string, limit int) ([]*models.Headline, error) {
	if s.repo == nil {
		return nil, ErrNoDatabase
	}
	if topic == "" {
		return s.repo.Recent(ctx, limit)
	}
	if _, ok := findCategory(topic); !ok {
		return nil, ErrUnknownCategory
	}
	return s.repo.FindByTopic(ctx, topic, limit)
}

// ScrapeAndArchive scrapes IGN and archives the result, returning the
// headlines scraped.
func (s *Service) ScrapeAndArchive(ctx context.Context) ([]models.Headline, error) {
	if s.scraper == nil {
		return nil, fmt.Errorf("scrape: no scraper configured")
	}
	headlines, err := s.scraper.ScrapeIGN(ctx)
	if err != nil {
		return nil, err
	}
	if s.repo == nil {
		return headlines, nil
	}
	if err := s.ArchiveHeadlines(ctx, headlines); err != nil {
		return headlines, err
	}
	return headlines, nil
}
