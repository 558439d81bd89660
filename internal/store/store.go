// Package store archives scraped IGN headlines in postgres.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	dbtypes "github.com/nitesh/gamefeed/internal/db"
	"github.com/nitesh/gamefeed/pkg/models"
)

const (
	defaultLimit = 20
	maxLimit     = 100

	pingAttempts = 10
	pingInterval = 2 * time.Second
)

type PgStore struct {
	db *sqlx.DB
}

func NewPgStore(db *sql.DB) *PgStore {
	return &PgStore{db: sqlx.NewDb(db, "postgres")}
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	initSQL := `
CREATE TABLE IF NOT EXISTS ign_headlines(
  id UUID PRIMARY KEY,
  title TEXT NOT NULL,
  url TEXT NOT NULL UNIQUE,
  topics JSONB NOT NULL DEFAULT '[]'::jsonb,
  scraped_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ign_headlines_scraped ON ign_headlines(scraped_at);
-- GIN index for jsonb array search on topics
CREATE INDEX IF NOT EXISTS idx_ign_headlines_topics ON ign_headlines USING GIN (topics);
`
	_, err := db.ExecContext(ctx, initSQL)
	return err
}

// SaveMany upserts headlines by url in one transaction. A headline seen
// again keeps its id and gets the new title, topics and scrape time.
func (p *PgStore) SaveMany(ctx context.Context, headlines []*models.Headline) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	stmt := `
INSERT INTO ign_headlines (id, title, url, topics, scraped_at)
VALUES ($1,$2,$3,$4::jsonb,$5)
ON CONFLICT (url) DO UPDATE SET
 title=EXCLUDED.title,
 topics=EXCLUDED.topics,
 scraped_at=EXCLUDED.scraped_at;
`

	for _, h := range headlines {
		if h.ID == "" {
			h.ID = uuid.New().String()
		}
		// dbtypes.StringSlice marshals nil -> []
		if h.Topics == nil {
			h.Topics = dbtypes.StringSlice{}
		}
		if h.ScrapedAt.IsZero() {
			h.ScrapedAt = time.Now().UTC()
		}

		_, err := tx.ExecContext(ctx, stmt,
			h.ID,
			h.Title,
			h.URL,
			h.Topics,
			h.ScrapedAt,
		)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("upsert headline url=%s: %w", h.URL, err)
		}
	}

	return tx.Commit()
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > maxLimit {
		return defaultLimit
	}
	return limit
}

func (p *PgStore) Recent(ctx context.Context, limit int) ([]*models.Headline, error) {
	rows := []*models.Headline{}
	query := `
SELECT id,title,url,topics,scraped_at
FROM ign_headlines
ORDER BY scraped_at DESC
LIMIT $1
`
	err := p.db.SelectContext(ctx, &rows, query, clampLimit(limit))
	return rows, err
}

func (p *PgStore) FindByTopic(ctx context.Context, topic string, limit int) ([]*models.Headline, error) {
	rows := []*models.Headline{}
	// topics @> '["topic"]' checks jsonb array containment.
	query := `
SELECT id,title,url,topics,scraped_at
FROM ign_headlines
WHERE topics @> $1::jsonb
ORDER BY scraped_at DESC
LIMIT $2
`
	err := p.db.SelectContext(ctx, &rows, query, dbtypes.StringSlice{topic}, clampLimit(limit))
	return rows, err
}

// Open connects to postgres, waiting for the database to accept pings
// (it may still be starting in docker), and runs migrations.
func Open(ctx context.Context, url string, log logrus.FieldLogger) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	for i := 0; i < pingAttempts; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		log.WithError(err).WithField("attempt", i+1).Warn("waiting for db")
		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, ctx.Err()
		case <-time.After(pingInterval):
		}
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("could not connect to db: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return db, nil
}
