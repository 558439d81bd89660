package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nitesh/gamefeed/internal/config"
	"github.com/nitesh/gamefeed/internal/logging"
	"github.com/nitesh/gamefeed/internal/scraper"
	"github.com/nitesh/gamefeed/internal/service"
	"github.com/nitesh/gamefeed/internal/store"
	"github.com/nitesh/gamefeed/pkg/models"
)

type options struct {
	outDir  string
	archive bool
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "ign-scraper",
		Short: "Scrape the IGN news page into a JSON snapshot",
		Long: `ign-scraper fetches the current IGN news headlines and writes them to
<out>/ign_news_NNN_YYYYMMDD_HHMMSS.json.

Example usage:
  ign-scraper                  # Write a snapshot to ./data
  ign-scraper --out /tmp/ign   # Write somewhere else
  ign-scraper --archive        # Also store headlines in postgres (needs DB_HOST)`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logging.New(cfg.LogLevel, cfg.LogFormat)
			return run(cmd.Context(), cmd.OutOrStdout(), cfg, log, opts)
		},
	}
	cmd.Flags().StringVar(&opts.outDir, "out", "data", "snapshot directory")
	cmd.Flags().BoolVar(&opts.archive, "archive", false, "store headlines in the postgres archive")
	return cmd
}

func run(ctx context.Context, out io.Writer, cfg *config.Config, log logrus.FieldLogger, opts options) error {
	deps := service.Deps{
		Scraper: scraper.New(cfg.IGNNewsURL, nil, nil, log),
		Log:     log,
	}
	if opts.archive {
		if !cfg.DB.Enabled() {
			return fmt.Errorf("--archive: %w (set DB_HOST)", service.ErrNoDatabase)
		}
		db, err := store.Open(ctx, cfg.DB.URL(), log)
		if err != nil {
			return err
		}
		defer db.Close()
		deps.Headlines = store.NewPgStore(db)
	}
	svc := service.NewService(deps)

	headlines, err := svc.ScrapeAndArchive(ctx)
	if err != nil {
		return err
	}
	if len(headlines) == 0 {
		fmt.Fprintln(out, "No results found.")
		return nil
	}

	path, err := scraper.WriteSnapshot(opts.outDir, headlines, time.Now())
	if err != nil {
		return err
	}
	printHeadlines(out, headlines, path)
	return nil
}

func printHeadlines(out io.Writer, headlines []models.Headline, path string) {
	fmt.Fprintf(out, "%d articles scraped from IGN\n", len(headlines))
	fmt.Fprintf(out, "Data saved to: %s\n\n", path)
	for i, h := range headlines {
		fmt.Fprintf(out, "%d. %s\n   URL: %s\n", i+1, h.Title, h.URL)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
