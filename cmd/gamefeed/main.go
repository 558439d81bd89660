package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/nitesh/gamefeed/internal/api"
	"github.com/nitesh/gamefeed/internal/cache"
	"github.com/nitesh/gamefeed/internal/config"
	"github.com/nitesh/gamefeed/internal/logging"
	"github.com/nitesh/gamefeed/internal/newsapi"
	"github.com/nitesh/gamefeed/internal/ratelimit"
	"github.com/nitesh/gamefeed/internal/scraper"
	"github.com/nitesh/gamefeed/internal/service"
	"github.com/nitesh/gamefeed/internal/store"
	"github.com/nitesh/gamefeed/internal/unsplash"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !cfg.NewsEnabled() {
		log.Warn("NEWS_API_KEY not set: news endpoints will return empty results")
	}
	if !cfg.ImagesEnabled() {
		log.Warn("UNSPLASH_ACCESS_KEY not set: image endpoints will return empty results")
	}

	hc := &http.Client{Timeout: cfg.HTTPTimeout}
	limiter := ratelimit.New(cfg.UpstreamRPS)

	newsOpts := []newsapi.Option{newsapi.WithLimiter(limiter)}
	imageOpts := []unsplash.Option{unsplash.WithLimiter(limiter)}

	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.WithError(err).Warn("redis ping failed")
		}
		cancel()
		defer rdb.Close()

		layer := cache.NewRedis(rdb, cfg.Redis.CacheTTL, log)
		newsOpts = append(newsOpts, newsapi.WithCache(layer))
		if cfg.Redis.CacheImages {
			imageOpts = append(imageOpts, unsplash.WithCache(layer))
		}
		log.WithField("ttl", cfg.Redis.CacheTTL.String()).Info("upstream cache enabled")
	}

	news := newsapi.NewClient(cfg.NewsAPIBaseURL, cfg.NewsAPIKey, hc, log, newsOpts...)
	images := unsplash.NewClient(cfg.UnsplashBaseURL, cfg.UnsplashKey, hc, log, imageOpts...)

	deps := service.Deps{
		News:        news,
		NewsEnabled: cfg.NewsEnabled(),
		Images:      images,
		Scraper:     scraper.New(cfg.IGNNewsURL, nil, limiter, log),
		Log:         log,
	}
	if cfg.DB.Enabled() {
		db, err := store.Open(ctx, cfg.DB.URL(), log)
		if err != nil {
			log.WithError(err).Fatal("database")
		}
		defer db.Close()
		deps.Headlines = store.NewPgStore(db)
	} else {
		log.Info("DB_HOST not set: headline archive disabled")
	}

	svc := service.NewService(deps)
	handler := api.NewHandler(svc, images)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), logging.GinMiddleware(log))
	api.RegisterRoutes(router, handler)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithField("port", cfg.Port).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown")
	}
	log.Info("stopped")
}
