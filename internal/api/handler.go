package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nitesh/gamefeed/internal/extract"
	"github.com/nitesh/gamefeed/internal/service"
	"github.com/nitesh/gamefeed/internal/unsplash"
	"github.com/nitesh/gamefeed/pkg/models"
)

// ImageSource is the part of the image client the handlers use.
type ImageSource interface {
	Search(ctx context.Context, query string, count int, orientation unsplash.Orientation) unsplash.Result
	GamingImages(ctx context.Context) unsplash.Result
}

type Handler struct {
	svc    *service.Service
	images ImageSource
	now    func() time.Time
}

func NewHandler(svc *service.Service, images ImageSource) *Handler {
	return &Handler{svc: svc, images: images, now: time.Now}
}

func RegisterRoutes(r *gin.Engine, h *Handler) {
	r.Use(RequestID())
	r.GET("/healthz", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	{
		v1.GET("/news/search", h.Search)
		v1.GET("/news/latest", h.Latest)
		v1.GET("/news/categories", h.ListCategories)
		v1.GET("/news/categories/:id", h.Category)
		v1.GET("/news/topics/:topic", h.Topic)
		v1.GET("/news/featured", h.Featured)
		v1.GET("/news/developer", h.Developer)
		v1.GET("/spotlight", h.Spotlight)
		v1.GET("/images/search", h.SearchImages)
		v1.GET("/images/gaming", h.GamingImages)
		v1.GET("/headlines", h.Headlines)
	}
}

// RequestID tags each request with an X-Request-ID, keeping the caller's.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

type articleView struct {
	models.Article
	RelativeDate string `json:"relative_date"`
	SourceDomain string `json:"source_domain"`
	ImageQuery   string `json:"image_query"`
}

func (h *Handler) views(articles []models.Article) []articleView {
	now := h.now()
	out := make([]articleView, len(articles))
	for i, a := range articles {
		out[i] = articleView{
			Article:      a,
			RelativeDate: extract.FormatNewsDate(a.PublishedAt, now),
			SourceDomain: extract.SourceDomain(a.URL),
			ImageQuery:   unsplash.QueryForTitle(a.Title),
		}
	}
	return out
}

// writeResult answers a fetch: always 200, degraded when a failure was swallowed.
func (h *Handler) writeResult(c *gin.Context, res service.Result, meta gin.H) {
	meta["count"] = len(res.Articles)
	meta["degraded"] = res.Degraded()
	c.JSON(http.StatusOK, gin.H{
		"meta": meta,
		"data": h.views(res.Articles),
	})
}

// Search: GET /v1/news/search?q=...&limit=10&page=1
func (h *Handler) Search(c *gin.Context) {
	q := c.Query("q")
	lim := parseLimit(c.DefaultQuery("limit", "10"))
	page := parsePage(c.DefaultQuery("page", "1"))
	res := h.svc.Search(c.Request.Context(), q, lim, page)
	h.writeResult(c, res, gin.H{
		"query": q,
		"limit": lim,
		"page":  page,
	})
}

// Latest: GET /v1/news/latest?limit=10
func (h *Handler) Latest(c *gin.Context) {
	lim := parseLimit(c.DefaultQuery("limit", "10"))
	res := h.svc.LatestFeed(c.Request.Context(), lim)
	h.writeResult(c, res, gin.H{"limit": lim})
}

// ListCategories: GET /v1/news/categories
func (h *Handler) ListCategories(c *gin.Context) {
	cats := service.Categories()
	c.JSON(http.StatusOK, gin.H{
		"meta": gin.H{"count": len(cats)},
		"data": cats,
	})
}

// Category: GET /v1/news/categories/:id?limit=10
func (h *Handler) Category(c *gin.Context) {
	id := c.Param("id")
	lim := parseLimit(c.DefaultQuery("limit", "10"))
	res, err := h.svc.FetchCategory(c.Request.Context(), id, lim)
	if errors.Is(err, service.ErrUnknownCategory) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown category: " + id})
		return
	}
	h.writeResult(c, res, gin.H{
		"category": id,
		"limit":    lim,
	})
}

// Topic: GET /v1/news/topics/:topic?limit=5
func (h *Handler) Topic(c *gin.Context) {
	topic := c.Param("topic")
	lim := 0
	if s := c.Query("limit"); s != "" {
		lim = parseLimit(s)
	}
	res, err := h.svc.FetchTopic(c.Request.Context(), topic, lim)
	if errors.Is(err, service.ErrUnknownTopic) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown topic: " + topic})
		return
	}
	h.writeResult(c, res, gin.H{"topic": topic})
}

// Featured: GET /v1/news/featured?limit=1
func (h *Handler) Featured(c *gin.Context) {
	lim := parseLimit(c.DefaultQuery("limit", "1"))
	h.writeResult(c, h.svc.FetchFeaturedGameNews(c.Request.Context(), lim), gin.H{"limit": lim})
}

// Developer: GET /v1/news/developer?limit=1
func (h *Handler) Developer(c *gin.Context) {
	lim := parseLimit(c.DefaultQuery("limit", "1"))
	h.writeResult(c, h.svc.FetchDeveloperSpotlightNews(c.Request.Context(), lim), gin.H{"limit": lim})
}

// Spotlight: GET /v1/spotlight
func (h *Handler) Spotlight(c *gin.Context) {
	sp := h.svc.Spotlight(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"meta": gin.H{"degraded": sp.Degraded},
		"data": sp,
	})
}

type imageView struct {
	models.Image
	OptimizedURL string `json:"optimized_url"`
}

func (h *Handler) writeImages(c *gin.Context, res unsplash.Result, w, ht int, meta gin.H) {
	out := make([]imageView, len(res.Images))
	for i, img := range res.Images {
		out[i] = imageView{Image: img, OptimizedURL: unsplash.OptimizedURL(img, w, ht)}
	}
	meta["count"] = len(out)
	meta["degraded"] = res.Err != nil
	c.JSON(http.StatusOK, gin.H{
		"meta": meta,
		"data": out,
	})
}

// SearchImages: GET /v1/images/search?q=...&count=10&orientation=landscape&w=800&h=600
func (h *Handler) SearchImages(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing q parameter"})
		return
	}
	count := parseLimit(c.DefaultQuery("count", "10"))
	orientation := unsplash.ParseOrientation(c.Query("orientation"))
	w := parseDimension(c.DefaultQuery("w", "800"), 800)
	ht := parseDimension(c.DefaultQuery("h", "600"), 600)

	res := h.images.Search(c.Request.Context(), q, count, orientation)
	h.writeImages(c, res, w, ht, gin.H{
		"query":       q,
		"orientation": orientation,
	})
}

// GamingImages: GET /v1/images/gaming
func (h *Handler) GamingImages(c *gin.Context) {
	h.writeImages(c, h.images.GamingImages(c.Request.Context()), 800, 600, gin.H{})
}

// Headlines: GET /v1/headlines?topic=fps_focus&limit=10
func (h *Handler) Headlines(c *gin.Context) {
	topic := c.Query("topic")
	lim := parseLimit(c.DefaultQuery("limit", "10"))
	res, err := h.svc.Headlines(c.Request.Context(), topic, lim)
	switch {
	case errors.Is(err, service.ErrNoDatabase):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	case errors.Is(err, service.ErrUnknownCategory):
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown topic: " + topic})
		return
	case err != nil:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"meta": gin.H{
			"topic": topic,
			"count": len(res),
			"limit": lim,
		},
		"data": res,
	})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// parseLimit ensures a sane integer limit, with bounds
func parseLimit(s string) int {
	l, err := strconv.Atoi(s)
	if err != nil || l <= 0 {
		return 10
	}
	if l > 100 {
		return 100
	}
	return l
}

func parsePage(s string) int {
	p, err := strconv.Atoi(s)
	if err != nil || p < 1 {
		return 1
	}
	return p
}

func parseDimension(s string, d int) int {
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 || v > 4000 {
		return d
	}
	return v
}
