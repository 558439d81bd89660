package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nitesh/gamefeed/internal/metrics"
	"github.com/nitesh/gamefeed/internal/newsapi"
)

// Search returns at most pageSize gaming-relevant articles for an OR-query,
// newest first.
//
// The trusted sources are searched first with twice the page size. If fewer
// than min(pageSize, 3) articles pass the relevance filter, one narrowed
// retry is made from the first OR-clause. If the trusted-source request fails
// outright, the query is broadened and run against every source instead.
func (s *Service) Search(ctx context.Context, query string, pageSize, page int) Result {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if page < 1 {
		page = 1
	}
	if strings.TrimSpace(query) == "" {
		query = DefaultQuery
	}
	log := s.log.WithFields(logrus.Fields{"op": "search", "query": query})
	if !s.newsEnabled {
		return s.degrade("search", log, newsapi.ErrNotConfigured)
	}

	category := isCategoryQuery(query)
	sources := generalSources
	keep := generalFilter()
	if category {
		sources = categorySources
		keep = categoryFilter(orTerms(query))
	}
	candidates := candidateSize(pageSize)

	resp, err := s.news.Everything(ctx, newsapi.EverythingRequest{
		Sources:  sources,
		Query:    query,
		PageSize: candidates,
		Page:     page,
	})
	if err != nil {
		if ctx.Err() != nil {
			return empty(ctx.Err())
		}
		log.WithError(err).Warn("trusted-source search failed, broadening")
		metrics.RecordEscalation("search", "broadened")

		resp, err = s.news.Everything(ctx, newsapi.EverythingRequest{
			Query:    broadenQuery(query),
			PageSize: candidates,
			Page:     page,
		})
		if err != nil {
			return s.degrade("search", log, err)
		}
		return s.finish(ctx, filterArticles(resp.Articles, keep), pageSize)
	}

	kept := filterArticles(resp.Articles, keep)
	if len(kept) >= min(pageSize, resultFloor) {
		return s.finish(ctx, kept, pageSize)
	}

	log.WithFields(logrus.Fields{"kept": len(kept), "category": category}).Debug("below floor, narrowing")
	metrics.RecordEscalation("search", "narrowed")
	retry, err := s.news.Everything(ctx, newsapi.EverythingRequest{
		Query:    narrowQuery(query),
		PageSize: candidates,
		Page:     page,
	})
	if err != nil {
		log.WithError(err).Warn("narrowed retry failed, keeping primary results")
		return s.finish(ctx, kept, pageSize)
	}
	return s.finish(ctx, append(kept, filterArticles(retry.Articles, keep)...), pageSize)
}
