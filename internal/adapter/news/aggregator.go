package news

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/couchcryptid/port-risk-service/internal/domain"
	"golang.org/x/sync/errgroup"
)

// DefaultTopics are the maritime topics queried on every refresh.
var DefaultTopics = []string{
	"maritime shipping industry updates",
	"global maritime trade news",
	"maritime technology and innovation",
	"maritime safety and regulations",
	"maritime environmental impact",
}

const defaultConcurrency = 3

// Aggregator implements domain.NewsFeed by fanning out one FetchNews call
// per topic and merging the results.
type Aggregator struct {
	fetcher     domain.NewsFetcher
	topics      []string
	concurrency int
	logger      *slog.Logger
}

// NewAggregator creates an aggregator. A nil or empty topics slice uses DefaultTopics.
func NewAggregator(fetcher domain.NewsFetcher, topics []string, logger *slog.Logger) *Aggregator {
	if len(topics) == 0 {
		topics = DefaultTopics
	}
	return &Aggregator{
		fetcher:     fetcher,
		topics:      topics,
		concurrency: defaultConcurrency,
		logger:      logger,
	}
}

// LatestNews queries every topic, dedupes by title and returns the newest
// limit articles. A limit <= 0 returns everything. A failing topic is logged
// and skipped; an error is returned only when every topic fails.
func (a *Aggregator) LatestNews(ctx context.Context, limit int) ([]domain.Article, error) {
	results := make([][]domain.Article, len(a.topics))

	var (
		mu   sync.Mutex
		errs []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, topic := range a.topics {
		g.Go(func() error {
			articles, err := a.fetcher.FetchNews(gctx, topic)
			if err != nil {
				a.logger.Warn("news topic failed", "topic", topic, "error", err)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return nil
			}
			results[i] = articles
			return nil
		})
	}
	_ = g.Wait()

	if len(errs) == len(a.topics) && len(errs) > 0 {
		return nil, fmt.Errorf("all news topics failed: %w", errors.Join(errs...))
	}

	var all []domain.Article
	for _, r := range results {
		all = append(all, r...)
	}
	merged := domain.MergeArticles(all)
	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}
