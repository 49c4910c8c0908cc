package news

import (
	"context"
	"sync"
	"time"

	"github.com/couchcryptid/port-risk-service/internal/domain"
	"github.com/couchcryptid/port-risk-service/internal/observability"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
)

const refreshKey = "latest"

// refreshTimeout bounds a shared refresh, which outlives any single caller.
const refreshTimeout = 2 * time.Minute

// Cache wraps a NewsFeed and serves the merged article list for ttl after each
// successful refresh. Concurrent misses share one upstream refresh.
type Cache struct {
	inner   domain.NewsFeed
	ttl     time.Duration
	clock   clockwork.Clock
	metrics *observability.Metrics

	group singleflight.Group

	mu        sync.Mutex
	articles  []domain.Article
	fetchedAt time.Time
}

// NewCache creates a TTL cache decorator around a news feed.
func NewCache(inner domain.NewsFeed, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics) *Cache {
	return &Cache{
		inner:   inner,
		ttl:     ttl,
		clock:   clock,
		metrics: metrics,
	}
}

// LatestNews returns up to limit cached articles, refreshing the cache when
// it is empty or older than the TTL. A limit <= 0 returns everything cached.
func (c *Cache) LatestNews(ctx context.Context, limit int) ([]domain.Article, error) {
	if articles, ok := c.get(); ok {
		c.metrics.NewsCache.WithLabelValues("hit").Inc()
		return truncate(articles, limit), nil
	}
	c.metrics.NewsCache.WithLabelValues("miss").Inc()

	ch := c.group.DoChan(refreshKey, func() (any, error) {
		// The refresh outlives any single caller; each waits on its own ctx below.
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()

		articles, err := c.inner.LatestNews(rctx, 0)
		if err != nil {
			return nil, err
		}
		// Empty refreshes are not cached so the next request retries upstream.
		if len(articles) > 0 {
			c.put(articles)
		}
		return articles, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return truncate(res.Val.([]domain.Article), limit), nil
	}
}

// Invalidate drops the cached articles.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.articles = nil
	c.fetchedAt = time.Time{}
}

func (c *Cache) get() ([]domain.Article, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.articles) == 0 || c.clock.Since(c.fetchedAt) >= c.ttl {
		return nil, false
	}
	return c.articles, true
}

func (c *Cache) put(articles []domain.Article) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.articles = articles
	c.fetchedAt = c.clock.Now()
}

// truncate copies so callers cannot mutate the cached slice.
func truncate(articles []domain.Article, limit int) []domain.Article {
	n := len(articles)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domain.Article, n)
	copy(out, articles[:n])
	return out
}
