package domain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"time"
)

const (
	newsTitleMarker   = "TITLE:"
	newsContentMarker = "CONTENT:"
)

// Article is one news item returned by the news collaborator.
type Article struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	Source         string    `json:"source"`
	URL            string    `json:"url"`
	PublishedAt    time.Time `json:"published_at"`
	RelevanceScore int       `json:"relevance_score"`
	Category       string    `json:"category"`
}

// NewsFetcher retrieves articles about one topic.
type NewsFetcher interface {
	FetchNews(ctx context.Context, topic string) ([]Article, error)
}

// NewsFeed returns the most recent articles across all tracked topics.
type NewsFeed interface {
	LatestNews(ctx context.Context, limit int) ([]Article, error)
}

// ParseNewsItems extracts articles from free text laid out as repeated
// "TITLE: ... CONTENT: ..." blocks. Text before the first TITLE marker is
// ignored. A block is dropped when it has no CONTENT marker, more than one,
// or an empty title or body. The second return value counts dropped blocks.
func ParseNewsItems(text, source string) ([]Article, int) {
	blocks := strings.Split(text, newsTitleMarker)
	if len(blocks) < 2 {
		return nil, 0
	}

	now := clock.Now().UTC()
	articles := make([]Article, 0, len(blocks)-1)
	dropped := 0
	for _, block := range blocks[1:] {
		if strings.Count(block, newsContentMarker) != 1 {
			dropped++
			continue
		}
		rawTitle, rawContent, _ := strings.Cut(block, newsContentMarker)
		title := cleanNewsField(rawTitle)
		content := cleanNewsField(rawContent)
		if title == "" || content == "" {
			dropped++
			continue
		}
		articles = append(articles, Article{
			ID:          articleID(title),
			Title:       title,
			Content:     content,
			Source:      source,
			PublishedAt: now,
			Category:    "maritime",
		})
	}
	return articles, dropped
}

// cleanNewsField strips whitespace, markdown emphasis, list separators and
// literal "\n" sequences that models echo back from the prompt.
func cleanNewsField(s string) string {
	for {
		before := s
		s = strings.TrimSpace(s)
		s = strings.TrimPrefix(s, `\n`)
		s = strings.TrimSuffix(s, `\n`)
		s = strings.Trim(s, "*#-")
		if s == before {
			return s
		}
	}
}

// articleID is a short stable hash of the title; titles are the dedupe key.
func articleID(title string) string {
	sum := sha256.Sum256([]byte(title))
	return hex.EncodeToString(sum[:8])
}

// MergeArticles dedupes by title (the later occurrence wins) and orders the
// result newest first. Ties keep first-seen order.
func MergeArticles(articles []Article) []Article {
	index := make(map[string]int, len(articles))
	out := make([]Article, 0, len(articles))
	for _, a := range articles {
		if i, ok := index[a.Title]; ok {
			out[i] = a
			continue
		}
		index[a.Title] = len(out)
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	return out
}
