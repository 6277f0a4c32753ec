package newsletter

import (
	"context"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"

	"quantum-digest/internal/resilience/retry"
)

// Post is one blog entry surfaced in the digest.
type Post struct {
	Title       string
	URL         string
	Summary     string
	PublishedAt time.Time
}

// PostSource supplies recent blog posts for the digest body.
type PostSource interface {
	RecentPosts(ctx context.Context, limit int) ([]Post, error)
}

// FeedPostSource reads posts from the blog's RSS feed. Feed fetches go
// through the retry executor since the blog host occasionally times out.
type FeedPostSource struct {
	parser  *gofeed.Parser
	feedURL string
	policy  retry.Policy
}

// NewFeedPostSource creates a FeedPostSource for feedURL.
func NewFeedPostSource(feedURL string, policy retry.Policy) *FeedPostSource {
	return &FeedPostSource{
		parser:  gofeed.NewParser(),
		feedURL: feedURL,
		policy:  policy,
	}
}

// RecentPosts returns up to limit posts, newest first as the feed
// orders them.
func (s *FeedPostSource) RecentPosts(ctx context.Context, limit int) ([]Post, error) {
	outcome := retry.Do(ctx, s.policy, "blog feed", func(ctx context.Context) (*gofeed.Feed, error) {
		return s.parser.ParseURLWithContext(s.feedURL, ctx)
	})
	if !outcome.Ok() {
		return nil, fmt.Errorf("fetch blog feed: %w", outcome.Failure)
	}

	feed := outcome.Value
	posts := make([]Post, 0, limit)
	for _, item := range feed.Items {
		if len(posts) == limit {
			break
		}
		post := Post{
			Title:   item.Title,
			URL:     item.Link,
			Summary: item.Description,
		}
		if item.PublishedParsed != nil {
			post.PublishedAt = *item.PublishedParsed
		}
		posts = append(posts, post)
	}
	return posts, nil
}
