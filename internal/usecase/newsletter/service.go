// Package newsletter composes and delivers the weekly digest: recent
// blog posts plus a market snapshot, rendered once per recipient with a
// personal unsubscribe link and fanned out through the mailer.
package newsletter

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"quantum-digest/internal/domain/entity"
	"quantum-digest/internal/repository"
	"quantum-digest/internal/resilience/retry"
)

const (
	digestSubject = "Quantum Investor Digest - Weekly Update"
	recentPosts   = 5

	// sendParallelism bounds concurrent mailer calls. The mailer's own
	// pacing limiter serializes the actual API hits, this just keeps
	// goroutine count sane for large lists.
	sendParallelism = 4
)

// Mailer delivers one HTML email.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// TokenIssuer mints the per-recipient unsubscribe token.
type TokenIssuer interface {
	UnsubscribeToken(email string) (string, error)
}

// Summary reports one newsletter run.
type Summary struct {
	Total  int
	Sent   int
	Failed int

	// FailedEmails maps each failed recipient to the delivery error.
	FailedEmails map[string]string
}

// Service sends the weekly digest.
type Service struct {
	repo   repository.SubscriberRepository
	mailer Mailer
	posts  PostSource
	quotes QuoteSource
	tokens TokenIssuer

	siteURL        string
	unsubscribeURL string
	policy         retry.Policy
	renderer       *renderer
}

// NewService creates a newsletter Service. posts and quotes may be nil;
// the digest then goes out without that section rather than not at all.
// unsubscribeURL is the endpoint the footer link points at, the signed
// token is appended as a query parameter.
func NewService(
	repo repository.SubscriberRepository,
	mailer Mailer,
	posts PostSource,
	quotes QuoteSource,
	tokens TokenIssuer,
	siteURL, unsubscribeURL string,
	policy retry.Policy,
) (*Service, error) {
	r, err := newRenderer()
	if err != nil {
		return nil, err
	}
	return &Service{
		repo:           repo,
		mailer:         mailer,
		posts:          posts,
		quotes:         quotes,
		tokens:         tokens,
		siteURL:        siteURL,
		unsubscribeURL: unsubscribeURL,
		policy:         policy,
		renderer:       r,
	}, nil
}

// SendWeekly delivers the digest to every active subscriber. Individual
// delivery failures are collected in the summary, never propagated, so
// one bad address cannot sink the run.
func (s *Service) SendWeekly(ctx context.Context) (Summary, error) {
	outcome := retry.Do(ctx, s.policy, "list subscribers", func(ctx context.Context) ([]*entity.Subscriber, error) {
		return s.repo.ListActive(ctx)
	})
	if !outcome.Ok() {
		return Summary{}, fmt.Errorf("list subscribers: %w", outcome.Failure)
	}

	subscribers := outcome.Value
	if len(subscribers) == 0 {
		slog.Info("no active subscribers, skipping newsletter")
		return Summary{FailedEmails: map[string]string{}}, nil
	}
	slog.Info("sending weekly newsletter", slog.Int("subscribers", len(subscribers)))

	posts := s.collectPosts(ctx)
	quotes := s.collectQuotes(ctx)

	summary := Summary{
		Total:        len(subscribers),
		FailedEmails: make(map[string]string),
	}
	var mu sync.Mutex

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(sendParallelism)
	for _, subscriber := range subscribers {
		sub := subscriber
		group.Go(func() error {
			err := s.sendOne(groupCtx, sub.Email, posts, quotes)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				summary.Failed++
				summary.FailedEmails[sub.Email] = err.Error()
				slog.Error("newsletter delivery failed",
					slog.String("email", sub.Email),
					slog.Any("error", err))
				return nil
			}
			summary.Sent++
			return nil
		})
	}
	_ = group.Wait()

	slog.Info("weekly newsletter complete",
		slog.Int("total", summary.Total),
		slog.Int("sent", summary.Sent),
		slog.Int("failed", summary.Failed))
	return summary, nil
}

// sendOne renders the digest for a single recipient and delivers it.
func (s *Service) sendOne(ctx context.Context, email string, posts []Post, quotes []QuoteRow) error {
	token, err := s.tokens.UnsubscribeToken(email)
	if err != nil {
		return fmt.Errorf("issue unsubscribe token: %w", err)
	}

	body, err := s.renderer.render(digestData{
		Subject:        digestSubject,
		DateRange:      weekRange(time.Now().UTC()),
		Posts:          posts,
		Quotes:         quotes,
		SiteURL:        s.siteURL,
		UnsubscribeURL: s.unsubscribeURL + "?token=" + url.QueryEscape(token),
	})
	if err != nil {
		return err
	}

	return s.mailer.Send(ctx, email, digestSubject, body)
}

func (s *Service) collectPosts(ctx context.Context) []Post {
	if s.posts == nil {
		return nil
	}
	posts, err := s.posts.RecentPosts(ctx, recentPosts)
	if err != nil {
		slog.Warn("blog posts unavailable, sending digest without them", slog.Any("error", err))
		return nil
	}
	return posts
}

func (s *Service) collectQuotes(ctx context.Context) []QuoteRow {
	if s.quotes == nil {
		return nil
	}
	quotes, err := s.quotes.Snapshot(ctx)
	if err != nil {
		slog.Warn("market snapshot unavailable, sending digest without it", slog.Any("error", err))
		return nil
	}
	return quotes
}

// weekRange formats the seven days ending at now.
func weekRange(now time.Time) string {
	start := now.AddDate(0, 0, -7)
	return start.Format("Jan 2") + " to " + now.Format("Jan 2, 2006")
}
