package newsletter

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"quantum-digest/internal/domain/entity"
	"quantum-digest/internal/resilience/retry"
)

type fakeSubscriberRepo struct {
	subscribers []*entity.Subscriber
	listErr     error
}

func (f *fakeSubscriberRepo) Create(context.Context, *entity.Subscriber) error { return nil }

func (f *fakeSubscriberRepo) GetByEmail(context.Context, string) (*entity.Subscriber, error) {
	return nil, entity.ErrNotFound
}

func (f *fakeSubscriberRepo) ListActive(context.Context) ([]*entity.Subscriber, error) {
	return f.subscribers, f.listErr
}

func (f *fakeSubscriberRepo) Deactivate(context.Context, string) error { return nil }

func (f *fakeSubscriberRepo) CountActive(context.Context) (int64, error) {
	return int64(len(f.subscribers)), nil
}

type fakeMailer struct {
	mu     sync.Mutex
	sent   map[string]string // recipient -> body
	reject map[string]error
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{sent: make(map[string]string), reject: make(map[string]error)}
}

func (f *fakeMailer) Send(_ context.Context, to, _, htmlBody string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.reject[to]; ok {
		return err
	}
	f.sent[to] = htmlBody
	return nil
}

type staticPosts struct{ posts []Post }

func (s staticPosts) RecentPosts(context.Context, int) ([]Post, error) { return s.posts, nil }

type staticQuotes struct{ rows []QuoteRow }

func (s staticQuotes) Snapshot(context.Context) ([]QuoteRow, error) { return s.rows, nil }

type staticTokens struct{}

func (staticTokens) UnsubscribeToken(email string) (string, error) {
	return "tok-" + email, nil
}

func quickPolicy() retry.Policy {
	return retry.Policy{MaxRetries: 1, InitialDelay: time.Millisecond, BackoffBase: 2.0}
}

func activeSubscribers(emails ...string) []*entity.Subscriber {
	subs := make([]*entity.Subscriber, 0, len(emails))
	for i, email := range emails {
		subs = append(subs, &entity.Subscriber{ID: int64(i + 1), Email: email, Active: true})
	}
	return subs
}

func newTestService(t *testing.T, repo *fakeSubscriberRepo, mailer Mailer) *Service {
	t.Helper()
	svc, err := NewService(
		repo,
		mailer,
		staticPosts{posts: []Post{{Title: "AI and the Market", URL: "https://quantuminvestor.net/p"}}},
		staticQuotes{rows: []QuoteRow{{Symbol: "AAPL", Price: 189.25, Currency: "USD", TradingDay: "2025-06-13"}}},
		staticTokens{},
		"https://quantuminvestor.net",
		"https://api.quantuminvestor.net/unsubscribe",
		quickPolicy(),
	)
	if err != nil {
		t.Fatalf("NewService err=%v", err)
	}
	return svc
}

func TestSendWeekly(t *testing.T) {
	repo := &fakeSubscriberRepo{subscribers: activeSubscribers("a@example.com", "b@example.com")}
	mailer := newFakeMailer()
	svc := newTestService(t, repo, mailer)

	summary, err := svc.SendWeekly(context.Background())
	if err != nil {
		t.Fatalf("SendWeekly err=%v", err)
	}

	if summary.Total != 2 || summary.Sent != 2 || summary.Failed != 0 {
		t.Errorf("unexpected summary %+v", summary)
	}
	if len(mailer.sent) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(mailer.sent))
	}

	// Each recipient gets their own unsubscribe token in the body.
	if body := mailer.sent["a@example.com"]; !strings.Contains(body, "token=tok-a%40example.com") {
		t.Errorf("expected personal unsubscribe token in body")
	}
	if body := mailer.sent["a@example.com"]; !strings.Contains(body, "AI and the Market") {
		t.Error("expected post content in body")
	}
	if body := mailer.sent["a@example.com"]; !strings.Contains(body, "189.25 USD") {
		t.Error("expected market snapshot in body")
	}
}

func TestSendWeekly_PartialFailure(t *testing.T) {
	repo := &fakeSubscriberRepo{subscribers: activeSubscribers("a@example.com", "bad@example.com", "c@example.com")}
	mailer := newFakeMailer()
	mailer.reject["bad@example.com"] = errors.New("mailbox does not exist")
	svc := newTestService(t, repo, mailer)

	summary, err := svc.SendWeekly(context.Background())
	if err != nil {
		t.Fatalf("SendWeekly err=%v", err)
	}

	if summary.Sent != 2 || summary.Failed != 1 {
		t.Errorf("unexpected summary %+v", summary)
	}
	if reason, ok := summary.FailedEmails["bad@example.com"]; !ok || !strings.Contains(reason, "mailbox") {
		t.Errorf("expected failure reason recorded, got %v", summary.FailedEmails)
	}
}

func TestSendWeekly_NoSubscribers(t *testing.T) {
	repo := &fakeSubscriberRepo{}
	mailer := newFakeMailer()
	svc := newTestService(t, repo, mailer)

	summary, err := svc.SendWeekly(context.Background())
	if err != nil {
		t.Fatalf("SendWeekly err=%v", err)
	}
	if summary.Total != 0 || summary.Sent != 0 {
		t.Errorf("unexpected summary %+v", summary)
	}
	if len(mailer.sent) != 0 {
		t.Error("expected no deliveries")
	}
}

func TestSendWeekly_ListFailure(t *testing.T) {
	repo := &fakeSubscriberRepo{listErr: errors.New("connection refused")}
	mailer := newFakeMailer()
	svc := newTestService(t, repo, mailer)

	if _, err := svc.SendWeekly(context.Background()); err == nil {
		t.Fatal("expected error when subscriber listing fails")
	}
}
