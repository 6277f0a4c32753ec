package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"quantum-digest/internal/config"
	pgRepo "quantum-digest/internal/infra/adapter/persistence/postgres"
	"quantum-digest/internal/infra/db"
	"quantum-digest/internal/infra/mailer"
	workerPkg "quantum-digest/internal/infra/worker"
	"quantum-digest/internal/observability/logging"
	"quantum-digest/internal/provider"
	"quantum-digest/internal/usecase/fetch"
	"quantum-digest/internal/usecase/newsletter"
	"quantum-digest/internal/usecase/subscription"
)

const (
	defaultSiteURL = "https://quantuminvestor.net"
	defaultFeedURL = "https://quantuminvestor.net/rss.xml"

	// Unsubscribe links stay valid long enough to cover a stretch of
	// unread digests.
	unsubscribeTokenTTL = 90 * 24 * time.Hour
)

func main() {
	_ = godotenv.Load()

	logger := logging.NewLogger()
	slog.SetDefault(logger)

	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	workerConfig := workerPkg.LoadConfigFromEnv(logger)
	if err := workerConfig.Validate(); err != nil {
		logger.Error("invalid worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Duration("send_timeout", workerConfig.SendTimeout),
		slog.Int("health_port", workerConfig.HealthPort),
		slog.Int("metrics_port", workerConfig.MetricsPort))

	workerMetrics := workerPkg.NewMetrics()
	startMetricsServer(ctx, logger, workerConfig.MetricsPort)

	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	svc := setupNewsletterService(logger, database)

	startCronWorker(ctx, logger, svc, workerConfig, workerMetrics, healthServer)
}

// initDatabase opens the connection pool and applies schema migrations.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to apply migrations", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database ready")
	return database
}

// setupNewsletterService wires the full delivery pipeline: subscriber
// store, market providers, blog feed, mailer and token signing.
func setupNewsletterService(logger *slog.Logger, database *sql.DB) *newsletter.Service {
	retryConfig := config.LoadRetryConfig()
	policy := retryConfig.Policy()

	providerConfig := config.LoadProviderConfig()
	registry, err := provider.NewRegistry(providerConfig, retryConfig.RequestTimeout)
	if err != nil {
		logger.Error("failed to configure market providers", slog.Any("error", err))
		os.Exit(1)
	}
	stockPrimary, stockFallback := registry.StockChain()
	cryptoPrimary, cryptoFallback := registry.CryptoChain()

	watchlist := loadWatchlist(logger)
	fetcher := fetch.NewService(policy)
	quotes := newsletter.NewMarketSnapshot(
		fetcher,
		stockPrimary, stockFallback,
		cryptoPrimary, cryptoFallback,
		watchlist,
		fetchInterval(providerConfig),
	)

	feedURL := os.Getenv("BLOG_FEED_URL")
	if feedURL == "" {
		feedURL = defaultFeedURL
	}
	posts := newsletter.NewFeedPostSource(feedURL, policy)

	mailerConfig := config.LoadMailerConfig()
	if err := mailerConfig.Validate(); err != nil {
		logger.Error("invalid mailer configuration", slog.Any("error", err))
		os.Exit(1)
	}
	brevo := mailer.NewBrevo(mailerConfig)

	secret := os.Getenv("UNSUBSCRIBE_TOKEN_SECRET")
	if secret == "" {
		logger.Error("UNSUBSCRIBE_TOKEN_SECRET is required")
		os.Exit(1)
	}
	tokens := subscription.NewTokenManager([]byte(secret), unsubscribeTokenTTL)

	siteURL := os.Getenv("SITE_URL")
	if siteURL == "" {
		siteURL = defaultSiteURL
	}
	repo := pgRepo.NewSubscriberRepo(database)
	subscriptions := subscription.NewService(repo, tokens, policy)

	svc, err := newsletter.NewService(
		repo,
		brevo,
		posts,
		quotes,
		subscriptions,
		siteURL,
		siteURL+"/unsubscribe",
		policy,
	)
	if err != nil {
		logger.Error("failed to build newsletter service", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("newsletter service initialized",
		slog.String("feed_url", feedURL),
		slog.Int("watchlist_stocks", len(watchlist.Stocks)),
		slog.Int("watchlist_crypto", len(watchlist.Crypto)))
	return svc
}

// loadWatchlist reads WATCHLIST_PATH, falling back to the built-in set.
func loadWatchlist(logger *slog.Logger) config.Watchlist {
	path := os.Getenv("WATCHLIST_PATH")
	if path == "" {
		return config.DefaultWatchlist()
	}
	watchlist, err := config.LoadWatchlist(path)
	if err != nil {
		logger.Warn("failed to load watchlist, using default",
			slog.String("path", path), slog.Any("error", err))
		return config.DefaultWatchlist()
	}
	return watchlist
}

// fetchInterval picks the pacing interval for the batch fetch: the
// strictest quota among the configured providers wins.
func fetchInterval(cfg config.ProviderConfig) time.Duration {
	interval := time.Duration(0)
	if cfg.AlphaVantageKey != "" && cfg.AlphaVantageInterval > interval {
		interval = cfg.AlphaVantageInterval
	}
	if cfg.FinnhubKey != "" && cfg.FinnhubInterval > interval {
		interval = cfg.FinnhubInterval
	}
	if cfg.MarketstackKey != "" && cfg.MarketstackInterval > interval {
		interval = cfg.MarketstackInterval
	}
	return interval
}

// startCronWorker schedules the weekly send and blocks until shutdown.
func startCronWorker(
	ctx context.Context,
	logger *slog.Logger,
	svc *newsletter.Service,
	cfg workerPkg.Config,
	metrics *workerPkg.Metrics,
	healthServer *workerPkg.HealthServer,
) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(cfg.CronSchedule, func() {
		runNewsletterJob(logger, svc, cfg, metrics)
	})
	if err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	healthServer.SetReady(true)
	logger.Info("worker started", slog.String("schedule", cfg.CronSchedule), slog.String("timezone", cfg.Timezone))

	<-ctx.Done()
	logger.Info("shutdown signal received, stopping scheduler")
	<-c.Stop().Done()
}

// runNewsletterJob executes one weekly send under the configured timeout.
func runNewsletterJob(logger *slog.Logger, svc *newsletter.Service, cfg workerPkg.Config, metrics *workerPkg.Metrics) {
	startTime := time.Now()
	metrics.RecordJobRun("started")
	logger.Info("newsletter run started")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.SendTimeout)
	defer cancel()

	summary, err := svc.SendWeekly(ctx)
	if err != nil {
		logger.Error("newsletter run failed", slog.Any("error", err))
		metrics.RecordJobRun("failure")
		metrics.RecordJobDuration(time.Since(startTime).Seconds())
		return
	}

	metrics.RecordJobRun("success")
	metrics.RecordJobDuration(time.Since(startTime).Seconds())
	metrics.RecordEmailsSent(summary.Sent)
	metrics.RecordLastSuccess()

	logger.Info("newsletter run completed",
		slog.Int("total", summary.Total),
		slog.Int("sent", summary.Sent),
		slog.Int("failed", summary.Failed),
		slog.Duration("duration", time.Since(startTime)))
}
