// Command compare fetches every watchlist symbol from every configured
// market-data provider and reports price discrepancies between them.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"quantum-digest/internal/config"
	"quantum-digest/internal/domain/entity"
	"quantum-digest/internal/observability/logging"
	"quantum-digest/internal/provider"
	"quantum-digest/internal/usecase/fetch"
)

// discrepancyThreshold is the relative spread between the lowest and
// highest quote for one symbol above which a warning is printed.
const discrepancyThreshold = 0.01

type options struct {
	watchlistPath string
	symbols       []string
	crypto        []string
	timeout       time.Duration
}

func main() {
	_ = godotenv.Load()
	logger := logging.NewTextLogger()
	slog.SetDefault(logger)

	opts := &options{}
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare quotes across the configured market-data providers",
		Long: "Fetches every watchlist symbol from every provider with a " +
			"configured API key and flags symbols whose prices disagree.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.watchlistPath, "watchlist", "", "path to a watchlist YAML file")
	cmd.Flags().StringSliceVar(&opts.symbols, "symbols", nil, "stock symbols to compare (overrides the watchlist)")
	cmd.Flags().StringSliceVar(&opts.crypto, "crypto", nil, "crypto symbols to compare (overrides the watchlist)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 15*time.Minute, "overall run timeout")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, opts *options) error {
	retryConfig := config.LoadRetryConfig()
	providerConfig := config.LoadProviderConfig()

	registry, err := provider.NewRegistry(providerConfig, retryConfig.RequestTimeout)
	if err != nil {
		return err
	}

	watchlist := resolveWatchlist(opts)
	fetcher := fetch.NewService(retryConfig.Policy())

	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	intervals := map[string]time.Duration{
		"alphavantage": providerConfig.AlphaVantageInterval,
		"finnhub":      providerConfig.FinnhubInterval,
		"marketstack":  providerConfig.MarketstackInterval,
	}

	warnings := 0
	warnings += compareSymbols(ctx, fetcher, registry.Stocks(), watchlist.Stocks, intervals)

	cryptoPrimary, cryptoFallback := registry.CryptoChain()
	var cryptoAdapters []provider.Adapter
	if cryptoPrimary != nil {
		cryptoAdapters = append(cryptoAdapters, cryptoPrimary)
	}
	if cryptoFallback != nil {
		cryptoAdapters = append(cryptoAdapters, cryptoFallback)
	}
	warnings += compareSymbols(ctx, fetcher, cryptoAdapters, watchlist.Crypto, intervals)

	printSummary(fetcher, warnings)
	return ctx.Err()
}

func resolveWatchlist(opts *options) config.Watchlist {
	if len(opts.symbols) > 0 || len(opts.crypto) > 0 {
		return config.Watchlist{Stocks: opts.symbols, Crypto: opts.crypto}
	}
	if opts.watchlistPath != "" {
		watchlist, err := config.LoadWatchlist(opts.watchlistPath)
		if err != nil {
			slog.Warn("failed to load watchlist, using default",
				slog.String("path", opts.watchlistPath), slog.Any("error", err))
			return config.DefaultWatchlist()
		}
		return watchlist
	}
	return config.DefaultWatchlist()
}

// compareSymbols fetches each symbol from each adapter and prints one
// table section. Returns the number of discrepancy warnings.
func compareSymbols(
	ctx context.Context,
	fetcher *fetch.Service,
	adapters []provider.Adapter,
	symbols []string,
	intervals map[string]time.Duration,
) int {
	if len(adapters) == 0 || len(symbols) == 0 {
		return 0
	}

	warnings := 0
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SYMBOL\tPROVIDER\tPRICE\tTRADING DAY")

	for _, symbol := range symbols {
		if ctx.Err() != nil {
			break
		}

		quotes := make([]*entity.Quote, 0, len(adapters))
		for _, adapter := range adapters {
			quote := fetcher.FetchWithRetry(ctx, symbol, adapter, nil, intervals[adapter.Name()])
			if quote == nil {
				fmt.Fprintf(w, "%s\t%s\t-\t-\n", symbol, adapter.Name())
				continue
			}
			quotes = append(quotes, quote)
			fmt.Fprintf(w, "%s\t%s\t%.2f %s\t%s\n",
				symbol, quote.Provider, quote.Price, quote.Currency, quote.TradingDay)
		}

		if spread, ok := priceSpread(quotes); ok && spread > discrepancyThreshold {
			warnings++
			fmt.Fprintf(w, "%s\t!\tprices differ by %.2f%%\t\n", symbol, spread*100)
		}
	}

	w.Flush()
	fmt.Println()
	return warnings
}

// priceSpread returns the relative gap between the lowest and highest
// price. ok is false with fewer than two quotes.
func priceSpread(quotes []*entity.Quote) (float64, bool) {
	if len(quotes) < 2 {
		return 0, false
	}
	low, high := quotes[0].Price, quotes[0].Price
	for _, q := range quotes[1:] {
		if q.Price < low {
			low = q.Price
		}
		if q.Price > high {
			high = q.Price
		}
	}
	if low <= 0 {
		return 0, false
	}
	return (high - low) / low, true
}

func printSummary(fetcher *fetch.Service, warnings int) {
	stats := fetcher.Stats()
	fmt.Println("Summary")
	fmt.Printf("  attempts:           %d\n", stats.TotalAttempts)
	fmt.Printf("  primary successes:  %d\n", stats.PrimarySuccesses)
	fmt.Printf("  fallback successes: %d\n", stats.FallbackSuccesses)
	fmt.Printf("  failures:           %d\n", stats.TotalFailures)
	fmt.Printf("  retries used:       %d\n", stats.RetriesUsed)
	fmt.Printf("  success rate:       %.1f%%\n", fetcher.SuccessRate())
	fmt.Printf("  discrepancies:      %d\n", warnings)

	if fetcher.HasFailures() {
		fmt.Println("Failed symbols")
		for symbol, reason := range fetcher.Failures() {
			fmt.Printf("  %s: %s\n", symbol, reason)
		}
	}
}
