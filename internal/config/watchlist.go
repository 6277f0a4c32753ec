package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Watchlist is the set of symbols the compare CLI and enrichment jobs track.
// Loaded from a YAML file:
//
//	stocks:
//	  - AAPL
//	  - MSFT
//	crypto:
//	  - BTC
type Watchlist struct {
	Stocks []string `yaml:"stocks"`
	Crypto []string `yaml:"crypto"`
}

// DefaultWatchlist returns the built-in symbol set used when no file is given.
func DefaultWatchlist() Watchlist {
	return Watchlist{
		Stocks: []string{"AAPL", "MSFT", "GOOGL", "AMZN", "TSLA"},
		Crypto: []string{"BTC"},
	}
}

// LoadWatchlist reads and parses a watchlist YAML file.
func LoadWatchlist(path string) (Watchlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Watchlist{}, fmt.Errorf("read watchlist: %w", err)
	}

	var wl Watchlist
	if err := yaml.Unmarshal(data, &wl); err != nil {
		return Watchlist{}, fmt.Errorf("parse watchlist: %w", err)
	}
	if len(wl.Stocks) == 0 && len(wl.Crypto) == 0 {
		return Watchlist{}, fmt.Errorf("watchlist %s contains no symbols", path)
	}
	return wl, nil
}
