package domain

import (
	"context"

	"github.com/osmosis-labs/osmosis/osmomath"
)

// PriceOracle returns the fiat price of one symbol unit of a currency.
type PriceOracle interface {
	// GetPrice returns the price and true, or false if the price is not available.
	GetPrice(ctx context.Context, currency Currency) (osmomath.Dec, bool)
}

// PricingConfig defines the configuration for the pricing.
type PricingConfig struct {
	// The number of milliseconds to cache the pricing data for.
	CacheExpiryMs int `mapstructure:"cache-expiry-ms"`

	// Coingecko URL endpoint.
	CoingeckoUrl string `mapstructure:"coingecko-url"`

	// Coingecko quote currency for fetching prices.
	CoingeckoQuoteCurrency string `mapstructure:"coingecko-quote-currency"`

	// StaticPrices maps coingecko ids to fixed prices. When set, CoinGecko is not queried.
	StaticPrices map[string]string `mapstructure:"static-prices"`
}
