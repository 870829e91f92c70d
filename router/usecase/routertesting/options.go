package routertesting

import (
	"github.com/osmosis-labs/poolrouter/domain"
)

// MockOptions holds the configuration overrides for SetupRouterAndPoolsUsecase.
type MockOptions struct {
	RouterConfig domain.RouterConfig
	PoolsConfig  domain.PoolsConfig
	Currencies   map[string]domain.Currency
}

// MockOption overrides a field of MockOptions.
type MockOption func(*MockOptions)

// WithRouterConfig sets the router config on options.
func WithRouterConfig(config domain.RouterConfig) MockOption {
	return func(options *MockOptions) {
		options.RouterConfig = config
	}
}

// WithPoolsConfig sets the pools config on options.
func WithPoolsConfig(config domain.PoolsConfig) MockOption {
	return func(options *MockOptions) {
		options.PoolsConfig = config
	}
}

// WithCurrencies loads additional listed currencies into the registry.
func WithCurrencies(currencies map[string]domain.Currency) MockOption {
	return func(options *MockOptions) {
		options.Currencies = currencies
	}
}
