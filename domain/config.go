package domain

import "fmt"

// Config defines the config for the pool router server.
type Config struct {
	// Defines the web server configuration.
	ServerAddress string `mapstructure:"server-address"`

	// Defines the logger configuration.
	LoggerFilename     string `mapstructure:"logger-filename"`
	LoggerIsProduction bool   `mapstructure:"logger-is-production"`
	LoggerLevel        string `mapstructure:"logger-level"`

	ChainID string `mapstructure:"chain-id"`

	// Chain registry assets file URL.
	ChainRegistryAssetsFileURL string `mapstructure:"chain-registry-assets-url"`
	// UpdateAssetsIntervalSecs is how often the asset list is refetched. Zero disables refetching.
	UpdateAssetsIntervalSecs int `mapstructure:"update-assets-interval-secs"`

	// Router encapsulates the router config.
	Router *RouterConfig `mapstructure:"router"`

	// Pools encapsulates the pools config.
	Pools *PoolsConfig `mapstructure:"pools"`

	Pricing *PricingConfig `mapstructure:"pricing"`

	// OTEL encapsulates the tracing config.
	OTEL *OTELConfig `mapstructure:"otel"`

	CORS *CORSConfig `mapstructure:"cors"`
}

// CORSConfig defines the CORS headers set on every response.
type CORSConfig struct {
	AllowedHeaders string `mapstructure:"allowed-headers"`
	AllowedMethods string `mapstructure:"allowed-methods"`
	AllowedOrigin  string `mapstructure:"allowed-origin"`
}

// OTELConfig defines the tracing and error reporting configuration.
type OTELConfig struct {
	// Enabled turns on the stdout trace exporter.
	Enabled bool `mapstructure:"enabled"`
	// DSN is the sentry DSN. Sentry is not initialized when empty.
	DSN              string  `mapstructure:"dsn"`
	Environment      string  `mapstructure:"environment"`
	TracesSampleRate float64 `mapstructure:"traces-sample-rate"`
}

// Validate returns an error if the config cannot be used to start the server.
func (c Config) Validate() error {
	if c.Pools == nil {
		return fmt.Errorf("pools config must be set")
	}
	if c.Pools.LCDEndpoint == "" {
		return fmt.Errorf("pools lcd-endpoint must be set")
	}
	if c.Pools.FetchTimeoutSecs < 0 {
		return fmt.Errorf("pools fetch-timeout-secs must not be negative, got %d", c.Pools.FetchTimeoutSecs)
	}
	if c.Pools.NumPoolsPollIntervalSecs <= 0 {
		return fmt.Errorf("pools num-pools-poll-interval-secs must be positive, got %d", c.Pools.NumPoolsPollIntervalSecs)
	}
	if c.Pools.RefreshIntervalSecs <= 0 {
		return fmt.Errorf("pools refresh-interval-secs must be positive, got %d", c.Pools.RefreshIntervalSecs)
	}
	if c.Pools.MemoCacheSize < 0 {
		return fmt.Errorf("pools memo-cache-size must not be negative, got %d", c.Pools.MemoCacheSize)
	}
	if c.Router != nil && c.Router.MaxSplitPools < 0 {
		return fmt.Errorf("router max-split-pools must not be negative, got %d", c.Router.MaxSplitPools)
	}
	return nil
}
