package main

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/osmosis-labs/poolrouter/domain"
)

// DefaultConfig defines the default config for the pool router server.
var DefaultConfig = domain.Config{
	ServerAddress: ":9092",

	LoggerFilename:     "poolrouter.log",
	LoggerIsProduction: true,
	LoggerLevel:        "info",

	ChainID:                    "osmosis-1",
	ChainRegistryAssetsFileURL: "https://raw.githubusercontent.com/osmosis-labs/assetlists/main/osmosis-1/generated/frontend/assetlist.json",
	UpdateAssetsIntervalSecs:   3600,

	Router: &domain.RouterConfig{
		RouteCacheSize: 1000,
		MaxSplitPools:  3,
	},
	Pools: &domain.PoolsConfig{
		LCDEndpoint:              "https://lcd.osmosis.zone",
		FetchTimeoutSecs:         10,
		NumPoolsPollIntervalSecs: 30,
		RefreshIntervalSecs:      60,
		MemoCacheSize:            100,
		SnapshotPath:             "pools_snapshot",
	},

	Pricing: &domain.PricingConfig{
		CacheExpiryMs:          2000, // 2 seconds.
		CoingeckoUrl:           "https://prices.osmosis.zone/api/v3/simple/price",
		CoingeckoQuoteCurrency: "usd",
	},

	OTEL: &domain.OTELConfig{
		Environment:      "production",
		TracesSampleRate: 0.01,
	},

	CORS: &domain.CORSConfig{
		AllowedHeaders: "Origin, Accept, Content-Type, X-Requested-With, X-Server-Time, Accept-Encoding, sentry-trace, baggage",
		AllowedMethods: "HEAD, GET, OPTIONS",
		AllowedOrigin:  "*",
	},
}

// LoadConfig reads the config file at path on top of DefaultConfig.
// Keys may be overridden by POOLROUTER_ prefixed environment variables,
// e.g. POOLROUTER_POOLS_LCD_ENDPOINT.
func LoadConfig(path string) (domain.Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("POOLROUTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return domain.Config{}, err
	}

	config := DefaultConfig
	// Copy nested defaults so that unmarshalling does not mutate DefaultConfig.
	router, pools, pricing, otelConfig, cors := *DefaultConfig.Router, *DefaultConfig.Pools, *DefaultConfig.Pricing, *DefaultConfig.OTEL, *DefaultConfig.CORS
	config.Router, config.Pools, config.Pricing, config.OTEL, config.CORS = &router, &pools, &pricing, &otelConfig, &cors

	if err := v.Unmarshal(&config); err != nil {
		return domain.Config{}, err
	}

	if err := config.Validate(); err != nil {
		return domain.Config{}, err
	}

	return config, nil
}
