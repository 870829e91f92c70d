package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/osmosis-labs/poolrouter/domain"
	"github.com/osmosis-labs/poolrouter/domain/mvc"
	"github.com/osmosis-labs/poolrouter/log"
	"github.com/osmosis-labs/poolrouter/middleware"
	"github.com/osmosis-labs/poolrouter/sqsutil/datafetchers"

	poolsclient "github.com/osmosis-labs/poolrouter/pools/client"
	poolshttpdelivery "github.com/osmosis-labs/poolrouter/pools/delivery/http"
	poolsusecase "github.com/osmosis-labs/poolrouter/pools/usecase"
	routerhttpdelivery "github.com/osmosis-labs/poolrouter/router/delivery/http"
	routerusecase "github.com/osmosis-labs/poolrouter/router/usecase"
	systemhttpdelivery "github.com/osmosis-labs/poolrouter/system/delivery/http"
	tokenshttpdelivery "github.com/osmosis-labs/poolrouter/tokens/delivery/http"
	tokensusecase "github.com/osmosis-labs/poolrouter/tokens/usecase"
	coingeckopricing "github.com/osmosis-labs/poolrouter/tokens/usecase/pricing/coingecko"
)

// PoolRouterServer serves the pools registry and the route optimizer over HTTP
// and keeps the pools snapshot refreshed in the background.
type PoolRouterServer interface {
	GetPoolsUsecase() mvc.PoolsUsecase
	GetRouterUsecase() mvc.RouterUsecase
	GetTokensUseCase() mvc.TokensUsecase
	GetLogger() log.Logger
	Shutdown(context.Context) error
	Start(context.Context) error
}

type poolRouterServer struct {
	config domain.Config

	poolsUsecase  mvc.PoolsUsecase
	routerUsecase mvc.RouterUsecase
	tokensUsecase mvc.TokensUsecase

	numPoolsWatcher *poolsclient.NumPoolsWatcher
	tokensLoader    domain.TokenRegistryLoader

	refreshFetcher *datafetchers.IntervalFetcher[*domain.PoolsSnapshot]
	assetsFetcher  *datafetchers.IntervalFetcher[struct{}]

	e      *echo.Echo
	logger log.Logger
}

// tracerName is the name of the tracer used by the HTTP tracing middleware.
const tracerName = "poolrouter"

// GetPoolsUsecase implements PoolRouterServer.
func (s *poolRouterServer) GetPoolsUsecase() mvc.PoolsUsecase {
	return s.poolsUsecase
}

// GetRouterUsecase implements PoolRouterServer.
func (s *poolRouterServer) GetRouterUsecase() mvc.RouterUsecase {
	return s.routerUsecase
}

// GetTokensUseCase implements PoolRouterServer.
func (s *poolRouterServer) GetTokensUseCase() mvc.TokensUsecase {
	return s.tokensUsecase
}

// GetLogger implements PoolRouterServer.
func (s *poolRouterServer) GetLogger() log.Logger {
	return s.logger
}

// Start implements PoolRouterServer.
// It restores the persisted snapshot, starts the background refresh loops and
// blocks serving HTTP until the server is shut down.
func (s *poolRouterServer) Start(ctx context.Context) error {
	loaded, err := s.poolsUsecase.LoadSnapshot(ctx)
	if err != nil {
		s.logger.Error("failed to load persisted pools snapshot", zap.Error(err))
	} else if loaded {
		s.logger.Info("restored persisted pools snapshot", zap.Int("num_pools", len(s.poolsUsecase.GetAllPools())))
	}

	refreshInterval := time.Duration(s.config.Pools.RefreshIntervalSecs) * time.Second
	s.refreshFetcher = datafetchers.NewIntervalFetcher(ctx, s.poolsUsecase.FetchAll, refreshInterval, func(ctx context.Context, snapshot *domain.PoolsSnapshot) {
		s.logger.Info("refreshed pools", zap.Uint64("sequence", snapshot.Sequence), zap.Int("num_pools", snapshot.Len()))
	})

	s.numPoolsWatcher.Start(ctx)

	if s.config.UpdateAssetsIntervalSecs > 0 {
		assetsInterval := time.Duration(s.config.UpdateAssetsIntervalSecs) * time.Second
		s.assetsFetcher = datafetchers.NewIntervalFetcher(ctx, func(ctx context.Context) (struct{}, error) {
			if err := s.tokensLoader.FetchAndUpdateTokens(); err != nil {
				s.logger.Error("failed to update assets", zap.Error(err))
				return struct{}{}, err
			}
			return struct{}{}, nil
		}, assetsInterval, nil)
	}

	s.logger.Info("Starting pool router server", zap.String("address", s.config.ServerAddress))
	if err := s.e.Start(s.config.ServerAddress); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Shutdown implements PoolRouterServer.
func (s *poolRouterServer) Shutdown(ctx context.Context) error {
	if s.refreshFetcher != nil {
		s.refreshFetcher.Close()
	}
	if s.assetsFetcher != nil {
		s.assetsFetcher.Close()
	}
	s.numPoolsWatcher.Stop()

	return s.e.Shutdown(ctx)
}

// NewPoolRouterServer wires the usecases and HTTP handlers.
func NewPoolRouterServer(ctx context.Context, config domain.Config, logger log.Logger) (PoolRouterServer, error) {
	// Setup echo server
	e := echo.New()
	e.HideBanner = true
	goMiddleware := middleware.InitMiddleware(config.CORS)
	e.Use(goMiddleware.CORS)
	e.Use(goMiddleware.InstrumentMiddleware)
	if config.OTEL != nil && config.OTEL.Enabled {
		e.Use(goMiddleware.TraceWithParamsMiddleware(tracerName))
	}

	// Compute token metadata from chain denom.
	tokenMetadataByChainDenom, _, err := tokensusecase.GetTokensFromChainRegistry(ctx, config.ChainRegistryAssetsFileURL)
	if err != nil {
		return nil, err
	}

	tokensUseCase := tokensusecase.NewTokensUsecase(tokenMetadataByChainDenom, logger)
	tokensLoader := tokensusecase.NewChainRegistryHTTPFetcher(config.ChainRegistryAssetsFileURL, tokensusecase.GetTokensFromChainRegistry, tokensUseCase.LoadCurrencies)

	priceOracle, err := newPriceOracle(*config.Pricing, logger)
	if err != nil {
		return nil, err
	}

	// Initialize pools client, usecase and the pool count watcher.
	poolsClient := poolsclient.NewLCDClient(*config.Pools, logger)
	poolsUseCase := poolsusecase.NewPoolsUsecase(config.Pools, poolsClient, tokensUseCase, logger)

	numPoolsWatcher := poolsclient.NewNumPoolsWatcher(poolsClient, time.Duration(config.Pools.NumPoolsPollIntervalSecs)*time.Second, logger)
	numPoolsWatcher.RegisterListener(poolsUseCase)

	// Initialize router usecase. It rebuilds its swap manager on every applied pools snapshot.
	routerConfig := domain.RouterConfig{}
	if config.Router != nil {
		routerConfig = *config.Router
	}
	routerUseCase := routerusecase.NewRouterUsecase(poolsUseCase, tokensUseCase, routerConfig, logger)
	poolsUseCase.RegisterListener(routerUseCase)

	// HTTP handlers
	poolshttpdelivery.NewPoolsHandler(e, poolsUseCase, priceOracle, logger)
	routerhttpdelivery.NewRouterHandler(e, routerUseCase, tokensUseCase, logger)
	tokenshttpdelivery.NewTokensHandler(e, tokensUseCase, priceOracle, config.Pricing.CoingeckoQuoteCurrency, logger)
	systemhttpdelivery.NewSystemHandler(e, config, logger, poolsUseCase)

	return &poolRouterServer{
		config:          config,
		poolsUsecase:    poolsUseCase,
		routerUsecase:   routerUseCase,
		tokensUsecase:   tokensUseCase,
		numPoolsWatcher: numPoolsWatcher,
		tokensLoader:    tokensLoader,
		e:               e,
		logger:          logger,
	}, nil
}

// newPriceOracle returns a static oracle if static prices are configured
// and a CoinGecko backed oracle otherwise.
func newPriceOracle(config domain.PricingConfig, logger log.Logger) (domain.PriceOracle, error) {
	if len(config.StaticPrices) > 0 {
		logger.Info("using static prices", zap.Int("num_prices", len(config.StaticPrices)))
		staticOracle, err := coingeckopricing.NewStaticPriceOracle(config.StaticPrices)
		if err != nil {
			return nil, err
		}
		return staticOracle, nil
	}

	return coingeckopricing.New(config, logger), nil
}
