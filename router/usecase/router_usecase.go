package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/osmosis-labs/poolrouter/domain"
	"github.com/osmosis-labs/poolrouter/domain/cache"
	"github.com/osmosis-labs/poolrouter/domain/mvc"
	"github.com/osmosis-labs/poolrouter/log"
	"github.com/osmosis-labs/poolrouter/router/usecase/pools"
)

var _ mvc.RouterUsecase = &routerUseCaseImpl{}

type routerUseCaseImpl struct {
	poolsUsecase     mvc.PoolsUsecase
	currencyRegistry domain.CurrencyRegistry
	config           domain.RouterConfig
	logger           log.Logger

	// mu serializes state builds. Reads go through state only.
	mu    sync.Mutex
	state atomic.Pointer[routerState]
}

// routerState is derived from a single pools snapshot and never mutated.
type routerState struct {
	snapshot    *domain.PoolsSnapshot
	swapManager *SwapManager
	bestRoutes  *cache.Memo[bestRouteKey, *domain.BestRoute]
}

type bestRouteKey struct {
	tokenInDenom  string
	tokenInAmount string
	tokenOutDenom string
}

const bestRouteCacheLabel = "best_route"

var (
	cacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poolrouter_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"},
	)
	cacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poolrouter_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)
	unroutablePoolsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "poolrouter_router_unroutable_pools_total",
			Help: "Total number of pools skipped by the router because they cannot be priced",
		},
	)
	multihopCandidateErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poolrouter_router_multihop_candidate_error_total",
			Help: "Total number of multihop candidates skipped because estimation failed",
		},
		[]string{"token_in", "token_out"},
	)
)

func init() {
	prometheus.MustRegister(cacheHits)
	prometheus.MustRegister(cacheMisses)
	prometheus.MustRegister(unroutablePoolsCounter)
	prometheus.MustRegister(multihopCandidateErrorCounter)
}

// NewRouterUsecase will create a new router use case object
func NewRouterUsecase(poolsUsecase mvc.PoolsUsecase, currencyRegistry domain.CurrencyRegistry, config domain.RouterConfig, logger log.Logger) mvc.RouterUsecase {
	return &routerUseCaseImpl{
		poolsUsecase:     poolsUsecase,
		currencyRegistry: currencyRegistry,
		config:           config,
		logger:           logger,
	}
}

// GetBestRoute implements mvc.RouterUsecase.
// Results are memoized per pools snapshot.
func (r *routerUseCaseImpl) GetBestRoute(ctx context.Context, tokenIn sdk.Coin, tokenOutDenom string) (*domain.BestRoute, error) {
	state, inCurrency, outCurrency, err := r.prepare(ctx, tokenIn, tokenOutDenom)
	if err != nil {
		return nil, err
	}

	key := bestRouteKey{
		tokenInDenom:  tokenIn.Denom,
		tokenInAmount: tokenIn.Amount.String(),
		tokenOutDenom: tokenOutDenom,
	}

	bestRoute, hit, err := state.bestRoutes.GetOrCompute(state.snapshot.Sequence, key, func() (*domain.BestRoute, error) {
		return state.swapManager.FindBestRoute(ctx, inCurrency, outCurrency, tokenIn.Amount)
	})
	if err != nil {
		return nil, err
	}

	if hit {
		cacheHits.WithLabelValues(bestRouteCacheLabel).Inc()
	} else {
		cacheMisses.WithLabelValues(bestRouteCacheLabel).Inc()
	}

	return bestRoute, nil
}

// GetBestSplitRoute implements mvc.RouterUsecase.
func (r *routerUseCaseImpl) GetBestSplitRoute(ctx context.Context, tokenIn sdk.Coin, tokenOutDenom string) (*domain.SplitRoute, error) {
	state, inCurrency, outCurrency, err := r.prepare(ctx, tokenIn, tokenOutDenom)
	if err != nil {
		return nil, err
	}

	return state.swapManager.FindBestSplitRoute(ctx, inCurrency, outCurrency, tokenIn.Amount, r.config.MaxSplitPools)
}

// GetSwappableCurrencies implements mvc.RouterUsecase.
func (r *routerUseCaseImpl) GetSwappableCurrencies(ctx context.Context) ([]domain.Currency, error) {
	state, err := r.getState(ctx)
	if err != nil {
		return nil, err
	}

	return state.swapManager.SwappableCurrencies(), nil
}

// GetConfig implements mvc.RouterUsecase.
func (r *routerUseCaseImpl) GetConfig() domain.RouterConfig {
	return r.config
}

// OnPoolsUpdate implements domain.PoolsUpdateListener.
// Rebuilds the swap manager for the new snapshot and drops memoized routes.
func (r *routerUseCaseImpl) OnPoolsUpdate(ctx context.Context, snapshot *domain.PoolsSnapshot) error {
	_, err := r.loadOrBuildState(snapshot)
	return err
}

func (r *routerUseCaseImpl) prepare(ctx context.Context, tokenIn sdk.Coin, tokenOutDenom string) (*routerState, domain.Currency, domain.Currency, error) {
	if tokenIn.Denom == tokenOutDenom {
		return nil, domain.Currency{}, domain.Currency{}, domain.SameDenomError{DenomA: tokenIn.Denom, DenomB: tokenOutDenom}
	}

	if tokenIn.Amount.IsNil() || !tokenIn.Amount.IsPositive() {
		return nil, domain.Currency{}, domain.Currency{}, domain.InvalidAmountError{Amount: tokenIn.String()}
	}

	state, err := r.getState(ctx)
	if err != nil {
		return nil, domain.Currency{}, domain.Currency{}, err
	}

	inCurrency, err := r.currencyRegistry.ForceFindCurrency(tokenIn.Denom)
	if err != nil {
		return nil, domain.Currency{}, domain.Currency{}, err
	}

	outCurrency, err := r.currencyRegistry.ForceFindCurrency(tokenOutDenom)
	if err != nil {
		return nil, domain.Currency{}, domain.Currency{}, err
	}

	return state, inCurrency, outCurrency, nil
}

// getState returns the state for the current pools snapshot, building it if the
// update notification has not been delivered yet.
func (r *routerUseCaseImpl) getState(ctx context.Context) (*routerState, error) {
	snapshot := r.poolsUsecase.GetSnapshot()
	if snapshot == nil {
		return nil, domain.NotLoadedError{}
	}

	return r.loadOrBuildState(snapshot)
}

func (r *routerUseCaseImpl) loadOrBuildState(snapshot *domain.PoolsSnapshot) (*routerState, error) {
	if state := r.state.Load(); state != nil && state.snapshot == snapshot {
		return state, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.state.Load()
	if current != nil {
		if current.snapshot == snapshot {
			return current, nil
		}
		// A newer snapshot already won.
		if current.snapshot.Sequence > snapshot.Sequence {
			return current, nil
		}
	}

	state, err := r.buildState(snapshot)
	if err != nil {
		r.logger.Error("failed to build router state", zap.Uint64("sequence", snapshot.Sequence), zap.Error(err))
		return nil, err
	}

	r.state.Store(state)

	r.logger.Info("router state updated", zap.Uint64("sequence", snapshot.Sequence), zap.Int("num_pools", len(state.swapManager.routablePools)))

	return state, nil
}

func (r *routerUseCaseImpl) buildState(snapshot *domain.PoolsSnapshot) (*routerState, error) {
	routablePools := make([]domain.RoutablePool, 0, snapshot.Len())
	routableSnapshotPools := make([]domain.Pool, 0, snapshot.Len())
	seen := make(map[string]struct{}, snapshot.Len())

	for _, pool := range snapshot.Pools {
		if _, ok := seen[pool.ID]; ok {
			continue
		}
		seen[pool.ID] = struct{}{}

		routablePool, err := pools.NewRoutablePool(pool, r.currencyRegistry)
		if err != nil {
			// Unknown currencies corrupt amount math and must surface.
			if errors.As(err, &domain.UnknownCurrencyError{}) {
				return nil, err
			}

			unroutablePoolsCounter.Inc()
			r.logger.Debug("skipping unroutable pool", zap.String("pool_id", pool.ID), zap.Error(err))
			continue
		}

		routablePools = append(routablePools, routablePool)
		routableSnapshotPools = append(routableSnapshotPools, pool)
	}

	routableSnapshot := domain.NewPoolsSnapshot(routableSnapshotPools, snapshot.Sequence, snapshot.Limit, snapshot.FetchedAt)

	poolCurrencies, err := routableSnapshot.GetPoolCurrencies(r.currencyRegistry)
	if err != nil {
		return nil, err
	}

	swapManager, err := NewSwapManager(poolCurrencies, routablePools)
	if err != nil {
		return nil, err
	}

	bestRoutes := cache.NewMemo[bestRouteKey, *domain.BestRoute](r.config.RouteCacheSize)
	bestRoutes.Reset(snapshot.Sequence)

	return &routerState{
		snapshot:    snapshot,
		swapManager: swapManager,
		bestRoutes:  bestRoutes,
	}, nil
}
