package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/osmosis-labs/osmosis/osmomath"

	"github.com/osmosis-labs/poolrouter/domain"
	"github.com/osmosis-labs/poolrouter/domain/cache"
	"github.com/osmosis-labs/poolrouter/domain/mvc"
	"github.com/osmosis-labs/poolrouter/log"
	"github.com/osmosis-labs/poolrouter/sqsutil"
)

type poolsUseCase struct {
	config           domain.PoolsConfig
	client           domain.PoolsClient
	currencyRegistry domain.CurrencyRegistry
	logger           log.Logger

	fetchGroup   singleflight.Group
	fetchLimit   atomic.Uint64
	lastSequence atomic.Uint64

	// mu serializes snapshot application and listener fan-out.
	// Readers only load the snapshot pointer.
	mu        sync.Mutex
	snapshot  atomic.Pointer[domain.PoolsSnapshot]
	listeners []domain.PoolsUpdateListener

	pagesMemo       *cache.Memo[pageKey, []domain.Pool]
	lockedValueMemo *cache.Memo[lockedValueKey, []domain.Pool]
	currenciesMemo  *cache.Memo[string, []domain.PoolCurrencies]
}

type pageKey struct {
	pageSize   int
	pageNumber int
}

type lockedValueKey struct {
	pageSize         int
	pageNumber       int
	priceFingerprint uint64
}

// persistedSnapshot is the on-disk form of the last successful fetch.
type persistedSnapshot struct {
	Limit     uint64        `json:"limit"`
	FetchedAt time.Time     `json:"fetched_at"`
	Pools     []domain.Pool `json:"pools"`
}

const (
	snapshotFileName = "pools_snapshot.json"

	poolCurrenciesMemoKey = "pool_currencies"

	fetchResultSuccess = "success"
	fetchResultError   = "error"
	fetchResultStale   = "stale"
)

var (
	poolsFetchCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poolrouter_pools_fetch_total",
			Help: "Total number of pools fetches by result",
		},
		[]string{"result"},
	)
	poolsFetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "poolrouter_pools_fetch_duration_seconds",
			Help:    "Duration of pools fetches",
			Buckets: prometheus.DefBuckets,
		},
	)
	poolsCountGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "poolrouter_pools_count",
			Help: "Number of pools in the current snapshot",
		},
	)
	poolsFetchLimitGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "poolrouter_pools_fetch_limit",
			Help: "Pagination limit used by the next pools fetch",
		},
	)
	poolsListenerErrorCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "poolrouter_pools_listener_errors_total",
			Help: "Total number of errors returned by pools update listeners",
		},
	)
	poolsMemoHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poolrouter_pools_memo_hits_total",
			Help: "Total number of memoized pools query hits",
		},
		[]string{"query"},
	)
)

func init() {
	prometheus.MustRegister(poolsFetchCounter)
	prometheus.MustRegister(poolsFetchDuration)
	prometheus.MustRegister(poolsCountGauge)
	prometheus.MustRegister(poolsFetchLimitGauge)
	prometheus.MustRegister(poolsListenerErrorCounter)
	prometheus.MustRegister(poolsMemoHits)
}

var _ mvc.PoolsUsecase = &poolsUseCase{}

// NewPoolsUsecase will create a new pools use case object
func NewPoolsUsecase(poolsConfig *domain.PoolsConfig, client domain.PoolsClient, currencyRegistry domain.CurrencyRegistry, logger log.Logger) mvc.PoolsUsecase {
	p := &poolsUseCase{
		config:           *poolsConfig,
		client:           client,
		currencyRegistry: currencyRegistry,
		logger:           logger,

		pagesMemo:       cache.NewMemo[pageKey, []domain.Pool](poolsConfig.MemoCacheSize),
		lockedValueMemo: cache.NewMemo[lockedValueKey, []domain.Pool](poolsConfig.MemoCacheSize),
		currenciesMemo:  cache.NewMemo[string, []domain.PoolCurrencies](1),
	}

	p.fetchLimit.Store(domain.DefaultPoolsFetchLimit)
	poolsFetchLimitGauge.Set(float64(domain.DefaultPoolsFetchLimit))

	return p
}

// FetchAll implements mvc.PoolsUsecase.
// On failure the previous snapshot is kept.
func (p *poolsUseCase) FetchAll(ctx context.Context) (*domain.PoolsSnapshot, error) {
	limit := p.fetchLimit.Load()

	result, err, shared := p.fetchGroup.Do(strconv.FormatUint(limit, 10), func() (interface{}, error) {
		return p.fetch(ctx, limit)
	})
	if err != nil {
		return nil, err
	}

	if shared {
		p.logger.Debug("shared in-flight pools fetch", zap.Uint64("limit", limit))
	}

	snapshot, ok := result.(*domain.PoolsSnapshot)
	if !ok {
		return nil, domain.ErrInternalServerError
	}

	return snapshot, nil
}

func (p *poolsUseCase) fetch(ctx context.Context, limit uint64) (*domain.PoolsSnapshot, error) {
	sequence := p.lastSequence.Add(1)

	start := time.Now()
	pools, err := p.client.GetPools(ctx, limit)
	poolsFetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		poolsFetchCounter.WithLabelValues(fetchResultError).Inc()
		p.logger.Error("failed to fetch pools", zap.Uint64("limit", limit), zap.Uint64("sequence", sequence), zap.Error(err))
		return nil, err
	}

	snapshot := domain.NewPoolsSnapshot(pools, sequence, limit, time.Now())

	if err := p.applySnapshot(ctx, snapshot); err != nil {
		return nil, err
	}

	p.persistSnapshot(snapshot)

	return snapshot, nil
}

// applySnapshot registers the snapshot denoms, publishes the snapshot and notifies listeners.
// Returns domain.StaleSnapshotError if a newer snapshot was already applied.
func (p *poolsUseCase) applySnapshot(ctx context.Context, snapshot *domain.PoolsSnapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if current := p.snapshot.Load(); current != nil && current.Sequence > snapshot.Sequence {
		poolsFetchCounter.WithLabelValues(fetchResultStale).Inc()
		p.logger.Info("discarding stale pools snapshot", zap.Uint64("sequence", snapshot.Sequence), zap.Uint64("applied_sequence", current.Sequence))
		return domain.StaleSnapshotError{Sequence: snapshot.Sequence, AppliedSequence: current.Sequence}
	}

	p.currencyRegistry.AddUnknownCurrencies(snapshot.GetDenoms()...)

	p.pagesMemo.Reset(snapshot.Sequence)
	p.lockedValueMemo.Reset(snapshot.Sequence)
	p.currenciesMemo.Reset(snapshot.Sequence)

	p.snapshot.Store(snapshot)

	poolsFetchCounter.WithLabelValues(fetchResultSuccess).Inc()
	poolsCountGauge.Set(float64(snapshot.Len()))
	p.logger.Info("applied pools snapshot", zap.Uint64("sequence", snapshot.Sequence), zap.Uint64("limit", snapshot.Limit), zap.Int("num_pools", snapshot.Len()))

	for _, listener := range p.listeners {
		if err := listener.OnPoolsUpdate(ctx, snapshot); err != nil {
			poolsListenerErrorCounter.Inc()
			p.logger.Error("pools update listener failed", zap.Uint64("sequence", snapshot.Sequence), zap.Error(err))
		}
	}

	return nil
}

func (p *poolsUseCase) persistSnapshot(snapshot *domain.PoolsSnapshot) {
	if p.config.SnapshotPath == "" {
		return
	}

	bz, err := json.Marshal(persistedSnapshot{
		Limit:     snapshot.Limit,
		FetchedAt: snapshot.FetchedAt,
		Pools:     snapshot.Pools,
	})
	if err != nil {
		p.logger.Error("failed to encode pools snapshot", zap.Error(err))
		return
	}

	if err := sqsutil.WriteBytes(p.config.SnapshotPath, snapshotFileName, bz); err != nil {
		p.logger.Error("failed to persist pools snapshot", zap.String("path", p.config.SnapshotPath), zap.Error(err))
	}
}

// LoadSnapshot implements mvc.PoolsUsecase.
// The persisted snapshot is only applied if no fetch has completed yet.
func (p *poolsUseCase) LoadSnapshot(ctx context.Context) (bool, error) {
	if p.config.SnapshotPath == "" {
		return false, nil
	}

	bz, found, err := sqsutil.ReadBytes(p.config.SnapshotPath, snapshotFileName)
	if err != nil || !found {
		return false, err
	}

	var persisted persistedSnapshot
	if err := json.Unmarshal(bz, &persisted); err != nil {
		return false, err
	}

	if p.snapshot.Load() != nil {
		return false, nil
	}

	p.raiseFetchLimit(persisted.Limit)

	snapshot := domain.NewPoolsSnapshot(persisted.Pools, p.lastSequence.Add(1), persisted.Limit, persisted.FetchedAt)
	if err := p.applySnapshot(ctx, snapshot); err != nil {
		if errors.As(err, &domain.StaleSnapshotError{}) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

// GetFetchLimit implements mvc.PoolsUsecase.
func (p *poolsUseCase) GetFetchLimit() uint64 {
	return p.fetchLimit.Load()
}

// OnNumPoolsUpdate implements domain.NumPoolsListener.
// Fetches only if the pool count exceeds the current limit.
func (p *poolsUseCase) OnNumPoolsUpdate(ctx context.Context, numPools uint64) error {
	if !p.raiseFetchLimit(numPools) {
		return nil
	}

	p.logger.Info("pool count exceeds fetch limit, refetching", zap.Uint64("num_pools", numPools))

	_, err := p.FetchAll(ctx)
	if errors.As(err, &domain.StaleSnapshotError{}) {
		return nil
	}
	return err
}

// raiseFetchLimit sets the fetch limit to limit if it is higher than the current one.
// The limit never decreases.
func (p *poolsUseCase) raiseFetchLimit(limit uint64) bool {
	for {
		current := p.fetchLimit.Load()
		if limit <= current {
			return false
		}
		if p.fetchLimit.CompareAndSwap(current, limit) {
			poolsFetchLimitGauge.Set(float64(limit))
			return true
		}
	}
}

// GetSnapshot implements mvc.PoolsUsecase.
func (p *poolsUseCase) GetSnapshot() *domain.PoolsSnapshot {
	return p.snapshot.Load()
}

// GetPool implements mvc.PoolsUsecase.
func (p *poolsUseCase) GetPool(poolID string) (domain.Pool, bool) {
	snapshot := p.snapshot.Load()
	if snapshot == nil {
		return domain.Pool{}, false
	}
	return snapshot.GetPool(poolID)
}

// HasLoadedAndExists implements mvc.PoolsUsecase.
func (p *poolsUseCase) HasLoadedAndExists(poolID string) domain.Existence {
	snapshot := p.snapshot.Load()
	if snapshot == nil {
		return domain.ExistenceUnknown
	}
	if _, ok := snapshot.GetPool(poolID); ok {
		return domain.PoolExists
	}
	return domain.PoolDoesNotExist
}

// GetAllPools implements mvc.PoolsUsecase.
func (p *poolsUseCase) GetAllPools() []domain.Pool {
	snapshot := p.snapshot.Load()
	if snapshot == nil {
		return []domain.Pool{}
	}
	return snapshot.Pools
}

// GetPoolsPage implements mvc.PoolsUsecase.
func (p *poolsUseCase) GetPoolsPage(pageSize, pageNumber int) []domain.Pool {
	snapshot := p.snapshot.Load()
	if snapshot == nil {
		return []domain.Pool{}
	}

	page, hit, _ := p.pagesMemo.GetOrCompute(snapshot.Sequence, pageKey{pageSize: pageSize, pageNumber: pageNumber}, func() ([]domain.Pool, error) {
		return paginate(snapshot.Pools, pageSize, pageNumber), nil
	})
	if hit {
		poolsMemoHits.WithLabelValues("pools_page").Inc()
	}

	return page
}

// GetPoolsByDescendingLockedValue implements mvc.PoolsUsecase.
// Equal locked values keep server order.
func (p *poolsUseCase) GetPoolsByDescendingLockedValue(ctx context.Context, oracle domain.PriceOracle, pageSize, pageNumber int) ([]domain.Pool, error) {
	snapshot := p.snapshot.Load()
	if snapshot == nil {
		return []domain.Pool{}, nil
	}

	prices, err := p.getPriceTable(ctx, snapshot, oracle)
	if err != nil {
		return nil, err
	}

	key := lockedValueKey{
		pageSize:         pageSize,
		pageNumber:       pageNumber,
		priceFingerprint: prices.fingerprint,
	}

	page, hit, err := p.lockedValueMemo.GetOrCompute(snapshot.Sequence, key, func() ([]domain.Pool, error) {
		lockedValues := make(map[string]osmomath.Dec, snapshot.Len())
		for _, pool := range snapshot.Pools {
			lockedValues[pool.ID] = computePoolTVL(pool, prices.prices)
		}

		sorted := make([]domain.Pool, len(snapshot.Pools))
		copy(sorted, snapshot.Pools)
		sort.SliceStable(sorted, func(i, j int) bool {
			return lockedValues[sorted[i].ID].GT(lockedValues[sorted[j].ID])
		})

		return paginate(sorted, pageSize, pageNumber), nil
	})
	if err != nil {
		return nil, err
	}
	if hit {
		poolsMemoHits.WithLabelValues("pools_by_locked_value").Inc()
	}

	return page, nil
}

// ComputeTotalValueLocked implements mvc.PoolsUsecase.
func (p *poolsUseCase) ComputeTotalValueLocked(ctx context.Context, oracle domain.PriceOracle) (osmomath.Dec, error) {
	snapshot := p.snapshot.Load()
	if snapshot == nil {
		return osmomath.Dec{}, domain.NotLoadedError{}
	}

	prices, err := p.getPriceTable(ctx, snapshot, oracle)
	if err != nil {
		return osmomath.Dec{}, err
	}

	total := osmomath.ZeroDec()
	for _, pool := range snapshot.Pools {
		total.AddMut(computePoolTVL(pool, prices.prices))
	}

	return total, nil
}

// GetPoolCurrencies implements mvc.PoolsUsecase.
func (p *poolsUseCase) GetPoolCurrencies() ([]domain.PoolCurrencies, error) {
	snapshot := p.snapshot.Load()
	if snapshot == nil {
		return nil, domain.NotLoadedError{}
	}

	poolCurrencies, hit, err := p.currenciesMemo.GetOrCompute(snapshot.Sequence, poolCurrenciesMemoKey, func() ([]domain.PoolCurrencies, error) {
		return snapshot.GetPoolCurrencies(p.currencyRegistry)
	})
	if err != nil {
		return nil, err
	}
	if hit {
		poolsMemoHits.WithLabelValues("pool_currencies").Inc()
	}

	return poolCurrencies, nil
}

// RegisterListener implements mvc.PoolsUsecase.
func (p *poolsUseCase) RegisterListener(listener domain.PoolsUpdateListener) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.listeners = append(p.listeners, listener)
}

// paginate returns the 1-indexed page of items.
// Non-positive arguments and out of range pages yield an empty slice.
func paginate[T any](items []T, pageSize, pageNumber int) []T {
	if pageSize <= 0 || pageNumber <= 0 {
		return []T{}
	}

	numPages := len(items) / pageSize
	if len(items)%pageSize != 0 {
		numPages++
	}
	if pageNumber > numPages {
		return []T{}
	}

	start := (pageNumber - 1) * pageSize
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}

	return items[start:end]
}
