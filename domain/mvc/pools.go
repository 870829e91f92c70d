package mvc

import (
	"context"

	"github.com/osmosis-labs/osmosis/osmomath"

	"github.com/osmosis-labs/poolrouter/domain"
)

// PoolsUsecase represent the pool's usecases
type PoolsUsecase interface {
	domain.NumPoolsListener

	// FetchAll retrieves every pool from the remote registry and applies the result as the new snapshot.
	// Concurrent calls with the same fetch limit share a single request.
	FetchAll(ctx context.Context) (*domain.PoolsSnapshot, error)

	// LoadSnapshot restores the last persisted snapshot, if any.
	// Returns false if no snapshot was persisted.
	LoadSnapshot(ctx context.Context) (bool, error)

	// GetFetchLimit returns the pagination limit the next fetch will use.
	GetFetchLimit() uint64

	// GetSnapshot returns the current snapshot or nil if none was applied yet.
	GetSnapshot() *domain.PoolsSnapshot

	// GetPool returns the pool with the given ID.
	// False means either not loaded or not existing; use HasLoadedAndExists to distinguish.
	GetPool(poolID string) (domain.Pool, bool)

	// HasLoadedAndExists distinguishes a missing pool from a not yet loaded registry.
	HasLoadedAndExists(poolID string) domain.Existence

	// GetAllPools returns every pool in server response order.
	GetAllPools() []domain.Pool

	// GetPoolsPage returns the 1-indexed page of pools. Out of range pages are empty.
	GetPoolsPage(pageSize, pageNumber int) []domain.Pool

	// GetPoolsByDescendingLockedValue ranks pools by locked value and returns the 1-indexed page.
	GetPoolsByDescendingLockedValue(ctx context.Context, oracle domain.PriceOracle, pageSize, pageNumber int) ([]domain.Pool, error)

	// ComputeTotalValueLocked sums the locked value of every pool.
	ComputeTotalValueLocked(ctx context.Context, oracle domain.PriceOracle) (osmomath.Dec, error)

	// GetPoolCurrencies groups the currencies of every pool in server order.
	// Errors with domain.UnknownCurrencyError if a denom is not registered.
	GetPoolCurrencies() ([]domain.PoolCurrencies, error)

	// RegisterListener registers a listener notified after each applied snapshot.
	RegisterListener(listener domain.PoolsUpdateListener)
}
