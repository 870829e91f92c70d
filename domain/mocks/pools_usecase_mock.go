package mocks

import (
	"context"

	"github.com/osmosis-labs/osmosis/osmomath"

	"github.com/osmosis-labs/poolrouter/domain"
	"github.com/osmosis-labs/poolrouter/domain/mvc"
)

var _ mvc.PoolsUsecase = &PoolsUsecaseMock{}

// PoolsUsecaseMock serves a fixed snapshot.
// A nil Snapshot behaves as a registry that has not loaded yet.
type PoolsUsecaseMock struct {
	Snapshot *domain.PoolsSnapshot

	FetchAllFunc                        func(ctx context.Context) (*domain.PoolsSnapshot, error)
	GetPoolsByDescendingLockedValueFunc func(ctx context.Context, oracle domain.PriceOracle, pageSize, pageNumber int) ([]domain.Pool, error)
	ComputeTotalValueLockedFunc         func(ctx context.Context, oracle domain.PriceOracle) (osmomath.Dec, error)
	GetPoolCurrenciesFunc               func() ([]domain.PoolCurrencies, error)

	Listeners []domain.PoolsUpdateListener
}

// FetchAll implements mvc.PoolsUsecase.
func (pm *PoolsUsecaseMock) FetchAll(ctx context.Context) (*domain.PoolsSnapshot, error) {
	if pm.FetchAllFunc != nil {
		return pm.FetchAllFunc(ctx)
	}
	return pm.Snapshot, nil
}

// LoadSnapshot implements mvc.PoolsUsecase.
func (pm *PoolsUsecaseMock) LoadSnapshot(ctx context.Context) (bool, error) {
	return false, nil
}

// GetFetchLimit implements mvc.PoolsUsecase.
func (pm *PoolsUsecaseMock) GetFetchLimit() uint64 {
	return domain.DefaultPoolsFetchLimit
}

// OnNumPoolsUpdate implements mvc.PoolsUsecase.
func (pm *PoolsUsecaseMock) OnNumPoolsUpdate(ctx context.Context, numPools uint64) error {
	return nil
}

// GetSnapshot implements mvc.PoolsUsecase.
func (pm *PoolsUsecaseMock) GetSnapshot() *domain.PoolsSnapshot {
	return pm.Snapshot
}

// GetPool implements mvc.PoolsUsecase.
func (pm *PoolsUsecaseMock) GetPool(poolID string) (domain.Pool, bool) {
	if pm.Snapshot == nil {
		return domain.Pool{}, false
	}
	return pm.Snapshot.GetPool(poolID)
}

// HasLoadedAndExists implements mvc.PoolsUsecase.
func (pm *PoolsUsecaseMock) HasLoadedAndExists(poolID string) domain.Existence {
	if pm.Snapshot == nil {
		return domain.ExistenceUnknown
	}
	if _, ok := pm.Snapshot.GetPool(poolID); ok {
		return domain.PoolExists
	}
	return domain.PoolDoesNotExist
}

// GetAllPools implements mvc.PoolsUsecase.
func (pm *PoolsUsecaseMock) GetAllPools() []domain.Pool {
	if pm.Snapshot == nil {
		return nil
	}
	return pm.Snapshot.Pools
}

// GetPoolsPage implements mvc.PoolsUsecase.
func (pm *PoolsUsecaseMock) GetPoolsPage(pageSize, pageNumber int) []domain.Pool {
	pools := pm.GetAllPools()
	if pageSize <= 0 || pageNumber <= 0 {
		return []domain.Pool{}
	}
	offset := (pageNumber - 1) * pageSize
	if offset >= len(pools) {
		return []domain.Pool{}
	}
	end := offset + pageSize
	if end > len(pools) {
		end = len(pools)
	}
	return pools[offset:end]
}

// GetPoolsByDescendingLockedValue implements mvc.PoolsUsecase.
func (pm *PoolsUsecaseMock) GetPoolsByDescendingLockedValue(ctx context.Context, oracle domain.PriceOracle, pageSize, pageNumber int) ([]domain.Pool, error) {
	if pm.GetPoolsByDescendingLockedValueFunc != nil {
		return pm.GetPoolsByDescendingLockedValueFunc(ctx, oracle, pageSize, pageNumber)
	}
	panic("unimplemented")
}

// ComputeTotalValueLocked implements mvc.PoolsUsecase.
func (pm *PoolsUsecaseMock) ComputeTotalValueLocked(ctx context.Context, oracle domain.PriceOracle) (osmomath.Dec, error) {
	if pm.ComputeTotalValueLockedFunc != nil {
		return pm.ComputeTotalValueLockedFunc(ctx, oracle)
	}
	panic("unimplemented")
}

// GetPoolCurrencies implements mvc.PoolsUsecase.
func (pm *PoolsUsecaseMock) GetPoolCurrencies() ([]domain.PoolCurrencies, error) {
	if pm.GetPoolCurrenciesFunc != nil {
		return pm.GetPoolCurrenciesFunc()
	}
	panic("unimplemented")
}

// RegisterListener implements mvc.PoolsUsecase.
func (pm *PoolsUsecaseMock) RegisterListener(listener domain.PoolsUpdateListener) {
	pm.Listeners = append(pm.Listeners, listener)
}
