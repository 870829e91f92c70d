package mocks

import (
	"context"
	"sync"

	"github.com/osmosis-labs/poolrouter/domain"
)

var _ domain.PoolsClient = &PoolsClientMock{}

// PoolsClientMock serves pools from memory and records the requested limits.
type PoolsClientMock struct {
	GetPoolsFunc    func(ctx context.Context, limit uint64) ([]domain.Pool, error)
	GetNumPoolsFunc func(ctx context.Context) (uint64, error)

	Pools    []domain.Pool
	NumPools uint64

	mu              sync.Mutex
	requestedLimits []uint64
}

// GetPools implements domain.PoolsClient.
func (m *PoolsClientMock) GetPools(ctx context.Context, limit uint64) ([]domain.Pool, error) {
	m.mu.Lock()
	m.requestedLimits = append(m.requestedLimits, limit)
	m.mu.Unlock()

	if m.GetPoolsFunc != nil {
		return m.GetPoolsFunc(ctx, limit)
	}

	if uint64(len(m.Pools)) > limit {
		return m.Pools[:limit], nil
	}
	return m.Pools, nil
}

// GetNumPools implements domain.PoolsClient.
func (m *PoolsClientMock) GetNumPools(ctx context.Context) (uint64, error) {
	if m.GetNumPoolsFunc != nil {
		return m.GetNumPoolsFunc(ctx)
	}
	if m.NumPools != 0 {
		return m.NumPools, nil
	}
	return uint64(len(m.Pools)), nil
}

// RequestedLimits returns the limits of every GetPools call in call order.
func (m *PoolsClientMock) RequestedLimits() []uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]uint64, len(m.requestedLimits))
	copy(result, m.requestedLimits)
	return result
}
