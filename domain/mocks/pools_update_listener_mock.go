package mocks

import (
	"context"
	"sync"

	"github.com/osmosis-labs/poolrouter/domain"
)

var (
	_ domain.PoolsUpdateListener = &PoolsUpdateListenerMock{}
	_ domain.NumPoolsListener    = &NumPoolsListenerMock{}
)

// PoolsUpdateListenerMock records the sequence of every snapshot it is notified of.
type PoolsUpdateListenerMock struct {
	mu        sync.Mutex
	Sequences []uint64
	Err       error
}

// OnPoolsUpdate implements domain.PoolsUpdateListener.
func (m *PoolsUpdateListenerMock) OnPoolsUpdate(ctx context.Context, snapshot *domain.PoolsSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Sequences = append(m.Sequences, snapshot.Sequence)
	return m.Err
}

// GetSequences returns a copy of the recorded sequences.
func (m *PoolsUpdateListenerMock) GetSequences() []uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]uint64, len(m.Sequences))
	copy(result, m.Sequences)
	return result
}

// NumPoolsListenerMock records every pool count it is notified of.
type NumPoolsListenerMock struct {
	mu       sync.Mutex
	NumPools []uint64
}

// OnNumPoolsUpdate implements domain.NumPoolsListener.
func (m *NumPoolsListenerMock) OnNumPoolsUpdate(ctx context.Context, numPools uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.NumPools = append(m.NumPools, numPools)
	return nil
}

// GetNumPools returns a copy of the recorded counts.
func (m *NumPoolsListenerMock) GetNumPools() []uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]uint64, len(m.NumPools))
	copy(result, m.NumPools)
	return result
}
