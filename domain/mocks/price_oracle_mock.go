package mocks

import (
	"context"
	"sync"

	"github.com/osmosis-labs/osmosis/osmomath"

	"github.com/osmosis-labs/poolrouter/domain"
)

var _ domain.PriceOracle = &PriceOracleMock{}

// PriceOracleMock returns prices keyed by denom and counts lookups.
type PriceOracleMock struct {
	mu      sync.Mutex
	Prices  map[string]osmomath.Dec
	Lookups int
}

// GetPrice implements domain.PriceOracle.
func (m *PriceOracleMock) GetPrice(ctx context.Context, currency domain.Currency) (osmomath.Dec, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Lookups++
	price, ok := m.Prices[currency.Denom]
	return price, ok
}

// SetPrice updates the price of the given denom.
func (m *PriceOracleMock) SetPrice(denom string, price osmomath.Dec) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Prices == nil {
		m.Prices = map[string]osmomath.Dec{}
	}
	m.Prices[denom] = price
}
