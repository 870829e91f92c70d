package coingeckopricing

import (
	"context"
	"fmt"

	"github.com/osmosis-labs/osmosis/osmomath"

	"github.com/osmosis-labs/poolrouter/domain"
)

// StaticPriceOracle returns fixed prices keyed by coingecko id.
type StaticPriceOracle map[string]osmomath.Dec

var _ domain.PriceOracle = StaticPriceOracle{}

// NewStaticPriceOracle parses the given coingecko id to price mapping.
func NewStaticPriceOracle(prices map[string]string) (StaticPriceOracle, error) {
	oracle := make(StaticPriceOracle, len(prices))
	for coingeckoID, priceStr := range prices {
		price, err := osmomath.NewDecFromStr(priceStr)
		if err != nil {
			return nil, fmt.Errorf("invalid static price (%s) for (%s): %w", priceStr, coingeckoID, err)
		}
		oracle[coingeckoID] = price
	}
	return oracle, nil
}

// GetPrice implements domain.PriceOracle.
func (o StaticPriceOracle) GetPrice(ctx context.Context, currency domain.Currency) (osmomath.Dec, bool) {
	price, ok := o[currency.CoingeckoID]
	return price, ok
}
