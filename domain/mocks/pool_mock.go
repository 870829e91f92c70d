package mocks

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/osmosis-labs/osmosis/osmomath"

	"github.com/osmosis-labs/poolrouter/domain"
)

var _ domain.RoutablePool = &MockRoutablePool{}

// MockRoutablePool returns fixed prices for any denom pair it holds.
type MockRoutablePool struct {
	ID           string
	Denoms       []string
	SpreadFactor osmomath.Dec

	SpotPrice     osmomath.Dec
	SpotPriceErr  error
	SlippageSlope osmomath.BigDec
	// Estimate is returned with TokenOut denom set to the requested out denom.
	Estimate    domain.SwapEstimate
	EstimateErr error
}

// GetId implements domain.RoutablePool.
func (mp *MockRoutablePool) GetId() string {
	return mp.ID
}

// GetPoolDenoms implements domain.RoutablePool.
func (mp *MockRoutablePool) GetPoolDenoms() []string {
	return mp.Denoms
}

// GetSpreadFactor implements domain.RoutablePool.
func (mp *MockRoutablePool) GetSpreadFactor() osmomath.Dec {
	return mp.SpreadFactor
}

// CalcSpotPrice implements domain.RoutablePool.
func (mp *MockRoutablePool) CalcSpotPrice(inDenom, outDenom string) (osmomath.Dec, error) {
	if err := mp.validateDenoms(inDenom, outDenom); err != nil {
		return osmomath.Dec{}, err
	}
	if mp.SpotPriceErr != nil {
		return osmomath.Dec{}, mp.SpotPriceErr
	}
	return mp.SpotPrice, nil
}

// CalcSpotPriceWithFee implements domain.RoutablePool.
func (mp *MockRoutablePool) CalcSpotPriceWithFee(inDenom, outDenom string) (osmomath.Dec, error) {
	spotPrice, err := mp.CalcSpotPrice(inDenom, outDenom)
	if err != nil {
		return osmomath.Dec{}, err
	}
	return spotPrice.Quo(osmomath.OneDec().Sub(mp.SpreadFactor)), nil
}

// CalcSlippageSlope implements domain.RoutablePool.
func (mp *MockRoutablePool) CalcSlippageSlope(inDenom, outDenom string) (osmomath.BigDec, error) {
	if err := mp.validateDenoms(inDenom, outDenom); err != nil {
		return osmomath.BigDec{}, err
	}
	return mp.SlippageSlope, nil
}

// EstimateSwapExactIn implements domain.RoutablePool.
func (mp *MockRoutablePool) EstimateSwapExactIn(tokenIn sdk.Coin, outDenom string) (domain.SwapEstimate, error) {
	if err := mp.validateDenoms(tokenIn.Denom, outDenom); err != nil {
		return domain.SwapEstimate{}, err
	}
	if mp.EstimateErr != nil {
		return domain.SwapEstimate{}, mp.EstimateErr
	}

	estimate := mp.Estimate
	estimate.TokenOut = sdk.NewCoin(outDenom, mp.Estimate.TokenOut.Amount)
	return estimate, nil
}

// String implements domain.RoutablePool.
func (mp *MockRoutablePool) String() string {
	return fmt.Sprintf("mock pool (%s), denoms (%v)", mp.ID, mp.Denoms)
}

func (mp *MockRoutablePool) validateDenoms(inDenom, outDenom string) error {
	for _, denom := range []string{inDenom, outDenom} {
		found := false
		for _, poolDenom := range mp.Denoms {
			if poolDenom == denom {
				found = true
				break
			}
		}
		if !found {
			return domain.DenomNotInPoolError{PoolID: mp.ID, Denom: denom}
		}
	}
	return nil
}
