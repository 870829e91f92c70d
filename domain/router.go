package domain

import (
	"fmt"
	"strings"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/osmosis-labs/osmosis/osmomath"
	"github.com/osmosis-labs/osmosis/osmoutils"
)

// RoutablePool is a pool that can be priced and swapped over.
type RoutablePool interface {
	GetId() string

	GetPoolDenoms() []string

	GetSpreadFactor() osmomath.Dec

	// CalcSpotPrice returns the price of one unit of inDenom in outDenom excluding the swap fee.
	CalcSpotPrice(inDenom, outDenom string) (osmomath.Dec, error)

	// CalcSpotPriceWithFee returns CalcSpotPrice scaled by 1 / (1 - swap fee).
	CalcSpotPriceWithFee(inDenom, outDenom string) (osmomath.Dec, error)

	// CalcSlippageSlope returns the marginal rate of change of the price
	// per unit of input for an infinitesimal swap.
	CalcSlippageSlope(inDenom, outDenom string) (osmomath.BigDec, error)

	// EstimateSwapExactIn estimates swapping tokenIn for outDenom.
	// Never mutates the pool.
	EstimateSwapExactIn(tokenIn sdk.Coin, outDenom string) (SwapEstimate, error)

	String() string
}

// SwapRoutePool is a single pool step of a route.
type SwapRoutePool struct {
	PoolID      string   `json:"pool_id"`
	OutCurrency Currency `json:"out_currency"`
}

// SwapRoute is either a direct route over one pool or a multihop route over two pools
// through an intermediate currency.
type SwapRoute struct {
	Pools    []SwapRoutePool `json:"pools"`
	Multihop bool            `json:"multihop"`
	// HopDenom is the intermediate currency denom of a multihop route.
	HopDenom string `json:"hop_denom,omitempty"`
}

// PoolIDs returns the ids of the route pools in order.
func (r SwapRoute) PoolIDs() []string {
	ids := make([]string, len(r.Pools))
	for i, pool := range r.Pools {
		ids[i] = pool.PoolID
	}
	return ids
}

// Validate checks the route shape against the given in and out denoms.
// getPoolDenoms resolves the denoms of a pool by id.
func (r SwapRoute) Validate(inDenom, outDenom string, getPoolDenoms func(poolID string) ([]string, bool)) error {
	switch {
	case !r.Multihop && len(r.Pools) != 1:
		return InvalidRouteError{Reason: fmt.Sprintf("direct route must have exactly one pool, got %d", len(r.Pools))}
	case r.Multihop && len(r.Pools) != 2:
		return InvalidRouteError{Reason: fmt.Sprintf("multihop route must have exactly two pools, got %d", len(r.Pools))}
	}

	if r.Pools[len(r.Pools)-1].OutCurrency.Denom != outDenom {
		return InvalidRouteError{Reason: fmt.Sprintf("route ends in (%s), expected (%s)", r.Pools[len(r.Pools)-1].OutCurrency.Denom, outDenom)}
	}

	denomIn := inDenom
	for _, routePool := range r.Pools {
		denoms, ok := getPoolDenoms(routePool.PoolID)
		if !ok {
			return PoolNotFoundError{PoolID: routePool.PoolID}
		}
		if !osmoutils.Contains(denoms, denomIn) {
			return DenomNotInPoolError{PoolID: routePool.PoolID, Denom: denomIn}
		}
		if !osmoutils.Contains(denoms, routePool.OutCurrency.Denom) {
			return DenomNotInPoolError{PoolID: routePool.PoolID, Denom: routePool.OutCurrency.Denom}
		}
		denomIn = routePool.OutCurrency.Denom
	}

	if r.Multihop {
		if r.Pools[0].PoolID == r.Pools[1].PoolID {
			return InvalidRouteError{Reason: "multihop route must use two distinct pools"}
		}
		if r.HopDenom != r.Pools[0].OutCurrency.Denom {
			return InvalidRouteError{Reason: fmt.Sprintf("hop denom (%s) does not match first pool out (%s)", r.HopDenom, r.Pools[0].OutCurrency.Denom)}
		}
		if r.HopDenom == inDenom || r.HopDenom == outDenom {
			return InvalidRouteError{Reason: "hop denom must differ from in and out denoms"}
		}
	}

	return nil
}

// String implements fmt.Stringer.
func (r SwapRoute) String() string {
	var sb strings.Builder
	for i, pool := range r.Pools {
		if i > 0 {
			sb.WriteString(" -> ")
		}
		sb.WriteString(fmt.Sprintf("pool %s out %s", pool.PoolID, pool.OutCurrency.Denom))
	}
	return sb.String()
}

// SwapEstimate is the result of estimating a swap over a route.
type SwapEstimate struct {
	TokenOut sdk.Coin `json:"token_out"`
	// @Type string
	SpotPriceBefore osmomath.Dec `json:"spot_price_before"`
	// @Type string
	SpotPriceAfter osmomath.Dec `json:"spot_price_after"`
	// @Type string
	EffectivePrice osmomath.Dec `json:"effective_price"`
	// Slippage is EffectivePrice / SpotPriceBefore - 1.
	// @Type string
	Slippage osmomath.Dec `json:"slippage"`
	// SpotPriceWithoutSwapFee is the spot price before the swap, excluding swap fees.
	// @Type string
	SpotPriceWithoutSwapFee osmomath.Dec `json:"spot_price_without_swap_fee,omitempty"`
	// SwapFees are the swap fee rates, one per pool.
	// @Type string
	SwapFees []osmomath.Dec `json:"swap_fees"`
}

// BestRoute is the route chosen by the optimizer together with its estimate.
type BestRoute struct {
	Route    SwapRoute    `json:"route"`
	Estimate SwapEstimate `json:"estimate"`
	// SplitCandidatePoolIDs are the direct pools with a gentler slippage slope
	// than the chosen pool. Empty for multihop routes.
	SplitCandidatePoolIDs []string `json:"split_candidate_pool_ids,omitempty"`
}

// SplitRouteLeg is one pool of a split route with the input allocated to it.
type SplitRouteLeg struct {
	PoolID   string       `json:"pool_id"`
	TokenIn  sdk.Coin     `json:"token_in"`
	Estimate SwapEstimate `json:"estimate"`
}

// SplitRoute splits an input across several direct pools.
type SplitRoute struct {
	Legs []SplitRouteLeg `json:"legs"`
	// @Type string
	TokenOut sdk.Coin `json:"token_out"`
}

// RouterConfig defines the route optimizer configuration.
type RouterConfig struct {
	// RouteCacheSize bounds the number of memoized best routes per pools snapshot.
	RouteCacheSize int `mapstructure:"route-cache-size"`
	// MaxSplitPools bounds the number of pools a split route may use.
	MaxSplitPools int `mapstructure:"max-split-pools"`
}
