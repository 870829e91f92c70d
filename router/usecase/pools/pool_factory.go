package pools

import (
	"sort"

	"github.com/osmosis-labs/osmosis/osmomath"
	"github.com/osmosis-labs/osmosis/v25/x/gamm/pool-models/balancer"
	poolmanagertypes "github.com/osmosis-labs/osmosis/v25/x/poolmanager/types"

	"github.com/osmosis-labs/poolrouter/domain"
)

// NewRoutablePool creates a new RoutablePool.
// Returns error if the pool is not a weighted pool, if it has an unusable swap fee
// or asset, or if any of its denoms has no usable scaling factor in the currency registry.
func NewRoutablePool(pool domain.Pool, currencyRegistry domain.CurrencyRegistry) (domain.RoutablePool, error) {
	if pool.Type != poolmanagertypes.Balancer {
		return nil, domain.InvalidPoolTypeError{
			PoolID:   pool.ID,
			PoolType: poolmanagertypes.PoolType_name[int32(pool.Type)],
		}
	}

	if pool.SwapFee.IsNil() || pool.SwapFee.IsNegative() || pool.SwapFee.GTE(oneDec) {
		return nil, domain.InvalidPoolTypeError{
			PoolID:   pool.ID,
			PoolType: "swap fee out of range [0, 1)",
		}
	}

	scalingFactors := make(map[string]osmomath.Dec, len(pool.PoolAssets))
	for _, asset := range pool.PoolAssets {
		if asset.Token.Amount.IsNil() || !asset.Token.Amount.IsPositive() || asset.Weight.IsNil() || !asset.Weight.IsPositive() {
			return nil, domain.ZeroPoolBalanceError{PoolID: pool.ID, Denom: asset.Token.Denom}
		}

		scalingFactor, err := currencyRegistry.GetChainScalingFactorByDenomMut(asset.Token.Denom)
		if err != nil {
			return nil, err
		}

		scalingFactors[asset.Token.Denom] = scalingFactor
	}

	return &routableWeightedPoolImpl{
		Pool:           pool,
		ChainPool:      newChainBalancerPool(pool),
		scalingFactors: scalingFactors,
	}, nil
}

// newChainBalancerPool mirrors the pool into the chain balancer model.
// Pool assets are copied and sorted by denom as the chain model requires.
func newChainBalancerPool(pool domain.Pool) *balancer.Pool {
	assets := make([]balancer.PoolAsset, len(pool.PoolAssets))
	copy(assets, pool.PoolAssets)
	sort.Slice(assets, func(i, j int) bool {
		return assets[i].Token.Denom < assets[j].Token.Denom
	})

	totalWeight := osmomath.ZeroInt()
	for _, asset := range assets {
		totalWeight = totalWeight.Add(asset.Weight)
	}

	exitFee := pool.ExitFee
	if exitFee.IsNil() {
		exitFee = osmomath.ZeroDec()
	}

	return &balancer.Pool{
		PoolParams:  balancer.NewPoolParams(pool.SwapFee, exitFee, nil),
		PoolAssets:  assets,
		TotalWeight: totalWeight,
	}
}
