package usecase

import (
	"context"
	"sort"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/osmosis-labs/osmosis/osmomath"

	"github.com/osmosis-labs/poolrouter/domain"
	"github.com/osmosis-labs/poolrouter/domain/cache"
	"github.com/osmosis-labs/poolrouter/router/usecase/route"
)

// poolMembership is a pool entry of the membership index.
type poolMembership struct {
	PoolID     string
	Currencies []domain.Currency

	denoms map[string]struct{}
}

func (m *poolMembership) has(denom string) bool {
	_, ok := m.denoms[denom]
	return ok
}

// MembershipIndex maps a denom to every pool containing it, in registration order.
type MembershipIndex map[string][]*poolMembership

// MultihopCandidate is a pair of pools connected through a hop currency.
type MultihopCandidate struct {
	PoolIDs     [2]string
	HopCurrency domain.Currency
}

type denomPair struct {
	in  string
	out string
}

// SwapManager answers route queries over a fixed grouping of pool currencies.
// It is immutable after construction and safe for concurrent use.
type SwapManager struct {
	poolCurrencies []domain.PoolCurrencies
	index          MembershipIndex
	routablePools  map[string]domain.RoutablePool

	directMemo   *cache.Memo[denomPair, []string]
	multihopMemo *cache.Memo[denomPair, []MultihopCandidate]
}

// NewSwapManager builds the membership index over poolCurrencies.
// Every pool id in poolCurrencies must have a routable pool.
func NewSwapManager(poolCurrencies []domain.PoolCurrencies, routablePools []domain.RoutablePool) (*SwapManager, error) {
	routablePoolsByID := make(map[string]domain.RoutablePool, len(routablePools))
	for _, pool := range routablePools {
		routablePoolsByID[pool.GetId()] = pool
	}

	index := make(MembershipIndex)
	for _, poolCurrency := range poolCurrencies {
		if _, ok := routablePoolsByID[poolCurrency.PoolID]; !ok {
			return nil, domain.PoolNotFoundError{PoolID: poolCurrency.PoolID}
		}

		membership := &poolMembership{
			PoolID:     poolCurrency.PoolID,
			Currencies: poolCurrency.Currencies,
			denoms:     make(map[string]struct{}, len(poolCurrency.Currencies)),
		}
		for _, currency := range poolCurrency.Currencies {
			membership.denoms[currency.Denom] = struct{}{}
		}

		for denom := range membership.denoms {
			index[denom] = append(index[denom], membership)
		}
	}

	return &SwapManager{
		poolCurrencies: poolCurrencies,
		index:          index,
		routablePools:  routablePoolsByID,
		directMemo:     cache.NewMemo[denomPair, []string](0),
		multihopMemo:   cache.NewMemo[denomPair, []MultihopCandidate](0),
	}, nil
}

// SwappableCurrencies returns the distinct currencies of every pool
// in registration order.
func (m *SwapManager) SwappableCurrencies() []domain.Currency {
	seen := make(map[string]struct{})
	currencies := make([]domain.Currency, 0)
	for _, poolCurrency := range m.poolCurrencies {
		for _, currency := range poolCurrency.Currencies {
			if _, ok := seen[currency.Denom]; ok {
				continue
			}
			seen[currency.Denom] = struct{}{}
			currencies = append(currencies, currency)
		}
	}
	return currencies
}

// GetMembershipIndex returns the membership index.
// Callers must not mutate it.
func (m *SwapManager) GetMembershipIndex() MembershipIndex {
	return m.index
}

// GetSwappablePoolIDs returns the ids of every pool containing both denoms
// in registration order.
func (m *SwapManager) GetSwappablePoolIDs(inDenom, outDenom string) []string {
	poolIDs, _, _ := m.directMemo.GetOrCompute(0, denomPair{in: inDenom, out: outDenom}, func() ([]string, error) {
		result := make([]string, 0)
		for _, membership := range m.index[inDenom] {
			if membership.has(outDenom) {
				result = append(result, membership.PoolID)
			}
		}
		return result, nil
	})
	return poolIDs
}

// GetMultihopSwappablePools enumerates every (pool1, pool2, hop) triple where pool1 contains
// inDenom and the hop currency, and pool2 contains the hop currency and outDenom.
// Enumeration follows pool1 registration order, then pool2 registration order,
// then the order of currencies within pool1.
func (m *SwapManager) GetMultihopSwappablePools(inDenom, outDenom string) []MultihopCandidate {
	candidates, _, _ := m.multihopMemo.GetOrCompute(0, denomPair{in: inDenom, out: outDenom}, func() ([]MultihopCandidate, error) {
		result := make([]MultihopCandidate, 0)

		targets := m.index[outDenom]
		if len(targets) == 0 {
			return result, nil
		}

		for _, first := range m.index[inDenom] {
			for _, target := range targets {
				if target.PoolID == first.PoolID {
					continue
				}

				for _, hopCurrency := range first.Currencies {
					if hopCurrency.Denom == inDenom || hopCurrency.Denom == outDenom {
						continue
					}

					if target.has(hopCurrency.Denom) {
						result = append(result, MultihopCandidate{
							PoolIDs:     [2]string{first.PoolID, target.PoolID},
							HopCurrency: hopCurrency,
						})
					}
				}
			}
		}

		return result, nil
	})
	return candidates
}

// FindBestRoute returns the direct route over the pool with the lowest spot price or,
// when no direct pool exists, the one-hop route with the lowest spot price before the swap.
// Returns nil and no error if no route exists.
func (m *SwapManager) FindBestRoute(ctx context.Context, inCurrency, outCurrency domain.Currency, inAmount osmomath.Int) (*domain.BestRoute, error) {
	if err := validateRouteInput(inCurrency, outCurrency, inAmount); err != nil {
		return nil, err
	}

	tokenIn := sdk.NewCoin(inCurrency.Denom, inAmount)

	directPools, err := m.sortedDirectPools(inCurrency.Denom, outCurrency.Denom)
	if err != nil {
		return nil, err
	}

	if len(directPools) > 0 {
		primary := directPools[0]

		splitCandidates, err := m.gentlerSlopePools(primary, directPools[1:], inCurrency.Denom, outCurrency.Denom)
		if err != nil {
			return nil, err
		}

		estimate, err := primary.EstimateSwapExactIn(tokenIn, outCurrency.Denom)
		if err != nil {
			return nil, err
		}

		splitCandidateIDs := make([]string, 0, len(splitCandidates))
		for _, pool := range splitCandidates {
			splitCandidateIDs = append(splitCandidateIDs, pool.GetId())
		}

		return &domain.BestRoute{
			Route: domain.SwapRoute{
				Pools: []domain.SwapRoutePool{{PoolID: primary.GetId(), OutCurrency: outCurrency}},
			},
			Estimate:              estimate,
			SplitCandidatePoolIDs: splitCandidateIDs,
		}, nil
	}

	return m.findBestMultihopRoute(tokenIn, outCurrency)
}

func (m *SwapManager) findBestMultihopRoute(tokenIn sdk.Coin, outCurrency domain.Currency) (*domain.BestRoute, error) {
	var (
		bestCandidate *MultihopCandidate
		bestEstimate  domain.SwapEstimate
	)

	candidates := m.GetMultihopSwappablePools(tokenIn.Denom, outCurrency.Denom)
	for i := range candidates {
		candidate := candidates[i]

		firstPool, secondPool := m.routablePools[candidate.PoolIDs[0]], m.routablePools[candidate.PoolIDs[1]]

		estimate, err := route.EstimateMultihopSwapExactIn(tokenIn, []route.Hop{
			{Pool: firstPool, OutDenom: candidate.HopCurrency.Denom},
			{Pool: secondPool, OutDenom: outCurrency.Denom},
		})
		if err != nil {
			// An unpriceable candidate is not a route.
			multihopCandidateErrorCounter.WithLabelValues(tokenIn.Denom, outCurrency.Denom).Inc()
			continue
		}

		// Strict comparison keeps the first candidate on ties.
		if bestCandidate == nil || estimate.SpotPriceBefore.LT(bestEstimate.SpotPriceBefore) {
			bestCandidate = &candidate
			bestEstimate = estimate
		}
	}

	if bestCandidate == nil {
		return nil, nil
	}

	return &domain.BestRoute{
		Route: domain.SwapRoute{
			Pools: []domain.SwapRoutePool{
				{PoolID: bestCandidate.PoolIDs[0], OutCurrency: bestCandidate.HopCurrency},
				{PoolID: bestCandidate.PoolIDs[1], OutCurrency: outCurrency},
			},
			Multihop: true,
			HopDenom: bestCandidate.HopCurrency.Denom,
		},
		Estimate: bestEstimate,
	}, nil
}

// FindBestSplitRoute allocates inAmount across the direct pool with the lowest spot price
// and the direct pools with a gentler slippage slope, in proportion to the inverse of each slope.
// At most maxPools pools are used. Returns nil and no error if no direct pool exists, if there is
// nothing to split across, or if the split does not beat swapping through the single best pool.
func (m *SwapManager) FindBestSplitRoute(ctx context.Context, inCurrency, outCurrency domain.Currency, inAmount osmomath.Int, maxPools int) (*domain.SplitRoute, error) {
	if err := validateRouteInput(inCurrency, outCurrency, inAmount); err != nil {
		return nil, err
	}

	if maxPools < 2 {
		return nil, nil
	}

	directPools, err := m.sortedDirectPools(inCurrency.Denom, outCurrency.Denom)
	if err != nil {
		return nil, err
	}

	if len(directPools) < 2 {
		return nil, nil
	}

	primary := directPools[0]

	splitCandidates, err := m.gentlerSlopePools(primary, directPools[1:], inCurrency.Denom, outCurrency.Denom)
	if err != nil {
		return nil, err
	}

	if len(splitCandidates) == 0 {
		return nil, nil
	}

	if len(splitCandidates) > maxPools-1 {
		splitCandidates = splitCandidates[:maxPools-1]
	}

	singleEstimate, err := primary.EstimateSwapExactIn(sdk.NewCoin(inCurrency.Denom, inAmount), outCurrency.Denom)
	if err != nil {
		return nil, err
	}

	splitPools := append([]domain.RoutablePool{primary}, splitCandidates...)

	allocations, err := allocateByInverseSlope(splitPools, inCurrency.Denom, outCurrency.Denom, inAmount)
	if err != nil {
		return nil, err
	}

	legs := make([]domain.SplitRouteLeg, 0, len(splitPools))
	totalOut := osmomath.ZeroInt()
	for i, pool := range splitPools {
		if !allocations[i].IsPositive() {
			continue
		}

		tokenIn := sdk.NewCoin(inCurrency.Denom, allocations[i])

		estimate, err := pool.EstimateSwapExactIn(tokenIn, outCurrency.Denom)
		if err != nil {
			// A leg too small to price means the split cannot improve on the single pool.
			return nil, nil
		}

		legs = append(legs, domain.SplitRouteLeg{
			PoolID:   pool.GetId(),
			TokenIn:  tokenIn,
			Estimate: estimate,
		})
		totalOut = totalOut.Add(estimate.TokenOut.Amount)
	}

	if len(legs) < 2 || totalOut.LTE(singleEstimate.TokenOut.Amount) {
		return nil, nil
	}

	return &domain.SplitRoute{
		Legs:     legs,
		TokenOut: sdk.NewCoin(outCurrency.Denom, totalOut),
	}, nil
}

// sortedDirectPools returns the pools containing both denoms sorted by ascending
// fee-excluded spot price. Equal prices keep registration order.
func (m *SwapManager) sortedDirectPools(inDenom, outDenom string) ([]domain.RoutablePool, error) {
	poolIDs := m.GetSwappablePoolIDs(inDenom, outDenom)

	pools := make([]domain.RoutablePool, 0, len(poolIDs))
	spotPrices := make(map[string]osmomath.Dec, len(poolIDs))
	for _, poolID := range poolIDs {
		pool := m.routablePools[poolID]

		spotPrice, err := pool.CalcSpotPrice(inDenom, outDenom)
		if err != nil {
			return nil, err
		}

		pools = append(pools, pool)
		spotPrices[poolID] = spotPrice
	}

	sort.SliceStable(pools, func(i, j int) bool {
		return spotPrices[pools[i].GetId()].LT(spotPrices[pools[j].GetId()])
	})

	return pools, nil
}

// gentlerSlopePools filters others to the pools whose slippage slope is strictly
// less than the primary pool's.
func (m *SwapManager) gentlerSlopePools(primary domain.RoutablePool, others []domain.RoutablePool, inDenom, outDenom string) ([]domain.RoutablePool, error) {
	primarySlope, err := primary.CalcSlippageSlope(inDenom, outDenom)
	if err != nil {
		return nil, err
	}

	result := make([]domain.RoutablePool, 0, len(others))
	for _, pool := range others {
		slope, err := pool.CalcSlippageSlope(inDenom, outDenom)
		if err != nil {
			return nil, err
		}

		if slope.LT(primarySlope) {
			result = append(result, pool)
		}
	}
	return result, nil
}

// allocateByInverseSlope splits amount across pools proportionally to 1 / slope.
// The rounding remainder goes to the first pool.
func allocateByInverseSlope(pools []domain.RoutablePool, inDenom, outDenom string, amount osmomath.Int) ([]osmomath.Int, error) {
	inverseSlopes := make([]osmomath.BigDec, len(pools))
	totalInverseSlope := osmomath.ZeroBigDec()
	for i, pool := range pools {
		slope, err := pool.CalcSlippageSlope(inDenom, outDenom)
		if err != nil {
			return nil, err
		}
		if !slope.IsPositive() {
			return nil, domain.InvalidRouteError{Reason: "non-positive slippage slope in pool " + pool.GetId()}
		}

		inverseSlopes[i] = osmomath.OneBigDec().QuoMut(slope)
		totalInverseSlope.AddMut(inverseSlopes[i])
	}

	amountBigDec := osmomath.BigDecFromSDKInt(amount)

	allocations := make([]osmomath.Int, len(pools))
	allocated := osmomath.ZeroInt()
	for i := 1; i < len(pools); i++ {
		allocations[i] = amountBigDec.Mul(inverseSlopes[i]).QuoMut(totalInverseSlope).Dec().TruncateInt()
		allocated = allocated.Add(allocations[i])
	}
	allocations[0] = amount.Sub(allocated)

	return allocations, nil
}

func validateRouteInput(inCurrency, outCurrency domain.Currency, inAmount osmomath.Int) error {
	if inCurrency.Denom == outCurrency.Denom {
		return domain.SameDenomError{DenomA: inCurrency.Denom, DenomB: outCurrency.Denom}
	}

	if inAmount.IsNil() || !inAmount.IsPositive() {
		return domain.InvalidAmountError{Amount: inAmount.String()}
	}

	return nil
}
