package usecase_test

import (
	"context"
	"fmt"
	"testing"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"pgregory.net/rapid"

	"github.com/osmosis-labs/osmosis/osmomath"

	"github.com/osmosis-labs/poolrouter/domain"
	"github.com/osmosis-labs/poolrouter/domain/mocks"
	routerusecase "github.com/osmosis-labs/poolrouter/router/usecase"
	"github.com/osmosis-labs/poolrouter/router/usecase/pools"
	"github.com/osmosis-labs/poolrouter/router/usecase/routertesting"
)

type SwapManagerTestSuite struct {
	routertesting.RouterTestHelper
}

func TestSwapManagerTestSuite(t *testing.T) {
	suite.Run(t, new(SwapManagerTestSuite))
}

var (
	UOSMO = routertesting.UOSMO
	ATOM  = routertesting.ATOM
	USDC  = routertesting.USDC
	USDT  = routertesting.USDT
	UION  = routertesting.UION

	DenomOne   = routertesting.DenomOne
	DenomTwo   = routertesting.DenomTwo
	DenomThree = routertesting.DenomThree
	DenomFour  = routertesting.DenomFour
	DenomFive  = routertesting.DenomFive
	DenomSix   = routertesting.DenomSix

	testDenoms = []string{DenomOne, DenomTwo, DenomThree, DenomFour, DenomFive, DenomSix}

	defaultSwapFee = routertesting.DefaultSwapFee
)

func (s *SwapManagerTestSuite) TestMembershipIndex() {
	registry := routertesting.NewCurrencyRegistry()
	swapManager := s.SetupSwapManager(registry, routertesting.DefaultPools()...)

	s.Require().Equal([]string{"1"}, swapManager.GetSwappablePoolIDs(UOSMO, ATOM))
	s.Require().Equal([]string{"1"}, swapManager.GetSwappablePoolIDs(ATOM, UOSMO))
	s.Require().Equal([]string{"3"}, swapManager.GetSwappablePoolIDs(USDT, USDC))
	s.Require().Empty(swapManager.GetSwappablePoolIDs(UOSMO, USDC))
	s.Require().Empty(swapManager.GetSwappablePoolIDs("unknown", USDC))

	// Every pool appears under every currency it contains, and only those.
	index := swapManager.GetMembershipIndex()
	for _, pool := range routertesting.DefaultPools() {
		for denom, memberships := range index {
			found := false
			for _, membership := range memberships {
				if membership.PoolID == pool.ID {
					found = true
				}
			}
			s.Require().Equal(pool.ContainsDenom(denom), found, "pool %s denom %s", pool.ID, denom)
		}
	}

	s.Require().Equal([]routerusecase.MultihopCandidate{
		{PoolIDs: [2]string{"1", "2"}, HopCurrency: s.Currency(registry, ATOM)},
	}, swapManager.GetMultihopSwappablePools(UOSMO, USDC))

	s.Require().Equal([]routerusecase.MultihopCandidate{
		{PoolIDs: [2]string{"4", "1"}, HopCurrency: s.Currency(registry, UOSMO)},
	}, swapManager.GetMultihopSwappablePools(UION, ATOM))

	s.Require().Empty(swapManager.GetMultihopSwappablePools(UION, USDT))
}

func (s *SwapManagerTestSuite) TestSwappableCurrencies() {
	registry := routertesting.NewCurrencyRegistry()
	swapManager := s.SetupSwapManager(registry, routertesting.DefaultPools()...)

	currencies := swapManager.SwappableCurrencies()

	denoms := make([]string, 0, len(currencies))
	for _, currency := range currencies {
		denoms = append(denoms, currency.Denom)
	}
	s.Require().Equal([]string{UOSMO, ATOM, USDC, USDT, UION}, denoms)
	s.Require().Equal("OSMO", currencies[0].Symbol)
}

// Enumeration follows pool1 order, then pool2 order, then pool1 currency order.
func (s *SwapManagerTestSuite) TestGetMultihopSwappablePools_EnumerationOrder() {
	registry := routertesting.NewCurrencyRegistry(testDenoms...)

	swapManager := s.SetupSwapManager(registry,
		routertesting.NewWeightedPool("1", defaultSwapFee,
			routertesting.Asset(DenomOne, 1_000_000_000, 100),
			routertesting.Asset(DenomTwo, 1_000_000_000, 100),
			routertesting.Asset(DenomThree, 1_000_000_000, 100),
		),
		routertesting.NewWeightedPool("2", defaultSwapFee,
			routertesting.Asset(DenomTwo, 1_000_000_000, 100),
			routertesting.Asset(DenomFour, 1_000_000_000, 100),
		),
		routertesting.NewWeightedPool("3", defaultSwapFee,
			routertesting.Asset(DenomThree, 1_000_000_000, 100),
			routertesting.Asset(DenomFour, 1_000_000_000, 100),
		),
		routertesting.NewWeightedPool("4", defaultSwapFee,
			routertesting.Asset(DenomOne, 1_000_000_000, 100),
			routertesting.Asset(DenomThree, 1_000_000_000, 100),
			routertesting.Asset(DenomTwo, 1_000_000_000, 100),
		),
	)

	s.Require().Equal([]routerusecase.MultihopCandidate{
		{PoolIDs: [2]string{"1", "2"}, HopCurrency: s.Currency(registry, DenomTwo)},
		{PoolIDs: [2]string{"1", "3"}, HopCurrency: s.Currency(registry, DenomThree)},
		{PoolIDs: [2]string{"4", "2"}, HopCurrency: s.Currency(registry, DenomTwo)},
		{PoolIDs: [2]string{"4", "3"}, HopCurrency: s.Currency(registry, DenomThree)},
	}, swapManager.GetMultihopSwappablePools(DenomOne, DenomFour))
}

// Two direct pools serving X/Y with spot prices 1.02 and 1.01: the cheaper pool wins.
func (s *SwapManagerTestSuite) TestFindBestRoute_DirectLowestSpotPrice() {
	registry := routertesting.NewCurrencyRegistry(testDenoms...)
	poolOne, poolTwo := routertesting.DirectPoolsXY()
	swapManager := s.SetupSwapManager(registry, poolOne, poolTwo)

	inCurrency, outCurrency := s.Currency(registry, DenomOne), s.Currency(registry, DenomTwo)
	amount := osmomath.NewInt(1_000_000)

	bestRoute, err := swapManager.FindBestRoute(context.Background(), inCurrency, outCurrency, amount)
	s.Require().NoError(err)
	s.Require().NotNil(bestRoute)

	s.Require().False(bestRoute.Route.Multihop)
	s.Require().Equal([]domain.SwapRoutePool{{PoolID: "2", OutCurrency: outCurrency}}, bestRoute.Route.Pools)

	expectedEstimate, err := s.NewRoutablePool(poolTwo, registry).EstimateSwapExactIn(sdk.NewCoin(DenomOne, amount), DenomTwo)
	s.Require().NoError(err)
	s.Require().Equal(expectedEstimate, bestRoute.Estimate)

	expectedSpotPrice, err := s.NewRoutablePool(poolTwo, registry).CalcSpotPrice(DenomOne, DenomTwo)
	s.Require().NoError(err)
	s.Require().False(bestRoute.Estimate.SpotPriceWithoutSwapFee.IsNil())
	s.Require().Equal(expectedSpotPrice.String(), bestRoute.Estimate.SpotPriceWithoutSwapFee.String())

	// The 1.02 pool is deeper on the in side so it degrades more gently.
	s.Require().Equal([]string{"1"}, bestRoute.SplitCandidatePoolIDs)

	s.Require().NoError(bestRoute.Route.Validate(DenomOne, DenomTwo, getPoolDenomsFn(poolOne, poolTwo)))
}

// Pools {A/B, B/C} with no A/C pool route A to C through B.
func (s *SwapManagerTestSuite) TestFindBestRoute_Multihop() {
	registry := routertesting.NewCurrencyRegistry(testDenoms...)
	poolAB, poolBC := routertesting.MultihopPoolsABC()
	swapManager := s.SetupSwapManager(registry, poolAB, poolBC)

	inCurrency, outCurrency := s.Currency(registry, DenomOne), s.Currency(registry, DenomThree)

	bestRoute, err := swapManager.FindBestRoute(context.Background(), inCurrency, outCurrency, osmomath.NewInt(1_000_000))
	s.Require().NoError(err)
	s.Require().NotNil(bestRoute)

	s.Require().True(bestRoute.Route.Multihop)
	s.Require().Equal(DenomTwo, bestRoute.Route.HopDenom)
	s.Require().Equal([]string{"1", "2"}, bestRoute.Route.PoolIDs())
	s.Require().Equal(s.Currency(registry, DenomTwo), bestRoute.Route.Pools[0].OutCurrency)
	s.Require().Equal(outCurrency, bestRoute.Route.Pools[1].OutCurrency)
	s.Require().Empty(bestRoute.SplitCandidatePoolIDs)

	s.Require().Equal(sdk.NewInt64Coin(DenomThree, 1_489_528), bestRoute.Estimate.TokenOut)
	s.Require().Equal([]osmomath.Dec{defaultSwapFee, defaultSwapFee}, bestRoute.Estimate.SwapFees)

	// Composition law
	routableAB, routableBC := s.NewRoutablePool(poolAB, registry), s.NewRoutablePool(poolBC, registry)
	spotAB, err := routableAB.CalcSpotPriceWithFee(DenomOne, DenomTwo)
	s.Require().NoError(err)
	spotBC, err := routableBC.CalcSpotPriceWithFee(DenomTwo, DenomThree)
	s.Require().NoError(err)
	s.Require().Equal(spotAB.Mul(spotBC).String(), bestRoute.Estimate.SpotPriceBefore.String())

	spotWithoutFeeAB, err := routableAB.CalcSpotPrice(DenomOne, DenomTwo)
	s.Require().NoError(err)
	spotWithoutFeeBC, err := routableBC.CalcSpotPrice(DenomTwo, DenomThree)
	s.Require().NoError(err)
	s.Require().Equal(spotWithoutFeeAB.Mul(spotWithoutFeeBC).String(), bestRoute.Estimate.SpotPriceWithoutSwapFee.String())

	s.Require().NoError(bestRoute.Route.Validate(DenomOne, DenomThree, getPoolDenomsFn(poolAB, poolBC)))
}

func (s *SwapManagerTestSuite) TestFindBestRoute_MultihopSelection() {
	registry := routertesting.NewCurrencyRegistry(testDenoms...)

	poolBC := routertesting.NewWeightedPool("3", defaultSwapFee,
		routertesting.Asset(DenomTwo, 1_000_000_000, 100),
		routertesting.Asset(DenomThree, 1_000_000_000, 100),
	)

	s.Run("tie resolves to first enumerated", func() {
		swapManager := s.SetupSwapManager(registry,
			routertesting.NewWeightedPool("1", defaultSwapFee,
				routertesting.Asset(DenomOne, 1_000_000_000, 100),
				routertesting.Asset(DenomTwo, 1_000_000_000, 100),
			),
			routertesting.NewWeightedPool("2", defaultSwapFee,
				routertesting.Asset(DenomOne, 1_000_000_000, 100),
				routertesting.Asset(DenomTwo, 1_000_000_000, 100),
			),
			poolBC,
		)

		bestRoute, err := swapManager.FindBestRoute(context.Background(), s.Currency(registry, DenomOne), s.Currency(registry, DenomThree), osmomath.NewInt(1_000))
		s.Require().NoError(err)
		s.Require().Equal([]string{"1", "3"}, bestRoute.Route.PoolIDs())
	})

	s.Run("lowest spot price before wins", func() {
		swapManager := s.SetupSwapManager(registry,
			routertesting.NewWeightedPool("1", defaultSwapFee,
				routertesting.Asset(DenomOne, 2_000_000_000, 100),
				routertesting.Asset(DenomTwo, 1_000_000_000, 100),
			),
			routertesting.NewWeightedPool("2", defaultSwapFee,
				routertesting.Asset(DenomOne, 1_000_000_000, 100),
				routertesting.Asset(DenomTwo, 1_000_000_000, 100),
			),
			poolBC,
		)

		bestRoute, err := swapManager.FindBestRoute(context.Background(), s.Currency(registry, DenomOne), s.Currency(registry, DenomThree), osmomath.NewInt(1_000))
		s.Require().NoError(err)
		s.Require().Equal([]string{"2", "3"}, bestRoute.Route.PoolIDs())
	})

	s.Run("failing candidate is skipped", func() {
		inCurrency, outCurrency := s.Currency(registry, DenomOne), s.Currency(registry, DenomThree)
		hopCurrency := s.Currency(registry, DenomTwo)

		failing := &mocks.MockRoutablePool{
			ID:           "1",
			Denoms:       []string{DenomOne, DenomTwo},
			SpreadFactor: defaultSwapFee,
			SpotPrice:    osmomath.OneDec(),
			EstimateErr:  domain.ZeroAmountOutError{PoolID: "1"},
		}
		target := &mocks.MockRoutablePool{
			ID:           "3",
			Denoms:       []string{DenomTwo, DenomThree},
			SpreadFactor: defaultSwapFee,
			SpotPrice:    osmomath.OneDec(),
			Estimate:     mockEstimate(10, osmomath.NewDec(1)),
		}

		swapManager, err := routerusecase.NewSwapManager([]domain.PoolCurrencies{
			{PoolID: "1", Currencies: []domain.Currency{inCurrency, hopCurrency}},
			{PoolID: "3", Currencies: []domain.Currency{hopCurrency, outCurrency}},
		}, []domain.RoutablePool{failing, target})
		s.Require().NoError(err)

		bestRoute, err := swapManager.FindBestRoute(context.Background(), inCurrency, outCurrency, osmomath.NewInt(1_000))
		s.Require().NoError(err)
		s.Require().Nil(bestRoute)
	})
}

func (s *SwapManagerTestSuite) TestFindBestRoute_NoRoute() {
	registry := routertesting.NewCurrencyRegistry(testDenoms...)
	swapManager := s.SetupSwapManager(registry, routertesting.DefaultPools()...)

	bestRoute, err := swapManager.FindBestRoute(context.Background(), s.Currency(registry, UION), s.Currency(registry, USDT), osmomath.NewInt(1_000))
	s.Require().NoError(err)
	s.Require().Nil(bestRoute)

	bestRoute, err = swapManager.FindBestRoute(context.Background(), s.Currency(registry, DenomOne), s.Currency(registry, DenomTwo), osmomath.NewInt(1_000))
	s.Require().NoError(err)
	s.Require().Nil(bestRoute)
}

func (s *SwapManagerTestSuite) TestFindBestRoute_InvalidInput() {
	registry := routertesting.NewCurrencyRegistry()
	swapManager := s.SetupSwapManager(registry, routertesting.DefaultPools()...)

	osmo := s.Currency(registry, UOSMO)

	_, err := swapManager.FindBestRoute(context.Background(), osmo, osmo, osmomath.NewInt(1))
	s.Require().ErrorIs(err, domain.SameDenomError{DenomA: UOSMO, DenomB: UOSMO})

	_, err = swapManager.FindBestRoute(context.Background(), osmo, s.Currency(registry, ATOM), osmomath.ZeroInt())
	s.Require().ErrorIs(err, domain.InvalidAmountError{Amount: "0"})

	_, err = routerusecase.NewSwapManager([]domain.PoolCurrencies{{PoolID: "42"}}, nil)
	s.Require().ErrorIs(err, domain.PoolNotFoundError{PoolID: "42"})
}

func (s *SwapManagerTestSuite) TestFindBestSplitRoute() {
	registry := routertesting.NewCurrencyRegistry(testDenoms...)

	shallow := routertesting.NewWeightedPool("1", defaultSwapFee,
		routertesting.Asset(DenomOne, 1_000_000_000, 100),
		routertesting.Asset(DenomTwo, 1_000_000_000, 100),
	)
	deep := routertesting.NewWeightedPool("2", defaultSwapFee,
		routertesting.Asset(DenomOne, 10_000_000_000, 100),
		routertesting.Asset(DenomTwo, 10_000_000_000, 100),
	)

	swapManager := s.SetupSwapManager(registry, shallow, deep)
	inCurrency, outCurrency := s.Currency(registry, DenomOne), s.Currency(registry, DenomTwo)
	amount := osmomath.NewInt(100_000_000)

	bestRoute, err := swapManager.FindBestRoute(context.Background(), inCurrency, outCurrency, amount)
	s.Require().NoError(err)
	// Equal spot prices keep registration order.
	s.Require().Equal([]string{"1"}, bestRoute.Route.PoolIDs())
	s.Require().Equal([]string{"2"}, bestRoute.SplitCandidatePoolIDs)

	splitRoute, err := swapManager.FindBestSplitRoute(context.Background(), inCurrency, outCurrency, amount, 3)
	s.Require().NoError(err)
	s.Require().NotNil(splitRoute)
	s.Require().Len(splitRoute.Legs, 2)

	s.Require().Equal("1", splitRoute.Legs[0].PoolID)
	s.Require().Equal("2", splitRoute.Legs[1].PoolID)

	// Allocation is proportional to the inverse slope: 1 / 11 and 10 / 11.
	s.Require().Equal(osmomath.NewInt(90_909_090), splitRoute.Legs[1].TokenIn.Amount)
	s.Require().Equal(amount, splitRoute.Legs[0].TokenIn.Amount.Add(splitRoute.Legs[1].TokenIn.Amount))

	s.Require().Equal(splitRoute.Legs[0].Estimate.TokenOut.Amount.Add(splitRoute.Legs[1].Estimate.TokenOut.Amount), splitRoute.TokenOut.Amount)
	s.Require().True(splitRoute.TokenOut.Amount.GT(bestRoute.Estimate.TokenOut.Amount))

	s.Run("single pool cap", func() {
		splitRoute, err := swapManager.FindBestSplitRoute(context.Background(), inCurrency, outCurrency, amount, 1)
		s.Require().NoError(err)
		s.Require().Nil(splitRoute)
	})

	s.Run("nothing to split across", func() {
		swapManager := s.SetupSwapManager(registry, shallow)
		splitRoute, err := swapManager.FindBestSplitRoute(context.Background(), inCurrency, outCurrency, amount, 3)
		s.Require().NoError(err)
		s.Require().Nil(splitRoute)
	})
}

// If no pool contains both currencies and no two-pool chain connects them, there is no route.
// Otherwise a route exists and is well formed.
func TestFindBestRoute_RouteExistsIffConnected(t *testing.T) {
	registry := routertesting.NewCurrencyRegistry(testDenoms...)

	rapid.Check(t, func(t *rapid.T) {
		numPools := rapid.IntRange(0, 6).Draw(t, "numPools")

		chainPools := make([]domain.Pool, 0, numPools)
		for i := 0; i < numPools; i++ {
			denoms := rapid.Permutation(testDenoms).Draw(t, fmt.Sprintf("denoms%d", i))
			chainPools = append(chainPools, routertesting.NewWeightedPool(fmt.Sprintf("%d", i+1), defaultSwapFee,
				routertesting.Asset(denoms[0], 1_000_000_000, 100),
				routertesting.Asset(denoms[1], 1_000_000_000, 100),
			))
		}

		denoms := rapid.Permutation(testDenoms).Draw(t, "pair")
		inDenom, outDenom := denoms[0], denoms[1]

		swapManager := newSwapManager(t, registry, chainPools...)

		inCurrency, err := registry.ForceFindCurrency(inDenom)
		require.NoError(t, err)
		outCurrency, err := registry.ForceFindCurrency(outDenom)
		require.NoError(t, err)

		bestRoute, err := swapManager.FindBestRoute(context.Background(), inCurrency, outCurrency, osmomath.NewInt(1_000_000))
		require.NoError(t, err)

		require.Equal(t, isConnected(chainPools, inDenom, outDenom), bestRoute != nil)

		if bestRoute != nil {
			require.NoError(t, bestRoute.Route.Validate(inDenom, outDenom, getPoolDenomsFn(chainPools...)))
		}
	})
}

// A single pool containing both currencies yields a direct route over it
// with the pool's own estimate.
func TestFindBestRoute_SinglePoolMatchesPoolEstimate(t *testing.T) {
	registry := routertesting.NewCurrencyRegistry(testDenoms...)

	rapid.Check(t, func(t *rapid.T) {
		balanceIn := rapid.Int64Range(1_000, 1_000_000_000_000).Draw(t, "balanceIn")
		balanceOut := rapid.Int64Range(1_000, 1_000_000_000_000).Draw(t, "balanceOut")
		weightIn := rapid.Int64Range(1, 100).Draw(t, "weightIn")
		weightOut := rapid.Int64Range(1, 100).Draw(t, "weightOut")
		feeBps := rapid.Int64Range(0, 500).Draw(t, "feeBps")
		amountIn := rapid.Int64Range(1, 1_000_000_000).Draw(t, "amountIn")

		pool := routertesting.NewWeightedPool("7", osmomath.NewDecWithPrec(feeBps, 4),
			routertesting.Asset(DenomOne, balanceIn, weightIn),
			routertesting.Asset(DenomTwo, balanceOut, weightOut),
		)

		swapManager := newSwapManager(t, registry, pool)

		routablePool, err := pools.NewRoutablePool(pool, registry)
		require.NoError(t, err)

		inCurrency, err := registry.ForceFindCurrency(DenomOne)
		require.NoError(t, err)
		outCurrency, err := registry.ForceFindCurrency(DenomTwo)
		require.NoError(t, err)

		expectedEstimate, expectedErr := routablePool.EstimateSwapExactIn(sdk.NewInt64Coin(DenomOne, amountIn), DenomTwo)

		bestRoute, err := swapManager.FindBestRoute(context.Background(), inCurrency, outCurrency, osmomath.NewInt(amountIn))
		if expectedErr != nil {
			require.Error(t, err)
			return
		}

		require.NoError(t, err)
		require.Equal(t, []domain.SwapRoutePool{{PoolID: "7", OutCurrency: outCurrency}}, bestRoute.Route.Pools)
		require.False(t, bestRoute.Route.Multihop)
		require.Equal(t, expectedEstimate, bestRoute.Estimate)
	})
}

func newSwapManager(t require.TestingT, registry domain.CurrencyRegistry, chainPools ...domain.Pool) *routerusecase.SwapManager {
	snapshot := routertesting.NewPoolsSnapshot(chainPools...)

	poolCurrencies, err := snapshot.GetPoolCurrencies(registry)
	require.NoError(t, err)

	routablePools := make([]domain.RoutablePool, 0, len(chainPools))
	for _, pool := range chainPools {
		routablePool, err := pools.NewRoutablePool(pool, registry)
		require.NoError(t, err)
		routablePools = append(routablePools, routablePool)
	}

	swapManager, err := routerusecase.NewSwapManager(poolCurrencies, routablePools)
	require.NoError(t, err)
	return swapManager
}

func isConnected(chainPools []domain.Pool, inDenom, outDenom string) bool {
	for _, pool := range chainPools {
		if pool.ContainsDenom(inDenom) && pool.ContainsDenom(outDenom) {
			return true
		}
	}

	for _, first := range chainPools {
		if !first.ContainsDenom(inDenom) {
			continue
		}
		for _, second := range chainPools {
			if second.ID == first.ID || !second.ContainsDenom(outDenom) {
				continue
			}
			for _, hop := range first.GetPoolDenoms() {
				if hop != inDenom && hop != outDenom && second.ContainsDenom(hop) {
					return true
				}
			}
		}
	}
	return false
}

func getPoolDenomsFn(chainPools ...domain.Pool) func(poolID string) ([]string, bool) {
	snapshot := routertesting.NewPoolsSnapshot(chainPools...)
	return func(poolID string) ([]string, bool) {
		pool, ok := snapshot.GetPool(poolID)
		if !ok {
			return nil, false
		}
		return pool.GetPoolDenoms(), true
	}
}

func mockEstimate(amountOut int64, spotPrice osmomath.Dec) domain.SwapEstimate {
	return domain.SwapEstimate{
		TokenOut:        sdk.NewInt64Coin(DenomTwo, amountOut),
		SpotPriceBefore: spotPrice,
		SpotPriceAfter:  spotPrice,
		EffectivePrice:  spotPrice,
		Slippage:        osmomath.ZeroDec(),
		SwapFees:        []osmomath.Dec{defaultSwapFee},
	}
}
