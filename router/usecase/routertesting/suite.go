package routertesting

import (
	"fmt"
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/suite"

	"github.com/osmosis-labs/osmosis/osmomath"
	"github.com/osmosis-labs/osmosis/v25/x/gamm/pool-models/balancer"
	poolmanagertypes "github.com/osmosis-labs/osmosis/v25/x/poolmanager/types"

	"github.com/osmosis-labs/poolrouter/domain"
	"github.com/osmosis-labs/poolrouter/domain/mocks"
	"github.com/osmosis-labs/poolrouter/domain/mvc"
	"github.com/osmosis-labs/poolrouter/log"
	poolsusecase "github.com/osmosis-labs/poolrouter/pools/usecase"
	routerusecase "github.com/osmosis-labs/poolrouter/router/usecase"
	"github.com/osmosis-labs/poolrouter/router/usecase/pools"
	tokensusecase "github.com/osmosis-labs/poolrouter/tokens/usecase"
)

type RouterTestHelper struct {
	suite.Suite
}

// MockChainUsecase groups the usecases wired over a mocked pools client.
type MockChainUsecase struct {
	Pools  mvc.PoolsUsecase
	Router mvc.RouterUsecase
	Tokens mvc.TokensUsecase
	Client *mocks.PoolsClientMock
}

const (
	DefaultPoolID = "1"
)

var (
	// Test denoms
	DenomOne   = denomNum(1)
	DenomTwo   = denomNum(2)
	DenomThree = denomNum(3)
	DenomFour  = denomNum(4)
	DenomFive  = denomNum(5)
	DenomSix   = denomNum(6)

	UOSMO = "uosmo"
	UION  = "uion"
	ATOM  = "ibc/27394FB092D2ECCD56123C74F36E4C1F926001CEADA9CA97EA622B25F41E5EB2"
	USDC  = "ibc/498A0751C798A0D9A389AA3691123DADA57DAA4FE165D5C75894505B876BA6E4"
	USDT  = "ibc/4ABBEF4C8926DDDB320AE5188CFD63267ABBCEFC0583E4AE05D6E5AA2401DDAB"
	ETH   = "ibc/EA1D43981D5C9A1C4AAEA9C23BB1D4FA126BA9BC7020A25E0AE4AA841EA25DC5"
	// DYDX is 18 decimals
	DYDX = "ibc/831F0B1BBB1D08A2B75311892876D71565478C532967545476DF4C2D7492E48C"

	DefaultSwapFee = osmomath.MustNewDecFromStr("0.003")
	NoSwapFee      = osmomath.ZeroDec()

	DefaultWeight = osmomath.NewInt(100)
	DefaultAmount = osmomath.NewInt(1_000_000_000)

	DefaultRouterConfig = domain.RouterConfig{
		RouteCacheSize: 100,
		MaxSplitPools:  3,
	}

	DefaultPoolsConfig = domain.PoolsConfig{
		LCDEndpoint:              "http://localhost:1317",
		FetchTimeoutSecs:         5,
		NumPoolsPollIntervalSecs: 10,
		RefreshIntervalSecs:      60,
		MemoCacheSize:            100,
	}

	DefaultPricingConfig = domain.PricingConfig{
		CacheExpiryMs:          2000,
		CoingeckoUrl:           "https://prices.osmosis.zone/api/v3/simple/price",
		CoingeckoQuoteCurrency: "usd",
	}

	// DefaultCurrencies are the listed currencies used across router tests.
	// Denoms not listed here are registered as raw currencies with zero decimals.
	DefaultCurrencies = map[string]domain.Currency{
		UOSMO: {Denom: UOSMO, Symbol: "OSMO", Decimals: 6, CoingeckoID: "osmosis"},
		UION:  {Denom: UION, Symbol: "ION", Decimals: 6, CoingeckoID: "ion"},
		ATOM:  {Denom: ATOM, Symbol: "ATOM", Decimals: 6, CoingeckoID: "cosmos"},
		USDC:  {Denom: USDC, Symbol: "USDC", Decimals: 6, CoingeckoID: "usd-coin"},
		USDT:  {Denom: USDT, Symbol: "USDT", Decimals: 6, CoingeckoID: "tether"},
		ETH:   {Denom: ETH, Symbol: "ETH", Decimals: 18, CoingeckoID: "ethereum"},
		DYDX:  {Denom: DYDX, Symbol: "DYDX", Decimals: 18, CoingeckoID: "dydx-chain"},
	}

	DefaultFetchedAt = time.Unix(1_700_000_000, 0).UTC()
)

func denomNum(i int) string {
	return fmt.Sprintf("denom%d", i)
}

// Asset returns a pool asset with the given balance and weight.
func Asset(denom string, amount int64, weight int64) balancer.PoolAsset {
	return balancer.PoolAsset{
		Token:  sdk.NewInt64Coin(denom, amount),
		Weight: osmomath.NewInt(weight),
	}
}

// NewWeightedPool returns a weighted pool with the given swap fee and assets.
func NewWeightedPool(id string, swapFee osmomath.Dec, assets ...balancer.PoolAsset) domain.Pool {
	return domain.Pool{
		ID:         id,
		Type:       poolmanagertypes.Balancer,
		PoolAssets: assets,
		SwapFee:    swapFee,
		ExitFee:    osmomath.ZeroDec(),
	}
}

// NewPoolsSnapshot returns a snapshot with sequence 1 over the given pools.
func NewPoolsSnapshot(pools ...domain.Pool) *domain.PoolsSnapshot {
	return domain.NewPoolsSnapshot(pools, 1, domain.DefaultPoolsFetchLimit, DefaultFetchedAt)
}

// NewCurrencyRegistry returns a tokens usecase seeded with DefaultCurrencies
// and every extra denom registered as a raw currency.
func NewCurrencyRegistry(extraDenoms ...string) mvc.TokensUsecase {
	currencies := make(map[string]domain.Currency, len(DefaultCurrencies))
	for denom, currency := range DefaultCurrencies {
		currencies[denom] = currency
	}

	tokensUsecase := tokensusecase.NewTokensUsecase(currencies, &log.NoOpLogger{})
	tokensUsecase.AddUnknownCurrencies(extraDenoms...)
	return tokensUsecase
}

// NewPoolsUsecase returns a pools usecase with DefaultPoolsConfig over the given client
// and a fresh currency registry.
func NewPoolsUsecase(client domain.PoolsClient) mvc.PoolsUsecase {
	config := DefaultPoolsConfig
	return poolsusecase.NewPoolsUsecase(&config, client, NewCurrencyRegistry(), &log.NoOpLogger{})
}

// Currency returns the currency registered for denom or fails the test.
func (s *RouterTestHelper) Currency(registry domain.CurrencyRegistry, denom string) domain.Currency {
	currency, err := registry.ForceFindCurrency(denom)
	s.Require().NoError(err)
	return currency
}

// NewRoutablePool converts the pool into a routable pool or fails the test.
func (s *RouterTestHelper) NewRoutablePool(pool domain.Pool, registry domain.CurrencyRegistry) domain.RoutablePool {
	routablePool, err := pools.NewRoutablePool(pool, registry)
	s.Require().NoError(err)
	return routablePool
}

// SetupRouterAndPoolsUsecase wires the pools, tokens and router usecases over a mocked
// pools client serving the given pools. No fetch is performed.
func (s *RouterTestHelper) SetupRouterAndPoolsUsecase(chainPools []domain.Pool, opts ...MockOption) MockChainUsecase {
	options := MockOptions{
		RouterConfig: DefaultRouterConfig,
		PoolsConfig:  DefaultPoolsConfig,
	}
	for _, opt := range opts {
		opt(&options)
	}

	client := &mocks.PoolsClientMock{
		Pools:    chainPools,
		NumPools: uint64(len(chainPools)),
	}

	tokensUsecase := NewCurrencyRegistry()
	if options.Currencies != nil {
		tokensUsecase.LoadCurrencies(options.Currencies)
	}

	poolsUsecase := poolsusecase.NewPoolsUsecase(&options.PoolsConfig, client, tokensUsecase, &log.NoOpLogger{})
	routerUsecase := routerusecase.NewRouterUsecase(poolsUsecase, tokensUsecase, options.RouterConfig, &log.NoOpLogger{})
	poolsUsecase.RegisterListener(routerUsecase)

	return MockChainUsecase{
		Pools:  poolsUsecase,
		Router: routerUsecase,
		Tokens: tokensUsecase,
		Client: client,
	}
}

// SetupSwapManager builds a swap manager over the given pools in registration order.
func (s *RouterTestHelper) SetupSwapManager(registry domain.CurrencyRegistry, chainPools ...domain.Pool) *routerusecase.SwapManager {
	snapshot := NewPoolsSnapshot(chainPools...)

	poolCurrencies, err := snapshot.GetPoolCurrencies(registry)
	s.Require().NoError(err)

	routablePools := make([]domain.RoutablePool, 0, len(chainPools))
	for _, pool := range chainPools {
		routablePools = append(routablePools, s.NewRoutablePool(pool, registry))
	}

	swapManager, err := routerusecase.NewSwapManager(poolCurrencies, routablePools)
	s.Require().NoError(err)
	return swapManager
}
