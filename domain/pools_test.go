package domain_test

import (
	"testing"
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/osmosis-labs/osmosis/osmomath"
	"github.com/osmosis-labs/osmosis/v25/x/gamm/pool-models/balancer"

	"github.com/osmosis-labs/poolrouter/domain"
)

func weightedPool(id string, denoms ...string) domain.Pool {
	assets := make([]balancer.PoolAsset, len(denoms))
	for i, denom := range denoms {
		assets[i] = balancer.PoolAsset{Token: sdk.NewInt64Coin(denom, 1_000), Weight: osmomath.NewInt(1)}
	}
	return domain.Pool{ID: id, PoolAssets: assets, SwapFee: osmomath.ZeroDec(), ExitFee: osmomath.ZeroDec()}
}

type stubRegistry map[string]domain.Currency

var _ domain.CurrencyRegistry = stubRegistry{}

func (r stubRegistry) AddUnknownCurrencies(denoms ...string) {}

func (r stubRegistry) GetCurrency(denom string) (domain.Currency, bool) {
	currency, ok := r[denom]
	return currency, ok
}

func (r stubRegistry) GetAllCurrencies() []domain.Currency {
	return nil
}

func (r stubRegistry) GetChainScalingFactorByDenomMut(denom string) (osmomath.Dec, error) {
	currency, err := r.ForceFindCurrency(denom)
	if err != nil {
		return osmomath.Dec{}, err
	}
	return osmomath.NewDec(10).Power(uint64(currency.Decimals)), nil
}

func (r stubRegistry) ForceFindCurrency(denom string) (domain.Currency, error) {
	currency, ok := r[denom]
	if !ok {
		return domain.Currency{}, domain.UnknownCurrencyError{Denom: denom}
	}
	return currency, nil
}

func TestPoolsSnapshot_GetPool(t *testing.T) {
	first := weightedPool("1", "uosmo", "uatom")
	duplicate := weightedPool("1", "uion", "uatom")
	snapshot := domain.NewPoolsSnapshot([]domain.Pool{first, weightedPool("2", "uosmo"), duplicate}, 1, 10, time.Unix(0, 0))

	pool, ok := snapshot.GetPool("1")
	require.True(t, ok)
	require.Equal(t, []string{"uosmo", "uatom"}, pool.GetPoolDenoms())

	_, ok = snapshot.GetPool("3")
	require.False(t, ok)

	require.Equal(t, 3, snapshot.Len())
	require.Equal(t, []string{"uosmo", "uatom", "uion"}, snapshot.GetDenoms())
}

func TestPool_Assets(t *testing.T) {
	pool := weightedPool("1", "uosmo", "uatom")

	require.True(t, pool.ContainsDenom("uatom"))
	require.False(t, pool.ContainsDenom("uion"))

	asset, ok := pool.GetPoolAsset("uosmo")
	require.True(t, ok)
	require.Equal(t, osmomath.NewInt(1_000), asset.Token.Amount)

	require.Equal(t, "1000uosmo,1000uatom", pool.GetBalances().String())
}

func TestPoolsSnapshot_GetPoolCurrencies(t *testing.T) {
	registry := stubRegistry{
		"uosmo": {Denom: "uosmo", Symbol: "OSMO", Decimals: 6},
		"uatom": {Denom: "uatom", Symbol: "ATOM", Decimals: 6},
	}

	snapshot := domain.NewPoolsSnapshot([]domain.Pool{weightedPool("7", "uosmo", "uatom")}, 1, 10, time.Unix(0, 0))
	currencies, err := snapshot.GetPoolCurrencies(registry)
	require.NoError(t, err)
	require.Equal(t, []domain.PoolCurrencies{{PoolID: "7", Currencies: []domain.Currency{registry["uosmo"], registry["uatom"]}}}, currencies)

	snapshot = domain.NewPoolsSnapshot([]domain.Pool{weightedPool("8", "uosmo", "uion")}, 2, 10, time.Unix(0, 0))
	_, err = snapshot.GetPoolCurrencies(registry)
	require.ErrorIs(t, err, domain.UnknownCurrencyError{Denom: "uion"})
}

func TestExistence_String(t *testing.T) {
	require.Equal(t, "unknown", domain.ExistenceUnknown.String())
	require.Equal(t, "exists", domain.PoolExists.String())
	require.Equal(t, "not_exists", domain.PoolDoesNotExist.String())
}
