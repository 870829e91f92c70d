package usecase

import (
	"context"
	"strings"

	"github.com/cespare/xxhash/v2"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/osmosis-labs/osmosis/osmomath"

	"github.com/osmosis-labs/poolrouter/domain"
)

// denomPriceInfo is the fiat price of one symbol unit of a denom and the denom's scaling factor.
type denomPriceInfo struct {
	Price         osmomath.Dec
	ScalingFactor osmomath.Dec
}

// priceTable holds the oracle prices of every denom of a snapshot.
// Denoms without a price are absent.
type priceTable struct {
	prices      map[string]denomPriceInfo
	fingerprint uint64
}

// getPriceTable queries the oracle for every denom of the snapshot and fingerprints the result.
// Returns domain.UnknownCurrencyError if a snapshot denom is not registered.
func (p *poolsUseCase) getPriceTable(ctx context.Context, snapshot *domain.PoolsSnapshot, oracle domain.PriceOracle) (priceTable, error) {
	denoms := snapshot.GetDenoms()

	digest := xxhash.New()
	prices := make(map[string]denomPriceInfo, len(denoms))
	for _, denom := range denoms {
		currency, err := p.currencyRegistry.ForceFindCurrency(denom)
		if err != nil {
			return priceTable{}, err
		}

		// Skip gamm shares
		if strings.HasPrefix(denom, domain.GAMMSharePrefix) {
			continue
		}

		// Decimals outside the supported range leave the denom unpriced.
		scalingFactor, err := p.currencyRegistry.GetChainScalingFactorByDenomMut(denom)
		if err != nil {
			continue
		}

		price, ok := oracle.GetPrice(ctx, currency)
		if !ok || price.IsNil() || !price.IsPositive() {
			continue
		}

		prices[denom] = denomPriceInfo{
			Price:         price,
			ScalingFactor: scalingFactor,
		}

		_, _ = digest.WriteString(denom)
		_, _ = digest.WriteString("=")
		_, _ = digest.WriteString(price.String())
		_, _ = digest.WriteString(";")
	}

	return priceTable{
		prices:      prices,
		fingerprint: digest.Sum64(),
	}, nil
}

// computePoolTVL sums the fiat value of every pool balance.
// Balances without a price contribute zero.
func computePoolTVL(pool domain.Pool, prices map[string]denomPriceInfo) osmomath.Dec {
	tvl := osmomath.ZeroDec()
	for _, asset := range pool.PoolAssets {
		priceInfo, ok := prices[asset.Token.Denom]
		if !ok {
			continue
		}

		tvl.AddMut(computeCoinTVL(asset.Token, priceInfo))
	}
	return tvl
}

// computeCoinTVL converts the coin amount to symbol units and multiplies it by the price.
func computeCoinTVL(coin sdk.Coin, priceInfo denomPriceInfo) osmomath.Dec {
	if coin.Amount.IsNil() || coin.Amount.IsZero() || priceInfo.ScalingFactor.IsZero() {
		return osmomath.ZeroDec()
	}

	coinTVL := osmomath.BigDecFromSDKInt(coin.Amount).MulMut(osmomath.BigDecFromDec(priceInfo.Price))
	coinTVL = coinTVL.QuoMut(osmomath.BigDecFromDec(priceInfo.ScalingFactor))

	return coinTVL.Dec()
}
