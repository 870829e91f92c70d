package pools

import (
	"errors"
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/osmosis-labs/osmosis/osmomath"
	"github.com/osmosis-labs/osmosis/v25/x/gamm/pool-models/balancer"
	gammtypes "github.com/osmosis-labs/osmosis/v25/x/gamm/types"

	"github.com/osmosis-labs/poolrouter/domain"
)

var _ domain.RoutablePool = &routableWeightedPoolImpl{}

// routableWeightedPoolImpl prices swaps over a weighted (balancer) pool.
// Amounts are in chain (min) denom units; prices are normalized by currency decimals
// so that they are quoted in symbol units of the in currency per symbol unit of the out currency.
type routableWeightedPoolImpl struct {
	Pool      domain.Pool    "json:\"pool\""
	ChainPool *balancer.Pool "json:\"-\""
	// scalingFactors holds 10^decimals per pool denom.
	scalingFactors map[string]osmomath.Dec
}

var (
	oneDec    = osmomath.OneDec()
	twoBigDec = osmomath.NewBigDec(2)
)

// GetId implements domain.RoutablePool.
func (r *routableWeightedPoolImpl) GetId() string {
	return r.Pool.ID
}

// GetPoolDenoms implements domain.RoutablePool.
func (r *routableWeightedPoolImpl) GetPoolDenoms() []string {
	return r.Pool.GetPoolDenoms()
}

// GetSpreadFactor implements domain.RoutablePool.
func (r *routableWeightedPoolImpl) GetSpreadFactor() osmomath.Dec {
	return r.Pool.SwapFee
}

// CalcSpotPrice implements domain.RoutablePool.
// (Bin / Win) / (Bout / Wout), excluding the swap fee.
func (r *routableWeightedPoolImpl) CalcSpotPrice(inDenom, outDenom string) (osmomath.Dec, error) {
	if _, _, err := r.getAssets(inDenom, outDenom); err != nil {
		return osmomath.Dec{}, err
	}

	return r.spotPrice(r.ChainPool, inDenom, outDenom)
}

// CalcSpotPriceWithFee implements domain.RoutablePool.
func (r *routableWeightedPoolImpl) CalcSpotPriceWithFee(inDenom, outDenom string) (osmomath.Dec, error) {
	spotPrice, err := r.CalcSpotPrice(inDenom, outDenom)
	if err != nil {
		return osmomath.Dec{}, err
	}

	return spotPrice.Quo(oneDec.Sub(r.Pool.SwapFee)), nil
}

// CalcSlippageSlope implements domain.RoutablePool.
// (1 - fee) * (Win + Wout) / (2 * Bin * Wout)
func (r *routableWeightedPoolImpl) CalcSlippageSlope(inDenom, outDenom string) (osmomath.BigDec, error) {
	inAsset, outAsset, err := r.getAssets(inDenom, outDenom)
	if err != nil {
		return osmomath.BigDec{}, err
	}

	numerator := osmomath.BigDecFromDec(oneDec.Sub(r.Pool.SwapFee)).MulMut(osmomath.BigDecFromSDKInt(inAsset.Weight.Add(outAsset.Weight)))
	denominator := twoBigDec.Mul(osmomath.BigDecFromSDKInt(inAsset.Token.Amount)).MulMut(osmomath.BigDecFromSDKInt(outAsset.Weight))

	return numerator.QuoMut(denominator), nil
}

// EstimateSwapExactIn implements domain.RoutablePool.
// The out amount comes from the chain balancer model and is truncated.
func (r *routableWeightedPoolImpl) EstimateSwapExactIn(tokenIn sdk.Coin, outDenom string) (estimate domain.SwapEstimate, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			estimate = domain.SwapEstimate{}
			err = fmt.Errorf("error when estimating swap in pool (%s): %v", r.Pool.ID, rec)
		}
	}()

	if tokenIn.Amount.IsNil() || !tokenIn.Amount.IsPositive() {
		return domain.SwapEstimate{}, domain.InvalidAmountError{Amount: tokenIn.String()}
	}

	inAsset, outAsset, err := r.getAssets(tokenIn.Denom, outDenom)
	if err != nil {
		return domain.SwapEstimate{}, err
	}

	oneMinusFee := oneDec.Sub(r.Pool.SwapFee)

	spotPriceWithoutSwapFee, err := r.spotPrice(r.ChainPool, tokenIn.Denom, outDenom)
	if err != nil {
		return domain.SwapEstimate{}, err
	}
	spotPriceBefore := spotPriceWithoutSwapFee.Quo(oneMinusFee)

	balanceOut := outAsset.Token.Amount

	// The chain power function panics on a zero balance ratio.
	balanceIn := inAsset.Token.Amount.ToLegacyDec()
	if !balanceIn.Quo(balanceIn.Add(tokenIn.Amount.ToLegacyDec().Mul(oneMinusFee))).IsPositive() {
		return domain.SwapEstimate{}, domain.InsufficientLiquidityError{
			PoolID:    r.Pool.ID,
			AmountOut: balanceOut.String(),
			Balance:   balanceOut.String(),
		}
	}

	tokenOut, err := r.ChainPool.CalcOutAmtGivenIn(sdk.Context{}, sdk.NewCoins(tokenIn), outDenom, r.Pool.SwapFee)
	if err != nil {
		if errors.Is(err, gammtypes.ErrInvalidMathApprox) {
			return domain.SwapEstimate{}, domain.ZeroAmountOutError{
				PoolID:   r.Pool.ID,
				AmountIn: tokenIn.String(),
			}
		}
		return domain.SwapEstimate{}, err
	}
	amountOut := tokenOut.Amount

	if amountOut.GTE(balanceOut) {
		return domain.SwapEstimate{}, domain.InsufficientLiquidityError{
			PoolID:    r.Pool.ID,
			AmountOut: amountOut.String(),
			Balance:   balanceOut.String(),
		}
	}

	poolAfter := r.chainPoolWithBalances(
		sdk.NewCoin(tokenIn.Denom, inAsset.Token.Amount.Add(tokenIn.Amount)),
		sdk.NewCoin(outDenom, balanceOut.Sub(amountOut)),
	)
	spotPriceAfterWithoutFee, err := r.spotPrice(poolAfter, tokenIn.Denom, outDenom)
	if err != nil {
		return domain.SwapEstimate{}, err
	}
	spotPriceAfter := spotPriceAfterWithoutFee.Quo(oneMinusFee)

	if spotPriceAfter.LT(spotPriceBefore) {
		return domain.SwapEstimate{}, domain.SpotPriceDecreasedError{
			PoolID:          r.Pool.ID,
			SpotPriceBefore: spotPriceBefore.String(),
			SpotPriceAfter:  spotPriceAfter.String(),
		}
	}

	effectivePrice := tokenIn.Amount.ToLegacyDec().Quo(amountOut.ToLegacyDec()).Mul(r.normalizationFactor(tokenIn.Denom, outDenom))

	slippage := osmomath.ZeroDec()
	if spotPriceBefore.IsPositive() {
		slippage = effectivePrice.Quo(spotPriceBefore).Sub(oneDec)
	}

	return domain.SwapEstimate{
		TokenOut:                tokenOut,
		SpotPriceBefore:         spotPriceBefore,
		SpotPriceAfter:          spotPriceAfter,
		EffectivePrice:          effectivePrice,
		Slippage:                slippage,
		SpotPriceWithoutSwapFee: spotPriceWithoutSwapFee,
		SwapFees:                []osmomath.Dec{r.Pool.SwapFee},
	}, nil
}

// String implements domain.RoutablePool.
func (r *routableWeightedPoolImpl) String() string {
	return fmt.Sprintf("pool (%s), pool type (%d), pool denoms (%v), swap fee (%s)", r.Pool.ID, r.Pool.Type, r.Pool.GetPoolDenoms(), r.Pool.SwapFee)
}

func (r *routableWeightedPoolImpl) getAssets(inDenom, outDenom string) (balancer.PoolAsset, balancer.PoolAsset, error) {
	if inDenom == outDenom {
		return balancer.PoolAsset{}, balancer.PoolAsset{}, domain.SameDenomError{DenomA: inDenom, DenomB: outDenom}
	}

	inAsset, ok := r.Pool.GetPoolAsset(inDenom)
	if !ok {
		return balancer.PoolAsset{}, balancer.PoolAsset{}, domain.DenomNotInPoolError{PoolID: r.Pool.ID, Denom: inDenom}
	}

	outAsset, ok := r.Pool.GetPoolAsset(outDenom)
	if !ok {
		return balancer.PoolAsset{}, balancer.PoolAsset{}, domain.DenomNotInPoolError{PoolID: r.Pool.ID, Denom: outDenom}
	}

	return inAsset, outAsset, nil
}

// spotPrice returns the fee-excluded chain spot price of outDenom quoted in inDenom,
// normalized by currency decimals.
func (r *routableWeightedPoolImpl) spotPrice(chainPool *balancer.Pool, inDenom, outDenom string) (osmomath.Dec, error) {
	spotPrice, err := chainPool.SpotPrice(sdk.Context{}, inDenom, outDenom)
	if err != nil {
		return osmomath.Dec{}, err
	}

	return spotPrice.MulMut(osmomath.BigDecFromDec(r.normalizationFactor(inDenom, outDenom))).Dec(), nil
}

// chainPoolWithBalances returns a copy of the chain pool with the given balances.
// The receiver's chain pool is not mutated.
func (r *routableWeightedPoolImpl) chainPoolWithBalances(balances ...sdk.Coin) *balancer.Pool {
	poolCopy := *r.ChainPool
	poolCopy.PoolAssets = make([]balancer.PoolAsset, len(r.ChainPool.PoolAssets))
	copy(poolCopy.PoolAssets, r.ChainPool.PoolAssets)

	for _, balance := range balances {
		if err := poolCopy.UpdatePoolAssetBalance(balance); err != nil {
			panic(err)
		}
	}

	return &poolCopy
}

// normalizationFactor converts a min denom price to a symbol unit price:
// 10^outDecimals / 10^inDecimals.
func (r *routableWeightedPoolImpl) normalizationFactor(inDenom, outDenom string) osmomath.Dec {
	return r.scalingFactors[outDenom].Quo(r.scalingFactors[inDenom])
}
