package route

import (
	"fmt"
	"strings"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/osmosis-labs/osmosis/osmomath"

	"github.com/osmosis-labs/poolrouter/domain"
)

// Hop is a single pool step of a route.
type Hop struct {
	Pool     domain.RoutablePool
	OutDenom string
}

// RouteImpl is an ordered sequence of hops where each hop's out denom
// is the next hop's in denom.
type RouteImpl struct {
	Hops []Hop "json:\"hops\""
}

var (
	spotPriceErrorResultCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poolrouter_routes_result_spot_price_error_total",
			Help: "Spot price error when composing multihop estimates",
		},
		[]string{"token_in", "cur_token_out_denom", "route_token_out_denom"},
	)
)

func init() {
	prometheus.MustRegister(spotPriceErrorResultCounter)
}

// EstimateMultihopSwapExactIn chains single pool estimates over hops,
// feeding each hop's output amount as the next hop's input amount.
func EstimateMultihopSwapExactIn(tokenIn sdk.Coin, hops []Hop) (domain.SwapEstimate, error) {
	return RouteImpl{Hops: hops}.EstimateSwapExactIn(tokenIn)
}

// EstimateSwapExactIn estimates swapping tokenIn over every hop of the route.
// Spot prices and effective prices multiply across hops. Slippage is the
// aggregate effective price over the aggregate spot price before, minus one.
// Swap fees are reported per hop.
func (r RouteImpl) EstimateSwapExactIn(tokenIn sdk.Coin) (estimate domain.SwapEstimate, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			estimate = domain.SwapEstimate{}
			err = fmt.Errorf("error when estimating swap over route (%s): %v", r.String(), rec)
		}
	}()

	if len(r.Hops) == 0 {
		return domain.SwapEstimate{}, domain.InvalidRouteError{Reason: "route has no hops"}
	}

	var (
		spotPriceBefore         = osmomath.OneDec()
		spotPriceAfter          = osmomath.OneDec()
		effectivePrice          = osmomath.OneDec()
		spotPriceWithoutSwapFee = osmomath.OneDec()
		swapFees                = make([]osmomath.Dec, 0, len(r.Hops))
	)

	for _, hop := range r.Hops {
		hopEstimate, err := hop.Pool.EstimateSwapExactIn(tokenIn, hop.OutDenom)
		if err != nil {
			return domain.SwapEstimate{}, err
		}

		hopSpotPrice, err := hop.Pool.CalcSpotPrice(tokenIn.Denom, hop.OutDenom)
		if err != nil {
			spotPriceErrorResultCounter.WithLabelValues(tokenIn.Denom, hop.OutDenom, r.GetTokenOutDenom()).Inc()
			return domain.SwapEstimate{}, err
		}

		spotPriceBefore.MulMut(hopEstimate.SpotPriceBefore)
		spotPriceAfter.MulMut(hopEstimate.SpotPriceAfter)
		effectivePrice.MulMut(hopEstimate.EffectivePrice)
		spotPriceWithoutSwapFee.MulMut(hopSpotPrice)
		swapFees = append(swapFees, hopEstimate.SwapFees...)

		tokenIn = hopEstimate.TokenOut
	}

	slippage := osmomath.ZeroDec()
	if spotPriceBefore.IsPositive() {
		slippage = effectivePrice.Quo(spotPriceBefore).Sub(osmomath.OneDec())
	}

	return domain.SwapEstimate{
		TokenOut:                tokenIn,
		SpotPriceBefore:         spotPriceBefore,
		SpotPriceAfter:          spotPriceAfter,
		EffectivePrice:          effectivePrice,
		Slippage:                slippage,
		SpotPriceWithoutSwapFee: spotPriceWithoutSwapFee,
		SwapFees:                swapFees,
	}, nil
}

// GetPoolIDs returns the pool ids of the route in order.
func (r RouteImpl) GetPoolIDs() []string {
	ids := make([]string, len(r.Hops))
	for i, hop := range r.Hops {
		ids[i] = hop.Pool.GetId()
	}
	return ids
}

// GetTokenOutDenom returns token out denom of the last hop in the route.
// If route is empty, returns empty string.
func (r RouteImpl) GetTokenOutDenom() string {
	if len(r.Hops) == 0 {
		return ""
	}

	return r.Hops[len(r.Hops)-1].OutDenom
}

// String implements fmt.Stringer.
func (r RouteImpl) String() string {
	var strBuilder strings.Builder
	for _, hop := range r.Hops {
		_, err := strBuilder.WriteString(fmt.Sprintf("{{%s %s}}", hop.Pool.String(), hop.OutDenom))
		if err != nil {
			panic(err)
		}
	}

	return strBuilder.String()
}
