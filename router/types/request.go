package types

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/labstack/echo/v4"

	"github.com/osmosis-labs/poolrouter/domain"
)

// GetRouteRequest represents a swap exact amount in request for the /router/best-route
// and /router/split-route endpoints.
type GetRouteRequest struct {
	TokenIn       *sdk.Coin
	TokenOutDenom string
	// HumanDenoms is true if the denoms are symbols to be translated to chain denoms.
	HumanDenoms bool
}

// UnmarshalHTTPRequest implements the request unmarshaler.
func (r *GetRouteRequest) UnmarshalHTTPRequest(c echo.Context) error {
	var err error
	r.HumanDenoms, err = domain.ParseBooleanQueryParam(c, "humanDenoms")
	if err != nil {
		return err
	}

	if tokenIn := c.QueryParam("tokenIn"); tokenIn != "" {
		tokenInCoin, err := parseTokenIn(tokenIn, r.HumanDenoms)
		if err != nil {
			return ErrTokenInNotValid
		}
		r.TokenIn = &tokenInCoin
	}

	r.TokenOutDenom = c.QueryParam("tokenOutDenom")

	return nil
}

// Validate validates the GetRouteRequest
func (r *GetRouteRequest) Validate() error {
	if r.TokenIn == nil {
		return ErrTokenInNotSpecified
	}

	if r.TokenOutDenom == "" {
		return ErrTokenOutDenomNotSpecified
	}

	return domain.ValidateInputDenoms(r.TokenIn.Denom, r.TokenOutDenom)
}

// parseTokenIn parses an amountDenom string. Symbols are kept verbatim
// since denom unit normalization would rewrite registered symbols such as
// "osmo" into their base chain denom before symbol translation runs.
func parseTokenIn(tokenIn string, humanDenoms bool) (sdk.Coin, error) {
	if !humanDenoms {
		return sdk.ParseCoinNormalized(tokenIn)
	}

	decCoin, err := sdk.ParseDecCoin(tokenIn)
	if err != nil {
		return sdk.Coin{}, err
	}

	if !decCoin.Amount.IsInteger() {
		return sdk.Coin{}, ErrTokenInNotValid
	}

	return sdk.Coin{Denom: decCoin.Denom, Amount: decCoin.Amount.TruncateInt()}, nil
}
