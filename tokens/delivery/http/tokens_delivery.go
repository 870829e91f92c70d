package http

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/osmosis-labs/osmosis/osmomath"

	"github.com/osmosis-labs/poolrouter/domain"
	"github.com/osmosis-labs/poolrouter/domain/mvc"
	"github.com/osmosis-labs/poolrouter/log"
)

// TokensHandler  represent the httphandler for tokens
type TokensHandler struct {
	TUsecase      mvc.TokensUsecase
	PriceOracle   domain.PriceOracle
	QuoteCurrency string
	logger        log.Logger
}

const tokensResource = "/tokens"

func formatTokensResource(resource string) string {
	return tokensResource + resource
}

// NewTokensHandler will initialize the tokens/ resources endpoint
func NewTokensHandler(e *echo.Echo, ts mvc.TokensUsecase, priceOracle domain.PriceOracle, quoteCurrency string, logger log.Logger) {
	handler := &TokensHandler{
		TUsecase:      ts,
		PriceOracle:   priceOracle,
		QuoteCurrency: quoteCurrency,
		logger:        logger,
	}
	e.GET(formatTokensResource("/metadata"), handler.GetMetadata)
	e.GET(formatTokensResource("/prices"), handler.GetPrices)
}

// @Summary Token Metadata
// @Description returns currency metadata keyed by chain denom.
// @Description Every registered currency is returned if denoms is not given.
// @ID get-token-metadata
// @Produce  json
// @Param  denoms  query  string  false  "Comma-separated list of denoms where each can either be a symbol or a chain denom"
// @Success 200 {object} map[string]domain.Currency "Success"
// @Router /tokens/metadata [get]
func (a *TokensHandler) GetMetadata(c echo.Context) error {
	denomsStr := c.QueryParam("denoms")
	if len(denomsStr) == 0 {
		currencies := a.TUsecase.GetAllCurrencies()
		result := make(map[string]domain.Currency, len(currencies))
		for _, currency := range currencies {
			result[currency.Denom] = currency
		}
		return c.JSON(http.StatusOK, result)
	}

	denoms, err := validateDenomsParam(denomsStr)
	if err != nil {
		return c.JSON(http.StatusBadRequest, domain.ResponseError{Message: err.Error()})
	}

	result := make(map[string]domain.Currency, len(denoms))
	for _, denom := range denoms {
		currency, err := a.findCurrency(denom)
		if err != nil {
			return c.JSON(domain.GetStatusCode(err), domain.ResponseError{Message: err.Error()})
		}
		result[currency.Denom] = currency
	}

	return c.JSON(http.StatusOK, result)
}

// @Summary Token Prices
// @Description returns the fiat price of one unit of each base denom in the configured quote currency.
// @Description Denoms without an available price are omitted.
// @ID get-token-prices
// @Produce  json
// @Param  base  query  string  true  "Comma-separated list of base denoms, either symbols or chain denoms"
// @Success 200 {object} map[string]map[string]string "Success"
// @Router /tokens/prices [get]
func (a *TokensHandler) GetPrices(c echo.Context) error {
	ctx := c.Request().Context()

	baseDenoms, err := validateDenomsParam(c.QueryParam("base"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, domain.ResponseError{Message: err.Error()})
	}

	prices := make(map[string]map[string]osmomath.Dec, len(baseDenoms))
	for _, denom := range baseDenoms {
		currency, err := a.findCurrency(denom)
		if err != nil {
			return c.JSON(domain.GetStatusCode(err), domain.ResponseError{Message: err.Error()})
		}

		price, ok := a.PriceOracle.GetPrice(ctx, currency)
		if !ok {
			continue
		}

		prices[currency.Denom] = map[string]osmomath.Dec{a.QuoteCurrency: price}
	}

	return c.JSON(http.StatusOK, prices)
}

// findCurrency resolves denom as a chain denom first and as a symbol second.
func (a *TokensHandler) findCurrency(denom string) (domain.Currency, error) {
	if currency, ok := a.TUsecase.GetCurrency(denom); ok {
		return currency, nil
	}

	chainDenom, err := a.TUsecase.GetChainDenom(denom)
	if err != nil {
		return domain.Currency{}, domain.UnknownCurrencyError{Denom: denom}
	}

	return a.TUsecase.ForceFindCurrency(chainDenom)
}

// validateDenomsParam validates the denoms param string
// returns a denom slice if validation passes. Error otherwise
func validateDenomsParam(denomsStr string) ([]string, error) {
	if len(denomsStr) == 0 {
		return nil, errors.New("denoms input must be non-empty")
	}

	denoms := strings.Split(denomsStr, ",")

	for i, denom := range denoms {
		denom, err := url.PathUnescape(strings.TrimSpace(denom))
		if err != nil {
			return nil, err
		}

		if err := sdk.ValidateDenom(denom); err != nil {
			return nil, err
		}

		denoms[i] = denom
	}

	return denoms, nil
}
