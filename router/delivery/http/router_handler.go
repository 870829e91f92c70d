package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	deliveryhttp "github.com/osmosis-labs/poolrouter/delivery/http"
	"github.com/osmosis-labs/poolrouter/domain"
	"github.com/osmosis-labs/poolrouter/domain/mvc"
	"github.com/osmosis-labs/poolrouter/log"
	"github.com/osmosis-labs/poolrouter/router/types"
)

// RouterHandler  represent the httphandler for the router
type RouterHandler struct {
	RUsecase mvc.RouterUsecase
	TUsecase mvc.TokensUsecase
	logger   log.Logger
}

const routerResource = "/router"

func formatRouterResource(resource string) string {
	return routerResource + resource
}

// NewRouterHandler will initialize the router/ resources endpoint
func NewRouterHandler(e *echo.Echo, us mvc.RouterUsecase, tu mvc.TokensUsecase, logger log.Logger) {
	handler := &RouterHandler{
		RUsecase: us,
		TUsecase: tu,
		logger:   logger,
	}
	e.GET(formatRouterResource("/best-route"), handler.GetBestRoute)
	e.GET(formatRouterResource("/split-route"), handler.GetSplitRoute)
	e.GET(formatRouterResource("/swappable-currencies"), handler.GetSwappableCurrencies)
	e.GET(formatRouterResource("/config"), handler.GetConfig)
}

// @Summary Best Route
// @Description returns the direct or one-hop route with the lowest price impact for the given tokenIn and tokenOutDenom.
// @Description Responds with 204 if no route exists.
// @ID get-best-route
// @Produce  json
// @Param  tokenIn  query  string  true  "String representation of the sdk.Coin for the token in."
// @Param  tokenOutDenom  query  string  true  "String representing the denom of the token out."
// @Param  humanDenoms  query  bool  false  "Boolean flag indicating whether the given denoms are symbols to be converted to chain denoms."
// @Success 200  {object}  domain.BestRoute  "The best route and its estimate"
// @Success 204  "No route exists"
// @Router /router/best-route [get]
func (a *RouterHandler) GetBestRoute(c echo.Context) error {
	ctx, span := deliveryhttp.Span(c)

	req, err := a.parseRouteRequest(c)
	if err != nil {
		deliveryhttp.RecordSpanError(ctx, span, err)
		return c.JSON(http.StatusBadRequest, domain.ResponseError{Message: err.Error()})
	}

	bestRoute, err := a.RUsecase.GetBestRoute(ctx, *req.TokenIn, req.TokenOutDenom)
	if err != nil {
		deliveryhttp.RecordSpanError(ctx, span, err)
		return a.errorResponse(c, err)
	}

	if bestRoute == nil {
		return c.NoContent(http.StatusNoContent)
	}

	return c.JSON(http.StatusOK, bestRoute)
}

// @Summary Split Route
// @Description splits tokenIn across direct pools in proportion to their depth.
// @Description Responds with 204 if no direct route exists or splitting does not beat the single best pool.
// @ID get-split-route
// @Produce  json
// @Param  tokenIn  query  string  true  "String representation of the sdk.Coin for the token in."
// @Param  tokenOutDenom  query  string  true  "String representing the denom of the token out."
// @Param  humanDenoms  query  bool  false  "Boolean flag indicating whether the given denoms are symbols to be converted to chain denoms."
// @Success 200  {object}  domain.SplitRoute  "The split route"
// @Success 204  "No split improves the output"
// @Router /router/split-route [get]
func (a *RouterHandler) GetSplitRoute(c echo.Context) error {
	ctx, span := deliveryhttp.Span(c)

	req, err := a.parseRouteRequest(c)
	if err != nil {
		deliveryhttp.RecordSpanError(ctx, span, err)
		return c.JSON(http.StatusBadRequest, domain.ResponseError{Message: err.Error()})
	}

	splitRoute, err := a.RUsecase.GetBestSplitRoute(ctx, *req.TokenIn, req.TokenOutDenom)
	if err != nil {
		deliveryhttp.RecordSpanError(ctx, span, err)
		return a.errorResponse(c, err)
	}

	if splitRoute == nil {
		return c.NoContent(http.StatusNoContent)
	}

	return c.JSON(http.StatusOK, splitRoute)
}

// @Summary Swappable Currencies
// @Description returns every currency that appears in at least one routable pool.
// @ID get-swappable-currencies
// @Produce  json
// @Success 200  {array}  domain.Currency  "Swappable currencies"
// @Router /router/swappable-currencies [get]
func (a *RouterHandler) GetSwappableCurrencies(c echo.Context) error {
	currencies, err := a.RUsecase.GetSwappableCurrencies(c.Request().Context())
	if err != nil {
		return a.errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, currencies)
}

// @Summary Router Config
// @Description returns the router configuration.
// @ID get-router-config
// @Produce  json
// @Success 200  {object}  domain.RouterConfig  "Router config"
// @Router /router/config [get]
func (a *RouterHandler) GetConfig(c echo.Context) error {
	return c.JSON(http.StatusOK, a.RUsecase.GetConfig())
}

// parseRouteRequest parses and validates the route request, translating symbols to chain denoms if requested.
func (a *RouterHandler) parseRouteRequest(c echo.Context) (*types.GetRouteRequest, error) {
	var req types.GetRouteRequest
	if err := deliveryhttp.UnmarshalRequest(c, &req); err != nil {
		return nil, err
	}

	if req.HumanDenoms && req.TokenIn != nil && req.TokenOutDenom != "" {
		tokenInDenom, err := a.TUsecase.GetChainDenom(req.TokenIn.Denom)
		if err != nil {
			return nil, domain.UnknownCurrencyError{Denom: req.TokenIn.Denom}
		}

		tokenOutDenom, err := a.TUsecase.GetChainDenom(req.TokenOutDenom)
		if err != nil {
			return nil, domain.UnknownCurrencyError{Denom: req.TokenOutDenom}
		}

		req.TokenIn.Denom = tokenInDenom
		req.TokenOutDenom = tokenOutDenom
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	return &req, nil
}

func (a *RouterHandler) errorResponse(c echo.Context, err error) error {
	statusCode := domain.GetStatusCode(err)
	if statusCode >= http.StatusInternalServerError {
		requestPath, _ := domain.GetURLPathFromContext(c.Request().Context())
		a.logger.Error("router request failed", zap.String("path", requestPath), zap.Error(err))
	}
	return c.JSON(statusCode, domain.ResponseError{Message: err.Error()})
}
