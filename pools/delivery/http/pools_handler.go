package http

import (
	"net/http"
	"strconv"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/osmosis-labs/osmosis/osmomath"
	"github.com/osmosis-labs/osmosis/v25/x/gamm/pool-models/balancer"
	poolmanagertypes "github.com/osmosis-labs/osmosis/v25/x/poolmanager/types"

	"github.com/osmosis-labs/poolrouter/domain"
	"github.com/osmosis-labs/poolrouter/domain/mvc"
	"github.com/osmosis-labs/poolrouter/log"
)

// PoolsHandler  represent the httphandler for pools
type PoolsHandler struct {
	PUsecase    mvc.PoolsUsecase
	PriceOracle domain.PriceOracle
	logger      log.Logger
}

// PoolResponse is a structure for serializing pool result returned to clients.
type PoolResponse struct {
	ID         string                    `json:"id"`
	Type       poolmanagertypes.PoolType `json:"type"`
	PoolAssets []balancer.PoolAsset      `json:"pool_assets"`
	Balances   sdk.Coins                 `json:"balances"`
	SwapFee    osmomath.Dec              `json:"swap_fee"`
	ExitFee    osmomath.Dec              `json:"exit_fee"`
}

// ExistsResponse is the response of the pool existence query.
type ExistsResponse struct {
	Exists string `json:"exists"`
}

// TotalValueLockedResponse is the response of the total value locked query.
type TotalValueLockedResponse struct {
	TotalValueLocked osmomath.Dec `json:"total_value_locked"`
}

const resourcePrefix = "/pools"

func formatPoolsResource(resource string) string {
	return resourcePrefix + resource
}

// NewPoolsHandler will initialize the pools/ resources endpoint
func NewPoolsHandler(e *echo.Echo, us mvc.PoolsUsecase, priceOracle domain.PriceOracle, logger log.Logger) {
	handler := &PoolsHandler{
		PUsecase:    us,
		PriceOracle: priceOracle,
		logger:      logger,
	}

	e.GET(formatPoolsResource(""), handler.GetPools)
	e.GET(formatPoolsResource("/tvl"), handler.GetPoolsByLockedValue)
	e.GET(formatPoolsResource("/total-value-locked"), handler.GetTotalValueLocked)
	e.GET(formatPoolsResource("/currencies"), handler.GetPoolCurrencies)
	e.GET(formatPoolsResource("/:id/exists"), handler.GetPoolExists)
}

// @Summary Get pool(s) information
// @Description Returns the pools with the given IDs if the IDs parameter is given.
// @Description Otherwise, returns the requested page of pools or every pool if no page is requested.
// @ID get-pools
// @Produce  json
// @Param  IDs  query  string  false  "Comma-separated list of pool IDs to fetch, e.g., '1,2,3'"
// @Param  pageSize  query  int  false  "Number of pools per page"
// @Param  page  query  int  false  "1-indexed page number"
// @Success 200  {array}  PoolResponse  "List of pool(s) details"
// @Router /pools [get]
func (a *PoolsHandler) GetPools(c echo.Context) error {
	poolIDsStr := c.QueryParam("IDs")

	if len(poolIDsStr) > 0 {
		poolIDs, err := domain.ParseNumbers(poolIDsStr)
		if err != nil {
			return c.JSON(http.StatusBadRequest, domain.ResponseError{Message: err.Error()})
		}

		pools := make([]domain.Pool, 0, len(poolIDs))
		for _, id := range poolIDs {
			poolID := strconv.FormatUint(id, 10)

			switch a.PUsecase.HasLoadedAndExists(poolID) {
			case domain.ExistenceUnknown:
				return a.errorResponse(c, domain.NotLoadedError{})
			case domain.PoolDoesNotExist:
				return a.errorResponse(c, domain.PoolNotFoundError{PoolID: poolID})
			}

			pool, ok := a.PUsecase.GetPool(poolID)
			if !ok {
				return a.errorResponse(c, domain.PoolNotFoundError{PoolID: poolID})
			}
			pools = append(pools, pool)
		}

		return c.JSON(http.StatusOK, convertPoolsToResponse(pools))
	}

	if !hasPagination(c) {
		return c.JSON(http.StatusOK, convertPoolsToResponse(a.PUsecase.GetAllPools()))
	}

	pageSize, pageNumber, err := domain.ParsePaginationQueryParams(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, domain.ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, convertPoolsToResponse(a.PUsecase.GetPoolsPage(pageSize, pageNumber)))
}

// @Summary Get pools by descending locked value
// @Description Returns the requested page of pools ranked by total value locked in the pricing quote currency.
// @ID get-pools-tvl
// @Produce  json
// @Param  pageSize  query  int  true  "Number of pools per page"
// @Param  page  query  int  true  "1-indexed page number"
// @Success 200  {array}  PoolResponse  "Pools ranked by locked value"
// @Router /pools/tvl [get]
func (a *PoolsHandler) GetPoolsByLockedValue(c echo.Context) error {
	pageSize, pageNumber, err := domain.ParsePaginationQueryParams(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, domain.ResponseError{Message: err.Error()})
	}

	pools, err := a.PUsecase.GetPoolsByDescendingLockedValue(c.Request().Context(), a.PriceOracle, pageSize, pageNumber)
	if err != nil {
		return a.errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, convertPoolsToResponse(pools))
}

// @Summary Get total value locked
// @Description Returns the sum of the locked value of every pool.
// @ID get-total-value-locked
// @Produce  json
// @Success 200  {object}  TotalValueLockedResponse  "Total value locked"
// @Router /pools/total-value-locked [get]
func (a *PoolsHandler) GetTotalValueLocked(c echo.Context) error {
	tvl, err := a.PUsecase.ComputeTotalValueLocked(c.Request().Context(), a.PriceOracle)
	if err != nil {
		return a.errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, TotalValueLockedResponse{TotalValueLocked: tvl})
}

// @Summary Get pool currencies
// @Description Returns the currencies of every pool in pool order.
// @ID get-pool-currencies
// @Produce  json
// @Success 200  {array}  domain.PoolCurrencies  "Currencies grouped by pool"
// @Router /pools/currencies [get]
func (a *PoolsHandler) GetPoolCurrencies(c echo.Context) error {
	poolCurrencies, err := a.PUsecase.GetPoolCurrencies()
	if err != nil {
		return a.errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, poolCurrencies)
}

// @Summary Check pool existence
// @Description Returns "exists", "not_exists" or "unknown" if pools have not been loaded yet.
// @ID get-pool-exists
// @Produce  json
// @Param  id  path  string  true  "Pool ID"
// @Success 200  {object}  ExistsResponse  "Existence of the pool"
// @Router /pools/{id}/exists [get]
func (a *PoolsHandler) GetPoolExists(c echo.Context) error {
	poolID := c.Param("id")
	if _, err := strconv.ParseUint(poolID, 10, 64); err != nil {
		return c.JSON(http.StatusBadRequest, domain.ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, ExistsResponse{Exists: a.PUsecase.HasLoadedAndExists(poolID).String()})
}

func (a *PoolsHandler) errorResponse(c echo.Context, err error) error {
	statusCode := domain.GetStatusCode(err)
	if statusCode >= http.StatusInternalServerError {
		requestPath, _ := domain.GetURLPathFromContext(c.Request().Context())
		a.logger.Error("pools request failed", zap.String("path", requestPath), zap.Error(err))
	}
	return c.JSON(statusCode, domain.ResponseError{Message: err.Error()})
}

func hasPagination(c echo.Context) bool {
	return c.QueryParam("pageSize") != "" || c.QueryParam("page") != ""
}

// convertPoolToResponse convertes a given pool to the appropriate response type.
func convertPoolToResponse(pool domain.Pool) PoolResponse {
	return PoolResponse{
		ID:         pool.ID,
		Type:       pool.Type,
		PoolAssets: pool.PoolAssets,
		Balances:   pool.GetBalances(),
		SwapFee:    pool.SwapFee,
		ExitFee:    pool.ExitFee,
	}
}

// convertPoolsToResponse converts the given pools to the appropriate response type.
func convertPoolsToResponse(pools []domain.Pool) []PoolResponse {
	resultPools := make([]PoolResponse, 0, len(pools))
	for _, pool := range pools {
		resultPools = append(resultPools, convertPoolToResponse(pool))
	}
	return resultPools
}
