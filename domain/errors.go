package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInternalServerError will throw if any the Internal Server Error happen
	ErrInternalServerError = errors.New("internal Server Error")
	// ErrNotFound will throw if the requested item is not exists
	ErrNotFound = errors.New("your requested Item is not found")
	// ErrBadParamInput will throw if the given request-body or params is not valid
	ErrBadParamInput = errors.New("given Param is not valid")
)

// GetStatusCode returns status code given error
func GetStatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var (
		notLoadedErr       NotLoadedError
		poolNotFoundErr    PoolNotFoundError
		sameDenomErr       SameDenomError
		invalidAmountErr   InvalidAmountError
		unknownCurrencyErr UnknownCurrencyError
	)

	switch {
	case errors.Is(err, ErrNotFound), errors.As(err, &poolNotFoundErr):
		return http.StatusNotFound
	case errors.Is(err, ErrBadParamInput), errors.As(err, &sameDenomErr), errors.As(err, &invalidAmountErr), errors.As(err, &unknownCurrencyErr):
		return http.StatusBadRequest
	case errors.As(err, &notLoadedErr):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ResponseError represent the response error struct
type ResponseError struct {
	Message string `json:"message"`
}

// NotLoadedError is returned by queries that require a pools snapshot
// before the first successful fetch.
type NotLoadedError struct{}

func (e NotLoadedError) Error() string {
	return "pools have not been loaded yet"
}

type PoolNotFoundError struct {
	PoolID string
}

func (e PoolNotFoundError) Error() string {
	return fmt.Sprintf("pool with ID (%s) is not found", e.PoolID)
}

type UnknownCurrencyError struct {
	Denom string
}

func (e UnknownCurrencyError) Error() string {
	return fmt.Sprintf("currency for denom (%s) is not registered", e.Denom)
}

type DenomNotInPoolError struct {
	PoolID string
	Denom  string
}

func (e DenomNotInPoolError) Error() string {
	return fmt.Sprintf("denom (%s) is not in pool (%s)", e.Denom, e.PoolID)
}

type InvalidPoolTypeError struct {
	PoolID   string
	PoolType string
}

func (e InvalidPoolTypeError) Error() string {
	return fmt.Sprintf("pool (%s) has unsupported type (%s)", e.PoolID, e.PoolType)
}

type ZeroPoolBalanceError struct {
	PoolID string
	Denom  string
}

func (e ZeroPoolBalanceError) Error() string {
	return fmt.Sprintf("pool (%s) has zero balance or weight for denom (%s)", e.PoolID, e.Denom)
}

type ZeroAmountOutError struct {
	PoolID   string
	AmountIn string
}

func (e ZeroAmountOutError) Error() string {
	return fmt.Sprintf("token amount calculated is zero in pool (%s) for amount in (%s)", e.PoolID, e.AmountIn)
}

type InsufficientLiquidityError struct {
	PoolID    string
	AmountOut string
	Balance   string
}

func (e InsufficientLiquidityError) Error() string {
	return fmt.Sprintf("not enough liquidity in pool (%s): amount out (%s), balance (%s)", e.PoolID, e.AmountOut, e.Balance)
}

type SpotPriceDecreasedError struct {
	PoolID          string
	SpotPriceBefore string
	SpotPriceAfter  string
}

func (e SpotPriceDecreasedError) Error() string {
	return fmt.Sprintf("spot price decreased after swap in pool (%s): before (%s), after (%s)", e.PoolID, e.SpotPriceBefore, e.SpotPriceAfter)
}

type InvalidAmountError struct {
	Amount string
}

func (e InvalidAmountError) Error() string {
	return fmt.Sprintf("amount (%s) must be positive", e.Amount)
}

type InvalidRouteError struct {
	Reason string
}

func (e InvalidRouteError) Error() string {
	return fmt.Sprintf("invalid route: %s", e.Reason)
}

type SameDenomError struct {
	DenomA string
	DenomB string
}

func (e SameDenomError) Error() string {
	return fmt.Sprintf("two input denoms are equal (%s), must not be the same", e.DenomA)
}

type StaleSnapshotError struct {
	Sequence        uint64
	AppliedSequence uint64
}

func (e StaleSnapshotError) Error() string {
	return fmt.Sprintf("pools response with sequence (%d) is older than applied sequence (%d)", e.Sequence, e.AppliedSequence)
}
