package types

import "errors"

// Handler Errors
var (
	ErrTokenInNotValid           = errors.New("tokenIn is invalid - must be in the format amountDenom")
	ErrTokenInNotSpecified       = errors.New("tokenIn is required")
	ErrTokenOutDenomNotSpecified = errors.New("tokenOutDenom is required")
)
