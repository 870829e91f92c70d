package usecase

import "fmt"

// ChainDenomForSymbolNotFoundError represents error type for when a chain denom
// for a symbol is not found.
type ChainDenomForSymbolNotFoundError struct {
	Symbol string
}

// Error implements the error interface.
func (e ChainDenomForSymbolNotFoundError) Error() string {
	return fmt.Sprintf("chain denom for symbol (%s) is not found", e.Symbol)
}

// ScalingFactorForPrecisionNotFoundError represents error type for when a scaling factor
// for a precision is not found.
type ScalingFactorForPrecisionNotFoundError struct {
	Precision int
	Denom     string
}

// Error implements the error interface.
func (e ScalingFactorForPrecisionNotFoundError) Error() string {
	return fmt.Sprintf("scaling factor for precision (%d) and denom (%s) not found", e.Precision, e.Denom)
}

// EmptyAssetListError represents error type for when the chain registry returns no assets.
type EmptyAssetListError struct {
	URL string
}

// Error implements the error interface.
func (e EmptyAssetListError) Error() string {
	return fmt.Sprintf("asset list at (%s) contains no assets", e.URL)
}
