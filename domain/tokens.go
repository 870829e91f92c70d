package domain

import (
	"github.com/osmosis-labs/osmosis/osmomath"
)

// Currency represents the currency's domain model
type Currency struct {
	// Denom is the chain (min) denom.
	Denom string `json:"denom"`
	// Symbol is the human readable denom.
	Symbol string `json:"symbol"`
	// Decimals is the number of decimal places between the min denom and the symbol unit.
	Decimals int `json:"decimals"`
	// CoingeckoID is the id used to query the fiat price.
	CoingeckoID string `json:"coingeckoId"`
	// IsUnlisted is true if the currency is not present in the asset list.
	IsUnlisted bool `json:"preview"`
}

// PoolCurrencies groups the currencies of a single pool.
type PoolCurrencies struct {
	PoolID     string     `json:"pool_id"`
	Currencies []Currency `json:"currencies"`
}

// GAMMSharePrefix is the prefix for the GAMM share
const GAMMSharePrefix = "gamm/pool"

// CurrencyRegistry is the single source of truth for currency metadata.
type CurrencyRegistry interface {
	// AddUnknownCurrencies registers a raw currency for every denom not yet known.
	// Idempotent.
	AddUnknownCurrencies(denoms ...string)
	// GetCurrency returns the currency for the denom, if registered.
	GetCurrency(denom string) (Currency, bool)
	// ForceFindCurrency returns the currency or UnknownCurrencyError.
	ForceFindCurrency(denom string) (Currency, error)
	// GetAllCurrencies returns every registered currency sorted by denom.
	GetAllCurrencies() []Currency
	// GetChainScalingFactorByDenomMut returns 10^decimals for the denom's currency.
	// Note that the returned decimal is a shared resource and must not be mutated.
	// A clone should be made for any mutative operation.
	GetChainScalingFactorByDenomMut(denom string) (osmomath.Dec, error)
}

// TokenRegistryLoader is loader of tokens from the chain registry.
// Loaded tokens are used to update the currency registry.
type TokenRegistryLoader interface {
	// FetchAndUpdateTokens fetches tokens from the chain registry and updates the currency registry.
	FetchAndUpdateTokens() error
}
