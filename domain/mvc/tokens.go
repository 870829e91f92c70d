package mvc

import (
	"github.com/osmosis-labs/poolrouter/domain"
)

// TokensUsecase defines an interface for the tokens usecase.
type TokensUsecase interface {
	domain.CurrencyRegistry

	// LoadCurrencies upserts the given currencies keyed by chain denom.
	// Raw currencies previously registered from pool data are replaced by listed metadata.
	LoadCurrencies(currencies map[string]domain.Currency)

	// GetChainDenom returns chain denom by symbol, case-insensitive.
	GetChainDenom(symbol string) (string, error)
}
