package usecase

import (
	"sort"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/osmosis-labs/osmosis/osmomath"

	"github.com/osmosis-labs/poolrouter/domain"
	"github.com/osmosis-labs/poolrouter/domain/mvc"
	"github.com/osmosis-labs/poolrouter/log"
)

type tokensUseCase struct {
	metadataMapMu                sync.RWMutex
	currencyMetadataByChainDenom map[string]domain.Currency

	denomMapMu         sync.RWMutex
	symbolToChainDenom map[string]string

	logger log.Logger
}

// Struct to represent the JSON structure
type AssetList struct {
	ChainName string `json:"chain_name"`
	Assets    []struct {
		ChainID          string `json:"chainId"`
		CoinMinimalDenom string `json:"coinMinimalDenom"`
		Symbol           string `json:"symbol"`
		Decimals         int    `json:"decimals"`
		CoingeckoID      string `json:"coingeckoId"`
		Preview          bool   `json:"preview"`
	} `json:"assets"`
}

var _ mvc.TokensUsecase = &tokensUseCase{}

var (
	unknownCurrencyRegisteredCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "poolrouter_unknown_currency_registered_total",
			Help: "Total number of raw currencies registered from pool data",
		},
	)
	unknownCurrencyLookupCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poolrouter_unknown_currency_lookup_total",
			Help: "Total number of lookups of unregistered currencies",
		},
		[]string{"denom"},
	)
)

func init() {
	prometheus.MustRegister(unknownCurrencyRegisteredCounter)
	prometheus.MustRegister(unknownCurrencyLookupCounter)
}

// NewTokensUsecase will create a new tokens use case object
func NewTokensUsecase(currencyMetadataByChainDenom map[string]domain.Currency, logger log.Logger) mvc.TokensUsecase {
	t := &tokensUseCase{
		currencyMetadataByChainDenom: make(map[string]domain.Currency, len(currencyMetadataByChainDenom)),
		symbolToChainDenom:           make(map[string]string, len(currencyMetadataByChainDenom)),
		logger:                       logger,
	}

	t.LoadCurrencies(currencyMetadataByChainDenom)

	return t
}

// LoadCurrencies implements mvc.TokensUsecase.
func (t *tokensUseCase) LoadCurrencies(currencies map[string]domain.Currency) {
	// sorted so that symbol collisions resolve deterministically
	chainDenoms := make([]string, 0, len(currencies))
	for chainDenom := range currencies {
		chainDenoms = append(chainDenoms, chainDenom)
	}
	sort.Strings(chainDenoms)

	t.metadataMapMu.Lock()
	t.denomMapMu.Lock()
	defer t.denomMapMu.Unlock()
	defer t.metadataMapMu.Unlock()

	for _, chainDenom := range chainDenoms {
		currency := currencies[chainDenom]
		currency.Denom = chainDenom

		t.currencyMetadataByChainDenom[chainDenom] = currency

		if !currency.IsUnlisted && currency.Symbol != "" {
			t.symbolToChainDenom[strings.ToLower(currency.Symbol)] = chainDenom
		}
	}
}

// AddUnknownCurrencies implements domain.CurrencyRegistry.
func (t *tokensUseCase) AddUnknownCurrencies(denoms ...string) {
	t.metadataMapMu.Lock()
	defer t.metadataMapMu.Unlock()

	for _, denom := range denoms {
		if _, ok := t.currencyMetadataByChainDenom[denom]; ok {
			continue
		}

		t.currencyMetadataByChainDenom[denom] = domain.Currency{
			Denom:      denom,
			Symbol:     denom,
			Decimals:   0,
			IsUnlisted: true,
		}

		unknownCurrencyRegisteredCounter.Inc()
		t.logger.Debug("registered unknown currency", zap.String("denom", denom))
	}
}

// GetCurrency implements domain.CurrencyRegistry.
func (t *tokensUseCase) GetCurrency(denom string) (domain.Currency, bool) {
	t.metadataMapMu.RLock()
	defer t.metadataMapMu.RUnlock()

	currency, ok := t.currencyMetadataByChainDenom[denom]
	return currency, ok
}

// ForceFindCurrency implements domain.CurrencyRegistry.
func (t *tokensUseCase) ForceFindCurrency(denom string) (domain.Currency, error) {
	currency, ok := t.GetCurrency(denom)
	if !ok {
		unknownCurrencyLookupCounter.WithLabelValues(denom).Inc()
		return domain.Currency{}, domain.UnknownCurrencyError{Denom: denom}
	}
	return currency, nil
}

// GetAllCurrencies implements domain.CurrencyRegistry.
func (t *tokensUseCase) GetAllCurrencies() []domain.Currency {
	t.metadataMapMu.RLock()
	defer t.metadataMapMu.RUnlock()

	result := make([]domain.Currency, 0, len(t.currencyMetadataByChainDenom))
	for _, currency := range t.currencyMetadataByChainDenom {
		result = append(result, currency)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Denom < result[j].Denom
	})

	return result
}

// GetChainDenom implements mvc.TokensUsecase.
func (t *tokensUseCase) GetChainDenom(symbol string) (string, error) {
	symbolLowerCase := strings.ToLower(symbol)

	t.denomMapMu.RLock()
	defer t.denomMapMu.RUnlock()

	chainDenom, ok := t.symbolToChainDenom[symbolLowerCase]
	if !ok {
		return "", ChainDenomForSymbolNotFoundError{Symbol: symbolLowerCase}
	}

	return chainDenom, nil
}

// GetChainScalingFactorByDenomMut implements domain.CurrencyRegistry.
func (t *tokensUseCase) GetChainScalingFactorByDenomMut(denom string) (osmomath.Dec, error) {
	currency, err := t.ForceFindCurrency(denom)
	if err != nil {
		return osmomath.Dec{}, err
	}

	scalingFactor, ok := scalingFactorForDecimals(currency.Decimals)
	if !ok {
		return osmomath.Dec{}, ScalingFactorForPrecisionNotFoundError{
			Precision: currency.Decimals,
			Denom:     denom,
		}
	}

	return scalingFactor, nil
}
