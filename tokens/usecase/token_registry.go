package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"

	deliveryhttp "github.com/osmosis-labs/poolrouter/delivery/http"
	"github.com/osmosis-labs/poolrouter/domain"
	"github.com/osmosis-labs/poolrouter/sqsutil/sqshttp"
)

// GetTokensFromChainRegistryFunc is a GetTokensFromChainRegistry function signature.
type GetTokensFromChainRegistryFunc func(ctx context.Context, chainRegistryAssetsFileURL string) (map[string]domain.Currency, string, error)

var chainRegistryClient = deliveryhttp.NewClient(30 * time.Second)

// GetTokensFromChainRegistry fetches the tokens from the chain registry.
// It returns a map of currencies by chain denom and a hash of the raw asset list.
func GetTokensFromChainRegistry(ctx context.Context, chainRegistryAssetsFileURL string) (map[string]domain.Currency, string, error) {
	data, err := sqshttp.GetBytes(ctx, chainRegistryClient, chainRegistryAssetsFileURL, "")
	if err != nil {
		return nil, "", err
	}

	var assetList AssetList
	if err := json.Unmarshal(data, &assetList); err != nil {
		return nil, "", err
	}

	if len(assetList.Assets) == 0 {
		return nil, "", EmptyAssetListError{URL: chainRegistryAssetsFileURL}
	}

	currenciesByChainDenom := make(map[string]domain.Currency, len(assetList.Assets))
	for _, asset := range assetList.Assets {
		currenciesByChainDenom[asset.CoinMinimalDenom] = domain.Currency{
			Denom:       asset.CoinMinimalDenom,
			Symbol:      asset.Symbol,
			Decimals:    asset.Decimals,
			CoingeckoID: asset.CoingeckoID,
			IsUnlisted:  asset.Preview,
		}
	}

	return currenciesByChainDenom, fmt.Sprintf("%x", xxhash.Sum64(data)), nil
}

// LoadTokensFunc loads the fetched currencies into the registry.
type LoadTokensFunc func(currencies map[string]domain.Currency)

// ChainRegistryHTTPFetcher fetches tokens from the HTTP chain registry and loads them
// only when the asset list changed since the last fetch.
type ChainRegistryHTTPFetcher struct {
	registryURL                string
	getTokensFromChainRegistry GetTokensFromChainRegistryFunc
	loadTokens                 LoadTokensFunc
	lastFetchHash              string
}

var _ domain.TokenRegistryLoader = &ChainRegistryHTTPFetcher{}

// NewChainRegistryHTTPFetcher creates a new instance of ChainRegistryHTTPFetcher.
func NewChainRegistryHTTPFetcher(registryURL string, getTokensFromChainRegistry GetTokensFromChainRegistryFunc, loadTokens LoadTokensFunc) *ChainRegistryHTTPFetcher {
	return &ChainRegistryHTTPFetcher{
		getTokensFromChainRegistry: getTokensFromChainRegistry,
		registryURL:                registryURL,
		loadTokens:                 loadTokens,
	}
}

// FetchAndUpdateTokens implements domain.TokenRegistryLoader.
// In case there were no changes since last fetch, it does not call loadTokens.
func (f *ChainRegistryHTTPFetcher) FetchAndUpdateTokens() error {
	tokens, hash, err := f.getTokensFromChainRegistry(context.Background(), f.registryURL)
	if err != nil {
		return err
	}

	if f.lastFetchHash != hash {
		f.loadTokens(tokens)
		f.lastFetchHash = hash
	}

	return nil
}
