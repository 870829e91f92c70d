package mvc

import (
	"context"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/osmosis-labs/poolrouter/domain"
)

// RouterUsecase represent the router's usecases
type RouterUsecase interface {
	domain.PoolsUpdateListener

	// GetBestRoute returns the best direct or one-hop route for tokenIn and tokenOutDenom.
	// Returns nil and no error if no route exists.
	GetBestRoute(ctx context.Context, tokenIn sdk.Coin, tokenOutDenom string) (*domain.BestRoute, error)

	// GetBestSplitRoute splits tokenIn across direct pools when it beats the single best pool.
	// Returns nil and no error if no direct route exists or splitting does not improve the output.
	GetBestSplitRoute(ctx context.Context, tokenIn sdk.Coin, tokenOutDenom string) (*domain.SplitRoute, error)

	// GetSwappableCurrencies returns every currency that appears in at least one pool.
	GetSwappableCurrencies(ctx context.Context) ([]domain.Currency, error)

	// GetConfig returns the router config.
	GetConfig() domain.RouterConfig
}
