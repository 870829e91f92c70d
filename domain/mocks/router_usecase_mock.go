package mocks

import (
	"context"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/osmosis-labs/poolrouter/domain"
	"github.com/osmosis-labs/poolrouter/domain/mvc"
)

var _ mvc.RouterUsecase = &RouterUsecaseMock{}

// RouterUsecaseMock is a mock implementation of the RouterUsecase interface
type RouterUsecaseMock struct {
	GetBestRouteFunc           func(ctx context.Context, tokenIn sdk.Coin, tokenOutDenom string) (*domain.BestRoute, error)
	GetBestSplitRouteFunc      func(ctx context.Context, tokenIn sdk.Coin, tokenOutDenom string) (*domain.SplitRoute, error)
	GetSwappableCurrenciesFunc func(ctx context.Context) ([]domain.Currency, error)
	OnPoolsUpdateFunc          func(ctx context.Context, snapshot *domain.PoolsSnapshot) error
	Config                     domain.RouterConfig
}

// GetBestRoute implements mvc.RouterUsecase.
func (m *RouterUsecaseMock) GetBestRoute(ctx context.Context, tokenIn sdk.Coin, tokenOutDenom string) (*domain.BestRoute, error) {
	if m.GetBestRouteFunc != nil {
		return m.GetBestRouteFunc(ctx, tokenIn, tokenOutDenom)
	}
	panic("unimplemented")
}

// GetBestSplitRoute implements mvc.RouterUsecase.
func (m *RouterUsecaseMock) GetBestSplitRoute(ctx context.Context, tokenIn sdk.Coin, tokenOutDenom string) (*domain.SplitRoute, error) {
	if m.GetBestSplitRouteFunc != nil {
		return m.GetBestSplitRouteFunc(ctx, tokenIn, tokenOutDenom)
	}
	panic("unimplemented")
}

// GetSwappableCurrencies implements mvc.RouterUsecase.
func (m *RouterUsecaseMock) GetSwappableCurrencies(ctx context.Context) ([]domain.Currency, error) {
	if m.GetSwappableCurrenciesFunc != nil {
		return m.GetSwappableCurrenciesFunc(ctx)
	}
	panic("unimplemented")
}

// OnPoolsUpdate implements mvc.RouterUsecase.
func (m *RouterUsecaseMock) OnPoolsUpdate(ctx context.Context, snapshot *domain.PoolsSnapshot) error {
	if m.OnPoolsUpdateFunc != nil {
		return m.OnPoolsUpdateFunc(ctx, snapshot)
	}
	return nil
}

// GetConfig implements mvc.RouterUsecase.
func (m *RouterUsecaseMock) GetConfig() domain.RouterConfig {
	return m.Config
}
