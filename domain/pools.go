package domain

import (
	"context"
	"fmt"
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/osmosis-labs/osmosis/osmomath"
	"github.com/osmosis-labs/osmosis/v25/x/gamm/pool-models/balancer"
	poolmanagertypes "github.com/osmosis-labs/osmosis/v25/x/poolmanager/types"
)

// DefaultPoolsFetchLimit is the initial pagination limit used when listing pools.
const DefaultPoolsFetchLimit uint64 = 1000

// Pool is an immutable snapshot of a weighted pool as returned by the chain.
// Callers must treat PoolAssets as read-only.
type Pool struct {
	ID   string                    `json:"id"`
	Type poolmanagertypes.PoolType `json:"type"`
	// PoolAssets are ordered as returned by the chain.
	PoolAssets []balancer.PoolAsset `json:"pool_assets"`
	SwapFee    osmomath.Dec         `json:"swap_fee"`
	ExitFee    osmomath.Dec         `json:"exit_fee"`
}

// GetId returns the pool identifier.
func (p Pool) GetId() string {
	return p.ID
}

// GetType returns the chain pool type.
func (p Pool) GetType() poolmanagertypes.PoolType {
	return p.Type
}

// GetPoolDenoms returns the denoms of the pool assets in pool order.
func (p Pool) GetPoolDenoms() []string {
	denoms := make([]string, len(p.PoolAssets))
	for i, asset := range p.PoolAssets {
		denoms[i] = asset.Token.Denom
	}
	return denoms
}

// GetPoolAsset returns the pool asset for the given denom.
func (p Pool) GetPoolAsset(denom string) (balancer.PoolAsset, bool) {
	for _, asset := range p.PoolAssets {
		if asset.Token.Denom == denom {
			return asset, true
		}
	}
	return balancer.PoolAsset{}, false
}

// ContainsDenom returns true if the pool holds the given denom.
func (p Pool) ContainsDenom(denom string) bool {
	_, ok := p.GetPoolAsset(denom)
	return ok
}

// GetBalances returns the pool balances in pool order.
func (p Pool) GetBalances() sdk.Coins {
	balances := make(sdk.Coins, 0, len(p.PoolAssets))
	for _, asset := range p.PoolAssets {
		balances = append(balances, asset.Token)
	}
	return balances
}

// GetSpreadFactor returns the swap fee rate of the pool.
func (p Pool) GetSpreadFactor() osmomath.Dec {
	return p.SwapFee
}

// String implements fmt.Stringer.
func (p Pool) String() string {
	return fmt.Sprintf("pool (%s), pool type (%d), pool denoms (%v)", p.ID, p.Type, p.GetPoolDenoms())
}

// PoolsSnapshot is the full pool set obtained by a single successful fetch.
// It is never mutated after construction; a new fetch produces a new snapshot.
type PoolsSnapshot struct {
	// Pools in server response order.
	Pools []Pool
	// Sequence is the request sequence number that produced the snapshot.
	Sequence uint64
	// Limit is the pagination limit of the request.
	Limit     uint64
	FetchedAt time.Time

	indexByID map[string]int
}

// NewPoolsSnapshot creates a snapshot over the given pools.
// If a pool id repeats, the first occurrence wins.
func NewPoolsSnapshot(pools []Pool, sequence uint64, limit uint64, fetchedAt time.Time) *PoolsSnapshot {
	indexByID := make(map[string]int, len(pools))
	for i, pool := range pools {
		if _, ok := indexByID[pool.ID]; !ok {
			indexByID[pool.ID] = i
		}
	}

	return &PoolsSnapshot{
		Pools:     pools,
		Sequence:  sequence,
		Limit:     limit,
		FetchedAt: fetchedAt,
		indexByID: indexByID,
	}
}

// GetPool returns the pool with the given id.
func (s *PoolsSnapshot) GetPool(id string) (Pool, bool) {
	i, ok := s.indexByID[id]
	if !ok {
		return Pool{}, false
	}
	return s.Pools[i], true
}

// Len returns the number of pools in the snapshot.
func (s *PoolsSnapshot) Len() int {
	return len(s.Pools)
}

// GetDenoms returns every distinct denom referenced by the snapshot
// in first-seen order.
func (s *PoolsSnapshot) GetDenoms() []string {
	seen := make(map[string]struct{})
	denoms := make([]string, 0)
	for _, pool := range s.Pools {
		for _, asset := range pool.PoolAssets {
			if _, ok := seen[asset.Token.Denom]; ok {
				continue
			}
			seen[asset.Token.Denom] = struct{}{}
			denoms = append(denoms, asset.Token.Denom)
		}
	}
	return denoms
}

// GetPoolCurrencies groups the currencies of every pool in snapshot order,
// resolving each denom through the registry.
func (s *PoolsSnapshot) GetPoolCurrencies(registry CurrencyRegistry) ([]PoolCurrencies, error) {
	result := make([]PoolCurrencies, 0, len(s.Pools))
	for _, pool := range s.Pools {
		currencies := make([]Currency, 0, len(pool.PoolAssets))
		for _, asset := range pool.PoolAssets {
			currency, err := registry.ForceFindCurrency(asset.Token.Denom)
			if err != nil {
				return nil, err
			}
			currencies = append(currencies, currency)
		}

		result = append(result, PoolCurrencies{
			PoolID:     pool.ID,
			Currencies: currencies,
		})
	}
	return result, nil
}

// Existence is a tri-state answer to "does this pool exist".
type Existence int

const (
	// ExistenceUnknown means no successful fetch has completed yet.
	ExistenceUnknown Existence = iota
	// PoolExists means the pool is present in the current snapshot.
	PoolExists
	// PoolDoesNotExist means the current snapshot does not contain the pool.
	PoolDoesNotExist
)

// String implements fmt.Stringer.
func (e Existence) String() string {
	switch e {
	case PoolExists:
		return "exists"
	case PoolDoesNotExist:
		return "not_exists"
	default:
		return "unknown"
	}
}

// PoolsClient is the remote pool registry.
type PoolsClient interface {
	// GetPools returns up to limit pools in server order.
	GetPools(ctx context.Context, limit uint64) ([]Pool, error)
	// GetNumPools returns the total number of pools on chain.
	GetNumPools(ctx context.Context) (uint64, error)
}

// PoolsUpdateListener is notified after a new pools snapshot is applied.
type PoolsUpdateListener interface {
	OnPoolsUpdate(ctx context.Context, snapshot *PoolsSnapshot) error
}

// NumPoolsListener is notified when the total pool count signal changes.
type NumPoolsListener interface {
	OnNumPoolsUpdate(ctx context.Context, numPools uint64) error
}

// PoolsConfig defines the pools ingestion configuration.
type PoolsConfig struct {
	// LCD REST endpoint of the chain, e.g. https://lcd.osmosis.zone
	LCDEndpoint string `mapstructure:"lcd-endpoint"`
	// FetchTimeoutSecs bounds a single pools request.
	FetchTimeoutSecs int `mapstructure:"fetch-timeout-secs"`
	// NumPoolsPollIntervalSecs is how often the pool count is polled.
	NumPoolsPollIntervalSecs int `mapstructure:"num-pools-poll-interval-secs"`
	// RefreshIntervalSecs is how often every pool is refetched.
	RefreshIntervalSecs int `mapstructure:"refresh-interval-secs"`
	// MemoCacheSize bounds the number of memoized query results per snapshot.
	MemoCacheSize int `mapstructure:"memo-cache-size"`
	// SnapshotPath is the directory where the last successful fetch is persisted.
	// Persistence is disabled when empty.
	SnapshotPath string `mapstructure:"snapshot-path"`
}
