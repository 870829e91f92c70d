package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/osmosis-labs/osmosis/osmomath"
	"github.com/osmosis-labs/osmosis/v25/x/gamm/pool-models/balancer"
	poolmanagertypes "github.com/osmosis-labs/osmosis/v25/x/poolmanager/types"

	deliveryhttp "github.com/osmosis-labs/poolrouter/delivery/http"
	"github.com/osmosis-labs/poolrouter/domain"
	"github.com/osmosis-labs/poolrouter/log"
	"github.com/osmosis-labs/poolrouter/sqsutil/sqshttp"
)

const (
	poolsEndpointFormat = "/osmosis/gamm/v1beta1/pools?pagination.limit=%d"
	numPoolsEndpoint    = "/osmosis/gamm/v1beta1/num_pools"

	// balancerPoolTypeURL is the proto type URL of weighted pools in LCD responses.
	balancerPoolTypeURL = "/osmosis.gamm.v1beta1.Pool"

	defaultFetchTimeout = 10 * time.Second
)

var skippedPoolsCounter = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "poolrouter_pools_client_skipped_total",
		Help: "Total number of pools in LCD responses skipped because their type is not supported",
	},
	[]string{"type"},
)

func init() {
	prometheus.MustRegister(skippedPoolsCounter)
}

type lcdPoolParams struct {
	SwapFee osmomath.Dec `json:"swap_fee"`
	ExitFee osmomath.Dec `json:"exit_fee"`
}

type lcdPool struct {
	Type       string               `json:"@type"`
	ID         string               `json:"id"`
	PoolParams lcdPoolParams        `json:"pool_params"`
	PoolAssets []balancer.PoolAsset `json:"pool_assets"`
}

type lcdPoolsResponse struct {
	Pools []json.RawMessage `json:"pools"`
}

type lcdNumPoolsResponse struct {
	NumPools string `json:"num_pools"`
}

type lcdClient struct {
	endpoint string
	client   *http.Client
	logger   log.Logger
}

var _ domain.PoolsClient = &lcdClient{}

// NewLCDClient returns a pools client over the LCD REST endpoint in the config.
func NewLCDClient(config domain.PoolsConfig, logger log.Logger) domain.PoolsClient {
	timeout := time.Duration(config.FetchTimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = defaultFetchTimeout
	}

	return &lcdClient{
		endpoint: config.LCDEndpoint,
		client:   deliveryhttp.NewClient(timeout),
		logger:   logger,
	}
}

// GetPools implements domain.PoolsClient.
// Pools of unsupported types are skipped.
func (c *lcdClient) GetPools(ctx context.Context, limit uint64) ([]domain.Pool, error) {
	response, err := sqshttp.Get[lcdPoolsResponse](ctx, c.client, c.endpoint, fmt.Sprintf(poolsEndpointFormat, limit))
	if err != nil {
		return nil, err
	}

	pools := make([]domain.Pool, 0, len(response.Pools))
	for _, raw := range response.Pools {
		var header struct {
			Type string `json:"@type"`
			ID   string `json:"id"`
		}
		if err := json.Unmarshal(raw, &header); err != nil {
			return nil, fmt.Errorf("failed to decode pool: %w", err)
		}

		if header.Type != balancerPoolTypeURL {
			skippedPoolsCounter.WithLabelValues(header.Type).Inc()
			c.logger.Debug("skipping unsupported pool", zap.String("pool_id", header.ID), zap.String("type", header.Type))
			continue
		}

		var pool lcdPool
		if err := json.Unmarshal(raw, &pool); err != nil {
			return nil, fmt.Errorf("failed to decode pool (%s): %w", header.ID, err)
		}

		pools = append(pools, pool.toDomain())
	}

	return pools, nil
}

// GetNumPools implements domain.PoolsClient.
func (c *lcdClient) GetNumPools(ctx context.Context) (uint64, error) {
	response, err := sqshttp.Get[lcdNumPoolsResponse](ctx, c.client, c.endpoint, numPoolsEndpoint)
	if err != nil {
		return 0, err
	}

	numPools, err := strconv.ParseUint(response.NumPools, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid num_pools (%s): %w", response.NumPools, err)
	}

	return numPools, nil
}

func (p lcdPool) toDomain() domain.Pool {
	swapFee := p.PoolParams.SwapFee
	if swapFee.IsNil() {
		swapFee = osmomath.ZeroDec()
	}
	exitFee := p.PoolParams.ExitFee
	if exitFee.IsNil() {
		exitFee = osmomath.ZeroDec()
	}

	return domain.Pool{
		ID:         p.ID,
		Type:       poolmanagertypes.Balancer,
		PoolAssets: p.PoolAssets,
		SwapFee:    swapFee,
		ExitFee:    exitFee,
	}
}
