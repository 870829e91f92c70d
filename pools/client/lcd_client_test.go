package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/osmosis-labs/osmosis/osmomath"
	poolmanagertypes "github.com/osmosis-labs/osmosis/v25/x/poolmanager/types"

	"github.com/osmosis-labs/poolrouter/domain"
	"github.com/osmosis-labs/poolrouter/domain/mocks"
	"github.com/osmosis-labs/poolrouter/log"
	"github.com/osmosis-labs/poolrouter/pools/client"
	"github.com/osmosis-labs/poolrouter/router/usecase/routertesting"
	"github.com/osmosis-labs/poolrouter/sqsutil/sqshttp"
)

type LCDClientTestSuite struct {
	routertesting.RouterTestHelper
}

func TestLCDClientTestSuite(t *testing.T) {
	suite.Run(t, new(LCDClientTestSuite))
}

func (s *LCDClientTestSuite) newServer(poolsResponse string) (*httptest.Server, *atomic.Value) {
	requestedQuery := &atomic.Value{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/osmosis/gamm/v1beta1/pools":
			requestedQuery.Store(r.URL.RawQuery)
			_, _ = w.Write([]byte(poolsResponse))
		case "/osmosis/gamm/v1beta1/num_pools":
			_, _ = w.Write([]byte(`{"num_pools":"1554"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	s.T().Cleanup(server.Close)

	return server, requestedQuery
}

func (s *LCDClientTestSuite) TestGetPools() {
	server, requestedQuery := s.newServer(s.MustReadFile("testdata/pools.json"))

	config := routertesting.DefaultPoolsConfig
	config.LCDEndpoint = server.URL

	poolsClient := client.NewLCDClient(config, &log.NoOpLogger{})

	pools, err := poolsClient.GetPools(context.Background(), 1500)
	s.Require().NoError(err)
	s.Require().Equal("pagination.limit=1500", requestedQuery.Load())

	// The concentrated pool is skipped.
	s.Require().Len(pools, 2)

	poolOne := pools[0]
	s.Require().Equal("1", poolOne.ID)
	s.Require().Equal(poolmanagertypes.Balancer, poolOne.Type)
	s.Require().Equal(osmomath.MustNewDecFromStr("0.002").String(), poolOne.SwapFee.String())
	s.Require().True(poolOne.ExitFee.IsZero())
	s.Require().Equal([]string{routertesting.ATOM, routertesting.UOSMO}, poolOne.GetPoolDenoms())

	osmoAsset, found := poolOne.GetPoolAsset(routertesting.UOSMO)
	s.Require().True(found)
	s.Require().Equal(osmomath.NewInt(10_000_000_000), osmoAsset.Token.Amount)
	s.Require().Equal(osmomath.NewInt(536870912000000), osmoAsset.Weight)

	poolFour := pools[1]
	s.Require().Equal("4", poolFour.ID)
	ionAsset, found := poolFour.GetPoolAsset(routertesting.UION)
	s.Require().True(found)
	s.Require().Equal(osmomath.NewInt(214748364800000), ionAsset.Weight)
}

func (s *LCDClientTestSuite) TestGetPools_Errors() {
	s.Run("malformed response", func() {
		server, _ := s.newServer(`{"pools":[{"@type":"/osmosis.gamm.v1beta1.Pool","id":"1","pool_assets":"oops"}]}`)

		config := routertesting.DefaultPoolsConfig
		config.LCDEndpoint = server.URL

		_, err := client.NewLCDClient(config, &log.NoOpLogger{}).GetPools(context.Background(), 10)
		s.Require().Error(err)
	})

	s.Run("server error", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		config := routertesting.DefaultPoolsConfig
		config.LCDEndpoint = server.URL

		_, err := client.NewLCDClient(config, &log.NoOpLogger{}).GetPools(context.Background(), 10)
		s.Require().ErrorAs(err, &sqshttp.StatusError{})
	})

	s.Run("timeout", func() {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-release
		}))
		defer server.Close()
		defer close(release)

		config := routertesting.DefaultPoolsConfig
		config.LCDEndpoint = server.URL

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := client.NewLCDClient(config, &log.NoOpLogger{}).GetPools(ctx, 10)
		s.Require().ErrorIs(err, context.DeadlineExceeded)
	})
}

func (s *LCDClientTestSuite) TestGetNumPools() {
	server, _ := s.newServer(`{"pools":[]}`)

	config := routertesting.DefaultPoolsConfig
	config.LCDEndpoint = server.URL

	numPools, err := client.NewLCDClient(config, &log.NoOpLogger{}).GetNumPools(context.Background())
	s.Require().NoError(err)
	s.Require().Equal(uint64(1554), numPools)
}

func TestNumPoolsWatcher(t *testing.T) {
	var numPools atomic.Uint64
	numPools.Store(1000)

	poolsClient := &mocks.PoolsClientMock{
		GetNumPoolsFunc: func(ctx context.Context) (uint64, error) {
			return numPools.Load(), nil
		},
	}

	listener := &mocks.NumPoolsListenerMock{}

	watcher := client.NewNumPoolsWatcher(poolsClient, 5*time.Millisecond, &log.NoOpLogger{})
	watcher.RegisterListener(listener)

	_, _, err := watcher.GetNumPools()
	require.Error(t, err)

	watcher.Start(context.Background())
	defer watcher.Stop()

	require.Eventually(t, func() bool { return len(listener.GetNumPools()) == 1 }, 2*time.Second, 5*time.Millisecond)

	numPools.Store(1200)
	require.Eventually(t, func() bool { return len(listener.GetNumPools()) == 2 }, 2*time.Second, 5*time.Millisecond)

	// Unchanged counts are not re-notified.
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, []uint64{1000, 1200}, listener.GetNumPools())

	current, _, err := watcher.GetNumPools()
	require.NoError(t, err)
	require.Equal(t, uint64(1200), current)
}

func TestNumPoolsWatcher_RaisesFetchLimit(t *testing.T) {
	poolsClient := &mocks.PoolsClientMock{
		Pools:    routertesting.DefaultPools(),
		NumPools: 2500,
	}

	poolsUsecase := routertesting.NewPoolsUsecase(poolsClient)

	watcher := client.NewNumPoolsWatcher(poolsClient, time.Hour, &log.NoOpLogger{})
	watcher.RegisterListener(poolsUsecase)
	watcher.Start(context.Background())
	defer watcher.Stop()

	require.Eventually(t, func() bool { return poolsUsecase.GetSnapshot() != nil }, 2*time.Second, 5*time.Millisecond)

	require.Equal(t, uint64(2500), poolsUsecase.GetFetchLimit())
	require.Equal(t, []uint64{2500}, poolsClient.RequestedLimits())
	require.Equal(t, domain.PoolExists, poolsUsecase.HasLoadedAndExists("1"))
}
