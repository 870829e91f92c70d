package http_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/osmosis-labs/poolrouter/domain"
	"github.com/osmosis-labs/poolrouter/domain/mocks"
	"github.com/osmosis-labs/poolrouter/router/usecase/routertesting"
	systemhttp "github.com/osmosis-labs/poolrouter/system/delivery/http"
)

func TestExtractVersion(t *testing.T) {
	testCases := []struct {
		name            string
		ldFlagsValue    string
		expectedVersion string
		expectErr       bool
	}{
		{
			name:            "version is specified first in the ldFlagsValue",
			ldFlagsValue:    "-X github.com/osmosis-labs/poolrouter/version=0.1.2-4-g79c82c8     -w -s -linkmode=external -extldflags '-Wl,-z,muldefs -static'",
			expectedVersion: "0.1.2-4-g79c82c8",
		},
		{
			name:            "version is specified in the end of ldFlagsValue",
			ldFlagsValue:    "-w -s -linkmode=external -extldflags '-Wl,-z,muldefs -static' -X github.com/osmosis-labs/poolrouter/version=0.1.2-4-g79c82c8",
			expectedVersion: "0.1.2-4-g79c82c8",
		},
		{
			name:            "version is specified in the middle of ldFlagsValue",
			ldFlagsValue:    "-extldflags '-Wl,-z,muldefs -static' -X github.com/osmosis-labs/poolrouter/version=0.1.2-4-g79c82c8 -w -s -linkmode=external",
			expectedVersion: "0.1.2-4-g79c82c8",
		},
		{
			name:         "no version",
			ldFlagsValue: "-w -s -linkmode=external",
			expectErr:    true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := systemhttp.ExtractVersion(tc.ldFlagsValue)
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expectedVersion, result)
		})
	}
}

func TestGetHealthStatus(t *testing.T) {
	config := domain.Config{Pools: &routertesting.DefaultPoolsConfig}
	fetchedAt := routertesting.DefaultFetchedAt
	snapshot := domain.NewPoolsSnapshot(routertesting.DefaultPools(), 3, domain.DefaultPoolsFetchLimit, fetchedAt)

	testCases := []struct {
		name               string
		snapshot           *domain.PoolsSnapshot
		now                time.Time
		expectedStatusCode int
		expectedStatus     string
	}{
		{
			name:               "not loaded",
			now:                fetchedAt,
			expectedStatusCode: http.StatusServiceUnavailable,
		},
		{
			name:               "fresh snapshot",
			snapshot:           snapshot,
			now:                fetchedAt.Add(time.Minute),
			expectedStatusCode: http.StatusOK,
			expectedStatus:     "ok",
		},
		{
			name:               "stale snapshot",
			snapshot:           snapshot,
			now:                fetchedAt.Add(time.Hour),
			expectedStatusCode: http.StatusServiceUnavailable,
			expectedStatus:     "stale",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := systemhttp.NewSystemHandlerWithClock(config, &mocks.PoolsUsecaseMock{Snapshot: tc.snapshot}, func() time.Time { return tc.now })

			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/healthcheck", nil), rec)

			err := handler.GetHealthStatus(c)
			if tc.snapshot == nil {
				var httpErr *echo.HTTPError
				require.True(t, errors.As(err, &httpErr))
				require.Equal(t, tc.expectedStatusCode, httpErr.Code)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.expectedStatusCode, rec.Code)
			require.Contains(t, rec.Body.String(), `"status":"`+tc.expectedStatus+`"`)
			require.Contains(t, rec.Body.String(), `"snapshot_sequence":3`)
		})
	}
}

func TestGetConfig_RedactsDSN(t *testing.T) {
	config := domain.Config{
		Pools: &routertesting.DefaultPoolsConfig,
		OTEL:  &domain.OTELConfig{DSN: "https://secret@sentry.io/1"},
	}
	handler := systemhttp.NewSystemHandlerWithClock(config, &mocks.PoolsUsecaseMock{}, time.Now)

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/config", nil), rec)

	require.NoError(t, handler.GetConfig(c))
	require.NotContains(t, rec.Body.String(), "secret")
	require.Equal(t, "https://secret@sentry.io/1", config.OTEL.DSN)
}
