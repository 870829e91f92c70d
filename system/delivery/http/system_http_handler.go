package http

import (
	"fmt"
	"net/http"
	"net/http/pprof"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"github.com/osmosis-labs/poolrouter/domain"
	"github.com/osmosis-labs/poolrouter/domain/mvc"
	"github.com/osmosis-labs/poolrouter/log"
)

type SystemHandler struct {
	logger   log.Logger
	PUsecase mvc.PoolsUsecase
	config   domain.Config
	// staleAfter is the snapshot age past which the service is reported unhealthy.
	staleAfter time.Duration
	now        func() time.Time
}

// HealthStatus is the /healthcheck response.
type HealthStatus struct {
	Status         string    `json:"status"`
	SnapshotSeq    uint64    `json:"snapshot_sequence"`
	NumPools       int       `json:"num_pools"`
	FetchedAt      time.Time `json:"fetched_at"`
	SnapshotAgeSec int64     `json:"snapshot_age_secs"`
}

const (
	// staleRefreshMultiplier is the number of missed refreshes tolerated before the snapshot is stale.
	staleRefreshMultiplier = 3

	versionPlaceholder    = "version="
	whiteSpacePlaceholder = " "
	redacted              = "<redacted>"
)

// NewSystemHandler will initialize the /debug/ppof resources endpoint
func NewSystemHandler(e *echo.Echo, config domain.Config, logger log.Logger, pu mvc.PoolsUsecase) {
	handler := &SystemHandler{
		logger:     logger,
		PUsecase:   pu,
		config:     config,
		staleAfter: time.Duration(config.Pools.RefreshIntervalSecs*staleRefreshMultiplier) * time.Second,
		now:        time.Now,
	}

	// if debug mod, enable additional profiles that are too intensive
	// for production.
	if !config.LoggerIsProduction {
		runtime.SetMutexProfileFraction(2)
		runtime.SetBlockProfileRate(2)
	}

	e.GET("/debug/pprof/*", echo.WrapHandler(http.HandlerFunc(pprof.Index)))
	e.GET("/debug/pprof/cmdline", echo.WrapHandler(http.HandlerFunc(pprof.Cmdline)))
	e.GET("/debug/pprof/profile", echo.WrapHandler(http.HandlerFunc(pprof.Profile)))
	e.GET("/debug/pprof/symbol", echo.WrapHandler(http.HandlerFunc(pprof.Symbol)))
	e.GET("/debug/pprof/trace", echo.WrapHandler(http.HandlerFunc(pprof.Trace)))

	e.GET("/healthcheck", handler.GetHealthStatus)
	e.GET("/config", handler.GetConfig)
	e.GET("/version", handler.GetVersion)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.EchoWrapHandler(echoSwagger.URL("docs/swagger.json"), echoSwagger.URL("swagger.yaml")))
}

// GetConfig returns the config of the server with secrets redacted.
func (h *SystemHandler) GetConfig(c echo.Context) error {
	config := h.config
	if config.OTEL != nil && config.OTEL.DSN != "" {
		otelConfig := *config.OTEL
		otelConfig.DSN = redacted
		config.OTEL = &otelConfig
	}
	return c.JSON(http.StatusOK, config)
}

func (h *SystemHandler) GetVersion(c echo.Context) error {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to read build info")
	}

	for _, setting := range buildInfo.Settings {
		if setting.Key == "-ldflags" {
			version, err := extractVersion(setting.Value)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("failed to extract version information: %v", err))
			}

			return c.JSON(http.StatusOK, version)
		}
	}

	return echo.NewHTTPError(http.StatusInternalServerError, "failed to find version information")
}

// extractVersion extracts the version string from the ldflags
func extractVersion(ldFlagsValueStr string) (string, error) {
	index := strings.Index(ldFlagsValueStr, versionPlaceholder)
	if index == -1 {
		return "", fmt.Errorf("no version string found")
	}

	substring := ldFlagsValueStr[index+len(versionPlaceholder):]

	index = strings.Index(substring, whiteSpacePlaceholder)
	if index == -1 {
		return substring, nil
	}

	return substring[:index], nil
}

// GetHealthStatus reports healthy once a pools snapshot is applied and
// it was fetched within the staleness window.
func (h *SystemHandler) GetHealthStatus(c echo.Context) error {
	snapshot := h.PUsecase.GetSnapshot()
	if snapshot == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, domain.NotLoadedError{}.Error())
	}

	age := h.now().Sub(snapshot.FetchedAt)
	status := HealthStatus{
		Status:         "ok",
		SnapshotSeq:    snapshot.Sequence,
		NumPools:       snapshot.Len(),
		FetchedAt:      snapshot.FetchedAt,
		SnapshotAgeSec: int64(age / time.Second),
	}

	if h.staleAfter > 0 && age > h.staleAfter {
		h.logger.Error("pools snapshot is stale", zap.Duration("age", age), zap.Duration("stale_after", h.staleAfter), zap.Uint64("sequence", snapshot.Sequence))
		status.Status = "stale"
		return c.JSON(http.StatusServiceUnavailable, status)
	}

	return c.JSON(http.StatusOK, status)
}
