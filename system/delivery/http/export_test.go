package http

import (
	"time"

	"github.com/osmosis-labs/poolrouter/domain"
	"github.com/osmosis-labs/poolrouter/domain/mvc"
	"github.com/osmosis-labs/poolrouter/log"
)

func ExtractVersion(ldFlagsValue string) (string, error) {
	return extractVersion(ldFlagsValue)
}

// NewSystemHandlerWithClock returns a handler whose staleness check uses now.
func NewSystemHandlerWithClock(config domain.Config, pu mvc.PoolsUsecase, now func() time.Time) *SystemHandler {
	return &SystemHandler{
		logger:     &log.NoOpLogger{},
		PUsecase:   pu,
		config:     config,
		staleAfter: time.Duration(config.Pools.RefreshIntervalSecs*staleRefreshMultiplier) * time.Second,
		now:        now,
	}
}
