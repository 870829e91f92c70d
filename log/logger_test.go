package log_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/osmosis-labs/poolrouter/log"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name         string
		isProduction bool
		fileName     string
		level        string
		expectErr    bool
	}{
		{name: "development console", level: "debug"},
		{name: "production with file", isProduction: true, fileName: "poolrouter.log", level: "info"},
		{name: "invalid level", level: "loud", expectErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fileName := tc.fileName
			if fileName != "" {
				fileName = filepath.Join(t.TempDir(), fileName)
			}

			logger, err := log.NewLogger(tc.isProduction, fileName, tc.level)
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			logger.Info("pools fetched", zap.Int("num_pools", 3))
			logger.Debug("route", zap.String("pool_id", "1"))
		})
	}
}
