package coingeckopricing_test

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/osmosis-labs/osmosis/osmomath"

	coingeckopricing "github.com/osmosis-labs/poolrouter/tokens/usecase/pricing/coingecko"
)

func TestDecFromFloat(t *testing.T) {
	tests := []struct {
		name     string
		price    float64
		expected osmomath.Dec
	}{
		{"integer", 12, osmomath.NewDec(12)},
		{"fraction", 0.5123, osmomath.MustNewDecFromStr("0.5123")},
		{"tiny", 0.00000123, osmomath.MustNewDecFromStr("0.00000123")},
		{"beyond precision is truncated", 1e-20, osmomath.ZeroDec()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual, err := coingeckopricing.DecFromFloat(tt.price)
			assert.NoError(t, err)
			assert.True(t, tt.expected.Equal(actual), "expected %s, got %s", tt.expected, actual)
		})
	}
}
