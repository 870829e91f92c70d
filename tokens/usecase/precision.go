package usecase

import "github.com/osmosis-labs/osmosis/osmomath"

// maxCurrencyDecimals is the largest exponent for which 10^decimals fits in osmomath.Dec.
const maxCurrencyDecimals = 73

// decimalsScalingFactors[i] is 10^i. Read-only after package init.
var decimalsScalingFactors = newDecimalsScalingFactors()

func newDecimalsScalingFactors() []osmomath.Dec {
	factors := make([]osmomath.Dec, maxCurrencyDecimals+1)
	factors[0] = osmomath.OneDec()
	ten := osmomath.NewDec(10)
	for decimals := 1; decimals <= maxCurrencyDecimals; decimals++ {
		factors[decimals] = factors[decimals-1].Mul(ten)
	}
	return factors
}

// scalingFactorForDecimals returns the shared 10^decimals entry.
// Returns false for negative decimals or decimals above maxCurrencyDecimals.
func scalingFactorForDecimals(decimals int) (osmomath.Dec, bool) {
	if decimals < 0 || decimals > maxCurrencyDecimals {
		return osmomath.Dec{}, false
	}
	return decimalsScalingFactors[decimals], true
}
