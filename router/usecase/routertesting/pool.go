package routertesting

import (
	"github.com/osmosis-labs/poolrouter/domain"
)

// PoolOne is UOSMO / ATOM with 0.3% swap fee and 10 UOSMO for 1 ATOM.
func PoolOne() domain.Pool {
	return NewWeightedPool("1", DefaultSwapFee,
		Asset(UOSMO, 10_000_000_000, 100),
		Asset(ATOM, 1_000_000_000, 100),
	)
}

// PoolTwo is ATOM / USDC with 0.3% swap fee and 1 ATOM for 8 USDC.
func PoolTwo() domain.Pool {
	return NewWeightedPool("2", DefaultSwapFee,
		Asset(ATOM, 1_000_000_000, 100),
		Asset(USDC, 8_000_000_000, 100),
	)
}

// PoolThree is USDC / USDT with 0.1% swap fee at parity.
func PoolThree() domain.Pool {
	return NewWeightedPool("3", DefaultSwapFee.QuoInt64(3),
		Asset(USDC, 5_000_000_000, 100),
		Asset(USDT, 5_000_000_000, 100),
	)
}

// PoolFour is an 80/20 UOSMO / UION pool with 0.2% swap fee.
func PoolFour() domain.Pool {
	return NewWeightedPool("4", DefaultSwapFee.MulInt64(2).QuoInt64(3),
		Asset(UOSMO, 4_000_000_000, 80),
		Asset(UION, 1_000_000, 20),
	)
}

// DirectPoolsXY returns two DenomOne / DenomTwo pools with spot prices 1.02 and 1.01
// for DenomOne in, DenomTwo out.
func DirectPoolsXY() (domain.Pool, domain.Pool) {
	poolOne := NewWeightedPool("1", DefaultSwapFee,
		Asset(DenomOne, 1_020_000_000, 100),
		Asset(DenomTwo, 1_000_000_000, 100),
	)
	poolTwo := NewWeightedPool("2", DefaultSwapFee,
		Asset(DenomOne, 1_010_000_000, 100),
		Asset(DenomTwo, 1_000_000_000, 100),
	)
	return poolOne, poolTwo
}

// MultihopPoolsABC returns DenomOne / DenomTwo and DenomTwo / DenomThree pools
// with 0.3% swap fee and no DenomOne / DenomThree pool.
func MultihopPoolsABC() (domain.Pool, domain.Pool) {
	poolAB := NewWeightedPool("1", DefaultSwapFee,
		Asset(DenomOne, 2_000_000_000, 100),
		Asset(DenomTwo, 1_000_000_000, 100),
	)
	poolBC := NewWeightedPool("2", DefaultSwapFee,
		Asset(DenomTwo, 1_000_000_000, 100),
		Asset(DenomThree, 3_000_000_000, 100),
	)
	return poolAB, poolBC
}

// DefaultPools returns PoolOne through PoolFour in registration order.
func DefaultPools() []domain.Pool {
	return []domain.Pool{PoolOne(), PoolTwo(), PoolThree(), PoolFour()}
}
