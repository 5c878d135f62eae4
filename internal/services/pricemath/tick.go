package pricemath

import (
	"errors"

	"github.com/holiman/uint256"
)

const (
	// MinTick is the lowest usable tick on any pool; MaxTick mirrors it.
	MinTick = -887272
	MaxTick = -MinTick
)

var (
	ErrTickRange     = errors.New("tick out of range")
	ErrSqrtPriceRange = errors.New("sqrt price out of range")

	// MinSqrtRatio is the sqrt price at MinTick; MaxSqrtRatio at MaxTick.
	MinSqrtRatio    = uint256.NewInt(4295128739)
	MaxSqrtRatio, _ = uint256.FromDecimal("1461446703485210103287273052203988822378723970342")

	// sqrt(1.0001^(2^i)) * 2^128 for i = 0..19, used by SqrtRatioAtTick.
	tickFactors = mustFactors(
		"0xfffcb933bd6fad37aa2d162d1a594001",
		"0xfff97272373d413259a46990580e213a",
		"0xfff2e50f5f656932ef12357cf3c7fdcc",
		"0xffe5caca7e10e4e61c3624eaa0941cd0",
		"0xffcb9843d60f6159c9db58835c926644",
		"0xff973b41fa98c081472e6896dfb254c0",
		"0xff2ea16466c96a3843ec78b326b52861",
		"0xfe5dee046a99a2a811c461f1969c3053",
		"0xfcbe86c7900a88aedcffc83b479aa3a4",
		"0xf987a7253ac413176f2b074cf7815e54",
		"0xf3392b0822b70005940c7a398e4b70f3",
		"0xe7159475a2c29b7443b29c7fa6e889d9",
		"0xd097f3bdfd2022b8845ad8f792aa5825",
		"0xa9f746462d870fdf8a65dc1f90e061e5",
		"0x70d869a156d2a1b890bb3df62baf32f7",
		"0x31be135f97d08fd981231505542fcfa6",
		"0x9aa508b5b7a84e1c677de54f3e99bc9",
		"0x5d6af8dedb81196699c329225ee604",
		"0x2216e584f5fa1ea926041bedfe98",
		"0x48a170391f7dc42444e8fa2",
	)

	oneX128, _        = uint256.FromHex("0x100000000000000000000000000000000")
	magicSqrt10001, _ = uint256.FromHex("0x3627A301D71055774C85")
	magicTickLow, _   = uint256.FromHex("0x28F6481AB7F045A5AF012A19D003AAA")
	magicTickHigh, _  = uint256.FromHex("0xDB2DF09E81959A81455E260799A0632F")

	q32 = uint256.NewInt(1 << 32)
)

func mustFactors(hexes ...string) []*uint256.Int {
	out := make([]*uint256.Int, len(hexes))
	for i, h := range hexes {
		v, err := uint256.FromHex(h)
		if err != nil {
			panic(err)
		}
		out[i] = v
	}
	return out
}

// SqrtRatioAtTick returns sqrt(1.0001^tick) as a Q64.96.
func SqrtRatioAtTick(tick int) (*uint256.Int, error) {
	if tick < MinTick || tick > MaxTick {
		return nil, ErrTickRange
	}
	absTick := tick
	if tick < 0 {
		absTick = -tick
	}

	var ratio *uint256.Int
	if absTick&0x1 != 0 {
		ratio = new(uint256.Int).Set(tickFactors[0])
	} else {
		ratio = new(uint256.Int).Set(oneX128)
	}
	for i := 1; i < len(tickFactors); i++ {
		if absTick&(1<<i) != 0 {
			ratio.Mul(ratio, tickFactors[i])
			ratio.Rsh(ratio, 128)
		}
	}
	if tick > 0 {
		ratio = new(uint256.Int).Div(MaxUint256, ratio)
	}

	// Q128 -> Q96, rounding up so the tick of the result round-trips.
	if !new(uint256.Int).Mod(ratio, q32).IsZero() {
		return new(uint256.Int).AddUint64(new(uint256.Int).Div(ratio, q32), 1), nil
	}
	return new(uint256.Int).Div(ratio, q32), nil
}

// TickAtSqrtRatio returns the largest tick whose sqrt ratio is at most the
// given Q64.96 sqrt price (rounds down).
func TickAtSqrtRatio(sqrtPriceX96 *uint256.Int) (int, error) {
	if sqrtPriceX96.Cmp(MinSqrtRatio) < 0 || sqrtPriceX96.Cmp(MaxSqrtRatio) >= 0 {
		return 0, ErrSqrtPriceRange
	}

	sqrtRatioX128 := new(uint256.Int).Lsh(sqrtPriceX96, 32)
	msb := sqrtRatioX128.BitLen() - 1

	var r *uint256.Int
	if msb >= 128 {
		r = new(uint256.Int).Rsh(sqrtRatioX128, uint(msb-127))
	} else {
		r = new(uint256.Int).Lsh(sqrtRatioX128, uint(127-msb))
	}

	// log2 in Q64, refined 14 bits past the integer part.
	log2 := new(uint256.Int).Lsh(
		new(uint256.Int).Sub(uint256.NewInt(uint64(msb)), uint256.NewInt(128)), 64)

	for i := 0; i < 14; i++ {
		r.Mul(r, r)
		r.Rsh(r, 127)
		f := new(uint256.Int).Rsh(r, 128)
		log2.Or(log2, new(uint256.Int).Lsh(f, uint(63-i)))
		r.Rsh(r, uint(f.Uint64()))
	}

	logSqrt10001 := new(uint256.Int).Mul(log2, magicSqrt10001)

	// log2 is two's complement for prices below 1, so the final shifts must
	// be arithmetic.
	tickLow := int(int64(new(uint256.Int).SRsh(
		new(uint256.Int).Sub(logSqrt10001, magicTickLow), 128).Uint64()))
	tickHigh := int(int64(new(uint256.Int).SRsh(
		new(uint256.Int).Add(logSqrt10001, magicTickHigh), 128).Uint64()))

	if tickLow == tickHigh {
		return tickLow, nil
	}
	ratio, err := SqrtRatioAtTick(tickHigh)
	if err != nil {
		return 0, err
	}
	if ratio.Cmp(sqrtPriceX96) <= 0 {
		return tickHigh, nil
	}
	return tickLow, nil
}
