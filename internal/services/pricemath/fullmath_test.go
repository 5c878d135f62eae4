package pricemath

import (
	"testing"

	"github.com/holiman/uint256"
)

func TestMulDiv(t *testing.T) {
	tests := []struct {
		a, b, den, want uint64
	}{
		{500, 2000, 1000, 1000},
		{7, 3, 2, 10},
		{0, 12345, 7, 0},
		{1 << 32, 1 << 32, 1 << 16, 1 << 48},
	}
	for _, tt := range tests {
		got := MulDiv(uint256.NewInt(tt.a), uint256.NewInt(tt.b), uint256.NewInt(tt.den))
		if got.Uint64() != tt.want {
			t.Errorf("MulDiv(%d, %d, %d) = %s, want %d", tt.a, tt.b, tt.den, got, tt.want)
		}
	}
}

func TestMulDivFullPrecision(t *testing.T) {
	// (2^200 * 2^100) / 2^128 exceeds 256 bits in the intermediate product
	// but fits in the result.
	a := new(uint256.Int).Lsh(One, 200)
	b := new(uint256.Int).Lsh(One, 100)
	den := new(uint256.Int).Lsh(One, 128)
	want := new(uint256.Int).Lsh(One, 172)
	if got := MulDiv(a, b, den); !got.Eq(want) {
		t.Errorf("MulDiv = %s, want %s", got, want)
	}
}

func TestMulDivOverflowPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on 256-bit overflow")
		}
	}()
	MulDiv(MaxUint256, MaxUint256, One)
}

func TestMulDivRoundingUp(t *testing.T) {
	tests := []struct {
		a, b, den, want uint64
	}{
		{7, 3, 2, 11},
		{500, 2000, 1000, 1000},
		{1, 1, 3, 1},
		{0, 5, 3, 0},
	}
	for _, tt := range tests {
		got := MulDivRoundingUp(uint256.NewInt(tt.a), uint256.NewInt(tt.b), uint256.NewInt(tt.den))
		if got.Uint64() != tt.want {
			t.Errorf("MulDivRoundingUp(%d, %d, %d) = %s, want %d", tt.a, tt.b, tt.den, got, tt.want)
		}
	}
}

func TestDivRoundingUp(t *testing.T) {
	tests := []struct {
		a, b, want uint64
	}{
		{10, 5, 2},
		{11, 5, 3},
		{0, 5, 0},
		{1, 5, 1},
	}
	for _, tt := range tests {
		got := DivRoundingUp(uint256.NewInt(tt.a), uint256.NewInt(tt.b))
		if got.Uint64() != tt.want {
			t.Errorf("DivRoundingUp(%d, %d) = %s, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
