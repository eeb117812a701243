package bitcodec

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundTripLE8(t *testing.T) {
	for v := 0; v <= 0xFF; v++ {
		got := FromBits8(ToBitsLE8(uint8(v)), true)
		assert.Equalf(t, uint8(v), got, "value %d", v)
	}
}

func TestRoundTripBE8(t *testing.T) {
	for v := 0; v <= 0xFF; v++ {
		got := FromBits8(ToBitsBE8(uint8(v)), false)
		assert.Equalf(t, uint8(v), got, "value %d", v)
	}
}

func TestRoundTripLE16(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		v := uint16(r.Intn(1 << 16))
		assert.Equal(t, v, FromBits16(ToBitsLE16(v), true))
	}
}

func TestRoundTripBE16(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for i := 0; i < 1000; i++ {
		v := uint16(r.Intn(1 << 16))
		assert.Equal(t, v, FromBits16(ToBitsBE16(v), false))
	}
}

func TestRoundTripLE64(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for i := 0; i < 1000; i++ {
		v := r.Uint64()
		assert.Equal(t, v, FromBits64(ToBitsLE64(v), true))
	}
}

func TestRoundTripBE64(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	for i := 0; i < 1000; i++ {
		v := r.Uint64()
		assert.Equal(t, v, FromBits64(ToBitsBE64(v), false))
	}
}

func TestReverseByteBitsInvolution(t *testing.T) {
	for v := 0; v <= 0xFF; v++ {
		twice := ReverseByteBits(ReverseByteBits(byte(v)))
		assert.Equalf(t, byte(v), twice, "value %d", v)
	}
}

func TestReverseByteBitsKnownValues(t *testing.T) {
	cases := map[byte]byte{
		0x01: 0x80,
		0x80: 0x01,
		0x0F: 0xF0,
		0xFF: 0xFF,
		0x00: 0x00,
	}
	for in, want := range cases {
		assert.Equal(t, want, ReverseByteBits(in))
	}
}
