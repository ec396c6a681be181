// Package rand implements the linear congruential generator used by legacy world generation. Its output is
// bit-compatible with java.util.Random, so that a seed produces the same world on every platform and
// matches reference worlds generated by older implementations.
package rand

import (
	"math"
)

const (
	multiplier = 0x5DEECE66D
	addend     = 0xB
	mask       = (1 << 48) - 1
)

// Source is a stream of pseudo-random values. Placement algorithms consume randomness through Source only,
// which allows tests to substitute scripted streams.
type Source interface {
	// Int31n returns a value in the range [0, n). It panics if n <= 0.
	Int31n(n int32) int32
	// Int63 returns a 64-bit value, spanning the full int64 range.
	Int63() int64
	// Float32 returns a value in the range [0, 1).
	Float32() float32
	// Float64 returns a value in the range [0, 1).
	Float64() float64
	// Bool returns a uniformly distributed boolean.
	Bool() bool
}

// Random is a 48-bit linear congruential generator. A Random is not safe for concurrent use; every
// operation creates its own.
type Random struct {
	seed int64
}

// NewRandom returns a Random seeded with the seed passed.
func NewRandom(seed int64) *Random {
	r := &Random{}
	r.SetSeed(seed)
	return r
}

// SetSeed resets the Random to the state it has right after NewRandom(seed).
func (r *Random) SetSeed(seed int64) {
	r.seed = (seed ^ multiplier) & mask
}

func (r *Random) next(bits uint) int32 {
	r.seed = (r.seed*multiplier + addend) & mask
	return int32(r.seed >> (48 - bits))
}

// Int31 returns a non-negative 31-bit value.
func (r *Random) Int31() int32 {
	return r.next(31)
}

// Int31n returns a value in the range [0, n). It panics if n <= 0.
func (r *Random) Int31n(n int32) int32 {
	if n <= 0 {
		panic("rand: invalid argument to Int31n")
	}
	if n&-n == n {
		return int32((int64(n) * int64(r.next(31))) >> 31)
	}
	for {
		bits := r.next(31)
		val := bits % n
		// Reject values from the incomplete final interval. The check relies on int32 overflow.
		if bits-val+(n-1) >= 0 {
			return val
		}
	}
}

// Range returns a value in the range [min, max].
func (r *Random) Range(min, max int32) int32 {
	return min + r.Int31n(max-min+1)
}

// Int63 returns a 64-bit value built from two 32-bit draws. Unlike math/rand, the value may be negative.
func (r *Random) Int63() int64 {
	hi := int64(r.next(32))
	lo := int64(r.next(32))
	return (hi << 32) + lo
}

// Float32 returns a value in the range [0, 1) with 24 bits of precision.
func (r *Random) Float32() float32 {
	return float32(r.next(24)) / (1 << 24)
}

// Float64 returns a value in the range [0, 1) with 53 bits of precision.
func (r *Random) Float64() float64 {
	return float64((int64(r.next(26))<<27)+int64(r.next(27))) * (1.0 / (1 << 53))
}

// Bool returns a uniformly distributed boolean.
func (r *Random) Bool() bool {
	return r.next(1) != 0
}

// Gaussian returns a normally distributed value with mean 0 and standard deviation 1, using the polar
// method.
func (r *Random) Gaussian() float64 {
	for {
		v1 := 2*r.Float64() - 1
		v2 := 2*r.Float64() - 1
		s := v1*v1 + v2*v2
		if s < 1 && s != 0 {
			return v1 * math.Sqrt(-2*math.Log(s)/s)
		}
	}
}

// Read fills p with pseudo-random bytes so that a Random may be used wherever an io.Reader is accepted. It
// never returns an error.
func (r *Random) Read(p []byte) (n int, err error) {
	for i := 0; i < len(p); {
		v := r.next(32)
		for j := 0; j < 4 && i < len(p); j++ {
			p[i] = byte(v)
			v >>= 8
			i++
		}
	}
	return len(p), nil
}
