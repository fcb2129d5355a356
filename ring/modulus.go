package ring

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"math/bits"

	"github.com/tuneinsight/bfvcore/utils"
	"github.com/tuneinsight/bfvcore/utils/sampling"
)

// MaxModulusBitSize is the exclusive upper bound on the bit-size of a Modulus.
// It guarantees that 4q < 2^64, which the lazy NTT relies on.
const MaxModulusBitSize = 62

// ErrInvalidModulus is returned when a modulus is outside of [2, 2^62).
var ErrInvalidModulus = errors.New("invalid modulus")

// Modulus is a modulus p in [2, 2^62) with its precomputed Barrett constants.
//
// Methods without suffix run in constant time with respect to their inputs.
// Methods with the VT suffix may branch on their inputs and must only be used
// on public data.
type Modulus struct {
	p       uint64
	barrett [2]uint64
	// 2^64 mod p
	r64 uint64
}

// NewModulus creates a new Modulus. It returns an error if p < 2 or p >= 2^62.
func NewModulus(p uint64) (*Modulus, error) {

	if p < 2 || utils.BitLen(p) > MaxModulusBitSize {
		return nil, fmt.Errorf("cannot NewModulus: %w: %d is not in [2, 2^%d)", ErrInvalidModulus, p, MaxModulusBitSize)
	}

	m := &Modulus{
		p:       p,
		barrett: BRedParams(p),
	}

	m.r64 = new(big.Int).Mod(new(big.Int).Lsh(big.NewInt(1), 64), new(big.Int).SetUint64(p)).Uint64()

	return m, nil
}

// Modulus returns the value of the modulus.
func (m *Modulus) Modulus() uint64 {
	return m.p
}

// Equal returns true if both moduli have the same value.
func (m *Modulus) Equal(other *Modulus) bool {
	return m == other || (m != nil && other != nil && m.p == other.p)
}

// Add returns a + b mod p for a, b < p.
func (m *Modulus) Add(a, b uint64) uint64 {
	return CRed(a+b, m.p)
}

// AddVT is the variable-time variant of Add.
func (m *Modulus) AddVT(a, b uint64) uint64 {
	return CRedVT(a+b, m.p)
}

// Sub returns a - b mod p for a, b < p.
func (m *Modulus) Sub(a, b uint64) uint64 {
	return CRed(a+m.p-b, m.p)
}

// SubVT is the variable-time variant of Sub.
func (m *Modulus) SubVT(a, b uint64) uint64 {
	return CRedVT(a+m.p-b, m.p)
}

// Neg returns -a mod p for a < p.
func (m *Modulus) Neg(a uint64) uint64 {
	return CRed(m.p-a, m.p)
}

// NegVT is the variable-time variant of Neg.
func (m *Modulus) NegVT(a uint64) uint64 {
	if a == 0 {
		return 0
	}
	return m.p - a
}

// Mul returns a * b mod p for a, b < p.
func (m *Modulus) Mul(a, b uint64) uint64 {
	r := BRedLazy(a, b, m.p, m.barrett)
	return CRed(CRed(r, m.p), m.p)
}

// MulVT is the variable-time variant of Mul.
func (m *Modulus) MulVT(a, b uint64) uint64 {
	r := BRedLazy(a, b, m.p, m.barrett)
	for r >= m.p {
		r -= m.p
	}
	return r
}

// Shoup returns floor(a * 2^64 / p), the Shoup representation of a < p.
// It runs in constant time.
func (m *Modulus) Shoup(a uint64) uint64 {

	// Barrett estimate of the quotient of (a * 2^64) by p, off by at most 2.
	hi, _ := bits.Mul64(a, m.barrett[1])
	s := a*m.barrett[0] + hi

	// r = a * 2^64 - s * p < 3p
	r := -(s * m.p)

	for i := 0; i < 2; i++ {
		t := r - m.p
		ge := 1 ^ uint64(int64(t)>>63)&1
		s += ge
		r = ctSelect(ge, t, r)
	}

	return s
}

// MulShoup returns a * b mod p, where bShoup = m.Shoup(b).
func (m *Modulus) MulShoup(a, b, bShoup uint64) uint64 {
	return CRed(MulShoupLazy(a, b, bShoup, m.p), m.p)
}

// MulShoupVT is the variable-time variant of MulShoup.
func (m *Modulus) MulShoupVT(a, b, bShoup uint64) uint64 {
	return CRedVT(MulShoupLazy(a, b, bShoup, m.p), m.p)
}

// Reduce returns a mod p.
func (m *Modulus) Reduce(a uint64) uint64 {
	return CRed(BRedAddLazy(a, m.p, m.barrett), m.p)
}

// ReduceVT is the variable-time variant of Reduce.
func (m *Modulus) ReduceVT(a uint64) uint64 {
	return CRedVT(BRedAddLazy(a, m.p, m.barrett), m.p)
}

// LazyReduceVT returns a value congruent to a mod p in [0, 2p).
func (m *Modulus) LazyReduceVT(a uint64) uint64 {
	return BRedAddLazy(a, m.p, m.barrett)
}

// ReduceInt64 returns the representative of a mod p in [0, p).
func (m *Modulus) ReduceInt64(a int64) uint64 {
	r := m.Reduce(uint64(a))
	// uint64(a) = a + 2^64 when a < 0
	neg := uint64(a) >> 63
	return m.Sub(r, m.r64&-neg)
}

// ReduceBigint returns the representative of a mod p in [0, p).
// It does not run in constant time.
func (m *Modulus) ReduceBigint(a *big.Int) uint64 {
	return new(big.Int).Mod(a, new(big.Int).SetUint64(m.p)).Uint64()
}

// Pow returns a^e mod p. It runs in constant time with respect to a and e.
func (m *Modulus) Pow(a, e uint64) uint64 {
	r := m.Reduce(1)
	a = m.Reduce(a)
	for i := 0; i < 64; i++ {
		r = ctSelect((e>>i)&1, m.Mul(r, a), r)
		a = m.Mul(a, a)
	}
	return r
}

// Inv returns a^-1 mod p and true, or 0 and false if a is not invertible.
// It does not run in constant time.
func (m *Modulus) Inv(a uint64) (uint64, bool) {
	inv := new(big.Int).ModInverse(new(big.Int).SetUint64(a), new(big.Int).SetUint64(m.p))
	if inv == nil {
		return 0, false
	}
	return inv.Uint64(), true
}

// CenterVT returns the representative of a < p in (-p/2, p/2].
func (m *Modulus) CenterVT(a uint64) int64 {
	if a > m.p>>1 {
		return int64(a) - int64(m.p)
	}
	return int64(a)
}

// AddVec computes a = a + b mod p coefficient-wise.
func (m *Modulus) AddVec(a, b []uint64) {
	checkLength(a, b)
	for i := range a {
		a[i] = m.Add(a[i], b[i])
	}
}

// AddVecVT is the variable-time variant of AddVec.
func (m *Modulus) AddVecVT(a, b []uint64) {
	checkLength(a, b)
	for i := range a {
		a[i] = m.AddVT(a[i], b[i])
	}
}

// SubVec computes a = a - b mod p coefficient-wise.
func (m *Modulus) SubVec(a, b []uint64) {
	checkLength(a, b)
	for i := range a {
		a[i] = m.Sub(a[i], b[i])
	}
}

// SubVecVT is the variable-time variant of SubVec.
func (m *Modulus) SubVecVT(a, b []uint64) {
	checkLength(a, b)
	for i := range a {
		a[i] = m.SubVT(a[i], b[i])
	}
}

// NegVec computes a = -a mod p coefficient-wise.
func (m *Modulus) NegVec(a []uint64) {
	for i := range a {
		a[i] = m.Neg(a[i])
	}
}

// NegVecVT is the variable-time variant of NegVec.
func (m *Modulus) NegVecVT(a []uint64) {
	for i := range a {
		a[i] = m.NegVT(a[i])
	}
}

// MulVec computes a = a * b mod p coefficient-wise.
func (m *Modulus) MulVec(a, b []uint64) {
	checkLength(a, b)
	for i := range a {
		a[i] = m.Mul(a[i], b[i])
	}
}

// MulVecVT is the variable-time variant of MulVec.
func (m *Modulus) MulVecVT(a, b []uint64) {
	checkLength(a, b)
	for i := range a {
		a[i] = m.MulVT(a[i], b[i])
	}
}

// MulShoupVec computes a = a * b mod p coefficient-wise, where bShoup
// is the Shoup representation of b.
func (m *Modulus) MulShoupVec(a, b, bShoup []uint64) {
	checkLength(a, b)
	checkLength(a, bShoup)
	for i := range a {
		a[i] = m.MulShoup(a[i], b[i], bShoup[i])
	}
}

// MulShoupVecVT is the variable-time variant of MulShoupVec.
func (m *Modulus) MulShoupVecVT(a, b, bShoup []uint64) {
	checkLength(a, b)
	checkLength(a, bShoup)
	for i := range a {
		a[i] = m.MulShoupVT(a[i], b[i], bShoup[i])
	}
}

// ScalarMulVec computes a = a * b mod p coefficient-wise for a scalar b < p.
func (m *Modulus) ScalarMulVec(a []uint64, b uint64) {
	bShoup := m.Shoup(b)
	for i := range a {
		a[i] = m.MulShoup(a[i], b, bShoup)
	}
}

// ScalarMulVecVT is the variable-time variant of ScalarMulVec.
func (m *Modulus) ScalarMulVecVT(a []uint64, b uint64) {
	bShoup := m.Shoup(b)
	for i := range a {
		a[i] = m.MulShoupVT(a[i], b, bShoup)
	}
}

// ReduceVec reduces each coefficient of a mod p.
func (m *Modulus) ReduceVec(a []uint64) {
	for i := range a {
		a[i] = m.Reduce(a[i])
	}
}

// ReduceVecVT is the variable-time variant of ReduceVec.
func (m *Modulus) ReduceVecVT(a []uint64) {
	for i := range a {
		a[i] = m.ReduceVT(a[i])
	}
}

// ShoupVec returns the Shoup representations of the coefficients of a.
func (m *Modulus) ShoupVec(a []uint64) (aShoup []uint64) {
	aShoup = make([]uint64, len(a))
	m.ShoupVecInto(a, aShoup)
	return
}

// ShoupVecInto writes the Shoup representations of the coefficients of a on aShoup.
func (m *Modulus) ShoupVecInto(a, aShoup []uint64) {
	checkLength(a, aShoup)
	for i := range a {
		aShoup[i] = m.Shoup(a[i])
	}
}

// CenterVecVT returns the centered representatives in (-p/2, p/2] of the
// coefficients of a.
func (m *Modulus) CenterVecVT(a []uint64) (b []int64) {
	b = make([]int64, len(a))
	for i := range a {
		b[i] = m.CenterVT(a[i])
	}
	return
}

// RandomVec returns a vector of size uniformly random values in [0, p),
// sampled by rejection from prng.
func (m *Modulus) RandomVec(size int, prng sampling.PRNG) (a []uint64) {
	a = make([]uint64, size)
	m.RandomVecInto(a, prng)
	return
}

// RandomVecInto fills a with uniformly random values in [0, p).
func (m *Modulus) RandomVecInto(a []uint64, prng sampling.PRNG) {

	mask := uint64(1)<<utils.BitLen(m.p-1) - 1

	randomBytes := make([]byte, 1024)
	ptr := len(randomBytes)

	for i := range a {
		for {
			if ptr == len(randomBytes) {
				if _, err := prng.Read(randomBytes); err != nil {
					// Sanity check, this error should not happen.
					panic(err)
				}
				ptr = 0
			}

			v := binary.LittleEndian.Uint64(randomBytes[ptr:]) & mask
			ptr += 8

			if v < m.p {
				a[i] = v
				break
			}
		}
	}
}

func checkLength(a, b []uint64) {
	if len(a) != len(b) {
		panic(fmt.Errorf("invalid vector length: %d != %d", len(a), len(b)))
	}
}
