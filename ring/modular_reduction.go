package ring

import (
	"math/big"
	"math/bits"
)

//==========================
//=== BARRETT REDUCTION  ===
//==========================

// BRedParams computes the parameters required for the Barrett reduction with
// a radix of 2^128, i.e. floor(2^128/q) split as {hi, lo}.
func BRedParams(q uint64) (params [2]uint64) {
	bigR := new(big.Int).Lsh(big.NewInt(1), 128)
	bigR.Quo(bigR, new(big.Int).SetUint64(q))

	mhi := new(big.Int).Rsh(bigR, 64).Uint64()
	mlo := bigR.Uint64()

	return [2]uint64{mhi, mlo}
}

// BRedAddLazy reduces a 64 bit integer x by q and returns a value in [0, 2q-1].
// It runs in constant time.
func BRedAddLazy(x, q uint64, u [2]uint64) uint64 {
	mhi, mlo := bits.Mul64(x, u[0])
	lhi, _ := bits.Mul64(x, u[1])
	_, carry := bits.Add64(mlo, lhi, 0)
	return x - (mhi+carry)*q
}

// BRedLazy operates a 64x64 bit multiplication with a Barrett reduction
// and returns a value in [0, 3q-1]. It runs in constant time.
func BRedLazy(x, y, q uint64, u [2]uint64) (r uint64) {

	var lhi, mhi, mlo, s0, s1, carry uint64

	ahi, alo := bits.Mul64(x, y)

	// alo*ulo

	lhi, _ = bits.Mul64(alo, u[1])

	// ahi*ulo + alo*uhi

	mhi, mlo = bits.Mul64(alo, u[0])

	s0, carry = bits.Add64(mlo, lhi, 0)

	s1 = mhi + carry

	mhi, mlo = bits.Mul64(ahi, u[1])

	_, carry = bits.Add64(mlo, s0, 0)

	lhi = mhi + carry

	// ahi*uhi

	s0 = ahi*u[0] + s1 + lhi

	return alo - s0*q
}

//=============================
//=== SHOUP MULTIPLICATION  ===
//=============================

// MulShoupLazy returns x*w mod q in [0, 2q-1], where wShoup = floor(w*2^64/q)
// and w < q. It runs in constant time for any x.
func MulShoupLazy(x, w, wShoup, q uint64) uint64 {
	hi, _ := bits.Mul64(x, wShoup)
	return x*w - hi*q
}

//===============================
//==== CONDITIONAL REDUCTION ====
//===============================

// CRed returns a mod q, where a is required to be in the range [0, 2q-1].
// It runs in constant time and requires q < 2^63.
func CRed(a, q uint64) uint64 {
	t := a - q
	return t + (q & uint64(int64(t)>>63))
}

// CRedVT is identical to CRed but branches on a.
func CRedVT(a, q uint64) uint64 {
	if a >= q {
		return a - q
	}
	return a
}

// ctSelect returns a if cond == 1 and b if cond == 0.
func ctSelect(cond, a, b uint64) uint64 {
	mask := -cond
	return b ^ (mask & (a ^ b))
}
