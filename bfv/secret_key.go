package bfv

import (
	"fmt"
	"runtime"

	"github.com/tuneinsight/bfvcore/ring"
	"github.com/tuneinsight/bfvcore/utils"
	"github.com/tuneinsight/bfvcore/utils/sampling"
)

// SecretKey is a BFV secret key: a polynomial s with small coefficients.
//
// The key caches, for each level, the powers s, s^2, ... in the NttShoup
// representation, which are grown on demand by decryption. All of them are
// wiped by [SecretKey.Zeroize], which is also called when the key is garbage
// collected.
//
// A SecretKey is not safe for concurrent use.
type SecretKey struct {
	params Parameters
	coeffs []int64
	prng   sampling.PRNG

	// powers[level][i] = s^(i+1)
	powers [][]*ring.Poly
}

// NewSecretKey samples a new secret key with coefficients drawn from a
// centered binomial distribution of variance params.Variance(), using
// crypto/rand.
func NewSecretKey(params Parameters) (*SecretKey, error) {

	prng, err := sampling.NewPRNG()
	if err != nil {
		return nil, fmt.Errorf("cannot NewSecretKey: %w", err)
	}

	return NewSecretKeyWithPRNG(params, prng)
}

// NewSecretKeyWithPRNG samples a new secret key from the given PRNG. The PRNG
// is kept by the key to sample the seeds and errors of encryptions and
// key-switching keys.
func NewSecretKeyWithPRNG(params Parameters, prng sampling.PRNG) (*SecretKey, error) {

	coeffs, err := sampling.CenteredBinomial(prng, params.N(), params.Variance())
	if err != nil {
		return nil, fmt.Errorf("cannot NewSecretKey: %w", err)
	}

	return newSecretKey(params, coeffs, prng)
}

// NewSecretKeyFromCoefficients creates a secret key from its N signed coefficients.
func NewSecretKeyFromCoefficients(params Parameters, coeffs []int64) (*SecretKey, error) {

	if len(coeffs) != params.N() {
		return nil, fmt.Errorf("cannot NewSecretKeyFromCoefficients: %w: %d coefficients but N=%d", ErrInvalidSecretKey, len(coeffs), params.N())
	}

	prng, err := sampling.NewPRNG()
	if err != nil {
		return nil, fmt.Errorf("cannot NewSecretKeyFromCoefficients: %w", err)
	}

	return newSecretKey(params, append([]int64{}, coeffs...), prng)
}

// newSecretKey takes ownership of coeffs.
func newSecretKey(params Parameters, coeffs []int64, prng sampling.PRNG) (*SecretKey, error) {

	sk := &SecretKey{
		params: params,
		coeffs: coeffs,
		prng:   prng,
		powers: make([][]*ring.Poly, params.MaxLevel()+1),
	}

	runtime.SetFinalizer(sk, func(sk *SecretKey) { sk.Zeroize() })

	return sk, nil
}

// WithPRNG sets the PRNG from which the key samples seeds and errors,
// and returns the key.
func (sk *SecretKey) WithPRNG(prng sampling.PRNG) *SecretKey {
	sk.prng = prng
	return sk
}

// Parameters returns the parameters of the key.
func (sk *SecretKey) Parameters() Parameters {
	return sk.params
}

// Zeroize wipes the coefficients of the key and all its cached powers.
func (sk *SecretKey) Zeroize() {
	utils.Zeroize(sk.coeffs)
	for _, powers := range sk.powers {
		for _, p := range powers {
			p.Zeroize()
		}
	}
	sk.powers = make([][]*ring.Poly, len(sk.powers))
}

// power returns s^i at the given level, in NttShoup.
func (sk *SecretKey) power(level, i int) (*ring.Poly, error) {

	ctx, err := sk.params.ContextAtLevel(level)
	if err != nil {
		return nil, err
	}

	powers := sk.powers[level]

	if len(powers) == 0 {

		s, err := ring.NewPolyFromInt64(ctx, ring.PowerBasis, sk.coeffs)
		if err != nil {
			return nil, err
		}

		s.ChangeRepresentation(ring.NttShoup)
		powers = append(powers, s)
	}

	for len(powers) < i {
		next := powers[len(powers)-1].CopyNew()
		next.ChangeRepresentation(ring.Ntt)
		next.Mul(powers[0])
		next.ChangeRepresentation(ring.NttShoup)
		powers = append(powers, next)
	}

	sk.powers[level] = powers

	return powers[i-1], nil
}

// Encrypt encrypts a plaintext into a new ciphertext of degree 1 at the
// level of the plaintext.
//
// The ciphertext is (b, a) with a uniformly random and derived from a fresh
// seed, and b = e - a*s + Delta*m. The secret-dependent computations run in
// constant time, the returned ciphertext allows variable-time computations.
func (sk *SecretKey) Encrypt(pt *Plaintext) (ct *Ciphertext, err error) {

	if !sk.params.Equal(&pt.params) {
		return nil, fmt.Errorf("cannot Encrypt: %w", ErrIncompatibleParameters)
	}

	ctx, err := sk.params.ContextAtLevel(pt.level)
	if err != nil {
		return nil, fmt.Errorf("cannot Encrypt: %w", err)
	}

	s, err := sk.power(pt.level, 1)
	if err != nil {
		return nil, fmt.Errorf("cannot Encrypt: %w", err)
	}

	seed, err := sampling.NewSeed(sk.prng)
	if err != nil {
		return nil, fmt.Errorf("cannot Encrypt: %w", err)
	}

	a := ring.NewRandomPolyFromSeed(ctx, ring.Ntt, seed)

	as := a.CopyNew()
	defer as.Zeroize()
	as.Mul(s)

	b, err := ring.NewSmallPoly(ctx, ring.Ntt, sk.params.Variance(), sk.prng)
	if err != nil {
		return nil, fmt.Errorf("cannot Encrypt: %w", err)
	}

	b.Sub(as)
	b.Add(pt.polyNTT)

	a.AllowVariableTimeComputations()
	b.AllowVariableTimeComputations()

	return &Ciphertext{
		params: sk.params,
		level:  pt.level,
		seed:   &seed,
		Value:  []*ring.Poly{b, a},
	}, nil
}

// phase returns c0 + c1*s + c2*s^2 + ... in PowerBasis, computed in constant time.
func (sk *SecretKey) phase(ct *Ciphertext) (c *ring.Poly, err error) {

	if !sk.params.Equal(&ct.params) {
		return nil, ErrIncompatibleParameters
	}

	ctx, err := sk.params.ContextAtLevel(ct.level)
	if err != nil {
		return nil, err
	}

	if len(ct.Value) == 0 {
		return nil, fmt.Errorf("%w: empty ciphertext", ErrInvalidCiphertext)
	}

	for _, p := range ct.Value {
		if !p.Context().Equal(ctx) || p.Representation() != ring.Ntt {
			return nil, fmt.Errorf("%w: polynomials must be in the context of level %d and in Ntt", ErrInvalidCiphertext, ct.level)
		}
	}

	c = ct.Value[0].CopyNew()

	for i := 1; i < len(ct.Value); i++ {

		var si *ring.Poly
		if si, err = sk.power(ct.level, i); err != nil {
			c.Zeroize()
			return nil, err
		}

		cis := ct.Value[i].CopyNew()
		cis.Mul(si)
		c.Add(cis)
		cis.Zeroize()
	}

	c.ChangeRepresentation(ring.PowerBasis)

	return c, nil
}

// Decrypt decrypts a ciphertext of any degree into a new plaintext.
// The returned plaintext carries no encoding.
// The scaling of the phase by T/Q uses math/big and does not run in constant
// time; its scratch space is zeroed before returning.
func (sk *SecretKey) Decrypt(ct *Ciphertext) (pt *Plaintext, err error) {

	c, err := sk.phase(ct)
	if err != nil {
		return nil, fmt.Errorf("cannot Decrypt: %w", err)
	}
	defer c.Zeroize()

	scaler, err := sk.params.Scaler(ct.level)
	if err != nil {
		return nil, fmt.Errorf("cannot Decrypt: %w", err)
	}

	d := scaler.Scale(c, false)[0]

	// d is in [0, T]: rounding maps phases close to Q to T, which the reduction maps to 0.
	sk.params.PlaintextModulus().ReduceVec(d)

	if pt, err = newPlaintext(sk.params, d, nil, ct.level); err != nil {
		utils.Zeroize(d)
		return nil, fmt.Errorf("cannot Decrypt: %w", err)
	}

	return
}

// MeasureNoiseVariableTime returns the bit-size of the largest coefficient,
// in absolute value, of the error of the ciphertext.
//
// This method does not run in constant time and leaks information about
// the secret key. It must only be used for diagnostics.
func (sk *SecretKey) MeasureNoiseVariableTime(ct *Ciphertext) (noise int, err error) {

	pt, err := sk.Decrypt(ct)
	if err != nil {
		return 0, fmt.Errorf("cannot MeasureNoiseVariableTime: %w", err)
	}
	defer pt.Zeroize()

	m := pt.polyNTT.CopyNew()
	defer m.Zeroize()
	m.ChangeRepresentation(ring.PowerBasis)

	c, err := sk.phase(ct)
	if err != nil {
		return 0, fmt.Errorf("cannot MeasureNoiseVariableTime: %w", err)
	}
	defer c.Zeroize()

	c.Sub(m)

	Q := c.Context().RNS().Modulus()

	for _, coeff := range c.ToBigint() {
		bitLen := coeff.BitLen()
		coeff.Sub(Q, coeff)
		noise = utils.Max(noise, utils.Min(bitLen, coeff.BitLen()))
	}

	return
}
