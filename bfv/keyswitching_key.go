package bfv

import (
	"bufio"
	"fmt"
	"io"
	"math/big"

	"github.com/tuneinsight/bfvcore/ring"
	"github.com/tuneinsight/bfvcore/utils/buffer"
	"github.com/tuneinsight/bfvcore/utils/sampling"
	"github.com/tuneinsight/bfvcore/utils/structs"
)

// KeySwitchingKey is a key that re-encrypts a polynomial multiplied by a
// secret "from" into a degree-1 ciphertext under the secret key s.
//
// It is a gadget encryption of from in the RNS basis of its level: for
// each limb i, (c0_i, c1_i) satisfies c0_i + c1_i*s = e_i + g_i*from, where
// g_i is the Garner coefficient of the i-th modulus. The polynomials c1_i
// are derived from a public seed, so that only c0 is serialized.
type KeySwitchingKey struct {
	params Parameters
	level  int
	seed   sampling.Seed

	c0 structs.Vector[*ring.Poly]
	c1 structs.Vector[*ring.Poly]
}

// NewKeySwitchingKey generates a key switching from the secret from to the
// secret key sk. The level of the key is the level of the context of from,
// which can be in any representation.
func NewKeySwitchingKey(sk *SecretKey, from *ring.Poly) (ksk *KeySwitchingKey, err error) {

	level, err := sk.params.LevelOfContext(from.Context())
	if err != nil {
		return nil, fmt.Errorf("cannot NewKeySwitchingKey: %w", err)
	}

	ctx, err := sk.params.ContextAtLevel(level)
	if err != nil {
		return nil, fmt.Errorf("cannot NewKeySwitchingKey: %w", err)
	}

	seed, err := sampling.NewSeed(sk.prng)
	if err != nil {
		return nil, fmt.Errorf("cannot NewKeySwitchingKey: %w", err)
	}

	ksk = &KeySwitchingKey{
		params: sk.params,
		level:  level,
		seed:   seed,
		c1:     generateC1(ctx, seed),
	}

	if ksk.c0, err = sk.generateC0(level, from, ksk.c1); err != nil {
		return nil, fmt.Errorf("cannot NewKeySwitchingKey: %w", err)
	}

	return
}

// generateC1 derives one uniformly random polynomial per limb of ctx from seed.
// The i-th polynomial is derived from the i-th seed read from the PRNG keyed by seed.
func generateC1(ctx *ring.Context, seed sampling.Seed) (c1 structs.Vector[*ring.Poly]) {

	prng := sampling.NewKeyedPRNGFromSeed(seed)

	c1 = make(structs.Vector[*ring.Poly], ctx.ModuliCount())

	for i := range c1 {

		seedi, err := sampling.NewSeed(prng)
		if err != nil {
			// Sanity check, this error should not happen.
			panic(err)
		}

		c1[i] = ring.NewRandomPolyFromSeed(ctx, ring.NttShoup, seedi)
		c1[i].AllowVariableTimeComputations()
	}

	return
}

// generateC0 returns c0_i = e_i - c1_i*s + g_i*from, in NttShoup.
func (sk *SecretKey) generateC0(level int, from *ring.Poly, c1 structs.Vector[*ring.Poly]) (c0 structs.Vector[*ring.Poly], err error) {

	s, err := sk.power(level, 1)
	if err != nil {
		return nil, err
	}

	fromPowerBasis := from.CopyNew()
	defer fromPowerBasis.Zeroize()
	fromPowerBasis.ChangeRepresentation(ring.PowerBasis)

	rns := fromPowerBasis.Context().RNS()

	c0 = make(structs.Vector[*ring.Poly], len(c1))

	for i := range c0 {

		garner, ok := rns.Garner(i)
		if !ok {
			return nil, fmt.Errorf("%w: no Garner coefficient for limb %d", ErrInvalidLimbCount, i)
		}

		if c0[i], err = sk.generateC0Limb(c1[i], s, fromPowerBasis, garner); err != nil {
			for _, p := range c0[:i] {
				p.Zeroize()
			}
			return nil, err
		}
	}

	return
}

func (sk *SecretKey) generateC0Limb(c1, s, from *ring.Poly, garner *big.Int) (b *ring.Poly, err error) {

	as := c1.CopyNew()
	defer as.Zeroize()
	as.ChangeRepresentation(ring.Ntt)
	as.Mul(s)
	as.ChangeRepresentation(ring.PowerBasis)

	gfrom := from.CopyNew()
	defer gfrom.Zeroize()
	gfrom.MulScalarBigint(garner)

	if b, err = ring.NewSmallPoly(from.Context(), ring.PowerBasis, sk.params.Variance(), sk.prng); err != nil {
		return nil, err
	}

	b.Sub(as)
	b.Add(gfrom)

	// b is now an encryption and can be made public.
	b.AllowVariableTimeComputations()
	b.ChangeRepresentation(ring.NttShoup)

	return b, nil
}

// Parameters returns the parameters of the key.
func (ksk *KeySwitchingKey) Parameters() Parameters {
	return ksk.params
}

// Level returns the level of the key.
func (ksk *KeySwitchingKey) Level() int {
	return ksk.level
}

// Seed returns the seed from which the c1 polynomials are derived.
func (ksk *KeySwitchingKey) Seed() sampling.Seed {
	return ksk.seed
}

// KeySwitch computes acc0 += sum_i p_i*c0_i and acc1 += sum_i p_i*c1_i, where
// p_i is the i-th limb of p lifted to the context of the key. Then
// acc0 + acc1*s is increased by p*from plus a small error.
//
// p must be in PowerBasis and have as many limbs as the key, acc0 and acc1
// must be in Ntt in the context of the key.
// This method does not run in constant time.
func (ksk *KeySwitchingKey) KeySwitch(p, acc0, acc1 *ring.Poly) (err error) {

	if p.Representation() != ring.PowerBasis {
		panic(fmt.Errorf("cannot KeySwitch: input must be in %s but is in %s", ring.PowerBasis, p.Representation()))
	}

	if p.N() != ksk.params.N() {
		panic(fmt.Errorf("cannot KeySwitch: input has degree %d but key has degree %d", p.N(), ksk.params.N()))
	}

	if p.ModuliCount() != len(ksk.c0) {
		return fmt.Errorf("cannot KeySwitch: %w: input has %d limbs but key has %d", ErrInvalidLimbCount, p.ModuliCount(), len(ksk.c0))
	}

	ctx, err := ksk.params.ContextAtLevel(ksk.level)
	if err != nil {
		return fmt.Errorf("cannot KeySwitch: %w", err)
	}

	for i := range ksk.c0 {

		var col *ring.Poly
		if col, err = ring.NewPolyFromUint64(ctx, ring.PowerBasis, p.Limb(i)); err != nil {
			return fmt.Errorf("cannot KeySwitch: %w", err)
		}

		col.AllowVariableTimeComputations()
		col.ChangeRepresentation(ring.Ntt)

		tmp := col.CopyNew()
		tmp.AllowVariableTimeComputations()
		tmp.Mul(ksk.c0[i])
		acc0.Add(tmp)

		col.Mul(ksk.c1[i])
		acc1.Add(col)
	}

	return
}

// Equal performs a deep equal.
func (ksk *KeySwitchingKey) Equal(other *KeySwitchingKey) bool {

	if ksk == other {
		return true
	}

	if ksk == nil || other == nil {
		return false
	}

	return ksk.params.Equal(&other.params) &&
		ksk.level == other.level &&
		ksk.seed == other.seed &&
		ksk.c0.Equal(other.c0) &&
		ksk.c1.Equal(other.c1)
}

// BinarySize returns the serialized size of the object in bytes.
func (ksk *KeySwitchingKey) BinarySize() int {
	return 32 + 8 + sampling.SeedSize + ksk.c0.BinarySize()
}

// WriteTo writes the object on an io.Writer. It implements the io.WriterTo
// interface, and will write exactly object.BinarySize() bytes on w.
//
// The encoding is the fingerprint of the parameters, the level, the seed of
// the c1 polynomials and the vector of c0 polynomials.
//
// Unless w implements the buffer.Writer interface (see utils/buffer/writer.go),
// it will be wrapped into a bufio.Writer.
func (ksk *KeySwitchingKey) WriteTo(w io.Writer) (n int64, err error) {

	switch w := w.(type) {
	case buffer.Writer:

		var inc int64

		fingerprint := ksk.params.Fingerprint()

		if inc, err = buffer.Write(w, fingerprint[:]); err != nil {
			return n + inc, err
		}

		n += inc

		if inc, err = buffer.WriteAsUint64(w, ksk.level); err != nil {
			return n + inc, err
		}

		n += inc

		if inc, err = buffer.Write(w, ksk.seed[:]); err != nil {
			return n + inc, err
		}

		n += inc

		if inc, err = ksk.c0.WriteTo(w); err != nil {
			return n + inc, err
		}

		n += inc

		return n, w.Flush()

	default:
		return ksk.WriteTo(bufio.NewWriter(w))
	}
}

// ReadFrom reads on the object from an io.Reader. It implements the
// io.ReaderFrom interface.
//
// The receiver must carry the parameters the key is expected to be defined
// over (see [NewKeySwitchingKeyFromBinary]). The c1 polynomials are
// regenerated from the decoded seed.
//
// Unless r implements the buffer.Reader interface (see utils/buffer/reader.go),
// it will be wrapped into a bufio.Reader.
func (ksk *KeySwitchingKey) ReadFrom(r io.Reader) (n int64, err error) {

	if ksk.params.isZero() {
		return 0, fmt.Errorf("cannot ReadFrom: receiver must carry parameters")
	}

	switch r := r.(type) {
	case buffer.Reader:

		var inc int64

		var fingerprint [32]byte
		if inc, err = buffer.Read(r, fingerprint[:]); err != nil {
			return n + inc, fmt.Errorf("cannot ReadFrom: %w: %w", ErrInvalidKeySwitchingKey, err)
		}

		n += inc

		if fingerprint != ksk.params.Fingerprint() {
			return n, fmt.Errorf("cannot ReadFrom: %w", ErrIncompatibleParameters)
		}

		var level int
		if inc, err = buffer.ReadAsUint64(r, &level); err != nil {
			return n + inc, fmt.Errorf("cannot ReadFrom: %w: %w", ErrInvalidKeySwitchingKey, err)
		}

		n += inc

		var ctx *ring.Context
		if ctx, err = ksk.params.ContextAtLevel(level); err != nil {
			return n, fmt.Errorf("cannot ReadFrom: %w", err)
		}

		var seed sampling.Seed
		if inc, err = buffer.Read(r, seed[:]); err != nil {
			return n + inc, fmt.Errorf("cannot ReadFrom: %w: %w", ErrInvalidSeed, err)
		}

		n += inc

		c0 := newPublicPolys(ctx, ring.NttShoup, ctx.ModuliCount())

		if inc, err = c0.ReadFrom(r); err != nil {
			return n + inc, fmt.Errorf("cannot ReadFrom: %w: %w", ErrInvalidKeySwitchingKey, err)
		}

		n += inc

		for _, p := range c0 {
			if p.Representation() != ring.NttShoup {
				return n, fmt.Errorf("cannot ReadFrom: %w: c0 must be in %s", ErrInvalidKeySwitchingKey, ring.NttShoup)
			}
			p.AllowVariableTimeComputations()
		}

		ksk.level = level
		ksk.seed = seed
		ksk.c0 = c0
		ksk.c1 = generateC1(ctx, seed)

		return n, nil

	default:
		return ksk.ReadFrom(bufio.NewReader(r))
	}
}

// MarshalBinary encodes the object into a binary form on a newly allocated slice of bytes.
func (ksk *KeySwitchingKey) MarshalBinary() (p []byte, err error) {
	buf := buffer.NewBufferSize(ksk.BinarySize())
	_, err = ksk.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a slice of bytes generated by
// MarshalBinary or WriteTo on the object.
func (ksk *KeySwitchingKey) UnmarshalBinary(p []byte) (err error) {
	_, err = ksk.ReadFrom(buffer.NewBuffer(p))
	return
}

// NewKeySwitchingKeyFromBinary decodes a key-switching key defined over the given parameters.
func NewKeySwitchingKeyFromBinary(params Parameters, data []byte) (*KeySwitchingKey, error) {
	ksk := &KeySwitchingKey{params: params}
	if err := ksk.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return ksk, nil
}
