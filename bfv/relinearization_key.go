package bfv

import (
	"fmt"

	"github.com/tuneinsight/bfvcore/ring"
)

// RelinearizationKey is a set of key-switching keys from s^2 to s, one per
// level, that reduces ciphertexts of degree 2 to degree 1.
type RelinearizationKey struct {
	params Parameters
	ksk    []*KeySwitchingKey
}

// NewRelinearizationKey generates a relinearization key for every level of
// the parameters of sk.
func NewRelinearizationKey(sk *SecretKey) (rlk *RelinearizationKey, err error) {

	rlk = &RelinearizationKey{
		params: sk.params,
		ksk:    make([]*KeySwitchingKey, sk.params.MaxLevel()+1),
	}

	for level := range rlk.ksk {

		var s2 *ring.Poly
		if s2, err = sk.power(level, 2); err != nil {
			return nil, fmt.Errorf("cannot NewRelinearizationKey: %w", err)
		}

		if rlk.ksk[level], err = NewKeySwitchingKey(sk, s2); err != nil {
			return nil, fmt.Errorf("cannot NewRelinearizationKey: %w", err)
		}
	}

	return
}

// KeySwitchingKey returns the key-switching key of the given level.
func (rlk *RelinearizationKey) KeySwitchingKey(level int) (*KeySwitchingKey, error) {
	if level < 0 || level >= len(rlk.ksk) {
		return nil, fmt.Errorf("cannot KeySwitchingKey: %w: %d", ErrInvalidLevel, level)
	}
	return rlk.ksk[level], nil
}

// Relinearize returns a new ciphertext of degree 1 that decrypts to the same
// plaintext as the given ciphertext of degree 2.
// This method does not run in constant time.
func (rlk *RelinearizationKey) Relinearize(ct *Ciphertext) (ctOut *Ciphertext, err error) {

	if !rlk.params.Equal(&ct.params) {
		return nil, fmt.Errorf("cannot Relinearize: %w", ErrIncompatibleParameters)
	}

	if ct.Degree() != 2 {
		return nil, fmt.Errorf("cannot Relinearize: %w: degree=%d but should be 2", ErrInvalidCiphertext, ct.Degree())
	}

	ksk, err := rlk.KeySwitchingKey(ct.level)
	if err != nil {
		return nil, fmt.Errorf("cannot Relinearize: %w", err)
	}

	c0 := ct.Value[0].CopyNew()
	c0.AllowVariableTimeComputations()

	c1 := ct.Value[1].CopyNew()
	c1.AllowVariableTimeComputations()

	c2 := ct.Value[2].CopyNew()
	c2.AllowVariableTimeComputations()
	c2.ChangeRepresentation(ring.PowerBasis)

	if err = ksk.KeySwitch(c2, c0, c1); err != nil {
		return nil, fmt.Errorf("cannot Relinearize: %w", err)
	}

	return &Ciphertext{
		params: ct.params,
		level:  ct.level,
		Value:  []*ring.Poly{c0, c1},
	}, nil
}
