package bfv

import "errors"

var (
	// ErrInvalidParameters is returned when a parameter literal does not define a valid parameter set.
	ErrInvalidParameters = errors.New("invalid parameters")
	// ErrIncompatibleParameters is returned when two objects are not defined over the same parameters.
	ErrIncompatibleParameters = errors.New("incompatible parameters")
	// ErrInvalidLevel is returned when a level does not exist in the parameters.
	ErrInvalidLevel = errors.New("invalid level")
	// ErrInvalidLimbCount is returned when a polynomial does not have the number of limbs of a key.
	ErrInvalidLimbCount = errors.New("invalid limb count")
	// ErrInvalidSeed is returned when a serialized seed is malformed.
	ErrInvalidSeed = errors.New("invalid seed")
	// ErrInvalidSecretKey is returned when secret key coefficients are malformed.
	ErrInvalidSecretKey = errors.New("invalid secret key")
	// ErrInvalidKeySwitchingKey is returned when a serialized key-switching key is malformed.
	ErrInvalidKeySwitchingKey = errors.New("invalid key-switching key")
	// ErrInvalidCiphertext is returned when a ciphertext is malformed or has an unexpected degree.
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
	// ErrTooManyValues is returned when more than N values are encoded.
	ErrTooManyValues = errors.New("too many values")
	// ErrEncodingNotSupported is returned when the parameters cannot support an encoding.
	ErrEncodingNotSupported = errors.New("encoding not supported")
	// ErrEncodingMismatch is returned when a plaintext is decoded with another encoding than its own.
	ErrEncodingMismatch = errors.New("encoding mismatch")
	// ErrUnspecifiedEncoding is returned when neither the plaintext nor the caller specify an encoding.
	ErrUnspecifiedEncoding = errors.New("unspecified encoding")
)
