package bfv

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ALTree/bigfloat"
	"github.com/google/go-cmp/cmp"
	"github.com/zeebo/blake3"

	"github.com/tuneinsight/bfvcore/ring"
	"github.com/tuneinsight/bfvcore/ring/rns"
	"github.com/tuneinsight/bfvcore/utils"
)

// DefaultVariance is the variance of the centered binomial distribution used
// for secrets and errors when a literal does not specify one.
const DefaultVariance = 10

// DefaultPlaintextModulus is the plaintext modulus of [DefaultParameters].
const DefaultPlaintextModulus = 1153

// DefaultLogModulus is the bit-size of the moduli of [DefaultParameters].
const DefaultLogModulus = 62

// ParametersLiteral is a literal representation of BFV parameters. It has public
// fields and is used to express unchecked user-defined parameters literally into
// Go programs. The [NewParametersFromLiteral] function is used to generate the
// actual checked parameters from the literal representation.
//
// Users must set the polynomial degree (in log_2, LogN) and the ciphertext moduli
// chain. Two ways are possible:
//   - Q is the list of moduli. Each modulus must be an NTT-friendly prime for 2^LogN,
//     and the moduli must be pairwise distinct.
//   - LogQ is the list of moduli bit-sizes, in which case NTT-friendly primes are generated.
//
// Exactly one of Q and LogQ must be set.
//
// T is the plaintext modulus. It must be at least 2 and smaller than the first
// modulus of Q. It supports the [EncodingSimd] only if it is an NTT-friendly prime for 2^LogN.
//
// Variance is the variance of the centered binomial distribution of the secret
// and error polynomials, in [1, 16]. The zero value stands for [DefaultVariance].
type ParametersLiteral struct {
	LogN     int
	Q        []uint64 `json:",omitempty"`
	LogQ     []int    `json:",omitempty"`
	T        uint64
	Variance int `json:",omitempty"`
}

// Parameters represents a parameter set for the BFV cryptosystem. Its fields are
// private and immutable. See [ParametersLiteral] for user-specified parameters.
//
// The ciphertext moduli define a chain of levels: the context at level l uses the
// first len(Q)-l moduli. Level 0 therefore has the full modulus and [Parameters.MaxLevel]
// only the first one.
type Parameters struct {
	logN     int
	moduli   []uint64
	t        uint64
	variance int

	plaintext    *ring.Modulus
	plaintextNTT *ring.NTTOperator // nil if T does not support the NTT
	plaintextRNS *rns.Context

	contexts    []*ring.Context
	fingerprint [32]byte
}

// NewParametersFromLiteral instantiate a set of BFV parameters from a [ParametersLiteral].
// It returns the empty parameters [Parameters]{} and a non-nil error if the specified parameters are invalid.
func NewParametersFromLiteral(pl ParametersLiteral) (params Parameters, err error) {

	switch {
	case len(pl.Q) == 0 && len(pl.LogQ) == 0:
		return Parameters{}, fmt.Errorf("cannot NewParametersFromLiteral: %w: Q or LogQ must be set", ErrInvalidParameters)
	case len(pl.Q) != 0 && len(pl.LogQ) != 0:
		return Parameters{}, fmt.Errorf("cannot NewParametersFromLiteral: %w: Q and LogQ cannot both be set", ErrInvalidParameters)
	}

	moduli := pl.Q

	if len(pl.LogQ) != 0 {
		if moduli, err = GenModuli(pl.LogN, pl.LogQ); err != nil {
			return Parameters{}, fmt.Errorf("cannot NewParametersFromLiteral: %w", err)
		}
	}

	variance := pl.Variance
	if variance == 0 {
		variance = DefaultVariance
	}

	return NewParameters(pl.LogN, moduli, pl.T, variance)
}

// NewParameters instantiates a set of BFV parameters from the log2 of the
// degree, the ciphertext moduli, the plaintext modulus and the variance.
func NewParameters(logN int, moduli []uint64, t uint64, variance int) (params Parameters, err error) {

	if logN < 0 || logN > 30 {
		return Parameters{}, fmt.Errorf("cannot NewParameters: %w: LogN=%d", ErrInvalidParameters, logN)
	}

	if variance < 1 || variance > 16 {
		return Parameters{}, fmt.Errorf("cannot NewParameters: %w: variance=%d must be in [1, 16]", ErrInvalidParameters, variance)
	}

	if len(moduli) == 0 {
		return Parameters{}, fmt.Errorf("cannot NewParameters: %w: empty moduli chain", ErrInvalidParameters)
	}

	if !utils.AllDistinct(moduli) {
		return Parameters{}, fmt.Errorf("cannot NewParameters: %w: moduli must be pairwise distinct", ErrInvalidParameters)
	}

	if t < 2 || t >= moduli[0] {
		return Parameters{}, fmt.Errorf("cannot NewParameters: %w: T=%d must be in [2, %d)", ErrInvalidParameters, t, moduli[0])
	}

	params = Parameters{
		logN:     logN,
		moduli:   append([]uint64{}, moduli...),
		t:        t,
		variance: variance,
	}

	N := 1 << logN

	params.contexts = make([]*ring.Context, len(moduli))
	for level := range params.contexts {
		if params.contexts[level], err = ring.NewContext(params.moduli[:len(moduli)-level], N); err != nil {
			return Parameters{}, fmt.Errorf("cannot NewParameters: %w: %w", ErrInvalidParameters, err)
		}
	}

	if params.plaintext, err = ring.NewModulus(t); err != nil {
		return Parameters{}, fmt.Errorf("cannot NewParameters: %w: %w", ErrInvalidParameters, err)
	}

	if params.plaintextRNS, err = rns.NewContext([]uint64{t}); err != nil {
		return Parameters{}, fmt.Errorf("cannot NewParameters: %w: %w", ErrInvalidParameters, err)
	}

	if op, ok := ring.NewNTTOperator(params.plaintext, N); ok {
		params.plaintextNTT = op
	}

	data, err := json.Marshal(params.ParametersLiteral())
	if err != nil {
		return Parameters{}, fmt.Errorf("cannot NewParameters: %w", err)
	}

	params.fingerprint = blake3.Sum256(data)

	return params, nil
}

// DefaultParameters returns a parameter set of the given degree with numModuli
// moduli of [DefaultLogModulus] bits and plaintext modulus [DefaultPlaintextModulus].
func DefaultParameters(numModuli, degree int) (params Parameters, err error) {

	logN := utils.BitLen(uint(degree)) - 1

	if degree < 1 || 1<<logN != degree {
		return Parameters{}, fmt.Errorf("cannot DefaultParameters: %w: degree=%d is not a power of two", ErrInvalidParameters, degree)
	}

	logQ := make([]int, numModuli)
	for i := range logQ {
		logQ[i] = DefaultLogModulus
	}

	return NewParametersFromLiteral(ParametersLiteral{
		LogN: logN,
		LogQ: logQ,
		T:    DefaultPlaintextModulus,
	})
}

// GenModuli generates a valid moduli chain from the degree and the bit-sizes of the moduli.
func GenModuli(logN int, logQ []int) (q []uint64, err error) {

	if logN < 0 || logN > 30 {
		return nil, fmt.Errorf("cannot GenModuli: %w: LogN=%d", ErrInvalidParameters, logN)
	}

	// Extracts all the different primes bit size and maps their number
	primesbitlen := make(map[int]int)
	for _, qi := range logQ {
		primesbitlen[qi]++
	}

	// For each bit-size, finds that many primes
	primes := make(map[int][]uint64)
	for bitsize, value := range primesbitlen {
		if primes[bitsize], err = ring.GenerateNTTPrimes(bitsize, uint64(2<<logN), value); err != nil {
			return nil, fmt.Errorf("cannot GenModuli: failed to generate %d primes of bit-size=%d for LogN=%d: %w", value, bitsize, logN, err)
		}
	}

	// Assigns the primes to the moduli chain
	for _, qi := range logQ {
		q = append(q, primes[qi][0])
		primes[qi] = primes[qi][1:]
	}

	return
}

// ParametersLiteral returns the [ParametersLiteral] of the target [Parameters].
func (p Parameters) ParametersLiteral() ParametersLiteral {
	return ParametersLiteral{
		LogN:     p.logN,
		Q:        p.Moduli(),
		T:        p.t,
		Variance: p.variance,
	}
}

// LogN returns the log2 of the ring degree.
func (p Parameters) LogN() int {
	return p.logN
}

// N returns the ring degree.
func (p Parameters) N() int {
	return 1 << p.logN
}

// Moduli returns a copy of the ciphertext moduli.
func (p Parameters) Moduli() []uint64 {
	return append([]uint64{}, p.moduli...)
}

// T returns the plaintext modulus as an integer.
func (p Parameters) T() uint64 {
	return p.t
}

// PlaintextModulus returns the plaintext modulus.
func (p Parameters) PlaintextModulus() *ring.Modulus {
	return p.plaintext
}

// MaxLevel returns the largest level of the moduli chain.
func (p Parameters) MaxLevel() int {
	return len(p.moduli) - 1
}

// Variance returns the variance of the secret and error distributions.
func (p Parameters) Variance() int {
	return p.variance
}

// SupportsSimd returns true if the plaintext modulus supports the [EncodingSimd].
func (p Parameters) SupportsSimd() bool {
	return p.plaintextNTT != nil
}

// ContextAtLevel returns the ring context of the given level.
func (p Parameters) ContextAtLevel(level int) (*ring.Context, error) {
	if level < 0 || level >= len(p.contexts) {
		return nil, fmt.Errorf("cannot ContextAtLevel: %w: %d not in [0, %d]", ErrInvalidLevel, level, p.MaxLevel())
	}
	return p.contexts[level], nil
}

// LevelOfContext returns the level of a ring context.
func (p Parameters) LevelOfContext(ctx *ring.Context) (int, error) {
	for level, c := range p.contexts {
		if c.Equal(ctx) {
			return level, nil
		}
	}
	return 0, fmt.Errorf("cannot LevelOfContext: %w: context is not part of the moduli chain", ErrIncompatibleParameters)
}

// Delta returns floor(Q_level/T), the factor by which plaintexts at the given level are scaled.
func (p Parameters) Delta(level int) (*big.Int, error) {

	ctx, err := p.ContextAtLevel(level)
	if err != nil {
		return nil, err
	}

	return new(big.Int).Quo(ctx.RNS().Modulus(), new(big.Int).SetUint64(p.t)), nil
}

// LogQ returns log2(Q_level).
func (p Parameters) LogQ(level int) (float64, error) {

	ctx, err := p.ContextAtLevel(level)
	if err != nil {
		return 0, err
	}

	const prec = 128

	Q := new(big.Float).SetPrec(prec).SetInt(ctx.RNS().Modulus())
	ln2 := bigfloat.Log(new(big.Float).SetPrec(prec).SetInt64(2))

	logQ, _ := new(big.Float).Quo(bigfloat.Log(Q), ln2).Float64()

	return logQ, nil
}

// Scaler returns a new scaler from the context of the given level to the
// plaintext modulus, by the factor T/Q_level.
// Scalers are not safe for concurrent use, hence a new one is returned on each call.
func (p Parameters) Scaler(level int) (*ring.Scaler, error) {

	ctx, err := p.ContextAtLevel(level)
	if err != nil {
		return nil, err
	}

	factor := rns.NewScalingFactor(new(big.Int).SetUint64(p.t), ctx.RNS().Modulus())

	return ring.NewScalerToBasis(ctx, p.plaintextRNS, factor)
}

// Fingerprint returns the blake3 digest of the JSON representation of the parameters.
// It is embedded in serialized ciphertexts and keys.
func (p Parameters) Fingerprint() [32]byte {
	return p.fingerprint
}

// Equal returns true if both parameter sets are equal.
func (p Parameters) Equal(other *Parameters) bool {
	return other != nil && cmp.Equal(p.ParametersLiteral(), other.ParametersLiteral())
}

// MarshalJSON returns a JSON representation of this parameter set. See Marshal from the [encoding/json] package.
func (p Parameters) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ParametersLiteral())
}

// UnmarshalJSON reads a JSON representation of a parameter set into the receiver Parameter. See Unmarshal from the [encoding/json] package.
func (p *Parameters) UnmarshalJSON(data []byte) (err error) {
	var params ParametersLiteral
	if err = json.Unmarshal(data, &params); err != nil {
		return err
	}
	*p, err = NewParametersFromLiteral(params)
	return
}

// isZero is true for the zero value of Parameters.
func (p Parameters) isZero() bool {
	return len(p.contexts) == 0
}
