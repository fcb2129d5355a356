package ring

import "fmt"

// Representation is the domain in which the coefficients of a Poly are stored.
type Representation uint8

const (
	// PowerBasis stores the coefficients of the polynomial.
	PowerBasis = Representation(iota)
	// Ntt stores the evaluations of the polynomial at the odd powers of a
	// primitive 2N-th root of unity, in bit-reversed order.
	Ntt
	// NttShoup is Ntt with an additional Shoup companion of every coefficient,
	// for faster multiplications by this polynomial.
	NttShoup
)

func (r Representation) String() string {
	switch r {
	case PowerBasis:
		return "PowerBasis"
	case Ntt:
		return "Ntt"
	case NttShoup:
		return "NttShoup"
	default:
		return fmt.Sprintf("Representation(%d)", uint8(r))
	}
}

// IsValid returns true if r is one of the defined representations.
func (r Representation) IsValid() bool {
	return r <= NttShoup
}
