package bfv

import "fmt"

// EncodingType is the way a vector of integers modulo T is packed into a plaintext.
type EncodingType uint8

const (
	// EncodingPoly packs the values as the coefficients of the plaintext polynomial.
	EncodingPoly = EncodingType(iota)
	// EncodingSimd packs the values in the slots of the plaintext, so that
	// multiplying plaintexts multiplies the values slot-wise.
	EncodingSimd
)

func (t EncodingType) String() string {
	switch t {
	case EncodingPoly:
		return "Poly"
	case EncodingSimd:
		return "Simd"
	default:
		return fmt.Sprintf("EncodingType(%d)", uint8(t))
	}
}

// Encoding describes how a plaintext is encoded and at which level.
type Encoding struct {
	Type  EncodingType
	Level int
}

// PolyEncoding returns the [EncodingPoly] encoding at level 0.
func PolyEncoding() Encoding {
	return Encoding{Type: EncodingPoly}
}

// SimdEncoding returns the [EncodingSimd] encoding at level 0.
func SimdEncoding() Encoding {
	return Encoding{Type: EncodingSimd}
}

// PolyEncodingAtLevel returns the [EncodingPoly] encoding at the given level.
func PolyEncodingAtLevel(level int) Encoding {
	return Encoding{Type: EncodingPoly, Level: level}
}

// SimdEncodingAtLevel returns the [EncodingSimd] encoding at the given level.
func SimdEncodingAtLevel(level int) Encoding {
	return Encoding{Type: EncodingSimd, Level: level}
}

func (e Encoding) String() string {
	return fmt.Sprintf("%s/lvl=%d", e.Type, e.Level)
}
