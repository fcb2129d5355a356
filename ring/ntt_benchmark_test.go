package ring

import (
	"fmt"
	"testing"
)

func BenchmarkNTT(b *testing.B) {
	for _, logN := range []int{10, 12, 14} {
		benchNTT(logN, b)
		benchINTT(logN, b)
	}
}

func benchNTT(LogN int, b *testing.B) {

	ctx, err := NewContext(Qi60[:1], 1<<LogN)
	if err != nil {
		b.Fatal(err)
	}

	p := NewRandomPoly(ctx, PowerBasis, newTestPRNG(b)).Limb(0)
	op := ctx.NTTOperator(0)

	b.Run(fmt.Sprintf("Forward/N=%d", 1<<LogN), func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			op.Forward(p)
		}
	})

	b.Run(fmt.Sprintf("ForwardVT/N=%d", 1<<LogN), func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			op.ForwardVT(p)
		}
	})

	b.Run(fmt.Sprintf("ForwardVTLazy/N=%d", 1<<LogN), func(b *testing.B) {
		q := ctx.Modulus(0)
		for i := 0; i < b.N; i++ {
			op.ForwardVTLazy(p)
			q.ReduceVecVT(p)
		}
	})
}

func benchINTT(LogN int, b *testing.B) {

	ctx, err := NewContext(Qi60[:1], 1<<LogN)
	if err != nil {
		b.Fatal(err)
	}

	p := NewRandomPoly(ctx, Ntt, newTestPRNG(b)).Limb(0)
	op := ctx.NTTOperator(0)

	b.Run(fmt.Sprintf("Backward/N=%d", 1<<LogN), func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			op.Backward(p)
		}
	})

	b.Run(fmt.Sprintf("BackwardVT/N=%d", 1<<LogN), func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			op.BackwardVT(p)
		}
	})
}
