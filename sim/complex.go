package sim

import "math/cmplx"

// Complex is a single amplitude.
type Complex = complex128

// C builds a complex number from its parts. Pass 0 for a real value.
func C(re, im float64) Complex {
	return complex(re, im)
}

func Add(a, b Complex) Complex { return a + b }

func Sub(a, b Complex) Complex { return a - b }

func Mul(a, b Complex) Complex { return a * b }

// Scale multiplies a by a real scalar.
func Scale(a Complex, s float64) Complex {
	return complex(real(a)*s, imag(a)*s)
}

func Conj(a Complex) Complex { return cmplx.Conj(a) }

// Norm2 returns re² + im², the probability weight of an amplitude.
func Norm2(a Complex) float64 {
	re, im := real(a), imag(a)
	return re*re + im*im
}
