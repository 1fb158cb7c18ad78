package mandelbrot

import "fmt"

type Complex struct {
	Real      float64
	Imaginary float64
}

func (c Complex) Add(o Complex) Complex {
	return Complex{Real: c.Real + o.Real, Imaginary: c.Imaginary + o.Imaginary}
}

// (a+bi)(c+di) = (ac-bd) + (ad+bc)i
func (c Complex) Multiply(o Complex) Complex {
	return Complex{
		Real:      c.Real*o.Real - c.Imaginary*o.Imaginary,
		Imaginary: c.Real*o.Imaginary + c.Imaginary*o.Real,
	}
}

func (c Complex) SquaredMagnitude() float64 {
	return c.Real*c.Real + c.Imaginary*c.Imaginary
}

func (c Complex) String() string {
	return fmt.Sprintf("(%g%+gi)", c.Real, c.Imaginary)
}
