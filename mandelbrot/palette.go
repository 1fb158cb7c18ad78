package mandelbrot

import (
	"image/color"
)

// Iteration counts up to this value fade from white to red, counts above it ramp green back in
const fadeLimit = 63

// GetColor
// Fixed ramp: white fading to red for fast escapes, red to yellow for slow escapes, and white for points that never
// escaped. The MaxIterations case is checked last and overrides the other two.
func GetColor(iterations int) color.RGBA {
	c := color.RGBA{R: 255, A: 255}
	if iterations <= fadeLimit {
		c.G = uint8(255 - 4*iterations)
		c.B = uint8(255 - 4*iterations)
	} else {
		c.G = uint8(iterations - fadeLimit)
		c.B = 0
	}
	if iterations == MaxIterations {
		c.G = 255
		c.B = 255
	}
	return c
}

func putColor(pixel []byte, iterations int) {
	c := GetColor(iterations)
	pixel[0] = c.R
	pixel[1] = c.G
	pixel[2] = c.B
}
