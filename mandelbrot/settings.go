package mandelbrot

import (
	"errors"
	"fmt"
	"math"

	"mandelbrot/misc"
)

// MaxImageSize bounds the side of the image so a row buffer and the whole file stay addressable
const MaxImageSize = 1 << 16

// Viewport is the region of the complex plane sampled on an ImageSize x ImageSize grid
type Viewport struct {
	XMin      float64
	XMax      float64
	YMin      float64
	YMax      float64
	ImageSize int
}

// Well known regions, usable as bounds for any image size
var (
	FullPicture        = Viewport{XMin: -2.5, XMax: 1.5, YMin: -2.0, YMax: 2.0}
	SeahorseValley     = Viewport{XMin: -0.8, XMax: -0.7, YMin: 0.05, YMax: 0.15}
	ElephantValley     = Viewport{XMin: 0.175, XMax: 0.375, YMin: -0.1, YMax: 0.1}
	TripleSpiralValley = Viewport{XMin: -0.188, XMax: -0.012, YMin: 0.554, YMax: 0.754}
)

var Regions = map[string]Viewport{
	"Full Picture":         FullPicture,
	"Seahorse Valley":      SeahorseValley,
	"Elephant Valley":      ElephantValley,
	"Triple Spiral Valley": TripleSpiralValley,
}

func (v Viewport) WithSize(imageSize int) Viewport {
	v.ImageSize = imageSize
	return v
}

func (v Viewport) PixelWidth() float64 {
	return (v.XMax - v.XMin) / float64(v.ImageSize)
}

func (v Viewport) PixelHeight() float64 {
	return (v.YMax - v.YMin) / float64(v.ImageSize)
}

// Point
// Converts the (row, column) pixel to its sample point. Row 0 is the top edge of the viewport (YMax).
func (v Viewport) Point(row int, column int) Complex {
	return Complex{
		Real:      v.XMin + float64(column)*v.PixelWidth(),
		Imaginary: v.YMax - float64(row)*v.PixelHeight(),
	}
}

func (v Viewport) String() string {
	output := "{Viewport "
	output += fmt.Sprintf("X: [%g, %g] ", v.XMin, v.XMax)
	output += fmt.Sprintf("Y: [%g, %g] ", v.YMin, v.YMax)
	output += fmt.Sprintf("ImageSize: %d}", v.ImageSize)
	return output
}

func (v Viewport) Verify() error {
	for _, bound := range []float64{v.XMin, v.XMax, v.YMin, v.YMax} {
		if math.IsNaN(bound) || math.IsInf(bound, 0) {
			return errors.New("viewport bounds must be finite")
		}
	}
	if v.XMin >= v.XMax {
		return fmt.Errorf("x_min %g must be less than x_max %g", v.XMin, v.XMax)
	}
	if v.YMin >= v.YMax {
		return fmt.Errorf("y_min %g must be less than y_max %g", v.YMin, v.YMax)
	}
	if v.ImageSize <= 0 {
		return fmt.Errorf("image size must be positive, got %d", v.ImageSize)
	}
	if v.ImageSize > MaxImageSize {
		return fmt.Errorf("%w: image size %d is larger than %d", misc.ErrAllocation, v.ImageSize, MaxImageSize)
	}
	return nil
}
