package mandelbrot

import (
	"mandelbrot/task"
)

const (
	MaxIterations       = 300
	EscapeRadiusSquared = 4.0
)

// Mandelbrot renders rows of a viewport. It holds no mutable state so ranks sharing one value can render concurrently.
type Mandelbrot struct {
	viewport Viewport
}

func NewMandelbrot(viewport Viewport) Mandelbrot {
	return Mandelbrot{
		viewport: viewport,
	}
}

// EscapeTime
// Iterates z = z*z + z0 starting from z0 and returns the iteration at which |z|^2 exceeded the escape radius, or
// MaxIterations if it never did
func EscapeTime(z0 Complex) int {
	z := z0
	iteration := 1
	for ; iteration < MaxIterations; iteration++ {
		z = z.Multiply(z).Add(z0)
		if z.SquaredMagnitude() > EscapeRadiusSquared {
			break
		}
	}
	return iteration
}

func (m *Mandelbrot) Scanline(row int) task.Scanline {
	scanline := task.Scanline{
		Row:        row,
		Iterations: make([]int, m.viewport.ImageSize),
	}
	for column := range scanline.Iterations {
		scanline.Iterations[column] = EscapeTime(m.viewport.Point(row, column))
	}
	return scanline
}

// Colorize writes one RGB triple per iteration count into buffer, growing it if it is too small
func (m *Mandelbrot) Colorize(scanline task.Scanline, buffer []byte) []byte {
	buffer = sizeBuffer(buffer, 3*len(scanline.Iterations))
	for column, iterations := range scanline.Iterations {
		putColor(buffer[3*column:], iterations)
	}
	return buffer
}

// RenderRow is Colorize(Scanline(row)) without the intermediate iteration slice
func (m *Mandelbrot) RenderRow(row int, buffer []byte) []byte {
	buffer = sizeBuffer(buffer, m.RowBytes())
	for column := 0; column < m.viewport.ImageSize; column++ {
		putColor(buffer[3*column:], EscapeTime(m.viewport.Point(row, column)))
	}
	return buffer
}

func (m *Mandelbrot) RowBytes() int {
	return 3 * m.viewport.ImageSize
}

func sizeBuffer(buffer []byte, length int) []byte {
	if cap(buffer) < length {
		return make([]byte, length)
	}
	return buffer[:length]
}
