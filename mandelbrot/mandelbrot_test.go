package mandelbrot

import (
	"bytes"
	"errors"
	"image/color"
	"testing"

	"mandelbrot/misc"
)

func TestComplexArithmetic(t *testing.T) {
	a := Complex{Real: 1, Imaginary: 2}
	b := Complex{Real: 3, Imaginary: -1}

	if got, want := a.Add(b), (Complex{Real: 4, Imaginary: 1}); got != want {
		t.Errorf("Add got %v, want %v", got, want)
	}
	if got, want := a.Multiply(b), (Complex{Real: 5, Imaginary: 5}); got != want {
		t.Errorf("Multiply got %v, want %v", got, want)
	}
	if got, want := a.SquaredMagnitude(), 5.0; got != want {
		t.Errorf("SquaredMagnitude got %v, want %v", got, want)
	}
}

func TestEscapeTime(t *testing.T) {
	tests := []struct {
		name string
		z0   Complex
		want int
	}{
		{"escapes immediately", Complex{Real: 3, Imaginary: 3}, 1},
		{"escapes on first step from the real axis", Complex{Real: 2}, 1},
		{"lands on the radius before escaping", Complex{Real: 1}, 2},
		{"escapes after a few steps", Complex{Real: 0.5}, 4},
		{"origin never escapes", Complex{}, MaxIterations},
		{"period two cycle never escapes", Complex{Real: -1}, MaxIterations},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := EscapeTime(test.z0)
			if got != test.want {
				t.Errorf("EscapeTime(%v) got %d, want %d", test.z0, got, test.want)
			}
			if again := EscapeTime(test.z0); again != got {
				t.Errorf("EscapeTime(%v) is not deterministic: %d then %d", test.z0, got, again)
			}
		})
	}
}

func TestGetColor(t *testing.T) {
	tests := []struct {
		iterations int
		want       color.RGBA
	}{
		{0, color.RGBA{R: 255, G: 255, B: 255, A: 255}},
		{1, color.RGBA{R: 255, G: 251, B: 251, A: 255}},
		{63, color.RGBA{R: 255, G: 3, B: 3, A: 255}},
		{64, color.RGBA{R: 255, G: 1, B: 0, A: 255}},
		{MaxIterations - 1, color.RGBA{R: 255, G: 236, B: 0, A: 255}},
		{MaxIterations, color.RGBA{R: 255, G: 255, B: 255, A: 255}},
	}

	for _, test := range tests {
		if got := GetColor(test.iterations); got != test.want {
			t.Errorf("GetColor(%d) got %v, want %v", test.iterations, got, test.want)
		}
	}
}

func TestGetColorLaw(t *testing.T) {
	for c := 0; c <= MaxIterations; c++ {
		got := GetColor(c)
		if got.R != 255 {
			t.Fatalf("GetColor(%d) red got %d, want 255", c, got.R)
		}
		switch {
		case c == MaxIterations:
			if got.G != 255 || got.B != 255 {
				t.Errorf("GetColor(%d) got %v, want white", c, got)
			}
		case c <= 63:
			if int(got.G) != 255-4*c || int(got.B) != 255-4*c {
				t.Errorf("GetColor(%d) got %v, want G == B == %d", c, got, 255-4*c)
			}
		default:
			if int(got.G) != c-63 || got.B != 0 {
				t.Errorf("GetColor(%d) got %v, want G == %d and B == 0", c, got, c-63)
			}
		}
	}
}

func TestViewport(t *testing.T) {
	v := FullPicture.WithSize(4)

	if got := v.PixelWidth(); got != 1.0 {
		t.Errorf("PixelWidth got %v, want 1", got)
	}
	if got := v.PixelHeight(); got != 1.0 {
		t.Errorf("PixelHeight got %v, want 1", got)
	}
	if got, want := v.Point(0, 0), (Complex{Real: -2.5, Imaginary: 2}); got != want {
		t.Errorf("Point(0, 0) got %v, want %v", got, want)
	}
	if got, want := v.Point(3, 1), (Complex{Real: -1.5, Imaginary: -1}); got != want {
		t.Errorf("Point(3, 1) got %v, want %v", got, want)
	}
}

func TestViewportVerify(t *testing.T) {
	tests := []struct {
		name     string
		viewport Viewport
		valid    bool
	}{
		{"full picture", FullPicture.WithSize(16), true},
		{"zero size", FullPicture.WithSize(0), false},
		{"negative size", FullPicture.WithSize(-3), false},
		{"too large", FullPicture.WithSize(MaxImageSize + 1), false},
		{"inverted x", Viewport{XMin: 1, XMax: -1, YMin: -1, YMax: 1, ImageSize: 4}, false},
		{"empty y", Viewport{XMin: -1, XMax: 1, YMin: 1, YMax: 1, ImageSize: 4}, false},
	}

	for _, test := range tests {
		err := test.viewport.Verify()
		if test.valid && err != nil {
			t.Errorf("%s: unexpected error %v", test.name, err)
		}
		if !test.valid && err == nil {
			t.Errorf("%s: expected an error", test.name)
		}
	}
}

func TestOversizedImageIsAllocationError(t *testing.T) {
	err := FullPicture.WithSize(MaxImageSize + 1).Verify()
	if !errors.Is(err, misc.ErrAllocation) {
		t.Errorf("got %v, want %v", err, misc.ErrAllocation)
	}
	if err := FullPicture.WithSize(0).Verify(); errors.Is(err, misc.ErrAllocation) {
		t.Errorf("zero size reported as %v", err)
	}
}

func TestRenderRowMatchesScanline(t *testing.T) {
	m := NewMandelbrot(SeahorseValley.WithSize(32))

	for row := 0; row < 32; row += 7 {
		scanline := m.Scanline(row)
		if scanline.Row != row || len(scanline.Iterations) != 32 {
			t.Fatalf("Scanline(%d) got row %d with %d columns", row, scanline.Row, len(scanline.Iterations))
		}
		want := m.Colorize(scanline, nil)
		got := m.RenderRow(row, nil)
		if !bytes.Equal(got, want) {
			t.Errorf("RenderRow(%d) differs from Colorize(Scanline(%d))", row, row)
		}
	}
}

func TestRenderRowReusesBuffer(t *testing.T) {
	m := NewMandelbrot(FullPicture.WithSize(8))

	buffer := make([]byte, 0, m.RowBytes())
	rendered := m.RenderRow(2, buffer)
	if len(rendered) != m.RowBytes() {
		t.Fatalf("RenderRow length got %d, want %d", len(rendered), m.RowBytes())
	}
	if &rendered[0] != &buffer[:1][0] {
		t.Error("RenderRow allocated although the buffer was large enough")
	}
}

func TestImmediateEscapeRow(t *testing.T) {
	// Every sample of the top row of the full picture escapes on the first iteration
	m := NewMandelbrot(FullPicture.WithSize(4))

	row := m.RenderRow(0, nil)
	for column := 0; column < 4; column++ {
		pixel := row[3*column : 3*column+3]
		if !bytes.Equal(pixel, []byte{255, 251, 251}) {
			t.Errorf("column %d got %v, want [255 251 251]", column, pixel)
		}
	}
}
