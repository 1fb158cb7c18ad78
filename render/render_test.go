package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mandelbrot/mandelbrot"
	"mandelbrot/misc"
	"mandelbrot/ppm"
	"mandelbrot/task"
)

// slowRenderer delays selected rows to model rows of uneven cost
type slowRenderer struct {
	task.RowRenderer
	delay time.Duration
	slow  func(row int) bool
}

func (s slowRenderer) RenderRow(row int, buffer []byte) []byte {
	if s.slow(row) {
		time.Sleep(s.delay)
	}
	return s.RowRenderer.RenderRow(row, buffer)
}

func newRenderer(viewport mandelbrot.Viewport) task.RowRenderer {
	m := mandelbrot.NewMandelbrot(viewport)
	return &m
}

func reference(t *testing.T, viewport mandelbrot.Viewport) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reference.ppm")
	if err := Sequential(newRenderer(viewport), path, viewport.ImageSize); err != nil {
		t.Fatal(err)
	}
	image, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return image
}

func render(t *testing.T, strategy task.Strategy, ranks int, viewport mandelbrot.Viewport,
	renderer task.RowRenderer) []byte {
	t.Helper()
	settings := Settings{
		OutputFile: filepath.Join(t.TempDir(), strategy.DefaultOutputFile()),
		Strategy:   strategy,
		Viewport:   viewport,
	}
	if err := settings.Verify(); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := RunLocal(ctx, ranks, settings, renderer); err != nil {
		t.Fatal(err)
	}
	image, err := os.ReadFile(settings.OutputFile)
	if err != nil {
		t.Fatal(err)
	}
	return image
}

func TestSmallImage(t *testing.T) {
	viewport := mandelbrot.FullPicture.WithSize(4)
	image := reference(t, viewport)

	if len(image) != 11+48 {
		t.Fatalf("got %d bytes, want %d", len(image), 11+48)
	}
	if header := string(image[:11]); header != "P6\n4 4 255\n" {
		t.Errorf("got header %q, want %q", header, "P6\n4 4 255\n")
	}
	// The top edge lies outside the escape radius, every point escapes on the first iteration
	for column := 0; column < 4; column++ {
		pixel := image[11+3*column : 11+3*column+3]
		if !bytes.Equal(pixel, []byte{255, 251, 251}) {
			t.Errorf("column %d got %v, want [255 251 251]", column, pixel)
		}
	}
}

func TestStrategiesMatchSequential(t *testing.T) {
	viewports := []mandelbrot.Viewport{
		mandelbrot.FullPicture.WithSize(4),
		mandelbrot.FullPicture.WithSize(7),
		mandelbrot.SeahorseValley.WithSize(16),
	}
	for _, viewport := range viewports {
		want := reference(t, viewport)
		for _, strategy := range []task.Strategy{task.Sequential, task.Centralized, task.Dynamic, task.Decentralized} {
			for ranks := strategy.MinimumPoolSize(); ranks <= 5; ranks++ {
				name := fmt.Sprintf("%s size %d ranks %d", strategy, viewport.ImageSize, ranks)
				t.Run(name, func(t *testing.T) {
					got := render(t, strategy, ranks, viewport, newRenderer(viewport))
					if !bytes.Equal(got, want) {
						t.Errorf("image differs from the sequential render")
					}
				})
			}
		}
	}
}

func TestMorePeersThanRows(t *testing.T) {
	viewport := mandelbrot.ElephantValley.WithSize(2)
	want := reference(t, viewport)
	for _, strategy := range []task.Strategy{task.Centralized, task.Dynamic, task.Decentralized} {
		got := render(t, strategy, 6, viewport, newRenderer(viewport))
		if !bytes.Equal(got, want) {
			t.Errorf("%s: image differs from the sequential render", strategy)
		}
	}
}

func TestPoolTooSmall(t *testing.T) {
	settings := Settings{Strategy: task.Dynamic, Viewport: mandelbrot.FullPicture.WithSize(4)}
	settings.OutputFile = filepath.Join(t.TempDir(), "dynamic.ppm")
	viewport := settings.Viewport

	err := RunLocal(context.Background(), 1, settings, newRenderer(viewport))
	if !errors.Is(err, misc.ErrPoolTooSmall) {
		t.Errorf("got %v, want %v", err, misc.ErrPoolTooSmall)
	}
	if _, err := os.Stat(settings.OutputFile); !os.IsNotExist(err) {
		t.Errorf("output file exists after a rejected render")
	}
}

func TestRendererMustMatchImage(t *testing.T) {
	settings := Settings{
		OutputFile: filepath.Join(t.TempDir(), "centralized.ppm"),
		Strategy:   task.Centralized,
		Viewport:   mandelbrot.FullPicture.WithSize(4),
	}
	err := RunLocal(context.Background(), 2, settings, newRenderer(mandelbrot.FullPicture.WithSize(5)))
	if err == nil {
		t.Error("render with mismatched row length succeeded")
	}
}

// Rows owned by rank 1 under the round-robin partition are slow. The static strategies leave them all to rank 1, the
// dynamic strategy spreads them over whichever workers are free.
func TestDynamicBalancesUnevenRows(t *testing.T) {
	const ranks = 4
	const delay = 50 * time.Millisecond
	viewport := mandelbrot.FullPicture.WithSize(12)
	renderer := slowRenderer{
		RowRenderer: newRenderer(viewport),
		delay:       delay,
		slow:        func(row int) bool { return task.Owner(row, ranks) == 1 },
	}
	want := reference(t, viewport)

	elapsed := func(strategy task.Strategy) time.Duration {
		startTime := time.Now()
		got := render(t, strategy, ranks, viewport, renderer)
		if !bytes.Equal(got, want) {
			t.Errorf("%s: image differs from the sequential render", strategy)
		}
		return time.Since(startTime)
	}

	dynamic := elapsed(task.Dynamic)
	for _, strategy := range []task.Strategy{task.Centralized, task.Decentralized} {
		static := elapsed(strategy)
		if static < 3*delay {
			t.Errorf("%s took %s, want at least %s", strategy, static, 3*delay)
		}
		if dynamic >= static {
			t.Errorf("dynamic took %s, want less than %s's %s", dynamic, strategy, static)
		}
	}
}

func TestHeaderLengthAgreement(t *testing.T) {
	for _, size := range []int{1, 9, 10, 999, 1000, mandelbrot.MaxImageSize} {
		if got, want := ppm.HeaderLength(size), int64(len(ppm.Header(size))); got != want {
			t.Errorf("size %d got header length %d, want %d", size, got, want)
		}
	}
}

func TestSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	contents := `{"Strategy": "dynamic", "Viewport": {"XMin": -2.5, "XMax": 1.5, "YMin": -2, "YMax": 2, "ImageSize": 64}}`
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}

	settings, err := NewSettings(path)
	if err != nil {
		t.Fatal(err)
	}
	if settings.Strategy != task.Dynamic {
		t.Errorf("got strategy %s, want %s", settings.Strategy, task.Dynamic)
	}
	if settings.OutputFile != "mandelbrot_dynamic.ppm" {
		t.Errorf("got output file %q, want %q", settings.OutputFile, "mandelbrot_dynamic.ppm")
	}
	if settings.Heartbeat() != 30*time.Second {
		t.Errorf("got heartbeat %s, want 30s", settings.Heartbeat())
	}
	if settings.Viewport != mandelbrot.FullPicture.WithSize(64) {
		t.Errorf("got viewport %s, want %s", settings.Viewport, mandelbrot.FullPicture.WithSize(64))
	}

	bad := Settings{Strategy: task.Strategy(9), Viewport: mandelbrot.FullPicture.WithSize(4)}
	if err := bad.Verify(); err == nil {
		t.Error("unknown strategy accepted")
	}
	bad = Settings{Viewport: mandelbrot.FullPicture}
	if err := bad.Verify(); err == nil {
		t.Error("zero image size accepted")
	}
}
