package render

import (
	"mandelbrot/ppm"
	"mandelbrot/task"
)

// Sequential renders every row in order on the calling goroutine. The other strategies must produce the same bytes.
func Sequential(renderer task.RowRenderer, path string, size int) error {
	file, err := ppm.Create(path, size)
	if err != nil {
		return err
	}

	buffer := make([]byte, renderer.RowBytes())
	for row := 0; row < size; row++ {
		buffer = renderer.RenderRow(row, buffer)
		err = file.AppendRow(row, buffer)
		if err != nil {
			file.Close()
			return err
		}
	}
	return file.Close()
}
