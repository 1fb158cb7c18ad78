package render

import (
	"context"
	"fmt"

	"mandelbrot/pool"
	"mandelbrot/ppm"
	"mandelbrot/task"
)

// Decentralized deals rows out round-robin and every rank writes its own rows straight into the shared file. Rank 0
// lays the file out first so no rank writes past its end.
func Decentralized(ctx context.Context, comm pool.Communicator, renderer task.RowRenderer, path string, size int) error {
	if comm.Rank() == 0 {
		file, err := ppm.Create(path, size)
		if err != nil {
			return err
		}
		err = file.Allocate()
		if err != nil {
			file.Close()
			return err
		}
		err = file.Close()
		if err != nil {
			return err
		}
	}

	err := comm.Barrier(ctx)
	if err != nil {
		return fmt.Errorf("waiting for %s to be created - %w", path, err)
	}

	file, err := ppm.Open(path, size)
	if err != nil {
		return err
	}
	buffer := make([]byte, renderer.RowBytes())
	for _, row := range task.OwnedRows(comm.Rank(), comm.Size(), size) {
		buffer = renderer.RenderRow(row, buffer)
		err = file.WriteRow(row, buffer)
		if err != nil {
			file.Close()
			return err
		}
	}
	// Rows must reach stable storage before this rank reports done
	return file.Close()
}
