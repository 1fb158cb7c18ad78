package render

import (
	"context"
	"fmt"

	"mandelbrot/pool"
	"mandelbrot/ppm"
	"mandelbrot/task"
)

// Centralized deals rows out round-robin. Rank 0 alone writes the file, appending each wave's rows in rank order.
func Centralized(ctx context.Context, comm pool.Communicator, renderer task.RowRenderer, path string, size int) error {
	rank, ranks := comm.Rank(), comm.Size()
	buffer := make([]byte, renderer.RowBytes())

	if rank != 0 {
		for _, row := range task.OwnedRows(rank, ranks, size) {
			buffer = renderer.RenderRow(row, buffer)
			err := comm.Send(ctx, 0, row, buffer)
			if err != nil {
				return fmt.Errorf("unable to send row %d - %w", row, err)
			}
		}
		return nil
	}

	file, err := ppm.Create(path, size)
	if err != nil {
		return err
	}
	err = gatherWaves(ctx, comm, renderer, file, buffer)
	if err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func gatherWaves(ctx context.Context, comm pool.Communicator, renderer task.RowRenderer, file *ppm.File,
	buffer []byte) error {
	size := file.Size()
	for base := 0; base < size; base += comm.Size() {
		buffer = renderer.RenderRow(base, buffer)
		err := file.AppendRow(base, buffer)
		if err != nil {
			return err
		}

		// Rows past the end of the image in the last wave are never sent
		for _, row := range task.Wave(base, comm.Size(), size)[1:] {
			message, err := comm.Receive(ctx, task.Owner(row, comm.Size()), row)
			if err != nil {
				return fmt.Errorf("waiting for row %d - %w", row, err)
			}
			err = file.AppendRow(row, message.Payload)
			if err != nil {
				return err
			}
		}
	}
	return nil
}
