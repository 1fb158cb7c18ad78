package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/BrugadaSyndrome/bslogger"

	"mandelbrot/pool"
	"mandelbrot/task"
)

// Worker is a non-zero rank of a dynamic render. It renders whatever row the coordinator assigns until told to stop.
type Worker struct {
	comm          pool.Communicator
	logger        bslogger.Logger
	renderer      task.RowRenderer
	rowsCompleted int
}

func NewWorker(comm pool.Communicator, renderer task.RowRenderer) *Worker {
	return &Worker{
		comm:     comm,
		logger:   bslogger.NewLogger(fmt.Sprintf("Worker %d", comm.Rank()), bslogger.Normal, nil),
		renderer: renderer,
	}
}

func (w *Worker) Run(ctx context.Context) error {
	w.logger.Debug("Processing rows")

	var startTime = time.Now()
	buffer := make([]byte, w.renderer.RowBytes())

	for {
		message, err := w.comm.Receive(ctx, 0, task.AssignmentTag)
		if err != nil {
			return fmt.Errorf("unable to get an assignment - %w", err)
		}
		row, err := task.DecodeAssignment(message.Payload)
		if err != nil {
			return err
		}
		if row == task.NoMoreWork {
			break
		}

		buffer = w.renderer.RenderRow(row, buffer)
		err = w.comm.Send(ctx, 0, row, buffer)
		if err != nil {
			return fmt.Errorf("unable to return row %d - %w", row, err)
		}
		w.rowsCompleted++
	}

	elapsedTime := time.Since(startTime)
	w.logger.Debugf("Processed %d rows in %s", w.rowsCompleted, elapsedTime)
	return nil
}

func (w *Worker) RowsCompleted() int {
	return w.rowsCompleted
}
