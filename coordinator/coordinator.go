package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/BrugadaSyndrome/bslogger"

	"mandelbrot/pool"
	"mandelbrot/ppm"
	"mandelbrot/task"
)

// ErrUnexpectedRow means a worker returned a row that was never assigned or was already committed
var ErrUnexpectedRow = errors.New("unexpected row from worker")

// Coordinator is rank 0 of a dynamic render. It hands out one row at a time and writes each returned row at its
// offset in the image as soon as it arrives.
type Coordinator struct {
	comm          pool.Communicator
	committed     []bool
	heartbeat     time.Duration
	logger        bslogger.Logger
	nextRow       int
	path          string
	rowsAssigned  atomic.Int64
	rowsCommitted atomic.Int64
	size          int
	tally         []int // rows committed per rank
}

func NewCoordinator(comm pool.Communicator, path string, size int, heartbeat time.Duration) *Coordinator {
	return &Coordinator{
		comm:      comm,
		committed: make([]bool, size),
		heartbeat: heartbeat,
		logger:    bslogger.NewLogger("Coordinator", bslogger.Normal, nil),
		path:      path,
		size:      size,
		tally:     make([]int, comm.Size()),
	}
}

func (c *Coordinator) Run(ctx context.Context) error {
	if c.comm.Size() < task.Dynamic.MinimumPoolSize() {
		return fmt.Errorf("coordinator has no workers in a pool of %d", c.comm.Size())
	}

	file, err := ppm.Create(c.path, c.size)
	if err != nil {
		return err
	}

	done := make(chan struct{})
	defer close(done)
	go c.tickers(done)

	c.logger.Infof("Rendering %d rows with %d workers", c.size, c.comm.Size()-1)
	var startTime = time.Now()

	err = c.seedWorkers(ctx)
	if err == nil {
		err = c.ingestRows(ctx, file)
	}
	if err != nil {
		file.Close()
		return err
	}
	err = file.Close()
	if err != nil {
		return err
	}

	elapsedTime := time.Since(startTime)
	c.logger.Infof("Committed %d rows to %s in %s", c.rowsCommitted.Load(), c.path, elapsedTime)
	for rank := 1; rank < len(c.tally); rank++ {
		c.logger.Infof("Worker %d rendered %d rows", rank, c.tally[rank])
	}
	return nil
}

// Tally returns how many rows each rank rendered, indexed by rank
func (c *Coordinator) Tally() []int {
	return append([]int(nil), c.tally...)
}

func (c *Coordinator) tickers(done <-chan struct{}) {
	if c.heartbeat <= 0 {
		return
	}
	heartBeat := time.NewTicker(c.heartbeat)
	defer heartBeat.Stop()

	for {
		select {
		case <-done:
			return
		case <-heartBeat.C:
			committed := c.rowsCommitted.Load()
			c.logger.Infof("Rows [Assigned: %d] [Committed: %d] [Todo: %d]", c.rowsAssigned.Load(), committed,
				int64(c.size)-committed)
		}
	}
}

// seedWorkers gives worker w row w-1. Workers beyond the last row are told to stop straight away.
func (c *Coordinator) seedWorkers(ctx context.Context) error {
	for rank := 1; rank < c.comm.Size(); rank++ {
		row := rank - 1
		if row >= c.size {
			row = task.NoMoreWork
		} else {
			c.rowsAssigned.Add(1)
		}
		err := c.comm.Send(ctx, rank, task.AssignmentTag, task.EncodeAssignment(row))
		if err != nil {
			return fmt.Errorf("unable to seed worker %d - %w", rank, err)
		}
	}
	c.nextRow = c.comm.Size() - 1
	return nil
}

func (c *Coordinator) ingestRows(ctx context.Context, file *ppm.File) error {
	for received := 0; received < c.size; received++ {
		message, err := c.comm.Receive(ctx, pool.AnySource, pool.AnyTag)
		if err != nil {
			return fmt.Errorf("waiting for row %d of %d - %w", received+1, c.size, err)
		}

		row := message.Tag
		if row >= c.size || c.committed[row] {
			return fmt.Errorf("%w: worker %d returned row %d", ErrUnexpectedRow, message.Source, row)
		}
		err = file.WriteRow(row, message.Payload)
		if err != nil {
			return err
		}
		c.committed[row] = true
		c.tally[message.Source]++
		c.rowsCommitted.Add(1)
		c.logger.Debugf("Committed row %d from worker %d", row, message.Source)

		next := task.NoMoreWork
		if c.nextRow < c.size {
			next = c.nextRow
			c.nextRow++
			c.rowsAssigned.Add(1)
		}
		err = c.comm.Send(ctx, message.Source, task.AssignmentTag, task.EncodeAssignment(next))
		if err != nil {
			return fmt.Errorf("unable to reply to worker %d - %w", message.Source, err)
		}
	}
	return nil
}
