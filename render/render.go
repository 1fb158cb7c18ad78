// Package render writes a fractal image with one of the row distribution strategies. Every rank of the pool calls Run
// with the same settings.
package render

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BrugadaSyndrome/bslogger"
	"golang.org/x/sync/errgroup"

	"mandelbrot/coordinator"
	"mandelbrot/misc"
	"mandelbrot/pool"
	"mandelbrot/ppm"
	"mandelbrot/task"
	"mandelbrot/worker"
)

// ErrHeaderMismatch means two ranks disagree on where the pixel data starts in the image file
var ErrHeaderMismatch = errors.New("ranks disagree on header length")

func Run(ctx context.Context, comm pool.Communicator, settings Settings, renderer task.RowRenderer) error {
	logger := bslogger.NewLogger(fmt.Sprintf("Rank %d", comm.Rank()), bslogger.Normal, nil)

	if comm.Size() < settings.Strategy.MinimumPoolSize() {
		return fmt.Errorf("%w: %s needs %d ranks, got %d", misc.ErrPoolTooSmall, settings.Strategy,
			settings.Strategy.MinimumPoolSize(), comm.Size())
	}
	size := settings.Viewport.ImageSize
	if renderer.RowBytes() != ppm.RowBytes(size) {
		return fmt.Errorf("renderer produces rows of %d bytes, image needs %d", renderer.RowBytes(), ppm.RowBytes(size))
	}

	err := bootstrap(ctx, comm, size)
	if err != nil {
		return err
	}

	var startTime = time.Now()
	switch settings.Strategy {
	case task.Sequential:
		if comm.Rank() == 0 {
			err = Sequential(renderer, settings.OutputFile, size)
		}
	case task.Centralized:
		err = Centralized(ctx, comm, renderer, settings.OutputFile, size)
	case task.Dynamic:
		if comm.Rank() == 0 {
			err = coordinator.NewCoordinator(comm, settings.OutputFile, size, settings.Heartbeat()).Run(ctx)
		} else {
			err = worker.NewWorker(comm, renderer).Run(ctx)
		}
	case task.Decentralized:
		err = Decentralized(ctx, comm, renderer, settings.OutputFile, size)
	default:
		err = fmt.Errorf("unknown strategy %s", settings.Strategy)
	}
	if err != nil {
		return err
	}

	// Nobody leaves until every row is on disk
	err = comm.Barrier(ctx)
	if err != nil {
		return fmt.Errorf("teardown - %w", err)
	}

	elapsedTime := time.Since(startTime)
	if comm.Rank() == 0 {
		logger.Infof("Rendered %s to %s with %d ranks in %s", settings.Strategy, settings.OutputFile, comm.Size(),
			elapsedTime)
	} else {
		logger.Debugf("Done in %s", elapsedTime)
	}
	return nil
}

// RunLocal renders with an in-process pool of the given size, one goroutine per rank
func RunLocal(ctx context.Context, size int, settings Settings, renderer task.RowRenderer) error {
	if size < 1 {
		return fmt.Errorf("%w: pool of %d", misc.ErrPoolTooSmall, size)
	}

	group, ctx := errgroup.WithContext(ctx)
	for _, comm := range pool.NewLocal(size) {
		comm := comm
		group.Go(func() error {
			defer comm.Close()
			return Run(ctx, comm, settings, renderer)
		})
	}
	return group.Wait()
}

// bootstrap synchronizes the pool and checks that every rank computed the same header length
func bootstrap(ctx context.Context, comm pool.Communicator, size int) error {
	err := comm.Barrier(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap - %w", err)
	}

	own := ppm.HeaderLength(size)
	shared, err := comm.Broadcast(ctx, 0, int(own))
	if err != nil {
		return fmt.Errorf("bootstrap - %w", err)
	}
	if int64(shared) != own {
		return fmt.Errorf("%w: rank 0 has %d bytes, rank %d has %d", ErrHeaderMismatch, shared, comm.Rank(), own)
	}
	return nil
}
