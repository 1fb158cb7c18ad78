package render

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"mandelbrot/mandelbrot"
	"mandelbrot/misc"
	"mandelbrot/pool"
	"mandelbrot/task"
)

func TestRenderOverTcpPool(t *testing.T) {
	const ranks = 3
	viewport := mandelbrot.SeahorseValley.WithSize(24)
	want := reference(t, viewport)

	tests := []struct {
		strategy  task.Strategy
		transport string
		compress  bool
	}{
		{strategy: task.Decentralized, transport: pool.TransportTcp},
		{strategy: task.Dynamic, transport: pool.TransportTcp, compress: true},
		{strategy: task.Centralized, transport: pool.TransportHttp},
	}
	for _, test := range tests {
		addresses, err := misc.GetFreeAddresses("127.0.0.1", ranks)
		if err != nil {
			t.Fatal(err)
		}
		session := pool.NewSession()

		comms := make([]*pool.Tcp, ranks)
		for rank := range comms {
			comms[rank], err = pool.NewTcp(pool.Settings{
				Compress:  test.compress,
				Peers:     addresses,
				Rank:      rank,
				Session:   session,
				Size:      ranks,
				Transport: test.transport,
			})
			if err != nil {
				t.Fatal(err)
			}
		}

		settings := Settings{
			OutputFile: filepath.Join(t.TempDir(), test.strategy.DefaultOutputFile()),
			Strategy:   test.strategy,
			Viewport:   viewport,
		}
		if err := settings.Verify(); err != nil {
			t.Fatal(err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		group, ctx := errgroup.WithContext(ctx)
		for _, comm := range comms {
			comm := comm
			group.Go(func() error {
				return Run(ctx, comm, settings, newRenderer(viewport))
			})
		}
		err = group.Wait()
		cancel()
		for _, comm := range comms {
			if closeErr := comm.Close(); closeErr != nil {
				t.Errorf("%s over %s: close - %v", test.strategy, test.transport, closeErr)
			}
		}
		if err != nil {
			t.Fatalf("%s over %s: %v", test.strategy, test.transport, err)
		}

		got, err := os.ReadFile(settings.OutputFile)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("%s over %s: image differs from the sequential render", test.strategy, test.transport)
		}
	}
}
