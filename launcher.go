package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"golang.org/x/sync/errgroup"

	"mandelbrot/misc"
	"mandelbrot/pool"
)

// launch runs count copies of this program with args, each told its rank through the environment.
// The first rank to fail cancels the rest.
func launch(ctx context.Context, count int, args []string) error {
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("unable to find this program - %w", err)
	}
	members, err := poolMembers(count, host)
	if err != nil {
		return err
	}

	group, ctx := errgroup.WithContext(ctx)
	for _, member := range members {
		cmd := exec.CommandContext(ctx, executable, args...)
		cmd.Env = append(os.Environ(), member.Environment()...)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		rank := member.Rank
		group.Go(func() error {
			if err := cmd.Run(); err != nil {
				return fmt.Errorf("rank %d - %w", rank, err)
			}
			return nil
		})
	}
	return group.Wait()
}

// poolMembers builds and verifies the settings of every rank of a launched pool
func poolMembers(count int, host string) ([]pool.Settings, error) {
	if count < 1 {
		return nil, fmt.Errorf("%w: cannot launch %d processes", misc.ErrPoolTooSmall, count)
	}

	host, err := listenHost(host)
	if err != nil {
		return nil, err
	}
	addresses, err := misc.GetFreeAddresses(host, count)
	if err != nil {
		return nil, err
	}
	session := pool.NewSession()

	members := make([]pool.Settings, count)
	for rank := range members {
		members[rank] = pool.Settings{
			Compress:  compress,
			Peers:     addresses,
			Rank:      rank,
			Session:   session,
			Size:      count,
			Transport: transport,
		}
		err = members[rank].Verify()
		if err != nil {
			return nil, fmt.Errorf("rank %d - %w", rank, err)
		}
	}
	return members, nil
}

// listenHost resolves an empty host to this machine's network address
func listenHost(host string) (string, error) {
	if host != "" {
		return host, nil
	}
	return misc.GetLocalAddress()
}
