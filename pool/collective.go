package pool

import (
	"context"
	"encoding/binary"
	"fmt"
)

// barrier gathers a token from every rank at rank 0, then releases them all
func barrier(ctx context.Context, t transport) error {
	if t.Size() == 1 {
		return nil
	}

	if t.Rank() != 0 {
		if err := t.send(ctx, 0, tagBarrier, nil); err != nil {
			return fmt.Errorf("barrier: %w", err)
		}
		if _, err := t.receive(ctx, 0, tagRelease); err != nil {
			return fmt.Errorf("barrier: %w", err)
		}
		return nil
	}

	for rank := 1; rank < t.Size(); rank++ {
		if _, err := t.receive(ctx, rank, tagBarrier); err != nil {
			return fmt.Errorf("barrier: waiting for rank %d: %w", rank, err)
		}
	}
	for rank := 1; rank < t.Size(); rank++ {
		if err := t.send(ctx, rank, tagRelease, nil); err != nil {
			return fmt.Errorf("barrier: releasing rank %d: %w", rank, err)
		}
	}
	return nil
}

func broadcast(ctx context.Context, t transport, root int, value int) (int, error) {
	if err := checkDestination(root, t.Size()); err != nil {
		return 0, fmt.Errorf("broadcast: %w", err)
	}

	if t.Rank() == root {
		payload := make([]byte, 8)
		binary.BigEndian.PutUint64(payload, uint64(int64(value)))
		for rank := 0; rank < t.Size(); rank++ {
			if rank == root {
				continue
			}
			if err := t.send(ctx, rank, tagBroadcast, payload); err != nil {
				return 0, fmt.Errorf("broadcast: sending to rank %d: %w", rank, err)
			}
		}
		return value, nil
	}

	message, err := t.receive(ctx, root, tagBroadcast)
	if err != nil {
		return 0, fmt.Errorf("broadcast: %w", err)
	}
	if len(message.Payload) != 8 {
		return 0, fmt.Errorf("broadcast: payload of %d bytes", len(message.Payload))
	}
	return int(int64(binary.BigEndian.Uint64(message.Payload))), nil
}
