package pool

import (
	"context"
)

// Local is one rank of a pool living inside this process, typically one goroutine per rank
type Local struct {
	boxes []*mailbox
	rank  int
}

// NewLocal returns every rank of a pool of the given size
func NewLocal(size int) []*Local {
	boxes := make([]*mailbox, size)
	for i := range boxes {
		boxes[i] = newMailbox()
	}

	ranks := make([]*Local, size)
	for i := range ranks {
		ranks[i] = &Local{
			boxes: boxes,
			rank:  i,
		}
	}
	return ranks
}

func (l *Local) Rank() int {
	return l.rank
}

func (l *Local) Size() int {
	return len(l.boxes)
}

func (l *Local) Send(ctx context.Context, destination int, tag int, payload []byte) error {
	if err := checkSendTag(tag); err != nil {
		return err
	}
	return l.send(ctx, destination, tag, payload)
}

func (l *Local) Receive(ctx context.Context, source int, tag int) (Message, error) {
	if err := checkReceiveTag(tag); err != nil {
		return Message{}, err
	}
	return l.receive(ctx, source, tag)
}

func (l *Local) Barrier(ctx context.Context) error {
	return barrier(ctx, l)
}

func (l *Local) Broadcast(ctx context.Context, root int, value int) (int, error) {
	return broadcast(ctx, l, root, value)
}

// Close stops this rank's mailbox; receivers blocked on it return ErrClosed
func (l *Local) Close() error {
	l.boxes[l.rank].close()
	return nil
}

func (l *Local) send(ctx context.Context, destination int, tag int, payload []byte) error {
	if err := checkDestination(destination, l.Size()); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	// Senders reuse their row buffers, so the receiver gets its own copy
	copied := append([]byte(nil), payload...)
	return l.boxes[destination].put(Message{Source: l.rank, Tag: tag, Payload: copied})
}

func (l *Local) receive(ctx context.Context, source int, tag int) (Message, error) {
	if err := checkSource(source, l.Size()); err != nil {
		return Message{}, err
	}
	return l.boxes[l.rank].take(ctx, source, tag)
}
