// Package pool is the execution context shared by every rendering strategy: a fixed set of ranks exchanging
// tagged messages.
//
// Sends and receives block. Messages between one sender and one receiver arrive in the order they were sent, with no
// ordering across different pairs. A rank that never answers stalls its peers until their context is cancelled.
package pool

import (
	"context"
	"errors"
	"fmt"
)

const (
	// AnySource matches a message from any rank
	AnySource = -1
	// AnyTag matches any user tag; it never matches the tags used by collectives
	AnyTag = -1

	tagBarrier   = -2
	tagRelease   = -3
	tagBroadcast = -4
)

var ErrClosed = errors.New("communicator closed")

type Message struct {
	Source  int
	Tag     int
	Payload []byte
}

// Communicator is one rank's view of the pool
type Communicator interface {
	Rank() int
	Size() int
	// Send delivers payload to destination. The payload may be reused once Send returns.
	Send(ctx context.Context, destination int, tag int, payload []byte) error
	// Receive waits for the earliest message matching source and tag, either of which may be a wildcard
	Receive(ctx context.Context, source int, tag int) (Message, error)
	// Barrier returns once every rank has entered it
	Barrier(ctx context.Context) error
	// Broadcast returns root's value on every rank
	Broadcast(ctx context.Context, root int, value int) (int, error)
	Close() error
}

// transport is the raw point to point layer collectives are built on. Unlike Send and Receive it allows reserved tags.
type transport interface {
	Rank() int
	Size() int
	send(ctx context.Context, destination int, tag int, payload []byte) error
	receive(ctx context.Context, source int, tag int) (Message, error)
}

func matches(message Message, source int, tag int) bool {
	if source != AnySource && message.Source != source {
		return false
	}
	if tag == AnyTag {
		return message.Tag >= 0
	}
	return message.Tag == tag
}

func checkDestination(destination int, size int) error {
	if destination < 0 || destination >= size {
		return fmt.Errorf("destination rank %d outside of pool of %d", destination, size)
	}
	return nil
}

func checkSource(source int, size int) error {
	if source != AnySource && (source < 0 || source >= size) {
		return fmt.Errorf("source rank %d outside of pool of %d", source, size)
	}
	return nil
}

func checkSendTag(tag int) error {
	if tag < 0 {
		return fmt.Errorf("tag %d is reserved", tag)
	}
	return nil
}

func checkReceiveTag(tag int) error {
	if tag < 0 && tag != AnyTag {
		return fmt.Errorf("tag %d is reserved", tag)
	}
	return nil
}
