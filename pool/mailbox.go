package pool

import (
	"context"
	"sync"
)

// mailbox queues the messages delivered to one rank in arrival order
type mailbox struct {
	arrived chan struct{}
	closed  bool
	mutex   sync.Mutex
	pending []Message
}

func newMailbox() *mailbox {
	return &mailbox{
		arrived: make(chan struct{}),
	}
}

func (m *mailbox) put(message Message) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.closed {
		return ErrClosed
	}
	m.pending = append(m.pending, message)

	// Wake every waiting receiver, each rescans for its own match
	close(m.arrived)
	m.arrived = make(chan struct{})
	return nil
}

// take removes the earliest pending message matching source and tag, waiting for one to arrive if necessary
func (m *mailbox) take(ctx context.Context, source int, tag int) (Message, error) {
	for {
		m.mutex.Lock()
		for i, message := range m.pending {
			if matches(message, source, tag) {
				m.pending = append(m.pending[:i], m.pending[i+1:]...)
				m.mutex.Unlock()
				return message, nil
			}
		}
		if m.closed {
			m.mutex.Unlock()
			return Message{}, ErrClosed
		}
		arrived := m.arrived
		m.mutex.Unlock()

		select {
		case <-arrived:
		case <-ctx.Done():
			return Message{}, ctx.Err()
		}
	}
}

func (m *mailbox) close() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.closed {
		return
	}
	m.closed = true
	close(m.arrived)
}

func (m *mailbox) len() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.pending)
}
