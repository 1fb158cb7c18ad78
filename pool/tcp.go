package pool

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/BrugadaSyndrome/bslogger"
	"github.com/BrugadaSyndrome/multirpc"

	"mandelbrot/misc"
)

const connectRetry = 100 * time.Millisecond

type server interface {
	Run() error
	Stop() error
}

type client interface {
	Call(method string, request interface{}, reply interface{}) error
	Connect() error
	Disconnect() error
}

// Envelope is one message on the wire between two ranks
type Envelope struct {
	Compressed bool
	Payload    []byte
	Session    string
	Source     int
	Tag        int
}

// Mailbox is the rpc object every rank serves. Peers send by calling Mailbox.Deliver.
type Mailbox struct {
	box     *mailbox
	logger  bslogger.Logger
	session string
	size    int
}

func (m *Mailbox) Deliver(envelope Envelope, reply *misc.Nothing) error {
	if envelope.Session != m.session {
		m.logger.Warningf("Rejected message from rank %d of session %s", envelope.Source, envelope.Session)
		return fmt.Errorf("message from session %s delivered to session %s", envelope.Session, m.session)
	}
	if envelope.Source < 0 || envelope.Source >= m.size {
		return fmt.Errorf("source rank %d outside of pool of %d", envelope.Source, m.size)
	}

	payload := envelope.Payload
	if envelope.Compressed {
		var err error
		payload, err = decompress(payload)
		if err != nil {
			return err
		}
	}

	m.logger.Debugf("Received %d bytes from rank %d with tag %d", len(payload), envelope.Source, envelope.Tag)
	return m.box.put(Message{Source: envelope.Source, Tag: envelope.Tag, Payload: payload})
}

// Tcp is one rank of a pool of OS processes talking net/rpc, either raw over TCP or tunnelled over HTTP
type Tcp struct {
	clients   []client
	connected []bool
	locks     []sync.Mutex
	mailbox   *Mailbox
	server    server
	settings  Settings

	Logger bslogger.Logger
}

// NewTcp starts serving this rank's mailbox. Peers are dialled lazily on the first send to them.
func NewTcp(settings Settings) (*Tcp, error) {
	err := settings.Verify()
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("Rank %d", settings.Rank)
	t := &Tcp{
		clients:   make([]client, settings.Size),
		connected: make([]bool, settings.Size),
		locks:     make([]sync.Mutex, settings.Size),
		settings:  settings,
		Logger:    bslogger.NewLogger(name, bslogger.Normal, nil),
	}
	t.mailbox = &Mailbox{
		box:     newMailbox(),
		logger:  t.Logger,
		session: settings.Session,
		size:    settings.Size,
	}

	address := settings.Peers[settings.Rank]
	switch settings.Transport {
	case TransportHttp:
		httpServer := multirpc.NewHttpServer(t.mailbox, address, fmt.Sprintf("HttpServer %d", settings.Rank))
		t.server = &httpServer
	default:
		tcpServer := multirpc.NewTcpServer(t.mailbox, address, fmt.Sprintf("TcpServer %d", settings.Rank))
		t.server = &tcpServer
	}
	err = t.server.Run()
	if err != nil {
		return nil, fmt.Errorf("unable to serve rank %d at %s - %w", settings.Rank, address, err)
	}

	for rank, peer := range settings.Peers {
		if rank == settings.Rank {
			continue
		}
		clientName := fmt.Sprintf("Rank %d to %d", settings.Rank, rank)
		switch settings.Transport {
		case TransportHttp:
			httpClient := multirpc.NewHttpClient(peer, clientName)
			t.clients[rank] = &httpClient
		default:
			tcpClient := multirpc.NewTcpClient(peer, clientName)
			t.clients[rank] = &tcpClient
		}
	}

	t.Logger.Infof("Joined session %s as rank %d of %d over %s", settings.Session, settings.Rank, settings.Size,
		settings.Transport)
	return t, nil
}

func (t *Tcp) Rank() int {
	return t.settings.Rank
}

func (t *Tcp) Size() int {
	return t.settings.Size
}

func (t *Tcp) Send(ctx context.Context, destination int, tag int, payload []byte) error {
	if err := checkSendTag(tag); err != nil {
		return err
	}
	return t.send(ctx, destination, tag, payload)
}

func (t *Tcp) Receive(ctx context.Context, source int, tag int) (Message, error) {
	if err := checkReceiveTag(tag); err != nil {
		return Message{}, err
	}
	return t.receive(ctx, source, tag)
}

func (t *Tcp) Barrier(ctx context.Context) error {
	return barrier(ctx, t)
}

func (t *Tcp) Broadcast(ctx context.Context, root int, value int) (int, error) {
	return broadcast(ctx, t, root, value)
}

// Close drops every peer connection and stops serving. Call it only once no peer will send to this rank again.
func (t *Tcp) Close() error {
	var firstErr error
	for rank := range t.clients {
		if t.clients[rank] == nil {
			continue
		}
		t.locks[rank].Lock()
		if t.connected[rank] {
			if err := t.clients[rank].Disconnect(); err != nil && firstErr == nil {
				firstErr = err
			}
			t.connected[rank] = false
		}
		t.locks[rank].Unlock()
	}

	if err := t.server.Stop(); err != nil && firstErr == nil {
		firstErr = err
	}
	t.mailbox.box.close()
	return firstErr
}

func (t *Tcp) send(ctx context.Context, destination int, tag int, payload []byte) error {
	if err := checkDestination(destination, t.Size()); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if destination == t.settings.Rank {
		copied := append([]byte(nil), payload...)
		return t.mailbox.box.put(Message{Source: t.settings.Rank, Tag: tag, Payload: copied})
	}

	envelope := Envelope{
		Payload: payload,
		Session: t.settings.Session,
		Source:  t.settings.Rank,
		Tag:     tag,
	}
	if t.settings.Compress && len(payload) > 0 {
		compressed, err := compress(payload)
		if err != nil {
			return err
		}
		envelope.Payload = compressed
		envelope.Compressed = true
	}

	t.locks[destination].Lock()
	defer t.locks[destination].Unlock()

	err := t.connect(ctx, destination)
	if err != nil {
		return err
	}

	var reply misc.Nothing
	err = t.clients[destination].Call("Mailbox.Deliver", envelope, &reply)
	if err != nil {
		return fmt.Errorf("unable to deliver to rank %d - %w", destination, err)
	}
	return nil
}

func (t *Tcp) receive(ctx context.Context, source int, tag int) (Message, error) {
	if err := checkSource(source, t.Size()); err != nil {
		return Message{}, err
	}
	return t.mailbox.box.take(ctx, source, tag)
}

// connect dials destination until it answers or ConnectTimeout passes. Peers launched together start at slightly
// different times. The caller holds the destination's lock.
func (t *Tcp) connect(ctx context.Context, destination int) error {
	if t.connected[destination] {
		return nil
	}

	deadline := time.Now().Add(t.settings.ConnectTimeout)
	for {
		err := t.clients[destination].Connect()
		if err == nil {
			t.connected[destination] = true
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("unable to reach rank %d at %s within %s - %w", destination,
				t.settings.Peers[destination], t.settings.ConnectTimeout, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(connectRetry):
		}
	}
}
