/*
channel.go - Multi-producer, single-consumer ingestion channel

PURPOSE:
  Every transaction enters the engine through one shared ordered queue,
  regardless of how many independent producers exist (a file reader today,
  network listeners or upstream feeds tomorrow). One total order over a
  single queue is what lets the engine stay lock-free.

ORDERING GUARANTEES:
  - Per producer: FIFO, always.
  - Across producers: first enqueued, first delivered. A single shared
    queue, not per-producer queues merged later.

LIFECYCLE:
  Each producer takes a handle via Producer() and must Close() it when done.
  Closing the last handle seals the channel, which the consumer observes as
  end-of-stream. Send on a closed handle (or a sealed channel) returns
  ErrChannelClosed rather than panicking.
*/
package ledger

import "sync"

// =============================================================================
// CHANNEL
// =============================================================================

type Channel struct {
	records chan Record

	mu        sync.Mutex
	producers int
	sealed    bool
}

// NewChannel creates a channel with the given buffer depth. A zero buffer
// makes every Send rendezvous with the consumer.
func NewChannel(buffer int) *Channel {
	if buffer < 0 {
		buffer = 0
	}
	return &Channel{records: make(chan Record, buffer)}
}

// Producer hands out a new producer handle. It fails once the channel has
// sealed (all previous handles closed).
func (c *Channel) Producer() (*Producer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sealed {
		return nil, ErrChannelClosed
	}
	c.producers++
	return &Producer{ch: c}, nil
}

// Receive blocks until a record is available or the channel is sealed and
// drained. ok is false only at end-of-stream.
func (c *Channel) Receive() (Record, bool) {
	rec, ok := <-c.records
	return rec, ok
}

// TryReceive returns immediately: ok is false when nothing is buffered.
// Used by the consumer to drain after cancellation.
func (c *Channel) TryReceive() (Record, bool) {
	select {
	case rec, ok := <-c.records:
		return rec, ok
	default:
		return Record{}, false
	}
}

// =============================================================================
// PRODUCER HANDLE
// =============================================================================

type Producer struct {
	ch *Channel

	mu     sync.Mutex
	closed bool
}

// Send enqueues one record, blocking if the buffer is full. It returns
// ErrChannelClosed after Close.
func (p *Producer) Send(rec Record) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrChannelClosed
	}
	p.ch.records <- rec
	return nil
}

// Close releases the handle. Closing the last open handle seals the channel
// and signals end-of-stream to the consumer. Close is idempotent.
func (p *Producer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true

	c := p.ch
	c.mu.Lock()
	c.producers--
	if c.producers == 0 {
		c.sealed = true
		close(c.records)
	}
	c.mu.Unlock()
}
