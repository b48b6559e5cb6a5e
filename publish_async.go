package levelbook

import (
	"context"
	"runtime"
	"sync/atomic"
)

// AsyncPublishLevel hands level updates to a downstream PublishLevel on its own
// goroutine through a multi-producer ring buffer, so books sharing one
// publisher never wait on the downstream consumer beyond a full buffer.
//
// Updates are copied into the ring on Publish, which satisfies the clone
// requirement of PublishLevel. Downstream receives pointers into the ring and
// must not retain them after Publish returns.
type AsyncPublishLevel struct {
	// Cache line padding to avoid false sharing
	_           [56]byte
	producerSeq atomic.Int64
	_           [56]byte
	consumerSeq atomic.Int64
	_           [56]byte

	buffer     []LevelUpdate
	bufferMask int64
	capacity   int64

	// published[i] holds the sequence last written to slot i
	published []atomic.Int64

	downstream PublishLevel
	isShutdown atomic.Bool
	stopped    chan struct{}
}

// NewAsyncPublishLevel creates an async publisher in front of downstream.
// capacity must be a power of 2.
func NewAsyncPublishLevel(capacity int64, downstream PublishLevel) *AsyncPublishLevel {
	if capacity <= 0 || (capacity&(capacity-1)) != 0 {
		panic("capacity must be a power of 2")
	}

	p := &AsyncPublishLevel{
		buffer:     make([]LevelUpdate, capacity),
		published:  make([]atomic.Int64, capacity),
		bufferMask: capacity - 1,
		capacity:   capacity,
		downstream: downstream,
		stopped:    make(chan struct{}),
	}
	p.producerSeq.Store(-1)
	p.consumerSeq.Store(-1)
	for i := range p.published {
		p.published[i].Store(-1)
	}
	return p
}

// Start launches the consumer goroutine.
func (p *AsyncPublishLevel) Start() {
	go p.consumerLoop()
}

// Publish copies updates into the ring. Safe for concurrent use.
// Updates published after Shutdown are dropped.
func (p *AsyncPublishLevel) Publish(updates ...*LevelUpdate) {
	for _, u := range updates {
		if p.isShutdown.Load() {
			return
		}

		var seq int64
		for {
			// Claim a sequence
			current := p.producerSeq.Load()
			seq = current + 1

			// wait while the slot still holds an update the consumer has not seen
			if seq-p.capacity > p.consumerSeq.Load() {
				runtime.Gosched()
				continue
			}
			if p.producerSeq.CompareAndSwap(current, seq) {
				break
			}
			runtime.Gosched()
		}

		// Write to the slot and make it visible to the consumer
		index := seq & p.bufferMask
		p.buffer[index] = *u
		p.published[index].Store(seq)
	}
}

// Shutdown stops accepting updates and waits until every claimed update has
// been delivered downstream or ctx is done.
func (p *AsyncPublishLevel) Shutdown(ctx context.Context) error {
	p.isShutdown.Store(true)

	select {
	case <-p.stopped:
		return nil
	case <-ctx.Done():
		return ErrPublisherTimeout
	}
}

func (p *AsyncPublishLevel) consumerLoop() {
	defer close(p.stopped)

	next := p.consumerSeq.Load() + 1
	for {
		// read the flag before the sequence so nothing claimed before shutdown is missed
		shutdown := p.isShutdown.Load()
		available := p.producerSeq.Load()

		for ; next <= available; next++ {
			p.deliver(next)
		}

		if shutdown {
			return
		}
		runtime.Gosched()
	}
}

func (p *AsyncPublishLevel) deliver(seq int64) {
	index := seq & p.bufferMask

	// the producer may have claimed the slot but not finished writing it
	for p.published[index].Load() != seq {
		runtime.Gosched()
	}

	p.downstream.Publish(&p.buffer[index])
	p.consumerSeq.Store(seq)
}

// Pending returns the number of claimed updates not yet delivered.
func (p *AsyncPublishLevel) Pending() int64 {
	return p.producerSeq.Load() - p.consumerSeq.Load()
}
