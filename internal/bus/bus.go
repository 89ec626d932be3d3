package bus

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/yanun0323/pkg/sys"
)

// Message is the unit passed through the in-memory bus.
type Message struct {
	Address string
	Payload any
}

// Bus is an addressed publish/subscribe channel. Publishing fans a message
// out to every current subscriber of the address, FIFO per
// publisher/subscriber pair, at most once per subscriber. A subscriber whose
// buffer is full loses the message; nobody else is affected.
type Bus struct {
	mu     sync.RWMutex
	buffer int
	subs   map[string][]*Subscription
	closed bool

	drops  uint64
	onDrop func(address string)
}

// Option configures a Bus.
type Option func(*Bus)

// WithDropHook registers a callback invoked whenever a subscriber buffer
// overflows and a message is discarded for it.
func WithDropHook(hook func(address string)) Option {
	return func(b *Bus) {
		b.onDrop = hook
	}
}

// New allocates a bus whose subscriptions buffer up to the given number of
// undelivered messages each.
func New(buffer int, opts ...Option) *Bus {
	if buffer <= 0 {
		buffer = 1
	}
	b := &Bus{
		buffer: buffer,
		subs:   make(map[string][]*Subscription),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish delivers the payload to every current subscriber of the address.
// It never blocks and reports nothing back; delivery is best effort.
func (b *Bus) Publish(address string, payload any) {
	if b == nil {
		return
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	msg := Message{Address: address, Payload: payload}
	for _, sub := range b.subs[address] {
		select {
		case sub.ch <- msg:
		default:
			atomic.AddUint64(&b.drops, 1)
			if b.onDrop != nil {
				b.onDrop(address)
			}
		}
	}
}

// Subscribe registers a new independent subscriber of the address. Messages
// published before the call are never delivered to it. A nil or closed bus
// yields a subscription whose channel is already closed.
func (b *Bus) Subscribe(address string) *Subscription {
	sub := &Subscription{bus: b, address: address, ch: make(chan Message, b.bufferSize())}
	if b == nil {
		sub.close()
		return sub
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		sub.close()
		return sub
	}
	b.subs[address] = append(b.subs[address], sub)
	return sub
}

// Drops returns the number of messages discarded due to full subscribers.
func (b *Bus) Drops() uint64 {
	if b == nil {
		return 0
	}
	return atomic.LoadUint64(&b.drops)
}

// Close tears down every subscription and stops further delivery.
func (b *Bus) Close() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, list := range b.subs {
		for _, sub := range list {
			sub.close()
		}
	}
	b.subs = nil
}

func (b *Bus) bufferSize() int {
	if b == nil {
		return 1
	}
	return b.buffer
}

// Subscription is one subscriber's live, order-preserving message stream.
type Subscription struct {
	bus     *Bus
	address string
	ch      chan Message
	closed  sync.Once
}

// C exposes the receive channel. It is closed once the subscription ends.
func (s *Subscription) C() <-chan Message {
	return s.ch
}

// Address returns the address this subscription listens on.
func (s *Subscription) Address() string {
	return s.address
}

// Unsubscribe stops further delivery and closes the channel. Messages
// already buffered are discarded with the channel.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	if s.bus != nil {
		s.bus.mu.Lock()
		defer s.bus.mu.Unlock()
		s.detachLocked()
	}
	s.close()
}

// Run drains the subscription until the context is done, the process is
// shutting down, or the subscription is closed. Messages are handled one at
// a time, preserving delivery order.
func (s *Subscription) Run(ctx context.Context, handler func(Message)) {
	if s == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-sys.Shutdown():
			return
		case msg, ok := <-s.ch:
			if !ok {
				return
			}
			handler(msg)
		}
	}
}

// close is only safe while no publisher can reach the subscription, i.e.
// under the bus write lock or before the subscription is attached.
func (s *Subscription) close() {
	s.closed.Do(func() {
		close(s.ch)
	})
}

func (s *Subscription) detachLocked() {
	if s.bus.closed {
		return
	}
	list := s.bus.subs[s.address]
	for i, sub := range list {
		if sub == s {
			s.bus.subs[s.address] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}
