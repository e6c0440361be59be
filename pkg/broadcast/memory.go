package broadcast

import (
	"context"
	"sync"
)

// MemoryBroadcaster is an in-memory Broadcaster implementation suitable for
// single-process fan-out. Message delivery is non-blocking; subscribers with
// full buffers skip messages instead of stalling the broadcaster.
type MemoryBroadcaster[T any] struct {
	mu      sync.RWMutex
	subs    map[*memorySubscriber[T]]struct{}
	bufSize int
	closed  bool
}

// NewMemoryBroadcaster creates an in-memory broadcaster with the given
// per-subscriber buffer size. A non-positive size falls back to 1.
func NewMemoryBroadcaster[T any](bufSize int) *MemoryBroadcaster[T] {
	if bufSize <= 0 {
		bufSize = 1
	}
	return &MemoryBroadcaster[T]{
		subs:    make(map[*memorySubscriber[T]]struct{}),
		bufSize: bufSize,
	}
}

// Broadcast delivers msg to every active subscriber without blocking.
func (b *MemoryBroadcaster[T]) Broadcast(ctx context.Context, msg Message[T]) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrBroadcasterClosed
	}

	for sub := range b.subs {
		select {
		case sub.ch <- msg:
		default:
			// Buffer full: drop for this subscriber rather than block.
		}
	}
	return nil
}

// Subscribe registers a subscriber that is removed automatically when ctx is
// cancelled.
func (b *MemoryBroadcaster[T]) Subscribe(ctx context.Context) Subscriber[T] {
	sub := &memorySubscriber[T]{
		ch:     make(chan Message[T], b.bufSize),
		parent: b,
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(sub.ch)
		sub.closed = true
		return sub
	}
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		_ = sub.Close()
	}()

	return sub
}

// Close shuts down the broadcaster and closes all subscriber channels.
func (b *MemoryBroadcaster[T]) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for sub := range b.subs {
		sub.markClosed()
		delete(b.subs, sub)
	}
	return nil
}

func (b *MemoryBroadcaster[T]) remove(sub *memorySubscriber[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[sub]; ok {
		delete(b.subs, sub)
		sub.markClosed()
	}
}

type memorySubscriber[T any] struct {
	ch     chan Message[T]
	parent *MemoryBroadcaster[T]

	mu     sync.Mutex
	closed bool
}

// Receive returns the subscription channel. The channel is closed when the
// subscription ends.
func (s *memorySubscriber[T]) Receive(ctx context.Context) <-chan Message[T] {
	return s.ch
}

// Close ends the subscription. Safe to call multiple times.
func (s *memorySubscriber[T]) Close() error {
	if s.parent != nil {
		s.parent.remove(s)
	}
	s.markClosed()
	return nil
}

func (s *memorySubscriber[T]) markClosed() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}
