package broadcast

import "context"

// Message wraps broadcast payloads for type-safe delivery.
type Message[T any] struct {
	Data T
}

// Broadcaster sends messages to all active subscribers.
// Implementations must be safe for concurrent use.
type Broadcaster[T any] interface {
	// Broadcast delivers the message to every active subscriber.
	// Delivery is best effort: subscribers with full buffers miss the message.
	Broadcast(ctx context.Context, msg Message[T]) error

	// Subscribe registers a new subscriber. The subscription ends when the
	// context is cancelled or the subscriber is closed.
	Subscribe(ctx context.Context) Subscriber[T]

	// Close shuts down the broadcaster and all its subscribers.
	Close() error
}

// Subscriber receives broadcast messages.
type Subscriber[T any] interface {
	// Receive returns the channel of incoming messages. The channel is closed
	// when the subscription ends.
	Receive(ctx context.Context) <-chan Message[T]

	// Close ends the subscription.
	Close() error
}
