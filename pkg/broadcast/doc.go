// Package broadcast provides a generic pub/sub messaging system with pluggable
// backends.
//
// The package defines two main interfaces:
//   - Broadcaster: sends messages to multiple subscribers
//   - Subscriber: receives broadcast messages
//
// Two backends are included: an in-memory implementation for single-process
// fan-out, and a Redis-backed implementation for propagating messages across
// execution contexts (separate processes, tabs, devices).
//
// Basic broadcasting:
//
//	broadcaster := broadcast.NewMemoryBroadcaster[string](100)
//	defer broadcaster.Close()
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//
//	subscriber := broadcaster.Subscribe(ctx)
//	defer subscriber.Close()
//
//	go func() {
//		for msg := range subscriber.Receive(ctx) {
//			fmt.Printf("received: %s\n", msg.Data)
//		}
//	}()
//
//	broadcaster.Broadcast(ctx, broadcast.Message[string]{Data: "hello"})
//
// # Slow Consumer Handling
//
// Delivery is non-blocking: when a subscriber's buffer is full, messages are
// dropped for that subscriber rather than blocking the broadcast operation.
// This prevents slow consumers from affecting other subscribers.
//
// # Context Integration
//
// Subscriptions are cleaned up automatically when their context is cancelled.
package broadcast
