package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds Redis connection settings for the Redis-backed broadcaster.
type RedisConfig struct {
	ConnectionURL  string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
}

var (
	// ErrEmptyConnectionURL is returned when connecting without a Redis URL.
	ErrEmptyConnectionURL = errors.New("broadcast: empty redis connection URL")
	// ErrRedisNotReady is returned when Redis does not answer pings within the
	// configured retry attempts.
	ErrRedisNotReady = errors.New("broadcast: redis did not become ready within the given time period")
)

// ConnectRedis creates a Redis client and verifies connectivity with retries
// before returning it.
func ConnectRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	if cfg.ConnectionURL == "" {
		return nil, ErrEmptyConnectionURL
	}

	opts, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, fmt.Errorf("broadcast: failed to parse redis connection string: %w", err)
	}

	client := redis.NewClient(opts)

	attempts := cfg.RetryAttempts
	if attempts <= 0 {
		attempts = 1
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	var pingErr error
	for i := 0; i < attempts; i++ {
		if pingErr = client.Ping(ctx).Err(); pingErr == nil {
			return client, nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			_ = client.Close()
			return nil, errors.Join(ErrRedisNotReady, ctx.Err())
		case <-time.After(cfg.RetryInterval):
		}
	}

	_ = client.Close()
	return nil, errors.Join(ErrRedisNotReady, pingErr)
}

// RedisBroadcaster propagates messages across execution contexts through a
// Redis pub/sub channel. Payloads are JSON-encoded, so T must be
// JSON-serializable.
type RedisBroadcaster[T any] struct {
	client  *redis.Client
	channel string
	bufSize int

	mu     sync.Mutex
	subs   []*redisSubscriber[T]
	closed bool
}

// NewRedisBroadcaster creates a broadcaster over the given pub/sub channel.
// The bufSize applies per subscriber, as in MemoryBroadcaster.
func NewRedisBroadcaster[T any](client *redis.Client, channel string, bufSize int) *RedisBroadcaster[T] {
	if bufSize <= 0 {
		bufSize = 1
	}
	return &RedisBroadcaster[T]{
		client:  client,
		channel: channel,
		bufSize: bufSize,
	}
}

// Broadcast publishes msg to the Redis channel. All subscribers across all
// connected processes receive it.
func (b *RedisBroadcaster[T]) Broadcast(ctx context.Context, msg Message[T]) error {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return ErrBroadcasterClosed
	}

	payload, err := json.Marshal(msg.Data)
	if err != nil {
		return fmt.Errorf("broadcast: failed to encode message: %w", err)
	}

	return b.client.Publish(ctx, b.channel, payload).Err()
}

// Subscribe opens a Redis subscription. Messages that fail to decode are
// skipped.
func (b *RedisBroadcaster[T]) Subscribe(ctx context.Context) Subscriber[T] {
	sub := &redisSubscriber[T]{
		ch:     make(chan Message[T], b.bufSize),
		pubsub: b.client.Subscribe(ctx, b.channel),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		_ = sub.pubsub.Close()
		close(sub.ch)
		sub.closed = true
		return sub
	}
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	go sub.run(ctx)

	return sub
}

// Close shuts down all subscriptions. The Redis client itself is owned by the
// caller and stays open.
func (b *RedisBroadcaster[T]) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for _, sub := range b.subs {
		_ = sub.Close()
	}
	b.subs = nil
	return nil
}

type redisSubscriber[T any] struct {
	ch     chan Message[T]
	pubsub *redis.PubSub

	mu     sync.Mutex
	closed bool
}

func (s *redisSubscriber[T]) run(ctx context.Context) {
	defer s.markClosed()

	incoming := s.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			_ = s.pubsub.Close()
			return
		case raw, ok := <-incoming:
			if !ok {
				return
			}
			var data T
			if err := json.Unmarshal([]byte(raw.Payload), &data); err != nil {
				continue
			}
			select {
			case s.ch <- Message[T]{Data: data}:
			default:
				// Buffer full: drop for this subscriber rather than block.
			}
		}
	}
}

// Receive returns the subscription channel.
func (s *redisSubscriber[T]) Receive(ctx context.Context) <-chan Message[T] {
	return s.ch
}

// Close ends the subscription. Safe to call multiple times.
func (s *redisSubscriber[T]) Close() error {
	return s.pubsub.Close()
}

func (s *redisSubscriber[T]) markClosed() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}
