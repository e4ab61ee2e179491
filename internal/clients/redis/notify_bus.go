package redis

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/wavebreaker/wavebreaker/internal/logger"
	"github.com/wavebreaker/wavebreaker/internal/sse"
)

// NotifyBus carries notification messages (dethrones, rival
// declarations) between server instances over Redis pub/sub, so a
// player connected to one instance still hears about a score submitted
// through another.
type NotifyBus interface {
	Publish(ctx context.Context, msg sse.Message) error
	StartForwarder(ctx context.Context, onMsg func(m sse.Message)) error
	Close() error
}

type notifyBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

func NewNotifyBus(log *logger.Logger, rdb *goredis.Client, channel string) (NotifyBus, error) {
	if rdb == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if channel == "" {
		channel = "wavebreaker:notifications"
	}
	return &notifyBus{
		log:     log.With("service", "RedisNotifyBus"),
		rdb:     rdb,
		channel: channel,
	}, nil
}

func (b *notifyBus) Publish(ctx context.Context, msg sse.Message) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notify message: %w", err)
	}
	if err := b.rdb.Publish(ctx, b.channel, raw).Err(); err != nil {
		return fmt.Errorf("publish notify message: %w", err)
	}
	return nil
}

// StartForwarder subscribes to the bus channel and invokes onMsg for
// every message until ctx is cancelled.
func (b *notifyBus) StartForwarder(ctx context.Context, onMsg func(m sse.Message)) error {
	pubsub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}

	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok {
					return
				}
				var msg sse.Message
				if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
					b.log.Warn("Dropping malformed notify message", "error", err)
					continue
				}
				onMsg(msg)
			}
		}
	}()
	return nil
}

func (b *notifyBus) Close() error {
	return b.rdb.Close()
}
