// Package events relays todo mutations between server instances over Redis
// pub/sub so that websocket clients on every instance see the same stream.
package events

import (
	"context"
	"encoding/json"

	"todo_app/internal/domain"
	"todo_app/internal/logger"

	redis "github.com/redis/go-redis/v9"
)

// Broadcaster delivers an event to the locally connected clients.
type Broadcaster interface {
	BroadcastEvent(ev domain.TodoEvent)
}

type RedisBridge struct {
	rdb     *redis.Client
	channel string
	local   Broadcaster
	sub     *redis.PubSub
}

func NewRedisBridge(rdb *redis.Client, channel string, local Broadcaster) *RedisBridge {
	return &RedisBridge{rdb: rdb, channel: channel, local: local}
}

// Publish sends ev to the channel. Local clients receive it back through Run.
// If Redis is unreachable the event is delivered locally only.
func (b *RedisBridge) Publish(ctx context.Context, ev domain.TodoEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		logger.Error("events marshal", "error", err)
		return
	}

	if err := b.rdb.Publish(ctx, b.channel, payload).Err(); err != nil {
		logger.WithContext(ctx).Warn("events publish failed, delivering locally", "channel", b.channel, "error", err)
		b.local.BroadcastEvent(ev)
	}
}

// Subscribe attaches to the channel and returns once Redis has confirmed the
// subscription. Call it before serving traffic so no published event is missed.
func (b *RedisBridge) Subscribe(ctx context.Context) error {
	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return err
	}
	b.sub = sub
	logger.Info("events subscribed", "channel", b.channel)
	return nil
}

// Run forwards channel messages to the local broadcaster until ctx is done.
// It subscribes first if Subscribe has not been called.
func (b *RedisBridge) Run(ctx context.Context) error {
	if b.sub == nil {
		if err := b.Subscribe(ctx); err != nil {
			return err
		}
	}
	defer b.sub.Close()

	ch := b.sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev domain.TodoEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				logger.Warn("events bad payload", "channel", msg.Channel, "error", err)
				continue
			}
			b.local.BroadcastEvent(ev)
		}
	}
}
