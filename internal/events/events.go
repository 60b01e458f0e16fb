// Package events carries session state changes from the conversation manager
// to any number of observers over an in-process watermill pub/sub.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/bwmarrin/snowflake"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/transcendencex/txchat/internal/logging"
	"github.com/transcendencex/txchat/internal/models"
)

// Topic is the watermill topic session events are published on
const Topic = "session"

// Type names a kind of state change
type Type string

const (
	TypeConversationCreated  Type = "conversation.created"
	TypeConversationSelected Type = "conversation.selected"
	TypeConversationDeleted  Type = "conversation.deleted"
	TypeMessageSent          Type = "message.sent"
	TypeReplyReceived        Type = "reply.received"
	TypeReplyDiscarded       Type = "reply.discarded"
	TypeReplyFailed          Type = "reply.failed"
)

// Event is published after every mutation. Seq is assigned while the
// manager holds its lock, so it orders events even if delivery interleaves.
type Event struct {
	Seq            uint64          `json:"seq"`
	Type           Type            `json:"type"`
	ConversationID snowflake.ID    `json:"conversation_id,omitempty"`
	Time           time.Time       `json:"time"`
	Snapshot       models.Snapshot `json:"snapshot"`
}

// Bus is a gochannel-backed publisher/subscriber for Events.
type Bus struct {
	pubSub *gochannel.GoChannel
	logger zerolog.Logger

	closeOnce sync.Once
	closeErr  error
}

// NewBus creates a Bus. Publishing blocks until every current subscriber has
// acknowledged the message, which keeps delivery in publish order.
func NewBus(logger zerolog.Logger) *Bus {
	pubSub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer:            64,
		BlockPublishUntilSubscriberAck: true,
	}, logging.NewWatermill(logger))

	return &Bus{
		pubSub: pubSub,
		logger: logger.With().Str("component", "events").Logger(),
	}
}

// NewDefaultBus creates a Bus logging through the global logger
func NewDefaultBus() *Bus {
	return NewBus(log.Logger)
}

// Publish serialises ev and publishes it on Topic. With no subscribers the
// event is dropped.
func (b *Bus) Publish(ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("type", string(ev.Type))
	msg.Metadata.Set("seq", strconv.FormatUint(ev.Seq, 10))

	if err := b.pubSub.Publish(Topic, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", ev.Type, err)
	}

	b.logger.Trace().Uint64("seq", ev.Seq).Str("type", string(ev.Type)).Msg("published event")
	return nil
}

// Subscribe returns a channel of decoded events. The channel is closed when
// ctx is cancelled or the bus is closed.
func (b *Bus) Subscribe(ctx context.Context) (<-chan Event, error) {
	messages, err := b.pubSub.Subscribe(ctx, Topic)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	out := make(chan Event, 16)
	go func() {
		defer close(out)
		for msg := range messages {
			var ev Event
			if err := json.Unmarshal(msg.Payload, &ev); err != nil {
				b.logger.Warn().Err(err).Str("uuid", msg.UUID).Msg("dropping undecodable event")
				msg.Ack()
				continue
			}

			select {
			case out <- ev:
				msg.Ack()
			case <-ctx.Done():
				msg.Ack()
				return
			}
		}
	}()

	return out, nil
}

// Close shuts the pub/sub down. Safe to call more than once.
func (b *Bus) Close() error {
	b.closeOnce.Do(func() {
		b.closeErr = b.pubSub.Close()
	})
	return b.closeErr
}
