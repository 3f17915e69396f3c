package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"meetmydesigners/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const channelPrefix = "realtime:"

var (
	ErrInvalidChannel  = errors.New("invalid realtime channel")
	ErrEventNotAllowed = errors.New("event cannot be broadcast by clients")

	channelPattern = regexp.MustCompile(`^(user|booking|session):[A-Za-z0-9_-]+$`)
)

// Events clients may broadcast themselves. Everything else is server-originated.
var ClientEvents = map[string]bool{
	"screen_share_started": true,
	"screen_share_stopped": true,
	"file_upload_progress": true,
}

// Message is one event delivered on a channel.
type Message struct {
	Channel string          `json:"channel"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
	SentAt  time.Time       `json:"sent_at"`
}

// Publisher broadcasts events to everyone subscribed to a channel.
type Publisher interface {
	Publish(ctx context.Context, channel, event string, payload any) error
}

// Hub publishes and subscribes over Redis pub/sub.
type Hub interface {
	Publisher
	Subscribe(ctx context.Context, channel string) (<-chan Message, func(), error)
}

// RedisHub is the Hub backed by the cache Redis instance.
type RedisHub struct {
	Client *redis.Client
}

// ValidateChannel accepts user:<id>, booking:<id> and session:<id>.
func ValidateChannel(channel string) error {
	if !channelPattern.MatchString(channel) {
		return fmt.Errorf("%w: %q", ErrInvalidChannel, channel)
	}
	return nil
}

func (h *RedisHub) Publish(ctx context.Context, channel, event string, payload any) error {
	if err := ValidateChannel(channel); err != nil {
		return err
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", event, err)
	}
	msg, err := json.Marshal(Message{Channel: channel, Event: event, Payload: raw, SentAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	if err := h.Client.Publish(ctx, channelPrefix+channel, msg).Err(); err != nil {
		return fmt.Errorf("failed to publish %s on %s: %w", event, channel, err)
	}
	return nil
}

// Subscribe streams messages for a channel until ctx ends or the returned
// close func is called.
func (h *RedisHub) Subscribe(ctx context.Context, channel string) (<-chan Message, func(), error) {
	if err := ValidateChannel(channel); err != nil {
		return nil, nil, err
	}
	sub := h.Client.Subscribe(ctx, channelPrefix+channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	out := make(chan Message, 16)
	go func() {
		defer close(out)
		for m := range sub.Channel() {
			var msg Message
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
				utils.GetLogger().Warn("realtime: dropping malformed message",
					zap.String("channel", channel), zap.Error(err))
				continue
			}
			select {
			case out <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, func() { _ = sub.Close() }, nil
}

// PublishSafe logs instead of returning the error. Realtime delivery never
// fails the operation that triggered it.
func PublishSafe(ctx context.Context, p Publisher, channel, event string, payload any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, channel, event, payload); err != nil {
		utils.GetLogger().Warn("realtime: publish failed",
			zap.String("channel", channel), zap.String("event", event), zap.Error(err))
	}
}

func UserChannel(id string) string    { return "user:" + id }
func BookingChannel(id string) string { return "booking:" + id }
func SessionChannel(id string) string { return "session:" + id }
