// Package notifications delivers direct messages to connected websocket
// clients through Redis pub/sub.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"
	"strings"

	"agora/internal/middleware"
	"agora/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	userChannelPrefix = "notifications:user:"
	userChannelGlob   = userChannelPrefix + "*"

	// EventMessage is the event type pushed when a direct message arrives.
	EventMessage = "message"
)

// Event is the envelope written to websocket clients.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Notifier publishes events to per-user Redis channels.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier returns a Notifier. With a nil client every publish is a no-op.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID uint) string {
	return userChannelPrefix + strconv.FormatUint(uint64(userID), 10)
}

// ParseUserChannel extracts the user id from a channel built by UserChannel.
func ParseUserChannel(channel string) (uint, error) {
	raw, ok := strings.CutPrefix(channel, userChannelPrefix)
	if !ok {
		return 0, fmt.Errorf("invalid notification channel: %s", channel)
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid notification channel: %s", channel)
	}
	return uint(id), nil
}

// PublishUser sends a raw payload to a user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, payload string) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// PublishMessage pushes a stored direct message to the receiver.
func (n *Notifier) PublishMessage(ctx context.Context, receiverID uint, message *models.Message) error {
	if n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(Event{Type: EventMessage, Payload: message})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return n.PublishUser(ctx, receiverID, string(payload))
}

// StartSubscriber subscribes to every user channel and calls onMessage for
// each published payload until ctx is cancelled.
func (n *Notifier) StartSubscriber(ctx context.Context, onMessage func(channel, payload string)) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, userChannelGlob)
	// wait for the subscription so nothing published after return is missed
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", userChannelGlob, err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in notification subscriber",
								slog.Any("panic", r),
								slog.String("stack", string(debug.Stack())),
							)
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}
