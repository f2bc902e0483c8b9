// Package notifications announces store writes to other processes sharing the
// same store, over Redis pub/sub or NATS.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"memeverse/internal/models"
	"memeverse/internal/observability"

	"github.com/redis/go-redis/v9"
)

// ChangesChannel is the Redis channel carrying StoreChange events.
const ChangesChannel = "memeverse:changes"

// ChangeFeed publishes local writes and delivers writes made elsewhere.
type ChangeFeed interface {
	PublishChange(ctx context.Context, key string, version int64) error
	StartChangeSubscriber(ctx context.Context, onChange func(models.StoreChange)) error
}

// Notifier publishes store changes into Redis.
type Notifier struct {
	rdb    *redis.Client
	origin string
}

// NewNotifier creates a Notifier. origin identifies this process so its own
// events can be skipped.
func NewNotifier(rdb *redis.Client, origin string) *Notifier {
	return &Notifier{rdb: rdb, origin: origin}
}

// PublishChange sends a StoreChange for key.
func (n *Notifier) PublishChange(ctx context.Context, key string, version int64) error {
	if n.rdb == nil {
		return nil
	}
	payload, err := encodeChange(n.origin, key, version)
	if err != nil {
		return err
	}
	return n.rdb.Publish(ctx, ChangesChannel, payload).Err()
}

// StartChangeSubscriber calls onChange for every change published by another
// process until ctx is cancelled.
func (n *Notifier) StartChangeSubscriber(ctx context.Context, onChange func(models.StoreChange)) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, ChangesChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", ChangesChannel, err)
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
				dispatch(ctx, n.origin, []byte(msg.Payload), onChange)
			}
		}
	}()

	return nil
}

func encodeChange(origin, key string, version int64) ([]byte, error) {
	payload, err := json.Marshal(models.StoreChange{
		Key:     key,
		Version: version,
		Origin:  origin,
		At:      time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal change: %w", err)
	}
	return payload, nil
}

// dispatch decodes payload and hands it to onChange unless it came from origin.
func dispatch(ctx context.Context, origin string, payload []byte, onChange func(models.StoreChange)) {
	defer func() {
		if r := recover(); r != nil {
			observability.Logger.ErrorContext(ctx, "panic in change subscriber",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
		}
	}()

	var change models.StoreChange
	if err := json.Unmarshal(payload, &change); err != nil {
		observability.Logger.WarnContext(ctx, "dropping malformed store change", slog.String("error", err.Error()))
		return
	}
	if change.Origin == origin || change.Key == "" {
		return
	}
	observability.RemoteStoreChanges.WithLabelValues(observability.KeyFamily(change.Key)).Inc()
	onChange(change)
}
