package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"memeverse/internal/models"
	"memeverse/internal/observability"

	"github.com/nats-io/nats.go"
)

// ChangesSubject is the NATS subject carrying StoreChange events.
const ChangesSubject = "memeverse.changes"

// NATSNotifier publishes store changes over core NATS.
type NATSNotifier struct {
	conn   *nats.Conn
	origin string
}

// ConnectNATS dials url and returns a notifier for origin.
func ConnectNATS(url, origin string) (*NATSNotifier, error) {
	opts := []nats.Option{
		nats.Name("memeverse-" + origin),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				observability.Logger.Warn("NATS disconnected", slog.String("error", err.Error()))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			observability.Logger.Info("NATS reconnected", slog.String("url", nc.ConnectedUrl()))
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSNotifier{conn: nc, origin: origin}, nil
}

func (n *NATSNotifier) PublishChange(_ context.Context, key string, version int64) error {
	if n.conn == nil {
		return nil
	}
	payload, err := encodeChange(n.origin, key, version)
	if err != nil {
		return err
	}
	if err := n.conn.Publish(ChangesSubject, payload); err != nil {
		return fmt.Errorf("failed to publish change: %w", err)
	}
	return nil
}

func (n *NATSNotifier) StartChangeSubscriber(ctx context.Context, onChange func(models.StoreChange)) error {
	if n.conn == nil {
		return nil
	}
	sub, err := n.conn.Subscribe(ChangesSubject, func(msg *nats.Msg) {
		dispatch(ctx, n.origin, msg.Data, onChange)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", ChangesSubject, err)
	}

	go func() {
		<-ctx.Done()
		_ = sub.Unsubscribe()
	}()
	return nil
}

func (n *NATSNotifier) Close() {
	if n.conn != nil {
		n.conn.Close()
	}
}
