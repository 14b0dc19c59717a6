// Package coordination keeps multiple pipeline instances in sync. When one
// instance appends reviews, the others learn about it via Redis pub/sub so
// their connected websocket clients receive the fresh aggregate view too.
package coordination

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pscheid92/reviewpulse/internal/metrics"
	"github.com/redis/go-redis/v9"
)

const refreshChannel = "reviewpulse:analytics:refresh"

// Notifier broadcasts a refresh notification to all instances after an append.
// The payload is the sender's instance id so receivers can skip their own
// messages; the sending instance already pushed the view locally.
type Notifier struct {
	redis      *redis.Client
	instanceID uuid.UUID
}

// NewNotifier creates a notifier for this instance.
func NewNotifier(redisClient *redis.Client, instanceID uuid.UUID) *Notifier {
	return &Notifier{redis: redisClient, instanceID: instanceID}
}

// NotifyRefresh publishes the refresh notification. Failures are logged and
// swallowed; peers falling behind is preferable to failing the append.
func (n *Notifier) NotifyRefresh(ctx context.Context) {
	if err := n.redis.Publish(ctx, refreshChannel, n.instanceID.String()).Err(); err != nil {
		slog.Warn("Failed to publish analytics refresh notification", "error", err)
	}
}

// RefreshListener subscribes to refresh notifications from peer instances and
// invokes the callback for each one.
type RefreshListener struct {
	redis      *redis.Client
	instanceID uuid.UUID
	onRefresh  func(ctx context.Context)
}

// NewRefreshListener creates a listener. onRefresh runs on the listener
// goroutine; it must not block for long.
func NewRefreshListener(redisClient *redis.Client, instanceID uuid.UUID, onRefresh func(ctx context.Context)) *RefreshListener {
	return &RefreshListener{redis: redisClient, instanceID: instanceID, onRefresh: onRefresh}
}

// Start begins listening for refresh notifications.
// Blocks until ctx is cancelled.
func (l *RefreshListener) Start(ctx context.Context) {
	pubsub := l.redis.Subscribe(ctx, refreshChannel)
	defer func() {
		_ = pubsub.Close()
	}()

	ch := pubsub.Channel()
	for {
		select {
		case msg := <-ch:
			if msg == nil {
				return
			}
			l.handleMessage(ctx, msg.Payload)
		case <-ctx.Done():
			return
		}
	}
}

// handleMessage processes a single refresh notification.
func (l *RefreshListener) handleMessage(ctx context.Context, payload string) {
	metrics.PubSubMessagesReceived.WithLabelValues(refreshChannel).Inc()

	senderID, err := uuid.Parse(payload)
	if err != nil {
		slog.Warn("Invalid instance id in refresh notification", "payload", payload, "error", err)
		return
	}
	if senderID == l.instanceID {
		return
	}

	slog.Debug("Peer appended reviews, refreshing local view", "sender", senderID)
	l.onRefresh(ctx)
}
