// Package events publishes post-commit ranking notifications to the
// external analytics and search collaborators. Publishing is best-effort by
// contract: a failure is logged and swallowed, never surfaced to the caller,
// because the committed ranking write is the source of truth.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"platehub/internal/shared"
)

// NATS subjects the engine publishes to.
const (
	SubjectRankingEvents = "rankings.events"
	SubjectReindex       = "rankings.reindex"
)

// Notifier is the narrow interface the coordinator fires after a commit.
type Notifier interface {
	RankingChanged(ctx context.Context, evt shared.RankingEvent)
	ReindexDishes(ctx context.Context, dishIDs ...string)
}

// NATSNotifier publishes events over a NATS connection.
type NATSNotifier struct {
	conn   *nats.Conn
	logger *slog.Logger
}

// NewNATSNotifier connects to NATS with retry-on-failed-connect so a broker
// restart does not take the API down with it.
func NewNATSNotifier(url string, logger *slog.Logger) (*NATSNotifier, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(10),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSNotifier{conn: conn, logger: logger}, nil
}

func (n *NATSNotifier) RankingChanged(ctx context.Context, evt shared.RankingEvent) {
	payload, err := json.Marshal(evt)
	if err != nil {
		n.logger.Error("ranking_event_encode_failed",
			"type", evt.Type,
			"ranking_id", evt.RankingID,
			"error", err.Error(),
		)
		return
	}
	if err := n.conn.Publish(SubjectRankingEvents, payload); err != nil {
		n.logger.Warn("ranking_event_publish_failed",
			"type", evt.Type,
			"ranking_id", evt.RankingID,
			"error", err.Error(),
		)
	}
}

func (n *NATSNotifier) ReindexDishes(ctx context.Context, dishIDs ...string) {
	if len(dishIDs) == 0 {
		return
	}
	payload, err := json.Marshal(map[string]any{"dish_ids": dishIDs})
	if err != nil {
		n.logger.Error("reindex_event_encode_failed", "error", err.Error())
		return
	}
	if err := n.conn.Publish(SubjectReindex, payload); err != nil {
		n.logger.Warn("reindex_event_publish_failed",
			"dishes", len(dishIDs),
			"error", err.Error(),
		)
	}
}

// Close drains buffered publishes before disconnecting.
func (n *NATSNotifier) Close() {
	if err := n.conn.Drain(); err != nil {
		n.logger.Warn("nats_drain_failed", "error", err.Error())
	}
}

// NoopNotifier drops every event. Used when no NATS URL is configured and in
// tests.
type NoopNotifier struct{}

func NewNoopNotifier() *NoopNotifier {
	return &NoopNotifier{}
}

func (NoopNotifier) RankingChanged(context.Context, shared.RankingEvent) {}

func (NoopNotifier) ReindexDishes(context.Context, ...string) {}
