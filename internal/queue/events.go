package queue

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const EventsExchange = "console.events"

type OrderUpdatedEvent struct {
	OrderID   string         `json:"orderId"`
	Fields    map[string]any `json:"fields"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

type SnapshotRefreshedEvent struct {
	OrderCount  int       `json:"orderCount"`
	RefreshedAt time.Time `json:"refreshedAt"`
}

// Publisher fans console events out over AMQP. A nil *Publisher is valid and
// publishes nothing, so the queue stays optional in development.
type Publisher struct {
	client *Client
	logger *zap.Logger
}

func NewPublisher(client *Client, logger *zap.Logger) *Publisher {
	if client == nil {
		return nil
	}
	return &Publisher{client: client, logger: logger}
}

func (p *Publisher) OrderUpdated(ctx context.Context, orderID string, fields map[string]any) {
	if p == nil {
		return
	}
	event := OrderUpdatedEvent{OrderID: orderID, Fields: fields, UpdatedAt: time.Now()}
	if err := p.client.PublishJSON(ctx, EventsExchange, "order.updated", event); err != nil {
		p.logger.Warn("order.updated publish failed", zap.Error(err))
	}
}

// SnapshotRefreshed satisfies snapshot.Notifier.
func (p *Publisher) SnapshotRefreshed(count int, at time.Time) {
	if p == nil {
		return
	}
	event := SnapshotRefreshedEvent{OrderCount: count, RefreshedAt: at}
	if err := p.client.PublishJSON(context.Background(), EventsExchange, "orders.snapshot.refreshed", event); err != nil {
		p.logger.Warn("snapshot.refreshed publish failed", zap.Error(err))
	}
}
