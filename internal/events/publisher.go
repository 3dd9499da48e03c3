// Package events publishes order and notification messages.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"canteen/internal/common/logger"
	"canteen/internal/connections/rabbitmq"
	"canteen/internal/domain"
)

const (
	KeyOrderPlaced  = "orders.placed"
	keyStatusPrefix = "orders.status."
)

// StatusKey is the routing key of a status change, e.g. orders.status.ready.
func StatusKey(s domain.OrderStatus) string {
	return keyStatusPrefix + strings.ToLower(string(s))
}

type Publisher interface {
	OrderPlaced(ctx context.Context, ev domain.OrderPlacedEvent) error
	StatusChanged(ctx context.Context, ev domain.StatusChangedEvent) error
	Notify(ctx context.Context, n domain.Notice) error
}

type sender interface {
	Publish(ctx context.Context, exchange, key string, body []byte, headers amqp.Table, contentType string, persistent bool) error
}

type AMQPPublisher struct {
	client  sender
	timeout time.Duration
}

var _ sender = (*rabbitmq.Client)(nil)

func NewAMQPPublisher(client sender, timeout time.Duration) *AMQPPublisher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &AMQPPublisher{client: client, timeout: timeout}
}

func (p *AMQPPublisher) OrderPlaced(ctx context.Context, ev domain.OrderPlacedEvent) error {
	return p.publish(ctx, rabbitmq.OrdersExchange, KeyOrderPlaced, ev)
}

func (p *AMQPPublisher) StatusChanged(ctx context.Context, ev domain.StatusChangedEvent) error {
	return p.publish(ctx, rabbitmq.OrdersExchange, StatusKey(ev.NewStatus), ev)
}

func (p *AMQPPublisher) Notify(ctx context.Context, n domain.Notice) error {
	return p.publish(ctx, rabbitmq.NotificationsExchange, "", n)
}

func (p *AMQPPublisher) publish(ctx context.Context, exchange, key string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	var headers amqp.Table
	if id := logger.RequestID(ctx); id != "" {
		headers = amqp.Table{"x-request-id": id}
	}

	pctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.client.Publish(pctx, exchange, key, body, headers, "application/json", true); err != nil {
		return fmt.Errorf("publish to %s (%s): %w", exchange, key, err)
	}
	return nil
}

// LogPublisher writes events to the structured log. It stands in for the
// broker when RabbitMQ is disabled.
type LogPublisher struct {
	log *logger.Logger
}

func NewLogPublisher(log *logger.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) OrderPlaced(ctx context.Context, ev domain.OrderPlacedEvent) error {
	p.log.WithContext(ctx).Info("order_placed_event", map[string]any{
		"order_id": ev.OrderID,
		"outcome":  ev.Outcome,
		"total":    ev.TotalAmount,
	})
	return nil
}

func (p *LogPublisher) StatusChanged(ctx context.Context, ev domain.StatusChangedEvent) error {
	p.log.WithContext(ctx).Info("order_status_event", map[string]any{
		"order_id":   ev.OrderID,
		"old_status": ev.OldStatus,
		"new_status": ev.NewStatus,
		"changed_by": ev.ChangedBy,
	})
	return nil
}

func (p *LogPublisher) Notify(ctx context.Context, n domain.Notice) error {
	p.log.WithContext(ctx).Info("notice", map[string]any{
		"kind":      n.Kind,
		"recipient": n.Recipient,
		"data":      n.Data,
	})
	return nil
}
