package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"canteen/internal/common/logger"
	"canteen/internal/connections/rabbitmq"
	"canteen/internal/domain"
)

const consumerTag = "notificator"

// ErrDLQ marks a message that can never be delivered.
var ErrDLQ = errors.New("dead_letter")

type DeliverySource interface {
	Consume(queue, consumer string, prefetch int) (<-chan amqp.Delivery, error)
	Cancel(consumer string) error
}

// Sender hands a notice to its recipient.
type Sender interface {
	Send(ctx context.Context, n domain.Notice) error
}

// LogSender delivers notices by logging them. Reset codes land in the log
// so an operator can pass them on when no mail relay is configured.
type LogSender struct {
	log *logger.Logger
}

func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, n domain.Notice) error {
	s.log.WithContext(ctx).Info("notice_delivered", map[string]any{
		"kind":      n.Kind,
		"recipient": n.Recipient,
		"data":      n.Data,
	})
	return nil
}

type NotificatorServiceInterface interface {
	Run(ctx context.Context) error
}

type NotificatorService struct {
	src      DeliverySource
	sender   Sender
	log      *logger.Logger
	prefetch int
}

func NewNotificatorService(src DeliverySource, sender Sender, log *logger.Logger, prefetch int) NotificatorServiceInterface {
	if prefetch <= 0 {
		prefetch = 10
	}
	return &NotificatorService{src: src, sender: sender, log: log, prefetch: prefetch}
}

// Run consumes the notifications queue until ctx is cancelled or the broker
// closes the delivery channel.
func (ns *NotificatorService) Run(ctx context.Context) error {
	msgs, err := ns.src.Consume(rabbitmq.NotificationsQueue, consumerTag, ns.prefetch)
	if err != nil {
		return fmt.Errorf("consume %s: %w", rabbitmq.NotificationsQueue, err)
	}
	ns.log.Info("consumer_started", map[string]any{"queue": rabbitmq.NotificationsQueue, "prefetch": ns.prefetch})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for d := range msgs {
			err := ns.processOne(ctx, d)
			switch {
			case err == nil:
				_ = d.Ack(false)
			case errors.Is(err, ErrDLQ), d.Redelivered:
				ns.log.Error("notice_dead_lettered", err, map[string]any{"message_id": d.MessageId})
				_ = d.Nack(false, false)
			default:
				ns.log.Warn("notice_requeued", map[string]any{"message_id": d.MessageId, "error": err.Error()})
				_ = d.Nack(false, true)
			}
		}
	}()

	select {
	case <-ctx.Done():
		ns.log.Info("graceful_shutdown", nil)
		_ = ns.src.Cancel(consumerTag)
		<-done
		return nil
	case <-done:
		return errors.New("delivery channel closed by broker")
	}
}

func (ns *NotificatorService) processOne(ctx context.Context, d amqp.Delivery) error {
	var n domain.Notice
	if err := json.Unmarshal(d.Body, &n); err != nil {
		return fmt.Errorf("%w: decode notice: %v", ErrDLQ, err)
	}
	if n.Kind == "" || n.Recipient == "" {
		return fmt.Errorf("%w: notice without kind or recipient", ErrDLQ)
	}
	if id, ok := d.Headers["x-request-id"].(string); ok {
		ctx = logger.WithRequestID(ctx, id)
	}
	return ns.sender.Send(ctx, n)
}
