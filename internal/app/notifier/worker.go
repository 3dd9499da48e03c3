package notifier

import (
	"context"
	"fmt"
	"time"

	"canteen/internal/common/logger"
	"canteen/internal/connections/rabbitmq"
	"canteen/internal/microservices/notificator"
)

type Config struct {
	Broker   rabbitmq.Config
	Prefetch int
	// Backoff is the pause before reconnecting after the broker drops the consumer.
	Backoff time.Duration
}

// Run consumes notices until ctx is cancelled, redialing when the broker goes away.
func Run(ctx context.Context, cfg Config, log *logger.Logger) error {
	if cfg.Backoff <= 0 {
		cfg.Backoff = 5 * time.Second
	}
	for {
		err := runOnce(ctx, cfg, log)
		if ctx.Err() != nil {
			return nil
		}
		log.Error("consumer_stopped", err, map[string]any{"retry_in": cfg.Backoff.String()})
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(cfg.Backoff):
		}
	}
}

func runOnce(ctx context.Context, cfg Config, log *logger.Logger) error {
	client, err := rabbitmq.Dial(cfg.Broker)
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer client.Close()
	if err := client.DeclareTopology(); err != nil {
		return fmt.Errorf("declare topology: %w", err)
	}
	log.Info("broker_connected", map[string]any{"host": cfg.Broker.Host, "vhost": cfg.Broker.VHost})
	return notificator.Start(ctx, client, log, cfg.Prefetch)
}
