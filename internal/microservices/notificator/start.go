package notificator

import (
	"context"

	"canteen/internal/common/logger"
	"canteen/internal/microservices/notificator/service"
)

func Start(ctx context.Context, src service.DeliverySource, log *logger.Logger, prefetch int) error {
	return service.New(src, log, prefetch).NotificatorService.Run(ctx)
}
