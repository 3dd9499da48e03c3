package service

import "canteen/internal/common/logger"

type Service struct {
	NotificatorService NotificatorServiceInterface
}

func New(src DeliverySource, log *logger.Logger, prefetch int) *Service {
	return &Service{NotificatorService: NewNotificatorService(src, NewLogSender(log), log, prefetch)}
}
