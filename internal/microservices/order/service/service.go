package service

import (
	"canteen/internal/common/logger"
	"canteen/internal/events"
	"canteen/internal/repository"
)

type Service struct {
	OrderService OrderServiceInterface
}

func New(repo *repository.Repository, pub events.Publisher, log *logger.Logger, listLimit int) *Service {
	return &Service{
		OrderService: NewOrderService(repo.OrderRepo, repo.MenuRepo, pub, log, listLimit),
	}
}
