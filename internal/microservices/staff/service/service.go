package service

import (
	"canteen/internal/common/logger"
	"canteen/internal/events"
	"canteen/internal/repository"
)

type Service struct {
	StaffService StaffServiceInterface
}

func New(repo *repository.Repository, pub events.Publisher, log *logger.Logger, listLimit int) *Service {
	return &Service{
		StaffService: NewStaffService(repo.OrderRepo, repo.UserRepo, pub, log, listLimit),
	}
}
