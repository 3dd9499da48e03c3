package service

import (
	"canteen/internal/common/logger"
	"canteen/internal/repository"
)

type Service struct {
	AdminService AdminServiceInterface
}

func New(repo *repository.Repository, log *logger.Logger) *Service {
	return &Service{AdminService: NewAdminService(repo.UserRepo, repo.MenuRepo, repo.OrderRepo, log)}
}
