package service

import (
	"canteen/internal/common/logger"
	"canteen/internal/repository"
)

type Service struct {
	MenuService MenuServiceInterface
}

func New(repo *repository.Repository, log *logger.Logger) *Service {
	return &Service{MenuService: NewMenuService(repo.MenuRepo, log)}
}
