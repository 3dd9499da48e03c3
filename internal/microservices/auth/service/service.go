package service

import (
	"time"

	"canteen/internal/auth"
	"canteen/internal/common/logger"
	"canteen/internal/events"
	"canteen/internal/repository"
)

type Service struct {
	AuthService AuthServiceInterface
}

func New(repo *repository.Repository, hasher *auth.Hasher, tokens *auth.Tokens,
	pub events.Publisher, log *logger.Logger, resetTTL time.Duration) *Service {
	return &Service{
		AuthService: NewAuthService(repo.UserRepo, hasher, tokens, pub, log, resetTTL),
	}
}
