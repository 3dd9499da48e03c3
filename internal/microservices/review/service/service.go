package service

import (
	"canteen/internal/common/logger"
	"canteen/internal/repository"
)

type Service struct {
	ReviewService ReviewServiceInterface
}

func New(repo *repository.Repository, log *logger.Logger, listLimit int) *Service {
	return &Service{ReviewService: NewReviewService(repo.ReviewRepo, log, listLimit)}
}
