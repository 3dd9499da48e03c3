package service

import (
	"context"
	"fmt"
	"strings"

	"canteen/internal/common/logger"
	"canteen/internal/domain"
	"canteen/internal/microservices/review/domain/dto"
	"canteen/internal/repository"
)

type ReviewServiceInterface interface {
	Create(ctx context.Context, req dto.ReviewRequest, by *dto.Reviewer) (domain.Review, error)
	List(ctx context.Context) ([]domain.Review, error)
}

type ReviewService struct {
	reviews   repository.ReviewRepositoryInterface
	log       *logger.Logger
	listLimit int
}

func NewReviewService(reviews repository.ReviewRepositoryInterface, log *logger.Logger, listLimit int) ReviewServiceInterface {
	return &ReviewService{reviews: reviews, log: log, listLimit: listLimit}
}

func (s *ReviewService) Create(ctx context.Context, req dto.ReviewRequest, by *dto.Reviewer) (domain.Review, error) {
	if req.Rating == nil {
		return domain.Review{}, fmt.Errorf("%w: rating is required", domain.ErrValidation)
	}
	if *req.Rating < 1 || *req.Rating > 5 {
		return domain.Review{}, fmt.Errorf("%w: rating must be between 1 and 5", domain.ErrValidation)
	}
	comment := strings.TrimSpace(req.Comment)
	if comment == "" {
		return domain.Review{}, fmt.Errorf("%w: comment is required", domain.ErrValidation)
	}

	r := domain.Review{
		OrderID: req.OrderID,
		Name:    strings.TrimSpace(req.Name),
		Rating:  *req.Rating,
		Comment: comment,
	}
	if by != nil {
		uid := by.UserID
		r.UserID = &uid
		if r.Name == "" {
			r.Name = by.Username
		}
	}
	if r.Name == "" {
		r.Name = "Anonymous"
	}

	created, err := s.reviews.CreateReview(ctx, r)
	if err != nil {
		return domain.Review{}, err
	}
	s.log.WithContext(ctx).Info("review_created", map[string]any{"review_id": created.ID, "rating": created.Rating})
	return created, nil
}

func (s *ReviewService) List(ctx context.Context) ([]domain.Review, error) {
	return s.reviews.ListReviews(ctx, s.listLimit)
}
