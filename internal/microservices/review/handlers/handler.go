package handlers

import "canteen/internal/microservices/review/service"

type Handler struct {
	ReviewHandler *ReviewHandler
}

func New(s *service.Service) *Handler {
	return &Handler{ReviewHandler: NewReviewHandler(s.ReviewService)}
}
