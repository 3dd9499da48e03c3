package handlers

import (
	"net/http"

	"canteen/internal/common/httpx"
	"canteen/internal/common/middleware"
	"canteen/internal/microservices/review/domain/dto"
	"canteen/internal/microservices/review/service"
)

type ReviewHandler struct {
	service service.ReviewServiceInterface
}

func NewReviewHandler(s service.ReviewServiceInterface) *ReviewHandler {
	return &ReviewHandler{service: s}
}

func (rh *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.ReviewRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	var by *dto.Reviewer
	if c, ok := middleware.ClaimsFrom(r.Context()); ok {
		by = &dto.Reviewer{UserID: c.UserID, Username: c.Username}
	}

	review, err := rh.service.Create(r.Context(), req, by)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, review)
}

func (rh *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	reviews, err := rh.service.List(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, reviews)
}
