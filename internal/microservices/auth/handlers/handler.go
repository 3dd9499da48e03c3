package handlers

import "canteen/internal/microservices/auth/service"

type Handler struct {
	AuthHandler *AuthHandler
}

func New(s *service.Service) *Handler {
	return &Handler{AuthHandler: NewAuthHandler(s.AuthService)}
}
