package handlers

import "canteen/internal/microservices/admin/service"

type Handler struct {
	AdminHandler *AdminHandler
}

func New(s *service.Service) *Handler {
	return &Handler{AdminHandler: NewAdminHandler(s.AdminService)}
}
