package handlers

import "canteen/internal/microservices/staff/service"

type Handler struct {
	StaffHandler *StaffHandler
}

func New(s *service.Service) *Handler {
	return &Handler{StaffHandler: NewStaffHandler(s.StaffService)}
}
