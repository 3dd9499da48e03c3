package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"canteen/internal/common/httpx"
	"canteen/internal/common/middleware"
	"canteen/internal/microservices/staff/domain/dto"
	"canteen/internal/microservices/staff/service"
)

type StaffHandler struct {
	service service.StaffServiceInterface
}

func NewStaffHandler(s service.StaffServiceInterface) *StaffHandler {
	return &StaffHandler{service: s}
}

func (sh *StaffHandler) ListByStatus(w http.ResponseWriter, r *http.Request) {
	orders, err := sh.service.ListByStatus(r.Context(), mux.Vars(r)["status"])
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, orders)
}

func (sh *StaffHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ParseID(mux.Vars(r)["id"])
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var req dto.StatusUpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	claims, _ := middleware.ClaimsFrom(r.Context())

	order, err := sh.service.UpdateStatus(r.Context(), id, req, claims.Username)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, order)
}
