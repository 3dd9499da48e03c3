package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"canteen/internal/common/httpx"
	"canteen/internal/common/middleware"
	"canteen/internal/microservices/admin/domain/dto"
	"canteen/internal/microservices/admin/service"
)

type AdminHandler struct {
	service service.AdminServiceInterface
}

func NewAdminHandler(s service.AdminServiceInterface) *AdminHandler {
	return &AdminHandler{service: s}
}

func (ah *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := ah.service.ListUsers(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, users)
}

func (ah *AdminHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ParseID(mux.Vars(r)["id"])
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var req dto.RoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	claims, _ := middleware.ClaimsFrom(r.Context())

	u, err := ah.service.UpdateRole(r.Context(), claims.UserID, id, req.Role)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

func (ah *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ParseID(mux.Vars(r)["id"])
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	claims, _ := middleware.ClaimsFrom(r.Context())

	if err := ah.service.DeleteUser(r.Context(), claims.UserID, id); err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}

func (ah *AdminHandler) Report(w http.ResponseWriter, r *http.Request) {
	report, err := ah.service.Report(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, report)
}
