package handlers

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"canteen/internal/common/httpx"
	"canteen/internal/domain"
	"canteen/internal/microservices/menu/domain/dto"
	"canteen/internal/microservices/menu/service"
)

type MenuHandler struct {
	service service.MenuServiceInterface
}

func NewMenuHandler(s service.MenuServiceInterface) *MenuHandler {
	return &MenuHandler{service: s}
}

func (mh *MenuHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := mh.service.ListCategories(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, cats)
}

func (mh *MenuHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := mh.service.ListItems(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, items)
}

func (mh *MenuHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ParseID(mux.Vars(r)["id"])
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	item, err := mh.service.GetItem(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, item)
}

func (mh *MenuHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req dto.MenuItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	item, err := mh.service.CreateItem(r.Context(), req)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, item)
}

func (mh *MenuHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ParseID(mux.Vars(r)["id"])
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var req dto.MenuItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	item, err := mh.service.UpdateItem(r.Context(), id, req)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, item)
}

func (mh *MenuHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ParseID(mux.Vars(r)["id"])
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if err := mh.service.DeleteItem(r.Context(), id); err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func (mh *MenuHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ParseID(mux.Vars(r)["id"])
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var req dto.StockRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	if req.Quantity == nil {
		httpx.WriteError(w, fmt.Errorf("%w: quantity is required", domain.ErrValidation))
		return
	}
	item, err := mh.service.AdjustStock(r.Context(), id, *req.Quantity)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, item)
}
