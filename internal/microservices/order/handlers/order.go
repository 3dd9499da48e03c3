package handlers

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"canteen/internal/access"
	"canteen/internal/common/httpx"
	"canteen/internal/common/middleware"
	"canteen/internal/domain"
	"canteen/internal/microservices/order/domain/dto"
	"canteen/internal/microservices/order/service"
)

type OrderHandler struct {
	service service.OrderServiceInterface
}

func NewOrderHandler(s service.OrderServiceInterface) *OrderHandler {
	return &OrderHandler{service: s}
}

// PlaceOrder answers with the full placement result; a failed placement still
// reports its stages in the problem body. A caller without
// manage_orders can only order for themselves; an omitted user_id means the caller.
func (oh *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFrom(r.Context())

	var req dto.PlaceOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	if req.UserID == 0 {
		req.UserID = claims.UserID
	}
	if req.UserID != claims.UserID && !access.Allowed(claims.Role, access.ManageOrders) {
		httpx.WriteError(w, fmt.Errorf("%w: cannot order for another user", domain.ErrForbidden))
		return
	}

	res, err := oh.service.Place(r.Context(), req)
	if err != nil {
		httpx.WriteErrorWith(w, err, map[string]any{
			"outcome":      res.Outcome,
			"stages":       res.Stages,
			"deductions":   res.Deductions,
			"needs_review": res.Order.NeedsReview,
		})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (oh *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := oh.service.ListOrders(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, orders)
}

func (oh *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFrom(r.Context())
	id, err := httpx.ParseID(mux.Vars(r)["id"])
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	order, err := oh.service.GetOrder(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if order.UserID != claims.UserID && !access.Allowed(claims.Role, access.ViewAllOrders) {
		httpx.WriteError(w, fmt.Errorf("%w: order belongs to another user", domain.ErrForbidden))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, order)
}

func (oh *OrderHandler) ListActiveByUser(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFrom(r.Context())
	userID, err := httpx.ParseID(mux.Vars(r)["id"])
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if userID != claims.UserID && !access.Allowed(claims.Role, access.ViewAllOrders) {
		httpx.WriteError(w, fmt.Errorf("%w: orders belong to another user", domain.ErrForbidden))
		return
	}

	orders, err := oh.service.ListActiveByUser(r.Context(), userID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, orders)
}
