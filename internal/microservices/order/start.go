package order

import (
	"net/http"

	"github.com/gorilla/mux"

	"canteen/internal/access"
	"canteen/internal/common/middleware"
	"canteen/internal/microservices/order/handlers"
)

// Routes mounts the order endpoints on r.
func Routes(r *mux.Router, h *handlers.Handler, authn *middleware.Authenticator) {
	oh := h.OrderHandler
	r.Handle("/orders", authn.Require(access.PlaceOrder)(http.HandlerFunc(oh.PlaceOrder))).Methods(http.MethodPost)
	r.Handle("/orders", authn.Require(access.ViewAllOrders)(http.HandlerFunc(oh.ListOrders))).Methods(http.MethodGet)
	r.Handle("/orders/user/{id:[0-9]+}/active", authn.Require(access.ViewOwnOrders)(http.HandlerFunc(oh.ListActiveByUser))).Methods(http.MethodGet)
	r.Handle("/orders/{id:[0-9]+}", authn.Require(access.ViewOwnOrders)(http.HandlerFunc(oh.GetOrder))).Methods(http.MethodGet)
}
