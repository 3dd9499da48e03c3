package review

import (
	"net/http"

	"github.com/gorilla/mux"

	"canteen/internal/common/middleware"
	"canteen/internal/microservices/review/handlers"
)

func Routes(r *mux.Router, h *handlers.Handler, authn *middleware.Authenticator) {
	rh := h.ReviewHandler

	r.Handle("/reviews", authn.Optional(http.HandlerFunc(rh.Create))).Methods(http.MethodPost)
	r.HandleFunc("/reviews", rh.List).Methods(http.MethodGet)
}
