package staff

import (
	"net/http"

	"github.com/gorilla/mux"

	"canteen/internal/access"
	"canteen/internal/common/middleware"
	"canteen/internal/microservices/staff/handlers"
)

func Routes(r *mux.Router, h *handlers.Handler, authn *middleware.Authenticator) {
	sh := h.StaffHandler
	manage := authn.Require(access.ManageOrders)

	r.Handle("/staff/orders/{status}", manage(http.HandlerFunc(sh.ListByStatus))).Methods(http.MethodGet)
	r.Handle("/staff/orders/{id:[0-9]+}/status", manage(http.HandlerFunc(sh.UpdateStatus))).Methods(http.MethodPatch)
}
