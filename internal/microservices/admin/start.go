package admin

import (
	"net/http"

	"github.com/gorilla/mux"

	"canteen/internal/access"
	"canteen/internal/common/middleware"
	"canteen/internal/microservices/admin/handlers"
)

func Routes(r *mux.Router, h *handlers.Handler, authn *middleware.Authenticator) {
	ah := h.AdminHandler
	users := authn.Require(access.ManageUsers)

	r.Handle("/admin/users", users(http.HandlerFunc(ah.ListUsers))).Methods(http.MethodGet)
	r.Handle("/admin/users/{id:[0-9]+}/role", users(http.HandlerFunc(ah.UpdateRole))).Methods(http.MethodPatch)
	r.Handle("/admin/users/{id:[0-9]+}", users(http.HandlerFunc(ah.DeleteUser))).Methods(http.MethodDelete)
	r.Handle("/admin/reports", authn.Require(access.ViewReports)(http.HandlerFunc(ah.Report))).Methods(http.MethodGet)
}
