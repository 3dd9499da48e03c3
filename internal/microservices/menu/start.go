package menu

import (
	"net/http"

	"github.com/gorilla/mux"

	"canteen/internal/access"
	"canteen/internal/common/middleware"
	"canteen/internal/microservices/menu/handlers"
)

func Routes(r *mux.Router, h *handlers.Handler, authn *middleware.Authenticator) {
	mh := h.MenuHandler
	manage := authn.Require(access.ManageMenu)

	r.HandleFunc("/categories", mh.ListCategories).Methods(http.MethodGet)
	r.HandleFunc("/menu", mh.ListItems).Methods(http.MethodGet)
	r.HandleFunc("/menu/{id:[0-9]+}", mh.GetItem).Methods(http.MethodGet)
	r.Handle("/menu", manage(http.HandlerFunc(mh.CreateItem))).Methods(http.MethodPost)
	r.Handle("/menu/{id:[0-9]+}", manage(http.HandlerFunc(mh.UpdateItem))).Methods(http.MethodPut)
	r.Handle("/menu/{id:[0-9]+}", manage(http.HandlerFunc(mh.DeleteItem))).Methods(http.MethodDelete)
	r.Handle("/menu/{id:[0-9]+}/stock", authn.Require(access.AdjustStock)(http.HandlerFunc(mh.AdjustStock))).Methods(http.MethodPatch)
}
