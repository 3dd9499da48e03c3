package auth

import (
	"net/http"

	"github.com/gorilla/mux"

	"canteen/internal/common/middleware"
	"canteen/internal/microservices/auth/handlers"
)

// Routes mounts the credential endpoints under /auth, all behind the limiter.
func Routes(r *mux.Router, h *handlers.Handler, limiter *middleware.RateLimiter) {
	ah := h.AuthHandler
	sub := r.PathPrefix("/auth").Subrouter()
	sub.Use(limiter.Handler)

	sub.HandleFunc("/register", ah.Register).Methods(http.MethodPost)
	sub.HandleFunc("/login", ah.Login).Methods(http.MethodPost)
	sub.HandleFunc("/forgot-password", ah.ForgotPassword).Methods(http.MethodPost)
	sub.HandleFunc("/verify-code", ah.VerifyCode).Methods(http.MethodPost)
	sub.HandleFunc("/reset-password", ah.ResetPassword).Methods(http.MethodPost)
}
