package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"canteen/internal/access"
	"canteen/internal/auth"
	"canteen/internal/common/httpx"
	"canteen/internal/common/logger"
	"canteen/internal/common/metrics"
	"canteen/internal/common/middleware"
	"canteen/internal/config"
	"canteen/internal/domain"
	"canteen/internal/events"
	"canteen/internal/microservices/admin"
	adminhandlers "canteen/internal/microservices/admin/handlers"
	adminservice "canteen/internal/microservices/admin/service"
	authsvc "canteen/internal/microservices/auth"
	authhandlers "canteen/internal/microservices/auth/handlers"
	authservice "canteen/internal/microservices/auth/service"
	"canteen/internal/microservices/menu"
	menuhandlers "canteen/internal/microservices/menu/handlers"
	menuservice "canteen/internal/microservices/menu/service"
	"canteen/internal/microservices/order"
	orderhandlers "canteen/internal/microservices/order/handlers"
	orderservice "canteen/internal/microservices/order/service"
	"canteen/internal/microservices/review"
	reviewhandlers "canteen/internal/microservices/review/handlers"
	reviewservice "canteen/internal/microservices/review/service"
	"canteen/internal/microservices/staff"
	staffhandlers "canteen/internal/microservices/staff/handlers"
	staffservice "canteen/internal/microservices/staff/service"
	"canteen/internal/repository"
)

// DBPinger is satisfied by *sqlx.DB.
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// BrokerPinger is satisfied by *rabbitmq.Client.
type BrokerPinger interface {
	Ping() error
}

type Deps struct {
	Config config.Config
	Repo   *repository.Repository
	Events events.Publisher
	Hasher *auth.Hasher
	Tokens *auth.Tokens
	DB     DBPinger
	Broker BrokerPinger // nil when the broker is disabled
	Log    *logger.Logger
}

// NewRouter wires every service under /api plus /metrics.
func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	authn := middleware.NewAuthenticator(d.Tokens, d.Log)

	r := mux.NewRouter()
	r.Use(middleware.Metrics)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	apiR := r.PathPrefix("/api").Subrouter()
	listLimit := cfg.Store.ListLimit

	authsvc.Routes(apiR,
		authhandlers.New(authservice.New(d.Repo, d.Hasher, d.Tokens, d.Events, d.Log.With(map[string]any{"component": "auth"}), cfg.Auth.ResetCodeTTL)),
		middleware.NewRateLimiter(cfg.HTTP.AuthRateLimit, cfg.HTTP.AuthRateBurst, d.Log))
	menu.Routes(apiR, menuhandlers.New(menuservice.New(d.Repo, d.Log.With(map[string]any{"component": "menu"}))), authn)
	order.Routes(apiR, orderhandlers.New(orderservice.New(d.Repo, d.Events, d.Log.With(map[string]any{"component": "order"}), listLimit)), authn)
	staff.Routes(apiR, staffhandlers.New(staffservice.New(d.Repo, d.Events, d.Log.With(map[string]any{"component": "staff"}), listLimit)), authn)
	admin.Routes(apiR, adminhandlers.New(adminservice.New(d.Repo, d.Log.With(map[string]any{"component": "admin"}))), authn)
	review.Routes(apiR, reviewhandlers.New(reviewservice.New(d.Repo, d.Log.With(map[string]any{"component": "review"}), listLimit)), authn)

	apiR.Handle("/navigation/{route}", authn.Optional(http.HandlerFunc(navigate))).Methods(http.MethodGet)
	apiR.HandleFunc("/health", health(d.DB, d.Broker)).Methods(http.MethodGet)

	cors := middleware.NewCORS(cfg.HTTP.AllowedOrigins)
	return middleware.Recover(d.Log)(middleware.RequestID(middleware.Logging(d.Log)(cors.Handler(r))))
}

// Run serves the API until ctx is cancelled.
func Run(ctx context.Context, d Deps) error {
	addr := ":" + strconv.Itoa(d.Config.HTTP.Port)
	srv := httpx.New(addr, NewRouter(d), d.Config.HTTP.ReadTimeout, d.Config.HTTP.WriteTimeout)
	d.Log.Info("service_started", map[string]any{"addr": addr})
	return srv.Run(ctx)
}

// navigate answers the client's route guard for the caller's session.
func navigate(w http.ResponseWriter, r *http.Request) {
	route := mux.Vars(r)["route"]
	if _, ok := access.Classify(route); !ok {
		httpx.WriteError(w, fmt.Errorf("%w: unknown route %q", domain.ErrValidation, route))
		return
	}
	var s access.Session
	if c, ok := middleware.ClaimsFrom(r.Context()); ok {
		s = access.Session{UserID: c.UserID, Username: c.Username, Role: c.Role}
	}
	httpx.WriteJSON(w, http.StatusOK, access.Decide(s, route))
}

func health(db DBPinger, broker BrokerPinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := http.StatusOK
		body := map[string]string{"database": "ok", "broker": "disabled"}

		if err := db.PingContext(r.Context()); err != nil {
			code = http.StatusServiceUnavailable
			body["database"] = "down"
		}
		if broker != nil {
			body["broker"] = "ok"
			if err := broker.Ping(); err != nil {
				code = http.StatusServiceUnavailable
				body["broker"] = "down"
			}
		}
		httpx.WriteJSON(w, code, body)
	}
}
