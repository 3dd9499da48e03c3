package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canteen/internal/auth"
	"canteen/internal/common/logger"
	"canteen/internal/common/middleware"
	"canteen/internal/domain"
	"canteen/internal/events"
	"canteen/internal/microservices/order"
	"canteen/internal/microservices/order/domain/dto"
	"canteen/internal/microservices/order/handlers"
	"canteen/internal/microservices/order/service"
	"canteen/internal/repository/memory"
)

type env struct {
	router http.Handler
	store  *memory.Store
	tokens *auth.Tokens
	alice  domain.User
	bob    domain.User
	burger int64
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.New()
	ctx := context.Background()
	alice, err := store.CreateUser(ctx, domain.User{Username: "alice", Email: "a@x.io"})
	require.NoError(t, err)
	bob, err := store.CreateUser(ctx, domain.User{Username: "bob", Email: "b@x.io"})
	require.NoError(t, err)
	burger, err := store.CreateMenuItem(ctx, domain.MenuItem{Name: "Burger", Price: 5, Stock: 3})
	require.NoError(t, err)

	log := logger.NewWithOutput("test", io.Discard)
	tokens := auth.NewTokens("0123456789abcdef0123", time.Hour)
	svc := service.New(store.Repository(), &events.Recorder{}, log, 100)

	r := mux.NewRouter()
	order.Routes(r, handlers.New(svc), middleware.NewAuthenticator(tokens, log))
	return &env{router: r, store: store, tokens: tokens, alice: alice, bob: bob, burger: burger.ID}
}

func (e *env) do(t *testing.T, method, path string, as domain.User, role domain.Role, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	as.Role = role
	tok, _, err := e.tokens.Issue(as)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+tok)

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *env) line(qty int) []map[string]any {
	return []map[string]any{{"item_id": e.burger, "name": "Burger", "quantity": qty, "price": 5}}
}

func TestPlaceOrder(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/orders", e.alice, domain.RoleCustomer, map[string]any{
		"total_amount": 10, "payment_method": "Cash", "station_number": "S1", "items": e.line(2),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res dto.PlacementResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, dto.OutcomeSucceeded, res.Outcome)
	assert.Equal(t, e.alice.ID, res.Order.UserID)
	assert.InDelta(t, 10.0, res.Order.TotalAmount, 0.001)
}

func TestPlaceOrderErrors(t *testing.T) {
	e := newEnv(t)

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{"foreign user", map[string]any{"user_id": e.bob.ID}, http.StatusForbidden},
		{"insufficient stock", map[string]any{"items": e.line(4)}, http.StatusBadRequest},
		{"unknown item", map[string]any{"items": []map[string]any{{"item_id": 999, "name": "x", "quantity": 1}}}, http.StatusNotFound},
		{"bad quantity", map[string]any{"items": e.line(0)}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(t, http.MethodPost, "/orders", e.alice, domain.RoleCustomer, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestPlaceOrderFailureCarriesStages(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, http.MethodPost, "/orders", e.alice, domain.RoleCustomer, map[string]any{"items": e.line(4)})
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	var body struct {
		Status      int               `json:"status"`
		Detail      string            `json:"detail"`
		Outcome     dto.Outcome       `json:"outcome"`
		Stages      []dto.StageResult `json:"stages"`
		Deductions  []dto.Deduction   `json:"deductions"`
		NeedsReview bool              `json:"needs_review"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusBadRequest, body.Status)
	assert.Equal(t, dto.OutcomeFailed, body.Outcome)
	assert.False(t, body.NeedsReview)

	var names []string
	for _, s := range body.Stages {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{dto.StageCreateOrder, dto.StageInsertItems, dto.StageDeductStock, dto.StageCompensate}, names)
	require.Len(t, body.Deductions, 1)
	assert.Equal(t, e.burger, body.Deductions[0].ItemID)
	assert.Equal(t, dto.StageFailed, body.Deductions[0].Status)
}

func TestOrderVisibility(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, http.MethodPost, "/orders", e.alice, domain.RoleCustomer, map[string]any{"items": e.line(1)})
	require.Equal(t, http.StatusOK, rec.Code)
	var res dto.PlacementResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	path := fmt.Sprintf("/orders/%d", res.Order.ID)

	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, path, e.alice, domain.RoleCustomer, nil).Code)
	assert.Equal(t, http.StatusForbidden, e.do(t, http.MethodGet, path, e.bob, domain.RoleCustomer, nil).Code)
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, path, e.bob, domain.RoleStaff, nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodGet, "/orders/4242", e.bob, domain.RoleStaff, nil).Code)

	assert.Equal(t, http.StatusForbidden, e.do(t, http.MethodGet, "/orders", e.alice, domain.RoleCustomer, nil).Code)
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/orders", e.bob, domain.RoleAdmin, nil).Code)

	active := fmt.Sprintf("/orders/user/%d/active", e.alice.ID)
	rec = e.do(t, http.MethodGet, active, e.alice, domain.RoleCustomer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var orders []domain.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
	assert.Len(t, orders, 1)
	assert.Equal(t, http.StatusForbidden, e.do(t, http.MethodGet, active, e.bob, domain.RoleCustomer, nil).Code)
}
