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
	"canteen/internal/microservices/staff"
	"canteen/internal/microservices/staff/handlers"
	"canteen/internal/microservices/staff/service"
	"canteen/internal/repository/memory"
)

func setup(t *testing.T) (http.Handler, *auth.Tokens, domain.Order) {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	u, err := store.CreateUser(ctx, domain.User{Username: "alice", Email: "a@x.io"})
	require.NoError(t, err)
	o, err := store.CreateOrder(ctx, domain.Order{UserID: u.ID, Status: domain.StatusPending, PaymentStatus: domain.PaymentUnpaid})
	require.NoError(t, err)

	log := logger.NewWithOutput("test", io.Discard)
	tokens := auth.NewTokens("0123456789abcdef0123", time.Hour)
	r := mux.NewRouter()
	staff.Routes(r, handlers.New(service.New(store.Repository(), &events.Recorder{}, log, 50)), middleware.NewAuthenticator(tokens, log))
	return r, tokens, o
}

func call(t *testing.T, h http.Handler, tokens *auth.Tokens, role domain.Role, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	tok, _, err := tokens.Issue(domain.User{ID: 100, Username: "chef", Role: role})
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestStaffRoutes(t *testing.T) {
	h, tokens, o := setup(t)
	statusPath := fmt.Sprintf("/staff/orders/%d/status", o.ID)

	rec := call(t, h, tokens, domain.RoleCustomer, http.MethodGet, "/staff/orders/Pending", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = call(t, h, tokens, domain.RoleStaff, http.MethodGet, "/staff/orders/Pending", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var queue []domain.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &queue))
	assert.Len(t, queue, 1)

	rec = call(t, h, tokens, domain.RoleStaff, http.MethodPatch, statusPath, map[string]string{"status": "Preparing"})
	require.Equal(t, http.StatusOK, rec.Code)
	var got domain.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, domain.StatusPreparing, got.Status)

	rec = call(t, h, tokens, domain.RoleAdmin, http.MethodPatch, statusPath, map[string]string{"status": "Pending"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = call(t, h, tokens, domain.RoleStaff, http.MethodPatch, statusPath, map[string]string{"status": "Nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, h, tokens, domain.RoleStaff, http.MethodPatch, "/staff/orders/4242/status", map[string]string{"status": "Ready"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
