package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canteen/internal/auth"
	"canteen/internal/common/logger"
	"canteen/internal/common/middleware"
	"canteen/internal/domain"
	"canteen/internal/microservices/menu"
	"canteen/internal/microservices/menu/handlers"
	"canteen/internal/microservices/menu/service"
	"canteen/internal/repository/memory"
)

type env struct {
	router http.Handler
	tokens *auth.Tokens
	burger domain.MenuItem
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.New()
	store.AddCategory("Meals")
	burger, err := store.CreateMenuItem(context.Background(), domain.MenuItem{Name: "Burger", Price: 8.5, Stock: 10})
	require.NoError(t, err)

	log := logger.NewWithOutput("test", io.Discard)
	tokens := auth.NewTokens("0123456789abcdef0123", time.Hour)
	r := mux.NewRouter()
	menu.Routes(r, handlers.New(service.New(store.Repository(), log)), middleware.NewAuthenticator(tokens, log))
	return &env{router: r, tokens: tokens, burger: burger}
}

func (e *env) do(t *testing.T, method, path string, role domain.Role, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if role != "" {
		tok, _, err := e.tokens.Issue(domain.User{ID: 1, Username: "u", Role: role})
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestPublicMenu(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/menu", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var items []domain.MenuItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	assert.Len(t, items, 1)

	rec = e.do(t, http.MethodGet, "/categories", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Meals")

	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodGet, "/menu/999", "", "").Code)
}

func TestAdjustStockEndpoint(t *testing.T) {
	e := newEnv(t)
	path := fmt.Sprintf("/menu/%d/stock", e.burger.ID)

	tests := []struct {
		name string
		path string
		role domain.Role
		body string
		want int
	}{
		{"anonymous", path, "", `{"quantity":-1}`, http.StatusUnauthorized},
		{"customer", path, domain.RoleCustomer, `{"quantity":-1}`, http.StatusForbidden},
		{"missing quantity", path, domain.RoleStaff, `{}`, http.StatusBadRequest},
		{"below zero", path, domain.RoleStaff, `{"quantity":-11}`, http.StatusBadRequest},
		{"unknown item", "/menu/999/stock", domain.RoleStaff, `{"quantity":1}`, http.StatusNotFound},
		{"staff restock", path, domain.RoleStaff, `{"quantity":5}`, http.StatusOK},
		{"admin deduct", path, domain.RoleAdmin, `{"quantity":-15}`, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(t, http.MethodPatch, tt.path, tt.role, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}

	rec := e.do(t, http.MethodGet, fmt.Sprintf("/menu/%d", e.burger.ID), "", "")
	var item domain.MenuItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	assert.Equal(t, 0, item.Stock)
}

func TestManageMenuRequiresAdmin(t *testing.T) {
	e := newEnv(t)
	body := `{"name":"Fries","price":3.5,"image_url":"fries.png","stock":20}`

	assert.Equal(t, http.StatusForbidden, e.do(t, http.MethodPost, "/menu", domain.RoleStaff, body).Code)

	rec := e.do(t, http.MethodPost, "/menu", domain.RoleAdmin, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var item domain.MenuItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	assert.Equal(t, 20, item.Stock)

	path := fmt.Sprintf("/menu/%d", item.ID)
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodPut, path, domain.RoleAdmin, `{"name":"Big fries","price":4}`).Code)
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodDelete, path, domain.RoleAdmin, "").Code)
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodDelete, path, domain.RoleAdmin, "").Code)
}
