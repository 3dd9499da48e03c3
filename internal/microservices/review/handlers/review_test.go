package handlers_test

import (
	"encoding/json"
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
	"canteen/internal/microservices/review"
	"canteen/internal/microservices/review/handlers"
	"canteen/internal/microservices/review/service"
	"canteen/internal/repository/memory"
)

func TestReviewRoutes(t *testing.T) {
	log := logger.NewWithOutput("test", io.Discard)
	tokens := auth.NewTokens("0123456789abcdef0123", time.Hour)
	r := mux.NewRouter()
	review.Routes(r, handlers.New(service.New(memory.New().Repository(), log, 50)), middleware.NewAuthenticator(tokens, log))

	post := func(body, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/reviews", strings.NewReader(body))
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusBadRequest, post(`{"comment":"nice"}`, "").Code)
	assert.Equal(t, http.StatusBadRequest, post(`{"rating":4}`, "").Code)
	assert.Equal(t, http.StatusOK, post(`{"rating":4,"comment":"nice","name":"Guest"}`, "").Code)

	tok, _, err := tokens.Issue(domain.User{ID: 9, Username: "bob", Role: domain.RoleCustomer})
	require.NoError(t, err)
	rec := post(`{"rating":5,"comment":"best burger"}`, tok)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"bob"`)

	req := httptest.NewRequest(http.MethodGet, "/reviews", nil)
	list := httptest.NewRecorder()
	r.ServeHTTP(list, req)
	require.Equal(t, http.StatusOK, list.Code)
	var got []domain.Review
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "best burger", got[0].Comment)
}
