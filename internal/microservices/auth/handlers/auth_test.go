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
	"golang.org/x/crypto/bcrypt"

	"canteen/internal/auth"
	"canteen/internal/common/logger"
	"canteen/internal/common/middleware"
	"canteen/internal/domain"
	"canteen/internal/events"
	authsvc "canteen/internal/microservices/auth"
	"canteen/internal/microservices/auth/domain/dto"
	"canteen/internal/microservices/auth/handlers"
	"canteen/internal/microservices/auth/service"
	"canteen/internal/repository/memory"
)

func newRouter() http.Handler {
	log := logger.NewWithOutput("test", io.Discard)
	svc := service.New(memory.New().Repository(), auth.NewHasher(bcrypt.MinCost),
		auth.NewTokens("0123456789abcdef0123", time.Hour), &events.Recorder{}, log, time.Minute)
	r := mux.NewRouter()
	authsvc.Routes(r, handlers.New(svc), middleware.NewRateLimiter(1000, 1000, log))
	return r
}

func post(h http.Handler, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))
	return rec
}

func TestRegisterLoginEndpoints(t *testing.T) {
	h := newRouter()
	body := `{"username":"alice","email":"alice@example.com","password":"s3cret!"}`

	rec := post(h, "/auth/register", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password")

	rec = post(h, "/auth/register", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(h, "/auth/login", `{"username":"alice","password":"s3cret!"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.RoleCustomer, resp.Role)
	assert.NotEmpty(t, resp.Token)

	rec = post(h, "/auth/login", `{"username":"alice","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = post(h, "/auth/login", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestForgotPasswordEndpoint(t *testing.T) {
	h := newRouter()
	assert.Equal(t, http.StatusOK, post(h, "/auth/forgot-password", `{"email":"ghost@example.com"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(h, "/auth/forgot-password", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(h, "/auth/verify-code", `{"email":"ghost@example.com","code":"123456"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(h, "/auth/reset-password", `{"email":"ghost@example.com","newPassword":"abcdefg"}`).Code)
}
