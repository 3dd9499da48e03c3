package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"canteen/internal/access"
	"canteen/internal/auth"
	"canteen/internal/common/httpx"
	"canteen/internal/common/logger"
	"canteen/internal/domain"
)

type claimsKey struct{}

type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// ClaimsFrom returns the caller identity placed in the context by Authenticate.
func ClaimsFrom(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*auth.Claims)
	return c, ok
}

func WithClaims(ctx context.Context, c *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

type Authenticator struct {
	tokens TokenParser
	log    *logger.Logger
}

func NewAuthenticator(tokens TokenParser, log *logger.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, log: log}
}

// Require admits the request only with a valid bearer token whose role holds p.
func (a *Authenticator) Require(p access.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := a.authenticate(r)
			if err != nil {
				a.log.WithContext(r.Context()).Debug("auth_rejected", map[string]any{"reason": err.Error()})
				httpx.WriteError(w, err)
				return
			}
			if p != "" && !access.Allowed(claims.Role, p) {
				httpx.WriteError(w, fmt.Errorf("%w: %s may not %s", domain.ErrForbidden, claims.Role, p))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// Authenticated admits any signed-in user.
func (a *Authenticator) Authenticated(next http.Handler) http.Handler {
	return a.Require("")(next)
}

// Optional attaches claims when a token is sent and lets anonymous requests
// through. A token that is sent but invalid is still rejected.
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			next.ServeHTTP(w, r)
			return
		}
		claims, err := a.authenticate(r)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

func (a *Authenticator) authenticate(r *http.Request) (*auth.Claims, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, fmt.Errorf("%w: missing Authorization header", domain.ErrUnauthorized)
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return nil, fmt.Errorf("%w: invalid Authorization header format", domain.ErrUnauthorized)
	}
	claims, err := a.tokens.Parse(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, err
	}
	return claims, nil
}
