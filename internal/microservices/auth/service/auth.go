package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"canteen/internal/auth"
	"canteen/internal/common/logger"
	"canteen/internal/domain"
	"canteen/internal/events"
	"canteen/internal/microservices/auth/domain/dto"
	"canteen/internal/repository"
)

const minPasswordLen = 6

var (
	errInvalidCredentials = fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	errInvalidCode        = fmt.Errorf("%w: invalid or expired code", domain.ErrValidation)
)

type AuthServiceInterface interface {
	Register(ctx context.Context, req dto.RegisterRequest) (domain.User, error)
	// CreateWithRole registers a user with an explicit role, e.g. the first admin.
	CreateWithRole(ctx context.Context, req dto.RegisterRequest, role domain.Role) (domain.User, error)
	Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error)
	ForgotPassword(ctx context.Context, email string) error
	VerifyCode(ctx context.Context, email, code string) error
	ResetPassword(ctx context.Context, email, newPassword string) error
}

type AuthService struct {
	users    repository.UserRepositoryInterface
	hasher   *auth.Hasher
	tokens   *auth.Tokens
	events   events.Publisher
	log      *logger.Logger
	resetTTL time.Duration
	now      func() time.Time
}

func NewAuthService(users repository.UserRepositoryInterface, hasher *auth.Hasher, tokens *auth.Tokens,
	pub events.Publisher, log *logger.Logger, resetTTL time.Duration) *AuthService {
	return &AuthService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		events:   pub,
		log:      log,
		resetTTL: resetTTL,
		now:      time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (domain.User, error) {
	return s.CreateWithRole(ctx, req, domain.RoleCustomer)
}

func (s *AuthService) CreateWithRole(ctx context.Context, req dto.RegisterRequest, role domain.Role) (domain.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	switch {
	case req.Username == "" || req.Email == "" || req.Password == "":
		return domain.User{}, fmt.Errorf("%w: username, email and password are required", domain.ErrValidation)
	case !strings.Contains(req.Email, "@"):
		return domain.User{}, fmt.Errorf("%w: invalid email", domain.ErrValidation)
	case len(req.Password) < minPasswordLen:
		return domain.User{}, fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLen)
	case !role.Valid():
		return domain.User{}, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, role)
	}

	digest, err := s.hasher.Hash(req.Password)
	if err != nil {
		return domain.User{}, err
	}
	u, err := s.users.CreateUser(ctx, domain.User{
		Username:       req.Username,
		Email:          req.Email,
		PasswordDigest: digest,
		Role:           role,
	})
	if errors.Is(err, domain.ErrConflict) {
		return domain.User{}, fmt.Errorf("%w: username or email already registered", domain.ErrValidation)
	}
	if err != nil {
		return domain.User{}, err
	}

	s.log.WithContext(ctx).Info("user_registered", map[string]any{"user_id": u.ID, "role": u.Role})
	return u, nil
}

func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error) {
	u, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(req.Username))
	if errors.Is(err, domain.ErrNotFound) {
		s.hasher.VerifyMissing(req.Password)
		return dto.LoginResponse{}, errInvalidCredentials
	}
	if err != nil {
		return dto.LoginResponse{}, err
	}
	if !s.hasher.Verify(req.Password, u.PasswordDigest) {
		s.log.WithContext(ctx).Debug("login_rejected", map[string]any{"user_id": u.ID})
		return dto.LoginResponse{}, errInvalidCredentials
	}

	token, exp, err := s.tokens.Issue(u)
	if err != nil {
		return dto.LoginResponse{}, err
	}
	return dto.LoginResponse{ID: u.ID, Username: u.Username, Role: u.Role, Token: token, ExpiresAt: exp}, nil
}

// ForgotPassword issues a reset code. It succeeds for unknown emails too so
// the endpoint cannot be used to probe for accounts.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	log := s.log.WithContext(ctx)

	u, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		log.Debug("reset_unknown_email", nil)
		return nil
	}
	if err != nil {
		return err
	}

	code, err := auth.NewResetCode()
	if err != nil {
		return err
	}
	expires := s.now().Add(s.resetTTL)
	if err := s.users.SetResetCode(ctx, u.ID, code, expires); err != nil {
		return err
	}

	err = s.events.Notify(ctx, domain.Notice{
		Kind:      domain.NoticeResetCode,
		Recipient: u.Email,
		Data:      map[string]any{"code": code, "expires_at": expires.UTC()},
		Timestamp: s.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("deliver reset code: %w", err)
	}
	log.Info("reset_code_issued", map[string]any{"user_id": u.ID})
	return nil
}

func (s *AuthService) VerifyCode(ctx context.Context, email, code string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(code) == "" {
		return fmt.Errorf("%w: email and code are required", domain.ErrValidation)
	}
	u, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, domain.ErrNotFound) {
		return errInvalidCode
	}
	if err != nil {
		return err
	}
	if u.ResetCode == nil || u.ResetCodeExpiresAt == nil || !s.now().Before(*u.ResetCodeExpiresAt) {
		return errInvalidCode
	}
	if subtle.ConstantTimeCompare([]byte(*u.ResetCode), []byte(strings.TrimSpace(code))) != 1 {
		return errInvalidCode
	}
	return s.users.MarkResetVerified(ctx, u.ID, s.now())
}

// ResetPassword needs a verified code that has not expired yet.
func (s *AuthService) ResetPassword(ctx context.Context, email, newPassword string) error {
	if strings.TrimSpace(email) == "" || newPassword == "" {
		return fmt.Errorf("%w: email and new password are required", domain.ErrValidation)
	}
	if len(newPassword) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLen)
	}
	u, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%w: no verified reset code", domain.ErrValidation)
	}
	if err != nil {
		return err
	}
	if u.ResetCode == nil || u.ResetVerifiedAt == nil || u.ResetCodeExpiresAt == nil ||
		!s.now().Before(*u.ResetCodeExpiresAt) {
		return fmt.Errorf("%w: no verified reset code", domain.ErrValidation)
	}

	digest, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.ResetPassword(ctx, u.ID, digest); err != nil {
		return err
	}
	s.log.WithContext(ctx).Info("password_reset", map[string]any{"user_id": u.ID})
	return nil
}
