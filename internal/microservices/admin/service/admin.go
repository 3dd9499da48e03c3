package service

import (
	"context"
	"fmt"
	"strings"

	"canteen/internal/common/logger"
	"canteen/internal/domain"
	"canteen/internal/repository"
)

// LowStockThreshold is the stock level at or below which a report lists an item.
const LowStockThreshold = 5

const topItems = 5

type AdminServiceInterface interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	UpdateRole(ctx context.Context, actorID, userID int64, role string) (domain.User, error)
	DeleteUser(ctx context.Context, actorID, userID int64) error
	Report(ctx context.Context) (domain.SalesReport, error)
}

type AdminService struct {
	users  repository.UserRepositoryInterface
	menu   repository.MenuRepositoryInterface
	orders repository.OrderRepositoryInterface
	log    *logger.Logger
}

func NewAdminService(users repository.UserRepositoryInterface, menu repository.MenuRepositoryInterface,
	orders repository.OrderRepositoryInterface, log *logger.Logger) AdminServiceInterface {
	return &AdminService{users: users, menu: menu, orders: orders, log: log}
}

func (s *AdminService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.ListUsers(ctx)
}

func (s *AdminService) UpdateRole(ctx context.Context, actorID, userID int64, role string) (domain.User, error) {
	r, ok := parseRole(role)
	if !ok {
		return domain.User{}, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, role)
	}
	// an admin cannot lock themselves out
	if actorID == userID && r != domain.RoleAdmin {
		return domain.User{}, fmt.Errorf("%w: cannot demote your own account", domain.ErrValidation)
	}
	u, err := s.users.UpdateRole(ctx, userID, r)
	if err != nil {
		return domain.User{}, err
	}
	s.log.WithContext(ctx).Info("user_role_changed", map[string]any{
		"user_id":  userID,
		"role":     r,
		"actor_id": actorID,
	})
	return u, nil
}

func (s *AdminService) DeleteUser(ctx context.Context, actorID, userID int64) error {
	if actorID == userID {
		return fmt.Errorf("%w: cannot delete your own account", domain.ErrValidation)
	}
	if err := s.users.DeleteUser(ctx, userID); err != nil {
		return err
	}
	s.log.WithContext(ctx).Info("user_deleted", map[string]any{"user_id": userID, "actor_id": actorID})
	return nil
}

func (s *AdminService) Report(ctx context.Context) (domain.SalesReport, error) {
	report, err := s.orders.SalesReport(ctx, topItems)
	if err != nil {
		return domain.SalesReport{}, err
	}
	low, err := s.menu.ListLowStock(ctx, LowStockThreshold)
	if err != nil {
		return domain.SalesReport{}, err
	}
	report.LowStock = low
	return report, nil
}

// parseRole is strict where domain.ParseRole falls back to Customer.
func parseRole(s string) (domain.Role, bool) {
	r := domain.ParseRole(s)
	return r, strings.EqualFold(strings.TrimSpace(s), string(r))
}
