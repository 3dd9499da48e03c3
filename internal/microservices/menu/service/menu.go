package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"canteen/internal/common/logger"
	"canteen/internal/common/metrics"
	"canteen/internal/domain"
	"canteen/internal/microservices/menu/domain/dto"
	"canteen/internal/repository"
)

type MenuServiceInterface interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListItems(ctx context.Context) ([]domain.MenuItem, error)
	GetItem(ctx context.Context, id int64) (domain.MenuItem, error)
	CreateItem(ctx context.Context, req dto.MenuItemRequest) (domain.MenuItem, error)
	UpdateItem(ctx context.Context, id int64, req dto.MenuItemRequest) (domain.MenuItem, error)
	DeleteItem(ctx context.Context, id int64) error
	AdjustStock(ctx context.Context, id int64, delta int) (domain.MenuItem, error)
}

type MenuService struct {
	menu repository.MenuRepositoryInterface
	log  *logger.Logger
}

func NewMenuService(menu repository.MenuRepositoryInterface, log *logger.Logger) MenuServiceInterface {
	return &MenuService{menu: menu, log: log}
}

func (s *MenuService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.menu.ListCategories(ctx)
}

func (s *MenuService) ListItems(ctx context.Context) ([]domain.MenuItem, error) {
	return s.menu.ListMenuItems(ctx)
}

func (s *MenuService) GetItem(ctx context.Context, id int64) (domain.MenuItem, error) {
	return s.menu.GetMenuItem(ctx, id)
}

func (s *MenuService) CreateItem(ctx context.Context, req dto.MenuItemRequest) (domain.MenuItem, error) {
	item, err := fromRequest(req)
	if err != nil {
		return domain.MenuItem{}, err
	}
	if req.Stock == nil {
		item.Stock = 0
	}
	created, err := s.menu.CreateMenuItem(ctx, item)
	if err != nil {
		return domain.MenuItem{}, err
	}
	s.log.WithContext(ctx).Info("menu_item_created", map[string]any{"item_id": created.ID, "name": created.Name})
	return created, nil
}

// UpdateItem replaces the item. An omitted stock keeps the current count,
// decided by the store in the same write.
func (s *MenuService) UpdateItem(ctx context.Context, id int64, req dto.MenuItemRequest) (domain.MenuItem, error) {
	item, err := fromRequest(req)
	if err != nil {
		return domain.MenuItem{}, err
	}
	updated, err := s.menu.UpdateMenuItem(ctx, domain.MenuItemUpdate{
		ID:         id,
		Name:       item.Name,
		Price:      item.Price,
		CategoryID: item.CategoryID,
		ImageURL:   item.ImageURL,
		Stock:      req.Stock,
	})
	if err != nil {
		return domain.MenuItem{}, err
	}
	s.log.WithContext(ctx).Info("menu_item_updated", map[string]any{"item_id": id, "stock_set": req.Stock != nil})
	return updated, nil
}

func (s *MenuService) DeleteItem(ctx context.Context, id int64) error {
	if err := s.menu.DeleteMenuItem(ctx, id); err != nil {
		return err
	}
	s.log.WithContext(ctx).Info("menu_item_deleted", map[string]any{"item_id": id})
	return nil
}

func (s *MenuService) AdjustStock(ctx context.Context, id int64, delta int) (domain.MenuItem, error) {
	item, err := s.menu.AdjustStock(ctx, id, delta)
	if errors.Is(err, domain.ErrInsufficientStock) {
		metrics.StockRejected()
	}
	if err != nil {
		return domain.MenuItem{}, err
	}
	s.log.WithContext(ctx).Info("stock_adjusted", map[string]any{"item_id": id, "delta": delta, "stock": item.Stock})
	return item, nil
}

func fromRequest(req dto.MenuItemRequest) (domain.MenuItem, error) {
	name := strings.TrimSpace(req.Name)
	switch {
	case name == "":
		return domain.MenuItem{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	case req.Price == nil:
		return domain.MenuItem{}, fmt.Errorf("%w: price is required", domain.ErrValidation)
	case *req.Price < 0:
		return domain.MenuItem{}, fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
	case req.Stock != nil && *req.Stock < 0:
		return domain.MenuItem{}, fmt.Errorf("%w: stock must not be negative", domain.ErrValidation)
	}
	item := domain.MenuItem{
		Name:       name,
		Price:      *req.Price,
		CategoryID: req.CategoryID,
		ImageURL:   strings.TrimSpace(req.ImageURL),
	}
	if req.Stock != nil {
		item.Stock = *req.Stock
	}
	return item, nil
}
