package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"canteen/internal/domain"
)

type MenuRepository struct {
	*base
}

func NewMenuRepository(b *base) MenuRepositoryInterface {
	return &MenuRepository{base: b}
}

const menuColumns = `id, name, price, category_id, image_url, stock`

func (r *MenuRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	cats := []domain.Category{}
	err := r.read(ctx, func(ctx context.Context) error {
		cats = cats[:0]
		return r.db.SelectContext(ctx, &cats, `SELECT id, name FROM categories ORDER BY id`)
	})
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", mapError(err))
	}
	return cats, nil
}

func (r *MenuRepository) ListMenuItems(ctx context.Context) ([]domain.MenuItem, error) {
	items := []domain.MenuItem{}
	err := r.read(ctx, func(ctx context.Context) error {
		items = items[:0]
		return r.db.SelectContext(ctx, &items, `SELECT `+menuColumns+` FROM menu_items ORDER BY id`)
	})
	if err != nil {
		return nil, fmt.Errorf("list menu items: %w", mapError(err))
	}
	return items, nil
}

func (r *MenuRepository) GetMenuItem(ctx context.Context, id int64) (domain.MenuItem, error) {
	var item domain.MenuItem
	err := r.read(ctx, func(ctx context.Context) error {
		return r.db.GetContext(ctx, &item, `SELECT `+menuColumns+` FROM menu_items WHERE id = $1`, id)
	})
	if err != nil {
		return domain.MenuItem{}, fmt.Errorf("get menu item %d: %w", id, mapError(err))
	}
	return item, nil
}

func (r *MenuRepository) CreateMenuItem(ctx context.Context, item domain.MenuItem) (domain.MenuItem, error) {
	var out domain.MenuItem
	err := r.write(ctx, func(ctx context.Context) error {
		return r.db.GetContext(ctx, &out, `
			INSERT INTO menu_items (name, price, category_id, image_url, stock)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+menuColumns,
			item.Name, item.Price, item.CategoryID, item.ImageURL, item.Stock)
	})
	if err != nil {
		return domain.MenuItem{}, fmt.Errorf("create menu item %q: %w", item.Name, mapError(err))
	}
	return out, nil
}

func (r *MenuRepository) UpdateMenuItem(ctx context.Context, upd domain.MenuItemUpdate) (domain.MenuItem, error) {
	q, args, err := sqlx.Named(`
		UPDATE menu_items
		SET name = :name, price = :price, category_id = :category_id, image_url = :image_url,
			stock = COALESCE(:stock, stock)
		WHERE id = :id
		RETURNING `+menuColumns, upd)
	if err != nil {
		return domain.MenuItem{}, fmt.Errorf("bind menu item update: %w", err)
	}
	q = r.db.Rebind(q)

	var out domain.MenuItem
	err = r.write(ctx, func(ctx context.Context) error {
		return r.db.GetContext(ctx, &out, q, args...)
	})
	if err != nil {
		return domain.MenuItem{}, fmt.Errorf("update menu item %d: %w", upd.ID, mapError(err))
	}
	return out, nil
}

func (r *MenuRepository) DeleteMenuItem(ctx context.Context, id int64) error {
	return r.exec(ctx, "delete menu item", `DELETE FROM menu_items WHERE id = $1`, id)
}

func (r *MenuRepository) AdjustStock(ctx context.Context, id int64, delta int) (domain.MenuItem, error) {
	var out domain.MenuItem
	// the guard lives in the WHERE clause so concurrent buyers of the last unit
	// cannot both succeed
	err := r.write(ctx, func(ctx context.Context) error {
		return r.db.GetContext(ctx, &out, `
			UPDATE menu_items SET stock = stock + $1
			WHERE id = $2 AND stock + $1 >= 0
			RETURNING `+menuColumns, delta, id)
	})
	if err == nil {
		return out, nil
	}
	if mapped := mapError(err); !errors.Is(mapped, domain.ErrNotFound) {
		return domain.MenuItem{}, fmt.Errorf("adjust stock of item %d: %w", id, mapped)
	}

	// no row came back: either the item is gone or the guard refused the change
	var exists bool
	if err := r.read(ctx, func(ctx context.Context) error {
		return r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM menu_items WHERE id = $1)`, id)
	}); err != nil {
		return domain.MenuItem{}, fmt.Errorf("adjust stock of item %d: %w", id, mapError(err))
	}
	if !exists {
		return domain.MenuItem{}, fmt.Errorf("adjust stock of item %d: %w", id, domain.ErrNotFound)
	}
	return domain.MenuItem{}, fmt.Errorf("adjust stock of item %d by %d: %w", id, delta, domain.ErrInsufficientStock)
}

func (r *MenuRepository) ListLowStock(ctx context.Context, threshold int) ([]domain.MenuItem, error) {
	items := []domain.MenuItem{}
	err := r.read(ctx, func(ctx context.Context) error {
		items = items[:0]
		return r.db.SelectContext(ctx, &items,
			`SELECT `+menuColumns+` FROM menu_items WHERE stock <= $1 ORDER BY stock, id`, threshold)
	})
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", mapError(err))
	}
	return items, nil
}
