package memory

import (
	"context"
	"fmt"
	"sort"

	"canteen/internal/domain"
)

func (s *Store) ListCategories(_ context.Context) ([]domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) ListMenuItems(_ context.Context) ([]domain.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.menuWhere(func(domain.MenuItem) bool { return true }), nil
}

func (s *Store) menuWhere(keep func(domain.MenuItem) bool) []domain.MenuItem {
	out := make([]domain.MenuItem, 0, len(s.menu))
	for _, m := range s.menu {
		if keep(m) {
			out = append(out, copyItem(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) GetMenuItem(_ context.Context, id int64) (domain.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.menu[id]
	if !ok {
		return domain.MenuItem{}, fmt.Errorf("get menu item %d: %w", id, domain.ErrNotFound)
	}
	return copyItem(m), nil
}

func (s *Store) CreateMenuItem(_ context.Context, item domain.MenuItem) (domain.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkCategory(item.CategoryID); err != nil {
		return domain.MenuItem{}, err
	}
	item.ID = s.id()
	s.menu[item.ID] = copyItem(item)
	return item, nil
}

func (s *Store) UpdateMenuItem(_ context.Context, upd domain.MenuItemUpdate) (domain.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.menu[upd.ID]
	if !ok {
		return domain.MenuItem{}, fmt.Errorf("update menu item %d: %w", upd.ID, domain.ErrNotFound)
	}
	if err := s.checkCategory(upd.CategoryID); err != nil {
		return domain.MenuItem{}, err
	}
	m.Name, m.Price, m.CategoryID, m.ImageURL = upd.Name, upd.Price, upd.CategoryID, upd.ImageURL
	if upd.Stock != nil {
		m.Stock = *upd.Stock
	}
	s.menu[upd.ID] = copyItem(m)
	return copyItem(m), nil
}

func (s *Store) DeleteMenuItem(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.menu[id]; !ok {
		return fmt.Errorf("delete menu item %d: %w", id, domain.ErrNotFound)
	}
	delete(s.menu, id)
	return nil
}

func (s *Store) AdjustStock(_ context.Context, id int64, delta int) (domain.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.menu[id]
	if !ok {
		return domain.MenuItem{}, fmt.Errorf("adjust stock of item %d: %w", id, domain.ErrNotFound)
	}
	if m.Stock+delta < 0 {
		return domain.MenuItem{}, fmt.Errorf("adjust stock of item %d by %d: %w", id, delta, domain.ErrInsufficientStock)
	}
	m.Stock += delta
	s.menu[id] = m
	return copyItem(m), nil
}

func (s *Store) ListLowStock(_ context.Context, threshold int) ([]domain.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.menuWhere(func(m domain.MenuItem) bool { return m.Stock <= threshold })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Stock < out[j].Stock })
	return out, nil
}

func (s *Store) checkCategory(id *int64) error {
	if id == nil {
		return nil
	}
	if _, ok := s.categories[*id]; !ok {
		return fmt.Errorf("%w: category %d does not exist", domain.ErrValidation, *id)
	}
	return nil
}

func copyItem(m domain.MenuItem) domain.MenuItem {
	if m.CategoryID != nil {
		c := *m.CategoryID
		m.CategoryID = &c
	}
	return m
}
