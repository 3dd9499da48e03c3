package memory

import (
	"context"
	"fmt"
	"sort"

	"canteen/internal/domain"
)

func (s *Store) CreateOrder(_ context.Context, o domain.Order) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[o.UserID]; !ok {
		return domain.Order{}, fmt.Errorf("%w: user %d does not exist", domain.ErrValidation, o.UserID)
	}
	o.ID = s.id()
	o.CreatedAt = s.now()
	o.UpdatedAt = o.CreatedAt
	o.Items = nil
	s.orders[o.ID] = o
	return o, nil
}

func (s *Store) CreateOrderItems(_ context.Context, orderID int64, items []domain.OrderItem) ([]domain.OrderItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[orderID]; !ok {
		return nil, fmt.Errorf("%w: order %d does not exist", domain.ErrValidation, orderID)
	}
	// validate everything first so a bad line leaves nothing behind
	for _, it := range items {
		if it.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
		}
	}
	out := make([]domain.OrderItem, 0, len(items))
	for _, it := range items {
		it.ID = s.id()
		it.OrderID = orderID
		it.MenuItemID = copyID(it.MenuItemID)
		out = append(out, it)
	}
	s.items[orderID] = append(s.items[orderID], out...)
	return copyLines(out), nil
}

func (s *Store) DeleteOrder(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[id]; !ok {
		return fmt.Errorf("delete order %d: %w", id, domain.ErrNotFound)
	}
	delete(s.orders, id)
	delete(s.items, id)
	for i := range s.reviews {
		if s.reviews[i].OrderID != nil && *s.reviews[i].OrderID == id {
			s.reviews[i].OrderID = nil
		}
	}
	return nil
}

func (s *Store) MarkNeedsReview(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return fmt.Errorf("flag order %d: %w", id, domain.ErrNotFound)
	}
	o.NeedsReview = true
	o.UpdatedAt = s.now()
	s.orders[id] = o
	return nil
}

func (s *Store) GetOrder(_ context.Context, id int64) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return domain.Order{}, fmt.Errorf("get order %d: %w", id, domain.ErrNotFound)
	}
	return s.hydrate(o), nil
}

func (s *Store) ListOrders(_ context.Context, limit int) ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.ordersWhere(func(domain.Order) bool { return true }, true)
	return truncate(out, limit), nil
}

func (s *Store) ListActiveOrdersByUser(_ context.Context, userID int64) ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ordersWhere(func(o domain.Order) bool {
		if o.UserID != userID {
			return false
		}
		for _, st := range domain.ActiveStatuses {
			if o.Status == st {
				return true
			}
		}
		return false
	}, true), nil
}

func (s *Store) ListOrdersByStatus(_ context.Context, status domain.OrderStatus, limit int) ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.ordersWhere(func(o domain.Order) bool { return o.Status == status }, false)
	return truncate(out, limit), nil
}

func (s *Store) UpdateOrderStatus(_ context.Context, id int64, upd domain.StatusUpdate) (domain.OrderStatus, domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return "", domain.Order{}, fmt.Errorf("update status of order %d: %w", id, domain.ErrNotFound)
	}
	old := o.Status
	if !domain.CanTransition(old, upd.Status) {
		return "", domain.Order{}, fmt.Errorf("update status of order %d: %w: %s -> %s",
			id, domain.ErrInvalidTransition, old, upd.Status)
	}
	o.Status = upd.Status
	if upd.PaymentStatus != nil {
		o.PaymentStatus = *upd.PaymentStatus
	}
	if upd.PaymentReference != nil {
		o.PaymentReference = *upd.PaymentReference
	}
	o.UpdatedAt = s.now()
	s.orders[id] = o
	return old, s.hydrate(o), nil
}

func (s *Store) SalesReport(_ context.Context, topN int) (domain.SalesReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rep := domain.SalesReport{ByStatus: []domain.StatusCount{}, TopItems: []domain.ItemSales{}}

	byStatus := map[domain.OrderStatus]*domain.StatusCount{}
	sales := map[string]*domain.ItemSales{}
	for _, o := range s.orders {
		rep.TotalOrders++
		if o.PaymentStatus == domain.PaymentPaid {
			rep.PaidRevenue += o.TotalAmount
		}
		sc, ok := byStatus[o.Status]
		if !ok {
			sc = &domain.StatusCount{Status: o.Status}
			byStatus[o.Status] = sc
		}
		sc.Orders++
		sc.Revenue += o.TotalAmount

		if o.Status == domain.StatusCancelled {
			continue
		}
		for _, it := range s.items[o.ID] {
			is, ok := sales[it.Name]
			if !ok {
				is = &domain.ItemSales{Name: it.Name}
				sales[it.Name] = is
			}
			is.Quantity += it.Quantity
			is.Revenue += float64(it.Quantity) * it.Price
		}
	}
	for _, sc := range byStatus {
		rep.ByStatus = append(rep.ByStatus, *sc)
	}
	sort.Slice(rep.ByStatus, func(i, j int) bool { return rep.ByStatus[i].Status < rep.ByStatus[j].Status })
	for _, is := range sales {
		rep.TopItems = append(rep.TopItems, *is)
	}
	sort.Slice(rep.TopItems, func(i, j int) bool {
		if rep.TopItems[i].Quantity != rep.TopItems[j].Quantity {
			return rep.TopItems[i].Quantity > rep.TopItems[j].Quantity
		}
		return rep.TopItems[i].Name < rep.TopItems[j].Name
	})
	rep.TopItems = truncate(rep.TopItems, topN)
	return rep, nil
}

// ordersWhere returns matching orders with items and usernames, newest first when desc is set.
func (s *Store) ordersWhere(keep func(domain.Order) bool, desc bool) []domain.Order {
	out := []domain.Order{}
	for _, o := range s.orders {
		if keep(o) {
			out = append(out, s.hydrate(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if desc {
			return out[i].ID > out[j].ID
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *Store) hydrate(o domain.Order) domain.Order {
	o.Username = s.users[o.UserID].Username
	o.Items = copyLines(s.items[o.ID])
	return o
}

func copyLines(lines []domain.OrderItem) []domain.OrderItem {
	if len(lines) == 0 {
		return nil
	}
	out := make([]domain.OrderItem, len(lines))
	for i, l := range lines {
		l.MenuItemID = copyID(l.MenuItemID)
		out[i] = l
	}
	return out
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func truncate[T any](s []T, limit int) []T {
	if limit > 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}
