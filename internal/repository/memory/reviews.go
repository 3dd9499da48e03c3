package memory

import (
	"context"
	"fmt"

	"canteen/internal/domain"
)

func (s *Store) CreateReview(_ context.Context, r domain.Review) (domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.OrderID != nil {
		if _, ok := s.orders[*r.OrderID]; !ok {
			return domain.Review{}, fmt.Errorf("%w: order %d does not exist", domain.ErrValidation, *r.OrderID)
		}
	}
	r.ID = s.id()
	r.CreatedAt = s.now()
	r.UserID = copyID(r.UserID)
	r.OrderID = copyID(r.OrderID)
	s.reviews = append(s.reviews, r)
	return r, nil
}

// ListReviews returns the newest reviews first.
func (s *Store) ListReviews(_ context.Context, limit int) ([]domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Review, 0, len(s.reviews))
	for i := len(s.reviews) - 1; i >= 0; i-- {
		out = append(out, s.reviews[i])
	}
	return truncate(out, limit), nil
}
