package repository

import (
	"context"
	"fmt"

	"canteen/internal/domain"
)

type ReviewRepository struct {
	*base
}

func NewReviewRepository(b *base) ReviewRepositoryInterface {
	return &ReviewRepository{base: b}
}

func (r *ReviewRepository) CreateReview(ctx context.Context, rv domain.Review) (domain.Review, error) {
	err := r.write(ctx, func(ctx context.Context) error {
		return r.db.QueryRowxContext(ctx, `
			INSERT INTO reviews (user_id, order_id, name, rating, comment)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at
		`, rv.UserID, rv.OrderID, rv.Name, rv.Rating, rv.Comment).Scan(&rv.ID, &rv.CreatedAt)
	})
	if err != nil {
		return domain.Review{}, fmt.Errorf("create review: %w", mapError(err))
	}
	return rv, nil
}

func (r *ReviewRepository) ListReviews(ctx context.Context, limit int) ([]domain.Review, error) {
	reviews := []domain.Review{}
	err := r.read(ctx, func(ctx context.Context) error {
		reviews = reviews[:0]
		return r.db.SelectContext(ctx, &reviews, `
			SELECT id, user_id, order_id, name, rating, comment, created_at
			FROM reviews ORDER BY created_at DESC, id DESC LIMIT $1
		`, limit)
	})
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", mapError(err))
	}
	return reviews, nil
}
