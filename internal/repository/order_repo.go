package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"canteen/internal/domain"
)

type OrderRepository struct {
	*base
}

func NewOrderRepository(b *base) OrderRepositoryInterface {
	return &OrderRepository{base: b}
}

const selectOrder = `
	SELECT o.id, COALESCE(o.user_id, 0) AS user_id, COALESCE(u.username, '') AS username,
	       o.total_amount, o.payment_method, o.payment_reference, o.station_number,
	       o.status, o.payment_status, o.needs_review, o.created_at, o.updated_at
	FROM orders o
	LEFT JOIN users u ON u.id = o.user_id`

const itemColumns = `id, order_id, menu_item_id, name, price, quantity, notes`

func (r *OrderRepository) CreateOrder(ctx context.Context, o domain.Order) (domain.Order, error) {
	err := r.write(ctx, func(ctx context.Context) error {
		return r.db.QueryRowxContext(ctx, `
			INSERT INTO orders (user_id, total_amount, payment_method, payment_reference,
			                    station_number, status, payment_status, needs_review)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id, created_at, updated_at
		`, o.UserID, o.TotalAmount, o.PaymentMethod, o.PaymentReference,
			o.StationNumber, string(o.Status), string(o.PaymentStatus), o.NeedsReview,
		).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	})
	if err != nil {
		return domain.Order{}, fmt.Errorf("create order for user %d: %w", o.UserID, mapError(err))
	}
	return o, nil
}

func (r *OrderRepository) CreateOrderItems(ctx context.Context, orderID int64, items []domain.OrderItem) ([]domain.OrderItem, error) {
	out := make([]domain.OrderItem, 0, len(items))
	err := r.inTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		out = out[:0]
		for _, it := range items {
			var saved domain.OrderItem
			if err := tx.GetContext(ctx, &saved, `
				INSERT INTO order_items (order_id, menu_item_id, name, price, quantity, notes)
				VALUES ($1, $2, $3, $4, $5, $6)
				RETURNING `+itemColumns,
				orderID, it.MenuItemID, it.Name, it.Price, it.Quantity, it.Notes); err != nil {
				return err
			}
			out = append(out, saved)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create items of order %d: %w", orderID, mapError(err))
	}
	return out, nil
}

func (r *OrderRepository) DeleteOrder(ctx context.Context, id int64) error {
	// order_items go with it via ON DELETE CASCADE
	return r.exec(ctx, "delete order", `DELETE FROM orders WHERE id = $1`, id)
}

func (r *OrderRepository) MarkNeedsReview(ctx context.Context, id int64) error {
	return r.exec(ctx, "flag order", `UPDATE orders SET needs_review = TRUE, updated_at = now() WHERE id = $1`, id)
}

func (r *OrderRepository) GetOrder(ctx context.Context, id int64) (domain.Order, error) {
	var o domain.Order
	err := r.read(ctx, func(ctx context.Context) error {
		return r.db.GetContext(ctx, &o, selectOrder+` WHERE o.id = $1`, id)
	})
	if err != nil {
		return domain.Order{}, fmt.Errorf("get order %d: %w", id, mapError(err))
	}
	orders := []domain.Order{o}
	if err := r.attachItems(ctx, orders); err != nil {
		return domain.Order{}, err
	}
	return orders[0], nil
}

func (r *OrderRepository) ListOrders(ctx context.Context, limit int) ([]domain.Order, error) {
	return r.list(ctx, "list orders", selectOrder+` ORDER BY o.created_at DESC, o.id DESC LIMIT ?`, limit)
}

func (r *OrderRepository) ListActiveOrdersByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	return r.list(ctx, "list active orders",
		selectOrder+` WHERE o.user_id = ? AND o.status IN (?) ORDER BY o.created_at DESC, o.id DESC`,
		userID, statusNames(domain.ActiveStatuses))
}

func (r *OrderRepository) ListOrdersByStatus(ctx context.Context, status domain.OrderStatus, limit int) ([]domain.Order, error) {
	return r.list(ctx, "list orders by status",
		selectOrder+` WHERE o.status = ? ORDER BY o.created_at ASC, o.id ASC LIMIT ?`,
		string(status), limit)
}

// list expands "?" placeholders with sqlx.In, so IN clauses take slices.
func (r *OrderRepository) list(ctx context.Context, op, query string, args ...any) ([]domain.Order, error) {
	q, qargs, err := sqlx.In(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	q = r.db.Rebind(q)

	orders := []domain.Order{}
	err = r.read(ctx, func(ctx context.Context) error {
		orders = orders[:0]
		return r.db.SelectContext(ctx, &orders, q, qargs...)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderRepository) attachItems(ctx context.Context, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int64, len(orders))
	idx := make(map[int64]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		idx[o.ID] = i
	}
	q, args, err := sqlx.In(`SELECT `+itemColumns+` FROM order_items WHERE order_id IN (?) ORDER BY id`, ids)
	if err != nil {
		return fmt.Errorf("load order items: %w", err)
	}
	q = r.db.Rebind(q)

	items := []domain.OrderItem{}
	err = r.read(ctx, func(ctx context.Context) error {
		items = items[:0]
		return r.db.SelectContext(ctx, &items, q, args...)
	})
	if err != nil {
		return fmt.Errorf("load order items: %w", mapError(err))
	}
	for _, it := range items {
		i := idx[it.OrderID]
		orders[i].Items = append(orders[i].Items, it)
	}
	return nil
}

func (r *OrderRepository) UpdateOrderStatus(ctx context.Context, id int64, upd domain.StatusUpdate) (domain.OrderStatus, domain.Order, error) {
	var (
		old domain.OrderStatus
		out domain.Order
	)
	err := r.inTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		var current string
		if err := tx.GetContext(ctx, &current, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id); err != nil {
			return err
		}
		old = domain.OrderStatus(current)
		if !domain.CanTransition(old, upd.Status) {
			return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, old, upd.Status)
		}

		var payment *string
		if upd.PaymentStatus != nil {
			s := string(*upd.PaymentStatus)
			payment = &s
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE orders
			SET status = $2,
			    payment_status = COALESCE($3, payment_status),
			    payment_reference = COALESCE($4, payment_reference),
			    updated_at = now()
			WHERE id = $1
		`, id, string(upd.Status), payment, upd.PaymentReference); err != nil {
			return err
		}
		return tx.GetContext(ctx, &out, selectOrder+` WHERE o.id = $1`, id)
	})
	if err != nil {
		return "", domain.Order{}, fmt.Errorf("update status of order %d: %w", id, mapError(err))
	}
	return old, out, nil
}

func (r *OrderRepository) SalesReport(ctx context.Context, topN int) (domain.SalesReport, error) {
	var rep domain.SalesReport
	err := r.read(ctx, func(ctx context.Context) error {
		rep = domain.SalesReport{ByStatus: []domain.StatusCount{}, TopItems: []domain.ItemSales{}}
		if err := r.db.SelectContext(ctx, &rep.ByStatus, `
			SELECT status, COUNT(*) AS orders, COALESCE(SUM(total_amount), 0) AS revenue
			FROM orders GROUP BY status ORDER BY status
		`); err != nil {
			return err
		}
		if err := r.db.GetContext(ctx, &rep.PaidRevenue, `
			SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE payment_status = $1
		`, string(domain.PaymentPaid)); err != nil {
			return err
		}
		return r.db.SelectContext(ctx, &rep.TopItems, `
			SELECT oi.name, SUM(oi.quantity) AS quantity, SUM(oi.quantity * oi.price) AS revenue
			FROM order_items oi
			JOIN orders o ON o.id = oi.order_id
			WHERE o.status <> $1
			GROUP BY oi.name
			ORDER BY quantity DESC, oi.name
			LIMIT $2
		`, string(domain.StatusCancelled), topN)
	})
	if err != nil {
		return domain.SalesReport{}, fmt.Errorf("sales report: %w", mapError(err))
	}
	for _, s := range rep.ByStatus {
		rep.TotalOrders += s.Orders
	}
	return rep, nil
}

func statusNames(ss []domain.OrderStatus) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = string(s)
	}
	return out
}
