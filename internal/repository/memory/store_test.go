package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canteen/internal/domain"
)

func TestAdjustStockLastUnitGoesToOneBuyer(t *testing.T) {
	s := New()
	ctx := context.Background()
	item, err := s.CreateMenuItem(ctx, domain.MenuItem{Name: "Burger", Price: 8.5, Stock: 1})
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, fail int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.AdjustStock(ctx, item.ID, -1)
			mu.Lock()
			defer mu.Unlock()
			if errors.Is(err, domain.ErrInsufficientStock) {
				fail++
			} else if err == nil {
				ok++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, 9, fail)
	got, err := s.GetMenuItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)
}

func TestCreateUserUniqueness(t *testing.T) {
	s := New()
	ctx := context.Background()
	_, err := s.CreateUser(ctx, domain.User{Username: "alice", Email: "a@x.io"})
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, domain.User{Username: "alice", Email: "other@x.io"})
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = s.CreateUser(ctx, domain.User{Username: "alice2", Email: "A@X.io"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCreateOrderItemsAllOrNone(t *testing.T) {
	s := New()
	ctx := context.Background()
	u, _ := s.CreateUser(ctx, domain.User{Username: "alice", Email: "a@x.io"})
	o, err := s.CreateOrder(ctx, domain.Order{UserID: u.ID, Status: domain.StatusPending})
	require.NoError(t, err)

	_, err = s.CreateOrderItems(ctx, o.ID, []domain.OrderItem{
		{Name: "Water", Price: 1, Quantity: 1},
		{Name: "Ghost", Price: 1, Quantity: 0},
	})
	require.ErrorIs(t, err, domain.ErrValidation)

	got, err := s.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Items)
}

func TestDeleteUserKeepsOrders(t *testing.T) {
	s := New()
	ctx := context.Background()
	u, _ := s.CreateUser(ctx, domain.User{Username: "alice", Email: "a@x.io"})
	o, _ := s.CreateOrder(ctx, domain.Order{UserID: u.ID, Status: domain.StatusPending})

	require.NoError(t, s.DeleteUser(ctx, u.ID))
	got, err := s.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Zero(t, got.UserID)
	assert.ErrorIs(t, s.DeleteUser(ctx, u.ID), domain.ErrNotFound)
}

func TestUpdateOrderStatusTransitions(t *testing.T) {
	s := New()
	ctx := context.Background()
	u, _ := s.CreateUser(ctx, domain.User{Username: "alice", Email: "a@x.io"})
	o, _ := s.CreateOrder(ctx, domain.Order{UserID: u.ID, Status: domain.StatusPending, PaymentStatus: domain.PaymentUnpaid})

	paid := domain.PaymentPaid
	old, got, err := s.UpdateOrderStatus(ctx, o.ID, domain.StatusUpdate{Status: domain.StatusPreparing, PaymentStatus: &paid})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, old)
	assert.Equal(t, domain.PaymentPaid, got.PaymentStatus)
	assert.Equal(t, "alice", got.Username)

	_, _, err = s.UpdateOrderStatus(ctx, o.ID, domain.StatusUpdate{Status: domain.StatusPending})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestSalesReport(t *testing.T) {
	s := New()
	ctx := context.Background()
	u, _ := s.CreateUser(ctx, domain.User{Username: "alice", Email: "a@x.io"})

	o1, _ := s.CreateOrder(ctx, domain.Order{UserID: u.ID, TotalAmount: 17, Status: domain.StatusCompleted, PaymentStatus: domain.PaymentPaid})
	_, err := s.CreateOrderItems(ctx, o1.ID, []domain.OrderItem{{Name: "Burger", Price: 8.5, Quantity: 2}})
	require.NoError(t, err)
	o2, _ := s.CreateOrder(ctx, domain.Order{UserID: u.ID, TotalAmount: 3, Status: domain.StatusCancelled, PaymentStatus: domain.PaymentUnpaid})
	_, err = s.CreateOrderItems(ctx, o2.ID, []domain.OrderItem{{Name: "Water", Price: 3, Quantity: 1}})
	require.NoError(t, err)

	rep, err := s.SalesReport(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.TotalOrders)
	assert.InDelta(t, 17.0, rep.PaidRevenue, 0.001)
	require.Len(t, rep.TopItems, 1)
	assert.Equal(t, "Burger", rep.TopItems[0].Name)
	assert.Equal(t, 2, rep.TopItems[0].Quantity)
}
