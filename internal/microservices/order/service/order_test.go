package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canteen/internal/common/logger"
	"canteen/internal/domain"
	"canteen/internal/events"
	"canteen/internal/microservices/order/domain/dto"
	"canteen/internal/repository"
	"canteen/internal/repository/memory"
)

type fixture struct {
	store *memory.Store
	pub   *events.Recorder
	user  domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	u, err := store.CreateUser(context.Background(), domain.User{Username: "alice", Email: "a@x.io"})
	require.NoError(t, err)
	return &fixture{store: store, pub: &events.Recorder{}, user: u}
}

func (f *fixture) item(t *testing.T, name string, stock int) int64 {
	t.Helper()
	it, err := f.store.CreateMenuItem(context.Background(), domain.MenuItem{Name: name, Price: 5, Stock: stock})
	require.NoError(t, err)
	return it.ID
}

func (f *fixture) stock(t *testing.T, id int64) int {
	t.Helper()
	it, err := f.store.GetMenuItem(context.Background(), id)
	require.NoError(t, err)
	return it.Stock
}

func (f *fixture) service(orders repository.OrderRepositoryInterface, menu repository.MenuRepositoryInterface) OrderServiceInterface {
	if orders == nil {
		orders = f.store
	}
	if menu == nil {
		menu = f.store
	}
	return NewOrderService(orders, menu, f.pub, logger.NewWithOutput("test", io.Discard), 100)
}

func (f *fixture) orderCount(t *testing.T) int {
	t.Helper()
	orders, err := f.store.ListOrders(context.Background(), 0)
	require.NoError(t, err)
	return len(orders)
}

func id(v int64) *int64 { return &v }

func TestPlace_DeductsStock(t *testing.T) {
	f := newFixture(t)
	burger := f.item(t, "Burger", 10)

	res, err := f.service(nil, nil).Place(context.Background(), dto.PlaceOrderRequest{
		UserID:        f.user.ID,
		TotalAmount:   10,
		PaymentMethod: "Cash",
		StationNumber: "S1",
		Items:         []dto.LineInput{{ItemID: id(burger), Name: "Burger", Quantity: 2, Price: 5}},
	})
	require.NoError(t, err)

	assert.Equal(t, dto.OutcomeSucceeded, res.Outcome)
	assert.InDelta(t, 10.0, res.Order.TotalAmount, 0.001)
	assert.Equal(t, domain.StatusPending, res.Order.Status)
	assert.Equal(t, domain.PaymentUnpaid, res.Order.PaymentStatus)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Burger", res.Items[0].Name)
	assert.Equal(t, 8, f.stock(t, burger))

	stage, ok := res.Stage(dto.StageDeductStock)
	require.True(t, ok)
	assert.Equal(t, dto.StageOK, stage.Status)
	require.Len(t, f.pub.Placed, 1)
	assert.Equal(t, res.Order.ID, f.pub.Placed[0].OrderID)
}

func TestPlace_NonCashIsPendingVerification(t *testing.T) {
	f := newFixture(t)
	res, err := f.service(nil, nil).Place(context.Background(), dto.PlaceOrderRequest{
		UserID: f.user.ID, PaymentMethod: "GCash", PaymentReference: "ref-9",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPendingVerification, res.Order.PaymentStatus)

	stage, _ := res.Stage(dto.StageInsertItems)
	assert.Equal(t, dto.StageSkipped, stage.Status)
}

func TestPlace_LineWithoutItemIDIsSkipped(t *testing.T) {
	f := newFixture(t)
	burger := f.item(t, "Burger", 10)

	res, err := f.service(nil, nil).Place(context.Background(), dto.PlaceOrderRequest{
		UserID: f.user.ID,
		Items:  []dto.LineInput{{Name: "Custom juice", Quantity: 1, Price: 3}},
	})
	require.NoError(t, err)

	assert.Equal(t, dto.OutcomeSucceeded, res.Outcome)
	require.Len(t, res.Items, 1)
	assert.Nil(t, res.Items[0].MenuItemID)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "Custom juice", res.Skipped[0].Name)
	assert.Empty(t, res.Deductions)
	assert.Equal(t, 10, f.stock(t, burger))
}

func TestPlace_Validation(t *testing.T) {
	f := newFixture(t)
	svc := f.service(nil, nil)

	tests := []struct {
		name string
		req  dto.PlaceOrderRequest
	}{
		{"missing user", dto.PlaceOrderRequest{}},
		{"negative total", dto.PlaceOrderRequest{UserID: f.user.ID, TotalAmount: -1}},
		{"zero quantity", dto.PlaceOrderRequest{UserID: f.user.ID, Items: []dto.LineInput{{Name: "x", Quantity: 0}}}},
		{"negative price", dto.PlaceOrderRequest{UserID: f.user.ID, Items: []dto.LineInput{{Name: "x", Quantity: 1, Price: -2}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Place(context.Background(), tt.req)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
	assert.Zero(t, f.orderCount(t))
}

func TestPlace_LastUnitGoesToOneOrder(t *testing.T) {
	f := newFixture(t)
	burger := f.item(t, "Burger", 1)
	svc := f.service(nil, nil)

	var (
		wg   sync.WaitGroup
		errs = make([]error, 2)
	)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Place(context.Background(), dto.PlaceOrderRequest{
				UserID: f.user.ID,
				Items:  []dto.LineInput{{ItemID: id(burger), Name: "Burger", Quantity: 1, Price: 5}},
			})
		}(i)
	}
	wg.Wait()

	var ok, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientStock):
			rejected++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, rejected)
	assert.Equal(t, 0, f.stock(t, burger))
	assert.Equal(t, 1, f.orderCount(t))
}

func TestPlace_RejectionRestoresEarlierDeductions(t *testing.T) {
	f := newFixture(t)
	burger := f.item(t, "Burger", 10)
	fries := f.item(t, "Fries", 1)

	res, err := f.service(nil, nil).Place(context.Background(), dto.PlaceOrderRequest{
		UserID: f.user.ID,
		Items: []dto.LineInput{
			{ItemID: id(burger), Name: "Burger", Quantity: 2, Price: 5},
			{ItemID: id(fries), Name: "Fries", Quantity: 3, Price: 2},
		},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, dto.OutcomeFailed, res.Outcome)
	assert.Equal(t, 10, f.stock(t, burger))
	assert.Equal(t, 1, f.stock(t, fries))
	assert.Zero(t, f.orderCount(t))

	stage, ok := res.Stage(dto.StageCompensate)
	require.True(t, ok)
	assert.Equal(t, dto.StageCompensated, stage.Status)
	assert.Empty(t, f.pub.Placed)
}

func TestPlace_UnknownItemIsNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.service(nil, nil).Place(context.Background(), dto.PlaceOrderRequest{
		UserID: f.user.ID,
		Items:  []dto.LineInput{{ItemID: id(999), Name: "Ghost", Quantity: 1, Price: 1}},
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, f.orderCount(t))
}

type failingItems struct {
	repository.OrderRepositoryInterface
}

func (failingItems) CreateOrderItems(context.Context, int64, []domain.OrderItem) ([]domain.OrderItem, error) {
	return nil, errors.New("connection reset")
}

func TestPlace_ItemInsertFailureDeletesOrder(t *testing.T) {
	f := newFixture(t)
	burger := f.item(t, "Burger", 10)

	res, err := f.service(failingItems{f.store}, nil).Place(context.Background(), dto.PlaceOrderRequest{
		UserID: f.user.ID,
		Items:  []dto.LineInput{{ItemID: id(burger), Name: "Burger", Quantity: 1, Price: 5}},
	})
	require.Error(t, err)

	assert.Equal(t, dto.OutcomeFailed, res.Outcome)
	stage, _ := res.Stage(dto.StageInsertItems)
	assert.Equal(t, dto.StageFailed, stage.Status)
	assert.Equal(t, "internal error", stage.Error)
	_, deducted := res.Stage(dto.StageDeductStock)
	assert.False(t, deducted)
	assert.Zero(t, f.orderCount(t))
	assert.Equal(t, 10, f.stock(t, burger))
}

type flakyMenu struct {
	repository.MenuRepositoryInterface
	broken int64
}

func (m flakyMenu) AdjustStock(ctx context.Context, id int64, delta int) (domain.MenuItem, error) {
	if id == m.broken {
		return domain.MenuItem{}, context.DeadlineExceeded
	}
	return m.MenuRepositoryInterface.AdjustStock(ctx, id, delta)
}

func TestPlace_StoreErrorDuringDeductionFlagsOrder(t *testing.T) {
	f := newFixture(t)
	burger := f.item(t, "Burger", 10)
	fries := f.item(t, "Fries", 10)

	res, err := f.service(nil, flakyMenu{f.store, fries}).Place(context.Background(), dto.PlaceOrderRequest{
		UserID: f.user.ID,
		Items: []dto.LineInput{
			{ItemID: id(burger), Name: "Burger", Quantity: 1, Price: 5},
			{ItemID: id(fries), Name: "Fries", Quantity: 1, Price: 2},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, dto.OutcomePartial, res.Outcome)
	assert.True(t, res.Order.NeedsReview)
	assert.Equal(t, 9, f.stock(t, burger))

	stored, err := f.store.GetOrder(context.Background(), res.Order.ID)
	require.NoError(t, err)
	assert.True(t, stored.NeedsReview)
	require.Len(t, f.pub.Placed, 1)
	assert.Equal(t, "partial", f.pub.Placed[0].Outcome)
}

func TestPlace_PublishFailureDoesNotFailOrder(t *testing.T) {
	f := newFixture(t)
	f.pub.Err = errors.New("broker down")

	res, err := f.service(nil, nil).Place(context.Background(), dto.PlaceOrderRequest{UserID: f.user.ID})
	require.NoError(t, err)
	assert.Equal(t, dto.OutcomeSucceeded, res.Outcome)
	assert.Equal(t, 1, f.orderCount(t))
}

// appliedThenTimeout commits the decrement for one item but reports a timeout.
type appliedThenTimeout struct {
	repository.MenuRepositoryInterface
	item int64
}

func (m appliedThenTimeout) AdjustStock(ctx context.Context, id int64, delta int) (domain.MenuItem, error) {
	it, err := m.MenuRepositoryInterface.AdjustStock(ctx, id, delta)
	if id == m.item && delta < 0 && err == nil {
		return domain.MenuItem{}, context.DeadlineExceeded
	}
	return it, err
}

func TestPlace_RejectionWithUnresolvedDeductionKeepsOrder(t *testing.T) {
	f := newFixture(t)
	burger := f.item(t, "Burger", 10)
	fries := f.item(t, "Fries", 0)

	res, err := f.service(nil, appliedThenTimeout{f.store, burger}).Place(context.Background(), dto.PlaceOrderRequest{
		UserID: f.user.ID,
		Items: []dto.LineInput{
			{ItemID: id(burger), Name: "Burger", Quantity: 2, Price: 5},
			{ItemID: id(fries), Name: "Fries", Quantity: 1, Price: 2},
		},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, dto.OutcomeFailed, res.Outcome)
	assert.True(t, res.Order.NeedsReview)
	stage, ok := res.Stage(dto.StageCompensate)
	require.True(t, ok)
	assert.Equal(t, dto.StageFailed, stage.Status)

	// the burger decrement went through, so the order stays as its record
	assert.Equal(t, 8, f.stock(t, burger))
	require.Equal(t, 1, f.orderCount(t))
	stored, err := f.store.GetOrder(context.Background(), res.Order.ID)
	require.NoError(t, err)
	assert.True(t, stored.NeedsReview)
	assert.Empty(t, f.pub.Placed)
}
