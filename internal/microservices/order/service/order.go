package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"canteen/internal/common/httpx"
	"canteen/internal/common/logger"
	"canteen/internal/common/metrics"
	"canteen/internal/domain"
	"canteen/internal/events"
	"canteen/internal/microservices/order/domain/dto"
	"canteen/internal/repository"
)

type OrderServiceInterface interface {
	// Place runs the placement saga. The result is filled in even when an error is returned.
	Place(ctx context.Context, req dto.PlaceOrderRequest) (dto.PlacementResult, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
	GetOrder(ctx context.Context, id int64) (domain.Order, error)
	ListActiveByUser(ctx context.Context, userID int64) ([]domain.Order, error)
}

type OrderService struct {
	orders    repository.OrderRepositoryInterface
	menu      repository.MenuRepositoryInterface
	events    events.Publisher
	log       *logger.Logger
	listLimit int
}

func NewOrderService(orders repository.OrderRepositoryInterface, menu repository.MenuRepositoryInterface,
	pub events.Publisher, log *logger.Logger, listLimit int) OrderServiceInterface {
	return &OrderService{orders: orders, menu: menu, events: pub, log: log, listLimit: listLimit}
}

func (s *OrderService) Place(ctx context.Context, req dto.PlaceOrderRequest) (dto.PlacementResult, error) {
	res := dto.PlacementResult{Outcome: dto.OutcomeFailed, Skipped: []dto.SkippedLine{}, Deductions: []dto.Deduction{}}
	log := s.log.WithContext(ctx).With(map[string]any{"user_id": req.UserID})

	if err := validate(req); err != nil {
		return res, err
	}

	// create_order
	order, err := s.orders.CreateOrder(ctx, domain.Order{
		UserID:           req.UserID,
		TotalAmount:      req.TotalAmount,
		PaymentMethod:    req.PaymentMethod,
		PaymentReference: req.PaymentReference,
		StationNumber:    req.StationNumber,
		Status:           domain.StatusPending,
		PaymentStatus:    domain.PaymentStatusFor(req.PaymentMethod),
	})
	if err != nil {
		res.Record(dto.StageCreateOrder, dto.StageFailed, detail(err))
		log.Error("order_create_failed", err, nil)
		metrics.OrderPlaced(string(dto.OutcomeFailed))
		return res, fmt.Errorf("create order: %w", err)
	}
	res.Record(dto.StageCreateOrder, dto.StageOK, "")
	res.Order = order
	log = log.With(map[string]any{"order_id": order.ID})

	// insert_items
	lines := dto.ConvertItems(req.Items)
	if len(lines) == 0 {
		res.Record(dto.StageInsertItems, dto.StageSkipped, "")
	} else {
		saved, err := s.orders.CreateOrderItems(ctx, order.ID, lines)
		if err != nil {
			res.Record(dto.StageInsertItems, dto.StageFailed, detail(err))
			log.Error("order_items_failed", err, nil)
			s.dropOrder(ctx, order.ID, &res, log)
			metrics.OrderPlaced(string(dto.OutcomeFailed))
			return res, fmt.Errorf("insert order items: %w", err)
		}
		res.Items = saved
		res.Record(dto.StageInsertItems, dto.StageOK, "")
	}

	// deduct_stock
	rejection, failure := s.deductStock(ctx, req.Items, &res, log)
	switch {
	case rejection != nil:
		res.Record(dto.StageDeductStock, dto.StageFailed, detail(rejection))
		s.compensateStock(ctx, order.ID, failure, &res, log)
		metrics.OrderPlaced(string(dto.OutcomeFailed))
		return res, rejection
	case failure != nil:
		res.Record(dto.StageDeductStock, dto.StageFailed, detail(failure))
		if err := s.orders.MarkNeedsReview(ctx, order.ID); err != nil {
			log.Error("order_flag_failed", err, nil)
		}
		res.Order.NeedsReview = true
		res.Outcome = dto.OutcomePartial
		log.Warn("order_needs_review", map[string]any{"reason": failure.Error()})
	case len(res.Deductions) == 0:
		res.Record(dto.StageDeductStock, dto.StageSkipped, "")
		res.Outcome = dto.OutcomeSucceeded
	default:
		res.Record(dto.StageDeductStock, dto.StageOK, "")
		res.Outcome = dto.OutcomeSucceeded
	}

	res.Order.Items = res.Items
	metrics.OrderPlaced(string(res.Outcome))
	s.publishPlaced(ctx, res, log)
	log.Info("order_placed", map[string]any{
		"outcome": res.Outcome,
		"total":   order.TotalAmount,
		"lines":   len(res.Items),
	})
	return res, nil
}

// deductStock decrements stock for every line with an item id, all at once.
// It returns the first rejection (insufficient stock or unknown item) and,
// separately, the first other failure.
func (s *OrderService) deductStock(ctx context.Context, lines []dto.LineInput, res *dto.PlacementResult, log *logger.Logger) (rejection, failure error) {
	type job struct {
		itemID int64
		qty    int
	}
	jobs := make([]job, 0, len(lines))
	for i, l := range lines {
		if l.ItemID == nil {
			res.Skipped = append(res.Skipped, dto.SkippedLine{Index: i, Name: l.Name, Reason: "no item_id"})
			log.Warn("stock_skipped", map[string]any{"line": i, "name": l.Name})
			continue
		}
		jobs = append(jobs, job{itemID: *l.ItemID, qty: l.Quantity})
	}

	errs := make([]error, len(jobs))
	var wg sync.WaitGroup
	for i, j := range jobs {
		wg.Add(1)
		go func(i int, j job) {
			defer wg.Done()
			_, errs[i] = s.menu.AdjustStock(ctx, j.itemID, -j.qty)
		}(i, j)
	}
	wg.Wait()

	for i, j := range jobs {
		d := dto.Deduction{ItemID: j.itemID, Quantity: j.qty, Status: dto.StageOK}
		if err := errs[i]; err != nil {
			d.Status = dto.StageFailed
			d.Error = detail(err)
			switch {
			case errors.Is(err, domain.ErrInsufficientStock), errors.Is(err, domain.ErrNotFound):
				metrics.StockRejected()
				if rejection == nil || errors.Is(err, domain.ErrInsufficientStock) && !errors.Is(rejection, domain.ErrInsufficientStock) {
					rejection = err
				}
			default:
				if failure == nil {
					failure = err
				}
			}
			log.Warn("stock_deduction_failed", map[string]any{"item_id": j.itemID, "quantity": j.qty, "reason": err.Error()})
		}
		res.Deductions = append(res.Deductions, d)
	}
	return rejection, failure
}

// compensateStock gives back every successful deduction and removes the order.
// The order is kept and flagged so staff can reconcile when a restore fails or
// when unresolved is set: a deduction that errored without a verdict may have
// been applied, and only the order records that stock.
func (s *OrderService) compensateStock(ctx context.Context, orderID int64, unresolved error, res *dto.PlacementResult, log *logger.Logger) {
	ctx = context.WithoutCancel(ctx)
	restoreErr := unresolved
	for i, d := range res.Deductions {
		if d.Status != dto.StageOK {
			continue
		}
		if _, err := s.menu.AdjustStock(ctx, d.ItemID, d.Quantity); err != nil {
			log.Error("stock_restore_failed", err, map[string]any{"item_id": d.ItemID, "quantity": d.Quantity})
			restoreErr = err
			continue
		}
		res.Deductions[i].Status = dto.StageCompensated
	}
	if restoreErr != nil {
		if err := s.orders.MarkNeedsReview(ctx, orderID); err != nil {
			log.Error("order_flag_failed", err, nil)
		}
		res.Order.NeedsReview = true
		res.Record(dto.StageCompensate, dto.StageFailed, detail(restoreErr))
		log.Warn("order_needs_review", map[string]any{"reason": restoreErr.Error()})
		return
	}
	s.dropOrder(ctx, orderID, res, log)
}

func (s *OrderService) dropOrder(ctx context.Context, orderID int64, res *dto.PlacementResult, log *logger.Logger) {
	if err := s.orders.DeleteOrder(context.WithoutCancel(ctx), orderID); err != nil {
		log.Error("order_delete_failed", err, nil)
		res.Record(dto.StageCompensate, dto.StageFailed, detail(err))
		return
	}
	res.Record(dto.StageCompensate, dto.StageCompensated, "")
}

func (s *OrderService) publishPlaced(ctx context.Context, res dto.PlacementResult, log *logger.Logger) {
	msgs := make([]domain.OrderItemMsg, 0, len(res.Items))
	for _, it := range res.Items {
		msgs = append(msgs, domain.OrderItemMsg{Name: it.Name, Quantity: it.Quantity, Price: it.Price})
	}
	err := s.events.OrderPlaced(ctx, domain.OrderPlacedEvent{
		OrderID:       res.Order.ID,
		UserID:        res.Order.UserID,
		StationNumber: res.Order.StationNumber,
		TotalAmount:   res.Order.TotalAmount,
		PaymentStatus: res.Order.PaymentStatus,
		Outcome:       string(res.Outcome),
		Items:         msgs,
		Timestamp:     time.Now().UTC(),
	})
	if err != nil {
		log.Error("order_event_failed", err, nil)
	}
}

func (s *OrderService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return s.orders.ListOrders(ctx, s.listLimit)
}

func (s *OrderService) GetOrder(ctx context.Context, id int64) (domain.Order, error) {
	return s.orders.GetOrder(ctx, id)
}

func (s *OrderService) ListActiveByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	return s.orders.ListActiveOrdersByUser(ctx, userID)
}

func validate(req dto.PlaceOrderRequest) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: user_id is required", domain.ErrValidation)
	}
	if req.TotalAmount < 0 {
		return fmt.Errorf("%w: total_amount must not be negative", domain.ErrValidation)
	}
	for i, it := range req.Items {
		if it.Quantity < 1 {
			return fmt.Errorf("%w: item %d: quantity must be at least 1", domain.ErrValidation, i)
		}
		if it.Price < 0 {
			return fmt.Errorf("%w: item %d: price must not be negative", domain.ErrValidation, i)
		}
	}
	return nil
}

// detail is the client-safe text of a stage error.
func detail(err error) string {
	if code, _ := httpx.StatusFor(err); code == http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}
