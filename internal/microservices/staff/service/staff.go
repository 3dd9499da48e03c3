package service

import (
	"context"
	"fmt"
	"time"

	"canteen/internal/common/logger"
	"canteen/internal/common/metrics"
	"canteen/internal/domain"
	"canteen/internal/events"
	"canteen/internal/microservices/staff/domain/dto"
	"canteen/internal/repository"
)

type StaffServiceInterface interface {
	// ListByStatus returns the queue for one status, oldest first, with user and items joined.
	ListByStatus(ctx context.Context, status string) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, req dto.StatusUpdateRequest, changedBy string) (domain.Order, error)
}

type StaffService struct {
	orders    repository.OrderRepositoryInterface
	users     repository.UserRepositoryInterface
	events    events.Publisher
	log       *logger.Logger
	listLimit int
}

func NewStaffService(orders repository.OrderRepositoryInterface, users repository.UserRepositoryInterface,
	pub events.Publisher, log *logger.Logger, listLimit int) StaffServiceInterface {
	return &StaffService{orders: orders, users: users, events: pub, log: log, listLimit: listLimit}
}

func (s *StaffService) ListByStatus(ctx context.Context, status string) ([]domain.Order, error) {
	st, ok := domain.ParseOrderStatus(status)
	if !ok {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, status)
	}
	return s.orders.ListOrdersByStatus(ctx, st, s.listLimit)
}

func (s *StaffService) UpdateStatus(ctx context.Context, orderID int64, req dto.StatusUpdateRequest, changedBy string) (domain.Order, error) {
	upd, err := toUpdate(req)
	if err != nil {
		return domain.Order{}, err
	}

	old, order, err := s.orders.UpdateOrderStatus(ctx, orderID, upd)
	if err != nil {
		return domain.Order{}, err
	}
	log := s.log.WithContext(ctx).With(map[string]any{"order_id": orderID})
	log.Info("order_status_changed", map[string]any{
		"old_status": old,
		"new_status": order.Status,
		"changed_by": changedBy,
	})

	if old != order.Status {
		metrics.StatusChanged(string(order.Status))
		s.publishStatus(ctx, old, order, changedBy, log)
	}
	return order, nil
}

// publishStatus announces the change on the orders exchange and tells the
// customer. Failures are logged only; the change is already committed.
func (s *StaffService) publishStatus(ctx context.Context, old domain.OrderStatus, order domain.Order, changedBy string, log *logger.Logger) {
	now := time.Now().UTC()
	if err := s.events.StatusChanged(ctx, domain.StatusChangedEvent{
		OrderID:       order.ID,
		UserID:        order.UserID,
		OldStatus:     old,
		NewStatus:     order.Status,
		PaymentStatus: order.PaymentStatus,
		ChangedBy:     changedBy,
		Timestamp:     now,
	}); err != nil {
		log.Error("status_event_failed", err, nil)
	}

	if order.UserID == 0 {
		return
	}
	customer, err := s.users.GetUser(ctx, order.UserID)
	if err != nil {
		log.Error("status_notice_skipped", err, nil)
		return
	}
	if err := s.events.Notify(ctx, domain.Notice{
		Kind:      domain.NoticeStatusChanged,
		Recipient: customer.Email,
		Data: map[string]any{
			"order_id":       order.ID,
			"status":         order.Status,
			"payment_status": order.PaymentStatus,
			"station_number": order.StationNumber,
		},
		Timestamp: now,
	}); err != nil {
		log.Error("status_notice_failed", err, nil)
	}
}

func toUpdate(req dto.StatusUpdateRequest) (domain.StatusUpdate, error) {
	st, ok := domain.ParseOrderStatus(req.Status)
	if !ok {
		return domain.StatusUpdate{}, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, req.Status)
	}
	upd := domain.StatusUpdate{Status: st, PaymentReference: req.PaymentReference}
	if req.PaymentStatus != nil {
		ps, ok := domain.ParsePaymentStatus(*req.PaymentStatus)
		if !ok {
			return domain.StatusUpdate{}, fmt.Errorf("%w: unknown payment status %q", domain.ErrValidation, *req.PaymentStatus)
		}
		upd.PaymentStatus = &ps
	}
	return upd, nil
}
