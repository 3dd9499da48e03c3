package domain

import "time"

type OrderItemMsg struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type OrderPlacedEvent struct {
	OrderID       int64          `json:"order_id"`
	UserID        int64          `json:"user_id"`
	StationNumber string         `json:"station_number"`
	TotalAmount   float64        `json:"total_amount"`
	PaymentStatus PaymentStatus  `json:"payment_status"`
	Outcome       string         `json:"outcome"`
	Items         []OrderItemMsg `json:"items"`
	Timestamp     time.Time      `json:"timestamp"`
}

type StatusChangedEvent struct {
	OrderID       int64         `json:"order_id"`
	UserID        int64         `json:"user_id"`
	OldStatus     OrderStatus   `json:"old_status"`
	NewStatus     OrderStatus   `json:"new_status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	ChangedBy     string        `json:"changed_by"`
	Timestamp     time.Time     `json:"timestamp"`
}

const (
	NoticeResetCode     = "password_reset_code"
	NoticeStatusChanged = "order_status_changed"
)

// Notice is what the notifier delivers out of band.
type Notice struct {
	Kind      string         `json:"kind"`
	Recipient string         `json:"recipient"`
	Data      map[string]any `json:"data"`
	Timestamp time.Time      `json:"timestamp"`
}
