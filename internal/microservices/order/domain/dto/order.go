package dto

import "canteen/internal/domain"

type PlaceOrderRequest struct {
	UserID           int64       `json:"user_id"`
	TotalAmount      float64     `json:"total_amount"`
	PaymentMethod    string      `json:"payment_method"`
	PaymentReference string      `json:"payment_reference"`
	StationNumber    string      `json:"station_number"`
	Items            []LineInput `json:"items"`
}

// LineInput is one cart line. ItemID is optional; lines without it are
// recorded but do not touch stock.
type LineInput struct {
	ItemID   *int64  `json:"item_id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Notes    string  `json:"notes"`
}

// ConvertItems maps cart lines to order item snapshots.
func ConvertItems(inputs []LineInput) []domain.OrderItem {
	items := make([]domain.OrderItem, 0, len(inputs))
	for _, in := range inputs {
		items = append(items, domain.OrderItem{
			MenuItemID: in.ItemID,
			Name:       in.Name,
			Price:      in.Price,
			Quantity:   in.Quantity,
			Notes:      in.Notes,
		})
	}
	return items
}

type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomePartial   Outcome = "partial"
	OutcomeFailed    Outcome = "failed"
)

type StageStatus string

const (
	StageOK          StageStatus = "ok"
	StageFailed      StageStatus = "failed"
	StageSkipped     StageStatus = "skipped"
	StageCompensated StageStatus = "compensated"
)

const (
	StageCreateOrder = "create_order"
	StageInsertItems = "insert_items"
	StageDeductStock = "deduct_stock"
	StageCompensate  = "compensate"
)

type StageResult struct {
	Name   string      `json:"name"`
	Status StageStatus `json:"status"`
	Error  string      `json:"error,omitempty"`
}

type SkippedLine struct {
	Index  int    `json:"index"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type Deduction struct {
	ItemID   int64       `json:"item_id"`
	Quantity int         `json:"quantity"`
	Status   StageStatus `json:"status"`
	Error    string      `json:"error,omitempty"`
}

type PlacementResult struct {
	Order      domain.Order       `json:"order"`
	Items      []domain.OrderItem `json:"items"`
	Outcome    Outcome            `json:"outcome"`
	Stages     []StageResult      `json:"stages"`
	Skipped    []SkippedLine      `json:"skipped"`
	Deductions []Deduction        `json:"deductions"`
}

// Stage returns the recorded result of the named stage.
func (r PlacementResult) Stage(name string) (StageResult, bool) {
	for _, s := range r.Stages {
		if s.Name == name {
			return s, true
		}
	}
	return StageResult{}, false
}

func (r *PlacementResult) Record(name string, status StageStatus, detail string) {
	r.Stages = append(r.Stages, StageResult{Name: name, Status: status, Error: detail})
}
