package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleCustomer Role = "Customer"
	RoleStaff    Role = "Staff"
	RoleAdmin    Role = "Admin"
)

// ParseRole resolves a joined role name. Missing or unknown names fall back to Customer.
func ParseRole(name string) Role {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "staff":
		return RoleStaff
	case "admin":
		return RoleAdmin
	default:
		return RoleCustomer
	}
}

func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleStaff || r == RoleAdmin
}

type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusPreparing OrderStatus = "Preparing"
	StatusReady     OrderStatus = "Ready"
	StatusCompleted OrderStatus = "Completed"
	StatusCancelled OrderStatus = "Cancelled"
)

// ParseOrderStatus accepts any casing of a known status.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	for _, st := range []OrderStatus{StatusPending, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled} {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, true
		}
	}
	return "", false
}

// ActiveStatuses are the statuses a customer still waits on.
var ActiveStatuses = []OrderStatus{StatusPending, StatusPreparing, StatusReady}

var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady, StatusCancelled},
	StatusReady:     {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether staff may move an order from one status to another.
// Staying in the same status is always allowed so payment fields can change alone.
func CanTransition(from, to OrderStatus) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentUnpaid              PaymentStatus = "Unpaid"
	PaymentPendingVerification PaymentStatus = "Pending Verification"
	PaymentPaid                PaymentStatus = "Paid"
)

func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	for _, ps := range []PaymentStatus{PaymentUnpaid, PaymentPendingVerification, PaymentPaid} {
		if strings.EqualFold(strings.TrimSpace(s), string(ps)) {
			return ps, true
		}
	}
	return "", false
}

// PaymentStatusFor derives the initial payment status of a new order.
func PaymentStatusFor(method string) PaymentStatus {
	if method == "Cash" {
		return PaymentUnpaid
	}
	return PaymentPendingVerification
}

type User struct {
	ID                 int64      `json:"id" db:"id"`
	Username           string     `json:"username" db:"username"`
	Email              string     `json:"email" db:"email"`
	PasswordDigest     string     `json:"-" db:"password_digest"`
	Role               Role       `json:"role" db:"role"`
	ResetCode          *string    `json:"-" db:"reset_code"`
	ResetCodeExpiresAt *time.Time `json:"-" db:"reset_code_expires_at"`
	ResetVerifiedAt    *time.Time `json:"-" db:"reset_verified_at"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
}

type Category struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

type MenuItem struct {
	ID         int64   `json:"id" db:"id"`
	Name       string  `json:"name" db:"name"`
	Price      float64 `json:"price" db:"price"`
	CategoryID *int64  `json:"category_id" db:"category_id"`
	ImageURL   string  `json:"image_url" db:"image_url"`
	Stock      int     `json:"stock" db:"stock"`
}

// MenuItemUpdate replaces an item's details. A nil Stock leaves the stored
// count alone so edits never overwrite concurrent deductions.
type MenuItemUpdate struct {
	ID         int64   `db:"id"`
	Name       string  `db:"name"`
	Price      float64 `db:"price"`
	CategoryID *int64  `db:"category_id"`
	ImageURL   string  `db:"image_url"`
	Stock      *int    `db:"stock"`
}

type Order struct {
	ID               int64         `json:"id" db:"id"`
	UserID           int64         `json:"user_id" db:"user_id"`
	Username         string        `json:"username,omitempty" db:"username"`
	TotalAmount      float64       `json:"total_amount" db:"total_amount"`
	PaymentMethod    string        `json:"payment_method" db:"payment_method"`
	PaymentReference string        `json:"payment_reference" db:"payment_reference"`
	StationNumber    string        `json:"station_number" db:"station_number"`
	Status           OrderStatus   `json:"status" db:"status"`
	PaymentStatus    PaymentStatus `json:"payment_status" db:"payment_status"`
	NeedsReview      bool          `json:"needs_review" db:"needs_review"`
	CreatedAt        time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at" db:"updated_at"`
	Items            []OrderItem   `json:"items,omitempty" db:"-"`
}

// OrderItem is a snapshot of a line at order time, not a live menu reference.
type OrderItem struct {
	ID         int64   `json:"id" db:"id"`
	OrderID    int64   `json:"order_id" db:"order_id"`
	MenuItemID *int64  `json:"item_id,omitempty" db:"menu_item_id"`
	Name       string  `json:"name" db:"name"`
	Price      float64 `json:"price" db:"price"`
	Quantity   int     `json:"quantity" db:"quantity"`
	Notes      string  `json:"notes" db:"notes"`
}

type Review struct {
	ID        int64     `json:"id" db:"id"`
	UserID    *int64    `json:"user_id,omitempty" db:"user_id"`
	OrderID   *int64    `json:"order_id,omitempty" db:"order_id"`
	Name      string    `json:"name" db:"name"`
	Rating    int       `json:"rating" db:"rating"`
	Comment   string    `json:"comment" db:"comment"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// StatusUpdate carries a staff change; nil fields stay as they are.
type StatusUpdate struct {
	Status           OrderStatus
	PaymentStatus    *PaymentStatus
	PaymentReference *string
}
