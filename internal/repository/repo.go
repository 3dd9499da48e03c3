package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"canteen/internal/domain"
)

type UserRepositoryInterface interface {
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)
	GetUser(ctx context.Context, id int64) (domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	SetResetCode(ctx context.Context, userID int64, code string, expiresAt time.Time) error
	MarkResetVerified(ctx context.Context, userID int64, at time.Time) error
	// ResetPassword stores a new digest and clears any reset code.
	ResetPassword(ctx context.Context, userID int64, digest string) error
	UpdateRole(ctx context.Context, userID int64, role domain.Role) (domain.User, error)
	DeleteUser(ctx context.Context, userID int64) error
}

type MenuRepositoryInterface interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListMenuItems(ctx context.Context) ([]domain.MenuItem, error)
	GetMenuItem(ctx context.Context, id int64) (domain.MenuItem, error)
	CreateMenuItem(ctx context.Context, item domain.MenuItem) (domain.MenuItem, error)
	UpdateMenuItem(ctx context.Context, upd domain.MenuItemUpdate) (domain.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id int64) error
	// AdjustStock adds delta to the stock in one conditional write. It fails
	// with domain.ErrInsufficientStock, leaving stock untouched, if the result
	// would be negative.
	AdjustStock(ctx context.Context, id int64, delta int) (domain.MenuItem, error)
	ListLowStock(ctx context.Context, threshold int) ([]domain.MenuItem, error)
}

type OrderRepositoryInterface interface {
	CreateOrder(ctx context.Context, o domain.Order) (domain.Order, error)
	// CreateOrderItems inserts all items or none.
	CreateOrderItems(ctx context.Context, orderID int64, items []domain.OrderItem) ([]domain.OrderItem, error)
	// DeleteOrder removes the order together with its items.
	DeleteOrder(ctx context.Context, id int64) error
	MarkNeedsReview(ctx context.Context, id int64) error
	GetOrder(ctx context.Context, id int64) (domain.Order, error)
	ListOrders(ctx context.Context, limit int) ([]domain.Order, error)
	ListActiveOrdersByUser(ctx context.Context, userID int64) ([]domain.Order, error)
	ListOrdersByStatus(ctx context.Context, status domain.OrderStatus, limit int) ([]domain.Order, error)
	// UpdateOrderStatus applies a staff change under a row lock and returns the previous status.
	UpdateOrderStatus(ctx context.Context, id int64, upd domain.StatusUpdate) (domain.OrderStatus, domain.Order, error)
	SalesReport(ctx context.Context, topN int) (domain.SalesReport, error)
}

type ReviewRepositoryInterface interface {
	CreateReview(ctx context.Context, r domain.Review) (domain.Review, error)
	ListReviews(ctx context.Context, limit int) ([]domain.Review, error)
}

type Repository struct {
	UserRepo   UserRepositoryInterface
	MenuRepo   MenuRepositoryInterface
	OrderRepo  OrderRepositoryInterface
	ReviewRepo ReviewRepositoryInterface
}

type Options struct {
	Timeout     time.Duration
	ReadRetries int
}

func New(db *sqlx.DB, opts Options) *Repository {
	b := newBase(db, opts)
	return &Repository{
		UserRepo:   NewUserRepository(b),
		MenuRepo:   NewMenuRepository(b),
		OrderRepo:  NewOrderRepository(b),
		ReviewRepo: NewReviewRepository(b),
	}
}
