package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/devsfood/backend/internal/domain/product"
	"github.com/devsfood/backend/internal/domain/user"
)

var (
	// ErrNotFound is returned when a requested order does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrStaleStatus is returned by Repository.UpdateStatus when the stored
	// status no longer matches the status the caller read. The order exists;
	// another writer committed first.
	ErrStaleStatus = errors.New("order status changed concurrently")
)

// Order represents a customer's purchase with frozen pricing and a
// fulfillment status. UserID and Total are immutable after creation; Status
// moves only along the transition graph in status.go.
type Order struct {
	ID        string
	UserID    string
	Items     []Item
	Total     decimal.Decimal
	Status    Status
	CreatedAt time.Time
}

// Item is a single line of an order. Price is a copy taken from the catalog
// at creation time; later catalog price changes never alter it.
type Item struct {
	ProductID string
	Quantity  int
	Price     decimal.Decimal
}

// View is the denormalized order returned to callers: the order itself,
// catalog detail for each line (indexed like Items), and optionally a safe
// projection of the owning user.
type View struct {
	Order
	Products []product.Product
	User     *user.SafeUser
}

// Repository defines persistence operations for orders.
type Repository interface {
	// Create persists the order header and all its items as one atomic unit.
	Create(ctx context.Context, o *Order) error
	// GetByID returns the order with its items, or ErrNotFound.
	GetByID(ctx context.Context, id string) (*Order, error)
	// ListByUser returns the user's orders, newest-created first. A user with
	// no orders yields an empty slice.
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	// UpdateStatus sets the status to `to` only while the stored status still
	// equals `from`. It returns ErrStaleStatus when a concurrent writer won,
	// or ErrNotFound when the order does not exist.
	UpdateStatus(ctx context.Context, id string, from, to Status) error
}
