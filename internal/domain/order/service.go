package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/devsfood/backend/internal/domain/product"
	"github.com/devsfood/backend/internal/domain/user"
)

// Sentinel errors for order validation.
var (
	ErrEmptyItems     = errors.New("order must contain items")
	ErrUserNotFound   = errors.New("user not found")
	ErrStatusRequired = errors.New("status is required")
)

// InvalidQuantityError indicates a line item has a non-positive quantity.
type InvalidQuantityError struct {
	ProductID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %s", e.ProductID)
}

// ProductsNotFoundError indicates one or more requested products do not
// exist in the catalog. A single unknown product fails the whole request.
type ProductsNotFoundError struct {
	Missing []string
}

func (e *ProductsNotFoundError) Error() string {
	return "one or more products do not exist: " + strings.Join(e.Missing, ", ")
}

// InvalidTransitionError indicates a status change outside the transition
// graph. Current, Attempted and Allowed are part of the contract callers
// report back to clients.
type InvalidTransitionError struct {
	Current   Status
	Attempted Status
	Allowed   []Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.Current, e.Attempted)
}

// ItemInput is one requested order line as supplied by the caller. Price is
// deliberately absent: pricing always comes from the catalog.
type ItemInput struct {
	ProductID string
	Quantity  int
}

// PlaceRequest holds the input for placing an order.
type PlaceRequest struct {
	UserID string
	Items  []ItemInput
}

// UpdateStatusRequest holds the input for a status transition. Role is the
// acting caller's role; the service gates the mutation on it regardless of
// how the transport layer is wired.
type UpdateStatusRequest struct {
	OrderID string
	Status  Status
	Role    user.Role
}

// Service orchestrates order creation and the status state machine.
type Service struct {
	products product.Repository
	users    user.Repository
	orders   Repository
	now      func() time.Time
}

// NewService creates an order Service with the required collaborators.
func NewService(products product.Repository, users user.Repository, orders Repository) *Service {
	return &Service{
		products: products,
		users:    users,
		orders:   orders,
		now:      time.Now,
	}
}

// Place validates the requested items, resolves prices from the catalog in a
// single batch read, computes the total server-side, and persists the order
// with its items atomically. Nothing is written on any validation failure.
func (s *Service) Place(ctx context.Context, req PlaceRequest) (*View, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: item.ProductID}
		}
	}

	// The identity token may reference a user deleted since it was issued.
	u, err := s.users.GetByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, errors.Wrap(err, "get user")
	}

	ids := distinctProductIDs(req.Items)
	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}

	byID := make(map[string]product.Product, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}
	if len(byID) < len(ids) {
		missing := make([]string, 0, len(ids)-len(byID))
		for _, id := range ids {
			if _, ok := byID[id]; !ok {
				missing = append(missing, id)
			}
		}
		return nil, &ProductsNotFoundError{Missing: missing}
	}

	// Freeze the resolved unit price into each item and accumulate the total.
	items := make([]Item, len(req.Items))
	products := make([]product.Product, len(req.Items))
	total := decimal.Zero
	for i, item := range req.Items {
		p := byID[item.ProductID]
		items[i] = Item{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     p.Price,
		}
		products[i] = p
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	o := &Order{
		ID:        uuid.New().String(),
		UserID:    req.UserID,
		Items:     items,
		Total:     total.Round(2),
		Status:    StatusReceived,
		CreatedAt: s.now().UTC(),
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	safe := u.Safe()
	return &View{Order: *o, Products: products, User: &safe}, nil
}

// Get returns the order with resolved item/product detail, or ErrNotFound.
// There is no ownership check at this level; see the access-policy notes in
// the handler package.
func (s *Service) Get(ctx context.Context, id string) (*View, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, o, false)
}

// ListByUser returns the user's orders newest-created first, each enriched
// with item/product detail and a safe user projection. A user with no orders
// yields an empty slice.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]View, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}

	views := make([]View, 0, len(orders))
	for i := range orders {
		v, err := s.enrich(ctx, &orders[i], true)
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	return views, nil
}

// UpdateStatus applies a validated transition to the order's status. The
// write is conditional on the status read here; losing that race surfaces as
// an InvalidTransitionError against the committed status, never a silent
// overwrite.
func (s *Service) UpdateStatus(ctx context.Context, req UpdateStatusRequest) (*View, error) {
	if !req.Role.Can(user.CapUpdateOrderStatus) {
		return nil, user.ErrForbidden
	}
	if req.Status == "" {
		return nil, ErrStatusRequired
	}

	o, err := s.orders.GetByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	if !CanTransition(o.Status, req.Status) {
		return nil, &InvalidTransitionError{
			Current:   o.Status,
			Attempted: req.Status,
			Allowed:   AllowedNext(o.Status),
		}
	}

	if err := s.orders.UpdateStatus(ctx, o.ID, o.Status, req.Status); err != nil {
		if errors.Is(err, ErrStaleStatus) {
			cur, gerr := s.orders.GetByID(ctx, req.OrderID)
			if gerr != nil {
				return nil, errors.Wrap(gerr, "reload order")
			}
			return nil, &InvalidTransitionError{
				Current:   cur.Status,
				Attempted: req.Status,
				Allowed:   AllowedNext(cur.Status),
			}
		}
		return nil, errors.Wrap(err, "update status")
	}

	o.Status = req.Status
	return s.enrich(ctx, o, true)
}

// enrich resolves catalog detail for the order's items and, when withUser is
// set, the owner's safe projection.
func (s *Service) enrich(ctx context.Context, o *Order, withUser bool) (*View, error) {
	ids := make([]string, 0, len(o.Items))
	seen := make(map[string]struct{}, len(o.Items))
	for _, item := range o.Items {
		if _, ok := seen[item.ProductID]; !ok {
			seen[item.ProductID] = struct{}{}
			ids = append(ids, item.ProductID)
		}
	}

	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}
	byID := make(map[string]product.Product, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}

	products := make([]product.Product, len(o.Items))
	for i, item := range o.Items {
		products[i] = byID[item.ProductID]
	}

	v := &View{Order: *o, Products: products}
	if withUser {
		u, err := s.users.GetByID(ctx, o.UserID)
		if err != nil {
			return nil, errors.Wrap(err, "get user")
		}
		safe := u.Safe()
		v.User = &safe
	}
	return v, nil
}

func distinctProductIDs(items []ItemInput) []string {
	ids := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; !ok {
			seen[item.ProductID] = struct{}{}
			ids = append(ids, item.ProductID)
		}
	}
	return ids
}
