// Package handler exposes the application over HTTP. Handlers are thin
// adapters: they parse requests, delegate to the domain services, and map
// results and errors onto JSON responses.
package handler

import (
	"github.com/go-chi/chi/v5"

	"github.com/devsfood/backend/internal/domain/auth"
	"github.com/devsfood/backend/internal/domain/order"
	"github.com/devsfood/backend/internal/domain/product"
	"github.com/devsfood/backend/internal/domain/user"
	"github.com/devsfood/backend/internal/redisx"
)

// TokenVerifier validates a bearer token and yields the identity it carries.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

// Handler holds the dependencies shared by all HTTP endpoints.
type Handler struct {
	orders   *order.Service
	products product.Repository
	users    user.Repository
	auth     *auth.Service
	verifier TokenVerifier
	cache    *redisx.OrderViewCache
}

// New constructs a Handler. cache may be nil when Redis is not configured.
func New(
	orders *order.Service,
	products product.Repository,
	users user.Repository,
	authSvc *auth.Service,
	verifier TokenVerifier,
	cache *redisx.OrderViewCache,
) *Handler {
	return &Handler{
		orders:   orders,
		products: products,
		users:    users,
		auth:     authSvc,
		verifier: verifier,
		cache:    cache,
	}
}

// Routes builds the chi router for the full API surface.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/auth/login", h.login)
	r.Post("/users", h.createUser)
	r.Get("/products", h.listProducts)
	r.Get("/products/{id}", h.getProduct)

	r.Group(func(r chi.Router) {
		r.Use(h.authenticate)
		r.Get("/users", h.listUsers)
		r.Post("/orders", h.createOrder)
		r.Get("/orders/my", h.listMyOrders)
		r.Get("/orders/{id}", h.getOrder)
		// The admin capability for status updates is enforced inside the
		// order service, independent of routing.
		r.Patch("/orders/{id}/status", h.updateOrderStatus)
	})

	return r
}
