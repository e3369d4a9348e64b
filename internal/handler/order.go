package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/devsfood/backend/internal/domain/order"
)

type createOrderRequest struct {
	Items []struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	} `json:"items"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// createOrder places an order for the authenticated user. Pricing always
// comes from the catalog; any price field in the request body is ignored by
// construction.
func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "token not provided")
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return
	}

	items := make([]order.ItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = order.ItemInput{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	v, err := h.orders.Place(r.Context(), order.PlaceRequest{
		UserID: id.UserID,
		Items:  items,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toOrderJSON(v))
}

// listMyOrders returns the authenticated user's orders, newest first.
func (h *Handler) listMyOrders(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "token not provided")
		return
	}

	views, err := h.orders.ListByUser(r.Context(), id.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]orderJSON, len(views))
	for i := range views {
		out[i] = toOrderJSON(&views[i])
	}
	writeJSON(w, http.StatusOK, out)
}

// getOrder returns an order by ID. Any authenticated caller may fetch any
// order; there is deliberately no ownership check at this boundary (see
// DESIGN.md).
func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	if payload, ok := h.cache.Get(r.Context(), orderID); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(payload)
		return
	}

	v, err := h.orders.Get(r.Context(), orderID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.cacheView(r, v)
	writeJSON(w, http.StatusOK, toOrderJSON(v))
}

// updateOrderStatus applies a status transition. The order service gates the
// mutation on the caller's role before reading any state.
func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "token not provided")
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return
	}

	v, err := h.orders.UpdateStatus(r.Context(), order.UpdateStatusRequest{
		OrderID: chi.URLParam(r, "id"),
		Status:  order.Status(req.Status),
		Role:    id.Role,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.cache.Invalidate(r.Context(), v.ID)
	writeJSON(w, http.StatusOK, toOrderJSON(v))
}

// cacheView stores the GET serialization of an order view on a cache miss.
// Cache failures never affect the response.
func (h *Handler) cacheView(r *http.Request, v *order.View) {
	if h.cache == nil {
		return
	}
	payload, err := json.Marshal(toOrderJSON(v))
	if err != nil {
		return
	}
	h.cache.Set(r.Context(), v.ID, payload)
}
