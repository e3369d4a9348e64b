package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devsfood/backend/internal/domain/auth"
	"github.com/devsfood/backend/internal/domain/order"
	"github.com/devsfood/backend/internal/domain/product"
	"github.com/devsfood/backend/internal/domain/user"
)

type memProducts struct {
	byID map[string]product.Product
}

func (m *memProducts) List(context.Context) ([]product.Product, error) {
	out := make([]product.Product, 0, len(m.byID))
	for _, p := range m.byID {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memProducts) GetByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

func (m *memProducts) GetByIDs(_ context.Context, ids []string) ([]product.Product, error) {
	out := make([]product.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := m.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type memUsers struct {
	byID map[string]user.User
}

func (m *memUsers) Create(_ context.Context, u *user.User) error {
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return user.ErrEmailTaken
		}
	}
	m.byID[u.ID] = *u
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*user.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return &u, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (m *memUsers) List(context.Context) ([]user.User, error) {
	out := make([]user.User, 0, len(m.byID))
	for _, u := range m.byID {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memOrders struct {
	byID map[string]order.Order
}

func (m *memOrders) Create(_ context.Context, o *order.Order) error {
	m.byID[o.ID] = *o
	return nil
}

func (m *memOrders) GetByID(_ context.Context, id string) (*order.Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return &o, nil
}

func (m *memOrders) ListByUser(_ context.Context, userID string) ([]order.Order, error) {
	out := make([]order.Order, 0)
	for _, o := range m.byID {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memOrders) UpdateStatus(_ context.Context, id string, from, to order.Status) error {
	o, ok := m.byID[id]
	if !ok {
		return order.ErrNotFound
	}
	if o.Status != from {
		return order.ErrStaleStatus
	}
	o.Status = to
	m.byID[id] = o
	return nil
}

type stubVerifier struct {
	identities map[string]auth.Identity
}

func (v *stubVerifier) Verify(token string) (auth.Identity, error) {
	id, ok := v.identities[token]
	if !ok {
		return auth.Identity{}, auth.ErrInvalidToken
	}
	return id, nil
}

type fixture struct {
	srv    *httptest.Server
	orders *memOrders
	users  *memUsers
}

const (
	customerToken = "customer-token"
	adminToken    = "admin-token"
)

func newFixture(t *testing.T) *fixture {
	t.Helper()

	products := &memProducts{byID: map[string]product.Product{
		"p1": {ID: "p1", Name: "Waffle with Berries", Price: decimal.RequireFromString("6.50"), Category: "waffle"},
		"p2": {ID: "p2", Name: "Vanilla Bean Creme Brulee", Price: decimal.RequireFromString("7.00"), Category: "creme-brulee"},
	}}
	users := &memUsers{byID: map[string]user.User{
		"u1": {
			ID: "u1", Name: "Ana", Email: "ana@example.com",
			Password: "secret", Role: user.RoleCustomer,
			CreatedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		},
		"adm": {
			ID: "adm", Name: "Root", Email: "root@example.com",
			Password: "toor", Role: user.RoleAdmin,
			CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}}
	orders := &memOrders{byID: map[string]order.Order{}}

	verifier := &stubVerifier{identities: map[string]auth.Identity{
		customerToken: {UserID: "u1", Role: user.RoleCustomer},
		adminToken:    {UserID: "adm", Role: user.RoleAdmin},
	}}

	tokens := auth.NewTokens([]byte("test-secret"), time.Hour)
	h := New(
		order.NewService(products, users, orders),
		products,
		users,
		auth.NewService(users, tokens),
		verifier,
		nil,
	)

	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)

	return &fixture{srv: srv, orders: orders, users: users}
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, f.srv.URL+path, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := f.srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestOrdersRequireAuth(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/orders", "", map[string]any{})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/orders/my", "bogus", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateOrder(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/orders", customerToken, map[string]any{
		"items": []map[string]any{
			{"productId": "p1", "quantity": 2},
			{"productId": "p2", "quantity": 1},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody[orderJSON](t, resp)
	assert.Equal(t, "u1", body.UserID)
	assert.Equal(t, order.StatusReceived, body.Status)
	assert.InDelta(t, 20.00, body.Total, 1e-9)
	require.Len(t, body.Items, 2)
	assert.InDelta(t, 6.50, body.Items[0].Price, 1e-9)
	require.NotNil(t, body.Items[0].Product)
	assert.Equal(t, "Waffle with Berries", body.Items[0].Product.Name)
	require.NotNil(t, body.User)
	assert.Equal(t, "Ana", body.User.Name)

	stored, ok := f.orders.byID[body.ID]
	require.True(t, ok)
	assert.Equal(t, order.StatusReceived, stored.Status)
}

func TestCreateOrderUnknownProduct(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/orders", customerToken, map[string]any{
		"items": []map[string]any{{"productId": "nope", "quantity": 1}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, f.orders.byID)
}

func TestGetOrderNotFound(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/orders/missing", customerToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListMyOrdersEmpty(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/orders/my", customerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody[[]orderJSON](t, resp)
	assert.NotNil(t, body)
	assert.Empty(t, body)
}

func TestUpdateStatusForbiddenForCustomer(t *testing.T) {
	f := newFixture(t)
	f.orders.byID["o1"] = order.Order{ID: "o1", UserID: "u1", Status: order.StatusReceived}

	resp := f.do(t, http.MethodPatch, "/orders/o1/status", customerToken, map[string]any{
		"status": "PREPARING",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, order.StatusReceived, f.orders.byID["o1"].Status)
}

func TestUpdateStatusAsAdmin(t *testing.T) {
	f := newFixture(t)
	f.orders.byID["o1"] = order.Order{
		ID: "o1", UserID: "u1", Status: order.StatusReceived,
		Items: []order.Item{{ProductID: "p1", Quantity: 1, Price: decimal.RequireFromString("6.50")}},
		Total: decimal.RequireFromString("6.50"),
	}

	resp := f.do(t, http.MethodPatch, "/orders/o1/status", adminToken, map[string]any{
		"status": "PREPARING",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody[orderJSON](t, resp)
	assert.Equal(t, order.StatusPreparing, body.Status)
	assert.Equal(t, order.StatusPreparing, f.orders.byID["o1"].Status)
}

func TestUpdateStatusInvalidTransitionBody(t *testing.T) {
	f := newFixture(t)
	f.orders.byID["o1"] = order.Order{ID: "o1", UserID: "u1", Status: order.StatusReceived}

	resp := f.do(t, http.MethodPatch, "/orders/o1/status", adminToken, map[string]any{
		"status": "DELIVERED",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody[invalidTransitionJSON](t, resp)
	assert.Equal(t, order.StatusReceived, body.CurrentStatus)
	assert.Equal(t, order.StatusDelivered, body.AttemptedStatus)
	assert.ElementsMatch(t, []order.Status{order.StatusPreparing, order.StatusCanceled}, body.AllowedNextStatus)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/auth/login", "", map[string]any{
		"email": "ana@example.com", "password": "secret",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody[loginResponse](t, resp)
	assert.NotEmpty(t, body.Token)
	assert.Equal(t, "u1", body.User.ID)
	assert.Equal(t, user.RoleCustomer, body.User.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/auth/login", "", map[string]any{
		"email": "ana@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateUser(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/users", "", map[string]any{
		"name": "Bia", "email": "bia@example.com", "password": "pw",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody[userJSON](t, resp)
	assert.Equal(t, "Bia", body.Name)
	assert.Equal(t, user.RoleCustomer, body.Role)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/users", "", map[string]any{
		"name": "Clone", "email": "ana@example.com", "password": "pw",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateUserMissingFields(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/users", "", map[string]any{
		"name": "NoEmail", "password": "pw",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListUsersRequiresAuth(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestListUsersOmitsPasswords(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/users", customerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var raw []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	require.Len(t, raw, 2)
	for _, u := range raw {
		assert.NotContains(t, u, "password")
	}
}

func TestProducts(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/products", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decodeBody[[]productJSON](t, resp)
	require.Len(t, list, 2)
	assert.Equal(t, "p1", list[0].ID)
	assert.InDelta(t, 6.50, list[0].Price, 1e-9)

	resp = f.do(t, http.MethodGet, "/products/p2", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	p := decodeBody[productJSON](t, resp)
	assert.Equal(t, "Vanilla Bean Creme Brulee", p.Name)

	resp = f.do(t, http.MethodGet, "/products/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
