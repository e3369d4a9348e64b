package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/devsfood/backend/internal/domain/auth"
	"github.com/devsfood/backend/internal/domain/order"
	"github.com/devsfood/backend/internal/domain/product"
	"github.com/devsfood/backend/internal/domain/user"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"message": msg})
}

// writeError is the single mapping point from domain errors to HTTP
// responses. Anything unrecognized is logged and reported as a generic 500,
// never leaked to the caller.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		itErr  *order.InvalidTransitionError
		iqErr  *order.InvalidQuantityError
		pnfErr *order.ProductsNotFoundError
	)

	switch {
	case errors.As(err, &itErr):
		writeJSON(w, http.StatusBadRequest, invalidTransitionJSON{
			Message:           "invalid status transition",
			CurrentStatus:     itErr.Current,
			AttemptedStatus:   itErr.Attempted,
			AllowedNextStatus: itErr.Allowed,
		})
	case errors.As(err, &iqErr):
		writeMessage(w, http.StatusBadRequest, iqErr.Error())
	case errors.As(err, &pnfErr):
		writeMessage(w, http.StatusBadRequest, "one or more products do not exist")
	case errors.Is(err, order.ErrEmptyItems),
		errors.Is(err, order.ErrUserNotFound),
		errors.Is(err, order.ErrStatusRequired),
		errors.Is(err, user.ErrEmailTaken):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, user.ErrForbidden):
		writeMessage(w, http.StatusForbidden, err.Error())
	case errors.Is(err, order.ErrNotFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, user.ErrNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	default:
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "internal server error")
	}
}

// --- Response shapes ---

type invalidTransitionJSON struct {
	Message           string         `json:"message"`
	CurrentStatus     order.Status   `json:"currentStatus"`
	AttemptedStatus   order.Status   `json:"attemptedStatus"`
	AllowedNextStatus []order.Status `json:"allowedNextStatus"`
}

type productImageJSON struct {
	Thumbnail string `json:"thumbnail"`
	Mobile    string `json:"mobile"`
	Tablet    string `json:"tablet"`
	Desktop   string `json:"desktop"`
}

type productJSON struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Price    float64          `json:"price"`
	Category string           `json:"category"`
	Image    productImageJSON `json:"image"`
}

type userJSON struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      user.Role `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type orderItemJSON struct {
	ProductID string       `json:"productId"`
	Quantity  int          `json:"quantity"`
	Price     float64      `json:"price"`
	Product   *productJSON `json:"product,omitempty"`
}

type orderJSON struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Items     []orderItemJSON `json:"items"`
	Total     float64         `json:"total"`
	Status    order.Status    `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
	User      *userJSON       `json:"user,omitempty"`
}

func toProductJSON(p product.Product) productJSON {
	return productJSON{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price.InexactFloat64(),
		Category: p.Category,
		Image: productImageJSON{
			Thumbnail: p.Image.Thumbnail,
			Mobile:    p.Image.Mobile,
			Tablet:    p.Image.Tablet,
			Desktop:   p.Image.Desktop,
		},
	}
}

func toUserJSON(u user.SafeUser) userJSON {
	return userJSON{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func toOrderJSON(v *order.View) orderJSON {
	items := make([]orderItemJSON, len(v.Items))
	for i, item := range v.Items {
		items[i] = orderItemJSON{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price.InexactFloat64(),
		}
		if i < len(v.Products) {
			p := toProductJSON(v.Products[i])
			items[i].Product = &p
		}
	}

	out := orderJSON{
		ID:        v.ID,
		UserID:    v.UserID,
		Items:     items,
		Total:     v.Total.InexactFloat64(),
		Status:    v.Status,
		CreatedAt: v.CreatedAt,
	}
	if v.User != nil {
		u := toUserJSON(*v.User)
		out.User = &u
	}
	return out
}
