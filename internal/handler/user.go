package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/devsfood/backend/internal/domain/user"
)

type createUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// createUser registers a new customer account. Registration is public; roles
// are never taken from the request.
func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "name, email and password are required")
		return
	}

	u := &user.User{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Role:      user.RoleCustomer,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.users.Create(r.Context(), u); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserJSON(u.Safe()))
}

// listUsers returns safe projections of all users.
func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]userJSON, len(users))
	for i := range users {
		out[i] = toUserJSON(users[i].Safe())
	}
	writeJSON(w, http.StatusOK, out)
}
