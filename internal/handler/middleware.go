package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/devsfood/backend/internal/domain/auth"
)

// identityKey is the context key for the verified request identity.
type identityKey struct{}

// IdentityFromContext extracts the verified identity from the context. The
// second return is false on routes that skip authentication.
func IdentityFromContext(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(auth.Identity)
	return id, ok
}

// authenticate verifies the Authorization bearer token and stores the
// resulting identity in the request context.
func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeMessage(w, http.StatusUnauthorized, "token not provided")
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeMessage(w, http.StatusUnauthorized, "invalid token")
			return
		}

		id, err := h.verifier.Verify(token)
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), identityKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
