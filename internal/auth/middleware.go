package auth

import (
	"context"
	"fmt"
	"net/http"

	"ms-servicing/internal/logger"
	"ms-servicing/internal/models"
	"ms-servicing/internal/utils"
)

// Verifier checks a raw bearer token and returns the caller's email.
type Verifier interface {
	Verify(ctx context.Context, raw string) (string, error)
}

type CustomerResolver interface {
	GetByEmail(ctx context.Context, email string) (*models.Customer, error)
}

type IdentityCache interface {
	Get(ctx context.Context, token string) (*Identity, error)
	Set(ctx context.Context, token string, id Identity) error
}

// Middleware authenticates the bearer token and stores the resolved
// Identity in the request context. Cache may be nil.
func Middleware(verifier Verifier, customers CustomerResolver, cache IdentityCache, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawToken, err := ExtractTokenFromRequest(r)
			if err != nil {
				utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Unauthorized", err.Error()))
				return
			}

			if cache != nil {
				cached, err := cache.Get(r.Context(), rawToken)
				if err != nil {
					log.Warn("AUTH", fmt.Sprintf("Identity cache unavailable: %v", err))
				} else if cached != nil {
					next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), *cached)))
					return
				}
			}

			email, err := verifier.Verify(r.Context(), rawToken)
			if err != nil {
				log.LogSecurity("TOKEN", err.Error())
				utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Unauthorized", err.Error()))
				return
			}

			customer, err := customers.GetByEmail(r.Context(), email)
			if err != nil {
				utils.WriteError(w, "Failed to resolve customer", err)
				return
			}
			if customer == nil {
				log.LogSecurity("TOKEN", fmt.Sprintf("No customer for authenticated email %s", email))
				utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Unauthorized", "no customer account for this token"))
				return
			}

			id := Identity{CustomerID: customer.ID, Email: customer.Email, Role: customer.Role}
			if cache != nil {
				if err := cache.Set(r.Context(), rawToken, id); err != nil {
					log.Warn("AUTH", err.Error())
				}
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireRole rejects callers without the given role. It must run after Middleware.
func RequireRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := FromContext(r.Context())
			if !ok {
				utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Unauthorized", "not authenticated"))
				return
			}
			if id.Role != role {
				utils.WriteJSON(w, http.StatusForbidden, utils.ErrorResponse("Forbidden", fmt.Sprintf("%s role required", role)))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
