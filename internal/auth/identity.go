package auth

import (
	"context"

	"ms-servicing/internal/models"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the authenticated caller, resolved to a customer record.
type Identity struct {
	CustomerID int64       `json:"customer_id"`
	Email      string      `json:"email"`
	Role       models.Role `json:"role"`
}

func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// CustomerID returns 0 when the request is unauthenticated.
func CustomerID(ctx context.Context) int64 {
	id, _ := FromContext(ctx)
	return id.CustomerID
}
