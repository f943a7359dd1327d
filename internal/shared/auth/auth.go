package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrUnauthorized is returned when the caller cannot act as the principal.
var ErrUnauthorized = errors.New("caller is not authorized as this principal")

// Authorizer is the opaque pass/fail gate every mutating operation crosses
// before acting on behalf of a seller or bidder. The deployment substitutes
// its real scheme (chain signatures, JWT, ...) behind this interface.
type Authorizer interface {
	RequireAuth(ctx context.Context, principal uuid.UUID) error
}

type principalKey struct{}

// WithPrincipal stores the authenticated caller identity in the context.
// The delivery layer sets it once per request.
func WithPrincipal(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, principalKey{}, id)
}

// PrincipalFromContext returns the authenticated caller, if any.
func PrincipalFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(principalKey{}).(uuid.UUID)
	return id, ok
}

// ContextAuthorizer authorizes a principal iff it matches the authenticated
// identity carried by the request context.
type ContextAuthorizer struct{}

func (ContextAuthorizer) RequireAuth(ctx context.Context, principal uuid.UUID) error {
	id, ok := PrincipalFromContext(ctx)
	if !ok || id != principal {
		return ErrUnauthorized
	}
	return nil
}

// AllowAll authorizes everyone. For tests and trusted in-process callers.
type AllowAll struct{}

func (AllowAll) RequireAuth(context.Context, uuid.UUID) error { return nil }
