// Package auth carries the caller identity explicitly: tokens in, Identity
// out, stored on the request context by the auth middleware and passed to
// services as an argument.
package auth

import "context"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool { return r == RoleUser || r == RoleAdmin }

// Identity is who is calling.
type Identity struct {
	Subject    string `json:"subject"`
	Email      string `json:"email"`
	Department string `json:"department,omitempty"`
	Role       Role   `json:"role"`
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity stored by WithIdentity.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
