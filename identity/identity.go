// Package identity wraps the upstream authentication provider and keeps a
// local mirror of every identity that signs in.
package identity

import "context"

// Identity is an authenticated principal. UID is stable across sessions.
type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
	PhotoURL    string `json:"photoURL,omitempty"`
}

// DisplayNamePtr returns nil when no display name is known.
func (i *Identity) DisplayNamePtr() *string {
	if i.DisplayName == "" {
		return nil
	}
	name := i.DisplayName
	return &name
}

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Provider authenticates credentials against an upstream service.
// Implementations return apperr kinds only: Unauthorized for rejected
// credentials, UpstreamUnavailable for transport failures and AuthCanceled
// when ctx ends first.
type Provider interface {
	Authenticate(ctx context.Context, creds Credentials) (*Identity, error)
	Revoke(ctx context.Context, id *Identity) error
}
