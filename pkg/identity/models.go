package identity

import (
	"time"

	"github.com/google/uuid"
)

// Identity represents one registered account. PasswordHash never leaves this
// package: it is excluded from JSON and from SafeIdentity.
type Identity struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// SafeIdentity is the externally visible projection of an Identity with the
// password hash removed. It is the only identity shape handed to clients.
type SafeIdentity struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateIdentityParams contains parameters for persisting a new identity
type CreateIdentityParams struct {
	Name         string
	Username     string
	PasswordHash string
}

// UpdateIdentityParams contains parameters for a partial identity update.
// Nil fields are left unchanged by the store.
type UpdateIdentityParams struct {
	ID           uuid.UUID
	Name         *string
	Username     *string
	PasswordHash *string
}
