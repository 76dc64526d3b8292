package identity

import (
	"errors"
	"fmt"
)

// ErrIdentityNotFound is returned when an identity id does not resolve
var ErrIdentityNotFound = errors.New("identity not found")

// ErrInvalidCredentials is returned for every failed login, whether the
// username is unknown or the password is wrong. The two cases must stay
// externally indistinguishable to avoid username enumeration.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ErrUsernameExists is returned when attempting to create or rename an
// identity with a username that already exists
type ErrUsernameExists struct {
	Username string
}

func (e ErrUsernameExists) Error() string {
	return fmt.Sprintf("username already exists: %s", e.Username)
}

// ErrValidation is returned when a caller-supplied field is out of bounds
type ErrValidation struct {
	Field  string
	Reason string
}

func (e ErrValidation) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
