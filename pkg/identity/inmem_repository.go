package identity

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryIdentityRepository implements IdentityRepository using in-memory
// storage. Used by tests and the inmem demo binary.
type InMemoryIdentityRepository struct {
	mu         sync.RWMutex
	identities map[uuid.UUID]Identity
}

// NewInMemoryIdentityRepository creates a new in-memory identity repository
func NewInMemoryIdentityRepository() *InMemoryIdentityRepository {
	return &InMemoryIdentityRepository{
		identities: make(map[uuid.UUID]Identity),
	}
}

// CreateIdentity creates a new identity. Uniqueness is checked under the
// write lock, mirroring the database constraint.
func (r *InMemoryIdentityRepository) CreateIdentity(ctx context.Context, params CreateIdentityParams) (Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.identities {
		if existing.Username == params.Username {
			return Identity{}, ErrUsernameExists{Username: params.Username}
		}
	}

	now := time.Now()
	identity := Identity{
		ID:           uuid.New(),
		Name:         params.Name,
		Username:     params.Username,
		PasswordHash: params.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	r.identities[identity.ID] = identity
	return identity, nil
}

// GetIdentity gets an identity by id
func (r *InMemoryIdentityRepository) GetIdentity(ctx context.Context, id uuid.UUID) (Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	identity, ok := r.identities[id]
	if !ok {
		return Identity{}, ErrIdentityNotFound
	}
	return identity, nil
}

// GetIdentityByUsername gets an identity by its login key
func (r *InMemoryIdentityRepository) GetIdentityByUsername(ctx context.Context, username string) (Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, identity := range r.identities {
		if identity.Username == username {
			return identity, nil
		}
	}
	return Identity{}, ErrIdentityNotFound
}

// FindIdentities returns all identities
func (r *InMemoryIdentityRepository) FindIdentities(ctx context.Context) ([]Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Identity, 0, len(r.identities))
	for _, identity := range r.identities {
		result = append(result, identity)
	}
	return result, nil
}

// UpdateIdentity applies a partial update
func (r *InMemoryIdentityRepository) UpdateIdentity(ctx context.Context, params UpdateIdentityParams) (Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	identity, ok := r.identities[params.ID]
	if !ok {
		return Identity{}, ErrIdentityNotFound
	}

	if params.Username != nil && *params.Username != identity.Username {
		for _, existing := range r.identities {
			if existing.Username == *params.Username {
				return Identity{}, ErrUsernameExists{Username: *params.Username}
			}
		}
		identity.Username = *params.Username
	}
	if params.Name != nil {
		identity.Name = *params.Name
	}
	if params.PasswordHash != nil {
		identity.PasswordHash = *params.PasswordHash
	}
	identity.UpdatedAt = time.Now()

	r.identities[params.ID] = identity
	return identity, nil
}

// DeleteIdentity hard-deletes an identity
func (r *InMemoryIdentityRepository) DeleteIdentity(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.identities[id]; !ok {
		return ErrIdentityNotFound
	}
	delete(r.identities, id)
	return nil
}
