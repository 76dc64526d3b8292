package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IdentityRepository defines the credential store contract. Username
// uniqueness is arbitrated by the store itself; a violation surfaces as
// ErrUsernameExists, never as a generic failure.
type IdentityRepository interface {
	CreateIdentity(ctx context.Context, params CreateIdentityParams) (Identity, error)
	GetIdentity(ctx context.Context, id uuid.UUID) (Identity, error)
	GetIdentityByUsername(ctx context.Context, username string) (Identity, error)
	FindIdentities(ctx context.Context) ([]Identity, error)
	UpdateIdentity(ctx context.Context, params UpdateIdentityParams) (Identity, error)
	DeleteIdentity(ctx context.Context, id uuid.UUID) error
}

// PostgresIdentityRepository implements IdentityRepository using pgx
type PostgresIdentityRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresIdentityRepository creates a new PostgreSQL-based identity repository
func NewPostgresIdentityRepository(pool *pgxpool.Pool) *PostgresIdentityRepository {
	return &PostgresIdentityRepository{
		pool: pool,
	}
}

const identityColumns = "id, name, username, password_hash, created_at, updated_at"

func scanIdentity(row pgx.Row) (Identity, error) {
	var identity Identity
	err := row.Scan(&identity.ID, &identity.Name, &identity.Username,
		&identity.PasswordHash, &identity.CreatedAt, &identity.UpdatedAt)
	return identity, err
}

// isUniqueViolation reports whether err is a postgres unique constraint violation
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// CreateIdentity persists a new identity record
func (r *PostgresIdentityRepository) CreateIdentity(ctx context.Context, params CreateIdentityParams) (Identity, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO identity (name, username, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING `+identityColumns,
		params.Name, params.Username, params.PasswordHash)

	identity, err := scanIdentity(row)
	if err != nil {
		if isUniqueViolation(err) {
			return Identity{}, ErrUsernameExists{Username: params.Username}
		}
		return Identity{}, fmt.Errorf("failed to create identity: %w", err)
	}
	return identity, nil
}

// GetIdentity retrieves an identity by id
func (r *PostgresIdentityRepository) GetIdentity(ctx context.Context, id uuid.UUID) (Identity, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+identityColumns+` FROM identity WHERE id = $1`, id)

	identity, err := scanIdentity(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Identity{}, ErrIdentityNotFound
		}
		return Identity{}, fmt.Errorf("failed to get identity: %w", err)
	}
	return identity, nil
}

// GetIdentityByUsername retrieves an identity by its login key
func (r *PostgresIdentityRepository) GetIdentityByUsername(ctx context.Context, username string) (Identity, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+identityColumns+` FROM identity WHERE username = $1`, username)

	identity, err := scanIdentity(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Identity{}, ErrIdentityNotFound
		}
		return Identity{}, fmt.Errorf("failed to get identity by username: %w", err)
	}
	return identity, nil
}

// FindIdentities retrieves all identities
func (r *PostgresIdentityRepository) FindIdentities(ctx context.Context) ([]Identity, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+identityColumns+` FROM identity ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to find identities: %w", err)
	}
	defer rows.Close()

	var identities []Identity
	for rows.Next() {
		identity, err := scanIdentity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan identity: %w", err)
		}
		identities = append(identities, identity)
	}
	return identities, rows.Err()
}

// UpdateIdentity applies a partial update. Nil params keep the stored value.
func (r *PostgresIdentityRepository) UpdateIdentity(ctx context.Context, params UpdateIdentityParams) (Identity, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE identity
		 SET name = COALESCE($2, name),
		     username = COALESCE($3, username),
		     password_hash = COALESCE($4, password_hash),
		     updated_at = now()
		 WHERE id = $1
		 RETURNING `+identityColumns,
		params.ID, params.Name, params.Username, params.PasswordHash)

	identity, err := scanIdentity(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Identity{}, ErrIdentityNotFound
		}
		if isUniqueViolation(err) {
			username := ""
			if params.Username != nil {
				username = *params.Username
			}
			return Identity{}, ErrUsernameExists{Username: username}
		}
		return Identity{}, fmt.Errorf("failed to update identity: %w", err)
	}
	return identity, nil
}

// DeleteIdentity hard-deletes an identity
func (r *PostgresIdentityRepository) DeleteIdentity(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM identity WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete identity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrIdentityNotFound
	}
	return nil
}
