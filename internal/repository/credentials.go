package repository

import (
	"context"
	"errors"

	"bank-identity/internal/domain"
)

var (
	// ErrNotFound indicates a lookup matched no record.
	ErrNotFound = errors.New("not found")
	// ErrInvalidSubject indicates a subject id that does not parse as an
	// account identifier.
	ErrInvalidSubject = errors.New("invalid subject id")
	// ErrStoreUnavailable indicates the store could not be reached within the
	// caller's deadline. The caller owns any retry policy.
	ErrStoreUnavailable = errors.New("credential store unavailable")
	// ErrAlreadyExists indicates a uniqueness violation during provisioning.
	ErrAlreadyExists = errors.New("already exists")
)

// CredentialStore is the authoritative source of user, role and assignment
// data. Reads are idempotent and side-effect free; the write operations exist
// for the provisioning tooling only and are never called at request time.
type CredentialStore interface {
	Init(ctx context.Context) error

	// FindByUsername performs an exact, case-sensitive match. An empty
	// username returns ErrNotFound without touching the store.
	FindByUsername(ctx context.Context, username string) (*domain.UserAccount, error)

	// FindBySubjectID resolves a stringified numeric account id. A subject id
	// that does not parse as an integer returns ErrInvalidSubject.
	FindBySubjectID(ctx context.Context, subjectID string) (*domain.UserAccount, error)

	// RolesForUser returns the names of the user's active roles, empty when
	// the user has none.
	RolesForUser(ctx context.Context, userID int64) ([]string, error)

	CreateUser(ctx context.Context, user *domain.UserAccount) (int64, error)
	CreateRole(ctx context.Context, role *domain.Role) (int64, error)
	AssignRole(ctx context.Context, userID, roleID int64) error
	FindRoleByName(ctx context.Context, name string) (*domain.Role, error)
}
