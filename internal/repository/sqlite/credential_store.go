package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"bank-identity/internal/domain"
	"bank-identity/internal/repository"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	email_address TEXT NOT NULL,
	social_security_number TEXT NOT NULL DEFAULT '',
	date_of_birth DATETIME NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS roles (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	active INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS user_roles (
	user_id INTEGER NOT NULL REFERENCES users(id),
	role_id INTEGER NOT NULL REFERENCES roles(id),
	PRIMARY KEY (user_id, role_id)
);
`

const userColumns = `id, username, password_hash, first_name, last_name, email_address, social_security_number, date_of_birth, created_at, updated_at`

// CredentialStore is the sqlite-backed credential store.
type CredentialStore struct {
	db *sql.DB
}

func NewCredentialStore(db *sql.DB) repository.CredentialStore {
	return &CredentialStore{db: db}
}

func (s *CredentialStore) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create credential tables: %w", err)
	}
	return nil
}

func (s *CredentialStore) FindByUsername(ctx context.Context, username string) (*domain.UserAccount, error) {
	if username == "" {
		return nil, repository.ErrNotFound
	}
	row := s.db.QueryRowContext(ctx, `
SELECT `+userColumns+`
FROM users
WHERE username = ?`,
		username,
	)
	return scanUser(row)
}

func (s *CredentialStore) FindBySubjectID(ctx context.Context, subjectID string) (*domain.UserAccount, error) {
	id, err := strconv.ParseInt(subjectID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("subject %q: %w", subjectID, repository.ErrInvalidSubject)
	}
	row := s.db.QueryRowContext(ctx, `
SELECT `+userColumns+`
FROM users
WHERE id = ?`,
		id,
	)
	return scanUser(row)
}

func (s *CredentialStore) RolesForUser(ctx context.Context, userID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT r.name
FROM user_roles ur
JOIN roles r ON r.id = ur.role_id
WHERE ur.user_id = ? AND r.active = 1
ORDER BY r.name`,
		userID,
	)
	if err != nil {
		return nil, storeErr("query roles", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan role name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("read roles", err)
	}
	return names, nil
}

func (s *CredentialStore) CreateUser(ctx context.Context, user *domain.UserAccount) (int64, error) {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := s.db.ExecContext(ctx, `
INSERT INTO users (username, password_hash, first_name, last_name, email_address, social_security_number, date_of_birth, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.Username,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.EmailAddress,
		user.SocialSecurityNumber,
		user.DateOfBirth,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("username %q: %w", user.Username, repository.ErrAlreadyExists)
		}
		return 0, storeErr("insert user", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("user last insert id: %w", err)
	}
	user.ID = id
	return id, nil
}

func (s *CredentialStore) CreateRole(ctx context.Context, role *domain.Role) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
INSERT INTO roles (name, active)
VALUES (?, ?)`,
		role.Name,
		role.Active,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("role %q: %w", role.Name, repository.ErrAlreadyExists)
		}
		return 0, storeErr("insert role", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("role last insert id: %w", err)
	}
	role.ID = id
	return id, nil
}

func (s *CredentialStore) AssignRole(ctx context.Context, userID, roleID int64) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO user_roles (user_id, role_id)
VALUES (?, ?)`,
		userID,
		roleID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("assignment (%d, %d): %w", userID, roleID, repository.ErrAlreadyExists)
		}
		return storeErr("insert assignment", err)
	}
	return nil
}

func (s *CredentialStore) FindRoleByName(ctx context.Context, name string) (*domain.Role, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, name, active
FROM roles
WHERE name = ?`,
		name,
	)
	var role domain.Role
	if err := row.Scan(&role.ID, &role.Name, &role.Active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, storeErr("scan role", err)
	}
	return &role, nil
}

func scanUser(row *sql.Row) (*domain.UserAccount, error) {
	var user domain.UserAccount
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.EmailAddress,
		&user.SocialSecurityNumber,
		&user.DateOfBirth,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, storeErr("scan user", err)
	}
	return &user, nil
}

// storeErr maps deadline and cancellation failures to ErrStoreUnavailable so
// callers can recognize a retryable store fault with errors.Is.
func storeErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w: %v", op, repository.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unique")
}
