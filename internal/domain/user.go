package domain

import (
	"strconv"
	"strings"
	"time"
)

// Person holds the identity attributes shared by every person-like entity in
// the bank. Concrete entities embed it instead of inheriting it.
type Person struct {
	FirstName            string
	LastName             string
	EmailAddress         string
	SocialSecurityNumber string
	DateOfBirth          time.Time
}

// FullName derives the display name from the first and last names.
func (p Person) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// UserAccount represents a person who can authenticate against the identity
// provider. Accounts are provisioned externally and never physically deleted.
type UserAccount struct {
	Person

	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SubjectID renders the account's numeric identifier the way it appears in a
// token's sub claim.
func (u *UserAccount) SubjectID() string {
	return strconv.FormatInt(u.ID, 10)
}

// Role is a named permission grouping. Inactive roles are retained in the
// store but excluded from issued claims.
type Role struct {
	ID     int64
	Name   string
	Active bool
}

// RoleAssignment links a user to a role. The (UserID, RoleID) pair is the
// identity; duplicates are rejected by the store.
type RoleAssignment struct {
	UserID int64
	RoleID int64
}
