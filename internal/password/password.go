// Package password implements the hash schemes used by the credential store.
//
// The default scheme is the legacy one the bank's employee table was seeded
// with: an unsalted SHA-256 digest rendered as lowercase hex and compared
// case-insensitively. It exists for compatibility with those stored hashes
// and is deliberately not hardened — no salt, no work factor. New deployments
// should provision accounts with the bcrypt scheme instead.
package password

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Verifier decides whether a presented plaintext password matches a stored
// hash. Implementations are stateless and deterministic.
type Verifier interface {
	Verify(storedHash, presented string) bool
}

// Hasher produces a stored hash for a new plaintext password.
type Hasher interface {
	Generate(password string) (string, error)
}

// Scheme is a named hash algorithm usable for both provisioning and
// verification.
type Scheme interface {
	Verifier
	Hasher
	Name() string
}

const (
	SchemeLegacySHA256 = "sha256-hex"
	SchemeBcrypt       = "bcrypt"
)

// ByName resolves a configured scheme name.
func ByName(name string) (Scheme, error) {
	switch name {
	case SchemeLegacySHA256:
		return LegacySHA256{}, nil
	case SchemeBcrypt:
		return Bcrypt{}, nil
	default:
		return nil, fmt.Errorf("unknown password scheme %q", name)
	}
}

// LegacySHA256 reproduces the legacy store format exactly: SHA-256 over the
// UTF-8 bytes, lowercase hex, case-insensitive compare. An empty presented
// password hashes to the fixed empty-string digest and simply fails to match
// any real stored hash; that is not an error.
type LegacySHA256 struct{}

func (LegacySHA256) Name() string { return SchemeLegacySHA256 }

func (LegacySHA256) Generate(password string) (string, error) {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:]), nil
}

func (l LegacySHA256) Verify(storedHash, presented string) bool {
	digest, _ := l.Generate(presented)
	return strings.EqualFold(digest, storedHash)
}

// Bcrypt is the salted, cost-factored scheme recommended for accounts
// provisioned after the legacy migration.
type Bcrypt struct{}

func (Bcrypt) Name() string { return SchemeBcrypt }

func (Bcrypt) Generate(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (Bcrypt) Verify(storedHash, presented string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(presented)) == nil
}
