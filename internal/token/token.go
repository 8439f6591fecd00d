// Package token mints the identity tokens handed back after an interactive
// login. Protocol-level access tokens remain the job of the downstream OIDC
// engine; this token only carries the issued profile claims.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"bank-identity/internal/domain"
)

// ErrInvalidToken indicates a token that failed signature or time checks.
var ErrInvalidToken = errors.New("invalid identity token")

// Claims is the JWT payload of an issued identity token.
type Claims struct {
	jwt.RegisteredClaims

	Name          string   `json:"name,omitempty"`
	GivenName     string   `json:"given_name,omitempty"`
	FamilyName    string   `json:"family_name,omitempty"`
	Email         string   `json:"email,omitempty"`
	EmailVerified bool     `json:"email_verified,omitempty"`
	Roles         []string `json:"roles,omitempty"`
}

// Issuer signs identity tokens with a shared HS256 secret.
type Issuer struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
}

func NewIssuer(secret, issuer, audience string, ttl time.Duration) *Issuer {
	return &Issuer{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
	}
}

// Issue converts the resolved claim pairs into a signed token for the given
// subject. Each token gets a fresh uuid jti.
func (i *Issuer) Issue(subjectID string, issued []domain.Claim) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subjectID,
			Issuer:    i.issuer,
			Audience:  jwt.ClaimStrings{i.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	for _, c := range issued {
		switch c.Type {
		case domain.ClaimName:
			claims.Name = c.Value
		case domain.ClaimGivenName:
			claims.GivenName = c.Value
		case domain.ClaimFamilyName:
			claims.FamilyName = c.Value
		case domain.ClaimEmail:
			claims.Email = c.Value
		case domain.ClaimEmailVerified:
			claims.EmailVerified = c.Value == "true"
		case domain.ClaimRole:
			claims.Roles = append(claims.Roles, c.Value)
		}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign identity token: %w", err)
	}
	return signed, nil
}

// Parse validates a token issued by Issue and returns its claims.
func (i *Issuer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (interface{}, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithAudience(i.audience),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tok.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
