package service

import (
	"context"
	"errors"
	"fmt"

	"bank-identity/internal/domain"
	"bank-identity/internal/password"
	"bank-identity/internal/repository"
)

// ErrInvalidCredentials indicates that provided login credentials are
// incorrect. Unknown usernames and wrong passwords resolve to this same
// error so a caller cannot tell which half failed.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthResult is the successful outcome of an authenticate call.
type AuthResult struct {
	SubjectID string
	Claims    []domain.Claim
}

// LoginListener is notified after each authenticate call resolves. A nil err
// means success. Listeners run synchronously on the request path and should
// be quick.
type LoginListener func(ctx context.Context, username string, err error)

// AuthService performs the credential-validation use case for interactive
// and password-grant logins.
type AuthService interface {
	Authenticate(ctx context.Context, username, password string) (*AuthResult, error)
}

type authService struct {
	store    repository.CredentialStore
	verifier password.Verifier
	claims   ClaimsService
	listener LoginListener
}

// NewAuthService wires the orchestrator. listener may be nil.
func NewAuthService(store repository.CredentialStore, verifier password.Verifier, claims ClaimsService, listener LoginListener) AuthService {
	return &authService{
		store:    store,
		verifier: verifier,
		claims:   claims,
		listener: listener,
	}
}

func (s *authService) Authenticate(ctx context.Context, username, pwd string) (*AuthResult, error) {
	if username == "" || pwd == "" {
		return nil, s.reject(ctx, username)
	}

	user, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, s.reject(ctx, username)
		}
		return nil, fmt.Errorf("lookup %q: %w", username, err)
	}

	if !s.verifier.Verify(user.PasswordHash, pwd) {
		return nil, s.reject(ctx, username)
	}

	// Interactive sessions should see their roles immediately, so the
	// orchestrator always asks for role claims.
	claims, err := s.claims.ResolveClaims(ctx, user, []string{domain.ClaimRole})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, username, nil)
	return &AuthResult{
		SubjectID: user.SubjectID(),
		Claims:    claims,
	}, nil
}

func (s *authService) reject(ctx context.Context, username string) error {
	s.notify(ctx, username, ErrInvalidCredentials)
	return ErrInvalidCredentials
}

func (s *authService) notify(ctx context.Context, username string, err error) {
	if s.listener != nil {
		s.listener(ctx, username, err)
	}
}
