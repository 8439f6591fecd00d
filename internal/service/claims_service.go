package service

import (
	"context"
	"fmt"
	"slices"

	"bank-identity/internal/domain"
	"bank-identity/internal/repository"
)

// ClaimsService builds the claim set issued for an authenticated subject.
type ClaimsService interface {
	// ResolveClaims returns the ordered claims for the user. Role claims are
	// included only when requestedClaimTypes asks for them; everything else
	// is always issued. A nil user yields an empty set — the caller treats
	// such a subject as inactive.
	ResolveClaims(ctx context.Context, user *domain.UserAccount, requestedClaimTypes []string) ([]domain.Claim, error)
}

type claimsService struct {
	store repository.CredentialStore
}

func NewClaimsService(store repository.CredentialStore) ClaimsService {
	return &claimsService{store: store}
}

func (s *claimsService) ResolveClaims(ctx context.Context, user *domain.UserAccount, requestedClaimTypes []string) ([]domain.Claim, error) {
	if user == nil {
		return []domain.Claim{}, nil
	}

	claims := []domain.Claim{
		{Type: domain.ClaimSubject, Value: user.SubjectID()},
		{Type: domain.ClaimName, Value: user.FullName()},
		{Type: domain.ClaimGivenName, Value: user.FirstName},
		{Type: domain.ClaimFamilyName, Value: user.LastName},
		{Type: domain.ClaimEmail, Value: user.EmailAddress},
		// no verification flow exists; every provisioned address counts as verified
		{Type: domain.ClaimEmailVerified, Value: "true"},
	}

	// Roles are emitted only on request, keeping issued claim sets minimal
	// and audience-specific.
	if slices.Contains(requestedClaimTypes, domain.ClaimRole) {
		roles, err := s.store.RolesForUser(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("resolve roles for subject %s: %w", user.SubjectID(), err)
		}
		seen := make(map[string]bool, len(roles))
		for _, role := range roles {
			if seen[role] {
				continue
			}
			seen[role] = true
			claims = append(claims, domain.Claim{Type: domain.ClaimRole, Value: role})
		}
	}

	return claims, nil
}
