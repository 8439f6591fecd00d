package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bank-identity/internal/domain"
	"bank-identity/internal/password"
	"bank-identity/internal/repository"
)

// sha256 hex digest of "Secret123"
const secret123Digest = "2ed06766795d58a4f22d511a672f20a6b096d3fe5b56af3a744678a9a356fd82"

type fakeStore struct {
	repository.CredentialStore

	users    map[string]*domain.UserAccount
	roles    map[int64][]string
	rolesErr error
	findErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users: map[string]*domain.UserAccount{},
		roles: map[int64][]string{},
	}
}

func (f *fakeStore) FindByUsername(ctx context.Context, username string) (*domain.UserAccount, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	user, ok := f.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return user, nil
}

func (f *fakeStore) RolesForUser(ctx context.Context, userID int64) ([]string, error) {
	if f.rolesErr != nil {
		return nil, f.rolesErr
	}
	return f.roles[userID], nil
}

func alice() *domain.UserAccount {
	return &domain.UserAccount{
		Person: domain.Person{
			FirstName:    "Alice",
			LastName:     "Smith",
			EmailAddress: "alice@mybank.example",
			DateOfBirth:  time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC),
		},
		ID:           42,
		Username:     "alice",
		PasswordHash: secret123Digest,
	}
}

func TestResolveClaims(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.roles[42] = []string{"Teller", "Manager"}
	claims := NewClaimsService(store)

	t.Run("profile claims always issued in order", func(t *testing.T) {
		got, err := claims.ResolveClaims(ctx, alice(), nil)
		require.NoError(t, err)
		assert.Equal(t, []domain.Claim{
			{Type: "sub", Value: "42"},
			{Type: "name", Value: "Alice Smith"},
			{Type: "given_name", Value: "Alice"},
			{Type: "family_name", Value: "Smith"},
			{Type: "email", Value: "alice@mybank.example"},
			{Type: "email_verified", Value: "true"},
		}, got)
	})

	t.Run("roles excluded unless requested", func(t *testing.T) {
		got, err := claims.ResolveClaims(ctx, alice(), []string{domain.ClaimEmail})
		require.NoError(t, err)
		for _, c := range got {
			assert.NotEqual(t, domain.ClaimRole, c.Type)
		}
	})

	t.Run("one role claim per distinct role when requested", func(t *testing.T) {
		got, err := claims.ResolveClaims(ctx, alice(), []string{domain.ClaimRole})
		require.NoError(t, err)

		var roles []string
		for _, c := range got {
			if c.Type == domain.ClaimRole {
				roles = append(roles, c.Value)
			}
		}
		assert.ElementsMatch(t, []string{"Teller", "Manager"}, roles)
	})

	t.Run("duplicate role names collapse", func(t *testing.T) {
		store.roles[42] = []string{"Teller", "Teller"}
		defer func() { store.roles[42] = []string{"Teller", "Manager"} }()

		got, err := claims.ResolveClaims(ctx, alice(), []string{domain.ClaimRole})
		require.NoError(t, err)

		count := 0
		for _, c := range got {
			if c.Type == domain.ClaimRole {
				count++
			}
		}
		assert.Equal(t, 1, count)
	})

	t.Run("nil user yields empty set", func(t *testing.T) {
		got, err := claims.ResolveClaims(ctx, nil, []string{domain.ClaimRole})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("role lookup failure propagates", func(t *testing.T) {
		store.rolesErr = repository.ErrStoreUnavailable
		defer func() { store.rolesErr = nil }()

		_, err := claims.ResolveClaims(ctx, alice(), []string{domain.ClaimRole})
		assert.ErrorIs(t, err, repository.ErrStoreUnavailable)
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()

	newService := func(store *fakeStore, listener LoginListener) AuthService {
		return NewAuthService(store, password.LegacySHA256{}, NewClaimsService(store), listener)
	}

	t.Run("success includes subject and role claims", func(t *testing.T) {
		store := newFakeStore()
		store.users["alice"] = alice()
		store.roles[42] = []string{"Teller"}

		result, err := newService(store, nil).Authenticate(ctx, "alice", "Secret123")
		require.NoError(t, err)
		assert.Equal(t, "42", result.SubjectID)
		assert.Contains(t, result.Claims, domain.Claim{Type: domain.ClaimRole, Value: "Teller"})
		assert.Contains(t, result.Claims, domain.Claim{Type: domain.ClaimName, Value: "Alice Smith"})
		assert.Contains(t, result.Claims, domain.Claim{Type: domain.ClaimEmail, Value: "alice@mybank.example"})
	})

	t.Run("wrong password and unknown user are indistinguishable", func(t *testing.T) {
		store := newFakeStore()
		store.users["alice"] = alice()
		svc := newService(store, nil)

		_, wrongPwd := svc.Authenticate(ctx, "alice", "wrong")
		_, unknownUser := svc.Authenticate(ctx, "bob", "anything")

		assert.ErrorIs(t, wrongPwd, ErrInvalidCredentials)
		assert.ErrorIs(t, unknownUser, ErrInvalidCredentials)
		assert.Equal(t, wrongPwd, unknownUser)
	})

	t.Run("empty credentials rejected", func(t *testing.T) {
		store := newFakeStore()
		svc := newService(store, nil)

		_, err := svc.Authenticate(ctx, "", "Secret123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)

		_, err = svc.Authenticate(ctx, "alice", "")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("store fault passes through untranslated", func(t *testing.T) {
		store := newFakeStore()
		store.findErr = repository.ErrStoreUnavailable

		_, err := newService(store, nil).Authenticate(ctx, "alice", "Secret123")
		assert.ErrorIs(t, err, repository.ErrStoreUnavailable)
		assert.NotErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("listener observes outcomes", func(t *testing.T) {
		store := newFakeStore()
		store.users["alice"] = alice()

		var calls []error
		listener := func(ctx context.Context, username string, err error) {
			calls = append(calls, err)
		}
		svc := newService(store, listener)

		_, err := svc.Authenticate(ctx, "alice", "Secret123")
		require.NoError(t, err)
		_, _ = svc.Authenticate(ctx, "alice", "wrong")

		require.Len(t, calls, 2)
		assert.NoError(t, calls[0])
		assert.ErrorIs(t, calls[1], ErrInvalidCredentials)
	})
}
