package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"cquiz-service/internal/auth"
	"cquiz-service/internal/domain"
	"cquiz-service/internal/infra/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type brokenUsers struct{}

func (brokenUsers) CreateUser(context.Context, auth.User) error {
	return errors.New("connection refused")
}

func (brokenUsers) GetUserByEmail(context.Context, string) (auth.User, error) {
	return auth.User{}, errors.New("connection refused")
}

func newService(now func() time.Time) *auth.Service {
	return auth.NewService(memory.NewUserStore(), "secret", time.Hour,
		auth.WithHashCost(bcrypt.MinCost), auth.WithNow(now))
}

func TestSignUpAndSignIn(t *testing.T) {
	ctx := context.Background()
	svc := newService(time.Now)

	who, err := svc.SignUp(ctx, "  Ada@Example.COM ", "secret1", " Ada ")
	require.NoError(t, err)
	assert.NotEmpty(t, who.UID)
	assert.Equal(t, "ada@example.com", who.Email)
	assert.Equal(t, "Ada", who.DisplayName)

	again, err := svc.SignIn(ctx, "ADA@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, who, again)
}

func TestAuthErrorCodes(t *testing.T) {
	ctx := context.Background()
	svc := newService(time.Now)
	_, err := svc.SignUp(ctx, "ada@example.com", "secret1", "")
	require.NoError(t, err)

	cases := []struct {
		name string
		call func() error
		code string
	}{
		{"duplicate", func() error { _, err := svc.SignUp(ctx, "ada@example.com", "secret1", ""); return err }, auth.CodeEmailInUse},
		{"weak", func() error { _, err := svc.SignUp(ctx, "bob@example.com", "12345", ""); return err }, auth.CodeWeakPassword},
		{"invalid email", func() error { _, err := svc.SignUp(ctx, "not-an-email", "secret1", ""); return err }, auth.CodeInvalidEmail},
		{"unknown user", func() error { _, err := svc.SignIn(ctx, "bob@example.com", "secret1"); return err }, auth.CodeUserNotFound},
		{"wrong password", func() error { _, err := svc.SignIn(ctx, "ada@example.com", "secret2"); return err }, auth.CodeWrongPassword},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.call()
			require.Error(t, err)
			assert.Equal(t, c.code, auth.CodeOf(err))
			assert.Equal(t, auth.Message(c.code), err.Error())
		})
	}
}

func TestStoreFailuresAreStoreErrors(t *testing.T) {
	ctx := context.Background()
	svc := auth.NewService(brokenUsers{}, "secret", time.Hour, auth.WithHashCost(bcrypt.MinCost))

	_, err := svc.SignUp(ctx, "ada@example.com", "secret1", "")
	var se *domain.StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "failed to create user", err.Error())
	assert.Empty(t, auth.CodeOf(err))

	_, err = svc.SignIn(ctx, "ada@example.com", "secret1")
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "failed to load user", err.Error())
}

func TestUnknownCodeFallsBackToGenericMessage(t *testing.T) {
	assert.Equal(t, "An error occurred during authentication. Please try again.", auth.Message("auth/unheard-of"))
	assert.Equal(t, "Password should be at least 6 characters long.", auth.Message(auth.CodeWeakPassword))
}

func TestTokenRoundTrip(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := newService(func() time.Time { return now })
	who := domain.Identity{UID: "u1", Email: "ada@example.com", DisplayName: "Ada"}

	token, err := svc.IssueToken(who)
	require.NoError(t, err)

	got, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, who, got)
}

func TestParseTokenRejects(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	clock := now
	svc := newService(func() time.Time { return clock })
	who := domain.Identity{UID: "u1", Email: "ada@example.com"}
	token, err := svc.IssueToken(who)
	require.NoError(t, err)

	other := auth.NewService(memory.NewUserStore(), "other-secret", time.Hour, auth.WithNow(func() time.Time { return now }))
	_, err = other.ParseToken(token)
	assert.Equal(t, auth.CodeInvalidToken, auth.CodeOf(err))

	_, err = svc.ParseToken("garbage")
	assert.Equal(t, auth.CodeInvalidToken, auth.CodeOf(err))

	clock = now.Add(2 * time.Hour)
	_, err = svc.ParseToken(token)
	assert.Equal(t, auth.CodeInvalidToken, auth.CodeOf(err))
}

func TestPolicyAndContext(t *testing.T) {
	policy := auth.Policy{AdminEmail: "admin@example.com"}
	assert.True(t, policy.IsAdmin(domain.Identity{Email: "admin@example.com"}))
	assert.False(t, policy.IsAdmin(domain.Identity{Email: "ada@example.com"}))
	assert.False(t, auth.Policy{}.IsAdmin(domain.Identity{}))

	_, ok := auth.IdentityFromContext(context.Background())
	assert.False(t, ok)

	who := domain.Identity{UID: "u1", Email: "ada@example.com"}
	got, ok := auth.IdentityFromContext(auth.WithIdentity(context.Background(), who))
	require.True(t, ok)
	assert.Equal(t, who, got)
}
