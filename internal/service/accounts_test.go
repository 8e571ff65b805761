package service

import (
	"context"
	"testing"

	"github.com/naturlife/storefront/internal/apperr"
	"github.com/naturlife/storefront/internal/domain/user"
	"github.com/naturlife/storefront/internal/jobs"
	"github.com/naturlife/storefront/internal/repo/memory"
	"github.com/naturlife/storefront/internal/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAccounts() (*Accounts, *memory.UsersRepo, *fakeJobs) {
	users := memory.NewUsersRepo()
	js := &fakeJobs{}
	return NewAccounts(users, newTokens(), js, nil, nil), users, js
}

func TestRegister_CreatesUserRoleAndToken(t *testing.T) {
	svc, users, js := newAccounts()
	ctx := context.Background()

	res, err := svc.Register(ctx, user.RegisterRequest{
		Email:    "  Ana@Example.com ",
		Password: "secret123",
		Name:     "Ana",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "ana@example.com", res.User.Email)
	assert.Equal(t, user.RoleUser, res.User.Role)

	claims, err := newTokens().Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)

	stored, err := users.GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", stored.PasswordHash)

	assert.Equal(t, []jobs.JobType{jobs.JobWelcomeEmail}, js.types())
}

func TestRegister_DuplicateEmailIsConflict(t *testing.T) {
	svc, users, _ := newAccounts()
	ctx := context.Background()

	_, err := svc.Register(ctx, user.RegisterRequest{Email: "a@x.com", Password: "secret123", Name: "A"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, user.RegisterRequest{Email: "A@X.com", Password: "other123", Name: "B"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, "email_taken", apperr.As(err).Code)

	list, err := users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRegister_Validation(t *testing.T) {
	svc, users, _ := newAccounts()

	cases := []struct {
		name string
		req  user.RegisterRequest
		code string
	}{
		{"bad email", user.RegisterRequest{Email: "nope", Password: "secret123", Name: "A"}, "invalid_email"},
		{"short password", user.RegisterRequest{Email: "a@x.com", Password: "12345", Name: "A"}, "weak_password"},
		{"blank name", user.RegisterRequest{Email: "a@x.com", Password: "secret123", Name: "   "}, "invalid_name"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.req)
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			assert.Equal(t, tc.code, apperr.As(err).Code)
		})
	}

	assert.Zero(t, users.Calls())
}

func TestRegister_WelcomeJobFailureDoesNotFail(t *testing.T) {
	users := memory.NewUsersRepo()
	js := &fakeJobs{err: assert.AnError}
	svc := NewAccounts(users, newTokens(), js, nil, nil)

	res, err := svc.Register(context.Background(), user.RegisterRequest{Email: "a@x.com", Password: "secret123", Name: "A"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
}

func TestLogin(t *testing.T) {
	svc, _, _ := newAccounts()
	ctx := context.Background()

	_, err := svc.Register(ctx, user.RegisterRequest{Email: "a@x.com", Password: "secret123", Name: "A"})
	require.NoError(t, err)

	t.Run("ok with different case", func(t *testing.T) {
		res, err := svc.Login(ctx, user.LoginRequest{Email: "A@X.COM", Password: "secret123"})
		require.NoError(t, err)
		assert.NotEmpty(t, res.Token)
		assert.Equal(t, "a@x.com", res.User.Email)
	})

	t.Run("wrong password", func(t *testing.T) {
		res, err := svc.Login(ctx, user.LoginRequest{Email: "a@x.com", Password: "wrong-pass"})
		require.Error(t, err)
		assert.Empty(t, res.Token)
		assert.Equal(t, apperr.KindAuthentication, apperr.KindOf(err))
		assert.Equal(t, "invalid_credentials", apperr.As(err).Code)
	})

	t.Run("unknown email gets the same error", func(t *testing.T) {
		res, err := svc.Login(ctx, user.LoginRequest{Email: "ghost@x.com", Password: "secret123"})
		require.Error(t, err)
		assert.Empty(t, res.Token)
		assert.Equal(t, "invalid_credentials", apperr.As(err).Code)
		assert.Equal(t, "Invalid email or password.", apperr.As(err).Message)
	})
}

func TestDummyHashIsUsable(t *testing.T) {
	require.NotEmpty(t, dummyHash)
	cost, err := bcrypt.Cost([]byte(dummyHash))
	require.NoError(t, err)
	assert.Equal(t, security.PasswordCost, cost)
	assert.True(t, security.PasswordMatches(dummyHash, "not-a-real-password"))
}

func TestMe(t *testing.T) {
	svc, users, _ := newAccounts()
	u, _ := seedUser(t, users, newTokens(), "me@x.com", user.RoleUser)

	got, err := svc.Me(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)

	_, err = svc.Me(context.Background(), "00000000-0000-0000-0000-000000000000")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
