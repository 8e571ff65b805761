package memory

import (
	"context"
	"testing"

	"github.com/naturlife/storefront/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsersRepo_EmailUniqueCaseInsensitive(t *testing.T) {
	r := NewUsersRepo()
	ctx := context.Background()

	_, err := r.Create(ctx, user.NewUser{Email: "A@x.com", Name: "A", Role: user.RoleUser})
	require.NoError(t, err)

	_, err = r.Create(ctx, user.NewUser{Email: " a@X.com ", Name: "B", Role: user.RoleUser})
	assert.ErrorIs(t, err, user.ErrEmailTaken)

	got, err := r.GetByEmail(ctx, "A@X.COM")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", got.Email)
}

func TestUsersRepo_UpdateDelete(t *testing.T) {
	r := NewUsersRepo()
	ctx := context.Background()

	u, err := r.Create(ctx, user.NewUser{Email: "a@x.com", Name: "A", Role: user.RoleUser})
	require.NoError(t, err)

	require.NoError(t, r.UpdateRole(ctx, u.ID, user.RoleAdmin))
	got, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, got.Role)

	require.NoError(t, r.Delete(ctx, u.ID))
	assert.ErrorIs(t, r.Delete(ctx, u.ID), user.ErrNotFound)
	assert.ErrorIs(t, r.UpdateRole(ctx, u.ID, user.RoleUser), user.ErrNotFound)

	_, err = r.GetByEmail(ctx, "a@x.com")
	assert.ErrorIs(t, err, user.ErrNotFound)
	assert.Equal(t, int64(7), r.Calls())
}

func TestCartStore(t *testing.T) {
	s := NewCartStore()
	ctx := context.Background()

	require.NoError(t, s.SetQuantity(ctx, "u1", "p2", 2))
	require.NoError(t, s.SetQuantity(ctx, "u1", "p1", 1))
	require.NoError(t, s.SetQuantity(ctx, "u1", "p2", 0))

	c, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, "p1", c.Lines[0].ProductID)

	require.NoError(t, s.Clear(ctx, "u1"))
	c, err = s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, c.Lines)
}
