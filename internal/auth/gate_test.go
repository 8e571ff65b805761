package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/naturlife/storefront/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGate_Authorize(t *testing.T) {
	m := NewManager(testSecret, DefaultTTL)
	g := NewGate(m)

	adminTok, err := m.Issue("admin-1", "admin@x.com", user.RoleAdmin)
	require.NoError(t, err)
	userTok, err := m.Issue("user-1", "user@x.com", user.RoleUser)
	require.NoError(t, err)

	tests := []struct {
		name    string
		raw     string
		want    user.Role
		wantErr error
	}{
		{name: "missing", raw: "", want: user.RoleAdmin, wantErr: ErrMissingCredential},
		{name: "blank", raw: "   ", want: user.RoleAdmin, wantErr: ErrMissingCredential},
		{name: "garbage", raw: "not-a-token", want: user.RoleAdmin, wantErr: ErrInvalidCredential},
		{name: "user on admin op", raw: userTok, want: user.RoleAdmin, wantErr: ErrInsufficientRole},
		{name: "admin on admin op", raw: adminTok, want: user.RoleAdmin},
		{name: "any role", raw: userTok, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := g.Authorize(tt.raw, tt.want)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, claims.UserID)
		})
	}
}

func TestTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/admin", nil)
	assert.Empty(t, TokenFromRequest(r))

	r.AddCookie(&http.Cookie{Name: CookieName, Value: "cookie-tok"})
	assert.Equal(t, "cookie-tok", TokenFromRequest(r))
	assert.Empty(t, TokenFromHeader(r))

	r.Header.Set("Authorization", "Bearer header-tok")
	assert.Equal(t, "header-tok", TokenFromRequest(r))
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("bearer abc"))
	assert.Empty(t, BearerToken("Basic abc"))
	assert.Empty(t, BearerToken("Bearer"))
	assert.Empty(t, BearerToken(""))
}

func TestEnsureNotSelf(t *testing.T) {
	const adminID = "7c9e6679-7425-40de-944b-e07fc1f90ae7"
	actor := &Claims{UserID: adminID, Role: user.RoleAdmin}

	assert.ErrorIs(t, EnsureNotSelf(actor, adminID), ErrSelfDeletion)
	assert.NoError(t, EnsureNotSelf(actor, "0b8f5c3e-8d4e-4a43-9a59-6f7e1c2d3b4a"))
	assert.NoError(t, EnsureNotSelf(nil, adminID))
}

func TestEnsureNotSelf_CaseAndFormatVariants(t *testing.T) {
	const adminID = "7c9e6679-7425-40de-944b-e07fc1f90ae7"
	actor := &Claims{UserID: adminID, Role: user.RoleAdmin}

	for _, target := range []string{
		strings.ToUpper(adminID),
		"{" + adminID + "}",
		"urn:uuid:" + adminID,
		"7c9e6679742540de944be07fc1f90ae7",
	} {
		assert.ErrorIs(t, EnsureNotSelf(actor, target), ErrSelfDeletion, "target=%q", target)
	}
}
