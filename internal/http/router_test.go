package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/naturlife/storefront/internal/auth"
	"github.com/naturlife/storefront/internal/config"
	"github.com/naturlife/storefront/internal/domain/user"
	apphttp "github.com/naturlife/storefront/internal/http"
	"github.com/naturlife/storefront/internal/repo/memory"
	"github.com/naturlife/storefront/internal/security"
	"github.com/naturlife/storefront/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testApp struct {
	router *gin.Engine
	users  *memory.UsersRepo
	tokens *auth.Manager
}

func newTestApp(t *testing.T) testApp {
	t.Helper()
	return newTestAppBehind(t, nil)
}

// newTestAppBehind builds the app with the given trusted proxy list.
func newTestAppBehind(t *testing.T, proxies []string) testApp {
	t.Helper()

	cfg := config.Config{
		Env:            "test",
		JWTSecret:      "router-test-secret-0123456789abcdefgh",
		JWTTokenTTL:    config.TokenTTL,
		TrustedProxies: proxies,
	}

	users := memory.NewUsersRepo()
	tokens := auth.NewManager(cfg.JWTSecret, cfg.JWTTokenTTL)
	guard := service.NewGuard(auth.NewGate(tokens), nil)

	router := apphttp.NewRouter(apphttp.Deps{
		Config:     cfg,
		Verifier:   tokens,
		Accounts:   service.NewAccounts(users, tokens, nil, nil, nil),
		AdminUsers: service.NewAdminUsers(guard, users, nil),
	})

	return testApp{router: router, users: users, tokens: tokens}
}

func (a testApp) seed(t *testing.T, email string, role user.Role) (user.User, string) {
	t.Helper()

	hash, err := security.HashPassword("secret123")
	require.NoError(t, err)

	u, err := a.users.Create(context.Background(), user.NewUser{Email: email, PasswordHash: hash, Name: "Seed", Role: role})
	require.NoError(t, err)

	tok, err := a.tokens.Issue(u.ID, u.Email, u.Role)
	require.NoError(t, err)
	return u, tok
}

func (a testApp) do(method, path, body, token string) *httptest.ResponseRecorder {
	var rdr *bytes.Reader
	if body != "" {
		rdr = bytes.NewReader([]byte(body))
	} else {
		rdr = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body=%s", w.Body.String())
	return out
}

func TestRegister_CreatesUserWithUserRole(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodPost, "/api/auth/register",
		`{"email":"New@Shop.test","password":"secret123","name":"New","role":"admin"}`, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	res := decode[service.AuthResult](t, w)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, user.RoleUser, res.User.Role)
	assert.Equal(t, "new@shop.test", res.User.Email)
	assert.NotContains(t, w.Body.String(), "passwordHash")

	claims, err := app.tokens.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, user.RoleUser, claims.Role)

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.CookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
}

func TestRegister_DuplicateIs409(t *testing.T) {
	app := newTestApp(t)
	app.seed(t, "dup@shop.test", user.RoleUser)

	w := app.do(http.MethodPost, "/api/auth/register", `{"email":"DUP@shop.test","password":"secret123","name":"Dup"}`, "")
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "email_taken", decode[errorBody](t, w).Error.Code)
}

func TestRegister_ShortPasswordIs400WithFieldDetails(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodPost, "/api/auth/register", `{"email":"a@shop.test","password":"123","name":"A"}`, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"password"`)
	assert.Zero(t, app.users.Calls())
}

func TestLogin(t *testing.T) {
	app := newTestApp(t)
	app.seed(t, "known@shop.test", user.RoleUser)

	t.Run("unknown email", func(t *testing.T) {
		w := app.do(http.MethodPost, "/api/auth/login", `{"email":"ghost@shop.test","password":"secret123"}`, "")
		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.NotContains(t, w.Body.String(), "token")

		body := decode[errorBody](t, w)
		assert.Equal(t, "invalid_credentials", body.Error.Code)
		assert.Equal(t, "Invalid email or password.", body.Error.Message)
	})

	t.Run("wrong password", func(t *testing.T) {
		w := app.do(http.MethodPost, "/api/auth/login", `{"email":"known@shop.test","password":"nope-nope"}`, "")
		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid email or password.", decode[errorBody](t, w).Error.Message)
	})

	t.Run("ok", func(t *testing.T) {
		w := app.do(http.MethodPost, "/api/auth/login", `{"email":"known@shop.test","password":"secret123"}`, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, decode[service.AuthResult](t, w).Token)
	})
}

func TestMe(t *testing.T) {
	app := newTestApp(t)
	_, tok := app.seed(t, "me@shop.test", user.RoleUser)

	w := app.do(http.MethodGet, "/api/auth/me", "", tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "me@shop.test")

	w = app.do(http.MethodGet, "/api/auth/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminUsers_NonAdminIs403(t *testing.T) {
	app := newTestApp(t)
	_, tok := app.seed(t, "plain@shop.test", user.RoleUser)
	before := app.users.Calls()

	w := app.do(http.MethodGet, "/api/admin/users", "", tok)
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, before, app.users.Calls())
}

func TestAdminUsers_NoTokenIs401(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodGet, "/api/admin/users", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminUsers_ListForAdmin(t *testing.T) {
	app := newTestApp(t)
	_, tok := app.seed(t, "admin@shop.test", user.RoleAdmin)
	app.seed(t, "u@shop.test", user.RoleUser)

	w := app.do(http.MethodGet, "/api/admin/users", "", tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "passwordHash")
	assert.NotContains(t, w.Body.String(), "$2a$")
}

func TestAdminUsers_SelfDeleteIs400(t *testing.T) {
	app := newTestApp(t)
	admin, tok := app.seed(t, "admin@shop.test", user.RoleAdmin)

	w := app.do(http.MethodDelete, "/api/admin/users", `{"userId":"`+admin.ID+`"}`, tok)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "cannot_delete_self", decode[errorBody](t, w).Error.Code)

	_, err := app.users.GetByID(context.Background(), admin.ID)
	require.NoError(t, err)
}

func TestAdminUsers_DeleteOther(t *testing.T) {
	app := newTestApp(t)
	_, tok := app.seed(t, "admin@shop.test", user.RoleAdmin)
	other, _ := app.seed(t, "other@shop.test", user.RoleUser)

	w := app.do(http.MethodDelete, "/api/admin/users", `{"userId":"`+other.ID+`"}`, tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	_, err := app.users.GetByID(context.Background(), other.ID)
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestAdminUsers_UpdateRoleRejectsUnknownRole(t *testing.T) {
	app := newTestApp(t)
	_, tok := app.seed(t, "admin@shop.test", user.RoleAdmin)
	other, _ := app.seed(t, "other@shop.test", user.RoleUser)

	w := app.do(http.MethodPatch, "/api/admin/users", `{"userId":"`+other.ID+`","role":"root"}`, tok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(http.MethodPatch, "/api/admin/users", `{"userId":"`+other.ID+`","role":"admin"}`, tok)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAdminPerimeter(t *testing.T) {
	app := newTestApp(t)
	_, adminTok := app.seed(t, "admin@shop.test", user.RoleAdmin)
	_, userTok := app.seed(t, "u@shop.test", user.RoleUser)

	cases := []struct {
		name   string
		path   string
		header string
		cookie string
		want   int
	}{
		{"no credential", "/admin", "", "", http.StatusFound},
		{"garbage cookie", "/admin/orders", "", "garbage", http.StatusFound},
		{"user cookie", "/admin", "", userTok, http.StatusFound},
		{"user header", "/admin/users", userTok, "", http.StatusFound},
		{"admin cookie", "/admin", "", adminTok, http.StatusOK},
		{"admin header nested", "/admin/products/new", adminTok, "", http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := app.users.Calls()

			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", "Bearer "+tc.header)
			}
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: tc.cookie})
			}

			w := httptest.NewRecorder()
			app.router.ServeHTTP(w, req)

			require.Equal(t, tc.want, w.Code)
			if tc.want == http.StatusFound {
				assert.Equal(t, "/", w.Header().Get("Location"))
			}
			assert.Equal(t, before, app.users.Calls())
		})
	}
}

func TestLogout_ClearsCookie(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodPost, "/api/auth/logout", "", "")
	require.Equal(t, http.StatusNoContent, w.Code)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, auth.CookieName, cookies[0].Name)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodGet, "/api/nope", "", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decode[errorBody](t, w).Error.Code)
}

func loginFrom(app testApp, forwardedFor string) int {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		bytes.NewReader([]byte(`{"email":"nobody@shop.test","password":"wrong-pass"}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", forwardedFor)
	req.RemoteAddr = "203.0.113.7:40000"

	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)
	return w.Code
}

func TestLoginLimiter_IgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	app := newTestApp(t)

	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusUnauthorized, loginFrom(app, fmt.Sprintf("198.51.100.%d", i+1)))
	}
	assert.Equal(t, http.StatusTooManyRequests, loginFrom(app, "198.51.100.200"))
}

func TestLoginLimiter_HonoursForwardedForFromTrustedProxy(t *testing.T) {
	app := newTestAppBehind(t, []string{"203.0.113.0/24"})

	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusUnauthorized, loginFrom(app, "198.51.100.1"))
	}
	assert.Equal(t, http.StatusTooManyRequests, loginFrom(app, "198.51.100.1"))
	assert.Equal(t, http.StatusUnauthorized, loginFrom(app, "198.51.100.2"))
}
