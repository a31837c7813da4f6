package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rithlabs/rith/internal/rith/domain"
	"github.com/rithlabs/rith/internal/rith/service"
	"github.com/stretchr/testify/require"
)

// bearerFor issues an API token for the user through the service layer so
// handler tests don't have to walk the whole consent flow each time.
func bearerFor(t *testing.T, env *testEnv, user domain.User) string {
	t.Helper()

	session := env.login(t, user.Email)
	clientKey, clientSecret := env.registerClient(t, session)
	code := authorizeAndGetCode(t, env, session, clientKey, "")

	rec := exchangeCode(t, env, clientKey, clientSecret, code)
	require.Equal(t, http.StatusOK, rec.Code)

	var tok domain.TokenResponse
	decodeJSON(t, rec.Body, &tok)
	return tok.AccessToken
}

func get(env *testEnv, t *testing.T, path, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return env.do(t, req)
}

func TestUserEndpointsRoleMatrix(t *testing.T) {
	env := newTestEnv(t)
	generic := env.createUser(t, "member@example.com", domain.RoleGeneric)
	admin := env.createUser(t, "chief@example.com", domain.RoleAdmin)

	genericTok := bearerFor(t, env, generic)
	adminTok := bearerFor(t, env, admin)

	// No credential at all: 403.
	rec := get(env, t, "/v1/data/user", "")
	require.Equal(t, http.StatusForbidden, rec.Code)

	// Reads are open to any authenticated user, generic included.
	rec = get(env, t, "/v1/data/user", genericTok)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = get(env, t, "/v1/data/user", adminTok)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = get(env, t, "/v1/data/user/"+generic.ID, genericTok)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = get(env, t, "/v1/data/user/"+admin.ID, genericTok)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = get(env, t, "/v1/data/user/"+generic.ID, adminTok)
	require.Equal(t, http.StatusOK, rec.Code)

	// Writes stay role-gated: generic on an admin-only delete is 401.
	req := httptest.NewRequest(http.MethodDelete, "/v1/data/user/"+admin.ID, nil)
	req.Header.Set("Authorization", "Bearer "+genericTok)
	rec = env.do(t, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserSelfUpdate(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "editme@example.com", domain.RoleGeneric)
	tok := bearerFor(t, env, user)

	req := httptest.NewRequest(http.MethodPatch, "/v1/data/user/"+user.ID,
		strings.NewReader(`{"email":"edited@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tok)

	rec := env.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var view userView
	decodeJSON(t, rec.Body, &view)
	require.Equal(t, "edited@example.com", view.Email)
}

func TestUserSelfCannotToggleActive(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "sneaky@example.com", domain.RoleGeneric)
	tok := bearerFor(t, env, user)

	req := httptest.NewRequest(http.MethodPatch, "/v1/data/user/"+user.ID,
		strings.NewReader(`{"active":false}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tok)

	rec := env.do(t, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserCreateAndDeleteAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	generic := env.createUser(t, "pleb@example.com", domain.RoleGeneric)
	admin := env.createUser(t, "root@example.com", domain.RoleAdmin)

	genericTok := bearerFor(t, env, generic)
	adminTok := bearerFor(t, env, admin)

	body := `{"email":"fresh@example.com","password":"a new users pw"}`

	req := httptest.NewRequest(http.MethodPost, "/v1/data/user", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+genericTok)
	rec := env.do(t, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/v1/data/user", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+adminTok)
	rec = env.do(t, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created userView
	decodeJSON(t, rec.Body, &created)

	req = httptest.NewRequest(http.MethodDelete, "/v1/data/user/"+created.ID, nil)
	req.Header.Set("Authorization", "Bearer "+genericTok)
	rec = env.do(t, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodDelete, "/v1/data/user/"+created.ID, nil)
	req.Header.Set("Authorization", "Bearer "+adminTok)
	rec = env.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestDeactivatedUserLosesAccess(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "suspended@example.com", domain.RoleGeneric)
	tok := bearerFor(t, env, user)

	rec := get(env, t, "/v1/data/user/me", tok)
	require.Equal(t, http.StatusOK, rec.Code)

	inactive := false
	_, err := env.users.Update(context.Background(), user.ID,
		service.UserUpdate{Active: &inactive})
	require.NoError(t, err)

	rec = get(env, t, "/v1/data/user/me", tok)
	require.Equal(t, http.StatusForbidden, rec.Code)
}
