package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/rithlabs/rith/internal/rith/domain"
	"github.com/stretchr/testify/require"
)

// authorizeAndGetCode walks the consent flow and extracts the code from the
// redirect.
func authorizeAndGetCode(t *testing.T, env *testEnv, session, clientKey, state string) string {
	t.Helper()

	form := url.Values{
		"client_id":    {clientKey},
		"redirect_uri": {"https://app.example/callback"},
		"confirm":      {"yes"},
	}
	if state != "" {
		form.Set("state", state)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/authorize",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+session)

	rec := env.do(t, req)
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "app.example", loc.Host)
	if state != "" {
		require.Equal(t, state, loc.Query().Get("state"))
	}

	code := loc.Query().Get("code")
	require.NotEmpty(t, code)
	return code
}

func exchangeCode(t *testing.T, env *testEnv, clientKey, clientSecret, code string) *httptest.ResponseRecorder {
	t.Helper()

	q := url.Values{
		"client_id":     {clientKey},
		"client_secret": {clientSecret},
		"code":          {code},
	}
	req := httptest.NewRequest(http.MethodGet, "/v1/auth/token?"+q.Encode(), nil)
	return env.do(t, req)
}

func TestAuthorizationCodeFlowEndToEnd(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "flow@example.com", domain.RoleGeneric)

	// 1. Log in and register a client.
	session := env.login(t, "flow@example.com")
	clientKey, clientSecret := env.registerClient(t, session)
	require.Len(t, clientKey, 40)
	require.Len(t, clientSecret, 50)

	// 2. Consent screen shows what is being asked.
	q := url.Values{
		"client_id":    {clientKey},
		"redirect_uri": {"https://app.example/callback"},
	}
	req := httptest.NewRequest(http.MethodGet, "/v1/auth/authorize?"+q.Encode(), nil)
	req.Header.Set("Authorization", "Bearer "+session)
	rec := env.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var consent consentInfo
	decodeJSON(t, rec.Body, &consent)
	require.Equal(t, clientKey, consent.ClientKey)
	require.Equal(t, "flow@example.com", consent.User)

	// 3. Approve and exchange the code.
	code := authorizeAndGetCode(t, env, session, clientKey, "xyzzy")

	rec = exchangeCode(t, env, clientKey, clientSecret, code)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Contains(t, rec.Header().Get("Cache-Control"), "no-store")

	var tok domain.TokenResponse
	decodeJSON(t, rec.Body, &tok)
	require.NotEmpty(t, tok.AccessToken)
	require.Equal(t, "Bearer", tok.TokenType)
	require.Equal(t, 86400, tok.ExpiresIn)

	// 4. The bearer token reaches protected data.
	req = httptest.NewRequest(http.MethodGet, "/v1/data/user/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	rec = env.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var me userView
	decodeJSON(t, rec.Body, &me)
	require.Equal(t, "flow@example.com", me.Email)

	// 5. Replaying the code fails.
	rec = exchangeCode(t, env, clientKey, clientSecret, code)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var protoErr OAuth2Error
	decodeJSON(t, rec.Body, &protoErr)
	require.Equal(t, ErrorCodeInvalidGrant, protoErr.Code)
}

func TestAuthorizeDenyRedirectsWithAccessDenied(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "deny@example.com", domain.RoleGeneric)

	session := env.login(t, "deny@example.com")
	clientKey, _ := env.registerClient(t, session)

	form := url.Values{
		"client_id":    {clientKey},
		"redirect_uri": {"https://app.example/callback"},
		"confirm":      {"no"},
		"state":        {"s1"},
	}
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/authorize",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+session)

	rec := env.do(t, req)
	require.Equal(t, http.StatusFound, rec.Code)

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "access_denied", loc.Query().Get("error"))
	require.Equal(t, "s1", loc.Query().Get("state"))
	require.Empty(t, loc.Query().Get("code"))
}

func TestAuthorizeUnregisteredRedirectURINeverRedirects(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "strict@example.com", domain.RoleGeneric)

	session := env.login(t, "strict@example.com")
	clientKey, _ := env.registerClient(t, session)

	form := url.Values{
		"client_id":    {clientKey},
		"redirect_uri": {"https://evil.example/steal"},
		"confirm":      {"yes"},
	}
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/authorize",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+session)

	rec := env.do(t, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, rec.Header().Get("Location"))
}

func TestAuthorizeRequiresSession(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/auth/authorize?client_id=x", nil)
	rec := env.do(t, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestTokenEndpointBadClientCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "creds@example.com", domain.RoleGeneric)

	session := env.login(t, "creds@example.com")
	clientKey, _ := env.registerClient(t, session)
	code := authorizeAndGetCode(t, env, session, clientKey, "")

	rec := exchangeCode(t, env, clientKey, "wrong-secret", code)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var protoErr OAuth2Error
	decodeJSON(t, rec.Body, &protoErr)
	require.Equal(t, ErrorCodeInvalidClient, protoErr.Code)
}

func TestTokenEndpointMissingParameters(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/auth/token?client_id=only", nil)
	rec := env.do(t, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "bye@example.com", domain.RoleGeneric)

	session := env.login(t, "bye@example.com")
	clientKey, clientSecret := env.registerClient(t, session)
	code := authorizeAndGetCode(t, env, session, clientKey, "")

	rec := exchangeCode(t, env, clientKey, clientSecret, code)
	require.Equal(t, http.StatusOK, rec.Code)
	var tok domain.TokenResponse
	decodeJSON(t, rec.Body, &tok)

	// Logout with the bearer token.
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	rec = env.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"meta":{"status":200}}`, rec.Body.String())

	// The token is dead now, so a second logout fails authentication.
	req = httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	rec = env.do(t, req)
	require.Equal(t, http.StatusForbidden, rec.Code)

	// And so does data access.
	req = httptest.NewRequest(http.MethodGet, "/v1/data/user/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	rec = env.do(t, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLogoutWithoutTokenFails(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil)
	rec := env.do(t, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestQueryStringCredentialFallback(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "query@example.com", domain.RoleGeneric)

	session := env.login(t, "query@example.com")
	clientKey, clientSecret := env.registerClient(t, session)
	code := authorizeAndGetCode(t, env, session, clientKey, "")

	rec := exchangeCode(t, env, clientKey, clientSecret, code)
	var tok domain.TokenResponse
	decodeJSON(t, rec.Body, &tok)

	// access_token in the query string works where a header cannot be set.
	req := httptest.NewRequest(http.MethodGet,
		"/v1/data/user/me?access_token="+url.QueryEscape(tok.AccessToken), nil)
	rec = env.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
