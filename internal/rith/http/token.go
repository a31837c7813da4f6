package http

import (
	"net/http"
	"strings"

	"github.com/rithlabs/rith/internal/rith/domain"
	"github.com/rithlabs/rith/internal/rith/service"
	"github.com/rithlabs/rith/pkg/httpx"
)

// TokenHandler serves GET /v1/auth/token, the code-for-token exchange. The
// legacy wire contract takes the parameters in the query string.
type TokenHandler struct {
	Tokens *service.TokenService
}

// ServeHTTP godoc
//
//	@Summary		Exchange an authorization code for an access token
//	@Description	Authenticates the client and redeems the one-time code. A code can be redeemed at most once; a replay fails with invalid_grant.
//	@Tags			Auth
//	@Produce		json
//	@Param			client_id		query		string	true	"Client key"
//	@Param			client_secret	query		string	true	"Client secret"
//	@Param			code			query		string	true	"Authorization code"
//	@Success		200				{object}	domain.TokenResponse
//	@Failure		400				{object}	OAuth2Error
//	@Failure		401				{object}	OAuth2Error
//	@Header			200				{string}	Cache-Control	"no-store"
//	@Router			/v1/auth/token [get].
func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	clientID := q.Get("client_id")
	clientSecret := q.Get("client_secret")
	code := q.Get("code")

	if clientID == "" || clientSecret == "" || code == "" {
		ErrMissingParameters.WriteError(w)
		return
	}

	issued, err := h.Tokens.Exchange(r.Context(), clientID, clientSecret, code)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, domain.TokenResponse{
		AccessToken:  issued.AccessToken,
		TokenType:    issued.Token.TokenType,
		ExpiresIn:    int(issued.Token.ExpiresAt.Sub(issued.Token.CreatedAt).Seconds()),
		Scope:        strings.Join(issued.Token.Scopes, " "),
		RefreshToken: issued.RefreshToken,
	})
}
