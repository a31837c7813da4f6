package http

import (
	"net/http"

	"github.com/rithlabs/rith/internal/rith/service"
	"github.com/rithlabs/rith/pkg/httpx"
)

// LogoutHandler serves POST /v1/auth/logout. It revokes the presented bearer
// token. A valid token is required to reach the revocation at all; after
// that, revoking is idempotent.
type LogoutHandler struct {
	Tokens *service.TokenService
	Gate   *service.Gate
}

// ServeHTTP godoc
//
//	@Summary		Revoke the presented access token
//	@Description	Deletes the bearer token used to authenticate this request. Subsequent requests with it fail authentication.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	map[string]any
//	@Failure		403	{object}	OAuth2Error
//	@Security		BearerAuth
//	@Router			/v1/auth/logout [post].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	credential := httpx.BearerCredential(r)

	if _, err := h.Gate.Authenticate(r.Context(), credential); err != nil {
		writeServiceError(w, err)
		return
	}

	if err := h.Tokens.Revoke(r.Context(), credential); err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.WriteStatus(w, http.StatusOK)
}
