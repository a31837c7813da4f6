package http

import (
	"encoding/json"
	"net/http"

	"github.com/rithlabs/rith/internal/rith/service"
	"github.com/rithlabs/rith/pkg/httpx"
)

// LoginHandler serves POST /v1/auth/remote/login.
type LoginHandler struct {
	Sessions *service.SessionService
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	OTPCode  string `json:"otp_code,omitempty"`
}

type loginResponse struct {
	SessionToken string `json:"session_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	UserID       string `json:"user_id"`
}

// ServeHTTP godoc
//
//	@Summary		Interactive login
//	@Description	Verifies email and password (plus a one-time code when MFA is enabled) and returns a session token, also set as a cookie.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		loginRequest	true	"Credentials"
//	@Success		200		{object}	loginResponse
//	@Failure		400		{object}	OAuth2Error
//	@Failure		403		{object}	OAuth2Error
//	@Router			/v1/auth/remote/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrInvalidJSONBody.WriteError(w)
		return
	}
	if req.Email == "" || req.Password == "" {
		ErrMissingParameters.WriteError(w)
		return
	}

	session, user, err := h.Sessions.Login(r.Context(),
		req.Email, req.Password, req.OTPCode, httpx.GetRemoteIP(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	ttl := int(h.Sessions.Signer.TTL().Seconds())
	setSessionCookie(w, session, ttl)
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, loginResponse{
		SessionToken: session,
		TokenType:    "Session",
		ExpiresIn:    ttl,
		UserID:       user.ID,
	})
}
