package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rithlabs/rith/internal/rith/service"
	"github.com/rithlabs/rith/pkg/httpx"
)

// BootstrapHandler serves POST /v1/bootstrap, the first-admin escape hatch.
type BootstrapHandler struct {
	Bootstrap *service.BootstrapService
}

type bootstrapRequest struct {
	Token    string `json:"token,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ServeHTTP godoc
//
//	@Summary		Create the first admin account
//	@Description	Only works while no users exist. Optionally requires a pre-shared bootstrap token.
//	@Tags			System
//	@Accept			json
//	@Produce		json
//	@Param			body	body		bootstrapRequest	true	"First admin"
//	@Success		201		{object}	userView
//	@Failure		400		{object}	OAuth2Error
//	@Failure		403		{object}	OAuth2Error
//	@Failure		409		{object}	OAuth2Error
//	@Router			/v1/bootstrap [post].
func (h *BootstrapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req bootstrapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrInvalidJSONBody.WriteError(w)
		return
	}
	if req.Email == "" || req.Password == "" {
		ErrMissingParameters.WriteError(w)
		return
	}

	user, err := h.Bootstrap.Bootstrap(r.Context(), req.Token, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBootstrapAlready):
			(&OAuth2Error{
				StatusCode:  http.StatusConflict,
				Code:        ErrorCodeInvalidRequest,
				Description: "System is already bootstrapped",
			}).WriteError(w)
		case errors.Is(err, service.ErrBootstrapUnauthorized):
			ErrUnauthenticated.WriteError(w)
		default:
			writeServiceError(w, err)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, viewUser(user, nil))
}
