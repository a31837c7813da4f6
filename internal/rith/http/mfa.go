package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rithlabs/rith/internal/rith/service"
	"github.com/rithlabs/rith/pkg/httpx"
)

// MFAHandler serves TOTP enrollment for logged-in users.
type MFAHandler struct {
	Sessions *service.SessionService
	MFA      *service.MFAService
}

type verifyMFARequest struct {
	Code string `json:"code"`
}

// HandleEnroll godoc
//
//	@Summary		Enroll TOTP
//	@Description	Generates a TOTP secret for the session user. MFA turns on only after a successful verify.
//	@Tags			MFA
//	@Produce		json
//	@Success		200	{object}	service.MFAEnrollment
//	@Failure		403	{object}	OAuth2Error
//	@Failure		409	{object}	OAuth2Error
//	@Router			/v1/auth/mfa/enroll [post].
func (h *MFAHandler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	user, ok := requireSession(w, r, h.Sessions)
	if !ok {
		return
	}

	enrollment, err := h.MFA.EnrollTOTP(r.Context(), user.ID, user.Email)
	if err != nil {
		writeMFAError(w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, enrollment)
}

// HandleVerify confirms a code against the pending secret and enables MFA.
func (h *MFAHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	user, ok := requireSession(w, r, h.Sessions)
	if !ok {
		return
	}

	var req verifyMFARequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrInvalidJSONBody.WriteError(w)
		return
	}
	if req.Code == "" {
		ErrMissingParameters.WriteError(w)
		return
	}

	if err := h.MFA.VerifyTOTP(r.Context(), user.ID, req.Code); err != nil {
		writeMFAError(w, err)
		return
	}

	httpx.WriteStatus(w, http.StatusOK)
}

func writeMFAError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrMFAAlreadyEnabled):
		(&OAuth2Error{
			StatusCode:  http.StatusConflict,
			Code:        ErrorCodeInvalidRequest,
			Description: "MFA is already enabled",
		}).WriteError(w)
	case errors.Is(err, service.ErrMFANotEnrolled):
		(&OAuth2Error{
			StatusCode:  http.StatusBadRequest,
			Code:        ErrorCodeInvalidRequest,
			Description: "MFA enrollment has not been started",
		}).WriteError(w)
	case errors.Is(err, service.ErrInvalidTOTPCode):
		(&OAuth2Error{
			StatusCode:  http.StatusBadRequest,
			Code:        ErrorCodeInvalidRequest,
			Description: "The one-time code is incorrect",
		}).WriteError(w)
	default:
		writeServiceError(w, err)
	}
}
