package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rithlabs/rith/internal/rith/service"
	"github.com/rithlabs/rith/internal/rith/store"
	"github.com/rithlabs/rith/pkg/httpx"
)

// OAuth2 error codes per RFC 6749.
const (
	ErrorCodeInvalidRequest       = "invalid_request"
	ErrorCodeInvalidClient        = "invalid_client"
	ErrorCodeInvalidGrant         = "invalid_grant"
	ErrorCodeInvalidToken         = "invalid_token"
	ErrorCodeAccessDenied         = "access_denied"
	ErrorCodeUnauthorized         = "unauthorized"
	ErrorCodeForbidden            = "forbidden"
	ErrorCodeServerError          = "server_error"
	ErrorCodeUnsupportedGrantType = "unsupported_grant_type"
)

// OAuth2Error is a protocol error response. It implements error so handlers
// can pass it around before writing it.
type OAuth2Error struct {
	StatusCode  int    `json:"-"`
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *OAuth2Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes the error as a JSON response with no-store caching.
func (e *OAuth2Error) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(e)
}

var (
	ErrInvalidFormBody = &OAuth2Error{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "Malformed request body",
	}
	ErrInvalidJSONBody = &OAuth2Error{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "Malformed JSON body",
	}
	ErrMissingParameters = &OAuth2Error{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "Missing required parameters",
	}
	ErrInvalidClientCreds = &OAuth2Error{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidClient,
		Description: "Client authentication failed",
	}
	ErrInvalidGrantCode = &OAuth2Error{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidGrant,
		Description: "Authorization code is invalid or already redeemed",
	}
	ErrExpiredGrantCode = &OAuth2Error{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidGrant,
		Description: "Authorization code has expired",
	}
	ErrUnauthenticated = &OAuth2Error{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeForbidden,
		Description: "Authentication required",
	}
	ErrUnauthorizedRole = &OAuth2Error{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeUnauthorized,
		Description: "Insufficient privileges",
	}
	ErrForbiddenTarget = &OAuth2Error{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeForbidden,
		Description: "Operation not permitted on this resource",
	}
	ErrInvalidCredentials = &OAuth2Error{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeAccessDenied,
		Description: "Invalid credentials",
	}
	ErrMFACodeRequired = &OAuth2Error{
		StatusCode:  http.StatusForbidden,
		Code:        "mfa_required",
		Description: "A one-time code is required to complete this login",
	}
	ErrServerError = &OAuth2Error{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "Internal server error",
	}
)

// writeServiceError maps service sentinel errors onto the wire contract. The
// 403-for-unauthenticated / 401-for-wrong-role split is intentional: existing
// integrations depend on it.
func writeServiceError(w http.ResponseWriter, err error) {
	var oauthErr *OAuth2Error
	if errors.As(err, &oauthErr) {
		oauthErr.WriteError(w)
		return
	}

	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		ErrMissingParameters.WriteError(w)
	case errors.Is(err, service.ErrInvalidClient):
		ErrInvalidClientCreds.WriteError(w)
	case errors.Is(err, service.ErrInvalidGrant):
		ErrInvalidGrantCode.WriteError(w)
	case errors.Is(err, service.ErrExpiredGrant):
		ErrExpiredGrantCode.WriteError(w)
	case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrUnauthenticated):
		ErrUnauthenticated.WriteError(w)
	case errors.Is(err, service.ErrUnauthorized):
		ErrUnauthorizedRole.WriteError(w)
	case errors.Is(err, service.ErrForbidden):
		ErrForbiddenTarget.WriteError(w)
	case errors.Is(err, service.ErrInvalidCredentials):
		ErrInvalidCredentials.WriteError(w)
	case errors.Is(err, service.ErrMFARequired):
		ErrMFACodeRequired.WriteError(w)
	case errors.Is(err, service.ErrEmailTaken):
		(&OAuth2Error{
			StatusCode:  http.StatusConflict,
			Code:        ErrorCodeInvalidRequest,
			Description: "Email is already registered",
		}).WriteError(w)
	case errors.Is(err, store.ErrNotFound), errors.Is(err, service.ErrUserNotFound):
		(&OAuth2Error{
			StatusCode:  http.StatusNotFound,
			Code:        ErrorCodeInvalidRequest,
			Description: "Resource not found",
		}).WriteError(w)
	default:
		ErrServerError.WriteError(w)
	}
}
