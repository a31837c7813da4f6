package http

import (
	"net/http"

	"github.com/rithlabs/rith/internal/rith/domain"
	"github.com/rithlabs/rith/internal/rith/service"
	"github.com/rithlabs/rith/pkg/httpx"
)

// SessionCookie carries the login session JWT between the browser and the
// consent/registration endpoints.
const SessionCookie = "rith_session"

// sessionCredential pulls the session token from the cookie, falling back to
// the Authorization header for non-browser callers.
func sessionCredential(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	return httpx.BearerCredential(r)
}

// requireSession resolves the request's session to a user, writing the
// fail-closed 403 on any failure. The bool reports success.
func requireSession(w http.ResponseWriter, r *http.Request, sessions *service.SessionService) (domain.User, bool) {
	user, err := sessions.Resolve(r.Context(), sessionCredential(r))
	if err != nil {
		ErrUnauthenticated.WriteError(w)
		return domain.User{}, false
	}
	return user, true
}

func setSessionCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
