package http

import (
	"net/http"
	"net/url"

	"github.com/rithlabs/rith/internal/rith/service"
	"github.com/rithlabs/rith/pkg/httpx"
)

// AuthorizeHandler serves the consent endpoint. GET shows what the client is
// asking for; POST records the user's decision and redirects back to the
// client with either a code or access_denied.
type AuthorizeHandler struct {
	Sessions *service.SessionService
	Clients  *service.ClientService
	Grants   *service.GrantService
}

type consentInfo struct {
	ClientKey   string   `json:"client_key"`
	RedirectURI string   `json:"redirect_uri"`
	Scopes      []string `json:"scopes"`
	User        string   `json:"user"`
	State       string   `json:"state,omitempty"`
}

// HandleGet godoc
//
//	@Summary		Consent screen data
//	@Description	Returns what the client application is requesting. No side effects.
//	@Tags			Auth
//	@Produce		json
//	@Param			client_id		query		string	true	"Client key"
//	@Param			redirect_uri	query		string	true	"Registered redirect URI"
//	@Param			scope			query		string	false	"Space-delimited scopes"
//	@Param			state			query		string	false	"Opaque client state"
//	@Success		200				{object}	consentInfo
//	@Failure		400				{object}	OAuth2Error
//	@Failure		403				{object}	OAuth2Error
//	@Router			/v1/auth/authorize [get].
func (h *AuthorizeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := requireSession(w, r, h.Sessions)
	if !ok {
		return
	}

	q := r.URL.Query()
	client, err := h.Clients.Lookup(r.Context(), q.Get("client_id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	redirectURI := q.Get("redirect_uri")
	if redirectURI == "" || !client.AllowsRedirectURI(redirectURI) {
		ErrMissingParameters.WriteError(w)
		return
	}

	scopes := httpx.ParseSpaceDelimitedFields(q.Get("scope"))
	if len(scopes) == 0 {
		scopes = client.Scopes
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, consentInfo{
		ClientKey:   client.ClientID,
		RedirectURI: redirectURI,
		Scopes:      scopes,
		User:        user.Email,
		State:       q.Get("state"),
	})
}

// HandlePost godoc
//
//	@Summary		Consent decision
//	@Description	With confirm=yes, issues an authorization code and redirects to the redirect URI with code (and state). Any other decision redirects with error=access_denied.
//	@Tags			Auth
//	@Accept			application/x-www-form-urlencoded
//	@Param			client_id		formData	string	true	"Client key"
//	@Param			redirect_uri	formData	string	true	"Registered redirect URI"
//	@Param			confirm			formData	string	true	"yes to approve"
//	@Param			scope			formData	string	false	"Space-delimited scopes"
//	@Param			state			formData	string	false	"Opaque client state"
//	@Success		302
//	@Failure		400	{object}	OAuth2Error
//	@Failure		403	{object}	OAuth2Error
//	@Router			/v1/auth/authorize [post].
func (h *AuthorizeHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	user, ok := requireSession(w, r, h.Sessions)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		ErrInvalidFormBody.WriteError(w)
		return
	}

	client, err := h.Clients.Lookup(r.Context(), r.Form.Get("client_id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	redirectURI := r.Form.Get("redirect_uri")
	if redirectURI == "" || !client.AllowsRedirectURI(redirectURI) {
		// Never redirect to an unregistered URI, even to report an error.
		ErrMissingParameters.WriteError(w)
		return
	}

	state := r.Form.Get("state")

	if r.Form.Get("confirm") != "yes" {
		redirectWith(w, r, redirectURI, state, url.Values{"error": {ErrorCodeAccessDenied}})
		return
	}

	scopes := httpx.ParseSpaceDelimitedFields(r.Form.Get("scope"))
	code, _, err := h.Grants.Issue(r.Context(), user.ID, client, redirectURI, scopes)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	redirectWith(w, r, redirectURI, state, url.Values{"code": {code}})
}

func redirectWith(w http.ResponseWriter, r *http.Request, redirectURI, state string, params url.Values) {
	target, err := url.Parse(redirectURI)
	if err != nil {
		ErrMissingParameters.WriteError(w)
		return
	}

	q := target.Query()
	for key, vals := range params {
		for _, v := range vals {
			q.Set(key, v)
		}
	}
	if state != "" {
		q.Set("state", state)
	}
	target.RawQuery = q.Encode()

	httpx.NoCache(w)
	http.Redirect(w, r, target.String(), http.StatusFound)
}
