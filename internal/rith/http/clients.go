package http

import (
	"encoding/json"
	"net/http"

	"github.com/rithlabs/rith/internal/rith/service"
	"github.com/rithlabs/rith/pkg/httpx"
)

// ClientHandler serves the client registration endpoints. All of them need a
// login session: applications are registered by people, not by other
// applications.
type ClientHandler struct {
	Sessions *service.SessionService
	Clients  *service.ClientService
}

type createClientRequest struct {
	RedirectURIs []string `json:"redirect_uris"`
	Scopes       []string `json:"scopes,omitempty"`
}

type createClientResponse struct {
	ClientKey    string `json:"client_key"`
	ClientSecret string `json:"client_secret"`
}

type clientSummary struct {
	ID           string   `json:"id"`
	ClientKey    string   `json:"client_key"`
	RedirectURIs []string `json:"redirect_uris"`
	Scopes       []string `json:"scopes,omitempty"`
	CreatedAt    string   `json:"created_at"`
}

// HandleCreate godoc
//
//	@Summary		Register a client application
//	@Description	Generates a client_key and client_secret. The secret is returned exactly once; only its hash is stored.
//	@Tags			Clients
//	@Accept			json
//	@Produce		json
//	@Param			body	body		createClientRequest	true	"Registration"
//	@Success		201		{object}	createClientResponse
//	@Failure		400		{object}	OAuth2Error
//	@Failure		403		{object}	OAuth2Error
//	@Router			/v1/auth/client [post].
func (h *ClientHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := requireSession(w, r, h.Sessions)
	if !ok {
		return
	}

	var req createClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrInvalidJSONBody.WriteError(w)
		return
	}
	if len(req.RedirectURIs) == 0 {
		ErrMissingParameters.WriteError(w)
		return
	}

	registered, err := h.Clients.Register(r.Context(), user.ID, req.RedirectURIs, req.Scopes)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, createClientResponse{
		ClientKey:    registered.Client.ClientID,
		ClientSecret: registered.ClientSecret,
	})
}

// HandleList returns the caller's registered clients, secrets omitted.
func (h *ClientHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, ok := requireSession(w, r, h.Sessions)
	if !ok {
		return
	}

	clients, err := h.Clients.List(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]clientSummary, 0, len(clients))
	for _, c := range clients {
		out = append(out, clientSummary{
			ID:           c.ID,
			ClientKey:    c.ClientID,
			RedirectURIs: c.RedirectURIs,
			Scopes:       c.Scopes,
			CreatedAt:    c.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"clients": out})
}

// HandleDelete removes one of the caller's clients, revoking its grants and
// tokens through the cascade.
func (h *ClientHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := requireSession(w, r, h.Sessions)
	if !ok {
		return
	}

	if err := h.Clients.Delete(r.Context(), user.ID, r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteStatus(w, http.StatusOK)
}
