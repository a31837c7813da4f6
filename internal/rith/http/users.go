package http

import (
	"encoding/json"
	"net/http"

	"github.com/rithlabs/rith/internal/rith/domain"
	"github.com/rithlabs/rith/internal/rith/service"
	"github.com/rithlabs/rith/pkg/httpx"
)

// UserHandler serves the protected user resource. Every operation passes
// through the gate with its own rule before touching data.
type UserHandler struct {
	Gate  *service.Gate
	Users *service.UserService
}

type userView struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	Active    bool     `json:"active"`
	Roles     []string `json:"roles,omitempty"`
	CreatedAt string   `json:"created_at"`
}

type createUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type updateUserRequest struct {
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
	Active   *bool   `json:"active,omitempty"`
}

func viewUser(u domain.User, roles []domain.Role) userView {
	v := userView{
		ID:        u.ID,
		Email:     u.Email,
		Active:    u.Active,
		CreatedAt: u.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
	for _, r := range roles {
		v.Roles = append(v.Roles, r.Name)
	}
	return v
}

// authenticate runs the gate on the request's bearer credential.
func (h *UserHandler) authenticate(w http.ResponseWriter, r *http.Request) (service.Identity, bool) {
	id, err := h.Gate.Authenticate(r.Context(), httpx.BearerCredential(r))
	if err != nil {
		writeServiceError(w, err)
		return service.Identity{}, false
	}
	return id, true
}

// HandleMe godoc
//
//	@Summary	Current user
//	@Tags		Users
//	@Produce	json
//	@Success	200	{object}	userView
//	@Failure	403	{object}	OAuth2Error
//	@Security	BearerAuth
//	@Router		/v1/data/user/me [get].
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	if err := h.Gate.RequireRead(id); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, viewUser(id.User, id.Roles))
}

// HandleList is readable by any authenticated user.
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	if err := h.Gate.RequireRead(id); err != nil {
		writeServiceError(w, err)
		return
	}

	users, err := h.Users.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]userView, 0, len(users))
	for _, u := range users {
		out = append(out, viewUser(u, nil))
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"users": out})
}

// HandleCreate is admin-only.
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	if err := h.Gate.RequireAdmin(id); err != nil {
		writeServiceError(w, err)
		return
	}

	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrInvalidJSONBody.WriteError(w)
		return
	}
	if req.Role == "" {
		req.Role = domain.RoleGeneric
	}

	user, err := h.Users.Create(r.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, viewUser(user, nil))
}

// HandleGet is readable by any authenticated user.
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	if err := h.Gate.RequireRead(id); err != nil {
		writeServiceError(w, err)
		return
	}

	user, err := h.Users.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, viewUser(user, nil))
}

// HandleUpdate allows the target user or an admin. Only an admin may change
// the active flag.
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	targetID := r.PathValue("id")
	if err := h.Gate.RequireSelfOrAdmin(id, targetID); err != nil {
		writeServiceError(w, err)
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrInvalidJSONBody.WriteError(w)
		return
	}

	if req.Active != nil {
		if err := h.Gate.RequireAdmin(id); err != nil {
			writeServiceError(w, err)
			return
		}
	}

	user, err := h.Users.Update(r.Context(), targetID, service.UserUpdate{
		Email:    req.Email,
		Password: req.Password,
		Active:   req.Active,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, viewUser(user, nil))
}

// HandleDelete is admin-only.
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	if err := h.Gate.RequireAdmin(id); err != nil {
		writeServiceError(w, err)
		return
	}

	if err := h.Users.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteStatus(w, http.StatusOK)
}
