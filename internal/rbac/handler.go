package rbac

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/KarlovS28/dela/internal/auth"
	"github.com/KarlovS28/dela/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	ListPermissions() ([]PermissionGroup, error)
	GetRoles() ([]*Role, error)
	GetRole(id int64) (*Role, error)
	CreateRole(ctx context.Context, dto CreateRoleDTO, actorID int64) (*Role, error)
	UpdateRole(ctx context.Context, id int64, dto UpdateRoleDTO, actorID int64) (*Role, error)
	DeleteRole(ctx context.Context, id int64, actorID int64) error
	GrantPermission(ctx context.Context, roleID, permissionID, actorID int64) error
	RevokePermission(ctx context.Context, roleID, permissionID, actorID int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	groups, err := h.Service.ListPermissions()
	if err != nil {
		h.Logger.Error("ListPermissions: service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to list permissions")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"groups": groups})
}

func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.Service.GetRoles()
	if err != nil {
		h.Logger.Error("ListRoles: service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to list roles")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"roles": roles})
}

func (h *Handler) GetRole(w http.ResponseWriter, r *http.Request) {
	id, err := h.roleID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid role ID")
		return
	}

	role, err := h.Service.GetRole(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, role)
}

func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateRoleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role, err := h.Service.CreateRole(r.Context(), dto, user.ID)
	if err != nil {
		h.Logger.Error("CreateRole: service error", "error", err, "actor_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, role)
}

func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.roleID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid role ID")
		return
	}

	var dto UpdateRoleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role, err := h.Service.UpdateRole(r.Context(), id, dto, user.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, role)
}

func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.roleID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid role ID")
		return
	}

	if err := h.Service.DeleteRole(r.Context(), id, user.ID); err != nil {
		h.Logger.Error("DeleteRole: service error", "error", err, "role_id", id, "actor_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GrantPermission(w http.ResponseWriter, r *http.Request) {
	h.changeGrant(w, r, h.Service.GrantPermission)
}

func (h *Handler) RevokePermission(w http.ResponseWriter, r *http.Request) {
	h.changeGrant(w, r, h.Service.RevokePermission)
}

func (h *Handler) changeGrant(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, roleID, permissionID, actorID int64) error) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.roleID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid role ID")
		return
	}

	var dto GrantDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := op(r.Context(), id, dto.PermissionID, user.ID); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) roleID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
