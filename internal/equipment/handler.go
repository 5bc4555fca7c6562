package equipment

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
	Create(ctx context.Context, dto CreateEquipmentDTO, actorID int64) (*Equipment, error)
	Get(id int64) (*Equipment, error)
	List(filter ListFilter) ([]*Equipment, error)
	Update(ctx context.Context, id int64, dto UpdateEquipmentDTO, actorID int64) (*Equipment, error)
	AssignTo(ctx context.Context, id, employeeID, actorID int64) (*Equipment, error)
	ReturnToWarehouse(ctx context.Context, id, actorID int64) (*Equipment, error)
	Decommission(ctx context.Context, id, actorID int64) (*Equipment, error)
	Delete(ctx context.Context, id, actorID int64) error
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

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateEquipmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Service.Create(r.Context(), dto, user.ID)
	if err != nil {
		h.Logger.Error("Create: service error", "error", err, "actor_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, item)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := h.itemID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid equipment ID")
		return
	}

	item, err := h.Service.Get(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, item)
}

// List serves GET /equipment with optional state (assigned, warehouse,
// decommissioned), employee_id, limit and offset parameters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		State: r.URL.Query().Get("state"),
		Limit: 50,
	}
	if v := r.URL.Query().Get("employee_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.EmployeeID = id
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil && l > 0 && l <= 200 {
			filter.Limit = l
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if o, err := strconv.Atoi(v); err == nil && o >= 0 {
			filter.Offset = o
		}
	}

	items, err := h.Service.List(filter)
	if err != nil {
		h.Logger.Error("List: service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to list equipment")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"equipment": items,
		"limit":     filter.Limit,
		"offset":    filter.Offset,
	})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.itemID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid equipment ID")
		return
	}

	var dto UpdateEquipmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Service.Update(r.Context(), id, dto, user.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) Assign(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.itemID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid equipment ID")
		return
	}

	var dto AssignDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.Service.AssignTo(r.Context(), id, dto.EmployeeID, user.ID)
	if err != nil {
		h.Logger.Error("Assign: service error", "error", err, "equipment_id", id, "actor_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) Return(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.itemID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid equipment ID")
		return
	}

	item, err := h.Service.ReturnToWarehouse(r.Context(), id, user.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) Decommission(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.itemID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid equipment ID")
		return
	}

	item, err := h.Service.Decommission(r.Context(), id, user.ID)
	if err != nil {
		h.Logger.Error("Decommission: service error", "error", err, "equipment_id", id, "actor_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.itemID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid equipment ID")
		return
	}

	if err := h.Service.Delete(r.Context(), id, user.ID); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) itemID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
