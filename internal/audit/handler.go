package audit

import (
	"net/http"
	"strconv"

	"github.com/KarlovS28/dela/internal/transport"
)

type ServiceAPI interface {
	List(filter Filter) ([]*AuditLog, error)
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

// List serves GET /audit with optional entity_type, entity_id, actor_id,
// action, limit and offset query parameters. Entries come back newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := Filter{
		EntityType: r.URL.Query().Get("entity_type"),
		Action:     Action(r.URL.Query().Get("action")),
		Limit:      50,
	}

	if v := r.URL.Query().Get("entity_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.EntityID = id
		}
	}
	if v := r.URL.Query().Get("actor_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.ActorID = id
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

	entries, err := h.Service.List(filter)
	if err != nil {
		h.Logger.Error("List: failed to list audit entries", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to list audit entries")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"limit":   filter.Limit,
		"offset":  filter.Offset,
	})
}
