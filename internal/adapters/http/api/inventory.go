package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/okian/codex/internal/domain/types"
)

// InventoryHandler handles inventory requests.
type InventoryHandler struct {
	deps InventoryDependencies
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(deps InventoryDependencies) *InventoryHandler {
	return &InventoryHandler{deps: deps}
}

// HandleList handles GET /inventory requests.
func (h *InventoryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.deps.Inventory(r.Context())
	if err != nil {
		writeFailure(w, Wrap("api.list_inventory", err))
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// HandleLevelUp handles POST /inventory/levelup requests. The level is
// applied asynchronously; a repeated event_id is acknowledged with 200 and
// applied once.
func (h *InventoryHandler) HandleLevelUp(w http.ResponseWriter, r *http.Request) {
	const op = "api.level_up"
	var req types.LevelUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	req.EventID = strings.TrimSpace(req.EventID)
	req.ItemID = strings.TrimSpace(req.ItemID)
	if err := validate.Struct(req); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	ack, err := h.deps.SubmitLevelUp(r.Context(), req.EventID, req.ItemID)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	if ack.Duplicate {
		writeJSON(w, http.StatusOK, ack)
		return
	}
	writeJSON(w, http.StatusAccepted, ack)
}
