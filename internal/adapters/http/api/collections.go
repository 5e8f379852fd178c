package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/okian/codex/internal/domain/collection"
	"github.com/okian/codex/internal/domain/model"
)

// CollectionHandler handles collection entry requests.
type CollectionHandler struct {
	deps CollectionDependencies
}

// NewCollectionHandler creates a new collection handler.
func NewCollectionHandler(deps CollectionDependencies) *CollectionHandler {
	return &CollectionHandler{deps: deps}
}

// advanceResponse carries the delta of an advance. Warning is set when the
// advance happened but a side effect (persisting, the ledger) failed.
type advanceResponse struct {
	EntryID int             `json:"entry_id"`
	Delta   model.StatDelta `json:"delta"`
	Warning string          `json:"warning,omitempty"`
}

// HandleList handles GET /collections[?category=Equipment|Skill] requests.
func (h *CollectionHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_collections"
	var category *model.Category
	if raw := r.URL.Query().Get("category"); raw != "" {
		c, err := model.ParseCategory(raw)
		if err != nil {
			writeFailure(w, WrapKind(op, ErrBadRequest, err))
			return
		}
		category = &c
	}
	list, err := h.deps.Collections(r.Context(), category)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleGet handles GET /collections/{id} requests.
func (h *CollectionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_collection"
	id, err := entryID(r)
	if err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	p, err := h.deps.Collection(r.Context(), id)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleAdvance handles POST /collections/{id}/advance requests.
func (h *CollectionHandler) HandleAdvance(w http.ResponseWriter, r *http.Request) {
	const op = "api.advance_collection"
	id, err := entryID(r)
	if err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	delta, err := h.deps.Advance(r.Context(), id)
	resp := advanceResponse{EntryID: id, Delta: delta}
	switch {
	case err == nil:
	case sideEffect(err):
		resp.Warning = err.Error()
	default:
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// sideEffect reports whether err came after the tier already moved.
func sideEffect(err error) bool {
	return errors.Is(err, collection.ErrPersist) ||
		errors.Is(err, collection.ErrLedger) ||
		errors.Is(err, collection.ErrLevelQuery)
}

func entryID(r *http.Request) (int, error) {
	return strconv.Atoi(r.PathValue("id"))
}
