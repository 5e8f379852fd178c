package api

import "net/http"

// StatusHandler handles badge and stat total requests.
type StatusHandler struct {
	deps StatusDependencies
}

// NewStatusHandler creates a new status handler.
func NewStatusHandler(deps StatusDependencies) *StatusHandler {
	return &StatusHandler{deps: deps}
}

// HandleBadge handles GET /badge requests.
func (h *StatusHandler) HandleBadge(w http.ResponseWriter, r *http.Request) {
	b, err := h.deps.Badge(r.Context())
	if err != nil {
		writeFailure(w, Wrap("api.get_badge", err))
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// HandleStatus handles GET /status requests.
func (h *StatusHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	s, err := h.deps.Status(r.Context())
	if err != nil {
		writeFailure(w, Wrap("api.get_status", err))
		return
	}
	writeJSON(w, http.StatusOK, s)
}
