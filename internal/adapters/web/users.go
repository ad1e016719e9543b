package web

import (
	"net/http"
)

// listProfiles handles GET /api/users.
func (h *Handler) listProfiles(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListProfiles(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Profiles)
}

// assignRole handles PUT /api/users/{id}/role.
func (h *Handler) assignRole(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req struct {
		Role string `json:"role"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.AssignRole(r.Context(), id, req.Role)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Profile)
}
