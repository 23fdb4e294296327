package api

import (
	"net/http"
)

// pushPayload is the slice of the upstream push event body this layer reads.
type pushPayload struct {
	Project struct {
		GitSSHURL string `json:"git_ssh_url"`
	} `json:"project"`
}

// handleHook receives an authenticated push callback and relays it to the
// backend. The guard middleware has already vetted source IP, token, and
// event type by the time this runs.
func (h *Handler) handleHook(w http.ResponseWriter, r *http.Request) {
	courseUID, err := uuidParam(r, "course")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	assignmentUID, err := uuidParam(r, "assignment")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var payload pushPayload
	if err := decodeJSON(r, &payload); err != nil {
		h.respondError(w, r, err)
		return
	}

	// the opaque data value was baked into the hook URL at repo creation
	var additionalData *string
	if vals, ok := r.URL.Query()["data"]; ok && len(vals) > 0 {
		additionalData = &vals[0]
	}

	if err := h.hooks.ForwardPush(r.Context(), courseUID, assignmentUID, payload.Project.GitSSHURL, additionalData); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
