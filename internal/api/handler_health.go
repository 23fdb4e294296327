package api

import (
	"net/http"
)

// healthcheck reports dependency status as a plain-text body: "OK", or the
// name of the offline dependency with a 500.
func (h *Handler) healthcheck(w http.ResponseWriter, r *http.Request) {
	if err := h.health.Check(r.Context()); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(err.Error()))
		return
	}
	_, _ = w.Write([]byte("OK"))
}
