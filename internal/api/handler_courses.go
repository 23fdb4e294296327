package api

import (
	"net/http"

	"classlab/internal/domain"
)

func (h *Handler) createCourse(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.courses.CreateCourse(r.Context(), req); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) deleteCourse(w http.ResponseWriter, r *http.Request) {
	courseUID, err := uuidParam(r, "course")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.courses.DeleteCourse(r.Context(), courseUID); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) createAssignment(w http.ResponseWriter, r *http.Request) {
	courseUID, err := uuidParam(r, "course")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req domain.CreateGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.courses.CreateAssignment(r.Context(), courseUID, req); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) deleteAssignment(w http.ResponseWriter, r *http.Request) {
	// the course segment is present in the path but the assignment UUID
	// alone identifies the group
	assignmentUID, err := uuidParam(r, "assignment")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.courses.DeleteAssignment(r.Context(), assignmentUID); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) addInstructor(w http.ResponseWriter, r *http.Request) {
	courseUID, err := uuidParam(r, "course")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req domain.AddInstructorRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.courses.AddInstructor(r.Context(), courseUID, req); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
