package api

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"classlab/internal/domain"
)

// repoKeyFromPath assembles the repository key from the three path segments.
func repoKeyFromPath(r *http.Request) (domain.RepoKey, error) {
	courseUID, err := uuidParam(r, "course")
	if err != nil {
		return domain.RepoKey{}, err
	}
	assignmentUID, err := uuidParam(r, "assignment")
	if err != nil {
		return domain.RepoKey{}, err
	}
	name, err := pathParam(r, "repo")
	if err != nil {
		return domain.RepoKey{}, err
	}
	return domain.RepoKey{
		CourseUID:     courseUID,
		AssignmentUID: assignmentUID,
		Name:          name,
	}, nil
}

func (h *Handler) createRepo(w http.ResponseWriter, r *http.Request) {
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
	var req domain.CreateRepoRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	sshURL, err := h.repos.Create(r.Context(), courseUID, assignmentUID, req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"ssh_url_to_repo": sshURL})
}

func (h *Handler) deleteRepo(w http.ResponseWriter, r *http.Request) {
	key, err := repoKeyFromPath(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.repos.Delete(r.Context(), key); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// downloadRepo streams a repository archive from upstream to the caller,
// passing through the caching headers and forcing a binary content type.
func (h *Handler) downloadRepo(w http.ResponseWriter, r *http.Request) {
	key, err := repoKeyFromPath(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	resp, err := h.repos.DownloadArchive(r.Context(), key, r.URL.Query().Get("format"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	defer resp.Body.Close()

	if v := resp.Header.Get("Content-Disposition"); v != "" {
		w.Header().Set("Content-Disposition", v)
	}
	if v := resp.Header.Get("Etag"); v != "" {
		w.Header().Set("Etag", v)
	}
	w.Header().Set("Content-Transfer-Encoding", "binary")
	w.Header().Set("Content-Type", "application/octet-stream")

	if _, err := io.Copy(w, resp.Body); err != nil {
		// headers are gone; all we can do is note the broken stream
		h.logger.WarnContext(r.Context(), "archive stream interrupted", "error", err)
	}
}

// listCommits streams a commit page from upstream. When upstream advertises a
// next page, the raw URL is hidden behind this route's own page parameter:
// the caller gets an opaque continuation that round-trips back here and is
// then followed verbatim.
func (h *Handler) listCommits(w http.ResponseWriter, r *http.Request) {
	key, err := repoKeyFromPath(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	resp, err := h.repos.Commits(r.Context(), key, r.URL.Query().Get("page"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	defer resp.Body.Close()

	if next, ok := nextPageURL(resp.Header.Get("Link")); ok {
		w.Header().Set("Link", fmt.Sprintf(`<commits?page=%s>; rel="next"`, url.QueryEscape(next)))
	}
	w.Header().Set("Content-Type", "application/json")

	if _, err := io.Copy(w, resp.Body); err != nil {
		h.logger.WarnContext(r.Context(), "commit stream interrupted", "error", err)
	}
}

// nextPageURL extracts the rel="next" target from an upstream Link header.
func nextPageURL(link string) (string, bool) {
	for _, part := range strings.Split(link, ",") {
		part = strings.TrimSpace(part)
		if !strings.HasSuffix(part, `rel="next"`) {
			continue
		}
		start := strings.IndexByte(part, '<')
		end := strings.IndexByte(part, '>')
		if start < 0 || end <= start {
			continue
		}
		return part[start+1 : end], true
	}
	return "", false
}
