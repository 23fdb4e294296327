package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"classlab/internal/domain"
	"classlab/internal/webhook"
)

// RepoService manages student repositories. Creation is idempotent by
// rejection: an existing mapping for the same (course, assignment, name) key
// fails with ConflictError before any upstream call is made.
type RepoService struct {
	projects domain.ProjectStore
	groups   domain.GroupStore
	users    domain.UserStore
	upstream domain.Upstream
	hookBase string // public base URL of this service, no trailing slash
	salt     string
	logger   *slog.Logger
}

// NewRepoService creates a new RepoService. hookBase is the public base URL
// registered webhook URLs point back at; salt is the shared webhook token
// secret.
func NewRepoService(projects domain.ProjectStore, groups domain.GroupStore, users domain.UserStore,
	upstream domain.Upstream, hookBase, salt string, logger *slog.Logger) *RepoService {
	return &RepoService{
		projects: projects,
		groups:   groups,
		users:    users,
		upstream: upstream,
		hookBase: hookBase,
		salt:     salt,
		logger:   logger,
	}
}

// Create provisions a repository for one or more owners: create the upstream
// project under the assignment's group, persist the mapping, register the
// push webhook, protect all branches, then grant each owner maintainer access
// expiring at the deadline. Steps after project creation are not rolled back
// on failure; the project and mapping stay behind, partially configured.
// Returns the SSH clone URL.
func (s *RepoService) Create(ctx context.Context, courseUID, assignmentUID uuid.UUID, req domain.CreateRepoRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	key := domain.RepoKey{CourseUID: courseUID, AssignmentUID: assignmentUID, Name: req.RepoName}
	if _, err := s.projects.Lookup(ctx, key); err == nil {
		return "", domain.ErrConflict("repository %q already exists", req.RepoName)
	} else if !isNotFound(err) {
		return "", err
	}

	assignmentID, err := s.groups.Lookup(ctx, assignmentUID)
	if err != nil {
		return "", err
	}

	// Resolve every owner before the first mutating call.
	ownerIDs := make([]int64, 0, len(req.Owners))
	for _, owner := range req.Owners {
		id, err := s.users.Lookup(ctx, owner)
		if err != nil {
			return "", err
		}
		ownerIDs = append(ownerIDs, id)
	}

	info, err := s.upstream.CreateProject(ctx, req.RepoName, assignmentID)
	if err != nil {
		return "", err
	}
	if err := s.projects.Insert(ctx, key, info.ID); err != nil {
		// Two concurrent creates can both pass the existence check; the
		// loser lands here on the unique key and reports a clean conflict.
		return "", err
	}

	// The token covers the hook path only, query excluded, so verification
	// can recompute it from the request path alone.
	hookPath := fmt.Sprintf("/hooks/%s/%s", courseUID, assignmentUID)
	hookURL := s.hookBase + hookPath
	if req.AdditionalData != nil {
		hookURL += "?data=" + url.QueryEscape(*req.AdditionalData)
	}
	if err := s.upstream.CreateProjectHook(ctx, info.ID, hookURL, webhook.Token(hookPath, s.salt)); err != nil {
		return "", err
	}

	if err := s.upstream.ProtectAllBranches(ctx, info.ID); err != nil {
		return "", err
	}

	for _, ownerID := range ownerIDs {
		if err := s.upstream.AddProjectMember(ctx, info.ID, ownerID, domain.AccessLevelMaintainer, req.ExpiresAt); err != nil {
			return "", err
		}
	}

	s.logger.InfoContext(ctx, "repository created",
		"course_uuid", courseUID, "assignment_uuid", assignmentUID,
		"name", req.RepoName, "project_id", info.ID)
	return info.SSHURL, nil
}

// Delete removes a repository upstream and its mapping.
func (s *RepoService) Delete(ctx context.Context, key domain.RepoKey) error {
	projectID, err := s.projects.Lookup(ctx, key)
	if err != nil {
		return err
	}
	if err := s.upstream.DeleteProject(ctx, projectID); err != nil {
		return err
	}
	return ignoreNotFound(s.projects.RemoveByProjectID(ctx, projectID))
}

// DownloadArchive opens a streaming archive download for a repository. An
// empty format defaults to tar.gz. The caller owns the response body.
func (s *RepoService) DownloadArchive(ctx context.Context, key domain.RepoKey, format string) (*http.Response, error) {
	projectID, err := s.projects.Lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	if format == "" {
		format = "tar.gz"
	}
	return s.upstream.DownloadArchive(ctx, projectID, format)
}

// Commits opens a streaming commit listing for a repository. pageURL, when
// non-empty, is an upstream continuation URL handed back by a previous page's
// rewritten Link header and is followed verbatim. The caller owns the
// response body.
func (s *RepoService) Commits(ctx context.Context, key domain.RepoKey, pageURL string) (*http.Response, error) {
	projectID, err := s.projects.Lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	return s.upstream.ListCommits(ctx, projectID, pageURL)
}

func isNotFound(err error) bool {
	var nf *domain.NotFoundError
	return errors.As(err, &nf)
}
