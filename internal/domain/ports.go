package domain

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// UserStore maps usernames to upstream user IDs.
// Implemented by repository.UserRepo.
type UserStore interface {
	Lookup(ctx context.Context, username string) (int64, error)
	Insert(ctx context.Context, username string, userID int64) error
	Remove(ctx context.Context, username string) error
}

// GroupStore maps UUIDs to upstream group IDs. Courses and assignments share
// this space: both are GitLab groups.
// Implemented by repository.GroupRepo.
type GroupStore interface {
	Lookup(ctx context.Context, uid uuid.UUID) (int64, error)
	Insert(ctx context.Context, uid uuid.UUID, groupID int64) error
	// RemoveByGroupID deletes by the upstream ID. Course deletion enumerates
	// sub-groups upstream and only knows their external IDs.
	RemoveByGroupID(ctx context.Context, groupID int64) error
}

// ProjectStore maps (course, assignment, repo name) keys to upstream project IDs.
// Implemented by repository.ProjectRepo.
type ProjectStore interface {
	Lookup(ctx context.Context, key RepoKey) (int64, error)
	Insert(ctx context.Context, key RepoKey, projectID int64) error
	RemoveByProjectID(ctx context.Context, projectID int64) error
}

// Upstream drives the GitLab REST API. All mutations are at-most-once; the
// orchestration layer never retries and never rolls back completed calls.
// Implemented by gitlab.Client.
type Upstream interface {
	CreateGroup(ctx context.Context, name string, parentID *int64) (int64, error)
	DeleteGroup(ctx context.Context, groupID int64) error
	ListSubgroupIDs(ctx context.Context, groupID int64) ([]int64, error)

	CreateProject(ctx context.Context, name string, namespaceID int64) (*ProjectInfo, error)
	DeleteProject(ctx context.Context, projectID int64) error
	CreateProjectHook(ctx context.Context, projectID int64, url, token string) error
	ProtectAllBranches(ctx context.Context, projectID int64) error
	AddProjectMember(ctx context.Context, projectID, userID int64, accessLevel int, expiresAt string) error
	AddGroupMember(ctx context.Context, groupID, userID int64, accessLevel int) error

	CreateUser(ctx context.Context, email, username, name, password string) (int64, error)
	RemoveAllKeys(ctx context.Context, userID int64) error
	AddKey(ctx context.Context, userID int64, title, key string) error

	// DownloadArchive and ListCommits return the raw upstream response so the
	// stream proxy can relay bodies without buffering. pageURL, when non-empty,
	// is a continuation URL previously handed out by upstream and is followed
	// verbatim.
	DownloadArchive(ctx context.Context, projectID int64, format string) (*http.Response, error)
	ListCommits(ctx context.Context, projectID int64, pageURL string) (*http.Response, error)

	Ping(ctx context.Context) error
}

// PushEvent is the payload forwarded to the backend for each authenticated
// push callback.
type PushEvent struct {
	CourseUID      string  `json:"course_uid"`
	AssignmentUID  string  `json:"assignment_uid"`
	Upstream       string  `json:"upstream"`
	AdditionalData *string `json:"additional_data,omitempty"`
}

// EventForwarder delivers authenticated webhook events to the backend.
// Implemented by backend.Client.
type EventForwarder interface {
	ForwardPush(ctx context.Context, evt PushEvent) error
}
