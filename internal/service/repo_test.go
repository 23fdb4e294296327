package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classlab/internal/domain"
	"classlab/internal/webhook"
)

const (
	testHookBase = "https://middleware.example.edu"
	testSalt     = "CAFEDEAD"
)

func notFoundProjectLookup(ctx context.Context, key domain.RepoKey) (int64, error) {
	return 0, domain.ErrNotFound("mapping not found")
}

func TestCreateRepo(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	courseUID, assignmentUID := uuid.New(), uuid.New()

	validReq := func() domain.CreateRepoRequest {
		return domain.CreateRepoRequest{
			Owners:    []string{"alice@example.edu", "bob@example.edu"},
			RepoName:  "team-1",
			ExpiresAt: "2026-12-31",
		}
	}

	t.Run("full workflow", func(t *testing.T) {
		t.Parallel()

		projects := &mockProjectStore{
			lookupFn: notFoundProjectLookup,
			insertFn: func(ctx context.Context, key domain.RepoKey, projectID int64) error {
				assert.Equal(t, "team-1", key.Name)
				assert.Equal(t, int64(77), projectID)
				return nil
			},
		}
		groups := &mockGroupStore{
			lookupFn: func(ctx context.Context, uid uuid.UUID) (int64, error) {
				assert.Equal(t, assignmentUID, uid)
				return 55, nil
			},
		}
		users := &mockUserStore{
			lookupFn: func(ctx context.Context, username string) (int64, error) {
				switch username {
				case "alice@example.edu":
					return 41, nil
				case "bob@example.edu":
					return 42, nil
				}
				return 0, domain.ErrNotFound("mapping not found")
			},
		}

		var calls []string
		var hookURL, hookToken string
		var members [][2]int64
		var expiries []string
		upstream := &mockUpstream{
			createProjectFn: func(ctx context.Context, name string, namespaceID int64) (*domain.ProjectInfo, error) {
				calls = append(calls, "create")
				assert.Equal(t, int64(55), namespaceID)
				return &domain.ProjectInfo{ID: 77, SSHURL: "git@gitlab.test:hw1/team-1.git"}, nil
			},
			createProjectHookFn: func(ctx context.Context, projectID int64, url, token string) error {
				calls = append(calls, "hook")
				hookURL, hookToken = url, token
				return nil
			},
			protectAllBranchesFn: func(ctx context.Context, projectID int64) error {
				calls = append(calls, "protect")
				return nil
			},
			addProjectMemberFn: func(ctx context.Context, projectID, userID int64, accessLevel int, expiresAt string) error {
				calls = append(calls, "member")
				assert.Equal(t, domain.AccessLevelMaintainer, accessLevel)
				members = append(members, [2]int64{projectID, userID})
				expiries = append(expiries, expiresAt)
				return nil
			},
		}

		svc := NewRepoService(projects, groups, users, upstream, testHookBase, testSalt, testLogger())
		sshURL, err := svc.Create(ctx, courseUID, assignmentUID, validReq())
		require.NoError(t, err)
		assert.Equal(t, "git@gitlab.test:hw1/team-1.git", sshURL)

		assert.Equal(t, []string{"create", "hook", "protect", "member", "member"}, calls)
		assert.Equal(t, [][2]int64{{77, 41}, {77, 42}}, members)
		assert.Equal(t, []string{"2026-12-31", "2026-12-31"}, expiries)

		wantPath := fmt.Sprintf("/hooks/%s/%s", courseUID, assignmentUID)
		assert.Equal(t, testHookBase+wantPath, hookURL)
		assert.Equal(t, webhook.Token(wantPath, testSalt), hookToken)
	})

	t.Run("additional data lands in the hook query but not the token", func(t *testing.T) {
		t.Parallel()

		data := "cohort A/42"
		req := validReq()
		req.AdditionalData = &data

		projects := &mockProjectStore{
			lookupFn: notFoundProjectLookup,
			insertFn: func(ctx context.Context, key domain.RepoKey, projectID int64) error { return nil },
		}
		groups := &mockGroupStore{
			lookupFn: func(ctx context.Context, uid uuid.UUID) (int64, error) { return 55, nil },
		}
		users := &mockUserStore{
			lookupFn: func(ctx context.Context, username string) (int64, error) { return 41, nil },
		}

		var hookURL, hookToken string
		upstream := &mockUpstream{
			createProjectFn: func(ctx context.Context, name string, namespaceID int64) (*domain.ProjectInfo, error) {
				return &domain.ProjectInfo{ID: 77, SSHURL: "ssh"}, nil
			},
			createProjectHookFn: func(ctx context.Context, projectID int64, url, token string) error {
				hookURL, hookToken = url, token
				return nil
			},
			protectAllBranchesFn: func(ctx context.Context, projectID int64) error { return nil },
			addProjectMemberFn: func(ctx context.Context, projectID, userID int64, accessLevel int, expiresAt string) error {
				return nil
			},
		}

		svc := NewRepoService(projects, groups, users, upstream, testHookBase, testSalt, testLogger())
		_, err := svc.Create(ctx, courseUID, assignmentUID, req)
		require.NoError(t, err)

		wantPath := fmt.Sprintf("/hooks/%s/%s", courseUID, assignmentUID)
		assert.Equal(t, testHookBase+wantPath+"?data="+url.QueryEscape(data), hookURL)
		// token must verify against the request path, which excludes the query
		assert.Equal(t, webhook.Token(wantPath, testSalt), hookToken)
	})

	t.Run("existing mapping rejected with zero upstream calls", func(t *testing.T) {
		t.Parallel()

		projects := &mockProjectStore{
			lookupFn: func(ctx context.Context, key domain.RepoKey) (int64, error) { return 77, nil },
		}

		svc := NewRepoService(projects, &mockGroupStore{}, &mockUserStore{}, &mockUpstream{}, testHookBase, testSalt, testLogger())
		_, err := svc.Create(ctx, courseUID, assignmentUID, validReq())
		var conflict *domain.ConflictError
		require.ErrorAs(t, err, &conflict)
	})

	t.Run("unknown owner fails before any mutating call", func(t *testing.T) {
		t.Parallel()

		projects := &mockProjectStore{lookupFn: notFoundProjectLookup}
		groups := &mockGroupStore{
			lookupFn: func(ctx context.Context, uid uuid.UUID) (int64, error) { return 55, nil },
		}
		users := &mockUserStore{
			lookupFn: func(ctx context.Context, username string) (int64, error) {
				if username == "alice@example.edu" {
					return 41, nil
				}
				return 0, domain.ErrNotFound("mapping not found")
			},
		}

		// mockUpstream panics on any call, so reaching upstream fails the test
		svc := NewRepoService(projects, groups, users, &mockUpstream{}, testHookBase, testSalt, testLogger())
		_, err := svc.Create(ctx, courseUID, assignmentUID, validReq())
		var nf *domain.NotFoundError
		require.ErrorAs(t, err, &nf)
	})

	t.Run("race loser surfaces conflict from the store", func(t *testing.T) {
		t.Parallel()

		projects := &mockProjectStore{
			lookupFn: notFoundProjectLookup,
			insertFn: func(ctx context.Context, key domain.RepoKey, projectID int64) error {
				return domain.ErrConflict("mapping already exists")
			},
		}
		groups := &mockGroupStore{
			lookupFn: func(ctx context.Context, uid uuid.UUID) (int64, error) { return 55, nil },
		}
		users := &mockUserStore{
			lookupFn: func(ctx context.Context, username string) (int64, error) { return 41, nil },
		}
		upstream := &mockUpstream{
			createProjectFn: func(ctx context.Context, name string, namespaceID int64) (*domain.ProjectInfo, error) {
				return &domain.ProjectInfo{ID: 77, SSHURL: "ssh"}, nil
			},
		}

		svc := NewRepoService(projects, groups, users, upstream, testHookBase, testSalt, testLogger())
		_, err := svc.Create(ctx, courseUID, assignmentUID, validReq())
		var conflict *domain.ConflictError
		require.ErrorAs(t, err, &conflict)
	})

	t.Run("hook failure aborts without rollback", func(t *testing.T) {
		t.Parallel()

		var projectCreated, mappingInserted, projectDeleted bool
		projects := &mockProjectStore{
			lookupFn: notFoundProjectLookup,
			insertFn: func(ctx context.Context, key domain.RepoKey, projectID int64) error {
				mappingInserted = true
				return nil
			},
			removeByProjectIDFn: func(ctx context.Context, projectID int64) error {
				projectDeleted = true
				return nil
			},
		}
		groups := &mockGroupStore{
			lookupFn: func(ctx context.Context, uid uuid.UUID) (int64, error) { return 55, nil },
		}
		users := &mockUserStore{
			lookupFn: func(ctx context.Context, username string) (int64, error) { return 41, nil },
		}
		upstream := &mockUpstream{
			createProjectFn: func(ctx context.Context, name string, namespaceID int64) (*domain.ProjectInfo, error) {
				projectCreated = true
				return &domain.ProjectInfo{ID: 77, SSHURL: "ssh"}, nil
			},
			createProjectHookFn: func(ctx context.Context, projectID int64, url, token string) error {
				return domain.ErrUpstream(502, "bad gateway")
			},
		}

		svc := NewRepoService(projects, groups, users, upstream, testHookBase, testSalt, testLogger())
		_, err := svc.Create(ctx, courseUID, assignmentUID, validReq())
		var up *domain.UpstreamError
		require.ErrorAs(t, err, &up)
		assert.True(t, projectCreated)
		assert.True(t, mappingInserted)
		assert.False(t, projectDeleted, "failed hook setup must not roll back the project")
	})
}

func TestDeleteRepo(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	var removed, deleted []int64
	projects := &mockProjectStore{
		lookupFn: func(ctx context.Context, key domain.RepoKey) (int64, error) { return 77, nil },
		removeByProjectIDFn: func(ctx context.Context, projectID int64) error {
			removed = append(removed, projectID)
			return nil
		},
	}
	upstream := &mockUpstream{
		deleteProjectFn: func(ctx context.Context, projectID int64) error {
			deleted = append(deleted, projectID)
			return nil
		},
	}

	svc := NewRepoService(projects, &mockGroupStore{}, &mockUserStore{}, upstream, testHookBase, testSalt, testLogger())
	key := domain.RepoKey{CourseUID: uuid.New(), AssignmentUID: uuid.New(), Name: "team-1"}
	require.NoError(t, svc.Delete(ctx, key))
	assert.Equal(t, []int64{77}, deleted)
	assert.Equal(t, []int64{77}, removed)
}

func TestDownloadArchiveDefaultsFormat(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	projects := &mockProjectStore{
		lookupFn: func(ctx context.Context, key domain.RepoKey) (int64, error) { return 77, nil },
	}
	var gotFormat string
	upstream := &mockUpstream{
		downloadArchiveFn: func(ctx context.Context, projectID int64, format string) (*http.Response, error) {
			gotFormat = format
			return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
		},
	}

	svc := NewRepoService(projects, &mockGroupStore{}, &mockUserStore{}, upstream, testHookBase, testSalt, testLogger())
	key := domain.RepoKey{CourseUID: uuid.New(), AssignmentUID: uuid.New(), Name: "team-1"}

	resp, err := svc.DownloadArchive(ctx, key, "")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "tar.gz", gotFormat)

	_, err = svc.DownloadArchive(ctx, key, "zip")
	require.NoError(t, err)
	assert.Equal(t, "zip", gotFormat)
}

func TestCommitsPassesContinuationVerbatim(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	projects := &mockProjectStore{
		lookupFn: func(ctx context.Context, key domain.RepoKey) (int64, error) { return 77, nil },
	}
	var gotPage string
	upstream := &mockUpstream{
		listCommitsFn: func(ctx context.Context, projectID int64, pageURL string) (*http.Response, error) {
			gotPage = pageURL
			return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
		},
	}

	svc := NewRepoService(projects, &mockGroupStore{}, &mockUserStore{}, upstream, testHookBase, testSalt, testLogger())
	key := domain.RepoKey{CourseUID: uuid.New(), AssignmentUID: uuid.New(), Name: "team-1"}

	next := "https://gitlab.test/api/v4/projects/77/repository/commits?per_page=100&page=2"
	resp, err := svc.Commits(ctx, key, next)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, next, gotPage)
}
