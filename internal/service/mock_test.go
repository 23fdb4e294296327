package service

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"classlab/internal/domain"
)

// === User Store Mock ===

type mockUserStore struct {
	lookupFn func(ctx context.Context, username string) (int64, error)
	insertFn func(ctx context.Context, username string, userID int64) error
	removeFn func(ctx context.Context, username string) error
}

func (m *mockUserStore) Lookup(ctx context.Context, username string) (int64, error) {
	if m.lookupFn != nil {
		return m.lookupFn(ctx, username)
	}
	panic("unexpected call to mockUserStore.Lookup")
}

func (m *mockUserStore) Insert(ctx context.Context, username string, userID int64) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, username, userID)
	}
	panic("unexpected call to mockUserStore.Insert")
}

func (m *mockUserStore) Remove(ctx context.Context, username string) error {
	if m.removeFn != nil {
		return m.removeFn(ctx, username)
	}
	panic("unexpected call to mockUserStore.Remove")
}

// === Group Store Mock ===

type mockGroupStore struct {
	lookupFn          func(ctx context.Context, uid uuid.UUID) (int64, error)
	insertFn          func(ctx context.Context, uid uuid.UUID, groupID int64) error
	removeByGroupIDFn func(ctx context.Context, groupID int64) error
}

func (m *mockGroupStore) Lookup(ctx context.Context, uid uuid.UUID) (int64, error) {
	if m.lookupFn != nil {
		return m.lookupFn(ctx, uid)
	}
	panic("unexpected call to mockGroupStore.Lookup")
}

func (m *mockGroupStore) Insert(ctx context.Context, uid uuid.UUID, groupID int64) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, uid, groupID)
	}
	panic("unexpected call to mockGroupStore.Insert")
}

func (m *mockGroupStore) RemoveByGroupID(ctx context.Context, groupID int64) error {
	if m.removeByGroupIDFn != nil {
		return m.removeByGroupIDFn(ctx, groupID)
	}
	panic("unexpected call to mockGroupStore.RemoveByGroupID")
}

// === Project Store Mock ===

type mockProjectStore struct {
	lookupFn            func(ctx context.Context, key domain.RepoKey) (int64, error)
	insertFn            func(ctx context.Context, key domain.RepoKey, projectID int64) error
	removeByProjectIDFn func(ctx context.Context, projectID int64) error
}

func (m *mockProjectStore) Lookup(ctx context.Context, key domain.RepoKey) (int64, error) {
	if m.lookupFn != nil {
		return m.lookupFn(ctx, key)
	}
	panic("unexpected call to mockProjectStore.Lookup")
}

func (m *mockProjectStore) Insert(ctx context.Context, key domain.RepoKey, projectID int64) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, key, projectID)
	}
	panic("unexpected call to mockProjectStore.Insert")
}

func (m *mockProjectStore) RemoveByProjectID(ctx context.Context, projectID int64) error {
	if m.removeByProjectIDFn != nil {
		return m.removeByProjectIDFn(ctx, projectID)
	}
	panic("unexpected call to mockProjectStore.RemoveByProjectID")
}

// === Upstream Mock ===

type mockUpstream struct {
	createGroupFn        func(ctx context.Context, name string, parentID *int64) (int64, error)
	deleteGroupFn        func(ctx context.Context, groupID int64) error
	listSubgroupIDsFn    func(ctx context.Context, groupID int64) ([]int64, error)
	createProjectFn      func(ctx context.Context, name string, namespaceID int64) (*domain.ProjectInfo, error)
	deleteProjectFn      func(ctx context.Context, projectID int64) error
	createProjectHookFn  func(ctx context.Context, projectID int64, url, token string) error
	protectAllBranchesFn func(ctx context.Context, projectID int64) error
	addProjectMemberFn   func(ctx context.Context, projectID, userID int64, accessLevel int, expiresAt string) error
	addGroupMemberFn     func(ctx context.Context, groupID, userID int64, accessLevel int) error
	createUserFn         func(ctx context.Context, email, username, name, password string) (int64, error)
	removeAllKeysFn      func(ctx context.Context, userID int64) error
	addKeyFn             func(ctx context.Context, userID int64, title, key string) error
	downloadArchiveFn    func(ctx context.Context, projectID int64, format string) (*http.Response, error)
	listCommitsFn        func(ctx context.Context, projectID int64, pageURL string) (*http.Response, error)
	pingFn               func(ctx context.Context) error
}

func (m *mockUpstream) CreateGroup(ctx context.Context, name string, parentID *int64) (int64, error) {
	if m.createGroupFn != nil {
		return m.createGroupFn(ctx, name, parentID)
	}
	panic("unexpected call to mockUpstream.CreateGroup")
}

func (m *mockUpstream) DeleteGroup(ctx context.Context, groupID int64) error {
	if m.deleteGroupFn != nil {
		return m.deleteGroupFn(ctx, groupID)
	}
	panic("unexpected call to mockUpstream.DeleteGroup")
}

func (m *mockUpstream) ListSubgroupIDs(ctx context.Context, groupID int64) ([]int64, error) {
	if m.listSubgroupIDsFn != nil {
		return m.listSubgroupIDsFn(ctx, groupID)
	}
	panic("unexpected call to mockUpstream.ListSubgroupIDs")
}

func (m *mockUpstream) CreateProject(ctx context.Context, name string, namespaceID int64) (*domain.ProjectInfo, error) {
	if m.createProjectFn != nil {
		return m.createProjectFn(ctx, name, namespaceID)
	}
	panic("unexpected call to mockUpstream.CreateProject")
}

func (m *mockUpstream) DeleteProject(ctx context.Context, projectID int64) error {
	if m.deleteProjectFn != nil {
		return m.deleteProjectFn(ctx, projectID)
	}
	panic("unexpected call to mockUpstream.DeleteProject")
}

func (m *mockUpstream) CreateProjectHook(ctx context.Context, projectID int64, url, token string) error {
	if m.createProjectHookFn != nil {
		return m.createProjectHookFn(ctx, projectID, url, token)
	}
	panic("unexpected call to mockUpstream.CreateProjectHook")
}

func (m *mockUpstream) ProtectAllBranches(ctx context.Context, projectID int64) error {
	if m.protectAllBranchesFn != nil {
		return m.protectAllBranchesFn(ctx, projectID)
	}
	panic("unexpected call to mockUpstream.ProtectAllBranches")
}

func (m *mockUpstream) AddProjectMember(ctx context.Context, projectID, userID int64, accessLevel int, expiresAt string) error {
	if m.addProjectMemberFn != nil {
		return m.addProjectMemberFn(ctx, projectID, userID, accessLevel, expiresAt)
	}
	panic("unexpected call to mockUpstream.AddProjectMember")
}

func (m *mockUpstream) AddGroupMember(ctx context.Context, groupID, userID int64, accessLevel int) error {
	if m.addGroupMemberFn != nil {
		return m.addGroupMemberFn(ctx, groupID, userID, accessLevel)
	}
	panic("unexpected call to mockUpstream.AddGroupMember")
}

func (m *mockUpstream) CreateUser(ctx context.Context, email, username, name, password string) (int64, error) {
	if m.createUserFn != nil {
		return m.createUserFn(ctx, email, username, name, password)
	}
	panic("unexpected call to mockUpstream.CreateUser")
}

func (m *mockUpstream) RemoveAllKeys(ctx context.Context, userID int64) error {
	if m.removeAllKeysFn != nil {
		return m.removeAllKeysFn(ctx, userID)
	}
	panic("unexpected call to mockUpstream.RemoveAllKeys")
}

func (m *mockUpstream) AddKey(ctx context.Context, userID int64, title, key string) error {
	if m.addKeyFn != nil {
		return m.addKeyFn(ctx, userID, title, key)
	}
	panic("unexpected call to mockUpstream.AddKey")
}

func (m *mockUpstream) DownloadArchive(ctx context.Context, projectID int64, format string) (*http.Response, error) {
	if m.downloadArchiveFn != nil {
		return m.downloadArchiveFn(ctx, projectID, format)
	}
	panic("unexpected call to mockUpstream.DownloadArchive")
}

func (m *mockUpstream) ListCommits(ctx context.Context, projectID int64, pageURL string) (*http.Response, error) {
	if m.listCommitsFn != nil {
		return m.listCommitsFn(ctx, projectID, pageURL)
	}
	panic("unexpected call to mockUpstream.ListCommits")
}

func (m *mockUpstream) Ping(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	panic("unexpected call to mockUpstream.Ping")
}

// === Event Forwarder Mock ===

type mockForwarder struct {
	forwardPushFn func(ctx context.Context, evt domain.PushEvent) error
}

func (m *mockForwarder) ForwardPush(ctx context.Context, evt domain.PushEvent) error {
	if m.forwardPushFn != nil {
		return m.forwardPushFn(ctx, evt)
	}
	panic("unexpected call to mockForwarder.ForwardPush")
}

// === Pinger Mock ===

type mockPinger struct {
	pingFn func(ctx context.Context) error
}

func (m *mockPinger) PingContext(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	panic("unexpected call to mockPinger.PingContext")
}
