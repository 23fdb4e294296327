// Package gitlab implements the upstream GitLab REST client.
package gitlab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"classlab/internal/domain"
)

// maxErrorBody caps how much of an upstream error response is captured.
const maxErrorBody = 4 << 10

var _ domain.Upstream = (*Client)(nil)

// Client drives the GitLab v4 REST API. Every request carries the
// administrative token in the Private-Token header. Calls are single-shot:
// no retries, so a failed call leaves at most one upstream mutation behind.
type Client struct {
	base       *url.URL
	token      string
	sudo       string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a Client. base must point at the API root (".../api/v4/");
// a trailing slash is appended if missing so relative paths resolve under it.
func New(base *url.URL, token string, httpClient *http.Client, logger *slog.Logger) *Client {
	if !strings.HasSuffix(base.Path, "/") {
		b := *base
		b.Path += "/"
		base = &b
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{base: base, token: token, httpClient: httpClient, logger: logger}
}

// AsUser returns a client whose calls are impersonated via the sudo header.
// Impersonation is scoped to the returned client, so a caller must opt in per
// call site rather than inheriting it from shared state.
func (c *Client) AsUser(username string) *Client {
	scoped := *c
	scoped.sudo = username
	return &scoped
}

// do issues a request for path relative to the API base. A nil body sends no
// payload; otherwise body is JSON-encoded. Non-2xx responses are drained and
// returned as UpstreamError. A 2xx response comes back with its body open and
// the caller owns closing it.
func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("parse upstream path %q: %w", path, err)
	}
	target := c.base.ResolveReference(ref)

	var payload io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode upstream request: %w", err)
		}
		payload = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), payload)
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	req.Header.Set("Private-Token", c.token)
	if c.sudo != "" {
		req.Header.Set("sudo", c.sudo)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream %s %s: %w", method, ref.Path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		_ = resp.Body.Close()
		c.logger.WarnContext(ctx, "upstream call failed",
			"method", method, "path", ref.Path, "status", resp.StatusCode)
		return nil, domain.ErrUpstream(resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return resp, nil
}

// decode drains resp into v and closes the body.
func decode(resp *http.Response, v any) error {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode upstream response: %w", err)
	}
	return nil
}

// discard drains and closes a response whose body is not needed.
func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	_ = resp.Body.Close()
}

type createGroupRequest struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	Visibility string `json:"visibility"`
	ParentID   *int64 `json:"parent_id,omitempty"`
}

// CreateGroup creates a private group, optionally nested under parentID,
// and returns its upstream ID.
func (c *Client) CreateGroup(ctx context.Context, name string, parentID *int64) (int64, error) {
	resp, err := c.do(ctx, http.MethodPost, "groups", createGroupRequest{
		Name:       name,
		Path:       name,
		Visibility: "private",
		ParentID:   parentID,
	})
	if err != nil {
		return 0, err
	}
	var out struct {
		ID int64 `json:"id"`
	}
	if err := decode(resp, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

// DeleteGroup removes a group and everything beneath it.
func (c *Client) DeleteGroup(ctx context.Context, groupID int64) error {
	resp, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("groups/%d", groupID), nil)
	if err != nil {
		return err
	}
	discard(resp)
	return nil
}

// ListSubgroupIDs returns the IDs of a group's direct sub-groups.
func (c *Client) ListSubgroupIDs(ctx context.Context, groupID int64) ([]int64, error) {
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("groups/%d/subgroups", groupID), nil)
	if err != nil {
		return nil, err
	}
	var out []struct {
		ID int64 `json:"id"`
	}
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(out))
	for _, g := range out {
		ids = append(ids, g.ID)
	}
	return ids, nil
}

type createProjectRequest struct {
	Name        string `json:"name"`
	NamespaceID int64  `json:"namespace_id"`
	Visibility  string `json:"visibility"`
}

// CreateProject creates a private project inside the given namespace.
func (c *Client) CreateProject(ctx context.Context, name string, namespaceID int64) (*domain.ProjectInfo, error) {
	resp, err := c.do(ctx, http.MethodPost, "projects/", createProjectRequest{
		Name:        name,
		NamespaceID: namespaceID,
		Visibility:  "private",
	})
	if err != nil {
		return nil, err
	}
	var out struct {
		ID     int64  `json:"id"`
		SSHURL string `json:"ssh_url_to_repo"`
	}
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return &domain.ProjectInfo{ID: out.ID, SSHURL: out.SSHURL}, nil
}

// DeleteProject removes a project.
func (c *Client) DeleteProject(ctx context.Context, projectID int64) error {
	resp, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("projects/%d", projectID), nil)
	if err != nil {
		return err
	}
	discard(resp)
	return nil
}

type createHookRequest struct {
	URL        string `json:"url"`
	PushEvents bool   `json:"push_events"`
	Token      string `json:"token"`
}

// CreateProjectHook registers a push-event webhook on a project.
func (c *Client) CreateProjectHook(ctx context.Context, projectID int64, hookURL, token string) error {
	resp, err := c.do(ctx, http.MethodPost, fmt.Sprintf("projects/%d/hooks", projectID), createHookRequest{
		URL:        hookURL,
		PushEvents: true,
		Token:      token,
	})
	if err != nil {
		return err
	}
	discard(resp)
	return nil
}

// ProtectAllBranches marks every branch of a project protected, which blocks
// force pushes.
func (c *Client) ProtectAllBranches(ctx context.Context, projectID int64) error {
	resp, err := c.do(ctx, http.MethodPost, fmt.Sprintf("projects/%d/protected_branches?name=*", projectID), nil)
	if err != nil {
		return err
	}
	discard(resp)
	return nil
}

type addProjectMemberRequest struct {
	UserID      int64  `json:"user_id"`
	AccessLevel int    `json:"access_level"`
	ExpiresAt   string `json:"expires_at"`
}

// AddProjectMember grants a user access to a project until expiresAt.
func (c *Client) AddProjectMember(ctx context.Context, projectID, userID int64, accessLevel int, expiresAt string) error {
	resp, err := c.do(ctx, http.MethodPost, fmt.Sprintf("projects/%d/members", projectID), addProjectMemberRequest{
		UserID:      userID,
		AccessLevel: accessLevel,
		ExpiresAt:   expiresAt,
	})
	if err != nil {
		return err
	}
	discard(resp)
	return nil
}

type addGroupMemberRequest struct {
	UserID      int64 `json:"user_id"`
	AccessLevel int   `json:"access_level"`
}

// AddGroupMember grants a user access to a group.
func (c *Client) AddGroupMember(ctx context.Context, groupID, userID int64, accessLevel int) error {
	resp, err := c.do(ctx, http.MethodPost, fmt.Sprintf("groups/%d/members", groupID), addGroupMemberRequest{
		UserID:      userID,
		AccessLevel: accessLevel,
	})
	if err != nil {
		return err
	}
	discard(resp)
	return nil
}

type createUserRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// CreateUser provisions an account and returns its upstream ID.
func (c *Client) CreateUser(ctx context.Context, email, username, name, password string) (int64, error) {
	resp, err := c.do(ctx, http.MethodPost, "users", createUserRequest{
		Email:    email,
		Username: username,
		Password: password,
		Name:     name,
	})
	if err != nil {
		return 0, err
	}
	var out struct {
		ID int64 `json:"id"`
	}
	if err := decode(resp, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

// RemoveAllKeys deletes every SSH key registered for a user.
func (c *Client) RemoveAllKeys(ctx context.Context, userID int64) error {
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("users/%d/keys", userID), nil)
	if err != nil {
		return err
	}
	var keys []struct {
		ID int64 `json:"id"`
	}
	if err := decode(resp, &keys); err != nil {
		return err
	}
	for _, k := range keys {
		resp, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("users/%d/keys/%d", userID, k.ID), nil)
		if err != nil {
			return err
		}
		discard(resp)
	}
	return nil
}

type addKeyRequest struct {
	Title string `json:"title"`
	Key   string `json:"key"`
}

// AddKey registers an SSH key for a user.
func (c *Client) AddKey(ctx context.Context, userID int64, title, key string) error {
	resp, err := c.do(ctx, http.MethodPost, fmt.Sprintf("users/%d/keys", userID), addKeyRequest{
		Title: title,
		Key:   key,
	})
	if err != nil {
		return err
	}
	discard(resp)
	return nil
}

// DownloadArchive fetches a repository archive in the requested format. The
// response body is left open for streaming; the caller must close it.
func (c *Client) DownloadArchive(ctx context.Context, projectID int64, format string) (*http.Response, error) {
	path := fmt.Sprintf("projects/%d/repository/archive.%s", projectID, url.PathEscape(format))
	return c.do(ctx, http.MethodGet, path, nil)
}

// ListCommits fetches a commit page. An empty pageURL starts at the first
// page; otherwise pageURL is a continuation previously issued by upstream
// and is followed verbatim. The response body is left open for streaming.
func (c *Client) ListCommits(ctx context.Context, projectID int64, pageURL string) (*http.Response, error) {
	path := pageURL
	if path == "" {
		path = fmt.Sprintf("projects/%d/repository/commits?per_page=100", projectID)
	}
	return c.do(ctx, http.MethodGet, path, nil)
}

// Ping probes the instance health endpoint, which lives outside the API
// prefix.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "../../-/health", nil)
	if err != nil {
		return err
	}
	discard(resp)
	return nil
}
