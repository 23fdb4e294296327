// Package backend implements the client that relays authenticated push
// callbacks to the course backend.
package backend

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

const maxErrorBody = 4 << 10

var _ domain.EventForwarder = (*Client)(nil)

// Client posts push events to a single backend endpoint. Delivery is
// at-most-once: a failed forward is reported to the caller, never retried.
type Client struct {
	endpoint   *url.URL
	authHeader string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a Client. authHeader, when non-empty, is sent as the
// Authorization header on every forward.
func New(endpoint *url.URL, authHeader string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{endpoint: endpoint, authHeader: authHeader, httpClient: httpClient, logger: logger}
}

// ForwardPush delivers one push event to the backend.
func (c *Client) ForwardPush(ctx context.Context, evt domain.PushEvent) error {
	buf, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode push event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint.String(), bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("build forward request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.authHeader != "" {
		req.Header.Set("Authorization", c.authHeader)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("forward push event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.WarnContext(ctx, "backend rejected push event",
			"status", resp.StatusCode, "course_uid", evt.CourseUID, "assignment_uid", evt.AssignmentUID)
		return domain.ErrUpstream(resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
