package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/kentxun/anymind/internal/client/models"
	"github.com/kentxun/anymind/internal/common"
	"github.com/kentxun/anymind/internal/netx"
	"github.com/kentxun/anymind/internal/protocol"
	"github.com/kentxun/anymind/internal/timex"
)

// HTTPError is a non-2xx answer from the remote.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

func (e *HTTPError) Is(target error) bool {
	switch target {
	case common.ErrTransport:
		return true
	case common.ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case common.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

type HTTPClient struct {
	http *http.Client
}

// NewHTTPClient returns a transport whose requests time out after timeout
// (common.DefaultHTTPTimeout when zero).
func NewHTTPClient(timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = common.DefaultHTTPTimeout
	}
	return &HTTPClient{http: &http.Client{Timeout: timeout}}
}

func (c *HTTPClient) post(ctx context.Context, base, path string, in, out any) error {
	err := netx.PostJSON(ctx, c.http, netx.JoinURL(base, path), in, out)
	if err == nil {
		return nil
	}
	var se *netx.StatusError
	if errors.As(err, &se) {
		return &HTTPError{StatusCode: se.StatusCode, Body: se.Body}
	}
	return fmt.Errorf("%w: %s: %w", common.ErrTransport, path, err)
}

func (c *HTTPClient) Push(ctx context.Context, creds Credentials, changes []models.LocalChange) (*models.PushOutcome, error) {
	req := protocol.PushRequest{
		SpaceID:     creds.SpaceID,
		SpaceSecret: creds.SpaceSecret,
		DeviceID:    creds.DeviceID,
		Changes:     make([]protocol.SyncChange, 0, len(changes)),
	}
	for _, ch := range changes {
		req.Changes = append(req.Changes, protocol.SyncChange{
			ID:         ch.ID,
			Content:    ch.Content,
			SystemTags: nonNil(ch.SystemTags),
			UserTags:   nonNil(ch.UserTags),
			CreatedAt:  timex.Format(ch.CreatedAt),
			UpdatedAt:  timex.Format(ch.UpdatedAt),
			Deleted:    ch.Deleted,
			BaseRev:    ch.BaseRev,
		})
	}

	var resp protocol.PushResponse
	if err := c.post(ctx, creds.ServerURL, protocol.PathPush, req, &resp); err != nil {
		return nil, err
	}

	out := &models.PushOutcome{ServerRevMax: resp.ServerRevMax, Acks: make([]models.PushAck, 0, len(resp.Results))}
	for _, r := range resp.Results {
		out.Acks = append(out.Acks, models.PushAck{
			ID:              r.ID,
			ServerRev:       r.ServerRev,
			ServerUpdatedAt: timex.Parse(r.ServerUpdatedAt),
			Conflict:        r.Conflict,
		})
	}
	return out, nil
}

func (c *HTTPClient) Pull(ctx context.Context, creds Credentials, sinceRev int64, limit int) (*models.PullPage, error) {
	req := protocol.PullRequest{
		SpaceID:     creds.SpaceID,
		SpaceSecret: creds.SpaceSecret,
		SinceRev:    sinceRev,
		Limit:       limit,
	}

	var resp protocol.PullResponse
	if err := c.post(ctx, creds.ServerURL, protocol.PathPull, req, &resp); err != nil {
		return nil, err
	}

	out := &models.PullPage{ServerRevMax: resp.ServerRevMax, Changes: make([]models.RemoteChange, 0, len(resp.Changes))}
	for _, ch := range resp.Changes {
		out.Changes = append(out.Changes, models.RemoteChange{
			ID:         ch.ID,
			Content:    ch.Content,
			SystemTags: nonNil(ch.SystemTags),
			UserTags:   nonNil(ch.UserTags),
			CreatedAt:  timex.Parse(ch.CreatedAt),
			UpdatedAt:  timex.Parse(ch.UpdatedAt),
			Deleted:    ch.Deleted,
			ServerRev:  ch.ServerRev,
		})
	}
	return out, nil
}

func (c *HTTPClient) CreateSpace(ctx context.Context, serverURL, name string) (*models.Space, error) {
	var resp protocol.SpaceCreateResponse
	if err := c.post(ctx, serverURL, protocol.PathSpaces, protocol.SpaceCreateRequest{Name: name}, &resp); err != nil {
		return nil, err
	}
	if resp.SpaceID == "" || resp.SpaceSecret == "" {
		return nil, fmt.Errorf("%w: %s: response without credentials", common.ErrTransport, protocol.PathSpaces)
	}
	return &models.Space{ID: resp.SpaceID, Secret: resp.SpaceSecret, CreatedAt: timex.Parse(resp.CreatedAt)}, nil
}

// Ping checks the remote's health endpoint.
func (c *HTTPClient) Ping(ctx context.Context, serverURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, netx.JoinURL(serverURL, protocol.PathHealth), nil)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", common.ErrTransport, protocol.PathHealth, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", common.ErrTransport, protocol.PathHealth, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &HTTPError{StatusCode: resp.StatusCode}
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
