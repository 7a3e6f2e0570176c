package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kentxun/anymind/internal/common"
	"github.com/kentxun/anymind/internal/logging"
	"github.com/kentxun/anymind/internal/protocol"
	"github.com/kentxun/anymind/internal/server/config"
	"github.com/kentxun/anymind/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var serverNow = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

type fakeSpaces struct {
	created   *models.Space
	secret    string
	createErr error
	authErr   error
	gotName   string
}

func (f *fakeSpaces) Create(_ context.Context, name string) (*models.Space, string, error) {
	f.gotName = name
	if f.createErr != nil {
		return nil, "", f.createErr
	}
	return f.created, f.secret, nil
}

func (f *fakeSpaces) Authenticate(_ context.Context, id, secret string) (*models.Space, error) {
	if id == "" || secret == "" {
		return nil, common.ErrInvalidRequest
	}
	if f.authErr != nil {
		return nil, f.authErr
	}
	return &models.Space{ID: id}, nil
}

type fakeSync struct {
	pushed   []models.IncomingChange
	deviceID string
	results  []models.PushResult
	records  []*models.Record
	maxRev   int64
	since    int64
	limit    int
	err      error
}

func (f *fakeSync) Push(_ context.Context, _ string, deviceID string, in []models.IncomingChange) ([]models.PushResult, int64, error) {
	f.pushed, f.deviceID = in, deviceID
	return f.results, f.maxRev, f.err
}

func (f *fakeSync) Pull(_ context.Context, _ string, since int64, limit int) ([]*models.Record, int64, error) {
	f.since, f.limit = since, limit
	return f.records, f.maxRev, f.err
}

func newTestServer(sp *fakeSpaces, sy *fakeSync) http.Handler {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	return NewServer(cfg, logging.Discard(), sp, sy).Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(&fakeSpaces{}, &fakeSync{}), http.MethodGet, protocol.PathHealth, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestCreateSpace(t *testing.T) {
	sp := &fakeSpaces{created: &models.Space{ID: "spc_a", CreatedAt: serverNow}, secret: "sec_b"}
	h := newTestServer(sp, &fakeSync{})

	rec := do(t, h, http.MethodPost, protocol.PathSpaces, `{"name":"team"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[protocol.SpaceCreateResponse](t, rec)
	assert.Equal(t, "spc_a", resp.SpaceID)
	assert.Equal(t, "sec_b", resp.SpaceSecret)
	assert.Equal(t, "2024-03-01T09:30:00.000000000Z", resp.CreatedAt)
	assert.Equal(t, "team", sp.gotName)

	rec = do(t, h, http.MethodPost, protocol.PathSpaces, "")
	assert.Equal(t, http.StatusOK, rec.Code, "empty body creates an unnamed space")
	assert.Empty(t, sp.gotName)

	rec = do(t, h, http.MethodPost, protocol.PathSpaces, `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	sp.createErr = errors.New("db down")
	rec = do(t, h, http.MethodPost, protocol.PathSpaces, `{}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())
}

func TestPush(t *testing.T) {
	sy := &fakeSync{
		results: []models.PushResult{{ID: "r1", ServerRev: 7, ServerUpdatedAt: serverNow, Conflict: true}},
		maxRev:  7,
	}
	h := newTestServer(&fakeSpaces{}, sy)

	body := `{"space_id":"spc_1","space_secret":"sec_1","device_id":"dev",
		"changes":[{"id":"r1","content":"x #p1","system_tags":["#p1"],"user_tags":[],
		"created_at":"2024-01-01T00:00:00.000Z","updated_at":"2024-01-02T00:00:00.000Z",
		"deleted":false,"base_rev":3}]}`
	rec := do(t, h, http.MethodPost, protocol.PathPush, body)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, sy.pushed, 1)
	assert.Equal(t, "dev", sy.deviceID)
	assert.Equal(t, "x #p1", sy.pushed[0].Content)
	require.NotNil(t, sy.pushed[0].BaseRev)
	assert.Equal(t, int64(3), *sy.pushed[0].BaseRev)

	resp := decodeBody[protocol.PushResponse](t, rec)
	assert.Equal(t, int64(7), resp.ServerRevMax)
	assert.Equal(t, []protocol.PushResult{{ID: "r1", ServerRev: 7, ServerUpdatedAt: "2024-03-01T09:30:00.000000000Z", Conflict: true}}, resp.Results)
}

func TestPull(t *testing.T) {
	sy := &fakeSync{
		records: []*models.Record{{ID: "a", Content: "hi", ServerRev: 4, ServerUpdatedAt: serverNow, Deleted: true}},
		maxRev:  9,
	}
	h := newTestServer(&fakeSpaces{}, sy)

	rec := do(t, h, http.MethodPost, protocol.PathPull, `{"space_id":"spc_1","space_secret":"sec_1","since_rev":3,"limit":50}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(3), sy.since)
	assert.Equal(t, 50, sy.limit)

	resp := decodeBody[protocol.PullResponse](t, rec)
	assert.Equal(t, int64(9), resp.ServerRevMax)
	require.Len(t, resp.Changes, 1)
	assert.True(t, resp.Changes[0].Deleted)
	assert.Equal(t, []string{}, resp.Changes[0].SystemTags)
	assert.Contains(t, rec.Body.String(), `"user_tags":[]`)
}

func TestPull_EmptyChangesIsArray(t *testing.T) {
	h := newTestServer(&fakeSpaces{}, &fakeSync{})
	rec := do(t, h, http.MethodPost, protocol.PathPull, `{"space_id":"spc_1","space_secret":"sec_1","since_rev":0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"changes":[],"server_rev_max":0}`, rec.Body.String())
}

func TestSyncErrors(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		body    string
		authErr error
		syncErr error
		status  int
	}{
		{name: "malformed push", path: protocol.PathPush, body: `{"space_id":`, status: http.StatusBadRequest},
		{name: "malformed pull", path: protocol.PathPull, body: `[]`, status: http.StatusBadRequest},
		{name: "missing secret", path: protocol.PathPush, body: `{"space_id":"spc_1"}`, status: http.StatusBadRequest},
		{name: "missing space id", path: protocol.PathPull, body: `{"space_secret":"sec"}`, status: http.StatusBadRequest},
		{name: "unknown space", path: protocol.PathPull, body: `{"space_id":"spc_x","space_secret":"sec"}`, authErr: common.ErrNotFound, status: http.StatusNotFound},
		{name: "wrong secret", path: protocol.PathPush, body: `{"space_id":"spc_1","space_secret":"bad"}`, authErr: common.ErrUnauthorized, status: http.StatusUnauthorized},
		{name: "invalid change", path: protocol.PathPush, body: `{"space_id":"spc_1","space_secret":"sec","changes":[{}]}`, syncErr: common.ErrInvalidRequest, status: http.StatusBadRequest},
		{name: "storage failure", path: protocol.PathPull, body: `{"space_id":"spc_1","space_secret":"sec"}`, syncErr: errors.New("db down"), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(&fakeSpaces{authErr: tt.authErr}, &fakeSync{err: tt.syncErr})
			rec := do(t, h, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code)
			resp := decodeBody[protocol.ErrorResponse](t, rec)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	rec := do(t, newTestServer(&fakeSpaces{}, &fakeSync{}), http.MethodGet, protocol.PathPush, "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
