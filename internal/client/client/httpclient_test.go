package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kentxun/anymind/internal/client/models"
	"github.com/kentxun/anymind/internal/common"
	"github.com/kentxun/anymind/internal/protocol"
	"github.com/kentxun/anymind/internal/timex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var creds = Credentials{SpaceID: "spc_1", SpaceSecret: "sec_1", DeviceID: "dev-1"}

func serve(t *testing.T, path string, h func(t *testing.T, body []byte) (int, any)) Credentials {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, path, r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var raw json.RawMessage
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		code, out := h(t, raw)
		w.WriteHeader(code)
		switch v := out.(type) {
		case string:
			_, _ = w.Write([]byte(v))
		default:
			_ = json.NewEncoder(w).Encode(v)
		}
	}))
	t.Cleanup(srv.Close)
	c := creds
	c.ServerURL = srv.URL + "/"
	return c
}

func TestPush_EncodesWireFormat(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	rev := int64(3)

	c := serve(t, protocol.PathPush, func(t *testing.T, body []byte) (int, any) {
		var m map[string]any
		assert.NoError(t, json.Unmarshal(body, &m))
		assert.Equal(t, "spc_1", m["space_id"])
		assert.Equal(t, "sec_1", m["space_secret"])
		assert.Equal(t, "dev-1", m["device_id"])

		changes := m["changes"].([]any)
		assert.Len(t, changes, 2)
		first := changes[0].(map[string]any)
		assert.Equal(t, "r1", first["id"])
		assert.Equal(t, []any{"#p1"}, first["system_tags"])
		assert.Equal(t, []any{}, first["user_tags"])
		assert.Equal(t, "2024-01-02T03:04:05.000000000Z", first["created_at"])
		assert.Equal(t, float64(3), first["base_rev"])
		second := changes[1].(map[string]any)
		assert.Nil(t, second["base_rev"])
		assert.Equal(t, true, second["deleted"])

		return http.StatusOK, protocol.PushResponse{
			Results: []protocol.PushResult{
				{ID: "r1", ServerRev: 7, ServerUpdatedAt: "2024-01-02T03:04:06Z", Conflict: true},
				{ID: "r2", ServerRev: 8, ServerUpdatedAt: "garbage"},
			},
			ServerRevMax: 8,
		}
	})

	out, err := NewHTTPClient(time.Second).Push(context.Background(), c, []models.LocalChange{
		{ID: "r1", Content: "x #p1", SystemTags: []string{"#p1"}, CreatedAt: created, UpdatedAt: created, BaseRev: &rev},
		{ID: "r2", Deleted: true, CreatedAt: created, UpdatedAt: created},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(8), out.ServerRevMax)
	require.Len(t, out.Acks, 2)
	assert.True(t, out.Acks[0].Conflict)
	assert.Equal(t, int64(7), out.Acks[0].ServerRev)
	assert.True(t, out.Acks[0].ServerUpdatedAt.Equal(created.Add(time.Second)))
	assert.True(t, out.Acks[1].ServerUpdatedAt.Equal(timex.Epoch), "bad timestamps fall back to epoch")
}

func TestPull_DecodesChanges(t *testing.T) {
	c := serve(t, protocol.PathPull, func(t *testing.T, body []byte) (int, any) {
		var req protocol.PullRequest
		assert.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, int64(4), req.SinceRev)
		assert.Equal(t, 50, req.Limit)
		return http.StatusOK, `{"changes":[{"id":"a","content":"hi","system_tags":null,"user_tags":["#x"],
			"created_at":"2024-02-01T00:00:00Z","updated_at":"","deleted":false,"server_rev":5}],"server_rev_max":9}`
	})

	page, err := NewHTTPClient(0).Pull(context.Background(), c, 4, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(9), page.ServerRevMax)
	require.Len(t, page.Changes, 1)
	ch := page.Changes[0]
	assert.Equal(t, "a", ch.ID)
	assert.Equal(t, []string{}, ch.SystemTags)
	assert.Equal(t, []string{"#x"}, ch.UserTags)
	assert.True(t, ch.CreatedAt.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, ch.UpdatedAt.Equal(timex.Epoch))
	assert.Equal(t, int64(5), ch.ServerRev)
}

func TestErrors(t *testing.T) {
	t.Run("unauthorized", func(t *testing.T) {
		c := serve(t, protocol.PathPull, func(*testing.T, []byte) (int, any) {
			return http.StatusUnauthorized, protocol.ErrorResponse{Error: "invalid space secret"}
		})
		_, err := NewHTTPClient(time.Second).Pull(context.Background(), c, 0, 10)
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrTransport)
		assert.ErrorIs(t, err, common.ErrUnauthorized)

		var he *HTTPError
		require.True(t, errors.As(err, &he))
		assert.Equal(t, 401, he.StatusCode)
		assert.Contains(t, he.Error(), "invalid space secret")
	})

	t.Run("server error", func(t *testing.T) {
		c := serve(t, protocol.PathPush, func(*testing.T, []byte) (int, any) {
			return http.StatusInternalServerError, ""
		})
		_, err := NewHTTPClient(time.Second).Push(context.Background(), c, nil)
		assert.ErrorIs(t, err, common.ErrTransport)
		assert.NotErrorIs(t, err, common.ErrUnauthorized)
		assert.Equal(t, "HTTP 500", err.Error())
	})

	t.Run("unknown space", func(t *testing.T) {
		c := serve(t, protocol.PathPush, func(*testing.T, []byte) (int, any) {
			return http.StatusNotFound, protocol.ErrorResponse{Error: "space not found"}
		})
		_, err := NewHTTPClient(time.Second).Push(context.Background(), c, nil)
		assert.ErrorIs(t, err, common.ErrNotFound)
		assert.NotErrorIs(t, err, common.ErrUnauthorized)
	})

	t.Run("malformed body", func(t *testing.T) {
		c := serve(t, protocol.PathPull, func(*testing.T, []byte) (int, any) {
			return http.StatusOK, "{not json"
		})
		_, err := NewHTTPClient(time.Second).Pull(context.Background(), c, 0, 10)
		assert.ErrorIs(t, err, common.ErrTransport)
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()
		_, err := NewHTTPClient(time.Second).CreateSpace(context.Background(), url, "")
		assert.ErrorIs(t, err, common.ErrTransport)
	})
}

func TestCreateSpace(t *testing.T) {
	c := serve(t, protocol.PathSpaces, func(t *testing.T, body []byte) (int, any) {
		assert.JSONEq(t, `{"name":"home"}`, string(body))
		return http.StatusOK, protocol.SpaceCreateResponse{SpaceID: "spc_a", SpaceSecret: "sec_b", CreatedAt: "2024-01-01T00:00:00Z"}
	})

	sp, err := NewHTTPClient(time.Second).CreateSpace(context.Background(), c.ServerURL, "home")
	require.NoError(t, err)
	assert.Equal(t, "spc_a", sp.ID)
	assert.Equal(t, "sec_b", sp.Secret)

	empty := serve(t, protocol.PathSpaces, func(t *testing.T, body []byte) (int, any) {
		assert.JSONEq(t, `{}`, string(body))
		return http.StatusOK, protocol.SpaceCreateResponse{}
	})
	_, err = NewHTTPClient(time.Second).CreateSpace(context.Background(), empty.ServerURL, "")
	assert.ErrorIs(t, err, common.ErrTransport)
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != protocol.PathHealth {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	require.NoError(t, NewHTTPClient(time.Second).Ping(context.Background(), srv.URL))
	err := NewHTTPClient(time.Second).Ping(context.Background(), srv.URL+"/nested")
	assert.ErrorIs(t, err, common.ErrTransport)
}
