package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSyncChange_WireNames(t *testing.T) {
	rev := int64(5)
	b, err := json.Marshal(PushRequest{
		SpaceID:     "spc_1",
		SpaceSecret: "sec_1",
		DeviceID:    "dev",
		Changes: []SyncChange{{
			ID: "r1", Content: "x", SystemTags: []string{"#temp"}, UserTags: []string{},
			CreatedAt: "c", UpdatedAt: "u", BaseRev: &rev,
		}},
	})
	require.NoError(t, err)

	for _, key := range []string{`"space_id"`, `"space_secret"`, `"device_id"`, `"system_tags"`, `"user_tags"`, `"created_at"`, `"updated_at"`, `"base_rev":5`} {
		require.Contains(t, string(b), key)
	}
}

func TestSyncChange_NullBaseRev(t *testing.T) {
	b, err := json.Marshal(SyncChange{ID: "r1"})
	require.NoError(t, err)
	require.Contains(t, string(b), `"base_rev":null`)
}

func TestPullResponse_Decode(t *testing.T) {
	raw := `{"changes":[{"id":"a","content":"hi","system_tags":["#p1"],"user_tags":[],
		"created_at":"2024-01-01T00:00:00Z","updated_at":"2024-01-02T00:00:00Z",
		"deleted":true,"server_rev":7,"server_updated_at":"2024-01-02T00:00:01Z"}],"server_rev_max":9}`

	var resp PullResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))
	require.Equal(t, int64(9), resp.ServerRevMax)
	require.Len(t, resp.Changes, 1)
	require.True(t, resp.Changes[0].Deleted)
	require.Equal(t, int64(7), resp.Changes[0].ServerRev)
	require.Equal(t, []string{"#p1"}, resp.Changes[0].SystemTags)
}
