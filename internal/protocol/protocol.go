// Package protocol defines the JSON documents exchanged between the client
// and the sync remote. Field names are snake_case and must stay stable for
// interoperability with existing remotes; timestamps travel as ISO-8601
// strings (see timex).
package protocol

// Paths served by the remote. All sync calls are POST.
const (
	PathPush   = "/sync/push"
	PathPull   = "/sync/pull"
	PathSpaces = "/spaces"
	PathHealth = "/health"
)

// SyncChange is one locally pending record sent in a push.
type SyncChange struct {
	ID         string   `json:"id"`
	Content    string   `json:"content"`
	SystemTags []string `json:"system_tags"`
	UserTags   []string `json:"user_tags"`
	CreatedAt  string   `json:"created_at"`
	UpdatedAt  string   `json:"updated_at"`
	Deleted    bool     `json:"deleted"`
	BaseRev    *int64   `json:"base_rev"`
}

type PushRequest struct {
	SpaceID     string       `json:"space_id"`
	SpaceSecret string       `json:"space_secret"`
	DeviceID    string       `json:"device_id"`
	Changes     []SyncChange `json:"changes"`
}

// PushResult reports the outcome for one pushed record.
type PushResult struct {
	ID              string `json:"id"`
	ServerRev       int64  `json:"server_rev"`
	ServerUpdatedAt string `json:"server_updated_at"`
	Conflict        bool   `json:"conflict"`
}

type PushResponse struct {
	Results      []PushResult `json:"results"`
	ServerRevMax int64        `json:"server_rev_max"`
}

type PullRequest struct {
	SpaceID     string `json:"space_id"`
	SpaceSecret string `json:"space_secret"`
	SinceRev    int64  `json:"since_rev"`
	Limit       int    `json:"limit"`
}

// PullChange is the remote's current state of one record.
type PullChange struct {
	ID              string   `json:"id"`
	Content         string   `json:"content"`
	SystemTags      []string `json:"system_tags"`
	UserTags        []string `json:"user_tags"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
	Deleted         bool     `json:"deleted"`
	ServerRev       int64    `json:"server_rev"`
	ServerUpdatedAt string   `json:"server_updated_at"`
}

type PullResponse struct {
	Changes      []PullChange `json:"changes"`
	ServerRevMax int64        `json:"server_rev_max"`
}

type SpaceCreateRequest struct {
	Name string `json:"name,omitempty"`
}

type SpaceCreateResponse struct {
	SpaceID     string `json:"space_id"`
	SpaceSecret string `json:"space_secret"`
	CreatedAt   string `json:"created_at"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	OK bool `json:"ok"`
}
