package models

import "time"

// RemoteChange is a decoded pull entry: the remote's current state of one
// record at ServerRev.
type RemoteChange struct {
	ID         string
	Content    string
	SystemTags []string
	UserTags   []string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Deleted    bool
	ServerRev  int64
}

// LocalChange is one pending record as sent to the remote. Deleted is also
// set for records waiting for a cloud delete.
type LocalChange struct {
	ID         string
	Content    string
	SystemTags []string
	UserTags   []string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Deleted    bool
	BaseRev    *int64
}

// PushAck is the remote's verdict on one pushed change.
type PushAck struct {
	ID              string
	ServerRev       int64
	ServerUpdatedAt time.Time
	Conflict        bool
}

type PushOutcome struct {
	Acks         []PushAck
	ServerRevMax int64
}

type PullPage struct {
	Changes      []RemoteChange
	ServerRevMax int64
}

// Space is a freshly created remote space.
type Space struct {
	ID        string
	Secret    string
	CreatedAt time.Time
}
