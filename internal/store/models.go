package store

import (
	"time"

	"github.com/google/uuid"
)

// TaskState is the lifecycle state of a single delivery attempt record.
// See the state machine in spec.md §4.5: pending -> {done, retrying},
// retrying -> {done, retrying}, * -> fail. done and fail are terminal.
type TaskState string

const (
	TaskPending  TaskState = "pending"
	TaskRetrying TaskState = "retrying"
	TaskFail     TaskState = "fail"
	TaskDone     TaskState = "done"
)

// TransportType enumerates the transports a user can bind. Telegram is the
// only one wired today; the set is intentionally closed (spec.md §9).
type TransportType string

const (
	TransportTelegram TransportType = "telegram"
)

// User is the account created on first successful wallet auth.
type User struct {
	ID            int64
	OpenID        uuid.UUID
	ProjectID     string
	WalletAddress string
	CreationTime  time.Time
}

// Transport is a user's binding to an external messaging channel.
// Deliverable iff Connected && ChatID is non-nil and non-empty (spec.md §3).
type Transport struct {
	ID           int64
	UserID       int64
	Type         TransportType
	ChatID       *string
	Username     *string
	Connected    bool
	CreationTime time.Time
}

func (t *Transport) Deliverable() bool {
	return t.Connected && t.ChatID != nil && *t.ChatID != ""
}

// Message is the immutable titled text a user pushed.
type Message struct {
	ID           int64
	UserID       int64
	Title        string
	Content      string
	CreationTime time.Time
}

// Task is one scheduled attempt to deliver one message through one
// transport. TransportType/ChatID are denormalized snapshots taken at
// enqueue time so a later rebind does not alter in-flight work.
type Task struct {
	ID            int64
	MessageID     int64
	UserID        int64
	TransportID   int64
	TransportType TransportType
	ChatID        string
	State         TaskState
	RetryCount    int
	Reason        *string
	CreationTime  time.Time
}

// Token records an access token issued for a user. The wire contract for
// the bearer token is purely stateless (spec.md §6); this table is a
// supplemented, auditable record of what was issued, grounded on
// original_source/src/model/token.rs.
type Token struct {
	ID           int64
	UserID       int64
	AccessToken  string
	CreationTime time.Time
}
