package activity

import "time"

// ActivityType represents the type of activity event
type ActivityType string

const (
	TypeRecordCreated  ActivityType = "record_created"
	TypeRecordUpdated  ActivityType = "record_updated"
	TypeRecordDeleted  ActivityType = "record_deleted"
	TypeLoginSucceeded ActivityType = "login_succeeded"
	TypeLoginFailed    ActivityType = "login_failed"
	TypeLoginThrottled ActivityType = "login_throttled"
	TypeLogout         ActivityType = "logout"
	TypeSessionExpired ActivityType = "session_expired"
	TypeBackupCreated  ActivityType = "backup_created"
	TypeBackupFailed   ActivityType = "backup_failed"
)

// ActivityEntry represents an event in the activity log
type ActivityEntry struct {
	ID           int64        `json:"id"`
	ActivityType ActivityType `json:"type"`
	EntityType   string       `json:"entity_type,omitempty"`
	RecordID     *string      `json:"record_id,omitempty"`
	Actor        string       `json:"actor,omitempty"`
	Summary      string       `json:"summary"`
	Details      string       `json:"details,omitempty"` // JSON string
	CreatedAt    time.Time    `json:"created_at"`
}

// ListActivityOptions provides filtering options for listing activity.
type ListActivityOptions struct {
	EntityType   string
	RecordID     *string
	ActivityType *ActivityType
	Limit        int
	Offset       int
}
