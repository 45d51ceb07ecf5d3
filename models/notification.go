package models

import (
	"time"
)

const (
	SeveritySuccess = "success"
	SeverityError   = "error"
)

// Notification is the single banner a screen component shows at a time.
// Blocking notifications stay until dismissed; transient ones expire.
type Notification struct {
	Severity  string     `json:"severity"`
	Message   string     `json:"message"`
	Blocking  bool       `json:"blocking"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Active reports whether the banner is still on screen at now.
func (n *Notification) Active(now time.Time) bool {
	if n == nil {
		return false
	}
	if n.ExpiresAt == nil {
		return true
	}
	return now.Before(*n.ExpiresAt)
}

// ActivityLog is the operator audit trail of screen operations.
type ActivityLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Component  string    `gorm:"type:varchar(20);not null;index:idx_component_instance" json:"component"`
	InstanceID string    `gorm:"type:varchar(36);not null;index:idx_component_instance" json:"instance_id"`
	Action     string    `gorm:"type:varchar(50);not null" json:"action"`
	Severity   string    `gorm:"type:varchar(20);not null" json:"severity"`
	Message    string    `gorm:"type:text;not null" json:"message"`
	CreatedAt  time.Time `gorm:"not null;index" json:"created_at"`
}
