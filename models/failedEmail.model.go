package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// FailedEmailAttempt is a durable record of a notification that could
// not be delivered. The sweep in utils redrives these with a bounded
// retry count. Back-references are audit-only: deleting the enrollment
// or user nulls them without touching the retry record.
type FailedEmailAttempt struct {
	gorm.Model
	Type         string         `gorm:"not null" json:"type"` // Template name, e.g. password-setup
	Recipient    string         `gorm:"not null" json:"recipient"`
	Data         datatypes.JSON `json:"data"` // Serialized template payload
	RetryCount   int            `gorm:"default:0" json:"retry_count"`
	LastRetry    *time.Time     `json:"last_retry"`
	EnrollmentID *uint          `json:"enrollment_id,omitempty"`
	UserID       *uint          `json:"user_id,omitempty"`
	Enrollment   *Enrollment    `json:"-" gorm:"foreignKey:EnrollmentID;constraint:OnDelete:SET NULL"`
	User         *User          `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL"`
}
