package models

import (
	"time"
)

// PasswordSetupToken lets a newly approved student set their first
// password. One live token per email: issuing again overwrites the
// previous row, so an old link simply stops matching. Rows are hard
// deleted on consumption or expiry, so no soft-delete column here.
type PasswordSetupToken struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Token     string    `gorm:"uniqueIndex;not null" json:"-"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
