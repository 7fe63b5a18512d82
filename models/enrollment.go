package models

import (
	"gorm.io/gorm"
)

// Enrollment status values. An enrollment is created PENDING and moves
// exactly once to APPROVED or REJECTED.
const (
	EnrollmentPending  = "PENDING"
	EnrollmentApproved = "APPROVED"
	EnrollmentRejected = "REJECTED"
)

type Enrollment struct {
	gorm.Model
	CourseID      uint   `json:"course_id" gorm:"index;not null"`
	FullName      string `json:"full_name" gorm:"not null"`
	Email         string `json:"email" gorm:"index;not null"`
	TransactionID string `json:"transaction_id" gorm:"not null"` // Payment reference supplied by the applicant
	Status        string `json:"status" gorm:"default:'PENDING';index"`
	Course        Course `json:"-" gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`
}
