package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Name      string     `gorm:"default:''"`
	Email     string     `gorm:"unique;not null"`
	Role      string     `gorm:"default:'STUDENT'"` // STUDENT, ADMIN
	Password  string     `gorm:"not null" json:"-"`
	LastLogin *time.Time `gorm:"default:NULL"`
	IsDeleted bool       `gorm:"default:false"`
}
