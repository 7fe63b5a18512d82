package models

import "gorm.io/gorm"

type Course struct {
	gorm.Model
	Title       string `json:"title"`
	Description string `json:"description"`
	Capacity    uint   `json:"capacity" gorm:"not null"` // Seat ceiling, always >= 1
	IsDeleted   bool   `gorm:"default:false"`
}
