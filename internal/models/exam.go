package models

import (
	"time"

	"gorm.io/datatypes"
)

// Exam is a scheduled assessment containing ordered questions.
//
// IsActive deliberately carries no column default: gorm skips zero-valued
// fields that have a default tag on insert, which would turn an explicit
// false into true.
type Exam struct {
	ID              uint              `gorm:"primaryKey" json:"id"`
	Title           string            `gorm:"size:255;not null" json:"title"`
	DurationMinutes uint              `gorm:"not null" json:"duration_minutes"`
	CourseID        uint              `gorm:"not null" json:"course_id"`
	Metadata        datatypes.JSONMap `json:"metadata"`
	IsActive        bool              `gorm:"not null" json:"is_active"`
	StartsAt        *time.Time        `json:"starts_at"`
	EndsAt          *time.Time        `json:"ends_at"`
	CreatedAt       time.Time         `json:"created_at"`
	Course          Course            `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"course"`
	Questions       []Question        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"questions"`
}

// IsOpen reports whether the exam accepts submissions at the given instant.
func (e Exam) IsOpen(now time.Time) bool {
	if !e.IsActive {
		return false
	}
	if e.StartsAt != nil && now.Before(*e.StartsAt) {
		return false
	}
	if e.EndsAt != nil && now.After(*e.EndsAt) {
		return false
	}
	return true
}
