package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	// SubmissionStatusSubmitted indicates the submission is recorded but not graded.
	SubmissionStatusSubmitted = "submitted"
	// SubmissionStatusGraded indicates the submission has a final grade.
	SubmissionStatusGraded = "graded"
)

// Submission is one student's complete attempt at an exam. A student can
// submit each exam at most once, enforced by the composite unique index.
type Submission struct {
	ID             uint               `gorm:"primaryKey" json:"id"`
	StudentID      uint               `gorm:"not null;uniqueIndex:uniq_student_exam;index:idx_exam_student" json:"student_id"`
	ExamID         uint               `gorm:"not null;uniqueIndex:uniq_student_exam;index:idx_exam_student" json:"exam_id"`
	Status         string             `gorm:"size:16;not null;default:submitted" json:"status"`
	SubmittedAt    time.Time          `gorm:"autoCreateTime" json:"submitted_at"`
	GradedAt       *time.Time         `json:"graded_at"`
	Score          decimal.Decimal    `gorm:"type:decimal(8,2);not null;default:0" json:"score"`
	MaxScore       decimal.Decimal    `gorm:"type:decimal(8,2);not null;default:0" json:"max_score"`
	Feedback       datatypes.JSONMap  `json:"feedback"`
	GradingVersion string             `gorm:"size:64" json:"grading_version"`
	Exam           Exam               `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"exam"`
	Answers        []SubmissionAnswer `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"answers"`
}

// IsGraded reports whether the submission has a final grade.
func (s Submission) IsGraded() bool {
	return s.Status == SubmissionStatusGraded
}
