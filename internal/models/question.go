package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	// QuestionTypeMCQ marks a closed-form multiple choice question.
	QuestionTypeMCQ = "MCQ"
	// QuestionTypeShortText marks an open-form free text question.
	QuestionTypeShortText = "SHORT_TEXT"
)

// Question is a gradable exam item. ExpectedAnswer is the grading rubric and
// is never exposed to students.
type Question struct {
	ID             uint              `gorm:"primaryKey" json:"id"`
	ExamID         uint              `gorm:"not null;index:idx_exam_order" json:"exam_id"`
	Type           string            `gorm:"size:32;not null" json:"type"`
	Prompt         string            `gorm:"type:text;not null" json:"prompt"`
	ExpectedAnswer string            `gorm:"type:text" json:"-"`
	Points         decimal.Decimal   `gorm:"type:decimal(6,2);not null;default:1" json:"points"`
	DisplayOrder   uint              `gorm:"not null;default:0;index:idx_exam_order" json:"order"`
	Metadata       datatypes.JSONMap `json:"metadata"`
	Choices        []Choice          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"choices"`
}

// CorrectChoice returns the first choice flagged correct, or nil when none is.
func (q Question) CorrectChoice() *Choice {
	for i := range q.Choices {
		if q.Choices[i].IsCorrect {
			return &q.Choices[i]
		}
	}
	return nil
}
