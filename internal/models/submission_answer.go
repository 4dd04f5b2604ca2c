package models

import "github.com/shopspring/decimal"

// SubmissionAnswer holds one answer of a submission. The answer content is
// immutable after creation; only the grading fields are written afterwards,
// exactly once, by the grading pipeline. Questions and choices referenced by
// answers are protected from deletion to preserve audit history.
type SubmissionAnswer struct {
	ID               uint             `gorm:"primaryKey" json:"id"`
	SubmissionID     uint             `gorm:"not null;uniqueIndex:uniq_submission_question" json:"submission_id"`
	QuestionID       uint             `gorm:"not null;uniqueIndex:uniq_submission_question" json:"question_id"`
	AnswerText       string           `gorm:"type:text" json:"answer_text"`
	SelectedChoiceID *uint            `json:"selected_choice_id"`
	IsCorrect        *bool            `json:"is_correct"`
	AwardedPoints    *decimal.Decimal `gorm:"type:decimal(6,2)" json:"awarded_points"`
	Feedback         string           `gorm:"type:text" json:"feedback"`
	Question         Question         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"question"`
	SelectedChoice   *Choice          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"selected_choice"`
}
