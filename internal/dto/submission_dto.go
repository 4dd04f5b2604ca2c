package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/examind/examind-api/internal/models"
)

// SubmissionAnswerInput is one answer of the submission payload.
type SubmissionAnswerInput struct {
	QuestionID       uint   `json:"question_id" validate:"required,gt=0"`
	SelectedChoiceID *uint  `json:"selected_choice_id" validate:"omitempty,gt=0"`
	AnswerText       string `json:"answer_text" validate:"omitempty,max=5000"`
}

// SubmissionCreateRequest is the payload for submitting an exam attempt.
type SubmissionCreateRequest struct {
	Answers []SubmissionAnswerInput `json:"answers" validate:"required,min=1,dive"`
}

// SubmissionListItem summarizes one submission in a student's listing.
type SubmissionListItem struct {
	ID             uint            `json:"id"`
	ExamID         uint            `json:"exam_id"`
	ExamTitle      string          `json:"exam_title"`
	CourseCode     string          `json:"course_code"`
	Status         string          `json:"status"`
	SubmittedAt    time.Time       `json:"submitted_at"`
	GradedAt       *time.Time      `json:"graded_at"`
	Score          decimal.Decimal `json:"score"`
	MaxScore       decimal.Decimal `json:"max_score"`
	GradingVersion string          `json:"grading_version"`
}

// SubmissionAnswerResult is one graded answer in the submission detail view.
type SubmissionAnswerResult struct {
	ID                 uint             `json:"id"`
	QuestionID         uint             `json:"question_id"`
	QuestionPrompt     string           `json:"question_prompt"`
	QuestionType       string           `json:"question_type"`
	MaxPoints          decimal.Decimal  `json:"max_points"`
	AnswerText         string           `json:"answer_text"`
	SelectedChoiceID   *uint            `json:"selected_choice_id"`
	SelectedChoiceText string           `json:"selected_choice_text"`
	IsCorrect          *bool            `json:"is_correct"`
	AwardedPoints      *decimal.Decimal `json:"awarded_points"`
	Feedback           string           `json:"feedback"`
}

// SubmissionDetailResponse is the full graded submission view.
type SubmissionDetailResponse struct {
	ID             uint                     `json:"id"`
	Exam           ExamListItem             `json:"exam"`
	Status         string                   `json:"status"`
	SubmittedAt    time.Time                `json:"submitted_at"`
	GradedAt       *time.Time               `json:"graded_at"`
	Score          decimal.Decimal          `json:"score"`
	MaxScore       decimal.Decimal          `json:"max_score"`
	Feedback       map[string]interface{}   `json:"feedback"`
	GradingVersion string                   `json:"grading_version"`
	Answers        []SubmissionAnswerResult `json:"answers"`
}

// NewSubmissionListItem converts a submission model into a listing DTO.
func NewSubmissionListItem(model models.Submission) SubmissionListItem {
	return SubmissionListItem{
		ID:             model.ID,
		ExamID:         model.ExamID,
		ExamTitle:      model.Exam.Title,
		CourseCode:     model.Exam.Course.Code,
		Status:         model.Status,
		SubmittedAt:    model.SubmittedAt,
		GradedAt:       model.GradedAt,
		Score:          model.Score,
		MaxScore:       model.MaxScore,
		GradingVersion: model.GradingVersion,
	}
}

// NewSubmissionListItemSlice converts submission models into listing DTOs.
func NewSubmissionListItemSlice(submissions []models.Submission) []SubmissionListItem {
	items := make([]SubmissionListItem, 0, len(submissions))
	for _, submission := range submissions {
		items = append(items, NewSubmissionListItem(submission))
	}

	return items
}

// NewSubmissionDetailResponse converts a hydrated submission into a DTO.
func NewSubmissionDetailResponse(model models.Submission) SubmissionDetailResponse {
	answers := make([]SubmissionAnswerResult, 0, len(model.Answers))
	for _, answer := range model.Answers {
		result := SubmissionAnswerResult{
			ID:               answer.ID,
			QuestionID:       answer.QuestionID,
			QuestionPrompt:   answer.Question.Prompt,
			QuestionType:     answer.Question.Type,
			MaxPoints:        answer.Question.Points,
			AnswerText:       answer.AnswerText,
			SelectedChoiceID: answer.SelectedChoiceID,
			IsCorrect:        answer.IsCorrect,
			AwardedPoints:    answer.AwardedPoints,
			Feedback:         answer.Feedback,
		}

		if answer.SelectedChoice != nil {
			result.SelectedChoiceText = answer.SelectedChoice.Text
		}

		answers = append(answers, result)
	}

	return SubmissionDetailResponse{
		ID:             model.ID,
		Exam:           NewExamListItem(model.Exam),
		Status:         model.Status,
		SubmittedAt:    model.SubmittedAt,
		GradedAt:       model.GradedAt,
		Score:          model.Score,
		MaxScore:       model.MaxScore,
		Feedback:       model.Feedback,
		GradingVersion: model.GradingVersion,
		Answers:        answers,
	}
}
