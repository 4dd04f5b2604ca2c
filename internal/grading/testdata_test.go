package grading_test

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/examind/examind-api/internal/models"
)

func boolPtr(v bool) *bool { return &v }

func uintPtr(v uint) *uint { return &v }

// gradedExamSubmission builds a hydrated submission for a two-question exam:
// a 3 point multiple choice question and a 10 point short text question.
func gradedExamSubmission() models.Submission {
	mcq := models.Question{
		ID:           1,
		ExamID:       1,
		Type:         models.QuestionTypeMCQ,
		Prompt:       "Which layer handles routing?",
		Points:       decimal.NewFromInt(3),
		DisplayOrder: 1,
		Metadata:     datatypes.JSONMap{"topic": "networking"},
		Choices: []models.Choice{
			{ID: 10, QuestionID: 1, Text: "Network", IsCorrect: true},
			{ID: 11, QuestionID: 1, Text: "Physical"},
		},
	}

	text := models.Question{
		ID:             2,
		ExamID:         1,
		Type:           models.QuestionTypeShortText,
		Prompt:         "Explain packet switching.",
		ExpectedAnswer: "Data is split into packets routed independently.",
		Points:         decimal.NewFromInt(10),
		DisplayOrder:   2,
	}

	exam := models.Exam{
		ID:        1,
		Title:     "Networks Midterm",
		CourseID:  1,
		IsActive:  true,
		Course:    models.Course{ID: 1, Code: "CS301", Name: "Computer Networks"},
		Questions: []models.Question{mcq, text},
	}

	return models.Submission{
		ID:        42,
		StudentID: 7,
		ExamID:    1,
		Status:    models.SubmissionStatusSubmitted,
		Exam:      exam,
		Answers: []models.SubmissionAnswer{
			{
				ID:               100,
				SubmissionID:     42,
				QuestionID:       1,
				SelectedChoiceID: uintPtr(10),
				Question:         mcq,
			},
			{
				ID:           101,
				SubmissionID: 42,
				QuestionID:   2,
				AnswerText:   "Packets are routed independently and reassembled.",
				Question:     text,
			},
		},
	}
}
