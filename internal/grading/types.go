package grading

import (
	"github.com/shopspring/decimal"

	"github.com/examind/examind-api/internal/models"
)

// DefaultGradingVersion tags results when the provider does not report one.
const DefaultGradingVersion = "llm-v1"

// PerQuestionGrade is the graded outcome of a single answer. IsCorrect is
// tri-state: nil means correctness could not be determined.
type PerQuestionGrade struct {
	QuestionID    uint
	AwardedPoints decimal.Decimal
	IsCorrect     *bool
	Feedback      string
}

// RawGrades is the provider output after normalization, before the
// deterministic MCQ merge.
type RawGrades struct {
	GradingVersion string
	Feedback       map[string]interface{}
	PerQuestion    []PerQuestionGrade
}

// GradeResult is the complete graded outcome of a submission.
type GradeResult struct {
	TotalScore     decimal.Decimal
	MaxScore       decimal.Decimal
	GradingVersion string
	Feedback       map[string]interface{}
	PerQuestion    []PerQuestionGrade
}

// ExamMaxScore sums the point values of all questions of the exam. The
// persisted max score is always recomputed from stored question points,
// never taken from provider output.
func ExamMaxScore(exam models.Exam) decimal.Decimal {
	total := decimal.Zero
	for _, q := range exam.Questions {
		total = total.Add(q.Points)
	}
	return total
}

func questionsByID(exam models.Exam) map[uint]models.Question {
	byID := make(map[uint]models.Question, len(exam.Questions))
	for _, q := range exam.Questions {
		byID[q.ID] = q
	}
	return byID
}
