package grading

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/examind/examind-api/internal/models"
	"github.com/examind/examind-api/pkg/grader"
)

// Normalize validates the provider's raw output shape and coerces it into
// typed per-question grades. Awarded points are parsed from their string
// rendering to avoid float precision drift and clamped to the authoritative
// point value of the question; the provider's own max score is ignored.
func Normalize(raw grader.RawResult, submission models.Submission) (RawGrades, error) {
	version := DefaultGradingVersion
	if v, ok := raw["grading_version"].(string); ok && v != "" {
		version = v
	}

	feedback, ok := raw["feedback"].(map[string]interface{})
	if !ok {
		feedback = map[string]interface{}{"summary": ""}
	}

	rawPerQuestion, ok := raw["per_question"]
	if !ok {
		return RawGrades{}, fmt.Errorf("%w: per_question is missing", grader.ErrProvider)
	}

	items, ok := rawPerQuestion.([]interface{})
	if !ok {
		return RawGrades{}, fmt.Errorf("%w: per_question must be a list", grader.ErrProvider)
	}

	pointsByQID := make(map[uint]decimal.Decimal, len(submission.Exam.Questions))
	for _, q := range submission.Exam.Questions {
		pointsByQID[q.ID] = q.Points
	}

	perQuestion := make([]PerQuestionGrade, 0, len(items))
	for _, rawItem := range items {
		item, ok := rawItem.(map[string]interface{})
		if !ok {
			return RawGrades{}, fmt.Errorf("%w: per_question entry must be an object", grader.ErrProvider)
		}

		qid, err := coerceQuestionID(item["question_id"])
		if err != nil {
			return RawGrades{}, fmt.Errorf("%w: %v", grader.ErrProvider, err)
		}

		maxPoints, ok := pointsByQID[qid]
		if !ok {
			return RawGrades{}, fmt.Errorf("%w: question %d does not belong to the exam", grader.ErrProvider, qid)
		}

		awarded, err := coercePoints(item["awarded_points"])
		if err != nil {
			return RawGrades{}, fmt.Errorf("%w: question %d: %v", grader.ErrProvider, qid, err)
		}

		if awarded.IsNegative() {
			awarded = decimal.Zero
		}
		if awarded.GreaterThan(maxPoints) {
			awarded = maxPoints
		}

		perQuestion = append(perQuestion, PerQuestionGrade{
			QuestionID:    qid,
			AwardedPoints: awarded,
			IsCorrect:     coerceTriState(item["is_correct"]),
			Feedback:      coerceFeedback(item["feedback"]),
		})
	}

	return RawGrades{
		GradingVersion: version,
		Feedback:       feedback,
		PerQuestion:    perQuestion,
	}, nil
}

func coerceQuestionID(value interface{}) (uint, error) {
	switch v := value.(type) {
	case float64:
		if v < 0 {
			return 0, fmt.Errorf("invalid question_id %v", v)
		}
		return uint(v), nil
	case string:
		parsed, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid question_id %q", v)
		}
		return uint(parsed), nil
	default:
		return 0, fmt.Errorf("invalid question_id %v", value)
	}
}

func coercePoints(value interface{}) (decimal.Decimal, error) {
	switch v := value.(type) {
	case nil:
		return decimal.Zero, nil
	case float64:
		return decimal.NewFromString(strconv.FormatFloat(v, 'f', -1, 64))
	case string:
		parsed, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid awarded_points %q", v)
		}
		return parsed, nil
	default:
		return decimal.Zero, fmt.Errorf("invalid awarded_points %v", value)
	}
}

// coerceTriState keeps is_correct only when it is exactly a boolean; anything
// else collapses to unknown.
func coerceTriState(value interface{}) *bool {
	if v, ok := value.(bool); ok {
		return &v
	}
	return nil
}

func coerceFeedback(value interface{}) string {
	if v, ok := value.(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}
