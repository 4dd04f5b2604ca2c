package grading

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/examind/examind-api/internal/models"
)

// Merge combines normalized provider grades with deterministic MCQ grades
// into a fresh, complete result set ordered by question id. MCQ answers are
// always rescored locally, overriding any provider entry that slipped
// through the text-only filter. Submitted text answers the provider omitted
// are defaulted to zero points so every answer has a result.
func Merge(normalized []PerQuestionGrade, submission models.Submission) (decimal.Decimal, []PerQuestionGrade) {
	byQID := make(map[uint]PerQuestionGrade, len(normalized)+len(submission.Answers))
	for _, g := range normalized {
		byQID[g.QuestionID] = g
	}

	for _, answer := range submission.Answers {
		if answer.Question.Type == models.QuestionTypeMCQ {
			byQID[answer.QuestionID] = ScoreMCQ(answer)
			continue
		}

		if _, ok := byQID[answer.QuestionID]; !ok {
			byQID[answer.QuestionID] = PerQuestionGrade{
				QuestionID:    answer.QuestionID,
				AwardedPoints: decimal.Zero,
				Feedback:      "Not graded.",
			}
		}
	}

	merged := make([]PerQuestionGrade, 0, len(byQID))
	for _, g := range byQID {
		merged = append(merged, g)
	}

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].QuestionID < merged[j].QuestionID
	})

	total := decimal.Zero
	for _, g := range merged {
		total = total.Add(g.AwardedPoints)
	}

	return total, merged
}
