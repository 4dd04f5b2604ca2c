package grading

import (
	"github.com/shopspring/decimal"

	"github.com/examind/examind-api/internal/models"
)

const (
	mcqCorrectFeedback   = "Correct."
	mcqIncorrectFeedback = "Incorrect."
)

// ScoreMCQ grades a multiple choice answer by comparing the submitted choice
// against the question's first marked-correct choice. A question without a
// correct choice is always scored incorrect. This scorer is authoritative for
// MCQ; provider output is never consulted.
func ScoreMCQ(answer models.SubmissionAnswer) PerQuestionGrade {
	correct := answer.Question.CorrectChoice()
	isCorrect := correct != nil && answer.SelectedChoiceID != nil && *answer.SelectedChoiceID == correct.ID

	awarded := decimal.Zero
	feedback := mcqIncorrectFeedback
	if isCorrect {
		awarded = answer.Question.Points
		feedback = mcqCorrectFeedback
	}

	return PerQuestionGrade{
		QuestionID:    answer.QuestionID,
		AwardedPoints: awarded,
		IsCorrect:     &isCorrect,
		Feedback:      feedback,
	}
}
