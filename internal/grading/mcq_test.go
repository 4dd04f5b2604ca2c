package grading_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/examind/examind-api/internal/grading"
)

func TestScoreMCQAwardsFullPointsForCorrectChoice(t *testing.T) {
	submission := gradedExamSubmission()

	grade := grading.ScoreMCQ(submission.Answers[0])

	require.Equal(t, uint(1), grade.QuestionID)
	require.Equal(t, "3", grade.AwardedPoints.String())
	require.NotNil(t, grade.IsCorrect)
	require.True(t, *grade.IsCorrect)
	require.Equal(t, "Correct.", grade.Feedback)
}

func TestScoreMCQAwardsZeroForWrongChoice(t *testing.T) {
	submission := gradedExamSubmission()
	answer := submission.Answers[0]
	answer.SelectedChoiceID = uintPtr(11)

	grade := grading.ScoreMCQ(answer)

	require.True(t, grade.AwardedPoints.IsZero())
	require.NotNil(t, grade.IsCorrect)
	require.False(t, *grade.IsCorrect)
	require.Equal(t, "Incorrect.", grade.Feedback)
}

func TestScoreMCQAwardsZeroWithoutSelection(t *testing.T) {
	submission := gradedExamSubmission()
	answer := submission.Answers[0]
	answer.SelectedChoiceID = nil

	grade := grading.ScoreMCQ(answer)

	require.True(t, grade.AwardedPoints.IsZero())
	require.NotNil(t, grade.IsCorrect)
	require.False(t, *grade.IsCorrect)
}

func TestScoreMCQWithoutCorrectChoiceIsIncorrect(t *testing.T) {
	submission := gradedExamSubmission()
	answer := submission.Answers[0]
	answer.Question.Choices = nil

	grade := grading.ScoreMCQ(answer)

	require.True(t, grade.AwardedPoints.IsZero())
	require.NotNil(t, grade.IsCorrect)
	require.False(t, *grade.IsCorrect)
}
