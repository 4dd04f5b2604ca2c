package service

import (
	"errors"
	"fmt"
)

// ErrExamNotOpen indicates the exam window is closed or the exam is inactive.
var ErrExamNotOpen = errors.New("exam is not open for submissions")

// ErrAlreadySubmitted indicates the student already submitted this exam.
var ErrAlreadySubmitted = errors.New("exam already submitted")

// ErrChoiceMismatch indicates a selected choice does not belong to its question.
var ErrChoiceMismatch = errors.New("choice does not belong to the question")

// ErrNoAnswers indicates the answer payload is empty.
var ErrNoAnswers = errors.New("at least one answer is required")

// ErrDuplicateAnswer indicates the answer payload lists a question twice.
var ErrDuplicateAnswer = errors.New("duplicate question_id in answers")

// ErrSubmissionNotFound indicates a submission could not be found.
var ErrSubmissionNotFound = errors.New("submission not found")

// UnknownQuestionsError reports every submitted question id that does not
// belong to the exam.
type UnknownQuestionsError struct {
	QuestionIDs []uint
}

func (e *UnknownQuestionsError) Error() string {
	return fmt.Sprintf("invalid question id(s) for this exam: %v", e.QuestionIDs)
}
