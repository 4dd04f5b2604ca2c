package grader

import (
	"context"
	"errors"
)

// ErrProvider classifies grading provider failures: missing credentials,
// transport failures after retry exhaustion, and responses that cannot be
// interpreted as the expected grading result.
var ErrProvider = errors.New("grading provider error")

// Payload is the input contract of a grading provider. It mirrors the exam
// and submission state the provider needs to grade free text answers.
type Payload struct {
	Exam       ExamContext       `json:"exam"`
	Submission SubmissionContext `json:"submission"`
	Questions  []QuestionPayload `json:"questions"`
	MaxScore   float64           `json:"max_score"`
	Policy     Policy            `json:"policy"`
}

// ExamContext identifies the exam being graded.
type ExamContext struct {
	ID     uint          `json:"id"`
	Title  string        `json:"title"`
	Course CourseContext `json:"course"`
}

// CourseContext identifies the course the exam belongs to.
type CourseContext struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// SubmissionContext identifies the submission being graded.
type SubmissionContext struct {
	ID        uint `json:"id"`
	StudentID uint `json:"student_id"`
}

// QuestionPayload carries one question together with the student's answer.
// ExpectedAnswer is the rubric the provider must grade against.
type QuestionPayload struct {
	QuestionID        uint           `json:"question_id"`
	Type              string         `json:"type"`
	Prompt            string         `json:"prompt"`
	ExpectedAnswer    string         `json:"expected_answer"`
	MaxPoints         float64        `json:"max_points"`
	StudentAnswerText string         `json:"student_answer_text"`
	SelectedChoiceID  *uint          `json:"selected_choice_id"`
	CorrectChoiceID   *uint          `json:"correct_choice_id"`
	Choices           []ChoiceOption `json:"choices"`
}

// ChoiceOption is a selectable option presented to the provider.
type ChoiceOption struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

// Policy carries grading policy flags sent alongside the payload.
type Policy struct {
	GradeOnlyText bool `json:"grade_only_text"`
}

// RawResult is the parsed but unvalidated JSON object returned by a provider.
// Shape validation happens in the grading normalizer, not at the transport
// layer, so a structurally broken result is not retried.
type RawResult map[string]interface{}

// Provider grades the free text portion of a submission payload.
type Provider interface {
	Grade(ctx context.Context, payload Payload) (RawResult, error)
}
