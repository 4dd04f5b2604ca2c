package grading

import (
	"sort"

	"github.com/examind/examind-api/internal/models"
	"github.com/examind/examind-api/pkg/grader"
)

// BuildPayload assembles the provider input contract from a submission.
// The submission must be hydrated with its exam, course, questions, choices
// and answers; the builder never reaches back to storage.
func BuildPayload(submission models.Submission) grader.Payload {
	questions := make([]models.Question, len(submission.Exam.Questions))
	copy(questions, submission.Exam.Questions)
	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].DisplayOrder < questions[j].DisplayOrder
	})

	answersByQID := make(map[uint]models.SubmissionAnswer, len(submission.Answers))
	for _, a := range submission.Answers {
		answersByQID[a.QuestionID] = a
	}

	entries := make([]grader.QuestionPayload, 0, len(questions))
	for _, q := range questions {
		entry := grader.QuestionPayload{
			QuestionID:     q.ID,
			Type:           q.Type,
			Prompt:         q.Prompt,
			ExpectedAnswer: q.ExpectedAnswer,
			MaxPoints:      q.Points.InexactFloat64(),
			Choices:        make([]grader.ChoiceOption, 0, len(q.Choices)),
		}

		if correct := q.CorrectChoice(); correct != nil {
			id := correct.ID
			entry.CorrectChoiceID = &id
		}

		for _, c := range q.Choices {
			entry.Choices = append(entry.Choices, grader.ChoiceOption{ID: c.ID, Text: c.Text})
		}

		if answer, ok := answersByQID[q.ID]; ok {
			entry.StudentAnswerText = answer.AnswerText
			entry.SelectedChoiceID = answer.SelectedChoiceID
		}

		entries = append(entries, entry)
	}

	return grader.Payload{
		Exam: grader.ExamContext{
			ID:    submission.ExamID,
			Title: submission.Exam.Title,
			Course: grader.CourseContext{
				Code: submission.Exam.Course.Code,
				Name: submission.Exam.Course.Name,
			},
		},
		Submission: grader.SubmissionContext{
			ID:        submission.ID,
			StudentID: submission.StudentID,
		},
		Questions: entries,
		MaxScore:  ExamMaxScore(submission.Exam).InexactFloat64(),
		Policy:    grader.Policy{GradeOnlyText: true},
	}
}

// TextOnly returns a copy of the payload whose question list contains only
// short text questions. Multiple choice data is never sent externally.
func TextOnly(payload grader.Payload) grader.Payload {
	filtered := make([]grader.QuestionPayload, 0, len(payload.Questions))
	for _, q := range payload.Questions {
		if q.Type == models.QuestionTypeShortText {
			filtered = append(filtered, q)
		}
	}

	payload.Questions = filtered
	return payload
}
