package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/examind/examind-api/internal/models"
)

// CourseResponse summarizes the course an exam belongs to.
type CourseResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// ExamListItem is one entry of the exam listing.
type ExamListItem struct {
	ID              uint                   `json:"id"`
	Title           string                 `json:"title"`
	DurationMinutes uint                   `json:"duration_minutes"`
	Course          CourseResponse         `json:"course"`
	Metadata        map[string]interface{} `json:"metadata"`
	IsActive        bool                   `json:"is_active"`
	StartsAt        *time.Time             `json:"starts_at"`
	EndsAt          *time.Time             `json:"ends_at"`
}

// ChoicePublic is a choice as shown to students; correctness is hidden.
type ChoicePublic struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

// QuestionPublic is a question as shown to students; the expected answer
// rubric is never serialized here.
type QuestionPublic struct {
	ID       uint                   `json:"id"`
	Type     string                 `json:"type"`
	Prompt   string                 `json:"prompt"`
	Points   decimal.Decimal        `json:"points"`
	Order    uint                   `json:"order"`
	Metadata map[string]interface{} `json:"metadata"`
	Choices  []ChoicePublic         `json:"choices"`
}

// ExamDetailResponse is the full exam view served to a student taking it.
type ExamDetailResponse struct {
	ExamListItem
	Questions []QuestionPublic `json:"questions"`
}

// NewExamListItem converts an exam model into a listing DTO.
func NewExamListItem(model models.Exam) ExamListItem {
	return ExamListItem{
		ID:              model.ID,
		Title:           model.Title,
		DurationMinutes: model.DurationMinutes,
		Course: CourseResponse{
			ID:   model.Course.ID,
			Name: model.Course.Name,
			Code: model.Course.Code,
		},
		Metadata: model.Metadata,
		IsActive: model.IsActive,
		StartsAt: model.StartsAt,
		EndsAt:   model.EndsAt,
	}
}

// NewExamListItemSlice converts exam models into listing DTOs.
func NewExamListItemSlice(exams []models.Exam) []ExamListItem {
	items := make([]ExamListItem, 0, len(exams))
	for _, exam := range exams {
		items = append(items, NewExamListItem(exam))
	}

	return items
}

// NewExamDetailResponse converts an exam model with questions into a DTO.
func NewExamDetailResponse(model models.Exam) ExamDetailResponse {
	questions := make([]QuestionPublic, 0, len(model.Questions))
	for _, q := range model.Questions {
		choices := make([]ChoicePublic, 0, len(q.Choices))
		for _, c := range q.Choices {
			choices = append(choices, ChoicePublic{ID: c.ID, Text: c.Text})
		}

		questions = append(questions, QuestionPublic{
			ID:       q.ID,
			Type:     q.Type,
			Prompt:   q.Prompt,
			Points:   q.Points,
			Order:    q.DisplayOrder,
			Metadata: q.Metadata,
			Choices:  choices,
		})
	}

	return ExamDetailResponse{
		ExamListItem: NewExamListItem(model),
		Questions:    questions,
	}
}
