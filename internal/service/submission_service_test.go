package service_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/examind/examind-api/internal/dto"
	"github.com/examind/examind-api/internal/events"
	"github.com/examind/examind-api/internal/grading"
	"github.com/examind/examind-api/internal/models"
	"github.com/examind/examind-api/internal/repository"
	"github.com/examind/examind-api/internal/service"
	"github.com/examind/examind-api/pkg/grader"
)

type stubProvider struct {
	result grader.RawResult
	err    error
	calls  int
}

func (s *stubProvider) Grade(_ context.Context, _ grader.Payload) (grader.RawResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type capturingPublisher struct {
	events []events.SubmissionGradedEvent
}

func (p *capturingPublisher) SubmissionGraded(_ context.Context, event events.SubmissionGradedEvent) error {
	p.events = append(p.events, event)
	return nil
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Course{},
		&models.Exam{},
		&models.Question{},
		&models.Choice{},
		&models.Submission{},
		&models.SubmissionAnswer{},
	))

	return db
}

// seedExam creates an active exam with a 3 point MCQ and a 10 point short
// text question, returning the exam reloaded with its question graph.
func seedExam(t *testing.T, db *gorm.DB) models.Exam {
	t.Helper()

	course := models.Course{Name: "Computer Networks", Code: "CS301"}
	require.NoError(t, db.Create(&course).Error)

	exam := models.Exam{
		Title:           "Networks Midterm",
		DurationMinutes: 90,
		CourseID:        course.ID,
		IsActive:        true,
	}
	require.NoError(t, db.Create(&exam).Error)

	mcq := models.Question{
		ExamID:       exam.ID,
		Type:         models.QuestionTypeMCQ,
		Prompt:       "Which layer handles routing?",
		Points:       decimal.NewFromInt(3),
		DisplayOrder: 1,
	}
	require.NoError(t, db.Create(&mcq).Error)

	choices := []models.Choice{
		{QuestionID: mcq.ID, Text: "Network", IsCorrect: true},
		{QuestionID: mcq.ID, Text: "Physical"},
	}
	require.NoError(t, db.Create(&choices).Error)

	text := models.Question{
		ExamID:         exam.ID,
		Type:           models.QuestionTypeShortText,
		Prompt:         "Explain packet switching.",
		ExpectedAnswer: "Data is split into packets routed independently.",
		Points:         decimal.NewFromInt(10),
		DisplayOrder:   2,
	}
	require.NoError(t, db.Create(&text).Error)

	var loaded models.Exam
	require.NoError(t, db.Preload("Questions.Choices").Preload("Course").First(&loaded, exam.ID).Error)
	return loaded
}

func newSubmissionService(db *gorm.DB, provider grader.Provider, publisher events.Publisher) service.SubmissionService {
	logger := zerolog.New(io.Discard)
	validate := validator.New(validator.WithRequiredStructEnabled())

	return service.NewSubmissionService(
		repository.NewSubmissionRepository(db),
		repository.NewExamRepository(db),
		grading.NewService(provider, logger),
		publisher,
		validate,
		logger,
	)
}

func examQuestionIDs(exam models.Exam) (mcqID, textID, correctChoiceID uint) {
	for _, q := range exam.Questions {
		switch q.Type {
		case models.QuestionTypeMCQ:
			mcqID = q.ID
			if correct := q.CorrectChoice(); correct != nil {
				correctChoiceID = correct.ID
			}
		case models.QuestionTypeShortText:
			textID = q.ID
		}
	}
	return mcqID, textID, correctChoiceID
}

func textGradedResult(textID uint, points float64) grader.RawResult {
	return grader.RawResult{
		"feedback": map[string]interface{}{"summary": "Clear grasp of packet switching."},
		"per_question": []interface{}{
			map[string]interface{}{
				"question_id":    float64(textID),
				"awarded_points": points,
				"feedback":       "Key concepts present.",
			},
		},
	}
}

func TestCreateAndGradePersistsGradedSubmission(t *testing.T) {
	db := openTestDB(t)
	exam := seedExam(t, db)
	mcqID, textID, correctChoiceID := examQuestionIDs(exam)

	provider := &stubProvider{result: textGradedResult(textID, 7)}
	publisher := &capturingPublisher{}
	svc := newSubmissionService(db, provider, publisher)

	payload := dto.SubmissionCreateRequest{Answers: []dto.SubmissionAnswerInput{
		{QuestionID: mcqID, SelectedChoiceID: &correctChoiceID},
		{QuestionID: textID, AnswerText: "Packets are routed independently."},
	}}

	resp, err := svc.CreateAndGrade(context.Background(), 7, exam.ID, payload)
	require.NoError(t, err)

	require.Equal(t, models.SubmissionStatusGraded, resp.Status)
	require.Equal(t, "10", resp.Score.String())
	require.Equal(t, "13", resp.MaxScore.String())
	require.Equal(t, grading.DefaultGradingVersion, resp.GradingVersion)
	require.NotNil(t, resp.GradedAt)
	require.Len(t, resp.Answers, 2)

	summary, ok := resp.Feedback["summary"].(string)
	require.True(t, ok)
	require.Contains(t, summary, "Overall Performance: 10/13")

	for _, answer := range resp.Answers {
		require.NotNil(t, answer.AwardedPoints)
		switch answer.QuestionID {
		case mcqID:
			require.Equal(t, "3", answer.AwardedPoints.String())
			require.NotNil(t, answer.IsCorrect)
			require.True(t, *answer.IsCorrect)
			require.Equal(t, "Correct.", answer.Feedback)
		case textID:
			require.Equal(t, "7", answer.AwardedPoints.String())
			require.Equal(t, "Key concepts present.", answer.Feedback)
		}
	}

	var stored models.Submission
	require.NoError(t, db.First(&stored, resp.ID).Error)
	require.Equal(t, models.SubmissionStatusGraded, stored.Status)
	require.Equal(t, "10", stored.Score.String())

	require.Len(t, publisher.events, 1)
	require.Equal(t, resp.ID, publisher.events[0].SubmissionID)
	require.Equal(t, "10", publisher.events[0].Score)
	require.Equal(t, "13", publisher.events[0].MaxScore)
}

func TestCreateAndGradeRejectsSecondAttempt(t *testing.T) {
	db := openTestDB(t)
	exam := seedExam(t, db)
	mcqID, textID, correctChoiceID := examQuestionIDs(exam)

	provider := &stubProvider{result: textGradedResult(textID, 7)}
	svc := newSubmissionService(db, provider, &capturingPublisher{})

	payload := dto.SubmissionCreateRequest{Answers: []dto.SubmissionAnswerInput{
		{QuestionID: mcqID, SelectedChoiceID: &correctChoiceID},
	}}

	_, err := svc.CreateAndGrade(context.Background(), 7, exam.ID, payload)
	require.NoError(t, err)

	_, err = svc.CreateAndGrade(context.Background(), 7, exam.ID, payload)
	require.ErrorIs(t, err, service.ErrAlreadySubmitted)

	var count int64
	require.NoError(t, db.Model(&models.Submission{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestCreateAndGradeRejectsUnknownQuestions(t *testing.T) {
	db := openTestDB(t)
	exam := seedExam(t, db)

	provider := &stubProvider{result: grader.RawResult{"per_question": []interface{}{}}}
	svc := newSubmissionService(db, provider, &capturingPublisher{})

	payload := dto.SubmissionCreateRequest{Answers: []dto.SubmissionAnswerInput{
		{QuestionID: 9001, AnswerText: "orphan"},
		{QuestionID: 9002, AnswerText: "orphan"},
	}}

	_, err := svc.CreateAndGrade(context.Background(), 7, exam.ID, payload)

	var unknown *service.UnknownQuestionsError
	require.ErrorAs(t, err, &unknown)
	require.ElementsMatch(t, []uint{9001, 9002}, unknown.QuestionIDs)
	require.Zero(t, provider.calls)

	var count int64
	require.NoError(t, db.Model(&models.Submission{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestCreateAndGradeRollsBackOnProviderFailure(t *testing.T) {
	db := openTestDB(t)
	exam := seedExam(t, db)
	mcqID, textID, correctChoiceID := examQuestionIDs(exam)

	provider := &stubProvider{err: errors.New("model unavailable")}
	publisher := &capturingPublisher{}
	svc := newSubmissionService(db, provider, publisher)

	payload := dto.SubmissionCreateRequest{Answers: []dto.SubmissionAnswerInput{
		{QuestionID: mcqID, SelectedChoiceID: &correctChoiceID},
		{QuestionID: textID, AnswerText: "Packets are routed independently."},
	}}

	_, err := svc.CreateAndGrade(context.Background(), 7, exam.ID, payload)
	require.Error(t, err)
	require.Empty(t, publisher.events)

	var submissions, answers int64
	require.NoError(t, db.Model(&models.Submission{}).Count(&submissions).Error)
	require.NoError(t, db.Model(&models.SubmissionAnswer{}).Count(&answers).Error)
	require.Zero(t, submissions)
	require.Zero(t, answers)
}

func TestCreateAndGradeRejectsForeignChoice(t *testing.T) {
	db := openTestDB(t)
	exam := seedExam(t, db)
	mcqID, _, _ := examQuestionIDs(exam)

	svc := newSubmissionService(db, &stubProvider{}, &capturingPublisher{})

	foreign := uint(9999)
	payload := dto.SubmissionCreateRequest{Answers: []dto.SubmissionAnswerInput{
		{QuestionID: mcqID, SelectedChoiceID: &foreign},
	}}

	_, err := svc.CreateAndGrade(context.Background(), 7, exam.ID, payload)
	require.ErrorIs(t, err, service.ErrChoiceMismatch)
}

func TestCreateAndGradeRejectsClosedExam(t *testing.T) {
	db := openTestDB(t)
	exam := seedExam(t, db)
	mcqID, _, correctChoiceID := examQuestionIDs(exam)

	require.NoError(t, db.Model(&models.Exam{}).Where("id = ?", exam.ID).Update("is_active", false).Error)

	svc := newSubmissionService(db, &stubProvider{}, &capturingPublisher{})

	payload := dto.SubmissionCreateRequest{Answers: []dto.SubmissionAnswerInput{
		{QuestionID: mcqID, SelectedChoiceID: &correctChoiceID},
	}}

	_, err := svc.CreateAndGrade(context.Background(), 7, exam.ID, payload)
	require.ErrorIs(t, err, service.ErrExamNotOpen)
}

func TestCreateAndGradeRejectsEmptyAnswerList(t *testing.T) {
	db := openTestDB(t)
	exam := seedExam(t, db)

	svc := newSubmissionService(db, &stubProvider{}, &capturingPublisher{})

	_, err := svc.CreateAndGrade(context.Background(), 7, exam.ID, dto.SubmissionCreateRequest{})
	require.ErrorIs(t, err, service.ErrNoAnswers)
}

func TestCreateAndGradeRejectsDuplicateAnswers(t *testing.T) {
	db := openTestDB(t)
	exam := seedExam(t, db)
	_, textID, _ := examQuestionIDs(exam)

	svc := newSubmissionService(db, &stubProvider{}, &capturingPublisher{})

	payload := dto.SubmissionCreateRequest{Answers: []dto.SubmissionAnswerInput{
		{QuestionID: textID, AnswerText: "first"},
		{QuestionID: textID, AnswerText: "second"},
	}}

	_, err := svc.CreateAndGrade(context.Background(), 7, exam.ID, payload)
	require.ErrorIs(t, err, service.ErrDuplicateAnswer)
}

func TestCreateAndGradeRejectsMissingExam(t *testing.T) {
	db := openTestDB(t)
	seedExam(t, db)

	svc := newSubmissionService(db, &stubProvider{}, &capturingPublisher{})

	payload := dto.SubmissionCreateRequest{Answers: []dto.SubmissionAnswerInput{
		{QuestionID: 1, AnswerText: "hi"},
	}}

	_, err := svc.CreateAndGrade(context.Background(), 7, 4242, payload)
	require.ErrorIs(t, err, service.ErrExamNotFound)
}

func TestCreateAndGradeSanitizesTextAnswers(t *testing.T) {
	db := openTestDB(t)
	exam := seedExam(t, db)
	_, textID, _ := examQuestionIDs(exam)

	provider := &stubProvider{result: textGradedResult(textID, 5)}
	svc := newSubmissionService(db, provider, &capturingPublisher{})

	payload := dto.SubmissionCreateRequest{Answers: []dto.SubmissionAnswerInput{
		{QuestionID: textID, AnswerText: "  <b>Packets</b> are routed independently.  "},
	}}

	resp, err := svc.CreateAndGrade(context.Background(), 7, exam.ID, payload)
	require.NoError(t, err)

	var stored models.SubmissionAnswer
	require.NoError(t, db.Where("submission_id = ?", resp.ID).First(&stored).Error)
	require.Equal(t, "Packets are routed independently.", stored.AnswerText)
}

func TestListAndGetForStudent(t *testing.T) {
	db := openTestDB(t)
	exam := seedExam(t, db)
	mcqID, textID, correctChoiceID := examQuestionIDs(exam)

	provider := &stubProvider{result: textGradedResult(textID, 7)}
	svc := newSubmissionService(db, provider, &capturingPublisher{})

	payload := dto.SubmissionCreateRequest{Answers: []dto.SubmissionAnswerInput{
		{QuestionID: mcqID, SelectedChoiceID: &correctChoiceID},
		{QuestionID: textID, AnswerText: "Packets are routed independently."},
	}}

	created, err := svc.CreateAndGrade(context.Background(), 7, exam.ID, payload)
	require.NoError(t, err)

	listed, err := svc.ListForStudent(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, created.ID, listed[0].ID)
	require.Equal(t, "Networks Midterm", listed[0].ExamTitle)
	require.Equal(t, "CS301", listed[0].CourseCode)

	detail, err := svc.GetForStudent(context.Background(), created.ID, 7)
	require.NoError(t, err)
	require.Equal(t, created.ID, detail.ID)
	require.Len(t, detail.Answers, 2)

	_, err = svc.GetForStudent(context.Background(), created.ID, 8)
	require.ErrorIs(t, err, service.ErrSubmissionNotFound)

	other, err := svc.ListForStudent(context.Background(), 8)
	require.NoError(t, err)
	require.Empty(t, other)
}
