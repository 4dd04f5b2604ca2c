package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/examind/examind-api/internal/dto"
	"github.com/examind/examind-api/internal/events"
	"github.com/examind/examind-api/internal/grading"
	"github.com/examind/examind-api/internal/models"
	"github.com/examind/examind-api/internal/observability"
	"github.com/examind/examind-api/internal/repository"
	"github.com/examind/examind-api/pkg/grader"
)

// SubmissionService orchestrates the submit-and-grade workflow.
type SubmissionService interface {
	CreateAndGrade(ctx context.Context, studentID, examID uint, payload dto.SubmissionCreateRequest) (dto.SubmissionDetailResponse, error)
	ListForStudent(ctx context.Context, studentID uint) ([]dto.SubmissionListItem, error)
	GetForStudent(ctx context.Context, id, studentID uint) (dto.SubmissionDetailResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	exams       repository.ExamRepository
	grading     grading.Service
	publisher   events.Publisher
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewSubmissionService constructs a SubmissionService instance.
func NewSubmissionService(submissionRepo repository.SubmissionRepository, examRepo repository.ExamRepository, gradingService grading.Service, publisher events.Publisher, validate *validator.Validate, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: submissionRepo,
		exams:       examRepo,
		grading:     gradingService,
		publisher:   publisher,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "submission_service").Logger(),
		tracer:      otel.Tracer("github.com/examind/examind-api/internal/service/submission"),
		now:         time.Now,
	}
}

// CreateAndGrade validates the answer payload against the exam, records the
// submission, grades it and persists the result, all within one transaction.
// Any failure rolls the whole transaction back; no half-graded submission is
// ever left behind.
func (s *submissionService) CreateAndGrade(parent context.Context, studentID, examID uint, payload dto.SubmissionCreateRequest) (dto.SubmissionDetailResponse, error) {
	ctx, span := s.tracer.Start(parent, "submission.create_and_grade", trace.WithAttributes(
		attribute.Int64("exam_id", int64(examID)),
		attribute.Int64("student_id", int64(studentID)),
	))
	defer span.End()

	if len(payload.Answers) == 0 {
		return dto.SubmissionDetailResponse{}, ErrNoAnswers
	}

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmissionDetailResponse{}, err
	}

	if err := rejectDuplicateQuestions(payload.Answers); err != nil {
		return dto.SubmissionDetailResponse{}, err
	}

	exam, err := s.exams.GetWithQuestions(ctx, examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionDetailResponse{}, ErrExamNotFound
		}
		return dto.SubmissionDetailResponse{}, err
	}

	if !exam.IsOpen(s.now()) {
		return dto.SubmissionDetailResponse{}, ErrExamNotOpen
	}

	questionsByID, err := resolveQuestions(exam, payload.Answers)
	if err != nil {
		return dto.SubmissionDetailResponse{}, err
	}

	var created models.Submission
	err = s.submissions.Transaction(ctx, func(tx repository.SubmissionRepository) error {
		exists, err := tx.ExistsForStudentAndExam(ctx, studentID, examID)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadySubmitted
		}

		answers, err := s.buildAnswerRows(payload.Answers, questionsByID)
		if err != nil {
			return err
		}

		submission := models.Submission{
			StudentID:   studentID,
			ExamID:      examID,
			Status:      models.SubmissionStatusSubmitted,
			SubmittedAt: s.now(),
		}

		if err := tx.Create(ctx, &submission); err != nil {
			// Second line of defense: a concurrent submission that raced past
			// the existence check loses on the unique constraint.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadySubmitted
			}
			return err
		}

		for i := range answers {
			answers[i].SubmissionID = submission.ID
		}
		if err := tx.CreateAnswers(ctx, answers); err != nil {
			return err
		}

		hydrated, err := tx.GetHydrated(ctx, submission.ID)
		if err != nil {
			return err
		}

		result, err := s.grading.GradeSubmission(ctx, hydrated)
		if err != nil {
			return err
		}

		gradedAt := s.now()
		hydrated.Score = result.TotalScore
		hydrated.MaxScore = result.MaxScore
		hydrated.Feedback = datatypes.JSONMap(result.Feedback)
		hydrated.GradingVersion = result.GradingVersion
		hydrated.Status = models.SubmissionStatusGraded
		hydrated.GradedAt = &gradedAt

		if err := tx.UpdateGrading(ctx, &hydrated); err != nil {
			return err
		}

		if err := tx.UpdateAnswerGrades(ctx, submission.ID, answerGradeUpdates(result, hydrated)); err != nil {
			return err
		}

		created, err = tx.GetHydrated(ctx, submission.ID)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_failed")
		if errors.Is(err, grader.ErrProvider) {
			observability.SubmissionsGraded().WithLabelValues("failed").Inc()
		}
		return dto.SubmissionDetailResponse{}, err
	}

	observability.SubmissionsGraded().WithLabelValues("graded").Inc()
	if created.MaxScore.IsPositive() {
		observability.SubmissionScoreRatio().Observe(created.Score.Div(created.MaxScore).InexactFloat64())
	}

	s.logger.Info().
		Uint("submission_id", created.ID).
		Uint("exam_id", examID).
		Str("score", created.Score.String()).
		Msg("submission graded")

	s.publishGraded(ctx, created)

	return dto.NewSubmissionDetailResponse(created), nil
}

func (s *submissionService) ListForStudent(ctx context.Context, studentID uint) ([]dto.SubmissionListItem, error) {
	submissions, err := s.submissions.ListForStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionListItemSlice(submissions), nil
}

func (s *submissionService) GetForStudent(ctx context.Context, id, studentID uint) (dto.SubmissionDetailResponse, error) {
	submission, err := s.submissions.GetForStudent(ctx, id, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionDetailResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionDetailResponse{}, err
	}

	return dto.NewSubmissionDetailResponse(submission), nil
}

func rejectDuplicateQuestions(answers []dto.SubmissionAnswerInput) error {
	seen := make(map[uint]struct{}, len(answers))
	for _, answer := range answers {
		if _, ok := seen[answer.QuestionID]; ok {
			return ErrDuplicateAnswer
		}
		seen[answer.QuestionID] = struct{}{}
	}
	return nil
}

// resolveQuestions maps every submitted question id to its exam question,
// collecting all unknown ids before failing.
func resolveQuestions(exam models.Exam, answers []dto.SubmissionAnswerInput) (map[uint]models.Question, error) {
	byID := make(map[uint]models.Question, len(exam.Questions))
	for _, q := range exam.Questions {
		byID[q.ID] = q
	}

	var missing []uint
	resolved := make(map[uint]models.Question, len(answers))
	for _, answer := range answers {
		q, ok := byID[answer.QuestionID]
		if !ok {
			missing = append(missing, answer.QuestionID)
			continue
		}
		resolved[answer.QuestionID] = q
	}

	if len(missing) > 0 {
		return nil, &UnknownQuestionsError{QuestionIDs: missing}
	}

	return resolved, nil
}

func (s *submissionService) buildAnswerRows(answers []dto.SubmissionAnswerInput, questionsByID map[uint]models.Question) ([]models.SubmissionAnswer, error) {
	rows := make([]models.SubmissionAnswer, 0, len(answers))
	for _, input := range answers {
		question := questionsByID[input.QuestionID]
		row := models.SubmissionAnswer{QuestionID: input.QuestionID}

		if question.Type == models.QuestionTypeMCQ {
			if input.SelectedChoiceID != nil {
				if !choiceBelongsToQuestion(question, *input.SelectedChoiceID) {
					return nil, ErrChoiceMismatch
				}
				row.SelectedChoiceID = input.SelectedChoiceID
			}
		} else {
			row.AnswerText = s.sanitizer.Sanitize(strings.TrimSpace(input.AnswerText))
		}

		rows = append(rows, row)
	}

	return rows, nil
}

func choiceBelongsToQuestion(question models.Question, choiceID uint) bool {
	for _, c := range question.Choices {
		if c.ID == choiceID {
			return true
		}
	}
	return false
}

// answerGradeUpdates filters the graded results down to questions that have
// an answer row; results for unanswered questions have nothing to update.
func answerGradeUpdates(result grading.GradeResult, submission models.Submission) []repository.AnswerGradeUpdate {
	answered := make(map[uint]struct{}, len(submission.Answers))
	for _, a := range submission.Answers {
		answered[a.QuestionID] = struct{}{}
	}

	updates := make([]repository.AnswerGradeUpdate, 0, len(result.PerQuestion))
	for _, g := range result.PerQuestion {
		if _, ok := answered[g.QuestionID]; !ok {
			continue
		}
		updates = append(updates, repository.AnswerGradeUpdate{
			QuestionID:    g.QuestionID,
			IsCorrect:     g.IsCorrect,
			AwardedPoints: g.AwardedPoints,
			Feedback:      g.Feedback,
		})
	}

	return updates
}

func (s *submissionService) publishGraded(ctx context.Context, submission models.Submission) {
	if s.publisher == nil {
		return
	}

	event := events.SubmissionGradedEvent{
		SubmissionID:   submission.ID,
		ExamID:         submission.ExamID,
		StudentID:      submission.StudentID,
		Score:          submission.Score.String(),
		MaxScore:       submission.MaxScore.String(),
		GradingVersion: submission.GradingVersion,
	}
	if submission.GradedAt != nil {
		event.GradedAt = *submission.GradedAt
	}

	if err := s.publisher.SubmissionGraded(ctx, event); err != nil {
		s.logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("failed to publish graded event")
	}
}
