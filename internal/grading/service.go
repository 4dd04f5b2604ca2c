package grading

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/examind/examind-api/internal/models"
	"github.com/examind/examind-api/pkg/grader"
)

// Service runs the grading pipeline: payload assembly, provider invocation,
// normalization, deterministic MCQ merge and feedback synthesis.
type Service interface {
	GradeSubmission(ctx context.Context, submission models.Submission) (GradeResult, error)
}

type service struct {
	provider grader.Provider
	logger   zerolog.Logger
	tracer   trace.Tracer
}

// NewService constructs the grading pipeline around a provider.
func NewService(provider grader.Provider, logger zerolog.Logger) Service {
	return &service{
		provider: provider,
		logger:   logger.With().Str("component", "grading_service").Logger(),
		tracer:   otel.Tracer("github.com/examind/examind-api/internal/grading"),
	}
}

// GradeSubmission grades a hydrated submission. Only short text questions are
// sent to the provider; multiple choice answers are scored locally.
func (s *service) GradeSubmission(parent context.Context, submission models.Submission) (GradeResult, error) {
	ctx, span := s.tracer.Start(parent, "grading.submission", trace.WithAttributes(
		attribute.Int64("submission_id", int64(submission.ID)),
		attribute.Int64("exam_id", int64(submission.ExamID)),
	))
	defer span.End()

	payload := TextOnly(BuildPayload(submission))

	raw, err := s.provider.Grade(ctx, payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "provider_failed")
		return GradeResult{}, err
	}

	grades, err := Normalize(raw, submission)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "normalization_failed")
		return GradeResult{}, err
	}

	totalScore, perQuestion := Merge(grades.PerQuestion, submission)
	maxScore := ExamMaxScore(submission.Exam)
	feedback := Synthesize(grades.Feedback, perQuestion, totalScore, maxScore, questionsByID(submission.Exam))

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Str("total_score", totalScore.String()).
		Str("max_score", maxScore.String()).
		Msg("submission graded")

	span.SetAttributes(attribute.Float64("total_score", totalScore.InexactFloat64()))

	return GradeResult{
		TotalScore:     totalScore,
		MaxScore:       maxScore,
		GradingVersion: grades.GradingVersion,
		Feedback:       feedback,
		PerQuestion:    perQuestion,
	}, nil
}
