package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/examind/examind-api/internal/dto"
	"github.com/examind/examind-api/internal/repository"
)

// ErrExamNotFound indicates the exam could not be located.
var ErrExamNotFound = errors.New("exam not found")

const examListCacheKey = "exams:active"

// ExamService exposes the student-facing exam catalogue.
type ExamService interface {
	ListActive(ctx context.Context) ([]dto.ExamListItem, error)
	Get(ctx context.Context, id uint) (dto.ExamDetailResponse, error)
}

type examService struct {
	exams    repository.ExamRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
}

// NewExamService constructs an ExamService instance.
func NewExamService(exams repository.ExamRepository, cache *redis.Client, cacheTTL time.Duration, logger zerolog.Logger) ExamService {
	return &examService{
		exams:    exams,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger.With().Str("component", "exam_service").Logger(),
	}
}

func (s *examService) ListActive(ctx context.Context) ([]dto.ExamListItem, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, examListCacheKey).Result(); err == nil {
			var items []dto.ExamListItem
			if unmarshalErr := json.Unmarshal([]byte(cached), &items); unmarshalErr == nil {
				s.logger.Debug().Msg("exam list cache hit")
				return items, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read exam list cache")
		}
	}

	exams, err := s.exams.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	items := dto.NewExamListItemSlice(exams)

	if s.cache != nil {
		if payload, err := json.Marshal(items); err == nil {
			if err := s.cache.Set(ctx, examListCacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store exam list cache")
			}
		}
	}

	return items, nil
}

func (s *examService) Get(ctx context.Context, id uint) (dto.ExamDetailResponse, error) {
	exam, err := s.exams.GetWithQuestions(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ExamDetailResponse{}, ErrExamNotFound
		}
		return dto.ExamDetailResponse{}, err
	}

	return dto.NewExamDetailResponse(exam), nil
}
