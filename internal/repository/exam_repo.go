package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/examind/examind-api/internal/models"
)

// ExamRepository defines data operations for exams.
type ExamRepository interface {
	ListActive(ctx context.Context) ([]models.Exam, error)
	GetWithQuestions(ctx context.Context, id uint) (models.Exam, error)
}

type examRepository struct {
	db *gorm.DB
}

// NewExamRepository instantiates the repository.
func NewExamRepository(db *gorm.DB) ExamRepository {
	return &examRepository{db: db}
}

func (r *examRepository) ListActive(ctx context.Context) ([]models.Exam, error) {
	var exams []models.Exam
	if err := r.db.WithContext(ctx).
		Preload("Course").
		Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&exams).Error; err != nil {
		return nil, err
	}

	return exams, nil
}

// GetWithQuestions fetches the exam with its questions and choices eagerly
// loaded in one round trip, ordered for display.
func (r *examRepository) GetWithQuestions(ctx context.Context, id uint) (models.Exam, error) {
	var exam models.Exam
	if err := r.db.WithContext(ctx).
		Preload("Course").
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Preload("Questions.Choices").
		First(&exam, id).Error; err != nil {
		return models.Exam{}, err
	}

	return exam, nil
}
