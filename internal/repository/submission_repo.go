package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/examind/examind-api/internal/models"
)

// AnswerGradeUpdate carries the grading fields written onto one answer row.
type AnswerGradeUpdate struct {
	QuestionID    uint
	IsCorrect     *bool
	AwardedPoints decimal.Decimal
	Feedback      string
}

// SubmissionRepository defines data operations for submissions and their answers.
type SubmissionRepository interface {
	Transaction(ctx context.Context, fn func(repo SubmissionRepository) error) error
	ExistsForStudentAndExam(ctx context.Context, studentID, examID uint) (bool, error)
	Create(ctx context.Context, submission *models.Submission) error
	CreateAnswers(ctx context.Context, answers []models.SubmissionAnswer) error
	GetHydrated(ctx context.Context, id uint) (models.Submission, error)
	GetForStudent(ctx context.Context, id, studentID uint) (models.Submission, error)
	ListForStudent(ctx context.Context, studentID uint) ([]models.Submission, error)
	UpdateGrading(ctx context.Context, submission *models.Submission) error
	UpdateAnswerGrades(ctx context.Context, submissionID uint, updates []AnswerGradeUpdate) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

// Transaction runs fn against a repository bound to a database transaction.
// Any error returned by fn rolls the whole transaction back.
func (r *submissionRepository) Transaction(ctx context.Context, fn func(repo SubmissionRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&submissionRepository{db: tx})
	})
}

func (r *submissionRepository) ExistsForStudentAndExam(ctx context.Context, studentID, examID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Submission{}).
		Where("student_id = ?", studentID).
		Where("exam_id = ?", examID).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) CreateAnswers(ctx context.Context, answers []models.SubmissionAnswer) error {
	if len(answers) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&answers).Error
}

func (r *submissionRepository) hydratedQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Submission{}).
		Preload("Exam").
		Preload("Exam.Course").
		Preload("Exam.Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Preload("Exam.Questions.Choices").
		Preload("Answers").
		Preload("Answers.Question").
		Preload("Answers.Question.Choices").
		Preload("Answers.SelectedChoice")
}

// GetHydrated fetches the submission with its full exam and answer graph, the
// precondition for running the grading pipeline without further queries.
func (r *submissionRepository) GetHydrated(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.hydratedQuery(ctx).First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) GetForStudent(ctx context.Context, id, studentID uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.hydratedQuery(ctx).
		Where("student_id = ?", studentID).
		First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) ListForStudent(ctx context.Context, studentID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.db.WithContext(ctx).
		Preload("Exam").
		Preload("Exam.Course").
		Where("student_id = ?", studentID).
		Order("submitted_at DESC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

// UpdateGrading persists the grading outcome fields of the submission row.
func (r *submissionRepository) UpdateGrading(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Model(&models.Submission{}).
		Where("id = ?", submission.ID).
		Updates(map[string]interface{}{
			"status":          submission.Status,
			"score":           submission.Score,
			"max_score":       submission.MaxScore,
			"feedback":        submission.Feedback,
			"grading_version": submission.GradingVersion,
			"graded_at":       submission.GradedAt,
		}).Error
}

// UpdateAnswerGrades writes grading fields onto the submission's answer rows,
// matched by question id. On postgres the rows are locked first to serialize
// against concurrent mutation of the same submission; sqlite has no FOR UPDATE.
func (r *submissionRepository) UpdateAnswerGrades(ctx context.Context, submissionID uint, updates []AnswerGradeUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	if r.db.Dialector.Name() == "postgres" {
		var locked []models.SubmissionAnswer
		if err := r.db.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("submission_id = ?", submissionID).
			Find(&locked).Error; err != nil {
			return err
		}
	}

	for _, update := range updates {
		if err := r.db.WithContext(ctx).Model(&models.SubmissionAnswer{}).
			Where("submission_id = ?", submissionID).
			Where("question_id = ?", update.QuestionID).
			Updates(map[string]interface{}{
				"is_correct":     update.IsCorrect,
				"awarded_points": update.AwardedPoints,
				"feedback":       update.Feedback,
			}).Error; err != nil {
			return err
		}
	}

	return nil
}
