package service_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/examind/examind-api/internal/models"
	"github.com/examind/examind-api/internal/repository"
	"github.com/examind/examind-api/internal/service"
)

func newCacheClient(t *testing.T) *redis.Client {
	t.Helper()

	server := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: server.Addr()})
}

func TestExamServiceListsActiveExams(t *testing.T) {
	db := openTestDB(t)
	exam := seedExam(t, db)

	inactive := models.Exam{Title: "Archived Quiz", CourseID: exam.CourseID, IsActive: false}
	require.NoError(t, db.Create(&inactive).Error)

	svc := service.NewExamService(repository.NewExamRepository(db), nil, time.Minute, zerolog.New(io.Discard))

	items, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, exam.ID, items[0].ID)
	require.Equal(t, "CS301", items[0].Course.Code)
}

func TestExamServiceServesListFromCache(t *testing.T) {
	db := openTestDB(t)
	exam := seedExam(t, db)

	svc := service.NewExamService(repository.NewExamRepository(db), newCacheClient(t), time.Minute, zerolog.New(io.Discard))

	first, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)

	// The listing is now cached; a database change must not show up yet.
	require.NoError(t, db.Model(&models.Exam{}).Where("id = ?", exam.ID).Update("is_active", false).Error)

	second, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, second, 1)
	require.Equal(t, first[0].ID, second[0].ID)
}

func TestExamServiceGetReturnsQuestionsWithoutAnswers(t *testing.T) {
	db := openTestDB(t)
	exam := seedExam(t, db)

	svc := service.NewExamService(repository.NewExamRepository(db), nil, time.Minute, zerolog.New(io.Discard))

	detail, err := svc.Get(context.Background(), exam.ID)
	require.NoError(t, err)
	require.Equal(t, exam.ID, detail.ID)
	require.Len(t, detail.Questions, 2)
	require.Equal(t, models.QuestionTypeMCQ, detail.Questions[0].Type)
	require.Len(t, detail.Questions[0].Choices, 2)
}

func TestExamServiceGetUnknownExam(t *testing.T) {
	db := openTestDB(t)
	seedExam(t, db)

	svc := service.NewExamService(repository.NewExamRepository(db), nil, time.Minute, zerolog.New(io.Discard))

	_, err := svc.Get(context.Background(), 999)
	require.ErrorIs(t, err, service.ErrExamNotFound)
}
