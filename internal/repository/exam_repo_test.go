package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/examind/examind-api/internal/models"
	"github.com/examind/examind-api/internal/repository"
)

func TestExamCreatedInactiveStaysInactive(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	course := models.Course{Name: "Computer Networks", Code: "CS301"}
	require.NoError(t, db.Create(&course).Error)

	draft := models.Exam{Title: "Unpublished Final", CourseID: course.ID, IsActive: false}
	require.NoError(t, db.Create(&draft).Error)

	var stored models.Exam
	require.NoError(t, db.First(&stored, draft.ID).Error)
	require.False(t, stored.IsActive)

	repo := repository.NewExamRepository(db)
	exams, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Empty(t, exams)
}
