package events_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/examind/examind-api/internal/events"
)

func TestNATSPublisherWithoutConnectionIsNoOp(t *testing.T) {
	publisher := events.NewNATSPublisher(nil, "", zerolog.Nop())

	err := publisher.SubmissionGraded(context.Background(), events.SubmissionGradedEvent{
		SubmissionID:   42,
		ExamID:         1,
		StudentID:      7,
		Score:          "10",
		MaxScore:       "13",
		GradingVersion: "llm-v1",
		GradedAt:       time.Now(),
	})
	require.NoError(t, err)
}
