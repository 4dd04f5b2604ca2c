package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// SubmissionGradedEvent is emitted after a submission has been graded and
// the transaction committed.
type SubmissionGradedEvent struct {
	SubmissionID   uint      `json:"submission_id"`
	ExamID         uint      `json:"exam_id"`
	StudentID      uint      `json:"student_id"`
	Score          string    `json:"score"`
	MaxScore       string    `json:"max_score"`
	GradingVersion string    `json:"grading_version"`
	GradedAt       time.Time `json:"graded_at"`
}

// Publisher broadcasts domain events to interested consumers.
type Publisher interface {
	SubmissionGraded(ctx context.Context, event SubmissionGradedEvent) error
}

type natsPublisher struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
}

// NewNATSPublisher builds a publisher backed by a NATS connection.
func NewNATSPublisher(conn *nats.Conn, subject string, logger zerolog.Logger) Publisher {
	if subject == "" {
		subject = "examind.submission.graded"
	}

	return &natsPublisher{
		conn:    conn,
		subject: subject,
		logger:  logger.With().Str("component", "events_publisher").Logger(),
	}
}

func (p *natsPublisher) SubmissionGraded(_ context.Context, event SubmissionGradedEvent) error {
	if p.conn == nil {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := p.conn.Publish(p.subject, payload); err != nil {
		return err
	}

	p.logger.Debug().Uint("submission_id", event.SubmissionID).Msg("submission graded event published")
	return nil
}
