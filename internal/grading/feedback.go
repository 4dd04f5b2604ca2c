package grading

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/examind/examind-api/internal/models"
)

const maxSummaryTopics = 3

// Synthesize builds the aggregate feedback summary from per-question results,
// grouping by question kind and annotating MCQ performance with topic tags
// from question metadata. Only the summary key of the feedback object is
// replaced; all other keys pass through untouched.
func Synthesize(feedback map[string]interface{}, perQuestion []PerQuestionGrade, totalScore, maxScore decimal.Decimal, questions map[uint]models.Question) map[string]interface{} {
	result := make(map[string]interface{}, len(feedback)+1)
	for k, v := range feedback {
		result[k] = v
	}

	percentage := 0.0
	if maxScore.IsPositive() {
		percentage = totalScore.Div(maxScore).InexactFloat64() * 100
	}

	var mcqResults, textResults []PerQuestionGrade
	for _, g := range perQuestion {
		if q, ok := questions[g.QuestionID]; ok && q.Type == models.QuestionTypeMCQ {
			mcqResults = append(mcqResults, g)
		} else {
			textResults = append(textResults, g)
		}
	}

	parts := []string{
		fmt.Sprintf("Overall Performance: %s/%s (%.1f%%).", totalScore.String(), maxScore.String(), percentage),
	}

	if len(mcqResults) > 0 {
		parts = append(parts, mcqSummary(mcqResults, questions))
	}

	if len(textResults) > 0 {
		parts = append(parts, textSummary(textResults, previousSummary(feedback)))
	}

	result["summary"] = strings.Join(parts, " ")
	return result
}

func mcqSummary(results []PerQuestionGrade, questions map[uint]models.Question) string {
	correct := 0
	score := decimal.Zero
	for _, g := range results {
		if g.IsCorrect != nil && *g.IsCorrect {
			correct++
		}
		score = score.Add(g.AwardedPoints)
	}

	topicContext := ""
	if topics := collectTopics(results, questions); len(topics) > 0 {
		topicContext = " covering " + strings.Join(topics, ", ")
	}

	total := len(results)
	switch {
	case correct == total:
		return fmt.Sprintf("Strong performance on multiple choice%s (all %d correct, %s points).", topicContext, total, score.String())
	case 2*correct > total:
		return fmt.Sprintf("Good understanding of multiple choice concepts%s (%d/%d correct, %s points).", topicContext, correct, total, score.String())
	default:
		return fmt.Sprintf("Multiple choice questions need improvement%s (%d/%d correct, %s points).", topicContext, correct, total, score.String())
	}
}

func textSummary(results []PerQuestionGrade, providerSummary string) string {
	// The provider's own narrative is preferred when it gave one.
	if providerSummary != "" {
		return providerSummary
	}

	answered := 0
	score := decimal.Zero
	for _, g := range results {
		if g.AwardedPoints.IsPositive() {
			answered++
		}
		score = score.Add(g.AwardedPoints)
	}

	total := len(results)
	switch {
	case answered == 0:
		return fmt.Sprintf("No answers provided for %d essay question(s).", total)
	case answered < total:
		return fmt.Sprintf("Partial completion: %d/%d essay question(s) answered (%s points).", answered, total, score.String())
	default:
		return fmt.Sprintf("Completed all %d essay question(s) (%s points).", total, score.String())
	}
}

func collectTopics(results []PerQuestionGrade, questions map[uint]models.Question) []string {
	var topics []string
	for _, g := range results {
		q, ok := questions[g.QuestionID]
		if !ok || q.Metadata == nil {
			continue
		}

		topic := stringValue(q.Metadata["topic"])
		if topic == "" {
			topic = stringValue(q.Metadata["subtopic"])
		}
		if topic == "" || slices.Contains(topics, topic) {
			continue
		}

		topics = append(topics, topic)
		if len(topics) == maxSummaryTopics {
			break
		}
	}
	return topics
}

func previousSummary(feedback map[string]interface{}) string {
	return strings.TrimSpace(stringValue(feedback["summary"]))
}

func stringValue(value interface{}) string {
	if s, ok := value.(string); ok {
		return s
	}
	return ""
}
