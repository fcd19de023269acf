package agent

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/partspoint/backend/internal/ai"
	"github.com/partspoint/backend/internal/models"
	"github.com/sirupsen/logrus"
)

const defaultGenerationTimeout = 8 * time.Second

// Engine answers customer questions from the knowledge base. It is stateless
// between calls and safe for concurrent use; all collaborators are injected
// so tests can substitute them.
type Engine struct {
	knowledge  models.KnowledgeRepository
	logs       models.InteractionLogRepository
	generator  ai.Generator
	logger     *logrus.Logger
	genTimeout time.Duration
}

func NewEngine(
	knowledge models.KnowledgeRepository,
	logs models.InteractionLogRepository,
	generator ai.Generator,
	logger *logrus.Logger,
) *Engine {
	return &Engine{
		knowledge:  knowledge,
		logs:       logs,
		generator:  generator,
		logger:     logger,
		genTimeout: defaultGenerationTimeout,
	}
}

// SetGenerationTimeout bounds the answer-generation call. A timed-out call
// falls back to the templated answer, same as a generation error.
func (e *Engine) SetGenerationTimeout(d time.Duration) {
	if d > 0 {
		e.genTimeout = d
	}
}

// AnswerCustomerQuestion runs the full pipeline: keyword extraction, the
// search cascade, relevance ranking, answer generation with template
// fallback, and a best-effort interaction log write. It never returns an
// error; every failure path degrades to a polite structured response.
func (e *Engine) AnswerCustomerQuestion(ctx context.Context, query CustomerQuery) (resp *Response) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			e.logger.WithFields(logrus.Fields{
				"panic":    r,
				"question": query.Question,
			}).Error("Answer pipeline panicked")
			resp = e.failureResponse(start)
		}
	}()

	question := strings.TrimSpace(query.Question)
	if question == "" {
		return e.noResultsResponse(start)
	}

	keywords := ExtractKeywords(question)
	e.logger.WithFields(logrus.Fields{
		"question": question,
		"keywords": keywords,
		"session":  query.SessionID,
	}).Debug("Answering customer question")

	entries := e.searchKnowledge(keywords)
	if len(entries) == 0 {
		return e.noResultsResponse(start)
	}

	sources := rankSources(question, entries)

	answer := e.generateAnswer(ctx, question, query.Context, sources)

	confidence := overallConfidence(sources)
	response := &Response{
		Answer:            answer,
		Sources:           sources,
		Confidence:        confidence,
		ResponseTimeMs:    int(time.Since(start).Milliseconds()),
		NeedsHumanReview:  confidence < reviewThreshold || len(sources) == 0,
		Suggestions:       buildSuggestions(sources),
		FollowUpQuestions: buildFollowUps(sources),
	}

	go e.logInteraction(question, query.SessionID, response)

	return response
}

// generateAnswer delegates to the generation service, falling back to the
// structured template on error, timeout, or an empty response.
func (e *Engine) generateAnswer(ctx context.Context, question, extraContext string, sources []KnowledgeSource) string {
	if len(sources) == 0 {
		return noInformationAnswer
	}

	genCtx, cancel := context.WithTimeout(ctx, e.genTimeout)
	defer cancel()

	req := ai.GenerateRequest{
		Question: question,
		Context:  buildSourceContext(sources),
		Sources:  toSourceDocuments(sources),
	}
	if extraContext != "" {
		req.Context = req.Context + "\n" + extraContext
	}

	result, err := e.generator.GenerateAnswer(genCtx, req)
	if err != nil {
		e.logger.WithError(err).Warn("Answer generation unavailable, using template fallback")
		return templateAnswer(sources)
	}

	if text := result.Text(); text != "" {
		return text
	}

	e.logger.Warn("Answer generation returned empty text, using template fallback")
	return templateAnswer(sources)
}

// GetInteractionStats aggregates interaction logs over the trailing window.
// Returns nil on a store error rather than propagating it.
func (e *Engine) GetInteractionStats(days int) *Stats {
	if days <= 0 {
		days = 30
	}

	since := time.Now().AddDate(0, 0, -days)
	logs, err := e.logs.GetSince(since)
	if err != nil {
		e.logger.WithError(err).Error("Failed to load interaction logs for stats")
		return nil
	}

	stats := &Stats{TotalInteractions: len(logs)}
	if len(logs) == 0 {
		return stats
	}

	var confidenceSum, responseSum, satisfactionSum float64
	for _, log := range logs {
		confidenceSum += log.Confidence
		responseSum += float64(log.ResponseTimeMs)
		if log.CustomerSatisfaction != nil {
			satisfactionSum += float64(*log.CustomerSatisfaction)
			stats.RatedInteractions++
		}
	}

	stats.AvgConfidence = confidenceSum / float64(len(logs))
	stats.AvgResponseTimeMs = responseSum / float64(len(logs))
	if stats.RatedInteractions > 0 {
		stats.AvgSatisfaction = satisfactionSum / float64(stats.RatedInteractions)
	}
	return stats
}

// RecordCustomerFeedback attaches a satisfaction rating to an interaction
// log. Returns false on any store error. Rating range is left to the schema.
func (e *Engine) RecordCustomerFeedback(interactionID string, satisfaction int, feedback string) bool {
	if err := e.logs.UpdateFeedback(interactionID, satisfaction, feedback); err != nil {
		e.logger.WithError(err).WithField("interaction_id", interactionID).Warn("Failed to record customer feedback")
		return false
	}
	return true
}

// logInteraction persists the interaction record. Best effort: run from a
// goroutine, failures are logged and dropped, and a panicking store can
// never reach the response path.
func (e *Engine) logInteraction(question, sessionID string, response *Response) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.WithField("panic", r).Error("Interaction logging panicked")
		}
	}()

	matched := make(models.StringArray, 0, len(response.Sources))
	for _, src := range response.Sources {
		matched = append(matched, src.ID)
	}

	record := &models.AIInteractionLog{
		ID:              uuid.NewString(),
		Question:        question,
		MatchedEntryIDs: matched,
		GeneratedAnswer: response.Answer,
		Confidence:      response.Confidence,
		SessionID:       sessionID,
		ResponseTimeMs:  response.ResponseTimeMs,
		SourceCount:     len(response.Sources),
		CreatedAt:       time.Now(),
	}

	if err := e.logs.Create(record); err != nil {
		e.logger.WithError(err).Warn("Failed to persist interaction log")
	}
}

func (e *Engine) noResultsResponse(start time.Time) *Response {
	return &Response{
		Answer:            noInformationAnswer,
		Sources:           []KnowledgeSource{},
		Confidence:        0.1,
		ResponseTimeMs:    int(time.Since(start).Milliseconds()),
		NeedsHumanReview:  true,
		Suggestions:       append([]string(nil), noResultSuggestions...),
		FollowUpQuestions: append([]string(nil), genericFollowUps...),
	}
}

func (e *Engine) failureResponse(start time.Time) *Response {
	return &Response{
		Answer:            technicalDifficultiesAnswer,
		Sources:           []KnowledgeSource{},
		Confidence:        0,
		ResponseTimeMs:    int(time.Since(start).Milliseconds()),
		NeedsHumanReview:  true,
		Suggestions:       append([]string(nil), noResultSuggestions...),
		FollowUpQuestions: append([]string(nil), genericFollowUps...),
	}
}
