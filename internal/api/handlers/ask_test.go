package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/partspoint/backend/internal/agent"
	"github.com/partspoint/backend/internal/ai"
	"github.com/partspoint/backend/internal/models"
	"github.com/partspoint/backend/internal/repository"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubKnowledgeRepo returns a fixed result set for every search stage.
type stubKnowledgeRepo struct {
	entries []models.KnowledgeEntry
}

func (s *stubKnowledgeRepo) Create(*models.KnowledgeEntry) error { return nil }
func (s *stubKnowledgeRepo) Update(*models.KnowledgeEntry) error { return nil }
func (s *stubKnowledgeRepo) Delete(string) error                 { return nil }

func (s *stubKnowledgeRepo) GetByID(string) (*models.KnowledgeEntry, error) {
	return nil, errors.New("not found")
}

func (s *stubKnowledgeRepo) GetByTitle(string) (*models.KnowledgeEntry, error) {
	return nil, errors.New("not found")
}

func (s *stubKnowledgeRepo) SearchPhrase(string, bool, int) ([]models.KnowledgeEntry, error) {
	return s.entries, nil
}

func (s *stubKnowledgeRepo) SearchAnyKeyword([]string, bool, int) ([]models.KnowledgeEntry, error) {
	return s.entries, nil
}

func (s *stubKnowledgeRepo) TopByConfidence(int) ([]models.KnowledgeEntry, error) {
	return s.entries, nil
}

type stubLogRepo struct {
	feedbackErr error
	sinceLogs   []models.AIInteractionLog
	sinceErr    error
}

func (s *stubLogRepo) Create(*models.AIInteractionLog) error { return nil }

func (s *stubLogRepo) GetByID(string) (*models.AIInteractionLog, error) {
	return nil, errors.New("not found")
}

func (s *stubLogRepo) UpdateFeedback(string, int, string) error { return s.feedbackErr }

func (s *stubLogRepo) GetSince(time.Time) ([]models.AIInteractionLog, error) {
	return s.sinceLogs, s.sinceErr
}

type stubPopularRepo struct {
	top []models.PopularQuestion
	err error
}

func (s *stubPopularRepo) IncrementCount(string) error { return nil }

func (s *stubPopularRepo) GetTop(int) ([]models.PopularQuestion, error) {
	return s.top, s.err
}

func (s *stubPopularRepo) UpdateStats(string, float64, int) error { return nil }

type stubGenerator struct{}

func (stubGenerator) GenerateAnswer(context.Context, ai.GenerateRequest) (*ai.GenerateResponse, error) {
	return nil, errors.New("generation disabled in tests")
}

func newTestHandler(knowledge *stubKnowledgeRepo, logs *stubLogRepo, popular *stubPopularRepo) *AskHandler {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	engine := agent.NewEngine(knowledge, logs, stubGenerator{}, logger)

	repoManager := &repository.RepositoryManager{
		Knowledge:       knowledge,
		InteractionLog:  logs,
		PopularQuestion: popular,
	}

	return NewAskHandler(engine, repoManager, nil, logger)
}

func performJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewBuffer(data)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func newTestRouter(handler *AskHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/ask", handler.HandleAsk)
	router.POST("/feedback", handler.HandleFeedback)
	router.GET("/stats", handler.HandleStats)
	router.GET("/suggestions", handler.HandleSuggestions)
	return router
}

func TestHandleAsk(t *testing.T) {
	knowledge := &stubKnowledgeRepo{entries: []models.KnowledgeEntry{{
		ID:              "kb-returns",
		Title:           "Return Policy",
		Content:         "Items can be returned within 30 days",
		Category:        "Returns",
		ConfidenceScore: 0.9,
		IsApproved:      true,
	}}}
	handler := newTestHandler(knowledge, &stubLogRepo{}, &stubPopularRepo{})
	router := newTestRouter(handler)

	recorder := performJSON(router, "POST", "/ask", models.AskRequest{
		Question:  "What is your return policy?",
		SessionID: "sess-1",
	})

	require.Equal(t, http.StatusOK, recorder.Code)

	var envelope struct {
		Success bool           `json:"success"`
		Data    agent.Response `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Contains(t, envelope.Data.Answer, "30 days")
	assert.NotEmpty(t, envelope.Data.Sources)
	assert.False(t, envelope.Data.NeedsHumanReview)
}

func TestHandleAsk_Validation(t *testing.T) {
	handler := newTestHandler(&stubKnowledgeRepo{}, &stubLogRepo{}, &stubPopularRepo{})
	router := newTestRouter(handler)

	cases := []struct {
		name string
		body interface{}
	}{
		{"missing question", map[string]string{}},
		{"blank question", models.AskRequest{Question: "   "}},
		{"oversized question", models.AskRequest{Question: strings.Repeat("a", 2001)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := performJSON(router, "POST", "/ask", tc.body)
			assert.Equal(t, http.StatusBadRequest, recorder.Code)
		})
	}
}

func TestHandleFeedback(t *testing.T) {
	handler := newTestHandler(&stubKnowledgeRepo{}, &stubLogRepo{}, &stubPopularRepo{})
	router := newTestRouter(handler)

	recorder := performJSON(router, "POST", "/feedback", models.FeedbackRequest{
		InteractionID: "interaction-1",
		Satisfaction:  5,
		FeedbackText:  "very helpful",
	})

	assert.Equal(t, http.StatusCreated, recorder.Code)
}

func TestHandleFeedback_UnknownInteraction(t *testing.T) {
	logs := &stubLogRepo{feedbackErr: errors.New("record not found")}
	handler := newTestHandler(&stubKnowledgeRepo{}, logs, &stubPopularRepo{})
	router := newTestRouter(handler)

	recorder := performJSON(router, "POST", "/feedback", models.FeedbackRequest{
		InteractionID: "nonexistent",
		Satisfaction:  1,
	})

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestHandleStats(t *testing.T) {
	logs := &stubLogRepo{sinceLogs: []models.AIInteractionLog{
		{Confidence: 0.8, ResponseTimeMs: 120},
		{Confidence: 0.6, ResponseTimeMs: 80},
	}}
	handler := newTestHandler(&stubKnowledgeRepo{}, logs, &stubPopularRepo{})
	router := newTestRouter(handler)

	recorder := performJSON(router, "GET", "/stats?days=7", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var envelope struct {
		Data agent.Stats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.Equal(t, 2, envelope.Data.TotalInteractions)
	assert.InDelta(t, 0.7, envelope.Data.AvgConfidence, 1e-9)
}

func TestHandleStats_StoreError(t *testing.T) {
	logs := &stubLogRepo{sinceErr: errors.New("store down")}
	handler := newTestHandler(&stubKnowledgeRepo{}, logs, &stubPopularRepo{})
	router := newTestRouter(handler)

	recorder := performJSON(router, "GET", "/stats", nil)
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
}

func TestHandleSuggestions(t *testing.T) {
	popular := &stubPopularRepo{top: []models.PopularQuestion{
		{QuestionText: "What is your return policy?"},
		{QuestionText: "How long does shipping take?"},
	}}
	handler := newTestHandler(&stubKnowledgeRepo{}, &stubLogRepo{}, popular)
	router := newTestRouter(handler)

	recorder := performJSON(router, "GET", "/suggestions?q=return", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var envelope struct {
		Data []models.PopularQuestion `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "What is your return policy?", envelope.Data[0].QuestionText)
}

func TestHandleSuggestions_MissingQuery(t *testing.T) {
	handler := newTestHandler(&stubKnowledgeRepo{}, &stubLogRepo{}, &stubPopularRepo{})
	router := newTestRouter(handler)

	recorder := performJSON(router, "GET", "/suggestions", nil)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
