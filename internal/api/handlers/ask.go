package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/partspoint/backend/internal/agent"
	"github.com/partspoint/backend/internal/database"
	"github.com/partspoint/backend/internal/models"
	"github.com/partspoint/backend/internal/repository"
	"github.com/partspoint/backend/pkg/utils"
	"github.com/sirupsen/logrus"
)

const (
	maxQuestionLength = 2000
	answerCacheTTL    = 5 * time.Minute
)

type AskHandler struct {
	engine      *agent.Engine
	repoManager *repository.RepositoryManager
	cache       *database.Cache
	logger      *logrus.Logger
}

func NewAskHandler(
	engine *agent.Engine,
	repoManager *repository.RepositoryManager,
	cache *database.Cache,
	logger *logrus.Logger,
) *AskHandler {
	return &AskHandler{
		engine:      engine,
		repoManager: repoManager,
		cache:       cache,
		logger:      logger,
	}
}

// HandleAsk answers a customer question
func (h *AskHandler) HandleAsk(c *gin.Context) {
	var req models.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Invalid ask request")
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Question cannot be empty", nil)
		return
	}

	if len(question) > maxQuestionLength {
		utils.ErrorResponse(c, http.StatusBadRequest, "Question too long (max 2000 characters)", nil)
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = h.getUserSession(c)
	}

	h.logger.WithFields(logrus.Fields{
		"question":   question,
		"session_id": sessionID,
		"ip_address": c.ClientIP(),
	}).Info("Processing customer question")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	cacheKey := utils.MD5Hash(strings.ToLower(question))

	cached := &agent.Response{}
	if h.cache != nil {
		if err := h.cache.GetCachedAnswer(ctx, cacheKey, cached); err == nil {
			h.logger.Debug("Answer served from cache")
			utils.SuccessResponse(c, http.StatusOK, "Question answered", cached)
			return
		}
	}

	response := h.engine.AnswerCustomerQuestion(ctx, agent.CustomerQuery{
		Question:     question,
		SessionID:    sessionID,
		CustomerType: req.CustomerType,
		Context:      req.Context,
	})

	// Degraded answers are not worth caching
	if h.cache != nil && len(response.Sources) > 0 {
		if err := h.cache.CacheAnswer(ctx, cacheKey, response, answerCacheTTL); err != nil {
			h.logger.WithError(err).Warn("Failed to cache answer")
		}
	}

	go h.updatePopularQuestions(question, response)

	h.logger.WithFields(logrus.Fields{
		"sources":       len(response.Sources),
		"confidence":    response.Confidence,
		"needs_review":  response.NeedsHumanReview,
		"response_time": response.ResponseTimeMs,
	}).Info("Question answered")

	utils.SuccessResponse(c, http.StatusOK, "Question answered", response)
}

// HandleFeedback attaches a customer satisfaction rating to an interaction
func (h *AskHandler) HandleFeedback(c *gin.Context) {
	var req models.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid feedback format", err)
		return
	}

	if ok := h.engine.RecordCustomerFeedback(req.InteractionID, req.Satisfaction, req.FeedbackText); !ok {
		utils.ErrorResponse(c, http.StatusNotFound, "Interaction not found", nil)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"interaction_id": req.InteractionID,
		"satisfaction":   req.Satisfaction,
	}).Info("Customer feedback recorded")

	utils.SuccessResponse(c, http.StatusCreated, "Feedback recorded", nil)
}

// HandleStats returns aggregated interaction statistics
func (h *AskHandler) HandleStats(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))

	stats := h.engine.GetInteractionStats(days)
	if stats == nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to load interaction stats", nil)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Stats retrieved", stats)
}

// HandleSuggestions returns popular question suggestions matching a prefix
func (h *AskHandler) HandleSuggestions(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Query parameter 'q' is required", nil)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))
	if limit > 10 {
		limit = 10
	}

	suggestions, err := h.repoManager.PopularQuestion.GetTop(limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get question suggestions")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to get suggestions", err)
		return
	}

	filtered := make([]models.PopularQuestion, 0)
	queryLower := strings.ToLower(query)

	for _, suggestion := range suggestions {
		if strings.Contains(strings.ToLower(suggestion.QuestionText), queryLower) {
			filtered = append(filtered, suggestion)
		}
	}

	utils.SuccessResponse(c, http.StatusOK, "Suggestions retrieved", filtered)
}

// Helper methods

func (h *AskHandler) getUserSession(c *gin.Context) string {
	if session := c.GetHeader("X-Session-ID"); session != "" {
		return session
	}

	userAgent := c.GetHeader("User-Agent")
	clientIP := c.ClientIP()

	return utils.GenerateSessionID(clientIP + userAgent)
}

func (h *AskHandler) updatePopularQuestions(question string, response *agent.Response) {
	if h.repoManager == nil {
		return
	}

	if err := h.repoManager.PopularQuestion.IncrementCount(question); err != nil {
		h.logger.WithError(err).Error("Failed to update popular questions")
		return
	}

	if err := h.repoManager.PopularQuestion.UpdateStats(question, response.Confidence, response.ResponseTimeMs); err != nil {
		h.logger.WithError(err).Error("Failed to update question stats")
	}
}
