package ai

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

const supportSystemPrompt = "You are a customer support assistant for an automotive parts store. " +
	"Answer only from the provided knowledge base sources. Be direct, reference store policies " +
	"where relevant, acknowledge when information is missing, and suggest contacting support " +
	"rather than inventing details."

// OpenAIGenerator implements Generator on top of the OpenAI chat completion
// API. Used when an API key is configured; the hosted answer endpoint is the
// default otherwise.
type OpenAIGenerator struct {
	client    *openai.Client
	model     string
	maxTokens int
	logger    *logrus.Logger
}

func NewOpenAIGenerator(apiKey, model string, logger *logrus.Logger) *OpenAIGenerator {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIGenerator{
		client:    openai.NewClient(apiKey),
		model:     model,
		maxTokens: 500,
		logger:    logger,
	}
}

func (g *OpenAIGenerator) GenerateAnswer(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	prompt := buildPrompt(req)

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: supportSystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: 0.7,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	g.logger.WithFields(logrus.Fields{
		"model":        g.model,
		"total_tokens": resp.Usage.TotalTokens,
	}).Debug("Answer generated")

	return &GenerateResponse{
		Success:    true,
		Response:   strings.TrimSpace(resp.Choices[0].Message.Content),
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}

// buildPrompt renders the numbered source list plus answering instructions.
func buildPrompt(req GenerateRequest) string {
	var b strings.Builder

	b.WriteString("Use the following knowledge base sources to answer the customer's question.\n\n")
	for i, src := range req.Sources {
		b.WriteString(fmt.Sprintf("%d. %s (%s)\n%s\n\n", i+1, src.Title, src.Category, src.Excerpt))
	}

	if req.Context != "" {
		b.WriteString("Additional context:\n")
		b.WriteString(req.Context)
		b.WriteString("\n\n")
	}

	b.WriteString("Question: ")
	b.WriteString(req.Question)
	b.WriteString("\n\nAnswer only from the sources above. Be direct, reference policies where ")
	b.WriteString("they apply, acknowledge gaps, and suggest contacting support if the sources ")
	b.WriteString("do not cover the question. Do not fabricate information.")

	return b.String()
}
