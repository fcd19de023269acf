package ai

import "context"

// SourceDocument is one knowledge entry handed to the generation service as
// grounding material.
type SourceDocument struct {
	Title      string  `json:"title"`
	Category   string  `json:"category"`
	Excerpt    string  `json:"excerpt"`
	Confidence float64 `json:"confidence"`
}

type GenerateRequest struct {
	Question string           `json:"question"`
	Context  string           `json:"context"`
	Sources  []SourceDocument `json:"sources"`
}

type GenerateResponse struct {
	Success          bool   `json:"success"`
	Response         string `json:"response"`
	FallbackResponse string `json:"fallback_response,omitempty"`
	TokensUsed       int    `json:"tokens_used,omitempty"`
}

// Text returns whichever answer text the service produced, preferring the
// primary response over the fallback.
func (r *GenerateResponse) Text() string {
	if r == nil {
		return ""
	}
	if r.Response != "" {
		return r.Response
	}
	return r.FallbackResponse
}

// Generator produces a natural-language answer from a question and its
// supporting knowledge sources. Implementations must treat transport and
// service errors as ordinary errors; callers fall back to a templated
// answer when generation is unavailable.
type Generator interface {
	GenerateAnswer(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}
