package agent

// CustomerQuery is one customer question. SessionID is used only for log
// correlation. CustomerType and Context are accepted for forward
// compatibility and do not alter retrieval.
type CustomerQuery struct {
	Question     string `json:"question"`
	SessionID    string `json:"session_id,omitempty"`
	CustomerType string `json:"customer_type,omitempty"`
	Context      string `json:"context,omitempty"`
}

// KnowledgeSource is a knowledge entry projected into an answer: the stored
// fields plus a content excerpt and the per-query relevance score.
type KnowledgeSource struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Excerpt    string  `json:"excerpt"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Relevance  float64 `json:"relevance"`
}

// Response is the structured answer returned for every question, including
// degraded and no-result paths.
type Response struct {
	Answer            string            `json:"answer"`
	Sources           []KnowledgeSource `json:"sources"`
	Confidence        float64           `json:"confidence"`
	ResponseTimeMs    int               `json:"response_time_ms"`
	NeedsHumanReview  bool              `json:"needs_human_review"`
	Suggestions       []string          `json:"suggestions"`
	FollowUpQuestions []string          `json:"follow_up_questions"`
}

// Stats summarizes interaction logs over a trailing window. AvgSatisfaction
// averages only the interactions where the customer left a rating.
type Stats struct {
	TotalInteractions int     `json:"total_interactions"`
	AvgConfidence     float64 `json:"avg_confidence"`
	AvgResponseTimeMs float64 `json:"avg_response_time_ms"`
	AvgSatisfaction   float64 `json:"avg_satisfaction"`
	RatedInteractions int     `json:"rated_interactions"`
}
