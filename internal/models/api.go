package models

type AskRequest struct {
	Question     string `json:"question" binding:"required"`
	SessionID    string `json:"session_id"`
	CustomerType string `json:"customer_type"`
	Context      string `json:"context"`
}

type FeedbackRequest struct {
	InteractionID string `json:"interaction_id" binding:"required"`
	Satisfaction  int    `json:"satisfaction" binding:"required"`
	FeedbackText  string `json:"feedback_text"`
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}
