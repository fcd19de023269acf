package models

// GORM models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StringArray for PostgreSQL array support
type StringArray []string

func (s StringArray) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "{}", nil
	}
	return fmt.Sprintf("{%s}", strings.Join(s, ",")), nil
}

func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = StringArray{}
		return nil
	}

	switch v := value.(type) {
	case string:
		if v == "{}" {
			*s = StringArray{}
			return nil
		}
		v = strings.Trim(v, "{}")
		if v == "" {
			*s = StringArray{}
			return nil
		}
		*s = StringArray(strings.Split(v, ","))
	case []byte:
		return s.Scan(string(v))
	default:
		return fmt.Errorf("cannot scan %T into StringArray", value)
	}
	return nil
}

// KnowledgeEntry is a support knowledge base document eligible to answer
// customer questions. ConfidenceScore is editorially assigned when the entry
// is written; the answer engine never recomputes it.
type KnowledgeEntry struct {
	ID              string      `json:"id" gorm:"primaryKey;type:uuid"`
	Title           string      `json:"title" gorm:"not null"`
	Content         string      `json:"content" gorm:"not null"`
	Category        string      `json:"category" gorm:"index"`
	ConfidenceScore float64     `json:"confidence_score" gorm:"type:decimal(3,2);default:0.5"`
	Tags            StringArray `json:"tags" gorm:"type:text[]"`
	IsApproved      bool        `json:"is_approved" gorm:"default:false;index"`
	SourceURL       string      `json:"source_url"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// AIInteractionLog records one answered customer question. Written once per
// question; CustomerSatisfaction and Feedback are attached later when the
// customer rates the answer.
type AIInteractionLog struct {
	ID                   string      `json:"id" gorm:"primaryKey;type:uuid"`
	Question             string      `json:"question" gorm:"not null"`
	MatchedEntryIDs      StringArray `json:"matched_entry_ids" gorm:"type:text[]"`
	GeneratedAnswer      string      `json:"generated_answer"`
	Confidence           float64     `json:"confidence"`
	SessionID            string      `json:"session_id"`
	ResponseTimeMs       int         `json:"response_time_ms"`
	SourceCount          int         `json:"source_count"`
	CustomerSatisfaction *int        `json:"customer_satisfaction"`
	Feedback             string      `json:"feedback"`
	CreatedAt            time.Time   `json:"created_at" gorm:"index"`
}

// PopularQuestion represents frequently asked questions
type PopularQuestion struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	QuestionText      string    `json:"question_text" gorm:"unique;not null"`
	AskCount          int       `json:"ask_count" gorm:"default:1"`
	AvgConfidence     float64   `json:"avg_confidence" gorm:"type:decimal(3,2);default:0"`
	AvgResponseTimeMs int       `json:"avg_response_time_ms" gorm:"default:0"`
	LastAsked         time.Time `json:"last_asked" gorm:"default:NOW()"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// SystemHealth represents service health monitoring
type SystemHealth struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	ServiceName    string    `json:"service_name" gorm:"not null"`
	Status         string    `json:"status" gorm:"not null;check:status IN ('healthy','degraded','unhealthy')"`
	ResponseTimeMs int       `json:"response_time_ms"`
	ErrorMessage   string    `json:"error_message"`
	CheckedAt      time.Time `json:"checked_at" gorm:"default:NOW()"`
}

// Database interfaces for repository pattern

// KnowledgeRepository exposes the search primitives the answer engine needs
// plus the CRUD used by the seeder. Phrase and keyword matches are
// case-insensitive substring matches ordered by stored confidence.
type KnowledgeRepository interface {
	Create(entry *KnowledgeEntry) error
	GetByID(id string) (*KnowledgeEntry, error)
	GetByTitle(title string) (*KnowledgeEntry, error)
	Update(entry *KnowledgeEntry) error
	Delete(id string) error
	SearchPhrase(phrase string, approvedOnly bool, limit int) ([]KnowledgeEntry, error)
	SearchAnyKeyword(keywords []string, approvedOnly bool, limit int) ([]KnowledgeEntry, error)
	TopByConfidence(limit int) ([]KnowledgeEntry, error)
}

type InteractionLogRepository interface {
	Create(log *AIInteractionLog) error
	GetByID(id string) (*AIInteractionLog, error)
	UpdateFeedback(id string, satisfaction int, feedback string) error
	GetSince(since time.Time) ([]AIInteractionLog, error)
}

type PopularQuestionRepository interface {
	IncrementCount(questionText string) error
	GetTop(limit int) ([]PopularQuestion, error)
	UpdateStats(questionText string, confidence float64, responseTime int) error
}

type SystemHealthRepository interface {
	UpdateServiceHealth(serviceName, status string, responseTime int, errorMsg string) error
	GetServiceHealth(serviceName string) (*SystemHealth, error)
	GetAllServicesHealth() ([]SystemHealth, error)
}

// TableName methods for custom table names
func (KnowledgeEntry) TableName() string   { return "knowledge_entries" }
func (AIInteractionLog) TableName() string { return "ai_interaction_logs" }
func (PopularQuestion) TableName() string  { return "popular_questions" }
func (SystemHealth) TableName() string     { return "system_health" }

// Model validation methods
func (ke *KnowledgeEntry) Validate() error {
	if ke.Title == "" {
		return fmt.Errorf("knowledge entry title is required")
	}
	if ke.Content == "" {
		return fmt.Errorf("knowledge entry content is required")
	}
	if ke.ConfidenceScore < 0 || ke.ConfidenceScore > 1 {
		return fmt.Errorf("confidence score must be between 0 and 1, got %f", ke.ConfidenceScore)
	}
	return nil
}

func (il *AIInteractionLog) Validate() error {
	if il.Question == "" {
		return fmt.Errorf("question is required")
	}
	if il.ResponseTimeMs < 0 {
		return fmt.Errorf("response time cannot be negative")
	}
	return nil
}

// GORM hooks
func (ke *KnowledgeEntry) BeforeCreate(tx *gorm.DB) error {
	if ke.ID == "" {
		ke.ID = uuid.NewString()
	}
	return ke.Validate()
}

func (ke *KnowledgeEntry) BeforeUpdate(tx *gorm.DB) error {
	return ke.Validate()
}

func (il *AIInteractionLog) BeforeCreate(tx *gorm.DB) error {
	if il.ID == "" {
		il.ID = uuid.NewString()
	}
	return il.Validate()
}
