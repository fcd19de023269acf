package repository

import (
	"strings"
	"time"

	"github.com/partspoint/backend/internal/models"
	"gorm.io/gorm"
)

// KnowledgeRepositoryImpl implements KnowledgeRepository
type KnowledgeRepositoryImpl struct {
	db *gorm.DB
}

func NewKnowledgeRepository(db *gorm.DB) models.KnowledgeRepository {
	return &KnowledgeRepositoryImpl{db: db}
}

func (r *KnowledgeRepositoryImpl) Create(entry *models.KnowledgeEntry) error {
	return r.db.Create(entry).Error
}

func (r *KnowledgeRepositoryImpl) GetByID(id string) (*models.KnowledgeEntry, error) {
	var entry models.KnowledgeEntry
	err := r.db.Where("id = ?", id).First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *KnowledgeRepositoryImpl) GetByTitle(title string) (*models.KnowledgeEntry, error) {
	var entry models.KnowledgeEntry
	err := r.db.Where("title = ?", title).First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *KnowledgeRepositoryImpl) Update(entry *models.KnowledgeEntry) error {
	return r.db.Save(entry).Error
}

func (r *KnowledgeRepositoryImpl) Delete(id string) error {
	return r.db.Delete(&models.KnowledgeEntry{}, "id = ?", id).Error
}

func (r *KnowledgeRepositoryImpl) SearchPhrase(phrase string, approvedOnly bool, limit int) ([]models.KnowledgeEntry, error) {
	var entries []models.KnowledgeEntry
	pattern := "%" + phrase + "%"

	query := r.db.Where("title ILIKE ? OR content ILIKE ?", pattern, pattern)
	if approvedOnly {
		query = query.Where("is_approved = ?", true)
	}

	err := query.Order("confidence_score DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

func (r *KnowledgeRepositoryImpl) SearchAnyKeyword(keywords []string, approvedOnly bool, limit int) ([]models.KnowledgeEntry, error) {
	var entries []models.KnowledgeEntry
	if len(keywords) == 0 {
		return entries, nil
	}

	var conds []string
	var args []interface{}
	for _, kw := range keywords {
		pattern := "%" + kw + "%"
		conds = append(conds, "(title ILIKE ? OR content ILIKE ? OR array_to_string(tags, ' ') ILIKE ?)")
		args = append(args, pattern, pattern, pattern)
	}

	query := r.db.Where(strings.Join(conds, " OR "), args...)
	if approvedOnly {
		query = query.Where("is_approved = ?", true)
	}

	err := query.Order("confidence_score DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

func (r *KnowledgeRepositoryImpl) TopByConfidence(limit int) ([]models.KnowledgeEntry, error) {
	var entries []models.KnowledgeEntry
	err := r.db.Order("confidence_score DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// InteractionLogRepositoryImpl implements InteractionLogRepository
type InteractionLogRepositoryImpl struct {
	db *gorm.DB
}

func NewInteractionLogRepository(db *gorm.DB) models.InteractionLogRepository {
	return &InteractionLogRepositoryImpl{db: db}
}

func (r *InteractionLogRepositoryImpl) Create(log *models.AIInteractionLog) error {
	return r.db.Create(log).Error
}

func (r *InteractionLogRepositoryImpl) GetByID(id string) (*models.AIInteractionLog, error) {
	var log models.AIInteractionLog
	err := r.db.Where("id = ?", id).First(&log).Error
	if err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *InteractionLogRepositoryImpl) UpdateFeedback(id string, satisfaction int, feedback string) error {
	result := r.db.Model(&models.AIInteractionLog{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"customer_satisfaction": satisfaction,
			"feedback":              feedback,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *InteractionLogRepositoryImpl) GetSince(since time.Time) ([]models.AIInteractionLog, error) {
	var logs []models.AIInteractionLog
	err := r.db.Where("created_at >= ?", since).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}

// PopularQuestionRepositoryImpl implements PopularQuestionRepository
type PopularQuestionRepositoryImpl struct {
	db *gorm.DB
}

func NewPopularQuestionRepository(db *gorm.DB) models.PopularQuestionRepository {
	return &PopularQuestionRepositoryImpl{db: db}
}

func (r *PopularQuestionRepositoryImpl) IncrementCount(questionText string) error {
	return r.db.Exec(`
		INSERT INTO popular_questions (question_text, ask_count, last_asked, created_at, updated_at)
		VALUES (?, 1, NOW(), NOW(), NOW())
		ON CONFLICT (question_text)
		DO UPDATE SET
			ask_count = popular_questions.ask_count + 1,
			last_asked = NOW(),
			updated_at = NOW()
	`, questionText).Error
}

func (r *PopularQuestionRepositoryImpl) GetTop(limit int) ([]models.PopularQuestion, error) {
	var questions []models.PopularQuestion
	err := r.db.Order("ask_count DESC").
		Limit(limit).
		Find(&questions).Error
	return questions, err
}

func (r *PopularQuestionRepositoryImpl) UpdateStats(questionText string, confidence float64, responseTime int) error {
	return r.db.Exec(`
		UPDATE popular_questions
		SET
			avg_confidence = (avg_confidence * (ask_count - 1) + ?) / ask_count,
			avg_response_time_ms = (avg_response_time_ms * (ask_count - 1) + ?) / ask_count,
			updated_at = NOW()
		WHERE question_text = ?
	`, confidence, responseTime, questionText).Error
}

// SystemHealthRepositoryImpl implements SystemHealthRepository
type SystemHealthRepositoryImpl struct {
	db *gorm.DB
}

func NewSystemHealthRepository(db *gorm.DB) models.SystemHealthRepository {
	return &SystemHealthRepositoryImpl{db: db}
}

func (r *SystemHealthRepositoryImpl) UpdateServiceHealth(serviceName, status string, responseTime int, errorMsg string) error {
	return r.db.Exec(`
		INSERT INTO system_health (service_name, status, response_time_ms, error_message, checked_at)
		VALUES (?, ?, ?, ?, NOW())
	`, serviceName, status, responseTime, errorMsg).Error
}

func (r *SystemHealthRepositoryImpl) GetServiceHealth(serviceName string) (*models.SystemHealth, error) {
	var health models.SystemHealth
	err := r.db.Where("service_name = ?", serviceName).
		Order("checked_at DESC").
		First(&health).Error
	if err != nil {
		return nil, err
	}
	return &health, nil
}

func (r *SystemHealthRepositoryImpl) GetAllServicesHealth() ([]models.SystemHealth, error) {
	var health []models.SystemHealth
	err := r.db.Raw(`
		SELECT DISTINCT ON (service_name) *
		FROM system_health
		ORDER BY service_name, checked_at DESC
	`).Scan(&health).Error
	return health, err
}

// RepositoryManager bundles all repositories
type RepositoryManager struct {
	Knowledge       models.KnowledgeRepository
	InteractionLog  models.InteractionLogRepository
	PopularQuestion models.PopularQuestionRepository
	SystemHealth    models.SystemHealthRepository
}

func NewRepositoryManager(db *gorm.DB) *RepositoryManager {
	return &RepositoryManager{
		Knowledge:       NewKnowledgeRepository(db),
		InteractionLog:  NewInteractionLogRepository(db),
		PopularQuestion: NewPopularQuestionRepository(db),
		SystemHealth:    NewSystemHealthRepository(db),
	}
}
