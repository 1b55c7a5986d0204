package postgres

import (
	"context"

	"github.com/atelia/agentdesk/internal/models"
	"gorm.io/gorm"
)

type MessageRepository interface {
	Insert(ctx context.Context, m *models.Message) error
	// LatestN returns the n most recent rows, newest first. Callers
	// that need chronological order reverse the slice.
	LatestN(ctx context.Context, userID, conversationID string, n int) ([]models.Message, error)
	ListByConversation(ctx context.Context, conversationID string) ([]models.Message, error)
}

type messageRepo struct {
	db *gorm.DB
}

func NewMessageRepo(db *gorm.DB) MessageRepository {
	return &messageRepo{db: db}
}

func (r *messageRepo) Insert(ctx context.Context, m *models.Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *messageRepo) LatestN(ctx context.Context, userID, conversationID string, n int) ([]models.Message, error) {
	if n <= 0 {
		n = 30
	}
	var rows []models.Message
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND conversation_id = ?", userID, conversationID).
		Order("created_at DESC").
		Limit(n).
		Find(&rows).Error
	return rows, err
}

func (r *messageRepo) ListByConversation(ctx context.Context, conversationID string) ([]models.Message, error) {
	var rows []models.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}
