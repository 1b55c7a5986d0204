package postgres

import (
	"context"
	"errors"

	"github.com/atelia/agentdesk/internal/models"
	"github.com/atelia/agentdesk/internal/utils"
	"gorm.io/gorm"
)

type ConversationRepository interface {
	Insert(ctx context.Context, c *models.Conversation) error
	GetByID(ctx context.Context, id string) (*models.Conversation, error)
	ListByUser(ctx context.Context, userID string, includeArchived bool) ([]models.Conversation, error)
	SetArchived(ctx context.Context, id string, archived bool) error
}

type conversationRepo struct {
	db *gorm.DB
}

func NewConversationRepo(db *gorm.DB) ConversationRepository {
	return &conversationRepo{db: db}
}

func (r *conversationRepo) Insert(ctx context.Context, c *models.Conversation) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *conversationRepo) GetByID(ctx context.Context, id string) (*models.Conversation, error) {
	var row models.Conversation
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &row, err
}

func (r *conversationRepo) ListByUser(ctx context.Context, userID string, includeArchived bool) ([]models.Conversation, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if !includeArchived {
		q = q.Where("archived = false")
	}

	var rows []models.Conversation
	err := q.Order("created_at DESC").Find(&rows).Error
	return rows, err
}

func (r *conversationRepo) SetArchived(ctx context.Context, id string, archived bool) error {
	res := r.db.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("id = ?", id).
		Update("archived", archived)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}
