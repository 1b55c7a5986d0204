package postgres

import (
	"context"
	"errors"

	"github.com/atelia/agentdesk/internal/models"
	"github.com/atelia/agentdesk/internal/utils"
	"gorm.io/gorm"
)

type AgentRepository interface {
	GetBySlug(ctx context.Context, slug string) (*models.Agent, error)
	List(ctx context.Context) ([]models.Agent, error)
	Insert(ctx context.Context, a *models.Agent) error
	Update(ctx context.Context, a *models.Agent) error
	DeleteBySlug(ctx context.Context, slug string) error
}

type agentRepo struct {
	db *gorm.DB
}

func NewAgentRepo(db *gorm.DB) AgentRepository {
	return &agentRepo{db: db}
}

func (r *agentRepo) GetBySlug(ctx context.Context, slug string) (*models.Agent, error) {
	var a models.Agent
	err := r.db.WithContext(ctx).Where("slug = ?", slug).Take(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &a, err
}

func (r *agentRepo) List(ctx context.Context) ([]models.Agent, error) {
	var rows []models.Agent
	err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error
	return rows, err
}

func (r *agentRepo) Insert(ctx context.Context, a *models.Agent) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *agentRepo) Update(ctx context.Context, a *models.Agent) error {
	res := r.db.WithContext(ctx).
		Model(&models.Agent{}).
		Where("id = ?", a.ID).
		Updates(map[string]any{
			"name":          a.Name,
			"system_prompt": a.SystemPrompt,
			"model":         a.Model,
			"updated_at":    a.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *agentRepo) DeleteBySlug(ctx context.Context, slug string) error {
	res := r.db.WithContext(ctx).Where("slug = ?", slug).Delete(&models.Agent{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}
