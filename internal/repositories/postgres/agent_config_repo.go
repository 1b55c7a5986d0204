package postgres

import (
	"context"
	"errors"

	"github.com/atelia/agentdesk/internal/models"
	"github.com/atelia/agentdesk/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AgentConfigRepository interface {
	GetByUserAndAgent(ctx context.Context, userID, agentID string) (*models.AgentConfig, error)
	Upsert(ctx context.Context, c *models.AgentConfig) error
}

type agentConfigRepo struct {
	db *gorm.DB
}

func NewAgentConfigRepo(db *gorm.DB) AgentConfigRepository {
	return &agentConfigRepo{db: db}
}

func (r *agentConfigRepo) GetByUserAndAgent(ctx context.Context, userID, agentID string) (*models.AgentConfig, error) {
	var c models.AgentConfig
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND agent_id = ?", userID, agentID).
		Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &c, err
}

// Upsert keeps the one-active-config-per-(user, agent) invariant: a
// conflict on the pair updates the existing row in place.
func (r *agentConfigRepo) Upsert(ctx context.Context, c *models.AgentConfig) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "agent_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"system_prompt", "sources", "workflows", "updated_at"}),
		}).
		Create(c).Error
}
