package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/atelia/agentdesk/internal/models"
	pgrepo "github.com/atelia/agentdesk/internal/repositories/postgres"
	"github.com/atelia/agentdesk/internal/utils"
)

type AgentConfigService interface {
	Get(ctx context.Context, userID, agentSlug string) (*models.AgentConfig, error)
	Upsert(ctx context.Context, userID, agentSlug, systemPrompt string, sources []models.Source, workflows []string) (*models.AgentConfig, error)
}

type agentConfigService struct {
	agents  pgrepo.AgentRepository
	configs pgrepo.AgentConfigRepository
}

func NewAgentConfigService(agents pgrepo.AgentRepository, configs pgrepo.AgentConfigRepository) AgentConfigService {
	return &agentConfigService{agents: agents, configs: configs}
}

func (s *agentConfigService) Get(ctx context.Context, userID, agentSlug string) (*models.AgentConfig, error) {
	const op = "AgentConfigService.Get"

	agent, err := s.resolveAgent(ctx, op, agentSlug)
	if err != nil {
		return nil, err
	}

	cfg, err := s.configs.GetByUserAndAgent(ctx, userID, agent.ID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "no config for this agent", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get config", err)
	}
	return cfg, nil
}

func (s *agentConfigService) Upsert(ctx context.Context, userID, agentSlug, systemPrompt string, sources []models.Source, workflows []string) (*models.AgentConfig, error) {
	const op = "AgentConfigService.Upsert"

	agent, err := s.resolveAgent(ctx, op, agentSlug)
	if err != nil {
		return nil, err
	}

	for _, src := range sources {
		switch src.Type {
		case models.SourceTypeURL:
			if strings.TrimSpace(src.URL) == "" {
				return nil, utils.E(utils.CodeInvalidArgument, op, "url source needs a url", nil)
			}
		case models.SourceTypeFile:
			if strings.TrimSpace(src.Path) == "" {
				return nil, utils.E(utils.CodeInvalidArgument, op, "file source needs a storage path", nil)
			}
		default:
			return nil, utils.E(utils.CodeInvalidArgument, op, "source type must be 'url' or 'file'", nil)
		}
	}

	raw, err := json.Marshal(sources)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to encode sources", err)
	}

	cfg := &models.AgentConfig{
		ID:           uuid.NewString(),
		UserID:       userID,
		AgentID:      agent.ID,
		SystemPrompt: systemPrompt,
		Sources:      datatypes.JSON(raw),
		Workflows:    workflows,
		UpdatedAt:    time.Now().UTC(),
	}
	if err := s.configs.Upsert(ctx, cfg); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to upsert config", err)
	}
	return cfg, nil
}

func (s *agentConfigService) resolveAgent(ctx context.Context, op, agentSlug string) (*models.Agent, error) {
	agentSlug = strings.ToLower(strings.TrimSpace(agentSlug))
	if agentSlug == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "agent_slug is required", nil)
	}

	agent, err := s.agents.GetBySlug(ctx, agentSlug)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "agent not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to resolve agent", err)
	}
	return agent, nil
}
