package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/atelia/agentdesk/internal/cache"
	"github.com/atelia/agentdesk/internal/models"
	pgrepo "github.com/atelia/agentdesk/internal/repositories/postgres"
	"github.com/atelia/agentdesk/internal/utils"
)

var slugRe = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// AgentService owns the agent catalog. Create/Update/Delete sit behind
// the admin group.
type AgentService interface {
	List(ctx context.Context) ([]models.Agent, error)
	GetBySlug(ctx context.Context, slug string) (*models.Agent, error)
	Create(ctx context.Context, slug, name, systemPrompt, model string) (*models.Agent, error)
	Update(ctx context.Context, slug, name, systemPrompt, model string) (*models.Agent, error)
	Delete(ctx context.Context, slug string) error
}

type agentService struct {
	agents pgrepo.AgentRepository
	cache  cache.Cache // optional
}

func NewAgentService(agents pgrepo.AgentRepository, c cache.Cache) AgentService {
	return &agentService{agents: agents, cache: c}
}

func (s *agentService) List(ctx context.Context) ([]models.Agent, error) {
	const op = "AgentService.List"

	rows, err := s.agents.List(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list agents", err)
	}
	return rows, nil
}

func (s *agentService) GetBySlug(ctx context.Context, slug string) (*models.Agent, error) {
	const op = "AgentService.GetBySlug"

	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "slug is required", nil)
	}

	a, err := s.agents.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "agent not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get agent", err)
	}
	return a, nil
}

func (s *agentService) Create(ctx context.Context, slug, name, systemPrompt, model string) (*models.Agent, error) {
	const op = "AgentService.Create"

	slug = strings.ToLower(strings.TrimSpace(slug))
	name = strings.TrimSpace(name)
	if slug == "" || name == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "slug and name are required", nil)
	}
	if !slugRe.MatchString(slug) {
		return nil, utils.E(utils.CodeInvalidArgument, op, "slug must be lowercase alphanumeric with dashes", nil)
	}

	now := time.Now().UTC()
	a := &models.Agent{
		ID:           uuid.NewString(),
		Slug:         slug,
		Name:         name,
		SystemPrompt: systemPrompt,
		Model:        strings.TrimSpace(model),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.agents.Insert(ctx, a); err != nil {
		return nil, utils.E(utils.CodeConflict, op, "failed to create agent (slug taken?)", err)
	}
	return a, nil
}

func (s *agentService) Update(ctx context.Context, slug, name, systemPrompt, model string) (*models.Agent, error) {
	const op = "AgentService.Update"

	a, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if name = strings.TrimSpace(name); name != "" {
		a.Name = name
	}
	a.SystemPrompt = systemPrompt
	a.Model = strings.TrimSpace(model)
	a.UpdatedAt = time.Now().UTC()

	if err := s.agents.Update(ctx, a); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update agent", err)
	}
	s.invalidate(ctx, a.Slug)
	return a, nil
}

func (s *agentService) Delete(ctx context.Context, slug string) error {
	const op = "AgentService.Delete"

	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return utils.E(utils.CodeInvalidArgument, op, "slug is required", nil)
	}

	if err := s.agents.DeleteBySlug(ctx, slug); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "agent not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to delete agent", err)
	}
	s.invalidate(ctx, slug)
	return nil
}

func (s *agentService) invalidate(ctx context.Context, slug string) {
	if s.cache != nil {
		_ = s.cache.Del(ctx, cache.KeyAgent(slug))
	}
}
