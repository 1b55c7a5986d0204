package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/atelia/agentdesk/internal/models"
	"github.com/atelia/agentdesk/internal/prompt"
	pgrepo "github.com/atelia/agentdesk/internal/repositories/postgres"
	"github.com/atelia/agentdesk/internal/utils"
)

type ConversationService interface {
	Create(ctx context.Context, userID, agentSlug, title string) (*models.Conversation, error)
	ListByUser(ctx context.Context, userID string, includeArchived bool) ([]models.Conversation, error)
	Archive(ctx context.Context, userID, conversationID string) error
	Messages(ctx context.Context, userID, conversationID string) ([]models.Message, error)
}

type conversationService struct {
	conversations pgrepo.ConversationRepository
	messages      pgrepo.MessageRepository
	agents        pgrepo.AgentRepository
	configs       pgrepo.AgentConfigRepository
}

func NewConversationService(
	conversations pgrepo.ConversationRepository,
	messages pgrepo.MessageRepository,
	agents pgrepo.AgentRepository,
	configs pgrepo.AgentConfigRepository,
) ConversationService {
	return &conversationService{
		conversations: conversations,
		messages:      messages,
		agents:        agents,
		configs:       configs,
	}
}

// Create opens a conversation and seeds it with the agent's greeting.
// The greeting is the only message the service writes; every later row
// comes from the turn pipeline.
func (s *conversationService) Create(ctx context.Context, userID, agentSlug, title string) (*models.Conversation, error) {
	const op = "ConversationService.Create"

	agentSlug = strings.ToLower(strings.TrimSpace(agentSlug))
	if userID == "" || agentSlug == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and agent_slug are required", nil)
	}

	agent, err := s.agents.GetBySlug(ctx, agentSlug)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "agent not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to resolve agent", err)
	}

	if title = strings.TrimSpace(title); title == "" {
		title = agent.Name
	}

	now := time.Now().UTC()
	conv := &models.Conversation{
		ID:        uuid.NewString(),
		UserID:    userID,
		AgentSlug: agentSlug,
		Title:     title,
		CreatedAt: now,
	}
	if err := s.conversations.Insert(ctx, conv); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create conversation", err)
	}

	greeting := &models.Message{
		ID:             uuid.NewString(),
		ConversationID: conv.ID,
		UserID:         userID,
		Role:           models.RoleAssistant,
		Content:        s.greeting(ctx, userID, agent),
		CreatedAt:      now,
	}
	if err := s.messages.Insert(ctx, greeting); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to insert greeting", err)
	}

	return conv, nil
}

// greeting personalizes the opening line with the company the agent's
// resolved prompt claims to work for, when the prompt says so.
func (s *conversationService) greeting(ctx context.Context, userID string, agent *models.Agent) string {
	systemPrompt := agent.SystemPrompt
	if cfg, err := s.configs.GetByUserAndAgent(ctx, userID, agent.ID); err == nil && cfg != nil && strings.TrimSpace(cfg.SystemPrompt) != "" {
		systemPrompt = cfg.SystemPrompt
	}

	if company := prompt.CompanyName(systemPrompt); company != "" {
		return "Bonjour ! Je suis " + agent.Name + ", l'assistant de " + company + ". Comment puis-je vous aider ?"
	}
	return "Bonjour ! Je suis " + agent.Name + ". Comment puis-je vous aider ?"
}

func (s *conversationService) ListByUser(ctx context.Context, userID string, includeArchived bool) ([]models.Conversation, error) {
	const op = "ConversationService.ListByUser"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}

	rows, err := s.conversations.ListByUser(ctx, userID, includeArchived)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list conversations", err)
	}
	return rows, nil
}

func (s *conversationService) Archive(ctx context.Context, userID, conversationID string) error {
	const op = "ConversationService.Archive"

	conv, err := s.authorize(ctx, op, userID, conversationID)
	if err != nil {
		return err
	}

	if err := s.conversations.SetArchived(ctx, conv.ID, true); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to archive conversation", err)
	}
	return nil
}

func (s *conversationService) Messages(ctx context.Context, userID, conversationID string) ([]models.Message, error) {
	const op = "ConversationService.Messages"

	conv, err := s.authorize(ctx, op, userID, conversationID)
	if err != nil {
		return nil, err
	}

	rows, err := s.messages.ListByConversation(ctx, conv.ID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list messages", err)
	}
	return rows, nil
}

func (s *conversationService) authorize(ctx context.Context, op, userID, conversationID string) (*models.Conversation, error) {
	if userID == "" || conversationID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and conversation_id are required", nil)
	}

	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "conversation not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get conversation", err)
	}
	if conv.UserID != userID {
		return nil, utils.E(utils.CodeForbidden, op, "forbidden", nil)
	}
	return conv, nil
}
