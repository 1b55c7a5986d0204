package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/atelia/agentdesk/internal/cache"
	"github.com/atelia/agentdesk/internal/extract"
	"github.com/atelia/agentdesk/internal/models"
	"github.com/atelia/agentdesk/internal/prompt"
	"github.com/atelia/agentdesk/internal/providers/llm"
	pgrepo "github.com/atelia/agentdesk/internal/repositories/postgres"
	"github.com/atelia/agentdesk/internal/storage"
	"github.com/atelia/agentdesk/internal/utils"
)

const settingCacheTTL = 60 * time.Second

// TurnService runs one conversation turn: resolve the prompt context,
// call the completion provider once, persist the exchange.
type TurnService interface {
	Run(ctx context.Context, userID, agentSlug, conversationID, message string) (string, error)
}

type turnService struct {
	agents   pgrepo.AgentRepository
	configs  pgrepo.AgentConfigRepository
	messages pgrepo.MessageRepository
	settings pgrepo.SettingRepository
	blobs    storage.Downloader
	provider llm.Provider
	cache    cache.Cache // optional
	log      *logrus.Logger
}

func NewTurnService(
	agents pgrepo.AgentRepository,
	configs pgrepo.AgentConfigRepository,
	messages pgrepo.MessageRepository,
	settings pgrepo.SettingRepository,
	blobs storage.Downloader,
	provider llm.Provider,
	c cache.Cache,
	log *logrus.Logger,
) TurnService {
	if log == nil {
		log = logrus.New()
	}
	return &turnService{
		agents:   agents,
		configs:  configs,
		messages: messages,
		settings: settings,
		blobs:    blobs,
		provider: provider,
		cache:    c,
		log:      log,
	}
}

// Run is a linear sequence; only the shape check and the completion
// call can fail the turn. Every other lookup degrades to "absent".
func (s *turnService) Run(ctx context.Context, userID, agentSlug, conversationID, message string) (string, error) {
	const op = "TurnService.Run"

	if userID == "" {
		return "", utils.E(utils.CodeUnauthorized, op, "unauthorized", nil)
	}

	agentSlug = strings.ToLower(strings.TrimSpace(agentSlug))
	conversationID = strings.TrimSpace(conversationID)
	message = strings.TrimSpace(message)
	switch {
	case agentSlug == "":
		return "", utils.E(utils.CodeInvalidArgument, op, "agent_slug is required", nil)
	case conversationID == "":
		return "", utils.E(utils.CodeInvalidArgument, op, "conversation_id is required", nil)
	case message == "":
		return "", utils.E(utils.CodeInvalidArgument, op, "message is required", nil)
	}

	basePrompt := s.basePrompt(ctx)
	agentContext, sources, model := s.agentContext(ctx, userID, agentSlug)
	sourceContext := s.sourceContext(ctx, sources)
	history := s.history(ctx, userID, conversationID)

	system := prompt.SystemContent(basePrompt, agentContext, sourceContext)
	request := prompt.Messages(system, history, message)

	if model == "" {
		model = llm.DefaultModel
	}

	reply, err := s.provider.Complete(ctx, request, model)
	if err != nil {
		return "", utils.E(utils.CodeUpstream, op, utils.Truncate(err.Error(), 300), err)
	}
	reply = strings.TrimSpace(reply)

	// Persistence is not in the response-critical path: the reply goes
	// back to the caller even when these writes fail. Failures are
	// logged, never surfaced.
	if err := s.persistTurn(ctx, userID, conversationID, message, reply); err != nil {
		s.log.WithFields(logrus.Fields{
			"conversation_id": conversationID,
			"user_id":         userID,
		}).WithError(err).Error("failed to persist turn")
	}

	return reply, nil
}

// basePrompt resolves the global base prompt: well-known key first,
// then the legacy key. Lookup failure means absence, never a turn
// failure.
func (s *turnService) basePrompt(ctx context.Context) string {
	if s.cache != nil {
		var v string
		if hit, err := s.cache.GetJSON(ctx, cache.KeySetting(models.SettingBasePrompt), &v); err == nil && hit {
			return v
		}
	}

	for _, key := range []string{models.SettingBasePrompt, models.SettingBasePromptLegacy} {
		row, err := s.settings.Get(ctx, key)
		if err != nil || row == nil {
			continue
		}
		if v := strings.TrimSpace(row.Value); v != "" {
			if s.cache != nil {
				_ = s.cache.SetJSON(ctx, cache.KeySetting(models.SettingBasePrompt), v, settingCacheTTL)
			}
			return v
		}
	}
	return ""
}

// agentContext resolves the system context for (user, agent). A tenant
// config takes precedence and is exclusive: when present, the agent's
// own default prompt is not included. Lookup errors are swallowed so a
// degraded data layer only thins the prompt.
func (s *turnService) agentContext(ctx context.Context, userID, agentSlug string) (systemPrompt string, sources []models.Source, model string) {
	agent := s.agentBySlug(ctx, agentSlug)
	if agent == nil {
		return "", nil, ""
	}

	cfg, err := s.configs.GetByUserAndAgent(ctx, userID, agent.ID)
	if err == nil && cfg != nil {
		return cfg.SystemPrompt, cfg.SourceList(), agent.Model
	}

	return agent.SystemPrompt, nil, agent.Model
}

func (s *turnService) agentBySlug(ctx context.Context, slug string) *models.Agent {
	if s.cache != nil {
		var a models.Agent
		if hit, err := s.cache.GetJSON(ctx, cache.KeyAgent(slug), &a); err == nil && hit {
			return &a
		}
	}

	agent, err := s.agents.GetBySlug(ctx, slug)
	if err != nil || agent == nil {
		return nil
	}
	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, cache.KeyAgent(slug), agent, settingCacheTTL)
	}
	return agent
}

// sourceContext materializes the resolved source list, each entry once,
// in list order. URL entries are recorded as literal lines; file entries
// are downloaded and extracted per MIME family, with extraction failure
// listing the entry as not extracted.
func (s *turnService) sourceContext(ctx context.Context, sources []models.Source) string {
	if len(sources) == 0 {
		return ""
	}

	contributions := make([]string, 0, len(sources))
	for _, src := range sources {
		switch src.Type {
		case models.SourceTypeURL:
			if u := strings.TrimSpace(src.URL); u != "" {
				contributions = append(contributions, prompt.URLSource(u))
			}
		case models.SourceTypeFile:
			contributions = append(contributions, s.fileContribution(ctx, src))
		}
	}
	return prompt.SourceContext(contributions)
}

func (s *turnService) fileContribution(ctx context.Context, src models.Source) string {
	if src.Path == "" || s.blobs == nil {
		return prompt.FileSource(src.Name, "")
	}

	data, err := s.blobs.Download(ctx, src.Path)
	if err != nil {
		s.log.WithField("path", src.Path).WithError(err).Debug("source download failed")
		return prompt.FileSource(src.Name, "")
	}

	text, ok := extract.Text(data, src.Mime)
	if !ok {
		return prompt.FileSource(src.Name, "")
	}
	return prompt.FileSource(src.Name, text)
}

// history loads the bounded window, oldest of the window first. A
// lookup failure yields an empty history.
func (s *turnService) history(ctx context.Context, userID, conversationID string) []llm.Message {
	rows, err := s.messages.LatestN(ctx, userID, conversationID, prompt.HistoryLimit)
	if err != nil {
		s.log.WithField("conversation_id", conversationID).WithError(err).Debug("history lookup failed")
		return nil
	}

	// repo returns newest first; the prompt wants chronological order
	out := make([]llm.Message, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		out = append(out, llm.Message{Role: rows[i].Role, Content: rows[i].Content})
	}
	return out
}

func (s *turnService) persistTurn(ctx context.Context, userID, conversationID, userText, replyText string) error {
	now := time.Now().UTC()

	userRow := &models.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		UserID:         userID,
		Role:           models.RoleUser,
		Content:        userText,
		CreatedAt:      now,
	}
	if err := s.messages.Insert(ctx, userRow); err != nil {
		return err
	}

	assistantRow := &models.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		UserID:         userID,
		Role:           models.RoleAssistant,
		Content:        replyText,
		CreatedAt:      now.Add(time.Millisecond),
	}
	return s.messages.Insert(ctx, assistantRow)
}
