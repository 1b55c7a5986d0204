package services

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/atelia/agentdesk/internal/models"
	"github.com/atelia/agentdesk/internal/prompt"
	"github.com/atelia/agentdesk/internal/providers/llm"
	"github.com/atelia/agentdesk/internal/utils"
)

type turnFixture struct {
	agents   *fakeAgentRepo
	configs  *fakeConfigRepo
	messages *fakeMessageRepo
	settings *fakeSettingRepo
	blobs    *fakeDownloader
	provider *fakeProvider
	svc      TurnService
}

func newTurnFixture() *turnFixture {
	f := &turnFixture{
		agents:   &fakeAgentRepo{bySlug: map[string]*models.Agent{}},
		configs:  &fakeConfigRepo{byKey: map[string]*models.AgentConfig{}},
		messages: &fakeMessageRepo{},
		settings: &fakeSettingRepo{values: map[string]string{}},
		blobs:    &fakeDownloader{objects: map[string][]byte{}},
		provider: &fakeProvider{reply: "  réponse  "},
	}
	f.svc = NewTurnService(f.agents, f.configs, f.messages, f.settings, f.blobs, f.provider, nil, nil)
	return f
}

func (f *turnFixture) addAgent(slug, prompt, model string) *models.Agent {
	a := &models.Agent{ID: "agent-" + slug, Slug: slug, Name: slug, SystemPrompt: prompt, Model: model}
	f.agents.bySlug[slug] = a
	return a
}

func (f *turnFixture) addConfig(userID, agentID, systemPrompt string, sources []models.Source) {
	var raw datatypes.JSON
	if sources != nil {
		b, _ := json.Marshal(sources)
		raw = datatypes.JSON(b)
	}
	f.configs.byKey[userID+"/"+agentID] = &models.AgentConfig{
		ID:           "cfg-1",
		UserID:       userID,
		AgentID:      agentID,
		SystemPrompt: systemPrompt,
		Sources:      raw,
	}
}

func (f *turnFixture) systemContent(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, f.provider.gotMsgs)
	require.Equal(t, llm.RoleSystem, f.provider.gotMsgs[0].Role)
	return f.provider.gotMsgs[0].Content
}

func TestRunValidatesShapeBeforeAnyCall(t *testing.T) {
	tests := []struct {
		name           string
		agentSlug      string
		conversationID string
		message        string
		wantField      string
	}{
		{"missing agent slug", "  ", "conv-1", "hello", "agent_slug"},
		{"missing conversation", "helper", "", "hello", "conversation_id"},
		{"whitespace message", "helper", "conv-1", "   ", "message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTurnFixture()

			_, err := f.svc.Run(context.Background(), "user-1", tt.agentSlug, tt.conversationID, tt.message)
			require.Error(t, err)
			assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
			assert.Contains(t, err.Error(), tt.wantField)

			// no store, blob or provider call happened
			assert.Zero(t, f.agents.calls)
			assert.Zero(t, f.settings.calls)
			assert.Empty(t, f.blobs.calls)
			assert.Zero(t, f.provider.calls)
		})
	}
}

func TestRunRejectsMissingUser(t *testing.T) {
	f := newTurnFixture()

	_, err := f.svc.Run(context.Background(), "", "helper", "conv-1", "hello")
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeUnauthorized))
	assert.Zero(t, f.provider.calls)
}

func TestRunTenantOverrideIsExclusive(t *testing.T) {
	f := newTurnFixture()
	a := f.addAgent("helper", "DEFAULT-PROMPT", "mistral-large-latest")
	f.addConfig("user-1", a.ID, "OVERRIDE-PROMPT", nil)

	_, err := f.svc.Run(context.Background(), "user-1", "helper", "conv-1", "hello")
	require.NoError(t, err)

	system := f.systemContent(t)
	assert.Contains(t, system, "OVERRIDE-PROMPT")
	assert.NotContains(t, system, "DEFAULT-PROMPT")
}

func TestRunNormalizesSlugCase(t *testing.T) {
	f := newTurnFixture()
	f.addAgent("helper", "DEFAULT-PROMPT", "mistral-large-latest")

	_, err := f.svc.Run(context.Background(), "user-1", "  Helper ", "conv-1", "hello")
	require.NoError(t, err)

	assert.Contains(t, f.systemContent(t), "DEFAULT-PROMPT")
	assert.Equal(t, "mistral-large-latest", f.provider.gotModel)
}

func TestRunFallsBackToAgentDefault(t *testing.T) {
	f := newTurnFixture()
	f.addAgent("helper", "DEFAULT-PROMPT", "mistral-large-latest")

	_, err := f.svc.Run(context.Background(), "user-1", "helper", "conv-1", "hello")
	require.NoError(t, err)

	assert.Contains(t, f.systemContent(t), "DEFAULT-PROMPT")
	assert.NotContains(t, f.systemContent(t), "Document :")
	assert.Equal(t, "mistral-large-latest", f.provider.gotModel)
}

func TestRunUnknownAgentUsesGenericSystem(t *testing.T) {
	f := newTurnFixture()

	_, err := f.svc.Run(context.Background(), "user-1", "ghost", "conv-1", "hello")
	require.NoError(t, err)

	assert.Equal(t, prompt.DefaultSystem, f.systemContent(t))
	assert.Equal(t, llm.DefaultModel, f.provider.gotModel)
}

func TestRunBasePromptPrecedesAgentContext(t *testing.T) {
	f := newTurnFixture()
	f.settings.values[models.SettingBasePrompt] = "BASE"
	f.addAgent("helper", "AGENT", "")

	_, err := f.svc.Run(context.Background(), "user-1", "helper", "conv-1", "hello")
	require.NoError(t, err)

	assert.Equal(t, "BASE\n\nAGENT", f.systemContent(t))
}

func TestRunLegacyBasePromptKey(t *testing.T) {
	f := newTurnFixture()
	f.settings.values[models.SettingBasePromptLegacy] = "LEGACY-BASE"

	_, err := f.svc.Run(context.Background(), "user-1", "ghost", "conv-1", "hello")
	require.NoError(t, err)

	assert.Contains(t, f.systemContent(t), "LEGACY-BASE")
}

func TestRunSettingLookupFailureIsSoft(t *testing.T) {
	f := newTurnFixture()
	f.settings.err = errors.New("db down")
	f.addAgent("helper", "AGENT", "")

	_, err := f.svc.Run(context.Background(), "user-1", "helper", "conv-1", "hello")
	require.NoError(t, err)
	assert.Equal(t, "AGENT", f.systemContent(t))
}

func TestRunFileSourceTruncatedToEntryLimit(t *testing.T) {
	f := newTurnFixture()
	a := f.addAgent("helper", "", "")
	f.addConfig("user-1", a.ID, "PROMPT", []models.Source{
		{Type: "file", Path: "sources/u/big.txt", Name: "big.txt", Mime: "text/plain"},
	})
	f.blobs.objects["sources/u/big.txt"] = []byte(strings.Repeat("z", 25000))

	_, err := f.svc.Run(context.Background(), "user-1", "helper", "conv-1", "hello")
	require.NoError(t, err)

	system := f.systemContent(t)
	idx := strings.Index(system, "Document : big.txt\n")
	require.GreaterOrEqual(t, idx, 0)
	body := system[idx+len("Document : big.txt\n"):]
	assert.Len(t, body, prompt.FileSourceLimit)
}

func TestRunURLSourceIsRecordedNotFetched(t *testing.T) {
	f := newTurnFixture()
	a := f.addAgent("helper", "", "")
	f.addConfig("user-1", a.ID, "PROMPT", []models.Source{
		{Type: "url", URL: "https://example.com/doc"},
	})

	_, err := f.svc.Run(context.Background(), "user-1", "helper", "conv-1", "hello")
	require.NoError(t, err)

	assert.Contains(t, f.systemContent(t), "Source (URL) : https://example.com/doc")
	assert.Empty(t, f.blobs.calls)
}

func TestRunUnextractableSourceStillListed(t *testing.T) {
	f := newTurnFixture()
	a := f.addAgent("helper", "", "")
	f.addConfig("user-1", a.ID, "PROMPT", []models.Source{
		{Type: "file", Path: "sources/u/archive.zip", Name: "archive.zip", Mime: "application/zip"},
	})
	f.blobs.objects["sources/u/archive.zip"] = []byte{0x50, 0x4b}

	_, err := f.svc.Run(context.Background(), "user-1", "helper", "conv-1", "hello")
	require.NoError(t, err)

	system := f.systemContent(t)
	assert.Contains(t, system, "archive.zip")
	assert.Contains(t, system, prompt.NotExtracted)
}

func TestRunDownloadFailureIsSoft(t *testing.T) {
	f := newTurnFixture()
	a := f.addAgent("helper", "", "")
	f.addConfig("user-1", a.ID, "PROMPT", []models.Source{
		{Type: "file", Path: "sources/u/gone.txt", Name: "gone.txt", Mime: "text/plain"},
	})
	f.blobs.err = errors.New("bucket unreachable")

	_, err := f.svc.Run(context.Background(), "user-1", "helper", "conv-1", "hello")
	require.NoError(t, err)
	assert.Contains(t, f.systemContent(t), prompt.NotExtracted)
}

func TestRunHistoryWindow(t *testing.T) {
	f := newTurnFixture()
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 35; i++ {
		role := models.RoleUser
		if i%2 == 1 {
			role = models.RoleAssistant
		}
		f.messages.rows = append(f.messages.rows, models.Message{
			ID:             "m",
			ConversationID: "conv-1",
			UserID:         "user-1",
			Role:           role,
			Content:        content(i),
			CreatedAt:      base.Add(time.Duration(i) * time.Second),
		})
	}

	_, err := f.svc.Run(context.Background(), "user-1", "ghost", "conv-1", "hello")
	require.NoError(t, err)

	// system + 30 history + final user message
	require.Len(t, f.provider.gotMsgs, 32)

	// exactly the 30 most recent, ascending
	assert.Equal(t, content(5), f.provider.gotMsgs[1].Content)
	assert.Equal(t, content(34), f.provider.gotMsgs[30].Content)
	assert.Equal(t, "hello", f.provider.gotMsgs[31].Content)
}

func TestRunHistoryLookupFailureIsSoft(t *testing.T) {
	f := newTurnFixture()
	f.messages.readErr = errors.New("db down")

	reply, err := f.svc.Run(context.Background(), "user-1", "ghost", "conv-1", "hello")
	require.NoError(t, err)
	assert.Equal(t, "réponse", reply)
	require.Len(t, f.provider.gotMsgs, 2)
}

func TestRunUpstreamFailureIsFatalAndPersistsNothing(t *testing.T) {
	f := newTurnFixture()
	f.provider.err = errors.New("429 too many requests")

	_, err := f.svc.Run(context.Background(), "user-1", "ghost", "conv-1", "hello")
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeUpstream))
	assert.Contains(t, err.Error(), "429")

	// single attempt, and no message rows written
	assert.Equal(t, 1, f.provider.calls)
	assert.Empty(t, f.messages.rows)
}

func TestRunPersistsUserThenAssistant(t *testing.T) {
	f := newTurnFixture()

	reply, err := f.svc.Run(context.Background(), "user-1", "ghost", "conv-1", "hello")
	require.NoError(t, err)
	assert.Equal(t, "réponse", reply)

	require.Len(t, f.messages.rows, 2)
	assert.Equal(t, models.RoleUser, f.messages.rows[0].Role)
	assert.Equal(t, "hello", f.messages.rows[0].Content)
	assert.Equal(t, models.RoleAssistant, f.messages.rows[1].Role)
	assert.Equal(t, "réponse", f.messages.rows[1].Content)
	assert.True(t, f.messages.rows[0].CreatedAt.Before(f.messages.rows[1].CreatedAt))
}

func TestRunPersistenceFailureStillReturnsReply(t *testing.T) {
	f := newTurnFixture()
	f.messages.insertErr = errors.New("disk full")

	reply, err := f.svc.Run(context.Background(), "user-1", "ghost", "conv-1", "hello")
	require.NoError(t, err)
	assert.Equal(t, "réponse", reply)
}

func TestRunNoDeduplication(t *testing.T) {
	f := newTurnFixture()

	for i := 0; i < 2; i++ {
		_, err := f.svc.Run(context.Background(), "user-1", "ghost", "conv-1", "hello")
		require.NoError(t, err)
	}

	// two independent user/assistant pairs
	assert.Len(t, f.messages.rows, 4)
}

func content(i int) string {
	return "msg-" + strconv.Itoa(i)
}
