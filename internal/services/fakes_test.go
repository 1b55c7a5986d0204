package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/atelia/agentdesk/internal/models"
	"github.com/atelia/agentdesk/internal/providers/llm"
	"github.com/atelia/agentdesk/internal/utils"
)

// In-memory fakes for the repository and provider interfaces. Each fake
// can be told to fail so degraded-lookup behavior is testable.

type fakeAgentRepo struct {
	bySlug map[string]*models.Agent
	err    error
	calls  int
}

func (f *fakeAgentRepo) GetBySlug(_ context.Context, slug string) (*models.Agent, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if a, ok := f.bySlug[slug]; ok {
		return a, nil
	}
	return nil, utils.ErrNotFound
}

func (f *fakeAgentRepo) List(context.Context) ([]models.Agent, error) {
	out := make([]models.Agent, 0, len(f.bySlug))
	for _, a := range f.bySlug {
		out = append(out, *a)
	}
	return out, f.err
}

func (f *fakeAgentRepo) Insert(_ context.Context, a *models.Agent) error {
	if f.err != nil {
		return f.err
	}
	if f.bySlug == nil {
		f.bySlug = map[string]*models.Agent{}
	}
	if _, taken := f.bySlug[a.Slug]; taken {
		return errors.New("duplicate slug")
	}
	f.bySlug[a.Slug] = a
	return nil
}

func (f *fakeAgentRepo) Update(_ context.Context, a *models.Agent) error {
	for _, existing := range f.bySlug {
		if existing.ID == a.ID {
			*existing = *a
			return nil
		}
	}
	return utils.ErrNotFound
}

func (f *fakeAgentRepo) DeleteBySlug(_ context.Context, slug string) error {
	if _, ok := f.bySlug[slug]; !ok {
		return utils.ErrNotFound
	}
	delete(f.bySlug, slug)
	return nil
}

type fakeConfigRepo struct {
	byKey map[string]*models.AgentConfig // userID + "/" + agentID
	err   error
	calls int
}

func (f *fakeConfigRepo) GetByUserAndAgent(_ context.Context, userID, agentID string) (*models.AgentConfig, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if c, ok := f.byKey[userID+"/"+agentID]; ok {
		return c, nil
	}
	return nil, utils.ErrNotFound
}

func (f *fakeConfigRepo) Upsert(_ context.Context, c *models.AgentConfig) error {
	if f.err != nil {
		return f.err
	}
	if f.byKey == nil {
		f.byKey = map[string]*models.AgentConfig{}
	}
	f.byKey[c.UserID+"/"+c.AgentID] = c
	return nil
}

type fakeMessageRepo struct {
	rows      []models.Message
	readErr   error
	insertErr error
}

func (f *fakeMessageRepo) Insert(_ context.Context, m *models.Message) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.rows = append(f.rows, *m)
	return nil
}

func (f *fakeMessageRepo) LatestN(_ context.Context, userID, conversationID string, n int) ([]models.Message, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}

	var matched []models.Message
	for _, m := range f.rows {
		if m.UserID == userID && m.ConversationID == conversationID {
			matched = append(matched, m)
		}
	}
	// newest first, like the real repo
	for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
		matched[i], matched[j] = matched[j], matched[i]
	}
	if len(matched) > n {
		matched = matched[:n]
	}
	return matched, nil
}

func (f *fakeMessageRepo) ListByConversation(_ context.Context, conversationID string) ([]models.Message, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	var out []models.Message
	for _, m := range f.rows {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeSettingRepo struct {
	values map[string]string
	err    error
	calls  int
}

func (f *fakeSettingRepo) Get(_ context.Context, key string) (*models.AppSetting, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.values[key]; ok {
		return &models.AppSetting{Key: key, Value: v, UpdatedAt: time.Now()}, nil
	}
	return nil, utils.ErrNotFound
}

func (f *fakeSettingRepo) Upsert(_ context.Context, s *models.AppSetting) error {
	if f.err != nil {
		return f.err
	}
	if f.values == nil {
		f.values = map[string]string{}
	}
	f.values[s.Key] = s.Value
	return nil
}

type fakeConversationRepo struct {
	byID map[string]*models.Conversation
	err  error
}

func (f *fakeConversationRepo) Insert(_ context.Context, c *models.Conversation) error {
	if f.err != nil {
		return f.err
	}
	if f.byID == nil {
		f.byID = map[string]*models.Conversation{}
	}
	f.byID[c.ID] = c
	return nil
}

func (f *fakeConversationRepo) GetByID(_ context.Context, id string) (*models.Conversation, error) {
	if f.err != nil {
		return nil, f.err
	}
	if c, ok := f.byID[id]; ok {
		return c, nil
	}
	return nil, utils.ErrNotFound
}

func (f *fakeConversationRepo) ListByUser(_ context.Context, userID string, includeArchived bool) ([]models.Conversation, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Conversation
	for _, c := range f.byID {
		if c.UserID != userID {
			continue
		}
		if c.Archived && !includeArchived {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeConversationRepo) SetArchived(_ context.Context, id string, archived bool) error {
	c, ok := f.byID[id]
	if !ok {
		return utils.ErrNotFound
	}
	c.Archived = archived
	return nil
}

type fakeDownloader struct {
	objects map[string][]byte
	err     error
	calls   []string
}

func (f *fakeDownloader) Download(_ context.Context, objectName string) ([]byte, error) {
	f.calls = append(f.calls, objectName)
	if f.err != nil {
		return nil, f.err
	}
	if b, ok := f.objects[objectName]; ok {
		return b, nil
	}
	return nil, errors.New("object not found")
}

type fakeProvider struct {
	reply    string
	err      error
	calls    int
	gotMsgs  []llm.Message
	gotModel string
}

func (f *fakeProvider) Complete(_ context.Context, messages []llm.Message, model string) (string, error) {
	f.calls++
	f.gotMsgs = messages
	f.gotModel = model
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeProvider) Close() error { return nil }

type fakeCache struct {
	store   map[string][]byte
	deleted []string
}

func (f *fakeCache) GetJSON(_ context.Context, key string, dst any) (bool, error) {
	raw, ok := f.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (f *fakeCache) SetJSON(_ context.Context, key string, val any, _ time.Duration) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return err
	}
	if f.store == nil {
		f.store = map[string][]byte{}
	}
	f.store[key] = raw
	return nil
}

func (f *fakeCache) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.store, k)
		f.deleted = append(f.deleted, k)
	}
	return nil
}
