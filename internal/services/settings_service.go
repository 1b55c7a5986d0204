package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/atelia/agentdesk/internal/cache"
	"github.com/atelia/agentdesk/internal/models"
	pgrepo "github.com/atelia/agentdesk/internal/repositories/postgres"
	"github.com/atelia/agentdesk/internal/utils"
)

type SettingsService interface {
	Get(ctx context.Context, key string) (*models.AppSetting, error)
	Upsert(ctx context.Context, key, value string) (*models.AppSetting, error)
}

type settingsService struct {
	settings pgrepo.SettingRepository
	cache    cache.Cache // optional
}

func NewSettingsService(settings pgrepo.SettingRepository, c cache.Cache) SettingsService {
	return &settingsService{settings: settings, cache: c}
}

func (s *settingsService) Get(ctx context.Context, key string) (*models.AppSetting, error) {
	const op = "SettingsService.Get"

	key = strings.TrimSpace(key)
	if key == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "key is required", nil)
	}

	row, err := s.settings.Get(ctx, key)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "setting not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get setting", err)
	}
	return row, nil
}

func (s *settingsService) Upsert(ctx context.Context, key, value string) (*models.AppSetting, error) {
	const op = "SettingsService.Upsert"

	key = strings.TrimSpace(key)
	if key == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "key is required", nil)
	}

	row := &models.AppSetting{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.settings.Upsert(ctx, row); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to upsert setting", err)
	}

	if s.cache != nil {
		keys := []string{cache.KeySetting(key)}
		// the pipeline caches the legacy base prompt under the
		// canonical key, so a legacy update must evict that too
		if key == models.SettingBasePromptLegacy {
			keys = append(keys, cache.KeySetting(models.SettingBasePrompt))
		}
		_ = s.cache.Del(ctx, keys...)
	}
	return row, nil
}
