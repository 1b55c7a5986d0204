package models

import "time"

// Well-known setting keys. SettingBasePrompt holds the global base
// prompt prefixed to every agent's conversations; the legacy key is
// still read as a fallback for rows written by earlier releases.
const (
	SettingBasePrompt       = "base_prompt"
	SettingBasePromptLegacy = "global_base_prompt"
)

type AppSetting struct {
	Key       string    `gorm:"column:key;type:text;primaryKey" json:"key"`
	Value     string    `gorm:"column:value;type:text" json:"value"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (AppSetting) TableName() string { return "app_settings" }
