package models

import (
	"encoding/json"
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

const (
	SourceTypeURL  = "url"
	SourceTypeFile = "file"
)

// Source is one entry of an AgentConfig's source list. It is not an
// independently addressable row; the list is stored inline as jsonb.
type Source struct {
	Type string `json:"type"` // "url" | "file"
	URL  string `json:"url,omitempty"`
	Path string `json:"path,omitempty"` // object name in the sources bucket
	Name string `json:"name,omitempty"` // display name
	Mime string `json:"mime_type,omitempty"`
}

// AgentConfig is a tenant's override of an agent: system prompt and
// attached sources. At most one row per (user, agent), enforced by the
// unique index and the upsert in the repository.
type AgentConfig struct {
	ID           string         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID       string         `gorm:"column:user_id;type:uuid;uniqueIndex:idx_agent_configs_user_agent" json:"user_id"`
	AgentID      string         `gorm:"column:agent_id;type:uuid;uniqueIndex:idx_agent_configs_user_agent" json:"agent_id"`
	SystemPrompt string         `gorm:"column:system_prompt;type:text" json:"system_prompt"`
	Sources      datatypes.JSON `gorm:"column:sources;type:jsonb" json:"sources"`
	Workflows    pq.StringArray `gorm:"column:workflows;type:text[]" json:"workflows"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (AgentConfig) TableName() string { return "agent_configs" }

// SourceList decodes the jsonb source list. A null/empty column or a
// decode failure yields an empty list, never an error: sources are an
// optional enrichment.
func (c *AgentConfig) SourceList() []Source {
	if c == nil || len(c.Sources) == 0 {
		return nil
	}
	var out []Source
	if err := json.Unmarshal(c.Sources, &out); err != nil {
		return nil
	}
	return out
}
