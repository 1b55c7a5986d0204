package models

import "time"

// Agent is a chat persona. Slug is the public routing key; ID is the
// internal join key.
type Agent struct {
	ID           string    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Slug         string    `gorm:"column:slug;type:text;uniqueIndex;not null" json:"slug"` // lowercase
	Name         string    `gorm:"column:name;type:text;not null" json:"name"`
	SystemPrompt string    `gorm:"column:system_prompt;type:text" json:"system_prompt"`
	Model        string    `gorm:"column:model;type:text" json:"model"`
	CreatedAt    time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (Agent) TableName() string { return "agents" }
