package models

import "time"

type Conversation struct {
	ID        string    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"column:user_id;type:uuid;index" json:"user_id"`
	AgentSlug string    `gorm:"column:agent_slug;type:text;index" json:"agent_slug"`
	Title     string    `gorm:"column:title;type:text" json:"title"`
	Archived  bool      `gorm:"column:archived;not null;default:false" json:"archived"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;index" json:"created_at"`
}

func (Conversation) TableName() string { return "conversations" }
