package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is append-only; ordering is by created_at ascending. Nothing
// in this codebase mutates or deletes a message row.
type Message struct {
	ID             string         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ConversationID string         `gorm:"column:conversation_id;type:uuid;index" json:"conversation_id"`
	UserID         string         `gorm:"column:user_id;type:uuid;index" json:"user_id"`
	Role           string         `gorm:"column:role;type:text" json:"role"` // "system" | "user" | "assistant"
	Content        string         `gorm:"column:content;type:text" json:"content"`
	Metadata       datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	CreatedAt      time.Time      `gorm:"column:created_at;type:timestamptz;index" json:"created_at"`
}

func (Message) TableName() string { return "messages" }
