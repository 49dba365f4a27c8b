package model

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message rows are append-only: written once, in full, never updated.
type Message struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ConversationID uint      `gorm:"not null;index" json:"conversation_id"`
	Role           string    `gorm:"size:50;not null" json:"role"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	Model          string    `gorm:"size:50;not null" json:"model"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
