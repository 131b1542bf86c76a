package models

import "time"

// Chat message roles.
const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatConversation groups companion chat messages.
type ChatConversation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Title     string    `gorm:"size:128" json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChatMessage is one turn in a companion conversation.
type ChatMessage struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	ConversationID  uint      `gorm:"index;not null" json:"conversation_id"`
	UserID          uint      `gorm:"index;not null" json:"user_id"`
	Role            string    `gorm:"size:16;not null" json:"role"`
	Content         string    `gorm:"type:text;not null" json:"content"`
	DetectedEmotion *string   `gorm:"size:32" json:"detected_emotion"`
	CreatedAt       time.Time `json:"created_at"`
}
