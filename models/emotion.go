package models

import "time"

// EmotionDetection stores one throttled detection sample: the dominant
// emotion of a tick plus the full confidence distribution.
type EmotionDetection struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	UserID          uint           `gorm:"index;not null" json:"user_id"`
	DetectedEmotion string         `gorm:"size:32;not null" json:"detected_emotion"`
	Confidence      int            `gorm:"not null" json:"confidence"`
	AllEmotions     map[string]int `gorm:"serializer:json;type:text" json:"all_emotions"`
	Context         string         `gorm:"size:64" json:"context"`
	SessionID       string         `gorm:"size:64;index" json:"session_id"`
	CreatedAt       time.Time      `json:"created_at"`
}
