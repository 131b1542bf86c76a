package models

import "time"

// Entry sources for mood entries.
const (
	MoodSourceManual     = "manual"
	MoodSourceAIDetected = "ai_detected"
	MoodSourceYoga       = "yoga_session"
)

// MoodEntry is a 1-10 mood data point, either entered manually or derived
// from an emotion detection. AI-derived entries always carry the confidence
// of the detection that produced them.
type MoodEntry struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	UserID              uint      `gorm:"index;not null" json:"user_id"`
	MoodScore           int       `gorm:"not null" json:"mood_score"`
	Emotions            []string  `gorm:"serializer:json;type:text" json:"emotions"`
	Triggers            []string  `gorm:"serializer:json;type:text" json:"triggers"`
	Notes               string    `gorm:"type:text" json:"notes"`
	EntrySource         string    `gorm:"size:16;not null;default:'manual'" json:"entry_source"`
	DetectionConfidence *int      `json:"detection_confidence"`
	CreatedAt           time.Time `gorm:"index" json:"created_at"`
}
