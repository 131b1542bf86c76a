package models

import "time"

// YogaSession is a catalog item for a guided session.
type YogaSession struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Title           string    `gorm:"size:255;not null" json:"title"`
	Description     string    `gorm:"type:text" json:"description"`
	DurationMinutes int       `gorm:"not null" json:"duration_minutes"`
	Difficulty      string    `gorm:"size:32" json:"difficulty"`
	FocusArea       string    `gorm:"size:64" json:"focus_area"`
	InstructorName  string    `gorm:"size:128" json:"instructor_name"`
	VideoURL        string    `gorm:"size:512" json:"video_url"`
	ThumbnailEmoji  string    `gorm:"size:16" json:"thumbnail_emoji"`
	RatingAverage   float64   `gorm:"default:0" json:"rating_average"`
	RatingCount     int       `gorm:"default:0" json:"rating_count"`
	IsPremium       bool      `gorm:"default:false" json:"is_premium"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// UserYogaProgress tracks one user's run through a session, including the
// emotion measured before and after for mood-improvement scoring.
type UserYogaProgress struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UserID          uint       `gorm:"index;not null" json:"user_id"`
	SessionID       uint       `gorm:"index;not null" json:"session_id"`
	StartedAt       time.Time  `json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at"`
	DurationMinutes *int       `json:"duration_minutes"`
	EmotionBefore   string     `gorm:"size:32" json:"emotion_before"`
	EmotionAfter    string     `gorm:"size:32" json:"emotion_after"`
	MoodImprovement *int       `json:"mood_improvement"`
	UserRating      *int       `json:"user_rating"`
	Completed       bool       `gorm:"default:false" json:"completed"`
	Session         YogaSession `gorm:"foreignKey:SessionID" json:"session"`
}
