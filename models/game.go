package models

import "time"

// Difficulty levels for the memory matching game.
const (
	GameDifficultyEasy   = "easy"
	GameDifficultyNormal = "normal"
	GameDifficultyHard   = "hard"
)

// MindGameScore records one finished round of the memory game: how long it
// took in seconds and how many moves it used.
type MindGameScore struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"index;not null" json:"user_id"`
	GameDuration    int       `gorm:"not null" json:"game_duration"`
	MovesCount      int       `gorm:"not null" json:"moves_count"`
	DifficultyLevel string    `gorm:"size:16;not null;default:'normal'" json:"difficulty_level"`
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
}
