package models

import "time"

// ActivityRecord stores one row per user per day with at least one qualifying
// activity. The streak calculation walks these rows backwards from today.
type ActivityRecord struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"index:idx_activity_user_date,unique;not null" json:"user_id"`
	ActivityDate time.Time `gorm:"index:idx_activity_user_date,unique;type:date;not null" json:"activity_date"`
	Count        int64     `gorm:"not null;default:0" json:"count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
