package models

import "time"

// UserPreference holds the notification toggles, one row per user. A user
// without a row gets DefaultPreferences.
type UserPreference struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	UserID             uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	EmailNotifications bool      `json:"email_notifications"`
	PushNotifications  bool      `json:"push_notifications"`
	SMSNotifications   bool      `json:"sms_notifications"`
	SessionReminders   bool      `json:"session_reminders"`
	MoodReminders      bool      `json:"mood_reminders"`
	WeeklyReports      bool      `json:"weekly_reports"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// DefaultPreferences is what a fresh account starts with: everything on
// except SMS.
func DefaultPreferences(userID uint) UserPreference {
	return UserPreference{
		UserID:             userID,
		EmailNotifications: true,
		PushNotifications:  true,
		SMSNotifications:   false,
		SessionReminders:   true,
		MoodReminders:      true,
		WeeklyReports:      true,
	}
}
