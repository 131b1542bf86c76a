package models

import "time"

// Booking statuses.
const (
	BookingScheduled = "scheduled"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"
	BookingNoShow    = "no_show"
)

// Therapist is a catalog entry for counseling browsing.
type Therapist struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	FullName            string    `gorm:"size:128;not null" json:"full_name"`
	Title               string    `gorm:"size:128" json:"title"`
	Email               string    `gorm:"size:255" json:"email"`
	Bio                 string    `gorm:"type:text" json:"bio"`
	Specializations     []string  `gorm:"serializer:json;type:text" json:"specializations"`
	ExperienceYears     int       `json:"experience_years"`
	RatingAverage       float64   `gorm:"default:0" json:"rating_average"`
	ReviewCount         int       `gorm:"default:0" json:"review_count"`
	SessionTypes        []string  `gorm:"serializer:json;type:text" json:"session_types"`
	RatePerHour         float64   `json:"rate_per_hour"`
	AvatarEmoji         string    `gorm:"size:16" json:"avatar_emoji"`
	NextAvailable       string    `gorm:"size:64" json:"next_available"`
	IsAcceptingPatients bool      `gorm:"default:true" json:"is_accepting_patients"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// CounselingBooking is a scheduled session with a therapist.
type CounselingBooking struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"index;not null" json:"user_id"`
	TherapistID     uint      `gorm:"index;not null" json:"therapist_id"`
	ScheduledAt     time.Time `gorm:"not null" json:"scheduled_at"`
	DurationMinutes int       `gorm:"default:60" json:"duration_minutes"`
	SessionType     string    `gorm:"size:16;default:'video'" json:"session_type"`
	Status          string    `gorm:"size:16;default:'scheduled'" json:"status"`
	VideoRoomID     string    `gorm:"size:64" json:"video_room_id"`
	SessionNotes    string    `gorm:"type:text" json:"session_notes"`
	AmountPaid      *float64  `json:"amount_paid"`
	IsFreeTrial     bool      `gorm:"default:false" json:"is_free_trial"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	Therapist       Therapist `gorm:"foreignKey:TherapistID" json:"therapist"`
}
