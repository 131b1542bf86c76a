package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bhishma-ai/bhishma/models"
	"github.com/bhishma-ai/bhishma/utils"
)

const therapistCacheKey = "counseling:therapists"

// CounselingController handles therapist browsing and session bookings.
type CounselingController struct {
	db *gorm.DB
}

// NewCounselingController creates a new controller instance.
func NewCounselingController(db *gorm.DB) *CounselingController {
	return &CounselingController{db: db}
}

// Therapists lists accepting therapists, cached for five minutes.
func (c *CounselingController) Therapists(ctx *gin.Context) {
	if raw, ok := utils.CacheGetBytes(therapistCacheKey); ok {
		var cached []models.Therapist
		if err := json.Unmarshal(raw, &cached); err == nil {
			utils.Success(ctx, cached)
			return
		}
	}

	var therapists []models.Therapist
	if err := c.db.Where("is_accepting_patients = ?", true).
		Order("rating_average DESC").Find(&therapists).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to load therapists")
		return
	}

	utils.CacheSetJSON(therapistCacheKey, therapists, 5*time.Minute)
	utils.Success(ctx, therapists)
}

// Book schedules a counseling session. Each booking gets its own video room
// id so the meeting link cannot be guessed.
func (c *CounselingController) Book(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	type request struct {
		TherapistID     uint      `json:"therapist_id" binding:"required"`
		ScheduledAt     time.Time `json:"scheduled_at" binding:"required"`
		DurationMinutes int       `json:"duration_minutes"`
		SessionType     string    `json:"session_type"`
		IsFreeTrial     bool      `json:"is_free_trial"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40070, "invalid request payload")
		return
	}
	if req.ScheduledAt.Before(time.Now()) {
		utils.Error(ctx, http.StatusBadRequest, 40071, "scheduled time must be in the future")
		return
	}

	var therapist models.Therapist
	if err := c.db.First(&therapist, req.TherapistID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40470, "therapist not found")
		return
	}
	if !therapist.IsAcceptingPatients {
		utils.Error(ctx, http.StatusConflict, 40970, "therapist is not accepting patients")
		return
	}

	duration := req.DurationMinutes
	if duration <= 0 {
		duration = 60
	}
	sessionType := req.SessionType
	if sessionType == "" {
		sessionType = "video"
	}

	booking := models.CounselingBooking{
		UserID:          userID,
		TherapistID:     req.TherapistID,
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: duration,
		SessionType:     sessionType,
		Status:          models.BookingScheduled,
		VideoRoomID:     uuid.NewString(),
		IsFreeTrial:     req.IsFreeTrial,
	}
	if !req.IsFreeTrial {
		amount := therapist.RatePerHour * float64(duration) / 60
		booking.AmountPaid = &amount
	}

	if err := c.db.Create(&booking).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50071, "failed to create booking")
		return
	}

	booking.Therapist = therapist
	utils.Success(ctx, booking)
}

// Bookings lists the user's bookings, soonest first.
func (c *CounselingController) Bookings(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	query := c.db.Where("user_id = ?", userID)
	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var bookings []models.CounselingBooking
	if err := query.Preload("Therapist").
		Order("scheduled_at ASC").Find(&bookings).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50072, "failed to load bookings")
		return
	}

	utils.Success(ctx, bookings)
}

// Cancel marks a scheduled booking as cancelled.
func (c *CounselingController) Cancel(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	bookingID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40072, "invalid booking id")
		return
	}

	var booking models.CounselingBooking
	if err := c.db.Where("id = ? AND user_id = ?", bookingID, userID).First(&booking).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40471, "booking not found")
		return
	}
	if booking.Status != models.BookingScheduled {
		utils.Error(ctx, http.StatusConflict, 40971, "only scheduled bookings can be cancelled")
		return
	}

	booking.Status = models.BookingCancelled
	if err := c.db.Save(&booking).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50073, "failed to cancel booking")
		return
	}

	utils.Success(ctx, booking)
}
