package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bhishma-ai/bhishma/models"
	"github.com/bhishma-ai/bhishma/utils"
)

// PreferenceController serves notification preference reads and updates.
type PreferenceController struct {
	db *gorm.DB
}

// NewPreferenceController creates a new controller instance.
func NewPreferenceController(db *gorm.DB) *PreferenceController {
	return &PreferenceController{db: db}
}

// preferenceUpdate carries only the toggles the client sent; nil fields keep
// their current value.
type preferenceUpdate struct {
	EmailNotifications *bool `json:"email_notifications"`
	PushNotifications  *bool `json:"push_notifications"`
	SMSNotifications   *bool `json:"sms_notifications"`
	SessionReminders   *bool `json:"session_reminders"`
	MoodReminders      *bool `json:"mood_reminders"`
	WeeklyReports      *bool `json:"weekly_reports"`
}

func applyPreferenceUpdate(pref *models.UserPreference, upd preferenceUpdate) {
	if upd.EmailNotifications != nil {
		pref.EmailNotifications = *upd.EmailNotifications
	}
	if upd.PushNotifications != nil {
		pref.PushNotifications = *upd.PushNotifications
	}
	if upd.SMSNotifications != nil {
		pref.SMSNotifications = *upd.SMSNotifications
	}
	if upd.SessionReminders != nil {
		pref.SessionReminders = *upd.SessionReminders
	}
	if upd.MoodReminders != nil {
		pref.MoodReminders = *upd.MoodReminders
	}
	if upd.WeeklyReports != nil {
		pref.WeeklyReports = *upd.WeeklyReports
	}
}

// Get returns the user's preferences, falling back to defaults when no row
// exists yet. The read does not create the row.
func (p *PreferenceController) Get(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var pref models.UserPreference
	err := p.db.Where("user_id = ?", userID).First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Success(ctx, models.DefaultPreferences(userID))
		return
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50097, "failed to load preferences")
		return
	}

	utils.Success(ctx, pref)
}

// Update upserts the user's preferences. Absent fields are left as they are
// (or at their defaults for a first write).
func (p *PreferenceController) Update(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var upd preferenceUpdate
	if err := ctx.ShouldBindJSON(&upd); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40097, "invalid request payload")
		return
	}

	var pref models.UserPreference
	err := p.db.Where("user_id = ?", userID).First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		pref = models.DefaultPreferences(userID)
	} else if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50097, "failed to load preferences")
		return
	}

	applyPreferenceUpdate(&pref, upd)
	if err := p.db.Save(&pref).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50098, "failed to save preferences")
		return
	}

	utils.Success(ctx, pref)
}
