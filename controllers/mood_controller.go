package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bhishma-ai/bhishma/models"
	"github.com/bhishma-ai/bhishma/services"
	"github.com/bhishma-ai/bhishma/utils"
)

// MoodController handles manual mood tracking and mood history.
type MoodController struct {
	db *gorm.DB
}

// NewMoodController creates a new controller instance.
func NewMoodController(db *gorm.DB) *MoodController {
	return &MoodController{db: db}
}

// Create stores a manual mood entry.
func (m *MoodController) Create(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	type request struct {
		MoodScore int      `json:"mood_score" binding:"required"`
		Emotions  []string `json:"emotions"`
		Triggers  []string `json:"triggers"`
		Notes     string   `json:"notes"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}
	if req.MoodScore < 1 || req.MoodScore > 10 {
		utils.Error(ctx, http.StatusBadRequest, 40031, "mood score must be between 1 and 10")
		return
	}

	entry := models.MoodEntry{
		UserID:      userID,
		MoodScore:   req.MoodScore,
		Emotions:    req.Emotions,
		Triggers:    req.Triggers,
		Notes:       utils.Sanitize(req.Notes),
		EntrySource: models.MoodSourceManual,
	}
	if err := m.db.Create(&entry).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to save mood entry")
		return
	}

	utils.Success(ctx, entry)
}

// List returns mood history, newest first, optionally bounded by days.
func (m *MoodController) List(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	query := m.db.Where("user_id = ?", userID)
	if raw := ctx.Query("days"); raw != "" {
		if days, err := strconv.Atoi(raw); err == nil && days > 0 {
			since := time.Now().AddDate(0, 0, -days)
			query = query.Where("created_at >= ?", since)
		}
	}
	if src := ctx.Query("source"); src != "" {
		query = query.Where("entry_source = ?", src)
	}

	limit := parseLimit(ctx.Query("limit"), 100, 500)

	var entries []models.MoodEntry
	if err := query.Order("created_at DESC").Limit(limit).Find(&entries).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to load mood history")
		return
	}

	utils.Success(ctx, entries)
}

// Delete removes one of the user's mood entries.
func (m *MoodController) Delete(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	entryID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40032, "invalid entry id")
		return
	}

	result := m.db.Where("id = ? AND user_id = ?", entryID, userID).Delete(&models.MoodEntry{})
	if result.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to delete mood entry")
		return
	}
	if result.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40430, "mood entry not found")
		return
	}

	utils.Success(ctx, gin.H{"deleted": true})
}

// Trend reports the past week's mood direction used by the chat companion.
func (m *MoodController) Trend(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	since := time.Now().AddDate(0, 0, -7)
	var entries []models.MoodEntry
	if err := m.db.Where("user_id = ? AND created_at >= ?", userID, since).
		Order("created_at ASC").Find(&entries).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50033, "failed to load mood history")
		return
	}

	var sum int
	for _, e := range entries {
		sum += e.MoodScore
	}
	average := 0.0
	if len(entries) > 0 {
		average = float64(sum) / float64(len(entries))
	}

	utils.Success(ctx, gin.H{
		"trend":         services.MoodTrend(entries),
		"entry_count":   len(entries),
		"average_score": average,
	})
}
