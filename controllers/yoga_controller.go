package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bhishma-ai/bhishma/models"
	"github.com/bhishma-ai/bhishma/services"
	"github.com/bhishma-ai/bhishma/utils"
)

const yogaCatalogCacheKey = "yoga:catalog"

// YogaController serves the guided session catalog and per-user progress.
type YogaController struct {
	db *gorm.DB
}

// NewYogaController creates a new controller instance.
func NewYogaController(db *gorm.DB) *YogaController {
	return &YogaController{db: db}
}

// Catalog lists all yoga sessions. The catalog changes rarely so it is
// cached for five minutes.
func (y *YogaController) Catalog(ctx *gin.Context) {
	if raw, ok := utils.CacheGetBytes(yogaCatalogCacheKey); ok {
		var cached []models.YogaSession
		if err := json.Unmarshal(raw, &cached); err == nil {
			utils.Success(ctx, cached)
			return
		}
	}

	var sessions []models.YogaSession
	if err := y.db.Order("id ASC").Find(&sessions).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to load yoga sessions")
		return
	}

	utils.CacheSetJSON(yogaCatalogCacheKey, sessions, 5*time.Minute)
	utils.Success(ctx, sessions)
}

// Start opens a progress record for a session, capturing the pre-session
// emotion when the client supplies one.
func (y *YogaController) Start(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	type request struct {
		SessionID     uint   `json:"session_id" binding:"required"`
		EmotionBefore string `json:"emotion_before"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid request payload")
		return
	}

	var session models.YogaSession
	if err := y.db.First(&session, req.SessionID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40460, "yoga session not found")
		return
	}

	progress := models.UserYogaProgress{
		UserID:        userID,
		SessionID:     req.SessionID,
		StartedAt:     time.Now(),
		EmotionBefore: req.EmotionBefore,
	}
	if err := y.db.Create(&progress).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to start session")
		return
	}

	utils.Success(ctx, progress)
}

// Complete closes a progress record, computes mood improvement from the
// before/after emotions, and logs a mood entry sourced from the session.
func (y *YogaController) Complete(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	progressID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40061, "invalid progress id")
		return
	}

	type request struct {
		EmotionAfter    string `json:"emotion_after"`
		DurationMinutes *int   `json:"duration_minutes"`
		UserRating      *int   `json:"user_rating"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid request payload")
		return
	}
	if req.UserRating != nil && (*req.UserRating < 1 || *req.UserRating > 5) {
		utils.Error(ctx, http.StatusBadRequest, 40062, "rating must be between 1 and 5")
		return
	}

	var progress models.UserYogaProgress
	if err := y.db.Where("id = ? AND user_id = ?", progressID, userID).First(&progress).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40461, "progress record not found")
		return
	}
	if progress.Completed {
		utils.Error(ctx, http.StatusConflict, 40960, "session already completed")
		return
	}

	now := time.Now()
	progress.Completed = true
	progress.CompletedAt = &now
	progress.EmotionAfter = req.EmotionAfter
	progress.DurationMinutes = req.DurationMinutes
	progress.UserRating = req.UserRating

	afterScore := services.ComputeMoodScore(req.EmotionAfter, 100)
	if progress.EmotionBefore != "" && req.EmotionAfter != "" {
		improvement := afterScore - services.ComputeMoodScore(progress.EmotionBefore, 100)
		progress.MoodImprovement = &improvement
	}

	err = y.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&progress).Error; err != nil {
			return err
		}

		entry := models.MoodEntry{
			UserID:      userID,
			MoodScore:   afterScore,
			EntrySource: models.MoodSourceYoga,
		}
		if req.EmotionAfter != "" {
			entry.Emotions = []string{req.EmotionAfter}
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to complete session")
		return
	}

	if req.UserRating != nil {
		y.updateSessionRating(progress.SessionID, *req.UserRating)
	}

	utils.Success(ctx, progress)
}

// Progress lists the user's session history, most recent first.
func (y *YogaController) Progress(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var records []models.UserYogaProgress
	if err := y.db.Where("user_id = ?", userID).
		Preload("Session").
		Order("started_at DESC").Limit(100).Find(&records).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50063, "failed to load progress")
		return
	}

	utils.Success(ctx, records)
}

func (y *YogaController) updateSessionRating(sessionID uint, rating int) {
	err := y.db.Model(&models.YogaSession{}).Where("id = ?", sessionID).Updates(map[string]interface{}{
		"rating_average": gorm.Expr("(rating_average * rating_count + ?) / (rating_count + 1)", rating),
		"rating_count":   gorm.Expr("rating_count + 1"),
	}).Error
	if err != nil {
		utils.Sugar.Warnw("update session rating", "session_id", sessionID, "error", err)
		return
	}
	utils.InvalidateByPrefix(yogaCatalogCacheKey)
}
