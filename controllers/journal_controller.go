package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bhishma-ai/bhishma/models"
	"github.com/bhishma-ai/bhishma/utils"
)

// JournalController handles diary entries.
type JournalController struct {
	db *gorm.DB
}

// NewJournalController creates a new controller instance.
func NewJournalController(db *gorm.DB) *JournalController {
	return &JournalController{db: db}
}

// Create stores a new journal entry. Content is sanitized before storage.
func (j *JournalController) Create(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	type request struct {
		Title     string `json:"title" binding:"required,max=255"`
		Content   string `json:"content" binding:"required"`
		MoodScore *int   `json:"mood_score"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid request payload")
		return
	}
	if req.MoodScore != nil && (*req.MoodScore < 1 || *req.MoodScore > 10) {
		utils.Error(ctx, http.StatusBadRequest, 40051, "mood score must be between 1 and 10")
		return
	}

	entry := models.JournalEntry{
		UserID:    userID,
		Title:     strings.TrimSpace(req.Title),
		Content:   utils.Sanitize(req.Content),
		MoodScore: req.MoodScore,
	}
	if err := j.db.Create(&entry).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to save journal entry")
		return
	}

	utils.Success(ctx, entry)
}

// List returns the user's journal entries, newest first.
func (j *JournalController) List(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	limit := parseLimit(ctx.Query("limit"), 50, 200)
	var entries []models.JournalEntry
	if err := j.db.Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).Find(&entries).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to load journal entries")
		return
	}

	utils.Success(ctx, entries)
}

// Get returns one journal entry.
func (j *JournalController) Get(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	entry, ok := j.find(ctx, userID)
	if !ok {
		return
	}
	utils.Success(ctx, entry)
}

// Update modifies title, content, or mood score of an entry.
func (j *JournalController) Update(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	entry, ok := j.find(ctx, userID)
	if !ok {
		return
	}

	type request struct {
		Title     *string `json:"title"`
		Content   *string `json:"content"`
		MoodScore *int    `json:"mood_score"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid request payload")
		return
	}

	if req.Title != nil {
		entry.Title = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		entry.Content = utils.Sanitize(*req.Content)
	}
	if req.MoodScore != nil {
		if *req.MoodScore < 1 || *req.MoodScore > 10 {
			utils.Error(ctx, http.StatusBadRequest, 40051, "mood score must be between 1 and 10")
			return
		}
		entry.MoodScore = req.MoodScore
	}

	if err := j.db.Save(&entry).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to update journal entry")
		return
	}

	utils.Success(ctx, entry)
}

// Delete soft-deletes a journal entry.
func (j *JournalController) Delete(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	entryID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40052, "invalid entry id")
		return
	}

	result := j.db.Where("id = ? AND user_id = ?", entryID, userID).Delete(&models.JournalEntry{})
	if result.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50053, "failed to delete journal entry")
		return
	}
	if result.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40450, "journal entry not found")
		return
	}

	utils.Success(ctx, gin.H{"deleted": true})
}

func (j *JournalController) find(ctx *gin.Context, userID uint) (models.JournalEntry, bool) {
	var entry models.JournalEntry
	entryID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40052, "invalid entry id")
		return entry, false
	}

	if err := j.db.Where("id = ? AND user_id = ?", entryID, userID).First(&entry).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40450, "journal entry not found")
		return entry, false
	}
	return entry, true
}
