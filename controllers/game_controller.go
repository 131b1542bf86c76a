package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bhishma-ai/bhishma/models"
	"github.com/bhishma-ai/bhishma/utils"
)

// GameController serves the memory matching game: score submission and the
// per-difficulty personal best.
type GameController struct {
	db *gorm.DB
}

// NewGameController creates a new controller instance.
func NewGameController(db *gorm.DB) *GameController {
	return &GameController{db: db}
}

// normalizeDifficulty maps free-form client input onto a known difficulty
// level, defaulting to normal.
func normalizeDifficulty(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case models.GameDifficultyEasy:
		return models.GameDifficultyEasy
	case models.GameDifficultyHard:
		return models.GameDifficultyHard
	default:
		return models.GameDifficultyNormal
	}
}

// SubmitScore records one finished round.
func (g *GameController) SubmitScore(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	type request struct {
		GameDuration    int    `json:"game_duration" binding:"required"`
		MovesCount      int    `json:"moves_count" binding:"required"`
		DifficultyLevel string `json:"difficulty_level"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40095, "invalid request payload")
		return
	}
	if req.GameDuration <= 0 || req.MovesCount <= 0 {
		utils.Error(ctx, http.StatusBadRequest, 40096, "duration and moves must be positive")
		return
	}

	score := models.MindGameScore{
		UserID:          userID,
		GameDuration:    req.GameDuration,
		MovesCount:      req.MovesCount,
		DifficultyLevel: normalizeDifficulty(req.DifficultyLevel),
	}
	if err := g.db.Create(&score).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50095, "failed to save score")
		return
	}

	utils.Success(ctx, score)
}

// BestScore returns the personal best for a difficulty: fastest time, fewest
// moves, and how many rounds were played. Bests are independent, so the
// fastest round and the most efficient one may differ.
func (g *GameController) BestScore(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	difficulty := normalizeDifficulty(ctx.Query("difficulty"))

	var best struct {
		BestTime   *int `json:"best_time"`
		BestMoves  *int `json:"best_moves"`
		TotalGames int  `json:"total_games"`
	}
	err := g.db.Model(&models.MindGameScore{}).
		Select("MIN(game_duration) AS best_time, MIN(moves_count) AS best_moves, COUNT(*) AS total_games").
		Where("user_id = ? AND difficulty_level = ?", userID, difficulty).
		Scan(&best).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50096, "failed to load best score")
		return
	}

	utils.Success(ctx, gin.H{
		"difficulty_level": difficulty,
		"best_time":        best.BestTime,
		"best_moves":       best.BestMoves,
		"total_games":      best.TotalGames,
	})
}

// Scores returns recent rounds, newest first.
func (g *GameController) Scores(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	limit := parseLimit(ctx.Query("limit"), 20, 100)
	var scores []models.MindGameScore
	if err := g.db.Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).Find(&scores).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50096, "failed to load scores")
		return
	}

	utils.Success(ctx, scores)
}
