package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bhishma-ai/bhishma/models"
	"github.com/bhishma-ai/bhishma/services"
	"github.com/bhishma-ai/bhishma/utils"
)

// StatsController serves the dashboard summary.
type StatsController struct {
	db      *gorm.DB
	rewards *services.RewardService
}

// NewStatsController creates a new controller instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db, rewards: services.NewRewardService(db)}
}

// Dashboard aggregates the numbers shown on the home screen.
func (s *StatsController) Dashboard(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	streak, err := s.rewards.CurrentStreak(userID)
	if err != nil {
		utils.Sugar.Warnw("streak lookup failed", "user_id", userID, "error", err)
		streak = 0
	}

	account, err := s.rewards.Account(userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to load reward account")
		return
	}

	var moodCount, journalCount, yogaCompleted int64
	s.db.Model(&models.MoodEntry{}).Where("user_id = ?", userID).Count(&moodCount)
	s.db.Model(&models.JournalEntry{}).Where("user_id = ?", userID).Count(&journalCount)
	s.db.Model(&models.UserYogaProgress{}).Where("user_id = ? AND completed = ?", userID, true).Count(&yogaCompleted)

	weekAgo := time.Now().AddDate(0, 0, -7)
	var weeklyAverage float64
	s.db.Model(&models.MoodEntry{}).
		Where("user_id = ? AND created_at >= ?", userID, weekAgo).
		Select("COALESCE(AVG(mood_score), 0)").Scan(&weeklyAverage)

	var weeklyGames int64
	s.db.Model(&models.MindGameScore{}).
		Where("user_id = ? AND created_at >= ?", userID, weekAgo).Count(&weeklyGames)

	utils.Success(ctx, gin.H{
		"current_streak":      streak,
		"next_milestone":      services.NextMilestone(streak),
		"total_coins":         account.TotalCoins,
		"mood_entries":        moodCount,
		"journal_entries":     journalCount,
		"yoga_completed":      yogaCompleted,
		"weekly_average_mood": weeklyAverage,
		"weekly_games_played": weeklyGames,
	})
}
