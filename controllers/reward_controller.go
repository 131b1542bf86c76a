package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bhishma-ai/bhishma/services"
	"github.com/bhishma-ai/bhishma/utils"
)

// RewardController serves the streak rewards portal.
type RewardController struct {
	rewards *services.RewardService
}

// NewRewardController creates a new controller instance.
func NewRewardController(db *gorm.DB) *RewardController {
	return &RewardController{rewards: services.NewRewardService(db)}
}

// Summary returns the full portal view: streak, balances, milestone table,
// next milestone, and the most recent ledger entries.
func (r *RewardController) Summary(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	// A failed streak lookup degrades to 0 rather than blanking the portal.
	streak, err := r.rewards.CurrentStreak(userID)
	if err != nil {
		utils.Sugar.Warnw("streak lookup failed", "user_id", userID, "error", err)
		streak = 0
	}

	account, err := r.rewards.Account(userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to load reward account")
		return
	}

	transactions, err := r.rewards.RecentTransactions(userID, 10)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to load transactions")
		return
	}

	utils.Success(ctx, gin.H{
		"current_streak":      streak,
		"next_milestone":      services.NextMilestone(streak),
		"total_coins":         account.TotalCoins,
		"lifetime_coins":      account.LifetimeCoins,
		"milestones":          services.MilestoneTable(streak),
		"special_reward_cost": services.SpecialRewardCost,
		"transactions":        transactions,
	})
}

// Transactions returns the reward ledger, newest first.
func (r *RewardController) Transactions(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	limit := parseLimit(ctx.Query("limit"), 50, 200)
	transactions, err := r.rewards.RecentTransactions(userID, limit)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to load transactions")
		return
	}

	utils.Success(ctx, transactions)
}

// ClaimSpecial redeems the 300 coin special reward. It can be claimed again
// whenever the balance allows.
func (r *RewardController) ClaimSpecial(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	if err := r.rewards.ClaimSpecialReward(userID); err != nil {
		if errors.Is(err, services.ErrInsufficientBalance) {
			utils.Error(ctx, http.StatusPreconditionFailed, 41220, "not enough coins to claim this reward")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to claim reward")
		return
	}

	account, err := r.rewards.Account(userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to load reward account")
		return
	}

	utils.Success(ctx, gin.H{
		"total_coins":    account.TotalCoins,
		"lifetime_coins": account.LifetimeCoins,
	})
}

// CheckIn records a qualifying activity for today and reports the streak.
func (r *RewardController) CheckIn(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	streak, err := r.rewards.RecordDailyActivity(userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to record activity")
		return
	}

	utils.Success(ctx, gin.H{
		"current_streak": streak,
		"next_milestone": services.NextMilestone(streak),
	})
}
