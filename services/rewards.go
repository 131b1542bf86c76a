package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bhishma-ai/bhishma/models"
	"github.com/bhishma-ai/bhishma/utils"
)

const (
	// Milestones exist at every multiple of 10 streak days up to 100.
	milestoneStep = 10
	maxMilestone  = 100

	// SpecialRewardCost is the coin price of the repeatable special reward.
	SpecialRewardCost = 300

	specialRewardReason = "Claimed 300 coin special reward"
)

// ErrInsufficientBalance is returned when a claim is attempted below the
// special reward cost. No state is mutated in that case.
var ErrInsufficientBalance = errors.New("insufficient balance")

// Milestone is one row of the derived milestone table.
type Milestone struct {
	Days     int  `json:"days"`
	Reward   int  `json:"reward"`
	Achieved bool `json:"achieved"`
}

// MilestoneReward returns the coin reward for a milestone. Only positive
// multiples of 10 have rewards: base of days coins plus a tenure bonus of 5
// coins per completed 10-day block beyond the first.
func MilestoneReward(days int) int {
	if days < milestoneStep || days%milestoneStep != 0 {
		return 0
	}
	base := (days / milestoneStep) * 10
	bonus := 0
	if days >= 2*milestoneStep {
		bonus = (days/milestoneStep - 1) * 5
	}
	return base + bonus
}

// NextMilestone returns the first milestone strictly greater than the current
// streak, so progress bars never show an already-reached target.
func NextMilestone(streakDays int) int {
	return (streakDays/milestoneStep + 1) * milestoneStep
}

// MilestoneTable lists every milestone up to 100 days with its reward and
// whether the given streak has reached it.
func MilestoneTable(streakDays int) []Milestone {
	table := make([]Milestone, 0, maxMilestone/milestoneStep)
	for d := milestoneStep; d <= maxMilestone; d += milestoneStep {
		table = append(table, Milestone{
			Days:     d,
			Reward:   MilestoneReward(d),
			Achieved: streakDays >= d,
		})
	}
	return table
}

// applyMilestoneEarn credits the account and builds the matching ledger row.
// Returns a zero reward for non-milestone day counts.
func applyMilestoneEarn(account *models.RewardAccount, milestoneDays int) (models.RewardTransaction, int) {
	reward := MilestoneReward(milestoneDays)
	if reward == 0 {
		return models.RewardTransaction{}, 0
	}
	account.TotalCoins += reward
	account.LifetimeCoins += reward
	return models.RewardTransaction{
		UserID:          account.UserID,
		Amount:          reward,
		Reason:          fmt.Sprintf("Reached %d-day streak milestone", milestoneDays),
		StreakDays:      milestoneDays,
		TransactionType: models.RewardTxEarned,
	}, reward
}

// applySpecialClaim debits the account for the special reward and builds the
/// ledger row. LifetimeCoins is untouched: a claim is a redemption, not an
// earn. Fails without mutation when the balance is short.
func applySpecialClaim(account *models.RewardAccount) (models.RewardTransaction, error) {
	if account.TotalCoins < SpecialRewardCost {
		return models.RewardTransaction{}, ErrInsufficientBalance
	}
	account.TotalCoins -= SpecialRewardCost
	return models.RewardTransaction{
		UserID:          account.UserID,
		Amount:          -SpecialRewardCost,
		Reason:          specialRewardReason,
		TransactionType: models.RewardTxSpent,
	}, nil
}

// RewardService implements the streak reward engine over the activity log and
// the coin ledger. All balance mutations run inside a transaction holding a
// row lock on the user's account, so the ledger sum and the cached balance
// cannot drift.
type RewardService struct {
	db *gorm.DB
}

// NewRewardService creates a reward service bound to the given database.
func NewRewardService(db *gorm.DB) *RewardService {
	return &RewardService{db: db}
}

// CurrentStreak counts consecutive activity days ending today. A user with no
// qualifying activity today has a streak of 0.
func (s *RewardService) CurrentStreak(userID uint) (int, error) {
	var records []models.ActivityRecord
	if err := s.db.Where("user_id = ?", userID).
		Order("activity_date DESC").
		Limit(maxMilestone * 4).
		Find(&records).Error; err != nil {
		return 0, fmt.Errorf("load activity records: %w", err)
	}

	now := time.Now()
	expected := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	streak := 0
	for _, rec := range records {
		d := rec.ActivityDate
		if d.Year() != expected.Year() || d.YearDay() != expected.YearDay() {
			break
		}
		streak++
		expected = expected.AddDate(0, 0, -1)
	}
	return streak, nil
}

// Account returns the user's reward account, creating it on first read.
func (s *RewardService) Account(userID uint) (models.RewardAccount, error) {
	var account models.RewardAccount
	err := s.db.Where(models.RewardAccount{UserID: userID}).FirstOrCreate(&account).Error
	if err != nil {
		return models.RewardAccount{}, fmt.Errorf("load reward account: %w", err)
	}
	return account, nil
}

// RecentTransactions returns the latest ledger entries, newest first.
func (s *RewardService) RecentTransactions(userID uint, limit int) ([]models.RewardTransaction, error) {
	if limit <= 0 {
		limit = 10
	}
	var txs []models.RewardTransaction
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("load reward transactions: %w", err)
	}
	return txs, nil
}

// LedgerBalance sums the user's ledger. It must always equal the account's
// TotalCoins; exposed for reconciliation.
func (s *RewardService) LedgerBalance(userID uint) (int, error) {
	var sum int
	if err := s.db.Model(&models.RewardTransaction{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount),0)").
		Scan(&sum).Error; err != nil {
		return 0, fmt.Errorf("sum reward ledger: %w", err)
	}
	return sum, nil
}

// RecordMilestoneEarn credits the milestone reward to both balances and
// appends the earned ledger row in one locked transaction. The engine does
// not deduplicate by milestone; callers crossing milestones must invoke it
// at most once per (user, milestone).
func (s *RewardService) RecordMilestoneEarn(userID uint, milestoneDays int) (int, error) {
	earned := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		account, err := lockAccount(tx, userID)
		if err != nil {
			return err
		}
		ledgerRow, reward := applyMilestoneEarn(&account, milestoneDays)
		if reward == 0 {
			return nil
		}
		if err := tx.Create(&ledgerRow).Error; err != nil {
			return fmt.Errorf("append reward transaction: %w", err)
		}
		if err := tx.Save(&account).Error; err != nil {
			return fmt.Errorf("update reward account: %w", err)
		}
		earned = reward
		return nil
	})
	if err != nil {
		return 0, err
	}
	return earned, nil
}

// ClaimSpecialReward redeems 300 coins. The operation is repeatable: whenever
// the balance crosses 300 again, a new claim succeeds.
func (s *RewardService) ClaimSpecialReward(userID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		account, err := lockAccount(tx, userID)
		if err != nil {
			return err
		}
		ledgerRow, err := applySpecialClaim(&account)
		if err != nil {
			return err
		}
		if err := tx.Create(&ledgerRow).Error; err != nil {
			return fmt.Errorf("append reward transaction: %w", err)
		}
		if err := tx.Save(&account).Error; err != nil {
			return fmt.Errorf("update reward account: %w", err)
		}
		return nil
	})
}

// RecordDailyActivity upserts today's activity row, recomputes the streak,
// and earns the milestone reward when the streak lands exactly on one. The
// ledger is checked first so retried hooks do not double-earn.
func (s *RewardService) RecordDailyActivity(userID uint) (int, error) {
	now := time.Now().In(time.Local)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "activity_date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"count": gorm.Expr("count + 1"), "updated_at": time.Now()}),
	}).Create(&models.ActivityRecord{UserID: userID, ActivityDate: today, Count: 1}).Error
	if err != nil {
		return 0, fmt.Errorf("record activity: %w", err)
	}

	streak, err := s.CurrentStreak(userID)
	if err != nil {
		return 0, err
	}

	if streak > 0 && streak%milestoneStep == 0 && streak <= maxMilestone {
		earned, err := s.alreadyEarned(userID, streak)
		if err != nil {
			return streak, err
		}
		if !earned {
			if reward, err := s.RecordMilestoneEarn(userID, streak); err != nil {
				utils.Sugar.Errorw("milestone earn failed", "user_id", userID, "milestone", streak, "error", err)
			} else if reward > 0 {
				utils.Sugar.Infow("milestone reward earned", "user_id", userID, "milestone", streak, "coins", reward)
			}
		}
	}
	return streak, nil
}

func (s *RewardService) alreadyEarned(userID uint, milestoneDays int) (bool, error) {
	var count int64
	err := s.db.Model(&models.RewardTransaction{}).
		Where("user_id = ? AND streak_days = ? AND transaction_type = ?", userID, milestoneDays, models.RewardTxEarned).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check milestone ledger: %w", err)
	}
	return count > 0, nil
}

func lockAccount(tx *gorm.DB, userID uint) (models.RewardAccount, error) {
	var account models.RewardAccount
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(models.RewardAccount{UserID: userID}).
		FirstOrCreate(&account).Error
	if err != nil {
		return models.RewardAccount{}, fmt.Errorf("lock reward account: %w", err)
	}
	return account, nil
}
