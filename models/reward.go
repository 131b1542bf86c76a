package models

import "time"

// Transaction types for the reward ledger.
const (
	RewardTxEarned = "earned"
	RewardTxSpent  = "spent"
)

// RewardAccount holds a user's coin balances. TotalCoins is spendable,
// LifetimeCoins only ever grows. Both are mutated inside the same locked
// transaction that appends the matching ledger row.
type RewardAccount struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	TotalCoins    int       `gorm:"not null;default:0" json:"total_coins"`
	LifetimeCoins int       `gorm:"not null;default:0" json:"lifetime_coins"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// RewardTransaction is an append-only ledger entry. Positive amounts are
// earnings, negative amounts are redemptions. The composite index supports a
// future uniqueness constraint on earned milestones per user.
type RewardTransaction struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"index;index:idx_reward_user_milestone;not null" json:"user_id"`
	Amount          int       `gorm:"not null" json:"amount"`
	Reason          string    `gorm:"size:255" json:"reason"`
	StreakDays      int       `gorm:"index:idx_reward_user_milestone" json:"streak_days"`
	TransactionType string    `gorm:"size:16;index:idx_reward_user_milestone;not null" json:"transaction_type"`
	CreatedAt       time.Time `json:"created_at"`
}
