package services

import (
	"errors"
	"testing"

	"github.com/bhishma-ai/bhishma/models"
)

func TestMilestoneReward(t *testing.T) {
	tests := []struct {
		days int
		want int
	}{
		{0, 0},
		{5, 0},
		{9, 0},
		{10, 10},
		{11, 0},
		{15, 0},
		{20, 25},
		{30, 40},
		{40, 55},
		{50, 70},
		{60, 85},
		{70, 100},
		{80, 115},
		{90, 130},
		{100, 145},
	}
	for _, tt := range tests {
		if got := MilestoneReward(tt.days); got != tt.want {
			t.Errorf("MilestoneReward(%d) = %d, want %d", tt.days, got, tt.want)
		}
	}
}

func TestNextMilestone(t *testing.T) {
	tests := []struct {
		streak int
		want   int
	}{
		{0, 10},
		{1, 10},
		{9, 10},
		{10, 20},
		{11, 20},
		{19, 20},
		{20, 30},
		{95, 100},
		{100, 110},
	}
	for _, tt := range tests {
		if got := NextMilestone(tt.streak); got != tt.want {
			t.Errorf("NextMilestone(%d) = %d, want %d", tt.streak, got, tt.want)
		}
	}
}

func TestNextMilestoneAlwaysAhead(t *testing.T) {
	for streak := 0; streak <= 200; streak++ {
		next := NextMilestone(streak)
		if next <= streak {
			t.Fatalf("NextMilestone(%d) = %d, not ahead of streak", streak, next)
		}
		if next%10 != 0 {
			t.Fatalf("NextMilestone(%d) = %d, not a multiple of 10", streak, next)
		}
	}
}

func TestMilestoneTable(t *testing.T) {
	table := MilestoneTable(35)
	if len(table) != 10 {
		t.Fatalf("len(table) = %d, want 10", len(table))
	}
	for i, m := range table {
		wantDays := (i + 1) * 10
		if m.Days != wantDays {
			t.Errorf("table[%d].Days = %d, want %d", i, m.Days, wantDays)
		}
		if m.Reward != MilestoneReward(wantDays) {
			t.Errorf("table[%d].Reward = %d, want %d", i, m.Reward, MilestoneReward(wantDays))
		}
		wantAchieved := wantDays <= 35
		if m.Achieved != wantAchieved {
			t.Errorf("table[%d].Achieved = %v, want %v", i, m.Achieved, wantAchieved)
		}
	}
}

func TestApplyMilestoneEarn(t *testing.T) {
	account := models.RewardAccount{UserID: 7, TotalCoins: 50, LifetimeCoins: 120}

	tx, reward := applyMilestoneEarn(&account, 20)
	if reward != 25 {
		t.Fatalf("reward = %d, want 25", reward)
	}
	if account.TotalCoins != 75 || account.LifetimeCoins != 145 {
		t.Errorf("balances = %d/%d, want 75/145", account.TotalCoins, account.LifetimeCoins)
	}
	if tx.Amount != 25 || tx.StreakDays != 20 || tx.TransactionType != models.RewardTxEarned {
		t.Errorf("unexpected ledger row %+v", tx)
	}
	if tx.UserID != 7 {
		t.Errorf("tx.UserID = %d, want 7", tx.UserID)
	}
}

func TestApplyMilestoneEarnNonMilestone(t *testing.T) {
	account := models.RewardAccount{UserID: 7, TotalCoins: 50, LifetimeCoins: 120}

	_, reward := applyMilestoneEarn(&account, 15)
	if reward != 0 {
		t.Fatalf("reward = %d, want 0", reward)
	}
	if account.TotalCoins != 50 || account.LifetimeCoins != 120 {
		t.Errorf("balances mutated on non-milestone: %d/%d", account.TotalCoins, account.LifetimeCoins)
	}
}

func TestApplySpecialClaim(t *testing.T) {
	account := models.RewardAccount{UserID: 3, TotalCoins: 300, LifetimeCoins: 500}

	tx, err := applySpecialClaim(&account)
	if err != nil {
		t.Fatalf("applySpecialClaim: %v", err)
	}
	if account.TotalCoins != 0 {
		t.Errorf("TotalCoins = %d, want 0", account.TotalCoins)
	}
	if account.LifetimeCoins != 500 {
		t.Errorf("LifetimeCoins = %d, want 500 (claims are not earns)", account.LifetimeCoins)
	}
	if tx.Amount != -300 || tx.TransactionType != models.RewardTxSpent {
		t.Errorf("unexpected ledger row %+v", tx)
	}
	if tx.Reason != "Claimed 300 coin special reward" {
		t.Errorf("tx.Reason = %q", tx.Reason)
	}
}

func TestApplySpecialClaimInsufficient(t *testing.T) {
	account := models.RewardAccount{UserID: 3, TotalCoins: 299, LifetimeCoins: 299}

	_, err := applySpecialClaim(&account)
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("err = %v, want ErrInsufficientBalance", err)
	}
	if account.TotalCoins != 299 {
		t.Errorf("TotalCoins mutated on failed claim: %d", account.TotalCoins)
	}
}

func TestApplySpecialClaimRepeatable(t *testing.T) {
	account := models.RewardAccount{UserID: 3, TotalCoins: 650, LifetimeCoins: 650}

	for i := 0; i < 2; i++ {
		if _, err := applySpecialClaim(&account); err != nil {
			t.Fatalf("claim %d: %v", i+1, err)
		}
	}
	if account.TotalCoins != 50 {
		t.Errorf("TotalCoins = %d, want 50 after two claims", account.TotalCoins)
	}
	if _, err := applySpecialClaim(&account); !errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("third claim err = %v, want ErrInsufficientBalance", err)
	}
}

// The ledger rows emitted by earns and claims must always sum to the cached
// balance, since both are committed together under the account row lock.
func TestLedgerSumMatchesBalance(t *testing.T) {
	account := models.RewardAccount{UserID: 9}
	var ledger []models.RewardTransaction

	for _, days := range []int{10, 20, 30, 40, 50, 60, 70, 80, 90, 100} {
		tx, reward := applyMilestoneEarn(&account, days)
		if reward == 0 {
			t.Fatalf("milestone %d earned nothing", days)
		}
		ledger = append(ledger, tx)

		if account.TotalCoins >= SpecialRewardCost {
			claim, err := applySpecialClaim(&account)
			if err != nil {
				t.Fatalf("claim after %d-day milestone: %v", days, err)
			}
			ledger = append(ledger, claim)
		}

		var sum int
		for _, row := range ledger {
			sum += row.Amount
		}
		if sum != account.TotalCoins {
			t.Fatalf("after %d-day milestone ledger sum = %d, balance = %d", days, sum, account.TotalCoins)
		}
	}

	var earned int
	for _, row := range ledger {
		if row.TransactionType == models.RewardTxEarned {
			earned += row.Amount
		}
	}
	if earned != account.LifetimeCoins {
		t.Errorf("earned rows sum = %d, LifetimeCoins = %d", earned, account.LifetimeCoins)
	}
}
