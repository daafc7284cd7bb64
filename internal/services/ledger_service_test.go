package services

import (
	"errors"
	"testing"

	"gorm.io/gorm"

	"referral-engine/internal/models"
)

func TestCachedBalanceMatchesReplay(t *testing.T) {
	db := setupTestDB(t)
	accounts, _, ledger, rewards := newTestEngine(t, db)

	referrer, err := accounts.RegisterUser(801, "a", "A", "")
	if err != nil {
		t.Fatalf("RegisterUser failed: %v", err)
	}

	// Two referrals in, one redemption out.
	for i := 0; i < 2; i++ {
		if _, err := accounts.RegisterUser(int64(810+i), "u", "U", referrer.ReferralCode); err != nil {
			t.Fatalf("referred registration failed: %v", err)
		}
	}
	reward, err := rewards.CreateReward("Sticker Pack", "", 15, models.UnlimitedStock)
	if err != nil {
		t.Fatalf("CreateReward failed: %v", err)
	}
	if _, err := rewards.RedeemReward(referrer.ID, reward.ID); err != nil {
		t.Fatalf("RedeemReward failed: %v", err)
	}

	cached, err := ledger.CurrentBalance(referrer.ID)
	if err != nil {
		t.Fatalf("CurrentBalance failed: %v", err)
	}
	replayed, err := ledger.ReplayBalance(referrer.ID)
	if err != nil {
		t.Fatalf("ReplayBalance failed: %v", err)
	}

	if cached != 5 {
		t.Errorf("expected balance 5 (20 credited - 15 spent), got %d", cached)
	}
	if cached != replayed {
		t.Errorf("cached balance %d != replayed balance %d", cached, replayed)
	}

	entries, err := ledger.GetEntries(referrer.ID)
	if err != nil {
		t.Fatalf("GetEntries failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 ledger entries, got %d", len(entries))
	}
	if entries[2].Reason != models.LedgerReasonRedemptionDebit || entries[2].Delta != -15 {
		t.Errorf("last entry = %+v, want -15 redemption debit", entries[2])
	}
}

func TestLedgerDebitCannotGoNegative(t *testing.T) {
	db := setupTestDB(t)
	accounts, _, ledger, _ := newTestEngine(t, db)

	a, err := accounts.RegisterUser(901, "a", "A", "")
	if err != nil {
		t.Fatalf("RegisterUser failed: %v", err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		return applyLedgerDelta(tx, a.ID, -5, models.LedgerReasonRedemptionDebit)
	})
	if !errors.Is(err, ErrInsufficientPoints) {
		t.Fatalf("expected ErrInsufficientPoints, got %v", err)
	}

	// The rejected debit must leave no partial state: the appended entry
	// rolls back with the transaction.
	entries, err := ledger.GetEntries(a.ID)
	if err != nil {
		t.Fatalf("GetEntries failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no ledger entries after rollback, got %d", len(entries))
	}
	if balance, _ := ledger.CurrentBalance(a.ID); balance != 0 {
		t.Errorf("expected balance 0, got %d", balance)
	}
}

func TestCurrentBalanceUnknownAccount(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)

	if _, err := ledger.CurrentBalance(4242); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
