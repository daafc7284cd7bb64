package services

import (
	"errors"
	"sync"
	"testing"

	"referral-engine/internal/models"
)

func TestRegisterUserIdempotent(t *testing.T) {
	db := setupTestDB(t)
	accounts, _, _, _ := newTestEngine(t, db)

	first, err := accounts.RegisterUser(1001, "alice", "Alice", "")
	if err != nil {
		t.Fatalf("RegisterUser failed: %v", err)
	}
	if first.ReferralCode == "" {
		t.Fatal("expected a referral code to be generated")
	}

	second, err := accounts.RegisterUser(1001, "alice-renamed", "Alice", "")
	if err != nil {
		t.Fatalf("repeated RegisterUser failed: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("expected same account on re-registration, got %d and %d", first.ID, second.ID)
	}
	if second.ReferralCode != first.ReferralCode {
		t.Errorf("expected referral code %q to survive re-registration, got %q", first.ReferralCode, second.ReferralCode)
	}
	if second.Username != "alice" {
		t.Errorf("re-registration must not mutate the account, username became %q", second.Username)
	}

	var count int64
	db.Model(&models.Account{}).Where("telegram_id = ?", 1001).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 account row, got %d", count)
	}
}

func TestRegisterUserCodesUnique(t *testing.T) {
	db := setupTestDB(t)
	accounts, _, _, _ := newTestEngine(t, db)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		account, err := accounts.RegisterUser(int64(2000+i), "user", "User", "")
		if err != nil {
			t.Fatalf("RegisterUser %d failed: %v", i, err)
		}
		if seen[account.ReferralCode] {
			t.Fatalf("referral code %q issued twice", account.ReferralCode)
		}
		seen[account.ReferralCode] = true
	}
}

func TestRegisterUserWithReferrerCredits(t *testing.T) {
	db := setupTestDB(t)
	accounts, _, ledger, _ := newTestEngine(t, db)

	referrer, err := accounts.RegisterUser(3001, "anna", "Anna", "")
	if err != nil {
		t.Fatalf("RegisterUser referrer failed: %v", err)
	}
	if referrer.Points != 0 {
		t.Fatalf("fresh account should have 0 points, got %d", referrer.Points)
	}

	referred, err := accounts.RegisterUser(3002, "bob", "Bob", referrer.ReferralCode)
	if err != nil {
		t.Fatalf("RegisterUser with referrer code failed: %v", err)
	}

	reloaded := reloadAccount(t, db, referrer.ID)
	if reloaded.Points != 10 {
		t.Errorf("expected referrer balance 10, got %d", reloaded.Points)
	}
	if reloaded.Referrals != 1 {
		t.Errorf("expected referral count 1, got %d", reloaded.Referrals)
	}

	var edge models.ReferralEdge
	if err := db.Where("referred_id = ?", referred.ID).First(&edge).Error; err != nil {
		t.Fatalf("expected a referral edge: %v", err)
	}
	if edge.ReferrerID != referrer.ID {
		t.Errorf("edge referrer = %d, want %d", edge.ReferrerID, referrer.ID)
	}
	if edge.Status != models.EdgeStatusConfirmed {
		t.Errorf("edge status = %q, want confirmed", edge.Status)
	}
	if edge.PointsAwarded != 10 {
		t.Errorf("edge points awarded = %d, want 10", edge.PointsAwarded)
	}

	replayed, err := ledger.ReplayBalance(referrer.ID)
	if err != nil {
		t.Fatalf("ReplayBalance failed: %v", err)
	}
	if replayed != reloaded.Points {
		t.Errorf("ledger replay %d disagrees with cached balance %d", replayed, reloaded.Points)
	}
}

func TestRegisterUserUnknownReferrerCode(t *testing.T) {
	db := setupTestDB(t)
	accounts, _, _, _ := newTestEngine(t, db)

	_, err := accounts.RegisterUser(4001, "carol", "Carol", "NOSUCHCD")
	if !errors.Is(err, ErrUnknownReferralCode) {
		t.Fatalf("expected ErrUnknownReferralCode, got %v", err)
	}

	// The failed registration must not leave a half-created account behind.
	if _, err := accounts.GetByTelegramID(4001); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected no account after failed registration, got %v", err)
	}
}

func TestRegisterUserCodeGenerationExhausted(t *testing.T) {
	db := setupTestDB(t)
	accounts, _, _, _ := newTestEngine(t, db)

	accounts.generateCode = func(length int) (string, error) {
		return "SAMECODE", nil
	}

	if _, err := accounts.RegisterUser(5001, "dave", "Dave", ""); err != nil {
		t.Fatalf("first RegisterUser failed: %v", err)
	}

	_, err := accounts.RegisterUser(5002, "erin", "Erin", "")
	if !errors.Is(err, ErrCodeGenerationExhausted) {
		t.Fatalf("expected ErrCodeGenerationExhausted, got %v", err)
	}
}

func TestRegisterUserConcurrentSameIdentity(t *testing.T) {
	db := setupTestDB(t)
	accounts, _, _, _ := newTestEngine(t, db)

	const workers = 5
	results := make(chan *models.Account, workers)
	errs := make(chan error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			account, err := accounts.RegisterUser(6001, "frank", "Frank", "")
			if err != nil {
				errs <- err
				return
			}
			results <- account
		}()
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent RegisterUser failed: %v", err)
	}

	var firstID uint
	for account := range results {
		if firstID == 0 {
			firstID = account.ID
			continue
		}
		if account.ID != firstID {
			t.Errorf("concurrent registrations returned different accounts: %d and %d", firstID, account.ID)
		}
	}

	var count int64
	db.Model(&models.Account{}).Where("telegram_id = ?", 6001).Count(&count)
	if count != 1 {
		t.Errorf("expected exactly 1 account row, got %d", count)
	}
}
