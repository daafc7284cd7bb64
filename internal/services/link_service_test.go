package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"referral-engine/internal/models"
)

func newTestLinkService(t *testing.T, db *gorm.DB) *LinkService {
	t.Helper()
	return NewLinkService(db, NewKeyLock(), time.UTC)
}

func TestIssueReferralLinkDailyLimit(t *testing.T) {
	db := setupTestDB(t)
	accounts, _, _, _ := newTestEngine(t, db)
	links := newTestLinkService(t, db)

	a, err := accounts.RegisterUser(701, "a", "A", "")
	if err != nil {
		t.Fatalf("RegisterUser failed: %v", err)
	}

	day := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	links.now = func() time.Time { return day }

	event, err := links.IssueReferralLink(a.ID, "https://t.me/bot?start="+a.ReferralCode)
	if err != nil {
		t.Fatalf("IssueReferralLink failed: %v", err)
	}
	if event.IssuedOn != "2025-03-10" {
		t.Errorf("issued_on = %q, want 2025-03-10", event.IssuedOn)
	}

	// Same day, even at 23:59, is rejected.
	links.now = func() time.Time { return time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC) }
	if _, err := links.IssueReferralLink(a.ID, "second"); !errors.Is(err, ErrDailyLimitExceeded) {
		t.Fatalf("expected ErrDailyLimitExceeded, got %v", err)
	}

	// Next day succeeds.
	links.now = func() time.Time { return day.AddDate(0, 0, 1) }
	if _, err := links.IssueReferralLink(a.ID, "third"); err != nil {
		t.Fatalf("next-day IssueReferralLink failed: %v", err)
	}

	var count int64
	db.Model(&models.LinkIssuanceEvent{}).Where("account_id = ?", a.ID).Count(&count)
	if count != 2 {
		t.Errorf("expected 2 issuance events, got %d", count)
	}
}

func TestIssueReferralLinkConcurrent(t *testing.T) {
	db := setupTestDB(t)
	accounts, _, _, _ := newTestEngine(t, db)
	links := newTestLinkService(t, db)

	a, err := accounts.RegisterUser(702, "a", "A", "")
	if err != nil {
		t.Fatalf("RegisterUser failed: %v", err)
	}

	fixed := time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC)
	links.now = func() time.Time { return fixed }

	const workers = 8
	errs := make(chan error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := links.IssueReferralLink(a.ID, "link")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	successes, rejections := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrDailyLimitExceeded):
			rejections++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if successes != 1 || rejections != workers-1 {
		t.Errorf("expected 1 success and %d rejections, got %d and %d", workers-1, successes, rejections)
	}

	var count int64
	db.Model(&models.LinkIssuanceEvent{}).Where("account_id = ?", a.ID).Count(&count)
	if count != 1 {
		t.Errorf("expected exactly 1 event row, got %d", count)
	}
}

func TestIssueReferralLinkUnknownAccount(t *testing.T) {
	db := setupTestDB(t)
	links := newTestLinkService(t, db)

	if _, err := links.IssueReferralLink(9999, "link"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecordClickAndConversionConcurrent(t *testing.T) {
	db := setupTestDB(t)
	accounts, _, _, _ := newTestEngine(t, db)
	links := newTestLinkService(t, db)

	a, err := accounts.RegisterUser(703, "a", "A", "")
	if err != nil {
		t.Fatalf("RegisterUser failed: %v", err)
	}
	event, err := links.IssueReferralLink(a.ID, "link")
	if err != nil {
		t.Fatalf("IssueReferralLink failed: %v", err)
	}

	const clicks = 20
	var wg sync.WaitGroup
	for i := 0; i < clicks; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := links.RecordClick(event.ID); err != nil {
				t.Errorf("RecordClick failed: %v", err)
			}
		}()
	}
	wg.Wait()

	for i := 0; i < 3; i++ {
		if err := links.RecordConversion(event.ID); err != nil {
			t.Fatalf("RecordConversion failed: %v", err)
		}
	}

	var reloaded models.LinkIssuanceEvent
	if err := db.First(&reloaded, event.ID).Error; err != nil {
		t.Fatalf("failed to reload event: %v", err)
	}
	if reloaded.Clicks != clicks {
		t.Errorf("expected %d clicks, got %d", clicks, reloaded.Clicks)
	}
	if reloaded.Conversions != 3 {
		t.Errorf("expected 3 conversions, got %d", reloaded.Conversions)
	}

	if err := links.RecordClick(12345); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown event, got %v", err)
	}
}
