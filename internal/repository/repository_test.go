package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/halaleco/amanah/internal/domain"
)

func newTestRepo(t *testing.T) domain.Repository {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "amanah-test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	t.Cleanup(func() { os.Remove(tmpPath) })

	cfg := domain.RepositoryConfig{
		Driver:     "sqlite",
		SQLitePath: tmpPath,
	}

	repo, err := New(cfg)
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepository(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	t.Run("Ping", func(t *testing.T) {
		if err := repo.Ping(ctx); err != nil {
			t.Errorf("Ping failed: %v", err)
		}
	})

	t.Run("SaveAndGetUser", func(t *testing.T) {
		user := &domain.User{
			ID:           "user-001",
			Email:        "amina@example.com",
			Name:         "Amina",
			PasswordHash: "$2a$10$notarealhash",
			Role:         domain.RoleUser,
			CreatedAt:    time.Now().UTC(),
		}

		if err := repo.SaveUser(ctx, user); err != nil {
			t.Fatalf("SaveUser failed: %v", err)
		}

		got, err := repo.GetUserByEmail(ctx, "amina@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if got.ID != user.ID || got.Role != domain.RoleUser {
			t.Errorf("retrieved user mismatch: %+v", got)
		}

		byID, err := repo.GetUser(ctx, "user-001")
		if err != nil {
			t.Fatalf("GetUser failed: %v", err)
		}
		if byID.Email != user.Email {
			t.Errorf("expected email %s, got %s", user.Email, byID.Email)
		}
	})

	t.Run("DuplicateEmailRejected", func(t *testing.T) {
		user := &domain.User{
			ID:           "user-002",
			Email:        "amina@example.com",
			Name:         "Duplicate",
			PasswordHash: "$2a$10$notarealhash",
			Role:         domain.RoleUser,
			CreatedAt:    time.Now().UTC(),
		}
		if err := repo.SaveUser(ctx, user); err == nil {
			t.Error("expected duplicate email insert to fail")
		}
	})

	t.Run("UserNotFound", func(t *testing.T) {
		_, err := repo.GetUserByEmail(ctx, "missing@example.com")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		_, err = repo.GetUser(ctx, "no-such-user")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("InvalidUserInput", func(t *testing.T) {
		err := repo.SaveUser(ctx, &domain.User{Email: "no-id@example.com"})
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestVendorCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	now := time.Now().UTC()
	vendor := &domain.Vendor{
		ID:              "vendor-001",
		Name:            "Malaysia Halal Foods",
		Email:           "sales@mhf.example.com",
		Phone:           "+60-3-1234-5678",
		Country:         "Malaysia",
		CertificationID: "JAKIM-2024-001",
		Status:          domain.VendorPending,
		Rating:          4.5,
		TrustScore:      70,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	t.Run("SaveAndGet", func(t *testing.T) {
		if err := repo.SaveVendor(ctx, vendor); err != nil {
			t.Fatalf("SaveVendor failed: %v", err)
		}

		got, err := repo.GetVendor(ctx, "vendor-001")
		if err != nil {
			t.Fatalf("GetVendor failed: %v", err)
		}
		if got.Name != vendor.Name || got.Status != domain.VendorPending {
			t.Errorf("retrieved vendor mismatch: %+v", got)
		}
		if got.CertificationID != "JAKIM-2024-001" {
			t.Errorf("expected certification id preserved, got %q", got.CertificationID)
		}
	})

	t.Run("Upsert", func(t *testing.T) {
		verifiedAt := time.Now().UTC()
		vendor.Status = domain.VendorVerified
		vendor.VerifiedAt = &verifiedAt
		vendor.TrustScore = 85

		if err := repo.SaveVendor(ctx, vendor); err != nil {
			t.Fatalf("SaveVendor upsert failed: %v", err)
		}

		got, err := repo.GetVendor(ctx, "vendor-001")
		if err != nil {
			t.Fatalf("GetVendor failed: %v", err)
		}
		if got.Status != domain.VendorVerified {
			t.Errorf("expected status verified, got %s", got.Status)
		}
		if got.TrustScore != 85 {
			t.Errorf("expected trust score 85, got %d", got.TrustScore)
		}
		if got.VerifiedAt == nil {
			t.Error("expected verified_at to be set")
		}
	})

	t.Run("List", func(t *testing.T) {
		second := &domain.Vendor{
			ID:        "vendor-002",
			Name:      "Jakarta Spice Co",
			Email:     "hello@jsc.example.com",
			Country:   "Indonesia",
			Status:    domain.VendorPending,
			CreatedAt: now.Add(time.Second),
			UpdatedAt: now.Add(time.Second),
		}
		if err := repo.SaveVendor(ctx, second); err != nil {
			t.Fatalf("SaveVendor failed: %v", err)
		}

		vendors, err := repo.ListVendors(ctx)
		if err != nil {
			t.Fatalf("ListVendors failed: %v", err)
		}
		if len(vendors) != 2 {
			t.Fatalf("expected 2 vendors, got %d", len(vendors))
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := repo.DeleteVendor(ctx, "vendor-002"); err != nil {
			t.Fatalf("DeleteVendor failed: %v", err)
		}
		_, err := repo.GetVendor(ctx, "vendor-002")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
		if err := repo.DeleteVendor(ctx, "vendor-002"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound deleting missing vendor, got %v", err)
		}
	})
}

func TestScreeningRules(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	upper := 100.0
	rule := &domain.ScreeningRule{
		ID:          "price-deviation",
		Name:        "Price Deviation Check",
		Description: "Flags listings priced far below market",
		Version:     "1.0.0",
		Expression:  "price_deviation > 50.0",
		Bands: []domain.RuleBand{
			{LowerLimit: floatPtr(50.0), UpperLimit: &upper, SubRuleRef: ".review", Reason: "large deviation"},
		},
		Enabled: true,
	}

	t.Run("SaveAndGet", func(t *testing.T) {
		if err := repo.SaveScreeningRule(ctx, rule); err != nil {
			t.Fatalf("SaveScreeningRule failed: %v", err)
		}

		got, err := repo.GetScreeningRule(ctx, "price-deviation")
		if err != nil {
			t.Fatalf("GetScreeningRule failed: %v", err)
		}
		if got.Expression != rule.Expression {
			t.Errorf("expected expression %q, got %q", rule.Expression, got.Expression)
		}
		if len(got.Bands) != 1 || got.Bands[0].SubRuleRef != ".review" {
			t.Errorf("bands not preserved: %+v", got.Bands)
		}
		if !got.Enabled {
			t.Error("expected rule to be enabled")
		}
	})

	t.Run("LatestVersionWins", func(t *testing.T) {
		v2 := *rule
		v2.Version = "2.0.0"
		v2.Expression = "price_deviation > 60.0"
		if err := repo.SaveScreeningRule(ctx, &v2); err != nil {
			t.Fatalf("SaveScreeningRule v2 failed: %v", err)
		}

		got, err := repo.GetScreeningRule(ctx, "price-deviation")
		if err != nil {
			t.Fatalf("GetScreeningRule failed: %v", err)
		}
		if got.Version != "2.0.0" {
			t.Errorf("expected latest version 2.0.0, got %s", got.Version)
		}
	})

	t.Run("List", func(t *testing.T) {
		ruleSet, err := repo.ListScreeningRules(ctx)
		if err != nil {
			t.Fatalf("ListScreeningRules failed: %v", err)
		}
		if len(ruleSet) != 2 {
			t.Errorf("expected 2 rule rows, got %d", len(ruleSet))
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := repo.DeleteScreeningRule(ctx, "price-deviation"); err != nil {
			t.Fatalf("DeleteScreeningRule failed: %v", err)
		}
		_, err := repo.GetScreeningRule(ctx, "price-deviation")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
	})
}

func TestAlerts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	base := time.Now().Unix()
	for i := 0; i < 3; i++ {
		alert := &domain.ScreeningAlert{
			ID:          "alert-00" + string(rune('1'+i)),
			ProductID:   "prod-001",
			ProductName: "Suspicious Honey",
			SellerID:    "seller-001",
			RiskScore:   8,
			RiskLevel:   domain.RiskHigh,
			Action:      domain.ScreenBlock,
			FlagCount:   4,
			CreatedAt:   base + int64(i),
		}
		if err := repo.SaveAlert(ctx, alert); err != nil {
			t.Fatalf("SaveAlert failed: %v", err)
		}
	}

	t.Run("ListNewestFirst", func(t *testing.T) {
		alerts, err := repo.ListAlerts(ctx, 10)
		if err != nil {
			t.Fatalf("ListAlerts failed: %v", err)
		}
		if len(alerts) != 3 {
			t.Fatalf("expected 3 alerts, got %d", len(alerts))
		}
		if alerts[0].CreatedAt < alerts[2].CreatedAt {
			t.Error("expected alerts ordered newest first")
		}
		if alerts[0].RiskLevel != domain.RiskHigh || alerts[0].Action != domain.ScreenBlock {
			t.Errorf("alert fields not preserved: %+v", alerts[0])
		}
	})

	t.Run("LimitApplied", func(t *testing.T) {
		alerts, err := repo.ListAlerts(ctx, 2)
		if err != nil {
			t.Fatalf("ListAlerts failed: %v", err)
		}
		if len(alerts) != 2 {
			t.Errorf("expected 2 alerts, got %d", len(alerts))
		}
	})
}

func TestRebind(t *testing.T) {
	sqlite := &SQLRepository{driver: "sqlite"}
	if got := sqlite.rebind("SELECT * FROM users WHERE id = ?"); got != "SELECT * FROM users WHERE id = ?" {
		t.Errorf("sqlite rebind should be a no-op, got %q", got)
	}

	pg := &SQLRepository{driver: "postgres"}
	got := pg.rebind("INSERT INTO t (a, b) VALUES (?, ?)")
	want := "INSERT INTO t (a, b) VALUES ($1, $2)"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func floatPtr(f float64) *float64 { return &f }
