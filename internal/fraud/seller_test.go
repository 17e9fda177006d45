package fraud

import (
	"testing"

	"github.com/halaleco/amanah/internal/domain"
)

func TestAnalyzeSeller(t *testing.T) {
	t.Run("fraudulent profile clamps to zero", func(t *testing.T) {
		a := AnalyzeSeller(&domain.FraudRequest{
			SellerRating: 1.5,
			SellerHistory: domain.SellerHistory{
				AccountAge:     10,
				TotalSales:     2,
				ReturnRate:     30,
				ComplaintCount: 15,
			},
		})
		// 50 -30 -20 -15 -25 -20 = -60, clamped.
		if a.TrustScore != 0 {
			t.Errorf("trustScore = %d, want 0", a.TrustScore)
		}
		if a.BehaviorPattern != domain.BehaviorFraudulent {
			t.Errorf("behaviorPattern = %s, want fraudulent", a.BehaviorPattern)
		}
		if a.VerificationStatus {
			t.Error("young low-volume seller should not be verified")
		}
		if len(a.AccountFlags) != 3 {
			t.Errorf("expected 3 account flags, got %d", len(a.AccountFlags))
		}
	})

	t.Run("established seller", func(t *testing.T) {
		a := AnalyzeSeller(&domain.FraudRequest{
			SellerRating: 4.8,
			SellerHistory: domain.SellerHistory{
				AccountAge: 400,
				TotalSales: 2000,
				ReturnRate: 2,
			},
		})
		// 50 +10 +15 = 75.
		if a.TrustScore != 75 {
			t.Errorf("trustScore = %d, want 75", a.TrustScore)
		}
		if a.BehaviorPattern != domain.BehaviorNormal {
			t.Errorf("behaviorPattern = %s, want normal", a.BehaviorPattern)
		}
		if !a.VerificationStatus {
			t.Error("established seller should be verified")
		}
	})

	t.Run("rating below 2 drops at least 30", func(t *testing.T) {
		a := AnalyzeSeller(&domain.FraudRequest{
			SellerRating: 1.0,
			SellerHistory: domain.SellerHistory{
				AccountAge: 400,
				TotalSales: 100,
			},
		})
		if a.TrustScore > 20 {
			t.Errorf("trustScore = %d, want <= 20", a.TrustScore)
		}
	})
}
