package fraud

import (
	"testing"

	"github.com/halaleco/amanah/internal/domain"
)

func TestAnalyzePricing(t *testing.T) {
	tests := []struct {
		name       string
		price      string
		category   string
		wantBucket domain.PriceCategory
		suspicious bool
	}{
		{"very low", "$1", "food", domain.PriceVeryLow, true},
		{"low", "$10", "food", domain.PriceLow, false},
		{"normal", "$15", "food", domain.PriceNormal, false},
		{"high", "$20", "food", domain.PriceHigh, false},
		{"very high", "$30", "food", domain.PriceVeryHigh, true},
		{"default base price", "$20", "unknown-category", domain.PriceNormal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := AnalyzePricing(&domain.FraudRequest{
				ProductID: "p1",
				Price:     tt.price,
				Category:  tt.category,
			})
			if a.PriceCategory != tt.wantBucket {
				t.Errorf("bucket = %s, want %s", a.PriceCategory, tt.wantBucket)
			}
			if a.IsPriceSuspicious != tt.suspicious {
				t.Errorf("suspicious = %v, want %v", a.IsPriceSuspicious, tt.suspicious)
			}
		})
	}
}

func TestCompetitorPricesDeterministic(t *testing.T) {
	a := AnalyzePricing(&domain.FraudRequest{ProductID: "p1", Price: "$10", Category: "food"})
	b := AnalyzePricing(&domain.FraudRequest{ProductID: "p1", Price: "$10", Category: "food"})
	if len(a.CompetitorPrices) != 5 {
		t.Fatalf("expected 5 competitor prices, got %d", len(a.CompetitorPrices))
	}
	for i := range a.CompetitorPrices {
		if a.CompetitorPrices[i] != b.CompetitorPrices[i] {
			t.Error("competitor prices should be stable per product")
		}
		deviation := (a.CompetitorPrices[i] - a.MarketPrice) / a.MarketPrice
		if deviation < -0.2 || deviation > 0.2 {
			t.Errorf("competitor price %v outside 20%% of market %v", a.CompetitorPrices[i], a.MarketPrice)
		}
	}
}
