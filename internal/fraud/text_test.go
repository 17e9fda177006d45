package fraud

import (
	"testing"

	"github.com/halaleco/amanah/internal/domain"
)

func TestAnalyzeText(t *testing.T) {
	t.Run("suspicious keywords", func(t *testing.T) {
		a := AnalyzeText(&domain.FraudRequest{
			ProductName: "Miracle Honey",
			Description: "Guaranteed halal, limited time offer. Cash only.",
		})
		want := map[string]bool{"miracle": true, "guaranteed halal": true, "limited time": true, "cash only": true}
		if len(a.SuspiciousKeywords) != len(want) {
			t.Errorf("keywords = %v, want %d hits", a.SuspiciousKeywords, len(want))
		}
		for _, kw := range a.SuspiciousKeywords {
			if !want[kw] {
				t.Errorf("unexpected keyword %q", kw)
			}
		}
	})

	t.Run("clean text", func(t *testing.T) {
		a := AnalyzeText(&domain.FraudRequest{
			ProductName: "Organic Dates",
			Description: "Premium quality dates harvested from certified farms in Madinah. Packed fresh for maximum flavor.",
		})
		if len(a.SuspiciousKeywords) != 0 {
			t.Errorf("expected no keywords, got %v", a.SuspiciousKeywords)
		}
		if a.LanguageQuality != 70 {
			t.Errorf("languageQuality = %d, want 70", a.LanguageQuality)
		}
	})

	t.Run("claims detection", func(t *testing.T) {
		a := AnalyzeText(&domain.FraudRequest{
			ProductName: "Supplement",
			Description: "100% natural and doctor recommended. Certified by experts.",
		})
		if len(a.ClaimsVerification) != 3 {
			t.Fatalf("expected 3 claims, got %d: %v", len(a.ClaimsVerification), a.ClaimsVerification)
		}
		for _, c := range a.ClaimsVerification {
			if c.IsVerifiable || c.Confidence != 30 {
				t.Errorf("claims should be unverifiable at confidence 30, got %+v", c)
			}
		}
	})

	t.Run("quality penalties", func(t *testing.T) {
		a := AnalyzeText(&domain.FraudRequest{
			ProductName: "wow",
			Description: "buy now!!!",
		})
		// 70 -15 (short) -10 (!!!) = 45.
		if a.LanguageQuality != 45 {
			t.Errorf("languageQuality = %d, want 45", a.LanguageQuality)
		}
	})

	t.Run("sentiment clamp", func(t *testing.T) {
		a := AnalyzeText(&domain.FraudRequest{
			Description: "excellent amazing perfect best great wonderful",
		})
		if a.SentimentScore < 0.59 || a.SentimentScore > 0.61 {
			t.Errorf("sentiment = %v, want 0.6", a.SentimentScore)
		}
		if a.SentimentScore > 1 {
			t.Error("sentiment must clamp to [-1,1]")
		}
	})
}
