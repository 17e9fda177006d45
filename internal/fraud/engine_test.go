package fraud

import (
	"context"
	"reflect"
	"testing"

	"github.com/halaleco/amanah/internal/domain"
)

func fraudulentListing() *domain.FraudRequest {
	return &domain.FraudRequest{
		ProductID:    "prod-1",
		ProductName:  "Guaranteed Halal Miracle Meat",
		Price:        "$0.50",
		SellerRating: 1.5,
		SellerHistory: domain.SellerHistory{
			AccountAge:     10,
			TotalSales:     2,
			ReturnRate:     30,
			ComplaintCount: 15,
		},
		Description: "limited time urgent sale cash only",
		Category:    "food",
	}
}

func TestAnalyzeFraudulentListing(t *testing.T) {
	e := NewEngine(nil, nil, nil)

	resp, err := e.Analyze(context.Background(), fraudulentListing())
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if resp.DetailedAnalysis.SellerAnalysis.TrustScore != 0 {
		t.Errorf("trustScore = %d, want 0", resp.DetailedAnalysis.SellerAnalysis.TrustScore)
	}
	if resp.DetailedAnalysis.SellerAnalysis.BehaviorPattern != domain.BehaviorFraudulent {
		t.Errorf("behaviorPattern = %s, want fraudulent", resp.DetailedAnalysis.SellerAnalysis.BehaviorPattern)
	}
	if resp.RecommendedAction != domain.ScreenBlock {
		t.Errorf("action = %s, want block", resp.RecommendedAction)
	}
	if resp.RiskScore < 0 || resp.RiskScore > 10 {
		t.Errorf("riskScore %d out of range", resp.RiskScore)
	}
	if resp.Confidence < 0 || resp.Confidence > 100 {
		t.Errorf("confidence %d out of range", resp.Confidence)
	}
	if resp.FraudProbability < 0 || resp.FraudProbability > 100 {
		t.Errorf("fraudProbability %d out of range", resp.FraudProbability)
	}
	if len(resp.Recommendations) == 0 {
		t.Error("expected recommendations for a risky listing")
	}
}

func TestAnalyzeCleanListing(t *testing.T) {
	e := NewEngine(nil, nil, nil)

	resp, err := e.Analyze(context.Background(), &domain.FraudRequest{
		ProductID:          "prod-2",
		ProductName:        "Organic Dates",
		Price:              "$15",
		SellerRating:       4.8,
		CertificationImage: "https://cdn.example.com/cert.jpg",
		SellerHistory: domain.SellerHistory{
			AccountAge: 500,
			TotalSales: 5000,
			ReturnRate: 1,
		},
		Description: "Premium quality dates harvested from certified farms. Packed fresh for maximum flavor and delivered quickly.",
		Category:    "food",
	})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if resp.RiskLevel == domain.RiskCritical || resp.RiskLevel == domain.RiskHigh {
		t.Errorf("clean listing scored %s (score %d, flags %v)", resp.RiskLevel, resp.RiskScore, resp.RedFlags)
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	e := NewEngine(nil, nil, nil)
	ctx := context.Background()

	a, err := e.Analyze(ctx, fraudulentListing())
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	b, err := e.Analyze(ctx, fraudulentListing())
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if a.RiskScore != b.RiskScore || a.RecommendedAction != b.RecommendedAction {
		t.Error("analysis should be a pure function of the request")
	}
	if !reflect.DeepEqual(toComparable(a.DetailedAnalysis.ImageAnalysis), toComparable(b.DetailedAnalysis.ImageAnalysis)) {
		t.Error("image analysis should be deterministic")
	}
}

// toComparable strips the slice field so the struct can be compared.
func toComparable(a domain.ImageAnalysis) domain.ImageAnalysis {
	a.SuspiciousElements = nil
	return a
}

func TestVelocityFlag(t *testing.T) {
	calls := 0
	counter := func(ctx context.Context, sellerID string) (int64, error) {
		calls++
		return 9, nil
	}
	e := NewEngine(nil, counter, nil)

	req := fraudulentListing()
	req.SellerID = "seller-1"
	resp, err := e.Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("velocity counter called %d times, want 1", calls)
	}

	found := false
	for _, f := range resp.RedFlags {
		if f.Type == domain.FlagPattern {
			found = true
		}
	}
	if !found {
		t.Error("expected a pattern flag for rapid submissions")
	}
}

type stubRules struct {
	results []domain.RuleResult
}

func (s *stubRules) Evaluate(ctx context.Context, productID string, vars map[string]any) ([]domain.RuleResult, error) {
	return s.results, nil
}

func TestRuleFlags(t *testing.T) {
	e := NewEngine(&stubRules{results: []domain.RuleResult{
		{RuleID: "rule-price-floor", SubRuleRef: domain.RuleOutcomeFail, Reason: "price below floor"},
		{RuleID: "rule-keywords", SubRuleRef: domain.RuleOutcomeReview, Reason: "keyword density"},
		{RuleID: "rule-ok", SubRuleRef: domain.RuleOutcomePass},
	}}, nil, nil)

	resp, err := e.Analyze(context.Background(), &domain.FraudRequest{
		ProductID:   "prod-3",
		ProductName: "Dates",
		Price:       "$15",
		Category:    "food",
		SellerHistory: domain.SellerHistory{
			AccountAge: 500, TotalSales: 100,
		},
		SellerRating: 4.0,
	})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	pattern := 0
	for _, f := range resp.RedFlags {
		if f.Type == domain.FlagPattern {
			pattern++
		}
	}
	if pattern != 2 {
		t.Errorf("expected 2 pattern flags from rules, got %d", pattern)
	}
}

func TestDetermineAction(t *testing.T) {
	critical := []domain.RedFlag{{Severity: domain.SeverityCritical}}
	if got := determineAction(2, critical); got != domain.ScreenBlock {
		t.Errorf("critical flag should block, got %s", got)
	}
	twoHigh := []domain.RedFlag{{Severity: domain.SeverityHigh}, {Severity: domain.SeverityHigh}}
	if got := determineAction(2, twoHigh); got != domain.ScreenManualReview {
		t.Errorf("two high flags should route to manual review, got %s", got)
	}
	if got := determineAction(4, nil); got != domain.ScreenFlag {
		t.Errorf("score 4 should flag, got %s", got)
	}
	if got := determineAction(1, nil); got != domain.ScreenApprove {
		t.Errorf("score 1 should approve, got %s", got)
	}
}
