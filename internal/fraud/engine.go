package fraud

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/halaleco/amanah/internal/domain"
)

// velocityThreshold is the number of submissions per hour a seller can
// make before the listing is flagged.
const velocityThreshold = 5

// VelocityCounter records one submission for a seller and returns the
// running count inside the current window.
type VelocityCounter func(ctx context.Context, sellerID string) (int64, error)

// RuleEvaluator runs the custom screening rules against listing
// variables.
type RuleEvaluator interface {
	Evaluate(ctx context.Context, productID string, vars map[string]any) ([]domain.RuleResult, error)
}

// Engine is the aggregate risk engine. It runs the per-signal scorers,
// the custom screening rules, and the seller velocity check, combines
// them into a single assessment, and publishes screening events.
type Engine struct {
	rules    RuleEvaluator
	velocity VelocityCounter
	bus      domain.EventBus
}

// NewEngine creates an aggregate risk engine. Rules, velocity, and bus
// are each optional.
func NewEngine(rules RuleEvaluator, velocity VelocityCounter, bus domain.EventBus) *Engine {
	return &Engine{rules: rules, velocity: velocity, bus: bus}
}

// Analyze screens a listing and returns the full fraud assessment.
func (e *Engine) Analyze(ctx context.Context, req *domain.FraudRequest) (*domain.FraudResponse, error) {
	analysis := domain.DetailedAnalysis{
		PriceAnalysis:         AnalyzePricing(req),
		SellerAnalysis:        AnalyzeSeller(req),
		ImageAnalysis:         AnalyzeImages(req),
		TextAnalysis:          AnalyzeText(req),
		CertificationAnalysis: AnalyzeCertification(req),
	}

	riskScore := calculateRiskScore(&analysis)
	redFlags := identifyRedFlags(&analysis)
	redFlags = append(redFlags, e.patternFlags(ctx, req, &analysis)...)

	riskLevel := determineRiskLevel(riskScore)
	action := determineAction(riskScore, redFlags)

	resp := &domain.FraudResponse{
		RiskScore:         riskScore,
		RiskLevel:         riskLevel,
		RedFlags:          redFlags,
		RecommendedAction: action,
		Confidence:        calculateConfidence(redFlags),
		FraudProbability:  calculateFraudProbability(riskScore, redFlags),
		DetailedAnalysis:  analysis,
		Recommendations:   generateRecommendations(redFlags, riskLevel),
	}

	e.publish(ctx, req, resp)
	return resp, nil
}

// patternFlags collects red flags from the velocity check and the
// custom screening rules. Both sources are best-effort: failures are
// logged, not propagated.
func (e *Engine) patternFlags(ctx context.Context, req *domain.FraudRequest, analysis *domain.DetailedAnalysis) []domain.RedFlag {
	flags := make([]domain.RedFlag, 0, 2)

	if e.velocity != nil && req.SellerID != "" {
		count, err := e.velocity(ctx, req.SellerID)
		if err != nil {
			slog.Error("velocity check failed", "sellerId", req.SellerID, "error", err)
		} else if count > velocityThreshold {
			flags = append(flags, domain.RedFlag{
				Type:        domain.FlagPattern,
				Severity:    domain.SeverityMedium,
				Description: "Multiple similar listings submitted in a short period",
				Evidence:    fmt.Sprintf("%d submissions in the last hour", count),
				Impact:      3,
			})
		}
	}

	if e.rules != nil {
		results, err := e.rules.Evaluate(ctx, req.ProductID, ruleVars(req, analysis))
		if err != nil {
			slog.Error("rule evaluation failed", "productId", req.ProductID, "error", err)
			return flags
		}
		for _, r := range results {
			switch r.SubRuleRef {
			case domain.RuleOutcomeFail:
				flags = append(flags, domain.RedFlag{
					Type:        domain.FlagPattern,
					Severity:    domain.SeverityHigh,
					Description: "Screening rule failed: " + r.RuleID,
					Evidence:    r.Reason,
					Impact:      4,
				})
			case domain.RuleOutcomeReview:
				flags = append(flags, domain.RedFlag{
					Type:        domain.FlagPattern,
					Severity:    domain.SeverityMedium,
					Description: "Screening rule requests review: " + r.RuleID,
					Evidence:    r.Reason,
					Impact:      2,
				})
			}
		}
	}

	return flags
}

// ruleVars exposes the listing and scorer outputs to CEL expressions.
func ruleVars(req *domain.FraudRequest, analysis *domain.DetailedAnalysis) map[string]any {
	price, _ := parsePrice(req.Price)
	return map[string]any{
		"price":               price,
		"market_price":        analysis.PriceAnalysis.MarketPrice,
		"price_deviation":     analysis.PriceAnalysis.PriceDeviation,
		"seller_rating":       req.SellerRating,
		"account_age":         int64(req.SellerHistory.AccountAge),
		"total_sales":         int64(req.SellerHistory.TotalSales),
		"return_rate":         req.SellerHistory.ReturnRate,
		"complaint_count":     int64(req.SellerHistory.ComplaintCount),
		"trust_score":         int64(analysis.SellerAnalysis.TrustScore),
		"category":            req.Category,
		"suspicious_keywords": int64(len(analysis.TextAnalysis.SuspiciousKeywords)),
	}
}

func calculateRiskScore(a *domain.DetailedAnalysis) int {
	score := 0

	switch a.PriceAnalysis.PriceCategory {
	case domain.PriceVeryLow:
		score += 3
	case domain.PriceLow:
		score += 2
	case domain.PriceVeryHigh:
		score++
	}

	switch a.SellerAnalysis.BehaviorPattern {
	case domain.BehaviorFraudulent:
		score += 3
	case domain.BehaviorSuspicious:
		score += 2
	}
	if a.SellerAnalysis.TrustScore < 30 {
		score++
	}

	if !a.ImageAnalysis.IsAuthentic {
		score += 2
	}
	if a.ImageAnalysis.DuplicateDetected {
		score++
	}

	switch kw := len(a.TextAnalysis.SuspiciousKeywords); {
	case kw > 2:
		score += 2
	case kw > 0:
		score++
	}
	if a.TextAnalysis.LanguageQuality < 50 {
		score++
	}

	if len(a.CertificationAnalysis.SuspiciousElements) > 0 {
		score++
	}
	if !a.CertificationAnalysis.HasValidCertification {
		score++
	}

	if score > 10 {
		score = 10
	}
	return score
}

func identifyRedFlags(a *domain.DetailedAnalysis) []domain.RedFlag {
	flags := make([]domain.RedFlag, 0, 5)

	if a.PriceAnalysis.PriceCategory == domain.PriceVeryLow {
		flags = append(flags, domain.RedFlag{
			Type:        domain.FlagPrice,
			Severity:    domain.SeverityHigh,
			Description: "Price significantly below market average",
			Evidence:    fmt.Sprintf("Price is %.1f%% below market", math.Abs(a.PriceAnalysis.PriceDeviation)),
			Impact:      4,
		})
	}

	if a.SellerAnalysis.BehaviorPattern == domain.BehaviorFraudulent {
		flags = append(flags, domain.RedFlag{
			Type:        domain.FlagSeller,
			Severity:    domain.SeverityCritical,
			Description: "Seller profile indicates fraudulent behavior",
			Evidence:    fmt.Sprintf("Trust score: %d", a.SellerAnalysis.TrustScore),
			Impact:      5,
		})
	}

	if a.ImageAnalysis.DuplicateDetected {
		flags = append(flags, domain.RedFlag{
			Type:        domain.FlagImage,
			Severity:    domain.SeverityHigh,
			Description: "Product images found in other listings",
			Evidence:    "Duplicate image detection positive",
			Impact:      4,
		})
	}

	if len(a.TextAnalysis.SuspiciousKeywords) > 0 {
		flags = append(flags, domain.RedFlag{
			Type:        domain.FlagText,
			Severity:    domain.SeverityMedium,
			Description: "Suspicious marketing language detected",
			Evidence:    "Keywords: " + strings.Join(a.TextAnalysis.SuspiciousKeywords, ", "),
			Impact:      3,
		})
	}

	if len(a.CertificationAnalysis.SuspiciousElements) > 0 {
		flags = append(flags, domain.RedFlag{
			Type:        domain.FlagCertification,
			Severity:    domain.SeverityHigh,
			Description: "Certification issues detected",
			Evidence:    strings.Join(a.CertificationAnalysis.SuspiciousElements, ", "),
			Impact:      4,
		})
	}

	return flags
}

func determineRiskLevel(score int) domain.RiskLevel {
	switch {
	case score >= 8:
		return domain.RiskCritical
	case score >= 6:
		return domain.RiskHigh
	case score >= 3:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}

func determineAction(score int, flags []domain.RedFlag) domain.ScreeningAction {
	critical, high := 0, 0
	for _, f := range flags {
		switch f.Severity {
		case domain.SeverityCritical:
			critical++
		case domain.SeverityHigh:
			high++
		}
	}

	switch {
	case critical > 0 || score >= 8:
		return domain.ScreenBlock
	case high > 1 || score >= 6:
		return domain.ScreenManualReview
	case score >= 3:
		return domain.ScreenFlag
	default:
		return domain.ScreenApprove
	}
}

// calculateConfidence scales total flag impact against the maximum of
// five flags at impact five.
func calculateConfidence(flags []domain.RedFlag) int {
	total := 0
	for _, f := range flags {
		total += f.Impact
	}
	confidence := int(float64(total) / 25 * 100)
	if confidence > 100 {
		confidence = 100
	}
	return confidence
}

func calculateFraudProbability(score int, flags []domain.RedFlag) int {
	prob := int(float64(score)/10*60) + len(flags)*5
	if prob > 100 {
		prob = 100
	}
	return prob
}

func generateRecommendations(flags []domain.RedFlag, level domain.RiskLevel) []string {
	recs := make([]string, 0, 6)

	if level == domain.RiskCritical || level == domain.RiskHigh {
		recs = append(recs,
			"Block listing immediately",
			"Investigate seller account",
			"Review similar listings from same seller",
		)
	}
	if hasFlagType(flags, domain.FlagPrice) {
		recs = append(recs,
			"Verify pricing with market analysis",
			"Request price justification from seller",
		)
	}
	if hasFlagType(flags, domain.FlagCertification) {
		recs = append(recs,
			"Request original certification documents",
			"Verify certification with issuing authority",
		)
	}
	if hasFlagType(flags, domain.FlagImage) {
		recs = append(recs,
			"Request original product photos",
			"Verify image authenticity",
		)
	}

	if len(recs) == 0 {
		recs = append(recs,
			"Monitor listing for unusual activity",
			"Regular compliance checks",
		)
	}
	return recs
}

func hasFlagType(flags []domain.RedFlag, t domain.FlagType) bool {
	for _, f := range flags {
		if f.Type == t {
			return true
		}
	}
	return false
}

// publish emits the screening result and, for block or manual_review
// outcomes, a screening alert. Publish failures are logged only.
func (e *Engine) publish(ctx context.Context, req *domain.FraudRequest, resp *domain.FraudResponse) {
	if e.bus == nil {
		return
	}

	if payload, err := json.Marshal(resp); err == nil {
		if err := e.bus.Publish(ctx, domain.TopicScreeningResult, payload); err != nil {
			slog.Error("failed to publish screening result", "productId", req.ProductID, "error", err)
		}
	}

	if resp.RecommendedAction != domain.ScreenBlock && resp.RecommendedAction != domain.ScreenManualReview {
		return
	}

	alert := domain.ScreeningAlert{
		ID:          uuid.NewString(),
		ProductID:   req.ProductID,
		ProductName: req.ProductName,
		SellerID:    req.SellerID,
		RiskScore:   resp.RiskScore,
		RiskLevel:   resp.RiskLevel,
		Action:      resp.RecommendedAction,
		FlagCount:   len(resp.RedFlags),
		CreatedAt:   time.Now().Unix(),
	}
	payload, err := json.Marshal(alert)
	if err != nil {
		return
	}
	if err := e.bus.Publish(ctx, domain.TopicScreeningAlert, payload); err != nil {
		slog.Error("failed to publish screening alert", "productId", req.ProductID, "error", err)
	}
}
