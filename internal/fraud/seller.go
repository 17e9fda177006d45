package fraud

import (
	"fmt"

	"github.com/halaleco/amanah/internal/domain"
)

// AnalyzeSeller computes a 0-100 trust score from the seller's rating
// and history, starting from a neutral 50 and applying fixed band
// weights.
func AnalyzeSeller(req *domain.FraudRequest) domain.SellerAnalysis {
	rating := req.SellerRating
	history := req.SellerHistory

	riskFactors := make([]string, 0, 6)
	accountFlags := make([]string, 0, 3)
	trust := 50

	switch {
	case rating < 2.0:
		trust -= 30
		riskFactors = append(riskFactors, "Very low seller rating")
	case rating < 3.5:
		trust -= 15
		riskFactors = append(riskFactors, "Below average seller rating")
	case rating > 4.5:
		trust += 10
	}

	switch {
	case history.AccountAge < 30:
		trust -= 20
		riskFactors = append(riskFactors, "New seller account")
		accountFlags = append(accountFlags, "Account less than 30 days old")
	case history.AccountAge < 90:
		trust -= 10
		riskFactors = append(riskFactors, "Relatively new seller")
	}

	switch {
	case history.TotalSales < 10:
		trust -= 15
		riskFactors = append(riskFactors, "Limited sales history")
	case history.TotalSales > 1000:
		trust += 15
	}

	switch {
	case history.ReturnRate > 20:
		trust -= 25
		riskFactors = append(riskFactors, "High return rate")
		accountFlags = append(accountFlags, fmt.Sprintf("Return rate: %g%%", history.ReturnRate))
	case history.ReturnRate > 10:
		trust -= 10
		riskFactors = append(riskFactors, "Above average return rate")
	}

	switch {
	case history.ComplaintCount > 10:
		trust -= 20
		riskFactors = append(riskFactors, "Multiple customer complaints")
		accountFlags = append(accountFlags, fmt.Sprintf("%d complaints", history.ComplaintCount))
	case history.ComplaintCount > 5:
		trust -= 10
		riskFactors = append(riskFactors, "Some customer complaints")
	}

	behavior := domain.BehaviorNormal
	switch {
	case trust < 30:
		behavior = domain.BehaviorFraudulent
	case trust < 50:
		behavior = domain.BehaviorSuspicious
	}

	if trust < 0 {
		trust = 0
	}
	if trust > 100 {
		trust = 100
	}

	return domain.SellerAnalysis{
		TrustScore:         trust,
		RiskFactors:        riskFactors,
		AccountFlags:       accountFlags,
		BehaviorPattern:    behavior,
		VerificationStatus: history.AccountAge > 90 && history.TotalSales > 50,
	}
}
