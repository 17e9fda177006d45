package compliance

import (
	"context"
	"strings"

	"github.com/halaleco/amanah/internal/domain"
)

// The quick validator keeps its own prohibited list, maintained
// independently of the classifier's list.
var validatorHaramIngredients = []string{
	"pork",
	"bacon",
	"ham",
	"lard",
	"gelatin",
	"alcohol",
	"wine",
	"beer",
	"vanilla extract",
	"rum flavoring",
	"wine vinegar",
	"pepsin",
	"rennet",
	"carmine",
	"cochineal",
	"shellac",
}

var validatorAlternatives = []struct {
	Keyword      string
	Alternatives []string
}{
	{"beef sausages", []string{"Halal beef sausages", "Chicken sausages", "Turkey sausages"}},
	{"gelatin", []string{"Halal gelatin", "Agar-agar", "Pectin"}},
	{"vanilla extract", []string{"Halal vanilla extract", "Vanilla powder", "Natural vanilla"}},
}

// Validator is the quick halal screen behind /validate-halal. It does a
// single-list haram scan plus a small risk calculation, cheaper than
// the full decision engine.
type Validator struct {
	ledger CertificationLedger
}

// NewValidator creates a quick validator.
func NewValidator(l CertificationLedger) *Validator {
	return &Validator{ledger: l}
}

// Validate runs the quick halal and risk screen for a product.
func (v *Validator) Validate(ctx context.Context, req *domain.ValidationRequest) (*domain.ValidationResponse, error) {
	haram := detectHaram(req.Ingredients)
	compliant := len(haram) == 0

	authority := "Not Certified"
	verificationLink := ""
	if req.CertificationID != "" {
		lv, err := v.ledger.VerifyCertification(ctx, req.CertificationID)
		if err == nil && lv.IsValid && lv.CertificationData != nil {
			authority = lv.CertificationData.Authority
			if lv.BlockchainRecord != nil {
				verificationLink = "https://etherscan.io/tx/" + lv.BlockchainRecord.VerificationHash
			}
		}
	}

	riskScore, redFlags, action := quickRisk(req)

	alternatives := []string{}
	if !compliant {
		alternatives = quickAlternatives(req.Product)
	}

	return &domain.ValidationResponse{
		IsHalalCompliant:           compliant,
		HaramIngredients:           haram,
		CertificationAuthority:     authority,
		BlockchainVerificationLink: verificationLink,
		ConfidenceScore:            quickConfidence(req, compliant),
		RecommendedAlternatives:    alternatives,
		RiskScore:                  riskScore,
		RedFlags:                   redFlags,
		RecommendedAction:          action,
	}, nil
}

func detectHaram(ingredients []string) []string {
	haram := make([]string, 0)
	for _, ingredient := range ingredients {
		lower := strings.ToLower(ingredient)
		for _, h := range validatorHaramIngredients {
			if strings.Contains(lower, h) {
				haram = append(haram, ingredient)
				break
			}
		}
	}
	return haram
}

func quickConfidence(req *domain.ValidationRequest, compliant bool) int {
	score := 70
	if req.CertificationID != "" {
		score += 20
	}
	if compliant {
		score += 10
	}
	if strings.Contains(strings.ToLower(req.Supplier), "halal") {
		score += 5
	}
	if len(req.Ingredients) > 0 {
		score += 5
	}
	if score > 100 {
		score = 100
	}
	return score
}

func quickRisk(req *domain.ValidationRequest) (int, []string, domain.ValidationAction) {
	redFlags := make([]string, 0)
	risk := 1

	if req.Price != "" {
		if price, ok := parsePrice(req.Price); ok && price < 1 {
			redFlags = append(redFlags, "Suspiciously low price")
			risk += 3
		}
	}
	if req.SellerRating > 0 && req.SellerRating < 3.5 {
		redFlags = append(redFlags, "Low seller rating")
		risk += 2
	}
	if req.CertificationID == "" {
		redFlags = append(redFlags, "No certification provided")
		risk++
	}

	action := domain.ActionAllow
	switch {
	case risk >= 6:
		action = domain.ActionBlock
	case risk >= 3:
		action = domain.ActionFlag
	}

	if risk > 10 {
		risk = 10
	}
	return risk, redFlags, action
}

func quickAlternatives(product string) []string {
	lower := strings.ToLower(product)
	for _, va := range validatorAlternatives {
		if strings.Contains(lower, va.Keyword) {
			return va.Alternatives
		}
	}
	return []string{
		"Halal " + product,
		"Certified " + product,
		"Alternative to " + product,
	}
}
