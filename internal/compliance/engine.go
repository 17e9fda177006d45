package compliance

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/halaleco/amanah/internal/domain"
)

// slaughterRequirements are reported with every slaughter check.
var slaughterRequirements = []string{
	"Animal must be alive and healthy at time of slaughter",
	"Slaughter must be performed by Muslim",
	"Bismillah must be recited",
	"Sharp knife must be used",
	"Blood must be completely drained",
}

// Certifiers by country of origin for compliant slaughter methods.
var slaughterCertifiers = []struct {
	Keyword   string
	Certifier string
}{
	{"malaysia", "JAKIM Malaysia"},
	{"singapore", "MUIS Singapore"},
	{"indonesia", "MUI Indonesia"},
	{"australia", "AHCFI Australia"},
	{"usa", "IFANCA USA"},
	{"america", "IFANCA USA"},
	{"canada", "HFCE Canada"},
	{"uk", "HFA UK"},
	{"britain", "HFA UK"},
}

// Product alternatives by category, then by product name keyword.
var categoryAlternatives = map[domain.ProductCategory][]string{
	domain.CategoryMeat: {
		"Halal chicken alternative",
		"Halal beef alternative",
		"Plant-based protein alternative",
	},
	domain.CategoryDairy: {
		"Plant-based dairy alternative",
		"Coconut-based alternative",
		"Oat-based alternative",
	},
}

var productAlternatives = []struct {
	Keyword      string
	Alternatives []string
}{
	{"gummy", []string{"Halal gummy bears", "Fruit snacks with halal gelatin", "Agar-based gummies"}},
	{"chocolate", []string{"Halal-certified chocolate", "Dark chocolate (dairy-free)", "Carob chocolate"}},
	{"cheese", []string{"Halal cheese", "Plant-based cheese", "Cashew cheese"}},
	{"yogurt", []string{"Halal yogurt", "Coconut yogurt", "Almond yogurt"}},
	{"bread", []string{"Halal-certified bread", "Homemade bread", "Sourdough bread"}},
	{"cookie", []string{"Halal cookies", "Homemade cookies", "Vegan cookies"}},
	{"cake", []string{"Halal-certified cake", "Eggless cake", "Vegan cake"}},
}

// Engine is the compliance decision engine. It combines ingredient
// classification, certification verification, and the meat-category
// slaughter check into a boolean verdict with a confidence score, and
// writes a ledger record for every decision.
type Engine struct {
	verifier *Verifier
	ledger   CertificationLedger
}

// NewEngine creates a compliance decision engine.
func NewEngine(verifier *Verifier, l CertificationLedger) *Engine {
	return &Engine{verifier: verifier, ledger: l}
}

// ValidateProduct runs the full compliance decision for a product.
func (e *Engine) ValidateProduct(ctx context.Context, req *domain.ComplianceRequest) (*domain.ComplianceResponse, error) {
	findings := ClassifyIngredients(req.Ingredients)

	cert, err := e.verifier.Verify(ctx, req.CertificationID)
	if err != nil {
		return nil, fmt.Errorf("certification verification: %w", err)
	}

	var slaughter *domain.SlaughterCompliance
	if req.Category == domain.CategoryMeat {
		slaughter = checkSlaughterCompliance(req.SlaughterMethod, req.Origin)
	}

	risk := assessRisk(req, findings, cert)
	compliant := determineCompliance(findings, cert, slaughter)

	certID := req.CertificationID
	if certID == "" {
		certID = fmt.Sprintf("AUTO-%d", time.Now().UnixMilli())
	}
	txHash, err := e.ledger.CreateRecord(ctx, &domain.LedgerRecord{
		ProductID:       req.Product,
		CertificationID: certID,
		Authority:       "Amanah Validator",
		ExpiryDate:      time.Now().AddDate(1, 0, 0).Format(time.RFC3339),
	})
	if err != nil {
		return nil, fmt.Errorf("ledger record: %w", err)
	}

	var alternatives []string
	if !compliant {
		alternatives = generateAlternatives(req.Product, req.Category)
	}

	haram := make([]string, 0)
	for _, f := range findings {
		if f.Status == domain.IngredientHaram {
			haram = append(haram, f.Ingredient)
		}
	}

	return &domain.ComplianceResponse{
		IsHalalCompliant:           compliant,
		HaramIngredients:           haram,
		CertificationAuthority:     cert.Authority,
		BlockchainTxHash:           txHash,
		BlockchainVerificationLink: "https://etherscan.io/tx/" + txHash,
		ConfidenceScore:            confidenceScore(findings, cert, risk),
		RecommendedAlternatives:    alternatives,
		ComplianceDetails: domain.ComplianceDetails{
			IngredientAnalysis:  findings,
			CertificationStatus: *cert,
			SlaughterCompliance: slaughter,
		},
		RiskAssessment: *risk,
	}, nil
}

// checkSlaughterCompliance verifies the slaughter method for meat
// products. Compliant methods name halal, zabiha, or dhabiha.
func checkSlaughterCompliance(method, origin string) *domain.SlaughterCompliance {
	if method == "" {
		return &domain.SlaughterCompliance{
			Method:       "Unknown",
			IsCompliant:  false,
			Requirements: slaughterRequirements,
		}
	}

	lower := strings.ToLower(method)
	compliant := strings.Contains(lower, "halal") ||
		strings.Contains(lower, "zabiha") ||
		strings.Contains(lower, "dhabiha")

	sc := &domain.SlaughterCompliance{
		Method:       method,
		IsCompliant:  compliant,
		Requirements: slaughterRequirements,
	}
	if compliant {
		sc.CertifyingBody = identifySlaughterCertifier(origin)
	}
	return sc
}

func identifySlaughterCertifier(origin string) string {
	if origin == "" {
		return "Unknown Certifier"
	}
	lower := strings.ToLower(origin)
	for _, sc := range slaughterCertifiers {
		if strings.Contains(lower, sc.Keyword) {
			return sc.Certifier
		}
	}
	return "Local Halal Authority"
}

// assessRisk accumulates fixed-weight risk factors and maps the total
// to a recommendation. The total is clamped to 10.
func assessRisk(req *domain.ComplianceRequest, findings []domain.IngredientFinding, cert *domain.CertificationRecord) *domain.RiskAssessment {
	factors := make([]domain.RiskFactor, 0, 5)
	total := 0

	if req.Price != "" {
		if price, ok := parsePrice(req.Price); ok && price < 1 {
			factors = append(factors, domain.RiskFactor{
				Factor:      "Suspiciously Low Price",
				Impact:      3,
				Description: "Price may indicate counterfeit or low-quality product",
			})
			total += 3
		}
	}

	if req.SellerRating > 0 && req.SellerRating < 3.5 {
		factors = append(factors, domain.RiskFactor{
			Factor:      "Low Seller Rating",
			Impact:      2,
			Description: "Seller has poor customer feedback history",
		})
		total += 2
	}

	if !cert.IsValid {
		factors = append(factors, domain.RiskFactor{
			Factor:      "No Valid Certification",
			Impact:      4,
			Description: "Product lacks proper Halal certification",
		})
		total += 4
	}

	haramCount, mushboohCount := countStatuses(findings)
	if haramCount > 0 {
		factors = append(factors, domain.RiskFactor{
			Factor:      "Haram Ingredients Detected",
			Impact:      5,
			Description: fmt.Sprintf("Contains %d prohibited ingredient(s)", haramCount),
		})
		total += 5
	}
	if mushboohCount > 0 {
		factors = append(factors, domain.RiskFactor{
			Factor:      "Doubtful Ingredients",
			Impact:      2,
			Description: fmt.Sprintf("Contains %d ingredient(s) requiring verification", mushboohCount),
		})
		total += 2
	}

	recommendation := domain.RecommendApprove
	switch {
	case total >= 7:
		recommendation = domain.RecommendReject
	case total >= 3:
		recommendation = domain.RecommendReview
	}

	if total > 10 {
		total = 10
	}
	return &domain.RiskAssessment{
		OverallRisk:    total,
		Factors:        factors,
		Recommendation: recommendation,
	}
}

// determineCompliance applies the compliance rules: no haram
// ingredients, slaughter check passes when present, and the
// certification is valid or trusted enough.
func determineCompliance(findings []domain.IngredientFinding, cert *domain.CertificationRecord, slaughter *domain.SlaughterCompliance) bool {
	for _, f := range findings {
		if f.Status == domain.IngredientHaram {
			return false
		}
	}
	if slaughter != nil && !slaughter.IsCompliant {
		return false
	}
	if !cert.IsValid && cert.TrustScore < 50 {
		return false
	}
	return true
}

// confidenceScore starts from a 70 base, rewards certification trust
// and clean ingredient lists, and penalizes overall risk. Clamped to
// [0,100] and rounded.
func confidenceScore(findings []domain.IngredientFinding, cert *domain.CertificationRecord, risk *domain.RiskAssessment) int {
	score := 70.0
	score += float64(cert.TrustScore) * 0.2

	haramCount, mushboohCount := countStatuses(findings)
	if haramCount == 0 {
		score += 10
	}
	if mushboohCount == 0 {
		score += 5
	}

	score -= float64(risk.OverallRisk) * 2

	rounded := int(score + 0.5)
	if rounded < 0 {
		return 0
	}
	if rounded > 100 {
		return 100
	}
	return rounded
}

func countStatuses(findings []domain.IngredientFinding) (haram, mushbooh int) {
	for _, f := range findings {
		switch f.Status {
		case domain.IngredientHaram:
			haram++
		case domain.IngredientMushbooh:
			mushbooh++
		}
	}
	return haram, mushbooh
}

func generateAlternatives(product string, category domain.ProductCategory) []string {
	if alts, ok := categoryAlternatives[category]; ok {
		return append([]string{"Halal-certified " + product}, alts...)
	}

	lower := strings.ToLower(product)
	for _, pa := range productAlternatives {
		if strings.Contains(lower, pa.Keyword) {
			return pa.Alternatives
		}
	}

	return []string{
		"Halal-certified " + product,
		"Organic " + product,
		"Plant-based " + product + " alternative",
		"Homemade " + product,
	}
}

// parsePrice extracts the numeric portion of a price string that may
// carry currency symbols or other noise.
func parsePrice(s string) (float64, bool) {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
