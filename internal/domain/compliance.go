// Package domain defines the core interfaces and types for Amanah.
package domain

// IngredientStatus classifies a single ingredient.
type IngredientStatus string

const (
	IngredientHalal    IngredientStatus = "halal"
	IngredientHaram    IngredientStatus = "haram"
	IngredientMushbooh IngredientStatus = "mushbooh"
	IngredientUnknown  IngredientStatus = "unknown"
)

// IngredientFinding is the classification result for one ingredient.
type IngredientFinding struct {
	Ingredient   string           `json:"ingredient"`
	Status       IngredientStatus `json:"status"`
	Reason       string           `json:"reason"`
	Alternatives []string         `json:"alternatives,omitempty"`
}

// VerificationMethod describes how a certification was checked.
type VerificationMethod string

const (
	VerifyByLedger  VerificationMethod = "ledger"
	VerifyByPattern VerificationMethod = "pattern"
	VerifyManual    VerificationMethod = "manual"
)

// CertificationRecord is the outcome of certification verification.
type CertificationRecord struct {
	IsValid            bool               `json:"isValid"`
	Authority          string             `json:"authority"`
	ExpiryDate         string             `json:"expiryDate,omitempty"`
	VerificationMethod VerificationMethod `json:"verificationMethod"`

	// TrustScore is 0-100. Ledger hits score 95, prefix matches 75,
	// unrecognized issuers 25, missing certification 0.
	TrustScore int `json:"trustScore"`
}

// SlaughterCompliance is the meat-category slaughter check result.
type SlaughterCompliance struct {
	Method        string   `json:"method"`
	IsCompliant   bool     `json:"isCompliant"`
	Requirements  []string `json:"requirements"`
	CertifyingBody string  `json:"certifyingBody,omitempty"`
}

// RiskFactor contributes to an aggregate risk assessment.
type RiskFactor struct {
	Factor      string `json:"factor"`
	Impact      int    `json:"impact"` // 1-5
	Description string `json:"description"`
}

// Recommendation is the compliance-path verdict on a product.
type Recommendation string

const (
	RecommendApprove Recommendation = "approve"
	RecommendReview  Recommendation = "review"
	RecommendReject  Recommendation = "reject"
)

// RiskAssessment is the compliance-path risk summary.
type RiskAssessment struct {
	OverallRisk    int            `json:"overallRisk"` // 0-10
	Factors        []RiskFactor   `json:"factors"`
	Recommendation Recommendation `json:"recommendation"`
}

// ProductCategory enumerates the supported product categories.
type ProductCategory string

const (
	CategoryMeat           ProductCategory = "meat"
	CategoryDairy          ProductCategory = "dairy"
	CategoryProcessed      ProductCategory = "processed"
	CategoryCosmetics      ProductCategory = "cosmetics"
	CategoryPharmaceutical ProductCategory = "pharmaceutical"
)

// ComplianceRequest is the input to the compliance decision engine.
type ComplianceRequest struct {
	Product            string          `json:"product"`
	Ingredients        []string        `json:"ingredients"`
	CertificationID    string          `json:"certificationId,omitempty"`
	Supplier           string          `json:"supplier,omitempty"`
	Price              string          `json:"price,omitempty"`
	SellerRating       float64         `json:"sellerRating,omitempty"`
	CertificationImage string          `json:"certificationImage,omitempty"`
	Category           ProductCategory `json:"category,omitempty"`
	SlaughterMethod    string          `json:"slaughterMethod,omitempty"`
	Origin             string          `json:"origin,omitempty"`
}

// ComplianceDetails carries the per-check breakdown of a compliance decision.
type ComplianceDetails struct {
	IngredientAnalysis  []IngredientFinding  `json:"ingredientAnalysis"`
	CertificationStatus CertificationRecord  `json:"certificationStatus"`
	SlaughterCompliance *SlaughterCompliance `json:"slaughterCompliance,omitempty"`
}

// ComplianceResponse is the full compliance decision.
type ComplianceResponse struct {
	IsHalalCompliant           bool              `json:"isHalalCompliant"`
	HaramIngredients           []string          `json:"haramIngredients"`
	CertificationAuthority     string            `json:"certificationAuthority"`
	BlockchainTxHash           string            `json:"blockchainTxHash"`
	BlockchainVerificationLink string            `json:"blockchainVerificationLink"`
	ConfidenceScore            int               `json:"confidenceScore"`
	RecommendedAlternatives    []string          `json:"recommendedAlternatives"`
	ComplianceDetails          ComplianceDetails `json:"complianceDetails"`
	RiskAssessment             RiskAssessment    `json:"riskAssessment"`
}

// ValidationRequest is the input to the simple halal validator.
type ValidationRequest struct {
	Product         string   `json:"product"`
	Ingredients     []string `json:"ingredients"`
	CertificationID string   `json:"certificationId,omitempty"`
	Supplier        string   `json:"supplier,omitempty"`
	Price           string   `json:"price,omitempty"`
	SellerRating    float64  `json:"sellerRating,omitempty"`
}

// ValidationAction is the quick-screen verdict of the simple validator.
type ValidationAction string

const (
	ActionAllow ValidationAction = "allow"
	ActionFlag  ValidationAction = "flag"
	ActionBlock ValidationAction = "block"
)

// ValidationResponse is the simple validator's result.
type ValidationResponse struct {
	IsHalalCompliant           bool             `json:"isHalalCompliant"`
	HaramIngredients           []string         `json:"haramIngredients"`
	CertificationAuthority     string           `json:"certificationAuthority"`
	BlockchainVerificationLink string           `json:"blockchainVerificationLink"`
	ConfidenceScore            int              `json:"confidenceScore"`
	RecommendedAlternatives    []string         `json:"recommendedAlternatives"`
	RiskScore                  int              `json:"riskScore"`
	RedFlags                   []string         `json:"redFlags"`
	RecommendedAction          ValidationAction `json:"recommendedAction"`
}
