package domain

// SellerHistory summarizes a seller's track record for screening.
type SellerHistory struct {
	AccountAge     int     `json:"accountAge"` // days
	TotalSales     int     `json:"totalSales"`
	ReturnRate     float64 `json:"returnRate"` // percentage
	ComplaintCount int     `json:"complaintCount"`
}

// FraudRequest is a listing submitted for fraud screening.
type FraudRequest struct {
	ProductID          string        `json:"productId"`
	ProductName        string        `json:"productName"`
	Price              string        `json:"price"`
	SellerRating       float64       `json:"sellerRating"`
	SellerID           string        `json:"sellerId,omitempty"`
	SellerHistory      SellerHistory `json:"sellerHistory"`
	CertificationImage string        `json:"certificationImage,omitempty"`
	Ingredients        []string      `json:"ingredients,omitempty"`
	ProductImages      []string      `json:"productImages,omitempty"`
	Description        string        `json:"description,omitempty"`
	Category           string        `json:"category,omitempty"`
	Supplier           string        `json:"supplier,omitempty"`
	Location           string        `json:"location,omitempty"`
}

// RiskLevel buckets the 0-10 aggregate risk score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// ScreeningAction is the recommended disposition of a screened listing.
type ScreeningAction string

const (
	ScreenApprove      ScreeningAction = "approve"
	ScreenFlag         ScreeningAction = "flag"
	ScreenBlock        ScreeningAction = "block"
	ScreenManualReview ScreeningAction = "manual_review"
)

// FlagType categorizes a red flag.
type FlagType string

const (
	FlagPrice         FlagType = "price"
	FlagSeller        FlagType = "seller"
	FlagImage         FlagType = "image"
	FlagText          FlagType = "text"
	FlagCertification FlagType = "certification"
	FlagPattern       FlagType = "pattern"
)

// Severity grades a red flag or alert.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// RedFlag is a discrete risk indicator with a numeric impact.
type RedFlag struct {
	Type        FlagType `json:"type"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
	Evidence    string   `json:"evidence"`
	Impact      int      `json:"impact"` // 1-5
}

// PriceCategory buckets the price deviation from market.
type PriceCategory string

const (
	PriceVeryLow  PriceCategory = "very_low"
	PriceLow      PriceCategory = "low"
	PriceNormal   PriceCategory = "normal"
	PriceHigh     PriceCategory = "high"
	PriceVeryHigh PriceCategory = "very_high"
)

// PriceAnalysis is the price scorer output.
type PriceAnalysis struct {
	MarketPrice       float64       `json:"marketPrice"`
	PriceDeviation    float64       `json:"priceDeviation"` // percentage
	IsPriceSuspicious bool          `json:"isPriceSuspicious"`
	PriceCategory     PriceCategory `json:"priceCategory"`
	CompetitorPrices  []float64     `json:"competitorPrices"`
}

// BehaviorPattern classifies a seller profile.
type BehaviorPattern string

const (
	BehaviorNormal     BehaviorPattern = "normal"
	BehaviorSuspicious BehaviorPattern = "suspicious"
	BehaviorFraudulent BehaviorPattern = "fraudulent"
)

// SellerAnalysis is the seller scorer output.
type SellerAnalysis struct {
	TrustScore         int             `json:"trustScore"` // 0-100
	RiskFactors        []string        `json:"riskFactors"`
	AccountFlags       []string        `json:"accountFlags"`
	BehaviorPattern    BehaviorPattern `json:"behaviorPattern"`
	VerificationStatus bool            `json:"verificationStatus"`
}

// ImageAnalysis is the (deterministic stub) image scorer output.
type ImageAnalysis struct {
	IsAuthentic             bool     `json:"isAuthentic"`
	DuplicateDetected       bool     `json:"duplicateDetected"`
	QualityScore            int      `json:"qualityScore"` // 0-100
	ManipulationDetected    bool     `json:"manipulationDetected"`
	CertificationImageValid bool     `json:"certificationImageValid"`
	SuspiciousElements      []string `json:"suspiciousElements"`
}

// ClaimVerification reports an unverifiable marketing claim.
type ClaimVerification struct {
	Claim        string `json:"claim"`
	IsVerifiable bool   `json:"isVerifiable"`
	Confidence   int    `json:"confidence"`
	Evidence     string `json:"evidence,omitempty"`
}

// TextAnalysis is the text scorer output.
type TextAnalysis struct {
	LanguageQuality    int                 `json:"languageQuality"` // 0-100
	GrammarScore       int                 `json:"grammarScore"`    // 0-100
	SuspiciousKeywords []string            `json:"suspiciousKeywords"`
	ClaimsVerification []ClaimVerification `json:"claimsVerification"`
	SentimentScore     float64             `json:"sentimentScore"` // -1 to 1
}

// CertificationAnalysis is the fraud-path certification check output.
type CertificationAnalysis struct {
	HasValidCertification  bool     `json:"hasValidCertification"`
	CertificationAuthority string   `json:"certificationAuthority"`
	CertificationExpiry    string   `json:"certificationExpiry,omitempty"`
	ImageAuthenticity      int      `json:"imageAuthenticity"` // 0-100
	BlockchainVerified     bool     `json:"blockchainVerified"`
	SuspiciousElements     []string `json:"suspiciousElements"`
}

// DetailedAnalysis groups the per-scorer outputs.
type DetailedAnalysis struct {
	PriceAnalysis         PriceAnalysis         `json:"priceAnalysis"`
	SellerAnalysis        SellerAnalysis        `json:"sellerAnalysis"`
	ImageAnalysis         ImageAnalysis         `json:"imageAnalysis"`
	TextAnalysis          TextAnalysis          `json:"textAnalysis"`
	CertificationAnalysis CertificationAnalysis `json:"certificationAnalysis"`
}

// FraudResponse is the aggregate risk engine output.
type FraudResponse struct {
	RiskScore         int              `json:"riskScore"` // 0-10
	RiskLevel         RiskLevel        `json:"riskLevel"`
	RedFlags          []RedFlag        `json:"redFlags"`
	RecommendedAction ScreeningAction  `json:"recommendedAction"`
	Confidence        int              `json:"confidence"`       // 0-100
	FraudProbability  int              `json:"fraudProbability"` // 0-100
	DetailedAnalysis  DetailedAnalysis `json:"detailedAnalysis"`
	Recommendations   []string         `json:"recommendations"`
}

// ScreeningAlert is published on the event bus when a screening results
// in a block or manual_review action, and persisted by the alert worker.
type ScreeningAlert struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	SellerID    string          `json:"sellerId,omitempty"`
	RiskScore   int             `json:"riskScore"`
	RiskLevel   RiskLevel       `json:"riskLevel"`
	Action      ScreeningAction `json:"action"`
	FlagCount   int             `json:"flagCount"`
	CreatedAt   int64           `json:"createdAt"` // unix seconds
}
