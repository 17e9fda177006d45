package domain

// StageStatus is the compliance state of a supply chain stage.
type StageStatus string

const (
	StagePending      StageStatus = "pending"
	StageCompliant    StageStatus = "compliant"
	StageNonCompliant StageStatus = "non_compliant"
	StageFlagged      StageStatus = "flagged"
)

// DocumentType enumerates supply chain document kinds.
type DocumentType string

const (
	DocCertificate      DocumentType = "certificate"
	DocInvoice          DocumentType = "invoice"
	DocInspectionReport DocumentType = "inspection_report"
	DocPhoto            DocumentType = "photo"
	DocVideo            DocumentType = "video"
)

// Document is an attachment on a supply chain stage.
type Document struct {
	Type       DocumentType `json:"type"`
	URL        string       `json:"url"`
	Hash       string       `json:"hash"`
	Verified   bool         `json:"verified"`
	UploadedBy string       `json:"uploadedBy"`
	Timestamp  int64        `json:"timestamp"` // unix millis
}

// HalalComplianceCheck records the inspection outcome for a stage.
type HalalComplianceCheck struct {
	IsCompliant       bool     `json:"isCompliant"`
	CertificationID   string   `json:"certificationId,omitempty"`
	Inspector         string   `json:"inspector"`
	InspectionDate    int64    `json:"inspectionDate"` // unix millis
	Issues            []string `json:"issues"`
	CorrectionActions []string `json:"correctionActions"`
	NextInspectionDue int64    `json:"nextInspectionDue,omitempty"` // unix millis
}

// ContaminationRisk grades environmental contamination exposure.
type ContaminationRisk string

const (
	ContaminationLow    ContaminationRisk = "low"
	ContaminationMedium ContaminationRisk = "medium"
	ContaminationHigh   ContaminationRisk = "high"
)

// EnvironmentalData captures storage and transport conditions.
type EnvironmentalData struct {
	Temperature         float64           `json:"temperature"` // celsius
	Humidity            float64           `json:"humidity"`
	StorageConditions   string            `json:"storageConditions"`
	TransportConditions string            `json:"transportConditions"`
	ContaminationRisk   ContaminationRisk `json:"contaminationRisk"`
}

// QualityMetrics are 0-100 product quality scores for a stage.
type QualityMetrics struct {
	Freshness      int `json:"freshness"`
	Appearance     int `json:"appearance"`
	Packaging      int `json:"packaging"`
	OverallQuality int `json:"overallQuality"`
}

// SupplyChainStage is one step of a product's journey.
type SupplyChainStage struct {
	ID                string               `json:"id"`
	Name              string               `json:"name"`
	Location          string               `json:"location"`
	Timestamp         int64                `json:"timestamp"` // unix millis
	Certifier         string               `json:"certifier"`
	Status            StageStatus          `json:"status"`
	Documents         []Document           `json:"documents"`
	HalalCompliance   HalalComplianceCheck `json:"halalCompliance"`
	EnvironmentalData *EnvironmentalData   `json:"environmentalData,omitempty"`
	QualityMetrics    *QualityMetrics      `json:"qualityMetrics,omitempty"`
}

// AlertType enumerates supply chain alert kinds.
type AlertType string

const (
	AlertContamination AlertType = "contamination"
	AlertTemperature   AlertType = "temperature"
	AlertCertification AlertType = "certification"
	AlertDelay         AlertType = "delay"
)

// Alert is a supply chain incident.
type Alert struct {
	ID              string    `json:"id"`
	Type            AlertType `json:"type"`
	Severity        Severity  `json:"severity"`
	Message         string    `json:"message"`
	Stage           string    `json:"stage"`
	Timestamp       int64     `json:"timestamp"` // unix millis
	Resolved        bool      `json:"resolved"`
	ResolutionNotes string    `json:"resolutionNotes,omitempty"`
}

// SupplyChainRecord is a product's full supply chain trace.
type SupplyChainRecord struct {
	ProductID         string             `json:"productId"`
	ProductName       string             `json:"productName"`
	BatchNumber       string             `json:"batchNumber"`
	Stages            []SupplyChainStage `json:"stages"`
	CurrentStage      string             `json:"currentStage"`
	OverallCompliance bool               `json:"overallCompliance"`
	RiskScore         float64            `json:"riskScore"` // 0-10
	Alerts            []Alert            `json:"alerts"`
	BlockchainHash    string             `json:"blockchainHash"`
	QRCode            string             `json:"qrCode"`
	CreatedAt         int64              `json:"createdAt"` // unix millis
	UpdatedAt         int64              `json:"updatedAt"` // unix millis
}

// TrackingQuery identifies a supply chain record to look up.
type TrackingQuery struct {
	ProductID      string `json:"productId,omitempty"`
	BatchNumber    string `json:"batchNumber,omitempty"`
	QRCode         string `json:"qrCode,omitempty"`
	BlockchainHash string `json:"blockchainHash,omitempty"`
}

// IsEmpty reports whether the query carries no tracking parameter.
func (q *TrackingQuery) IsEmpty() bool {
	return q.ProductID == "" && q.BatchNumber == "" && q.QRCode == "" && q.BlockchainHash == ""
}

// StagePerformance summarizes one stage type across all products.
type StagePerformance struct {
	StageName             string  `json:"stageName"`
	ComplianceRate        float64 `json:"complianceRate"`
	AverageProcessingTime float64 `json:"averageProcessingTime"` // days
	IssueCount            int     `json:"issueCount"`
}

// IssueFrequency counts occurrences of a recurring issue.
type IssueFrequency struct {
	Issue     string `json:"issue"`
	Frequency int    `json:"frequency"`
	Impact    string `json:"impact"` // low, medium, high
}

// TrendData is one day's aggregate compliance trend point.
type TrendData struct {
	Date           string  `json:"date"` // YYYY-MM-DD
	ComplianceRate float64 `json:"complianceRate"`
	RiskScore      float64 `json:"riskScore"`
	AlertCount     int     `json:"alertCount"`
}

// SupplyChainAnalytics is the aggregate dashboard payload.
type SupplyChainAnalytics struct {
	TotalProducts     int                `json:"totalProducts"`
	CompliantProducts int                `json:"compliantProducts"`
	ComplianceRate    float64            `json:"complianceRate"`
	AverageRiskScore  float64            `json:"averageRiskScore"`
	StagePerformance  []StagePerformance `json:"stagePerformance"`
	CommonIssues      []IssueFrequency   `json:"commonIssues"`
	TrendAnalysis     []TrendData        `json:"trendAnalysis"`
}
