// Package supplychain tracks product journeys from sourcing to retail.
package supplychain

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/halaleco/amanah/internal/domain"
)

// CertificationRecorder writes supply chain records to the ledger.
type CertificationRecorder interface {
	CreateRecord(ctx context.Context, rec *domain.LedgerRecord) (string, error)
}

// stageTemplate defines the expectations for one stage type.
type stageTemplate struct {
	name              string
	requiredDocuments []domain.DocumentType
	complianceChecks  []string
	maxDurationDays   float64
}

var stageTemplates = map[string]stageTemplate{
	"sourcing": {
		name:              "Raw Material Sourcing",
		requiredDocuments: []domain.DocumentType{domain.DocCertificate, domain.DocInvoice},
		complianceChecks:  []string{"halal_certification", "origin_verification"},
		maxDurationDays:   7,
	},
	"processing": {
		name:              "Processing & Manufacturing",
		requiredDocuments: []domain.DocumentType{domain.DocInspectionReport, domain.DocCertificate},
		complianceChecks:  []string{"facility_certification", "process_validation"},
		maxDurationDays:   3,
	},
	"packaging": {
		name:              "Packaging & Labeling",
		requiredDocuments: []domain.DocumentType{domain.DocInspectionReport, domain.DocPhoto},
		complianceChecks:  []string{"label_verification", "packaging_integrity"},
		maxDurationDays:   1,
	},
	"distribution": {
		name:              "Distribution & Storage",
		requiredDocuments: []domain.DocumentType{domain.DocInvoice, domain.DocPhoto},
		complianceChecks:  []string{"storage_conditions", "transport_verification"},
		maxDurationDays:   14,
	},
	"retail": {
		name:              "Retail & Sale",
		requiredDocuments: []domain.DocumentType{domain.DocPhoto},
		complianceChecks:  []string{"display_compliance", "final_verification"},
		maxDurationDays:   30,
	},
}

// stageOrder is the canonical sequence of stage keys.
var stageOrder = []string{"sourcing", "processing", "packaging", "distribution", "retail"}

// Tracker manages supply chain records, stage validation and alerts.
type Tracker struct {
	store  *FakeStore
	ledger CertificationRecorder
	bus    domain.EventBus
}

// NewTracker creates a supply chain tracker. The bus is optional.
func NewTracker(ledger CertificationRecorder, eventBus domain.EventBus) *Tracker {
	return &Tracker{
		store:  NewFakeStore(),
		ledger: ledger,
		bus:    eventBus,
	}
}

// CreateRecord initializes a new supply chain record and anchors it
// on the ledger.
func (t *Tracker) CreateRecord(ctx context.Context, productID, productName, batchNumber string) (*domain.SupplyChainRecord, error) {
	if productID == "" {
		return nil, fmt.Errorf("product id is required")
	}

	now := time.Now().UnixMilli()
	record := &domain.SupplyChainRecord{
		ProductID:         productID,
		ProductName:       productName,
		BatchNumber:       batchNumber,
		Stages:            []domain.SupplyChainStage{},
		CurrentStage:      "sourcing",
		OverallCompliance: true,
		Alerts:            []domain.Alert{},
		QRCode:            generateQRCode(productID, batchNumber),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	hash, err := t.ledger.CreateRecord(ctx, &domain.LedgerRecord{
		ProductID:       productID,
		CertificationID: "SC-" + batchNumber,
		Authority:       "Amanah Supply Chain",
		ExpiryDate:      time.Now().AddDate(1, 0, 0).Format(time.RFC3339),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to anchor supply chain record: %w", err)
	}
	record.BlockchainHash = hash

	return record, nil
}

// Track looks up a supply chain record by any identifier in the query.
// Returns nil when the query carries no parameter.
func (t *Tracker) Track(ctx context.Context, query *domain.TrackingQuery) (*domain.SupplyChainRecord, error) {
	if query == nil || query.IsEmpty() {
		return nil, nil
	}
	return t.store.Lookup(query), nil
}

// AddStage validates and appends a stage to a record, recomputing
// compliance and risk and raising any alerts.
func (t *Tracker) AddStage(ctx context.Context, record *domain.SupplyChainRecord, stage *domain.SupplyChainStage) (*domain.SupplyChainRecord, error) {
	if record == nil {
		return nil, fmt.Errorf("record is required")
	}

	now := time.Now().UnixMilli()
	if stage.ID == "" {
		stage.ID = fmt.Sprintf("%s-%d", record.ProductID, now)
	}
	if stage.Name == "" {
		stage.Name = "Unknown Stage"
	}
	if stage.Location == "" {
		stage.Location = "Unknown Location"
	}
	if stage.Certifier == "" {
		stage.Certifier = "Unknown Certifier"
	}
	if stage.Timestamp == 0 {
		stage.Timestamp = now
	}
	if stage.Documents == nil {
		stage.Documents = []domain.Document{}
	}

	stage.Status = validateStage(stage)

	record.Stages = append(record.Stages, *stage)
	record.CurrentStage = stage.Name
	record.UpdatedAt = now
	record.OverallCompliance = overallCompliance(record.Stages)
	record.RiskScore = riskScore(record.Stages)

	alerts := t.checkForAlerts(stage)
	record.Alerts = append(record.Alerts, alerts...)

	for i := range alerts {
		t.publishAlert(ctx, &alerts[i])
	}

	return record, nil
}

// ContaminationReport describes a detected contamination incident.
type ContaminationReport struct {
	Type           string          `json:"type"`
	Severity       domain.Severity `json:"severity"`
	AffectedStages []string        `json:"affectedStages"`
	Description    string          `json:"description"`
}

// DetectContamination raises alerts for a contamination incident. A
// critical incident fans out a high severity alert per affected stage.
func (t *Tracker) DetectContamination(ctx context.Context, recordID string, report *ContaminationReport) ([]domain.Alert, error) {
	if report == nil || len(report.AffectedStages) == 0 {
		return nil, fmt.Errorf("contamination report requires at least one affected stage")
	}

	now := time.Now().UnixMilli()
	alerts := []domain.Alert{
		{
			ID:        fmt.Sprintf("CONT-%d", now),
			Type:      domain.AlertContamination,
			Severity:  report.Severity,
			Message:   "Contamination detected: " + report.Description,
			Stage:     report.AffectedStages[0],
			Timestamp: now,
		},
	}

	if report.Severity == domain.SeverityCritical {
		for _, stage := range report.AffectedStages {
			alerts = append(alerts, domain.Alert{
				ID:        fmt.Sprintf("CONT-%d-%s", now, stage),
				Type:      domain.AlertContamination,
				Severity:  domain.SeverityHigh,
				Message:   "Potential contamination in " + stage + " stage",
				Stage:     stage,
				Timestamp: now,
			})
		}
	}

	slog.Warn("contamination detected",
		"record_id", recordID,
		"type", report.Type,
		"severity", report.Severity,
		"affected_stages", len(report.AffectedStages),
	)

	for i := range alerts {
		t.publishAlert(ctx, &alerts[i])
	}

	return alerts, nil
}

// validateStage checks documents, halal compliance and environmental
// conditions against the stage template.
func validateStage(stage *domain.SupplyChainStage) domain.StageStatus {
	template, ok := stageTemplates[normalizeStageName(stage.Name)]
	if !ok {
		return domain.StagePending
	}

	for _, docType := range template.requiredDocuments {
		if !hasVerifiedDocument(stage.Documents, docType) {
			return domain.StageNonCompliant
		}
	}

	if !stage.HalalCompliance.IsCompliant {
		return domain.StageNonCompliant
	}

	if env := stage.EnvironmentalData; env != nil {
		if env.ContaminationRisk == domain.ContaminationHigh {
			return domain.StageFlagged
		}
		if env.Temperature < 0 || env.Temperature > 40 {
			return domain.StageFlagged
		}
	}

	return domain.StageCompliant
}

func hasVerifiedDocument(docs []domain.Document, docType domain.DocumentType) bool {
	for _, doc := range docs {
		if doc.Type == docType && doc.Verified {
			return true
		}
	}
	return false
}

// overallCompliance holds when no stage is non-compliant or flagged.
func overallCompliance(stages []domain.SupplyChainStage) bool {
	for _, stage := range stages {
		if stage.Status != domain.StageCompliant && stage.Status != domain.StagePending {
			return false
		}
	}
	return true
}

// riskScore averages per-stage risk, clamped to 10.
func riskScore(stages []domain.SupplyChainStage) float64 {
	if len(stages) == 0 {
		return 0
	}

	var total float64
	for _, stage := range stages {
		var risk float64

		switch stage.Status {
		case domain.StageNonCompliant:
			risk += 4
		case domain.StageFlagged:
			risk += 3
		case domain.StagePending:
			risk += 1
		}

		if env := stage.EnvironmentalData; env != nil {
			switch env.ContaminationRisk {
			case domain.ContaminationHigh:
				risk += 3
			case domain.ContaminationMedium:
				risk += 2
			case domain.ContaminationLow:
				risk += 1
			}
		}

		risk += float64(len(stage.HalalCompliance.Issues)) * 0.5

		total += risk
	}

	return math.Min(10, total/float64(len(stages)))
}

// checkForAlerts inspects a stage for temperature excursions, due
// inspections and processing delays.
func (t *Tracker) checkForAlerts(stage *domain.SupplyChainStage) []domain.Alert {
	var alerts []domain.Alert
	now := time.Now().UnixMilli()

	if env := stage.EnvironmentalData; env != nil && env.Temperature > 35 {
		alerts = append(alerts, domain.Alert{
			ID:        fmt.Sprintf("TEMP-%d", now),
			Type:      domain.AlertTemperature,
			Severity:  domain.SeverityHigh,
			Message:   fmt.Sprintf("High temperature detected: %g°C", env.Temperature),
			Stage:     stage.Name,
			Timestamp: now,
		})
	}

	if due := stage.HalalCompliance.NextInspectionDue; due != 0 {
		daysUntilDue := float64(due-now) / float64(millisPerDay)
		if daysUntilDue <= 7 {
			severity := domain.SeverityMedium
			if daysUntilDue <= 1 {
				severity = domain.SeverityCritical
			}
			alerts = append(alerts, domain.Alert{
				ID:        fmt.Sprintf("CERT-%d", now),
				Type:      domain.AlertCertification,
				Severity:  severity,
				Message:   fmt.Sprintf("Certification inspection due in %d days", int(math.Ceil(daysUntilDue))),
				Stage:     stage.Name,
				Timestamp: now,
			})
		}
	}

	if template, ok := stageTemplates[normalizeStageName(stage.Name)]; ok {
		stageAgeDays := float64(now-stage.Timestamp) / float64(millisPerDay)
		if stageAgeDays > template.maxDurationDays {
			alerts = append(alerts, domain.Alert{
				ID:        fmt.Sprintf("DELAY-%d", now),
				Type:      domain.AlertDelay,
				Severity:  domain.SeverityMedium,
				Message:   fmt.Sprintf("Stage processing time exceeded: %.1f days", stageAgeDays),
				Stage:     stage.Name,
				Timestamp: now,
			})
		}
	}

	return alerts
}

func (t *Tracker) publishAlert(ctx context.Context, alert *domain.Alert) {
	if t.bus == nil {
		return
	}
	payload, err := json.Marshal(alert)
	if err != nil {
		slog.Error("failed to marshal supply chain alert", "alert_id", alert.ID, "error", err)
		return
	}
	if err := t.bus.Publish(ctx, domain.TopicSupplyChainAlert, payload); err != nil {
		slog.Error("failed to publish supply chain alert", "alert_id", alert.ID, "error", err)
	}
}

// normalizeStageName maps a display name to a template key.
// "Raw Material Sourcing" and "sourcing" both resolve.
func normalizeStageName(name string) string {
	key := strings.ToLower(strings.ReplaceAll(name, " ", "_"))
	if _, ok := stageTemplates[key]; ok {
		return key
	}
	for stageKey, template := range stageTemplates {
		if strings.EqualFold(template.name, name) {
			return stageKey
		}
	}
	return key
}

func generateQRCode(productID, batchNumber string) string {
	return "HALAL-SC-" + productID + "-" + batchNumber
}

const millisPerDay = int64(24 * time.Hour / time.Millisecond)
