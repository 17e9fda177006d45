package supplychain

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/halaleco/amanah/internal/domain"
	"github.com/halaleco/amanah/internal/ledger"
)

func compliantDocs(types ...domain.DocumentType) []domain.Document {
	docs := make([]domain.Document, 0, len(types))
	for _, docType := range types {
		docs = append(docs, domain.Document{
			Type:     docType,
			URL:      "https://example.com/doc.pdf",
			Verified: true,
		})
	}
	return docs
}

func TestCreateRecord(t *testing.T) {
	tracker := NewTracker(ledger.New(), nil)
	ctx := context.Background()

	record, err := tracker.CreateRecord(ctx, "prod-001", "Halal Beef Jerky", "BATCH-042")
	if err != nil {
		t.Fatalf("CreateRecord failed: %v", err)
	}

	if record.CurrentStage != "sourcing" {
		t.Errorf("expected initial stage sourcing, got %s", record.CurrentStage)
	}
	if !record.OverallCompliance {
		t.Error("expected new record to be compliant")
	}
	if record.QRCode != "HALAL-SC-prod-001-BATCH-042" {
		t.Errorf("unexpected QR code: %s", record.QRCode)
	}
	if len(record.BlockchainHash) < 3 || record.BlockchainHash[:2] != "0x" {
		t.Errorf("expected 0x-prefixed hash, got %q", record.BlockchainHash)
	}

	t.Run("MissingProductID", func(t *testing.T) {
		if _, err := tracker.CreateRecord(ctx, "", "X", "B"); err == nil {
			t.Error("expected error for missing product id")
		}
	})
}

func TestValidateStage(t *testing.T) {
	tests := []struct {
		name  string
		stage domain.SupplyChainStage
		want  domain.StageStatus
	}{
		{
			name: "compliant sourcing",
			stage: domain.SupplyChainStage{
				Name:            "Raw Material Sourcing",
				Documents:       compliantDocs(domain.DocCertificate, domain.DocInvoice),
				HalalCompliance: domain.HalalComplianceCheck{IsCompliant: true},
			},
			want: domain.StageCompliant,
		},
		{
			name: "missing document",
			stage: domain.SupplyChainStage{
				Name:            "Raw Material Sourcing",
				Documents:       compliantDocs(domain.DocCertificate),
				HalalCompliance: domain.HalalComplianceCheck{IsCompliant: true},
			},
			want: domain.StageNonCompliant,
		},
		{
			name: "unverified document",
			stage: domain.SupplyChainStage{
				Name: "Retail & Sale",
				Documents: []domain.Document{
					{Type: domain.DocPhoto, Verified: false},
				},
				HalalCompliance: domain.HalalComplianceCheck{IsCompliant: true},
			},
			want: domain.StageNonCompliant,
		},
		{
			name: "failed inspection",
			stage: domain.SupplyChainStage{
				Name:            "Packaging & Labeling",
				Documents:       compliantDocs(domain.DocInspectionReport, domain.DocPhoto),
				HalalCompliance: domain.HalalComplianceCheck{IsCompliant: false},
			},
			want: domain.StageNonCompliant,
		},
		{
			name: "high contamination risk",
			stage: domain.SupplyChainStage{
				Name:            "Distribution & Storage",
				Documents:       compliantDocs(domain.DocInvoice, domain.DocPhoto),
				HalalCompliance: domain.HalalComplianceCheck{IsCompliant: true},
				EnvironmentalData: &domain.EnvironmentalData{
					Temperature:       20,
					ContaminationRisk: domain.ContaminationHigh,
				},
			},
			want: domain.StageFlagged,
		},
		{
			name: "temperature out of range",
			stage: domain.SupplyChainStage{
				Name:            "Distribution & Storage",
				Documents:       compliantDocs(domain.DocInvoice, domain.DocPhoto),
				HalalCompliance: domain.HalalComplianceCheck{IsCompliant: true},
				EnvironmentalData: &domain.EnvironmentalData{
					Temperature:       45,
					ContaminationRisk: domain.ContaminationLow,
				},
			},
			want: domain.StageFlagged,
		},
		{
			name: "unknown stage",
			stage: domain.SupplyChainStage{
				Name: "Teleportation",
			},
			want: domain.StagePending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := validateStage(&tt.stage); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestAddStage(t *testing.T) {
	tracker := NewTracker(ledger.New(), nil)
	ctx := context.Background()

	record, err := tracker.CreateRecord(ctx, "prod-002", "Chicken Satay", "BATCH-007")
	if err != nil {
		t.Fatalf("CreateRecord failed: %v", err)
	}

	t.Run("CompliantStage", func(t *testing.T) {
		stage := &domain.SupplyChainStage{
			Name:            "Raw Material Sourcing",
			Location:        "Shah Alam, Malaysia",
			Certifier:       "JAKIM Malaysia",
			Documents:       compliantDocs(domain.DocCertificate, domain.DocInvoice),
			HalalCompliance: domain.HalalComplianceCheck{IsCompliant: true},
		}

		record, err = tracker.AddStage(ctx, record, stage)
		if err != nil {
			t.Fatalf("AddStage failed: %v", err)
		}

		if len(record.Stages) != 1 {
			t.Fatalf("expected 1 stage, got %d", len(record.Stages))
		}
		if record.Stages[0].Status != domain.StageCompliant {
			t.Errorf("expected compliant stage, got %s", record.Stages[0].Status)
		}
		if !record.OverallCompliance {
			t.Error("expected record to remain compliant")
		}
		if record.CurrentStage != "Raw Material Sourcing" {
			t.Errorf("expected current stage updated, got %s", record.CurrentStage)
		}
	})

	t.Run("NonCompliantStageBreaksCompliance", func(t *testing.T) {
		stage := &domain.SupplyChainStage{
			Name:            "Processing & Manufacturing",
			HalalCompliance: domain.HalalComplianceCheck{IsCompliant: false},
		}

		record, err = tracker.AddStage(ctx, record, stage)
		if err != nil {
			t.Fatalf("AddStage failed: %v", err)
		}

		if record.OverallCompliance {
			t.Error("expected overall compliance to break")
		}
		if record.RiskScore <= 0 {
			t.Errorf("expected positive risk score, got %g", record.RiskScore)
		}
	})

	t.Run("TemperatureAlert", func(t *testing.T) {
		before := len(record.Alerts)
		stage := &domain.SupplyChainStage{
			Name:            "Distribution & Storage",
			Documents:       compliantDocs(domain.DocInvoice, domain.DocPhoto),
			HalalCompliance: domain.HalalComplianceCheck{IsCompliant: true},
			EnvironmentalData: &domain.EnvironmentalData{
				Temperature:       38,
				ContaminationRisk: domain.ContaminationLow,
			},
		}

		record, err = tracker.AddStage(ctx, record, stage)
		if err != nil {
			t.Fatalf("AddStage failed: %v", err)
		}

		var found bool
		for _, alert := range record.Alerts[before:] {
			if alert.Type == domain.AlertTemperature && alert.Severity == domain.SeverityHigh {
				found = true
			}
		}
		if !found {
			t.Error("expected high severity temperature alert")
		}
	})

	t.Run("InspectionDueAlert", func(t *testing.T) {
		before := len(record.Alerts)
		stage := &domain.SupplyChainStage{
			Name:      "Retail & Sale",
			Documents: compliantDocs(domain.DocPhoto),
			HalalCompliance: domain.HalalComplianceCheck{
				IsCompliant:       true,
				NextInspectionDue: time.Now().Add(12 * time.Hour).UnixMilli(),
			},
		}

		record, err = tracker.AddStage(ctx, record, stage)
		if err != nil {
			t.Fatalf("AddStage failed: %v", err)
		}

		var found bool
		for _, alert := range record.Alerts[before:] {
			if alert.Type == domain.AlertCertification && alert.Severity == domain.SeverityCritical {
				found = true
			}
		}
		if !found {
			t.Error("expected critical certification alert for inspection due within a day")
		}
	})

	t.Run("DelayAlert", func(t *testing.T) {
		before := len(record.Alerts)
		stage := &domain.SupplyChainStage{
			Name:            "Packaging & Labeling",
			Timestamp:       time.Now().Add(-72 * time.Hour).UnixMilli(),
			Documents:       compliantDocs(domain.DocInspectionReport, domain.DocPhoto),
			HalalCompliance: domain.HalalComplianceCheck{IsCompliant: true},
		}

		record, err = tracker.AddStage(ctx, record, stage)
		if err != nil {
			t.Fatalf("AddStage failed: %v", err)
		}

		var found bool
		for _, alert := range record.Alerts[before:] {
			if alert.Type == domain.AlertDelay {
				found = true
			}
		}
		if !found {
			t.Error("expected delay alert for stage older than its max duration")
		}
	})
}

func TestRiskScore(t *testing.T) {
	t.Run("EmptyStages", func(t *testing.T) {
		if got := riskScore(nil); got != 0 {
			t.Errorf("expected 0 risk for no stages, got %g", got)
		}
	})

	t.Run("ClampedAtTen", func(t *testing.T) {
		stage := domain.SupplyChainStage{
			Status: domain.StageNonCompliant,
			EnvironmentalData: &domain.EnvironmentalData{
				ContaminationRisk: domain.ContaminationHigh,
			},
			HalalCompliance: domain.HalalComplianceCheck{
				Issues: []string{"a", "b", "c", "d", "e", "f", "g", "h"},
			},
		}
		// 4 + 3 + 8*0.5 = 11, clamped to 10
		if got := riskScore([]domain.SupplyChainStage{stage}); got != 10 {
			t.Errorf("expected clamp at 10, got %g", got)
		}
	})

	t.Run("Averaged", func(t *testing.T) {
		stages := []domain.SupplyChainStage{
			{Status: domain.StageCompliant},
			{Status: domain.StageNonCompliant},
		}
		if got := riskScore(stages); got != 2 {
			t.Errorf("expected average risk 2, got %g", got)
		}
	})
}

func TestDetectContamination(t *testing.T) {
	tracker := NewTracker(ledger.New(), nil)
	ctx := context.Background()

	t.Run("SingleAlert", func(t *testing.T) {
		alerts, err := tracker.DetectContamination(ctx, "prod-003", &ContaminationReport{
			Type:           "cross_contact",
			Severity:       domain.SeverityMedium,
			AffectedStages: []string{"processing"},
			Description:    "shared equipment with non-halal line",
		})
		if err != nil {
			t.Fatalf("DetectContamination failed: %v", err)
		}
		if len(alerts) != 1 {
			t.Fatalf("expected 1 alert, got %d", len(alerts))
		}
		if alerts[0].Type != domain.AlertContamination || alerts[0].Stage != "processing" {
			t.Errorf("unexpected alert: %+v", alerts[0])
		}
	})

	t.Run("CriticalFansOut", func(t *testing.T) {
		alerts, err := tracker.DetectContamination(ctx, "prod-003", &ContaminationReport{
			Type:           "chemical",
			Severity:       domain.SeverityCritical,
			AffectedStages: []string{"processing", "packaging", "distribution"},
			Description:    "cleaning agent residue",
		})
		if err != nil {
			t.Fatalf("DetectContamination failed: %v", err)
		}
		// 1 primary + 1 per affected stage
		if len(alerts) != 4 {
			t.Fatalf("expected 4 alerts, got %d", len(alerts))
		}
		for _, alert := range alerts[1:] {
			if alert.Severity != domain.SeverityHigh {
				t.Errorf("expected fan-out alerts to be high severity, got %s", alert.Severity)
			}
		}
	})

	t.Run("NoAffectedStages", func(t *testing.T) {
		_, err := tracker.DetectContamination(ctx, "prod-003", &ContaminationReport{
			Severity: domain.SeverityLow,
		})
		if err == nil {
			t.Error("expected error for report without affected stages")
		}
	})
}

func TestFakeStore(t *testing.T) {
	store := NewFakeStore()

	t.Run("Deterministic", func(t *testing.T) {
		a := store.Fabricate("prod-777")
		b := store.Fabricate("prod-777")
		if !reflect.DeepEqual(a, b) {
			t.Error("expected identical records for the same identifier")
		}
	})

	t.Run("DistinctIdentifiers", func(t *testing.T) {
		a := store.Fabricate("prod-777")
		b := store.Fabricate("prod-888")
		if a.BlockchainHash == b.BlockchainHash {
			t.Error("expected distinct hashes for distinct identifiers")
		}
	})

	t.Run("FiveStages", func(t *testing.T) {
		record := store.Fabricate("prod-777")
		if len(record.Stages) != 5 {
			t.Fatalf("expected 5 stages, got %d", len(record.Stages))
		}
		if record.Stages[0].Name != "Raw Material Sourcing" {
			t.Errorf("unexpected first stage: %s", record.Stages[0].Name)
		}
		if record.CurrentStage != "Retail & Sale" {
			t.Errorf("unexpected current stage: %s", record.CurrentStage)
		}
		if record.RiskScore < 0 || record.RiskScore > 10 {
			t.Errorf("risk score out of range: %g", record.RiskScore)
		}
	})

	t.Run("LookupByAnyIdentifier", func(t *testing.T) {
		byProduct := store.Lookup(&domain.TrackingQuery{ProductID: "prod-777"})
		byQR := store.Lookup(&domain.TrackingQuery{QRCode: "prod-777"})
		if byProduct.ProductID != byQR.ProductID {
			t.Error("expected same seed to yield same record regardless of query field")
		}
	})
}

func TestGenerateAnalytics(t *testing.T) {
	tracker := NewTracker(ledger.New(), nil)

	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	end := time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC).UnixMilli()

	analytics := tracker.GenerateAnalytics(start, end)

	if analytics.TotalProducts != 1250 || analytics.CompliantProducts != 1187 {
		t.Errorf("unexpected product counts: %d/%d", analytics.CompliantProducts, analytics.TotalProducts)
	}
	if len(analytics.StagePerformance) != 5 {
		t.Errorf("expected 5 stage performance entries, got %d", len(analytics.StagePerformance))
	}
	if len(analytics.TrendAnalysis) != 10 {
		t.Errorf("expected 10 trend points, got %d", len(analytics.TrendAnalysis))
	}

	t.Run("TrendDeterministic", func(t *testing.T) {
		again := tracker.GenerateAnalytics(start, end)
		if !reflect.DeepEqual(analytics.TrendAnalysis, again.TrendAnalysis) {
			t.Error("expected stable trend series")
		}
	})

	t.Run("TrendBounds", func(t *testing.T) {
		for _, point := range analytics.TrendAnalysis {
			if point.ComplianceRate < 90 || point.ComplianceRate >= 100 {
				t.Errorf("compliance rate out of range: %g", point.ComplianceRate)
			}
			if point.RiskScore < 1 || point.RiskScore >= 4 {
				t.Errorf("risk score out of range: %g", point.RiskScore)
			}
		}
	})

	t.Run("CappedAtThirtyDays", func(t *testing.T) {
		longEnd := start + 90*millisPerDay
		long := tracker.GenerateAnalytics(start, longEnd)
		if len(long.TrendAnalysis) != 30 {
			t.Errorf("expected cap at 30 points, got %d", len(long.TrendAnalysis))
		}
	})
}
