package supplychain

import (
	"fmt"
	"hash/fnv"

	"github.com/halaleco/amanah/internal/domain"
)

// FakeStore fabricates complete supply chain records on demand. Records
// are derived deterministically from the queried identifier, so repeated
// lookups of the same identifier return the same record. Nothing is
// persisted.
type FakeStore struct{}

// NewFakeStore creates a fabricating record store.
func NewFakeStore() *FakeStore {
	return &FakeStore{}
}

// baseEpoch anchors fabricated timestamps (2025-01-01T00:00:00Z).
const baseEpoch = int64(1735689600000)

var fakeLocations = []string{
	"Shah Alam, Malaysia",
	"Surabaya, Indonesia",
	"Istanbul, Turkey",
	"Dubai, UAE",
	"Karachi, Pakistan",
	"Casablanca, Morocco",
}

var fakeCertifiers = []string{
	"JAKIM Malaysia",
	"MUI Indonesia",
	"ESMA Halal",
	"GIMDES Turkey",
	"SANHA South Africa",
}

var fakeInspectors = []string{
	"A. Rahman",
	"F. Yusof",
	"M. Hassan",
	"S. Karim",
}

// Lookup resolves a tracking query to a fabricated record. Whichever
// identifier is present seeds the fabrication.
func (s *FakeStore) Lookup(query *domain.TrackingQuery) *domain.SupplyChainRecord {
	id := query.ProductID
	if id == "" {
		id = query.BatchNumber
	}
	if id == "" {
		id = query.QRCode
	}
	if id == "" {
		id = query.BlockchainHash
	}
	return s.Fabricate(id)
}

// Fabricate builds a full five-stage record seeded by the identifier.
func (s *FakeStore) Fabricate(id string) *domain.SupplyChainRecord {
	h := hashID(id)

	batchNumber := fmt.Sprintf("BATCH-%03d", h%900+100)
	createdAt := baseEpoch + int64(h%90)*millisPerDay

	stages := make([]domain.SupplyChainStage, 0, len(stageOrder))
	timestamp := createdAt
	for _, key := range stageOrder {
		stage := s.fabricateStage(id, key, timestamp)
		stages = append(stages, stage)
		timestamp += int64(stageTemplates[key].maxDurationDays) * millisPerDay / 2
	}

	record := &domain.SupplyChainRecord{
		ProductID:         id,
		ProductName:       fabricateName(h),
		BatchNumber:       batchNumber,
		Stages:            stages,
		CurrentStage:      stages[len(stages)-1].Name,
		OverallCompliance: overallCompliance(stages),
		RiskScore:         riskScore(stages),
		Alerts:            fabricateAlerts(stages),
		BlockchainHash:    fabricateHash(id),
		QRCode:            generateQRCode(id, batchNumber),
		CreatedAt:         createdAt,
		UpdatedAt:         timestamp,
	}

	return record
}

func (s *FakeStore) fabricateStage(id, key string, timestamp int64) domain.SupplyChainStage {
	sh := hashID(id + "/" + key)
	template := stageTemplates[key]

	docs := make([]domain.Document, 0, len(template.requiredDocuments))
	for i, docType := range template.requiredDocuments {
		docs = append(docs, domain.Document{
			Type:       docType,
			URL:        fmt.Sprintf("https://docs.amanah.example/%s/%s-%d.pdf", id, key, i),
			Hash:       fmt.Sprintf("%016x", hashID(id+"/"+key+"/doc"+string(docType))),
			Verified:   true,
			UploadedBy: fakeInspectors[sh%uint64(len(fakeInspectors))],
			Timestamp:  timestamp,
		})
	}

	var issues []string
	if sh%6 == 0 {
		issues = append(issues, "Temperature deviation during transport")
	}

	env := &domain.EnvironmentalData{
		Temperature:         2 + float64(sh%28),
		Humidity:            40 + float64(sh%35),
		StorageConditions:   "Refrigerated",
		TransportConditions: "Cold chain",
		ContaminationRisk:   domain.ContaminationLow,
	}
	if sh%8 == 0 {
		env.ContaminationRisk = domain.ContaminationHigh
		env.Temperature = 36 + float64(sh%5)
	} else if sh%3 == 0 {
		env.ContaminationRisk = domain.ContaminationMedium
	}

	stage := domain.SupplyChainStage{
		ID:        fmt.Sprintf("%s-%s", id, key),
		Name:      template.name,
		Location:  fakeLocations[sh%uint64(len(fakeLocations))],
		Timestamp: timestamp,
		Certifier: fakeCertifiers[sh%uint64(len(fakeCertifiers))],
		Documents: docs,
		HalalCompliance: domain.HalalComplianceCheck{
			IsCompliant:       true,
			CertificationID:   fmt.Sprintf("HC-%s-%03d", key, sh%900+100),
			Inspector:         fakeInspectors[sh%uint64(len(fakeInspectors))],
			InspectionDate:    timestamp,
			Issues:            issues,
			CorrectionActions: []string{},
		},
		EnvironmentalData: env,
		QualityMetrics: &domain.QualityMetrics{
			Freshness:      int(80 + sh%21),
			Appearance:     int(75 + sh%26),
			Packaging:      int(85 + sh%16),
			OverallQuality: int(80 + sh%20),
		},
	}

	stage.Status = validateStage(&stage)
	return stage
}

// fabricateAlerts emits temperature alerts for stages that exceed 35°C.
func fabricateAlerts(stages []domain.SupplyChainStage) []domain.Alert {
	alerts := []domain.Alert{}
	for _, stage := range stages {
		env := stage.EnvironmentalData
		if env == nil || env.Temperature <= 35 {
			continue
		}
		alerts = append(alerts, domain.Alert{
			ID:        "TEMP-" + stage.ID,
			Type:      domain.AlertTemperature,
			Severity:  domain.SeverityHigh,
			Message:   fmt.Sprintf("High temperature detected: %g°C", env.Temperature),
			Stage:     stage.Name,
			Timestamp: stage.Timestamp,
		})
	}
	return alerts
}

var fakeProductNames = []string{
	"Halal Beef Jerky",
	"Chicken Satay",
	"Dates & Honey Mix",
	"Lamb Kofta",
	"Halal Marshmallows",
	"Organic Ghee",
	"Sambal Paste",
	"Halal Gummy Bears",
}

func fabricateName(h uint64) string {
	return fakeProductNames[h%uint64(len(fakeProductNames))]
}

// fabricateHash derives a 66-character hex hash from the identifier.
func fabricateHash(id string) string {
	out := "0x"
	for i := 0; i < 4; i++ {
		out += fmt.Sprintf("%016x", hashID(fmt.Sprintf("%s#%d", id, i)))
	}
	return out
}

func hashID(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}
