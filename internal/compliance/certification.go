package compliance

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/halaleco/amanah/internal/domain"
)

// certCacheTTL bounds how long a verification result is reused.
const certCacheTTL = 10 * time.Minute

// CertificationLedger is the ledger surface the verifier depends on.
type CertificationLedger interface {
	VerifyCertification(ctx context.Context, certificationID string) (*domain.LedgerVerification, error)
	CreateRecord(ctx context.Context, rec *domain.LedgerRecord) (string, error)
}

// Issuing authorities recognized by certification ID prefix. Ordered so
// that longer prefixes are tested before their proper prefixes (MUIS
// before MUI).
var authorityPrefixes = []struct {
	Prefix    string
	Authority string
}{
	{"JAKIM", "JAKIM Malaysia"},
	{"MUIS", "MUIS Singapore"},
	{"HFA", "HFA UK"},
	{"IFANCA", "IFANCA USA"},
	{"HFCE", "HFCE Canada"},
	{"AHCFI", "AHCFI Australia"},
	{"ESMA", "ESMA UAE"},
	{"MUI", "MUI Indonesia"},
	{"SANHA", "SANHA South Africa"},
	{"HMC", "HMC UK"},
	{"ISWA", "ISWA USA"},
}

// Verifier checks certification IDs against the ledger and the known
// authority prefix table. Results are cached per certification ID.
type Verifier struct {
	ledger CertificationLedger
	cache  domain.Cache
}

// NewVerifier creates a certification verifier. The cache is optional.
func NewVerifier(l CertificationLedger, cache domain.Cache) *Verifier {
	return &Verifier{ledger: l, cache: cache}
}

// Verify resolves a certification ID to a CertificationRecord. The
// ledger is consulted first; on a ledger miss, the ID prefix is matched
// against the authority table. Missing IDs are not certified.
func (v *Verifier) Verify(ctx context.Context, certificationID string) (*domain.CertificationRecord, error) {
	if certificationID == "" {
		return &domain.CertificationRecord{
			IsValid:            false,
			Authority:          "Not Certified",
			VerificationMethod: domain.VerifyManual,
			TrustScore:         0,
		}, nil
	}

	if cached := v.fromCache(ctx, certificationID); cached != nil {
		return cached, nil
	}

	rec, err := v.verify(ctx, certificationID)
	if err != nil {
		return nil, err
	}
	v.toCache(ctx, certificationID, rec)
	return rec, nil
}

func (v *Verifier) verify(ctx context.Context, certificationID string) (*domain.CertificationRecord, error) {
	lv, err := v.ledger.VerifyCertification(ctx, certificationID)
	if err == nil && lv.IsValid {
		rec := &domain.CertificationRecord{
			IsValid:            true,
			Authority:          "Unknown Authority",
			VerificationMethod: domain.VerifyByLedger,
			TrustScore:         95,
		}
		if lv.CertificationData != nil {
			if lv.CertificationData.Authority != "" {
				rec.Authority = lv.CertificationData.Authority
			}
			rec.ExpiryDate = lv.CertificationData.ExpiryDate
		}
		return rec, nil
	}

	// Ledger miss or error, fall back to prefix matching.
	authority := identifyAuthority(certificationID)
	valid := authority != "Unknown Authority"
	trust := 25
	if valid {
		trust = 75
	}
	return &domain.CertificationRecord{
		IsValid:            valid,
		Authority:          authority,
		VerificationMethod: domain.VerifyByPattern,
		TrustScore:         trust,
	}, nil
}

func (v *Verifier) fromCache(ctx context.Context, certificationID string) *domain.CertificationRecord {
	if v.cache == nil {
		return nil
	}
	data, err := v.cache.Get(ctx, "cert:"+certificationID)
	if err != nil || data == nil {
		return nil
	}
	var rec domain.CertificationRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil
	}
	return &rec
}

func (v *Verifier) toCache(ctx context.Context, certificationID string, rec *domain.CertificationRecord) {
	if v.cache == nil {
		return
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return
	}
	// Cache failures are not fatal to verification.
	_ = v.cache.Set(ctx, "cert:"+certificationID, data, certCacheTTL)
}

func identifyAuthority(certificationID string) string {
	id := strings.ToUpper(certificationID)
	for _, ap := range authorityPrefixes {
		if strings.HasPrefix(id, ap.Prefix) {
			return ap.Authority
		}
	}
	return "Unknown Authority"
}
