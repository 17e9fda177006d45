// Package ledger provides a mock blockchain adapter for certification
// records.
//
// Nothing here touches a network. Hashes are derived deterministically
// from the record payload and "verification" is prefix matching on the
// certification ID, so the adapter behaves like an immutable ledger
// without any external dependency. A production deployment would swap
// this for a real chain client behind the same methods.
package ledger

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"strings"
	"sync/atomic"
	"time"

	"github.com/halaleco/amanah/internal/domain"
)

// Verified certification IDs carry one of these prefixes.
var verifiedPrefixes = []string{"JAKIM", "HALAL"}

// Ledger is a mock certification ledger.
type Ledger struct {
	blockNumber atomic.Int64
}

// New creates a mock ledger starting at a plausible block height.
func New() *Ledger {
	l := &Ledger{}
	l.blockNumber.Store(19_000_000)
	return l
}

// CreateRecord writes a certification record and returns its transaction
// hash. The hash is the hex encoding of the JSON payload, truncated to
// 64 characters and prefixed with "0x". Always succeeds.
func (l *Ledger) CreateRecord(ctx context.Context, rec *domain.LedgerRecord) (string, error) {
	if rec.Timestamp == 0 {
		rec.Timestamp = time.Now().UnixMilli()
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}
	l.blockNumber.Add(1)
	return hashPayload(payload), nil
}

// VerifyCertification simulates an on-chain certification lookup.
// A certification is valid iff its ID starts with a verified prefix,
// matched case-sensitively. The verification hash is derived from the
// ID so repeated lookups are stable.
func (l *Ledger) VerifyCertification(ctx context.Context, certificationID string) (*domain.LedgerVerification, error) {
	valid := false
	for _, p := range verifiedPrefixes {
		if strings.HasPrefix(certificationID, p) {
			valid = true
			break
		}
	}

	now := time.Now()
	authority := "Unknown"
	status := "Invalid"
	if valid {
		authority = "JAKIM Malaysia"
		status = "Active"
	}

	return &domain.LedgerVerification{
		IsValid: valid,
		BlockchainRecord: &domain.BlockchainRecord{
			BlockNumber:      l.blockNumber.Load(),
			Timestamp:        now.UnixMilli(),
			VerificationHash: hashPayload([]byte(certificationID)),
		},
		CertificationData: &domain.CertificationData{
			ID:         certificationID,
			Authority:  authority,
			Status:     status,
			ExpiryDate: now.AddDate(1, 0, 0).Format(time.RFC3339),
		},
	}, nil
}

func hashPayload(payload []byte) string {
	h := hex.EncodeToString(payload)
	if len(h) > 64 {
		h = h[:64]
	}
	return "0x" + h
}
