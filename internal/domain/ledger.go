package domain

// LedgerRecord is a certification entry written to the ledger.
type LedgerRecord struct {
	ProductID       string `json:"productId"`
	CertificationID string `json:"certificationId"`
	Authority       string `json:"authority"`
	ExpiryDate      string `json:"expiryDate"` // RFC 3339
	Timestamp       int64  `json:"timestamp"`  // unix millis
}

// LedgerVerification is the outcome of a ledger certification lookup.
type LedgerVerification struct {
	IsValid           bool               `json:"isValid"`
	BlockchainRecord  *BlockchainRecord  `json:"blockchainRecord,omitempty"`
	CertificationData *CertificationData `json:"certificationData,omitempty"`
}

// BlockchainRecord is the fabricated on-chain reference for a lookup.
type BlockchainRecord struct {
	BlockNumber      int64  `json:"blockNumber"`
	Timestamp        int64  `json:"timestamp"` // unix millis
	VerificationHash string `json:"verificationHash"`
}

// CertificationData is the canned certification detail echoed by the ledger.
type CertificationData struct {
	ID         string `json:"id"`
	Authority  string `json:"authority"`
	Status     string `json:"status"`
	ExpiryDate string `json:"expiryDate"` // RFC 3339
}
