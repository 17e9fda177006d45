package domain

import "time"

// Role controls access to administrative endpoints.
type Role string

const (
	RoleUser    Role = "user"
	RoleAnalyst Role = "analyst"
	RoleAdmin   Role = "admin"
)

// User is a registered account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// VendorStatus is the verification state of a vendor.
type VendorStatus string

const (
	VendorPending   VendorStatus = "pending"
	VendorVerified  VendorStatus = "verified"
	VendorSuspended VendorStatus = "suspended"
)

// Vendor is a seller registered for compliance screening.
type Vendor struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Email           string       `json:"email"`
	Phone           string       `json:"phone,omitempty"`
	Country         string       `json:"country"`
	CertificationID string       `json:"certificationId,omitempty"`
	Status          VendorStatus `json:"status"`
	Rating          float64      `json:"rating"`
	TrustScore      int          `json:"trustScore"`
	VerifiedAt      *time.Time   `json:"verifiedAt,omitempty"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}
