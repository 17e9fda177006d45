package domain

import (
	"context"
	"time"
)

// Repository defines the interface for data persistence.
type Repository interface {
	// User operations
	SaveUser(ctx context.Context, user *User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUser(ctx context.Context, userID string) (*User, error)

	// Vendor operations
	SaveVendor(ctx context.Context, vendor *Vendor) error
	GetVendor(ctx context.Context, vendorID string) (*Vendor, error)
	ListVendors(ctx context.Context) ([]*Vendor, error)
	DeleteVendor(ctx context.Context, vendorID string) error

	// Screening rule operations
	SaveScreeningRule(ctx context.Context, rule *ScreeningRule) error
	GetScreeningRule(ctx context.Context, ruleID string) (*ScreeningRule, error)
	ListScreeningRules(ctx context.Context) ([]*ScreeningRule, error)
	DeleteScreeningRule(ctx context.Context, ruleID string) error

	// Screening alert operations
	SaveAlert(ctx context.Context, alert *ScreeningAlert) error
	ListAlerts(ctx context.Context, limit int) ([]*ScreeningAlert, error)

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// RepositoryConfig holds configuration for repository initialization.
type RepositoryConfig struct {
	// Driver is the database driver: "sqlite" or "postgres"
	Driver string

	// SQLite specific
	SQLitePath string

	// PostgreSQL specific
	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}
