// Package repository provides data persistence implementations.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/halaleco/amanah/internal/domain"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidInput = errors.New("invalid input")
)

// SQLRepository implements domain.Repository using database/sql.
// Works with both SQLite and PostgreSQL drivers.
type SQLRepository struct {
	db     *sql.DB
	driver string
}

// New creates a new repository based on configuration.
func New(cfg domain.RepositoryConfig) (domain.Repository, error) {
	var db *sql.DB
	var err error

	switch cfg.Driver {
	case "sqlite":
		db, err = openSQLite(cfg)
	case "postgres":
		db, err = openPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	repo := &SQLRepository{
		db:     db,
		driver: cfg.Driver,
	}

	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

func (r *SQLRepository) migrate() error {
	for _, schema := range AllSchemas() {
		if _, err := r.db.Exec(schema); err != nil {
			return err
		}
	}
	return nil
}

// SaveUser stores a user. The email column is unique; inserting a
// duplicate email fails.
func (r *SQLRepository) SaveUser(ctx context.Context, user *domain.User) error {
	if user.ID == "" || user.Email == "" {
		return fmt.Errorf("%w: user id and email are required", ErrInvalidInput)
	}

	query := `
		INSERT INTO users (id, email, name, password_hash, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, r.rebind(query),
		user.ID, user.Email, user.Name, user.PasswordHash, string(user.Role), user.CreatedAt,
	)
	return err
}

// GetUserByEmail retrieves a user by email.
func (r *SQLRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, email, name, password_hash, role, created_at
		FROM users WHERE email = ?
	`
	return r.scanUser(r.db.QueryRowContext(ctx, r.rebind(query), email))
}

// GetUser retrieves a user by ID.
func (r *SQLRepository) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	query := `
		SELECT id, email, name, password_hash, role, created_at
		FROM users WHERE id = ?
	`
	return r.scanUser(r.db.QueryRowContext(ctx, r.rebind(query), userID))
}

func (r *SQLRepository) scanUser(row *sql.Row) (*domain.User, error) {
	var user domain.User
	var role string
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &role, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	user.Role = domain.Role(role)
	return &user, nil
}

// SaveVendor inserts or updates a vendor.
func (r *SQLRepository) SaveVendor(ctx context.Context, vendor *domain.Vendor) error {
	if vendor.ID == "" {
		return fmt.Errorf("%w: vendor id is required", ErrInvalidInput)
	}

	query := `
		INSERT INTO vendors (
			id, name, email, phone, country, certification_id,
			status, rating, trust_score, verified_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			country = EXCLUDED.country,
			certification_id = EXCLUDED.certification_id,
			status = EXCLUDED.status,
			rating = EXCLUDED.rating,
			trust_score = EXCLUDED.trust_score,
			verified_at = EXCLUDED.verified_at,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, r.rebind(query),
		vendor.ID, vendor.Name, vendor.Email, vendor.Phone, vendor.Country,
		vendor.CertificationID, string(vendor.Status), vendor.Rating,
		vendor.TrustScore, vendor.VerifiedAt, vendor.CreatedAt, vendor.UpdatedAt,
	)
	return err
}

// GetVendor retrieves a vendor by ID.
func (r *SQLRepository) GetVendor(ctx context.Context, vendorID string) (*domain.Vendor, error) {
	query := `
		SELECT id, name, email, phone, country, certification_id,
			   status, rating, trust_score, verified_at, created_at, updated_at
		FROM vendors WHERE id = ?
	`

	var v domain.Vendor
	var status string
	var phone, country, certID sql.NullString
	err := r.db.QueryRowContext(ctx, r.rebind(query), vendorID).Scan(
		&v.ID, &v.Name, &v.Email, &phone, &country, &certID,
		&status, &v.Rating, &v.TrustScore, &v.VerifiedAt, &v.CreatedAt, &v.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	v.Phone = phone.String
	v.Country = country.String
	v.CertificationID = certID.String
	v.Status = domain.VendorStatus(status)
	return &v, nil
}

// ListVendors returns all vendors ordered by creation time.
func (r *SQLRepository) ListVendors(ctx context.Context) ([]*domain.Vendor, error) {
	query := `
		SELECT id, name, email, phone, country, certification_id,
			   status, rating, trust_score, verified_at, created_at, updated_at
		FROM vendors ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	vendors := make([]*domain.Vendor, 0)
	for rows.Next() {
		var v domain.Vendor
		var status string
		var phone, country, certID sql.NullString
		if err := rows.Scan(
			&v.ID, &v.Name, &v.Email, &phone, &country, &certID,
			&status, &v.Rating, &v.TrustScore, &v.VerifiedAt, &v.CreatedAt, &v.UpdatedAt,
		); err != nil {
			return nil, err
		}
		v.Phone = phone.String
		v.Country = country.String
		v.CertificationID = certID.String
		v.Status = domain.VendorStatus(status)
		vendors = append(vendors, &v)
	}
	return vendors, rows.Err()
}

// DeleteVendor removes a vendor.
func (r *SQLRepository) DeleteVendor(ctx context.Context, vendorID string) error {
	result, err := r.db.ExecContext(ctx, r.rebind(`DELETE FROM vendors WHERE id = ?`), vendorID)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveScreeningRule inserts or updates a screening rule.
func (r *SQLRepository) SaveScreeningRule(ctx context.Context, rule *domain.ScreeningRule) error {
	if rule.ID == "" {
		return fmt.Errorf("%w: rule id is required", ErrInvalidInput)
	}
	if rule.Version == "" {
		rule.Version = "1.0.0"
	}

	bands, err := json.Marshal(rule.Bands)
	if err != nil {
		return fmt.Errorf("marshal bands: %w", err)
	}

	query := `
		INSERT INTO screening_rules (
			id, name, description, version, expression, bands, enabled,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT (id, version) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			expression = EXCLUDED.expression,
			bands = EXCLUDED.bands,
			enabled = EXCLUDED.enabled,
			updated_at = CURRENT_TIMESTAMP
	`
	_, err = r.db.ExecContext(ctx, r.rebind(query),
		rule.ID, rule.Name, rule.Description, rule.Version,
		rule.Expression, string(bands), boolToInt(rule.Enabled),
	)
	return err
}

// GetScreeningRule retrieves the latest version of a rule by ID.
func (r *SQLRepository) GetScreeningRule(ctx context.Context, ruleID string) (*domain.ScreeningRule, error) {
	query := `
		SELECT id, name, description, version, expression, bands, enabled
		FROM screening_rules WHERE id = ?
		ORDER BY version DESC LIMIT 1
	`

	var rule domain.ScreeningRule
	var bands string
	var enabled int
	err := r.db.QueryRowContext(ctx, r.rebind(query), ruleID).Scan(
		&rule.ID, &rule.Name, &rule.Description, &rule.Version,
		&rule.Expression, &bands, &enabled,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(bands), &rule.Bands); err != nil {
		return nil, fmt.Errorf("unmarshal bands: %w", err)
	}
	rule.Enabled = enabled != 0
	return &rule, nil
}

// ListScreeningRules returns all screening rules.
func (r *SQLRepository) ListScreeningRules(ctx context.Context) ([]*domain.ScreeningRule, error) {
	query := `
		SELECT id, name, description, version, expression, bands, enabled
		FROM screening_rules ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ruleSet := make([]*domain.ScreeningRule, 0)
	for rows.Next() {
		var rule domain.ScreeningRule
		var bands string
		var enabled int
		if err := rows.Scan(
			&rule.ID, &rule.Name, &rule.Description, &rule.Version,
			&rule.Expression, &bands, &enabled,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(bands), &rule.Bands); err != nil {
			return nil, fmt.Errorf("unmarshal bands: %w", err)
		}
		rule.Enabled = enabled != 0
		ruleSet = append(ruleSet, &rule)
	}
	return ruleSet, rows.Err()
}

// DeleteScreeningRule removes all versions of a rule.
func (r *SQLRepository) DeleteScreeningRule(ctx context.Context, ruleID string) error {
	result, err := r.db.ExecContext(ctx, r.rebind(`DELETE FROM screening_rules WHERE id = ?`), ruleID)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveAlert stores a screening alert.
func (r *SQLRepository) SaveAlert(ctx context.Context, alert *domain.ScreeningAlert) error {
	if alert.ID == "" {
		return fmt.Errorf("%w: alert id is required", ErrInvalidInput)
	}

	query := `
		INSERT INTO screening_alerts (
			id, product_id, product_name, seller_id, risk_score,
			risk_level, action, flag_count, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, r.rebind(query),
		alert.ID, alert.ProductID, alert.ProductName, alert.SellerID,
		alert.RiskScore, string(alert.RiskLevel), string(alert.Action),
		alert.FlagCount, alert.CreatedAt,
	)
	return err
}

// ListAlerts returns the most recent screening alerts.
func (r *SQLRepository) ListAlerts(ctx context.Context, limit int) ([]*domain.ScreeningAlert, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, product_id, product_name, seller_id, risk_score,
			   risk_level, action, flag_count, created_at
		FROM screening_alerts ORDER BY created_at DESC LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	alerts := make([]*domain.ScreeningAlert, 0)
	for rows.Next() {
		var a domain.ScreeningAlert
		var level, action string
		var sellerID sql.NullString
		if err := rows.Scan(
			&a.ID, &a.ProductID, &a.ProductName, &sellerID, &a.RiskScore,
			&level, &action, &a.FlagCount, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		a.SellerID = sellerID.String
		a.RiskLevel = domain.RiskLevel(level)
		a.Action = domain.ScreeningAction(action)
		alerts = append(alerts, &a)
	}
	return alerts, rows.Err()
}

// Ping checks database connectivity.
func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection.
func (r *SQLRepository) Close() error {
	return r.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// rebind converts ? placeholders to $1, $2... for postgres.
func (r *SQLRepository) rebind(query string) string {
	if r.driver != "postgres" {
		return query
	}

	var result []byte
	n := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			result = append(result, '$')
			result = append(result, fmt.Sprintf("%d", n)...)
			n++
		} else {
			result = append(result, query[i])
		}
	}
	return string(result)
}
