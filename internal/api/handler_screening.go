package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/halaleco/amanah/internal/domain"
)

// ValidateHalal handles POST /validate-halal, the quick screening path.
func (h *Handler) ValidateHalal(w http.ResponseWriter, r *http.Request) {
	var req domain.ValidationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON request body")
		return
	}
	if req.Product == "" || len(req.Ingredients) == 0 {
		writeError(w, http.StatusBadRequest, "Product and ingredients are required")
		return
	}

	result, err := h.validator.Validate(r.Context(), &req)
	if err != nil {
		slog.Error("halal validation failed", "product", req.Product, "error", err)
		writeError(w, http.StatusInternalServerError, "Validation failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    result,
	})
}

// HalalCompliance handles POST /halal-compliance, the full compliance
// decision path.
func (h *Handler) HalalCompliance(w http.ResponseWriter, r *http.Request) {
	var req domain.ComplianceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON request body")
		return
	}
	if req.Product == "" || len(req.Ingredients) == 0 {
		writeError(w, http.StatusBadRequest, "Product and ingredients are required")
		return
	}

	result, err := h.compliance.ValidateProduct(r.Context(), &req)
	if err != nil {
		slog.Error("compliance check failed", "product", req.Product, "error", err)
		writeError(w, http.StatusInternalServerError, "Compliance analysis failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    result,
	})
}

// HalalComplianceDoc handles GET /halal-compliance.
func (h *Handler) HalalComplianceDoc(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     "Halal compliance analysis endpoint",
		"method":      "POST",
		"description": "Analyzes ingredients, certification, slaughter method and risk factors for a product",
		"requiredFields": []string{
			"product", "ingredients",
		},
		"optionalFields": []string{
			"certificationId", "supplier", "price", "sellerRating",
			"certificationImage", "category", "slaughterMethod", "origin",
		},
	})
}

// FraudDetection handles POST /fraud-detection, the listing screening path.
func (h *Handler) FraudDetection(w http.ResponseWriter, r *http.Request) {
	var req domain.FraudRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON request body")
		return
	}
	if req.ProductName == "" {
		writeError(w, http.StatusBadRequest, "Product name is required")
		return
	}

	result, err := h.fraud.Analyze(r.Context(), &req)
	if err != nil {
		slog.Error("fraud analysis failed", "product_id", req.ProductID, "error", err)
		writeError(w, http.StatusInternalServerError, "Fraud analysis failed")
		return
	}

	if result.RiskLevel == domain.RiskHigh || result.RiskLevel == domain.RiskCritical {
		slog.Warn("high risk listing detected",
			"product_id", req.ProductID,
			"product_name", req.ProductName,
			"risk_score", result.RiskScore,
			"risk_level", result.RiskLevel,
			"action", result.RecommendedAction,
		)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    result,
	})
}

// FraudDetectionDoc handles GET /fraud-detection.
func (h *Handler) FraudDetectionDoc(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     "Fraud detection endpoint",
		"method":      "POST",
		"description": "Screens a marketplace listing across pricing, seller, text, image and certification signals",
		"requiredFields": []string{
			"productName",
		},
		"optionalFields": []string{
			"productId", "price", "sellerRating", "sellerId", "sellerHistory",
			"certificationImage", "ingredients", "productImages", "description",
			"category", "supplier", "location",
		},
	})
}

// BlockchainVerifyRequest is the request body for POST /blockchain/verify.
type BlockchainVerifyRequest struct {
	CertificationID string `json:"certificationId"`
}

// BlockchainVerify handles POST /blockchain/verify.
func (h *Handler) BlockchainVerify(w http.ResponseWriter, r *http.Request) {
	var req BlockchainVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON request body")
		return
	}
	if req.CertificationID == "" {
		writeError(w, http.StatusBadRequest, "Certification ID is required")
		return
	}

	verification, err := h.ledger.VerifyCertification(r.Context(), req.CertificationID)
	if err != nil {
		slog.Error("ledger verification failed", "certification_id", req.CertificationID, "error", err)
		writeError(w, http.StatusInternalServerError, "Verification failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    verification,
	})
}

// CreateRecordRequest is the request body for POST /blockchain/create-record.
type CreateRecordRequest struct {
	ProductID       string `json:"productId"`
	CertificationID string `json:"certificationId"`
	Authority       string `json:"authority"`
	ExpiryDate      string `json:"expiryDate"`
}

// BlockchainCreateRecord handles POST /blockchain/create-record (admin).
func (h *Handler) BlockchainCreateRecord(w http.ResponseWriter, r *http.Request) {
	var req CreateRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON request body")
		return
	}
	if req.ProductID == "" || req.CertificationID == "" || req.Authority == "" || req.ExpiryDate == "" {
		writeError(w, http.StatusBadRequest, "productId, certificationId, authority and expiryDate are required")
		return
	}

	hash, err := h.ledger.CreateRecord(r.Context(), &domain.LedgerRecord{
		ProductID:       req.ProductID,
		CertificationID: req.CertificationID,
		Authority:       req.Authority,
		ExpiryDate:      req.ExpiryDate,
		Timestamp:       time.Now().UnixMilli(),
	})
	if err != nil {
		slog.Error("ledger record creation failed", "product_id", req.ProductID, "error", err)
		writeError(w, http.StatusInternalServerError, "Record creation failed")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":         true,
		"transactionHash": hash,
	})
}

// ListRules returns all loaded screening rules from the engine.
func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	loaded := h.engine.GetLoadedRules()

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"rules":   loaded,
		"count":   len(loaded),
	})
}

// CreateRuleRequest is the request body for creating a screening rule.
type CreateRuleRequest struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Expression  string            `json:"expression"`
	Bands       []domain.RuleBand `json:"bands"`
	Enabled     bool              `json:"enabled"`
}

// CreateRule validates, loads and persists a new screening rule.
func (h *Handler) CreateRule(w http.ResponseWriter, r *http.Request) {
	var req CreateRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON request body")
		return
	}
	if req.ID == "" || req.Name == "" || req.Expression == "" {
		writeError(w, http.StatusBadRequest, "id, name and expression are required")
		return
	}

	rule := &domain.ScreeningRule{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		Version:     "1.0.0",
		Expression:  req.Expression,
		Bands:       req.Bands,
		Enabled:     req.Enabled,
	}

	// Validate CEL expression by attempting to load
	if err := h.engine.LoadRule(rule); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid rule expression", err.Error())
		return
	}

	if h.repo != nil {
		if err := h.repo.SaveScreeningRule(r.Context(), rule); err != nil {
			slog.Error("failed to save screening rule", "id", rule.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to save rule")
			return
		}
	}

	slog.Info("screening rule created", "id", rule.ID, "name", rule.Name)
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"rule":    rule,
		"message": "Rule created. Call POST /rules/reload to apply changes.",
	})
}

// ReloadRules reloads all screening rules from the database into the
// engine, enabling hot reload without a restart.
func (h *Handler) ReloadRules(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		writeError(w, http.StatusServiceUnavailable, "Repository not available")
		return
	}

	ruleSet, err := h.repo.ListScreeningRules(r.Context())
	if err != nil {
		slog.Error("failed to list screening rules", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load rules")
		return
	}

	if err := h.engine.ReloadRules(ruleSet); err != nil {
		slog.Error("failed to reload screening rules", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to reload rules", err.Error())
		return
	}

	slog.Info("screening rules reloaded", "count", len(ruleSet))
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Rules reloaded successfully",
		"count":   len(ruleSet),
	})
}

// ListAlerts returns recent screening alerts persisted by the worker.
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	alerts, err := h.repo.ListAlerts(r.Context(), limit)
	if err != nil {
		slog.Error("failed to list alerts", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list alerts")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"alerts":  alerts,
		"count":   len(alerts),
	})
}
