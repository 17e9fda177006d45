package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/halaleco/amanah/internal/domain"
	"github.com/halaleco/amanah/internal/repository"
	"github.com/halaleco/amanah/internal/supplychain"
)

// SupplyChainTrack handles POST /supply-chain/track.
func (h *Handler) SupplyChainTrack(w http.ResponseWriter, r *http.Request) {
	var query domain.TrackingQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON request body")
		return
	}

	record, err := h.tracker.Track(r.Context(), &query)
	if err != nil {
		slog.Error("supply chain tracking failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Tracking failed")
		return
	}
	if record == nil {
		writeError(w, http.StatusNotFound, "Product not found in supply chain records")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    record,
	})
}

// SupplyChainTrackGet handles GET /supply-chain/track. Without query
// parameters it returns the endpoint documentation.
func (h *Handler) SupplyChainTrackGet(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	query := domain.TrackingQuery{
		ProductID:      params.Get("productId"),
		BatchNumber:    params.Get("batchNumber"),
		QRCode:         params.Get("qrCode"),
		BlockchainHash: params.Get("blockchainHash"),
	}

	if query.IsEmpty() {
		writeJSON(w, http.StatusOK, map[string]any{
			"success":     true,
			"message":     "Supply chain tracking endpoint",
			"description": "Track a product's journey from sourcing to retail",
			"parameters":  []string{"productId", "batchNumber", "qrCode", "blockchainHash"},
		})
		return
	}

	record, err := h.tracker.Track(r.Context(), &query)
	if err != nil {
		slog.Error("supply chain tracking failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Tracking failed")
		return
	}
	if record == nil {
		writeError(w, http.StatusNotFound, "Product not found in supply chain records")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    record,
	})
}

// SupplyChainAnalytics handles GET /supply-chain/analytics.
func (h *Handler) SupplyChainAnalytics(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UnixMilli()
	start := now - 30*24*int64(time.Hour/time.Millisecond)
	end := now

	if raw := r.URL.Query().Get("start"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil {
			start = parsed
		}
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil {
			end = parsed
		}
	}

	analytics := h.tracker.GenerateAnalytics(start, end)

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    analytics,
	})
}

// SupplyChainAdminRequest is the request body for POST /supply-chain/analytics.
type SupplyChainAdminRequest struct {
	Action string `json:"action"`

	// create_record
	ProductID   string `json:"productId,omitempty"`
	ProductName string `json:"productName,omitempty"`
	BatchNumber string `json:"batchNumber,omitempty"`

	// detect_contamination and add_stage
	RecordID      string                           `json:"recordId,omitempty"`
	Contamination *supplychain.ContaminationReport `json:"contamination,omitempty"`
	Stage         *domain.SupplyChainStage         `json:"stage,omitempty"`
}

// SupplyChainAdmin handles POST /supply-chain/analytics admin actions.
func (h *Handler) SupplyChainAdmin(w http.ResponseWriter, r *http.Request) {
	var req SupplyChainAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON request body")
		return
	}

	ctx := r.Context()

	switch req.Action {
	case "create_record":
		record, err := h.tracker.CreateRecord(ctx, req.ProductID, req.ProductName, req.BatchNumber)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Record creation failed", err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"success": true,
			"data":    record,
		})

	case "detect_contamination":
		if req.RecordID == "" {
			writeError(w, http.StatusBadRequest, "recordId is required")
			return
		}
		alerts, err := h.tracker.DetectContamination(ctx, req.RecordID, req.Contamination)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Contamination detection failed", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"alerts":  alerts,
		})

	case "add_stage":
		if req.RecordID == "" || req.Stage == nil {
			writeError(w, http.StatusBadRequest, "recordId and stage are required")
			return
		}
		record, err := h.tracker.Track(ctx, &domain.TrackingQuery{ProductID: req.RecordID})
		if err != nil || record == nil {
			writeError(w, http.StatusNotFound, "Record not found")
			return
		}
		record, err = h.tracker.AddStage(ctx, record, req.Stage)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Stage addition failed", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    record,
		})

	default:
		writeError(w, http.StatusBadRequest, "Unknown action")
	}
}

// ListVendors handles GET /vendors.
func (h *Handler) ListVendors(w http.ResponseWriter, r *http.Request) {
	vendors, err := h.repo.ListVendors(r.Context())
	if err != nil {
		slog.Error("failed to list vendors", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list vendors")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"vendors": vendors,
		"count":   len(vendors),
	})
}

// GetVendor handles GET /vendors/{id}.
func (h *Handler) GetVendor(w http.ResponseWriter, r *http.Request) {
	vendorID := chi.URLParam(r, "id")

	vendor, err := h.repo.GetVendor(r.Context(), vendorID)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Vendor not found")
		return
	}
	if err != nil {
		slog.Error("failed to get vendor", "id", vendorID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to get vendor")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"vendor":  vendor,
	})
}

// VendorRequest is the request body for creating or updating a vendor.
type VendorRequest struct {
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone,omitempty"`
	Country         string  `json:"country,omitempty"`
	CertificationID string  `json:"certificationId,omitempty"`
	Rating          float64 `json:"rating,omitempty"`
}

// CreateVendor handles POST /vendors (admin).
func (h *Handler) CreateVendor(w http.ResponseWriter, r *http.Request) {
	var req VendorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON request body")
		return
	}
	if req.Name == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "Name and email are required")
		return
	}

	now := time.Now().UTC()
	vendor := &domain.Vendor{
		ID:              uuid.New().String(),
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		Country:         req.Country,
		CertificationID: req.CertificationID,
		Status:          domain.VendorPending,
		Rating:          req.Rating,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := h.repo.SaveVendor(r.Context(), vendor); err != nil {
		slog.Error("failed to create vendor", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create vendor")
		return
	}

	slog.Info("vendor created", "id", vendor.ID, "name", vendor.Name)
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"vendor":  vendor,
	})
}

// UpdateVendor handles PUT /vendors/{id} (admin).
func (h *Handler) UpdateVendor(w http.ResponseWriter, r *http.Request) {
	vendorID := chi.URLParam(r, "id")

	vendor, err := h.repo.GetVendor(r.Context(), vendorID)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Vendor not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get vendor")
		return
	}

	var req VendorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON request body")
		return
	}

	if req.Name != "" {
		vendor.Name = req.Name
	}
	if req.Email != "" {
		vendor.Email = req.Email
	}
	if req.Phone != "" {
		vendor.Phone = req.Phone
	}
	if req.Country != "" {
		vendor.Country = req.Country
	}
	if req.CertificationID != "" {
		vendor.CertificationID = req.CertificationID
	}
	if req.Rating != 0 {
		vendor.Rating = req.Rating
	}
	vendor.UpdatedAt = time.Now().UTC()

	if err := h.repo.SaveVendor(r.Context(), vendor); err != nil {
		slog.Error("failed to update vendor", "id", vendorID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to update vendor")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"vendor":  vendor,
	})
}

// DeleteVendor handles DELETE /vendors/{id} (admin).
func (h *Handler) DeleteVendor(w http.ResponseWriter, r *http.Request) {
	vendorID := chi.URLParam(r, "id")

	err := h.repo.DeleteVendor(r.Context(), vendorID)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Vendor not found")
		return
	}
	if err != nil {
		slog.Error("failed to delete vendor", "id", vendorID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete vendor")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Vendor deleted",
	})
}

// VerifyVendor handles POST /vendors/{id}/verify (admin). Runs the
// certification verifier against the vendor's certification and stores
// the outcome.
func (h *Handler) VerifyVendor(w http.ResponseWriter, r *http.Request) {
	vendorID := chi.URLParam(r, "id")
	ctx := r.Context()

	vendor, err := h.repo.GetVendor(ctx, vendorID)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Vendor not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get vendor")
		return
	}

	cert, err := h.verifier.Verify(ctx, vendor.CertificationID)
	if err != nil {
		slog.Error("vendor certification check failed", "id", vendorID, "error", err)
		writeError(w, http.StatusInternalServerError, "Certification check failed")
		return
	}

	now := time.Now().UTC()
	vendor.TrustScore = cert.TrustScore
	vendor.UpdatedAt = now
	if cert.IsValid {
		vendor.Status = domain.VendorVerified
		vendor.VerifiedAt = &now
	} else {
		vendor.Status = domain.VendorPending
		vendor.VerifiedAt = nil
	}

	if err := h.repo.SaveVendor(ctx, vendor); err != nil {
		slog.Error("failed to save vendor verification", "id", vendorID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to save verification outcome")
		return
	}

	slog.Info("vendor verification completed",
		"id", vendorID,
		"status", vendor.Status,
		"trust_score", vendor.TrustScore,
	)

	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"vendor":        vendor,
		"certification": cert,
	})
}
