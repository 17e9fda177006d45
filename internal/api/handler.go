package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/halaleco/amanah/internal/auth"
	"github.com/halaleco/amanah/internal/compliance"
	"github.com/halaleco/amanah/internal/domain"
	"github.com/halaleco/amanah/internal/fraud"
	"github.com/halaleco/amanah/internal/ledger"
	"github.com/halaleco/amanah/internal/rules"
	"github.com/halaleco/amanah/internal/supplychain"
)

// Handler holds dependencies for API handlers.
type Handler struct {
	repo       domain.Repository
	cache      domain.Cache
	bus        domain.EventBus
	auth       *auth.Service
	compliance *compliance.Engine
	validator  *compliance.Validator
	verifier   *compliance.Verifier
	fraud      *fraud.Engine
	engine     *rules.Engine
	ledger     *ledger.Ledger
	tracker    *supplychain.Tracker
	version    string

	// secureCookies marks the auth cookie Secure; set by the server
	// from ServerConfig.Production.
	secureCookies bool
}

// NewHandler creates a new API handler.
func NewHandler(
	repo domain.Repository,
	cache domain.Cache,
	eventBus domain.EventBus,
	authSvc *auth.Service,
	complianceEngine *compliance.Engine,
	validator *compliance.Validator,
	verifier *compliance.Verifier,
	fraudEngine *fraud.Engine,
	ruleEngine *rules.Engine,
	l *ledger.Ledger,
	tracker *supplychain.Tracker,
	version string,
) *Handler {
	return &Handler{
		repo:       repo,
		cache:      cache,
		bus:        eventBus,
		auth:       authSvc,
		compliance: complianceEngine,
		validator:  validator,
		verifier:   verifier,
		fraud:      fraudEngine,
		engine:     ruleEngine,
		ledger:     l,
		tracker:    tracker,
		version:    version,
	}
}

// errorResponse is the uniform failure envelope.
type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, detail ...string) {
	resp := errorResponse{Success: false, Message: message}
	if len(detail) > 0 {
		resp.Error = detail[0]
	}
	writeJSON(w, status, resp)
}

// Health returns server health status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"

	if h.repo != nil {
		if err := h.repo.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}
	if h.cache != nil {
		if err := h.cache.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  status,
		"version": h.version,
	})
}

// Ready returns whether the server is ready to accept traffic.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"ready": "true",
	})
}

// RegisterRequest is the request body for POST /auth/register. Extra
// profile fields sent by clients are ignored.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Register handles POST /auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON request body")
		return
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "Email, password and name are required")
		return
	}

	user, token, err := h.auth.Register(r.Context(), req.Email, req.Password, req.Name, domain.RoleUser)
	if errors.Is(err, auth.ErrEmailTaken) {
		writeError(w, http.StatusConflict, "An account with this email already exists")
		return
	}
	if err != nil {
		slog.Error("registration failed", "email", req.Email, "error", err)
		writeError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	h.setAuthCookie(w, token)
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"user":    user,
		"token":   token,
	})
}

// LoginRequest is the request body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		slog.Error("login failed", "email", req.Email, "error", err)
		writeError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	h.setAuthCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    user,
		"token":   token,
	})
}

// Me handles GET /auth/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := h.auth.GetUser(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Account no longer exists")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    user,
	})
}

func (h *Handler) setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.auth.TokenTTL() / time.Second),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
