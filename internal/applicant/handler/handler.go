// Package handler exposes the applicant validation HTTP surface.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"finrisk/internal/applicant/models"
	dErrors "finrisk/pkg/domain-errors"
	"finrisk/pkg/platform/httputil"
	"finrisk/pkg/requestcontext"
)

// maxBodyBytes caps request bodies; validation payloads are tiny.
const maxBodyBytes = 4 << 10

// Service defines the validation operation the handler depends on.
type Service interface {
	ValidateApplicant(ctx context.Context, in models.ApplicantInput) (*models.ValidationResult, error)
}

// ValidateRequest is the inbound JSON payload.
type ValidateRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	IDNumber  string `json:"idNumber"`
}

// ValidateResponse is the success payload.
type ValidateResponse struct {
	RiskScore      int              `json:"riskScore"`
	RiskLevel      models.RiskLevel `json:"riskLevel"`
	CorrelationID  string           `json:"correlationId"`
	AdditionalData map[string]any   `json:"additionalData,omitempty"`
}

// Handler handles applicant validation endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
}

// New creates a new applicant Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
	}
}

// Register mounts the applicant routes on the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/v1/validate", h.handleValidate)
	r.Get("/health", h.handleHealth)
	r.Get("/ready", h.handleReady)
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := requestcontext.CorrelationID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "malformed validation request",
			"correlation_id", correlationID,
			"error", err.Error(),
		)
		httputil.WriteError(w, correlationID, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}

	result, err := h.service.ValidateApplicant(ctx, models.ApplicantInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		IDNumber:  req.IDNumber,
	})
	if err != nil {
		httputil.WriteError(w, correlationID, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ValidateResponse{
		RiskScore:      result.RiskScore,
		RiskLevel:      result.RiskLevel,
		CorrelationID:  result.CorrelationID,
		AdditionalData: result.AdditionalData,
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	// No upstream probe here: readiness must not spend the scoring service's
	// rate-limit budget.
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
		"checks": map[string]bool{"api": true},
	})
}
