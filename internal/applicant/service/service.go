// Package service orchestrates applicant validation: input checks, circuit
// breaker gating, the retried upstream call, and risk classification.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"finrisk/internal/applicant/metrics"
	"finrisk/internal/applicant/models"
	"finrisk/internal/applicant/validator"
	"finrisk/internal/upstream"
	dErrors "finrisk/pkg/domain-errors"
	"finrisk/pkg/platform/circuit"
	"finrisk/pkg/requestcontext"
)

// Service runs the full validation flow. Safe for concurrent use: the breaker
// is the only shared mutable state and guards itself.
type Service struct {
	validator *validator.Validator
	breaker   *circuit.Breaker
	scorer    upstream.Scorer
	metrics   *metrics.Metrics
	log       *slog.Logger
}

// New constructs the orchestrator. The breaker is injected, never global, so
// tests can build isolated instances; the scorer is expected to be the
// retry-wrapped client (or the demo scorer).
func New(v *validator.Validator, breaker *circuit.Breaker, scorer upstream.Scorer, m *metrics.Metrics, log *slog.Logger) (*Service, error) {
	if v == nil {
		return nil, errors.New("validator is required")
	}
	if breaker == nil {
		return nil, errors.New("circuit breaker is required")
	}
	if scorer == nil {
		return nil, errors.New("scorer is required")
	}
	return &Service{
		validator: v,
		breaker:   breaker,
		scorer:    scorer,
		metrics:   m,
		log:       log,
	}, nil
}

// ValidateApplicant validates the input, obtains a fraud-risk score through
// the resilience chain, and classifies it. Every return path carries the
// call's correlation ID. The breaker records exactly one terminal outcome per
// admitted call; validation failures and breaker denials never touch it.
func (s *Service) ValidateApplicant(ctx context.Context, in models.ApplicantInput) (*models.ValidationResult, error) {
	start := time.Now()
	correlationID := requestcontext.CorrelationID(ctx)
	if correlationID == "" {
		correlationID = uuid.NewString()
	}

	if _, violations := s.validator.Validate(in); violations != nil {
		s.log.InfoContext(ctx, "applicant input rejected",
			"correlation_id", correlationID,
			"violations", len(violations),
		)
		s.recordOutcome("validation_error", start)
		return nil, dErrors.Wrap(violations, dErrors.CodeValidation, "input validation failed")
	}

	allowed, admission := s.breaker.Allow()
	s.observeBreaker(ctx, admission)
	if !allowed {
		s.log.WarnContext(ctx, "circuit breaker open, rejecting call",
			"correlation_id", correlationID,
			"breaker", s.breaker.Name(),
		)
		s.recordOutcome("breaker_open", start)
		return nil, dErrors.New(dErrors.CodeUpstream, "scoring service temporarily unavailable")
	}

	result, err := s.scorer.Score(ctx, in)
	if err != nil {
		return nil, s.handleScoreFailure(ctx, err, correlationID, start)
	}

	change := s.breaker.RecordSuccess()
	s.observeBreaker(ctx, change)
	if s.metrics != nil {
		s.metrics.RecordUpstreamResult("success")
	}

	level := models.RiskLevelFromScore(result.Score)
	s.log.InfoContext(ctx, "applicant validated",
		"correlation_id", correlationID,
		"risk_score", result.Score,
		"risk_level", string(level),
	)
	s.recordOutcome("success", start)

	return &models.ValidationResult{
		RiskScore:      result.Score,
		RiskLevel:      level,
		CorrelationID:  correlationID,
		AdditionalData: result.AdditionalData,
	}, nil
}

func (s *Service) handleScoreFailure(ctx context.Context, err error, correlationID string, start time.Time) error {
	kind, classified := upstream.KindOf(err)

	// A caller that gave up says nothing about upstream health: record no
	// outcome. If this call held the half-open probe slot, hand it back so
	// the next call can probe instead of being denied forever.
	if classified && kind == upstream.KindCanceled {
		s.observeBreaker(ctx, s.breaker.ReleaseProbe())
		s.recordOutcome("canceled", start)
		return dErrors.Wrap(err, dErrors.CodeInternal, "request canceled")
	}

	change := s.breaker.RecordFailure()
	s.observeBreaker(ctx, change)

	label := "internal"
	if classified {
		label = kind.String()
	}
	if s.metrics != nil {
		s.metrics.RecordUpstreamResult(label)
	}
	s.log.ErrorContext(ctx, "scoring failed",
		"correlation_id", correlationID,
		"kind", label,
		"error", err,
	)
	s.recordOutcome(label, start)

	if !classified {
		return dErrors.Wrap(err, dErrors.CodeInternal, "scoring failed unexpectedly")
	}
	switch kind {
	case upstream.KindAuth:
		return dErrors.Wrap(err, dErrors.CodeAuthentication, "scoring service rejected credentials")
	case upstream.KindRateLimit:
		return dErrors.Wrap(err, dErrors.CodeRateLimit, "scoring service is rate limiting requests")
	case upstream.KindTimeout:
		return dErrors.Wrap(err, dErrors.CodeTimeout, "scoring service timed out")
	case upstream.KindUpstream:
		return dErrors.Wrap(err, dErrors.CodeUpstream, "scoring service returned an error")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "scoring failed unexpectedly")
	}
}

func (s *Service) observeBreaker(ctx context.Context, change circuit.StateChange) {
	if s.metrics != nil {
		s.metrics.RecordBreakerChange(change)
	}
	if change.Changed() {
		s.log.WarnContext(ctx, "circuit breaker state changed",
			"breaker", s.breaker.Name(),
			"from", change.From.String(),
			"to", change.To.String(),
		)
	}
}

func (s *Service) recordOutcome(outcome string, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordValidation(outcome, time.Since(start))
	}
}
