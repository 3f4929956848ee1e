package upstream

import (
	"context"

	"finrisk/internal/applicant/models"
)

// DemoScorer is the local fallback used when no RiskShield API key is
// configured. It scores deterministically from the ID digits so local
// development exercises every risk band without network access.
type DemoScorer struct{}

// NewDemoScorer returns the demo scoring backend.
func NewDemoScorer() *DemoScorer {
	return &DemoScorer{}
}

// Score sums the ID digits modulo 101, yielding a stable 0-100 score.
func (*DemoScorer) Score(_ context.Context, in models.ApplicantInput) (*Result, error) {
	sum := 0
	for _, r := range in.IDNumber {
		if r >= '0' && r <= '9' {
			sum += int(r - '0')
		}
	}
	return &Result{
		Score:          sum % 101,
		AdditionalData: map[string]any{"mode": "demo"},
	}, nil
}
