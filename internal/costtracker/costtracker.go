package costtracker

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// PricingInfo holds cost details per token for a specific model.
type PricingInfo struct {
	InputPerToken  float64 `mapstructure:"input_per_token"`
	OutputPerToken float64 `mapstructure:"output_per_token"`
}

// CostEvent represents a single model call and its token usage.
type CostEvent struct {
	Operation    string // e.g. "classification"
	ProviderName string
	ModelName    string
	InputTokens  int
	OutputTokens int
	AmountUSD    float64
}

// CostTracker records per-call token costs and reports the run total.
type CostTracker interface {
	RecordCost(ctx context.Context, event CostEvent) error
	TotalCost(ctx context.Context) (float64, error)
}

// New returns an in-memory tracker that prices events from the given map
// (keyed by model name). Events for unknown models are counted at zero cost.
func New(pricing map[string]PricingInfo) CostTracker {
	return &memoryCostTracker{pricing: pricing}
}

type memoryCostTracker struct {
	mu      sync.Mutex
	pricing map[string]PricingInfo
	total   float64
}

func (t *memoryCostTracker) RecordCost(ctx context.Context, event CostEvent) error {
	if event.AmountUSD == 0 {
		price, ok := t.pricing[event.ModelName]
		if !ok {
			log.Debugf("no pricing for model %q, recording zero cost", event.ModelName)
		}
		event.AmountUSD = float64(event.InputTokens)*price.InputPerToken +
			float64(event.OutputTokens)*price.OutputPerToken
	}

	t.mu.Lock()
	t.total += event.AmountUSD
	t.mu.Unlock()

	log.Debugf("recorded usage: provider=%s model=%s in=%d out=%d cost=%.8f",
		event.ProviderName, event.ModelName, event.InputTokens, event.OutputTokens, event.AmountUSD)
	return nil
}

func (t *memoryCostTracker) TotalCost(ctx context.Context) (float64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total, nil
}
