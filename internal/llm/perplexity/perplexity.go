package perplexity

import (
	"context"
	"fmt"
	"time"

	pplx "github.com/sgaunet/perplexity-go/v2"

	"github.com/ragbench/ragbench/internal/llm"
	"github.com/ragbench/ragbench/internal/models"
)

// Provider implements the llm.Provider interface for Perplexity.
// The deployment_name field carries the Perplexity model name and
// subscription_key the API key.
type Provider struct{}

// New creates a new Perplexity provider
func New() *Provider {
	return &Provider{}
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "perplexity"
}

// Validate validates the provider configuration
func (p *Provider) Validate(cfg *models.LLMConfig) error {
	if cfg.SubscriptionKey == "" {
		return fmt.Errorf("subscription_key is required")
	}
	if cfg.DeploymentName == "" {
		return fmt.Errorf("deployment_name is required")
	}
	return nil
}

// Verify issues a minimal completion against the configured model
func (p *Provider) Verify(ctx context.Context, cfg *models.LLMConfig) (*llm.Probe, error) {
	if err := p.Validate(cfg); err != nil {
		return nil, err
	}

	client := pplx.NewClient(cfg.SubscriptionKey)

	messages := []pplx.Message{
		{Role: "user", Content: "ping"},
	}
	req := pplx.NewCompletionRequest(
		pplx.WithMessages(messages),
		pplx.WithModel(cfg.DeploymentName),
	)

	startTime := time.Now()
	if _, err := client.SendCompletionRequest(req); err != nil {
		return nil, fmt.Errorf("perplexity probe failed: %w", err)
	}

	return &llm.Probe{
		Model:     cfg.DeploymentName,
		LatencyMs: time.Since(startTime).Milliseconds(),
	}, nil
}
