package google

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/ragbench/ragbench/internal/llm"
	"github.com/ragbench/ragbench/internal/models"
)

// Provider implements the llm.Provider interface for Google AI.
// The deployment_name field carries the Gemini model name and
// subscription_key the API key.
type Provider struct{}

// New creates a new Google provider
func New() *Provider {
	return &Provider{}
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "google"
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

// Verify issues a minimal generation against the configured model
func (p *Provider) Verify(ctx context.Context, cfg *models.LLMConfig) (*llm.Probe, error) {
	if err := p.Validate(cfg); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.SubscriptionKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Google client: %w", err)
	}

	content := []*genai.Content{
		{
			Parts: []*genai.Part{
				{Text: "ping"},
			},
		},
	}

	maxTokens := int32(1)
	generationConfig := &genai.GenerateContentConfig{
		MaxOutputTokens: maxTokens,
	}

	startTime := time.Now()
	_, err = client.Models.GenerateContent(ctx, cfg.DeploymentName, content, generationConfig)
	if err != nil {
		return nil, fmt.Errorf("Google AI API error: %v", err)
	}

	return &llm.Probe{
		Model:     cfg.DeploymentName,
		LatencyMs: time.Since(startTime).Milliseconds(),
	}, nil
}
