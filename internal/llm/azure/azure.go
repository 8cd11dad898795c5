package azure

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	azopts "github.com/openai/openai-go/v3/azure"

	"github.com/ragbench/ragbench/internal/llm"
	"github.com/ragbench/ragbench/internal/models"
)

// Provider implements the llm.Provider interface for Azure OpenAI
// deployments.
type Provider struct{}

// New creates a new Azure OpenAI provider
func New() *Provider {
	return &Provider{}
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "azure"
}

// Validate validates the provider configuration
func (p *Provider) Validate(cfg *models.LLMConfig) error {
	if cfg.ChatEndpoint == "" {
		return fmt.Errorf("chat_endpoint is required")
	}
	if cfg.DeploymentName == "" {
		return fmt.Errorf("deployment_name is required")
	}
	if cfg.APIVersion == "" {
		return fmt.Errorf("api_version is required")
	}
	if cfg.SubscriptionKey == "" {
		return fmt.Errorf("subscription_key is required")
	}
	return nil
}

// Verify issues a one-token completion against the configured deployment
func (p *Provider) Verify(ctx context.Context, cfg *models.LLMConfig) (*llm.Probe, error) {
	if err := p.Validate(cfg); err != nil {
		return nil, err
	}

	client := openai.NewClient(
		azopts.WithEndpoint(cfg.ChatEndpoint, cfg.APIVersion),
		azopts.WithAPIKey(cfg.SubscriptionKey),
	)

	startTime := time.Now()
	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(cfg.DeploymentName),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage("ping"),
		},
		MaxTokens: openai.Int(1),
	})
	if err != nil {
		return nil, fmt.Errorf("azure openai probe failed: %w", err)
	}

	model := resp.Model
	if model == "" {
		model = cfg.DeploymentName
	}

	return &llm.Probe{
		Model:     model,
		LatencyMs: time.Since(startTime).Milliseconds(),
	}, nil
}
