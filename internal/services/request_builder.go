package services

import (
	"context"

	"github.com/ragbench/ragbench/internal/dataset"
	"github.com/ragbench/ragbench/internal/db"
	"github.com/ragbench/ragbench/internal/errs"
	"github.com/ragbench/ragbench/internal/models"
)

// DefaultRAGPrompt is used when no rag_prompt override is supplied.
const DefaultRAGPrompt = "Use the context below to answer.\n{context}\n\nQuestion: {question}"

// BuildInput carries everything needed to assemble an evaluation request.
type BuildInput struct {
	SessionID      string
	LLMConfigID    string
	SearchConfigID string
	IndexName      string
	Prompts        models.Prompts
	Temperature    *float64 // nil means "use the LLM config's temperature"
	TopK           int
}

// RequestBuilder assembles immutable evaluation requests from stored
// configs and the session's staged dataset. The returned request holds
// value snapshots only; later config edits never reach it.
type RequestBuilder struct {
	db     db.ConfigDatabase
	stager *dataset.Stager
}

// NewRequestBuilder creates a new request builder
func NewRequestBuilder(database db.ConfigDatabase, stager *dataset.Stager) *RequestBuilder {
	return &RequestBuilder{db: database, stager: stager}
}

// Build validates the inputs and produces the request snapshot.
func (b *RequestBuilder) Build(ctx context.Context, in BuildInput) (*models.EvaluationRequest, error) {
	llmCfg, err := b.db.GetLLMConfig(ctx, in.LLMConfigID)
	if err != nil {
		return nil, err
	}

	searchCfg, err := b.db.GetSearchConfig(ctx, in.SearchConfigID)
	if err != nil {
		return nil, err
	}

	cases, staged := b.stager.Current(in.SessionID)
	if !staged {
		return nil, errs.Validation("test_cases", "no dataset has been staged")
	}
	if len(cases) == 0 {
		return nil, errs.Validation("test_cases", "staged dataset is empty")
	}

	if in.IndexName == "" {
		return nil, errs.Validation("index_name", "must not be empty")
	}

	temperature := llmCfg.Temperature
	if in.Temperature != nil {
		temperature = *in.Temperature
	}
	if temperature < 0.0 || temperature > 2.0 {
		return nil, errs.Validation("temperature", "%g is out of range [0.0, 2.0]", temperature)
	}

	if in.TopK <= 0 {
		return nil, errs.Validation("top_k", "%d must be a positive integer", in.TopK)
	}

	if in.Prompts.AssistantPrompt == "" {
		return nil, errs.Validation("assistant_prompt", "must not be empty")
	}

	ragPrompt := in.Prompts.RAGPrompt
	if ragPrompt == "" {
		ragPrompt = DefaultRAGPrompt
	}

	// cases is already a copy owned by this request; the snapshot shares
	// nothing with the stores.
	return &models.EvaluationRequest{
		Model: models.ModelSnapshot{
			Provider:        llmCfg.Provider,
			ChatEndpoint:    llmCfg.ChatEndpoint,
			DeploymentName:  llmCfg.DeploymentName,
			APIVersion:      llmCfg.APIVersion,
			SubscriptionKey: llmCfg.SubscriptionKey,
			Temperature:     temperature,
			TopK:            in.TopK,
			MaxTokens:       llmCfg.MaxTokens,
		},
		SearchIndex: models.SearchIndexSnapshot{
			SearchServiceEndpoint: searchCfg.SearchServiceEndpoint,
			IndexName:             in.IndexName,
		},
		Prompts: models.Prompts{
			AssistantPrompt: in.Prompts.AssistantPrompt,
			RAGPrompt:       ragPrompt,
		},
		TestCases: cases,
	}, nil
}
