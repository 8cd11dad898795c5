package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragbench/ragbench/internal/dataset"
	"github.com/ragbench/ragbench/internal/db/memory"
	"github.com/ragbench/ragbench/internal/errs"
	"github.com/ragbench/ragbench/internal/llm"
	"github.com/ragbench/ragbench/internal/models"
	"github.com/ragbench/ragbench/internal/services"
)

type builderFixture struct {
	configs   *services.ConfigService
	stager    *dataset.Stager
	builder   *services.RequestBuilder
	llmCfg    *models.LLMConfig
	searchCfg *models.SearchConfig
}

func newBuilderFixture(t *testing.T) *builderFixture {
	t.Helper()
	ctx := context.Background()

	store := memory.New()
	configs := services.NewConfigService(store, llm.NewRegistry())
	stager := dataset.NewStager()

	llmCfg := validLLMConfig("baseline")
	require.NoError(t, configs.CreateLLMConfig(ctx, llmCfg))

	searchCfg := &models.SearchConfig{
		Name:                  "docs",
		SearchServiceEndpoint: "https://search.example.net",
	}
	require.NoError(t, configs.CreateSearchConfig(ctx, searchCfg))

	return &builderFixture{
		configs:   configs,
		stager:    stager,
		builder:   services.NewRequestBuilder(store, stager),
		llmCfg:    llmCfg,
		searchCfg: searchCfg,
	}
}

func (f *builderFixture) stage(t *testing.T) {
	t.Helper()
	_, err := f.stager.Stage("session-1", []dataset.RawRecord{
		{ID: "tc-1", Question: "q1", GroundTruth: "a1"},
		{ID: "tc-2", Question: "q2", GroundTruth: "a2"},
	})
	require.NoError(t, err)
}

func (f *builderFixture) input() services.BuildInput {
	return services.BuildInput{
		SessionID:      "session-1",
		LLMConfigID:    f.llmCfg.ID,
		SearchConfigID: f.searchCfg.ID,
		IndexName:      "kb-index",
		Prompts:        models.Prompts{AssistantPrompt: "You are a helpful assistant."},
		TopK:           5,
	}
}

func TestBuildAppliesDefaults(t *testing.T) {
	f := newBuilderFixture(t)
	f.stage(t)

	request, err := f.builder.Build(context.Background(), f.input())
	require.NoError(t, err)

	// temperature falls back to the config value, rag prompt to the default
	assert.Equal(t, f.llmCfg.Temperature, request.Model.Temperature)
	assert.Equal(t, services.DefaultRAGPrompt, request.Prompts.RAGPrompt)
	assert.Contains(t, request.Prompts.RAGPrompt, "{context}")
	assert.Contains(t, request.Prompts.RAGPrompt, "{question}")

	assert.Equal(t, "kb-index", request.SearchIndex.IndexName)
	assert.Equal(t, f.searchCfg.SearchServiceEndpoint, request.SearchIndex.SearchServiceEndpoint)
	assert.Len(t, request.TestCases, 2)
}

func TestBuildTemperatureOverride(t *testing.T) {
	f := newBuilderFixture(t)
	f.stage(t)

	override := 1.5
	in := f.input()
	in.Temperature = &override

	request, err := f.builder.Build(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 1.5, request.Model.Temperature)
}

func TestBuildRejectsOutOfRangeOverride(t *testing.T) {
	f := newBuilderFixture(t)
	f.stage(t)

	override := 2.5
	in := f.input()
	in.Temperature = &override

	_, err := f.builder.Build(context.Background(), in)
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
}

func TestBuildUnknownConfigs(t *testing.T) {
	f := newBuilderFixture(t)
	f.stage(t)

	in := f.input()
	in.LLMConfigID = "missing"
	_, err := f.builder.Build(context.Background(), in)
	assert.True(t, errs.IsNotFound(err))

	in = f.input()
	in.SearchConfigID = "missing"
	_, err = f.builder.Build(context.Background(), in)
	assert.True(t, errs.IsNotFound(err))
}

func TestBuildRequiresStagedDataset(t *testing.T) {
	f := newBuilderFixture(t)

	_, err := f.builder.Build(context.Background(), f.input())
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
	assert.Contains(t, err.Error(), "no dataset has been staged")
}

func TestBuildRejectsEmptyDataset(t *testing.T) {
	f := newBuilderFixture(t)

	_, err := f.stager.Stage("session-1", nil)
	require.NoError(t, err)

	_, err = f.builder.Build(context.Background(), f.input())
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
	assert.Contains(t, err.Error(), "empty")
}

func TestBuildFieldValidation(t *testing.T) {
	f := newBuilderFixture(t)
	f.stage(t)

	tests := []struct {
		name   string
		mutate func(*services.BuildInput)
	}{
		{"empty index name", func(in *services.BuildInput) { in.IndexName = "" }},
		{"zero top k", func(in *services.BuildInput) { in.TopK = 0 }},
		{"negative top k", func(in *services.BuildInput) { in.TopK = -3 }},
		{"empty assistant prompt", func(in *services.BuildInput) { in.Prompts.AssistantPrompt = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := f.input()
			tt.mutate(&in)
			_, err := f.builder.Build(context.Background(), in)
			require.Error(t, err)
			assert.True(t, errs.IsValidation(err))
		})
	}
}

func TestBuildSnapshotIsImmutable(t *testing.T) {
	f := newBuilderFixture(t)
	f.stage(t)
	ctx := context.Background()

	request, err := f.builder.Build(ctx, f.input())
	require.NoError(t, err)
	originalEndpoint := request.Model.ChatEndpoint

	// editing the config afterwards must not reach the snapshot
	update := validLLMConfig("baseline")
	update.ChatEndpoint = "https://changed.example.net"
	require.NoError(t, f.configs.UpdateLLMConfig(ctx, f.llmCfg.ID, update))

	assert.Equal(t, originalEndpoint, request.Model.ChatEndpoint)
}
