package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragbench/ragbench/internal/db/memory"
	"github.com/ragbench/ragbench/internal/errs"
	"github.com/ragbench/ragbench/internal/llm"
	"github.com/ragbench/ragbench/internal/models"
	"github.com/ragbench/ragbench/internal/services"
)

func newConfigService() *services.ConfigService {
	return services.NewConfigService(memory.New(), llm.NewRegistry())
}

func validLLMConfig(name string) *models.LLMConfig {
	return &models.LLMConfig{
		Name:            name,
		Provider:        "azure",
		ChatEndpoint:    "https://example.openai.azure.com",
		DeploymentName:  "gpt-4o",
		APIVersion:      "2024-02-01",
		SubscriptionKey: "secret-key-0123456789",
		Temperature:     0.7,
		MaxTokens:       800,
	}
}

func TestCreateAndGetLLMConfig(t *testing.T) {
	svc := newConfigService()
	ctx := context.Background()

	cfg := validLLMConfig("baseline")
	require.NoError(t, svc.CreateLLMConfig(ctx, cfg))
	require.NotEmpty(t, cfg.ID)
	assert.False(t, cfg.CreatedAt.IsZero())

	got, err := svc.GetLLMConfig(ctx, cfg.ID)
	require.NoError(t, err)
	assert.Equal(t, "baseline", got.Name)
	assert.Equal(t, "azure", got.Provider)
	assert.Equal(t, 0.7, got.Temperature)
}

func TestCreateLLMConfigValidation(t *testing.T) {
	svc := newConfigService()
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*models.LLMConfig)
	}{
		{"empty name", func(c *models.LLMConfig) { c.Name = "" }},
		{"empty endpoint", func(c *models.LLMConfig) { c.ChatEndpoint = "" }},
		{"bad endpoint", func(c *models.LLMConfig) { c.ChatEndpoint = "not a url" }},
		{"temperature too high", func(c *models.LLMConfig) { c.Temperature = 2.5 }},
		{"temperature negative", func(c *models.LLMConfig) { c.Temperature = -0.1 }},
		{"zero max tokens", func(c *models.LLMConfig) { c.MaxTokens = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validLLMConfig("cfg")
			tt.mutate(cfg)
			err := svc.CreateLLMConfig(ctx, cfg)
			require.Error(t, err)
			assert.True(t, errs.IsValidation(err))
		})
	}
}

func TestLLMConfigNameUniqueness(t *testing.T) {
	svc := newConfigService()
	ctx := context.Background()

	require.NoError(t, svc.CreateLLMConfig(ctx, validLLMConfig("baseline")))

	err := svc.CreateLLMConfig(ctx, validLLMConfig("baseline"))
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))

	// names are case-sensitive, so a different casing is a different name
	require.NoError(t, svc.CreateLLMConfig(ctx, validLLMConfig("Baseline")))
}

func TestConcurrentCreateLLMConfigSameName(t *testing.T) {
	svc := newConfigService()
	ctx := context.Background()

	const writers = 8
	start := make(chan struct{})
	results := make(chan error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			results <- svc.CreateLLMConfig(ctx, validLLMConfig("contended"))
		}()
	}
	close(start)
	wg.Wait()
	close(results)

	created := 0
	for err := range results {
		if err == nil {
			created++
			continue
		}
		assert.True(t, errs.IsValidation(err))
	}
	assert.Equal(t, 1, created)

	configs, err := svc.ListLLMConfigs(ctx)
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, "contended", configs[0].Name)
}

func TestUpdateLLMConfigKeepsOwnName(t *testing.T) {
	svc := newConfigService()
	ctx := context.Background()

	cfg := validLLMConfig("baseline")
	require.NoError(t, svc.CreateLLMConfig(ctx, cfg))

	// updating without renaming must not collide with itself
	update := validLLMConfig("baseline")
	update.Temperature = 1.2
	require.NoError(t, svc.UpdateLLMConfig(ctx, cfg.ID, update))

	got, err := svc.GetLLMConfig(ctx, cfg.ID)
	require.NoError(t, err)
	assert.Equal(t, 1.2, got.Temperature)
	assert.Equal(t, cfg.CreatedAt, got.CreatedAt)
}

func TestUpdateLLMConfigRenameCollision(t *testing.T) {
	svc := newConfigService()
	ctx := context.Background()

	require.NoError(t, svc.CreateLLMConfig(ctx, validLLMConfig("first")))
	second := validLLMConfig("second")
	require.NoError(t, svc.CreateLLMConfig(ctx, second))

	update := validLLMConfig("first")
	err := svc.UpdateLLMConfig(ctx, second.ID, update)
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
}

func TestUpdateUnknownLLMConfig(t *testing.T) {
	svc := newConfigService()

	err := svc.UpdateLLMConfig(context.Background(), "missing", validLLMConfig("x"))
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}

func TestDeleteUnknownLLMConfig(t *testing.T) {
	svc := newConfigService()

	err := svc.DeleteLLMConfig(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}

func TestListLLMConfigsCreationOrder(t *testing.T) {
	svc := newConfigService()
	ctx := context.Background()

	for _, name := range []string{"one", "two", "three"} {
		require.NoError(t, svc.CreateLLMConfig(ctx, validLLMConfig(name)))
	}

	configs, err := svc.ListLLMConfigs(ctx)
	require.NoError(t, err)
	require.Len(t, configs, 3)
	assert.Equal(t, "one", configs[0].Name)
	assert.Equal(t, "two", configs[1].Name)
	assert.Equal(t, "three", configs[2].Name)
}

func TestVerifyLLMConfigUnknownProvider(t *testing.T) {
	svc := newConfigService()
	ctx := context.Background()

	cfg := validLLMConfig("baseline")
	cfg.Provider = "unregistered"
	require.NoError(t, svc.CreateLLMConfig(ctx, cfg))

	_, err := svc.VerifyLLMConfig(ctx, cfg.ID)
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
}

func TestSearchConfigLifecycle(t *testing.T) {
	svc := newConfigService()
	ctx := context.Background()

	cfg := &models.SearchConfig{
		Name:                  "docs",
		SearchServiceEndpoint: "https://search.example.net",
	}
	require.NoError(t, svc.CreateSearchConfig(ctx, cfg))
	require.NotEmpty(t, cfg.ID)

	// duplicate name rejected
	err := svc.CreateSearchConfig(ctx, &models.SearchConfig{
		Name:                  "docs",
		SearchServiceEndpoint: "https://other.example.net",
	})
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))

	// invalid endpoint rejected
	err = svc.CreateSearchConfig(ctx, &models.SearchConfig{Name: "bad", SearchServiceEndpoint: "nope"})
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))

	require.NoError(t, svc.DeleteSearchConfig(ctx, cfg.ID))

	_, err = svc.GetSearchConfig(ctx, cfg.ID)
	assert.True(t, errs.IsNotFound(err))
}
