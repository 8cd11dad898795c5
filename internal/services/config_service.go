package services

import (
	"context"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/ragbench/ragbench/internal/db"
	"github.com/ragbench/ragbench/internal/errs"
	"github.com/ragbench/ragbench/internal/llm"
	"github.com/ragbench/ragbench/internal/models"
)

// ConfigService owns the lifecycle of LLM and search connection profiles:
// field validation, per-type name uniqueness and connection verification.
// Deleting a config never touches historical runs; runs embed snapshots.
type ConfigService struct {
	db       db.ConfigDatabase
	registry *llm.Registry
}

// NewConfigService creates a new config service
func NewConfigService(database db.ConfigDatabase, registry *llm.Registry) *ConfigService {
	return &ConfigService{db: database, registry: registry}
}

func validateURLField(field, value string) error {
	if value == "" {
		return errs.Validation(field, "must not be empty")
	}
	u, err := url.Parse(value)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errs.Validation(field, "%q is not a valid URL", value)
	}
	return nil
}

func (s *ConfigService) validateLLMConfig(cfg *models.LLMConfig) error {
	if cfg.Name == "" {
		return errs.Validation("name", "must not be empty")
	}
	if err := validateURLField("chat_endpoint", cfg.ChatEndpoint); err != nil {
		return err
	}
	if cfg.Temperature < 0.0 || cfg.Temperature > 2.0 {
		return errs.Validation("temperature", "%g is out of range [0.0, 2.0]", cfg.Temperature)
	}
	if cfg.MaxTokens <= 0 {
		return errs.Validation("max_tokens", "%d must be a positive integer", cfg.MaxTokens)
	}
	return nil
}

// llmNameTaken reports whether another LLM config (id != selfID) holds name.
// Exact, case-sensitive match. This is an early check for a clean error
// message; the store enforces uniqueness atomically, so concurrent writers
// racing past this check still cannot create a duplicate.
func (s *ConfigService) llmNameTaken(ctx context.Context, name, selfID string) (bool, error) {
	existing, err := s.db.GetLLMConfigByName(ctx, name)
	if err != nil {
		return false, err
	}
	return existing != nil && existing.ID != selfID, nil
}

// CreateLLMConfig validates and stores a new LLM connection profile
func (s *ConfigService) CreateLLMConfig(ctx context.Context, cfg *models.LLMConfig) error {
	if err := s.validateLLMConfig(cfg); err != nil {
		return err
	}

	taken, err := s.llmNameTaken(ctx, cfg.Name, "")
	if err != nil {
		return err
	}
	if taken {
		return errs.Validation("name", "an llm config named %q already exists", cfg.Name)
	}

	now := time.Now().UTC()
	cfg.ID = uuid.New().String()
	cfg.CreatedAt = now
	cfg.UpdatedAt = now

	return s.db.CreateLLMConfig(ctx, cfg)
}

// UpdateLLMConfig validates and replaces the fields of an existing profile
func (s *ConfigService) UpdateLLMConfig(ctx context.Context, id string, cfg *models.LLMConfig) error {
	existing, err := s.db.GetLLMConfig(ctx, id)
	if err != nil {
		return err
	}

	if err := s.validateLLMConfig(cfg); err != nil {
		return err
	}

	taken, err := s.llmNameTaken(ctx, cfg.Name, id)
	if err != nil {
		return err
	}
	if taken {
		return errs.Validation("name", "an llm config named %q already exists", cfg.Name)
	}

	cfg.ID = id
	cfg.CreatedAt = existing.CreatedAt
	cfg.UpdatedAt = time.Now().UTC()

	return s.db.UpdateLLMConfig(ctx, cfg)
}

// DeleteLLMConfig deletes a profile unconditionally; historical runs keep
// their snapshots
func (s *ConfigService) DeleteLLMConfig(ctx context.Context, id string) error {
	return s.db.DeleteLLMConfig(ctx, id)
}

// GetLLMConfig retrieves a profile by id
func (s *ConfigService) GetLLMConfig(ctx context.Context, id string) (*models.LLMConfig, error) {
	return s.db.GetLLMConfig(ctx, id)
}

// ListLLMConfigs lists profiles in creation order
func (s *ConfigService) ListLLMConfigs(ctx context.Context) ([]*models.LLMConfig, error) {
	return s.db.ListLLMConfigs(ctx)
}

// VerifyLLMConfig issues a one-shot connection probe through the provider
// registered for the config's provider key
func (s *ConfigService) VerifyLLMConfig(ctx context.Context, id string) (*llm.Probe, error) {
	cfg, err := s.db.GetLLMConfig(ctx, id)
	if err != nil {
		return nil, err
	}

	provider, ok := s.registry.Get(cfg.Provider)
	if !ok {
		return nil, errs.Validation("provider", "no provider registered for %q", cfg.Provider)
	}

	return provider.Verify(ctx, cfg)
}

func (s *ConfigService) validateSearchConfig(cfg *models.SearchConfig) error {
	if cfg.Name == "" {
		return errs.Validation("name", "must not be empty")
	}
	return validateURLField("search_service_endpoint", cfg.SearchServiceEndpoint)
}

func (s *ConfigService) searchNameTaken(ctx context.Context, name, selfID string) (bool, error) {
	existing, err := s.db.GetSearchConfigByName(ctx, name)
	if err != nil {
		return false, err
	}
	return existing != nil && existing.ID != selfID, nil
}

// CreateSearchConfig validates and stores a new search connection profile
func (s *ConfigService) CreateSearchConfig(ctx context.Context, cfg *models.SearchConfig) error {
	if err := s.validateSearchConfig(cfg); err != nil {
		return err
	}

	taken, err := s.searchNameTaken(ctx, cfg.Name, "")
	if err != nil {
		return err
	}
	if taken {
		return errs.Validation("name", "a search config named %q already exists", cfg.Name)
	}

	now := time.Now().UTC()
	cfg.ID = uuid.New().String()
	cfg.CreatedAt = now
	cfg.UpdatedAt = now

	return s.db.CreateSearchConfig(ctx, cfg)
}

// UpdateSearchConfig validates and replaces the fields of an existing profile
func (s *ConfigService) UpdateSearchConfig(ctx context.Context, id string, cfg *models.SearchConfig) error {
	existing, err := s.db.GetSearchConfig(ctx, id)
	if err != nil {
		return err
	}

	if err := s.validateSearchConfig(cfg); err != nil {
		return err
	}

	taken, err := s.searchNameTaken(ctx, cfg.Name, id)
	if err != nil {
		return err
	}
	if taken {
		return errs.Validation("name", "a search config named %q already exists", cfg.Name)
	}

	cfg.ID = id
	cfg.CreatedAt = existing.CreatedAt
	cfg.UpdatedAt = time.Now().UTC()

	return s.db.UpdateSearchConfig(ctx, cfg)
}

// DeleteSearchConfig deletes a profile unconditionally
func (s *ConfigService) DeleteSearchConfig(ctx context.Context, id string) error {
	return s.db.DeleteSearchConfig(ctx, id)
}

// GetSearchConfig retrieves a profile by id
func (s *ConfigService) GetSearchConfig(ctx context.Context, id string) (*models.SearchConfig, error) {
	return s.db.GetSearchConfig(ctx, id)
}

// ListSearchConfigs lists profiles in creation order
func (s *ConfigService) ListSearchConfigs(ctx context.Context) ([]*models.SearchConfig, error) {
	return s.db.ListSearchConfigs(ctx)
}
