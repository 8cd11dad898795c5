package db

import (
	"context"

	"github.com/ragbench/ragbench/internal/models"
)

// Config holds database connection configuration
type Config struct {
	Provider string            // sqlite, mongodb, memory
	URI      string            // Connection URI
	Database string            // Database name
	Options  map[string]string // Provider-specific options
}

// ConfigDatabase defines the interface for configuration and schedule
// persistence (the SQL side of the hybrid setup).
//
// Lookups by unknown id return a NotFoundError. GetLLMConfigByName and
// GetSearchConfigByName return (nil, nil) when no config carries the name,
// so uniqueness checks can distinguish absence from failure. Create and
// Update enforce per-type name uniqueness atomically and return a
// ValidationError when a name is already taken; under concurrent writers
// exactly one write on a contested name succeeds. List operations return
// entities in creation order.
type ConfigDatabase interface {
	// Connection management
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Ping(ctx context.Context) error

	// LLM config operations
	CreateLLMConfig(ctx context.Context, cfg *models.LLMConfig) error
	GetLLMConfig(ctx context.Context, id string) (*models.LLMConfig, error)
	GetLLMConfigByName(ctx context.Context, name string) (*models.LLMConfig, error)
	ListLLMConfigs(ctx context.Context) ([]*models.LLMConfig, error)
	UpdateLLMConfig(ctx context.Context, cfg *models.LLMConfig) error
	DeleteLLMConfig(ctx context.Context, id string) error

	// Search config operations
	CreateSearchConfig(ctx context.Context, cfg *models.SearchConfig) error
	GetSearchConfig(ctx context.Context, id string) (*models.SearchConfig, error)
	GetSearchConfigByName(ctx context.Context, name string) (*models.SearchConfig, error)
	ListSearchConfigs(ctx context.Context) ([]*models.SearchConfig, error)
	UpdateSearchConfig(ctx context.Context, cfg *models.SearchConfig) error
	DeleteSearchConfig(ctx context.Context, id string) error

	// Schedule operations
	CreateSchedule(ctx context.Context, schedule *models.Schedule) error
	GetSchedule(ctx context.Context, id string) (*models.Schedule, error)
	ListSchedules(ctx context.Context, enabled *bool) ([]*models.Schedule, error)
	UpdateSchedule(ctx context.Context, schedule *models.Schedule) error
	DeleteSchedule(ctx context.Context, id string) error
}

// RunDatabase defines the interface for evaluation run persistence (the
// document side of the hybrid setup). Runs are append-only: saved once,
// then only read or deleted as a whole. ListRuns returns runs ordered by
// created_at descending.
type RunDatabase interface {
	// Connection management
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Ping(ctx context.Context) error

	// Run operations
	SaveRun(ctx context.Context, run *models.EvaluationRun) error
	GetRun(ctx context.Context, id string) (*models.EvaluationRun, error)
	ListRuns(ctx context.Context) ([]*models.EvaluationRun, error)
	DeleteRun(ctx context.Context, id string) error
}

// Database combines both sides for callers that need the full store.
type Database interface {
	ConfigDatabase
	RunDatabase
}
