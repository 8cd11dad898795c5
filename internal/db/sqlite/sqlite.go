package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/ragbench/ragbench/internal/db"
	"github.com/ragbench/ragbench/internal/errs"
	"github.com/ragbench/ragbench/internal/models"
)

// SQLite implements the ConfigDatabase interface for SQLite
type SQLite struct {
	db     *sql.DB
	config *db.Config
}

// New creates a new SQLite database instance
func New(config *db.Config) (*SQLite, error) {
	return &SQLite{
		config: config,
	}, nil
}

// Connect establishes connection to SQLite
func (s *SQLite) Connect(ctx context.Context) error {
	// Expand the URI path (handle ~ and relative paths)
	dbPath := s.config.URI
	if strings.HasPrefix(dbPath, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	} else if !filepath.IsAbs(dbPath) {
		absPath, err := filepath.Abs(dbPath)
		if err != nil {
			return fmt.Errorf("failed to resolve absolute path: %w", err)
		}
		dbPath = absPath
	}

	// Ensure the directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open SQLite database at path '%s': %w", dbPath, err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping SQLite database at path '%s': %w", dbPath, err)
	}

	s.db = sqlDB

	if err := s.createTables(ctx); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// Disconnect closes the SQLite connection
func (s *SQLite) Disconnect(ctx context.Context) error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping checks the database connection
func (s *SQLite) Ping(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("not connected to database")
	}
	return s.db.PingContext(ctx)
}

// DB exposes the underlying handle for migrations.
func (s *SQLite) DB() *sql.DB {
	return s.db
}

// createTables creates necessary tables
func (s *SQLite) createTables(ctx context.Context) error {
	createLLMConfigsTable := `
	CREATE TABLE IF NOT EXISTS llm_configs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		provider TEXT NOT NULL,
		chat_endpoint TEXT NOT NULL,
		deployment_name TEXT NOT NULL,
		api_version TEXT NOT NULL,
		subscription_key TEXT NOT NULL,
		temperature REAL NOT NULL,
		max_tokens INTEGER NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);`

	createSearchConfigsTable := `
	CREATE TABLE IF NOT EXISTS search_configs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		search_service_endpoint TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);`

	createSchedulesTable := `
	CREATE TABLE IF NOT EXISTS schedules (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		run_id TEXT NOT NULL,
		cron_expr TEXT NOT NULL,
		enabled BOOLEAN NOT NULL DEFAULT 1,
		last_run DATETIME,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);`

	createIndexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_llm_configs_created ON llm_configs(created_at);",
		"CREATE INDEX IF NOT EXISTS idx_search_configs_created ON search_configs(created_at);",
		"CREATE INDEX IF NOT EXISTS idx_schedules_enabled ON schedules(enabled);",
	}

	queries := []string{createLLMConfigsTable, createSearchConfigsTable, createSchedulesTable}
	queries = append(queries, createIndexes...)

	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}

	return nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
// The name columns carry UNIQUE constraints, so this is how concurrent
// writers racing on the same name lose.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// LLM config operations

// CreateLLMConfig creates a new LLM connection profile
func (s *SQLite) CreateLLMConfig(ctx context.Context, cfg *models.LLMConfig) error {
	query := `
		INSERT INTO llm_configs (id, name, provider, chat_endpoint, deployment_name, api_version, subscription_key, temperature, max_tokens, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		cfg.ID,
		cfg.Name,
		cfg.Provider,
		cfg.ChatEndpoint,
		cfg.DeploymentName,
		cfg.APIVersion,
		cfg.SubscriptionKey,
		cfg.Temperature,
		cfg.MaxTokens,
		cfg.CreatedAt,
		cfg.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return errs.Validation("name", "an llm config named %q already exists", cfg.Name)
	}

	return err
}

func scanLLMConfig(row interface {
	Scan(dest ...interface{}) error
}) (*models.LLMConfig, error) {
	var cfg models.LLMConfig
	err := row.Scan(
		&cfg.ID,
		&cfg.Name,
		&cfg.Provider,
		&cfg.ChatEndpoint,
		&cfg.DeploymentName,
		&cfg.APIVersion,
		&cfg.SubscriptionKey,
		&cfg.Temperature,
		&cfg.MaxTokens,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

const llmConfigColumns = "id, name, provider, chat_endpoint, deployment_name, api_version, subscription_key, temperature, max_tokens, created_at, updated_at"

// GetLLMConfig retrieves an LLM config by ID
func (s *SQLite) GetLLMConfig(ctx context.Context, id string) (*models.LLMConfig, error) {
	query := "SELECT " + llmConfigColumns + " FROM llm_configs WHERE id = ?"

	cfg, err := scanLLMConfig(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("llm config", id)
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// GetLLMConfigByName retrieves an LLM config by exact name, nil when absent
func (s *SQLite) GetLLMConfigByName(ctx context.Context, name string) (*models.LLMConfig, error) {
	query := "SELECT " + llmConfigColumns + " FROM llm_configs WHERE name = ?"

	cfg, err := scanLLMConfig(s.db.QueryRowContext(ctx, query, name))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// ListLLMConfigs lists all LLM configs in creation order
func (s *SQLite) ListLLMConfigs(ctx context.Context) ([]*models.LLMConfig, error) {
	query := "SELECT " + llmConfigColumns + " FROM llm_configs ORDER BY created_at ASC, rowid ASC"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []*models.LLMConfig
	for rows.Next() {
		cfg, err := scanLLMConfig(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}

	return configs, rows.Err()
}

// UpdateLLMConfig updates an existing LLM config
func (s *SQLite) UpdateLLMConfig(ctx context.Context, cfg *models.LLMConfig) error {
	query := `
		UPDATE llm_configs
		SET name = ?, provider = ?, chat_endpoint = ?, deployment_name = ?, api_version = ?, subscription_key = ?, temperature = ?, max_tokens = ?, updated_at = ?
		WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query,
		cfg.Name,
		cfg.Provider,
		cfg.ChatEndpoint,
		cfg.DeploymentName,
		cfg.APIVersion,
		cfg.SubscriptionKey,
		cfg.Temperature,
		cfg.MaxTokens,
		cfg.UpdatedAt,
		cfg.ID,
	)
	if isUniqueViolation(err) {
		return errs.Validation("name", "an llm config named %q already exists", cfg.Name)
	}
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return errs.NotFound("llm config", cfg.ID)
	}

	return nil
}

// DeleteLLMConfig deletes an LLM config. Historical runs are unaffected:
// they hold value snapshots, not references.
func (s *SQLite) DeleteLLMConfig(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM llm_configs WHERE id = ?", id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return errs.NotFound("llm config", id)
	}

	return nil
}

// Search config operations

const searchConfigColumns = "id, name, search_service_endpoint, created_at, updated_at"

func scanSearchConfig(row interface {
	Scan(dest ...interface{}) error
}) (*models.SearchConfig, error) {
	var cfg models.SearchConfig
	err := row.Scan(
		&cfg.ID,
		&cfg.Name,
		&cfg.SearchServiceEndpoint,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// CreateSearchConfig creates a new search connection profile
func (s *SQLite) CreateSearchConfig(ctx context.Context, cfg *models.SearchConfig) error {
	query := `
		INSERT INTO search_configs (id, name, search_service_endpoint, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		cfg.ID,
		cfg.Name,
		cfg.SearchServiceEndpoint,
		cfg.CreatedAt,
		cfg.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return errs.Validation("name", "a search config named %q already exists", cfg.Name)
	}

	return err
}

// GetSearchConfig retrieves a search config by ID
func (s *SQLite) GetSearchConfig(ctx context.Context, id string) (*models.SearchConfig, error) {
	query := "SELECT " + searchConfigColumns + " FROM search_configs WHERE id = ?"

	cfg, err := scanSearchConfig(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("search config", id)
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// GetSearchConfigByName retrieves a search config by exact name, nil when absent
func (s *SQLite) GetSearchConfigByName(ctx context.Context, name string) (*models.SearchConfig, error) {
	query := "SELECT " + searchConfigColumns + " FROM search_configs WHERE name = ?"

	cfg, err := scanSearchConfig(s.db.QueryRowContext(ctx, query, name))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// ListSearchConfigs lists all search configs in creation order
func (s *SQLite) ListSearchConfigs(ctx context.Context) ([]*models.SearchConfig, error) {
	query := "SELECT " + searchConfigColumns + " FROM search_configs ORDER BY created_at ASC, rowid ASC"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []*models.SearchConfig
	for rows.Next() {
		cfg, err := scanSearchConfig(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}

	return configs, rows.Err()
}

// UpdateSearchConfig updates an existing search config
func (s *SQLite) UpdateSearchConfig(ctx context.Context, cfg *models.SearchConfig) error {
	query := `
		UPDATE search_configs
		SET name = ?, search_service_endpoint = ?, updated_at = ?
		WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query,
		cfg.Name,
		cfg.SearchServiceEndpoint,
		cfg.UpdatedAt,
		cfg.ID,
	)
	if isUniqueViolation(err) {
		return errs.Validation("name", "a search config named %q already exists", cfg.Name)
	}
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return errs.NotFound("search config", cfg.ID)
	}

	return nil
}

// DeleteSearchConfig deletes a search config
func (s *SQLite) DeleteSearchConfig(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM search_configs WHERE id = ?", id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return errs.NotFound("search config", id)
	}

	return nil
}

// Schedule operations

const scheduleColumns = "id, name, run_id, cron_expr, enabled, last_run, created_at, updated_at"

func scanSchedule(row interface {
	Scan(dest ...interface{}) error
}) (*models.Schedule, error) {
	var schedule models.Schedule
	var lastRun sql.NullTime
	err := row.Scan(
		&schedule.ID,
		&schedule.Name,
		&schedule.RunID,
		&schedule.CronExpr,
		&schedule.Enabled,
		&lastRun,
		&schedule.CreatedAt,
		&schedule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastRun.Valid {
		t := lastRun.Time
		schedule.LastRun = &t
	}
	return &schedule, nil
}

// CreateSchedule creates a new schedule
func (s *SQLite) CreateSchedule(ctx context.Context, schedule *models.Schedule) error {
	query := `
		INSERT INTO schedules (id, name, run_id, cron_expr, enabled, last_run, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		schedule.ID,
		schedule.Name,
		schedule.RunID,
		schedule.CronExpr,
		schedule.Enabled,
		schedule.LastRun,
		schedule.CreatedAt,
		schedule.UpdatedAt,
	)

	return err
}

// GetSchedule retrieves a schedule by ID
func (s *SQLite) GetSchedule(ctx context.Context, id string) (*models.Schedule, error) {
	query := "SELECT " + scheduleColumns + " FROM schedules WHERE id = ?"

	schedule, err := scanSchedule(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("schedule", id)
	}
	if err != nil {
		return nil, err
	}
	return schedule, nil
}

// ListSchedules lists all schedules, optionally filtered by enabled status
func (s *SQLite) ListSchedules(ctx context.Context, enabled *bool) ([]*models.Schedule, error) {
	query := "SELECT " + scheduleColumns + " FROM schedules"
	args := []interface{}{}

	if enabled != nil {
		query += " WHERE enabled = ?"
		args = append(args, *enabled)
	}

	query += " ORDER BY created_at ASC, rowid ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedules []*models.Schedule
	for rows.Next() {
		schedule, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, schedule)
	}

	return schedules, rows.Err()
}

// UpdateSchedule updates an existing schedule
func (s *SQLite) UpdateSchedule(ctx context.Context, schedule *models.Schedule) error {
	query := `
		UPDATE schedules
		SET name = ?, run_id = ?, cron_expr = ?, enabled = ?, last_run = ?, updated_at = ?
		WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query,
		schedule.Name,
		schedule.RunID,
		schedule.CronExpr,
		schedule.Enabled,
		schedule.LastRun,
		schedule.UpdatedAt,
		schedule.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return errs.NotFound("schedule", schedule.ID)
	}

	return nil
}

// DeleteSchedule deletes a schedule
func (s *SQLite) DeleteSchedule(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM schedules WHERE id = ?", id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return errs.NotFound("schedule", id)
	}

	return nil
}
