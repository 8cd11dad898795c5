package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ragbench/ragbench/internal/config"
	"github.com/ragbench/ragbench/internal/dataset"
	"github.com/ragbench/ragbench/internal/db"
	"github.com/ragbench/ragbench/internal/db/memory"
	"github.com/ragbench/ragbench/internal/db/mongodb"
	"github.com/ragbench/ragbench/internal/db/sqlite"
	"github.com/ragbench/ragbench/internal/llm"
	"github.com/ragbench/ragbench/internal/llm/azure"
	"github.com/ragbench/ragbench/internal/llm/google"
	"github.com/ragbench/ragbench/internal/llm/perplexity"
	"github.com/ragbench/ragbench/internal/logger"
	"github.com/ragbench/ragbench/internal/scheduler"
	"github.com/ragbench/ragbench/internal/scoring/remote"
	"github.com/ragbench/ragbench/internal/services"
)

var (
	cfgFile     string
	cfg         *config.Config
	database    *db.Hybrid
	llmRegistry *llm.Registry
	stager      *dataset.Stager
	configSvc   *services.ConfigService
	evalSvc     *services.EvaluationService
	compareSvc  *services.ComparisonService
	sched       *scheduler.Scheduler
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ragbench",
	Short: "RAG evaluation orchestration for RAGAS pipelines",
	Long: `Ragbench manages LLM and search connection profiles, stages test
datasets, and submits evaluation requests to an external RAGAS scoring
pipeline.

Every submission is persisted as an immutable run, so configurations can be
edited or deleted without losing the exact parameters a past evaluation ran
with. Runs can be compared metric by metric and re-submitted on a schedule.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip init for commands that manage the config or schema themselves
		if cmd.Name() == "init" || isMigrateCommand(cmd) {
			return nil
		}

		// Load configuration
		if cfgFile == "" {
			cfgFile = config.GetConfigPath()
		}

		if !config.Exists(cfgFile) {
			return fmt.Errorf("configuration file not found. Run 'ragbench init' to create one")
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger.Init(logger.ParseLogLevel(cfg.LogLevel), os.Stderr)

		database, err = newDatabase(cfg)
		if err != nil {
			return err
		}

		if err := database.Connect(context.Background()); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}

		// Initialize LLM registry with connection probes per provider
		llmRegistry = llm.NewRegistry()
		llmRegistry.Register(azure.New())
		llmRegistry.Register(google.New())
		llmRegistry.Register(perplexity.New())

		// Wire the services
		stager = dataset.NewStager()
		scorer := remote.New(cfg.Scorer.Endpoint, cfg.Scorer.Timeout, cfg.Scorer.RequestsPerMin)
		builder := services.NewRequestBuilder(database, stager)

		configSvc = services.NewConfigService(database, llmRegistry)
		evalSvc = services.NewEvaluationService(builder, database, scorer, cfg.Scorer.Timeout)
		compareSvc = services.NewComparisonService(database)
		sched = scheduler.New(database, evalSvc)

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if database != nil {
			return database.Disconnect(context.Background())
		}
		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.ragbench/config.yaml)")

	// Disable completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Add subcommands
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(apiCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(scheduleCmd)
}

func isMigrateCommand(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "migrate" {
			return true
		}
	}
	return false
}

// newDatabase builds the hybrid store from the configured providers:
// sqlite (or memory) for configs and schedules, mongodb (or memory) for
// evaluation runs. A single memory store is shared when both sides use it.
func newDatabase(cfg *config.Config) (*db.Hybrid, error) {
	if cfg.SQLDatabase.Provider == "memory" && cfg.NoSQLDatabase.Provider == "memory" {
		mem := memory.New()
		return db.NewHybrid(mem, mem), nil
	}

	var cfgDB db.ConfigDatabase
	switch cfg.SQLDatabase.Provider {
	case "sqlite":
		s, err := sqlite.New(&db.Config{
			Provider: cfg.SQLDatabase.Provider,
			URI:      cfg.SQLDatabase.URI,
			Database: cfg.SQLDatabase.Database,
			Options:  cfg.SQLDatabase.Options,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create config database: %w", err)
		}
		cfgDB = s
	case "memory":
		cfgDB = memory.New()
	default:
		return nil, fmt.Errorf("unsupported sql database provider: %s", cfg.SQLDatabase.Provider)
	}

	var runDB db.RunDatabase
	switch cfg.NoSQLDatabase.Provider {
	case "mongodb":
		m, err := mongodb.New(&db.Config{
			Provider: cfg.NoSQLDatabase.Provider,
			URI:      cfg.NoSQLDatabase.URI,
			Database: cfg.NoSQLDatabase.Database,
			Options:  cfg.NoSQLDatabase.Options,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create run database: %w", err)
		}
		runDB = m
	case "memory":
		runDB = memory.New()
	default:
		return nil, fmt.Errorf("unsupported nosql database provider: %s", cfg.NoSQLDatabase.Provider)
	}

	return db.NewHybrid(cfgDB, runDB), nil
}
