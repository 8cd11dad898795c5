package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ragbench/ragbench/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize ragbench configuration",
	Long:  `Interactive wizard to set up ragbench configuration including databases and the scoring pipeline endpoint.`,
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("🚀 Welcome to Ragbench - RAG Evaluation Setup")
	fmt.Println("=============================================")
	fmt.Println()

	// Check if config already exists
	configPath := config.GetConfigPath()
	if config.Exists(configPath) {
		fmt.Printf("Configuration file already exists at: %s\n", configPath)
		confirmed, err := promptYesNo(reader, "Do you want to overwrite it? (y/N): ")
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Setup cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()

	// Database configuration
	fmt.Println("\n📊 Database Configuration")
	fmt.Println("--------------------------")

	sqlitePath, err := promptOptional(reader, "SQLite path for configs and schedules [ragbench.db]: ", "ragbench.db")
	if err != nil {
		return err
	}
	cfg.SQLDatabase.URI = sqlitePath

	mongoURI, err := promptOptional(reader, "MongoDB URI for evaluation runs [mongodb://localhost:27017]: ", "mongodb://localhost:27017")
	if err != nil {
		return err
	}
	cfg.NoSQLDatabase.URI = mongoURI

	mongoName, err := promptOptional(reader, "MongoDB database name [ragbench]: ", "ragbench")
	if err != nil {
		return err
	}
	cfg.NoSQLDatabase.Database = mongoName

	// Scoring pipeline configuration
	fmt.Println("\n🧪 Scoring Pipeline Configuration")
	fmt.Println("----------------------------------")

	scorerEndpoint, err := promptOptional(reader, "RAGAS scoring endpoint [http://localhost:8000/score]: ", "http://localhost:8000/score")
	if err != nil {
		return err
	}
	cfg.Scorer.Endpoint = scorerEndpoint

	// Test database connections
	fmt.Println("\n🔌 Testing database connections...")

	testDB, err := newDatabase(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := testDB.Connect(ctx); err != nil {
		fmt.Printf("❌ Failed to connect to databases: %v\n", err)
		fmt.Println("\nPlease check your database configuration and try again.")
		return err
	}
	defer testDB.Disconnect(ctx)

	if err := testDB.Ping(ctx); err != nil {
		fmt.Printf("❌ Failed to ping databases: %v\n", err)
		return err
	}

	fmt.Println("✅ Database connections successful!")

	// Save configuration
	fmt.Println("\n💾 Saving configuration...")
	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("✅ Configuration saved to: %s\n", configPath)

	// Summary
	fmt.Println("\n📋 Configuration Summary")
	fmt.Println("========================")
	fmt.Printf("SQLite: %s\n", cfg.SQLDatabase.URI)
	fmt.Printf("MongoDB: %s (%s)\n", cfg.NoSQLDatabase.URI, cfg.NoSQLDatabase.Database)
	fmt.Printf("Scoring endpoint: %s\n", cfg.Scorer.Endpoint)
	fmt.Println()
	fmt.Println("🎉 Setup complete! You can now use ragbench.")
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Apply the database schema: ragbench migrate up")
	fmt.Println("  2. Start the API server: ragbench api")
	fmt.Println("  3. Submit an evaluation: ragbench submit --help")

	return nil
}
