package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ragbench/ragbench/internal/api"
	"github.com/ragbench/ragbench/internal/logger"
	"github.com/ragbench/ragbench/internal/search"
)

var (
	apiPort    string
	apiHost    string
	corsOrigin string
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the Ragbench REST API server",
	Long: `Start the Ragbench REST API server with full CRUD operations for:
- LLM configs (Create, Read, Update, Delete, Verify)
- Search configs (Create, Read, Update, Delete)
- Datasets (stage uploads, sample download)
- Evaluations (submit, list, get, delete, compare)
- Schedules (Create, Read, Update, Delete, Execute)

The scheduler runs alongside the server so enabled schedules tick.
The API runs on HTTP (no authentication required for now).`,
	RunE: runAPI,
}

func init() {
	apiCmd.Flags().StringVarP(&apiPort, "port", "p", "8989", "Port to run the API server on")
	apiCmd.Flags().StringVarP(&apiHost, "host", "H", "0.0.0.0", "Host to bind the API server to")
	apiCmd.Flags().StringVarP(&corsOrigin, "cors-origin", "c", "", "CORS origin to allow (overrides config file, use '*' for all origins)")
}

func runAPI(cmd *cobra.Command, args []string) error {
	selectedCORSOrigin := corsOrigin
	if selectedCORSOrigin == "" {
		if cfg.CORSOrigin != "" {
			selectedCORSOrigin = cfg.CORSOrigin
		} else {
			selectedCORSOrigin = "*"
		}
	}

	fmt.Printf("🚀 Starting Ragbench API Server\n")
	fmt.Printf("===============================\n")
	fmt.Printf("Host: %s\n", apiHost)
	fmt.Printf("Port: %s\n", apiPort)
	fmt.Printf("CORS Origin: %s\n", selectedCORSOrigin)
	fmt.Printf("URL: http://%s:%s/api/v1\n", apiHost, apiPort)
	fmt.Println()

	ctx := context.Background()
	if err := database.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	fmt.Println("✅ Database connection successful!")

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	server := api.NewServer(api.Deps{
		Configs:     configSvc,
		Evals:       evalSvc,
		Comparisons: compareSvc,
		Stager:      stager,
		SearchMeta:  search.NewClient(),
		DB:          database,
		Scheduler:   sched,
	}, selectedCORSOrigin)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Println("\n🛑 Shutting down API server...")
		sched.Stop()
		if err := database.Disconnect(ctx); err != nil {
			logger.Error("Failed to disconnect database: %v", err)
		}
		os.Exit(0)
	}()

	fmt.Println("🌐 API Server is running!")
	fmt.Println()
	fmt.Println("📚 Available Endpoints:")
	fmt.Println("  LLM configs:")
	fmt.Println("    GET    /api/v1/llm-configs            - List all LLM configs")
	fmt.Println("    GET    /api/v1/llm-configs/:id        - Get specific LLM config")
	fmt.Println("    POST   /api/v1/llm-configs            - Create new LLM config")
	fmt.Println("    PUT    /api/v1/llm-configs/:id        - Update LLM config")
	fmt.Println("    DELETE /api/v1/llm-configs/:id        - Delete LLM config")
	fmt.Println("    POST   /api/v1/llm-configs/:id/verify - Probe the configured endpoint")
	fmt.Println()
	fmt.Println("  Search configs:")
	fmt.Println("    GET    /api/v1/search-configs         - List all search configs")
	fmt.Println("    GET    /api/v1/search-configs/:id     - Get specific search config")
	fmt.Println("    POST   /api/v1/search-configs         - Create new search config")
	fmt.Println("    PUT    /api/v1/search-configs/:id     - Update search config")
	fmt.Println("    DELETE /api/v1/search-configs/:id     - Delete search config")
	fmt.Println("    GET    /api/v1/search-indexes/:id     - List indexes of a search service")
	fmt.Println()
	fmt.Println("  Datasets:")
	fmt.Println("    POST   /api/v1/datasets/stage         - Stage a test dataset")
	fmt.Println("    GET    /api/v1/datasets/sample        - Download a sample dataset")
	fmt.Println()
	fmt.Println("  Evaluations:")
	fmt.Println("    POST   /api/v1/evaluations            - Submit an evaluation")
	fmt.Println("    GET    /api/v1/evaluations            - List all runs")
	fmt.Println("    GET    /api/v1/evaluations/:id        - Get specific run")
	fmt.Println("    DELETE /api/v1/evaluations/:id        - Delete run")
	fmt.Println("    GET    /api/v1/comparisons            - Compare two runs")
	fmt.Println()
	fmt.Println("  Schedules:")
	fmt.Println("    GET    /api/v1/schedules              - List all schedules")
	fmt.Println("    GET    /api/v1/schedules/:id          - Get specific schedule")
	fmt.Println("    POST   /api/v1/schedules              - Create new schedule")
	fmt.Println("    PUT    /api/v1/schedules/:id          - Update schedule")
	fmt.Println("    DELETE /api/v1/schedules/:id          - Delete schedule")
	fmt.Println("    POST   /api/v1/schedules/:id/execute  - Execute schedule now")
	fmt.Println()
	fmt.Println("    GET    /api/v1/health                 - Health check")
	fmt.Println()
	fmt.Println("Press Ctrl+C to stop the server")

	address := fmt.Sprintf("%s:%s", apiHost, apiPort)
	return server.Run(address)
}
