package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ragbench/ragbench/internal/dataset"
	"github.com/ragbench/ragbench/internal/db"
	"github.com/ragbench/ragbench/internal/errs"
	"github.com/ragbench/ragbench/internal/scheduler"
	"github.com/ragbench/ragbench/internal/search"
	"github.com/ragbench/ragbench/internal/services"
)

// APIResponse is the standard response envelope
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Server wires the orchestration services behind a REST API
type Server struct {
	router      *gin.Engine
	configs     *services.ConfigService
	evals       *services.EvaluationService
	comparisons *services.ComparisonService
	stager      *dataset.Stager
	searchMeta  *search.Client
	db          db.ConfigDatabase
	sched       *scheduler.Scheduler
}

// Deps carries the server's collaborators.
type Deps struct {
	Configs     *services.ConfigService
	Evals       *services.EvaluationService
	Comparisons *services.ComparisonService
	Stager      *dataset.Stager
	SearchMeta  *search.Client
	DB          db.ConfigDatabase
	Scheduler   *scheduler.Scheduler // optional; schedule reloads are skipped when nil
}

// NewServer creates the API server and registers all routes
func NewServer(deps Deps, corsOrigin string) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		router:      gin.New(),
		configs:     deps.Configs,
		evals:       deps.Evals,
		comparisons: deps.Comparisons,
		stager:      deps.Stager,
		searchMeta:  deps.SearchMeta,
		db:          deps.DB,
		sched:       deps.Scheduler,
	}

	s.router.Use(gin.Recovery())
	s.router.Use(corsMiddleware(corsOrigin))
	s.registerRoutes()

	return s
}

// Run starts the HTTP server on address
func (s *Server) Run(address string) error {
	return s.router.Run(address)
}

// Router exposes the gin engine for tests
func (s *Server) Router() *gin.Engine {
	return s.router
}

func corsMiddleware(origin string) gin.HandlerFunc {
	if origin == "" {
		origin = "*"
	}
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, X-Session-Id, X-Search-Api-Key")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (s *Server) registerRoutes() {
	v1 := s.router.Group("/api/v1")

	v1.GET("/health", s.health)

	v1.GET("/llm-configs", s.listLLMConfigs)
	v1.POST("/llm-configs", s.createLLMConfig)
	v1.GET("/llm-configs/:id", s.getLLMConfig)
	v1.PUT("/llm-configs/:id", s.updateLLMConfig)
	v1.DELETE("/llm-configs/:id", s.deleteLLMConfig)
	v1.POST("/llm-configs/:id/verify", s.verifyLLMConfig)

	v1.GET("/search-configs", s.listSearchConfigs)
	v1.POST("/search-configs", s.createSearchConfig)
	v1.GET("/search-configs/:id", s.getSearchConfig)
	v1.PUT("/search-configs/:id", s.updateSearchConfig)
	v1.DELETE("/search-configs/:id", s.deleteSearchConfig)
	v1.GET("/search-indexes/:id", s.listSearchIndexes)

	v1.POST("/datasets/stage", s.stageDataset)
	v1.GET("/datasets/sample", s.sampleDataset)

	v1.POST("/evaluations", s.submitEvaluation)
	v1.GET("/evaluations", s.listEvaluations)
	v1.GET("/evaluations/:id", s.getEvaluation)
	v1.DELETE("/evaluations/:id", s.deleteEvaluation)
	v1.GET("/comparisons", s.compareEvaluations)

	v1.GET("/schedules", s.listSchedules)
	v1.POST("/schedules", s.createSchedule)
	v1.GET("/schedules/:id", s.getSchedule)
	v1.PUT("/schedules/:id", s.updateSchedule)
	v1.DELETE("/schedules/:id", s.deleteSchedule)
	v1.POST("/schedules/:id/execute", s.executeSchedule)
}

func (s *Server) health(c *gin.Context) {
	s.successResponse(c, gin.H{"status": "ok"})
}

func (s *Server) successResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

func (s *Server) errorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   message,
	})
}

// handleError maps the core error taxonomy onto HTTP statuses:
// ValidationError 400, NotFoundError 404, ScoringError 502, anything
// else 500.
func (s *Server) handleError(c *gin.Context, err error) {
	switch {
	case errs.IsValidation(err):
		s.errorResponse(c, http.StatusBadRequest, err.Error())
	case errs.IsNotFound(err):
		s.errorResponse(c, http.StatusNotFound, err.Error())
	case errs.IsScoring(err):
		s.errorResponse(c, http.StatusBadGateway, err.Error())
	default:
		s.errorResponse(c, http.StatusInternalServerError, err.Error())
	}
}

// sessionID scopes dataset staging per operator session
func sessionID(c *gin.Context) string {
	if id := c.GetHeader("X-Session-Id"); id != "" {
		return id
	}
	return "default"
}

// maskSecret masks a secret for display (shows first 4 and last 4 characters)
func maskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return "***"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
