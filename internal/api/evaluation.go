package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ragbench/ragbench/internal/errs"
	"github.com/ragbench/ragbench/internal/models"
	"github.com/ragbench/ragbench/internal/services"
)

type submitEvaluationRequest struct {
	Name            string   `json:"name"`
	LLMConfigID     string   `json:"llm_config_id"`
	SearchConfigID  string   `json:"search_config_id"`
	IndexName       string   `json:"index_name"`
	AssistantPrompt string   `json:"assistant_prompt"`
	RAGPrompt       string   `json:"rag_prompt"`
	Temperature     *float64 `json:"temperature"`
	TopK            int      `json:"top_k"`
}

// maskedRun copies a run with the snapshot's subscription key masked for
// display. Stored runs keep the real key; only responses are masked.
func maskedRun(run *models.EvaluationRun) *models.EvaluationRun {
	masked := *run
	masked.Request.Model.SubscriptionKey = maskSecret(run.Request.Model.SubscriptionKey)
	return &masked
}

func (s *Server) submitEvaluation(c *gin.Context) {
	var req submitEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	run, err := s.evals.SubmitEvaluation(c.Request.Context(), services.SubmitInput{
		Name: req.Name,
		BuildInput: services.BuildInput{
			SessionID:      sessionID(c),
			LLMConfigID:    req.LLMConfigID,
			SearchConfigID: req.SearchConfigID,
			IndexName:      req.IndexName,
			Prompts: models.Prompts{
				AssistantPrompt: req.AssistantPrompt,
				RAGPrompt:       req.RAGPrompt,
			},
			Temperature: req.Temperature,
			TopK:        req.TopK,
		},
	})
	if err != nil {
		s.handleError(c, err)
		return
	}

	s.successResponse(c, maskedRun(run))
}

func (s *Server) listEvaluations(c *gin.Context) {
	runs, err := s.evals.ListRuns(c.Request.Context())
	if err != nil {
		s.handleError(c, err)
		return
	}

	masked := make([]*models.EvaluationRun, 0, len(runs))
	for _, run := range runs {
		masked = append(masked, maskedRun(run))
	}

	s.successResponse(c, masked)
}

func (s *Server) getEvaluation(c *gin.Context) {
	run, err := s.evals.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.handleError(c, err)
		return
	}

	s.successResponse(c, maskedRun(run))
}

func (s *Server) deleteEvaluation(c *gin.Context) {
	if err := s.evals.DeleteRun(c.Request.Context(), c.Param("id")); err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: "evaluation run deleted",
	})
}

func (s *Server) compareEvaluations(c *gin.Context) {
	idA := c.Query("run_a")
	idB := c.Query("run_b")
	if idA == "" || idB == "" {
		s.handleError(c, errs.Validation("run_ids", "both run_a and run_b query parameters are required"))
		return
	}

	report, err := s.comparisons.Compare(c.Request.Context(), idA, idB)
	if err != nil {
		s.handleError(c, err)
		return
	}

	s.successResponse(c, report)
}
