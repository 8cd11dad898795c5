package scoring

import (
	"context"

	"github.com/ragbench/ragbench/internal/models"
)

// Result is what the external RAGAS pipeline returns for one request:
// per-case results in dataset order. Aggregation is the orchestrator's job,
// never the scorer's.
type Result struct {
	TestCaseResults []models.PerCaseResult `json:"test_case_results"`
}

// Scorer runs the full RAG + RAGAS pipeline for an evaluation request.
// The call may take seconds to minutes; implementations must honor ctx
// cancellation. Failures surface as ScoringError.
type Scorer interface {
	Score(ctx context.Context, request *models.EvaluationRequest) (*Result, error)
}
