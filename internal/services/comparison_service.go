package services

import (
	"context"

	"github.com/ragbench/ragbench/internal/db"
	"github.com/ragbench/ragbench/internal/errs"
	"github.com/ragbench/ragbench/internal/models"
)

// ComparisonService computes deterministic per-metric deltas between two
// stored runs. Reports are derived on demand and never persisted.
type ComparisonService struct {
	runs db.RunDatabase
}

// NewComparisonService creates a new comparison service
func NewComparisonService(runs db.RunDatabase) *ComparisonService {
	return &ComparisonService{runs: runs}
}

// Compare builds the delta table (value A, value B, A-B) for the four
// metrics, in a fixed order. No rounding is applied; presentation rounding
// belongs to the caller.
func (s *ComparisonService) Compare(ctx context.Context, idA, idB string) (*models.ComparisonReport, error) {
	if idA == idB {
		return nil, errs.Validation("run_ids", "cannot compare a run against itself")
	}

	runA, err := s.runs.GetRun(ctx, idA)
	if err != nil {
		return nil, err
	}

	runB, err := s.runs.GetRun(ctx, idB)
	if err != nil {
		return nil, err
	}

	a := runA.Result.OverallMetrics
	b := runB.Result.OverallMetrics

	return &models.ComparisonReport{
		RunAID:   runA.ID,
		RunAName: runA.Name,
		RunBID:   runB.ID,
		RunBName: runB.Name,
		Deltas: []models.MetricDelta{
			{Metric: "faithfulness", ValueA: a.Faithfulness, ValueB: b.Faithfulness, Delta: a.Faithfulness - b.Faithfulness},
			{Metric: "answer_relevancy", ValueA: a.AnswerRelevancy, ValueB: b.AnswerRelevancy, Delta: a.AnswerRelevancy - b.AnswerRelevancy},
			{Metric: "context_recall", ValueA: a.ContextRecall, ValueB: b.ContextRecall, Delta: a.ContextRecall - b.ContextRecall},
			{Metric: "context_precision", ValueA: a.ContextPrecision, ValueB: b.ContextPrecision, Delta: a.ContextPrecision - b.ContextPrecision},
		},
	}, nil
}
