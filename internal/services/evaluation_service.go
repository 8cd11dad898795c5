package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ragbench/ragbench/internal/db"
	"github.com/ragbench/ragbench/internal/errs"
	"github.com/ragbench/ragbench/internal/logger"
	"github.com/ragbench/ragbench/internal/models"
	"github.com/ragbench/ragbench/internal/scoring"
)

// EvaluationService orchestrates the submit workflow: build the request,
// run it through the external scoring pipeline, aggregate, persist.
// Submissions are all-or-nothing; a scoring failure persists no run and is
// never retried here.
type EvaluationService struct {
	builder *RequestBuilder
	runs    db.RunDatabase
	scorer  scoring.Scorer
	timeout time.Duration
}

// NewEvaluationService creates a new evaluation service. timeout bounds the
// scoring call of each submission; <= 0 means no bound beyond the caller's
// context.
func NewEvaluationService(builder *RequestBuilder, runs db.RunDatabase, scorer scoring.Scorer, timeout time.Duration) *EvaluationService {
	return &EvaluationService{
		builder: builder,
		runs:    runs,
		scorer:  scorer,
		timeout: timeout,
	}
}

// SubmitInput carries a submission: a run name plus the request inputs.
type SubmitInput struct {
	Name string
	BuildInput
}

// SubmitEvaluation runs the full submit workflow and returns the persisted run.
func (s *EvaluationService) SubmitEvaluation(ctx context.Context, in SubmitInput) (*models.EvaluationRun, error) {
	if in.Name == "" {
		return nil, errs.Validation("name", "must not be empty")
	}

	request, err := s.builder.Build(ctx, in.BuildInput)
	if err != nil {
		return nil, err
	}

	return s.execute(ctx, in.Name, request)
}

// ResubmitRun re-executes the frozen request snapshot of a stored run as a
// fresh run. Deleted configs cannot break this; the snapshot is complete.
func (s *EvaluationService) ResubmitRun(ctx context.Context, runID, name string) (*models.EvaluationRun, error) {
	run, err := s.runs.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}

	if name == "" {
		name = fmt.Sprintf("%s (rerun %s)", run.Name, time.Now().UTC().Format("2006-01-02 15:04"))
	}

	request := run.Request
	return s.execute(ctx, name, &request)
}

func (s *EvaluationService) execute(ctx context.Context, name string, request *models.EvaluationRequest) (*models.EvaluationRun, error) {
	// The timeout bounds scoring only. Persistence runs on the caller's
	// context so a slow scoring call cannot starve the save.
	scoreCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		scoreCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	logger.Info("Submitting evaluation %q with %d test cases", name, len(request.TestCases))
	startTime := time.Now()

	result, err := s.scorer.Score(scoreCtx, request)
	if err != nil {
		logger.Error("Scoring failed for evaluation %q after %v: %v", name, time.Since(startTime), err)
		if errs.IsScoring(err) {
			return nil, err
		}
		return nil, errs.Scoring(err, "scoring pipeline failed")
	}

	logger.Info("Scoring for evaluation %q completed after %v", name, time.Since(startTime))

	results, err := validateResults(request, result)
	if err != nil {
		return nil, err
	}

	run := &models.EvaluationRun{
		ID:   uuid.New().String(),
		Name: name,
		Request: models.EvaluationRequest{
			Model:       request.Model,
			SearchIndex: request.SearchIndex,
			Prompts:     request.Prompts,
			TestCases:   append([]models.TestCase(nil), request.TestCases...),
		},
		Result: models.EvaluationResult{
			OverallMetrics:  aggregateMetrics(results),
			TestCaseResults: results,
		},
		CreatedAt: time.Now().UTC(),
	}

	if err := s.runs.SaveRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to persist evaluation run: %w", err)
	}

	logger.Info("Persisted evaluation run %s (%q)", run.ID, run.Name)
	return run, nil
}

// validateResults checks the scorer's output against the submitted request:
// one result per test case, same order, all metrics inside [0,1]. Any
// violation fails the whole submission.
//
// NOTE: partial per-case failures are treated as fatal on purpose; partial
// result tolerance needs product confirmation before it is introduced.
func validateResults(request *models.EvaluationRequest, result *scoring.Result) ([]models.PerCaseResult, error) {
	if len(result.TestCaseResults) != len(request.TestCases) {
		return nil, errs.Scoring(nil, "scorer returned %d results for %d test cases",
			len(result.TestCaseResults), len(request.TestCases))
	}

	results := append([]models.PerCaseResult(nil), result.TestCaseResults...)
	for i, r := range results {
		expected := request.TestCases[i]
		if r.TestCaseID != expected.ID {
			return nil, errs.Scoring(nil, "scorer result %d is for case %q, expected %q", i, r.TestCaseID, expected.ID)
		}
		if err := checkMetricRange(r.TestCaseID, r.Metrics); err != nil {
			return nil, err
		}
	}

	return results, nil
}

func checkMetricRange(caseID string, m models.Metrics) error {
	for _, v := range []struct {
		name  string
		value float64
	}{
		{"faithfulness", m.Faithfulness},
		{"answer_relevancy", m.AnswerRelevancy},
		{"context_recall", m.ContextRecall},
		{"context_precision", m.ContextPrecision},
	} {
		if v.value < 0.0 || v.value > 1.0 {
			return errs.Scoring(nil, "case %q: %s %g is outside [0,1]", caseID, v.name, v.value)
		}
	}
	return nil
}

// aggregateMetrics computes the unweighted mean of each metric. Empty
// result sets cannot reach this point; submission rejects empty datasets.
func aggregateMetrics(results []models.PerCaseResult) models.Metrics {
	if len(results) == 0 {
		panic("aggregateMetrics called with zero results")
	}

	var sum models.Metrics
	for _, r := range results {
		sum.Faithfulness += r.Metrics.Faithfulness
		sum.AnswerRelevancy += r.Metrics.AnswerRelevancy
		sum.ContextRecall += r.Metrics.ContextRecall
		sum.ContextPrecision += r.Metrics.ContextPrecision
	}

	n := float64(len(results))
	return models.Metrics{
		Faithfulness:     sum.Faithfulness / n,
		AnswerRelevancy:  sum.AnswerRelevancy / n,
		ContextRecall:    sum.ContextRecall / n,
		ContextPrecision: sum.ContextPrecision / n,
	}
}

// GetRun retrieves a stored run by id
func (s *EvaluationService) GetRun(ctx context.Context, id string) (*models.EvaluationRun, error) {
	return s.runs.GetRun(ctx, id)
}

// ListRuns lists stored runs, most recent first
func (s *EvaluationService) ListRuns(ctx context.Context) ([]*models.EvaluationRun, error) {
	return s.runs.ListRuns(ctx)
}

// DeleteRun deletes a stored run as a whole
func (s *EvaluationService) DeleteRun(ctx context.Context, id string) error {
	return s.runs.DeleteRun(ctx, id)
}
