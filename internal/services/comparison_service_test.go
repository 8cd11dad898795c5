package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragbench/ragbench/internal/db/memory"
	"github.com/ragbench/ragbench/internal/errs"
	"github.com/ragbench/ragbench/internal/models"
	"github.com/ragbench/ragbench/internal/services"
)

func storeRun(t *testing.T, store *memory.Memory, name string, metrics models.Metrics) *models.EvaluationRun {
	t.Helper()
	run := &models.EvaluationRun{
		ID:   uuid.New().String(),
		Name: name,
		Result: models.EvaluationResult{
			OverallMetrics: metrics,
		},
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.SaveRun(context.Background(), run))
	return run
}

func TestCompareComputesDeltas(t *testing.T) {
	store := memory.New()
	svc := services.NewComparisonService(store)
	ctx := context.Background()

	runA := storeRun(t, store, "run a", models.Metrics{
		Faithfulness: 0.9, AnswerRelevancy: 0.8, ContextRecall: 0.7, ContextPrecision: 0.6,
	})
	runB := storeRun(t, store, "run b", models.Metrics{
		Faithfulness: 0.7, AnswerRelevancy: 0.85, ContextRecall: 0.7, ContextPrecision: 0.2,
	})

	report, err := svc.Compare(ctx, runA.ID, runB.ID)
	require.NoError(t, err)
	assert.Equal(t, runA.ID, report.RunAID)
	assert.Equal(t, "run a", report.RunAName)
	assert.Equal(t, runB.ID, report.RunBID)

	require.Len(t, report.Deltas, 4)
	assert.Equal(t, "faithfulness", report.Deltas[0].Metric)
	assert.InDelta(t, 0.2, report.Deltas[0].Delta, 1e-9)
	assert.Equal(t, "answer_relevancy", report.Deltas[1].Metric)
	assert.InDelta(t, -0.05, report.Deltas[1].Delta, 1e-9)
	assert.Equal(t, "context_recall", report.Deltas[2].Metric)
	assert.InDelta(t, 0.0, report.Deltas[2].Delta, 1e-9)
	assert.Equal(t, "context_precision", report.Deltas[3].Metric)
	assert.InDelta(t, 0.4, report.Deltas[3].Delta, 1e-9)
}

func TestCompareSwappedOrderFlipsSign(t *testing.T) {
	store := memory.New()
	svc := services.NewComparisonService(store)
	ctx := context.Background()

	runA := storeRun(t, store, "run a", models.Metrics{Faithfulness: 0.9})
	runB := storeRun(t, store, "run b", models.Metrics{Faithfulness: 0.7})

	forward, err := svc.Compare(ctx, runA.ID, runB.ID)
	require.NoError(t, err)
	backward, err := svc.Compare(ctx, runB.ID, runA.ID)
	require.NoError(t, err)

	assert.InDelta(t, forward.Deltas[0].Delta, -backward.Deltas[0].Delta, 1e-9)
}

func TestCompareSameRunRejected(t *testing.T) {
	store := memory.New()
	svc := services.NewComparisonService(store)

	run := storeRun(t, store, "only", models.Metrics{})

	_, err := svc.Compare(context.Background(), run.ID, run.ID)
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
}

func TestCompareUnknownRun(t *testing.T) {
	store := memory.New()
	svc := services.NewComparisonService(store)

	run := storeRun(t, store, "only", models.Metrics{})

	_, err := svc.Compare(context.Background(), run.ID, "missing")
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))

	_, err = svc.Compare(context.Background(), "missing", run.ID)
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}
