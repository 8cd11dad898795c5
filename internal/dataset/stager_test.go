package dataset_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragbench/ragbench/internal/dataset"
	"github.com/ragbench/ragbench/internal/errs"
)

func validRecords() []dataset.RawRecord {
	return []dataset.RawRecord{
		{ID: "tc-1", Question: "What is the refund window?", GroundTruth: "30 days."},
		{ID: "tc-2", Question: "Which regions are covered?", GroundTruth: "Europe and North America."},
	}
}

func TestStageValidRecords(t *testing.T) {
	stager := dataset.NewStager()

	cases, err := stager.Stage("session-1", validRecords())
	require.NoError(t, err)
	require.Len(t, cases, 2)
	assert.Equal(t, "tc-1", cases[0].ID)
	assert.Equal(t, "What is the refund window?", cases[0].Question)
	assert.Equal(t, "30 days.", cases[0].GroundTruth)

	staged, ok := stager.Current("session-1")
	require.True(t, ok)
	assert.Len(t, staged, 2)
}

func TestStageRejectsMissingFields(t *testing.T) {
	stager := dataset.NewStager()

	tests := []struct {
		name    string
		records []dataset.RawRecord
	}{
		{"empty id", []dataset.RawRecord{{ID: "  ", Question: "q", GroundTruth: "g"}}},
		{"empty question", []dataset.RawRecord{{ID: "tc-1", Question: "", GroundTruth: "g"}}},
		{"empty ground truth", []dataset.RawRecord{{ID: "tc-1", Question: "q", GroundTruth: " "}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := stager.Stage("session-1", tt.records)
			require.Error(t, err)
			assert.True(t, errs.IsValidation(err))
		})
	}

	// nothing staged after failed attempts
	_, ok := stager.Current("session-1")
	assert.False(t, ok)
}

func TestStageRejectsDuplicateIDs(t *testing.T) {
	stager := dataset.NewStager()

	_, err := stager.Stage("session-1", []dataset.RawRecord{
		{ID: "tc-1", Question: "first", GroundTruth: "a"},
		{ID: "tc-1", Question: "second", GroundTruth: "b"},
	})
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
	assert.Contains(t, err.Error(), "duplicate id")
}

func TestStageReplacesPreviousDataset(t *testing.T) {
	stager := dataset.NewStager()

	_, err := stager.Stage("session-1", validRecords())
	require.NoError(t, err)

	_, err = stager.Stage("session-1", []dataset.RawRecord{
		{ID: "tc-9", Question: "only one", GroundTruth: "yes"},
	})
	require.NoError(t, err)

	staged, ok := stager.Current("session-1")
	require.True(t, ok)
	require.Len(t, staged, 1)
	assert.Equal(t, "tc-9", staged[0].ID)
}

func TestStageEmptyBatchStagesEmptyDataset(t *testing.T) {
	stager := dataset.NewStager()

	cases, err := stager.Stage("session-1", nil)
	require.NoError(t, err)
	assert.Empty(t, cases)

	staged, ok := stager.Current("session-1")
	assert.True(t, ok)
	assert.Empty(t, staged)
}

func TestSessionsAreIsolated(t *testing.T) {
	stager := dataset.NewStager()

	_, err := stager.Stage("session-a", validRecords())
	require.NoError(t, err)

	_, ok := stager.Current("session-b")
	assert.False(t, ok)
}

func TestCurrentReturnsCopy(t *testing.T) {
	stager := dataset.NewStager()

	_, err := stager.Stage("session-1", validRecords())
	require.NoError(t, err)

	first, _ := stager.Current("session-1")
	first[0].Question = "mutated"

	second, _ := stager.Current("session-1")
	assert.Equal(t, "What is the refund window?", second[0].Question)
}

func TestClear(t *testing.T) {
	stager := dataset.NewStager()

	_, err := stager.Stage("session-1", validRecords())
	require.NoError(t, err)

	stager.Clear("session-1")

	_, ok := stager.Current("session-1")
	assert.False(t, ok)
}
