package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragbench/ragbench/internal/api"
	"github.com/ragbench/ragbench/internal/dataset"
	"github.com/ragbench/ragbench/internal/db/memory"
	"github.com/ragbench/ragbench/internal/errs"
	"github.com/ragbench/ragbench/internal/llm"
	"github.com/ragbench/ragbench/internal/models"
	"github.com/ragbench/ragbench/internal/scoring"
	"github.com/ragbench/ragbench/internal/search"
	"github.com/ragbench/ragbench/internal/services"
)

// stubScorer returns constant metrics for every test case
type stubScorer struct {
	err error
}

func (s *stubScorer) Score(ctx context.Context, request *models.EvaluationRequest) (*scoring.Result, error) {
	if s.err != nil {
		return nil, s.err
	}

	results := make([]models.PerCaseResult, 0, len(request.TestCases))
	for _, tc := range request.TestCases {
		results = append(results, models.PerCaseResult{
			TestCaseID:      tc.ID,
			Question:        tc.Question,
			GeneratedAnswer: "answer",
			GroundTruth:     tc.GroundTruth,
			Metrics: models.Metrics{
				Faithfulness:     0.8,
				AnswerRelevancy:  0.7,
				ContextRecall:    0.9,
				ContextPrecision: 0.6,
			},
		})
	}
	return &scoring.Result{TestCaseResults: results}, nil
}

func newTestServer(scorer scoring.Scorer) *api.Server {
	store := memory.New()
	registry := llm.NewRegistry()
	stager := dataset.NewStager()
	builder := services.NewRequestBuilder(store, stager)

	return api.NewServer(api.Deps{
		Configs:     services.NewConfigService(store, registry),
		Evals:       services.NewEvaluationService(builder, store, scorer, time.Minute),
		Comparisons: services.NewComparisonService(store),
		Stager:      stager,
		SearchMeta:  search.NewClient(),
		DB:          store,
	}, "*")
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

func doRequest(t *testing.T, server *api.Server, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	server.Router().ServeHTTP(recorder, req)

	var resp envelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	return recorder, resp
}

func llmConfigBody(name string) map[string]interface{} {
	return map[string]interface{}{
		"name":             name,
		"provider":         "azure",
		"chat_endpoint":    "https://example.openai.azure.com",
		"deployment_name":  "gpt-4o",
		"api_version":      "2024-02-01",
		"subscription_key": "super-secret-key-123456",
		"temperature":      0.7,
		"max_tokens":       800,
	}
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(&stubScorer{})

	recorder, resp := doRequest(t, server, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.True(t, resp.Success)
}

func TestCreateLLMConfigMasksKey(t *testing.T) {
	server := newTestServer(&stubScorer{})

	recorder, resp := doRequest(t, server, http.MethodPost, "/api/v1/llm-configs", llmConfigBody("baseline"))
	require.Equal(t, http.StatusOK, recorder.Code)
	require.True(t, resp.Success)

	var cfg models.LLMConfig
	require.NoError(t, json.Unmarshal(resp.Data, &cfg))
	assert.NotEmpty(t, cfg.ID)
	assert.NotContains(t, cfg.SubscriptionKey, "secret-key")
	assert.Contains(t, cfg.SubscriptionKey, "...")
}

func TestCreateLLMConfigValidationStatus(t *testing.T) {
	server := newTestServer(&stubScorer{})

	body := llmConfigBody("bad")
	body["chat_endpoint"] = "not a url"

	recorder, resp := doRequest(t, server, http.MethodPost, "/api/v1/llm-configs", body)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "chat_endpoint")
}

func TestDuplicateLLMConfigName(t *testing.T) {
	server := newTestServer(&stubScorer{})

	recorder, _ := doRequest(t, server, http.MethodPost, "/api/v1/llm-configs", llmConfigBody("baseline"))
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder, resp := doRequest(t, server, http.MethodPost, "/api/v1/llm-configs", llmConfigBody("baseline"))
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, resp.Error, "already exists")
}

func TestGetUnknownLLMConfig(t *testing.T) {
	server := newTestServer(&stubScorer{})

	recorder, resp := doRequest(t, server, http.MethodGet, "/api/v1/llm-configs/missing", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.False(t, resp.Success)
}

func TestSampleDataset(t *testing.T) {
	server := newTestServer(&stubScorer{})

	recorder, resp := doRequest(t, server, http.MethodGet, "/api/v1/datasets/sample", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var records []dataset.RawRecord
	require.NoError(t, json.Unmarshal(resp.Data, &records))
	assert.NotEmpty(t, records)
	for _, r := range records {
		assert.NotEmpty(t, r.ID)
		assert.NotEmpty(t, r.Question)
		assert.NotEmpty(t, r.GroundTruth)
	}
}

func TestStageDatasetValidation(t *testing.T) {
	server := newTestServer(&stubScorer{})

	recorder, resp := doRequest(t, server, http.MethodPost, "/api/v1/datasets/stage", []map[string]string{
		{"id": "tc-1", "question": "", "ground_truth": "a"},
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, resp.Error, "question")
}

// createConfigsAndStage prepares the server for a submission and returns the
// config ids.
func createConfigsAndStage(t *testing.T, server *api.Server) (llmID, searchID string) {
	t.Helper()

	_, resp := doRequest(t, server, http.MethodPost, "/api/v1/llm-configs", llmConfigBody("baseline"))
	var llmCfg models.LLMConfig
	require.NoError(t, json.Unmarshal(resp.Data, &llmCfg))

	_, resp = doRequest(t, server, http.MethodPost, "/api/v1/search-configs", map[string]string{
		"name":                    "docs",
		"search_service_endpoint": "https://search.example.net",
	})
	var searchCfg models.SearchConfig
	require.NoError(t, json.Unmarshal(resp.Data, &searchCfg))

	recorder, _ := doRequest(t, server, http.MethodPost, "/api/v1/datasets/stage", []map[string]string{
		{"id": "tc-1", "question": "q1", "ground_truth": "a1"},
		{"id": "tc-2", "question": "q2", "ground_truth": "a2"},
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	return llmCfg.ID, searchCfg.ID
}

func submitBody(name, llmID, searchID string) map[string]interface{} {
	return map[string]interface{}{
		"name":             name,
		"llm_config_id":    llmID,
		"search_config_id": searchID,
		"index_name":       "kb-index",
		"assistant_prompt": "You are a helpful assistant.",
		"top_k":            5,
	}
}

func TestSubmitEvaluationFlow(t *testing.T) {
	server := newTestServer(&stubScorer{})
	llmID, searchID := createConfigsAndStage(t, server)

	recorder, resp := doRequest(t, server, http.MethodPost, "/api/v1/evaluations", submitBody("nightly", llmID, searchID))
	require.Equal(t, http.StatusOK, recorder.Code)

	var run models.EvaluationRun
	require.NoError(t, json.Unmarshal(resp.Data, &run))
	assert.Equal(t, "nightly", run.Name)
	assert.Len(t, run.Result.TestCaseResults, 2)
	assert.InDelta(t, 0.8, run.Result.OverallMetrics.Faithfulness, 1e-9)

	// the snapshot key is masked in the response
	assert.NotContains(t, run.Request.Model.SubscriptionKey, "secret-key")

	// and the run shows up in the listing
	recorder, resp = doRequest(t, server, http.MethodGet, "/api/v1/evaluations", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var runs []models.EvaluationRun
	require.NoError(t, json.Unmarshal(resp.Data, &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
}

func TestSubmitEvaluationScoringFailure(t *testing.T) {
	server := newTestServer(&stubScorer{err: errs.Scoring(nil, "pipeline unavailable")})
	llmID, searchID := createConfigsAndStage(t, server)

	recorder, resp := doRequest(t, server, http.MethodPost, "/api/v1/evaluations", submitBody("doomed", llmID, searchID))
	assert.Equal(t, http.StatusBadGateway, recorder.Code)
	assert.Contains(t, resp.Error, "pipeline unavailable")

	// nothing was persisted
	_, resp = doRequest(t, server, http.MethodGet, "/api/v1/evaluations", nil)
	var runs []models.EvaluationRun
	require.NoError(t, json.Unmarshal(resp.Data, &runs))
	assert.Empty(t, runs)
}

func TestSubmitWithoutStagedDataset(t *testing.T) {
	server := newTestServer(&stubScorer{})

	_, resp := doRequest(t, server, http.MethodPost, "/api/v1/llm-configs", llmConfigBody("baseline"))
	var llmCfg models.LLMConfig
	require.NoError(t, json.Unmarshal(resp.Data, &llmCfg))

	_, resp = doRequest(t, server, http.MethodPost, "/api/v1/search-configs", map[string]string{
		"name":                    "docs",
		"search_service_endpoint": "https://search.example.net",
	})
	var searchCfg models.SearchConfig
	require.NoError(t, json.Unmarshal(resp.Data, &searchCfg))

	recorder, env := doRequest(t, server, http.MethodPost, "/api/v1/evaluations", submitBody("no data", llmCfg.ID, searchCfg.ID))
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, env.Error, "no dataset has been staged")
}

func TestCompareEndpoint(t *testing.T) {
	server := newTestServer(&stubScorer{})
	llmID, searchID := createConfigsAndStage(t, server)

	_, resp := doRequest(t, server, http.MethodPost, "/api/v1/evaluations", submitBody("run a", llmID, searchID))
	var runA models.EvaluationRun
	require.NoError(t, json.Unmarshal(resp.Data, &runA))

	_, resp = doRequest(t, server, http.MethodPost, "/api/v1/evaluations", submitBody("run b", llmID, searchID))
	var runB models.EvaluationRun
	require.NoError(t, json.Unmarshal(resp.Data, &runB))

	path := fmt.Sprintf("/api/v1/comparisons?run_a=%s&run_b=%s", runA.ID, runB.ID)
	recorder, resp := doRequest(t, server, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var report models.ComparisonReport
	require.NoError(t, json.Unmarshal(resp.Data, &report))
	assert.Equal(t, runA.ID, report.RunAID)
	require.Len(t, report.Deltas, 4)
	assert.InDelta(t, 0.0, report.Deltas[0].Delta, 1e-9)
}

func TestCompareMissingParams(t *testing.T) {
	server := newTestServer(&stubScorer{})

	recorder, resp := doRequest(t, server, http.MethodGet, "/api/v1/comparisons?run_a=only", nil)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, resp.Error, "run_b")
}

func TestCompareSameRun(t *testing.T) {
	server := newTestServer(&stubScorer{})
	llmID, searchID := createConfigsAndStage(t, server)

	_, resp := doRequest(t, server, http.MethodPost, "/api/v1/evaluations", submitBody("only", llmID, searchID))
	var run models.EvaluationRun
	require.NoError(t, json.Unmarshal(resp.Data, &run))

	path := fmt.Sprintf("/api/v1/comparisons?run_a=%s&run_b=%s", run.ID, run.ID)
	recorder, env := doRequest(t, server, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, env.Error, "itself")
}

func TestDeleteEvaluation(t *testing.T) {
	server := newTestServer(&stubScorer{})
	llmID, searchID := createConfigsAndStage(t, server)

	_, resp := doRequest(t, server, http.MethodPost, "/api/v1/evaluations", submitBody("short lived", llmID, searchID))
	var run models.EvaluationRun
	require.NoError(t, json.Unmarshal(resp.Data, &run))

	recorder, _ := doRequest(t, server, http.MethodDelete, "/api/v1/evaluations/"+run.ID, nil)
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder, _ = doRequest(t, server, http.MethodGet, "/api/v1/evaluations/"+run.ID, nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestScheduleValidation(t *testing.T) {
	server := newTestServer(&stubScorer{})
	llmID, searchID := createConfigsAndStage(t, server)

	_, resp := doRequest(t, server, http.MethodPost, "/api/v1/evaluations", submitBody("baseline", llmID, searchID))
	var run models.EvaluationRun
	require.NoError(t, json.Unmarshal(resp.Data, &run))

	// bad cron expression
	recorder, env := doRequest(t, server, http.MethodPost, "/api/v1/schedules", map[string]interface{}{
		"name":      "nightly",
		"run_id":    run.ID,
		"cron_expr": "not cron",
		"enabled":   true,
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, env.Error, "cron")

	// unknown baseline run
	recorder, _ = doRequest(t, server, http.MethodPost, "/api/v1/schedules", map[string]interface{}{
		"name":      "nightly",
		"run_id":    "missing",
		"cron_expr": "0 6 * * *",
		"enabled":   true,
	})
	assert.Equal(t, http.StatusNotFound, recorder.Code)

	// valid schedule
	recorder, env = doRequest(t, server, http.MethodPost, "/api/v1/schedules", map[string]interface{}{
		"name":      "nightly",
		"run_id":    run.ID,
		"cron_expr": "0 6 * * *",
		"enabled":   true,
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	var schedule models.Schedule
	require.NoError(t, json.Unmarshal(env.Data, &schedule))
	assert.NotEmpty(t, schedule.ID)
	assert.True(t, schedule.Enabled)
}
